// Package stats builds read-only projections over the completion log. All of
// it is recomputed on demand; nothing here caches or mutates state.
package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"taskquest/internal/ledger"
	"taskquest/internal/models"
	"taskquest/internal/store"
)

type Service struct {
	store store.Store
	now   func() time.Time
}

func New(s store.Store, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: s, now: now}
}

type Overview struct {
	TotalPoints         int     `json:"total_points"`
	CompletionRate      float64 `json:"completion_rate"`
	CurrentStreak       int     `json:"current_streak"`
	LongestStreak       int     `json:"longest_streak"`
	TotalTasksCompleted int     `json:"total_tasks_completed"`
}

func (s *Service) Overview(ctx context.Context, userID int) (*Overview, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return nil, ledger.ErrNotFound
	}
	total, completed, err := s.store.CountTasks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}
	comps, err := s.store.ListCompletions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	dates := completionDates(comps)

	rate := 0.0
	if total > 0 {
		rate = float64(completed) / float64(total)
	}
	return &Overview{
		TotalPoints:         u.Points,
		CompletionRate:      rate,
		CurrentStreak:       ledger.CurrentStreak(s.now(), dates),
		LongestStreak:       ledger.LongestStreak(dates),
		TotalTasksCompleted: len(comps),
	}, nil
}

type DayCount struct {
	Day   string `json:"day"`  // weekday name
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

func (s *Service) Weekly(ctx context.Context, userID int) ([]DayCount, error) {
	comps, err := s.store.ListCompletions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	return WeeklyHistogram(s.now(), comps), nil
}

// WeeklyHistogram buckets completions per UTC calendar day over the trailing
// 7 days, oldest first and ending with today.
func WeeklyHistogram(today time.Time, comps []models.CompletedTask) []DayCount {
	byDay := make(map[string]int)
	for _, c := range comps {
		byDay[c.CompletedAt.UTC().Format("2006-01-02")]++
	}

	start := today.UTC().AddDate(0, 0, -6)
	out := make([]DayCount, 7)
	for i := 0; i < 7; i++ {
		d := start.AddDate(0, 0, i)
		key := d.Format("2006-01-02")
		out[i] = DayCount{Day: d.Weekday().String(), Date: key, Count: byDay[key]}
	}
	return out
}

type TaskTally struct {
	TaskID      int `json:"task_id"`
	Count       int `json:"count"`
	TotalPoints int `json:"total_points"`
}

func (s *Service) TopTasks(ctx context.Context, userID, n int) ([]TaskTally, error) {
	comps, err := s.store.ListCompletions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	return TopTasks(comps, n), nil
}

// TopTasks groups the log by task, ordered by completion count descending.
// Ties break on ascending task id so the output is deterministic.
func TopTasks(comps []models.CompletedTask, n int) []TaskTally {
	byTask := make(map[int]*TaskTally)
	for _, c := range comps {
		t, ok := byTask[c.TaskID]
		if !ok {
			t = &TaskTally{TaskID: c.TaskID}
			byTask[c.TaskID] = t
		}
		t.Count++
		t.TotalPoints += c.PointsEarned
	}
	out := make([]TaskTally, 0, len(byTask))
	for _, t := range byTask {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].TaskID < out[j].TaskID
		}
		return out[i].Count > out[j].Count
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

type TimeOfDay struct {
	Morning   float64 `json:"morning"`   // [5, 12)
	Afternoon float64 `json:"afternoon"` // [12, 17)
	Evening   float64 `json:"evening"`   // [17, 22)
	Night     float64 `json:"night"`     // everything else
}

func (s *Service) TimeOfDay(ctx context.Context, userID int) (*TimeOfDay, error) {
	comps, err := s.store.ListCompletions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	t := TimeOfDaySplit(comps)
	return &t, nil
}

// TimeOfDaySplit returns the share of completions per daypart as percentages.
// With no completions every bucket is zero.
func TimeOfDaySplit(comps []models.CompletedTask) TimeOfDay {
	var morning, afternoon, evening, night int
	for _, c := range comps {
		switch h := c.CompletedAt.UTC().Hour(); {
		case h >= 5 && h < 12:
			morning++
		case h >= 12 && h < 17:
			afternoon++
		case h >= 17 && h < 22:
			evening++
		default:
			night++
		}
	}
	total := morning + afternoon + evening + night
	if total == 0 {
		return TimeOfDay{}
	}
	pct := func(n int) float64 { return float64(n) / float64(total) * 100 }
	return TimeOfDay{
		Morning:   pct(morning),
		Afternoon: pct(afternoon),
		Evening:   pct(evening),
		Night:     pct(night),
	}
}

func completionDates(comps []models.CompletedTask) []time.Time {
	dates := make([]time.Time, len(comps))
	for i, c := range comps {
		dates[i] = c.CompletedAt
	}
	return dates
}
