package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskquest/internal/models"
	"taskquest/internal/store"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func at(daysAgo, hour int) time.Time {
	return time.Date(2025, 6, 15, hour, 30, 0, 0, time.UTC).AddDate(0, 0, -daysAgo)
}

func comp(taskID int, when time.Time, points int) models.CompletedTask {
	return models.CompletedTask{UserID: 1, TaskID: taskID, CompletedAt: when, PointsEarned: points}
}

func TestWeeklyHistogram(t *testing.T) {
	comps := []models.CompletedTask{
		comp(1, at(0, 9), 10),
		comp(2, at(0, 15), 10),
		comp(3, at(3, 8), 10),
		comp(4, at(6, 8), 10),
		comp(5, at(7, 8), 10), // just outside the window
	}
	hist := WeeklyHistogram(testNow, comps)
	require.Len(t, hist, 7)

	total := 0
	for _, d := range hist {
		total += d.Count
	}
	assert.Equal(t, 4, total)
	assert.Equal(t, "2025-06-09", hist[0].Date)
	assert.Equal(t, "2025-06-15", hist[6].Date)
	assert.Equal(t, 2, hist[6].Count)
	assert.Equal(t, testNow.Weekday().String(), hist[6].Day)
}

func TestWeeklyHistogramEmpty(t *testing.T) {
	hist := WeeklyHistogram(testNow, nil)
	require.Len(t, hist, 7)
	for _, d := range hist {
		assert.Zero(t, d.Count)
	}
}

func TestTopTasks(t *testing.T) {
	comps := []models.CompletedTask{
		comp(7, at(0, 9), 5),
		comp(7, at(1, 9), 5),
		comp(7, at(2, 9), 5),
		comp(3, at(0, 9), 20),
		comp(3, at(1, 9), 20),
		comp(9, at(0, 9), 50),
		comp(5, at(0, 9), 1), // ties with 9 on count; lower id wins
	}

	top := TopTasks(comps, 2)
	require.Len(t, top, 2)
	assert.Equal(t, TaskTally{TaskID: 7, Count: 3, TotalPoints: 15}, top[0])
	assert.Equal(t, TaskTally{TaskID: 3, Count: 2, TotalPoints: 40}, top[1])

	all := TopTasks(comps, 10)
	require.Len(t, all, 4)
	assert.Equal(t, 5, all[2].TaskID)
	assert.Equal(t, 9, all[3].TaskID)

	// counts must add up to the completions for those tasks
	sum := 0
	for _, tt := range all {
		sum += tt.Count
	}
	assert.Equal(t, len(comps), sum)

	// deterministic for a fixed log
	assert.Equal(t, all, TopTasks(comps, 10))
}

func TestTimeOfDaySplit(t *testing.T) {
	comps := []models.CompletedTask{
		comp(1, at(0, 6), 1),  // morning
		comp(2, at(0, 11), 1), // morning
		comp(3, at(0, 13), 1), // afternoon
		comp(4, at(0, 19), 1), // evening
		comp(5, at(0, 23), 1), // night
		comp(6, at(0, 2), 1),  // night
	}
	split := TimeOfDaySplit(comps)
	assert.InDelta(t, 100.0/3, split.Morning, 1e-9)
	assert.InDelta(t, 100.0/6, split.Afternoon, 1e-9)
	assert.InDelta(t, 100.0/6, split.Evening, 1e-9)
	assert.InDelta(t, 100.0/3, split.Night, 1e-9)
	assert.InDelta(t, 100.0, split.Morning+split.Afternoon+split.Evening+split.Night, 1e-9)
}

func TestTimeOfDaySplitEmpty(t *testing.T) {
	split := TimeOfDaySplit(nil)
	assert.Zero(t, split.Morning)
	assert.Zero(t, split.Afternoon)
	assert.Zero(t, split.Evening)
	assert.Zero(t, split.Night)
}

func TestTimeOfDayBoundaries(t *testing.T) {
	split := TimeOfDaySplit([]models.CompletedTask{
		comp(1, at(0, 5), 1),  // first morning hour
		comp(2, at(0, 12), 1), // first afternoon hour
		comp(3, at(0, 17), 1), // first evening hour
		comp(4, at(0, 22), 1), // first night hour
	})
	assert.InDelta(t, 25.0, split.Morning, 1e-9)
	assert.InDelta(t, 25.0, split.Afternoon, 1e-9)
	assert.InDelta(t, 25.0, split.Evening, 1e-9)
	assert.InDelta(t, 25.0, split.Night, 1e-9)
}

func TestOverview(t *testing.T) {
	mem := store.NewMemory()
	svc := New(mem, func() time.Time { return testNow })
	ctx := context.Background()

	user := mem.SeedUser(models.User{Email: "a@example.com", Points: 60})
	done := mem.SeedTask(models.Task{UserID: user.ID, Title: "done", Points: 10, IsCompleted: true})
	mem.SeedTask(models.Task{UserID: user.ID, Title: "open", Points: 10})
	mem.SeedTask(models.Task{UserID: user.ID, Title: "open2", Points: 10})

	require.NoError(t, mem.InsertCompletedTask(ctx, &models.CompletedTask{
		UserID: user.ID, TaskID: done.ID, CompletedAt: testNow, PointsEarned: 10,
	}))
	require.NoError(t, mem.InsertCompletedTask(ctx, &models.CompletedTask{
		UserID: user.ID, TaskID: 99, CompletedAt: testNow.AddDate(0, 0, -1), PointsEarned: 50,
	}))

	out, err := svc.Overview(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 60, out.TotalPoints)
	assert.InDelta(t, 1.0/3, out.CompletionRate, 1e-9)
	assert.Equal(t, 2, out.CurrentStreak)
	assert.Equal(t, 2, out.LongestStreak)
	assert.Equal(t, 2, out.TotalTasksCompleted)
}

func TestOverviewNoTasks(t *testing.T) {
	mem := store.NewMemory()
	svc := New(mem, func() time.Time { return testNow })

	user := mem.SeedUser(models.User{Email: "a@example.com"})
	out, err := svc.Overview(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Zero(t, out.CompletionRate)
	assert.Zero(t, out.CurrentStreak)
	assert.Zero(t, out.TotalTasksCompleted)
}
