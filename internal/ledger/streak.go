package ledger

import (
	"sort"
	"time"
)

func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CurrentStreak counts consecutive UTC calendar days with at least one
// completion, walking backward from today. A day with no completions strictly
// before today breaks the run; an empty today does not, since the day is not
// over yet.
func CurrentStreak(today time.Time, completions []time.Time) int {
	days := make(map[time.Time]bool, len(completions))
	for _, c := range completions {
		days[dayOf(c)] = true
	}

	cursor := dayOf(today)
	if !days[cursor] {
		cursor = cursor.AddDate(0, 0, -1)
	}
	streak := 0
	for days[cursor] {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}

// LongestStreak returns the longest consecutive-day run anywhere in the
// completion history.
func LongestStreak(completions []time.Time) int {
	seen := make(map[time.Time]bool, len(completions))
	var days []time.Time
	for _, c := range completions {
		d := dayOf(c)
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	longest, run := 0, 0
	for i, d := range days {
		if i > 0 && d.Equal(days[i-1].AddDate(0, 0, 1)) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}
