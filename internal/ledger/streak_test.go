package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCurrentStreak(t *testing.T) {
	today := day("2025-06-15").Add(14 * time.Hour)

	tests := []struct {
		name        string
		completions []time.Time
		want        int
	}{
		{"empty log", nil, 0},
		{"today only", []time.Time{day("2025-06-15")}, 1},
		{"today and yesterday, gap before", []time.Time{
			day("2025-06-15").Add(9 * time.Hour),
			day("2025-06-14").Add(20 * time.Hour),
			day("2025-06-12"),
		}, 2},
		{"yesterday only still counts", []time.Time{day("2025-06-14")}, 1},
		{"gap two days ago breaks run", []time.Time{
			day("2025-06-15"), day("2025-06-13"), day("2025-06-12"),
		}, 1},
		{"multiple completions same day count once", []time.Time{
			day("2025-06-15").Add(8 * time.Hour),
			day("2025-06-15").Add(18 * time.Hour),
			day("2025-06-14"),
		}, 2},
		{"stale history only", []time.Time{day("2025-05-01"), day("2025-05-02")}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CurrentStreak(today, tc.completions))
		})
	}
}

func TestLongestStreak(t *testing.T) {
	assert.Equal(t, 0, LongestStreak(nil))
	assert.Equal(t, 1, LongestStreak([]time.Time{day("2025-06-15")}))

	// run of 3, gap, run of 2: longest is the old run
	comps := []time.Time{
		day("2025-06-01"), day("2025-06-02"), day("2025-06-03"),
		day("2025-06-10"), day("2025-06-11"),
	}
	assert.Equal(t, 3, LongestStreak(comps))

	// duplicates within a day do not inflate the run
	comps = []time.Time{
		day("2025-06-01").Add(1 * time.Hour),
		day("2025-06-01").Add(2 * time.Hour),
		day("2025-06-02"),
	}
	assert.Equal(t, 2, LongestStreak(comps))
}
