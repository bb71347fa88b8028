// Package streak derives streaks and the 7-day progress grid from a sparse
// completion log. Every function here is pure.
package streak

import (
	"sort"

	"github.com/julianstephens/habitual/internal/models"
)

// Calculate returns the current and longest streak for one habit's completed
// days. A run is current only if its newest day is today or yesterday. Days
// after today are ignored and duplicates collapse.
func Calculate(days []models.Day, today models.Day) models.Streak {
	sorted := newestFirst(days, today)

	var s models.Streak
	run := 0
	anchored := false
	for i, d := range sorted {
		switch {
		case i == 0 && (d.Equal(today) || d.Equal(today.AddDays(-1))):
			anchored = true
			run = 1
		case i > 0 && sorted[i-1].DaysSince(d) == 1:
			run++
		default:
			s.Longest = max(s.Longest, run)
			anchored = false
			run = 1
		}
		if anchored {
			s.Current = run
		}
	}
	s.Longest = max(s.Longest, run)
	return s
}

// ForHabit filters completions to habitID's completed records and calculates.
func ForHabit(habitID string, completions []models.Completion, today models.Day) models.Streak {
	return Calculate(completedDays(habitID, completions), today)
}

func completedDays(habitID string, completions []models.Completion) []models.Day {
	var days []models.Day
	for _, c := range completions {
		if c.HabitID == habitID && c.Completed {
			days = append(days, c.Date)
		}
	}
	return days
}

func newestFirst(days []models.Day, today models.Day) []models.Day {
	seen := make(map[models.Day]struct{}, len(days))
	out := make([]models.Day, 0, len(days))
	for _, d := range days {
		if d.IsZero() || d.After(today) {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].After(out[j]) })
	return out
}
