package streak

import (
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
)

// WindowDays returns today and the six preceding days, today first.
func WindowDays(today models.Day) []models.Day {
	days := make([]models.Day, constants.ProgressWindowDays)
	for i := range days {
		days[i] = today.AddDays(-i)
	}
	return days
}

// Window is the date range covered by WindowDays.
func Window(today models.Day) models.DateRange {
	return models.DateRange{
		From: today.AddDays(-(constants.ProgressWindowDays - 1)),
		To:   today,
	}
}

// Progress builds habit's 7-day row. Its streak counts consecutive done days
// from today backward and never looks past the window.
func Progress(habit models.Habit, completions []models.Completion, today models.Day) models.ProgressRow {
	done := make(map[models.Day]bool)
	for _, c := range completions {
		if c.HabitID == habit.ID && c.Completed {
			done[c.Date] = true
		}
	}

	row := models.ProgressRow{Habit: habit}
	counting := true
	for _, d := range WindowDays(today) {
		mark := models.DayMark{Day: d, Done: done[d]}
		row.Window = append(row.Window, mark)
		if counting && mark.Done {
			row.Streak++
		} else {
			counting = false
		}
	}
	return row
}

// ProgressGrid returns one row per habit in the given order.
func ProgressGrid(habits []models.Habit, completions []models.Completion, today models.Day) []models.ProgressRow {
	rows := make([]models.ProgressRow, 0, len(habits))
	for _, h := range habits {
		rows = append(rows, Progress(h, completions, today))
	}
	return rows
}
