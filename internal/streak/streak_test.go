package streak

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitual/internal/models"
)

var today = models.MustParseDay("2024-03-10")

func ago(n int) models.Day { return today.AddDays(-n) }

func TestCalculate(t *testing.T) {
	tests := []struct {
		name string
		days []models.Day
		want models.Streak
	}{
		{
			name: "empty history",
			days: nil,
			want: models.Streak{Current: 0, Longest: 0},
		},
		{
			name: "single completion today",
			days: []models.Day{today},
			want: models.Streak{Current: 1, Longest: 1},
		},
		{
			name: "three consecutive days ending today",
			days: []models.Day{today, ago(1), ago(2)},
			want: models.Streak{Current: 3, Longest: 3},
		},
		{
			name: "gap after today",
			days: []models.Day{today, ago(3)},
			want: models.Streak{Current: 1, Longest: 1},
		},
		{
			name: "anchored at yesterday",
			days: []models.Day{ago(1), ago(2)},
			want: models.Streak{Current: 2, Longest: 2},
		},
		{
			name: "stale run is not current",
			days: []models.Day{ago(2), ago(3), ago(4)},
			want: models.Streak{Current: 0, Longest: 3},
		},
		{
			name: "longest run is older",
			days: []models.Day{today, ago(5), ago(6), ago(7), ago(8)},
			want: models.Streak{Current: 1, Longest: 4},
		},
		{
			name: "unsorted input with duplicates",
			days: []models.Day{ago(2), today, ago(1), today},
			want: models.Streak{Current: 3, Longest: 3},
		},
		{
			name: "future days ignored",
			days: []models.Day{today.AddDays(1), today},
			want: models.Streak{Current: 1, Longest: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Calculate(tt.days, today))
		})
	}
}

func TestCalculateAcrossMonthBoundary(t *testing.T) {
	first := models.MustParseDay("2024-03-01")
	got := Calculate([]models.Day{first, models.MustParseDay("2024-02-29"), models.MustParseDay("2024-02-28")}, first)
	assert.Equal(t, models.Streak{Current: 3, Longest: 3}, got)
}

func TestForHabitCountsOnlyCompleted(t *testing.T) {
	completions := []models.Completion{
		{HabitID: "h1", Date: today, Completed: true},
		{HabitID: "h1", Date: ago(1), Completed: false},
		{HabitID: "h1", Date: ago(2), Completed: true},
		{HabitID: "h2", Date: ago(1), Completed: true},
	}

	got := ForHabit("h1", completions, today)
	assert.Equal(t, models.Streak{Current: 1, Longest: 1}, got)
}

func TestProgressAllWeek(t *testing.T) {
	habit := models.Habit{ID: "h1", Name: "Read"}
	var completions []models.Completion
	for i := 0; i < 7; i++ {
		completions = append(completions, models.Completion{HabitID: "h1", Date: ago(i), Completed: true})
	}

	row := Progress(habit, completions, today)
	require.Len(t, row.Window, 7)
	for _, m := range row.Window {
		assert.True(t, m.Done, "day %s", m.Day)
	}
	assert.Equal(t, 7, row.Streak)
	assert.True(t, row.Window[0].Day.Equal(today))
	assert.True(t, row.Window[6].Day.Equal(ago(6)))
}

func TestProgressBreaksAtYesterday(t *testing.T) {
	habit := models.Habit{ID: "h1"}
	completions := []models.Completion{
		{HabitID: "h1", Date: today, Completed: true},
		{HabitID: "h1", Date: ago(3), Completed: true},
		{HabitID: "h1", Date: ago(10), Completed: true},
	}

	row := Progress(habit, completions, today)
	trues := 0
	for _, m := range row.Window {
		if m.Done {
			trues++
		}
	}
	assert.Equal(t, 2, trues)
	assert.Equal(t, 1, row.Streak)
	assert.True(t, row.Done(ago(3)))
	assert.False(t, row.Done(ago(1)))
}

func TestProgressIgnoresUncompletedRecords(t *testing.T) {
	row := Progress(models.Habit{ID: "h1"}, []models.Completion{
		{HabitID: "h1", Date: today, Completed: false},
	}, today)
	assert.False(t, row.Window[0].Done)
	assert.Equal(t, 0, row.Streak)
}

func TestProgressGridKeepsHabitOrder(t *testing.T) {
	habits := []models.Habit{{ID: "b"}, {ID: "a"}}
	rows := ProgressGrid(habits, nil, today)
	require.Len(t, rows, 2)
	assert.Equal(t, "b", rows[0].Habit.ID)
	assert.Equal(t, "a", rows[1].Habit.ID)
}

func TestWindow(t *testing.T) {
	days := WindowDays(today)
	w := Window(today)
	assert.True(t, w.From.Equal(days[6]))
	assert.True(t, w.To.Equal(days[0]))
	assert.False(t, w.Contains(ago(7)))
}
