package habits

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/streak"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	checkStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	flameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func renderStatus(st models.HabitStatus, loc *time.Location) string {
	var b strings.Builder
	if st.CompletedToday() {
		b.WriteString(checkStyle.Render("✓") + " ")
	} else {
		b.WriteString(mutedStyle.Render("○") + " ")
	}
	b.WriteString(st.Habit.Name)
	if st.Streak.Current > 0 {
		b.WriteString(" " + flameStyle.Render(fmt.Sprintf("🔥 %d", st.Streak.Current)))
	}
	if st.CompletedToday() {
		b.WriteString(mutedStyle.Render("  completed at " + st.Today.CompletedAt.In(loc).Format(constants.ClockFormat)))
	}
	if st.Streak.Longest > 0 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  longest %d days", st.Streak.Longest)))
	}
	if st.Habit.Description != "" {
		b.WriteString("\n    " + mutedStyle.Render(st.Habit.Description))
	}
	return b.String()
}

// renderProgress draws the 7-day grid oldest to newest, left to right.
func renderProgress(rows []models.ProgressRow, today models.Day) string {
	days := streak.WindowDays(today)
	headers := []string{"Habit"}
	for i := len(days) - 1; i >= 0; i-- {
		headers = append(headers, days[i].Weekday().String()[:3])
	}
	headers = append(headers, "Streak")

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...)

	for _, row := range rows {
		cells := []string{row.Habit.Name}
		for i := len(days) - 1; i >= 0; i-- {
			if row.Done(days[i]) {
				cells = append(cells, "✓")
			} else {
				cells = append(cells, "·")
			}
		}
		s := ""
		if row.Streak > 0 {
			s = "🔥 " + strconv.Itoa(row.Streak)
		}
		cells = append(cells, s)
		t.Row(cells...)
	}
	return t.Render()
}

func renderStreaks(statuses []models.HabitStatus) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers("Habit", "Current", "Longest")
	for _, st := range statuses {
		t.Row(st.Habit.Name, strconv.Itoa(st.Streak.Current), strconv.Itoa(st.Streak.Longest))
	}
	return t.Render()
}
