package progress

import (
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/streak"
)

const (
	nameWidth   = 24
	dayWidth    = 5
	streakWidth = 8
)

type Model struct {
	table table.Model
	rows  int
}

func New(width, height int) Model {
	t := table.New(
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return Model{table: t}
}

// SetRows rebuilds the grid for the window ending today, oldest day first.
func (m *Model) SetRows(rows []models.ProgressRow, today models.Day) {
	days := streak.WindowDays(today)

	cols := []table.Column{{Title: "Habit", Width: nameWidth}}
	for i := len(days) - 1; i >= 0; i-- {
		title := days[i].Weekday().String()[:3]
		if i == 0 {
			title = "Today"
		}
		cols = append(cols, table.Column{Title: title, Width: dayWidth})
	}
	cols = append(cols, table.Column{Title: "Streak", Width: streakWidth})

	tableRows := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		row := table.Row{r.Habit.Name}
		for i := len(days) - 1; i >= 0; i-- {
			if r.Done(days[i]) {
				row = append(row, "  ✓")
			} else {
				row = append(row, "  ·")
			}
		}
		s := "-"
		if r.Streak > 0 {
			s = "🔥 " + strconv.Itoa(r.Streak)
		}
		row = append(row, s)
		tableRows = append(tableRows, row)
	}

	// Columns must be replaced before rows so cell counts match.
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(tableRows)
	m.rows = len(tableRows)
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.rows == 0 {
		return "\n  " + constants.EmptyProgressText
	}
	return m.table.View()
}

func (m *Model) SetSize(width, height int) {
	m.table.SetWidth(width)
	m.table.SetHeight(height)
}
