package habits

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
)

type AddHabitMsg struct{}

type ToggleHabitMsg struct {
	ID   string
	Name string
}

type Item struct {
	Status models.HabitStatus
	loc    *time.Location
}

func (i Item) Title() string {
	var b strings.Builder
	if i.Status.CompletedToday() {
		b.WriteString("✓ ")
	} else {
		b.WriteString("○ ")
	}
	b.WriteString(i.Status.Habit.Name)
	if i.Status.Streak.Current > 0 {
		fmt.Fprintf(&b, "  🔥 %d", i.Status.Streak.Current)
	}
	return b.String()
}

func (i Item) Description() string {
	var parts []string
	if i.Status.CompletedToday() {
		parts = append(parts, "Completed at "+i.Status.Today.CompletedAt.In(i.loc).Format(constants.ClockFormat))
	}
	if i.Status.Streak.Longest > 0 {
		parts = append(parts, fmt.Sprintf("Longest: %d days", i.Status.Streak.Longest))
	}
	if i.Status.Habit.Description != "" {
		parts = append(parts, i.Status.Habit.Description)
	}
	if len(parts) == 0 {
		return "not completed today"
	}
	return strings.Join(parts, " · ")
}

func (i Item) FilterValue() string { return i.Status.Habit.Name }

type KeyMap struct {
	Add    key.Binding
	Toggle key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "toggle today"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
	loc  *time.Location
}

func New(width, height int, loc *time.Location) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetStatusBarItemName("habit", "habits")

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Toggle}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Toggle}
	}

	return Model{list: l, keys: keys, loc: loc}
}

// SetHabits replaces the list contents, keeping the cursor where possible.
func (m *Model) SetHabits(statuses []models.HabitStatus) {
	items := make([]list.Item, len(statuses))
	for i, st := range statuses {
		items[i] = Item{Status: st, loc: m.loc}
	}
	m.list.SetItems(items)
}

func (m Model) Len() int { return len(m.list.Items()) }

// Filtering reports whether the list is capturing keystrokes for its filter.
func (m Model) Filtering() bool { return m.list.FilterState() == list.Filtering }

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Filtering() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddHabitMsg{} }
		case key.Matches(msg, m.keys.Toggle):
			if i, ok := m.list.SelectedItem().(Item); ok {
				h := i.Status.Habit
				return m, func() tea.Msg { return ToggleHabitMsg{ID: h.ID, Name: h.Name} }
			}
			return m, nil
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && !m.Filtering() {
		return "\n  " + constants.EmptyHabitsText + "\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
