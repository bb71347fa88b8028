// Package tui is the interactive session shell: a sign-in gate, the habit
// list and the 7-day progress view.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/identity"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/session"
	"github.com/julianstephens/habitual/internal/tui/components/habits"
	"github.com/julianstephens/habitual/internal/tui/components/progress"
)

type Model struct {
	ctx      context.Context
	resolver *identity.Resolver
	cfg      session.Config
	sess     *session.Session
	identity identity.Identity
	now      func() time.Time

	state         constants.SessionState
	previousState constants.SessionState
	keys          KeyMap
	help          help.Model
	spinner       spinner.Model
	loading       bool
	promptDue     bool

	habitsModel   habits.Model
	progressModel progress.Model

	form       *huh.Form
	habitForm  *HabitFormModel
	signInForm *SignInFormModel
	gateChoice *string
	formError  string

	pendingToggleID   string
	pendingToggleName string

	message  string
	isError  bool
	quitting bool
	width    int
	height   int
}

func NewModel(ctx context.Context, resolver *identity.Resolver, cfg session.Config) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:           ctx,
		resolver:      resolver,
		cfg:           cfg,
		now:           time.Now,
		state:         constants.StateGate,
		keys:          DefaultKeyMap(),
		help:          help.New(),
		spinner:       sp,
		loading:       true,
		habitsModel:   habits.New(0, 0, cfg.Location),
		progressModel: progress.New(0, 0),
	}
}

// WithClock replaces the time source used for the midnight timer.
func (m Model) WithClock(now func() time.Time) Model {
	m.now = now
	return m
}

func (m Model) location() *time.Location {
	if m.cfg.Location != nil {
		return m.cfg.Location
	}
	return time.Local
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.resolveIdentity(), m.scheduleMidnight())
}

// Close releases the remote backend, if one is open.
func (m Model) Close() {
	if m.sess != nil {
		if err := m.sess.Close(); err != nil {
			logger.Warn("failed to close session", "error", err)
		}
	}
}

func (m *Model) setError(op string, err error) {
	logger.Error(op, "error", err)
	m.message = errors.UserMessage(err)
	m.isError = true
}

func (m *Model) setSuccess(msg string) {
	m.message = msg
	m.isError = false
}

func (m *Model) clearMessage() {
	m.message = ""
	m.isError = false
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case constants.StateHabits:
		keys = append(keys, m.keys.Add, m.keys.Toggle, m.keys.SignOut)
	case constants.StateProgress:
		keys = append(keys, m.keys.Refresh, m.keys.SignOut)
	case constants.StateConfirmUncheck:
		keys = []key.Binding{m.keys.Yes, m.keys.No}
	case constants.StateSignUpPrompt:
		keys = []key.Binding{m.keys.SignIn, m.keys.Later}
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}

	var actions []key.Binding
	switch m.state {
	case constants.StateHabits:
		actions = []key.Binding{m.keys.Add, m.keys.Toggle, m.keys.Refresh, m.keys.SignOut}
	case constants.StateProgress:
		actions = []key.Binding{m.keys.Refresh, m.keys.SignOut}
	}

	return [][]key.Binding{global, actions}
}
