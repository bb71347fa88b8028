package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitual/internal/identity"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/session"
	"github.com/julianstephens/habitual/internal/utils"
)

type identityMsg struct {
	id     identity.Identity
	prompt bool
	err    error
}

type sessionMsg struct {
	sess *session.Session
	err  error
}

type dataMsg struct {
	statuses []models.HabitStatus
	rows     []models.ProgressRow
	today    models.Day
	err      error
}

type habitCreatedMsg struct {
	habit models.Habit
	err   error
}

type toggleCheckMsg struct {
	habitID      string
	name         string
	needsConfirm bool
	err          error
}

type toggledMsg struct {
	completion models.Completion
	err        error
}

type signedOutMsg struct {
	err error
}

type midnightMsg struct{}

func (m Model) resolveIdentity() tea.Cmd {
	ctx, resolver := m.ctx, m.resolver
	return func() tea.Msg {
		id, err := resolver.CurrentIdentity(ctx)
		if err != nil {
			return identityMsg{err: err}
		}
		prompt, err := resolver.ShouldPromptSignUp(ctx)
		return identityMsg{id: id, prompt: prompt, err: err}
	}
}

func (m Model) startGuest() tea.Cmd {
	ctx, resolver := m.ctx, m.resolver
	return func() tea.Msg {
		id, err := resolver.StartGuest(ctx)
		return identityMsg{id: id, err: err}
	}
}

func (m Model) signIn(f SignInFormModel) tea.Cmd {
	ctx, resolver := m.ctx, m.resolver
	return func() tea.Msg {
		var (
			id  identity.Identity
			err error
		)
		if f.Method == signInToken {
			id, err = resolver.SignInWithToken(ctx, f.Token)
		} else {
			id, err = resolver.SignIn(ctx, f.Email, f.Password)
		}
		return identityMsg{id: id, err: err}
	}
}

func (m Model) signOut() tea.Cmd {
	ctx, resolver := m.ctx, m.resolver
	return func() tea.Msg {
		return signedOutMsg{err: resolver.SignOut(ctx)}
	}
}

func (m Model) openSession(id identity.Identity) tea.Cmd {
	ctx, cfg := m.ctx, m.cfg
	return func() tea.Msg {
		sess, err := session.OpenFor(ctx, cfg, id)
		return sessionMsg{sess: sess, err: err}
	}
}

// loadData fetches the list and the progress grid together.
func (m Model) loadData() tea.Cmd {
	if m.sess == nil {
		return nil
	}
	ctx, svc := m.ctx, m.sess.Tracker
	return func() tea.Msg {
		statuses, err := svc.Overview(ctx)
		if err != nil {
			return dataMsg{err: err}
		}
		rows, err := svc.Progress(ctx)
		return dataMsg{statuses: statuses, rows: rows, today: svc.Today(), err: err}
	}
}

func (m Model) createHabit(f HabitFormModel) tea.Cmd {
	ctx, svc := m.ctx, m.sess.Tracker
	return func() tea.Msg {
		habit, err := svc.CreateHabit(ctx, f.Name, f.Description)
		return habitCreatedMsg{habit: habit, err: err}
	}
}

func (m Model) checkToggle(habitID, name string) tea.Cmd {
	ctx, svc := m.ctx, m.sess.Tracker
	return func() tea.Msg {
		needs, err := svc.NeedsConfirmation(ctx, habitID, svc.Today())
		return toggleCheckMsg{habitID: habitID, name: name, needsConfirm: needs, err: err}
	}
}

func (m Model) toggle(habitID string) tea.Cmd {
	ctx, svc := m.ctx, m.sess.Tracker
	return func() tea.Msg {
		c, err := svc.Toggle(ctx, habitID, svc.Today())
		return toggledMsg{completion: c, err: err}
	}
}

// scheduleMidnight fires once at the next local midnight.
func (m Model) scheduleMidnight() tea.Cmd {
	now := m.now().In(m.location())
	return tea.Tick(utils.UntilMidnight(now), func(time.Time) tea.Msg {
		return midnightMsg{}
	})
}
