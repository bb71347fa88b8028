package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/identity"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/tui/components/habits"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h, v := docStyle.GetFrameSize()
		// Leave room for tabs, the status line and help.
		m.habitsModel.SetSize(msg.Width-h, msg.Height-v-4)
		m.progressModel.SetSize(msg.Width-h, msg.Height-v-4)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case identityMsg:
		return m.handleIdentity(msg)

	case sessionMsg:
		m.loading = false
		if msg.err != nil {
			m.setError("open session", msg.err)
			m.state = constants.StateHabits
			return m, nil
		}
		m.Close()
		m.sess = msg.sess
		m.state = constants.StateHabits
		if m.promptDue {
			m.state = constants.StateSignUpPrompt
		}
		m.loading = true
		return m, m.loadData()

	case dataMsg:
		m.loading = false
		if msg.err != nil {
			m.setError("load habits", msg.err)
			return m, nil
		}
		m.habitsModel.SetHabits(msg.statuses)
		m.progressModel.SetRows(msg.rows, msg.today)
		return m, nil

	case habitCreatedMsg:
		if msg.err != nil {
			logger.Warn("create habit failed", "error", msg.err)
			m.formError = errors.UserMessage(msg.err)
			m.form = newHabitForm(m.habitForm)
			m.state = constants.StateAddHabit
			return m, m.form.Init()
		}
		m.form = nil
		m.habitForm = nil
		m.formError = ""
		m.state = constants.StateHabits
		m.setSuccess(constants.HabitCreatedText)
		return m, m.loadData()

	case toggleCheckMsg:
		if msg.err != nil {
			m.setError("toggle habit", msg.err)
			return m, nil
		}
		if msg.needsConfirm {
			m.pendingToggleID = msg.habitID
			m.pendingToggleName = msg.name
			m.state = constants.StateConfirmUncheck
			return m, nil
		}
		return m, m.toggle(msg.habitID)

	case toggledMsg:
		if msg.err != nil {
			m.setError("toggle habit", msg.err)
			return m, nil
		}
		m.clearMessage()
		return m, m.loadData()

	case signedOutMsg:
		if msg.err != nil {
			m.setError("sign out", msg.err)
			return m, nil
		}
		m.Close()
		m.sess = nil
		m.identity = identity.Identity{}
		m.promptDue = false
		m.habitsModel.SetHabits(nil)
		m.progressModel.SetRows(nil, models.Today(m.location()))
		m.clearMessage()
		m.form = nil
		m.state = constants.StateGate
		m.loading = true
		return m, m.resolveIdentity()

	case midnightMsg:
		// Re-arm first so a failed reload does not stop the timer.
		cmds := []tea.Cmd{m.scheduleMidnight()}
		if m.sess != nil {
			logger.Debug("day rolled over, reloading")
			cmds = append(cmds, m.loadData())
		}
		return m, tea.Batch(cmds...)

	case habits.AddHabitMsg:
		if m.sess == nil {
			m.setError("add habit", errors.AuthRequired("add habit"))
			return m, nil
		}
		m.habitForm = &HabitFormModel{}
		m.form = newHabitForm(m.habitForm)
		m.formError = ""
		m.clearMessage()
		m.state = constants.StateAddHabit
		return m, m.form.Init()

	case habits.ToggleHabitMsg:
		if m.sess == nil {
			return m, nil
		}
		return m, m.checkToggle(msg.ID, msg.Name)
	}

	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.state {
	case constants.StateGate:
		return m.updateGate(msg)
	case constants.StateSignIn:
		return m.updateSignIn(msg)
	case constants.StateAddHabit:
		return m.updateAddHabit(msg)
	case constants.StateConfirmUncheck:
		return m.updateConfirmUncheck(msg)
	case constants.StateSignUpPrompt:
		return m.updateSignUpPrompt(msg)
	default:
		return m.updateMain(msg)
	}
}

func (m Model) handleIdentity(msg identityMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		m.setError("resolve identity", msg.err)
		if m.sess != nil {
			// A failed sign-in from the prompt keeps the current session.
			m.state = constants.StateHabits
			return m, nil
		}
		return m.showGate()
	}

	m.identity = msg.id
	if msg.id.Kind == identity.KindNone {
		return m.showGate()
	}

	m.promptDue = msg.prompt
	m.loading = true
	m.form = nil
	return m, m.openSession(msg.id)
}

func (m Model) showGate() (tea.Model, tea.Cmd) {
	m.state = constants.StateGate
	m.gateChoice = new(string)
	m.form = newGateForm(m.gateChoice)
	return m, m.form.Init()
}

// updateForm forwards msg to the active huh form.
func (m *Model) updateForm(msg tea.Msg) tea.Cmd {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	return cmd
}

func (m Model) updateGate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.form == nil {
		if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	cmd := m.updateForm(msg)
	switch m.form.State {
	case huh.StateCompleted:
		m.form = nil
		if m.gateChoice != nil && *m.gateChoice == gateGuest {
			m.loading = true
			m.clearMessage()
			return m, m.startGuest()
		}
		m.previousState = constants.StateGate
		return m.showSignIn()
	case huh.StateAborted:
		m.quitting = true
		return m, tea.Quit
	}
	return m, cmd
}

func (m Model) showSignIn() (tea.Model, tea.Cmd) {
	m.signInForm = &SignInFormModel{}
	m.form = newSignInForm(m.signInForm)
	m.state = constants.StateSignIn
	return m, m.form.Init()
}

func (m Model) updateSignIn(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		return m.leaveSignIn()
	}

	cmd := m.updateForm(msg)
	switch m.form.State {
	case huh.StateCompleted:
		creds := *m.signInForm
		m.signInForm = nil
		m.form = nil
		m.loading = true
		m.clearMessage()
		if m.sess != nil {
			m.state = constants.StateHabits
		} else {
			m.state = constants.StateGate
		}
		return m, m.signIn(creds)
	case huh.StateAborted:
		return m.leaveSignIn()
	}
	return m, cmd
}

func (m Model) leaveSignIn() (tea.Model, tea.Cmd) {
	m.signInForm = nil
	m.form = nil
	if m.previousState == constants.StateGate {
		return m.showGate()
	}
	m.state = m.previousState
	return m, nil
}

func (m Model) updateAddHabit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.form == nil {
		// Saving.
		return m, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.form = nil
		m.habitForm = nil
		m.formError = ""
		m.state = constants.StateHabits
		return m, nil
	}

	cmd := m.updateForm(msg)
	switch m.form.State {
	case huh.StateCompleted:
		m.form = nil
		return m, m.createHabit(*m.habitForm)
	case huh.StateAborted:
		m.form = nil
		m.habitForm = nil
		m.state = constants.StateHabits
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirmUncheck(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Yes):
		id := m.pendingToggleID
		m.pendingToggleID, m.pendingToggleName = "", ""
		m.state = constants.StateHabits
		return m, m.toggle(id)
	case key.Matches(keyMsg, m.keys.No):
		m.pendingToggleID, m.pendingToggleName = "", ""
		m.state = constants.StateHabits
	}
	return m, nil
}

func (m Model) updateSignUpPrompt(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.SignIn):
		m.previousState = constants.StateSignUpPrompt
		return m.showSignIn()
	case key.Matches(keyMsg, m.keys.Later):
		m.resolver.DismissSignUp()
		m.promptDue = false
		m.state = constants.StateHabits
	case key.Matches(keyMsg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// updateMain handles the Habits and Progress tabs.
func (m Model) updateMain(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && !(m.state == constants.StateHabits && m.habitsModel.Filtering()) {
		switch {
		case key.Matches(keyMsg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(keyMsg, m.keys.Tab), key.Matches(keyMsg, m.keys.ShiftTab):
			if m.state == constants.StateHabits {
				m.state = constants.StateProgress
			} else {
				m.state = constants.StateHabits
			}
			return m, nil
		case key.Matches(keyMsg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(keyMsg, m.keys.SignOut):
			return m, m.signOut()
		case key.Matches(keyMsg, m.keys.Refresh):
			return m, m.loadData()
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case constants.StateHabits:
		m.habitsModel, cmd = m.habitsModel.Update(msg)
	case constants.StateProgress:
		m.progressModel, cmd = m.progressModel.Update(msg)
	}
	return m, cmd
}
