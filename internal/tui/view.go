package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/identity"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case constants.StateGate:
		return m.viewGate()
	case constants.StateSignIn, constants.StateAddHabit:
		return m.viewForm()
	case constants.StateConfirmUncheck:
		return m.viewConfirmUncheck()
	case constants.StateSignUpPrompt:
		return m.viewSignUpPrompt()
	}

	var content string
	switch m.state {
	case constants.StateHabits:
		content = docStyle.Render(m.habitsModel.View())
	case constants.StateProgress:
		content = docStyle.Render(m.progressModel.View())
	}

	header := lipgloss.JoinHorizontal(lipgloss.Top, m.viewTabs(), identityStyle.Render(m.viewIdentity()))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	for _, tab := range []struct {
		title string
		state constants.SessionState
	}{
		{"Habits", constants.StateHabits},
		{"Progress", constants.StateProgress},
	} {
		if m.state == tab.state {
			tabs = append(tabs, activeTabStyle.Render(tab.title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(tab.title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewIdentity() string {
	switch m.identity.Kind {
	case identity.KindAuthenticated:
		return m.identity.Email
	case identity.KindGuest:
		return "Guest"
	default:
		return ""
	}
}

func (m Model) viewStatus() string {
	switch {
	case m.loading:
		return " " + m.spinner.View() + " Loading..."
	case m.message == "":
		return ""
	case m.isError:
		return " " + dangerStyle.Render(m.message)
	default:
		return " " + successStyle.Render(m.message)
	}
}

func (m Model) viewGate() string {
	body := []string{titleStyle.Render(constants.DisplayName), ""}
	if m.loading || m.form == nil {
		body = append(body, m.spinner.View()+" Loading...")
	} else {
		body = append(body, m.form.View())
	}
	if m.message != "" {
		body = append(body, "", dangerStyle.Render(m.message))
	}
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, body...),
	)
}

func (m Model) viewForm() string {
	if m.form == nil {
		return docStyle.Render(m.spinner.View() + " Saving...")
	}
	view := m.form.View()
	if m.formError != "" {
		view = lipgloss.JoinVertical(lipgloss.Left, view, "", dangerStyle.Render(m.formError))
	}
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, view, "", inactiveTabStyle.Render("esc cancel")))
}

func (m Model) viewConfirmUncheck() string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(constants.ConfirmUncheckTitle),
			constants.ConfirmUncheckDetail,
			"",
			fmt.Sprintf("Habit: %s", m.pendingToggleName),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}

func (m Model) viewSignUpPrompt() string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			warningStyle.Render(constants.SignUpPromptText),
			"",
			"[enter] Sign in",
			"[l] Remind me later",
		),
	)
}
