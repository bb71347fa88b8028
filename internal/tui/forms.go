package tui

import (
	stderrors "errors"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/validation"
)

type HabitFormModel struct {
	Name        string
	Description string
}

const (
	signInPassword = "password"
	signInToken    = "token"

	gateSignIn = "signin"
	gateGuest  = "guest"
)

type SignInFormModel struct {
	Method   string
	Email    string
	Password string
	Token    string
}

// userFacing strips the op prefix so huh shows only the message.
func userFacing(err error) error {
	if err == nil {
		return nil
	}
	return stderrors.New(errors.UserMessage(err))
}

func newHabitForm(f *HabitFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit name").
				Placeholder("e.g. Read for 20 minutes").
				CharLimit(constants.MaxHabitNameLen).
				DescriptionFunc(func() string {
					return validation.Counter(f.Name, constants.MaxHabitNameLen)
				}, &f.Name).
				Value(&f.Name).
				Validate(func(s string) error {
					return userFacing(validation.ValidateHabitName(s))
				}),
			huh.NewText().
				Title("Description (optional)").
				CharLimit(constants.MaxHabitDescLen).
				DescriptionFunc(func() string {
					return validation.Counter(f.Description, constants.MaxHabitDescLen)
				}, &f.Description).
				Value(&f.Description).
				Validate(func(s string) error {
					return userFacing(validation.ValidateHabitDescription(s))
				}),
		),
	).WithTheme(huh.ThemeDracula())
}

func newGateForm(choice *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(constants.DisplayName).
				Description(constants.GateText).
				Options(
					huh.NewOption("Sign in", gateSignIn),
					huh.NewOption("Continue as guest", gateGuest),
				).
				Value(choice),
		),
	).WithTheme(huh.ThemeDracula())
}

func newSignInForm(f *SignInFormModel) *huh.Form {
	if f.Method == "" {
		f.Method = signInPassword
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Sign in").
				Options(
					huh.NewOption("Email and password", signInPassword),
					huh.NewOption("Paste access token", signInToken),
				).
				Value(&f.Method),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&f.Email).
				Validate(huh.ValidateNotEmpty()),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&f.Password).
				Validate(huh.ValidateNotEmpty()),
		).WithHideFunc(func() bool { return f.Method != signInPassword }),
		huh.NewGroup(
			huh.NewInput().
				Title("Access token").
				Description("Paste the token or the full callback URL").
				Value(&f.Token).
				Validate(huh.ValidateNotEmpty()),
		).WithHideFunc(func() bool { return f.Method != signInToken }),
	).WithTheme(huh.ThemeDracula())
}
