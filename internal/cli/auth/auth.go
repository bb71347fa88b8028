package auth

import (
	"fmt"
	"math"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/identity"
)

type AuthCmd struct {
	Login  LoginCmd  `cmd:"" help:"Sign in with email and password or a pasted access token."`
	Logout LogoutCmd `cmd:"" help:"Sign out. Guests lose their local habits."`
	Guest  GuestCmd  `cmd:"" help:"Continue as a guest on this device."`
	Status StatusCmd `cmd:"" default:"1" help:"Show who is signed in."`
}

type LoginCmd struct {
	Email    string `help:"Account email."`
	Password string `help:"Account password." env:"HABITUAL_PASSWORD"`
	Token    string `help:"Access token or the callback URL from a browser sign-in."`
}

func (c *LoginCmd) Run(ctx *cli.Context) error {
	if c.Token == "" && (c.Email == "" || c.Password == "") {
		if err := c.prompt(); err != nil {
			return err
		}
	}

	before, err := ctx.Resolver.CurrentIdentity(ctx.Ctx)
	if err != nil {
		return err
	}

	var id identity.Identity
	if c.Token != "" {
		id, err = ctx.Resolver.SignInWithToken(ctx.Ctx, c.Token)
	} else {
		id, err = ctx.Resolver.SignIn(ctx.Ctx, c.Email, c.Password)
	}
	if err != nil {
		return err
	}

	if before.IsGuest() {
		ctx.Println("Guest habits on this device were cleared.")
	}
	ctx.Printf("✓ Signed in as %s\n", id.Email)
	return nil
}

// prompt fills in missing credentials with a huh form.
func (c *LoginCmd) prompt() error {
	method := "password"
	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("How do you want to sign in?").
				Options(
					huh.NewOption("Email and password", "password"),
					huh.NewOption("Paste access token", "token"),
				).
				Value(&method),
		),
	).WithTheme(huh.ThemeDracula()).Run(); err != nil {
		return err
	}

	var form *huh.Form
	if method == "token" {
		form = huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Access token").
				Description("Paste the token or the full callback URL").
				Value(&c.Token).
				Validate(huh.ValidateNotEmpty()),
		))
	} else {
		form = huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Email").Value(&c.Email).Validate(huh.ValidateNotEmpty()),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&c.Password).Validate(huh.ValidateNotEmpty()),
		))
	}
	return form.WithTheme(huh.ThemeDracula()).Run()
}

type LogoutCmd struct {
	Yes bool `short:"y" help:"Skip the confirmation when a guest would lose local habits."`
}

func (c *LogoutCmd) Run(ctx *cli.Context) error {
	id, err := ctx.Resolver.CurrentIdentity(ctx.Ctx)
	if err != nil {
		return err
	}

	switch id.Kind {
	case identity.KindNone:
		ctx.Println("Not signed in.")
		return nil
	case identity.KindGuest:
		if !c.Yes {
			ok, err := ctx.Confirm("Sign out of guest mode?", "Your habits on this device will be deleted.")
			if err != nil {
				return fmt.Errorf("confirmation failed: %w", err)
			}
			if !ok {
				ctx.Println("No changes made.")
				return nil
			}
		}
	}

	if err := ctx.Resolver.SignOut(ctx.Ctx); err != nil {
		return err
	}
	ctx.Println("✓ Signed out")
	return nil
}

type GuestCmd struct{}

func (c *GuestCmd) Run(ctx *cli.Context) error {
	current, err := ctx.Resolver.CurrentIdentity(ctx.Ctx)
	if err != nil {
		return err
	}
	if current.IsAuthenticated() {
		return fmt.Errorf("already signed in as %s; run '%s auth logout' first", current.Email, constants.AppName)
	}

	id, err := ctx.Resolver.StartGuest(ctx.Ctx)
	if err != nil {
		return err
	}
	if current.IsGuest() {
		ctx.Println("Already using guest mode.")
	} else {
		ctx.Println("✓ Guest mode started. Your habits are stored on this device.")
	}
	if id.GuestSince != nil {
		ctx.Printf("  Guest since %s\n", id.GuestSince.In(ctx.Location).Format("Jan 2, 2006"))
	}
	return nil
}

type StatusCmd struct{}

func (c *StatusCmd) Run(ctx *cli.Context) error {
	id, err := ctx.Resolver.CurrentIdentity(ctx.Ctx)
	if err != nil {
		return err
	}

	switch id.Kind {
	case identity.KindAuthenticated:
		ctx.Printf("Signed in as %s\n", id.Email)
		ctx.Printf("User ID: %s\n", id.UserID)
	case identity.KindGuest:
		days, err := ctx.Resolver.DaysSinceGuestStart(ctx.Ctx)
		if err != nil {
			return err
		}
		ctx.Println("Guest mode")
		ctx.Printf("Days since guest start: %d\n", int(math.Floor(days)))
		prompt, err := ctx.Resolver.ShouldPromptSignUp(ctx.Ctx)
		if err != nil {
			return err
		}
		if prompt {
			ctx.Println(constants.SignUpPromptText)
		}
	default:
		ctx.Println(constants.GateText)
		ctx.Printf("Run '%s auth login' or '%s auth guest'.\n", constants.AppName, constants.AppName)
	}
	return nil
}
