package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	model := tui.NewModel(ctx.Ctx, ctx.Resolver, ctx.SessionConfig())
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx.Ctx))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("failed to run session shell: %w", err)
	}
	if m, ok := final.(tui.Model); ok {
		m.Close()
	}
	return nil
}
