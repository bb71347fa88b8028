package system

import (
	"fmt"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/session"
	"github.com/julianstephens/habitual/internal/storage/postgres"
)

type InitCmd struct {
	Remote bool `help:"Also create the remote habit tables using the configured database URL."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if err := ctx.Local.Init(ctx.Ctx); err != nil {
		return fmt.Errorf("failed to initialize local storage: %w", err)
	}
	ctx.Printf("Initialized habitual storage at: %s\n", ctx.Local.Describe())

	if !c.Remote {
		return nil
	}

	connStr, err := session.ResolveDBURL(ctx.DBURL)
	if err != nil {
		return err
	}
	remote := postgres.New(connStr)
	defer remote.Close()

	if err := remote.Init(ctx.Ctx); err != nil {
		return fmt.Errorf("failed to initialize remote database: %w", err)
	}
	ctx.Println("Initialized remote habit database")
	return nil
}
