package system

import (
	"fmt"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/session"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/storage/postgres"
)

type MigrateCmd struct {
	Remote bool `help:"Migrate the remote database instead of the local one."`
}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	var target storage.Migrator = ctx.Local
	if c.Remote {
		connStr, err := session.ResolveDBURL(ctx.DBURL)
		if err != nil {
			return err
		}
		remote := postgres.New(connStr)
		defer remote.Close()
		target = remote
	}

	count, err := target.Migrate(ctx.Ctx, func(msg string) {
		ctx.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		ctx.Println("No migrations to apply. Database is up to date.")
	} else {
		ctx.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
