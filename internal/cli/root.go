package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/backup"
	"github.com/julianstephens/habitual/internal/identity"
	"github.com/julianstephens/habitual/internal/session"
	"github.com/julianstephens/habitual/internal/storage/sqlite"
)

// Context is shared by every command.
type Context struct {
	Ctx      context.Context
	DataDir  string
	DBURL    string
	Timezone string
	Location *time.Location
	Auth     identity.AuthConfig

	Local    *sqlite.Store
	Backups  *backup.Manager
	Resolver *identity.Resolver

	Out io.Writer
	// Confirm asks a yes/no question. Tests replace it.
	Confirm func(title, description string) (bool, error)
}

// NewContext wires the local store and resolver for dataDir.
func NewContext(ctx context.Context, dataDir, dbPath string, loc *time.Location, auth identity.AuthConfig) *Context {
	local := sqlite.NewStore(dbPath)
	snapshots := backup.NewManager(dbPath)
	resolver := identity.NewResolver(identity.NewAuthClient(auth), identity.KeyringSessions(), local).
		WithGuestSnapshot(func(ctx context.Context) error {
			_, err := snapshots.Snapshot(ctx)
			return err
		})

	return &Context{
		Ctx:      ctx,
		DataDir:  dataDir,
		Location: loc,
		Auth:     auth,
		Local:    local,
		Backups:  snapshots,
		Resolver: resolver,
		Out:      os.Stdout,
		Confirm:  HuhConfirm,
	}
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.Out, args...)
}

// SessionConfig returns the backend settings for session.Open.
func (c *Context) SessionConfig() session.Config {
	return session.Config{
		Local:    c.Local,
		DBURL:    c.DBURL,
		Location: c.Location,
	}
}

// OpenSession resolves the identity and opens its backend.
func (c *Context) OpenSession() (*session.Session, error) {
	return session.Open(c.Ctx, c.SessionConfig(), c.Resolver)
}

// HuhConfirm asks on the terminal with a huh confirm prompt.
func HuhConfirm(title, description string) (bool, error) {
	var ok bool
	confirm := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok)
	err := huh.NewForm(huh.NewGroup(confirm)).WithTheme(huh.ThemeDracula()).Run()
	return ok, err
}
