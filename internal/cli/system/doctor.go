package system

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/identity"
	"github.com/julianstephens/habitual/internal/keyring"
	"github.com/julianstephens/habitual/internal/session"
	"github.com/julianstephens/habitual/internal/storage/postgres"
	"github.com/julianstephens/habitual/internal/utils"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	report := func(name string, err error) bool {
		if err != nil {
			ctx.Printf("❌ %s: FAIL\n", name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
			return false
		}
		ctx.Printf("✓ %s: OK\n", name)
		return true
	}

	// Check 1: local database reachable
	dbReachable := report("Local database", checkLocalDB(ctx))

	// Check 2: schema version
	if dbReachable {
		report("Schema version", checkSchemaVersion(ctx))
	} else {
		ctx.Println("⊘ Schema version: SKIPPED (database not reachable)")
	}

	// Check 3: keyring (warning only, guests work without it)
	if keyring.IsAvailable() {
		ctx.Println("✓ OS keyring: OK")
	} else {
		ctx.Println("⚠ OS keyring: WARNING")
		ctx.Println("   The OS keyring is not available; sign-in and saved database URLs will not persist")
	}

	// Check 4: identity
	var id identity.Identity
	if dbReachable {
		var err error
		id, err = ctx.Resolver.CurrentIdentity(ctx.Ctx)
		if report("Identity", err) {
			ctx.Printf("   %s\n", describeIdentity(id))
		}
	} else {
		ctx.Println("⊘ Identity: SKIPPED (database not reachable)")
	}

	// Check 5: remote database, only for signed-in users
	if id.IsAuthenticated() {
		report("Remote database", checkRemoteDB(ctx))
	} else {
		ctx.Println("⊘ Remote database: SKIPPED (not signed in)")
	}

	// Check 6: guest snapshots (informational)
	if snapshots, err := ctx.Backups.List(); err != nil {
		ctx.Println("⚠ Guest snapshots: WARNING")
		ctx.Printf("   %v\n", err)
	} else {
		ctx.Printf("✓ Guest snapshots: %d in %s\n", len(snapshots), ctx.Backups.Dir())
	}

	// Check 7: clock and timezone
	report("Clock/timezone", checkClockTimezone(ctx))

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

func checkLocalDB(ctx *cli.Context) error {
	if err := ctx.Local.Load(ctx.Ctx); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if _, err := ctx.Local.TrialStart(ctx.Ctx); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, latest, err := ctx.Local.SchemaVersion(ctx.Ctx)
	if err != nil {
		return err
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkRemoteDB(ctx *cli.Context) error {
	connStr, err := session.ResolveDBURL(ctx.DBURL)
	if err != nil {
		return err
	}
	remote := postgres.New(connStr)
	defer remote.Close()
	return remote.Load(ctx.Ctx)
}

func checkClockTimezone(ctx *cli.Context) error {
	if ctx.Timezone != "" && !utils.ValidateTimezone(ctx.Timezone) {
		return fmt.Errorf("invalid timezone %q", ctx.Timezone)
	}
	now, err := utils.NowInTimezone(ctx.Timezone)
	if err != nil {
		return err
	}
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}

func describeIdentity(id identity.Identity) string {
	switch id.Kind {
	case identity.KindAuthenticated:
		return fmt.Sprintf("signed in as %s", id.Email)
	case identity.KindGuest:
		if id.GuestSince == nil {
			return "guest"
		}
		return fmt.Sprintf("guest since %s", id.GuestSince.Format(time.DateOnly))
	default:
		return "not signed in"
	}
}
