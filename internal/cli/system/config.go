package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/keyring"
	"github.com/julianstephens/habitual/internal/storage/postgres"
)

type ConfigCmd struct {
	Show       ConfigShowCmd       `cmd:"" default:"1" help:"Show the active configuration."`
	SetDbUrl   ConfigSetDBURLCmd   `cmd:"" name:"set-db-url" help:"Store the remote connection string in the OS keyring."`
	ClearDbUrl ConfigClearDBURLCmd `cmd:"" name:"clear-db-url" help:"Remove the remote connection string from the OS keyring."`
}

type ConfigSetDBURLCmd struct {
	URL string `arg:"" help:"PostgreSQL connection string."`
}

func (c *ConfigSetDBURLCmd) Run(ctx *cli.Context) error {
	if err := postgres.ValidateConnString(c.URL); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		// The keyring is encrypted, so embedded credentials are allowed there.
		ctx.Println("⚠ Warning: Connection string contains embedded credentials.")
		ctx.Println("  It will be stored as-is in the encrypted OS keyring.")
	}

	if err := keyring.SetConnectionString(c.URL); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}

	ctx.Println("✓ Connection string stored in OS keyring")
	return nil
}

type ConfigClearDBURLCmd struct{}

func (c *ConfigClearDBURLCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring")
		}
		return fmt.Errorf("failed to delete connection string from keyring: %w", err)
	}
	ctx.Println("✓ Connection string deleted from OS keyring")
	return nil
}

type ConfigShowCmd struct{}

func (c *ConfigShowCmd) Run(ctx *cli.Context) error {
	ctx.Printf("Data directory: %s\n", ctx.DataDir)
	ctx.Printf("Local database: %s\n", ctx.Local.Describe())
	ctx.Printf("Timezone:       %s\n", ctx.Location.String())

	authURL := ctx.Auth.URL
	if authURL == "" {
		authURL = "(not configured)"
	}
	ctx.Printf("Auth provider:  %s\n", authURL)

	dbURL, source := ctx.DBURL, "flag"
	if dbURL == "" {
		stored, err := keyring.GetConnectionString()
		switch {
		case err == nil:
			dbURL, source = stored, "keyring"
		case errors.Is(err, keyring.ErrNotFound):
			source = ""
		default:
			source = "keyring unavailable"
		}
	}
	if dbURL == "" {
		if source == "" {
			source = "not configured"
		}
		ctx.Printf("Remote DB URL:  (%s)\n", source)
		return nil
	}
	ctx.Printf("Remote DB URL:  %s (%s)\n", maskPassword(dbURL), source)
	return nil
}

// maskPassword hides the password in URL and key=value connection strings.
func maskPassword(connStr string) string {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		idx := strings.Index(connStr, "://")
		rest := connStr[idx+3:]
		if at := strings.LastIndex(rest, "@"); at != -1 {
			userInfo := rest[:at]
			if colon := strings.Index(userInfo, ":"); colon != -1 {
				return connStr[:idx+3] + userInfo[:colon] + ":****" + rest[at:]
			}
		}
		return connStr
	}

	fields := strings.Fields(connStr)
	for i, f := range fields {
		if strings.HasPrefix(strings.ToLower(f), "password=") {
			fields[i] = "password=****"
		}
	}
	return strings.Join(fields, " ")
}
