package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/cli/auth"
	"github.com/julianstephens/habitual/internal/cli/habits"
	"github.com/julianstephens/habitual/internal/cli/system"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/identity"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/utils"
)

var CLI struct {
	Version   kong.VersionFlag
	DataDir   string `help:"Directory for the local database and logs." type:"string" default:"${data_dir}" env:"HABITUAL_DATA_DIR"`
	DBURL     string `name:"db-url" help:"PostgreSQL connection string for signed-in users. Credentials must NOT be embedded; use .pgpass, PGPASSWORD or 'habitual config set-db-url'." env:"HABITUAL_DB_URL"`
	AuthURL   string `name:"auth-url" help:"Base URL of the auth provider." env:"HABITUAL_AUTH_URL"`
	AnonKey   string `name:"anon-key" help:"Public API key sent to the auth provider." env:"HABITUAL_ANON_KEY"`
	JWTSecret string `name:"jwt-secret" help:"Secret for verifying access tokens locally." env:"HABITUAL_JWT_SECRET"`
	Timezone  string `help:"IANA timezone used to decide what 'today' is." default:"${timezone}" env:"HABITUAL_TIMEZONE"`
	Debug     bool   `help:"Enable debug logging to stderr."`
	EnvFile   string `name:"env-file" help:"Environment file loaded before flags are resolved." default:"${env_file}"`

	Init    system.InitCmd    `cmd:"" help:"Initialize habitual storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Tui     system.TuiCmd     `cmd:"" help:"Launch the interactive session shell." default:"1"`
	Config  system.ConfigCmd  `cmd:"" help:"Show or change configuration."`
	Auth    auth.AuthCmd      `cmd:"" help:"Sign in, sign out or continue as a guest."`
	Habit   habits.HabitCmd   `cmd:"" help:"Create and track habits."`
}

// envFileArg finds --env-file before kong runs so the file can feed env tags.
func envFileArg(args []string) string {
	for i, arg := range args {
		if v, ok := strings.CutPrefix(arg, "--env-file="); ok {
			return v
		}
		if arg == "--env-file" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return constants.DefaultEnvFile
}

func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if stderrors.Is(err, fs.ErrNotExist) && path == constants.DefaultEnvFile {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func main() {
	if err := loadEnvFile(envFileArg(os.Args[1:])); err != nil {
		errors.Fatal(err)
	}

	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Track daily habits, streaks and weekly progress"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":  constants.Version,
			"data_dir": constants.DefaultDataDir,
			"timezone": constants.DefaultTimezone,
			"env_file": constants.DefaultEnvFile,
		},
	)
	command := strings.Fields(kctx.Command())[0]

	dataDir, err := utils.ExpandPath(CLI.DataDir)
	if err != nil {
		errors.Fatal(err)
	}

	if err := logger.Init(logger.Config{
		Debug:   CLI.Debug,
		DataDir: dataDir,
		Quiet:   command == "tui",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	loc, err := utils.LoadLocation(CLI.Timezone)
	if err != nil {
		errors.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCtx := cli.NewContext(ctx, dataDir, filepath.Join(dataDir, constants.DefaultDBFileName), loc, identity.AuthConfig{
		URL:       CLI.AuthURL,
		AnonKey:   CLI.AnonKey,
		JWTSecret: CLI.JWTSecret,
	})
	appCtx.DBURL = CLI.DBURL
	appCtx.Timezone = CLI.Timezone
	defer appCtx.Local.Close()

	// These commands report on or manage storage themselves.
	switch command {
	case "init", "migrate", "doctor":
	default:
		if err := appCtx.Local.Init(ctx); err != nil {
			stop()
			errors.Fatal(err)
		}
	}

	logger.Debug("running command", "command", kctx.Command(), "data_dir", dataDir, "timezone", loc.String())
	if err := kctx.Run(appCtx); err != nil {
		appCtx.Local.Close()
		stop()
		errors.Fatal(err)
	}
}
