package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"

	pq "github.com/lib/pq"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/migration"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/storage/migrations"
)

// Store is the remote backend for authenticated users. Every query is
// filtered by the owner's user id.
type Store struct {
	connStr string
	db      *sql.DB
}

var (
	_ storage.Provider = (*Store)(nil)
	_ storage.Migrator = (*Store)(nil)
)

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

func New(connStr string) *Store {
	return &Store{connStr: connStr}
}

// NewWithDB wraps an already opened database. Init and Load skip dialing.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// IsConnString reports whether s looks like a Postgres URL rather than a file path.
func IsConnString(s string) bool {
	return strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://")
}

// hasSSLMode checks if the connection string contains an sslmode parameter key (case-insensitive).
// It supports both URL-style and DSN-style connection strings.
func hasSSLMode(connStr string) bool {
	if u, err := url.Parse(connStr); err == nil && u.Scheme != "" {
		for key := range u.Query() {
			if strings.EqualFold(key, "sslmode") {
				return true
			}
		}
	}

	for _, part := range strings.Fields(connStr) {
		key, _, ok := strings.Cut(part, "=")
		if ok && strings.EqualFold(key, "sslmode") {
			return true
		}
	}
	return false
}

// ValidateConnString checks that connStr is a usable PostgreSQL connection
// string (URI or DSN) that carries no password. Credentials belong in
// .pgpass, PGPASSWORD or the OS keyring.
func ValidateConnString(connStr string) error {
	if strings.TrimSpace(connStr) == "" {
		return fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}

	if _, err := pq.NewConnector(connStr); err != nil {
		return fmt.Errorf("%w: invalid connection string format: %v", ErrInvalidConnectionString, err)
	}

	if IsConnString(connStr) {
		parsedURL, err := url.Parse(connStr)
		if err != nil {
			return fmt.Errorf("%w: failed to parse connection URL: %v", ErrInvalidConnectionString, err)
		}
		if _, isSet := parsedURL.User.Password(); isSet {
			return ErrEmbeddedCredentials
		}
		if parsedURL.Host == "" && parsedURL.User == nil && (parsedURL.Path == "" || parsedURL.Path == "/") {
			return fmt.Errorf("%w: connection URL is incomplete", ErrInvalidConnectionString)
		}
		return nil
	}

	for _, pair := range strings.Fields(connStr) {
		key, _, ok := strings.Cut(pair, "=")
		if ok && strings.EqualFold(strings.TrimSpace(key), "password") {
			return ErrEmbeddedCredentials
		}
	}
	return nil
}

func (s *Store) open(ctx context.Context) error {
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(constants.PostgresMaxOpenConns)
	db.SetMaxIdleConns(constants.PostgresMaxIdleConns)
	db.SetConnMaxLifetime(constants.PostgresConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasSSLMode(s.connStr) {
			return fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
		}
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	s.db = db
	return nil
}

// Init connects and applies any pending migrations.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.Migrate(ctx, func(msg string) {
		logger.Info(msg, "backend", "postgres")
	}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Migrate applies pending migrations, reporting each one through logFn.
func (s *Store) Migrate(ctx context.Context, logFn func(string)) (int, error) {
	if err := s.open(ctx); err != nil {
		return 0, err
	}
	runner, err := s.runner()
	if err != nil {
		return 0, err
	}
	return runner.Apply(ctx, logFn)
}

// Load connects and checks the schema is not newer than this build.
func (s *Store) Load(ctx context.Context) error {
	if err := s.open(ctx); err != nil {
		return err
	}
	runner, err := s.runner()
	if err != nil {
		return err
	}
	st, err := runner.Status(ctx)
	if err != nil {
		return err
	}
	if st.Pending() {
		return fmt.Errorf("database schema is at version %d, expected %d: run '%s migrate'", st.Current, st.Latest, constants.AppName)
	}
	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// Describe returns a non-sensitive identifier instead of the connection string.
func (s *Store) Describe() string {
	return "postgresql"
}

func (s *Store) SchemaVersion(ctx context.Context) (int, int, error) {
	if s.db == nil {
		return 0, 0, fmt.Errorf("database not open")
	}
	runner, err := s.runner()
	if err != nil {
		return 0, 0, err
	}
	st, err := runner.Status(ctx)
	return st.Current, st.Latest, err
}

func (s *Store) runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		return nil, fmt.Errorf("failed to access postgres migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS), nil
}
