// Package session binds the resolved identity to a storage backend once per
// session and hands out a tracker for that owner.
package session

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/identity"
	"github.com/julianstephens/habitual/internal/keyring"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/storage/postgres"
	"github.com/julianstephens/habitual/internal/tracker"
)

// Config selects and configures the backends.
type Config struct {
	// Local is the guest store. The resolver reads guest state from it too,
	// so the session never closes it.
	Local storage.Provider
	// DBURL is the remote connection string. When empty the keyring is tried.
	DBURL    string
	Location *time.Location
	// Remote overrides the remote backend, mainly for tests.
	Remote storage.Provider
}

// Session is one identity bound to one backend.
type Session struct {
	Identity identity.Identity
	Tracker  *tracker.Service

	store storage.Provider
	owned bool
}

// Open resolves the identity and picks the backend for it.
func Open(ctx context.Context, cfg Config, resolver *identity.Resolver) (*Session, error) {
	id, err := resolver.CurrentIdentity(ctx)
	if err != nil {
		return nil, err
	}
	return OpenFor(ctx, cfg, id)
}

// OpenFor binds an already resolved identity.
func OpenFor(ctx context.Context, cfg Config, id identity.Identity) (*Session, error) {
	switch id.Kind {
	case identity.KindGuest:
		if cfg.Local == nil {
			return nil, fmt.Errorf("local store not configured")
		}
		logger.Debug("session opened", "identity", id.Kind.String(), "backend", cfg.Local.Describe())
		return &Session{
			Identity: id,
			Tracker:  tracker.New(cfg.Local, "", cfg.Location),
			store:    cfg.Local,
		}, nil

	case identity.KindAuthenticated:
		remote := cfg.Remote
		owned := false
		if remote == nil {
			connStr, err := ResolveDBURL(cfg.DBURL)
			if err != nil {
				return nil, err
			}
			store := postgres.New(connStr)
			if err := store.Load(ctx); err != nil {
				return nil, errors.StoreFailure("open session", "Failed to connect to the habit database", err)
			}
			remote = store
			owned = true
		}
		logger.Debug("session opened", "identity", id.Kind.String(), "backend", remote.Describe())
		return &Session{
			Identity: id,
			Tracker:  tracker.New(remote, id.UserID, cfg.Location),
			store:    remote,
			owned:    owned,
		}, nil

	default:
		return nil, errors.AuthRequired("open session")
	}
}

// ResolveDBURL picks the remote connection string from the flag or the
// keyring and rejects embedded passwords.
func ResolveDBURL(flagValue string) (string, error) {
	connStr := flagValue
	if connStr == "" {
		stored, err := keyring.GetConnectionString()
		if stderrors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("no remote database configured: pass --db-url, set HABITUAL_DB_URL or run 'habitual config set-db-url'")
		}
		if err != nil {
			return "", err
		}
		// Keyring storage is encrypted, so embedded credentials are allowed there.
		return stored, nil
	}
	if err := postgres.ValidateConnString(connStr); err != nil {
		return "", err
	}
	return connStr, nil
}

// Store returns the backend this session writes to.
func (s *Session) Store() storage.Provider { return s.store }

// Close releases the remote backend. The shared local store stays open.
func (s *Session) Close() error {
	if s.owned && s.store != nil {
		return s.store.Close()
	}
	return nil
}
