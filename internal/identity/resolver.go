// Package identity decides who is using the app: an authenticated account, a
// guest on this device, or nobody yet.
package identity

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/keyring"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/storage"
)

type Kind int

const (
	KindNone Kind = iota
	KindGuest
	KindAuthenticated
)

func (k Kind) String() string {
	switch k {
	case KindGuest:
		return "guest"
	case KindAuthenticated:
		return "authenticated"
	default:
		return "none"
	}
}

// Identity is exactly one of None, Guest or Authenticated.
type Identity struct {
	Kind       Kind
	UserID     string
	Email      string
	GuestSince *time.Time
}

func (i Identity) IsGuest() bool         { return i.Kind == KindGuest }
func (i Identity) IsAuthenticated() bool { return i.Kind == KindAuthenticated }

// SessionStore persists the serialized auth session.
type SessionStore interface {
	Get() (string, error)
	Set(string) error
	Delete() error
}

type keyringSessions struct{}

func (keyringSessions) Get() (string, error) { return keyring.GetSession() }
func (keyringSessions) Set(s string) error   { return keyring.SetSession(s) }
func (keyringSessions) Delete() error        { return keyring.DeleteSession() }

// KeyringSessions stores sessions in the OS keyring.
func KeyringSessions() SessionStore { return keyringSessions{} }

// Resolver combines the auth provider, the stored session and the local guest
// records. Sign-in clears guest records, so Guest and Authenticated never
// hold at the same time.
type Resolver struct {
	auth     Authenticator
	sessions SessionStore
	guest    storage.GuestState
	now      func() time.Time
	snapshot func(context.Context) error

	mu        sync.Mutex
	dismissed bool
}

func NewResolver(auth Authenticator, sessions SessionStore, guest storage.GuestState) *Resolver {
	return &Resolver{
		auth:     auth,
		sessions: sessions,
		guest:    guest,
		now:      time.Now,
	}
}

// WithClock replaces the time source.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// WithGuestSnapshot runs fn before guest records are discarded. A failing
// snapshot is logged and does not block the reset.
func (r *Resolver) WithGuestSnapshot(fn func(context.Context) error) *Resolver {
	r.snapshot = fn
	return r
}

func (r *Resolver) resetGuest(ctx context.Context, op string) error {
	if r.snapshot != nil {
		if start, err := r.guest.TrialStart(ctx); err == nil && start != nil {
			if err := r.snapshot(ctx); err != nil {
				logger.Warn("guest snapshot failed", "error", err)
			}
		}
	}
	if err := r.guest.Reset(ctx); err != nil {
		return errors.StoreFailure(op, "Failed to clear guest data", err)
	}
	return nil
}

// storedSession returns the persisted session if it is still valid.
func (r *Resolver) storedSession(ctx context.Context) (*Session, error) {
	raw, err := r.sessions.Get()
	if stderrors.Is(err, keyring.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		logger.Warn("session lookup failed", "error", err)
		return nil, nil
	}

	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		logger.Warn("stored session is unreadable", "error", err)
		return nil, nil
	}
	if session.AccessToken == "" || session.Expired(r.now()) {
		logger.Debug("stored session expired")
		return nil, nil
	}

	user, err := r.auth.ValidateToken(ctx, session.AccessToken)
	if err != nil {
		logger.Debug("stored session rejected", "error", err)
		return nil, nil
	}
	session.User = user
	return &session, nil
}

// CurrentIdentity resolves the identity: a valid stored token wins, then a
// recorded guest trial, then none.
func (r *Resolver) CurrentIdentity(ctx context.Context) (Identity, error) {
	session, err := r.storedSession(ctx)
	if err != nil {
		return Identity{}, err
	}
	if session != nil {
		return Identity{Kind: KindAuthenticated, UserID: session.User.ID, Email: session.User.Email}, nil
	}

	start, err := r.guest.TrialStart(ctx)
	if err != nil {
		return Identity{}, errors.StoreFailure("resolve identity", "Failed to read guest data", err)
	}
	if start != nil {
		return Identity{Kind: KindGuest, GuestSince: start}, nil
	}
	return Identity{Kind: KindNone}, nil
}

// StartGuest records the trial start if unset and creates the empty guest
// collections.
func (r *Resolver) StartGuest(ctx context.Context) (Identity, error) {
	if err := r.guest.StartTrial(ctx, r.now()); err != nil {
		return Identity{}, errors.StoreFailure("start guest", "Failed to start guest mode", err)
	}
	logger.Info("guest mode started")
	return r.CurrentIdentity(ctx)
}

// GuestTrialStartDate returns nil when no guest trial is recorded.
func (r *Resolver) GuestTrialStartDate(ctx context.Context) (*time.Time, error) {
	start, err := r.guest.TrialStart(ctx)
	if err != nil {
		return nil, errors.StoreFailure("guest start date", "Failed to read guest data", err)
	}
	return start, nil
}

// DaysSinceGuestStart returns fractional days since the trial began, or 0
// when there is no trial.
func (r *Resolver) DaysSinceGuestStart(ctx context.Context) (float64, error) {
	start, err := r.GuestTrialStartDate(ctx)
	if err != nil || start == nil {
		return 0, err
	}
	return r.now().Sub(*start).Hours() / 24, nil
}

// ShouldPromptSignUp is true for guests at least three days in, unless the
// prompt was dismissed during this process.
func (r *Resolver) ShouldPromptSignUp(ctx context.Context) (bool, error) {
	r.mu.Lock()
	dismissed := r.dismissed
	r.mu.Unlock()
	if dismissed {
		return false, nil
	}

	id, err := r.CurrentIdentity(ctx)
	if err != nil || !id.IsGuest() {
		return false, err
	}
	days, err := r.DaysSinceGuestStart(ctx)
	if err != nil {
		return false, err
	}
	return days >= constants.GuestSignUpAfterDays, nil
}

// DismissSignUp hides the prompt until the next launch.
func (r *Resolver) DismissSignUp() {
	r.mu.Lock()
	r.dismissed = true
	r.mu.Unlock()
}

// SignIn uses the password grant. Guest data is discarded, not migrated.
func (r *Resolver) SignIn(ctx context.Context, email, password string) (Identity, error) {
	session, err := r.auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		logger.Warn("sign in failed", "error", err)
		return Identity{}, fmt.Errorf("sign in failed: %w", err)
	}
	return r.establish(ctx, session)
}

// SignInWithToken completes a redirect sign-in from a pasted access token or
// callback URL.
func (r *Resolver) SignInWithToken(ctx context.Context, input string) (Identity, error) {
	token, err := TokenFromCallback(input)
	if err != nil {
		return Identity{}, errors.Validation("sign in", "%s", err.Error())
	}
	user, err := r.auth.ValidateToken(ctx, token)
	if err != nil {
		logger.Warn("token rejected", "error", err)
		return Identity{}, fmt.Errorf("sign in failed: %w", err)
	}
	return r.establish(ctx, Session{AccessToken: token, User: user})
}

func (r *Resolver) establish(ctx context.Context, session Session) (Identity, error) {
	data, err := json.Marshal(session)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to encode session: %w", err)
	}
	if err := r.sessions.Set(string(data)); err != nil {
		return Identity{}, fmt.Errorf("failed to save session: %w", err)
	}
	if err := r.resetGuest(ctx, "sign in"); err != nil {
		return Identity{}, err
	}

	r.mu.Lock()
	r.dismissed = false
	r.mu.Unlock()

	logger.Info("signed in", "user_id", session.User.ID)
	return Identity{Kind: KindAuthenticated, UserID: session.User.ID, Email: session.User.Email}, nil
}

// SignOut clears whichever identity is active. Guests lose their local data.
func (r *Resolver) SignOut(ctx context.Context) error {
	id, err := r.CurrentIdentity(ctx)
	if err != nil {
		return err
	}

	switch id.Kind {
	case KindGuest:
		if err := r.resetGuest(ctx, "sign out"); err != nil {
			return err
		}
	case KindAuthenticated:
		if err := r.sessions.Delete(); err != nil && !stderrors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("failed to clear session: %w", err)
		}
	}

	r.mu.Lock()
	r.dismissed = false
	r.mu.Unlock()

	logger.Info("signed out", "identity", id.Kind.String())
	return nil
}
