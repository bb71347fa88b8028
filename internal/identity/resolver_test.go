package identity

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/habitual/internal/storage/sqlite"
)

// fakeAuth accepts a fixed set of tokens.
type fakeAuth struct {
	tokens map[string]User
}

func (f *fakeAuth) SignInWithPassword(_ context.Context, email, password string) (Session, error) {
	if password != "correct" {
		return Session{}, stderrors.New("Invalid login credentials")
	}
	return Session{AccessToken: "tok-" + email, User: User{ID: "id-" + email, Email: email}}, nil
}

func (f *fakeAuth) ValidateToken(_ context.Context, token string) (User, error) {
	if u, ok := f.tokens[token]; ok {
		return u, nil
	}
	if len(token) > 4 && token[:4] == "tok-" {
		return User{ID: "id-" + token[4:], Email: token[4:]}, nil
	}
	return User{}, stderrors.New("invalid token")
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func setupResolver(t *testing.T) (*Resolver, *sqlite.Store, *clock) {
	t.Helper()
	gokeyring.MockInit()

	store := sqlite.NewStore(filepath.Join(t.TempDir(), "habitual.db"))
	require.NoError(t, store.Init(context.Background()))
	t.Cleanup(func() { store.Close() })

	c := &clock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	auth := &fakeAuth{tokens: map[string]User{"pasted": {ID: "user-p", Email: "p@example.com"}}}
	r := NewResolver(auth, KeyringSessions(), store).WithClock(c.now)
	return r, store, c
}

func TestCurrentIdentityNone(t *testing.T) {
	r, _, _ := setupResolver(t)
	id, err := r.CurrentIdentity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, KindNone, id.Kind)
}

func TestGuestPromptAfterThreeDays(t *testing.T) {
	ctx := context.Background()
	r, _, c := setupResolver(t)

	id, err := r.StartGuest(ctx)
	require.NoError(t, err)
	assert.True(t, id.IsGuest())
	require.NotNil(t, id.GuestSince)

	tests := []struct {
		elapsed time.Duration
		want    bool
	}{
		{elapsed: 0, want: false},
		{elapsed: 71 * time.Hour, want: false},
		{elapsed: 72 * time.Hour, want: true},
		{elapsed: 240 * time.Hour, want: true},
	}
	start := c.t
	for _, tt := range tests {
		c.t = start.Add(tt.elapsed)
		got, err := r.ShouldPromptSignUp(ctx)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "after %v", tt.elapsed)
	}

	days, err := r.DaysSinceGuestStart(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, days, 0.0001)

	r.DismissSignUp()
	got, err := r.ShouldPromptSignUp(ctx)
	require.NoError(t, err)
	assert.False(t, got, "dismissed for this process")
}

func TestStartGuestKeepsOriginalStart(t *testing.T) {
	ctx := context.Background()
	r, _, c := setupResolver(t)
	first := c.t

	_, err := r.StartGuest(ctx)
	require.NoError(t, err)
	c.t = c.t.Add(48 * time.Hour)
	_, err = r.StartGuest(ctx)
	require.NoError(t, err)

	start, err := r.GuestTrialStartDate(ctx)
	require.NoError(t, err)
	require.NotNil(t, start)
	assert.True(t, first.Equal(*start))
}

func TestSignInClearsGuest(t *testing.T) {
	ctx := context.Background()
	r, store, c := setupResolver(t)

	_, err := r.StartGuest(ctx)
	require.NoError(t, err)
	c.t = c.t.Add(96 * time.Hour)

	id, err := r.SignIn(ctx, "ada@example.com", "correct")
	require.NoError(t, err)
	assert.True(t, id.IsAuthenticated())
	assert.Equal(t, "id-ada@example.com", id.UserID)

	start, err := store.TrialStart(ctx)
	require.NoError(t, err)
	assert.Nil(t, start, "guest records are discarded on sign in")

	id, err = r.CurrentIdentity(ctx)
	require.NoError(t, err)
	assert.True(t, id.IsAuthenticated())
	assert.False(t, id.IsGuest())

	prompt, err := r.ShouldPromptSignUp(ctx)
	require.NoError(t, err)
	assert.False(t, prompt)
}

func TestSignInFailureKeepsGuest(t *testing.T) {
	ctx := context.Background()
	r, _, _ := setupResolver(t)
	_, err := r.StartGuest(ctx)
	require.NoError(t, err)

	_, err = r.SignIn(ctx, "ada@example.com", "wrong")
	require.Error(t, err)

	id, err := r.CurrentIdentity(ctx)
	require.NoError(t, err)
	assert.True(t, id.IsGuest())
}

func TestSignInWithToken(t *testing.T) {
	ctx := context.Background()
	r, _, _ := setupResolver(t)

	id, err := r.SignInWithToken(ctx, "http://localhost:5173/#access_token=pasted&token_type=bearer")
	require.NoError(t, err)
	assert.Equal(t, "user-p", id.UserID)

	_, err = r.SignInWithToken(ctx, "not-a-token")
	assert.Error(t, err)
}

func TestInvalidStoredTokenCountsAsAbsent(t *testing.T) {
	ctx := context.Background()
	r, _, _ := setupResolver(t)
	require.NoError(t, gokeyring.Set("habitual", "session-token", `{"access_token":"revoked"}`))

	id, err := r.CurrentIdentity(ctx)
	require.NoError(t, err)
	assert.Equal(t, KindNone, id.Kind)
}

func TestExpiredSessionCountsAsAbsent(t *testing.T) {
	ctx := context.Background()
	r, _, c := setupResolver(t)

	_, err := r.SignIn(ctx, "ada@example.com", "correct")
	require.NoError(t, err)
	require.NoError(t, gokeyring.Set("habitual", "session-token",
		`{"access_token":"tok-ada@example.com","expires_at":"2024-02-01T00:00:00Z"}`))

	id, err := r.CurrentIdentity(ctx)
	require.NoError(t, err)
	assert.Equal(t, KindNone, id.Kind, "expired at %v", c.t)
}

func TestSignOut(t *testing.T) {
	ctx := context.Background()

	t.Run("guest", func(t *testing.T) {
		r, store, _ := setupResolver(t)
		_, err := r.StartGuest(ctx)
		require.NoError(t, err)

		require.NoError(t, r.SignOut(ctx))
		start, err := store.TrialStart(ctx)
		require.NoError(t, err)
		assert.Nil(t, start)
	})

	t.Run("authenticated", func(t *testing.T) {
		r, _, _ := setupResolver(t)
		_, err := r.SignIn(ctx, "ada@example.com", "correct")
		require.NoError(t, err)

		require.NoError(t, r.SignOut(ctx))
		id, err := r.CurrentIdentity(ctx)
		require.NoError(t, err)
		assert.Equal(t, KindNone, id.Kind)
	})

	t.Run("nobody", func(t *testing.T) {
		r, _, _ := setupResolver(t)
		assert.NoError(t, r.SignOut(ctx))
	})
}

func TestGuestSnapshotBeforeReset(t *testing.T) {
	ctx := context.Background()

	t.Run("runs once per discarded guest", func(t *testing.T) {
		r, _, _ := setupResolver(t)
		calls := 0
		r.WithGuestSnapshot(func(context.Context) error {
			calls++
			return nil
		})

		_, err := r.SignIn(ctx, "ada@example.com", "correct")
		require.NoError(t, err)
		assert.Equal(t, 0, calls, "no guest data to snapshot")

		require.NoError(t, r.SignOut(ctx))
		_, err = r.StartGuest(ctx)
		require.NoError(t, err)
		require.NoError(t, r.SignOut(ctx))
		assert.Equal(t, 1, calls)
	})

	t.Run("failure does not block reset", func(t *testing.T) {
		r, store, _ := setupResolver(t)
		r.WithGuestSnapshot(func(context.Context) error {
			return stderrors.New("disk full")
		})
		_, err := r.StartGuest(ctx)
		require.NoError(t, err)

		_, err = r.SignIn(ctx, "ada@example.com", "correct")
		require.NoError(t, err)
		start, err := store.TrialStart(ctx)
		require.NoError(t, err)
		assert.Nil(t, start)
	})
}
