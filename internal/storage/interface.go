package storage

import (
	"context"
	"errors"
	"time"

	"github.com/julianstephens/habitual/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Provider is the storage port shared by the guest and remote backends.
// Every query is scoped to an owner id; guests use the empty owner.
type Provider interface {
	// Lifecycle
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	Close() error

	// Habits
	CountHabits(ctx context.Context, owner string) (int, error)
	InsertHabit(ctx context.Context, habit models.Habit) error
	// ListHabits returns the owner's habits, most recently created first.
	ListHabits(ctx context.Context, owner string) ([]models.Habit, error)

	// Completions
	// GetCompletion returns ErrNotFound when no record exists for (habitID, day).
	GetCompletion(ctx context.Context, owner, habitID string, day models.Day) (models.Completion, error)
	// UpsertCompletion writes c, replacing any record with the same (HabitID, Date).
	UpsertCompletion(ctx context.Context, c models.Completion) error
	// ListCompletions returns the owner's completions, newest date first.
	// A nil range means all history.
	ListCompletions(ctx context.Context, owner string, r *models.DateRange) ([]models.Completion, error)

	// Utils
	Describe() string
	SchemaVersion(ctx context.Context) (current, latest int, err error)
}

// Migrator is implemented by backends with a versioned schema.
type Migrator interface {
	// Migrate applies pending migrations and returns how many ran.
	Migrate(ctx context.Context, logFn func(string)) (int, error)
}

// GuestState is implemented by the local backend, which also remembers when
// the guest trial began.
type GuestState interface {
	// TrialStart returns nil when no trial has been started.
	TrialStart(ctx context.Context) (*time.Time, error)
	// StartTrial records start if unset and creates the empty collections.
	StartTrial(ctx context.Context, start time.Time) error
	// Reset deletes every guest record.
	Reset(ctx context.Context) error
}
