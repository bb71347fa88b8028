// Package tracker owns the habit catalog and completion log rules on top of a
// storage.Provider: validation, the per-owner cap and today-only toggling.
package tracker

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/validation"
)

const (
	msgCreateFailed = "Failed to create habit"
	msgToggleFailed = "Failed to update habit completion"
	msgFetchFailed  = "Failed to fetch habits"
)

// Service is bound to a single owner for its lifetime.
type Service struct {
	store storage.Provider
	owner string
	loc   *time.Location
	now   func() time.Time
}

// New returns a Service for owner. Guests use the empty owner id.
func New(store storage.Provider, owner string, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		store: store,
		owner: owner,
		loc:   loc,
		now:   time.Now,
	}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Owner() string { return s.owner }

// Today is the owner's current local date.
func (s *Service) Today() models.Day {
	return models.DayOf(s.now().In(s.loc))
}

func (s *Service) Location() *time.Location { return s.loc }

func storeFailure(op, msg string, err error) error {
	logger.Error(msg, "op", op, "error", err)
	return errors.StoreFailure(op, msg, err)
}

// CreateHabit validates locally, enforces the per-owner cap and inserts.
// Invalid input never reaches the store.
func (s *Service) CreateHabit(ctx context.Context, name, description string) (models.Habit, error) {
	const op = "create habit"

	if err := validation.ValidateHabit(name, description); err != nil {
		return models.Habit{}, err
	}

	count, err := s.store.CountHabits(ctx, s.owner)
	if err != nil {
		return models.Habit{}, storeFailure(op, msgCreateFailed, err)
	}
	if count >= constants.MaxHabitsPerOwner {
		return models.Habit{}, errors.LimitExceeded(op)
	}

	habit := models.Habit{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		Frequency:   models.FrequencyDaily,
		UserID:      s.owner,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.InsertHabit(ctx, habit); err != nil {
		return models.Habit{}, storeFailure(op, msgCreateFailed, err)
	}

	logger.Info("habit created", "habit_id", habit.ID, "backend", s.store.Describe())
	return habit, nil
}

// ListHabits returns the owner's habits, most recently created first.
func (s *Service) ListHabits(ctx context.Context) ([]models.Habit, error) {
	habits, err := s.store.ListHabits(ctx, s.owner)
	if err != nil {
		return nil, storeFailure("list habits", msgFetchFailed, err)
	}
	return habits, nil
}

// FindHabit resolves ref as an id, then as a case-insensitive name.
func (s *Service) FindHabit(ctx context.Context, ref string) (models.Habit, error) {
	habits, err := s.ListHabits(ctx)
	if err != nil {
		return models.Habit{}, err
	}
	for _, h := range habits {
		if h.ID == ref {
			return h, nil
		}
	}
	for _, h := range habits {
		if strings.EqualFold(h.Name, ref) {
			return h, nil
		}
	}
	return models.Habit{}, errors.Validation("find habit", "habit not found")
}

func (s *Service) ownHabit(ctx context.Context, op, habitID string) error {
	habits, err := s.store.ListHabits(ctx, s.owner)
	if err != nil {
		return storeFailure(op, msgToggleFailed, err)
	}
	for _, h := range habits {
		if h.ID == habitID {
			return nil
		}
	}
	return errors.Validation(op, "habit not found")
}

func (s *Service) completion(ctx context.Context, habitID string, day models.Day) (*models.Completion, error) {
	c, err := s.store.GetCompletion(ctx, s.owner, habitID, day)
	if stderrors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// IsCompleted reports whether habitID has a completed record on day.
func (s *Service) IsCompleted(ctx context.Context, habitID string, day models.Day) (bool, error) {
	c, err := s.completion(ctx, habitID, day)
	if err != nil {
		return false, storeFailure("is completed", msgFetchFailed, err)
	}
	return c != nil && c.Completed, nil
}

// NeedsConfirmation reports whether toggling would un-complete the habit.
// Callers must confirm before calling Toggle in that case.
func (s *Service) NeedsConfirmation(ctx context.Context, habitID string, day models.Day) (bool, error) {
	return s.IsCompleted(ctx, habitID, day)
}

// Toggle flips today's completion for habitID, creating it as completed when
// absent. Only today may be toggled.
func (s *Service) Toggle(ctx context.Context, habitID string, day models.Day) (models.Completion, error) {
	const op = "toggle completion"

	if !day.Equal(s.Today()) {
		return models.Completion{}, errors.Validation(op, "Only today's completion can be changed")
	}
	if err := s.ownHabit(ctx, op, habitID); err != nil {
		return models.Completion{}, err
	}

	current, err := s.completion(ctx, habitID, day)
	if err != nil {
		return models.Completion{}, storeFailure(op, msgToggleFailed, err)
	}

	var next models.Completion
	switch {
	case current == nil:
		next = models.Completion{
			ID:          uuid.New().String(),
			HabitID:     habitID,
			UserID:      s.owner,
			Date:        day,
			CompletedAt: s.now().UTC(),
			Completed:   true,
		}
	case current.Completed:
		next = *current
		next.Completed = false
	default:
		next = *current
		next.Completed = true
		next.CompletedAt = s.now().UTC()
	}

	if err := s.store.UpsertCompletion(ctx, next); err != nil {
		return models.Completion{}, storeFailure(op, msgToggleFailed, err)
	}

	logger.Debug("completion toggled", "habit_id", habitID, "date", day.String(), "completed", next.Completed)
	return next, nil
}

// ListCompletions returns the owner's completions, newest date first.
func (s *Service) ListCompletions(ctx context.Context, r *models.DateRange) ([]models.Completion, error) {
	completions, err := s.store.ListCompletions(ctx, s.owner, r)
	if err != nil {
		return nil, storeFailure("list completions", msgFetchFailed, err)
	}
	return completions, nil
}
