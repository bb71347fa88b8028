package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
)

func (s *Store) loadHabits(ctx context.Context) ([]models.Habit, error) {
	raw, ok, err := s.getRecord(ctx, constants.RecordGuestHabits)
	if err != nil || !ok {
		return []models.Habit{}, err
	}
	var habits []models.Habit
	if err := json.Unmarshal([]byte(raw), &habits); err != nil {
		return nil, fmt.Errorf("failed to decode habits: %w", err)
	}
	return habits, nil
}

func (s *Store) saveHabits(ctx context.Context, habits []models.Habit) error {
	data, err := json.Marshal(habits)
	if err != nil {
		return fmt.Errorf("failed to encode habits: %w", err)
	}
	return s.putRecord(ctx, constants.RecordGuestHabits, string(data))
}

func (s *Store) loadCompletions(ctx context.Context) ([]models.Completion, error) {
	raw, ok, err := s.getRecord(ctx, constants.RecordGuestCompletions)
	if err != nil || !ok {
		return []models.Completion{}, err
	}
	var completions []models.Completion
	if err := json.Unmarshal([]byte(raw), &completions); err != nil {
		return nil, fmt.Errorf("failed to decode completions: %w", err)
	}
	return completions, nil
}

func (s *Store) saveCompletions(ctx context.Context, completions []models.Completion) error {
	data, err := json.Marshal(completions)
	if err != nil {
		return fmt.Errorf("failed to encode completions: %w", err)
	}
	return s.putRecord(ctx, constants.RecordGuestCompletions, string(data))
}

func (s *Store) CountHabits(ctx context.Context, owner string) (int, error) {
	habits, err := s.ListHabits(ctx, owner)
	if err != nil {
		return 0, err
	}
	return len(habits), nil
}

func (s *Store) InsertHabit(ctx context.Context, habit models.Habit) error {
	habits, err := s.loadHabits(ctx)
	if err != nil {
		return err
	}
	for _, h := range habits {
		if h.ID == habit.ID {
			return fmt.Errorf("habit %s already exists", habit.ID)
		}
	}
	return s.saveHabits(ctx, append(habits, habit))
}

func (s *Store) ListHabits(ctx context.Context, owner string) ([]models.Habit, error) {
	all, err := s.loadHabits(ctx)
	if err != nil {
		return nil, err
	}

	habits := make([]models.Habit, 0, len(all))
	for _, h := range all {
		if h.UserID == owner {
			habits = append(habits, h)
		}
	}
	sort.SliceStable(habits, func(i, j int) bool {
		if !habits[i].CreatedAt.Equal(habits[j].CreatedAt) {
			return habits[i].CreatedAt.After(habits[j].CreatedAt)
		}
		return habits[i].ID < habits[j].ID
	})
	return habits, nil
}

func (s *Store) GetCompletion(ctx context.Context, owner, habitID string, day models.Day) (models.Completion, error) {
	completions, err := s.loadCompletions(ctx)
	if err != nil {
		return models.Completion{}, err
	}
	for _, c := range completions {
		if c.UserID == owner && c.HabitID == habitID && c.Date.Equal(day) {
			return c, nil
		}
	}
	return models.Completion{}, storage.ErrNotFound
}

// UpsertCompletion replaces the record for (HabitID, Date) in place, or
// appends it when none exists.
func (s *Store) UpsertCompletion(ctx context.Context, c models.Completion) error {
	completions, err := s.loadCompletions(ctx)
	if err != nil {
		return err
	}

	replaced := false
	for i := range completions {
		if completions[i].HabitID == c.HabitID && completions[i].Date.Equal(c.Date) {
			c.ID = completions[i].ID
			completions[i] = c
			replaced = true
			break
		}
	}
	if !replaced {
		completions = append(completions, c)
	}
	return s.saveCompletions(ctx, completions)
}

func (s *Store) ListCompletions(ctx context.Context, owner string, r *models.DateRange) ([]models.Completion, error) {
	all, err := s.loadCompletions(ctx)
	if err != nil {
		return nil, err
	}

	completions := make([]models.Completion, 0, len(all))
	for _, c := range all {
		if c.UserID != owner {
			continue
		}
		if r != nil && !r.Contains(c.Date) {
			continue
		}
		completions = append(completions, c)
	}
	sort.SliceStable(completions, func(i, j int) bool {
		if !completions[i].Date.Equal(completions[j].Date) {
			return completions[i].Date.After(completions[j].Date)
		}
		return completions[i].HabitID < completions[j].HabitID
	})
	return completions, nil
}
