package postgres

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitual/internal/models"
)

func (s *Store) CountHabits(ctx context.Context, owner string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM habits WHERE user_id = $1", owner).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count habits: %w", err)
	}
	return count, nil
}

func (s *Store) InsertHabit(ctx context.Context, habit models.Habit) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO habits (id, name, description, frequency, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		habit.ID, habit.Name, habit.Description, string(habit.Frequency), habit.UserID, habit.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert habit: %w", err)
	}
	return nil
}

func (s *Store) ListHabits(ctx context.Context, owner string) ([]models.Habit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, frequency, user_id, created_at
		FROM habits
		WHERE user_id = $1
		ORDER BY created_at DESC, id`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query habits: %w", err)
	}
	defer rows.Close()

	habits := []models.Habit{}
	for rows.Next() {
		var h models.Habit
		var frequency string
		if err := rows.Scan(&h.ID, &h.Name, &h.Description, &frequency, &h.UserID, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		h.Frequency = models.Frequency(frequency)
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate habits: %w", err)
	}
	return habits, nil
}
