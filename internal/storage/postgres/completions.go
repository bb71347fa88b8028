package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
)

const completionColumns = "id, habit_id, user_id, date, completed_at, completed"

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCompletion(row rowScanner) (models.Completion, error) {
	var c models.Completion
	err := row.Scan(&c.ID, &c.HabitID, &c.UserID, &c.Date, &c.CompletedAt, &c.Completed)
	return c, err
}

func (s *Store) GetCompletion(ctx context.Context, owner, habitID string, day models.Day) (models.Completion, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+completionColumns+" FROM habit_completions WHERE user_id = $1 AND habit_id = $2 AND date = $3",
		owner, habitID, day)

	c, err := scanCompletion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Completion{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Completion{}, fmt.Errorf("failed to get completion: %w", err)
	}
	return c, nil
}

// UpsertCompletion relies on UNIQUE(habit_id, date) so a second write for the
// same day updates the existing row.
func (s *Store) UpsertCompletion(ctx context.Context, c models.Completion) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO habit_completions (id, habit_id, user_id, date, completed_at, completed)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (habit_id, date) DO UPDATE SET
			completed = EXCLUDED.completed,
			completed_at = EXCLUDED.completed_at`,
		c.ID, c.HabitID, c.UserID, c.Date, c.CompletedAt, c.Completed)
	if err != nil {
		return fmt.Errorf("failed to upsert completion: %w", err)
	}
	return nil
}

func (s *Store) ListCompletions(ctx context.Context, owner string, r *models.DateRange) ([]models.Completion, error) {
	var b strings.Builder
	b.WriteString("SELECT " + completionColumns + " FROM habit_completions WHERE user_id = $1")
	args := []interface{}{owner}

	if r != nil {
		if !r.From.IsZero() {
			args = append(args, r.From)
			fmt.Fprintf(&b, " AND date >= $%d", len(args))
		}
		if !r.To.IsZero() {
			args = append(args, r.To)
			fmt.Fprintf(&b, " AND date <= $%d", len(args))
		}
	}
	b.WriteString(" ORDER BY date DESC, habit_id")

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query completions: %w", err)
	}
	defer rows.Close()

	completions := []models.Completion{}
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		completions = append(completions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate completions: %w", err)
	}
	return completions, nil
}
