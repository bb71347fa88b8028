package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
)

func (s *Store) TrialStart(ctx context.Context) (*time.Time, error) {
	raw, ok, err := s.getRecord(ctx, constants.RecordGuestStartDate)
	if err != nil || !ok {
		return nil, err
	}
	start, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse guest start date: %w", err)
	}
	return &start, nil
}

func (s *Store) StartTrial(ctx context.Context, start time.Time) error {
	existing, err := s.TrialStart(ctx)
	if err != nil {
		return err
	}
	if existing == nil {
		if err := s.putRecord(ctx, constants.RecordGuestStartDate, start.UTC().Format(time.RFC3339)); err != nil {
			return err
		}
	}

	for _, key := range []string{constants.RecordGuestHabits, constants.RecordGuestCompletions} {
		_, ok, err := s.getRecord(ctx, key)
		if err != nil {
			return err
		}
		if !ok {
			if err := s.putRecord(ctx, key, "[]"); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) Reset(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM local_records WHERE key IN (?, ?, ?)",
		constants.RecordGuestStartDate, constants.RecordGuestHabits, constants.RecordGuestCompletions)
	if err != nil {
		return fmt.Errorf("failed to clear guest records: %w", err)
	}
	return nil
}
