package tracker

import (
	"context"

	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/streak"
)

// Overview loads every habit with today's completion and its streak.
func (s *Service) Overview(ctx context.Context) ([]models.HabitStatus, error) {
	habits, err := s.ListHabits(ctx)
	if err != nil {
		return nil, err
	}
	completions, err := s.ListCompletions(ctx, nil)
	if err != nil {
		return nil, err
	}

	today := s.Today()
	statuses := make([]models.HabitStatus, 0, len(habits))
	for _, h := range habits {
		st := models.HabitStatus{
			Habit:  h,
			Streak: streak.ForHabit(h.ID, completions, today),
		}
		for i := range completions {
			if completions[i].HabitID == h.ID && completions[i].Date.Equal(today) {
				c := completions[i]
				st.Today = &c
				break
			}
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

// Progress loads the 7-day grid for every habit.
func (s *Service) Progress(ctx context.Context) ([]models.ProgressRow, error) {
	habits, err := s.ListHabits(ctx)
	if err != nil {
		return nil, err
	}
	today := s.Today()
	window := streak.Window(today)
	completions, err := s.ListCompletions(ctx, &window)
	if err != nil {
		return nil, err
	}
	return streak.ProgressGrid(habits, completions, today), nil
}
