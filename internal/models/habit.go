package models

import "time"

// Frequency is how often a habit is expected. Only daily is supported.
type Frequency string

const FrequencyDaily Frequency = "daily"

// Habit is a practice the owner wants to do every day
type Habit struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Frequency   Frequency `json:"frequency"`
	UserID      string    `json:"user_id,omitempty"` // empty for guests
	CreatedAt   time.Time `json:"created_at"`
}

// Completion records whether a habit was done on a given day. There is at
// most one Completion per (HabitID, Date).
type Completion struct {
	ID          string    `json:"id"`
	HabitID     string    `json:"habit_id"`
	UserID      string    `json:"user_id"`
	Date        Day       `json:"date"`
	CompletedAt time.Time `json:"completed_at"`
	Completed   bool      `json:"completed"`
}

// Streak is derived from completion history and never persisted.
type Streak struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// HabitStatus is the list view's read model for one habit.
type HabitStatus struct {
	Habit  Habit
	Today  *Completion // nil when never toggled today
	Streak Streak
}

// CompletedToday reports whether today's record exists and is marked done.
func (s HabitStatus) CompletedToday() bool {
	return s.Today != nil && s.Today.Completed
}

// DayMark is one cell of the progress grid.
type DayMark struct {
	Day  Day  `json:"day"`
	Done bool `json:"done"`
}

// ProgressRow is a habit's fixed 7-day window, today first.
type ProgressRow struct {
	Habit  Habit     `json:"habit"`
	Window []DayMark `json:"window"`
	Streak int       `json:"streak"`
}

// Done reports whether d is marked in the window.
func (r ProgressRow) Done(d Day) bool {
	for _, m := range r.Window {
		if m.Day.Equal(d) {
			return m.Done
		}
	}
	return false
}

// DateRange bounds completion queries. Zero bounds are open.
type DateRange struct {
	From Day
	To   Day
}

// Contains reports whether d falls inside the range, inclusive.
func (r DateRange) Contains(d Day) bool {
	if !r.From.IsZero() && d.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && d.After(r.To) {
		return false
	}
	return true
}
