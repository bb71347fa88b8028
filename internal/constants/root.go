package constants

import "time"

// SessionState represents the current state of the TUI application
type SessionState int

const (
	AppName            = "habitual"
	DisplayName        = "Habit Tracker"
	Version            = "v0.1.0"
	DefaultDataDir     = "~/.config/habitual"
	DefaultDBFileName  = "habitual.db"
	DefaultEnvFile     = ".env"
	DefaultTimezone    = "Local"
	KeyringUserDB      = "database-connection"
	KeyringUserSession = "session-token"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// ClockFormat is used for "completed at" labels
	ClockFormat = "3:04 PM"

	// Habit limits
	MaxHabitsPerOwner    = 10
	MinHabitNameLen      = 2
	MaxHabitNameLen      = 50
	MaxHabitDescLen      = 200
	ProgressWindowDays   = 7
	GuestSignUpAfterDays = 3

	// Local record keys for guest mode. Each holds a whole collection.
	RecordGuestStartDate   = "guest_start_date"
	RecordGuestHabits      = "guest_habits"
	RecordGuestCompletions = "guest_completions"

	// Remote pool settings
	PostgresMaxOpenConns    = 25
	PostgresMaxIdleConns    = 25
	PostgresConnMaxLifetime = 5 * time.Minute

	AuthRequestTimeout = 10 * time.Second

	// User-facing copy
	ConfirmUncheckTitle  = "Are you sure you want to revert your progress?"
	ConfirmUncheckDetail = "This action cannot be undone."
	SignUpPromptText     = "You've been using Habit Tracker for 3 days! Sign in to save your progress and access more features."
	GateText             = "Sign in to track your habits and sync across devices"
	EmptyHabitsText      = "No habits created yet. Start by creating a new habit above!"
	EmptyProgressText    = "No habits to track yet. Create a habit to see your progress!"
	HabitCreatedText     = "Habit created successfully!"
)

// Session States
const (
	StateGate SessionState = iota
	StateSignUpPrompt
	StateHabits
	StateProgress
	StateAddHabit
	StateSignIn
	StateConfirmUncheck
)
