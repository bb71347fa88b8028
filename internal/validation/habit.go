package validation

import (
	"fmt"
	"unicode/utf8"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/errors"
)

var (
	msgNameLength = fmt.Sprintf("Habit name must be between %d and %d characters", constants.MinHabitNameLen, constants.MaxHabitNameLen)
	msgDescLength = fmt.Sprintf("Description cannot exceed %d characters", constants.MaxHabitDescLen)
)

// ValidateHabitName checks the name length in characters. Whitespace counts.
func ValidateHabitName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < constants.MinHabitNameLen || n > constants.MaxHabitNameLen {
		return errors.Validation("validate habit", "%s", msgNameLength)
	}
	return nil
}

// ValidateHabitDescription checks the optional description length.
func ValidateHabitDescription(desc string) error {
	if utf8.RuneCountInString(desc) > constants.MaxHabitDescLen {
		return errors.Validation("validate habit", "%s", msgDescLength)
	}
	return nil
}

// ValidateHabit checks a new habit's fields, name first.
func ValidateHabit(name, desc string) error {
	if err := ValidateHabitName(name); err != nil {
		return err
	}
	return ValidateHabitDescription(desc)
}

// Counter renders the live "n/max characters" hint shown under form fields.
func Counter(s string, max int) string {
	return fmt.Sprintf("%d/%d characters", utf8.RuneCountInString(s), max)
}
