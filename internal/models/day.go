package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
)

// Day is a calendar date with no time-of-day or zone. Completions are keyed
// by Day in the owner's local timezone.
type Day struct {
	year  int
	month time.Month
	day   int
}

// NewDay builds a Day, normalizing out-of-range values the way time.Date does.
func NewDay(year int, month time.Month, day int) Day {
	return DayOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DayOf returns the calendar date of t in t's own location.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{year: y, month: m, day: d}
}

// Today returns the current date in loc.
func Today(loc *time.Location) Day {
	if loc == nil {
		loc = time.Local
	}
	return DayOf(time.Now().In(loc))
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(constants.DateFormat, s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return DayOf(t), nil
}

// MustParseDay is ParseDay for literals in tests and tables.
func MustParseDay(s string) Day {
	d, err := ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Day) IsZero() bool { return d.year == 0 && d.month == 0 && d.day == 0 }

func (d Day) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.year, d.month, d.day)
}

// Time returns midnight of d in loc.
func (d Day) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, loc)
}

func (d Day) utc() time.Time { return d.Time(time.UTC) }

func (d Day) Weekday() time.Weekday { return d.utc().Weekday() }

func (d Day) AddDays(n int) Day { return DayOf(d.utc().AddDate(0, 0, n)) }

// DaysSince returns the whole number of calendar days from o to d.
func (d Day) DaysSince(o Day) int {
	return int(d.utc().Sub(o.utc()).Hours() / 24)
}

func (d Day) Equal(o Day) bool  { return d == o }
func (d Day) Before(o Day) bool { return d.utc().Before(o.utc()) }
func (d Day) After(o Day) bool  { return d.utc().After(o.utc()) }

func (d Day) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Day) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Day{}
		return nil
	}
	parsed, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner. Postgres DATE columns arrive as time.Time.
func (d *Day) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Day{}
		return nil
	case time.Time:
		*d = DayOf(v)
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Day", src)
	}
}

func (d *Day) scanString(s string) error {
	if len(s) > len(constants.DateFormat) {
		s = s[:len(constants.DateFormat)]
	}
	parsed, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer.
func (d Day) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}
