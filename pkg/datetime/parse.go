// Package datetime provides date and time utility functions.
package datetime

import (
	"time"

	"github.com/iwvelando/loan-schedule/pkg/constants"
)

const (
	// DateLayout is the format expected in config files and is also the output
	// date format.
	DateLayout = constants.DateLayout

	hoursPerDay = 24
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(date string) (time.Time, error) {
	return time.Parse(DateLayout, date)
}

// Date returns a UTC midnight time for the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Truncate drops the time-of-day and location, keeping the calendar day.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return Date(y, m, d)
}

// AddDays offsets a date by a number of calendar days.
func AddDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}

// DaysBetween returns the number of calendar days from first to second.
func DaysBetween(first, second time.Time) int {
	return int(Truncate(second).Sub(Truncate(first)).Hours() / hoursPerDay)
}

// IsWeekend reports whether the date falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Format renders a date in the output layout.
func Format(t time.Time) string {
	return t.Format(DateLayout)
}
