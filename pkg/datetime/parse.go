// Package datetime provides date utility functions.
package datetime

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/property-forecast/pkg/constants"
)

const (
	// DateLayout is the format expected in config files and is also the output
	// date format.
	DateLayout = constants.DateLayout
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for rate tables and tests where the date string is known to
// be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// MustParseDate parses a date in DateLayout and panics on error.
func MustParseDate(dateStr string) time.Time {
	return MustParseTime(DateLayout, dateStr)
}

// ParseDate parses a date in DateLayout. Surrounding whitespace is ignored.
func ParseDate(dateStr string) (time.Time, error) {
	trimmed := strings.TrimSpace(dateStr)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("date is empty, expected format %s", DateLayout)
	}
	t, err := time.Parse(DateLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected format %s", dateStr, DateLayout)
	}
	return t, nil
}

// Day truncates a time to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WithinRange reports whether date falls on or between from and to, compared
// at day granularity.
func WithinRange(date, from, to time.Time) bool {
	day := Day(date)
	return !day.Before(Day(from)) && !day.After(Day(to))
}

// NextDay returns the calendar day following t.
func NextDay(t time.Time) time.Time {
	return Day(t).AddDate(0, 0, 1)
}

// Format renders a date in DateLayout.
func Format(t time.Time) string {
	return t.Format(DateLayout)
}
