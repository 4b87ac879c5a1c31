// Package ratetable resolves date-ranged tax schedules such as the historic
// SDLT bands and the buy-to-let surcharge.
package ratetable

import (
	"fmt"
	"time"

	"github.com/iwvelando/property-forecast/pkg/datetime"
)

// NoApplicableRateError means a lookup date falls outside every period of a
// table. For the built-in tables this indicates missing rate data.
type NoApplicableRateError struct {
	Table string
	Date  time.Time
}

func (e *NoApplicableRateError) Error() string {
	return fmt.Sprintf("no applicable %s rates for %s", e.Table, datetime.Format(e.Date))
}

// Period holds the value in force from From to To inclusive.
type Period[T any] struct {
	From  time.Time
	To    time.Time
	Value T
}

// Table is an ordered sequence of contiguous, non-overlapping periods.
type Table[T any] struct {
	Name    string
	Periods []Period[T]
}

// Resolve returns the unique period containing date.
func (t Table[T]) Resolve(date time.Time) (Period[T], error) {
	for _, period := range t.Periods {
		if datetime.WithinRange(date, period.From, period.To) {
			return period, nil
		}
	}
	return Period[T]{}, &NoApplicableRateError{Table: t.Name, Date: date}
}

// Validate checks that periods are ordered and that each one starts the day
// after the previous one ends, leaving no gaps or overlaps.
func (t Table[T]) Validate() error {
	if len(t.Periods) == 0 {
		return fmt.Errorf("%s: table has no periods", t.Name)
	}
	for i, period := range t.Periods {
		if period.To.Before(period.From) {
			return fmt.Errorf("%s: period %d ends %s before it starts %s",
				t.Name, i+1, datetime.Format(period.To), datetime.Format(period.From))
		}
		if i == 0 {
			continue
		}
		expected := datetime.NextDay(t.Periods[i-1].To)
		if !datetime.Day(period.From).Equal(expected) {
			return fmt.Errorf("%s: period %d starts %s, expected %s",
				t.Name, i+1, datetime.Format(period.From), datetime.Format(expected))
		}
	}
	return nil
}

// Coverage returns the first and last dates the table covers.
func (t Table[T]) Coverage() (time.Time, time.Time) {
	if len(t.Periods) == 0 {
		return time.Time{}, time.Time{}
	}
	return t.Periods[0].From, t.Periods[len(t.Periods)-1].To
}

func period[T any](from, to string, value T) Period[T] {
	return Period[T]{From: datetime.MustParseDate(from), To: datetime.MustParseDate(to), Value: value}
}
