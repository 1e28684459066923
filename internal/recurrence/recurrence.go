// Package recurrence resolves one-off and yearly calendar items into
// concrete instants in a single configured zone.
package recurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/Jymapas/SnakeFrogCalendarBot/internal/caltime"
)

// ErrInvalidDefinition marks an item whose stored recurrence cannot be
// resolved. Such items are skipped by callers, never resolved.
var ErrInvalidDefinition = errors.New("invalid recurrence definition")

type Kind int

const (
	OneOff Kind = iota + 1
	Yearly
)

func (k Kind) String() string {
	switch k {
	case OneOff:
		return "one-off"
	case Yearly:
		return "yearly"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Rule is a validated recurrence. Build it with NewOneOff or NewYearly.
type Rule struct {
	Kind Kind

	// OneOff
	At time.Time

	// Yearly
	Month     time.Month
	Day       int
	TimeOfDay time.Duration
	HasTime   bool

	AllDay bool
}

// NewOneOff describes an item occurring exactly once at the UTC instant at.
func NewOneOff(at time.Time, allDay bool) (Rule, error) {
	if at.IsZero() {
		return Rule{}, fmt.Errorf("%w: one-off item has no instant", ErrInvalidDefinition)
	}
	return Rule{Kind: OneOff, At: at.UTC(), AllDay: allDay}, nil
}

// NewYearly describes an item recurring every year on month/day. A nil
// timeOfDay (or allDay) makes the occurrence start at local midnight.
func NewYearly(month, day int, timeOfDay *time.Duration, allDay bool) (Rule, error) {
	if month < 1 || month > 12 {
		return Rule{}, fmt.Errorf("%w: month %d out of range 1-12", ErrInvalidDefinition, month)
	}
	if day < 1 || day > 31 {
		return Rule{}, fmt.Errorf("%w: day %d out of range 1-31", ErrInvalidDefinition, day)
	}
	r := Rule{Kind: Yearly, Month: time.Month(month), Day: day, AllDay: allDay}
	if timeOfDay != nil {
		if *timeOfDay < 0 || *timeOfDay >= 24*time.Hour {
			return Rule{}, fmt.Errorf("%w: time of day %s out of range", ErrInvalidDefinition, *timeOfDay)
		}
		r.TimeOfDay = *timeOfDay
		r.HasTime = true
	}
	return r, nil
}

// Timed reports whether the occurrence carries a meaningful time of day.
func (r Rule) Timed() bool {
	if r.AllDay {
		return false
	}
	return r.Kind == OneOff || r.HasTime
}

func (r Rule) wallTime() time.Duration {
	if r.Kind == Yearly && r.HasTime && !r.AllDay {
		return r.TimeOfDay
	}
	return 0
}

// DateIn returns the calendar date of a yearly rule in the given year.
// Days past the end of the month are clamped, so Feb 29 falls on Feb 28
// in non-leap years.
func (r Rule) DateIn(year int) caltime.Date {
	return caltime.NewDate(year, r.Month, r.Day)
}

// LocalIn returns the local start of a yearly rule in the given year.
func (r Rule) LocalIn(year int) caltime.LocalDateTime {
	return r.DateIn(year).At(r.wallTime())
}

// OccurrenceInYear resolves a yearly rule's occurrence in year against loc.
func OccurrenceInYear(r Rule, year int, loc *time.Location) time.Time {
	return caltime.ResolveLenient(r.LocalIn(year), loc)
}

// NextOccurrence returns the next occurrence of r relative to after.
//
// A one-off rule yields its instant while it is still in the future and
// nothing afterwards. A yearly rule yields this year's date when that date
// is today or later in loc, otherwise next year's; it never skips further
// than one year.
func NextOccurrence(r Rule, loc *time.Location, after time.Time) (time.Time, bool) {
	switch r.Kind {
	case OneOff:
		if r.At.After(after) {
			return r.At, true
		}
		return time.Time{}, false
	case Yearly:
		if loc == nil {
			loc = time.UTC
		}
		today := caltime.DateOf(after.In(loc))
		year := today.Year
		if r.DateIn(year).Before(today) {
			year++
		}
		return OccurrenceInYear(r, year, loc), true
	default:
		return time.Time{}, false
	}
}
