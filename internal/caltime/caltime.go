// Package caltime holds zone-naive calendar values and the lenient
// conversion of local wall-clock times into instants.
package caltime

import (
	"fmt"
	"time"
)

// EndOfDay is the last representable time of day (23:59:59.999).
const EndOfDay = 24*time.Hour - time.Millisecond

// Date is a calendar date without a zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a date, clamping Day to the length of the month.
// Feb 29 in a non-leap year becomes Feb 28.
func NewDate(year int, month time.Month, day int) Date {
	if day < 1 {
		day = 1
	}
	if n := DaysIn(year, month); day > n {
		day = n
	}
	return Date{Year: year, Month: month, Day: day}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (d Date) naive() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }

// AddDays moves the date by n days.
func (d Date) AddDays(n int) Date {
	return DateOf(d.naive().AddDate(0, 0, n))
}

// FirstOfNextMonth returns the first day of the month after d.
func (d Date) FirstOfNextMonth() Date {
	return DateOf(time.Date(d.Year, d.Month+1, 1, 0, 0, 0, 0, time.UTC))
}

// LastOfMonth returns the last day of d's month.
func (d Date) LastOfMonth() Date {
	return Date{Year: d.Year, Month: d.Month, Day: DaysIn(d.Year, d.Month)}
}

func (d Date) Weekday() time.Weekday { return d.naive().Weekday() }

// At combines the date with a time of day.
func (d Date) At(tod time.Duration) LocalDateTime {
	return LocalDateTime{Date: d, Time: tod}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// LocalDateTime is a wall-clock date and time without a zone.
// Time is the offset from midnight, in [0, 24h).
type LocalDateTime struct {
	Date Date
	Time time.Duration
}

// LocalOf returns the wall-clock reading of t in t's own location.
func LocalOf(t time.Time) LocalDateTime {
	h, m, s := t.Clock()
	tod := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second + time.Duration(t.Nanosecond())
	return LocalDateTime{Date: DateOf(t), Time: tod}
}

// FromNaive reads a timestamp stored without a zone. Databases hand these
// back as UTC, so the UTC wall clock is taken as the local reading.
func FromNaive(t time.Time) LocalDateTime {
	return LocalOf(t.UTC())
}

// Naive returns the wall clock as a UTC time.Time, for storage in
// "timestamp without time zone" columns.
func (l LocalDateTime) Naive() time.Time {
	return l.Date.naive().Add(l.Time)
}

func (l LocalDateTime) Compare(o LocalDateTime) int {
	if c := l.Date.Compare(o.Date); c != 0 {
		return c
	}
	return cmpInt64(int64(l.Time), int64(o.Time))
}

func (l LocalDateTime) Equal(o LocalDateTime) bool { return l.Compare(o) == 0 }

func (l LocalDateTime) String() string {
	return l.Naive().Format("2006-01-02T15:04:05.000")
}

// ResolveLenient maps a wall-clock time in loc to an instant without ever
// failing. When the wall time occurs twice (clocks turned back) the earlier
// instant is returned. When it does not occur (clocks turned forward) it is
// read with the offset in force before the gap, which lands the same
// distance past the gap as the requested time was into it.
func ResolveLenient(l LocalDateTime, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	wall := l.Naive()

	// Offsets a day either side bracket any single transition.
	_, before := wall.Add(-24 * time.Hour).In(loc).Zone()
	_, after := wall.Add(24 * time.Hour).In(loc).Zone()

	var best time.Time
	for _, off := range []int{before, after} {
		cand := wall.Add(-time.Duration(off) * time.Second)
		if !LocalOf(cand.In(loc)).Equal(l) {
			continue
		}
		if best.IsZero() || cand.Before(best) {
			best = cand
		}
	}
	if best.IsZero() {
		best = wall.Add(-time.Duration(before) * time.Second)
	}
	return best.In(loc)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
