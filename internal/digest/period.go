// Package digest selects the calendar items that belong to a digest period.
package digest

import (
	"fmt"
	"time"

	"github.com/Jymapas/SnakeFrogCalendarBot/internal/caltime"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/models"
)

// Period is a closed local interval [Start, End] in a single zone.
type Period struct {
	Kind   models.DigestKind
	Start  caltime.LocalDateTime
	End    caltime.LocalDateTime
	ZoneID string
}

// ComputePeriod returns the period a digest of kind triggered at now covers.
//
//	Daily:   today
//	Weekly:  next Monday through the following Sunday; on Monday, the week after
//	Monthly: the whole of next month
func ComputePeriod(kind models.DigestKind, now time.Time, zoneID string, loc *time.Location) (Period, error) {
	if loc == nil {
		loc = time.UTC
	}
	today := caltime.DateOf(now.In(loc))

	var first, last caltime.Date
	switch kind {
	case models.DigestDaily:
		first, last = today, today
	case models.DigestWeekly:
		d := (int(time.Monday) - int(today.Weekday()) + 7) % 7
		if d == 0 {
			d = 7
		}
		first = today.AddDays(d)
		last = first.AddDays(6)
	case models.DigestMonthly:
		first = today.FirstOfNextMonth()
		last = first.LastOfMonth()
	default:
		return Period{}, fmt.Errorf("compute period: unknown digest kind %d", kind)
	}

	return Period{
		Kind:   kind,
		Start:  first.At(0),
		End:    last.At(caltime.EndOfDay),
		ZoneID: zoneID,
	}, nil
}

// Window returns the inclusive instant bounds of the period in loc.
func (p Period) Window(loc *time.Location) (time.Time, time.Time) {
	return caltime.ResolveLenient(p.Start, loc), caltime.ResolveLenient(p.End, loc)
}

// Contains reports whether t lies in the closed window.
func (p Period) Contains(t time.Time, loc *time.Location) bool {
	start, end := p.Window(loc)
	return !t.Before(start) && !t.After(end)
}

// years lists the calendar years a yearly item must be tested against.
func (p Period) years() []int {
	if p.Start.Date.Year == p.End.Date.Year {
		return []int{p.Start.Date.Year}
	}
	return []int{p.Start.Date.Year, p.End.Date.Year}
}

func (p Period) String() string {
	return fmt.Sprintf("%s [%s, %s] %s", p.Kind, p.Start, p.End, p.ZoneID)
}
