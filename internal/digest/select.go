package digest

import (
	"sort"
	"strings"
	"time"

	"github.com/Jymapas/SnakeFrogCalendarBot/internal/caltime"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/models"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/recurrence"
)

// Match is a selected item. EventID is zero for birthdays.
type Match struct {
	Item    models.CalendarItem
	EventID int64
}

// SelectForPeriod picks every event whose occurrence instant falls inside
// the period window and every birthday whose date falls inside the period's
// dates. Items with an invalid definition are returned in skipped and left
// out. The result is sorted with SortItems order.
func SelectForPeriod(p Period, loc *time.Location, events []*models.Event, birthdays []*models.Birthday) ([]Match, []recurrence.Skipped) {
	if loc == nil {
		loc = time.UTC
	}
	start, end := p.Window(loc)
	inWindow := func(t time.Time) bool { return !t.Before(start) && !t.After(end) }

	var out []Match
	var skipped []recurrence.Skipped

	for _, e := range events {
		if e == nil {
			continue
		}
		rule, err := e.Recurrence()
		if err != nil {
			skipped = append(skipped, recurrence.Skipped{Ref: e.Ref(), Err: err})
			continue
		}
		switch rule.Kind {
		case recurrence.OneOff:
			if !inWindow(rule.At) {
				continue
			}
			local := caltime.LocalOf(rule.At.In(loc))
			out = append(out, Match{Item: eventItem(e, rule, local.Date, local.Time), EventID: e.EventID})
		case recurrence.Yearly:
			for _, y := range p.years() {
				if !inWindow(recurrence.OccurrenceInYear(rule, y, loc)) {
					continue
				}
				out = append(out, Match{Item: eventItem(e, rule, rule.DateIn(y), rule.TimeOfDay), EventID: e.EventID})
				break
			}
		}
	}

	for _, b := range birthdays {
		if b == nil {
			continue
		}
		rule, err := b.Recurrence()
		if err != nil {
			skipped = append(skipped, recurrence.Skipped{Ref: b.Ref(), Err: err})
			continue
		}
		for _, y := range p.years() {
			d := rule.DateIn(y)
			if d.Before(p.Start.Date) || d.After(p.End.Date) {
				continue
			}
			out = append(out, Match{Item: models.CalendarItem{
				Date:      d,
				Title:     b.PersonName,
				Kind:      models.CalendarItemBirthday,
				IsAllDay:  true,
				BirthYear: b.BirthYear,
			}})
			break
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return itemLess(out[i].Item, out[j].Item) })
	return out, skipped
}

func eventItem(e *models.Event, rule recurrence.Rule, d caltime.Date, tod time.Duration) models.CalendarItem {
	item := models.CalendarItem{
		Date:     d,
		Title:    e.Title,
		Kind:     models.CalendarItemEvent,
		IsAllDay: !rule.Timed(),
		Place:    e.Place,
	}
	if rule.Timed() {
		t := tod
		item.Time = &t
	}
	return item
}

// SortItems orders items by date, time of day (all-day last), kind and title.
func SortItems(items []models.CalendarItem) {
	sort.SliceStable(items, func(i, j int) bool { return itemLess(items[i], items[j]) })
}

func itemLess(a, b models.CalendarItem) bool {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c < 0
	}
	if ta, tb := a.SortTime(), b.SortTime(); ta != tb {
		return ta < tb
	}
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	return strings.Compare(a.Title, b.Title) < 0
}
