package models

import (
	"time"

	"github.com/Jymapas/SnakeFrogCalendarBot/internal/caltime"
)

type CalendarItemKind int

const (
	CalendarItemEvent CalendarItemKind = iota
	CalendarItemBirthday
)

// CalendarItem is a single line of a digest. It is built fresh for every
// digest and never stored.
type CalendarItem struct {
	Date          caltime.Date
	Time          *time.Duration // nil for all-day items
	Title         string
	Kind          CalendarItemKind
	IsAllDay      bool
	HasAttachment bool
	BirthYear     *int
	Place         string
}

// SortTime is the time of day used for ordering; all-day items sort last
// within their date.
func (c CalendarItem) SortTime() time.Duration {
	if c.Kind == CalendarItemBirthday || c.IsAllDay || c.Time == nil {
		return caltime.EndOfDay
	}
	return *c.Time
}
