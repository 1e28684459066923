package models

import (
	"fmt"
	"time"

	"github.com/Jymapas/SnakeFrogCalendarBot/internal/recurrence"
)

type EventKind int

const (
	EventKindOneOff EventKind = 1
	EventKindYearly EventKind = 2
)

type Event struct {
	EventID     int64          `json:"event_id"`
	Title       string         `json:"title"`
	Kind        EventKind      `json:"kind"`
	IsAllDay    bool           `json:"is_all_day"`
	OccursAt    *time.Time     `json:"occurs_at"`   // One-off only, UTC
	Month       *int           `json:"month"`       // Yearly only
	Day         *int           `json:"day"`         // Yearly only
	TimeOfDay   *time.Duration `json:"time_of_day"` // Yearly only, offset from local midnight
	Description string         `json:"description"`
	Place       string         `json:"place"`
	Link        string         `json:"link"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (e *Event) Ref() recurrence.Ref {
	return recurrence.Ref{Source: recurrence.SourceEvent, ID: e.EventID}
}

// Recurrence validates the stored columns and returns the event's rule.
func (e *Event) Recurrence() (recurrence.Rule, error) {
	switch e.Kind {
	case EventKindOneOff:
		if e.OccursAt == nil {
			return recurrence.Rule{}, fmt.Errorf("event %d: %w: one-off without occurs_at", e.EventID, recurrence.ErrInvalidDefinition)
		}
		rule, err := recurrence.NewOneOff(*e.OccursAt, e.IsAllDay)
		if err != nil {
			return recurrence.Rule{}, fmt.Errorf("event %d: %w", e.EventID, err)
		}
		return rule, nil
	case EventKindYearly:
		if e.Month == nil || e.Day == nil {
			return recurrence.Rule{}, fmt.Errorf("event %d: %w: yearly without month/day", e.EventID, recurrence.ErrInvalidDefinition)
		}
		rule, err := recurrence.NewYearly(*e.Month, *e.Day, e.TimeOfDay, e.IsAllDay)
		if err != nil {
			return recurrence.Rule{}, fmt.Errorf("event %d: %w", e.EventID, err)
		}
		return rule, nil
	default:
		return recurrence.Rule{}, fmt.Errorf("event %d: %w: unknown kind %d", e.EventID, recurrence.ErrInvalidDefinition, e.Kind)
	}
}

// IsRecurring returns true for yearly events
func (e *Event) IsRecurring() bool {
	return e.Kind == EventKindYearly
}

// Stored time of day is counted in 100ns ticks since local midnight.
const tick = 100 * time.Nanosecond

func TimeOfDayFromTicks(ticks *int64) *time.Duration {
	if ticks == nil {
		return nil
	}
	d := time.Duration(*ticks) * tick
	return &d
}

func (e *Event) TimeOfDayTicks() *int64 {
	if e.TimeOfDay == nil {
		return nil
	}
	t := int64(*e.TimeOfDay / tick)
	return &t
}
