package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/Jymapas/SnakeFrogCalendarBot/internal/logx"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/models"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/recurrence"
)

type EventSource interface {
	ListAll(ctx context.Context) ([]*models.Event, error)
}

type BirthdaySource interface {
	ListAll(ctx context.Context) ([]*models.Birthday, error)
}

// AttachmentSource returns the current attachment of an event, or nil when
// there is none.
type AttachmentSource interface {
	CurrentFor(ctx context.Context, eventID int64) (*models.Attachment, error)
}

// Builder reads the stores on every call; nothing is cached between calls.
type Builder struct {
	events      EventSource
	birthdays   BirthdaySource
	attachments AttachmentSource
	log         logx.Logger
}

func NewBuilder(events EventSource, birthdays BirthdaySource, attachments AttachmentSource, log logx.Logger) *Builder {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Builder{
		events:      events,
		birthdays:   birthdays,
		attachments: attachments,
		log:         log.With(logx.String("comp", "digest")),
	}
}

// BuildForPeriod returns the sorted calendar items of period p.
func (b *Builder) BuildForPeriod(ctx context.Context, p Period, loc *time.Location) ([]models.CalendarItem, error) {
	events, birthdays, err := b.load(ctx)
	if err != nil {
		return nil, err
	}

	matches, skipped := SelectForPeriod(p, loc, events, birthdays)
	b.logSkipped(skipped)

	items := make([]models.CalendarItem, 0, len(matches))
	for _, m := range matches {
		if m.EventID != 0 && b.attachments != nil {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			att, err := b.attachments.CurrentFor(ctx, m.EventID)
			if err != nil {
				return nil, fmt.Errorf("current attachment for event %d: %w", m.EventID, err)
			}
			m.Item.HasAttachment = att != nil
		}
		items = append(items, m.Item)
	}
	return items, nil
}

// Upcoming returns the next occurrence of every event and birthday after
// now, in ascending order. A positive limit truncates the result.
func (b *Builder) Upcoming(ctx context.Context, now time.Time, loc *time.Location, limit int) ([]recurrence.Occurrence, error) {
	events, birthdays, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]recurrence.Item, 0, len(events)+len(birthdays))
	for _, e := range events {
		if e != nil {
			items = append(items, e)
		}
	}
	for _, bd := range birthdays {
		if bd != nil {
			items = append(items, bd)
		}
	}
	return b.timeline(items, now, loc, limit), nil
}

// UpcomingBirthdays is Upcoming restricted to birthdays.
func (b *Builder) UpcomingBirthdays(ctx context.Context, now time.Time, loc *time.Location, limit int) ([]recurrence.Occurrence, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	birthdays, err := b.birthdays.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list birthdays: %w", err)
	}
	items := make([]recurrence.Item, 0, len(birthdays))
	for _, bd := range birthdays {
		if bd != nil {
			items = append(items, bd)
		}
	}
	return b.timeline(items, now, loc, limit), nil
}

func (b *Builder) timeline(items []recurrence.Item, now time.Time, loc *time.Location, limit int) []recurrence.Occurrence {
	occ, skipped := recurrence.BuildUpcoming(items, now, loc)
	b.logSkipped(skipped)
	if limit > 0 && len(occ) > limit {
		occ = occ[:limit]
	}
	return occ
}

func (b *Builder) load(ctx context.Context) ([]*models.Event, []*models.Birthday, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	events, err := b.events.ListAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list events: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	birthdays, err := b.birthdays.ListAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list birthdays: %w", err)
	}
	return events, birthdays, nil
}

func (b *Builder) logSkipped(skipped []recurrence.Skipped) {
	for _, s := range skipped {
		b.log.Warn("skipping item with invalid recurrence",
			logx.Int("source", int(s.Ref.Source)),
			logx.Int64("id", s.Ref.ID),
			logx.Err(s.Err),
		)
	}
}
