package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/Jymapas/SnakeFrogCalendarBot/internal/database"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/models"
)

const eventColumns = `event_id, title, kind, is_all_day, occurs_at, month, day, time_of_day,
	description, place, link, created_at, updated_at`

type EventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

// ListAll returns every stored event, one-off and yearly alike.
func (r *EventRepository) ListAll(ctx context.Context) ([]*models.Event, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY event_id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanEvents(rows)
}

func (r *EventRepository) scanEvents(rows pgx.Rows) ([]*models.Event, error) {
	var events []*models.Event
	for rows.Next() {
		var (
			e     models.Event
			kind  int
			ticks *int64
		)
		if err := rows.Scan(&e.EventID, &e.Title, &kind, &e.IsAllDay, &e.OccursAt, &e.Month, &e.Day, &ticks,
			&e.Description, &e.Place, &e.Link, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		e.Kind = models.EventKind(kind)
		e.TimeOfDay = models.TimeOfDayFromTicks(ticks)
		if e.OccursAt != nil {
			t := e.OccursAt.UTC()
			e.OccursAt = &t
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}
