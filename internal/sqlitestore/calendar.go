package sqlitestore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Jymapas/SnakeFrogCalendarBot/internal/models"
)

type EventStore struct {
	db *sql.DB
}

// Add inserts e and fills in its id and timestamps.
func (s *EventStore) Add(ctx context.Context, e *models.Event) error {
	var occursAt any
	if e.OccursAt != nil {
		occursAt = formatTS(*e.OccursAt)
	}
	var ticks any
	if t := e.TimeOfDayTicks(); t != nil {
		ticks = *t
	}
	now := nowTS()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO events(title, kind, is_all_day, occurs_at, month, day, time_of_day, description, place, link, created_at, updated_at)
		 VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`,
		e.Title, int(e.Kind), e.IsAllDay, occursAt, nullInt(e.Month), nullInt(e.Day), ticks,
		e.Description, e.Place, e.Link, now, now,
	)
	if err != nil {
		return err
	}
	if e.EventID, err = res.LastInsertId(); err != nil {
		return err
	}
	e.CreatedAt, _ = parseTS(now)
	e.UpdatedAt = e.CreatedAt
	return nil
}

func (s *EventStore) ListAll(ctx context.Context) ([]*models.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT event_id, title, kind, is_all_day, occurs_at, month, day, time_of_day,
		 description, place, link, created_at, updated_at
		 FROM events ORDER BY event_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Event
	for rows.Next() {
		var (
			e                models.Event
			kind             int
			occursAt         sql.NullString
			month, day       sql.NullInt64
			ticks            sql.NullInt64
			created, updated string
		)
		if err := rows.Scan(&e.EventID, &e.Title, &kind, &e.IsAllDay, &occursAt, &month, &day, &ticks,
			&e.Description, &e.Place, &e.Link, &created, &updated); err != nil {
			return nil, err
		}
		e.Kind = models.EventKind(kind)
		if occursAt.Valid {
			t, err := parseTS(occursAt.String)
			if err != nil {
				return nil, err
			}
			e.OccursAt = &t
		}
		e.Month = intPtr(month)
		e.Day = intPtr(day)
		if ticks.Valid {
			e.TimeOfDay = models.TimeOfDayFromTicks(&ticks.Int64)
		}
		if e.CreatedAt, err = parseTS(created); err != nil {
			return nil, err
		}
		if e.UpdatedAt, err = parseTS(updated); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

type BirthdayStore struct {
	db *sql.DB
}

func (s *BirthdayStore) Add(ctx context.Context, b *models.Birthday) error {
	now := nowTS()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO birthdays(person_name, month, day, birth_year, contact, created_at, updated_at)
		 VALUES(?,?,?,?,?,?,?)`,
		b.PersonName, b.Month, b.Day, nullInt(b.BirthYear), b.Contact, now, now,
	)
	if err != nil {
		return err
	}
	if b.BirthdayID, err = res.LastInsertId(); err != nil {
		return err
	}
	b.CreatedAt, _ = parseTS(now)
	b.UpdatedAt = b.CreatedAt
	return nil
}

func (s *BirthdayStore) ListAll(ctx context.Context) ([]*models.Birthday, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT birthday_id, person_name, month, day, birth_year, contact, created_at, updated_at
		 FROM birthdays ORDER BY month, day, person_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Birthday
	for rows.Next() {
		var (
			b                models.Birthday
			year             sql.NullInt64
			created, updated string
		)
		if err := rows.Scan(&b.BirthdayID, &b.PersonName, &b.Month, &b.Day, &year, &b.Contact, &created, &updated); err != nil {
			return nil, err
		}
		b.BirthYear = intPtr(year)
		if b.CreatedAt, err = parseTS(created); err != nil {
			return nil, err
		}
		if b.UpdatedAt, err = parseTS(updated); err != nil {
			return nil, err
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

type AttachmentStore struct {
	db *sql.DB
}

// Add stores a new version of an event's attachment and makes it the only
// current one.
func (s *AttachmentStore) Add(ctx context.Context, a *models.Attachment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`UPDATE attachments SET is_current = 0 WHERE event_id = ? AND is_current = 1`, a.EventID,
	); err != nil {
		return err
	}
	var version int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) + 1 FROM attachments WHERE event_id = ?`, a.EventID,
	).Scan(&version); err != nil {
		return err
	}
	var size any
	if a.Size != nil {
		size = *a.Size
	}
	now := nowTS()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO attachments(event_id, telegram_file_id, telegram_file_unique_id, file_name, mime_type, size, version, is_current, uploaded_at)
		 VALUES(?,?,?,?,?,?,?,1,?)`,
		a.EventID, a.TelegramFileID, a.TelegramFileUniqueID, a.FileName, a.MimeType, size, version, now,
	)
	if err != nil {
		return err
	}
	if a.AttachmentID, err = res.LastInsertId(); err != nil {
		return err
	}
	a.Version = version
	a.IsCurrent = true
	a.UploadedAt, _ = parseTS(now)
	return tx.Commit()
}

// CurrentFor returns the current attachment of an event, or nil if it has none.
func (s *AttachmentStore) CurrentFor(ctx context.Context, eventID int64) (*models.Attachment, error) {
	var (
		a        models.Attachment
		size     sql.NullInt64
		uploaded string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT attachment_id, event_id, telegram_file_id, telegram_file_unique_id, file_name,
		 mime_type, size, version, is_current, uploaded_at
		 FROM attachments WHERE event_id = ? AND is_current = 1
		 ORDER BY version DESC LIMIT 1`, eventID,
	).Scan(&a.AttachmentID, &a.EventID, &a.TelegramFileID, &a.TelegramFileUniqueID, &a.FileName,
		&a.MimeType, &size, &a.Version, &a.IsCurrent, &uploaded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if size.Valid {
		v := size.Int64
		a.Size = &v
	}
	if a.UploadedAt, err = parseTS(uploaded); err != nil {
		return nil, err
	}
	return &a, nil
}

// nullInt maps a nil pointer to SQL NULL.
func nullInt(p *int) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
