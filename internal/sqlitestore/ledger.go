package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Jymapas/SnakeFrogCalendarBot/internal/caltime"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/models"
)

// Ledger stores notification runs. Local period bounds are kept as
// fixed-width text so equality and ordering follow the wall clock.
type Ledger struct {
	db *sql.DB
}

func (l *Ledger) Exists(ctx context.Context, kind models.DigestKind, start, end caltime.LocalDateTime, zoneID string) (bool, error) {
	var n int
	err := l.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM notification_runs
		 WHERE digest_kind = ? AND period_start_local = ? AND period_end_local = ? AND time_zone_id = ?`,
		int(kind), start.String(), end.String(), zoneID,
	).Scan(&n)
	return n > 0, err
}

// Append inserts run, or returns an error wrapping models.ErrDuplicateRun
// when its (kind, period, zone) is already recorded.
func (l *Ledger) Append(ctx context.Context, run *models.NotificationRun) error {
	if err := run.Validate(); err != nil {
		return err
	}
	res, err := l.db.ExecContext(ctx,
		`INSERT INTO notification_runs(run_id, digest_kind, period_start_local, period_end_local, time_zone_id, created_at)
		 VALUES(?,?,?,?,?,?)
		 ON CONFLICT(digest_kind, period_start_local, period_end_local, time_zone_id) DO NOTHING`,
		run.RunID.String(), int(run.Kind), run.PeriodStartLocal.String(), run.PeriodEndLocal.String(),
		run.TimeZoneID, formatTS(run.CreatedAt),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", models.ErrDuplicateRun, run.Kind, run.PeriodStartLocal)
	}
	run.NotificationRunID, _ = res.LastInsertId()
	return nil
}

// Count returns the number of recorded runs of kind.
func (l *Ledger) Count(ctx context.Context, kind models.DigestKind) (int, error) {
	var n int
	err := l.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM notification_runs WHERE digest_kind = ?`, int(kind)).Scan(&n)
	return n, err
}
