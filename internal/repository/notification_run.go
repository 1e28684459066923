package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Jymapas/SnakeFrogCalendarBot/internal/caltime"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/database"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/models"
)

const uniqueViolation = "23505"

// NotificationRunRepository is the PostgreSQL ledger of sent digests.
type NotificationRunRepository struct {
	db *database.DB
}

func NewNotificationRunRepository(db *database.DB) *NotificationRunRepository {
	return &NotificationRunRepository{db: db}
}

func (r *NotificationRunRepository) Exists(ctx context.Context, kind models.DigestKind, start, end caltime.LocalDateTime, zoneID string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM notification_runs
		 WHERE digest_kind = $1 AND period_start_local = $2 AND period_end_local = $3 AND time_zone_id = $4)`,
		int(kind), start.Naive(), end.Naive(), zoneID,
	).Scan(&exists)
	return exists, err
}

// Append inserts run. A row with the same kind, period and zone yields an
// error wrapping models.ErrDuplicateRun.
func (r *NotificationRunRepository) Append(ctx context.Context, run *models.NotificationRun) error {
	if err := run.Validate(); err != nil {
		return err
	}
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO notification_runs (run_id, digest_kind, period_start_local, period_end_local, time_zone_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING notification_run_id`,
		run.RunID, int(run.Kind), run.PeriodStartLocal.Naive(), run.PeriodEndLocal.Naive(), run.TimeZoneID, run.CreatedAt,
	).Scan(&run.NotificationRunID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s %s", models.ErrDuplicateRun, run.Kind, run.PeriodStartLocal)
	}
	return err
}
