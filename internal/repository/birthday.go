package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/Jymapas/SnakeFrogCalendarBot/internal/database"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/models"
)

type BirthdayRepository struct {
	db *database.DB
}

func NewBirthdayRepository(db *database.DB) *BirthdayRepository {
	return &BirthdayRepository{db: db}
}

func (r *BirthdayRepository) ListAll(ctx context.Context) ([]*models.Birthday, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT birthday_id, person_name, month, day, birth_year, contact, created_at, updated_at
		 FROM birthdays ORDER BY month, day, person_name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Birthday, error) {
		var b models.Birthday
		err := row.Scan(&b.BirthdayID, &b.PersonName, &b.Month, &b.Day, &b.BirthYear, &b.Contact,
			&b.CreatedAt, &b.UpdatedAt)
		return &b, err
	})
}
