package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Jymapas/SnakeFrogCalendarBot/internal/database"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/models"
)

type AttachmentRepository struct {
	db *database.DB
}

func NewAttachmentRepository(db *database.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// CurrentFor returns the current attachment of an event, or nil if it has none.
func (r *AttachmentRepository) CurrentFor(ctx context.Context, eventID int64) (*models.Attachment, error) {
	a := &models.Attachment{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT attachment_id, event_id, telegram_file_id, telegram_file_unique_id, file_name,
		 mime_type, size, version, is_current, uploaded_at
		 FROM attachments WHERE event_id = $1 AND is_current
		 ORDER BY version DESC LIMIT 1`,
		eventID,
	).Scan(&a.AttachmentID, &a.EventID, &a.TelegramFileID, &a.TelegramFileUniqueID, &a.FileName,
		&a.MimeType, &a.Size, &a.Version, &a.IsCurrent, &a.UploadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}
