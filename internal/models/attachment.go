package models

import "time"

type Attachment struct {
	AttachmentID         int64     `json:"attachment_id"`
	EventID              int64     `json:"event_id"`
	TelegramFileID       string    `json:"telegram_file_id"`
	TelegramFileUniqueID string    `json:"telegram_file_unique_id"`
	FileName             string    `json:"file_name"`
	MimeType             string    `json:"mime_type"`
	Size                 *int64    `json:"size"`
	Version              int       `json:"version"`
	IsCurrent            bool      `json:"is_current"`
	UploadedAt           time.Time `json:"uploaded_at"`
}
