// Package sqlitestore is a single-file storage backend for small
// deployments. It holds the same tables as the PostgreSQL schema.
package sqlitestore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Jymapas/SnakeFrogCalendarBot/internal/logx"
)

//go:embed schema.sql
var schema string

const tsLayout = time.RFC3339Nano

type Store struct {
	db  *sql.DB
	log logx.Logger
}

// Open creates the database file if needed and applies the schema.
func Open(ctx context.Context, path string, log logx.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	log.With(logx.String("comp", "sqlite")).Info("store opened", logx.String("path", path))
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Events() *EventStore           { return &EventStore{db: s.db} }
func (s *Store) Birthdays() *BirthdayStore     { return &BirthdayStore{db: s.db} }
func (s *Store) Attachments() *AttachmentStore { return &AttachmentStore{db: s.db} }
func (s *Store) Ledger() *Ledger               { return &Ledger{db: s.db} }

func formatTS(t time.Time) string { return t.UTC().Format(tsLayout) }

func parseTS(s string) (time.Time, error) {
	t, err := time.Parse(tsLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

func nowTS() string { return formatTS(time.Now()) }
