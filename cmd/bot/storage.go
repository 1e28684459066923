package main

import (
	"context"
	"fmt"

	"github.com/Jymapas/SnakeFrogCalendarBot/internal/config"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/database"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/digest"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/dispatch"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/logx"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/repository"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/sqlitestore"
)

// storage bundles the ports of whichever backend is configured.
type storage struct {
	Events      digest.EventSource
	Birthdays   digest.BirthdaySource
	Attachments digest.AttachmentSource
	Ledger      dispatch.Ledger
	close       func()
}

func (s *storage) Close() {
	if s.close != nil {
		s.close()
	}
}

func openStorage(ctx context.Context, cfg *config.Config, log logx.Logger) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		db, err := database.New(ctx, cfg.Storage.PostgresURL, log)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		log.Info("connected to postgres")
		return &storage{
			Events:      repository.NewEventRepository(db),
			Birthdays:   repository.NewBirthdayRepository(db),
			Attachments: repository.NewAttachmentRepository(db),
			Ledger:      repository.NewNotificationRunRepository(db),
			close:       db.Close,
		}, nil

	case config.DriverSQLite:
		st, err := sqlitestore.Open(ctx, cfg.Storage.SQLitePath, log)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return &storage{
			Events:      st.Events(),
			Birthdays:   st.Birthdays(),
			Attachments: st.Attachments(),
			Ledger:      st.Ledger(),
			close:       func() { _ = st.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
