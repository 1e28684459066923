// Package database owns the PostgreSQL connection pool and schema.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jymapas/SnakeFrogCalendarBot/internal/logx"
)

type DB struct {
	Pool *pgxpool.Pool
	log  logx.Logger
}

// New connects to PostgreSQL and verifies the connection.
func New(ctx context.Context, connString string, log logx.Logger) (*DB, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	cfg.MaxConns = 5
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{Pool: pool, log: log.With(logx.String("comp", "database"))}, nil
}

func (db *DB) Close() {
	if db != nil && db.Pool != nil {
		db.Pool.Close()
	}
}
