package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps the PostgreSQL connection pool
type DB struct {
	*sql.DB
}

// Open connects to PostgreSQL and verifies the connection
func Open(ctx context.Context, databaseURL string) (*DB, error) {
	sqlDB, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DB{DB: sqlDB}, nil
}

// schema mirrors the spreadsheet layout; seq keeps insertion order
var schema = []string{
	`CREATE TABLE IF NOT EXISTS tasks (
		seq         BIGSERIAL,
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		due_date    TEXT NOT NULL DEFAULT '',
		due_time    TEXT NOT NULL DEFAULT '',
		priority    TEXT NOT NULL DEFAULT 'medium',
		category    TEXT NOT NULL DEFAULT 'general',
		completed   BOOLEAN NOT NULL DEFAULT FALSE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS habits (
		seq        BIGSERIAL,
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		icon       TEXT NOT NULL DEFAULT 'check_circle',
		color      TEXT NOT NULL DEFAULT 'primary',
		frequency  TEXT NOT NULL DEFAULT 'daily',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		streak     INTEGER NOT NULL DEFAULT 0,
		goal       INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS habit_logs (
		seq       BIGSERIAL,
		id        TEXT PRIMARY KEY,
		habit_id  TEXT NOT NULL,
		date      TEXT NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT TRUE,
		notes     TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS habit_logs_date_idx ON habit_logs (date)`,
	`CREATE TABLE IF NOT EXISTS settings (
		seq   BIGSERIAL,
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL DEFAULT ''
	)`,
}

// EnsureSchema creates the tables when they do not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
