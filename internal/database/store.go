package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/benvon/bakatracker/internal/storage"
)

// Store implements storage.Store on PostgreSQL
type Store struct {
	db *DB
}

var _ storage.Store = (*Store)(nil)

// NewStore wraps an open database
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

func (s *Store) Tasks() storage.TaskRepository         { return NewTaskRepository(s.db) }
func (s *Store) Habits() storage.HabitRepository       { return NewHabitRepository(s.db) }
func (s *Store) HabitLogs() storage.HabitLogRepository { return NewHabitLogRepository(s.db) }
func (s *Store) Settings() storage.SettingsRepository  { return NewSettingsRepository(s.db) }

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Close closes the connection pool
func (s *Store) Close() error { return s.db.Close() }

// notFound converts sql.ErrNoRows into storage.ErrNotFound
func notFound(err error, kind, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", kind, err)
}

// expectOne returns storage.ErrNotFound when a write touched no row
func expectOne(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
	}
	return nil
}
