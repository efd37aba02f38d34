// Package storage defines the persistence contracts shared by the
// spreadsheet and SQL backends.
package storage

import (
	"context"
	"errors"

	"github.com/benvon/bakatracker/internal/models"
)

// ErrNotFound is returned when a record id or setting key does not exist
var ErrNotFound = errors.New("record not found")

// TaskRepository persists tasks
type TaskRepository interface {
	List(ctx context.Context) ([]*models.Task, error)
	Get(ctx context.Context, id string) (*models.Task, error)
	Create(ctx context.Context, task *models.Task) error
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id string) error
}

// HabitRepository persists habits
type HabitRepository interface {
	List(ctx context.Context) ([]*models.Habit, error)
	Get(ctx context.Context, id string) (*models.Habit, error)
	Create(ctx context.Context, habit *models.Habit) error
	Update(ctx context.Context, habit *models.Habit) error
	Delete(ctx context.Context, id string) error
}

// HabitLogRepository persists habit completion logs
type HabitLogRepository interface {
	Create(ctx context.Context, log *models.HabitLog) error
	ListByDate(ctx context.Context, date string) ([]*models.HabitLog, error)
	List(ctx context.Context) ([]*models.HabitLog, error)
}

// SettingsRepository persists key/value settings
type SettingsRepository interface {
	List(ctx context.Context) ([]models.Setting, error)
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Store bundles the repositories of one backend
type Store interface {
	Tasks() TaskRepository
	Habits() HabitRepository
	HabitLogs() HabitLogRepository
	Settings() SettingsRepository
	Ping(ctx context.Context) error
	Close() error
}
