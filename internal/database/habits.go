package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/benvon/bakatracker/internal/models"
)

// HabitRepository handles habit database operations
type HabitRepository struct {
	db *DB
}

// NewHabitRepository creates a new habit repository
func NewHabitRepository(db *DB) *HabitRepository {
	return &HabitRepository{db: db}
}

const habitColumns = `id, name, icon, color, frequency, created_at, streak, goal`

func scanHabit(row rowScanner) (*models.Habit, error) {
	h := &models.Habit{}
	if err := row.Scan(&h.ID, &h.Name, &h.Icon, &h.Color, &h.Frequency, &h.CreatedAt, &h.Streak, &h.Goal); err != nil {
		return nil, err
	}
	return h, nil
}

// Create creates a new habit
func (r *HabitRepository) Create(ctx context.Context, h *models.Habit) error {
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO habits (` + habitColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(ctx, query, h.ID, h.Name, h.Icon, h.Color, h.Frequency, h.CreatedAt, h.Streak, h.Goal); err != nil {
		return fmt.Errorf("failed to create habit: %w", err)
	}
	return nil
}

// Get retrieves a habit by id
func (r *HabitRepository) Get(ctx context.Context, id string) (*models.Habit, error) {
	h, err := scanHabit(r.db.QueryRowContext(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "habit", id)
	}
	return h, nil
}

// List retrieves every habit in insertion order
func (r *HabitRepository) List(ctx context.Context) ([]*models.Habit, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+habitColumns+` FROM habits ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query habits: %w", err)
	}
	defer rows.Close()

	habits := make([]*models.Habit, 0)
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating habits: %w", err)
	}
	return habits, nil
}

// Update updates an existing habit
func (r *HabitRepository) Update(ctx context.Context, h *models.Habit) error {
	query := `
		UPDATE habits
		SET name = $2, icon = $3, color = $4, frequency = $5, streak = $6, goal = $7
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, h.ID, h.Name, h.Icon, h.Color, h.Frequency, h.Streak, h.Goal)
	if err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}
	return expectOne(res, "habit", h.ID)
}

// Delete deletes a habit
func (r *HabitRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM habits WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	return expectOne(res, "habit", id)
}

// HabitLogRepository handles habit log database operations
type HabitLogRepository struct {
	db *DB
}

// NewHabitLogRepository creates a new habit log repository
func NewHabitLogRepository(db *DB) *HabitLogRepository {
	return &HabitLogRepository{db: db}
}

// Create records a habit log entry
func (r *HabitLogRepository) Create(ctx context.Context, l *models.HabitLog) error {
	query := `INSERT INTO habit_logs (id, habit_id, date, completed, notes) VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(ctx, query, l.ID, l.HabitID, l.Date, l.Completed, l.Notes); err != nil {
		return fmt.Errorf("failed to create habit log: %w", err)
	}
	return nil
}

// ListByDate retrieves the logs recorded for a YYYY-MM-DD date
func (r *HabitLogRepository) ListByDate(ctx context.Context, date string) ([]*models.HabitLog, error) {
	query := `SELECT id, habit_id, date, completed, notes FROM habit_logs WHERE date = $1 ORDER BY seq`
	rows, err := r.db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query habit logs: %w", err)
	}
	return scanHabitLogs(rows)
}

// List retrieves every habit log in insertion order
func (r *HabitLogRepository) List(ctx context.Context) ([]*models.HabitLog, error) {
	query := `SELECT id, habit_id, date, completed, notes FROM habit_logs ORDER BY seq`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query habit logs: %w", err)
	}
	return scanHabitLogs(rows)
}

func scanHabitLogs(rows *sql.Rows) ([]*models.HabitLog, error) {
	defer rows.Close()

	logs := make([]*models.HabitLog, 0)
	for rows.Next() {
		l := &models.HabitLog{}
		if err := rows.Scan(&l.ID, &l.HabitID, &l.Date, &l.Completed, &l.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan habit log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating habit logs: %w", err)
	}
	return logs, nil
}
