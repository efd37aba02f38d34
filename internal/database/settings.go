package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/benvon/bakatracker/internal/models"
)

// SettingsRepository handles key/value settings
type SettingsRepository struct {
	db *DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// List returns every setting in insertion order
func (r *SettingsRepository) List(ctx context.Context) ([]models.Setting, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM settings ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	settings := make([]models.Setting, 0)
	for rows.Next() {
		var s models.Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings = append(settings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settings: %w", err)
	}
	return settings, nil
}

// Get returns the value stored under key
func (r *SettingsRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	if err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value); err != nil {
		return "", notFound(err, "setting", key)
	}
	return value, nil
}

// Set stores value under key, replacing any previous value
func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return errors.New("setting key is required")
	}
	query := `
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`
	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set setting: %w", err)
	}
	return nil
}
