package database

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/benvon/bakatracker/internal/models"
	"github.com/benvon/bakatracker/internal/storage"
)

type fakeResult struct {
	rows int64
	err  error
}

func (f fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (f fakeResult) RowsAffected() (int64, error) { return f.rows, f.err }

func TestNotFound(t *testing.T) {
	t.Parallel()

	err := notFound(sql.ErrNoRows, "task", "task_1")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	err = notFound(errors.New("connection refused"), "task", "task_1")
	if errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected a plain error, got ErrNotFound")
	}
}

func TestExpectOne(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		result       sql.Result
		wantErr      bool
		wantNotFound bool
	}{
		{"one row", fakeResult{rows: 1}, false, false},
		{"no rows", fakeResult{rows: 0}, true, true},
		{"driver error", fakeResult{err: errors.New("boom")}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := expectOne(tt.result, "habit", "habit_1")
			if (err != nil) != tt.wantErr {
				t.Fatalf("expectOne() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := errors.Is(err, storage.ErrNotFound); got != tt.wantNotFound {
				t.Errorf("errors.Is(ErrNotFound) = %v, want %v", got, tt.wantNotFound)
			}
		})
	}
}

// TestStore_Integration runs against a real database when TEST_DATABASE_URL is set
func TestStore_Integration(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := Open(ctx, url)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	store := NewStore(db)
	defer store.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}

	task := &models.Task{ID: models.NewTaskID(), Title: "Dentist", DueDate: "2024-12-12", Priority: models.TaskPriorityHigh, Category: models.TaskCategoryScan}
	if err := store.Tasks().Create(ctx, task); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer func() { _ = store.Tasks().Delete(ctx, task.ID) }()

	got, err := store.Tasks().Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != "Dentist" || got.DueDate != "2024-12-12" {
		t.Errorf("Get() = %+v", got)
	}

	got.Completed = true
	if err := store.Tasks().Update(ctx, got); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if err := store.Tasks().Update(ctx, &models.Task{ID: "task_missing"}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}

	key := "integration_" + task.ID
	if err := store.Settings().Set(ctx, key, "a"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := store.Settings().Set(ctx, key, "b"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	v, err := store.Settings().Get(ctx, key)
	if err != nil || v != "b" {
		t.Errorf("Get() = %q, %v; want b", v, err)
	}
	_, _ = db.ExecContext(ctx, `DELETE FROM settings WHERE key = $1`, key)
}
