package sheets

import (
	"context"
	"errors"

	"github.com/benvon/bakatracker/internal/models"
	"github.com/benvon/bakatracker/internal/storage"
)

// Store implements storage.Store on a spreadsheet session
type Store struct {
	session *Session
}

var _ storage.Store = (*Store)(nil)

// NewStore wraps an open session
func NewStore(session *Session) *Store {
	return &Store{session: session}
}

// Session returns the underlying spreadsheet session
func (s *Store) Session() *Session { return s.session }

func (s *Store) Tasks() storage.TaskRepository         { return &TaskRepository{s: s.session} }
func (s *Store) Habits() storage.HabitRepository       { return &HabitRepository{s: s.session} }
func (s *Store) HabitLogs() storage.HabitLogRepository { return &HabitLogRepository{s: s.session} }
func (s *Store) Settings() storage.SettingsRepository  { return &SettingsRepository{s: s.session} }

// Ping checks the spreadsheet is reachable
func (s *Store) Ping(ctx context.Context) error { return s.session.Ping(ctx) }

// Close is a no-op; the HTTP client owns its connections
func (s *Store) Close() error { return nil }

// TaskRepository stores tasks on the Tasks sheet
type TaskRepository struct {
	s *Session
}

func (r *TaskRepository) List(ctx context.Context) ([]*models.Task, error) {
	rows, err := r.s.rows(ctx, SheetTasks)
	if err != nil {
		return nil, err
	}
	tasks := make([]*models.Task, 0, len(rows))
	for _, v := range rows {
		tasks = append(tasks, taskFromValues(v))
	}
	return tasks, nil
}

func (r *TaskRepository) Get(ctx context.Context, id string) (*models.Task, error) {
	v, err := r.s.get(ctx, SheetTasks, id)
	if err != nil {
		return nil, err
	}
	return taskFromValues(v), nil
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		return errors.New("task id is required")
	}
	return r.s.append(ctx, SheetTasks, TasksHeader, taskValues(task))
}

func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.s.update(ctx, SheetTasks, task.ID, taskValues(task))
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	return r.s.delete(ctx, SheetTasks, id)
}

// HabitRepository stores habits on the Habits sheet
type HabitRepository struct {
	s *Session
}

func (r *HabitRepository) List(ctx context.Context) ([]*models.Habit, error) {
	rows, err := r.s.rows(ctx, SheetHabits)
	if err != nil {
		return nil, err
	}
	habits := make([]*models.Habit, 0, len(rows))
	for _, v := range rows {
		habits = append(habits, habitFromValues(v))
	}
	return habits, nil
}

func (r *HabitRepository) Get(ctx context.Context, id string) (*models.Habit, error) {
	v, err := r.s.get(ctx, SheetHabits, id)
	if err != nil {
		return nil, err
	}
	return habitFromValues(v), nil
}

func (r *HabitRepository) Create(ctx context.Context, habit *models.Habit) error {
	if habit.ID == "" {
		return errors.New("habit id is required")
	}
	return r.s.append(ctx, SheetHabits, HabitsHeader, habitValues(habit))
}

func (r *HabitRepository) Update(ctx context.Context, habit *models.Habit) error {
	return r.s.update(ctx, SheetHabits, habit.ID, habitValues(habit))
}

func (r *HabitRepository) Delete(ctx context.Context, id string) error {
	return r.s.delete(ctx, SheetHabits, id)
}

// HabitLogRepository stores completion logs on the HabitLogs sheet
type HabitLogRepository struct {
	s *Session
}

func (r *HabitLogRepository) Create(ctx context.Context, log *models.HabitLog) error {
	if log.ID == "" {
		return errors.New("habit log id is required")
	}
	return r.s.append(ctx, SheetHabitLogs, HabitLogsHeader, habitLogValues(log))
}

func (r *HabitLogRepository) ListByDate(ctx context.Context, date string) ([]*models.HabitLog, error) {
	rows, err := r.s.rows(ctx, SheetHabitLogs)
	if err != nil {
		return nil, err
	}
	logs := make([]*models.HabitLog, 0)
	for _, v := range rows {
		if v["date"] == date {
			logs = append(logs, habitLogFromValues(v))
		}
	}
	return logs, nil
}

func (r *HabitLogRepository) List(ctx context.Context) ([]*models.HabitLog, error) {
	rows, err := r.s.rows(ctx, SheetHabitLogs)
	if err != nil {
		return nil, err
	}
	logs := make([]*models.HabitLog, 0, len(rows))
	for _, v := range rows {
		logs = append(logs, habitLogFromValues(v))
	}
	return logs, nil
}

// SettingsRepository stores key/value pairs on the Settings sheet
type SettingsRepository struct {
	s *Session
}

func (r *SettingsRepository) List(ctx context.Context) ([]models.Setting, error) {
	rows, err := r.s.rows(ctx, SheetSettings)
	if err != nil {
		return nil, err
	}
	settings := make([]models.Setting, 0, len(rows))
	for _, v := range rows {
		settings = append(settings, models.Setting{Key: v["key"], Value: v["value"]})
	}
	return settings, nil
}

func (r *SettingsRepository) Get(ctx context.Context, key string) (string, error) {
	v, err := r.s.get(ctx, SheetSettings, key)
	if err != nil {
		return "", err
	}
	return v["value"], nil
}

func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return errors.New("setting key is required")
	}
	return r.s.upsert(ctx, SheetSettings, SettingsHeader, key, map[string]string{"key": key, "value": value})
}
