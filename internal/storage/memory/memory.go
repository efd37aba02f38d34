// Package memory is an in-process storage backend for local development
// and tests. Data is lost when the process exits.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/benvon/bakatracker/internal/models"
	"github.com/benvon/bakatracker/internal/storage"
)

// Store keeps every record in maps guarded by one mutex
type Store struct {
	mu       sync.RWMutex
	seq      int
	tasks    map[string]entry[models.Task]
	habits   map[string]entry[models.Habit]
	logs     map[string]entry[models.HabitLog]
	settings map[string]entry[string]
}

// entry remembers insertion order so listings match sheet row order
type entry[T any] struct {
	seq   int
	value T
}

var _ storage.Store = (*Store)(nil)

// New creates an empty store
func New() *Store {
	return &Store{
		tasks:    make(map[string]entry[models.Task]),
		habits:   make(map[string]entry[models.Habit]),
		logs:     make(map[string]entry[models.HabitLog]),
		settings: make(map[string]entry[string]),
	}
}

func (s *Store) Tasks() storage.TaskRepository         { return taskRepo{s} }
func (s *Store) Habits() storage.HabitRepository       { return habitRepo{s} }
func (s *Store) HabitLogs() storage.HabitLogRepository { return logRepo{s} }
func (s *Store) Settings() storage.SettingsRepository  { return settingsRepo{s} }
func (s *Store) Ping(context.Context) error            { return nil }
func (s *Store) Close() error                          { return nil }

func (s *Store) next() int {
	s.seq++
	return s.seq
}

func ordered[T any](m map[string]entry[T]) []entry[T] {
	out := make([]entry[T], 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
}

type taskRepo struct{ s *Store }

func (r taskRepo) List(context.Context) ([]*models.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*models.Task, 0, len(r.s.tasks))
	for _, e := range ordered(r.s.tasks) {
		t := e.value
		out = append(out, &t)
	}
	return out, nil
}

func (r taskRepo) Get(_ context.Context, id string) (*models.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.tasks[id]
	if !ok {
		return nil, notFound("task", id)
	}
	t := e.value
	return &t, nil
}

func (r taskRepo) Create(_ context.Context, task *models.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if task.ID == "" {
		return fmt.Errorf("task id is required")
	}
	r.s.tasks[task.ID] = entry[models.Task]{seq: r.s.next(), value: *task}
	return nil
}

func (r taskRepo) Update(_ context.Context, task *models.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.tasks[task.ID]
	if !ok {
		return notFound("task", task.ID)
	}
	e.value = *task
	r.s.tasks[task.ID] = e
	return nil
}

func (r taskRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[id]; !ok {
		return notFound("task", id)
	}
	delete(r.s.tasks, id)
	return nil
}

type habitRepo struct{ s *Store }

func (r habitRepo) List(context.Context) ([]*models.Habit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*models.Habit, 0, len(r.s.habits))
	for _, e := range ordered(r.s.habits) {
		h := e.value
		out = append(out, &h)
	}
	return out, nil
}

func (r habitRepo) Get(_ context.Context, id string) (*models.Habit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.habits[id]
	if !ok {
		return nil, notFound("habit", id)
	}
	h := e.value
	return &h, nil
}

func (r habitRepo) Create(_ context.Context, habit *models.Habit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if habit.ID == "" {
		return fmt.Errorf("habit id is required")
	}
	r.s.habits[habit.ID] = entry[models.Habit]{seq: r.s.next(), value: *habit}
	return nil
}

func (r habitRepo) Update(_ context.Context, habit *models.Habit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.habits[habit.ID]
	if !ok {
		return notFound("habit", habit.ID)
	}
	e.value = *habit
	r.s.habits[habit.ID] = e
	return nil
}

func (r habitRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.habits[id]; !ok {
		return notFound("habit", id)
	}
	delete(r.s.habits, id)
	return nil
}

type logRepo struct{ s *Store }

func (r logRepo) Create(_ context.Context, log *models.HabitLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if log.ID == "" {
		return fmt.Errorf("habit log id is required")
	}
	r.s.logs[log.ID] = entry[models.HabitLog]{seq: r.s.next(), value: *log}
	return nil
}

func (r logRepo) ListByDate(_ context.Context, date string) ([]*models.HabitLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*models.HabitLog, 0)
	for _, e := range ordered(r.s.logs) {
		if e.value.Date == date {
			l := e.value
			out = append(out, &l)
		}
	}
	return out, nil
}

func (r logRepo) List(context.Context) ([]*models.HabitLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*models.HabitLog, 0, len(r.s.logs))
	for _, e := range ordered(r.s.logs) {
		l := e.value
		out = append(out, &l)
	}
	return out, nil
}

type settingsRepo struct{ s *Store }

func (r settingsRepo) List(context.Context) ([]models.Setting, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	keys := make([]string, 0, len(r.s.settings))
	for k := range r.s.settings {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return r.s.settings[keys[i]].seq < r.s.settings[keys[j]].seq })
	out := make([]models.Setting, 0, len(keys))
	for _, k := range keys {
		out = append(out, models.Setting{Key: k, Value: r.s.settings[k].value})
	}
	return out, nil
}

func (r settingsRepo) Get(_ context.Context, key string) (string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.settings[key]
	if !ok {
		return "", notFound("setting", key)
	}
	return e.value, nil
}

func (r settingsRepo) Set(_ context.Context, key, value string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if key == "" {
		return fmt.Errorf("setting key is required")
	}
	e, ok := r.s.settings[key]
	if !ok {
		e.seq = r.s.next()
	}
	e.value = value
	r.s.settings[key] = e
	return nil
}
