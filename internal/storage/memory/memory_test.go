package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/benvon/bakatracker/internal/models"
	"github.com/benvon/bakatracker/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTasks_OrderAndCopies(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	for _, id := range []string{"task_c", "task_a", "task_b"} {
		require.NoError(t, s.Tasks().Create(ctx, &models.Task{ID: id, Title: id}))
	}

	tasks, err := s.Tasks().List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "task_c", tasks[0].ID)
	assert.Equal(t, "task_b", tasks[2].ID)

	tasks[0].Title = "mutated"
	got, err := s.Tasks().Get(ctx, "task_c")
	require.NoError(t, err)
	assert.Equal(t, "task_c", got.Title, "returned records must be copies")
}

func TestNotFound(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	_, err := s.Tasks().Get(ctx, "x")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.Tasks().Update(ctx, &models.Task{ID: "x"}), storage.ErrNotFound)
	assert.ErrorIs(t, s.Tasks().Delete(ctx, "x"), storage.ErrNotFound)
	_, err = s.Habits().Get(ctx, "x")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.Habits().Delete(ctx, "x"), storage.ErrNotFound)
	_, err = s.Settings().Get(ctx, "x")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSettings_UpdateKeepsPosition(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	require.NoError(t, s.Settings().Set(ctx, "a", "1"))
	require.NoError(t, s.Settings().Set(ctx, "b", "2"))
	require.NoError(t, s.Settings().Set(ctx, "a", "3"))

	all, err := s.Settings().List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Setting{{Key: "a", Value: "3"}, {Key: "b", Value: "2"}}, all)
}

func TestHabitLogs_ListByDate(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	require.NoError(t, s.HabitLogs().Create(ctx, &models.HabitLog{ID: "log_1", Date: "2024-12-11"}))
	require.NoError(t, s.HabitLogs().Create(ctx, &models.HabitLog{ID: "log_2", Date: "2024-12-12"}))

	logs, err := s.HabitLogs().ListByDate(ctx, "2024-12-11")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "log_1", logs[0].ID)

	all, err := s.HabitLogs().List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "log_1", all[0].ID)
	assert.Equal(t, "log_2", all[1].ID)
}

func TestConcurrentWrites(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Tasks().Create(ctx, &models.Task{ID: models.NewTaskID()})
		}()
	}
	wg.Wait()

	tasks, err := s.Tasks().List(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 50)
}
