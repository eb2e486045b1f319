package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/atinyakov/GophTasks/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTasks() []models.Task {
	return []models.Task{
		{ID: "t1", Title: "Write docs", Status: models.StatusInProgress, Assignee: "Alice"},
		{ID: "t2", Title: "Fix bug", Status: models.StatusCompleted, Assignee: "Bob"},
	}
}

func TestMemory_ListReturnsCopy(t *testing.T) {
	repo := NewMemoryTaskRepository(seedTasks()...)
	ctx := context.Background()

	first, err := repo.List(ctx)
	require.NoError(t, err)
	first[0].Title = "mutated"

	second, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Write docs", second[0].Title)
}

func TestMemory_SeedDuplicatesSkipped(t *testing.T) {
	seed := append(seedTasks(), models.Task{ID: "t1", Title: "dup"})
	repo := NewMemoryTaskRepository(seed...)

	tasks, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
	assert.Equal(t, "Write docs", tasks[0].Title)
}

func TestMemory_Insert(t *testing.T) {
	repo := NewMemoryTaskRepository(seedTasks()...)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, models.Task{ID: "t3", Title: "New"}))
	err := repo.Insert(ctx, models.Task{ID: "t3", Title: "Again"})
	assert.ErrorIs(t, err, ErrDuplicateID)

	tasks, _ := repo.List(ctx)
	require.Len(t, tasks, 3)
	assert.Equal(t, "t3", tasks[2].ID)
}

func TestMemory_Update(t *testing.T) {
	repo := NewMemoryTaskRepository(seedTasks()...)
	ctx := context.Background()

	got, err := repo.Update(ctx, "t1", func(task *models.Task) {
		task.Status = models.StatusCompleted
		task.ID = "hijack"
	})
	require.NoError(t, err)
	assert.Equal(t, "t1", got.ID)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Equal(t, "Alice", got.Assignee)

	_, err = repo.Update(ctx, "missing", func(*models.Task) {})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_Delete(t *testing.T) {
	repo := NewMemoryTaskRepository(seedTasks()...)
	ctx := context.Background()

	require.NoError(t, repo.Delete(ctx, "t1"))
	assert.ErrorIs(t, repo.Delete(ctx, "t1"), ErrNotFound)

	_, err := repo.Update(ctx, "t1", func(*models.Task) {})
	assert.ErrorIs(t, err, ErrNotFound, "deleted task must not be resurrected by update")

	tasks, _ := repo.List(ctx)
	require.Len(t, tasks, 1)
	assert.Equal(t, "t2", tasks[0].ID)
}

func TestMemory_ConcurrentUpdateAndDelete(t *testing.T) {
	repo := NewMemoryTaskRepository(seedTasks()...)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = repo.Delete(ctx, "t2")
	}()
	go func() {
		defer wg.Done()
		_, _ = repo.Update(ctx, "t2", func(task *models.Task) { task.Title = "late" })
	}()
	wg.Wait()

	tasks, _ := repo.List(ctx)
	for _, task := range tasks {
		assert.NotEqual(t, "t2", task.ID)
	}
}
