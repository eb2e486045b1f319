package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/atinyakov/GophTasks/internal/models"
)

// MemoryTaskRepository keeps the task dataset in process memory.
// Tasks are kept in insertion order and callers always receive copies.
type MemoryTaskRepository struct {
	mu    sync.RWMutex
	tasks []models.Task
}

// NewMemoryTaskRepository creates a repository holding a copy of seed.
// Seed entries whose ID was already seen are skipped.
func NewMemoryTaskRepository(seed ...models.Task) *MemoryTaskRepository {
	r := &MemoryTaskRepository{tasks: make([]models.Task, 0, len(seed))}
	for _, t := range seed {
		if r.indexOf(t.ID) >= 0 {
			continue
		}
		r.tasks = append(r.tasks, t)
	}
	return r
}

// indexOf must be called with mu held.
func (r *MemoryTaskRepository) indexOf(id string) int {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// List returns a copy of every task.
func (r *MemoryTaskRepository) List(_ context.Context) ([]models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Task, len(r.tasks))
	copy(out, r.tasks)
	return out, nil
}

// Insert appends t. It fails with ErrDuplicateID if t.ID is taken.
func (r *MemoryTaskRepository) Insert(_ context.Context, t models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(t.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, t.ID)
	}
	r.tasks = append(r.tasks, t)
	return nil
}

// Update looks the task up and applies mutate to it in one critical section,
// so a concurrent Delete can never be undone by an in-flight update.
// The ID is restored after mutate runs.
func (r *MemoryTaskRepository) Update(_ context.Context, id string, mutate func(*models.Task)) (models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return models.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	updated := r.tasks[i]
	mutate(&updated)
	updated.ID = id
	r.tasks[i] = updated
	return updated, nil
}

// Delete removes the task with the given ID.
func (r *MemoryTaskRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
	return nil
}
