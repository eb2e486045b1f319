package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/atinyakov/GophTasks/internal/backend"
	"github.com/atinyakov/GophTasks/internal/models"
	"go.uber.org/zap"
)

// ErrInvalidFilter is returned by SetStatusFilter for an unknown filter value.
var ErrInvalidFilter = errors.New("invalid status filter")

const (
	msgFetchFailed  = "Failed to fetch tasks"
	msgCreateFailed = "Failed to create task"
	msgUpdateFailed = "Failed to update task"
	msgDeleteFailed = "Failed to delete task"
)

// TaskAPI defines the backend operations required by the TaskCollection.
// Every call fails with backend.ErrAuthenticationRequired until a session
// has armed the backend gate.
type TaskAPI interface {
	FetchTasks(ctx context.Context) ([]models.Task, error)
	CreateTask(ctx context.Context, data models.NewTask) (models.Task, error)
	UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error)
	UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus) (models.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// TaskCollection caches the fetched tasks and derives filtered views from them.
type TaskCollection struct {
	api TaskAPI
	log *zap.Logger

	mu    sync.RWMutex
	tasks []models.Task
	// version counts cache writes; a fetch started at an older version is stale.
	version      uint64
	fetching     int
	errMsg       string
	statusFilter models.StatusFilter
	searchQuery  string
}

// NewTaskCollection constructs an empty TaskCollection. log may be nil.
func NewTaskCollection(api TaskAPI, log *zap.Logger) *TaskCollection {
	if log == nil {
		log = zap.NewNop()
	}
	return &TaskCollection{
		api:          api,
		log:          log,
		tasks:        []models.Task{},
		statusFilter: models.FilterAll,
	}
}

// FetchTasks replaces the cache with the backend's current dataset. If the
// cache was written while the request was in flight, the older snapshot is
// discarded.
func (c *TaskCollection) FetchTasks(ctx context.Context) error {
	c.mu.Lock()
	c.fetching++
	c.errMsg = ""
	started := c.version
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.fetching--
		c.mu.Unlock()
	}()

	tasks, err := c.api.FetchTasks(ctx)
	if err != nil {
		c.setError(msgFetchFailed)
		c.log.Error("error fetching tasks", zap.Error(err))
		return err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	c.mu.Lock()
	if c.version != started {
		c.mu.Unlock()
		c.log.Debug("discarding stale fetch", zap.Int("count", len(tasks)))
		return nil
	}
	c.tasks = tasks
	c.version++
	c.mu.Unlock()

	c.log.Debug("tasks fetched", zap.Int("count", len(tasks)))
	return nil
}

// CreateTask creates a task and appends it to the cache.
func (c *TaskCollection) CreateTask(ctx context.Context, data models.NewTask) (models.Task, error) {
	c.setError("")
	task, err := c.api.CreateTask(ctx, data)
	if err != nil {
		c.setError(msgCreateFailed)
		c.log.Error("error creating task", zap.Error(err))
		return models.Task{}, err
	}

	c.mu.Lock()
	c.upsertLocked(task)
	c.mu.Unlock()
	return task, nil
}

// UpdateTask applies patch on the backend and replaces the cached entry.
func (c *TaskCollection) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	c.setError("")
	task, err := c.api.UpdateTask(ctx, id, patch)
	return c.afterUpdate(id, task, err)
}

// UpdateTaskStatus changes a task's status on the backend and replaces the cached entry.
func (c *TaskCollection) UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus) (models.Task, error) {
	c.setError("")
	task, err := c.api.UpdateTaskStatus(ctx, id, status)
	return c.afterUpdate(id, task, err)
}

func (c *TaskCollection) afterUpdate(id string, task models.Task, err error) (models.Task, error) {
	if err != nil {
		c.setError(msgUpdateFailed)
		c.log.Error("error updating task", zap.String("id", id), zap.Error(err))
		c.dropIfMissing(id, err)
		return models.Task{}, err
	}

	c.mu.Lock()
	c.upsertLocked(task)
	c.mu.Unlock()
	return task, nil
}

// DeleteTask deletes a task on the backend and removes it from the cache.
func (c *TaskCollection) DeleteTask(ctx context.Context, id string) error {
	c.setError("")
	if err := c.api.DeleteTask(ctx, id); err != nil {
		c.setError(msgDeleteFailed)
		c.log.Error("error deleting task", zap.String("id", id), zap.Error(err))
		c.dropIfMissing(id, err)
		return err
	}

	c.mu.Lock()
	c.removeLocked(id)
	c.mu.Unlock()
	return nil
}

// dropIfMissing removes a cached entry the backend no longer knows about.
func (c *TaskCollection) dropIfMissing(id string, err error) {
	if !errors.Is(err, backend.ErrTaskNotFound) {
		return
	}
	c.mu.Lock()
	c.removeLocked(id)
	c.mu.Unlock()
}

// upsertLocked must be called with mu held.
func (c *TaskCollection) upsertLocked(task models.Task) {
	c.version++
	next := make([]models.Task, len(c.tasks), len(c.tasks)+1)
	copy(next, c.tasks)
	for i := range next {
		if next[i].ID == task.ID {
			next[i] = task
			c.tasks = next
			return
		}
	}
	c.tasks = append(next, task)
}

// removeLocked must be called with mu held.
func (c *TaskCollection) removeLocked(id string) {
	c.version++
	next := make([]models.Task, 0, len(c.tasks))
	for _, t := range c.tasks {
		if t.ID != id {
			next = append(next, t)
		}
	}
	c.tasks = next
}

// SetStatusFilter selects which statuses FilteredTasks keeps.
func (c *TaskCollection) SetStatusFilter(filter models.StatusFilter) error {
	if !filter.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidFilter, filter)
	}
	c.mu.Lock()
	c.statusFilter = filter
	c.mu.Unlock()
	c.log.Debug("status filter set", zap.String("filter", string(filter)))
	return nil
}

// SetSearchQuery sets the free-text search. An empty query disables search.
func (c *TaskCollection) SetSearchQuery(query string) {
	c.mu.Lock()
	c.searchQuery = query
	c.mu.Unlock()
	c.log.Debug("search query set", zap.String("query", query))
}

// ClearFilters resets the status filter and the search query.
func (c *TaskCollection) ClearFilters() {
	c.mu.Lock()
	c.statusFilter = models.FilterAll
	c.searchQuery = ""
	c.mu.Unlock()
	c.log.Debug("all filters cleared")
}

// Tasks returns a copy of the cached, unfiltered tasks.
func (c *TaskCollection) Tasks() []models.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// FilteredTasks returns the cached tasks that pass the current filter and search.
func (c *TaskCollection) FilteredTasks() []models.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return FilterTasks(c.tasks, c.statusFilter, c.searchQuery)
}

// Counts summarises the unfiltered cache.
func (c *TaskCollection) Counts() models.TaskCounts {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CountTasks(c.tasks)
}

// StatusFilter returns the active status filter.
func (c *TaskCollection) StatusFilter() models.StatusFilter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.statusFilter
}

// SearchQuery returns the active search query.
func (c *TaskCollection) SearchQuery() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.searchQuery
}

// IsLoading reports whether any fetch is in flight.
func (c *TaskCollection) IsLoading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetching > 0
}

// Error returns the last user-facing error message.
func (c *TaskCollection) Error() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.errMsg
}

func (c *TaskCollection) setError(msg string) {
	c.mu.Lock()
	c.errMsg = msg
	c.mu.Unlock()
}

// FilterTasks applies the status filter, then a case-insensitive substring
// search over title, assignee and details. A blank query disables the search;
// otherwise it is matched as given, surrounding spaces included. tasks is
// never modified and the result is a fresh slice.
func FilterTasks(tasks []models.Task, filter models.StatusFilter, query string) []models.Task {
	search := strings.TrimSpace(query) != ""
	query = strings.ToLower(query)
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if filter != models.FilterAll && string(t.Status) != string(filter) {
			continue
		}
		if search &&
			!strings.Contains(strings.ToLower(t.Title), query) &&
			!strings.Contains(strings.ToLower(t.Assignee), query) &&
			!strings.Contains(strings.ToLower(t.Details), query) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// CountTasks counts tasks in total and per status.
func CountTasks(tasks []models.Task) models.TaskCounts {
	counts := models.TaskCounts{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case models.StatusInProgress:
			counts.InProgress++
		case models.StatusCompleted:
			counts.Completed++
		}
	}
	return counts
}
