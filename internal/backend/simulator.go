// Package backend provides an in-process stand-in for the remote task service.
// It owns the task dataset and the credential table, applies a fixed latency
// to every call, and refuses task operations while its auth gate is empty.
package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/atinyakov/GophTasks/internal/models"
	"github.com/atinyakov/GophTasks/internal/repository"
	"go.uber.org/zap"
)

// maxIDAttempts bounds how many generated IDs CreateTask tries before giving up.
const maxIDAttempts = 8

// CredentialStore resolves login emails to account records.
type CredentialStore interface {
	// Lookup returns the record for email using an exact match.
	Lookup(email string) (models.CredentialRecord, bool)
	// HasToken reports whether token was issued to some account.
	HasToken(token string) bool
}

// TaskRepository defines the persistence operations required by the simulator.
type TaskRepository interface {
	// List returns a copy of the whole dataset.
	List(ctx context.Context) ([]models.Task, error)
	// Insert adds a task, failing with repository.ErrDuplicateID on an ID clash.
	Insert(ctx context.Context, t models.Task) error
	// Update applies mutate to the stored task atomically with the existence check.
	Update(ctx context.Context, id string, mutate func(*models.Task)) (models.Task, error)
	// Delete removes a task, failing with repository.ErrNotFound if absent.
	Delete(ctx context.Context, id string) error
}

// Simulator implements the task service contract in memory.
type Simulator struct {
	gate    *Gate
	creds   CredentialStore
	repo    TaskRepository
	ids     IDGenerator
	latency Latency
	strict  bool
	log     *zap.Logger
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithLatency overrides the default delays.
func WithLatency(l Latency) Option {
	return func(s *Simulator) { s.latency = l }
}

// WithIDGenerator sets the generator used for new task IDs.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Simulator) { s.ids = g }
}

// WithLogger sets the structured logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Simulator) {
		if log != nil {
			s.log = log
		}
	}
}

// WithStrictTokens makes the gate accept only tokens issued by the credential store.
// Without it any non-empty token passes.
func WithStrictTokens() Option {
	return func(s *Simulator) { s.strict = true }
}

// New constructs a Simulator around gate, creds and repo.
// Without WithIDGenerator, IDs come from a "t"-prefixed sequence primed past
// every task already in repo.
func New(gate *Gate, creds CredentialStore, repo TaskRepository, opts ...Option) *Simulator {
	s := &Simulator{
		gate:    gate,
		creds:   creds,
		repo:    repo,
		latency: DefaultLatency(),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ids == nil {
		existing, err := repo.List(context.Background())
		if err != nil {
			s.log.Warn("cannot prime id sequence from dataset", zap.Error(err))
		}
		s.ids = NewSequenceGenerator("t", existing)
	}
	return s
}

// SetAuthToken stores token in the gate. An empty token clears it.
func (s *Simulator) SetAuthToken(token string) {
	s.gate.Set(token)
	if token == "" {
		s.log.Debug("auth token cleared")
		return
	}
	s.log.Debug("auth token set", zap.String("token_prefix", tokenPrefix(token)))
}

func (s *Simulator) requireAuth() error {
	token := s.gate.Token()
	if token == "" {
		s.log.Warn("authentication required: no token set")
		return ErrAuthenticationRequired
	}
	if s.strict && !s.creds.HasToken(token) {
		s.log.Warn("authentication required: unknown token")
		return ErrAuthenticationRequired
	}
	return nil
}

// Login validates credentials and returns the account's token and user.
// It does not arm the gate; the caller must call SetAuthToken.
func (s *Simulator) Login(ctx context.Context, creds models.Credentials) (models.LoginResponse, error) {
	s.log.Debug("login request", zap.String("email", creds.Email))
	if err := sleep(ctx, s.latency.Login); err != nil {
		return models.LoginResponse{}, err
	}

	rec, ok := s.creds.Lookup(creds.Email)
	if !ok || rec.Password != creds.Password {
		s.log.Info("login failed", zap.String("email", creds.Email))
		return models.LoginResponse{}, ErrInvalidCredentials
	}

	s.log.Info("login succeeded", zap.String("user_id", rec.User.ID))
	return models.LoginResponse{Token: rec.Token, User: rec.User}, nil
}

// FetchTasks returns a copy of the current dataset.
func (s *Simulator) FetchTasks(ctx context.Context) ([]models.Task, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}
	if err := sleep(ctx, s.latency.Fetch); err != nil {
		return nil, err
	}

	tasks, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch tasks: %w", err)
	}
	s.log.Debug("returning tasks", zap.Int("count", len(tasks)))
	return tasks, nil
}

// CreateTask assigns a fresh ID to data and stores it.
func (s *Simulator) CreateTask(ctx context.Context, data models.NewTask) (models.Task, error) {
	if err := s.requireAuth(); err != nil {
		return models.Task{}, err
	}
	if data.Status != "" && !data.Status.Valid() {
		return models.Task{}, fmt.Errorf("%w: unknown status %q", ErrInvalidTask, data.Status)
	}
	if err := sleep(ctx, s.latency.Create); err != nil {
		return models.Task{}, err
	}

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		task := data.WithID(s.ids.NextID())
		err := s.repo.Insert(ctx, task)
		if errors.Is(err, repository.ErrDuplicateID) {
			s.log.Warn("generated task id already taken", zap.String("id", task.ID))
			continue
		}
		if err != nil {
			return models.Task{}, fmt.Errorf("create task: %w", err)
		}
		s.log.Info("task created", zap.String("id", task.ID))
		return task, nil
	}
	return models.Task{}, fmt.Errorf("create task: no free id after %d attempts", maxIDAttempts)
}

// UpdateTask shallow-merges patch over the task with the given id.
func (s *Simulator) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	if err := s.requireAuth(); err != nil {
		return models.Task{}, err
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return models.Task{}, fmt.Errorf("%w: unknown status %q", ErrInvalidTask, *patch.Status)
	}
	if err := sleep(ctx, s.latency.Update); err != nil {
		return models.Task{}, err
	}

	task, err := s.repo.Update(ctx, id, patch.Apply)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}
	s.log.Info("task updated", zap.String("id", id))
	return task, nil
}

// UpdateTaskStatus changes only the status of the task with the given id.
func (s *Simulator) UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus) (models.Task, error) {
	return s.UpdateTask(ctx, id, models.TaskPatch{Status: &status})
}

// DeleteTask removes the task with the given id.
func (s *Simulator) DeleteTask(ctx context.Context, id string) error {
	if err := s.requireAuth(); err != nil {
		return err
	}
	if err := sleep(ctx, s.latency.Delete); err != nil {
		return err
	}

	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	s.log.Info("task deleted", zap.String("id", id))
	return nil
}

func tokenPrefix(token string) string {
	if len(token) <= 10 {
		return token
	}
	return token[:10] + "..."
}
