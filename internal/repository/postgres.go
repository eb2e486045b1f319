package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/GophTasks/internal/models"
	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint failure.
const uniqueViolation = "23505"

// PostgresTaskRepository implements the task dataset against a PostgreSQL database.
type PostgresTaskRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresTaskRepository creates a new PostgresTaskRepository using the provided *sql.DB.
// db must be a valid connection to a PostgreSQL instance with the tasks schema applied.
func NewPostgresTaskRepository(db *sql.DB) *PostgresTaskRepository {
	return &PostgresTaskRepository{DB: db}
}

// List fetches every task in insertion order.
//
// Returns a slice of models.Task or an error if the query or scanning fails.
func (s *PostgresTaskRepository) List(ctx context.Context) ([]models.Task, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, title, status, assignee, due_date, details FROM tasks ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Status, &t.Assignee, &t.DueDate, &t.Details); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Insert stores a new task. A primary key conflict is reported as ErrDuplicateID.
func (s *PostgresTaskRepository) Insert(ctx context.Context, t models.Task) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO tasks (id, title, status, assignee, due_date, details)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, t.ID, t.Title, t.Status, t.Assignee, t.DueDate, t.Details)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", ErrDuplicateID, t.ID)
		}
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// Update locks the row, applies mutate and writes the result back within a transaction.
//
//	ctx:    context for cancellation and deadlines
//	id:     ID of the task to update
//	mutate: function applied to the current record
//
// Returns the stored record, or ErrNotFound if no row has the given ID.
func (s *PostgresTaskRepository) Update(ctx context.Context, id string, mutate func(*models.Task)) (models.Task, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Task{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var t models.Task
	err = tx.QueryRowContext(ctx, `
		SELECT id, title, status, assignee, due_date, details FROM tasks WHERE id = $1 FOR UPDATE
	`, id).Scan(&t.ID, &t.Title, &t.Status, &t.Assignee, &t.DueDate, &t.Details)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("select task: %w", err)
	}

	mutate(&t)
	t.ID = id

	_, err = tx.ExecContext(ctx, `
		UPDATE tasks SET title = $2, status = $3, assignee = $4, due_date = $5, details = $6 WHERE id = $1
	`, t.ID, t.Title, t.Status, t.Assignee, t.DueDate, t.Details)
	if err != nil {
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Task{}, fmt.Errorf("commit: %w", err)
	}
	return t, nil
}

// Delete removes the task with the given ID, or returns ErrNotFound.
func (s *PostgresTaskRepository) Delete(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
