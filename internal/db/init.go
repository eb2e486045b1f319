// Package db initialises the optional PostgreSQL task dataset.
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/atinyakov/GophTasks/internal/models"
	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
    seq BIGSERIAL,
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    status TEXT NOT NULL,
    assignee TEXT NOT NULL DEFAULT '',
    due_date TEXT NOT NULL DEFAULT '',
    details TEXT NOT NULL DEFAULT ''
);
`

// InitPostgres opens the database, checks connectivity and applies the schema.
func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := Migrate(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate creates the tasks table if it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// SeedTasks loads the seed dataset. Rows that already exist are left untouched,
// so seeding on every start is safe.
func SeedTasks(ctx context.Context, db *sql.DB, tasks []models.Task) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, t := range tasks {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (id, title, status, assignee, due_date, details)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO NOTHING
		`, t.ID, t.Title, t.Status, t.Assignee, t.DueDate, t.Details)
		if err != nil {
			return fmt.Errorf("seed task %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
