package db

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/atinyakov/GophTasks/internal/models"
)

func TestSeedTasks_Success(t *testing.T) {
	dbMock, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer dbMock.Close()

	tasks := []models.Task{
		{ID: "t1", Title: "a", Status: models.StatusInProgress},
		{ID: "t2", Title: "b", Status: models.StatusCompleted},
	}

	mock.ExpectBegin()
	for _, task := range tasks {
		mock.ExpectExec("INSERT INTO tasks").
			WithArgs(task.ID, task.Title, string(task.Status), "", "", "").
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	if err := SeedTasks(context.Background(), dbMock, tasks); err != nil {
		t.Fatalf("SeedTasks() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSeedTasks_ExecError(t *testing.T) {
	dbMock, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer dbMock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO tasks").WillReturnError(errors.New("db fail"))
	mock.ExpectRollback()

	err = SeedTasks(context.Background(), dbMock, []models.Task{{ID: "t1"}})
	if err == nil || !strings.Contains(err.Error(), "seed task t1") {
		t.Fatalf("expected seed error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
