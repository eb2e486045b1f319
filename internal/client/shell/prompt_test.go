package shell

import (
	"bufio"
	"io"
	"strings"
	"testing"

	"github.com/atinyakov/GophTasks/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanner(lines ...string) *bufio.Scanner {
	return bufio.NewScanner(strings.NewReader(strings.Join(lines, "\n")))
}

func TestPromptForTask(t *testing.T) {
	data, err := PromptForTask(scanner("  Ship it ", "Bob Smith", "2025-01-31", "release notes", "completed"), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, models.NewTask{
		Title:    "Ship it",
		Status:   models.StatusCompleted,
		Assignee: "Bob Smith",
		DueDate:  "2025-01-31",
		Details:  "release notes",
	}, data)
}

func TestPromptForTask_Errors(t *testing.T) {
	_, err := PromptForTask(scanner("", "a", "b", "c", ""), io.Discard)
	assert.EqualError(t, err, "title must not be empty")

	_, err = PromptForTask(scanner("only title"), io.Discard)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestPromptEditTask(t *testing.T) {
	current := models.Task{
		ID: "t1", Title: "Old", Status: models.StatusInProgress,
		Assignee: "Alice Johnson", DueDate: "2025-01-01", Details: "x",
	}

	t.Run("empty input keeps everything", func(t *testing.T) {
		patch, err := PromptEditTask(scanner("", "", "", "", ""), io.Discard, current)
		require.NoError(t, err)
		assert.True(t, patch.Empty())
	})

	t.Run("same value is not a change", func(t *testing.T) {
		patch, err := PromptEditTask(scanner("Old", "", "", "", "in_progress"), io.Discard, current)
		require.NoError(t, err)
		assert.True(t, patch.Empty())
	})

	t.Run("changed fields only", func(t *testing.T) {
		patch, err := PromptEditTask(scanner("New", "", "2025-02-02", "", "completed"), io.Discard, current)
		require.NoError(t, err)

		updated := current
		patch.Apply(&updated)
		assert.Equal(t, "New", updated.Title)
		assert.Equal(t, "Alice Johnson", updated.Assignee)
		assert.Equal(t, "2025-02-02", updated.DueDate)
		assert.Equal(t, models.StatusCompleted, updated.Status)
		assert.Nil(t, patch.Assignee)
		assert.Nil(t, patch.Details)
	})

	t.Run("input ends early", func(t *testing.T) {
		_, err := PromptEditTask(scanner("New"), io.Discard, current)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})
}

func TestRouter(t *testing.T) {
	r := NewRouter()
	assert.Equal(t, LoginPath, r.Current())
	r.Navigate(TasksPath)
	assert.Equal(t, TasksPath, r.Current())
}
