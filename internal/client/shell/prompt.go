package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/atinyakov/GophTasks/internal/models"
)

// ask prints label and returns the next trimmed input line.
// ok is false when the input is exhausted.
func ask(sc *bufio.Scanner, out io.Writer, label string) (string, bool) {
	fmt.Fprint(out, label)
	if !sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(sc.Text()), true
}

// PromptForTask reads the fields of a new task. An empty status means in_progress.
func PromptForTask(sc *bufio.Scanner, out io.Writer) (models.NewTask, error) {
	var (
		data models.NewTask
		ok   bool
	)
	fields := []struct {
		label string
		dst   *string
	}{
		{"Title: ", &data.Title},
		{"Assignee: ", &data.Assignee},
		{"Due date (YYYY-MM-DD): ", &data.DueDate},
		{"Details: ", &data.Details},
	}
	for _, f := range fields {
		if *f.dst, ok = ask(sc, out, f.label); !ok {
			return models.NewTask{}, io.ErrUnexpectedEOF
		}
	}
	status, ok := ask(sc, out, "Status (in_progress/completed, empty = in_progress): ")
	if !ok {
		return models.NewTask{}, io.ErrUnexpectedEOF
	}
	data.Status = models.TaskStatus(status)
	if data.Title == "" {
		return models.NewTask{}, errors.New("title must not be empty")
	}
	return data, nil
}

// PromptEditTask reads replacement values for task. Leaving a field empty
// keeps the current value, so only changed fields end up in the patch.
func PromptEditTask(sc *bufio.Scanner, out io.Writer, task models.Task) (models.TaskPatch, error) {
	var patch models.TaskPatch

	fields := []struct {
		label   string
		current string
		dst     **string
	}{
		{"Title", task.Title, &patch.Title},
		{"Assignee", task.Assignee, &patch.Assignee},
		{"Due date", task.DueDate, &patch.DueDate},
		{"Details", task.Details, &patch.Details},
	}
	for _, f := range fields {
		v, ok := ask(sc, out, fmt.Sprintf("%s [%s]: ", f.label, f.current))
		if !ok {
			return models.TaskPatch{}, io.ErrUnexpectedEOF
		}
		if v != "" && v != f.current {
			*f.dst = &v
		}
	}

	v, ok := ask(sc, out, fmt.Sprintf("Status [%s]: ", task.Status))
	if !ok {
		return models.TaskPatch{}, io.ErrUnexpectedEOF
	}
	if status := models.TaskStatus(v); v != "" && status != task.Status {
		patch.Status = &status
	}
	return patch, nil
}
