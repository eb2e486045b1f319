// Package repository provides persistence implementations for the task
// dataset and the static credential table.
package repository

import "errors"

var (
	// ErrNotFound is returned when no task with the requested ID exists.
	ErrNotFound = errors.New("task not found")
	// ErrDuplicateID is returned when inserting a task whose ID is already taken.
	ErrDuplicateID = errors.New("duplicate task id")
)
