package backend

import "errors"

var (
	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	// The error does not say which of the two it was.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAuthenticationRequired is returned by task operations while the gate is empty.
	ErrAuthenticationRequired = errors.New("authentication required")
	// ErrTaskNotFound is returned when an update or delete references a missing task.
	ErrTaskNotFound = errors.New("task not found")
	// ErrInvalidTask is returned when a task carries an unknown status.
	ErrInvalidTask = errors.New("invalid task")
)
