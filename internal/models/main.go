// Package models defines the core data structures for users, sessions and tasks.
package models

// User represents the identity returned on a successful login.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id"`
	// Name is the display name of the user.
	Name string `json:"name"`
}

// Credentials is the login request submitted by a user.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is what the backend returns for valid credentials.
type LoginResponse struct {
	// Token is the bearer token issued for the account.
	Token string `json:"token"`
	// User is the identity bound to the token.
	User User `json:"user"`
}

// CredentialRecord is a single entry of the static credential table.
type CredentialRecord struct {
	Password string `json:"password"`
	Token    string `json:"token"`
	User     User   `json:"user"`
}

// TaskStatus defines the set of valid task states.
type TaskStatus string

const (
	// StatusInProgress marks a task that is still being worked on.
	StatusInProgress TaskStatus = "in_progress"
	// StatusCompleted marks a finished task.
	StatusCompleted TaskStatus = "completed"
)

// Valid reports whether s is one of the known task states.
func (s TaskStatus) Valid() bool {
	return s == StatusInProgress || s == StatusCompleted
}

// Task is a single tracked unit of work.
type Task struct {
	// ID is the unique identifier for the task. It never changes.
	ID string `json:"id"`
	// Title is the short summary shown in lists.
	Title string `json:"title"`
	// Status is the current state of the task.
	Status TaskStatus `json:"status"`
	// Assignee is the person responsible for the task.
	Assignee string `json:"assignee"`
	// DueDate is the due date in YYYY-MM-DD form.
	DueDate string `json:"due_date"`
	// Details holds the free-form description.
	Details string `json:"details"`
}

// NewTask carries the fields of a task that is about to be created.
// The backend assigns the ID.
type NewTask struct {
	Title    string     `json:"title"`
	Status   TaskStatus `json:"status"`
	Assignee string     `json:"assignee"`
	DueDate  string     `json:"due_date"`
	Details  string     `json:"details"`
}

// WithID builds the full task record for the given id.
// An empty status defaults to StatusInProgress.
func (n NewTask) WithID(id string) Task {
	status := n.Status
	if status == "" {
		status = StatusInProgress
	}
	return Task{
		ID:       id,
		Title:    n.Title,
		Status:   status,
		Assignee: n.Assignee,
		DueDate:  n.DueDate,
		Details:  n.Details,
	}
}

// TaskPatch is a shallow partial update. Nil fields are left unchanged.
type TaskPatch struct {
	Title    *string     `json:"title,omitempty"`
	Status   *TaskStatus `json:"status,omitempty"`
	Assignee *string     `json:"assignee,omitempty"`
	DueDate  *string     `json:"due_date,omitempty"`
	Details  *string     `json:"details,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Status == nil && p.Assignee == nil && p.DueDate == nil && p.Details == nil
}

// Apply merges the patch over t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Assignee != nil {
		t.Assignee = *p.Assignee
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Details != nil {
		t.Details = *p.Details
	}
}

// StatusFilter selects which tasks are visible in the filtered view.
type StatusFilter string

const (
	// FilterAll disables status filtering.
	FilterAll StatusFilter = "all"
	// FilterInProgress keeps only in-progress tasks.
	FilterInProgress StatusFilter = StatusFilter(StatusInProgress)
	// FilterCompleted keeps only completed tasks.
	FilterCompleted StatusFilter = StatusFilter(StatusCompleted)
)

// Valid reports whether f is a known filter value.
func (f StatusFilter) Valid() bool {
	return f == FilterAll || f == FilterInProgress || f == FilterCompleted
}

// TaskCounts summarises a task collection by status.
type TaskCounts struct {
	Total      int `json:"total"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
}
