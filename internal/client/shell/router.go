package shell

import (
	"sync"

	"github.com/atinyakov/GophTasks/internal/service"
)

// Routes known to the shell.
const (
	LoginPath = service.LoginPath
	TasksPath = "/tasks"
)

// Router tracks the current view of the shell and receives redirects from
// the session manager.
type Router struct {
	mu      sync.Mutex
	current string
}

// NewRouter returns a Router positioned on the login view.
func NewRouter() *Router {
	return &Router{current: LoginPath}
}

// Navigate switches the current view.
func (r *Router) Navigate(path string) {
	r.mu.Lock()
	r.current = path
	r.mu.Unlock()
}

// Current returns the current view.
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}
