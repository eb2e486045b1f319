// Package shell implements the interactive terminal front end: a line-based
// REPL that drives the session manager and the task collection.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/atinyakov/GophTasks/internal/models"
	"go.uber.org/zap"
)

const helpText = `Available commands:
  login [email [password]]   log in
  logout                     log out
  whoami                     show the logged-in user
  fetch                      reload tasks
  list                       show tasks matching the filter and search
  filter <all|in_progress|completed>
  search [text]              search title, assignee and details (empty clears)
  clear                      reset filter and search
  counts                     show task totals
  add                        create a task
  edit <id>                  edit a task
  status <id> [status]       set or toggle a task's status
  delete <id>                delete a task
  exit                       quit`

// Session is the part of the session manager used by the shell.
type Session interface {
	Login(ctx context.Context, creds models.Credentials) error
	Logout(ctx context.Context) error
	InitAuth(ctx context.Context)
	IsAuthenticated() bool
	User() (models.User, bool)
	Error() string
}

// Tasks is the part of the task collection used by the shell.
type Tasks interface {
	FetchTasks(ctx context.Context) error
	CreateTask(ctx context.Context, data models.NewTask) (models.Task, error)
	UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error)
	UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus) (models.Task, error)
	DeleteTask(ctx context.Context, id string) error
	SetStatusFilter(filter models.StatusFilter) error
	SetSearchQuery(query string)
	ClearFilters()
	Tasks() []models.Task
	FilteredTasks() []models.Task
	Counts() models.TaskCounts
	StatusFilter() models.StatusFilter
	SearchQuery() string
	Error() string
}

// Shell runs commands read from in and writes results to out.
type Shell struct {
	session Session
	tasks   Tasks
	router  *Router
	sc      *bufio.Scanner
	out     io.Writer
	log     *zap.Logger
}

// New constructs a Shell. router must be the navigator the session manager
// redirects through. log may be nil.
func New(session Session, tasks Tasks, router *Router, in io.Reader, out io.Writer, log *zap.Logger) *Shell {
	if log == nil {
		log = zap.NewNop()
	}
	return &Shell{
		session: session,
		tasks:   tasks,
		router:  router,
		sc:      bufio.NewScanner(in),
		out:     out,
		log:     log,
	}
}

// Run restores any persisted session and then executes commands until
// "exit", end of input or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	s.session.InitAuth(ctx)
	if s.session.IsAuthenticated() {
		s.router.Navigate(TasksPath)
		if user, ok := s.session.User(); ok {
			s.printf("Welcome back, %s\n", user.Name)
		}
		s.fetch(ctx)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.printf("gophtasks%s> ", s.router.Current())
		if !s.sc.Scan() {
			return s.sc.Err()
		}
		args := strings.Fields(s.sc.Text())
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" {
			s.printf("Bye\n")
			return nil
		}
		s.Exec(ctx, args)
	}
}

// Exec runs a single command. Task commands require a session: without one
// the router is sent to the login view and the command is refused.
func (s *Shell) Exec(ctx context.Context, args []string) {
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "help":
		s.printf("%s\n", helpText)
		return
	case "login":
		s.login(ctx, rest)
		return
	}

	if !s.guard() {
		return
	}

	switch cmd {
	case "logout":
		if err := s.session.Logout(ctx); err != nil {
			s.log.Warn("logout left persisted keys behind", zap.Error(err))
		}
		s.printf("Logged out\n")
	case "whoami":
		user, _ := s.session.User()
		s.printf("%s (%s)\n", user.Name, user.ID)
	case "fetch":
		s.fetch(ctx)
	case "list":
		s.list()
	case "filter":
		if len(rest) != 1 {
			s.printf("Usage: filter <all|in_progress|completed>\n")
			return
		}
		if err := s.tasks.SetStatusFilter(models.StatusFilter(rest[0])); err != nil {
			s.printf("%v\n", err)
			return
		}
		s.list()
	case "search":
		s.tasks.SetSearchQuery(strings.Join(rest, " "))
		s.list()
	case "clear":
		s.tasks.ClearFilters()
		s.list()
	case "counts":
		c := s.tasks.Counts()
		s.printf("Total: %d  In progress: %d  Completed: %d\n", c.Total, c.InProgress, c.Completed)
	case "add":
		s.add(ctx)
	case "edit":
		if len(rest) != 1 {
			s.printf("Usage: edit <id>\n")
			return
		}
		s.edit(ctx, rest[0])
	case "status":
		if len(rest) < 1 || len(rest) > 2 {
			s.printf("Usage: status <id> [in_progress|completed]\n")
			return
		}
		s.status(ctx, rest)
	case "delete":
		if len(rest) != 1 {
			s.printf("Usage: delete <id>\n")
			return
		}
		if err := s.tasks.DeleteTask(ctx, rest[0]); err != nil {
			s.fail(s.tasks.Error(), err)
			return
		}
		s.printf("Task deleted\n")
	default:
		s.printf("Unknown command. Type 'help' for a list of commands.\n")
	}
}

// guard mirrors a route guard: unauthenticated access redirects to login.
func (s *Shell) guard() bool {
	if s.session.IsAuthenticated() {
		return true
	}
	s.router.Navigate(LoginPath)
	s.printf("Please log in first\n")
	return false
}

func (s *Shell) login(ctx context.Context, args []string) {
	if s.session.IsAuthenticated() {
		user, _ := s.session.User()
		s.router.Navigate(TasksPath)
		s.printf("Already logged in as %s\n", user.Name)
		return
	}

	var creds models.Credentials
	if len(args) > 0 {
		creds.Email = args[0]
	} else if v, ok := ask(s.sc, s.out, "Email: "); ok {
		creds.Email = v
	}
	if len(args) > 1 {
		creds.Password = args[1]
	} else if v, ok := ask(s.sc, s.out, "Password: "); ok {
		creds.Password = v
	}

	if err := s.session.Login(ctx, creds); err != nil {
		s.fail(s.session.Error(), err)
		return
	}
	user, _ := s.session.User()
	s.router.Navigate(TasksPath)
	s.printf("Logged in as %s\n", user.Name)
	s.fetch(ctx)
}

func (s *Shell) fetch(ctx context.Context) {
	if err := s.tasks.FetchTasks(ctx); err != nil {
		s.fail(s.tasks.Error(), err)
		return
	}
	s.printf("Loaded %d tasks\n", len(s.tasks.Tasks()))
}

func (s *Shell) list() {
	tasks := s.tasks.FilteredTasks()
	if q := s.tasks.SearchQuery(); q != "" || s.tasks.StatusFilter() != models.FilterAll {
		s.printf("Filter: %s  Search: %q\n", s.tasks.StatusFilter(), q)
	}
	if len(tasks) == 0 {
		s.printf("No tasks\n")
		return
	}
	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tASSIGNEE\tDUE")
	for _, t := range tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Status, t.Assignee, t.DueDate)
	}
	_ = w.Flush()
}

func (s *Shell) add(ctx context.Context) {
	data, err := PromptForTask(s.sc, s.out)
	if err != nil {
		s.printf("%v\n", err)
		return
	}
	task, err := s.tasks.CreateTask(ctx, data)
	if err != nil {
		s.fail(s.tasks.Error(), err)
		return
	}
	s.printf("Task %s created\n", task.ID)
}

func (s *Shell) edit(ctx context.Context, id string) {
	current, ok := s.cached(id)
	if !ok {
		s.printf("Task not found\n")
		return
	}
	patch, err := PromptEditTask(s.sc, s.out, current)
	if err != nil {
		s.printf("%v\n", err)
		return
	}
	if patch.Empty() {
		s.printf("Nothing changed\n")
		return
	}
	if _, err := s.tasks.UpdateTask(ctx, id, patch); err != nil {
		s.fail(s.tasks.Error(), err)
		return
	}
	s.printf("Task updated\n")
}

func (s *Shell) status(ctx context.Context, args []string) {
	id := args[0]
	var status models.TaskStatus
	if len(args) == 2 {
		status = models.TaskStatus(args[1])
	} else {
		current, ok := s.cached(id)
		if !ok {
			s.printf("Task not found\n")
			return
		}
		status = models.StatusCompleted
		if current.Status == models.StatusCompleted {
			status = models.StatusInProgress
		}
	}
	task, err := s.tasks.UpdateTaskStatus(ctx, id, status)
	if err != nil {
		s.fail(s.tasks.Error(), err)
		return
	}
	s.printf("Task %s is now %s\n", task.ID, task.Status)
}

func (s *Shell) cached(id string) (models.Task, bool) {
	for _, t := range s.tasks.Tasks() {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}

// fail prints the user-facing message and logs the underlying error.
func (s *Shell) fail(msg string, err error) {
	if msg == "" || errors.Is(err, context.Canceled) {
		msg = err.Error()
	}
	s.printf("%s\n", msg)
	s.log.Debug("command failed", zap.Error(err))
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}
