// Package service provides the client-side state engines: the session manager,
// which owns authentication, and the task collection, which owns the cached
// task list and its derived views. Both talk to the backend through interfaces
// and never reference each other.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/atinyakov/GophTasks/internal/models"
	"go.uber.org/zap"
)

// Keys under which the session is persisted.
const (
	TokenKey = "auth_token"
	UserKey  = "auth_user"
)

// LoginPath is where the navigator is sent after logout.
const LoginPath = "/login"

// User-facing messages. They never say which credential was wrong.
const (
	msgInvalidCredentials = "Invalid email or password"
	msgSessionNotSaved    = "Unable to save session"
)

// ErrMalformedSession is reported when the persisted session cannot be decoded.
// It is handled inside InitAuth and never returned to callers.
var ErrMalformedSession = errors.New("malformed persisted session")

// Authenticator defines the backend operations required by the SessionManager.
type Authenticator interface {
	// Login exchanges credentials for a token and user.
	Login(ctx context.Context, creds models.Credentials) (models.LoginResponse, error)
	// SetAuthToken arms the backend's auth gate; an empty token clears it.
	SetAuthToken(token string)
}

// KeyValueStore is the durable storage the session is mirrored into.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Navigator receives redirects produced by session changes.
type Navigator interface {
	Navigate(path string)
}

// SessionManager owns the single authentication session of the process.
type SessionManager struct {
	api   Authenticator
	store KeyValueStore
	nav   Navigator
	log   *zap.Logger

	// txMu serialises the persist-then-commit sections of Login, Logout and InitAuth.
	txMu sync.Mutex

	mu      sync.RWMutex
	token   string
	user    *models.User
	loading bool
	errMsg  string
}

// NewSessionManager constructs a SessionManager. nav and log may be nil.
func NewSessionManager(api Authenticator, store KeyValueStore, nav Navigator, log *zap.Logger) *SessionManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionManager{api: api, store: store, nav: nav, log: log}
}

// Login authenticates with the backend and, on success, persists the session
// and arms the backend gate. Backend errors are returned unchanged.
func (s *SessionManager) Login(ctx context.Context, creds models.Credentials) error {
	s.mu.Lock()
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	resp, err := s.api.Login(ctx, creds)
	if err != nil {
		s.setError(msgInvalidCredentials)
		s.log.Info("login failed", zap.Error(err))
		return err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := s.persist(ctx, resp); err != nil {
		s.setError(msgSessionNotSaved)
		s.log.Error("failed to persist session", zap.Error(err))
		return err
	}

	user := resp.User
	s.mu.Lock()
	s.token = resp.Token
	s.user = &user
	s.api.SetAuthToken(resp.Token)
	s.mu.Unlock()

	s.log.Info("logged in", zap.String("user_id", user.ID))
	return nil
}

// persist writes both keys. If either write fails both keys are removed again.
func (s *SessionManager) persist(ctx context.Context, resp models.LoginResponse) error {
	userJSON, err := json.Marshal(resp.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	err = s.store.Set(ctx, TokenKey, resp.Token)
	if err == nil {
		err = s.store.Set(ctx, UserKey, string(userJSON))
	}
	if err != nil {
		if rbErr := s.removeKeys(context.WithoutCancel(ctx)); rbErr != nil {
			s.log.Error("failed to roll back persisted session", zap.Error(rbErr))
		}
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

func (s *SessionManager) removeKeys(ctx context.Context) error {
	return errors.Join(
		s.store.Remove(ctx, TokenKey),
		s.store.Remove(ctx, UserKey),
	)
}

// Logout destroys the session, clears the backend gate and redirects to the
// login path. In-memory state is cleared even when removing the persisted
// keys fails; such failures are returned.
func (s *SessionManager) Logout(ctx context.Context) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.errMsg = ""
	s.api.SetAuthToken("")
	s.mu.Unlock()

	err := s.removeKeys(ctx)
	if err != nil {
		s.log.Error("failed to remove persisted session", zap.Error(err))
	}
	s.log.Info("logged out")

	if s.nav != nil {
		s.nav.Navigate(LoginPath)
	}
	return err
}

// InitAuth restores a persisted session. A missing, partial or malformed
// session leaves the manager logged out without reporting an error.
func (s *SessionManager) InitAuth(ctx context.Context) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	token, user, err := s.restore(ctx)
	if err != nil {
		s.log.Warn("ignoring persisted session", zap.Error(err))
		return
	}
	if token == "" {
		return
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.api.SetAuthToken(token)
	s.mu.Unlock()

	s.log.Info("session restored", zap.String("user_id", user.ID))
}

func (s *SessionManager) restore(ctx context.Context) (string, *models.User, error) {
	token, okToken, err := s.store.Get(ctx, TokenKey)
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", TokenKey, err)
	}
	rawUser, okUser, err := s.store.Get(ctx, UserKey)
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", UserKey, err)
	}
	if !okToken || !okUser || token == "" || rawUser == "" {
		return "", nil, nil
	}

	var user models.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformedSession, err)
	}
	return token, &user, nil
}

func (s *SessionManager) setError(msg string) {
	s.mu.Lock()
	s.errMsg = msg
	s.mu.Unlock()
}

// IsAuthenticated reports whether a session token is held.
func (s *SessionManager) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// Token returns the current session token, or "".
func (s *SessionManager) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the logged-in user.
func (s *SessionManager) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// IsLoading reports whether a login is in flight.
func (s *SessionManager) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Error returns the last user-facing error message.
func (s *SessionManager) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}
