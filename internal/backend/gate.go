package backend

import "sync"

// Gate holds the bearer token checked before every task operation.
// One Gate is shared by the simulator and whoever owns the session.
type Gate struct {
	mu    sync.RWMutex
	token string
}

// NewGate returns an empty, closed gate.
func NewGate() *Gate {
	return &Gate{}
}

// Set replaces the token. An empty token closes the gate.
func (g *Gate) Set(token string) {
	g.mu.Lock()
	g.token = token
	g.mu.Unlock()
}

// Token returns the current token.
func (g *Gate) Token() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.token
}

// Open reports whether a non-empty token is set.
func (g *Gate) Open() bool {
	return g.Token() != ""
}
