package backend

import (
	"strconv"
	"strings"
	"sync"

	"github.com/atinyakov/GophTasks/internal/models"
	"github.com/google/uuid"
)

// IDGenerator produces task IDs synchronously at creation time.
type IDGenerator interface {
	NextID() string
}

// SequenceGenerator issues prefix+n with n strictly increasing.
// Deleting tasks never rewinds the counter, so IDs are not reused.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	last   uint64
}

// NewSequenceGenerator returns a generator primed past every ID in existing
// that has the form prefix+number.
func NewSequenceGenerator(prefix string, existing []models.Task) *SequenceGenerator {
	g := &SequenceGenerator{prefix: prefix}
	for _, t := range existing {
		g.Observe(t.ID)
	}
	return g
}

// Observe moves the counter past id if id belongs to this sequence.
func (g *SequenceGenerator) Observe(id string) {
	rest, ok := strings.CutPrefix(id, g.prefix)
	if !ok {
		return
	}
	n, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return
	}
	g.mu.Lock()
	if n > g.last {
		g.last = n
	}
	g.mu.Unlock()
}

// NextID returns the next ID in the sequence.
func (g *SequenceGenerator) NextID() string {
	g.mu.Lock()
	g.last++
	n := g.last
	g.mu.Unlock()
	return g.prefix + strconv.FormatUint(n, 10)
}

// UUIDGenerator issues random UUIDs.
type UUIDGenerator struct{}

// NextID returns a new random UUID string.
func (UUIDGenerator) NextID() string {
	return uuid.NewString()
}
