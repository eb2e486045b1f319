package backend

import (
	"sync"
	"testing"

	"github.com/atinyakov/GophTasks/internal/models"
)

func TestSequenceGenerator_PrimedFromExisting(t *testing.T) {
	existing := []models.Task{{ID: "t3"}, {ID: "t10"}, {ID: "x99"}, {ID: "tabc"}}
	g := NewSequenceGenerator("t", existing)

	if got := g.NextID(); got != "t11" {
		t.Errorf("NextID() = %q; want t11", got)
	}
	if got := g.NextID(); got != "t12" {
		t.Errorf("NextID() = %q; want t12", got)
	}

	g.Observe("t5")
	if got := g.NextID(); got != "t13" {
		t.Errorf("Observe must never move the counter backwards, got %q", got)
	}
}

func TestSequenceGenerator_Concurrent(t *testing.T) {
	g := NewSequenceGenerator("t", nil)
	const n = 100

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]bool, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := g.NextID()
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(seen) != n {
		t.Errorf("expected %d unique ids, got %d", n, len(seen))
	}
}

func TestUUIDGenerator(t *testing.T) {
	var g UUIDGenerator
	a, b := g.NextID(), g.NextID()
	if a == "" || a == b {
		t.Errorf("unexpected ids %q, %q", a, b)
	}
}
