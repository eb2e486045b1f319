package backend

import (
	"context"
	"time"
)

// Latency holds the artificial delay applied to each operation.
type Latency struct {
	Login  time.Duration
	Fetch  time.Duration
	Create time.Duration
	Update time.Duration
	Delete time.Duration
}

// DefaultLatency returns the standard per-operation delays.
func DefaultLatency() Latency {
	return Latency{
		Login:  500 * time.Millisecond,
		Fetch:  300 * time.Millisecond,
		Create: 400 * time.Millisecond,
		Update: 400 * time.Millisecond,
		Delete: 500 * time.Millisecond,
	}
}

// NoLatency disables every delay.
func NoLatency() Latency {
	return Latency{}
}

// Scale multiplies every delay by f. Non-positive factors disable the delays.
func (l Latency) Scale(f float64) Latency {
	if f <= 0 {
		return NoLatency()
	}
	mul := func(d time.Duration) time.Duration {
		return time.Duration(float64(d) * f)
	}
	return Latency{
		Login:  mul(l.Login),
		Fetch:  mul(l.Fetch),
		Create: mul(l.Create),
		Update: mul(l.Update),
		Delete: mul(l.Delete),
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
