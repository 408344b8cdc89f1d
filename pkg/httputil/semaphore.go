// Package httputil holds HTTP-adjacent plumbing shared by the gateway.
package httputil

import (
	"context"
	"sync/atomic"
)

// Semaphore bounds concurrent scoring requests. Scoring is CPU-bound
// (forest traversal), so admitting unbounded concurrency only trades
// latency for goroutine pileup; past capacity the caller sheds the
// request instead.
type Semaphore struct {
	sem  chan struct{}
	shed atomic.Int64
}

// NewSemaphore creates a semaphore with the given capacity.
func NewSemaphore(capacity int) *Semaphore {
	if capacity <= 0 {
		capacity = 256
	}
	return &Semaphore{
		sem: make(chan struct{}, capacity),
	}
}

// TryAcquire attempts to take a slot without blocking. Returns false
// when saturated; the caller should respond 503 rather than queue.
func (s *Semaphore) TryAcquire() bool {
	select {
	case s.sem <- struct{}{}:
		return true
	default:
		s.shed.Add(1)
		return false
	}
}

// Acquire blocks until a slot is available or the context is done.
// Used by batch callers that must eventually complete.
func (s *Semaphore) Acquire(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot. Must follow a successful TryAcquire/Acquire.
func (s *Semaphore) Release() {
	select {
	case <-s.sem:
	default:
		// Release without acquire; nothing to return.
	}
}

// Stats returns a point-in-time snapshot for the health endpoint.
func (s *Semaphore) Stats() SemaphoreStats {
	return SemaphoreStats{
		Capacity:  cap(s.sem),
		InUse:     len(s.sem),
		Available: cap(s.sem) - len(s.sem),
		Shed:      s.shed.Load(),
	}
}

// SemaphoreStats reports scoring-concurrency saturation.
type SemaphoreStats struct {
	Capacity  int   `json:"capacity"`
	InUse     int   `json:"in_use"`
	Available int   `json:"available"`
	Shed      int64 `json:"shed"`
}
