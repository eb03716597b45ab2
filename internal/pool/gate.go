// Package pool provides the three owned resource pools behind the reader:
// the concurrency gate admitting operations, the executor pool of index
// execution contexts, and the dispatch pool running blocking work.
package pool

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/miyachan/lnx/internal/errors"
)

// Gate is a counting admission-control primitive bounding concurrent
// operations. Waiters are resumed in rough arrival order; no stronger
// fairness is guaranteed.
type Gate struct {
	sem *semaphore.Weighted
	max int64

	mu      sync.Mutex
	closed  bool
	drained bool
}

// NewGate creates a gate admitting up to max concurrent holders.
func NewGate(max int) *Gate {
	return &Gate{
		sem: semaphore.NewWeighted(int64(max)),
		max: int64(max),
	}
}

// Acquire obtains one permit, suspending while the gate is full. The
// returned release function is idempotent and must be called on every exit
// path. Acquiring after Close fails with the gate-closed error.
func (g *Gate) Acquire(ctx context.Context) (func(), error) {
	if g.isClosed() {
		return nil, errors.ErrGateClosed
	}
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	// Closed while we were queued behind the drain.
	if g.isClosed() {
		g.sem.Release(1)
		return nil, errors.ErrGateClosed
	}

	var once sync.Once
	return func() {
		once.Do(func() { g.sem.Release(1) })
	}, nil
}

// AcquireAll suspends until every permit is free, i.e. no operation is in
// flight. The permits stay held so nothing new is admitted; callers follow
// up with Close to reject all later acquires.
func (g *Gate) AcquireAll(ctx context.Context) error {
	if g.isClosed() {
		return errors.ErrGateClosed
	}
	if err := g.sem.Acquire(ctx, g.max); err != nil {
		return err
	}
	g.mu.Lock()
	g.drained = true
	g.mu.Unlock()
	return nil
}

// Close flips the gate to rejecting. If the gate was drained via AcquireAll,
// the held permits are returned so waiters queued behind the drain wake up
// and observe the closed state instead of suspending forever. Safe to call
// more than once.
func (g *Gate) Close() {
	g.mu.Lock()
	wake := g.drained && !g.closed
	g.closed = true
	g.mu.Unlock()

	if wake {
		g.sem.Release(g.max)
	}
}

func (g *Gate) isClosed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}
