package pool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miyachan/lnx/internal/errors"
)

func TestGate_BoundsConcurrency(t *testing.T) {
	g := NewGate(2)
	ctx := context.Background()

	rel1, err := g.Acquire(ctx)
	require.NoError(t, err)
	rel2, err := g.Acquire(ctx)
	require.NoError(t, err)

	// A third acquire must suspend until a permit frees.
	short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = g.Acquire(short)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	rel1()
	rel3, err := g.Acquire(ctx)
	require.NoError(t, err)
	rel3()
	rel2()
}

func TestGate_ReleaseIdempotent(t *testing.T) {
	g := NewGate(1)
	rel, err := g.Acquire(context.Background())
	require.NoError(t, err)
	rel()
	rel() // second call must not double-release

	rel2, err := g.Acquire(context.Background())
	require.NoError(t, err)
	defer rel2()

	short, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = g.Acquire(short)
	assert.ErrorIs(t, err, context.DeadlineExceeded, "capacity must still be 1")
}

func TestGate_AcquireAllWaitsForInflight(t *testing.T) {
	g := NewGate(3)
	ctx := context.Background()

	var releases []func()
	for i := 0; i < 3; i++ {
		rel, err := g.Acquire(ctx)
		require.NoError(t, err)
		releases = append(releases, rel)
	}

	drained := make(chan struct{})
	go func() {
		require.NoError(t, g.AcquireAll(ctx))
		close(drained)
	}()

	select {
	case <-drained:
		t.Fatal("AcquireAll returned while permits were held")
	case <-time.After(50 * time.Millisecond):
	}

	for _, rel := range releases {
		rel()
	}

	select {
	case <-drained:
	case <-time.After(time.Second):
		t.Fatal("AcquireAll never completed after drain")
	}
}

func TestGate_ClosedRejectsAcquire(t *testing.T) {
	g := NewGate(1)
	require.NoError(t, g.AcquireAll(context.Background()))
	g.Close()

	_, err := g.Acquire(context.Background())
	assert.ErrorIs(t, err, errors.ErrGateClosed)
	assert.ErrorIs(t, g.AcquireAll(context.Background()), errors.ErrGateClosed)
}

func TestGate_CloseWakesQueuedWaiters(t *testing.T) {
	g := NewGate(1)
	ctx := context.Background()
	require.NoError(t, g.AcquireAll(ctx))

	// Queued behind the drain before the gate flips to closed.
	waited := make(chan error, 1)
	go func() {
		_, err := g.Acquire(ctx)
		waited <- err
	}()
	time.Sleep(20 * time.Millisecond)

	g.Close()

	select {
	case err := <-waited:
		assert.ErrorIs(t, err, errors.ErrGateClosed)
	case <-time.After(time.Second):
		t.Fatal("waiter never woke after close")
	}
}

func TestGate_ManyWaitersAllAdmitted(t *testing.T) {
	const max = 4
	g := NewGate(max)
	ctx := context.Background()

	var inflight atomic.Int32
	var peak atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < max*4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rel, err := g.Acquire(ctx)
			if !assert.NoError(t, err) {
				return
			}
			defer rel()

			n := inflight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inflight.Add(-1)
		}()
	}

	wg.Wait()
	assert.LessOrEqual(t, peak.Load(), int32(max))
	assert.Greater(t, peak.Load(), int32(0))
}
