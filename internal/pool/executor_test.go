package pool

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutor_SingleThreadedRunsInline(t *testing.T) {
	e := newExecutor(1)
	defer e.shutdown()

	ran := false
	err := e.Do(func() error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 1, e.Threads())
}

func TestExecutor_MultiThreadedDo(t *testing.T) {
	e := newExecutor(4)
	defer e.shutdown()

	err := e.Do(func() error { return fmt.Errorf("task failed") })
	assert.EqualError(t, err, "task failed")
}

func TestExecutor_EachRunsAllAndReportsFirstError(t *testing.T) {
	for _, threads := range []int{1, 3} {
		t.Run(fmt.Sprintf("threads=%d", threads), func(t *testing.T) {
			e := newExecutor(threads)
			defer e.shutdown()

			var ran atomic.Int32
			fns := make([]func() error, 8)
			for i := range fns {
				i := i
				fns[i] = func() error {
					ran.Add(1)
					if i%3 == 0 {
						return fmt.Errorf("fn %d failed", i)
					}
					return nil
				}
			}

			err := e.Each(fns)
			assert.Error(t, err)
			assert.Equal(t, int32(8), ran.Load(), "every fn runs even when some fail")
		})
	}
}

func TestExecutor_ShutdownIdempotent(t *testing.T) {
	e := newExecutor(2)
	e.shutdown()
	e.shutdown()

	err := e.Do(func() error { return nil })
	assert.Error(t, err, "a torn-down executor must fail cleanly")
}

func TestExecutorPool_AcquireNeverBlocks(t *testing.T) {
	p := NewExecutorPool(2, 1)
	defer p.Shutdown()

	l1, err := p.Acquire()
	require.NoError(t, err)
	l2, err := p.Acquire()
	require.NoError(t, err)

	// Pool drained: the gate invariant is broken, fail loudly.
	_, err = p.Acquire()
	assert.Error(t, err)

	l1.Release()
	l3, err := p.Acquire()
	require.NoError(t, err)

	l3.Release()
	l2.Release()
}

func TestExecutorLease_ReleaseIdempotent(t *testing.T) {
	p := NewExecutorPool(1, 1)
	defer p.Shutdown()

	l, err := p.Acquire()
	require.NoError(t, err)
	l.Release()
	l.Release()

	// Double release must not manufacture extra capacity.
	l2, err := p.Acquire()
	require.NoError(t, err)
	_, err = p.Acquire()
	assert.Error(t, err)
	l2.Release()
}

func TestExecutorPool_ShutdownIdempotent(t *testing.T) {
	p := NewExecutorPool(2, 3)
	p.Shutdown()
	p.Shutdown()
}
