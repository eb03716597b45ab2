package pool

import (
	"sync"
	"sync/atomic"

	"github.com/miyachan/lnx/internal/errors"
)

// Executor is one index execution context: a unit capable of running a
// single query, backed by reader-thread workers. With one thread, tasks run
// inline on the caller; with more, they fan out across a fixed worker group.
type Executor struct {
	threads int
	tasks   chan execTask
	wg      sync.WaitGroup
	closed  atomic.Bool
	once    sync.Once
}

type execTask struct {
	fn   func() error
	done chan<- error
}

func newExecutor(threads int) *Executor {
	e := &Executor{threads: threads}
	if threads > 1 {
		e.tasks = make(chan execTask)
		for i := 0; i < threads; i++ {
			e.wg.Add(1)
			go e.worker()
		}
	}
	return e
}

func (e *Executor) worker() {
	defer e.wg.Done()
	for task := range e.tasks {
		task.done <- task.fn()
	}
}

// Threads returns the number of reader threads backing this executor.
func (e *Executor) Threads() int {
	return e.threads
}

// Do runs fn to completion on the executor.
func (e *Executor) Do(fn func() error) error {
	if e.threads == 1 {
		return fn()
	}
	if e.closed.Load() {
		return errors.Internal("executor used after shutdown", nil)
	}
	done := make(chan error, 1)
	e.tasks <- execTask{fn: fn, done: done}
	return <-done
}

// Each runs every fn across the executor's workers and returns the first
// error encountered. All fns run to completion regardless of errors.
func (e *Executor) Each(fns []func() error) error {
	if e.threads == 1 || len(fns) == 1 {
		var firstErr error
		for _, fn := range fns {
			if err := fn(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}
	if e.closed.Load() {
		return errors.Internal("executor used after shutdown", nil)
	}

	done := make(chan error, len(fns))
	for _, fn := range fns {
		e.tasks <- execTask{fn: fn, done: done}
	}
	var firstErr error
	for range fns {
		if err := <-done; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// shutdown stops the worker group. Idempotent.
func (e *Executor) shutdown() {
	e.once.Do(func() {
		e.closed.Store(true)
		if e.tasks != nil {
			close(e.tasks)
			e.wg.Wait()
		}
	})
}

// ExecutorPool owns a fixed set of executors, one checked out per
// operation. The pool is sized 1:1 with the concurrency gate, so a held
// permit always implies a free executor and Acquire never blocks.
type ExecutorPool struct {
	executors chan *Executor
	all       []*Executor
	once      sync.Once
}

// NewExecutorPool creates size executors with readerThreads workers each.
// Total threads spawned = size * readerThreads; the operator controls both
// knobs deliberately.
func NewExecutorPool(size, readerThreads int) *ExecutorPool {
	p := &ExecutorPool{
		executors: make(chan *Executor, size),
		all:       make([]*Executor, 0, size),
	}
	for i := 0; i < size; i++ {
		e := newExecutor(readerThreads)
		p.all = append(p.all, e)
		p.executors <- e
	}
	return p
}

// Acquire checks out an executor for one operation. It never blocks; an
// empty pool means the gate/pool pairing is broken and is an internal bug.
func (p *ExecutorPool) Acquire() (*ExecutorLease, error) {
	select {
	case e := <-p.executors:
		return &ExecutorLease{exec: e, pool: p}, nil
	default:
		return nil, errors.New(errors.ErrCodePoolExhausted, "executor pool exhausted, this is a bug", nil)
	}
}

// Shutdown tears down every executor's workers. Idempotent, and safe once
// all leases have been released.
func (p *ExecutorPool) Shutdown() {
	p.once.Do(func() {
		for _, e := range p.all {
			e.shutdown()
		}
	})
}

// ExecutorLease is a scoped checkout. Release returns the executor on every
// exit path; it is idempotent.
type ExecutorLease struct {
	exec *Executor
	pool *ExecutorPool
	once sync.Once
}

// Executor returns the leased execution context.
func (l *ExecutorLease) Executor() *Executor {
	return l.exec
}

// Release returns the executor to the pool.
func (l *ExecutorLease) Release() {
	l.once.Do(func() {
		l.pool.executors <- l.exec
	})
}
