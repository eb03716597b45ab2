package pool

import (
	"context"
	"log/slog"
	"sync"

	"github.com/miyachan/lnx/internal/errors"
)

// DispatchPool is a fixed-size worker pool running blocking index work off
// the calling goroutine. Each unit of work reports back through a
// single-use buffered completion channel, so a worker's send never blocks
// and is silently discarded if the waiter has gone away.
type DispatchPool struct {
	tasks chan func()
	wg    sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

// NewDispatchPool starts workers goroutines consuming submitted work.
func NewDispatchPool(workers int) *DispatchPool {
	p := &DispatchPool{
		// Buffered to the worker count: the gate bounds in-flight
		// operations to the same number, so submission never blocks.
		tasks: make(chan func(), workers),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *DispatchPool) worker() {
	defer p.wg.Done()
	for fn := range p.tasks {
		fn()
	}
}

// Submit queues fn for execution. Fails after Stop.
func (p *DispatchPool) Submit(fn func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return errors.New(errors.ErrCodeDispatchStopped, "dispatch pool is stopped", nil)
	}
	p.tasks <- fn
	return nil
}

// Stop drains and joins the workers. Idempotent.
func (p *DispatchPool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
}

// Result carries a completed unit of work's outcome.
type Result[T any] struct {
	Value T
	Err   error
}

// Dispatch submits fn to the pool and returns its completion channel. If
// the work panics, the channel is closed without a send; Await maps that to
// the channel-closed internal error rather than swallowing it.
func Dispatch[T any](p *DispatchPool, fn func() (T, error)) (<-chan Result[T], error) {
	ch := make(chan Result[T], 1)
	err := p.Submit(func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("dispatch_worker_panic", slog.Any("panic", r))
				close(ch)
			}
		}()
		v, err := fn()
		ch <- Result[T]{Value: v, Err: err}
	})
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// Await suspends on a completion channel. A closed channel without a result
// surfaces as the channel-closed internal error. Cancelling ctx abandons
// the wait but does not stop the in-flight worker.
func Await[T any](ctx context.Context, ch <-chan Result[T]) (T, error) {
	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r, ok := <-ch:
		if !ok {
			return zero, errors.ErrChannelClosed
		}
		return r.Value, r.Err
	}
}
