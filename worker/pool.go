// Package worker runs blocking capture and decode work on a bounded pool so
// request handlers never block on it directly.
package worker

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Pool bounds how many blocking jobs run at once.
type Pool struct {
	sem  *semaphore.Weighted
	size int
}

// NewPool creates a pool with size slots; size <= 0 uses GOMAXPROCS.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	return &Pool{
		sem:  semaphore.NewWeighted(int64(size)),
		size: size,
	}
}

func (p *Pool) Size() int {
	return p.size
}

type result[T any] struct {
	value T
	err   error
}

// Run executes fn on the pool and waits for its result. If ctx ends before a
// slot frees up, fn never runs. If ctx ends while fn is running, Run returns
// ctx.Err() immediately but fn keeps its slot until it finishes; in-flight
// capture is not interrupted.
func Run[T any](ctx context.Context, p *Pool, fn func() (T, error)) (T, error) {
	var zero T
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return zero, err
	}

	done := make(chan result[T], 1)
	go func() {
		defer p.sem.Release(1)
		value, err := fn()
		done <- result[T]{value: value, err: err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
