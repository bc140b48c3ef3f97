// Package pool bounds concurrent backend calls. Synchronous client calls
// (LLM, vector store) are dispatched here so a slow backend saturates the
// pool instead of the request scheduler.
package pool

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Pool is a bounded worker pool backed by a weighted semaphore. Safe for
// concurrent use; create once per process and share.
type Pool struct {
	sem *semaphore.Weighted
}

// New creates a pool admitting at most size concurrent calls.
func New(size int) *Pool {
	if size <= 0 {
		size = 32
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size))}
}

// Do runs fn on its own goroutine, bounded by the pool, and waits for either
// completion or ctx cancellation. When ctx expires first, Do returns
// ctx.Err() immediately; the abandoned call still releases its slot when the
// underlying client call unwinds.
func (p *Pool) Do(ctx context.Context, fn func(context.Context) error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() {
		defer p.sem.Release(1)
		done <- fn(ctx)
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
