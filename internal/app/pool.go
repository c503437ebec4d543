package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// ErrPoolClosed is returned by Do after Close.
var ErrPoolClosed = errors.New("worker pool closed")

// Pool bounds the number of CPU-bound jobs running at once.
type Pool struct {
	sem     *semaphore.Weighted
	size    int64
	waiting atomic.Int64
	running atomic.Int64

	mu     sync.Mutex // guards closed and wg.Add against Close
	wg     sync.WaitGroup
	closed bool
}

// NewPool creates a pool running at most workers jobs concurrently.
func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(workers)), size: int64(workers)}
}

// Do runs fn on a pool slot and waits for it. When ctx is cancelled first,
// Do returns ctx.Err() and the result of fn, if it already started, is
// discarded.
func (p *Pool) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if p.isClosed() {
		return ErrPoolClosed
	}

	p.waiting.Add(1)
	err := p.sem.Acquire(ctx, 1)
	p.waiting.Add(-1)
	if err != nil {
		return err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.sem.Release(1)
		return ErrPoolClosed
	}
	p.wg.Add(1)
	p.mu.Unlock()

	done := make(chan error, 1)
	p.running.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.sem.Release(1)
		defer p.running.Add(-1)
		done <- fn(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Queued returns the number of jobs waiting for a slot.
func (p *Pool) Queued() int { return int(p.waiting.Load()) }

// Running returns the number of jobs holding a slot.
func (p *Pool) Running() int { return int(p.running.Load()) }

// Size returns the number of slots.
func (p *Pool) Size() int { return int(p.size) }

// Close rejects new jobs and waits for running ones to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Pool) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Submit runs fn on p and returns its result. The result is only read after
// fn has returned, so a job still running when ctx is cancelled never races
// with the caller; the caller gets the zero value and ctx.Err().
func Submit[T any](ctx context.Context, p *Pool, fn func(ctx context.Context) (T, error)) (T, error) {
	results := make(chan T, 1)
	err := p.Do(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		results <- v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return <-results, nil
}
