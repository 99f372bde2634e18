// internal/app/system/tasks/runner.go

// Package tasks runs fire-and-forget background work: simulated training
// progress and delayed mock chat replies. Triggering requests never wait on
// a task; completion is observable only through the store (or the returned
// channel, which exists for tests and shutdown).
package tasks

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Runner schedules background tasks against a base context that outlives
// the HTTP requests that spawn them.
type Runner struct {
	logger *zap.Logger

	mu     sync.Mutex
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

func NewRunner(logger *zap.Logger) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{logger: logger, ctx: ctx, cancel: cancel}
}

// Go schedules fn to run after delay. The returned channel is closed when
// fn has finished (or the runner shut down first); callers that do not care
// simply drop it.
func (r *Runner) Go(name string, delay time.Duration, fn func(ctx context.Context) error) <-chan struct{} {
	done := make(chan struct{})

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		close(done)
		return done
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		defer close(done)
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("background task panicked",
					zap.String("task", name), zap.Any("panic", rec))
			}
		}()

		if delay > 0 {
			t := time.NewTimer(delay)
			defer t.Stop()
			select {
			case <-t.C:
			case <-r.ctx.Done():
				return
			}
		}
		if err := fn(r.ctx); err != nil {
			r.logger.Error("background task failed",
				zap.String("task", name), zap.Error(err))
		}
	}()
	return done
}

// Shutdown stops accepting tasks, cancels pending delays, and waits for
// in-flight work until ctx expires.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.cancel()

	waited := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(waited)
	}()
	select {
	case <-waited:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
