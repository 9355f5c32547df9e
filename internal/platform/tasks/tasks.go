// Package tasks provides a detached task runner for fire-and-forget side
// effects (invitation emails, downstream processing triggers). Tasks are
// dispatched on their own goroutine; failures are logged and swallowed, and
// callers never join on the result.
package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout bounds how long a detached task may run.
const DefaultTimeout = 30 * time.Second

// Runner dispatches detached tasks.
type Runner struct {
	logger  zerolog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewRunner(logger zerolog.Logger) *Runner {
	return &Runner{logger: logger, timeout: DefaultTimeout}
}

// Go dispatches fn on its own goroutine with a fresh bounded context. The
// caller's context is deliberately not inherited: the task must outlive the
// request that spawned it.
func (r *Runner) Go(name string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if p := recover(); p != nil {
				r.logger.Error().Str("task", name).Str("panic", fmt.Sprintf("%v", p)).Msg("detached task panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			r.logger.Warn().Err(err).Str("task", name).Msg("detached task failed")
			return
		}
		r.logger.Debug().Str("task", name).Msg("detached task completed")
	}()
}

// Wait blocks until all dispatched tasks finish. Used on shutdown and in
// tests; request handlers never call it.
func (r *Runner) Wait() {
	r.wg.Wait()
}
