// Package scheduler invokes a function at a fixed interval until stopped.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"emojiscraper/pkg/logger"
)

// DefaultInterval is the scan cadence used when none is configured.
const DefaultInterval = 100 * time.Millisecond

// ErrorHandler receives errors returned by the scheduled function.
type ErrorHandler func(err error)

// Scheduler runs one function repeatedly. Invocations never overlap, and once
// Stop has been called no new invocation starts.
type Scheduler struct {
	interval time.Duration
	failFast bool
	onError  ErrorHandler
	logger   logger.Logger

	stopped  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	runs     atomic.Int64
}

// New creates a scheduler ticking every interval. A non-positive interval
// selects DefaultInterval.
func New(interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		interval: interval,
		logger:   logger.GetLogger(),
		stopCh:   make(chan struct{}),
	}
}

// SetLogger replaces the logger used by the default error handler.
func (s *Scheduler) SetLogger(l logger.Logger) {
	s.logger = l
}

// SetErrorHandler replaces the default handler, which logs the error.
func (s *Scheduler) SetErrorHandler(h ErrorHandler) {
	s.onError = h
}

// SetFailFast makes Run return the first error instead of continuing.
func (s *Scheduler) SetFailFast(failFast bool) {
	s.failFast = failFast
}

// Interval returns the tick interval.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Stop cancels all future invocations. It is safe to call more than once and
// from any goroutine, including from inside the scheduled function. An
// invocation already running is not interrupted.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.stopped.Store(true)
		close(s.stopCh)
	})
}

// Stopped reports whether Stop has been called.
func (s *Scheduler) Stopped() bool {
	return s.stopped.Load()
}

// Done is closed when Stop is called.
func (s *Scheduler) Done() <-chan struct{} {
	return s.stopCh
}

// Invocations returns how many times the function has been started.
func (s *Scheduler) Invocations() int64 {
	return s.runs.Load()
}

// Run calls fn immediately and then every interval. It returns nil once
// Stop is called, the context error when ctx ends, or with fail-fast set the
// first error fn returns.
func (s *Scheduler) Run(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return errors.New("scheduler: nil function")
	}

	if err := s.invoke(ctx, fn); err != nil {
		return err
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.invoke(ctx, fn); err != nil {
				return err
			}
		}
	}
}

func (s *Scheduler) invoke(ctx context.Context, fn func(context.Context) error) error {
	if s.Stopped() || ctx.Err() != nil {
		return nil
	}

	s.runs.Add(1)
	err := fn(ctx)
	if err == nil {
		return nil
	}
	if s.failFast {
		s.Stop()
		return err
	}
	s.handle(err)
	return nil
}

func (s *Scheduler) handle(err error) {
	if s.onError != nil {
		s.onError(err)
		return
	}
	s.logger.WithError(err).Error("Scheduled run failed")
}
