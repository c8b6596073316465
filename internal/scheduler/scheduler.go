// Package scheduler runs named day-interval timers on a fixed polling cadence.
// Each tick evaluates every timer in registration order; a due timer's
// callback runs synchronously and the timer is reset whatever the outcome.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/rahulvramesh/pchelper/internal/logger"
	"github.com/rahulvramesh/pchelper/internal/metrics"
)

// DefaultCadence is how often timers are checked
const DefaultCadence = "@every 1h"

var (
	ErrDuplicateTimer  = errors.New("timer already registered")
	ErrInvalidInterval = errors.New("timer interval must be at least one day")
	ErrAlreadyStarted  = errors.New("scheduler already started")
)

// Callback is invoked when a timer is due
type Callback func(ctx context.Context) error

// Counter is the durable due/reset store behind the timers
type Counter interface {
	IsDue(name string, intervalDays int) bool
	Reset(name string)
}

// Timer describes a registered timer
type Timer struct {
	Name         string
	IntervalDays int
}

type entry struct {
	Timer
	callback Callback
}

// Scheduler owns the registered timers and the polling loop
type Scheduler struct {
	counter Counter
	logger  *logger.Logger
	metrics *metrics.Metrics
	cadence string

	mu      sync.Mutex
	timers  []entry
	cron    *cron.Cron
	cancel  context.CancelFunc
	started bool

	tickMu sync.Mutex
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithCadence sets the polling schedule (any robfig/cron spec or descriptor)
func WithCadence(spec string) Option {
	return func(s *Scheduler) {
		if spec != "" {
			s.cadence = spec
		}
	}
}

// WithMetrics records fires and failures
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scheduler) { s.metrics = m }
}

// New creates a scheduler
func New(counter Counter, log *logger.Logger, opts ...Option) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	s := &Scheduler{
		counter: counter,
		logger:  log,
		cadence: DefaultCadence,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a timer. Registration order is evaluation order.
func (s *Scheduler) Register(name string, intervalDays int, cb Callback) error {
	if intervalDays < 1 {
		return fmt.Errorf("%s: %w", name, ErrInvalidInterval)
	}
	if cb == nil {
		return fmt.Errorf("%s: nil callback", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.timers {
		if t.Name == name {
			return fmt.Errorf("%s: %w", name, ErrDuplicateTimer)
		}
	}
	s.timers = append(s.timers, entry{Timer: Timer{Name: name, IntervalDays: intervalDays}, callback: cb})
	return nil
}

// Timers lists registered timers in evaluation order
func (s *Scheduler) Timers() []Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Timer, len(s.timers))
	for i, t := range s.timers {
		out[i] = t.Timer
	}
	return out
}

// Tick evaluates every timer once. A tick that starts while another is
// still running is skipped, so a timer can never fire twice for one check.
// A timer whose callback returns after ctx was cancelled stays due.
func (s *Scheduler) Tick(ctx context.Context) {
	if !s.tickMu.TryLock() {
		s.logger.Debug("previous tick still running, skipping")
		return
	}
	defer s.tickMu.Unlock()

	s.mu.Lock()
	timers := append([]entry(nil), s.timers...)
	s.mu.Unlock()

	for _, t := range timers {
		if ctx.Err() != nil {
			return
		}
		if !s.counter.IsDue(t.Name, t.IntervalDays) {
			continue
		}

		s.logger.Info("timer due", logger.Field{Key: "timer", Value: t.Name})
		s.metrics.TimerFired(t.Name)
		s.invoke(ctx, t)
		// an interrupted run did not finish, keep the timer due
		if ctx.Err() != nil {
			s.logger.Info("tick cancelled, timer not reset", logger.Field{Key: "timer", Value: t.Name})
			return
		}
		s.counter.Reset(t.Name)
	}
}

func (s *Scheduler) invoke(ctx context.Context, t entry) {
	defer func() {
		if r := recover(); r != nil {
			s.metrics.CallbackFailed(t.Name)
			s.logger.Error("timer callback panicked", fmt.Errorf("panic: %v", r),
				logger.Field{Key: "timer", Value: t.Name})
		}
	}()

	if err := t.callback(ctx); err != nil {
		s.metrics.CallbackFailed(t.Name)
		s.logger.Error("timer callback failed", err, logger.Field{Key: "timer", Value: t.Name})
	}
}

// Start runs one tick immediately and then ticks on the cadence until ctx is
// cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	cronLog := cronLogger{s.logger}
	c := cron.New(
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	if _, err := c.AddFunc(s.cadence, func() { s.Tick(ctx) }); err != nil {
		cancel()
		return fmt.Errorf("invalid check schedule %q: %w", s.cadence, err)
	}

	s.cron = c
	s.cancel = cancel
	s.started = true

	c.Start()
	go s.Tick(ctx)

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		s.logger.Info("scheduler stopped")
	}()

	s.logger.Info("scheduler started",
		logger.Field{Key: "cadence", Value: s.cadence},
		logger.Field{Key: "timers", Value: len(s.timers)})
	return nil
}

// Stop cancels the polling loop. A tick in progress finishes in the background.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.cancel()
	s.started = false
}
