package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rahulvramesh/pchelper/internal/config"
	"github.com/rahulvramesh/pchelper/internal/errorlog"
	"github.com/rahulvramesh/pchelper/internal/logger"
	"github.com/rahulvramesh/pchelper/internal/maintenance"
	"github.com/rahulvramesh/pchelper/internal/metrics"
	"github.com/rahulvramesh/pchelper/internal/scanner"
	"github.com/rahulvramesh/pchelper/internal/scheduler"
	"github.com/rahulvramesh/pchelper/internal/timer"
	"github.com/rahulvramesh/pchelper/internal/types"
)

// app holds the components shared by every command
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	counter  *timer.Counter
	errors   *errorlog.Store
	lister   *scanner.Lister
	sizer    *scanner.Sizer
}

func newApp(path string) (*app, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration %s: %w", path, errors.Join(errs...))
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := os.MkdirAll(cfg.State.Dir, 0755); err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	store := errorlog.NewStore(cfg.State.Dir, log)
	if err := store.Load(); err != nil {
		log.Error("failed to load error log", err)
	}

	return &app{
		cfg:      cfg,
		log:      log,
		registry: registry,
		metrics:  m,
		counter:  timer.NewCounter(timer.NewStore(cfg.State.Dir), log),
		errors:   store,
		lister:   scanner.NewLister(cfg.Cleanup.Exclude, log),
		sizer: scanner.NewSizer(
			scanner.WithLogger(log),
			scanner.WithMetrics(m),
			scanner.WithWorkers(cfg.Cleanup.Workers),
		),
	}, nil
}

func (a *app) Close() error {
	return a.log.Close()
}

// newScheduler registers every configured timer with the callback its kind selects
func (a *app) newScheduler(notifier maintenance.Notifier) (*scheduler.Scheduler, error) {
	s := scheduler.New(a.counter, a.log,
		scheduler.WithCadence(a.cfg.Scheduler.CheckSchedule),
		scheduler.WithMetrics(a.metrics),
	)

	source := maintenance.NewCommandSource(a.cfg.EventLog.Command, a.cfg.EventLogTimeout())
	for _, t := range a.cfg.Timers {
		var cb scheduler.Callback
		switch t.Kind {
		case config.KindErrorScan:
			cb = maintenance.ErrorScanJob(source, a.errors, notifier, a.log)
		default:
			cb = maintenance.ReminderJob(notifier, t.IntervalDays)
		}
		if err := s.Register(t.Name, t.IntervalDays, cb); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (a *app) timerStates() []types.TimerState {
	states := make([]types.TimerState, 0, len(a.cfg.Timers))
	for _, t := range a.cfg.Timers {
		states = append(states, a.counter.State(t.Name, t.IntervalDays))
	}
	return states
}

// serveMetrics exposes /metrics until ctx is done. It does nothing when no
// address is configured.
func (a *app) serveMetrics(ctx context.Context) {
	if a.cfg.Metrics.Addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(a.registry))
	srv := &http.Server{
		Addr:              a.cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.log.Info("serving metrics", logger.Field{Key: "addr", Value: srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("metrics server failed", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
}
