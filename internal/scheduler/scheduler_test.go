package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahulvramesh/pchelper/internal/metrics"
	"github.com/rahulvramesh/pchelper/internal/timer"
)

// fakeCounter marks names due until they are reset
type fakeCounter struct {
	mu     sync.Mutex
	due    map[string]bool
	resets []string
}

func newFakeCounter(due ...string) *fakeCounter {
	c := &fakeCounter{due: map[string]bool{}}
	for _, name := range due {
		c.due[name] = true
	}
	return c
}

func (c *fakeCounter) IsDue(name string, _ int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.due[name]
}

func (c *fakeCounter) Reset(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.due[name] = false
	c.resets = append(c.resets, name)
}

func (c *fakeCounter) Resets() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.resets...)
}

func TestRegister_Validation(t *testing.T) {
	s := New(newFakeCounter(), nil)
	noop := func(context.Context) error { return nil }

	require.NoError(t, s.Register("scan", 1, noop))
	assert.ErrorIs(t, s.Register("scan", 2, noop), ErrDuplicateTimer)
	assert.ErrorIs(t, s.Register("zero", 0, noop), ErrInvalidInterval)
	assert.Error(t, s.Register("nil", 1, nil))

	assert.Equal(t, []Timer{{Name: "scan", IntervalDays: 1}}, s.Timers())
}

func TestTick_RunsDueTimersInOrderAndResets(t *testing.T) {
	counter := newFakeCounter("manage", "scan")
	s := New(counter, nil)

	var calls []string
	record := func(name string) Callback {
		return func(context.Context) error {
			calls = append(calls, name)
			return nil
		}
	}
	require.NoError(t, s.Register("manage", 30, record("manage")))
	require.NoError(t, s.Register("idle", 7, record("idle")))
	require.NoError(t, s.Register("scan", 1, record("scan")))

	s.Tick(context.Background())

	assert.Equal(t, []string{"manage", "scan"}, calls)
	assert.Equal(t, []string{"manage", "scan"}, counter.Resets())

	// nothing is due on the next tick
	s.Tick(context.Background())
	assert.Len(t, calls, 2)
}

func TestTick_FailuresDoNotStopLaterTimers(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := newFakeCounter("err", "panic", "ok")
	s := New(counter, nil, WithMetrics(metrics.New(reg)))

	ran := false
	require.NoError(t, s.Register("err", 1, func(context.Context) error { return errors.New("scan failed") }))
	require.NoError(t, s.Register("panic", 1, func(context.Context) error { panic("boom") }))
	require.NoError(t, s.Register("ok", 1, func(context.Context) error {
		ran = true
		return nil
	}))

	assert.NotPanics(t, func() { s.Tick(context.Background()) })
	assert.True(t, ran)
	assert.Equal(t, []string{"err", "panic", "ok"}, counter.Resets())
}

func TestTick_OverlappingTickSkipped(t *testing.T) {
	counter := newFakeCounter("slow")
	s := New(counter, nil)

	started := make(chan struct{})
	release := make(chan struct{})
	var calls int
	require.NoError(t, s.Register("slow", 1, func(context.Context) error {
		calls++
		close(started)
		<-release
		return nil
	}))

	done := make(chan struct{})
	go func() {
		s.Tick(context.Background())
		close(done)
	}()
	<-started

	// still due, but the first tick holds the lock
	s.Tick(context.Background())
	close(release)
	<-done

	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"slow"}, counter.Resets())
}

func TestTick_CancelledContextStops(t *testing.T) {
	counter := newFakeCounter("scan")
	s := New(counter, nil)
	require.NoError(t, s.Register("scan", 1, func(context.Context) error { return nil }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Tick(ctx)

	assert.Empty(t, counter.Resets())
}

func TestTick_CancelledDuringCallbackNotReset(t *testing.T) {
	counter := newFakeCounter("scan", "manage")
	s := New(counter, nil)

	ctx, cancel := context.WithCancel(context.Background())
	var calls []string
	require.NoError(t, s.Register("scan", 1, func(ctx context.Context) error {
		calls = append(calls, "scan")
		cancel()
		return ctx.Err()
	}))
	require.NoError(t, s.Register("manage", 30, func(context.Context) error {
		calls = append(calls, "manage")
		return nil
	}))

	s.Tick(ctx)

	assert.Equal(t, []string{"scan"}, calls)
	assert.Empty(t, counter.Resets())

	// still due on the next run
	s.Tick(context.Background())
	assert.Equal(t, []string{"scan", "scan", "manage"}, calls)
	assert.Equal(t, []string{"scan", "manage"}, counter.Resets())
}

func TestStart_ImmediateTickAndStop(t *testing.T) {
	counter := newFakeCounter("scan")
	s := New(counter, nil, WithCadence("@every 1h"))

	fired := make(chan struct{}, 1)
	require.NoError(t, s.Register("scan", 1, func(context.Context) error {
		fired <- struct{}{}
		return nil
	}))

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire on start")
	}

	assert.ErrorIs(t, s.Start(context.Background()), ErrAlreadyStarted)
}

func TestStart_InvalidCadence(t *testing.T) {
	s := New(newFakeCounter(), nil, WithCadence("not a schedule"))
	assert.Error(t, s.Start(context.Background()))
}

func TestScheduler_WithDurableCounter(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.Local)
	counter := timer.NewCounter(timer.NewStore(t.TempDir()), nil, timer.WithClock(func() time.Time { return now }))
	s := New(counter, nil)

	fires := 0
	require.NoError(t, s.Register("scan", 1, func(context.Context) error {
		fires++
		return nil
	}))

	s.Tick(context.Background())
	assert.Equal(t, 0, fires, "fresh timer must not fire")

	now = now.AddDate(0, 0, 1)
	s.Tick(context.Background())
	s.Tick(context.Background())
	assert.Equal(t, 1, fires, "a due timer fires once per day")
}
