package timer

import (
	"errors"
	"io/fs"
	"sync"
	"time"

	"github.com/rahulvramesh/pchelper/internal/logger"
	"github.com/rahulvramesh/pchelper/internal/types"
)

// Counter answers "has this timer's interval elapsed" in whole calendar days.
//
// The first time a name is seen without a usable record its date is set to
// today and persisted, so a fresh install never fires immediately. Persist
// failures are logged; the in-memory date still advances.
type Counter struct {
	store *Store
	log   *logger.Logger
	now   func() time.Time

	mu    sync.Mutex
	dates map[string]time.Time
}

// CounterOption configures a Counter
type CounterOption func(*Counter)

// WithClock overrides time.Now
func WithClock(now func() time.Time) CounterOption {
	return func(c *Counter) { c.now = now }
}

// NewCounter creates a counter backed by store
func NewCounter(store *Store, log *logger.Logger, opts ...CounterOption) *Counter {
	if log == nil {
		log = logger.Nop()
	}
	c := &Counter{
		store: store,
		log:   log,
		now:   time.Now,
		dates: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsDue reports whether at least intervalDays calendar days have passed since
// the last reset.
func (c *Counter) IsDue(name string, intervalDays int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	last := c.ensureLocked(name)
	return daysBetween(last, c.today()) >= intervalDays
}

// Reset stamps the timer with today's date and persists it
func (c *Counter) Reset(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	last := c.ensureLocked(name)
	today := c.today()
	if last.After(today) {
		// clock went backwards; dates never decrease
		today = last
	}
	c.dates[name] = today
	c.persist(name, today)
}

// State returns the current TimerState for display
func (c *Counter) State(name string, intervalDays int) types.TimerState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return types.TimerState{
		Name:         name,
		IntervalDays: intervalDays,
		LastReset:    c.ensureLocked(name),
	}
}

// DaysSince returns whole calendar days since the last reset
func (c *Counter) DaysSince(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return daysBetween(c.ensureLocked(name), c.today())
}

func (c *Counter) ensureLocked(name string) time.Time {
	if date, ok := c.dates[name]; ok {
		return date
	}

	today := c.today()
	date, err := c.store.Load(name)
	switch {
	case err == nil && !date.After(today):
		c.dates[name] = date
		return date
	case err == nil:
		c.log.Warn("timer date is in the future, resetting to today",
			logger.Field{Key: "timer", Value: name},
			logger.Field{Key: "stored", Value: date.Format(DateLayout)})
	case errors.Is(err, fs.ErrNotExist):
		c.log.Info("initialising timer", logger.Field{Key: "timer", Value: name})
	default:
		c.log.Warn("timer record unreadable, resetting to today",
			logger.Field{Key: "timer", Value: name},
			logger.Field{Key: "error", Value: err})
	}

	c.dates[name] = today
	c.persist(name, today)
	return today
}

func (c *Counter) persist(name string, date time.Time) {
	if err := c.store.Save(name, date); err != nil {
		c.log.Error("failed to persist timer", err, logger.Field{Key: "timer", Value: name})
	}
}

func (c *Counter) today() time.Time {
	return truncateDay(c.now())
}

func truncateDay(t time.Time) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// daysBetween counts calendar days from a to b, ignoring time of day and DST
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
