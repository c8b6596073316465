package timer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) AddDays(n int) { f.now = f.now.AddDate(0, 0, n) }

func newTestCounter(t *testing.T, dir string, clock *fakeClock) *Counter {
	t.Helper()
	return NewCounter(NewStore(dir), nil, WithClock(clock.Now))
}

func TestCounter_FreshTimerNotDue(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{now: time.Date(2026, 10, 17, 15, 0, 0, 0, time.Local)}
	c := newTestCounter(t, dir, clock)

	assert.False(t, c.IsDue("scan", 1))

	// initialised record is on disk before the first check returns
	date, err := NewStore(dir).Load("scan")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-17", date.Format(DateLayout))
}

func TestCounter_ScanScenario(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 10, 17, 23, 59, 0, 0, time.Local)}
	c := newTestCounter(t, t.TempDir(), clock)

	assert.False(t, c.IsDue("scan", 1))

	// one minute later is a new calendar day
	clock.now = clock.now.Add(time.Minute)
	assert.True(t, c.IsDue("scan", 1))

	c.Reset("scan")
	assert.False(t, c.IsDue("scan", 1))
}

func TestCounter_IntervalBoundary(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)}
	c := newTestCounter(t, t.TempDir(), clock)
	require.False(t, c.IsDue("manage", 30))

	clock.AddDays(29)
	assert.False(t, c.IsDue("manage", 30))
	assert.Equal(t, 29, c.DaysSince("manage"))

	clock.AddDays(1)
	assert.True(t, c.IsDue("manage", 30))
}

func TestCounter_ResetIsIdempotentWithinDay(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 10, 17, 8, 0, 0, 0, time.Local)}
	c := newTestCounter(t, t.TempDir(), clock)

	c.Reset("scan")
	clock.now = clock.now.Add(6 * time.Hour)
	c.Reset("scan")

	assert.False(t, c.IsDue("scan", 1))
}

func TestCounter_SurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{now: time.Date(2026, 10, 1, 12, 0, 0, 0, time.Local)}

	first := newTestCounter(t, dir, clock)
	first.Reset("manage")

	clock.AddDays(30)
	second := newTestCounter(t, dir, clock)
	assert.True(t, second.IsDue("manage", 30))
	assert.Equal(t, "2026-10-01", second.State("manage", 30).LastReset.Format(DateLayout))
}

func TestCounter_CorruptRecordReinitialises(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, Subdirectory, "scan.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))

	clock := &fakeClock{now: time.Date(2026, 10, 17, 10, 0, 0, 0, time.Local)}
	c := newTestCounter(t, dir, clock)

	assert.False(t, c.IsDue("scan", 1))

	date, err := NewStore(dir).Load("scan")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-17", date.Format(DateLayout))
}

func TestCounter_FutureDateClampedToToday(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewStore(dir).Save("scan", time.Date(2027, 1, 1, 0, 0, 0, 0, time.Local)))

	clock := &fakeClock{now: time.Date(2026, 10, 17, 10, 0, 0, 0, time.Local)}
	c := newTestCounter(t, dir, clock)

	assert.Equal(t, 0, c.DaysSince("scan"))
	clock.AddDays(1)
	assert.True(t, c.IsDue("scan", 1))
}

func TestCounter_ResetNeverMovesBackwards(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 10, 17, 10, 0, 0, 0, time.Local)}
	c := newTestCounter(t, t.TempDir(), clock)
	c.Reset("scan")

	clock.AddDays(-3)
	c.Reset("scan")

	assert.Equal(t, "2026-10-17", c.State("scan", 1).LastReset.Format(DateLayout))
}

func TestCounter_PersistFailureKeepsMemoryState(t *testing.T) {
	dir := t.TempDir()
	// a regular file where the timers directory should be makes every save fail
	require.NoError(t, os.WriteFile(filepath.Join(dir, Subdirectory), []byte("x"), 0644))

	clock := &fakeClock{now: time.Date(2026, 10, 17, 10, 0, 0, 0, time.Local)}
	c := newTestCounter(t, dir, clock)

	assert.False(t, c.IsDue("scan", 1))
	clock.AddDays(2)
	assert.True(t, c.IsDue("scan", 1))

	assert.NotPanics(t, func() { c.Reset("scan") })
	assert.False(t, c.IsDue("scan", 1))
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2026, 3, 28, 23, 0, 0, 0, time.Local)
	b := time.Date(2026, 3, 30, 1, 0, 0, 0, time.Local)

	assert.Equal(t, 2, daysBetween(a, b))
	assert.Equal(t, 0, daysBetween(a, a.Add(30*time.Minute)))
}
