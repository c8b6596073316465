// Package maintenance provides the scheduler callbacks: the periodic cleanup
// reminder and the critical-error scan.
package maintenance

import (
	"context"
	"fmt"

	"github.com/rahulvramesh/pchelper/internal/logger"
	"github.com/rahulvramesh/pchelper/internal/scheduler"
)

// Source returns raw critical-error lines from the system event log
type Source interface {
	ScanForCriticalErrors(ctx context.Context) ([]string, error)
}

// SourceFunc adapts a function to Source
type SourceFunc func(ctx context.Context) ([]string, error)

func (f SourceFunc) ScanForCriticalErrors(ctx context.Context) ([]string, error) {
	return f(ctx)
}

// Store persists captured error lines
type Store interface {
	Append(lines ...string) error
}

// Notifier surfaces results to the user
type Notifier interface {
	MaintenanceDue(intervalDays int)
	CriticalErrors(lines []string)
}

// LogNotifier reports through the logger only
type LogNotifier struct {
	Log *logger.Logger
}

func (n LogNotifier) MaintenanceDue(intervalDays int) {
	n.Log.Info("maintenance reminder: cleanup is due", logger.Field{Key: "interval_days", Value: intervalDays})
}

func (n LogNotifier) CriticalErrors(lines []string) {
	n.Log.Warn("critical errors found in the system log", logger.Field{Key: "count", Value: len(lines)})
}

// ReminderJob notifies that periodic maintenance is due
func ReminderJob(notifier Notifier, intervalDays int) scheduler.Callback {
	return func(ctx context.Context) error {
		notifier.MaintenanceDue(intervalDays)
		return nil
	}
}

// ErrorScanJob reads the event log and, when anything is found, saves the
// lines and notifies. Finding nothing is a successful check.
func ErrorScanJob(source Source, store Store, notifier Notifier, log *logger.Logger) scheduler.Callback {
	if log == nil {
		log = logger.Nop()
	}
	return func(ctx context.Context) error {
		lines, err := source.ScanForCriticalErrors(ctx)
		if err != nil {
			return fmt.Errorf("scan event log: %w", err)
		}
		if len(lines) == 0 {
			log.Debug("error scan found nothing")
			return nil
		}

		if err := store.Append(lines...); err != nil {
			// the lines are still shown to the user
			log.Error("failed to save error lines", err, logger.Field{Key: "count", Value: len(lines)})
		}
		notifier.CriticalErrors(lines)
		return nil
	}
}
