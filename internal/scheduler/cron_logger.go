package scheduler

import (
	"github.com/rahulvramesh/pchelper/internal/logger"
)

// cronLogger adapts logger.Logger to cron.Logger. cron's info output is
// chatty, so it goes to debug.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Slog().Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Slog().Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
