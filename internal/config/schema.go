package config

// Config is the pchelper configuration file
type Config struct {
	Logging   LoggingConfig   `toml:"logging"`
	State     StateConfig     `toml:"state"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Timers    []TimerConfig   `toml:"timers"`
	Cleanup   CleanupConfig   `toml:"cleanup"`
	EventLog  EventLogConfig  `toml:"eventlog"`
	Metrics   MetricsConfig   `toml:"metrics"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	Output string `toml:"output"`
}

// StateConfig locates the timer and error log files
type StateConfig struct {
	Dir string `toml:"dir"`
}

type SchedulerConfig struct {
	CheckSchedule string `toml:"check_schedule"`
}

// TimerKind selects the callback a timer fires
type TimerKind string

const (
	KindReminder  TimerKind = "reminder"
	KindErrorScan TimerKind = "error_scan"
)

type TimerConfig struct {
	Name         string    `toml:"name"`
	IntervalDays int       `toml:"interval_days"`
	Kind         TimerKind `toml:"kind"`
}

type CleanupConfig struct {
	Root    string   `toml:"root"`
	Workers int      `toml:"workers"`
	Exclude []string `toml:"exclude"`
	Sort    string   `toml:"sort"`
}

// EventLogConfig is the command that prints one critical error per line
type EventLogConfig struct {
	Command        []string `toml:"command"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

type MetricsConfig struct {
	Addr string `toml:"addr"`
}
