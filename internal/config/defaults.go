package config

import "runtime"

const (
	DefaultStateDir      = "~/.pchelper"
	DefaultConfigPath    = DefaultStateDir + "/config.toml"
	DefaultCheckSchedule = "@every 1h"
	DefaultLogOutput     = DefaultStateDir + "/pchelper.log"
)

// DefaultTimers are used when the file declares none
func DefaultTimers() []TimerConfig {
	return []TimerConfig{
		{Name: "manage", IntervalDays: 30, Kind: KindReminder},
		{Name: "scan", IntervalDays: 1, Kind: KindErrorScan},
	}
}

// DefaultEventLogCommand queries the last day of critical System events on
// Windows. Other platforms have no default.
func DefaultEventLogCommand() []string {
	if runtime.GOOS != "windows" {
		return nil
	}
	return []string{
		"powershell", "-NoProfile", "-Command",
		"Get-WinEvent -FilterHashtable @{LogName='System'; Level=1; StartTime=(Get-Date).AddDays(-1)} -ErrorAction SilentlyContinue | " +
			"ForEach-Object { '{0:u} [{1}] {2}' -f $_.TimeCreated, $_.Id, ($_.Message -replace '\\s+', ' ') }",
	}
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	// the terminal UI owns stdout, so logs go to a file
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = DefaultLogOutput
	}

	if cfg.State.Dir == "" {
		cfg.State.Dir = DefaultStateDir
	}

	if cfg.Scheduler.CheckSchedule == "" {
		cfg.Scheduler.CheckSchedule = DefaultCheckSchedule
	}

	if len(cfg.Timers) == 0 {
		cfg.Timers = DefaultTimers()
	}
	for i := range cfg.Timers {
		if cfg.Timers[i].Kind == "" {
			cfg.Timers[i].Kind = KindReminder
		}
	}

	if cfg.Cleanup.Root == "" {
		cfg.Cleanup.Root = "~"
	}
	if cfg.Cleanup.Workers == 0 {
		cfg.Cleanup.Workers = 1
	}
	if cfg.Cleanup.Sort == "" {
		cfg.Cleanup.Sort = "size"
	}

	if cfg.EventLog.Command == nil {
		cfg.EventLog.Command = DefaultEventLogCommand()
	}
	if cfg.EventLog.TimeoutSeconds == 0 {
		cfg.EventLog.TimeoutSeconds = 60
	}
}
