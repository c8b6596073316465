// Package config loads the pchelper TOML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/robfig/cron/v3"

	"github.com/rahulvramesh/pchelper/internal/types"
	"github.com/rahulvramesh/pchelper/internal/utils"
)

var timerName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Load reads path, applies defaults and expands ~ and environment variables.
// A missing file is not an error; the defaults are returned.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(utils.ExpandHome(path))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyDefaults(&cfg)
	expandPaths(&cfg)
	return &cfg, nil
}

func expandPaths(cfg *Config) {
	expand := func(s string) string {
		return utils.ExpandHome(os.ExpandEnv(s))
	}
	cfg.State.Dir = expand(cfg.State.Dir)
	cfg.Cleanup.Root = expand(cfg.Cleanup.Root)
	if cfg.Logging.Output != "stdout" && cfg.Logging.Output != "stderr" {
		cfg.Logging.Output = expand(cfg.Logging.Output)
	}
}

// EventLogTimeout returns the event log command timeout
func (c *Config) EventLogTimeout() time.Duration {
	return time.Duration(c.EventLog.TimeoutSeconds) * time.Second
}

// Validate returns every problem found, or nil
func (c *Config) Validate() []error {
	var errs []error

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("invalid logging.level: %s (expected: debug, info, warn, error)", c.Logging.Level))
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Errorf("invalid logging.format: %s (expected: json, text)", c.Logging.Format))
	}

	if c.State.Dir == "" {
		errs = append(errs, fmt.Errorf("state.dir is required"))
	}

	if _, err := cron.ParseStandard(c.Scheduler.CheckSchedule); err != nil {
		errs = append(errs, fmt.Errorf("invalid scheduler.check_schedule %q: %w", c.Scheduler.CheckSchedule, err))
	}

	seen := make(map[string]bool, len(c.Timers))
	for i, t := range c.Timers {
		switch {
		case !timerName.MatchString(t.Name):
			errs = append(errs, fmt.Errorf("timers[%d].name %q must match %s", i, t.Name, timerName))
		case seen[t.Name]:
			errs = append(errs, fmt.Errorf("timers[%d].name %q is declared twice", i, t.Name))
		}
		seen[t.Name] = true

		if t.IntervalDays < 1 {
			errs = append(errs, fmt.Errorf("timers[%d].interval_days must be >= 1 (got %d)", i, t.IntervalDays))
		}
		if t.Kind != KindReminder && t.Kind != KindErrorScan {
			errs = append(errs, fmt.Errorf("timers[%d].kind %q (expected: %s, %s)", i, t.Kind, KindReminder, KindErrorScan))
		}
	}

	if c.Cleanup.Workers < 1 || c.Cleanup.Workers > 64 {
		errs = append(errs, fmt.Errorf("cleanup.workers must be between 1 and 64 (got %d)", c.Cleanup.Workers))
	}
	if _, err := types.ParseSortKey(c.Cleanup.Sort); err != nil {
		errs = append(errs, fmt.Errorf("invalid cleanup.sort: %w", err))
	}

	if c.EventLog.TimeoutSeconds < 1 {
		errs = append(errs, fmt.Errorf("eventlog.timeout_seconds must be >= 1 (got %d)", c.EventLog.TimeoutSeconds))
	}

	return errs
}
