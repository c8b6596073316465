package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".pchelper"), cfg.State.Dir)
	assert.Equal(t, home, cfg.Cleanup.Root)
	assert.Equal(t, DefaultCheckSchedule, cfg.Scheduler.CheckSchedule)
	assert.Equal(t, DefaultTimers(), cfg.Timers)
	assert.Equal(t, 1, cfg.Cleanup.Workers)
	assert.Empty(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	t.Setenv("PCHELPER_TEST_STATE", "/tmp/pchelper-state")
	path := writeConfig(t, `
[logging]
level = "debug"
output = "stderr"

[state]
dir = "${PCHELPER_TEST_STATE}"

[scheduler]
check_schedule = "@every 10m"

[[timers]]
name = "weekly"
interval_days = 7

[[timers]]
name = "errors"
interval_days = 2
kind = "error_scan"

[cleanup]
root = "/data"
workers = 4
exclude = ["node_modules", "*.iso"]
sort = "name"

[eventlog]
command = ["journalctl", "-p", "crit", "--since", "yesterday", "-o", "cat"]
timeout_seconds = 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Empty(t, cfg.Validate())

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.Equal(t, "/tmp/pchelper-state", cfg.State.Dir)
	assert.Equal(t, "@every 10m", cfg.Scheduler.CheckSchedule)
	assert.Equal(t, []TimerConfig{
		{Name: "weekly", IntervalDays: 7, Kind: KindReminder},
		{Name: "errors", IntervalDays: 2, Kind: KindErrorScan},
	}, cfg.Timers)
	assert.Equal(t, "/data", cfg.Cleanup.Root)
	assert.Equal(t, 4, cfg.Cleanup.Workers)
	assert.Equal(t, []string{"node_modules", "*.iso"}, cfg.Cleanup.Exclude)
	assert.Equal(t, "journalctl", cfg.EventLog.Command[0])
	assert.Equal(t, 5, int(cfg.EventLogTimeout().Seconds()))
}

func TestLoad_ParseError(t *testing.T) {
	_, err := Load(writeConfig(t, "[logging\nlevel = "))
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   int
	}{
		{"defaults", func(*Config) {}, 0},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, 1},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, 1},
		{"bad schedule", func(c *Config) { c.Scheduler.CheckSchedule = "every hour" }, 1},
		{"duplicate timer", func(c *Config) { c.Timers = append(c.Timers, c.Timers[0]) }, 1},
		{"zero interval", func(c *Config) { c.Timers[0].IntervalDays = 0 }, 1},
		{"bad timer name", func(c *Config) { c.Timers[0].Name = "../x" }, 1},
		{"bad kind", func(c *Config) { c.Timers[1].Kind = "reboot" }, 1},
		{"workers", func(c *Config) { c.Cleanup.Workers = 0 }, 1},
		{"sort", func(c *Config) { c.Cleanup.Sort = "color" }, 1},
		{"timeout", func(c *Config) { c.EventLog.TimeoutSeconds = -1 }, 1},
		{"several", func(c *Config) {
			c.Logging.Level = "loud"
			c.State.Dir = ""
			c.Cleanup.Workers = 100
		}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.Len(t, cfg.Validate(), tt.want)
		})
	}
}
