package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (BATCHCLOCK_*).
// It respects flags that have been explicitly set (changed map).
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("log-level", os.Getenv("BATCHCLOCK_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("log-format", os.Getenv("BATCHCLOCK_LOG_FORMAT"), &cfg.LogFormat)
	s.setString("output", os.Getenv("BATCHCLOCK_OUTPUT"), &cfg.Output)
	s.setString("state-dir", os.Getenv("BATCHCLOCK_STATE_DIR"), &cfg.StateDir)
	s.setString("metrics-addr", os.Getenv("BATCHCLOCK_METRICS_ADDR"), &cfg.MetricsAddr)
	s.setBoolFromString("no-state", os.Getenv("BATCHCLOCK_NO_STATE"), &cfg.NoState)

	return s.setDuration("reload-debounce", os.Getenv("BATCHCLOCK_RELOAD_DEBOUNCE"), &cfg.ReloadDebounce)
}
