package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/batchclock/pkg/log"
)

// Output formats for command results.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Config holds CLI configuration for batchclock.
type Config struct {
	LogLevel  string
	LogFormat string
	Output    string

	StateDir       string
	NoState        bool
	MetricsAddr    string
	ReloadDebounce time.Duration
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		LogLevel:       "info",
		LogFormat:      string(log.FormatConsole),
		Output:         OutputText,
		StateDir:       DefaultStateDir(),
		ReloadDebounce: 100 * time.Millisecond,
	}
}

// DefaultStateDir returns ~/.batchclock, or "" if the home directory is unknown.
func DefaultStateDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".batchclock")
	}
	return ""
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil || c.LogLevel == "" {
		return fmt.Errorf("invalid log-level %q", c.LogLevel)
	}
	if _, err := log.ParseFormat(c.LogFormat); err != nil {
		return err
	}
	if c.Output != OutputText && c.Output != OutputJSON {
		return fmt.Errorf("unknown output %q (want text or json)", c.Output)
	}
	if c.StateDir == "" && !c.NoState {
		return fmt.Errorf("state-dir is required (or no-state)")
	}
	if c.ReloadDebounce <= 0 {
		return fmt.Errorf("reload debounce must be positive")
	}
	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
