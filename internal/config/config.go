// Package config holds runtime configuration for geofix.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds provider selection and query settings.
type Config struct {
	// Provider selects which sample source to use.
	// Values: "gpsd", "replay", "script"
	Provider string

	// Timeout is the time budget for a single one-shot query.
	// Default: 30s.
	Timeout time.Duration

	Gpsd   GpsdConfig
	Replay ReplayConfig

	// DBPath is the diagnostics database file. Empty means the default
	// XDG path.
	DBPath string
}

// GpsdConfig holds gpsd-specific configuration.
type GpsdConfig struct {
	// Addr is the gpsd TCP address. Default: "localhost:2947".
	Addr string

	// DialTimeout bounds the initial connection attempt. Default: 5s.
	DialTimeout time.Duration
}

// ReplayConfig holds replay-provider configuration.
type ReplayConfig struct {
	// Path is the JSONL file of recorded samples to replay.
	Path string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "gpsd",
		Timeout:  30 * time.Second,
		Gpsd: GpsdConfig{
			Addr:        "localhost:2947",
			DialTimeout: 5 * time.Second,
		},
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := os.Getenv("GEOFIX_PROVIDER"); p != "" {
		cfg.Provider = p
	}
	if t := os.Getenv("GEOFIX_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			cfg.Timeout = d
		}
	}
	if a := os.Getenv("GEOFIX_GPSD_ADDR"); a != "" {
		cfg.Gpsd.Addr = a
	}
	if p := os.Getenv("GEOFIX_REPLAY_FILE"); p != "" {
		cfg.Replay.Path = p
	}
	if p := os.Getenv("GEOFIX_DB"); p != "" {
		cfg.DBPath = p
	}

	return cfg
}

// Validate checks that the selected provider has what it needs.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}

	switch c.Provider {
	case "gpsd":
		if c.Gpsd.Addr == "" {
			return fmt.Errorf("GEOFIX_GPSD_ADDR is required for the gpsd provider")
		}
	case "replay":
		if c.Replay.Path == "" {
			return fmt.Errorf("GEOFIX_REPLAY_FILE is required for the replay provider")
		}
	case "script":
		// Canned events, nothing to configure.
	default:
		return fmt.Errorf("unknown provider: %q", c.Provider)
	}
	return nil
}
