package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	// Port is the HTTP server port.
	Port int `yaml:"port"`

	// DBPath is the SQLite database file path.
	DBPath string `yaml:"dbPath"`

	Fanout FanoutConfig `yaml:"fanout"`
	Feeds  FeedsConfig  `yaml:"feeds"`
}

// FanoutConfig tunes the timeline fan-out writer. Cap is the operator's
// knob for the write-amplification vs. feed-completeness trade-off.
type FanoutConfig struct {
	Cap              int     `yaml:"cap"`
	BatchSize        int     `yaml:"batchSize"`
	BatchesPerSecond float64 `yaml:"batchesPerSecond"`
	RetryDelaySecs   int     `yaml:"retryDelaySecs"`
}

// FeedsConfig tunes feed reads.
type FeedsConfig struct {
	DefaultLimit       int `yaml:"defaultLimit"`
	MaxLimit           int `yaml:"maxLimit"`
	TrendingWindowDays int `yaml:"trendingWindowDays"`
}

// RetryDelay returns the fan-out retry delay as a duration.
func (c FanoutConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySecs) * time.Second
}

// TrendingWindow returns the trending window as a duration.
func (c FeedsConfig) TrendingWindow() time.Duration {
	return time.Duration(c.TrendingWindowDays) * 24 * time.Hour
}

// Default returns a sensible default configuration.
func Default() Config {
	return Config{
		Port:   3000,
		DBPath: "./fanline.db",
		Fanout: FanoutConfig{
			Cap:              1000,
			BatchSize:        200,
			BatchesPerSecond: 0,
			RetryDelaySecs:   5,
		},
		Feeds: FeedsConfig{
			DefaultLimit:       50,
			MaxLimit:           100,
			TrendingWindowDays: 7,
		},
	}
}

// Load reads YAML config from path and applies environment overrides. An
// empty path or a missing file yields the defaults (still subject to env
// overrides).
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := cfg.resolveEnv(); err != nil {
		return cfg, err
	}
	if cfg.Fanout.Cap <= 0 {
		return cfg, fmt.Errorf("fanout cap must be positive, got %d", cfg.Fanout.Cap)
	}
	return cfg, nil
}

func (c *Config) resolveEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT: %w", err)
		}
		c.Port = port
	}
	if v := os.Getenv("FANLINE_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("FANLINE_FANOUT_CAP"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid FANLINE_FANOUT_CAP: %w", err)
		}
		c.Fanout.Cap = n
	}
	return nil
}
