// Package config loads optional YAML configuration. Every field has a
// working default so the CLI runs with no config file at all; flags
// override whatever the file provides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yairfalse/fenceline/score"
	"github.com/yairfalse/fenceline/store"
)

// Config is the root configuration
type Config struct {
	EventsFile    string           `yaml:"events_file"`
	RetentionDays int              `yaml:"retention_days"`
	Thresholds    score.Thresholds `yaml:"thresholds"`
	Watch         WatchConfig      `yaml:"watch"`
}

// WatchConfig holds watch-mode settings
type WatchConfig struct {
	IntervalStr  string `yaml:"interval"`
	Interval     time.Duration `yaml:"-"`
	MetricsAddr  string `yaml:"metrics_addr"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	HistoryDir   string `yaml:"history_dir"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		EventsFile:    store.DefaultPath,
		RetentionDays: 30,
		Thresholds:    score.DefaultThresholds(),
		Watch: WatchConfig{
			Interval:    10 * time.Minute,
			MetricsAddr: ":9090",
			HistoryDir:  "data",
		},
	}
}

// Load reads configuration from path, layered over the defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// normalize parses string durations and validates values
func (c *Config) normalize() error {
	if c.Watch.IntervalStr != "" {
		interval, err := time.ParseDuration(c.Watch.IntervalStr)
		if err != nil {
			return fmt.Errorf("watch interval %q: %w", c.Watch.IntervalStr, err)
		}
		if interval <= 0 {
			return fmt.Errorf("watch interval must be positive, got %s", interval)
		}
		c.Watch.Interval = interval
	}

	if c.RetentionDays < 1 {
		return fmt.Errorf("retention_days must be at least 1, got %d", c.RetentionDays)
	}

	th := c.Thresholds
	if th.ViolationsExcellent > th.ViolationsWarning || th.ViolationsWarning > th.ViolationsCritical {
		return fmt.Errorf("thresholds must satisfy excellent <= warning <= critical, got %.0f/%.0f/%.0f",
			th.ViolationsExcellent, th.ViolationsWarning, th.ViolationsCritical)
	}

	return nil
}
