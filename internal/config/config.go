// Package config loads thermalarm configuration via viper and hands out
// immutable snapshots. The engine reads one snapshot per decision point,
// so a live reload never races a tick in progress.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete application configuration. Loaded instances are
// treated as immutable; a reload produces a fresh value.
type Config struct {
	Sampling  SamplingConfig  `mapstructure:"sampling"`
	Sensor    SensorConfig    `mapstructure:"sensor"`
	Voice     VoiceConfig     `mapstructure:"voice"`
	Ntfy      NtfyConfig      `mapstructure:"ntfy"`
	Recording RecordingConfig `mapstructure:"recording"`
	Shutdown  ShutdownConfig  `mapstructure:"shutdown"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// SamplingConfig controls the read loop.
type SamplingConfig struct {
	// Rate is the interval between sensor reads.
	Rate time.Duration `mapstructure:"rate"`
	// MaxConsecutiveErrors is the failed-read count that ends a session.
	MaxConsecutiveErrors int `mapstructure:"max_consecutive_errors"`
	// MinWindow is the span below which snapshots return all readings.
	MinWindow time.Duration `mapstructure:"min_window"`
	// MaxWindow is the retention span of the reading buffer.
	MaxWindow time.Duration `mapstructure:"max_window"`
}

// SensorConfig selects and tunes the temperature source.
type SensorConfig struct {
	// Driver is "hwmon" (host thermal sensors) or "sim".
	Driver string `mapstructure:"driver"`
	// Key picks a specific hwmon sensor; empty selects automatically.
	Key string `mapstructure:"key"`
}

// VoiceConfig controls spoken announcements.
type VoiceConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Command overrides the auto-detected text-to-speech binary.
	Command string `mapstructure:"command"`
	// DeltaThreshold is the minimum change before re-announcing.
	DeltaThreshold float64 `mapstructure:"delta_threshold"`
	// AnnouncePeriod is the minimum time between routine announcements.
	AnnouncePeriod time.Duration `mapstructure:"announce_period"`
}

// NtfyConfig controls push notifications via an ntfy relay.
type NtfyConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Server   string   `mapstructure:"server"`
	Topic    string   `mapstructure:"topic"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	Priority string   `mapstructure:"priority"`
	Tags     []string `mapstructure:"tags"`
}

// RecordingConfig controls run persistence.
type RecordingConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

// ShutdownConfig controls session teardown.
type ShutdownConfig struct {
	// StepTimeout bounds each teardown step; a hung resource cannot block
	// the steps after it.
	StepTimeout time.Duration `mapstructure:"step_timeout"`
}

// LoggingConfig controls debug logging.
type LoggingConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Level   string `mapstructure:"level"`
	Dir     string `mapstructure:"dir"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Sampling: SamplingConfig{
			Rate:                 2 * time.Second,
			MaxConsecutiveErrors: 5,
			MinWindow:            100 * time.Second,
			MaxWindow:            7200 * time.Second,
		},
		Sensor: SensorConfig{Driver: "hwmon"},
		Voice: VoiceConfig{
			Enabled:        true,
			DeltaThreshold: 1.0,
			AnnouncePeriod: 15 * time.Second,
		},
		Ntfy: NtfyConfig{
			Enabled:  false,
			Server:   "https://ntfy.sh",
			Priority: "default",
		},
		Recording: RecordingConfig{
			Enabled: true,
			Dir:     filepath.Join(DataDir(), "runs"),
		},
		Shutdown: ShutdownConfig{StepTimeout: 5 * time.Second},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
			Dir:     DataDir(),
		},
	}
}

// SetDefaults registers the defaults with viper.
func SetDefaults() {
	d := Default()

	viper.SetDefault("sampling.rate", d.Sampling.Rate)
	viper.SetDefault("sampling.max_consecutive_errors", d.Sampling.MaxConsecutiveErrors)
	viper.SetDefault("sampling.min_window", d.Sampling.MinWindow)
	viper.SetDefault("sampling.max_window", d.Sampling.MaxWindow)

	viper.SetDefault("sensor.driver", d.Sensor.Driver)
	viper.SetDefault("sensor.key", d.Sensor.Key)

	viper.SetDefault("voice.enabled", d.Voice.Enabled)
	viper.SetDefault("voice.command", d.Voice.Command)
	viper.SetDefault("voice.delta_threshold", d.Voice.DeltaThreshold)
	viper.SetDefault("voice.announce_period", d.Voice.AnnouncePeriod)

	viper.SetDefault("ntfy.enabled", d.Ntfy.Enabled)
	viper.SetDefault("ntfy.server", d.Ntfy.Server)
	viper.SetDefault("ntfy.topic", d.Ntfy.Topic)
	viper.SetDefault("ntfy.username", d.Ntfy.Username)
	viper.SetDefault("ntfy.password", d.Ntfy.Password)
	viper.SetDefault("ntfy.priority", d.Ntfy.Priority)
	viper.SetDefault("ntfy.tags", d.Ntfy.Tags)

	viper.SetDefault("recording.enabled", d.Recording.Enabled)
	viper.SetDefault("recording.dir", d.Recording.Dir)

	viper.SetDefault("shutdown.step_timeout", d.Shutdown.StepTimeout)

	viper.SetDefault("logging.enabled", d.Logging.Enabled)
	viper.SetDefault("logging.level", d.Logging.Level)
	viper.SetDefault("logging.dir", d.Logging.Dir)
}

// Load unmarshals the current viper state into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Sampling.Rate <= 0 {
		return fmt.Errorf("sampling.rate must be positive, got %s", c.Sampling.Rate)
	}
	if c.Sampling.MaxConsecutiveErrors <= 0 {
		return fmt.Errorf("sampling.max_consecutive_errors must be positive, got %d",
			c.Sampling.MaxConsecutiveErrors)
	}
	if c.Sampling.MaxWindow < c.Sampling.MinWindow {
		return fmt.Errorf("sampling.max_window (%s) smaller than min_window (%s)",
			c.Sampling.MaxWindow, c.Sampling.MinWindow)
	}
	if c.Ntfy.Enabled && c.Ntfy.Topic == "" {
		return fmt.Errorf("ntfy.topic is required when ntfy is enabled")
	}
	return nil
}

// ConfigDir returns the user config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "thermalarm")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".thermalarm"
	}
	return filepath.Join(home, ".config", "thermalarm")
}

// ConfigFile returns the default config file path.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DataDir returns the directory for logs and recorded runs.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".thermalarm"
	}
	return filepath.Join(home, ".thermalarm")
}
