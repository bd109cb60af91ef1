package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefaults(t *testing.T) {
	d := Default()

	if d.Sampling.Rate != 2*time.Second {
		t.Errorf("sampling rate: got %s, want 2s", d.Sampling.Rate)
	}
	if d.Sampling.MaxConsecutiveErrors != 5 {
		t.Errorf("max consecutive errors: got %d, want 5", d.Sampling.MaxConsecutiveErrors)
	}
	if d.Voice.DeltaThreshold != 1.0 {
		t.Errorf("delta threshold: got %v, want 1.0", d.Voice.DeltaThreshold)
	}
	if d.Voice.AnnouncePeriod != 15*time.Second {
		t.Errorf("announce period: got %s, want 15s", d.Voice.AnnouncePeriod)
	}
	if d.Shutdown.StepTimeout != 5*time.Second {
		t.Errorf("step timeout: got %s, want 5s", d.Shutdown.StepTimeout)
	}
	if err := d.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromViper(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	SetDefaults()
	viper.Set("sampling.rate", "500ms")
	viper.Set("voice.enabled", false)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Sampling.Rate != 500*time.Millisecond {
		t.Errorf("rate: got %s", cfg.Sampling.Rate)
	}
	if cfg.Voice.Enabled {
		t.Error("voice should be disabled")
	}
	// Untouched sections keep their defaults.
	if cfg.Ntfy.Server != "https://ntfy.sh" {
		t.Errorf("ntfy server default: got %q", cfg.Ntfy.Server)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero rate", func(c *Config) { c.Sampling.Rate = 0 }},
		{"zero error limit", func(c *Config) { c.Sampling.MaxConsecutiveErrors = 0 }},
		{"window inversion", func(c *Config) { c.Sampling.MaxWindow = c.Sampling.MinWindow / 2 }},
		{"ntfy without topic", func(c *Config) { c.Ntfy.Enabled = true; c.Ntfy.Topic = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestProviderSwap(t *testing.T) {
	first := Default()
	p := NewProvider(first)
	if p.Snapshot() != first {
		t.Fatal("snapshot should return the seeded config")
	}

	second := Default()
	second.Voice.Enabled = false
	p.Swap(second)
	if p.Snapshot() != second {
		t.Fatal("snapshot should return the swapped config")
	}
	// The old snapshot is still intact for readers that grabbed it.
	if !first.Voice.Enabled {
		t.Error("previous snapshot mutated")
	}
}
