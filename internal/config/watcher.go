package config

import (
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Provider hands out the current immutable Config snapshot. Decision
// points in the engine call Snapshot once per tick and never see a
// half-applied reload.
type Provider struct {
	current atomic.Pointer[Config]
}

// NewProvider creates a provider seeded with cfg.
func NewProvider(cfg *Config) *Provider {
	p := &Provider{}
	p.current.Store(cfg)
	return p
}

// Snapshot returns the current configuration. The returned value must
// not be mutated.
func (p *Provider) Snapshot() *Config {
	return p.current.Load()
}

// Swap replaces the current configuration.
func (p *Provider) Swap(cfg *Config) {
	p.current.Store(cfg)
}

// Watch reloads the config file on change and swaps the provider's
// snapshot. Invalid edits are reported through onError and the previous
// snapshot stays in effect. Watching is best-effort: if the file cannot
// be watched the initial snapshot simply remains.
func (p *Provider) Watch(onError func(error)) {
	viper.OnConfigChange(func(fsnotify.Event) {
		cfg, err := Load()
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		p.Swap(cfg)
	})
	viper.WatchConfig()
}
