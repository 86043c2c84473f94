// Package hostloop composes the transport, executor, executorpool,
// pluginhost and tlsshim packages into one running host process: load
// config, stand up an executor pool, open each configured plugin, and run
// a fixed-tick loop driving Check/CallUpdate while exposing diagnostics
// over HTTP.
package hostloop

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// PluginConfig describes one plugin to load and keep checking for updates.
type PluginConfig struct {
	Name          string `toml:"name"`
	Path          string `toml:"path"`
	CheckInterval uint64 `toml:"check_interval"`
}

// TransportConfig describes the UDP peer this host binds.
type TransportConfig struct {
	Bind string `toml:"bind"`
	Dest string `toml:"dest"` // empty => BindOnly, adopts dest on first recv
}

// Config is the root of corehost.toml.
type Config struct {
	Cores      int              `toml:"cores"`
	MetricsBind string          `toml:"metrics_bind"`
	TickMillis int64            `toml:"tick_millis"`
	Transport  TransportConfig  `toml:"transport"`
	Plugins    []PluginConfig   `toml:"plugins"`
}

// DefaultTickMillis is used when Config.TickMillis is unset (<= 0).
const DefaultTickMillis = 16

// LoadConfig reads and parses a TOML config file at path.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("hostloop: loading config %s: %w", path, err)
	}
	if cfg.Cores <= 0 {
		cfg.Cores = 1
	}
	if cfg.TickMillis <= 0 {
		cfg.TickMillis = DefaultTickMillis
	}
	return cfg, nil
}
