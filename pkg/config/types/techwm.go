package types

import (
	"fmt"

	"go.uber.org/multierr"
)

type TechwmConfig struct {
	Server ServerConfig `yaml:"Server"`
	Store  StoreConfig  `yaml:"Store"`
	Policy PolicyConfig `yaml:"Policy"`
}

type ServerConfig struct {
	// Host is the address the API server listens on, and the client connects to.
	Host string `yaml:"Host"`
	Port int    `yaml:"Port"`
	// ShutdownTimeout bounds the graceful shutdown of the API server.
	ShutdownTimeout Duration `yaml:"ShutdownTimeout"`
}

func (cfg ServerConfig) Validate() error {
	var err error
	if cfg.Port <= 0 || cfg.Port > 65535 {
		err = multierr.Append(err, fmt.Errorf("server port %d out of range", cfg.Port))
	}
	if cfg.ShutdownTimeout < 0 {
		err = multierr.Append(err, fmt.Errorf("server shutdown timeout must not be negative"))
	}
	return err
}

type StoreConfig struct {
	Type StorageType `yaml:"Type"`
	// Path of the bolt database file. Ignored for in-memory stores.
	Path string `yaml:"Path"`
}

func (cfg StoreConfig) Validate() error {
	var err error
	if cfg.Type <= UnknownStorage || cfg.Type > InMemory {
		err = multierr.Append(err, fmt.Errorf("unknown store type: %q", cfg.Type.String()))
	}
	if cfg.Type == BoltDB && cfg.Path == "" {
		err = multierr.Append(err, fmt.Errorf("store path is missing"))
	}
	return err
}

// PolicyConfig overrides the built-in admission limits, keyed by account
// type name (default, research, root).
type PolicyConfig struct {
	Limits map[string]LimitsConfig `yaml:"Limits,omitempty"`
}

// LimitsConfig overrides individual limits. Unset fields keep the built-in
// value, -1 means unlimited.
type LimitsConfig struct {
	MaxTotal *int `yaml:"MaxTotal,omitempty"`
	MaxCPU   *int `yaml:"MaxCPU,omitempty"`
	MaxGPU   *int `yaml:"MaxGPU,omitempty"`
}

func (cfg TechwmConfig) Validate() error {
	return multierr.Combine(cfg.Server.Validate(), cfg.Store.Validate())
}
