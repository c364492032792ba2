// Package config holds the tool's settings, loaded from an optional YAML
// file under the user's config directory, plus the well-known paths the
// other packages need.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	goyaml "gopkg.in/yaml.v3"
)

// Config is the tool configuration. Every field is optional; the zero file
// is valid.
type Config struct {
	// PayloadDLL overrides where the payload module is picked up from.
	// Empty means next to the controller executable.
	PayloadDLL string `koanf:"payload_dll" yaml:"payload_dll"`

	// OutputDir is where dumps are relocated to after a session. Empty
	// disables relocation and leaves the dump in the package's TempState.
	OutputDir string `koanf:"output_dir" yaml:"output_dir"`

	// Workers sizes the relocation copy pool. Zero means hardware
	// concurrency.
	Workers int `koanf:"workers" yaml:"workers"`

	// PollIntervalMS overrides the controller's channel poll interval in
	// milliseconds. Zero keeps the built-in 10ms.
	PollIntervalMS int `koanf:"poll_interval_ms" yaml:"poll_interval_ms"`

	// HistoryLimit caps how many sessions the history command shows.
	// Default: 20.
	HistoryLimit int `koanf:"history_limit" yaml:"history_limit"`
}

// ErrNegativeWorkers rejects configs asking for a negative pool size.
var ErrNegativeWorkers = errors.New("workers must not be negative")

// Load reads the config file at path. A missing file yields the defaults
// rather than an error, since the tool is fully usable without one.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg.applyDefaults()
		return &cfg, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load config from %s: %w", path, err)
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration to path, creating parent directories as
// needed.
func Save(path string, cfg *Config) error {
	data, err := goyaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config to %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.HistoryLimit == 0 {
		c.HistoryLimit = 20
	}
}

func (c *Config) validate() error {
	if c.Workers < 0 {
		return ErrNegativeWorkers
	}
	return nil
}
