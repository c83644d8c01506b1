// Package config loads the optional settings file. Every field has a
// command line flag too; flags win over the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/brsh/pingm/board"
	"github.com/brsh/pingm/probe"
)

// Config holds everything the settings file may tune.
type Config struct {
	// Hosts to probe when neither arguments nor stdin name any.
	Hosts []string `yaml:"hosts,omitempty"`

	// History fixes the response cells per host; 0 fits the terminal.
	History int `yaml:"history,omitempty"`

	Interval Duration `yaml:"interval"`
	MinDelay Duration `yaml:"min_delay"`

	// PayloadSize is the number of random bytes per echo request.
	PayloadSize uint16 `yaml:"payload_size"`

	// Mark is the SO_MARK for outgoing probes (Linux only, needs
	// CAP_NET_ADMIN). 0 leaves packets unmarked.
	Mark uint `yaml:"mark,omitempty"`

	Bind4 string `yaml:"bind4"`
	Bind6 string `yaml:"bind6"`
}

// Duration wraps time.Duration to support YAML unmarshaling from strings like "250ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = dur
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Default returns a Config with the built-in default values.
func Default() *Config {
	return &Config{
		Interval:    Duration{board.DefaultInterval},
		MinDelay:    Duration{board.DefaultMinDelay},
		PayloadSize: probe.DefaultPayloadSize,
		Bind4:       "0.0.0.0",
		Bind6:       "::",
	}
}

// DefaultPath returns the default settings file path. Respects
// $XDG_CONFIG_HOME if set, otherwise falls back to ~/.config.
func DefaultPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir != "" {
		return filepath.Join(configDir, "pingm", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "pingm", "config.yaml")
}

// Load reads and parses a settings file from the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadDefault loads the settings from the default path. A missing file
// is not an error; it yields the built-in defaults.
func LoadDefault() (*Config, error) {
	path := DefaultPath()
	if path == "" {
		return Default(), nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	return Load(path)
}

// Validate checks the settings for logical errors.
func (c *Config) Validate() error {
	if c.History < 0 || c.History > 1000 {
		return fmt.Errorf("history must be between 0 and 1000, got %d", c.History)
	}
	if c.Interval.Duration < 0 {
		return fmt.Errorf("interval must be non-negative, got %s", c.Interval)
	}
	if c.MinDelay.Duration < 0 {
		return fmt.Errorf("min_delay must be non-negative, got %s", c.MinDelay)
	}
	if c.Bind4 == "" && c.Bind6 == "" {
		return fmt.Errorf("need at least one bind address")
	}
	return nil
}
