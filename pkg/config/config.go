// Package config loads the galaxy configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// DirName is the per-user directory holding the config file and database.
	DirName = ".galaxy"

	// FileName is the config file name inside DirName.
	FileName = "config.toml"

	// DBFileName is the default SQLite database name inside DirName.
	DBFileName = "galaxy.db"

	DefaultListenAddr = "127.0.0.1:8080"
	DefaultModel      = "gpt-4o"
	DefaultBaseURL    = "https://api.openai.com/v1"
)

// Config is the galaxy configuration.
type Config struct {
	// Listen is the address the relay server listens on (e.g., "127.0.0.1:8080")
	Listen string `toml:"listen"`

	// DB is the SQLite settings database. Empty means ~/.galaxy/galaxy.db.
	DB string `toml:"db"`

	Debug bool `toml:"debug"`

	// RequestTimeout bounds each provider call. Zero means no timeout.
	RequestTimeout Duration `toml:"request_timeout"`

	OpenAI OpenAIConfig `toml:"openai"`
}

// OpenAIConfig configures the OpenAI provider.
type OpenAIConfig struct {
	BaseURL string `toml:"base_url"`

	// DefaultModel is used when neither the request nor the saved settings name a model.
	DefaultModel string `toml:"default_model"`
}

// Duration is a time.Duration written as a string ("30s", "2m") in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	if v < 0 {
		return fmt.Errorf("invalid duration %q: must not be negative", text)
	}

	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Listen: DefaultListenAddr,
		OpenAI: OpenAIConfig{
			BaseURL:      DefaultBaseURL,
			DefaultModel: DefaultModel,
		},
	}
}

// Dir returns ~/.galaxy.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not resolve home directory: %w", err)
	}

	return filepath.Join(home, DirName), nil
}

// DefaultPath returns ~/.galaxy/config.toml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, FileName), nil
}

// Load reads the config file at path on top of the defaults. A missing file is not
// an error, it yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults fills keys that were present but empty.
func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = DefaultListenAddr
	}
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = DefaultBaseURL
	}
	if c.OpenAI.DefaultModel == "" {
		c.OpenAI.DefaultModel = DefaultModel
	}
}
