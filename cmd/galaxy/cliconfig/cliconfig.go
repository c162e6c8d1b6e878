// Package cliconfig loads the configuration shared by every galaxy subcommand.
package cliconfig

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/819SauCe/Galaxy/pkg/config"
	"github.com/819SauCe/Galaxy/pkg/logger"
	"github.com/819SauCe/Galaxy/pkg/provider"
	"github.com/819SauCe/Galaxy/pkg/provider/openai"
)

// Persistent flags registered on the root command.
const (
	ConfigFlag = "config"
	DebugFlag  = "debug"
)

// ConfigPath returns the --config flag value, or the default config path.
func ConfigPath(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString(ConfigFlag)
	if path != "" {
		return path, nil
	}

	return config.DefaultPath()
}

// Load reads the config file named by --config and applies --debug on top.
func Load(cmd *cobra.Command) (*config.Config, string, error) {
	path, err := ConfigPath(cmd)
	if err != nil {
		return nil, "", err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}

	if debug, _ := cmd.Flags().GetBool(DebugFlag); debug {
		cfg.Debug = true
	}

	return cfg, path, nil
}

// NewRegistry builds the provider registry described by cfg.
func NewRegistry(cfg *config.Config, log *zap.Logger) *provider.Registry {
	return provider.NewRegistry(
		openai.New(openai.Config{
			BaseURL:    cfg.OpenAI.BaseURL,
			HTTPClient: &http.Client{Timeout: cfg.RequestTimeout.Duration},
		}, log),
	)
}

// FileLogger returns a logger appending to ~/.galaxy/galaxy.log when debug is on,
// and a no-op logger otherwise. Interactive commands use it to keep the terminal clean.
func FileLogger(debug bool) (*zap.Logger, func(), error) {
	if !debug {
		return zap.NewNop(), func() {}, nil
	}

	dir, err := config.Dir()
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	f, err := os.OpenFile(filepath.Join(dir, "galaxy.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	log := logger.NewLoggerTo(f, true)
	return log, func() {
		_ = log.Sync()
		f.Close()
	}, nil
}
