package servecmder

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/819SauCe/Galaxy/cmd/galaxy/cliconfig"
	"github.com/819SauCe/Galaxy/cmd/galaxy/sqlitepath"
	"github.com/819SauCe/Galaxy/pkg/config"
	"github.com/819SauCe/Galaxy/pkg/logger"
	"github.com/819SauCe/Galaxy/pkg/opener"
	"github.com/819SauCe/Galaxy/pkg/settings"
	"github.com/819SauCe/Galaxy/relay"
)

const serveLongDesc string = `Run the chat relay server.

The front-end posts chat requests to /api/chat and receives the provider's
reply text, or the provider's error verbatim. Settings are kept in the local
SQLite database and served under /api/settings. The same chat operation is
exposed as an MCP tool at /mcp.

Changes to the config file's openai.default_model apply without a restart.

Examples:
  galaxy serve
  galaxy serve --listen 127.0.0.1:9090 --sqlite /tmp/galaxy.db`

const serveShortDesc string = "Run the chat relay server"

type serveCommander struct {
	listen     string
	sqlitePath string
	memory     bool
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address to listen on (default from config, 127.0.0.1:8080)")
	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to the SQLite settings database")
	cmd.Flags().BoolVar(&cmder.memory, "memory", false, "Keep settings in memory only")

	return cmd
}

func (c *serveCommander) run(cmd *cobra.Command) error {
	cfg, configPath, err := cliconfig.Load(cmd)
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}

	log := logger.NewLogger(cfg.Debug)
	defer log.Sync()

	storer, err := c.openStorer(cfg, log)
	if err != nil {
		return err
	}

	listen := cfg.Listen
	if c.listen != "" {
		listen = c.listen
	}

	r := relay.New(relay.Config{
		ListenAddr:   listen,
		DefaultModel: cfg.OpenAI.DefaultModel,
	}, cliconfig.NewRegistry(cfg, log), storer, opener.NewBrowser(), log)
	defer r.Close()

	watcher, err := config.Watch(configPath, log, func(updated *config.Config) {
		r.SetDefaultModel(updated.OpenAI.DefaultModel)
	})
	if err != nil {
		log.Warn("config hot reload disabled", zap.String("path", configPath), zap.Error(err))
	} else {
		defer watcher.Close()
	}

	log.Info("galaxy relay starting",
		zap.String("listen", listen),
		zap.String("config", configPath),
		zap.Bool("debug", cfg.Debug),
	)

	go func() {
		<-cmd.Context().Done()
		log.Info("shutting down")
		if err := r.Shutdown(); err != nil {
			log.Warn("shutdown failed", zap.Error(err))
		}
	}()

	return r.Run()
}

func (c *serveCommander) openStorer(cfg *config.Config, log *zap.Logger) (settings.Storer, error) {
	if c.memory {
		log.Info("using in-memory settings storage")
		return settings.NewMemoryStorer(), nil
	}

	dbPath, err := sqlitepath.ResolveSQLitePath(c.sqlitePath, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("could not resolve settings database: %w", err)
	}

	storer, err := settings.NewSQLiteStorer(dbPath)
	if err != nil {
		return nil, fmt.Errorf("could not open settings database %s: %w", dbPath, err)
	}

	log.Info("using SQLite settings storage", zap.String("path", dbPath))
	return storer, nil
}
