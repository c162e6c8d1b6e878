package settingscmder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/819SauCe/Galaxy/cmd/galaxy/cliconfig"
	"github.com/819SauCe/Galaxy/cmd/galaxy/sqlitepath"
	"github.com/819SauCe/Galaxy/pkg/settings"
)

const settingsLongDesc string = `Read and write the settings stored in the local SQLite database.

Values are JSON documents. The "general" key holds the chat preferences:
system prompt, language, API keys, primary provider and selected models.

Examples:
  galaxy settings list
  galaxy settings get general
  galaxy settings set general '{"primaryAI":"openai","apiKeys":{"openai":"sk-..."}}'`

const settingsShortDesc string = "Manage stored settings"

type settingsCommander struct {
	sqlitePath string
}

func NewSettingsCmd() *cobra.Command {
	cmder := &settingsCommander{}

	cmd := &cobra.Command{
		Use:   "settings",
		Short: settingsShortDesc,
		Long:  settingsLongDesc,
	}

	cmd.PersistentFlags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to the SQLite settings database")

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print a stored setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.withStorer(cmd, func(ctx context.Context, s settings.Storer) error {
				return cmder.get(ctx, cmd, s, args[0])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <json>",
		Short: "Store a setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.withStorer(cmd, func(ctx context.Context, s settings.Storer) error {
				return cmder.set(ctx, cmd, s, args[0], args[1])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored setting keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.withStorer(cmd, func(ctx context.Context, s settings.Storer) error {
				return cmder.list(ctx, cmd, s)
			})
		},
	})

	return cmd
}

func (c *settingsCommander) withStorer(cmd *cobra.Command, fn func(context.Context, settings.Storer) error) error {
	cfg, _, err := cliconfig.Load(cmd)
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}

	dbPath, err := sqlitepath.ResolveSQLitePath(c.sqlitePath, cfg.DB)
	if err != nil {
		return fmt.Errorf("could not resolve settings database: %w", err)
	}

	storer, err := settings.NewSQLiteStorer(dbPath)
	if err != nil {
		return fmt.Errorf("could not open settings database %s: %w", dbPath, err)
	}
	defer storer.Close()

	return fn(cmd.Context(), storer)
}

func (c *settingsCommander) get(ctx context.Context, cmd *cobra.Command, s settings.Storer, key string) error {
	var value []byte
	if key == settings.GeneralKey {
		general, err := settings.LoadGeneral(ctx, s)
		if err != nil {
			return err
		}
		if value, err = json.Marshal(general); err != nil {
			return err
		}
	} else {
		var err error
		if value, err = s.Get(ctx, key); err != nil {
			return err
		}
	}

	var out bytes.Buffer
	if err := json.Indent(&out, value, "", "  "); err != nil {
		out.Reset()
		out.Write(value)
	}

	fmt.Fprintln(cmd.OutOrStdout(), out.String())
	return nil
}

func (c *settingsCommander) set(ctx context.Context, cmd *cobra.Command, s settings.Storer, key, value string) error {
	if !json.Valid([]byte(value)) {
		return fmt.Errorf("value for %s is not valid JSON", key)
	}

	if key == settings.GeneralKey {
		var general settings.GeneralSettings
		if err := json.Unmarshal([]byte(value), &general); err != nil {
			return fmt.Errorf("value for %s does not match the general settings: %w", key, err)
		}
	}

	if err := s.Put(ctx, key, []byte(value)); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", key)
	return nil
}

func (c *settingsCommander) list(ctx context.Context, cmd *cobra.Command, s settings.Storer) error {
	keys, err := s.Keys(ctx)
	if err != nil {
		return err
	}

	if len(keys) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No settings stored.")
		return nil
	}

	for _, k := range keys {
		fmt.Fprintln(cmd.OutOrStdout(), k)
	}
	return nil
}
