package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	chatcmder "github.com/819SauCe/Galaxy/cmd/galaxy/chat"
	"github.com/819SauCe/Galaxy/cmd/galaxy/cliconfig"
	opencmder "github.com/819SauCe/Galaxy/cmd/galaxy/open"
	servecmder "github.com/819SauCe/Galaxy/cmd/galaxy/serve"
	settingscmder "github.com/819SauCe/Galaxy/cmd/galaxy/settings"
)

const rootLongDesc string = `Galaxy relays chat requests to LLM providers.

Run "galaxy serve" to start the HTTP relay, or "galaxy chat" to talk to a
provider from the terminal. Settings saved with "galaxy settings" supply
the provider, model and API key when a request leaves them empty.

Configuration is read from ~/.galaxy/config.toml. A .env file in the
working directory is loaded first.`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "galaxy",
		Short:         "LLM chat relay",
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String(cliconfig.ConfigFlag, "", "Path to config file (default ~/.galaxy/config.toml)")
	cmd.PersistentFlags().Bool(cliconfig.DebugFlag, false, "Enable debug logging")

	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(settingscmder.NewSettingsCmd())
	cmd.AddCommand(opencmder.NewOpenCmd())

	return cmd
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
