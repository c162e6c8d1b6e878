package chatcmder

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/819SauCe/Galaxy/cmd/galaxy/cliconfig"
	"github.com/819SauCe/Galaxy/cmd/galaxy/sqlitepath"
	"github.com/819SauCe/Galaxy/pkg/llm"
	"github.com/819SauCe/Galaxy/pkg/render"
	"github.com/819SauCe/Galaxy/pkg/settings"
)

const chatLongDesc string = `Chat with the configured LLM provider.

With --message the message is sent once and the reply printed. Without it,
a message piped on stdin is sent once, and on a terminal an interactive
chat opens. Missing provider, model and API key come from the saved
settings, then OPENAI_API_KEY.

Images given with --image are attached to the first message. Local files
are sent inline as data URLs.

Examples:
  galaxy chat -m "Hi"
  galaxy chat -m "What is in this picture?" --image ./cat.png
  echo "Summarize Go generics" | galaxy chat
  galaxy chat --server http://localhost:8080`

const chatShortDesc string = "Chat with an LLM"

type chatCommander struct {
	message      string
	provider     string
	model        string
	apiKey       string
	systemPrompt string
	images       []string
	serverURL    string
	sqlitePath   string
	raw          bool
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.message, "message", "m", "", "Message to send once")
	cmd.Flags().StringVarP(&cmder.provider, "provider", "p", "", "Provider (default from settings)")
	cmd.Flags().StringVar(&cmder.model, "model", "", "Model (default from settings, then config)")
	cmd.Flags().StringVar(&cmder.apiKey, "api-key", "", "Provider API key (default from settings, then OPENAI_API_KEY)")
	cmd.Flags().StringVar(&cmder.systemPrompt, "system", "", "System prompt (default from settings)")
	cmd.Flags().StringArrayVarP(&cmder.images, "image", "i", nil, "Image file or URL to attach (repeatable)")
	cmd.Flags().StringVar(&cmder.serverURL, "server", "", "Send through a running relay server instead of calling the provider directly")
	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to the SQLite settings database")
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print the reply without markdown rendering")

	return cmd
}

func (c *chatCommander) run(ctx context.Context, cmd *cobra.Command) error {
	cfg, _, err := cliconfig.Load(cmd)
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}

	images, err := loadImages(c.images)
	if err != nil {
		return err
	}

	log, closeLog, err := cliconfig.FileLogger(cfg.Debug)
	if err != nil {
		return err
	}
	defer closeLog()

	var (
		s            sender
		systemPrompt = c.systemPrompt
	)
	if c.serverURL != "" {
		s = newRemoteSender(c.serverURL)
	} else {
		dbPath, err := sqlitepath.ResolveSQLitePath(c.sqlitePath, cfg.DB)
		if err != nil {
			return fmt.Errorf("could not resolve settings database: %w", err)
		}

		storer, err := settings.NewSQLiteStorer(dbPath)
		if err != nil {
			return fmt.Errorf("could not open settings database %s: %w", dbPath, err)
		}
		defer storer.Close()

		if systemPrompt == "" {
			general, err := settings.LoadGeneral(ctx, storer)
			if err != nil {
				log.Warn("could not load general settings", zap.Error(err))
			}
			systemPrompt = general.SystemPrompt
		}

		s = &localSender{
			registry:     cliconfig.NewRegistry(cfg, log),
			storer:       storer,
			defaultModel: cfg.OpenAI.DefaultModel,
			envAPIKey:    os.Getenv("OPENAI_API_KEY"),
		}
	}

	base := llm.ChatRequest{
		Provider:     c.provider,
		Model:        c.model,
		APIKey:       c.apiKey,
		SystemPrompt: systemPrompt,
	}

	if c.message != "" {
		return c.once(ctx, cmd.OutOrStdout(), s, base, c.message, images)
	}

	if !isTerminal(cmd.InOrStdin()) {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("could not read stdin: %w", err)
		}
		message := strings.TrimSpace(string(data))
		if message == "" {
			return fmt.Errorf("nothing to send: use --message or pipe a message on stdin")
		}
		return c.once(ctx, cmd.OutOrStdout(), s, base, message, images)
	}

	return runTUI(ctx, s, base, images)
}

// once sends a single message and prints the reply.
func (c *chatCommander) once(ctx context.Context, out io.Writer, s sender, base llm.ChatRequest, message string, images []llm.ImageAttachment) error {
	req := base
	req.Message = message
	req.Attachments.Images = images

	resp, err := s.Send(ctx, &req)
	if err != nil {
		return err
	}

	text := resp.Text
	if !c.raw && isTerminal(out) {
		if md, err := render.NewMarkdown(terminalWidth(out)); err == nil {
			if rendered, err := md.Render(text); err == nil {
				text = rendered
			}
		}
	}

	fmt.Fprintln(out, strings.TrimRight(text, "\n"))
	return nil
}

type fdWriter interface {
	Fd() uintptr
}

func isTerminal(v any) bool {
	f, ok := v.(fdWriter)
	return ok && term.IsTerminal(int(f.Fd()))
}

func terminalWidth(v any) int {
	f, ok := v.(fdWriter)
	if !ok {
		return render.DefaultWidth
	}

	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return render.DefaultWidth
	}

	return width
}
