package opencmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/819SauCe/Galaxy/pkg/opener"
)

const openLongDesc string = `Open a URL or a local file with the system default application.

Examples:
  galaxy open https://platform.openai.com/api-keys
  galaxy open ~/.galaxy/config.toml`

const openShortDesc string = "Open a URL or file"

type openCommander struct {
	opener opener.Opener
}

func NewOpenCmd() *cobra.Command {
	return newOpenCmd(opener.NewBrowser())
}

func newOpenCmd(op opener.Opener) *cobra.Command {
	cmder := &openCommander{opener: op}

	return &cobra.Command{
		Use:   "open <path-or-url>",
		Short: openShortDesc,
		Long:  openLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(args[0])
		},
	}
}

func (c *openCommander) run(target string) error {
	if err := c.opener.Open(target); err != nil {
		return fmt.Errorf("could not open %s: %w", target, err)
	}

	return nil
}
