// Package render turns assistant replies (markdown) into styled terminal output.
package render

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// DefaultWidth is the wrap width used when the terminal size is unknown.
const DefaultWidth = 80

// Markdown renders markdown for a terminal.
type Markdown struct {
	renderer *glamour.TermRenderer
}

// NewMarkdown creates a renderer wrapping at width columns. The style follows the
// terminal background.
func NewMarkdown(width int) (*Markdown, error) {
	if width <= 0 {
		width = DefaultWidth
	}

	style := "light"
	if termenv.HasDarkBackground() {
		style = "dark"
	}

	return newMarkdown(style, width)
}

// NewPlainMarkdown creates a renderer without colours, for pipes and tests.
func NewPlainMarkdown(width int) (*Markdown, error) {
	if width <= 0 {
		width = DefaultWidth
	}

	return newMarkdown("notty", width)
}

func newMarkdown(style string, width int) (*Markdown, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("creating markdown renderer: %w", err)
	}

	return &Markdown{renderer: r}, nil
}

// Render renders text. Empty text renders to an empty string.
func (m *Markdown) Render(text string) (string, error) {
	if text == "" {
		return "", nil
	}

	return m.renderer.Render(text)
}
