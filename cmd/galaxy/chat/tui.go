package chatcmder

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/819SauCe/Galaxy/pkg/llm"
	"github.com/819SauCe/Galaxy/pkg/render"
)

const (
	defaultWidth   = 100
	defaultHeight  = 30
	inputCharLimit = 8000
	// input and status lines below the transcript
	chromeHeight = 2
)

var (
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	userStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type replyMsg struct {
	text string
	err  error
}

type turn struct {
	role string
	text string
}

// chatModel is the interactive chat. It owns the conversation history and
// sends it with every message, since each dispatch is stateless.
type chatModel struct {
	ctx    context.Context
	sender sender
	base   llm.ChatRequest

	history []llm.HistoryMessage
	turns   []turn
	pending []llm.ImageAttachment

	input   textinput.Model
	view    viewport.Model
	spinner spinner.Model
	md      *render.Markdown

	waiting bool
	err     error
	width   int
	height  int
}

func newChatModel(ctx context.Context, s sender, base llm.ChatRequest, images []llm.ImageAttachment) chatModel {
	input := textinput.New()
	input.Placeholder = "Send a message (/image <path>, /clear, /quit)"
	input.Prompt = "> "
	input.PromptStyle = userStyle
	input.CharLimit = inputCharLimit
	input.Width = defaultWidth - 2
	input.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = accentStyle

	// a nil renderer falls back to plain text
	md, _ := render.NewMarkdown(defaultWidth)

	return chatModel{
		ctx:     ctx,
		sender:  s,
		base:    base,
		pending: images,
		input:   input,
		view:    viewport.New(defaultWidth, defaultHeight-chromeHeight),
		spinner: sp,
		md:      md,
		width:   defaultWidth,
		height:  defaultHeight,
	}
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.waiting {
				return m, nil
			}
			text := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if text == "" {
				return m, nil
			}
			if cmd, handled := m.command(text); handled {
				m.refresh()
				return m, cmd
			}
			cmds = append(cmds, m.send(text))
			m.refresh()
		case tea.KeyPgUp:
			m.view.HalfPageUp()
		case tea.KeyPgDown:
			m.view.HalfPageDown()
		}

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case replyMsg:
		m.waiting = false
		if msg.err != nil {
			m.err = msg.err
			// the failed user turn is not kept in the history sent next time
			m.history = m.history[:len(m.history)-1]
		} else {
			m.err = nil
			m.history = append(m.history, llm.HistoryMessage{Role: llm.RoleAssistant, Content: msg.text})
			m.turns = append(m.turns, turn{role: llm.RoleAssistant, text: msg.text})
		}
		m.refresh()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// command handles slash commands. handled is false for ordinary messages.
func (m *chatModel) command(text string) (tea.Cmd, bool) {
	if !strings.HasPrefix(text, "/") {
		return nil, false
	}

	name, arg, _ := strings.Cut(text, " ")
	switch name {
	case "/quit", "/exit":
		return tea.Quit, true
	case "/clear":
		m.history = nil
		m.turns = nil
		m.pending = nil
		m.err = nil
		return nil, true
	case "/image":
		arg = strings.TrimSpace(arg)
		if arg == "" {
			m.err = fmt.Errorf("usage: /image <path-or-url>")
			return nil, true
		}
		img, err := loadImage(arg)
		if err != nil {
			m.err = err
			return nil, true
		}
		m.pending = append(m.pending, img)
		m.err = nil
		return nil, true
	}

	return nil, false
}

// send records the user turn and starts the request. Pending images go with
// this message only.
func (m *chatModel) send(text string) tea.Cmd {
	m.history = append(m.history, llm.HistoryMessage{Role: llm.RoleUser, Content: text})
	m.turns = append(m.turns, turn{role: llm.RoleUser, text: text})

	req := m.base
	req.Message = text
	req.History = append([]llm.HistoryMessage(nil), m.history...)
	req.Attachments.Images = m.pending

	m.pending = nil
	m.waiting = true
	m.err = nil

	ctx, s := m.ctx, m.sender
	return func() tea.Msg {
		resp, err := s.Send(ctx, &req)
		if err != nil {
			return replyMsg{err: err}
		}
		return replyMsg{text: resp.Text}
	}
}

func (m *chatModel) resize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = max(width-2, 1)
	m.view.Width = width
	m.view.Height = max(height-chromeHeight, 1)

	if md, err := render.NewMarkdown(width); err == nil {
		m.md = md
	}
	m.refresh()
}

func (m *chatModel) refresh() {
	var b strings.Builder
	for _, t := range m.turns {
		switch t.role {
		case llm.RoleUser:
			b.WriteString(userStyle.Render("you") + "\n")
			b.WriteString(t.text + "\n\n")
		default:
			b.WriteString(accentStyle.Render("assistant") + "\n")
			b.WriteString(m.renderReply(t.text) + "\n")
		}
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("error: "+m.err.Error()) + "\n")
	}

	m.view.SetContent(b.String())
	m.view.GotoBottom()
}

func (m *chatModel) renderReply(text string) string {
	if m.md == nil {
		return text + "\n"
	}

	out, err := m.md.Render(text)
	if err != nil {
		return text + "\n"
	}
	return out
}

func (m chatModel) status() string {
	var parts []string
	if m.waiting {
		parts = append(parts, m.spinner.View()+" waiting for reply")
	}
	if n := len(m.pending); n > 0 {
		parts = append(parts, fmt.Sprintf("%d image(s) attached", n))
	}
	if m.base.Model != "" {
		parts = append(parts, m.base.Model)
	}
	parts = append(parts, "esc to quit")

	return dimStyle.Render(ansi.Truncate(strings.Join(parts, " · "), m.width, "…"))
}

func (m chatModel) View() string {
	return m.view.View() + "\n" + m.input.View() + "\n" + m.status()
}

func runTUI(ctx context.Context, s sender, base llm.ChatRequest, images []llm.ImageAttachment) error {
	program := tea.NewProgram(newChatModel(ctx, s, base, images), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}
