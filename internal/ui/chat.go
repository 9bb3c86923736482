package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xterm "golang.org/x/term"
)

// Handler answers one line of chat input.
type Handler func(ctx context.Context, input string) string

var (
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).PaddingLeft(2)
)

// StdinIsTTY reports whether stdin is an interactive terminal.
func StdinIsTTY() bool {
	return xterm.IsTerminal(int(os.Stdin.Fd()))
}

func isExit(s string) bool {
	switch strings.ToLower(s) {
	case "exit", "quit", "bye":
		return true
	}
	return false
}

type replyMsg struct {
	text string
}

type chatModel struct {
	ctx     context.Context
	handle  Handler
	input   textinput.Model
	spinner spinner.Model
	pending bool
}

func newChatModel(ctx context.Context, handle Handler) chatModel {
	ti := textinput.New()
	ti.Placeholder = "Type a command, or help"
	ti.Prompt = "klio> "
	ti.PromptStyle = userStyle
	ti.CharLimit = 2000
	ti.Width = 60
	ti.Focus()

	return chatModel{
		ctx:     ctx,
		handle:  handle,
		input:   ti,
		spinner: spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(infoStyle)),
	}
}

func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}
	case tea.WindowSizeMsg:
		m.input.Width = max(msg.Width-len(m.input.Prompt)-2, 10)
	case replyMsg:
		m.pending = false
		return m, tea.Println(assistantStyle.Render(msg.text) + "\n")
	case spinner.TickMsg:
		if !m.pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if m.pending || text == "" {
		return m, nil
	}
	if isExit(text) {
		return m, tea.Quit
	}
	m.input.Reset()
	m.pending = true

	ctx, handle := m.ctx, m.handle
	ask := func() tea.Msg {
		return replyMsg{text: handle(ctx, text)}
	}
	return m, tea.Batch(tea.Println(userStyle.Render("> "+text)), m.spinner.Tick, ask)
}

func (m chatModel) View() string {
	if m.pending {
		return m.spinner.View() + infoStyle.Render(" thinking...") + "\n"
	}
	return m.input.View() + "\n"
}

// RunChat runs the interactive chat REPL until the user exits.
func RunChat(ctx context.Context, greeting string, handle Handler) error {
	fmt.Println(assistantStyle.Render(greeting) + "\n")
	p := tea.NewProgram(newChatModel(ctx, handle), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("chat: %w", err)
	}
	return nil
}

// RunPlainChat answers each line read from r on w, for piped input.
func RunPlainChat(ctx context.Context, r io.Reader, w io.Writer, handle Handler) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if isExit(line) {
			return nil
		}
		fmt.Fprintln(w, handle(ctx, line))
	}
	return scanner.Err()
}
