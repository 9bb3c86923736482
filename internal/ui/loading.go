// Package ui provides terminal display for klio: loading indicators,
// dashboard rendering, the chat REPL and the directory picker.
package ui

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
)

// IsTTY returns true if stderr is a terminal.
func IsTTY() bool {
	return term.IsTerminal(os.Stderr.Fd())
}

// --- Plain text fallback ---

// PlainStatus prints loading messages to a callback function.
// Used when stderr is not a TTY (e.g., piped output).
type PlainStatus struct {
	print func(string)
	start time.Time
}

// NewPlainStatus creates a new PlainStatus with the given print callback.
func NewPlainStatus(print func(string)) *PlainStatus {
	return &PlainStatus{print: print}
}

// Start prints what is being waited for.
func (p *PlainStatus) Start(title string) {
	p.start = time.Now()
	p.print(title + "...")
}

// Done prints a completion message.
func (p *PlainStatus) Done(err error) {
	if err != nil {
		p.print("Failed.")
		return
	}
	p.print(fmt.Sprintf("Done in %s.", time.Since(p.start).Round(time.Second)))
}

// --- TUI loading indicator ---

// DoneMsg is sent to the bubbletea program when the awaited call returns.
type DoneMsg struct {
	Err error
}

type loadingModel struct {
	spinner spinner.Model
	title   string
	start    time.Time
	done     bool
	canceled bool
	err      error
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// NewLoadingModel creates a new bubbletea model showing a spinner and title.
func NewLoadingModel(title string) tea.Model {
	return loadingModel{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(titleStyle),
		),
		title: title,
		start: time.Now(),
	}
}

func (m loadingModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m loadingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.canceled = true
			return m, tea.Quit
		}
	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m loadingModel) View() string {
	if m.canceled {
		return "\n  " + infoStyle.Render(m.title+" canceled.") + "\n\n"
	}
	if m.done {
		if m.err != nil {
			return "\n  " + errorStyle.Render(m.title+" failed.") + "\n\n"
		}
		return ""
	}

	elapsed := infoStyle.Render(time.Since(m.start).Round(time.Second).String())
	return "\n  " + m.spinner.View() + " " + titleStyle.Render(m.title) + "  " + elapsed + "\n\n"
}

// RunLoading creates and returns a bubbletea program for the loading
// indicator. The program outputs to stderr so output on stdout stays clean.
func RunLoading(title string) *tea.Program {
	return tea.NewProgram(NewLoadingModel(title), tea.WithOutput(os.Stderr))
}

// Wait runs fn while showing a loading indicator: a spinner when stderr is
// a terminal, plain lines otherwise. fn gets a context derived from ctx that
// is cancelled when Wait returns. Pressing ctrl+c on the spinner cancels it
// and Wait returns context.Canceled without waiting for fn.
func Wait(ctx context.Context, title string, fn func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if !IsTTY() {
		status := NewPlainStatus(func(msg string) { fmt.Fprintln(os.Stderr, msg) })
		status.Start(title)
		err := fn(ctx)
		status.Done(err)
		return err
	}

	p := RunLoading(title)
	errCh := make(chan error, 1)
	go func() {
		err := fn(ctx)
		errCh <- err
		p.Send(DoneMsg{Err: err})
	}()
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("loading indicator: %w", err)
	}
	if Canceled(final) {
		return context.Canceled
	}
	return <-errCh
}

// Canceled reports whether the user quit a loading model with ctrl+c
// before the awaited call returned.
func Canceled(m tea.Model) bool {
	lm, ok := m.(loadingModel)
	return ok && lm.canceled && !lm.done
}
