// Package chat interprets the conversational command interface.
package chat

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/dsablic/klio/internal/bytesize"
	"github.com/dsablic/klio/internal/model"
)

// Backend is the part of the API client the interpreter uses.
type Backend interface {
	ListDirectories(ctx context.Context) ([]model.Directory, error)
	InactiveFiles(ctx context.Context) ([]model.FileRef, error)
	SendMessage(ctx context.Context, message string) (model.ChatReply, error)
}

// StatusChecker reports the Drive session state.
type StatusChecker interface {
	Check(ctx context.Context) (model.AuthState, error)
}

// Analyzer runs and commits a directory analysis.
type Analyzer interface {
	Analyze(ctx context.Context, dirID string) (model.DashboardStats, error)
}

const helpText = `Available commands:
- help: Show this help message
- directories: List your top-level folders
- status: Check authentication status
- analyze <directory_id>: Analyze a directory and summarize the result
- inactive: List inactive files
- categorize <directory_id>: Categorize files in a directory
- find <query>: Search your files
Anything else is sent to the assistant.`

// Interpreter answers one line of user input at a time.
type Interpreter struct {
	backend  Backend
	gate     StatusChecker
	analyzer Analyzer
	logger   *zap.Logger
}

func NewInterpreter(backend Backend, gate StatusChecker, analyzer Analyzer, logger *zap.Logger) *Interpreter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interpreter{backend: backend, gate: gate, analyzer: analyzer, logger: logger}
}

// Handle runs one command and returns the reply text. Errors are always
// turned into a message; Handle never fails.
func (in *Interpreter) Handle(ctx context.Context, input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}
	fields := strings.Fields(input)
	command := strings.ToLower(fields[0])
	args := fields[1:]

	var (
		reply string
		err   error
	)
	switch command {
	case "help":
		reply = helpText
	case "directories", "dirs":
		reply, err = in.directories(ctx)
	case "list":
		if len(args) == 1 && strings.EqualFold(args[0], "directories") {
			reply, err = in.directories(ctx)
		} else {
			reply, err = in.forward(ctx, input)
		}
	case "status":
		reply, err = in.status(ctx)
	case "analyze", "scan":
		if len(args) != 1 {
			return "Please provide a directory ID. Usage: analyze <directory_id>"
		}
		reply, err = in.analyze(ctx, args[0])
	case "inactive":
		reply, err = in.inactive(ctx)
	case "categorize":
		if len(args) == 0 {
			return "Please provide a directory ID. Usage: categorize <directory_id>"
		}
		reply, err = in.forward(ctx, input)
	case "find":
		if len(args) == 0 {
			return "Please provide a search query. Usage: find <query>"
		}
		reply, err = in.forward(ctx, input)
	default:
		reply, err = in.forward(ctx, input)
	}
	if err != nil {
		in.logger.Debug("chat command failed", zap.String("command", command), zap.Error(err))
		return Describe(err)
	}
	return reply
}

func (in *Interpreter) directories(ctx context.Context) (string, error) {
	dirs, err := in.backend.ListDirectories(ctx)
	if err != nil {
		return "", err
	}
	if len(dirs) == 0 {
		return "No directories found.", nil
	}
	var b strings.Builder
	b.WriteString("Here are your top-level directories:")
	for _, d := range dirs {
		fmt.Fprintf(&b, "\n- %s (ID: %s)", d.Name, d.ID)
	}
	return b.String(), nil
}

func (in *Interpreter) status(ctx context.Context) (string, error) {
	state, err := in.gate.Check(ctx)
	if err != nil {
		return "", err
	}
	if state != model.AuthAuthenticated {
		return "You are not authenticated. Run `klio auth login` to connect Google Drive.", nil
	}
	return "You are authenticated and ready to use the system.", nil
}

func (in *Interpreter) analyze(ctx context.Context, dirID string) (string, error) {
	stats, err := in.analyzer.Analyze(ctx, dirID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Analysis of %s complete: %s documents, %s with sensitive content, %s duplicates.",
		dirID,
		humanize.Comma(int64(stats.DocCount)),
		humanize.Comma(int64(stats.SensitiveDocuments)),
		humanize.Comma(int64(stats.DuplicateDocuments))), nil
}

func (in *Interpreter) inactive(ctx context.Context) (string, error) {
	files, err := in.backend.InactiveFiles(ctx)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "No inactive files found.", nil
	}
	var b strings.Builder
	b.WriteString("Here are your inactive files:")
	for _, f := range files {
		fmt.Fprintf(&b, "\n- %s (ID: %s, Last modified: %s)", f.Name, f.ID, f.ModifiedTime)
	}
	return b.String(), nil
}

func (in *Interpreter) forward(ctx context.Context, message string) (string, error) {
	reply, err := in.backend.SendMessage(ctx, message)
	if err != nil {
		return "", err
	}
	if summary, ok := reply.Categorization(); ok {
		return FormatCategorization(summary), nil
	}
	return reply.Text(), nil
}

// FormatCategorization renders a categorization summary as plain text.
func FormatCategorization(s model.CategorizationSummary) string {
	var b strings.Builder
	b.WriteString("Directory Categorization Summary\n")

	b.WriteString("\nBy File Type:\n")
	for _, k := range sortedKeys(s.ByType) {
		fmt.Fprintf(&b, "- %s: %s\n", title(k), humanize.Comma(int64(s.ByType[k])))
	}

	b.WriteString("\nBy Ownership:\n")
	fmt.Fprintf(&b, "- Internal Files: %s\n", humanize.Comma(int64(s.InternalFiles)))
	fmt.Fprintf(&b, "- External Files: %s\n", humanize.Comma(int64(s.ExternalFiles)))

	b.WriteString("\nBy Department:\n")
	for _, k := range sortedKeys(s.ByDepartment) {
		if n := s.ByDepartment[k]; n > 0 {
			fmt.Fprintf(&b, "- %s: %s\n", title(k), humanize.Comma(int64(n)))
		}
	}

	b.WriteString("\nBy Last Access:\n")
	fmt.Fprintf(&b, "- Recent Files (<=30 days): %s\n", humanize.Comma(int64(s.RecentFiles)))
	fmt.Fprintf(&b, "- Older Files: %s\n", humanize.Comma(int64(s.TotalFiles-s.RecentFiles)))

	b.WriteString("\nBy Size:\n")
	fmt.Fprintf(&b, "- Large Files (>10MB): %s\n", humanize.Comma(int64(s.LargeFiles)))

	b.WriteString("\nTotal Statistics:\n")
	fmt.Fprintf(&b, "- Total Files: %s\n", humanize.Comma(int64(s.TotalFiles)))
	fmt.Fprintf(&b, "- Total Size: %s", bytesize.Format(s.TotalSize))
	return b.String()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
