// Package narrative turns a dashboard snapshot into a prose report by
// handing it to an installed AI command-line tool.
package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/dsablic/klio/internal/model"
)

// supportedCLIs is the ordered list of AI CLI tools we can invoke.
var supportedCLIs = []string{"claude", "codex", "gemini"}

// SupportedCLIs returns the list of supported AI CLI tool names.
func SupportedCLIs() []string {
	return slices.Clone(supportedCLIs)
}

// LookupFunc resolves a command name to its path. Compatible with exec.LookPath.
type LookupFunc func(name string) (string, error)

// RunFunc runs name with args, feeding stdin, and returns stdout.
type RunFunc func(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error)

// DetectCLI finds the first supported AI CLI the lookup can resolve.
func DetectCLI(lookup LookupFunc) (string, error) {
	for _, cli := range supportedCLIs {
		if _, err := lookup(cli); err == nil {
			return cli, nil
		}
	}
	return "", fmt.Errorf("no supported AI CLI found; install one of: %s", strings.Join(supportedCLIs, ", "))
}

// BuildArgs returns the command name and argument slice for a non-interactive
// invocation of the given CLI with the provided prompt.
func BuildArgs(cli, prompt string) (string, []string) {
	switch cli {
	case "codex":
		return "codex", []string{"exec", prompt}
	case "gemini":
		return "gemini", []string{"-p", prompt}
	default:
		return "claude", []string{"-p", prompt}
	}
}

// Prompt returns the instructions given to the AI CLI. The snapshot JSON
// arrives on stdin. If extra is non-empty it is appended.
func Prompt(extra string) string {
	var b strings.Builder

	b.WriteString(`You are a records-management analyst. You will receive a JSON document on stdin describing the contents of one Google Drive folder.

Shape:
- "directory_id" and "generated_at" identify the analysis run.
- "stats.docCount", "stats.sensitiveDocuments" and "stats.duplicateDocuments" are folder-wide counts.
- "stats.ageDistribution" has three keys, lessThanOneYear, oneToThreeYears and moreThanThreeYears. Each holds "types" (file type -> count, size in bytes, percentage of the bucket) and "risks" (pii, financial, legal, confidential -> finding count, mean confidence 0-1, percentage, and the flagged files).

Write a short Markdown report for an owner deciding what to archive, review or delete. Output ONLY Markdown, with no code fences around the document and no preamble.

1. **Title**: "# Drive Folder Review"
2. **Summary** (## Summary): one or two paragraphs on size, age profile and sensitivity.
3. **Stale Data** (## Stale Data): what is older than three years and how much space it takes. Sizes in KB/MB/GB.
4. **Sensitive Content** (## Sensitive Content): a table with columns Age, Category, Findings, Confidence, followed by the most notable files by name.
5. **Recommendations** (## Recommendations): a bullet list of concrete next steps.

Format counts with comma separators (e.g. 1,234). Do not invent files that are not in the data.
`)

	if extra != "" {
		b.WriteString("\n### Additional Instructions\n\n")
		b.WriteString(extra)
		b.WriteString("\n")
	}

	return b.String()
}

// Writer produces narrative reports with one AI CLI.
type Writer struct {
	CLI    string
	Run    RunFunc
	logger *zap.Logger
}

// NewWriter returns a writer for cli, or for the first installed supported
// CLI when cli is empty.
func NewWriter(cli string, logger *zap.Logger) (*Writer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cli == "" {
		detected, err := DetectCLI(exec.LookPath)
		if err != nil {
			return nil, err
		}
		cli = detected
	} else if !slices.Contains(supportedCLIs, cli) {
		return nil, fmt.Errorf("unsupported AI CLI %q; use one of: %s", cli, strings.Join(supportedCLIs, ", "))
	}
	return &Writer{CLI: cli, Run: runCommand, logger: logger}, nil
}

// Write generates the narrative for snap.
func (w *Writer) Write(ctx context.Context, snap model.Snapshot, extra string) (string, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	name, args := BuildArgs(w.CLI, Prompt(extra))
	w.logger.Debug("generating narrative", zap.String("cli", name), zap.Int("input_bytes", len(data)))

	out, err := w.Run(ctx, name, args, data)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)) + "\n", nil
}

func runCommand(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s failed: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s failed: %w", name, err)
	}
	return stdout.Bytes(), nil
}
