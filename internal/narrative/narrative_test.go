// internal/narrative/narrative_test.go
package narrative_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/dsablic/klio/internal/model"
	"github.com/dsablic/klio/internal/narrative"
)

func TestSupportedCLIs(t *testing.T) {
	clis := narrative.SupportedCLIs()
	want := []string{"claude", "codex", "gemini"}

	if len(clis) != len(want) {
		t.Fatalf("expected %d CLIs, got %d", len(want), len(clis))
	}
	for i, name := range want {
		if clis[i] != name {
			t.Errorf("SupportedCLIs()[%d] = %q, want %q", i, clis[i], name)
		}
	}
}

func TestDetectCLI(t *testing.T) {
	none := func(name string) (string, error) { return "", fmt.Errorf("not found: %s", name) }
	if _, err := narrative.DetectCLI(none); err == nil || !strings.Contains(err.Error(), "no supported AI CLI found") {
		t.Errorf("expected not found error, got %v", err)
	}

	onlyGemini := func(name string) (string, error) {
		if name == "gemini" {
			return "/usr/bin/gemini", nil
		}
		return "", fmt.Errorf("not found: %s", name)
	}
	if cli, err := narrative.DetectCLI(onlyGemini); err != nil || cli != "gemini" {
		t.Errorf("expected gemini, got %q (%v)", cli, err)
	}

	all := func(name string) (string, error) { return "/usr/bin/" + name, nil }
	if cli, _ := narrative.DetectCLI(all); cli != "claude" {
		t.Errorf("expected claude (first in order), got %q", cli)
	}
}

func TestBuildArgs(t *testing.T) {
	tests := []struct {
		cli      string
		wantName string
		wantArgs []string
	}{
		{"claude", "claude", []string{"-p", "p"}},
		{"codex", "codex", []string{"exec", "p"}},
		{"gemini", "gemini", []string{"-p", "p"}},
	}
	for _, tt := range tests {
		name, args := narrative.BuildArgs(tt.cli, "p")
		if name != tt.wantName || strings.Join(args, " ") != strings.Join(tt.wantArgs, " ") {
			t.Errorf("BuildArgs(%q) = %s %v, want %s %v", tt.cli, name, args, tt.wantName, tt.wantArgs)
		}
	}
}

func TestPrompt(t *testing.T) {
	prompt := narrative.Prompt("Focus on HR folders.")
	for _, want := range []string{"Markdown", "ageDistribution", "Additional Instructions", "Focus on HR folders."} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt should contain %q", want)
		}
	}
	if strings.Contains(narrative.Prompt(""), "Additional Instructions") {
		t.Error("prompt without extra should have no additional section")
	}
}

func TestNewWriterRejectsUnknownCLI(t *testing.T) {
	if _, err := narrative.NewWriter("copilot", nil); err == nil {
		t.Fatal("expected error for unsupported CLI")
	}
}

func TestWriterPipesSnapshot(t *testing.T) {
	w, err := narrative.NewWriter("codex", nil)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}

	var gotName string
	var gotStdin model.Snapshot
	w.Run = func(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error) {
		gotName = name
		if err := json.Unmarshal(stdin, &gotStdin); err != nil {
			t.Fatalf("stdin is not a snapshot: %v", err)
		}
		return []byte("# Drive Folder Review\n\n"), nil
	}

	out, err := w.Write(context.Background(), model.Snapshot{DirectoryID: "d1", Stats: model.DashboardStats{DocCount: 9}}, "")
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if gotName != "codex" {
		t.Errorf("expected codex, got %s", gotName)
	}
	if gotStdin.DirectoryID != "d1" || gotStdin.Stats.DocCount != 9 {
		t.Errorf("unexpected stdin %+v", gotStdin)
	}
	if out != "# Drive Folder Review\n" {
		t.Errorf("unexpected output %q", out)
	}
}
