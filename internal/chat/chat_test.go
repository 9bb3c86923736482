package chat_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dsablic/klio/internal/api"
	"github.com/dsablic/klio/internal/chat"
	"github.com/dsablic/klio/internal/dashboard"
	"github.com/dsablic/klio/internal/model"
)

type fakeBackend struct {
	dirs     []model.Directory
	inactive []model.FileRef
	reply    model.ChatReply
	err      error
	sent     []string
}

func (f *fakeBackend) ListDirectories(ctx context.Context) ([]model.Directory, error) {
	return f.dirs, f.err
}

func (f *fakeBackend) InactiveFiles(ctx context.Context) ([]model.FileRef, error) {
	return f.inactive, f.err
}

func (f *fakeBackend) SendMessage(ctx context.Context, message string) (model.ChatReply, error) {
	f.sent = append(f.sent, message)
	return f.reply, f.err
}

type fakeGate struct{ state model.AuthState }

func (g fakeGate) Check(ctx context.Context) (model.AuthState, error) { return g.state, nil }

type fakeAnalyzer struct {
	stats model.DashboardStats
	err   error
}

func (a fakeAnalyzer) Analyze(ctx context.Context, dirID string) (model.DashboardStats, error) {
	return a.stats, a.err
}

func newInterpreter(b *fakeBackend) *chat.Interpreter {
	return chat.NewInterpreter(b, fakeGate{state: model.AuthAuthenticated}, fakeAnalyzer{}, nil)
}

func TestHelp(t *testing.T) {
	out := newInterpreter(&fakeBackend{}).Handle(context.Background(), "HELP")
	if !strings.Contains(out, "Available commands") {
		t.Errorf("expected help text, got %q", out)
	}
}

func TestDirectories(t *testing.T) {
	b := &fakeBackend{dirs: []model.Directory{{ID: "d1", Name: "Finance"}}}
	out := newInterpreter(b).Handle(context.Background(), "directories")
	if !strings.Contains(out, "- Finance (ID: d1)") {
		t.Errorf("unexpected reply %q", out)
	}

	out = newInterpreter(&fakeBackend{}).Handle(context.Background(), "list directories")
	if out != "No directories found." {
		t.Errorf("unexpected reply %q", out)
	}
}

func TestStatus(t *testing.T) {
	in := chat.NewInterpreter(&fakeBackend{}, fakeGate{state: model.AuthUnauthenticated}, fakeAnalyzer{}, nil)
	out := in.Handle(context.Background(), "status")
	if !strings.Contains(out, "not authenticated") {
		t.Errorf("unexpected reply %q", out)
	}
}

func TestAnalyze(t *testing.T) {
	a := fakeAnalyzer{stats: model.DashboardStats{DocCount: 1234, SensitiveDocuments: 5, DuplicateDocuments: 2}}
	in := chat.NewInterpreter(&fakeBackend{}, fakeGate{}, a, nil)

	out := in.Handle(context.Background(), "analyze d1")
	if !strings.Contains(out, "1,234 documents") || !strings.Contains(out, "5 with sensitive content") {
		t.Errorf("unexpected reply %q", out)
	}

	if out := in.Handle(context.Background(), "analyze"); !strings.Contains(out, "Usage: analyze") {
		t.Errorf("expected usage, got %q", out)
	}
}

func TestAnalyzeFailureMessage(t *testing.T) {
	a := fakeAnalyzer{err: fmt.Errorf("analyze d1: %w", &api.Error{Op: "analyze", StatusCode: 502, Err: api.ErrServer})}
	in := chat.NewInterpreter(&fakeBackend{}, fakeGate{}, a, nil)

	out := in.Handle(context.Background(), "analyze d1")
	if !strings.Contains(out, "could not complete") {
		t.Errorf("expected generic failure, got %q", out)
	}
}

func TestForwardPreservesCase(t *testing.T) {
	b := &fakeBackend{reply: model.ChatReply{Type: "text", Content: json.RawMessage(`"Found 2 files"`)}}
	in := newInterpreter(b)

	out := in.Handle(context.Background(), "find Q3 Report")
	if out != "Found 2 files" {
		t.Errorf("unexpected reply %q", out)
	}
	if len(b.sent) != 1 || b.sent[0] != "find Q3 Report" {
		t.Errorf("expected original text to be forwarded, got %v", b.sent)
	}

	in.Handle(context.Background(), "what is stale data?")
	if len(b.sent) != 2 {
		t.Errorf("expected free text to be forwarded, got %v", b.sent)
	}

	if out := in.Handle(context.Background(), "find"); !strings.Contains(out, "Usage: find") {
		t.Errorf("expected usage, got %q", out)
	}
	if len(b.sent) != 2 {
		t.Errorf("usage errors must not reach the backend")
	}
}

func TestCategorizationReply(t *testing.T) {
	b := &fakeBackend{reply: model.ChatReply{
		Type: "categorization",
		Content: json.RawMessage(`{"summary": {
			"by_type": {"documents": 3, "images": 1},
			"by_department": {"finance": 2, "hr": 0},
			"internal_files": 3, "external_files": 1,
			"recent_files": 1, "large_files": 0,
			"total_files": 4, "total_size": 2097152
		}}`),
	}}
	out := newInterpreter(b).Handle(context.Background(), "categorize d1")

	for _, want := range []string{"- Documents: 3", "- Finance: 2", "- Older Files: 3", "- Total Size: 2.00 MB"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
	if strings.Contains(out, "Hr") {
		t.Errorf("departments without files should be hidden: %q", out)
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&api.Error{StatusCode: 401, Err: api.ErrUnauthorized}, "session has expired"},
		{&api.Error{StatusCode: 404, Err: api.ErrNotFound}, "No analysis has been run yet"},
		{&api.Error{StatusCode: 500, Err: api.ErrServer}, "could not complete"},
		{fmt.Errorf("x: %w", dashboard.ErrStale), "discarded"},
		{&api.Error{Op: "list files", StatusCode: 422, Message: "per_page too large", Err: errors.New("unexpected status 422")}, "rejected the request (HTTP 422): list files: status 422: per_page too large"},
		{errors.New("dial tcp: connection refused"), "connection refused"},
	}
	for _, tt := range tests {
		if got := chat.Describe(tt.err); !strings.Contains(got, tt.want) {
			t.Errorf("Describe(%v) = %q, want it to contain %q", tt.err, got, tt.want)
		}
	}
	if chat.Describe(nil) != "" {
		t.Error("expected empty message for nil error")
	}
}
