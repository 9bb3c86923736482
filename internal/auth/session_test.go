// internal/auth/session_test.go
package auth_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dsablic/klio/internal/auth"
)

const backendURL = "http://localhost:8000"

func TestSessionRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := auth.NewFileStore(filepath.Join(dir, "session.json"))

	sess := auth.Session{
		Cookies:       []auth.Cookie{{Name: "session", Value: "abc"}},
		Authenticated: true,
		CheckedAt:     time.Now().UTC().Truncate(time.Second),
	}
	if err := store.Save(backendURL, sess); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	loaded, err := store.Load(backendURL)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if !loaded.Authenticated {
		t.Error("expected authenticated flag to survive")
	}
	if len(loaded.Cookies) != 1 || loaded.Cookies[0].Value != "abc" {
		t.Errorf("unexpected cookies %+v", loaded.Cookies)
	}
}

func TestSessionMissing(t *testing.T) {
	dir := t.TempDir()
	store := auth.NewFileStore(filepath.Join(dir, "session.json"))

	if _, err := store.Load(backendURL); err != auth.ErrNoSession {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestSessionPerBaseURL(t *testing.T) {
	dir := t.TempDir()
	store := auth.NewFileStore(filepath.Join(dir, "session.json"))

	store.Save(backendURL, auth.Session{Authenticated: true})
	store.Save("https://klio.example.com", auth.Session{Authenticated: false})

	if err := store.Delete(backendURL); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Load(backendURL); err == nil {
		t.Error("expected deleted session to be gone")
	}
	if _, err := store.Load("https://klio.example.com"); err != nil {
		t.Errorf("expected other session to remain: %v", err)
	}
}

func TestSessionFilePermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")
	store := auth.NewFileStore(path)

	if err := store.Save(backendURL, auth.Session{Cookies: []auth.Cookie{{Name: "s", Value: "secret"}}}); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("failed to stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected permissions 0600, got %o", info.Mode().Perm())
	}
}

func TestSessionDropsExpiredCookies(t *testing.T) {
	now := time.Now()
	sess := auth.Session{Cookies: []auth.Cookie{
		{Name: "old", Value: "x", Expires: now.Add(-time.Hour)},
		{Name: "live", Value: "y", Expires: now.Add(time.Hour)},
		{Name: "session", Value: "z"},
	}}
	got := sess.HTTPCookies(now)
	if len(got) != 2 {
		t.Fatalf("expected 2 cookies, got %d", len(got))
	}
	for _, c := range got {
		if c.Name == "old" {
			t.Error("expired cookie should be dropped")
		}
	}
}
