// internal/auth/session.go
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

var ErrNoSession = errors.New("no stored session")

// Session is what the CLI remembers about a backend between invocations:
// the session cookies and the last auth status it observed.
type Session struct {
	Cookies       []Cookie  `json:"cookies,omitempty"`
	Authenticated bool      `json:"authenticated"`
	CheckedAt     time.Time `json:"checked_at,omitempty"`
}

// Cookie is the persisted form of an http.Cookie.
type Cookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Expires time.Time `json:"expires,omitempty"`
}

func (c Cookie) Expired(now time.Time) bool {
	return !c.Expires.IsZero() && now.After(c.Expires)
}

// HTTPCookies converts the stored cookies, dropping expired ones.
func (s Session) HTTPCookies(now time.Time) []*http.Cookie {
	var out []*http.Cookie
	for _, c := range s.Cookies {
		if c.Expired(now) {
			continue
		}
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/", Expires: c.Expires})
	}
	return out
}

// FileStore keeps one Session per backend base URL in a JSON file that only
// the current user can read.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func DefaultStorePath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "klio", "session.json")
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Save(baseURL string, sess Session) error {
	all, _ := s.loadAll()
	if all == nil {
		all = make(map[string]Session)
	}
	all[baseURL] = sess
	return s.writeAll(all)
}

func (s *FileStore) Load(baseURL string) (Session, error) {
	all, err := s.loadAll()
	if err != nil {
		return Session{}, ErrNoSession
	}
	sess, ok := all[baseURL]
	if !ok {
		return Session{}, ErrNoSession
	}
	return sess, nil
}

// Delete forgets the session for baseURL. Deleting a missing session is
// not an error.
func (s *FileStore) Delete(baseURL string) error {
	all, err := s.loadAll()
	if err != nil {
		return nil
	}
	if _, ok := all[baseURL]; !ok {
		return nil
	}
	delete(all, baseURL)
	return s.writeAll(all)
}

func (s *FileStore) writeAll(all map[string]Session) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (s *FileStore) loadAll() (map[string]Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var all map[string]Session
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	return all, nil
}
