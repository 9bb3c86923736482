// internal/auth/gate.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dsablic/klio/internal/api"
	"github.com/dsablic/klio/internal/model"
)

// Backend is the part of the API client the gate needs.
type Backend interface {
	AuthStatus(ctx context.Context) (bool, error)
	AuthURL(ctx context.Context) (string, error)
}

// Gate tracks whether the backend holds a Drive session. It starts out
// unknown and only moves on an explicit Check, a Connect callback, or an
// Observe of an unauthorized error. It never polls.
type Gate struct {
	backend Backend
	store   *FileStore
	baseURL string
	logger  *zap.Logger

	// Browser opens the authorization URL. Defaults to the system browser.
	Browser func(url string) error
	// CallbackPort is where the backend redirects after consent. 0 picks a
	// free port, which only works when the backend redirects there.
	CallbackPort int

	mu    sync.Mutex
	state model.AuthState
}

// NewGate creates a gate in the unknown state. store may be nil.
func NewGate(backend Backend, store *FileStore, baseURL string, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		backend: backend,
		store:   store,
		baseURL: baseURL,
		logger:  logger,
		Browser: openBrowser,
		state:   model.AuthUnknown,
	}
}

// State returns the current state.
func (g *Gate) State() model.AuthState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Hint returns the status observed by a previous invocation, for display
// before the first Check completes. ok is false when nothing is stored.
func (g *Gate) Hint() (authenticated bool, checkedAt time.Time, ok bool) {
	if g.store == nil {
		return false, time.Time{}, false
	}
	sess, err := g.store.Load(g.baseURL)
	if err != nil || sess.CheckedAt.IsZero() {
		return false, time.Time{}, false
	}
	return sess.Authenticated, sess.CheckedAt, true
}

// Check issues exactly one status request. Any error leaves the gate
// unauthenticated; the error is returned so the caller can show it.
func (g *Gate) Check(ctx context.Context) (model.AuthState, error) {
	ok, err := g.backend.AuthStatus(ctx)
	state := model.AuthUnauthenticated
	if err == nil && ok {
		state = model.AuthAuthenticated
	}
	g.set(state)
	if err != nil {
		return state, fmt.Errorf("check auth status: %w", err)
	}
	return state, nil
}

// Observe inspects the error of any backend call and drops the gate to
// unauthenticated when the backend rejected the session. It does not retry.
func (g *Gate) Observe(err error) {
	if err == nil || !errors.Is(err, api.ErrUnauthorized) {
		return
	}
	if g.State() != model.AuthUnauthenticated {
		g.logger.Info("backend session expired")
	}
	g.set(model.AuthUnauthenticated)
}

// SignOut forgets the stored session and resets the gate to unknown.
func (g *Gate) SignOut() error {
	g.mu.Lock()
	g.state = model.AuthUnknown
	g.mu.Unlock()
	if g.store == nil {
		return nil
	}
	if err := g.store.Delete(g.baseURL); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (g *Gate) set(state model.AuthState) {
	g.mu.Lock()
	changed := g.state != state
	g.state = state
	g.mu.Unlock()

	if changed {
		g.logger.Debug("auth state", zap.String("state", string(state)))
	}
	if g.store == nil || state == model.AuthUnknown {
		return
	}
	sess, _ := g.store.Load(g.baseURL)
	sess.Authenticated = state == model.AuthAuthenticated
	sess.CheckedAt = time.Now().UTC()
	if err := g.store.Save(g.baseURL, sess); err != nil {
		g.logger.Warn("save session", zap.Error(err))
	}
}
