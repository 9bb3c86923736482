package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/dsablic/klio/internal/model"
)

// ErrConsentDenied is returned by Connect when the backend reports that the
// Google consent step failed.
var ErrConsentDenied = errors.New("google drive authorization failed")

type callbackResult struct {
	ok      bool
	message string
}

// Connect runs the browser handoff: it starts the local callback route,
// fetches the authorization URL, opens it, and waits for the backend to
// redirect back. On arrival it performs exactly one Check.
func (g *Gate) Connect(ctx context.Context) (model.AuthState, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", g.CallbackPort))
	if err != nil {
		return g.State(), fmt.Errorf("listen for auth callback: %w", err)
	}

	results := make(chan callbackResult, 1)
	server := &http.Server{
		Handler:           callbackRouter(results),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	defer server.Shutdown(context.Background())

	authURL, err := g.backend.AuthURL(ctx)
	if err != nil {
		return g.State(), fmt.Errorf("get auth url: %w", err)
	}
	g.logger.Info("waiting for authorization", zap.String("callback", ln.Addr().String()))
	if g.Browser != nil {
		if err := g.Browser(authURL); err != nil {
			g.logger.Warn("open browser", zap.Error(err), zap.String("url", authURL))
		}
	}

	select {
	case res := <-results:
		if !res.ok {
			g.set(model.AuthUnauthenticated)
			if res.message != "" {
				return model.AuthUnauthenticated, fmt.Errorf("%w: %s", ErrConsentDenied, res.message)
			}
			return model.AuthUnauthenticated, ErrConsentDenied
		}
		return g.Check(ctx)
	case err := <-errCh:
		return g.State(), fmt.Errorf("auth callback server: %w", err)
	case <-ctx.Done():
		return g.State(), ctx.Err()
	}
}

// callbackRouter serves the routes the backend redirects to after consent:
// the site root (?auth=success or ?auth=error&message=...) and /callback.
// Each request delivers at most one result; later ones are answered but
// dropped.
func callbackRouter(results chan<- callbackResult) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	handle := func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		res := callbackResult{ok: q.Get("auth") != "error", message: q.Get("message")}
		select {
		case results <- res:
		default:
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if !res.ok {
			fmt.Fprintf(w, "Authorization failed: %s\n", res.message)
			return
		}
		fmt.Fprintln(w, "Google Drive connected. You can close this tab and return to the terminal.")
	}
	r.Get("/", handle)
	r.Get("/callback", handle)
	r.Get("/auth/callback", handle)
	return r
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform %s", runtime.GOOS)
	}
	return cmd.Start()
}
