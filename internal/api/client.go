// internal/api/client.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dsablic/klio/internal/analysis"
	"github.com/dsablic/klio/internal/model"
)

const (
	// DefaultBaseURL is where the backend listens in a local setup.
	DefaultBaseURL = "http://localhost:8000"

	maxErrorBody = 64 << 10
)

// Client talks to the Legacy Data Manager backend. It is safe for
// concurrent use.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
	onError func(error)
}

// NewClient creates a backend client. If baseURL is empty, DefaultBaseURL is
// used. The http.Client should carry a cookie jar, since the backend keeps
// the Drive session in a cookie.
func NewClient(baseURL string, client *http.Client, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  logger,
	}
}

// BaseURL returns the backend root the client was configured with.
func (c *Client) BaseURL() string { return c.baseURL }

// OnError registers fn to be called with every error a request returns.
// The auth gate uses it to notice expired sessions.
func (c *Client) OnError(fn func(error)) {
	c.onError = fn
}

// AuthStatus reports whether the backend holds a valid Drive session.
func (c *Client) AuthStatus(ctx context.Context) (bool, error) {
	var body map[string]json.RawMessage
	if err := c.do(ctx, "auth status", http.MethodGet, "/api/v1/drive/auth/status", nil, nil, &body); err != nil {
		return false, err
	}
	for _, key := range []string{"authenticated", "isAuthenticated"} {
		msg, ok := body[key]
		if !ok {
			continue
		}
		var v bool
		if err := json.Unmarshal(msg, &v); err != nil {
			return false, c.fail(&Error{Op: "auth status", Err: fmt.Errorf("%w: %s is not a boolean", ErrMalformed, key)})
		}
		return v, nil
	}
	return false, nil
}

// AuthURL returns the URL the user must visit to connect Google Drive.
func (c *Client) AuthURL(ctx context.Context) (string, error) {
	var body struct {
		AuthURL string `json:"auth_url"`
		URL     string `json:"url"`
	}
	if err := c.do(ctx, "auth url", http.MethodGet, "/api/v1/drive/auth/url", nil, nil, &body); err != nil {
		return "", err
	}
	u := body.AuthURL
	if u == "" {
		u = body.URL
	}
	if u == "" {
		return "", c.fail(&Error{Op: "auth url", Err: fmt.Errorf("%w: no auth_url in response", ErrMalformed)})
	}
	return u, nil
}

// ListDirectories returns the top-level Drive folders.
func (c *Client) ListDirectories(ctx context.Context) ([]model.Directory, error) {
	var raw json.RawMessage
	if err := c.do(ctx, "list directories", http.MethodGet, "/api/v1/drive/directories", nil, nil, &raw); err != nil {
		return nil, err
	}

	var dirs []model.Directory
	if err := json.Unmarshal(raw, &dirs); err == nil {
		return dirs, nil
	}
	var wrapped struct {
		Directories []model.Directory `json:"directories"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, c.fail(&Error{Op: "list directories", Err: fmt.Errorf("%w: %v", ErrMalformed, err)})
	}
	return wrapped.Directories, nil
}

// ListFiles fetches one page of the files recorded by the last analysis of
// a directory. A 404 means the directory has not been analyzed yet.
func (c *Client) ListFiles(ctx context.Context, dirID string, q model.FileQuery) (model.FilePage, error) {
	params := url.Values{}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		params.Set("per_page", strconv.Itoa(q.PerPage))
	}
	if q.AgeGroup != "" {
		params.Set("age_group", string(q.AgeGroup))
	}
	if q.FileType != "" {
		params.Set("file_type", string(q.FileType))
	}
	if q.Category != "" {
		params.Set("category", string(q.Category))
	}

	var body struct {
		Files []model.RawFile `json:"files"`
		Total *int            `json:"total"`
	}
	path := "/api/v1/drive/directories/" + url.PathEscape(dirID) + "/files"
	if err := c.do(ctx, "list files", http.MethodGet, path, params, nil, &body); err != nil {
		return model.FilePage{}, err
	}
	if body.Files == nil {
		return model.FilePage{}, c.fail(&Error{Op: "list files", Err: fmt.Errorf("%w: no files in response", ErrMalformed)})
	}

	page := model.FilePage{Files: make([]model.FileRef, 0, len(body.Files))}
	for _, f := range body.Files {
		page.Files = append(page.Files, analysis.FileRef(f))
	}
	page.Total = len(page.Files)
	if body.Total != nil {
		page.Total = *body.Total
	}
	return page, nil
}

// InactiveFiles lists files the backend considers inactive.
func (c *Client) InactiveFiles(ctx context.Context) ([]model.FileRef, error) {
	var body struct {
		Files []model.RawFile `json:"files"`
	}
	if err := c.do(ctx, "inactive files", http.MethodGet, "/api/v1/drive/files/inactive", nil, nil, &body); err != nil {
		return nil, err
	}
	files := make([]model.FileRef, 0, len(body.Files))
	for _, f := range body.Files {
		files = append(files, analysis.FileRef(f))
	}
	return files, nil
}

// Analyze asks the backend to analyze a directory and returns the raw
// result. Analysis can take a long time; callers bound it with ctx.
func (c *Client) Analyze(ctx context.Context, dirID string) (model.RawAnalysis, error) {
	var raw model.RawAnalysis
	path := "/api/v1/drive/directories/" + url.PathEscape(dirID) + "/analyze"
	start := time.Now()
	if err := c.do(ctx, "analyze", http.MethodPost, path, nil, nil, &raw); err != nil {
		return model.RawAnalysis{}, err
	}
	c.logger.Debug("analysis received",
		zap.String("directory", dirID),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("buckets", len(raw.Buckets)))
	return raw, nil
}

// SendMessage forwards free text to the backend chat endpoint.
func (c *Client) SendMessage(ctx context.Context, message string) (model.ChatReply, error) {
	var reply model.ChatReply
	in := map[string]string{"message": message}
	if err := c.do(ctx, "chat", http.MethodPost, "/api/v1/chat/messages", nil, in, &reply); err != nil {
		return model.ChatReply{}, err
	}
	return reply, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return c.fail(&Error{Op: op, Err: err})
	}
	defer resp.Body.Close()

	c.logger.Debug("backend response",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return c.fail(&Error{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    errorDetail(data),
			Err:        classify(resp.StatusCode),
		})
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return c.fail(&Error{Op: op, Err: fmt.Errorf("%w: %v", ErrMalformed, err)})
	}
	return nil
}

func (c *Client) fail(err error) error {
	if c.onError != nil {
		c.onError(err)
	}
	return err
}

// errorDetail extracts the message from a FastAPI style error body
// ({"detail": "..."}), falling back to the trimmed body text.
func errorDetail(data []byte) string {
	var body struct {
		Detail  any    `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if s, ok := body.Detail.(string); ok && s != "" {
			return s
		}
		if body.Message != "" {
			return body.Message
		}
	}
	s := strings.TrimSpace(string(data))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
