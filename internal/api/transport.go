package api

import (
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const defaultMaxRetries = 5

// RequestIDHeader carries a per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

// RateLimitTransport wraps an http.RoundTripper with rate limiting, 429
// retry and request IDs.
type RateLimitTransport struct {
	ReqPerSec float64           // 0 = unlimited (retry-only)
	Burst     int               // 0 = 1
	Base      http.RoundTripper // nil = http.DefaultTransport

	once    sync.Once
	limiter *rate.Limiter
}

func (t *RateLimitTransport) init() {
	if t.ReqPerSec > 0 {
		t.limiter = rate.NewLimiter(rate.Limit(t.ReqPerSec), max(t.Burst, 1))
	}
}

func (t *RateLimitTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// RoundTrip implements http.RoundTripper.
func (t *RateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.once.Do(t.init)

	ctx := req.Context()
	req = req.Clone(ctx)
	if req.Header.Get(RequestIDHeader) == "" {
		req.Header.Set(RequestIDHeader, uuid.NewString())
	}

	for attempt := 0; ; attempt++ {
		if t.limiter != nil {
			if err := t.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		resp, err := t.base().RoundTrip(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests || attempt >= defaultMaxRetries {
			return resp, nil
		}

		// Drain and close body before retry
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		// Backoff: use Retry-After header or exponential (1s, 2s, 4s...)
		delay := time.Duration(1<<uint(attempt)) * time.Second
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
				delay = time.Duration(secs) * time.Second
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}

		if req.Body != nil && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			req.Body = body
		}
	}
}
