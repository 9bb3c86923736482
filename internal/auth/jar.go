package auth

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Jar is an http.CookieJar that writes the backend's cookies through to a
// FileStore, so the Drive session survives between CLI invocations.
type Jar struct {
	mu      sync.Mutex
	jar     *cookiejar.Jar
	store   *FileStore
	baseURL string
	u       *url.URL
	logger  *zap.Logger
}

// NewJar creates a jar for baseURL seeded with the cookies stored for it.
// A nil store gives an in-memory jar.
func NewJar(store *FileStore, baseURL string, logger *zap.Logger) (*Jar, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	j := &Jar{jar: inner, store: store, baseURL: baseURL, u: u, logger: logger}
	if store != nil {
		if sess, err := store.Load(baseURL); err == nil {
			inner.SetCookies(u, sess.HTTPCookies(time.Now()))
		}
	}
	return j, nil
}

func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.jar.SetCookies(u, cookies)
	if j.store == nil || u.Host != j.u.Host {
		return
	}
	j.persist(cookies)
}

func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	return j.jar.Cookies(u)
}

// persist merges cookies into the stored session. Cookies from the jar only
// carry name and value, so expiry is taken from the response cookies.
func (j *Jar) persist(cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	sess, _ := j.store.Load(j.baseURL)
	byName := make(map[string]Cookie, len(sess.Cookies))
	for _, c := range sess.Cookies {
		byName[c.Name] = c
	}
	now := time.Now()
	for _, c := range cookies {
		expires := c.Expires
		if c.MaxAge > 0 {
			expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		}
		if c.MaxAge < 0 || (!expires.IsZero() && expires.Before(now)) {
			delete(byName, c.Name)
			continue
		}
		byName[c.Name] = Cookie{Name: c.Name, Value: c.Value, Expires: expires}
	}

	sess.Cookies = make([]Cookie, 0, len(byName))
	for _, c := range byName {
		sess.Cookies = append(sess.Cookies, c)
	}
	sort.Slice(sess.Cookies, func(a, b int) bool { return sess.Cookies[a].Name < sess.Cookies[b].Name })
	if err := j.store.Save(j.baseURL, sess); err != nil {
		j.logger.Warn("save session cookies", zap.String("path", j.store.Path()), zap.Error(err))
	}
}
