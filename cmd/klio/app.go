package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/dsablic/klio/internal/api"
	"github.com/dsablic/klio/internal/auth"
	"github.com/dsablic/klio/internal/chat"
	"github.com/dsablic/klio/internal/config"
	"github.com/dsablic/klio/internal/dashboard"
	"github.com/dsablic/klio/internal/logging"
)

// app holds the wired components shared by all commands.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	client     *api.Client
	gate       *auth.Gate
	controller *dashboard.Controller
	closers    []func() error
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger}

	sessionPath := cfg.Auth.SessionPath
	if sessionPath == "" {
		sessionPath = auth.DefaultStorePath()
	}
	sessions := auth.NewFileStore(sessionPath)

	jar, err := auth.NewJar(sessions, cfg.API.BaseURL, logger)
	if err != nil {
		return nil, err
	}
	httpClient := &http.Client{
		Jar:     jar,
		Timeout: cfg.API.Timeout,
		Transport: &api.RateLimitTransport{
			ReqPerSec: cfg.API.RequestsPerSecond,
			Burst:     cfg.API.Burst,
		},
	}
	a.client = api.NewClient(cfg.API.BaseURL, httpClient, logger)

	a.gate = auth.NewGate(a.client, sessions, cfg.API.BaseURL, logger)
	a.gate.CallbackPort = cfg.Auth.CallbackPort
	openBrowser := a.gate.Browser
	a.gate.Browser = func(u string) error {
		fmt.Fprintf(os.Stderr, "If your browser does not open, visit:\n\n  %s\n\n", u)
		if !cfg.Auth.OpenBrowser {
			return nil
		}
		return openBrowser(u)
	}
	a.client.OnError(a.gate.Observe)

	var store dashboard.SnapshotStore
	switch cfg.Cache.Backend {
	case "file":
		dir := cfg.Cache.Path
		if dir == "" {
			dir = dashboard.DefaultCacheDir()
		}
		store = dashboard.NewFileStore(dir, cfg.Cache.TTL)
	case "redis":
		rs, err := dashboard.NewRedisStore(ctx, cfg.Cache.RedisURL, cfg.Cache.TTL, logger)
		if err != nil {
			return nil, fmt.Errorf("snapshot cache: %w", err)
		}
		a.closers = append(a.closers, rs.Close)
		store = rs
	}
	a.controller = dashboard.NewController(a.client, store, logger)

	return a, nil
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Debug("close", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

// describe turns errors from the backend into user-facing messages and
// leaves everything else as is.
func describe(err error) string {
	var apiErr *api.Error
	switch {
	case errors.As(err, &apiErr),
		errors.Is(err, dashboard.ErrStale),
		errors.Is(err, dashboard.ErrNoSnapshot):
		return chat.Describe(err)
	}
	return err.Error()
}
