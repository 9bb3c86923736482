package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dsablic/klio/internal/config"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Errorf("unexpected base url %s", cfg.API.BaseURL)
	}
	if cfg.UI.PageSize != 20 {
		t.Errorf("expected page size 20, got %d", cfg.UI.PageSize)
	}
	if cfg.API.Timeout != 5*time.Minute {
		t.Errorf("expected 5m timeout, got %s", cfg.API.Timeout)
	}
	if cfg.Cache.Backend != "file" {
		t.Errorf("expected file cache, got %s", cfg.Cache.Backend)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeFile(t, `
api:
  base_url: https://klio.example.com
  timeout: 30s
ui:
  page_size: 50
log:
  level: debug
`)
	t.Setenv("KLIO_UI_PAGE_SIZE", "10")
	t.Setenv("KLIO_CACHE_BACKEND", "none")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.BaseURL != "https://klio.example.com" {
		t.Errorf("expected file base url, got %s", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %s", cfg.API.Timeout)
	}
	if cfg.UI.PageSize != 10 {
		t.Errorf("expected env to override page size, got %d", cfg.UI.PageSize)
	}
	if cfg.Cache.Backend != "none" {
		t.Errorf("expected env cache backend, got %s", cfg.Cache.Backend)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected debug log level, got %s", cfg.Log.Level)
	}
}

func TestLoadExplicitPathMissing(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		field  string
	}{
		{"bad url", func(c *config.Config) { c.API.BaseURL = "not a url" }, "BaseURL"},
		{"zero page size", func(c *config.Config) { c.UI.PageSize = 0 }, "PageSize"},
		{"unknown backend", func(c *config.Config) { c.Cache.Backend = "memcached" }, "Backend"},
		{"redis without url", func(c *config.Config) { c.Cache.Backend = "redis" }, "RedisURL"},
		{"bad level", func(c *config.Config) { c.Log.Level = "verbose" }, "Level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("expected %s in %v", tt.field, err)
			}
		})
	}

	cfg := config.Defaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should be valid: %v", err)
	}
}
