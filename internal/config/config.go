// Package config loads klio settings from defaults, an optional YAML file
// and KLIO_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "KLIO_"

type Config struct {
	API   APIConfig   `koanf:"api"`
	Auth  AuthConfig  `koanf:"auth"`
	Cache CacheConfig `koanf:"cache"`
	Log   LogConfig   `koanf:"log"`
	UI    UIConfig    `koanf:"ui"`
}

type APIConfig struct {
	BaseURL           string        `koanf:"base_url" validate:"required,url"`
	Timeout           time.Duration `koanf:"timeout" validate:"gt=0"`
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"gte=0"`
	Burst             int           `koanf:"burst" validate:"gte=0"`
}

type AuthConfig struct {
	CallbackPort int    `koanf:"callback_port" validate:"gte=0,lte=65535"`
	OpenBrowser  bool   `koanf:"open_browser"`
	SessionPath  string `koanf:"session_path"`
}

type CacheConfig struct {
	Backend  string        `koanf:"backend" validate:"oneof=file redis none"`
	Path     string        `koanf:"path"`
	RedisURL string        `koanf:"redis_url" validate:"required_if=Backend redis"`
	TTL      time.Duration `koanf:"ttl" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=console json"`
}

type UIConfig struct {
	PageSize int `koanf:"page_size" validate:"gt=0,lte=1000"`
}

// Defaults returns the built-in settings.
func Defaults() Config {
	return Config{
		API: APIConfig{
			BaseURL:           "http://localhost:8000",
			Timeout:           5 * time.Minute,
			RequestsPerSecond: 10,
			Burst:             5,
		},
		Auth: AuthConfig{
			// The backend redirects to its frontend URL after consent.
			CallbackPort: 3000,
			OpenBrowser:  true,
		},
		Cache: CacheConfig{
			Backend: "file",
			TTL:     7 * 24 * time.Hour,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
		UI: UIConfig{
			PageSize: 20,
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "klio", "config.yaml")
}

// Load reads the configuration. An empty path means DefaultPath, which may
// be missing; an explicit path must exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := Defaults()
	if err := k.Load(structs.Provider(&defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	optional := path == ""
	if optional {
		path = DefaultPath()
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if !optional || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	// KLIO_API_BASE_URL -> api.base_url
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".", 1)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
