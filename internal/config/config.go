package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	BackendSQLite   = "sqlite"
	BackendSupabase = "supabase"
)

type Config struct {
	Addr      string   `env:"HEARTQUEST_ADDR" envDefault:":8080"`
	BaseURL   string   `env:"HEARTQUEST_BASE_URL" envDefault:"http://localhost:8080"`
	DataDir   string   `env:"HEARTQUEST_DATA_DIR" envDefault:"data"`
	Backend   string   `env:"HEARTQUEST_BACKEND" envDefault:"sqlite"`
	Dev       bool     `env:"HEARTQUEST_DEV" envDefault:"false"`
	Metrics   bool     `env:"HEARTQUEST_METRICS" envDefault:"true"`
	Origins   []string `env:"HEARTQUEST_CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	MaxUpload int64    `env:"HEARTQUEST_MAX_UPLOAD" envDefault:"104857600"`

	Supabase  SupabaseConfig
	Auth      AuthConfig
	Narration NarrationConfig
}

type SupabaseConfig struct {
	URL    string `env:"SUPABASE_URL"`
	Key    string `env:"SUPABASE_SERVICE_ROLE_KEY"`
	Bucket string `env:"SUPABASE_BUCKET" envDefault:"memory-images"`
}

type AuthConfig struct {
	Secret string `env:"HEARTQUEST_JWT_SECRET"`
	Issuer string `env:"HEARTQUEST_JWT_ISSUER"`
}

type NarrationConfig struct {
	APIKey  string        `env:"OPENAI_API_KEY"`
	BaseURL string        `env:"OPENAI_BASE_URL"`
	Model   string        `env:"HEARTQUEST_NARRATION_MODEL" envDefault:"gpt-4o-mini"`
	Voice   string        `env:"HEARTQUEST_NARRATION_VOICE" envDefault:"nova"`
	Timeout time.Duration `env:"HEARTQUEST_NARRATION_TIMEOUT" envDefault:"8s"`
}

// Load reads the environment. Non-empty flag values override it.
func Load(flagAddr, flagDataDir string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if flagAddr != "" {
		cfg.Addr = flagAddr
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Backend {
	case BackendSQLite:
	case BackendSupabase:
		if c.Supabase.URL == "" || c.Supabase.Key == "" {
			return fmt.Errorf("backend %q needs SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY", c.Backend)
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.MaxUpload <= 0 {
		return fmt.Errorf("upload limit must be positive")
	}
	return nil
}

// NarrationEnabled reports whether a model provider is configured.
func (c Config) NarrationEnabled() bool { return c.Narration.APIKey != "" }

// AuthEnabled reports whether creator routes can verify tokens.
func (c Config) AuthEnabled() bool { return c.Auth.Secret != "" }
