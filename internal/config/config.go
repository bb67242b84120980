// Package config loads server configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config contains server configuration parameters.
type Config struct {
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	DBPath   string `env:"DB_PATH" envDefault:"data/practice.db"`

	// AllowedEmailDomains is the institutional allow-list. An email passes
	// when its domain equals an entry or is a subdomain of one.
	AllowedEmailDomains []string `env:"ALLOWED_EMAIL_DOMAINS" envSeparator:"," envDefault:"sejong.ac.kr"`

	// CookieSecure marks the identity cookie Secure. Enable behind HTTPS.
	CookieSecure bool `env:"COOKIE_SECURE" envDefault:"false"`

	JWT    JWT    `envPrefix:"JWT_"`
	OAuth  OAuth  `envPrefix:"OAUTH_"`
	Oracle Oracle `envPrefix:"ORACLE_"`
}

// JWT contains identity token parameters.
type JWT struct {
	Secret string        `env:"SECRET"`
	TTL    time.Duration `env:"TTL" envDefault:"24h"`
}

// OAuth contains identity provider parameters.
type OAuth struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	Tenant       string `env:"TENANT" envDefault:"common"`
	RedirectURL  string `env:"REDIRECT_URL"`
	UserInfoURL  string `env:"USERINFO_URL" envDefault:"https://graph.microsoft.com/v1.0/me"`
}

// Enabled reports whether enough is configured to run the login flow.
func (o OAuth) Enabled() bool {
	return o.ClientID != "" && o.ClientSecret != ""
}

// Oracle contains ranking service client parameters.
type Oracle struct {
	BaseURL           string        `env:"BASE_URL" envDefault:"https://solved.ac/api/v3"`
	Timeout           time.Duration `env:"TIMEOUT" envDefault:"10s"`
	MaxTier           int           `env:"MAX_TIER" envDefault:"30"`
	RequestsPerSecond float64       `env:"RPS" envDefault:"2"`
	Burst             int           `env:"BURST" envDefault:"5"`
}

// NewConfig loads configuration from environment variables.
func NewConfig() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if _, err := cfg.Level(); err != nil {
		return nil, err
	}
	if cfg.Oracle.MaxTier <= 0 {
		return nil, fmt.Errorf("ORACLE_MAX_TIER must be positive, got %d", cfg.Oracle.MaxTier)
	}

	return &cfg, nil
}

// Level parses LogLevel ("debug", "info", "warn", "error").
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return level, nil
}
