// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Credential store: "sqlite:<path>" or a postgres:// URL
	DatabaseURL string `env:"DATABASE_URL" envDefault:"sqlite:copydesk.db"`

	// Optional Redis session store. Sessions stay in memory when empty.
	RedisURL string `env:"REDIS_URL"`

	// Sessions
	SessionSecret     string        `env:"SESSION_SECRET"`
	SessionTTL        time.Duration `env:"SESSION_TTL" envDefault:"0s"`
	SessionCookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"copydesk_session"`

	// Completion service
	OpenAIAPIKey         string        `env:"OPENAI_API_KEY,required,notEmpty"`
	OpenAIBaseURL        string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	OpenAIModel          string        `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo-instruct"`
	GenerationTimeout    time.Duration `env:"GENERATION_TIMEOUT" envDefault:"60s"`
	GenerationMaxRetries uint64        `env:"GENERATION_MAX_RETRIES" envDefault:"2"`
	GenerationRetryBase  time.Duration `env:"GENERATION_RETRY_BASE" envDefault:"500ms"`

	// Optional prompt catalog override (YAML). The embedded catalog is used when empty.
	PromptCatalog string `env:"PROMPT_CATALOG"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts. WriteTimeout must leave room for a full generation call.
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"90s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// UsesPostgres reports whether DatabaseURL points at PostgreSQL.
func (c *Config) UsesPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") ||
		strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	if c.SessionTTL < 0 {
		return fmt.Errorf("SESSION_TTL must not be negative, got %s", c.SessionTTL)
	}
	if c.GenerationTimeout <= 0 {
		return fmt.Errorf("GENERATION_TIMEOUT must be positive, got %s", c.GenerationTimeout)
	}
	if c.WriteTimeout > 0 && c.WriteTimeout <= c.GenerationTimeout {
		return fmt.Errorf("WRITE_TIMEOUT (%s) must exceed GENERATION_TIMEOUT (%s)", c.WriteTimeout, c.GenerationTimeout)
	}
	if strings.TrimSpace(c.SessionCookieName) == "" {
		return fmt.Errorf("SESSION_COOKIE_NAME must not be empty")
	}
	return nil
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
