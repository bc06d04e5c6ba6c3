package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "admin", "password",
}

type Config struct {
	Port                 int    `env:"PORT" envDefault:"8080"`
	DatabaseURL          string `env:"DATABASE_URL,required"`
	RedisURL             string `env:"REDIS_URL"`
	AuthTokenSecret      string `env:"AUTH_TOKEN_SECRET,required"`
	PaymentWebhookSecret string `env:"PAYMENT_WEBHOOK_SECRET"`
	SessionDurationHours int    `env:"SESSION_DURATION_HOURS" envDefault:"24"`
	UpstreamModelURL     string `env:"UPSTREAM_MODEL_URL"`
	UpstreamModelAPIKey  string `env:"UPSTREAM_MODEL_API_KEY"`
	LogLevel             string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) SessionDuration() time.Duration {
	return time.Duration(c.SessionDurationHours) * time.Hour
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate(isProduction bool) error {
	if c.SessionDurationHours <= 0 {
		return fmt.Errorf("SESSION_DURATION_HOURS must be positive, got %d", c.SessionDurationHours)
	}

	if isProduction {
		if err := validateSecret("AUTH_TOKEN_SECRET", c.AuthTokenSecret); err != nil {
			return err
		}

		if c.PaymentWebhookSecret == "" {
			log.Warn().Msg("PAYMENT_WEBHOOK_SECRET is empty in production: webhook signature verification disabled")
		}
		if c.RedisURL == "" {
			log.Warn().Msg("REDIS_URL is empty: rate limit counters are per-instance only")
		}
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
	}

	return nil
}

func validateSecret(name, value string) error {
	if len(value) < 32 {
		return fmt.Errorf("%s must be at least 32 characters in production (generate with: openssl rand -base64 32)", name)
	}
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret in production", name)
		}
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
