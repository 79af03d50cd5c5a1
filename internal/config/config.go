package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the process-wide settings loaded once at startup.
// Everything security-relevant (secret, algorithm, TTL) lives here and is
// passed to constructors explicitly instead of being read per request.
type Config struct {
	HTTPAddr string `env:"SPARKBYTES_HTTP_ADDR" envDefault:":8080"`

	// DatabaseDSN is optional; without it the server runs on in-memory stores.
	DatabaseDSN string `env:"SPARKBYTES_PG_DSN"`

	AuthSecret     string `env:"SPARKBYTES_AUTH_SECRET"`
	AuthAlgorithm  string `env:"SPARKBYTES_AUTH_ALGORITHM" envDefault:"HS256"`
	AccessTokenTTL int    `env:"SPARKBYTES_ACCESS_TOKEN_TTL_MINUTES" envDefault:"30"`

	CORSOrigin string `env:"SPARKBYTES_CORS_ORIGIN" envDefault:"http://localhost:3000"`

	RateBurst  int `env:"SPARKBYTES_RATE_BURST" envDefault:"20"`
	RatePerSec int `env:"SPARKBYTES_RATE_PER_SEC" envDefault:"10"`
}

var supportedAlgorithms = map[string]struct{}{
	"HS256": {},
	"HS384": {},
	"HS512": {},
}

// Load parses the environment and validates the result. A missing secret or
// an unknown signing algorithm is a startup error, never a per-request one.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.AuthSecret) == "" {
		return errors.New("SPARKBYTES_AUTH_SECRET is required")
	}
	if _, ok := supportedAlgorithms[c.AuthAlgorithm]; !ok {
		return fmt.Errorf("unsupported signing algorithm %q (want HS256, HS384 or HS512)", c.AuthAlgorithm)
	}
	if c.AccessTokenTTL <= 0 {
		return errors.New("SPARKBYTES_ACCESS_TOKEN_TTL_MINUTES must be greater than zero")
	}
	return nil
}

// TokenTTL returns the configured access token lifetime as a duration.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTL) * time.Minute
}
