// Package config loads server configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the server needs to start.
type Config struct {
	Addr          string        `env:"ADDR" envDefault:":8080"`
	DBPath        string        `env:"DB_PATH" envDefault:"./data/linkup.db"`
	JWTSecret     string        `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	TokenDuration time.Duration `env:"TOKEN_DURATION" envDefault:"24h"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
