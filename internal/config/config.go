// Package config loads process configuration from the environment.
//
// Configuration is read ONCE at startup and passed down by reference — no
// package reads os.Getenv during request handling. In particular the JWT
// signing secret is injected into the token service at construction, so the
// rest of the code can be tested with fixture secrets.
package config

import (
	"fmt"
	"time"

	env "github.com/caarlos0/env/v6"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration.
//
// JWTSecret is the one value with no default: the process must refuse to
// start without it, because a guessable default secret would make every
// token forgeable.
type Config struct {
	Addr        string        `env:"SERVER_ADDRESS" envDefault:":8000" validate:"required"`
	BaseURL     string        `env:"BASE_URL" envDefault:"http://localhost:8000" validate:"url"`
	DBPath      string        `env:"DB_PATH" envDefault:"data/linklair.db" validate:"required"`
	JWTSecret   string        `env:"JWT_SECRET" validate:"required,min=16"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	HashWorkers int           `env:"HASH_WORKERS" envDefault:"4" validate:"min=1"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
}

// Load reads a .env file if present, then the environment, then validates.
// A missing .env is not an error — production sets real env vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parsing environment: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}

	return cfg, nil
}
