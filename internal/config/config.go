package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Port string `envconfig:"PORT" default:"8080"`

	StorageDriver  string        `envconfig:"STORAGE_DRIVER" default:"postgres"`
	DatabaseURL    string        `envconfig:"DATABASE_URL"`
	StorageTimeout time.Duration `envconfig:"STORAGE_TIMEOUT" default:"3s"`

	RedisURL    string        `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	PresenceTTL time.Duration `envconfig:"PRESENCE_TTL" default:"10m"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	WSAllowedOrigins []string `envconfig:"WS_ALLOWED_ORIGINS"`
	WSSendBuffer     int      `envconfig:"WS_SEND_BUFFER" default:"256"`

	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding    string `envconfig:"LOG_ENCODING" default:"json"`
	LogDevelopment bool   `envconfig:"LOG_DEVELOPMENT" default:"false"`
}

// Load reads .env.local or .env when present, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(".env.local"); err != nil {
		// a missing .env is fine; the environment may carry everything
		_ = godotenv.Load()
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StorageDriver {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required for the postgres storage driver")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.StorageTimeout <= 0 {
		return errors.New("config: STORAGE_TIMEOUT must be positive")
	}
	if c.WSSendBuffer <= 0 {
		return errors.New("config: WS_SEND_BUFFER must be positive")
	}
	return nil
}
