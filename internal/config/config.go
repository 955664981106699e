package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Store       string `env:"STORE" envDefault:"sqlite"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"cribscore.db"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RedisPrefix string `env:"REDIS_PREFIX" envDefault:"cribscore:"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"text"`
}

func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreSQLite, StoreRedis:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("STORE=%s requires DATABASE_URL", StorePostgres)
		}
	default:
		return fmt.Errorf("unknown STORE %q", c.Store)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat)
	}
	return nil
}
