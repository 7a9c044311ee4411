// Package config loads service configuration from the environment.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type RedisConfig struct {
	Addr     string        `env:"ADDR"` // empty disables the redis mirror
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	TTL      time.Duration `env:"TTL" envDefault:"5m"`
}

type Config struct {
	Addr             string        `env:"ADDR" envDefault:"0.0.0.0:8000"`
	DBPath           string        `env:"DB_PATH" envDefault:"ticker.db"`
	Symbols          []string      `env:"SYMBOLS" envSeparator:"," envDefault:"AAPL,GOOG,MSFT,AMZN"`
	Window           time.Duration `env:"WINDOW" envDefault:"60s"`
	Capacity         int           `env:"CAPACITY" envDefault:"32"`
	ExpiredRetention int           `env:"EXPIRED_RETENTION" envDefault:"4096"`
	FeedInterval     time.Duration `env:"FEED_INTERVAL" envDefault:"1s"`
	FeedSeed         int64         `env:"FEED_SEED" envDefault:"0"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`

	Redis RedisConfig `envPrefix:"REDIS_"`
}

// Load reads .env if present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}

	return cfg, nil
}
