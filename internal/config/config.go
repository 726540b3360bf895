package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	BotToken    string        `env:"BOT_TOKEN,required"`
	PollTimeout time.Duration `env:"TELEGRAM_POLL_TIMEOUT,default=50s"`

	BackendBindURL string        `env:"BACKEND_BIND_URL,required"`
	BackendTimeout time.Duration `env:"BACKEND_TIMEOUT,default=10s"`

	HTTPAddr string `env:"HTTP_ADDR,default=:8081"`

	PostgresDSN string `env:"POSTGRES_DSN"`

	RedisHost     string `env:"REDIS_HOST,default=localhost"`
	RedisPort     string `env:"REDIS_PORT,default=6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB,default=0"`

	SubPriceStars   int `env:"SUB_PRICE_STARS,default=1"`
	BindSyncWorkers int `env:"BIND_SYNC_WORKERS,default=2"`

	LogLevel string `env:"LOG_LEVEL,default=info"`
}

func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}
