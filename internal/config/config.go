package config

import (
	"errors"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	HTTPPort           int           `env:"HTTP_PORT" env-default:"8080"`
	FeedbackAPIBaseURL string        `env:"FEEDBACK_API_BASE_URL"`
	FeedbackAPITimeout time.Duration `env:"FEEDBACK_API_TIMEOUT" env-default:"30s"`
	RedisURL           string        `env:"REDIS_URL"`
	PageCacheTTL       time.Duration `env:"PAGE_CACHE_TTL" env-default:"5m"`
	KafkaBrokers       []string      `env:"KAFKA_BROKERS" env-separator:","`
	ConfirmationTopic  string        `env:"CONFIRMATION_TOPIC" env-default:"submission-confirmations"`
}

func New() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig("./config/.env", &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err := cleanenv.ReadEnv(&cfg); err != nil {
				return nil, err
			}
			return &cfg, nil
		}
		return nil, err
	}
	return &cfg, nil
}
