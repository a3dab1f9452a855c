package app

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	server "github.com/admin/tg-bots/raffle-bot/internal/adapters/primary/http"
	alerterAdapter "github.com/admin/tg-bots/raffle-bot/internal/adapters/secondary/alerter"
	kafkaAdapter "github.com/admin/tg-bots/raffle-bot/internal/adapters/secondary/kafka"
	"github.com/admin/tg-bots/raffle-bot/internal/adapters/secondary/storage/pg"
	redisAdapter "github.com/admin/tg-bots/raffle-bot/internal/adapters/secondary/storage/redis"
	s3Adapter "github.com/admin/tg-bots/raffle-bot/internal/adapters/secondary/storage/s3"
	"github.com/admin/tg-bots/raffle-bot/internal/adapters/secondary/telegram"
	"github.com/admin/tg-bots/raffle-bot/internal/pkg/logger"
	botUsecase "github.com/admin/tg-bots/raffle-bot/internal/usecases/bot"
	raffleUsecase "github.com/admin/tg-bots/raffle-bot/internal/usecases/raffle"
)

type Config struct {
	Postgres *pg.Config                `envconfig:"POSTGRES"`
	Log      *logger.Config            `envconfig:"LOG"`
	Server   *server.Config            `envconfig:"APISERVER"`
	Telegram *telegram.Config          `envconfig:"TELEGRAM"`
	Raffle   *raffleUsecase.Config     `envconfig:"RAFFLE"`
	Admin    *botUsecase.Config        `envconfig:"ADMIN"`
	Redis    *redisAdapter.Config      `envconfig:"REDIS"`
	S3       *s3Adapter.Config         `envconfig:"S3"`
	Alerter  *alerterAdapter.Config    `envconfig:"ALERTER"`
	Kafka    kafkaAdapter.KafkaConfigs `envconfig:"KAFKA"`
}

func NewEnvConfig(envPrefix string) (*Config, error) {
	cfg := &Config{}

	_ = godotenv.Load("deployments/local/.env")

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, err
	}

	// envconfig не умеет определять размер слайса, Kafka загружаем вручную
	if err := cfg.Kafka.Load(envPrefix); err != nil {
		return nil, fmt.Errorf("failed to load kafka config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Telegram.IsWebhookEnabled() && c.Telegram.WebhookURL == "" {
		return fmt.Errorf("webhook_url is required when use_webhook is true")
	}
	if len(c.Admin.IDs) == 0 {
		return fmt.Errorf("at least one admin id is required")
	}
	if c.Raffle.PageSize <= 0 || c.Raffle.PageSize > c.Raffle.NumbersPerRaffle {
		return fmt.Errorf("page_size must be in 1..%d", c.Raffle.NumbersPerRaffle)
	}
	return nil
}
