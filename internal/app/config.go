package app

import (
	server "github.com/admin/tg-bots/pack-store-bot/internal/adapters/primary/http"
	alerterAdapter "github.com/admin/tg-bots/pack-store-bot/internal/adapters/secondary/alerter"
	kafkaAdapter "github.com/admin/tg-bots/pack-store-bot/internal/adapters/secondary/kafka"
	"github.com/admin/tg-bots/pack-store-bot/internal/adapters/secondary/payment/crypto"
	"github.com/admin/tg-bots/pack-store-bot/internal/adapters/secondary/storage/pg"
	redisAdapter "github.com/admin/tg-bots/pack-store-bot/internal/adapters/secondary/storage/redis"
	s3Adapter "github.com/admin/tg-bots/pack-store-bot/internal/adapters/secondary/storage/s3"
	"github.com/admin/tg-bots/pack-store-bot/internal/adapters/secondary/telegram"
	"github.com/admin/tg-bots/pack-store-bot/internal/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Postgres *pg.Config             `envconfig:"POSTGRES"`
	Log      *logger.Config         `envconfig:"LOG"`
	Server   *server.Config         `envconfig:"APISERVER"`
	Telegram *telegram.Config       `envconfig:"TELEGRAM"`
	Payment  *crypto.Config         `envconfig:"PAYMENT"`
	Redis    *redisAdapter.Config   `envconfig:"REDIS"`
	S3       *s3Adapter.Config      `envconfig:"S3"`
	Kafka    *kafkaAdapter.Config   `envconfig:"KAFKA"`
	Alerter  *alerterAdapter.Config `envconfig:"ALERTER"`

	// RedisEnabled и S3Enabled позволяют поднять бота без опциональной
	// инфраструктуры (локальная разработка)
	RedisEnabled bool `envconfig:"REDIS_ENABLED" default:"false"`
	S3Enabled    bool `envconfig:"S3_ENABLED" default:"false"`
}

func NewEnvConfig(envPrefix string) (*Config, error) {
	cfg := &Config{}

	_ = godotenv.Load("deployments/local/.env")

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
