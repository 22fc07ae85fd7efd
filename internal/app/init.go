package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	server "github.com/admin/tg-bots/pack-store-bot/internal/adapters/primary/http"
	healthcheckController "github.com/admin/tg-bots/pack-store-bot/internal/adapters/primary/http/controllers/healthcheck"
	paymentController "github.com/admin/tg-bots/pack-store-bot/internal/adapters/primary/http/controllers/payment"
	telegramController "github.com/admin/tg-bots/pack-store-bot/internal/adapters/primary/http/controllers/telegram"
	alerterAdapter "github.com/admin/tg-bots/pack-store-bot/internal/adapters/secondary/alerter"
	kafkaAdapter "github.com/admin/tg-bots/pack-store-bot/internal/adapters/secondary/kafka"
	"github.com/admin/tg-bots/pack-store-bot/internal/adapters/secondary/payment/crypto"
	"github.com/admin/tg-bots/pack-store-bot/internal/adapters/secondary/storage/pg"
	redisAdapter "github.com/admin/tg-bots/pack-store-bot/internal/adapters/secondary/storage/redis"
	s3Adapter "github.com/admin/tg-bots/pack-store-bot/internal/adapters/secondary/storage/s3"
	"github.com/admin/tg-bots/pack-store-bot/internal/adapters/secondary/telegram"
	"github.com/admin/tg-bots/pack-store-bot/internal/ports/cache"
	"github.com/admin/tg-bots/pack-store-bot/internal/ports/events"
	"github.com/admin/tg-bots/pack-store-bot/internal/ports/service"
	"github.com/admin/tg-bots/pack-store-bot/internal/ports/storage"
	catalogRepo "github.com/admin/tg-bots/pack-store-bot/internal/repository/catalog"
	orderRepo "github.com/admin/tg-bots/pack-store-bot/internal/repository/order"
	deliveryService "github.com/admin/tg-bots/pack-store-bot/internal/services/delivery"
	telegramService "github.com/admin/tg-bots/pack-store-bot/internal/services/telegram"
	"github.com/admin/tg-bots/pack-store-bot/internal/usecases/store"
	"github.com/jmoiron/sqlx"
)

// Dependencies собранный граф зависимостей приложения
type Dependencies struct {
	DB             *sqlx.DB
	Cache          cache.Cache
	KafkaProducer  *kafkaAdapter.Producer
	HTTPServer     *http.Server
	TelegramClient *telegram.Client
	TelegramPoller *telegram.Poller
}

func (a *App) initDependencies(ctx context.Context) (*Dependencies, error) {
	db, err := a.initPostgres()
	if err != nil {
		return nil, fmt.Errorf("failed to init postgres: %w", err)
	}

	deps := &Dependencies{DB: db}

	// Redis опционален: без него не будет кэша статусов и маркеров доставки
	var c cache.Cache
	if a.Cfg.RedisEnabled {
		redisClient, err := a.Cfg.Redis.NewConnection()
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		c = redisAdapter.NewClient(redisClient)
		deps.Cache = c
		a.Log.Info("redis connected successfully")
	}

	// MinIO опционален: без него доставка работает только по внешним ссылкам
	var s3Client storage.IS3Client
	if a.Cfg.S3Enabled && a.Cfg.S3.IsConfigured() {
		minioClient, err := a.Cfg.S3.NewClient()
		if err != nil {
			return nil, fmt.Errorf("failed to connect to s3: %w", err)
		}
		s3Client = s3Adapter.NewClient(minioClient, a.Cfg.S3.Bucket, a.Log)
		a.Log.Info("s3 connected successfully", "bucket", a.Cfg.S3.Bucket)
	}

	// Kafka producer опционален
	var producer events.IOrderEventProducer
	if a.Cfg.Kafka.IsConfigured() {
		kafkaProducer, err := kafkaAdapter.NewProducer(a.Cfg.Kafka, a.Log)
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka producer: %w", err)
		}
		deps.KafkaProducer = kafkaProducer
		producer = kafkaProducer
		a.Log.Info("kafka producer created", "topic", a.Cfg.Kafka.Topic)
	}

	// Алертер опционален
	var alerter service.IAlerterService
	if a.Cfg.Alerter != nil && a.Cfg.Alerter.BotToken != "" && a.Cfg.Alerter.ChatID != 0 {
		alerter = alerterAdapter.NewClient(a.Cfg.Alerter, a.Log)
		a.Log.Info("alerter enabled", "chat_id", a.Cfg.Alerter.ChatID)
	}

	tgClient := telegram.NewClient(a.Cfg.Telegram.BotToken, a.Log)
	deps.TelegramClient = tgClient

	persistenceLayer := pg.NewDB(db)
	orders := orderRepo.New(persistenceLayer, a.Log)
	catalog := catalogRepo.New()
	gateway := crypto.NewGateway(a.Cfg.Payment, a.Log)
	delivery := deliveryService.New(tgClient, s3Client, c, a.Log)

	storeUseCase := store.New(orders, catalog, gateway, tgClient, delivery, alerter, producer, c, a.Log)

	tgService := telegramService.New(storeUseCase, tgClient, a.Log)

	healthCheck := healthcheckController.New(db, a.Log)
	tgController := telegramController.New(tgService, a.Cfg.Telegram.WebhookSecret, a.Log)
	payController := paymentController.New(storeUseCase, a.Log)

	deps.HTTPServer = server.NewHTTPServer(a.Cfg.Server, a.Log, healthCheck, tgController, payController)

	if a.Cfg.Telegram.IsWebhookEnabled() {
		if err := a.setupWebhook(ctx, tgClient); err != nil {
			return nil, err
		}
	} else {
		deps.TelegramPoller = telegram.NewPoller(tgClient, a.Cfg.Telegram, tgService.HandleUpdate, a.Log)
	}

	if err := a.registerBotCommands(ctx, tgClient); err != nil {
		a.Log.Warn("failed to register bot commands", "error", err)
	}

	return deps, nil
}

func (a *App) initPostgres() (*sqlx.DB, error) {
	db, err := a.Cfg.Postgres.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	a.Log.Info("postgres connected successfully")

	if err := pg.RunMigrations(db, a.Log); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func (a *App) setupWebhook(ctx context.Context, client *telegram.Client) error {
	setupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.SetWebhook(setupCtx, a.Cfg.Telegram.WebhookURL, a.Cfg.Telegram.WebhookSecret); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}

	a.Log.Info("webhook configured", "webhook_url", a.Cfg.Telegram.WebhookURL)
	return nil
}

func (a *App) registerBotCommands(ctx context.Context, client *telegram.Client) error {
	registerCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return client.SetMyCommands(registerCtx, []telegram.BotCommand{
		{Command: "start", Description: "Запустить бота"},
		{Command: "store", Description: "Каталог паков"},
		{Command: "orders", Description: "Мои заказы"},
		{Command: "help", Description: "Справка"},
	})
}
