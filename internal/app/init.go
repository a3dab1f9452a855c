package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"

	server "github.com/admin/tg-bots/raffle-bot/internal/adapters/primary/http"
	adminController "github.com/admin/tg-bots/raffle-bot/internal/adapters/primary/http/controllers/admin"
	alerterController "github.com/admin/tg-bots/raffle-bot/internal/adapters/primary/http/controllers/alerter"
	healthcheckController "github.com/admin/tg-bots/raffle-bot/internal/adapters/primary/http/controllers/healthcheck"
	telegramController "github.com/admin/tg-bots/raffle-bot/internal/adapters/primary/http/controllers/telegram"
	"github.com/admin/tg-bots/raffle-bot/internal/adapters/primary/http/middlewares"
	kafkaConsumerAdapter "github.com/admin/tg-bots/raffle-bot/internal/adapters/primary/kafka"
	kafkaHandlers "github.com/admin/tg-bots/raffle-bot/internal/adapters/primary/kafka/handlers"
	alerterAdapter "github.com/admin/tg-bots/raffle-bot/internal/adapters/secondary/alerter"
	kafkaAdapter "github.com/admin/tg-bots/raffle-bot/internal/adapters/secondary/kafka"
	"github.com/admin/tg-bots/raffle-bot/internal/adapters/secondary/storage/inmemory"
	"github.com/admin/tg-bots/raffle-bot/internal/adapters/secondary/storage/pg"
	redisAdapter "github.com/admin/tg-bots/raffle-bot/internal/adapters/secondary/storage/redis"
	s3Adapter "github.com/admin/tg-bots/raffle-bot/internal/adapters/secondary/storage/s3"
	tgAdapter "github.com/admin/tg-bots/raffle-bot/internal/adapters/secondary/telegram"
	"github.com/admin/tg-bots/raffle-bot/internal/ports/cache"
	"github.com/admin/tg-bots/raffle-bot/internal/ports/repository"
	"github.com/admin/tg-bots/raffle-bot/internal/ports/service"
	"github.com/admin/tg-bots/raffle-bot/internal/ports/storage"
	buyerRepo "github.com/admin/tg-bots/raffle-bot/internal/repository/buyer"
	paymentRepo "github.com/admin/tg-bots/raffle-bot/internal/repository/payment"
	raffleRepo "github.com/admin/tg-bots/raffle-bot/internal/repository/raffle"
	ticketRepo "github.com/admin/tg-bots/raffle-bot/internal/repository/ticket"
	alerterService "github.com/admin/tg-bots/raffle-bot/internal/services/alerter"
	jobScheduler "github.com/admin/tg-bots/raffle-bot/internal/services/jobs"
	"github.com/admin/tg-bots/raffle-bot/internal/services/proofs"
	"github.com/admin/tg-bots/raffle-bot/internal/services/session"
	telegramService "github.com/admin/tg-bots/raffle-bot/internal/services/telegram"
	botUsecase "github.com/admin/tg-bots/raffle-bot/internal/usecases/bot"
	raffleUsecase "github.com/admin/tg-bots/raffle-bot/internal/usecases/raffle"
	"github.com/admin/tg-bots/raffle-bot/internal/usecases/texts"
)

type Dependencies struct {
	DB             *sqlx.DB
	HTTPServer     *http.Server
	TelegramClient *tgAdapter.Client
	TelegramPoller *tgAdapter.Poller
	KafkaProducers map[string]*kafkaAdapter.Producer
	KafkaConsumers map[string]*kafkaConsumerAdapter.Consumer
	Cache          cache.Cache
	JobScheduler   *jobScheduler.Scheduler
}

// initDependencies инициализирует все зависимости приложения
func (a *App) initDependencies(ctx context.Context) (*Dependencies, error) {
	db, err := a.initPostgres(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init postgres: %w", err)
	}
	persistenceLayer := pg.NewDB(db)
	persistenceLayer.LockTimeout = a.Cfg.Postgres.LockTimeout()
	repos := a.initRepositories(persistenceLayer)

	externalServices := a.initExternalServices()

	tgClient, err := tgAdapter.NewClient(a.Cfg.Telegram, a.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram client: %w", err)
	}
	if err := tgClient.SetCommands(ctx, texts.CommandDescriptions, texts.CommandOrder); err != nil {
		a.Log.Warn("failed to register bot commands", "error", err)
	}

	// telegram сервис - INotifier для raffle, поэтому создаётся до usecase
	sessions := session.NewStore(externalServices.Cache, a.Cfg.Raffle.SessionTTL, a.Log)
	tgService := telegramService.New(tgClient, sessions, a.Log)

	producers, err := a.initKafkaProducers()
	if err != nil {
		return nil, fmt.Errorf("failed to init kafka producers: %w", err)
	}

	raffles := a.initUseCases(repos, tgService, producers)

	var proofArchive service.IProofArchive
	if externalServices.S3 != nil {
		proofArchive = proofs.New(tgClient, externalServices.S3, a.Log)
	}

	bot := botUsecase.New(
		raffles,
		tgClient,
		proofArchive, // может быть nil
		a.Cfg.Admin,
		a.Cfg.Raffle.ReservationDeadline,
		a.Cfg.Raffle.PageSize,
		a.Log,
	)
	tgService.SetBotService(bot)

	consumers, err := a.initKafkaConsumers(raffles)
	if err != nil {
		return nil, fmt.Errorf("failed to init kafka consumers: %w", err)
	}

	httpServer := a.initHTTP(persistenceLayer, externalServices, tgService, raffles, proofArchive)

	poller, err := a.initTelegramMode(ctx, tgService, tgClient)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram mode: %w", err)
	}

	scheduler := jobScheduler.NewScheduler(a.Log, externalServices.Alerter)
	scheduler.Register(jobScheduler.NewPaymentExpirer(raffles, a.Cfg.Raffle.SweepInterval, a.Log))

	return &Dependencies{
		DB:             db,
		HTTPServer:     httpServer,
		TelegramClient: tgClient,
		TelegramPoller: poller,
		KafkaProducers: producers,
		KafkaConsumers: consumers,
		Cache:          externalServices.Cache,
		JobScheduler:   scheduler,
	}, nil
}

// repositories содержит инициализированные репозитории
type repositories struct {
	Raffle  repository.IRaffleRepo
	Ticket  repository.ITicketRepo
	Payment repository.IPaymentRepo
	Buyer   repository.IBuyerRepo
}

// initRepositories инициализирует репозитории для работы с БД
func (a *App) initRepositories(persistenceLayer *pg.DB) *repositories {
	return &repositories{
		Raffle:  raffleRepo.New(persistenceLayer, a.Log),
		Ticket:  ticketRepo.New(persistenceLayer, a.Log),
		Payment: paymentRepo.New(persistenceLayer, a.Log),
		Buyer:   buyerRepo.New(persistenceLayer, a.Log),
	}
}

// externalServices содержит внешние сервисы
type externalServices struct {
	Alerter service.IAlerterService
	Cache   cache.Cache
	S3      storage.IS3Client // nil - архив чеков выключен
	Redis   bool
}

// initExternalServices инициализирует Alerter, Cache и S3. Все опциональные
func (a *App) initExternalServices() *externalServices {
	services := &externalServices{}

	// Alerter - без токена алерты только в лог
	var sender alerterService.Sender
	if a.Cfg.Alerter.Enabled() {
		client, err := alerterAdapter.NewClient(a.Cfg.Alerter, a.Log)
		if err != nil {
			a.Log.Warn("failed to init alerter, alerts will be logged only", "error", err)
		} else {
			sender = client
		}
	}
	services.Alerter = alerterService.New(sender, a.Log)

	// Redis - сессии переживают рестарт; без него сессии в памяти процесса
	if a.Cfg.Redis.Enabled() {
		redisClient, err := a.Cfg.Redis.NewConnection()
		if err != nil {
			a.Log.Warn("failed to init redis, continuing with in-memory sessions", "error", err)
		} else {
			services.Cache = redisAdapter.NewClient(redisClient)
			services.Redis = true
			a.Log.Info("redis cache connected successfully")
		}
	}
	if services.Cache == nil {
		services.Cache = inmemory.NewCache()
	}

	if a.Cfg.S3.Enabled() {
		minioClient, err := a.Cfg.S3.NewClient()
		if err != nil {
			a.Log.Warn("failed to init s3, proof archive disabled", "error", err)
		} else {
			services.S3 = s3Adapter.NewClient(minioClient, a.Cfg.S3.Bucket, a.Log)
			a.Log.Info("s3 proof archive enabled", "bucket", a.Cfg.S3.Bucket)
		}
	}

	return services
}

// initKafkaProducers producer событий платежей (опционально)
func (a *App) initKafkaProducers() (map[string]*kafkaAdapter.Producer, error) {
	producers := make(map[string]*kafkaAdapter.Producer)

	if cfg := a.Cfg.Kafka.Find(kafkaAdapter.PaymentEventsName); cfg != nil {
		producer, err := kafkaAdapter.NewProducer(cfg, a.Log)
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka producer %s: %w", kafkaAdapter.PaymentEventsName, err)
		}
		producers[kafkaAdapter.PaymentEventsName] = producer
	}

	return producers, nil
}

// initKafkaConsumers consumer решений ревью из внешней системы (опционально)
func (a *App) initKafkaConsumers(raffles *raffleUsecase.Service) (map[string]*kafkaConsumerAdapter.Consumer, error) {
	consumers := make(map[string]*kafkaConsumerAdapter.Consumer)

	cfg := a.Cfg.Kafka.Find(kafkaAdapter.ReviewDecisionsName)
	if cfg == nil {
		return consumers, nil
	}
	if cfg.ConsumerGroup == "" {
		a.Log.Warn("kafka consumer group is not set, skipping consumer", "name", kafkaAdapter.ReviewDecisionsName)
		return consumers, nil
	}

	handler := kafkaHandlers.NewReviewDecisionHandler(raffles, a.Log)
	consumer, err := kafkaConsumerAdapter.NewConsumer(cfg, handler, a.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer %s: %w", kafkaAdapter.ReviewDecisionsName, err)
	}
	consumers[kafkaAdapter.ReviewDecisionsName] = consumer

	return consumers, nil
}

// initUseCases инициализирует ядро розыгрышей
func (a *App) initUseCases(
	repos *repositories,
	notifier service.INotifier,
	producers map[string]*kafkaAdapter.Producer,
) *raffleUsecase.Service {
	var events service.IPaymentEventPublisher
	if producer, ok := producers[kafkaAdapter.PaymentEventsName]; ok {
		events = kafkaAdapter.NewPaymentEventPublisher(producer)
	}

	return raffleUsecase.New(
		repos.Raffle,
		repos.Ticket,
		repos.Payment,
		repos.Buyer,
		notifier,
		events, // может быть nil
		a.Cfg.Raffle,
		a.Log,
	)
}

// initHTTP инициализирует HTTP сервер и контроллеры
func (a *App) initHTTP(
	db *pg.DB,
	externalServices *externalServices,
	tgService *telegramService.Service,
	raffles *raffleUsecase.Service,
	proofArchive service.IProofArchive,
) *http.Server {
	pingers := map[string]healthcheckController.Pinger{"postgres": db}
	if externalServices.Redis {
		pingers["redis"] = externalServices.Cache
	}

	adminAuth := middlewares.AdminAuth(middlewares.AdminAuthConfig{
		User:     a.Cfg.Admin.HTTPUser,
		Password: a.Cfg.Admin.HTTPPassword,
		BotToken: a.Cfg.Telegram.BotToken,
		AdminIDs: a.Cfg.Admin.IDs,
	}, a.Log)

	controllers := []server.Controller{
		healthcheckController.New(pingers, a.Log),
		adminController.New(raffles, proofArchive, adminAuth, a.Log),
		alerterController.New(externalServices.Alerter, adminAuth, a.Log),
	}

	if a.Cfg.Telegram.IsWebhookEnabled() {
		controllers = append(controllers, telegramController.New(tgService, a.Cfg.Telegram.WebhookSecret, a.Log))
	}

	return server.NewHTTPServer(a.Cfg.Server, a.Log, controllers...)
}

// initTelegramMode инициализирует режим работы Telegram (webhook или polling)
func (a *App) initTelegramMode(
	ctx context.Context,
	tgService *telegramService.Service,
	tgClient *tgAdapter.Client,
) (*tgAdapter.Poller, error) {
	a.Log.Info("telegram configuration",
		"use_webhook", a.Cfg.Telegram.IsWebhookEnabled(),
		"webhook_url", a.Cfg.Telegram.WebhookURL,
	)

	if a.Cfg.Telegram.IsWebhookEnabled() {
		webhookURL := fmt.Sprintf("%s/webhook", a.Cfg.Telegram.WebhookURL)
		if err := tgClient.SetWebhook(ctx, webhookURL, a.Cfg.Telegram.WebhookSecret); err != nil {
			return nil, fmt.Errorf("failed to set webhook: %w", err)
		}
		a.Log.Info("webhook set successfully", "webhook_url", webhookURL)
		return nil, nil // webhook режим, poller не нужен
	}

	a.Log.Warn("polling mode enabled - this should only be used for local development")
	return tgAdapter.NewPoller(tgClient, a.Cfg.Telegram, tgService.HandleUpdate, a.Log), nil
}

// initPostgres инициализирует подключение к PostgreSQL и запускает миграции
func (a *App) initPostgres(ctx context.Context) (*sqlx.DB, error) {
	db, err := a.Cfg.Postgres.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	a.Log.Info("postgres connected successfully")

	if err := pg.RunMigrations(ctx, db, a.Log); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}
