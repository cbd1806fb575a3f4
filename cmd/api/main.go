package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-aeroclub-reservation/internal/api"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/api/handler"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/api/middleware"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/application"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/config"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/mail"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/notification"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/infrastructure/kafka"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/infrastructure/postgres"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/infrastructure/rabbitmq"
	redisinfra "github.com/sanosuguru/go-aeroclub-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/pkg/metrics"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/worker"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		logger.Warn(".env の読み込みに失敗", zap.Error(err))
	}
	cfg := config.Load()
	logger.Init(cfg.Env)
	defer logger.Sync()
	m := metrics.Init()

	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続失敗", zap.Error(err))
	}
	defer db.Close()
	if err := postgres.RunMigrations(db.DB, cfg.Database.MigrationsPath); err != nil {
		logger.Fatal("マイグレーション失敗", zap.Error(err))
	}

	// Redis は任意。なければ予約はDBの排他制約のみで守り、ポリシーはDBから読む
	var (
		lockManager redisinfra.LockManagerInterface
		policyCache redisinfra.PolicyCacheInterface
		redisClient *goredis.Client
	)
	if client, err := redisinfra.NewClient(redisinfra.FromConfig(&cfg.Redis)); err != nil {
		logger.Warn("Redis接続失敗、予約ロックとポリシーキャッシュなしで起動", zap.Error(err))
	} else {
		redisClient = client
		defer redisClient.Close()
		lockManager = redisinfra.NewLockManager(redisClient)
		policyCache = redisinfra.NewPolicyCache(redisClient)
	}

	var publisher notification.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		p := kafka.NewNotificationPublisher(cfg.Kafka.Brokers, cfg.Kafka.NotificationTopic)
		defer p.Close()
		publisher = p
		logger.Info("Kafkaへの通知配信を有効化", zap.Strings("brokers", cfg.Kafka.Brokers))
	}

	var mailer mail.Dispatcher = application.LogMailDispatcher{}
	if cfg.RabbitMQ.URL != "" {
		d, err := rabbitmq.NewMailDispatcher(cfg.RabbitMQ.URL, cfg.RabbitMQ.MailQueue)
		if err != nil {
			logger.Fatal("RabbitMQ接続失敗", zap.Error(err))
		}
		defer d.Close()
		mailer = d
	}

	reservationRepo := postgres.NewReservationRepository(db)
	aircraftRepo := postgres.NewAircraftRepository(db)
	userRepo := postgres.NewUserRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)

	notifier := application.NewNotificationDispatcher(postgres.NewNotificationRepository(db), publisher)
	adminService := application.NewAdministrationService(postgres.NewAdministrationRepository(db), policyCache, cfg.Booking.PolicyCacheTTL)
	aircraftService := application.NewAircraftService(aircraftRepo)
	settlementService := application.NewSettlementService(postgres.NewTxManager(db), paymentRepo, userRepo, notifier)
	reservationService := application.NewReservationService(
		reservationRepo, aircraftRepo, userRepo, adminService, settlementService,
		notifier, mailer, lockManager,
		application.ReservationOptions{
			LockTTL:           cfg.Booking.LockTTL,
			LockRetries:       cfg.Booking.LockRetries,
			LockRetryInterval: cfg.Booking.LockRetryInterval,
			Location:          cfg.Booking.Location(),
		},
	)

	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	middleware.SetupMiddleware(e, m)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.MetricsBasicAuth(middleware.LoadMetricsConfig()))

	handler.Handlers{
		Health:         handler.NewHealthHandler(healthChecks(db, redisClient)...),
		Reservation:    handler.NewReservationHandler(reservationService),
		Aircraft:       handler.NewAircraftHandler(aircraftService),
		Payment:        handler.NewPaymentHandler(settlementService),
		Administration: handler.NewAdministrationHandler(adminService),
	}.Register(e.Group("/api/v1"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reconciler := worker.NewSettlementReconciler(reservationService, cfg.Booking.ReconcileInterval, cfg.Booking.ReconcileGrace)
	go reconciler.Start(ctx)

	go func() {
		logger.Info("サーバー起動", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("サーバーエラー", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("シャットダウン開始")

	reconciler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("サーバーシャットダウン失敗", zap.Error(err))
	}
	logger.Info("サーバー停止")
}

func healthChecks(db *sqlx.DB, redisClient *goredis.Client) []handler.HealthCheck {
	checks := []handler.HealthCheck{{
		Name: "postgres",
		Ping: func(ctx context.Context) error { return postgres.Ping(ctx, db) },
	}}
	if redisClient != nil {
		checks = append(checks, handler.HealthCheck{
			Name: "redis",
			Ping: func(ctx context.Context) error { return redisinfra.Ping(ctx, redisClient) },
		})
	}
	return checks
}
