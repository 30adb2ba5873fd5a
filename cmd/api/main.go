package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/request-portal/internal/api/http"
	"github.com/spec-kit/request-portal/internal/api/http/handlers"
	"github.com/spec-kit/request-portal/internal/auth"
	"github.com/spec-kit/request-portal/internal/config"
	"github.com/spec-kit/request-portal/internal/domain"
	"github.com/spec-kit/request-portal/internal/events"
	"github.com/spec-kit/request-portal/internal/live"
	"github.com/spec-kit/request-portal/internal/notify"
	"github.com/spec-kit/request-portal/internal/observability"
	"github.com/spec-kit/request-portal/internal/persistence"
	"github.com/spec-kit/request-portal/internal/repository"
	"github.com/spec-kit/request-portal/internal/service"
	"github.com/spec-kit/request-portal/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	requestRepo := repository.NewRequestRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)

	hub := live.NewHub(func(ctx context.Context, owner *string) ([]domain.ServiceRequest, error) {
		if owner != nil {
			return requestRepo.ListByOwner(ctx, *owner)
		}
		return requestRepo.ListAll(ctx)
	}, redis.Client, logger)
	go hub.Run(ctx)

	dispatcher := events.NewInMemoryDispatcher()
	requestService := service.NewRequestService(service.RequestDependencies{
		RequestRepo: requestRepo,
		Dispatcher:  dispatcher,
		Hub:         hub,
	})
	profileService := service.NewProfileService(profileRepo, cfg.Auth.AdminEmails)

	var mailer notify.Mailer
	if cfg.Notification.SMTPHost != "" {
		mailer = notify.NewSMTPMailer(notify.SMTPConfig{
			Host:        cfg.Notification.SMTPHost,
			Port:        cfg.Notification.SMTPPort,
			Username:    cfg.Notification.SMTPUsername,
			Password:    cfg.Notification.SMTPPassword,
			FromAddress: cfg.Notification.EmailFrom,
		})
	}
	notificationService := service.NewNotificationService(dispatcher, mailer, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	authMiddleware := auth.NewAuthMiddleware(tokens, profileService)

	metrics := observability.NewMetrics()
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Catalog:        handlers.NewCatalogHandler(),
		Requests:       handlers.NewRequestsHandler(requestService),
		Admin:          handlers.NewAdminRequestsHandler(requestService),
		Profile:        handlers.NewProfileHandler(profileService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
