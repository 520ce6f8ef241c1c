package main

import (
	"context"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/majewskibartosz/railway-support-lab/internal/api/http"
	"github.com/majewskibartosz/railway-support-lab/internal/api/http/handlers"
	"github.com/majewskibartosz/railway-support-lab/internal/auth"
	"github.com/majewskibartosz/railway-support-lab/internal/config"
	"github.com/majewskibartosz/railway-support-lab/internal/events"
	"github.com/majewskibartosz/railway-support-lab/internal/health"
	"github.com/majewskibartosz/railway-support-lab/internal/lifecycle"
	"github.com/majewskibartosz/railway-support-lab/internal/observability"
	"github.com/majewskibartosz/railway-support-lab/internal/persistence"
	"github.com/majewskibartosz/railway-support-lab/internal/repository"
	"github.com/majewskibartosz/railway-support-lab/internal/service"
	"github.com/majewskibartosz/railway-support-lab/internal/status"
	"github.com/majewskibartosz/railway-support-lab/internal/storage"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("failed to load config: %v", err)
		return 1
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Printf("failed to init logger: %v", err)
		return 1
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Error("failed to configure postgres", zap.Error(err))
		return 1
	}

	redis := persistence.NewRedis(cfg.Storage, logger)
	defer redis.Close()

	adminHash, err := auth.HashPassword(cfg.Auth.AdminPassword, cfg.Auth.BcryptCost)
	if err != nil {
		logger.Error("failed to hash admin password", zap.Error(err))
		return 1
	}
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTLMinutes)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)

	ticketRepo := repository.NewTicketRepository(pg.PoolHandle())
	ticketService := service.NewTicketService(ticketRepo, dispatcher, logger)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	notificationService.RegisterHandlers()

	prober := status.NewProber(cfg.Probe.TargetURL, cfg.Probe.Timeout())
	history := status.NewHistory()
	aggregator := health.NewAggregator(pg, prober, history, logger)

	objectStore := storage.NewObjectStore(redis.Client, cfg.Storage.KeyPrefix)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: !cfg.App.IsDevelopment(),
	})
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:         logger,
		Metrics:        metrics,
		RequestTimeout: cfg.App.RequestTimeout(),
		Development:    cfg.App.IsDevelopment(),
	})

	controller := lifecycle.NewController(app, pg, cfg.App.Addr(), logger)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Tickets: handlers.NewTicketsHandler(ticketService),
		Health:  handlers.NewHealthHandler(aggregator),
		Metrics: handlers.NewMetricsHandler(ticketService, metrics, aggregator),
		Status:  handlers.NewStatusHandler(prober, history),
		Storage: handlers.NewStorageHandler(objectStore, logger),
		Debug:   handlers.NewDebugHandler(logger, controller.Fatal),
		Auth:    handlers.NewAuthHandler(tokens, adminHash),
		Tokens:  tokens,
	})

	return controller.Run(ctx)
}
