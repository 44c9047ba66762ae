package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-tracker/internal/api/http"
	"github.com/spec-kit/ticket-tracker/internal/api/http/handlers"
	"github.com/spec-kit/ticket-tracker/internal/app"
	"github.com/spec-kit/ticket-tracker/internal/auth"
	"github.com/spec-kit/ticket-tracker/internal/bootstrap"
	"github.com/spec-kit/ticket-tracker/internal/config"
	"github.com/spec-kit/ticket-tracker/internal/observability"
	"github.com/spec-kit/ticket-tracker/internal/service"
	"github.com/spec-kit/ticket-tracker/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, observability.ServiceFields(cfg.App))
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, err := app.Build(ctx, cfg, logger, app.Options{})
	if err != nil {
		logger.Fatal("failed to initialize storage", zap.Error(err))
	}
	defer container.Close()

	if created, err := bootstrap.SeedUsers(ctx, container.AuthService, cfg.Bootstrap.Users, logger); err != nil {
		logger.Fatal("failed to seed users", zap.Error(err))
	} else if created > 0 {
		logger.Info("seeded users", zap.Int("count", created))
	}

	notificationService := service.NewNotificationService(container.Dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(container.Dispatcher, notificationService, container.Relay, logger)

	metrics := observability.NewMetrics()
	authMiddleware := auth.NewAuthMiddleware(container.Tokens, container.Revocations, cfg.Auth.AllowUserIDHeader)

	fiberApp := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(fiberApp, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(fiberApp, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, container.Postgres, container.Redis, metrics),
		Users:          handlers.NewUsersHandler(container.AuthService),
		Tickets:        handlers.NewTicketsHandler(container.TicketService),
		AuthMiddleware: authMiddleware,
		UserLookup:     container.Store.Repositories().Users,
	})

	go func() {
		if err := fiberApp.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = fiberApp.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
