package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/support-tracker/internal/api/http"
	"github.com/spec-kit/support-tracker/internal/api/http/handlers"
	"github.com/spec-kit/support-tracker/internal/clock"
	"github.com/spec-kit/support-tracker/internal/config"
	"github.com/spec-kit/support-tracker/internal/events"
	"github.com/spec-kit/support-tracker/internal/observability"
	"github.com/spec-kit/support-tracker/internal/persistence"
	"github.com/spec-kit/support-tracker/internal/repository"
	"github.com/spec-kit/support-tracker/internal/service"
	"github.com/spec-kit/support-tracker/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
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

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), persistence.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	broker, err := persistence.NewAMQP(cfg.AMQP, logger)
	if err != nil {
		logger.Warn("amqp unavailable; continuing without it", zap.Error(err))
		broker = &persistence.AMQP{}
	}
	defer broker.Close()

	clk := clock.Real()
	store := persistence.NewCSVFile(cfg.Store, clk, logger)
	ticketRepo := repository.NewCSVTicketRepository(store, logger)

	historyRepo := repository.NewMemoryHistoryRepository()
	if pg.Enabled() {
		historyRepo = repository.NewTicketHistoryRepository(pg.PoolHandle())
	}

	dispatcher := events.NewInMemoryDispatcher()
	var sinks []service.EventSink
	if redis.Enabled() {
		sinks = append(sinks, service.NewRedisSink(redis, cfg.Redis.EventsChannel))
	}
	if broker.Enabled() {
		sinks = append(sinks, service.NewAMQPSink(broker))
	}

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		HistoryRepo: historyRepo,
		Dispatcher:  dispatcher,
		Clock:       clk,
		Logger:      logger,
	})
	reportService := service.NewReportService(ticketService)
	exportService := service.NewExportService(ticketService)

	worker.StartNotificationWorker(
		service.NewNotificationService(dispatcher, logger, sinks...),
		service.NewAuditService(dispatcher, historyRepo, logger),
	)

	sweeper := worker.NewSLASweeper(ticketService, dispatcher, logger)
	if cfg.SLA.SweepSchedule != "" {
		if err := sweeper.Start(ctx, cfg.SLA.SweepSchedule); err != nil {
			logger.Fatal("failed to start sla sweeper", zap.Error(err))
		}
	}
	defer sweeper.Stop()

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout(), cfg.App.CORSAllowOrigins)

	alertTemplate := cfg.Notification.UrgentMessage
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, ticketService, pg, redis, metrics),
		Tickets: handlers.NewTicketsHandler(ticketService, alertTemplate),
		Reports: handlers.NewReportsHandler(ticketService, reportService, exportService, alertTemplate),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	logger.Info("support tracker started",
		zap.String("addr", cfg.App.Addr()),
		zap.String("store", store.Path()))

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
