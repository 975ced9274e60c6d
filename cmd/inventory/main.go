package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/retail-inventory/internal/analytics"
	analytichttp "github.com/odyssey-erp/retail-inventory/internal/analytics/http"
	"github.com/odyssey-erp/retail-inventory/internal/app"
	"github.com/odyssey-erp/retail-inventory/internal/assistant"
	"github.com/odyssey-erp/retail-inventory/internal/inventory"
	"github.com/odyssey-erp/retail-inventory/internal/observability"
	"github.com/odyssey-erp/retail-inventory/internal/platform/cache"
	"github.com/odyssey-erp/retail-inventory/internal/platform/db"
	"github.com/odyssey-erp/retail-inventory/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, db.Options{})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	var analyticsCache *analytics.Cache
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, analytics cache disabled", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		analyticsCache = analytics.NewCache(redisClient, cfg.AnalyticsCacheTTL)
	}

	inventoryRepo := inventory.NewRepository(dbpool)
	analyticsService := analytics.NewService(inventoryRepo, analyticsCache)

	var changes inventory.ChangeHandler
	if analyticsCache != nil {
		changes = analyticsCache
	}
	inventoryService := inventory.NewService(inventoryRepo, changes, logger)
	inventoryHandler := inventory.NewHandler(logger, inventoryService)

	analyticsHandler := analytichttp.NewHandler(logger, analyticsService, cfg.TopSellersLimit)
	assistantHandler := assistant.NewHandler(logger, assistant.NewService(analyticsService, cfg.TopSellersLimit))

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		InventoryHandler: inventoryHandler,
		AnalyticsHandler: analyticsHandler,
		AssistantHandler: assistantHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
