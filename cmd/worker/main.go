package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/fabrica-erp/panel/internal/app"
	"github.com/fabrica-erp/panel/internal/gateway"
	jobmetrics "github.com/fabrica-erp/panel/internal/jobs"
	"github.com/fabrica-erp/panel/internal/observability"
	"github.com/fabrica-erp/panel/internal/platform/cache"
	"github.com/fabrica-erp/panel/jobs"
)

func main() {
	if app.SkipStartup("worker") {
		return
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Default().Warn("load .env", slog.Any("error", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)
	if !cfg.HasServiceAccount() {
		logger.Error("API_SERVICE_USER and API_SERVICE_PASSWORD are required by the worker")
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	metrics := observability.NewMetrics()
	api := gateway.NewClient(gateway.Options{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.APITimeout,
		Logger:  logger,
		Metrics: gateway.NewMetrics(metrics.Registerer()),
	})
	stockJob := jobs.NewStockAlertJob(
		api,
		jobs.ServiceAccount{Username: cfg.APIServiceUser, Password: cfg.APIServicePassword},
		cache.NewVersioned(redisClient, "panel:dashboard", cfg.DashboardCacheTTL),
		logger,
		jobmetrics.NewMetrics(metrics.Registerer()),
	)
	stockTask, err := jobs.NewStockAlertTask("cron")
	if err != nil {
		logger.Error("build stock alert task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskStockAlertScan, Handler: stockJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: jobs.StockAlertCron, Task: stockTask},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	metricsServer := &http.Server{Addr: cfg.WorkerMetricsAddr, Handler: metrics.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("worker metrics server", slog.Any("error", err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker started", slog.String("cron", jobs.StockAlertCron))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
