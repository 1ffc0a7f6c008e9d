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

	"github.com/fabrica-erp/panel/cmd/panel/cli"
	"github.com/fabrica-erp/panel/internal/app"
	"github.com/fabrica-erp/panel/internal/auth"
	"github.com/fabrica-erp/panel/internal/dashboard"
	"github.com/fabrica-erp/panel/internal/gateway"
	"github.com/fabrica-erp/panel/internal/observability"
	"github.com/fabrica-erp/panel/internal/platform/cache"
	"github.com/fabrica-erp/panel/internal/report"
	"github.com/fabrica-erp/panel/internal/resource"
	"github.com/fabrica-erp/panel/internal/sales/orders"
	"github.com/fabrica-erp/panel/internal/shared"
	"github.com/fabrica-erp/panel/internal/view"
	"github.com/fabrica-erp/panel/jobs"
)

func main() {
	if app.SkipStartup("panel") {
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
	slog.SetDefault(logger)

	metrics := observability.NewMetrics()
	api := gateway.NewClient(gateway.Options{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.APITimeout,
		Logger:  logger,
		Metrics: gateway.NewMetrics(metrics.Registerer()),
	})

	if cli.IsCommand(os.Args[1:]) {
		os.Exit(cli.Run(ctx, os.Args[1:], cli.Deps{
			API:       api,
			Account:   jobs.ServiceAccount{Username: cfg.APIServiceUser, Password: cfg.APIServicePassword},
			RedisAddr: cfg.RedisAddr,
		}))
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionName, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	dashboardService := dashboard.NewService(cache.NewVersioned(redisClient, "panel:dashboard", cfg.DashboardCacheTTL), logger)
	base := &resource.Base{
		Logger:    logger,
		Templates: templates,
		CSRF:      csrfManager,
		API:       api,
		PageSize:  cfg.PageSize,
		OnChange:  dashboardService.Invalidate,
	}

	var pdf orders.PDFRenderer
	if gotenberg := report.NewGotenberg(cfg.GotenbergURL, &http.Client{Timeout: 30 * time.Second}); gotenberg != nil {
		if err := gotenberg.Ping(ctx); err != nil {
			logger.Warn("gotenberg ping", slog.String("url", cfg.GotenbergURL), slog.Any("error", err))
		}
		pdf = gotenberg
	} else {
		logger.Info("GOTENBERG_URL not set, order PDFs disabled")
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		Base:             base,
		AuthHandler:      auth.NewHandler(logger, auth.NewService(api), templates, csrfManager),
		DashboardHandler: dashboard.NewHandler(base, dashboardService),
		OrdersHandler:    orders.NewHandler(base, pdf),
		JobHandler:       jobs.NewHandler(inspector, logger),
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr), slog.String("api", cfg.APIBaseURL))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
