package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/zedx-auto/garagepos/internal/app"
	"github.com/zedx-auto/garagepos/internal/dashboard"
	"github.com/zedx-auto/garagepos/internal/platform/cache"
	"github.com/zedx-auto/garagepos/internal/receipt"
	"github.com/zedx-auto/garagepos/internal/shopapi"
	"github.com/zedx-auto/garagepos/jobs"
	"github.com/zedx-auto/garagepos/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	api := shopapi.New(cfg.ShopAPIBaseURL, cfg.ShopAPITimeout, logger)

	pdfClient := report.NewClient(cfg.GotenbergURL)
	if err := pdfClient.Ping(ctx); err != nil {
		logger.Warn("gotenberg unreachable, receipts will ship without documents", slog.Any("error", err))
	}

	handoffs := receipt.NewHandoffStore(redisClient, 24*time.Hour)
	receiptProcessor := jobs.NewReceiptProcessor(logger, pdfClient, handoffs, cfg.WhatsAppCountryCode)

	dashboardService := dashboard.NewService(logger, api, redisClient, cfg.DashboardCacheTTL)
	warmupProcessor := jobs.NewDashboardWarmupProcessor(logger, api, dashboardService, cfg.ShopAPIServiceUsername, cfg.ShopAPIServicePassword)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskReceiptDispatch, Handler: receiptProcessor.Handle},
			{Type: jobs.TaskDashboardWarmup, Handler: warmupProcessor.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/5 * * * *", Task: jobs.NewDashboardWarmupTask(), Options: []asynq.Option{asynq.MaxRetry(1)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
