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

	"github.com/zedx-auto/garagepos/internal/app"
	"github.com/zedx-auto/garagepos/internal/auth"
	"github.com/zedx-auto/garagepos/internal/catalog"
	"github.com/zedx-auto/garagepos/internal/customers"
	"github.com/zedx-auto/garagepos/internal/dashboard"
	"github.com/zedx-auto/garagepos/internal/outgoing"
	"github.com/zedx-auto/garagepos/internal/platform/cache"
	"github.com/zedx-auto/garagepos/internal/platform/db"
	"github.com/zedx-auto/garagepos/internal/pos"
	"github.com/zedx-auto/garagepos/internal/receipt"
	"github.com/zedx-auto/garagepos/internal/session"
	"github.com/zedx-auto/garagepos/internal/shopapi"
	"github.com/zedx-auto/garagepos/internal/transactions"
	"github.com/zedx-auto/garagepos/jobs"
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := session.NewManager(redisClient, "garagepos_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())

	api := shopapi.New(cfg.ShopAPIBaseURL, cfg.ShopAPITimeout, logger)

	receiptClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := receiptClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	handoffs := receipt.NewHandoffStore(redisClient, 24*time.Hour)

	till := pos.NewTill(redisClient, cfg.CartTTL)
	sagaRepo := pos.NewSagaRepository(dbpool)
	posService := pos.NewService(logger, api, sagaRepo, till, receiptClient, cfg.SupervisorPINHash)
	posHandler := pos.NewHandler(logger, posService, handoffs)

	authHandler := auth.NewHandler(logger, api)
	customersHandler := customers.NewHandler(logger, api)
	catalogHandler := catalog.NewHandler(logger, api)
	outgoingHandler := outgoing.NewHandler(logger, api)
	transactionsHandler := transactions.NewHandler(logger, api)

	dashboardService := dashboard.NewService(logger, api, redisClient, cfg.DashboardCacheTTL)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		SessionManager:      sessionManager,
		AuthHandler:         authHandler,
		POSHandler:          posHandler,
		CustomersHandler:    customersHandler,
		CatalogHandler:      catalogHandler,
		OutgoingHandler:     outgoingHandler,
		TransactionsHandler: transactionsHandler,
		DashboardHandler:    dashboardHandler,
		JobHandler:          jobHandler,
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
