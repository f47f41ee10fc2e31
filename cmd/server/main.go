package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tropicaldog17/keble/internal/config"
	"github.com/tropicaldog17/keble/internal/db"
	"github.com/tropicaldog17/keble/internal/handlers"
	"github.com/tropicaldog17/keble/internal/logger"
	"github.com/tropicaldog17/keble/internal/notify"
	"github.com/tropicaldog17/keble/internal/repositories"
	"github.com/tropicaldog17/keble/internal/services"
)

// @title Keble API
// @version 1.0
// @description Investment funding and valuation backend.
// @BasePath /api
func main() {
	cfg, err := config.Load("keble.toml")
	if err != nil {
		panic(err)
	}

	log, err := logger.ForEnvironment(cfg.Environment)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	limits, err := cfg.Funding.Limits()
	if err != nil {
		log.Fatal("Invalid funding configuration", zap.Error(err))
	}

	// Database connection
	database, err := db.Connect(db.NewConfig())
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	log.Info("Database connection established")

	var sender notify.Sender = notify.NewLogSender(log)
	if cfg.Notify.WebhookURL != "" {
		sender = notify.MultiSender{
			sender,
			notify.NewWebhookSender(cfg.Notify.WebhookURL,
				notify.WithRateLimit(cfg.Notify.RateLimit),
				notify.WithTimeout(cfg.Notify.TimeoutDuration())),
		}
		log.Info("Webhook notifications enabled", zap.String("url", cfg.Notify.WebhookURL))
	}
	dispatcher := notify.NewDispatcher(sender, log, cfg.Notify.QueueSize, cfg.Notify.TimeoutDuration())

	// Initialize services
	store := repositories.NewStore(database)
	fundingService := services.NewFundingService(store, dispatcher, log, limits)
	valuationService := services.NewValuationService(store)
	portfolioService := services.NewPortfolioService(store)
	transactionService := services.NewTransactionService(store)

	// Initialize handlers
	router := handlers.NewRouter(
		handlers.NewInvestmentHandler(fundingService, valuationService, log),
		handlers.NewPortfolioHandler(portfolioService, valuationService, log),
		handlers.NewTransactionHandler(transactionService, log),
		database.Health,
		log,
	)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handlers.CORS(cfg.Server.CORSOrigins)(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", server.Addr), zap.String("env", cfg.Environment))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Info("Shutting down")
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
	if err := dispatcher.Close(ctx); err != nil {
		log.Warn("Notification queue not drained", zap.Error(err))
	}
}
