package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/masarify/finance-tracker-backend/internal/api"
	"github.com/masarify/finance-tracker-backend/internal/apperrors"
	"github.com/masarify/finance-tracker-backend/internal/config"
	"github.com/masarify/finance-tracker-backend/internal/database"
	"github.com/masarify/finance-tracker-backend/internal/marketdata"
	"github.com/masarify/finance-tracker-backend/internal/repository"
	"github.com/masarify/finance-tracker-backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Apply schema migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Create repositories
	investmentRepo := repository.NewInvestmentRepository(db)
	installmentRepo := repository.NewInstallmentRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	recordRepo := repository.NewRecordRepository(db)
	marketDataRepo := repository.NewMarketDataRepository(db)
	settingsRepo, err := repository.NewSettingsRepository(db, cfg.Feed.TokenKey)
	if err != nil {
		log.Fatalf("Failed to initialise settings repository: %v", err)
	}

	// Create the feed client when a feed is configured
	var feed marketdata.Client
	if cfg.Feed.BaseURL != "" {
		token, err := settingsRepo.GetEncrypted(repository.FeedTokenKey)
		if err != nil && !errors.Is(err, apperrors.ErrSettingNotFound) && !errors.Is(err, apperrors.ErrConfiguration) {
			log.Fatalf("Failed to load feed token: %v", err)
		}
		feed = marketdata.NewFeedClient(cfg.Feed.BaseURL, token)
	}

	// Create services
	systemService := service.NewSystemService(db)
	investmentService := service.NewInvestmentService(db, investmentRepo, installmentRepo, transactionRepo)
	aggregationService := service.NewAggregationService(investmentRepo, marketDataRepo)
	valuationService := service.NewValuationService(
		investmentRepo,
		marketDataRepo,
		transactionRepo,
		recordRepo,
		settingsRepo,
		aggregationService,
		feed,
	)
	recordService := service.NewRecordService(recordRepo)
	sweeperService := service.NewSweeperService(investmentRepo, investmentService)

	// Schedule the maturity sweeper
	if err := sweeperService.Start(cfg.Sweeper.CronSpec, cfg.Sweeper.RunOnStart); err != nil {
		log.Fatalf("Failed to start maturity sweeper: %v", err)
	}
	defer sweeperService.Stop()

	// Create router
	router := api.NewRouter(systemService, investmentService, valuationService, sweeperService, recordService, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
