package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/stagepass/settlement/internal/checkout_api"
	"github.com/stagepass/settlement/internal/checkout_api/service"
	"github.com/stagepass/settlement/internal/config"
	mongodata "github.com/stagepass/settlement/internal/data/mongo"
	"github.com/stagepass/settlement/internal/data/postgres"
	"github.com/stagepass/settlement/internal/logger"
	"github.com/stagepass/settlement/internal/platform/messaging/producers"
	"github.com/stagepass/settlement/internal/platform/persistence"
	"github.com/stagepass/settlement/internal/provider"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("checkout_api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer for settlement confirmations
	confirmationProducer, err := producers.NewConfirmationMessageProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize confirmation Kafka producer", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	debtRepo := postgres.NewDebtRepository(log, postgresDB)
	orderRepo := mongodata.NewOrderRepository(log, mongoDB.Database())
	eventRepo := mongodata.NewEventRepository(log, mongoDB.Database())

	// The dedup ledger's conditional insert depends on the unique index
	if err := eventRepo.(*mongodata.EventRepository).EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to ensure webhook event indexes", "error", err)
		os.Exit(1)
	}

	// Initialize provider client and services
	providerClient := provider.NewHTTPClient(log, &cfg.Provider)
	intentBuilder := service.NewIntentBuilder(log, provider.NewHeuristicVerifier(), cfg.Provider.MinimumChargeCents)
	checkoutService := service.NewCheckoutService(log, orderRepo, debtRepo, providerClient, intentBuilder, cfg.Settlement.DebtReadTimeout)
	webhookService := service.NewWebhookService(log, eventRepo, orderRepo, confirmationProducer)

	// Initialize REST server
	server := checkout_api.NewServer(log, cfg, checkoutService, webhookService)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Shutdown HTTP server
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	if err = confirmationProducer.Close(); err != nil {
		log.Error("Error closing Kafka producer", "error", err)
	}

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
