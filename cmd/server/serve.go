package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "greenearth/backend/docs" // registers swagger docs
	"greenearth/backend/internal/api"
	"greenearth/backend/internal/blockchain/hiro"
	"greenearth/backend/internal/campaign"
	"greenearth/backend/internal/config"
	"greenearth/backend/internal/database"
	"greenearth/backend/internal/service"
	"greenearth/backend/internal/wallet"
	"greenearth/backend/internal/worker"
)

// serveCmd starts the HTTP service and background workers
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP service",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	// Initialize logger
	logger, err := initLogger()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("Starting Green Earth Initiative service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load configuration", zap.Error(err))
		return err
	}

	logger.Info("Configuration loaded",
		zap.Int("server_port", cfg.Server.Port),
		zap.String("network", cfg.Stacks.Network),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Bool("hiro_configured", cfg.Hiro.IsConfigured()))

	if !cfg.Hiro.IsConfigured() {
		logger.Warn("Hiro API key not configured, proxy routes will answer 400")
	} else if !config.ValidateAPIKey(cfg.Hiro.APIKey) {
		logger.Warn("Hiro API key does not look like a platform key, continuing anyway")
	}

	// Connect to database
	db, err := database.Connect(database.Config{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN,
	})
	if err != nil {
		logger.Error("Failed to connect to database", zap.Error(err))
		return err
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}
	logger.Info("Database ready")

	// Initialize services
	hiroClient := hiro.NewClient(cfg.Hiro, logger)
	donations := service.NewDonationService(cfg, db, logger)

	content := campaign.Default()
	if cfg.Campaign.File != "" {
		content, err = campaign.Load(cfg.Campaign.File)
		if err != nil {
			logger.Error("Failed to load campaign content", zap.String("file", cfg.Campaign.File), zap.Error(err))
			return err
		}
	}
	campaigns := campaign.NewStore(content)

	wallets := wallet.NewRegistry(func(clientID string) wallet.Storage {
		return db.ClientStorage(clientID)
	}, logger)

	// Initialize workers
	var tasks []worker.Task
	if cfg.Campaign.File != "" {
		watcher := campaign.NewWatcher(cfg.Campaign.File, campaigns, logger)
		tasks = append(tasks, worker.Task{Name: "campaign-watcher", Run: watcher.Run})
	}
	monitor := worker.NewStatusMonitor(hiroClient, cfg.Monitor.ProbeInterval, logger)
	confirmer := worker.NewPledgeConfirmer(hiroClient, donations, worker.ConfirmInterval, logger)
	workerManager := worker.NewWorkerManager(monitor, confirmer, logger, tasks...)

	logger.Info("Services initialized")

	// Initialize API handlers
	apiHandler := api.NewHandler(cfg, hiroClient, donations, campaigns, wallets, monitor, logger)
	router := api.SetupRouter(apiHandler, cfg, logger)

	// Create HTTP server
	serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", serverAddr))
		serverErrors <- httpServer.ListenAndServe()
	}()

	workerManager.Start()
	logger.Info("Service initialized successfully",
		zap.String("status", "ready"),
		zap.Int("port", cfg.Server.Port))

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", zap.Error(err))
			runErr = err
		}
	case sig := <-quit:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	}

	logger.Info("Shutting down service...")

	// Shutdown workers first
	if err := workerManager.Shutdown(10 * time.Second); err != nil {
		logger.Error("Worker shutdown error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
		httpServer.Close()
	} else {
		logger.Info("HTTP server stopped gracefully")
	}

	logger.Info("Service stopped")
	return runErr
}
