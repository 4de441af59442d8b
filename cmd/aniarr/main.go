package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/kitsouko/aniarr/internal/api"
	"github.com/kitsouko/aniarr/internal/cache"
	"github.com/kitsouko/aniarr/internal/config"
	"github.com/kitsouko/aniarr/internal/controllers"
	"github.com/kitsouko/aniarr/internal/metrics"
	"github.com/kitsouko/aniarr/internal/models"
	"github.com/kitsouko/aniarr/internal/scheduler"
	"github.com/kitsouko/aniarr/internal/services/jikan"
	"github.com/kitsouko/aniarr/internal/services/llm"
	"github.com/kitsouko/aniarr/internal/services/sms"
	"github.com/kitsouko/aniarr/internal/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Setup logger
	logger := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("Starting aniarr")
	logger.WithField("config_dir", filepath.Dir(cfg.DatabaseFile)).Info("Configuration loaded")

	// 3. Initialize database
	db, err := models.NewDatabase(cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	logger.Info("Database initialized")

	// 4. Load review content blocklist
	blocklist, err := utils.LoadBlocklist(cfg.BlocklistFile)
	if err != nil {
		logger.WithError(err).Warn("Failed to load blocklist, continuing without it")
		blocklist = &utils.Blocklist{}
	} else {
		logger.Info("Blocklist loaded")
	}

	// 5. Initialize external service clients
	catalogClient := jikan.NewClient(cfg, logger)
	llmClient := llm.NewClient(cfg, logger)
	smsClient := sms.NewClient(cfg, logger)
	logger.Info("External service clients initialized")

	// 6. Initialize cache mirror and metrics
	mirror := cache.NewMirror(cfg.MirrorFile, logger)
	m := metrics.New()

	// 7. Initialize controllers
	evaluator := controllers.NewFreshnessEvaluator(cfg.StalenessWindow)
	refreshCtrl := controllers.NewRefreshController(db, catalogClient, evaluator, mirror, m, logger)
	enrichCtrl := controllers.NewEnrichmentController(db, llmClient, mirror, m, cfg.EnrichBatchSize, cfg.EnrichMarkFailed, logger)
	reviewCtrl := controllers.NewReviewController(db, blocklist, logger)
	watchlistCtrl := controllers.NewWatchlistController(db, logger)
	verifyCtrl := controllers.NewVerifyController(db, smsClient, m, logger)
	migrateCtrl := controllers.NewMigrationController(db, logger)
	metaCtrl := controllers.NewMetaController(db, logger)
	logger.Info("Controllers initialized")

	// 8. Run the schema migration before serving traffic
	progress, err := migrateCtrl.MigrateAll(context.Background())
	if err != nil {
		return fmt.Errorf("schema migration failed: %w", err)
	}
	if progress.Updated > 0 {
		logger.WithField("updated", progress.Updated).Info("Schema migration applied")
	}

	// 9. Initialize scheduler
	sched := scheduler.NewScheduler(refreshCtrl, verifyCtrl, metaCtrl, cfg.BackgroundBatch, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// 10. Initialize HTTP server
	server := api.NewServer(cfg, api.Deps{
		DB:            db,
		Mirror:        mirror,
		Metrics:       m,
		Evaluator:     evaluator,
		RefreshCtrl:   refreshCtrl,
		EnrichCtrl:    enrichCtrl,
		ReviewCtrl:    reviewCtrl,
		WatchlistCtrl: watchlistCtrl,
		VerifyCtrl:    verifyCtrl,
		MigrateCtrl:   migrateCtrl,
		MetaCtrl:      metaCtrl,
	}, logger)

	// Start server in goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	// 11. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("aniarr is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("Error during server shutdown")
		}
	}

	logger.Info("aniarr stopped")
	return nil
}
