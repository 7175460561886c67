package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/Viraj0711/OdooHack-sub001/internal/application/service"
	"github.com/Viraj0711/OdooHack-sub001/internal/config"
	"github.com/Viraj0711/OdooHack-sub001/internal/interfaces/http"
	"github.com/Viraj0711/OdooHack-sub001/internal/metrics"
	"github.com/Viraj0711/OdooHack-sub001/internal/notification"
	"github.com/Viraj0711/OdooHack-sub001/internal/repository"
	"github.com/Viraj0711/OdooHack-sub001/pkg/database"
	"github.com/Viraj0711/OdooHack-sub001/pkg/utils"
)

func main() {
	// Optional .env for local development
	_ = gotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting approval resolution engine",
		zap.Int("port", cfg.Server.Port))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Repositories
	workflowRepo := repository.NewWorkflowRepository(db, logger)
	expenseRepo := repository.NewExpenseRepository(db, logger)
	instanceRepo := repository.NewInstanceRepository(db, logger)
	decisionRepo := repository.NewDecisionRepository(db, logger)
	auditRepo := repository.NewAuditRepository(db, logger)
	directoryRepo := repository.NewDirectoryRepository(db, logger)

	// Engine wiring
	registry := prometheus.NewRegistry()
	engineMetrics := metrics.New(registry)
	svcLogger := utils.NewZapAdapter(logger)

	builder := service.NewApproverSetBuilder(directoryRepo)
	coordinator := service.NewApprovalCoordinator(
		workflowRepo,
		expenseRepo,
		instanceRepo,
		decisionRepo,
		db,
		builder,
		auditRepo,
		notification.NewLogNotifier(logger),
		engineMetrics,
		svcLogger,
	)

	var gatherer prometheus.Gatherer
	if cfg.Metrics.Enabled {
		gatherer = registry
	}

	server := http.NewServer(http.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		MetricsPath:  cfg.Metrics.Path,
	}, coordinator, expenseRepo, workflowRepo, decisionRepo, auditRepo, gatherer, svcLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited")
}
