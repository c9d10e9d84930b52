package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/gridreport/gridreport-engine/pkg/auth"
	"github.com/gridreport/gridreport-engine/pkg/config"
	"github.com/gridreport/gridreport-engine/pkg/database"
	"github.com/gridreport/gridreport-engine/pkg/handlers"
	"github.com/gridreport/gridreport-engine/pkg/logging"
	"github.com/gridreport/gridreport-engine/pkg/middleware"
	"github.com/gridreport/gridreport-engine/pkg/reporting/mysql"
	"github.com/gridreport/gridreport-engine/pkg/repositories"
	"github.com/gridreport/gridreport-engine/pkg/scheduler"
	"github.com/gridreport/gridreport-engine/pkg/services"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("engine_store", logging.SanitizeDSN(cfg.Engine.ConnectionString())),
		zap.String("reporting_backend", logging.SanitizeDSN(cfg.Reporting.DSN())))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Engine.ConnectionString(),
		MaxConnections: cfg.Engine.MaxConnections,
	})
	if err != nil {
		logger.Fatal("failed to connect to engine store", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	backend, err := mysql.Open(ctx, cfg.Reporting.DSN(), cfg.Reporting.MaxOpenConns, cfg.Reporting.MaxIdleConns, logger)
	if err != nil {
		logger.Fatal("failed to connect to reporting backend", zap.Error(err))
	}
	defer func() { _ = backend.Close() }()

	sourceRepo := repositories.NewDataSourceRepository(db)
	templateRepo := repositories.NewReportTemplateRepository(db)
	reportRepo := repositories.NewGeneratedReportRepository(db)

	queryLimits := services.QueryLimits{
		DefaultLimit: cfg.Query.DefaultLimit,
		MaxLimit:     cfg.Query.MaxLimit,
	}
	queryService := services.NewQueryService(sourceRepo, backend, queryLimits, logger)
	sourceService := services.NewDataSourceService(sourceRepo, backend, logger)
	templateService := services.NewTemplateService(templateRepo, logger)
	reportService := services.NewReportService(reportRepo, templateRepo, queryService, logger)

	authMiddleware := auth.NewMiddleware(auth.Config{
		Enabled: cfg.Auth.EnableVerification,
		Secret:  cfg.Auth.Secret,
	}, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewDataSourceHandler(sourceService, authMiddleware, logger).RegisterRoutes(mux)
	handlers.NewQueryHandler(queryService, logger).RegisterRoutes(mux)
	handlers.NewTemplateHandler(templateService, authMiddleware, logger).RegisterRoutes(mux)
	handlers.NewReportHandler(reportService, logger).RegisterRoutes(mux)

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.New(reportService, logger)
		if err := sched.Start(cfg.Scheduler.Spec); err != nil {
			logger.Fatal("failed to start scheduler", zap.Error(err))
		}
	}

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:           middleware.RequestLogger(logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting gridreport-engine",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if sched != nil {
		sched.Stop()
	}
	logger.Info("shutdown complete")
}
