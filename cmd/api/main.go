package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"csvexport/docs"
	"csvexport/internal/config"
	"csvexport/internal/database"
	"csvexport/internal/database/migration"
	handlers "csvexport/internal/http/handler"
	"csvexport/internal/http/middleware"
	"csvexport/internal/logging"
	"csvexport/internal/metrics"
	"csvexport/internal/otel"
	"csvexport/internal/repository"
	"csvexport/internal/repository/postgres"
	"csvexport/internal/repository/sqlite"
	"csvexport/internal/retention"
	"csvexport/internal/service"
	"csvexport/internal/storage"
)

//go:generate go run github.com/swaggo/swag/cmd/swag@v1.16.6 init -d ../.. -g cmd/api/main.go -o ../../docs --parseInternal --outputTypes go

// @title CSV Export API
// @version 1.0
// @description Renders JSON records as CSV, as text, downloads or archived exports.
// @BasePath /
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.Location())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Error("tracing_shutdown_failed", err, nil)
		}
	}()

	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	dbHost := cfg.Database.Host
	if cfg.Database.Driver == config.DriverSQLite {
		dbHost = cfg.Database.SQLitePath
	}
	if err := migration.EnsureMigrated(ctx, db, cfg.Database.Driver, logger, dbHost); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	objStore, err := storage.New(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize object storage: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	exportMetrics, err := metrics.NewExports(reg)
	if err != nil {
		return fmt.Errorf("failed to register export metrics: %w", err)
	}
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return fmt.Errorf("failed to register http metrics: %w", err)
	}

	exportRepo, err := newExportRepository(cfg.Database.Driver, db)
	if err != nil {
		return err
	}
	exportSvc := service.NewExportService(objStore, exportRepo, service.WithMetrics(exportMetrics))

	scheduler := retention.NewScheduler(exportSvc, cfg.Retention, logger)
	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start retention scheduler: %w", err)
	}
	defer scheduler.Stop()

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    cfg.BodyLimit,
	})

	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	app.Use(promMiddleware.Handler())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.LoggerWithLogger(logger))

	app.Get("/metrics", handlers.Metrics(reg))
	handlers.RegisterRoutes(app, db, exportSvc)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(":" + cfg.Port)
	}()

	logger.Info("server_started", map[string]any{
		"component": "http",
		"port":      cfg.Port,
		"db_driver": cfg.Database.Driver,
		"storage":   cfg.Storage.Driver,
	})

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server_stopping", map[string]any{"component": "http"})
	return app.ShutdownWithTimeout(10 * time.Second)
}

func newExportRepository(driver string, db *sql.DB) (repository.ExportRepository, error) {
	switch driver {
	case config.DriverPostgres, "":
		return postgres.NewExportPostgres(db), nil
	case config.DriverSQLite:
		return sqlite.NewExportSQLite(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}
