package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/garrisonhq/garrison/internal/handlers"
	"github.com/garrisonhq/garrison/internal/infrastructure/cache"
	"github.com/garrisonhq/garrison/internal/infrastructure/config"
	"github.com/garrisonhq/garrison/internal/infrastructure/database"
	"github.com/garrisonhq/garrison/internal/infrastructure/metrics"
	"github.com/garrisonhq/garrison/internal/infrastructure/notify"
	"github.com/garrisonhq/garrison/internal/repositories/postgres"
	"github.com/garrisonhq/garrison/internal/services/access"
	"github.com/garrisonhq/garrison/internal/services/schema"
	"github.com/gin-gonic/gin"
)

const (
	defaultEnv           = "dev"
	migrationsPathSuffix = "internal/infrastructure/database/migrations/postgres"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "garrison").Logger()

	env := os.Getenv("ENV")
	if env == "" {
		env = defaultEnv
	}
	if env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := config.InitConfig(env); err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize config")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	pg, err := database.NewPostgres(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pg.Close()

	logger.Info().
		Str("host", cfg.Database.Host).
		Int("port", cfg.Database.Port).
		Str("database", cfg.Database.Database).
		Msg("connected to database")

	runMigrations(pg, logger)

	// Repositories
	fieldRepo := postgres.NewPostgresFieldRepository(pg.DB)
	roleRepo := postgres.NewPostgresRoleRepository(pg.DB)
	userRepo := postgres.NewPostgresUserRepository(pg.DB)
	officerRepo := postgres.NewPostgresOfficerRepository(pg.DB)
	soldierRepo := postgres.NewPostgresSoldierRepository(pg.DB)
	caseRepo := postgres.NewPostgresCaseRepository(pg.DB)
	announcementRepo := postgres.NewPostgresAnnouncementRepository(pg.DB)

	// Access gate and schema engine
	gate := access.NewGate()

	var schemaCache *cache.TTLCache
	if cfg.Cache.Enabled {
		schemaCache = cache.New(time.Duration(cfg.Cache.TTLMinutes)*time.Minute, true)
	}
	schemaService := schema.NewService(fieldRepo, gate, schemaCache, logger)
	schemaSessions := schema.NewSessions(schemaService, logger)

	// Metrics
	collector := metrics.NewCollector()
	if schemaCache != nil {
		collector.SetSchemaCache(schemaCache)
	}
	exporter := metrics.NewPrometheusExporter(collector)
	go func() {
		for range time.Tick(10 * time.Second) {
			exporter.Update()
		}
	}()

	// Realtime change feed
	var feed *notify.Feed
	if cfg.Notify.Enabled {
		feed = notify.NewFeed(cfg.Database.ConnectionString(), logger)
		feed.Subscribe(schemaSessions.Invalidate)
		if err := feed.Start(); err != nil {
			logger.Fatal().Err(err).Msg("failed to start change feed")
		}
		defer feed.Stop()
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Gate:          gate,
		Schemas:       schemaService,
		Sessions:      schemaSessions,
		Users:         userRepo,
		Roles:         roleRepo,
		Officers:      officerRepo,
		Soldiers:      soldierRepo,
		Cases:         caseRepo,
		Announcements: announcementRepo,
		Health:        pg,
		JWTSecret:     cfg.Auth.JWTSecret,
		TokenTTL:      time.Duration(cfg.Auth.TokenTTLMinutes) * time.Minute,
		Logger:        logger,
		Middleware:    []gin.HandlerFunc{metrics.Middleware(collector, exporter)},
	})

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.MetricsPort),
		Handler: metricsMux,
	}

	serverErrors := make(chan error, 2)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- fmt.Errorf("http server error: %w", err)
		}
	}()
	go func() {
		logger.Info().Str("addr", metricsServer.Addr).Msg("metrics server listening")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- fmt.Errorf("metrics server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-serverErrors:
		logger.Fatal().Err(err).Msg("server error")
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("initiating graceful shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("http server shutdown failed")
		}
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("metrics server shutdown failed")
		}
		if feed != nil {
			if err := feed.Stop(); err != nil {
				logger.Warn().Err(err).Msg("change feed stop failed")
			}
		}
		if err := pg.Close(); err != nil {
			logger.Warn().Err(err).Msg("error closing database connection")
		}

		logger.Info().Msg("shutdown complete")
	}
}

// runMigrations applies pending migrations when the migration files are
// reachable. Deployments that ship without the source tree run migrations
// through the migrate command instead.
func runMigrations(pg *database.Postgres, logger zerolog.Logger) {
	root, err := findProjectRoot()
	if err != nil {
		logger.Warn().Err(err).Msg("migrations skipped: project root not found")
		return
	}

	path := filepath.Join(root, migrationsPathSuffix)
	if _, err := os.Stat(path); err != nil {
		logger.Warn().Str("path", path).Msg("migrations skipped: path not found")
		return
	}

	if err := pg.RunMigrations(path); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}
	logger.Info().Msg("migrations up to date")
}

func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		goModPath := filepath.Join(dir, "go.mod")
		if _, err := os.Stat(goModPath); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found in any parent directory")
		}
		dir = parent
	}
}
