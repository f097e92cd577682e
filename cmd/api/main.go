// Copyright (c) 2026 Parcelia. All rights reserved.

// Command api is the entry point for the Parcelia back-office API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/parcelia/backoffice/internal/api"
	"github.com/parcelia/backoffice/internal/auth"
	"github.com/parcelia/backoffice/internal/authgw"
	"github.com/parcelia/backoffice/internal/core/bon"
	"github.com/parcelia/backoffice/internal/core/client"
	"github.com/parcelia/backoffice/internal/core/colis"
	"github.com/parcelia/backoffice/internal/core/company"
	"github.com/parcelia/backoffice/internal/core/notification"
	"github.com/parcelia/backoffice/internal/core/status"
	"github.com/parcelia/backoffice/internal/platform/config"
	"github.com/parcelia/backoffice/internal/platform/constants"
	"github.com/parcelia/backoffice/internal/platform/migration"
	pgstore "github.com/parcelia/backoffice/internal/platform/postgres"
	redisstore "github.com/parcelia/backoffice/internal/platform/redis"
	"github.com/parcelia/backoffice/internal/platform/sec"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "parcelia"))
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "parcelia"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Long-lived application context. Background middleware (rate-limit
	// cleanup) runs until shutdown.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(appCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Token Service ──────────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────

	// Auth: staff accounts, refresh sessions, and the event fan-out that
	// keeps workstation session engines in sync.
	broker := authgw.NewBroker(rdb, log)
	stream := authgw.NewSSEStream(broker, log)

	userRepository := auth.NewUserRepository(pool)
	sessionRepository := auth.NewSessionRepository(pool)
	authService := auth.NewService(userRepository, sessionRepository, jwtSvc, broker, log)
	authHandler := auth.NewHandler(authService, stream)
	accountHandler := auth.NewAccountHandler(authService)
	directory := auth.NewDirectory(userRepository)

	go authService.RunSessionCleanup(appCtx, constants.SessionCleanupInterval)

	// Status catalog: postgres behind a Redis read-through cache.
	statusRepository := status.NewCachedRepository(status.NewPostgresRepository(pool), rdb, log)
	statusService := status.NewService(statusRepository, log)
	statusHandler := status.NewHandler(statusService)

	// Notifications feed courier inboxes on status changes and assignments.
	notificationRepository := notification.NewPostgresRepository(pool)
	notificationService := notification.NewService(notificationRepository, log)
	notificationHandler := notification.NewHandler(notificationService)

	// Parcels and their audit trail.
	colisRepository := colis.NewPostgresRepository(pool)
	colisService := colis.NewService(colisRepository, directory, statusService, notificationService, colis.DefaultTrackerConfig(), log)
	colisHandler := colis.NewHandler(colisService)

	clientRepository := client.NewPostgresRepository(pool)
	clientService := client.NewService(clientRepository, log)
	clientHandler := client.NewHandler(clientService)

	companyRepository := company.NewPostgresRepository(pool)
	companyService := company.NewService(companyRepository, log)
	companyHandler := company.NewHandler(companyService)

	bonRepository := bon.NewPostgresRepository(pool)
	bonService := bon.NewService(bonRepository, statusService, notificationService, log)
	bonHandler := bon.NewHandler(bonService)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:     liveness,
		Readiness:    readiness,
		Auth:         authHandler,
		Account:      accountHandler,
		Colis:        colisHandler,
		Client:       clientHandler,
		Company:      companyHandler,
		Bon:          bonHandler,
		Status:       statusHandler,
		Notification: notificationHandler,
	}

	server := api.NewServer(appCtx, cfg, log, jwtSvc, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
