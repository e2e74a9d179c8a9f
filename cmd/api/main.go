// Copyright (c) 2026 WealthWave. All rights reserved.

// Command api is the entry point for the WealthWave HTTP API server.
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

	"github.com/wealthwave/api/internal/api"
	"github.com/wealthwave/api/internal/audit"
	"github.com/wealthwave/api/internal/auth"
	"github.com/wealthwave/api/internal/budget"
	"github.com/wealthwave/api/internal/family"
	"github.com/wealthwave/api/internal/mail"
	"github.com/wealthwave/api/internal/notification"
	"github.com/wealthwave/api/internal/platform/config"
	"github.com/wealthwave/api/internal/platform/constants"
	"github.com/wealthwave/api/internal/platform/middleware"
	"github.com/wealthwave/api/internal/platform/migration"
	pgstore "github.com/wealthwave/api/internal/platform/postgres"
	redisstore "github.com/wealthwave/api/internal/platform/redis"
	"github.com/wealthwave/api/internal/platform/sec"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[WealthWave] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
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

	// ── 6. Security Primitives ────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTSecret, constants.AuthIssuer)
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

	// ── 8. Outbound Transports ────────────────────────────────────────────
	mailer, err := mail.NewSMTPSender(mail.SMTPConfig{
		Host:          cfg.SMTPHost,
		Port:          cfg.SMTPPort,
		Username:      cfg.SMTPUsername,
		Password:      cfg.SMTPPassword,
		From:          cfg.MailFrom,
		ClientBaseURL: cfg.ClientBaseURL,
	})
	must(log, err, "initialize smtp sender")

	notifications := notification.NewRedisStore(rdb, log)
	auditor := audit.NewRecorder(rdb, log)

	// ── 9. Domain Wiring ──────────────────────────────────────────────────
	userRepository := auth.NewUserRepository(pool)
	tokenRepository := auth.NewTokenRepository(pool)

	sessions := auth.NewSessionManager(tokenRepository, jwtSvc, cfg.IsProduction())
	authService := auth.NewService(auth.ServiceDeps{
		Users:    userRepository,
		Tokens:   tokenRepository,
		Sessions: sessions,
		TOTP:     auth.NewTOTPEngine("WealthWave"),
		Google:   auth.NewGoogleVerifier(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL),
		Decoder:  jwtSvc,
		Mailer:   mailer,
		Notifier: notifications,
		Auditor:  auditor,
	})

	familyService := family.NewService(
		family.NewFamilyRepository(pool),
		family.NewMemberStore(pool),
		tokenRepository,
		mailer,
		notifications,
	)

	budgetService := budget.NewService(budget.NewBudgetRepository(pool))

	// ── 10. Guards ────────────────────────────────────────────────────────
	sessionGuard := middleware.RequireSession(jwtSvc, userRepository)
	adminOnly := middleware.RequireRoles(sec.RoleFamilyAdmin, sec.RoleAdmin)

	// ── 11. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:     liveness,
		Readiness:    readiness,
		Auth:         auth.NewHandler(authService, sessions, sessionGuard),
		Budget:       budget.NewHandler(budgetService),
		Family:       family.NewHandler(familyService, adminOnly),
		Notification: notification.NewHandler(notifications),
	}

	server := api.NewServer(startupCtx, cfg, log, sessionGuard, handlers)

	// ── 12. Graceful Shutdown ─────────────────────────────────────────────
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
