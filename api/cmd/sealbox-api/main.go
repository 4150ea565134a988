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

	"sealbox/api/internal/api/handlers"
	"sealbox/api/internal/api/middleware"
	"sealbox/api/internal/api/router"
	"sealbox/api/internal/config"
	"sealbox/api/internal/core/domain"
	"sealbox/api/internal/core/services"
	"sealbox/api/internal/db/postgres"
)

func main() {
	// --- 1. Core Telemetry & Configuration ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("🚀 Booting Sealbox API...")
	cfg := config.Load()

	// --- 2. Outbound Infrastructure (Optional Audit Store) ---
	var auditRepo *postgres.AuditRepository
	var auditRecorder domain.AuditRecorder
	var auditPinger handlers.Pinger

	if cfg.DatabaseURL != "" {
		pool, err := postgres.NewPool(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logger.Error("FATAL: audit store failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		auditRepo = postgres.NewAuditRepository(pool)
		auditRecorder = auditRepo
		auditPinger = auditRepo
		logger.Info("Audit store enabled")
	} else {
		logger.Info("Audit store disabled (DATABASE_URL unset)")
	}

	// --- 3. Dependency Injection ---
	keyring := services.NewKeyringService(cfg.SessionTTL)
	defer keyring.Close()

	tokenService := services.NewTokenService(cfg.JWTSecret)
	sealService := services.NewSealService(keyring, auditRecorder, logger)

	sessionHandler := handlers.NewSessionHandler(keyring, tokenService, sealService, cfg.AccessHash, cfg.SessionTTL)
	sealHandler := handlers.NewSealHandler(sealService)
	renderHandler := handlers.NewRenderHandler(sealService)
	auditHandler := handlers.NewAuditHandler(sealService)
	healthHandler := handlers.NewHealthHandler(auditPinger)

	sessionMiddleware := middleware.NewSessionMiddleware(tokenService, keyring, logger)

	// --- 4. HTTP Gateway ---
	mux := router.NewRouter(router.RouterConfig{
		AllowedOrigins:    cfg.AllowedOrigins,
		SessionHandler:    sessionHandler,
		SealHandler:       sealHandler,
		RenderHandler:     renderHandler,
		AuditHandler:      auditHandler,
		HealthHandler:     healthHandler,
		SessionMiddleware: sessionMiddleware,
		Logger:            logger,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// --- 5. Graceful Exit ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("🌐 Sealbox API active", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("CRITICAL: Server crashed", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	logger.Info("🛑 Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("ERROR: Forced shutdown", "error", err)
	}
	// Keys die with the process; nothing to flush.
	logger.Info("✅ Sealbox API shutdown complete")
}
