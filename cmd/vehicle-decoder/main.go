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

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"vehicle-decoder/internal/auth"
	"vehicle-decoder/internal/config"
	"vehicle-decoder/internal/db"
	httphandler "vehicle-decoder/internal/http"
	"vehicle-decoder/internal/http/middleware"
	"vehicle-decoder/internal/logger"
	"vehicle-decoder/internal/provider/carsxe"
	"vehicle-decoder/internal/provider/vpic"
	"vehicle-decoder/internal/repository"
	"vehicle-decoder/internal/service"
	"vehicle-decoder/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Environment)

	// The database is optional. Without one the service still decodes;
	// only lookup history is off.
	var (
		database    *gorm.DB
		lookupStore service.LookupStore
	)
	if cfg.HistoryEnabled() {
		database, err = db.New(cfg, appLogger)
		if err != nil {
			appLogger.Fatal().Err(err).Msg("failed to connect database")
		}
		lookupStore = repository.NewLookupRepository(database)
	} else {
		appLogger.Warn().Msg("no database configured, lookup history will be disabled")
	}

	vinClient := vpic.NewClient(cfg.Providers.VINBaseURL, cfg.Providers.Timeout)

	plateClient, err := carsxe.NewClient(cfg.Providers.PlateBaseURL, cfg.Providers.PlateAPIKey, cfg.Providers.Timeout)
	if err != nil && !errors.Is(err, carsxe.ErrNotConfigured) {
		appLogger.Fatal().Err(err).Msg("failed to initialize plate decode client")
	}
	if err != nil {
		appLogger.Warn().Msg("plate API key not configured, plate decoding will be disabled")
	}

	hub := httphandler.NewHub(appLogger)
	decodeService := service.NewDecodeService(vinClient, plateClient, lookupStore, hub, appLogger)

	// Seed the feed backlog from history so dashboards connected right
	// after a restart still see the latest lookups.
	if lookupStore != nil {
		seedCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		events, err := decodeService.RecentEvents(seedCtx, httphandler.FeedBacklog)
		cancel()
		if err != nil {
			appLogger.Warn().Err(err).Msg("could not seed feed backlog from history")
		} else {
			hub.Seed(events)
		}
	}

	// Initialize R2 client (optional, won't fail if not configured)
	r2Client, err := storage.NewR2ClientFromEnv()
	if err != nil && !errors.Is(err, storage.ErrNotConfigured) {
		appLogger.Fatal().Err(err).Msg("failed to initialize R2 client")
	}
	if err != nil {
		appLogger.Warn().Msg("R2 storage not configured, report uploads will be disabled")
	}

	var authMiddleware gin.HandlerFunc
	if cfg.Auth.AccessSecret != "" {
		authMiddleware = middleware.Auth(auth.NewParser(cfg.Auth.AccessSecret))
	} else {
		authMiddleware = middleware.Disabled("lookup history is disabled")
	}

	handler := httphandler.NewHandler(decodeService, cfg, appLogger, hub, r2Client)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, database, appLogger)

	if lookupStore != nil && cfg.LookupRetentionDays > 0 {
		go func() {
			ticker := time.NewTicker(24 * time.Hour)
			defer ticker.Stop()
			for range ticker.C {
				ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
				if _, err := decodeService.CleanupOldLookups(ctx, cfg.LookupRetentionDays); err != nil {
					appLogger.Error().Err(err).Msg("lookup retention sweep failed")
				}
				cancel()
			}
		}()
	}

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	appLogger.Info().Str("addr", addr).Msg("starting vehicle decoder service")

	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error().Err(err).Msg("failed to start server")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info().Msg("server exited")
}
