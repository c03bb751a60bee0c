package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/fixora/archive/application/archive"
	"github.com/fixora/archive/application/usecase"
	redisadapter "github.com/fixora/archive/infrastructure/adapter/redis"
	"github.com/fixora/archive/infrastructure/config"
	"github.com/fixora/archive/infrastructure/http/handler"
	"github.com/fixora/archive/infrastructure/http/middleware"
	"github.com/fixora/archive/infrastructure/persistence"
	"github.com/fixora/archive/infrastructure/service/clock"
	"github.com/fixora/archive/infrastructure/service/logger"
	"github.com/fixora/archive/infrastructure/service/ratelimit"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	structuredLogger := logger.NewStructuredLogger(logger.LoggerConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "archive-server",
	})
	structuredLogger.Info(ctx, "Application starting", map[string]interface{}{
		"env":     cfg.Environment,
		"backend": cfg.Backend,
	})

	storageLogger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		storageLogger.SetLevel(level)
	}

	storage, closeStorage, err := persistence.NewLogStorage(ctx, cfg, storageLogger)
	if err != nil {
		structuredLogger.Error(ctx, "Failed to initialize archive storage", err, map[string]interface{}{
			"backend": cfg.Backend,
		})
		log.Fatalf("Failed to initialize archive storage: %v", err)
	}
	defer closeStorage()

	archiver := archive.NewArchiver(storage, clock.NewSystemClock(), structuredLogger)
	historyUseCase := usecase.NewHistoryUseCase(archiver, structuredLogger)
	archiveHandler := handler.NewArchiveHandler(historyUseCase)

	var limiterClient *goredis.Client
	if cfg.RateLimitEnabled {
		limiterClient, err = redisadapter.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to initialize rate limiting: %v", err)
		}
		defer limiterClient.Close()
	}
	limiter := ratelimit.NewRateLimitService(limiterClient, ratelimit.RateLimitConfig{
		Enabled:  cfg.RateLimitEnabled,
		Requests: cfg.RateLimitRequests,
		Window:   cfg.RateLimitWindow,
	}, storageLogger)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(limiter, structuredLogger)

	router := mux.NewRouter()
	router.Use(middleware.CorrelationIDMiddleware)
	router.Use(rateLimitMiddleware.RateLimit)
	archiveHandler.RegisterRoutes(router)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"status":"healthy"}`)
	}).Methods(http.MethodGet)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      middleware.CORSMiddleware(cfg.CORSAllowedOrigins)(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		structuredLogger.Info(ctx, "Starting server", map[string]interface{}{
			"addr": cfg.Addr(),
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			structuredLogger.Error(ctx, "Server failed to start", err, map[string]interface{}{
				"addr": cfg.Addr(),
			})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	structuredLogger.Info(ctx, "Shutting down server...", nil)

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		structuredLogger.Error(ctx, "Server forced to shutdown", err, nil)
	}
	structuredLogger.Info(ctx, "Server exited", nil)
}
