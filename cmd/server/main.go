package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"shopdesk/backend/internal/cache"
	"shopdesk/backend/internal/config"
	"shopdesk/backend/internal/db"
	"shopdesk/backend/internal/export"
	httpapi "shopdesk/backend/internal/http"
	"shopdesk/backend/internal/metrics"
	"shopdesk/backend/internal/render"
	"shopdesk/backend/internal/repository"
	"shopdesk/backend/internal/service"
	"shopdesk/backend/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.DefaultPoolOptions())
	if err != nil {
		logger.Error("database error", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool); err != nil {
		logger.Error("migration error", "error", err)
		os.Exit(1)
	}

	var companyCache cache.CompanyCache = cache.NoopCompanyCache{}
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisCompanyCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := redisCache.Ping(pingCtx); err != nil {
			logger.Warn("redis unavailable, company cache disabled", "addr", cfg.RedisAddr, "error", err)
			_ = redisCache.Close()
		} else {
			companyCache = redisCache
			defer redisCache.Close()
		}
		cancel()
	}

	m := metrics.New()
	exports := export.NewManager(cfg.ExportTTL, m, logger)
	defer exports.Close()

	svc := service.New(
		repository.New(pool),
		render.New(render.NewHTTPImageFetcher(cfg.ImageTimeout)),
		service.Options{
			Cache:    companyCache,
			Exports:  exports,
			Recorder: m,
			Logger:   logger,
			Currency: cfg.Currency,
		},
	)
	router := httpapi.NewRouter(httpapi.NewHandler(svc, logger), m, logger)

	server := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("backend listening", "addr", server.Addr, "currency", cfg.Currency.Code)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("force close failed", "error", closeErr)
		}
	}
}
