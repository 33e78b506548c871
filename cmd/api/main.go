package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"servicehub/internal/cache"
	"servicehub/internal/config"
	"servicehub/internal/database"
	"servicehub/internal/domain/catalog"
	"servicehub/internal/domain/payment"
	"servicehub/internal/domain/upload"
	"servicehub/internal/logging"
	"servicehub/internal/metrics"
	jwtsvc "servicehub/internal/pkg/jwt"
	"servicehub/internal/server"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.IsProdLike())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL is empty")
	}
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	if err := database.Migrate(db, server.Models()...); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis is optional; without it the catalog reads straight from the database.
	var catalogCache catalog.Cache
	if cfg.RedisAddr != "" {
		rdb := cache.New(cache.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger)
		if err := rdb.Ping(ctx); err != nil {
			logger.Warn("redis unavailable, catalog cache disabled", zap.Error(err))
			_ = rdb.Close()
		} else {
			catalogCache = rdb
			defer func() { _ = rdb.Close() }()
		}
	}

	store, err := upload.NewCloudinaryStore(cfg.CloudinaryURL)
	if err != nil {
		logger.Fatal("cloudinary", zap.Error(err))
	}

	app, err := server.New(server.Options{
		AllowedOrigins:  cfg.AllowedOrigins(),
		RateLimitPerMin: cfg.RateLimitPerMin,
		CatalogCacheTTL: cfg.CatalogCacheTTL,
		PaymentCurrency: cfg.PaymentCurrency,
		ReminderWindow:  cfg.ReminderWindow,
	}, server.Deps{
		DB:       db,
		JWT:      jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL),
		Cache:    catalogCache,
		Payments: payment.NewStripeGateway(cfg.StripeSecretKey),
		Store:    store,
		Logger:   logger,
		Metrics:  metrics.Registry("servicehub"),
	})
	if err != nil {
		logger.Fatal("build server", zap.Error(err))
	}

	if err := app.Catalog.Warm(ctx); err != nil {
		logger.Warn("catalog warm-up failed", zap.Error(err))
	}
	if err := app.Reminders.Start(cfg.ReminderCron); err != nil {
		logger.Fatal("start reminders", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	app.Reminders.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
