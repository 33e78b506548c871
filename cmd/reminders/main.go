// Command reminders posts booking reminders once and exits. It is meant for
// deployments that schedule jobs outside the API process.
package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"servicehub/internal/config"
	"servicehub/internal/database"
	"servicehub/internal/domain/booking"
	"servicehub/internal/domain/chat"
	"servicehub/internal/logging"
)

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

	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}

	// No sockets are attached to this hub; connected clients pick the
	// reminders up on their next REST poll.
	hub := chat.NewHub(logger, nil)
	chatService := chat.NewService(chat.NewRepository(db), hub, logger, nil)
	reminders := booking.NewReminders(booking.NewRepository(db), chatService, cfg.ReminderWindow, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	sent, err := reminders.RunOnce(ctx)
	if err != nil {
		logger.Fatal("booking reminders failed", zap.Error(err))
	}
	logger.Info("booking reminders completed", zap.Int("sent", sent), zap.Duration("window", cfg.ReminderWindow))
}
