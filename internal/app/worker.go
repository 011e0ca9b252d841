package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-erp/internal/messaging/kafka"
	"go-erp/internal/messaging/kafka/producer"
	"go-erp/internal/shared/connection"
	"go-erp/internal/shared/counter"
	"go-erp/internal/warranty"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// RunWorker hosts the outbox publisher loop and the scheduled warranty
// expiry sweep in one process.
func RunWorker() error {
	logger := zap.L().Named("app.worker")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	kafkaWriter, err := connection.ConnectKafkaWithRetry(kafkaBroker, 5)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}

	outboxRepo := kafka.NewOutboxRepository(sqlDB)
	warrantyRepo := warranty.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	warrantyService := warranty.NewService(warrantyRepo, counterRepo, redisClient)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go producer.ProcessOutboxEvents(
		ctx,
		outboxRepo,
		kafkaWriter,
		logger,
		3*time.Second,
	)

	schedule := os.Getenv("WARRANTY_SWEEP_CRON")
	if schedule == "" {
		schedule = "0 2 * * *"
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(schedule, func() {
		if _, err := warrantyService.ExpireOverdue(ctx); err != nil {
			logger.Error("scheduled warranty sweep failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("invalid warranty sweep schedule %q: %w", schedule, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	logger.Info("worker started", zap.String("warranty_sweep", schedule))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	cancel()

	return nil
}
