package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"AddressBook/config"
	"AddressBook/internal/cache"
	"AddressBook/internal/queue"
	"AddressBook/pkg/logger"
	"AddressBook/pkg/metrics"
	pkgotel "AddressBook/pkg/otel"
	"AddressBook/storage"
	"AddressBook/storage/mq"
	"AddressBook/storage/redis"
)

func main() {
	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	cfg := config.Cfg

	shutdownOtel, err := pkgotel.InitOpenTelemetry(ctx, pkgotel.Config{
		ServiceName:    cfg.ServiceName + "-worker",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRatio:    cfg.TraceSampleRatio,
	})
	if err != nil {
		logger.Logger.Fatal("Failed to initialize OpenTelemetry for worker", zap.Error(err))
	}
	defer func() { _ = shutdownOtel(context.Background()) }()

	if err := metrics.InitMetrics(); err != nil {
		logger.Logger.Warn("Failed to initialize metrics for worker", zap.Error(err))
	}

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	var store cache.Store = cache.NewMemoryStore()
	if c := redis.Client(); c != nil {
		store = c
	}

	w := queue.NewReminderWriter(cfg.ReminderExportDir, store, logger.Logger)

	logger.Logger.Info("Worker service starting",
		zap.String("service", cfg.ServiceName+"-worker"),
		zap.String("environment", cfg.Environment),
		zap.String("export_dir", cfg.ReminderExportDir),
	)

	if err := queue.StartBirthdayReminderConsumer(ctx, w); err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, mq.ErrDisabled) {
			logger.Logger.Fatal("Worker requires RABBITMQ_ADDR to consume reminders")
		}
		logger.Logger.Error("Birthday reminder consumer stopped", zap.Error(err))
	}

	logger.Logger.Info("Worker service shutting down gracefully")
}
