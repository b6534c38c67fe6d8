package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"AddressBook/config"
	"AddressBook/internal/cache"
	"AddressBook/internal/queue"
	"AddressBook/internal/schedule"
	"AddressBook/internal/service"
	"AddressBook/pkg/logger"
	"AddressBook/pkg/metrics"
	pkgotel "AddressBook/pkg/otel"
	"AddressBook/pkg/snowflake"
	"AddressBook/storage"
	"AddressBook/storage/mq"
	"AddressBook/storage/redis"
)

func main() {
	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Logger.Info("Scheduler received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	cfg := config.Cfg

	shutdownOtel, err := pkgotel.InitOpenTelemetry(ctx, pkgotel.Config{
		ServiceName:    cfg.ServiceName + "-scheduler",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRatio:    cfg.TraceSampleRatio,
	})
	if err != nil {
		logger.Logger.Fatal("Failed to initialize OpenTelemetry for scheduler", zap.Error(err))
	}
	defer func() { _ = shutdownOtel(context.Background()) }()

	if err := metrics.InitMetrics(); err != nil {
		logger.Logger.Warn("Failed to initialize metrics for scheduler", zap.Error(err))
	}

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage for scheduler", zap.Error(err))
	}
	defer storage.Close()

	if mq.Connection() == nil {
		logger.Logger.Fatal("Scheduler requires RABBITMQ_ADDR to publish reminders")
	}
	if err := mq.DeclareQueue(queue.BirthdayReminderQueue); err != nil {
		logger.Logger.Fatal("Failed to declare reminder queue", zap.Error(err))
	}

	// 考虑与 worker 和 server 作区分
	if err := snowflake.Init(cfg.SnowflakeMachineID, cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake for scheduler", zap.Error(err))
	}

	// 没有 Redis 时锁只在本进程内有效，多实例部署需要配置 REDIS_ADDR
	var store cache.Store = cache.NewMemoryStore()
	if c := redis.Client(); c != nil {
		store = c
	}

	open := func() (schedule.Source, error) {
		opts := service.OptionsFromConfig(cfg)
		opts.LegacyFile = ""
		svc, err := service.Open(opts)
		if err != nil {
			return nil, err
		}
		return svc, nil
	}

	s := schedule.NewBirthdayScheduler(open, queue.PublishBirthdayReminder, store, cfg.ReminderDays,
		schedule.WithLogger(logger.Logger))

	logger.Logger.Info("Scheduler service starting",
		zap.String("service", cfg.ServiceName+"-scheduler"),
		zap.String("environment", cfg.Environment),
		zap.Int("reminder_days", cfg.ReminderDays),
	)

	// 在 development 环境下，为了方便本地调试，改为每 1 分钟执行一次
	var interval time.Duration
	if cfg.Environment == "development" {
		interval = time.Minute
		logger.Logger.Info("Birthday scheduler running in development mode with 1m interval")
	}

	s.Run(ctx, interval)

	logger.Logger.Info("Scheduler service shutting down gracefully")
}
