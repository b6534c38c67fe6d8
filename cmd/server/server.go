package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"go.uber.org/zap"

	"AddressBook/config"
	"AddressBook/internal/handler"
	"AddressBook/internal/middleware"
	"AddressBook/internal/router"
	"AddressBook/internal/service"
	"AddressBook/internal/telemetry"
	"AddressBook/pkg/logger"
	"AddressBook/pkg/metrics"
	pkgotel "AddressBook/pkg/otel"
	"AddressBook/storage"
	"AddressBook/storage/redis"
)

func main() {
	// 日志部分
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
		ServiceName:    cfg.ServiceName,
		ServiceVersion: "1.0.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRatio:    cfg.TraceSampleRatio,
	})
	if err != nil {
		logger.Logger.Fatal("Failed to initialize OpenTelemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOtel(shutdownCtx); err != nil {
			logger.Logger.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
		}
	}()

	if err := metrics.InitMetrics(); err != nil {
		logger.Logger.Warn("Failed to initialize address book metrics", zap.Error(err))
	}

	// 初始化可选的 Redis / RabbitMQ，记得关闭外部连接
	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	if err := middleware.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize middlewares", zap.Error(err))
	}

	svc, err := service.Open(service.OptionsFromConfig(cfg))
	if err != nil {
		logger.Logger.Fatal("Failed to open address book", zap.Error(err))
	}
	defer func() {
		if err := svc.Close(context.Background()); err != nil {
			logger.Logger.Error("Failed to save address book on shutdown", zap.Error(err))
		}
	}()

	rec := telemetry.New(cfg.TelemetryEnabled, cfg.DataDir, redis.Client(), logger.Logger)

	logger.Logger.Info("Server starting",
		zap.String("service", cfg.ServiceName),
		zap.String("port", cfg.ServerPort),
		zap.String("environment", cfg.Environment),
		zap.String("contacts", cfg.ContactsPath()),
	)

	addr := net.JoinHostPort(cfg.ServerHost, cfg.ServerPort)
	tracer, tracing := middleware.NewServerTracerConfig()
	h := server.Default(server.WithHostPorts(addr), tracer)
	h.Use(tracing)

	router.Register(h, handler.NewContactHandler(svc, rec))

	// 优雅关闭：在单独的 goroutine 中监听关闭信号并调用 Shutdown
	go func() {
		<-ctx.Done()
		logger.Logger.Info("Initiating graceful shutdown...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Error("Failed to shutdown HTTP server", zap.Error(err))
		}
	}()

	logger.Logger.Info("HTTP server listening", zap.String("addr", addr))

	h.Spin()

	logger.Logger.Info("Server shutting down gracefully")
}
