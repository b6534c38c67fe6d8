package middleware

import (
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"AddressBook/config"
	"AddressBook/pkg/logger"
)

// Init 注册 HTTP 指标；必须在 otel provider 安装之后调用
func Init() error {
	if err := InitMetrics(otel.Meter(config.Cfg.ServiceName + ".http")); err != nil {
		logger.Logger.Error("Failed to initialize http metrics", zap.Error(err))
		return err
	}

	logger.Logger.Info("All middlewares initialized successfully")
	return nil
}
