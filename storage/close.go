package storage

import (
	"context"
	"time"

	"go.uber.org/zap"

	"AddressBook/pkg/logger"
	"AddressBook/storage/mq"
	"AddressBook/storage/redis"
)

// Close 优雅关闭外部连接
// 关闭顺序：MQ -> Redis，先停止收发消息，再关闭幂等标记所在的缓存
// 通讯录文件由 service.Close 负责落盘，不在这里处理
func Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := mq.Close(ctx); err != nil {
		logger.Logger.Error("Failed to close message queue", zap.Error(err))
	}

	if err := redis.Close(ctx); err != nil {
		logger.Logger.Error("Failed to close Redis connection", zap.Error(err))
	}

	logger.Logger.Info("All storage connections closed")
}
