package storage

import (
	"errors"

	"go.uber.org/zap"

	"AddressBook/pkg/logger"
	"AddressBook/storage/mq"
	"AddressBook/storage/redis"
)

// Init 连接可选的 Redis 与 RabbitMQ；未配置的组件跳过，配置了但连不上返回错误
func Init() error {
	if err := redis.Init(); err != nil {
		if !errors.Is(err, redis.ErrDisabled) {
			return err
		}
		logger.Logger.Info("Redis disabled")
	}

	if err := mq.Init(); err != nil {
		if !errors.Is(err, mq.ErrDisabled) {
			return err
		}
		logger.Logger.Info("RabbitMQ disabled")
	}

	logger.Logger.Info("Storage initialized",
		zap.Bool("redis", redis.Enabled()),
		zap.Bool("rabbitmq", mq.Connection() != nil),
	)

	return nil
}
