package telemetry

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"AddressBook/internal/cache"
)

// HashIncrementer RedisRecorder 只需要 HINCRBY
type HashIncrementer interface {
	HIncrBy(ctx context.Context, key, field string, incr int64) *goredis.IntCmd
}

// RedisRecorder 计数写入一个 hash，多个进程共享
type RedisRecorder struct {
	client  HashIncrementer
	key     string
	breaker *cache.CircuitBreaker
	log     *zap.Logger
}

func NewRedisRecorder(client HashIncrementer, key string, log *zap.Logger) *RedisRecorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisRecorder{
		client:  client,
		key:     key,
		breaker: cache.NewCircuitBreaker("telemetry", 3, 30*time.Second),
		log:     log,
	}
}

func (r *RedisRecorder) Record(ctx context.Context, command string) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	err := r.breaker.Call(func() error {
		return r.client.HIncrBy(ctx, r.key, command, 1).Err()
	})
	if err != nil {
		r.log.Debug("telemetry increment failed", zap.String("command", command), zap.Error(err))
	}
}
