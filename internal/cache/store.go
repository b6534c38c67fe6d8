package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store 标记类操作用到的 Redis 命令，*redis.Client 即满足
type Store interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}
