package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"AddressBook/pkg/errors"
	"AddressBook/pkg/logger"
	"AddressBook/pkg/response"
	"AddressBook/storage/redis"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	// 时间窗口
	Window time.Duration
	// 时间窗口内最大请求数
	MaxRequests int
	// 限流键前缀
	KeyPrefix string
}

// WriteRateLimitConfig 修改类接口按 IP 限流
var WriteRateLimitConfig = RateLimitConfig{
	Window:      time.Minute,
	MaxRequests: 120,
	KeyPrefix:   "rate:write",
}

// RateLimiter 基于 Redis zset 的滑动窗口限流器
type RateLimiter struct {
	config RateLimitConfig
	client redislib.Cmdable
	now    func() time.Time
}

func NewRateLimiter(config RateLimitConfig, client redislib.Cmdable) *RateLimiter {
	return &RateLimiter{
		config: config,
		client: client,
		now:    time.Now,
	}
}

// Allow 检查 identifier 是否还有余量，返回窗口内的请求数
func (rl *RateLimiter) Allow(ctx context.Context, identifier string) (bool, int, error) {
	key := redis.Key(rl.config.KeyPrefix, identifier)
	now := rl.now()
	windowStart := now.Add(-rl.config.Window)

	pipe := rl.client.TxPipeline()

	// 移除窗口开始时间之前的所有请求记录
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	pipe.ZAdd(ctx, key, redislib.Z{
		Score:  float64(now.UnixNano()),
		Member: now.UnixNano(),
	})
	zcardCmd := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, rl.config.Window+10*time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to execute pipeline: %w", err)
	}

	count := int(zcardCmd.Val())
	return count <= rl.config.MaxRequests, count, nil
}

// RateLimitMiddleware 创建限流中间件；未启用 Redis 时直接放行
func RateLimitMiddleware(config RateLimitConfig) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		client := redis.Client()
		if client == nil {
			c.Next(ctx)
			return
		}

		limiter := NewRateLimiter(config, client)
		allowed, count, err := limiter.Allow(ctx, "ip:"+c.ClientIP())
		if err != nil {
			// Redis 故障不影响通讯录本身的读写
			logger.Logger.Warn("Failed to check rate limit", zap.Error(err))
			c.Next(ctx)
			return
		}

		remaining := config.MaxRequests - count
		if remaining < 0 {
			remaining = 0
		}
		c.Response.Header.Set("X-RateLimit-Limit", strconv.Itoa(config.MaxRequests))
		c.Response.Header.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			response.Error(ctx, c, errors.TooManyRequests)
			c.Abort()
			return
		}

		c.Next(ctx)
	}
}

// WriteRateLimitMiddleware 修改类接口的限流
func WriteRateLimitMiddleware() app.HandlerFunc {
	return RateLimitMiddleware(WriteRateLimitConfig)
}
