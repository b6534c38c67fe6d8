package redis

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"AddressBook/config"
	pkgredis "AddressBook/pkg/redis"
)

// ErrDisabled 没有配置 REDIS_ADDR
var ErrDisabled = errors.New("redis is not configured")

var (
	client *redis.Client
	once   sync.Once
	err    error
)

// Init 连接 Redis；未配置地址时返回 ErrDisabled，调用方按可选依赖处理
func Init() error {
	cfg := config.Cfg
	if !cfg.RedisEnabled() {
		return ErrDisabled
	}

	once.Do(func() {
		c := redis.NewClient(&redis.Options{
			Addr:         cfg.RedisAddr,
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			MinIdleConns: 2,
			MaxRetries:   3,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err = c.Ping(ctx).Err(); err != nil {
			_ = c.Close()
			return
		}

		pkgredis.InstrumentRedisClient(c, cfg.ServiceName, cfg.RedisDB)
		client = c
	})

	return err
}

// Client 未初始化时返回 nil
func Client() *redis.Client {
	return client
}

func Enabled() bool { return client != nil }

func Close(ctx context.Context) error {
	if client == nil {
		return nil
	}

	return client.Close()
}

// Key 拼接带前缀的键，例如 abook:telemetry:commands
func Key(parts ...string) string {
	prefix := config.Cfg.RedisPrefix
	if prefix == "" {
		prefix = "abook"
	}

	var sb strings.Builder
	sb.WriteString(prefix)
	for _, part := range parts {
		if part != "" {
			sb.WriteString(":")
			sb.WriteString(part)
		}
	}

	return sb.String()
}
