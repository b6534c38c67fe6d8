package cache

import (
	"context"
	"time"

	"AddressBook/storage/redis"
)

// 通过 SetNX 实现的分布式锁，多个调度器实例对同一天只会有一个发布提醒
const (
	lockPrefix = "lock"
)

// TryLock 成功加锁返回 true；key 已存在返回 false
func TryLock(ctx context.Context, store Store, key string, ttl time.Duration) (bool, error) {
	return store.SetNX(ctx, redis.Key(lockPrefix, key), 1, ttl).Result()
}

func Unlock(ctx context.Context, store Store, key string) error {
	return store.Del(ctx, redis.Key(lockPrefix, key)).Err()
}

// ReminderLockKey 某天生日提醒的调度锁
func ReminderLockKey(date string) string {
	return "reminder:" + date
}
