package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MemoryStore 未配置 Redis 时的进程内替代，只保证单进程内的去重
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

type memoryItem struct {
	value     interface{}
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryItem), now: time.Now}
}

func (m *MemoryStore) live(key string) bool {
	item, ok := m.items[key]
	if !ok {
		return false
	}
	if !item.expiresAt.IsZero() && !m.now().Before(item.expiresAt) {
		delete(m.items, key)
		return false
	}
	return true
}

func (m *MemoryStore) put(key string, value interface{}, expiration time.Duration) {
	item := memoryItem{value: value}
	if expiration > 0 {
		item.expiresAt = m.now().Add(expiration)
	}
	m.items[key] = item
}

func (m *MemoryStore) SetNX(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.live(key) {
		return redis.NewBoolResult(false, nil)
	}
	m.put(key, value, expiration)
	return redis.NewBoolResult(true, nil)
}

func (m *MemoryStore) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.put(key, value, expiration)
	return redis.NewStatusResult("OK", nil)
}

func (m *MemoryStore) Del(_ context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, key := range keys {
		if m.live(key) {
			delete(m.items, key)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

var _ Store = (*MemoryStore)(nil)
