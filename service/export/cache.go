package export

import (
	"context"
	"sync"
	"time"
)

// Cache 导出结果缓存，键为视图内容哈希
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte) error
}

// Observer 缓存命中统计
type Observer interface {
	CacheHit()
	CacheMiss()
}

// NoopCache 不缓存
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NoopCache) Set(context.Context, string, []byte) error { return nil }

type entry struct {
	data []byte
	exp  time.Time
}

// MemoryCache 进程内TTL缓存
type MemoryCache struct {
	mu         sync.RWMutex
	m          map[string]entry
	ttl        time.Duration
	maxEntries int
	obs        Observer
	now        func() time.Time
}

// NewMemoryCache 创建内存缓存；maxEntries<=0时不限制条目数
func NewMemoryCache(ttl time.Duration, maxEntries int, obs Observer) *MemoryCache {
	return &MemoryCache{
		m:          make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		obs:        obs,
		now:        time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok || c.now().After(e.exp) {
		if c.obs != nil {
			c.obs.CacheMiss()
		}
		return nil, false, nil
	}
	if c.obs != nil {
		c.obs.CacheHit()
	}
	return e.data, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.maxEntries > 0 && len(c.m) >= c.maxEntries {
		c.evict(now)
	}
	c.m[key] = entry{data: data, exp: now.Add(c.ttl)}
	return nil
}

// evict 先清理过期条目，仍然超限时淘汰最早过期的一条
func (c *MemoryCache) evict(now time.Time) {
	var oldestKey string
	var oldest time.Time
	for k, e := range c.m {
		if now.After(e.exp) {
			delete(c.m, k)
			continue
		}
		if oldestKey == "" || e.exp.Before(oldest) {
			oldestKey, oldest = k, e.exp
		}
	}
	if len(c.m) >= c.maxEntries && oldestKey != "" {
		delete(c.m, oldestKey)
	}
}

// Len 当前条目数
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
