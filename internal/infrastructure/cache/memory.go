package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/storefront/backend/internal/domain"
)

// Defaults applied when MemoryCacheConfig leaves a field at zero
const (
	defaultMaxEntries      = 10000
	defaultCleanupInterval = 10 * time.Minute
)

// cacheItem represents a single item in the cache with expiration
type cacheItem struct {
	Value      interface{}
	Expiration time.Time
}

// MemoryCacheConfig holds configuration for the in-memory cache
type MemoryCacheConfig struct {
	MaxEntries      int
	CleanupInterval time.Duration
}

// MemoryCache is a thread-safe in-memory cache with TTL support. Values are
// stored as given and must be treated as read-only by callers.
type MemoryCache struct {
	data       map[string]cacheItem
	mutex      sync.RWMutex
	maxEntries int

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemoryCache creates a new in-memory cache and starts its cleanup goroutine.
// Call Close to stop the goroutine.
func NewMemoryCache(config MemoryCacheConfig) *MemoryCache {
	maxEntries := config.MaxEntries
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	interval := config.CleanupInterval
	if interval <= 0 {
		interval = defaultCleanupInterval
	}

	cache := &MemoryCache{
		data:       make(map[string]cacheItem),
		maxEntries: maxEntries,
		stop:       make(chan struct{}),
	}

	go cache.cleanupExpired(interval)

	return cache
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(ctx context.Context, key string) (interface{}, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[key]
	if !exists {
		return nil, domain.ErrCacheMiss
	}

	if time.Now().After(item.Expiration) {
		return nil, domain.ErrCacheMiss
	}

	return item.Value, nil
}

// Set stores a value in the cache with TTL. When the cache is full the
// entry closest to expiry is evicted first.
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.data[key]; !exists && len(c.data) >= c.maxEntries {
		c.evictLocked(time.Now())
	}

	c.data[key] = cacheItem{
		Value:      value,
		Expiration: time.Now().Add(ttl),
	}

	return nil
}

// evictLocked drops expired entries, or the soonest-expiring one if none
// have expired. Caller must hold the write lock.
func (c *MemoryCache) evictLocked(now time.Time) {
	var (
		victim     string
		victimExp  time.Time
		removedAny bool
	)
	for key, item := range c.data {
		if now.After(item.Expiration) {
			delete(c.data, key)
			removedAny = true
			continue
		}
		if victim == "" || item.Expiration.Before(victimExp) {
			victim, victimExp = key, item.Expiration
		}
	}
	if !removedAny && victim != "" {
		delete(c.data, victim)
	}
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
	return nil
}

// DeletePrefix removes every key starting with prefix and reports how many
// were dropped
func (c *MemoryCache) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	removed := 0
	for key := range c.data {
		if strings.HasPrefix(key, prefix) {
			delete(c.data, key)
			removed++
		}
	}
	return removed, nil
}

// cleanupExpired removes expired entries from the cache periodically
func (c *MemoryCache) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mutex.Lock()
			now := time.Now()
			for key, item := range c.data {
				if now.After(item.Expiration) {
					delete(c.data, key)
				}
			}
			c.mutex.Unlock()
		}
	}
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (c *MemoryCache) Close() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}
