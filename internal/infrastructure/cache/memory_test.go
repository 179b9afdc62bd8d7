package cache

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/storefront/backend/internal/domain"
)

func newTestCache(t *testing.T, config MemoryCacheConfig) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(config)
	t.Cleanup(c.Close)
	return c
}

// entryCount includes expired entries the cleanup loop has not reached yet
func entryCount(c *MemoryCache) int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := newTestCache(t, MemoryCacheConfig{})
	ctx := context.Background()

	ranking := []domain.ScoredEntry{
		{Entry: domain.CatalogEntry{ID: "12345", Name: "Air Max"}, Score: 304, MatchedField: "name"},
		{Entry: domain.CatalogEntry{ID: "67890", Name: "Air Force"}, Score: 204, MatchedField: "name"},
	}

	values := map[string]interface{}{
		"search:v1:air max": ranking,
		"search:v1:":        []domain.ScoredEntry{},
		"plain":             "value",
	}

	for key, value := range values {
		t.Run(key, func(t *testing.T) {
			if err := c.Set(ctx, key, value, time.Minute); err != nil {
				t.Fatalf("Set(%q) error = %v", key, err)
			}
			got, err := c.Get(ctx, key)
			if err != nil {
				t.Fatalf("Get(%q) error = %v", key, err)
			}
			if !reflect.DeepEqual(got, value) {
				t.Errorf("Get(%q) = %v, want %v", key, got, value)
			}
		})
	}
}

func TestMemoryCache_Miss(t *testing.T) {
	c := newTestCache(t, MemoryCacheConfig{})
	ctx := context.Background()

	t.Run("unknown key", func(t *testing.T) {
		if _, err := c.Get(ctx, "search:v1:nike"); err != domain.ErrCacheMiss {
			t.Errorf("Get() error = %v, want %v", err, domain.ErrCacheMiss)
		}
	})

	t.Run("expired key", func(t *testing.T) {
		if err := c.Set(ctx, "search:v1:puma", "ranking", time.Millisecond); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		time.Sleep(10 * time.Millisecond)

		if _, err := c.Get(ctx, "search:v1:puma"); err != domain.ErrCacheMiss {
			t.Errorf("Get() after TTL error = %v, want %v", err, domain.ErrCacheMiss)
		}
	})
}

func TestMemoryCache_Delete(t *testing.T) {
	c := newTestCache(t, MemoryCacheConfig{})
	ctx := context.Background()

	_ = c.Set(ctx, "search:v1:nike", "stale", time.Minute)
	_ = c.Set(ctx, "search:v1:adidas", "kept", time.Minute)

	if err := c.Delete(ctx, "search:v1:nike"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := c.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete() of unknown key error = %v, want nil", err)
	}

	if _, err := c.Get(ctx, "search:v1:nike"); err != domain.ErrCacheMiss {
		t.Errorf("Get(deleted) error = %v, want %v", err, domain.ErrCacheMiss)
	}
	if got, err := c.Get(ctx, "search:v1:adidas"); err != nil || got != "kept" {
		t.Errorf("Get(adidas) = %v, %v; want kept, nil", got, err)
	}
}

func TestMemoryCache_DeletePrefix(t *testing.T) {
	c := newTestCache(t, MemoryCacheConfig{})
	ctx := context.Background()

	keys := []string{
		"search:v1:nike",
		"search:v1:air max",
		"search:v1:",
		"search:v10:nike",
		"search:v2:nike",
	}
	for _, key := range keys {
		if err := c.Set(ctx, key, key, time.Minute); err != nil {
			t.Fatalf("Set(%q) error = %v", key, err)
		}
	}

	removed, err := c.DeletePrefix(ctx, "search:v1:")
	if err != nil {
		t.Fatalf("DeletePrefix() error = %v", err)
	}
	if removed != 3 {
		t.Errorf("DeletePrefix() removed = %d, want 3", removed)
	}

	for _, key := range []string{"search:v10:nike", "search:v2:nike"} {
		if _, err := c.Get(ctx, key); err != nil {
			t.Errorf("Get(%q) error = %v, want it kept", key, err)
		}
	}
	if n := entryCount(c); n != 2 {
		t.Errorf("entries = %d, want 2", n)
	}

	removed, _ = c.DeletePrefix(ctx, "search:v1:")
	if removed != 0 {
		t.Errorf("second DeletePrefix() removed = %d, want 0", removed)
	}
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	c := newTestCache(t, MemoryCacheConfig{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(version int) {
			defer wg.Done()
			key := fmt.Sprintf("search:v%d:nike", version)
			if err := c.Set(ctx, key, version, time.Minute); err != nil {
				t.Errorf("Set(%q) error = %v", key, err)
			}
			if _, err := c.Get(ctx, key); err != nil {
				t.Errorf("Get(%q) error = %v", key, err)
			}
		}(i)
		go func(version int) {
			defer wg.Done()
			_, _ = c.DeletePrefix(ctx, fmt.Sprintf("search:v%d:", version-1))
		}(i)
	}
	wg.Wait()
}

func TestMemoryCache_EvictsWhenFull(t *testing.T) {
	c := newTestCache(t, MemoryCacheConfig{MaxEntries: 3})
	ctx := context.Background()

	// "first" expires soonest and is the eviction victim
	if err := c.Set(ctx, "first", 1, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	for _, key := range []string{"second", "third"} {
		if err := c.Set(ctx, key, key, time.Hour); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	if err := c.Set(ctx, "fourth", 4, time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if n := entryCount(c); n != 3 {
		t.Errorf("entries = %d, want 3", n)
	}
	if _, err := c.Get(ctx, "first"); err != domain.ErrCacheMiss {
		t.Errorf("Get(first) error = %v, want %v", err, domain.ErrCacheMiss)
	}
	if _, err := c.Get(ctx, "fourth"); err != nil {
		t.Errorf("Get(fourth) error = %v", err)
	}
}

func TestMemoryCache_EvictionPrefersExpired(t *testing.T) {
	c := newTestCache(t, MemoryCacheConfig{MaxEntries: 2})
	ctx := context.Background()

	_ = c.Set(ctx, "gone", 1, time.Millisecond)
	_ = c.Set(ctx, "live", 2, time.Minute)
	time.Sleep(10 * time.Millisecond)

	_ = c.Set(ctx, "new", 3, time.Minute)

	if got, err := c.Get(ctx, "live"); err != nil || got != 2 {
		t.Errorf("Get(live) = %v, %v; want 2, nil", got, err)
	}
}

func TestMemoryCache_OverwriteDoesNotEvict(t *testing.T) {
	c := newTestCache(t, MemoryCacheConfig{MaxEntries: 2})
	ctx := context.Background()

	_ = c.Set(ctx, "a", 1, time.Minute)
	_ = c.Set(ctx, "b", 2, time.Minute)
	_ = c.Set(ctx, "a", 3, time.Minute)

	got, err := c.Get(ctx, "b")
	if err != nil || got != 2 {
		t.Errorf("Get(b) = %v, %v; want 2, nil", got, err)
	}
}

func TestMemoryCache_CleanupDropsExpired(t *testing.T) {
	c := newTestCache(t, MemoryCacheConfig{CleanupInterval: 5 * time.Millisecond})
	ctx := context.Background()

	_ = c.Set(ctx, "search:v1:nike", "ranking", time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for entryCount(c) > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := entryCount(c); n != 0 {
		t.Errorf("entries = %d after cleanup, want 0", n)
	}
}

func TestMemoryCache_CloseIsIdempotent(t *testing.T) {
	c := NewMemoryCache(MemoryCacheConfig{CleanupInterval: time.Millisecond})
	c.Close()
	c.Close()
}
