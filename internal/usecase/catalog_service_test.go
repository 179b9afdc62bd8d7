package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/storefront/backend/internal/domain"
)

// MockCatalogSource is a mock implementation of domain.CatalogSource
type MockCatalogSource struct {
	mu      sync.Mutex
	entries []domain.CatalogEntry
	err     error
	calls   int
}

func NewMockCatalogSource(entries ...domain.CatalogEntry) *MockCatalogSource {
	return &MockCatalogSource{entries: entries}
}

func (m *MockCatalogSource) LoadCatalog(ctx context.Context) ([]domain.CatalogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.entries, nil
}

func (m *MockCatalogSource) setResult(entries []domain.CatalogEntry, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = entries
	m.err = err
}

func (m *MockCatalogSource) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func sneakers() []domain.CatalogEntry {
	return []domain.CatalogEntry{
		{ID: "1", Name: "Nike Air Max", Brand: "Nike", Price: 120, Gender: "men", Type: "running"},
		{ID: "2", Name: "Adidas Superstar", Brand: "Adidas", Price: 90, Gender: "women", Type: "everyday"},
		{ID: "3", Name: "Nike Air Force", Brand: "Nike", Price: 100, Gender: "unisex", Type: "everyday"},
		{ID: "4", Name: "Puma Future", Brand: "Puma", Price: 150, Gender: "men", Type: "football"},
	}
}

func TestNewCatalogService(t *testing.T) {
	t.Run("starts with an empty catalog", func(t *testing.T) {
		svc := NewCatalogService(NewMockCatalogSource(), CatalogServiceConfig{}, nil)

		if svc.Snapshot() == nil {
			t.Fatal("Snapshot() = nil, want empty snapshot")
		}
		info := svc.Info()
		if info.Version != 0 || info.Size != 0 {
			t.Errorf("Info() = %+v, want version 0 and size 0", info)
		}
		if svc.refreshInterval != 5*time.Minute {
			t.Errorf("refreshInterval = %v, want 5m", svc.refreshInterval)
		}
	})

	t.Run("uses custom refresh interval", func(t *testing.T) {
		svc := NewCatalogService(NewMockCatalogSource(), CatalogServiceConfig{RefreshInterval: time.Minute}, nil)
		if svc.refreshInterval != time.Minute {
			t.Errorf("refreshInterval = %v, want 1m", svc.refreshInterval)
		}
	})
}

func TestCatalogService_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes a new snapshot", func(t *testing.T) {
		source := NewMockCatalogSource(sneakers()...)
		svc := NewCatalogService(source, CatalogServiceConfig{}, nil)
		loadedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		svc.now = func() time.Time { return loadedAt }

		info, err := svc.Refresh(ctx)
		if err != nil {
			t.Fatalf("Refresh() error = %v, want nil", err)
		}
		if info.Version != 1 {
			t.Errorf("Version = %d, want 1", info.Version)
		}
		if info.Size != 4 {
			t.Errorf("Size = %d, want 4", info.Size)
		}
		if !info.LoadedAt.Equal(loadedAt) {
			t.Errorf("LoadedAt = %v, want %v", info.LoadedAt, loadedAt)
		}
		if svc.Snapshot().Version() != 1 {
			t.Errorf("Snapshot().Version() = %d, want 1", svc.Snapshot().Version())
		}
	})

	t.Run("increments version on every success", func(t *testing.T) {
		svc := NewCatalogService(NewMockCatalogSource(sneakers()...), CatalogServiceConfig{}, nil)

		for i := 0; i < 3; i++ {
			if _, err := svc.Refresh(ctx); err != nil {
				t.Fatalf("Refresh() error = %v", err)
			}
		}
		if svc.Info().Version != 3 {
			t.Errorf("Version = %d, want 3", svc.Info().Version)
		}
	})

	t.Run("keeps previous snapshot on failure", func(t *testing.T) {
		source := NewMockCatalogSource(sneakers()...)
		svc := NewCatalogService(source, CatalogServiceConfig{}, nil)
		if _, err := svc.Refresh(ctx); err != nil {
			t.Fatalf("Refresh() error = %v", err)
		}
		before := svc.Snapshot()

		source.setResult(nil, domain.ErrCatalogUnavailable)
		info, err := svc.Refresh(ctx)

		if !errors.Is(err, domain.ErrCatalogUnavailable) {
			t.Errorf("Refresh() error = %v, want ErrCatalogUnavailable", err)
		}
		if svc.Snapshot() != before {
			t.Error("snapshot was replaced after a failed refresh")
		}
		if info.Version != 1 || info.Size != 4 {
			t.Errorf("Info() = %+v, want previous snapshot info", info)
		}
	})

	t.Run("an empty catalog is a valid catalog", func(t *testing.T) {
		svc := NewCatalogService(NewMockCatalogSource(), CatalogServiceConfig{}, nil)

		info, err := svc.Refresh(ctx)
		if err != nil {
			t.Fatalf("Refresh() error = %v", err)
		}
		if info.Version != 1 || info.Size != 0 {
			t.Errorf("Info() = %+v, want version 1 and size 0", info)
		}
	})
}

func TestCatalogService_PurgesStaleRankings(t *testing.T) {
	ctx := context.Background()

	t.Run("drops rankings of the replaced version only", func(t *testing.T) {
		cache := NewMockCacheRepository()
		svc := NewCatalogService(NewMockCatalogSource(sneakers()...), CatalogServiceConfig{ResultCache: cache}, nil)

		if _, err := svc.Refresh(ctx); err != nil {
			t.Fatalf("Refresh() error = %v", err)
		}
		if len(cache.purged) != 0 {
			t.Errorf("purged = %v after first refresh, want none", cache.purged)
		}

		cache.data["search:v1:nike"] = []domain.ScoredEntry{}
		cache.data["search:v1:puma"] = []domain.ScoredEntry{}
		cache.data["search:v10:nike"] = []domain.ScoredEntry{}

		if _, err := svc.Refresh(ctx); err != nil {
			t.Fatalf("Refresh() error = %v", err)
		}

		if len(cache.purged) != 1 || cache.purged[0] != "search:v1:" {
			t.Errorf("purged = %v, want [search:v1:]", cache.purged)
		}
		if _, ok := cache.data["search:v1:nike"]; ok {
			t.Error("stale ranking search:v1:nike survived the refresh")
		}
		if _, ok := cache.data["search:v10:nike"]; !ok {
			t.Error("search:v10:nike was purged with version 1")
		}
	})

	t.Run("failed refresh leaves the cache alone", func(t *testing.T) {
		cache := NewMockCacheRepository()
		source := NewMockCatalogSource(sneakers()...)
		svc := NewCatalogService(source, CatalogServiceConfig{ResultCache: cache}, nil)
		if _, err := svc.Refresh(ctx); err != nil {
			t.Fatalf("Refresh() error = %v", err)
		}
		cache.data["search:v1:nike"] = []domain.ScoredEntry{}

		source.setResult(nil, domain.ErrCatalogUnavailable)
		_, _ = svc.Refresh(ctx)

		if _, ok := cache.data["search:v1:nike"]; !ok {
			t.Error("ranking of the still-served snapshot was purged")
		}
	})

	t.Run("purge errors do not fail the refresh", func(t *testing.T) {
		cache := NewMockCacheRepository()
		cache.purgeError = errors.New("cache down")
		svc := NewCatalogService(NewMockCatalogSource(sneakers()...), CatalogServiceConfig{ResultCache: cache}, nil)

		for i := 0; i < 2; i++ {
			if _, err := svc.Refresh(ctx); err != nil {
				t.Fatalf("Refresh() error = %v, want nil", err)
			}
		}
		if svc.Info().Version != 2 {
			t.Errorf("Version = %d, want 2", svc.Info().Version)
		}
	})
}

func TestCatalogService_ConcurrentRefreshAndRead(t *testing.T) {
	svc := NewCatalogService(NewMockCatalogSource(sneakers()...), CatalogServiceConfig{}, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = svc.Refresh(ctx)
		}()
		go func() {
			defer wg.Done()
			snapshot := svc.Snapshot()
			if snapshot.Size() != 0 && snapshot.Size() != 4 {
				t.Errorf("Size() = %d, want 0 or 4", snapshot.Size())
			}
		}()
	}
	wg.Wait()

	if svc.Info().Version != 8 {
		t.Errorf("Version = %d, want 8", svc.Info().Version)
	}
}

func TestCatalogService_Run(t *testing.T) {
	source := NewMockCatalogSource(sneakers()...)
	svc := NewCatalogService(source, CatalogServiceConfig{RefreshInterval: 10 * time.Millisecond}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for source.callCount() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after context cancellation")
	}

	if source.callCount() < 2 {
		t.Errorf("LoadCatalog called %d times, want at least 2", source.callCount())
	}
	if svc.Info().Size != 4 {
		t.Errorf("Size = %d, want 4", svc.Info().Size)
	}
}
