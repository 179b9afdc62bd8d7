package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/storefront/backend/internal/domain"
	"github.com/storefront/backend/internal/search"
)

// CatalogServiceConfig holds configuration for the catalog service
type CatalogServiceConfig struct {
	RefreshInterval time.Duration
	PrepareWorkers  int
	// ResultCache, when set, has the rankings of a replaced snapshot purged
	ResultCache domain.CacheRepository
}

// CatalogService owns the catalog snapshot served to searches. Refreshes
// build a new snapshot off to the side and publish it with a single atomic
// swap, so a search always ranks against one consistent catalog.
type CatalogService struct {
	source          domain.CatalogSource
	snapshot        atomic.Pointer[search.Snapshot]
	version         uint64
	refreshMu       sync.Mutex
	refreshInterval time.Duration
	workers         int
	resultCache     domain.CacheRepository
	logger          *logrus.Entry
	now             func() time.Time
}

// NewCatalogService creates a catalog service serving an empty catalog
// until the first successful refresh
func NewCatalogService(source domain.CatalogSource, config CatalogServiceConfig, logger *logrus.Entry) *CatalogService {
	if logger == nil {
		logger = logrus.WithField("component", "catalog_service")
	}

	refreshInterval := config.RefreshInterval
	if refreshInterval <= 0 {
		refreshInterval = 5 * time.Minute
	}

	s := &CatalogService{
		source:          source,
		refreshInterval: refreshInterval,
		workers:         config.PrepareWorkers,
		resultCache:     config.ResultCache,
		logger:          logger,
		now:             time.Now,
	}
	s.snapshot.Store(search.NewSnapshot(0, nil))
	return s
}

// Snapshot returns the snapshot currently served. It is never nil.
func (s *CatalogService) Snapshot() *search.Snapshot {
	return s.snapshot.Load()
}

// Info describes the snapshot currently served
func (s *CatalogService) Info() domain.CatalogInfo {
	return s.Snapshot().Info()
}

// Refresh loads the catalog from the source and publishes it as a new
// snapshot. On failure the previous snapshot stays in place.
func (s *CatalogService) Refresh(ctx context.Context) (domain.CatalogInfo, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	started := s.now()
	entries, err := s.source.LoadCatalog(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Catalog refresh failed, keeping previous snapshot")
		return s.Info(), fmt.Errorf("refresh catalog: %w", err)
	}

	opts := []search.SnapshotOption{search.WithLoadedAt(started)}
	if s.workers > 0 {
		opts = append(opts, search.WithWorkers(s.workers))
	}

	s.version++
	snapshot := search.NewSnapshot(s.version, entries, opts...)
	previous := s.snapshot.Swap(snapshot)

	info := snapshot.Info()
	s.logger.WithFields(logrus.Fields{
		"version":   info.Version,
		"entries":   info.Size,
		"loaded_at": info.LoadedAt.Format(time.RFC3339),
		"duration":  time.Since(started).String(),
	}).Info("Catalog snapshot published")

	s.purgeRankings(ctx, previous.Version())

	return info, nil
}

// purgeRankings drops cached rankings computed against a replaced snapshot.
// Searches that raced the swap may still write a few; those expire by TTL.
func (s *CatalogService) purgeRankings(ctx context.Context, version uint64) {
	if s.resultCache == nil || version == 0 {
		return
	}

	removed, err := s.resultCache.DeletePrefix(ctx, cacheKeyPrefix(version))
	if err != nil {
		s.logger.WithError(err).WithField("version", version).Warn("Failed to purge cached rankings")
		return
	}
	if removed > 0 {
		s.logger.WithFields(logrus.Fields{
			"version": version,
			"removed": removed,
		}).Debug("Purged cached rankings")
	}
}

// Run refreshes the catalog every refresh interval until ctx is done.
// Failures are logged and retried on the next tick.
func (s *CatalogService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	s.logger.WithField("interval", s.refreshInterval.String()).Info("Catalog refresher started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Catalog refresher stopped")
			return
		case <-ticker.C:
			// errors already logged by Refresh
			_, _ = s.Refresh(ctx)
		}
	}
}
