package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/storefront/backend/internal/domain"
	"github.com/storefront/backend/internal/search"
)

// SnapshotProvider exposes the catalog snapshot searches rank against
type SnapshotProvider interface {
	Snapshot() *search.Snapshot
}

// SearchServiceConfig holds configuration for the search service
type SearchServiceConfig struct {
	CacheTTL        time.Duration
	DefaultLimit    int
	MaxResults      int
	SuggestDistance int
	SuggestLimit    int
}

// SearchService ranks queries against the current catalog snapshot and
// shapes the ranked list for the caller
type SearchService struct {
	cache           domain.CacheRepository
	catalog         SnapshotProvider
	cacheTTL        time.Duration
	defaultLimit    int
	maxResults      int
	suggestDistance int
	suggestLimit    int
	logger          *logrus.Entry
}

// NewSearchService creates a new search service with dependencies
func NewSearchService(
	cache domain.CacheRepository,
	catalog SnapshotProvider,
	config SearchServiceConfig,
	logger *logrus.Entry,
) *SearchService {
	if logger == nil {
		logger = logrus.WithField("component", "search_service")
	}

	cacheTTL := config.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	maxResults := config.MaxResults
	if maxResults <= 0 {
		maxResults = 100
	}
	defaultLimit := config.DefaultLimit
	if defaultLimit <= 0 || defaultLimit > maxResults {
		defaultLimit = min(20, maxResults)
	}

	return &SearchService{
		cache:           cache,
		catalog:         catalog,
		cacheTTL:        cacheTTL,
		defaultLimit:    defaultLimit,
		maxResults:      maxResults,
		suggestDistance: config.SuggestDistance,
		suggestLimit:    config.SuggestLimit,
		logger:          logger,
	}
}

// Search ranks the request's query and applies its filters, sort and limit.
// Flow: validate -> check cache -> rank snapshot -> cache -> filter -> sort -> truncate
func (s *SearchService) Search(ctx context.Context, request *domain.SearchRequest) (*domain.SearchResponse, error) {
	if err := validateRequest(request); err != nil {
		return nil, err
	}

	snapshot := s.catalog.Snapshot()
	response := &domain.SearchResponse{
		Query:          request.Query,
		RequestID:      request.RequestID,
		CatalogVersion: snapshot.Version(),
		Results:        []domain.ScoredEntry{},
	}

	normalized := search.Normalize(request.Query)
	if normalized == "" {
		return response, nil
	}

	ranked := s.rank(ctx, normalized, snapshot)

	results := ApplyFilters(ranked, request)
	SortResults(results, request.Sort)

	response.Total = len(results)
	if limit := s.effectiveLimit(request.Limit); len(results) > limit {
		results = results[:limit]
	}
	response.Results = results

	if len(ranked) == 0 && s.suggestDistance > 0 && s.suggestLimit > 0 {
		response.Suggestions = snapshot.Suggest(request.Query, s.suggestDistance, s.suggestLimit)
	}

	return response, nil
}

// rank returns the full ranked list for a query, memoized per snapshot
// version. The returned slice is shared with the cache and must not be
// modified.
func (s *SearchService) rank(ctx context.Context, normalized search.NormalizedText, snapshot *search.Snapshot) []domain.ScoredEntry {
	cacheKey := generateCacheKey(snapshot.Version(), normalized)

	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		return cached
	}

	ranked := search.RankSnapshot(string(normalized), snapshot)

	if err := s.cache.Set(ctx, cacheKey, ranked, s.cacheTTL); err != nil {
		s.logger.WithError(err).WithField("key", cacheKey).Warn("Failed to cache ranked results")
	}

	return ranked
}

// generateCacheKey builds a key that changes whenever the catalog does.
// Format: "search:v{version}:{normalized_query}"
func generateCacheKey(version uint64, normalized search.NormalizedText) string {
	return cacheKeyPrefix(version) + string(normalized)
}

// cacheKeyPrefix is shared by every ranking cached for one catalog version
func cacheKeyPrefix(version uint64) string {
	return fmt.Sprintf("search:v%d:", version)
}

func (s *SearchService) getFromCache(ctx context.Context, key string) ([]domain.ScoredEntry, error) {
	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	ranked, ok := value.([]domain.ScoredEntry)
	if !ok {
		s.logger.WithField("key", key).Warn("Dropping cache entry of unexpected type")
		if err := s.cache.Delete(ctx, key); err != nil {
			s.logger.WithError(err).WithField("key", key).Warn("Failed to delete cache entry")
		}
		return nil, domain.ErrCacheMiss
	}
	return ranked, nil
}

// effectiveLimit applies the default limit and caps at max results
func (s *SearchService) effectiveLimit(requested int) int {
	if requested <= 0 {
		return s.defaultLimit
	}
	return min(requested, s.maxResults)
}

func validateRequest(request *domain.SearchRequest) error {
	if request == nil {
		return domain.ErrInvalidRequest
	}
	if request.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", domain.ErrInvalidRequest)
	}
	if !IsValidSort(request.Sort) {
		return fmt.Errorf("%w: unknown sort %q", domain.ErrInvalidRequest, request.Sort)
	}
	if request.MinPrice != nil && request.MaxPrice != nil && *request.MinPrice > *request.MaxPrice {
		return fmt.Errorf("%w: min_price exceeds max_price", domain.ErrInvalidRequest)
	}
	return nil
}
