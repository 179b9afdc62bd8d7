package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeletePrefix drops every key that starts with prefix
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// CatalogSource loads the full list of sellable products
type CatalogSource interface {
	LoadCatalog(ctx context.Context) ([]CatalogEntry, error)
}
