package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCatalogUnavailable is returned when the catalog data service cannot be reached
	ErrCatalogUnavailable = errors.New("catalog data service unavailable")

	// ErrCatalogFormat is returned when catalog rows cannot be decoded
	ErrCatalogFormat = errors.New("malformed catalog data")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
