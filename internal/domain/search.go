package domain

// Sort orders accepted by SearchRequest.Sort
const (
	SortRelevance = "relevance"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortName      = "name"
	SortBrand     = "brand"
)

// SearchRequest represents a product search request with optional post-rank filters
type SearchRequest struct {
	Query     string   `json:"query" form:"q"`
	Limit     int      `json:"limit,omitempty" form:"limit"`
	Brands    []string `json:"brands,omitempty"`
	Genders   []string `json:"genders,omitempty"`
	Types     []string `json:"types,omitempty"`
	MinPrice  *float64 `json:"minPrice,omitempty"`
	MaxPrice  *float64 `json:"maxPrice,omitempty"`
	Sort      string   `json:"sort,omitempty" form:"sort"`
	RequestID uint64   `json:"requestId,omitempty" form:"request_id"`
}

// SearchResponse is the ranked, filtered and truncated result of a search.
// RequestID echoes the caller's id so superseded responses can be discarded.
type SearchResponse struct {
	Query          string        `json:"query"`
	RequestID      uint64        `json:"requestId,omitempty"`
	CatalogVersion uint64        `json:"catalogVersion"`
	Total          int           `json:"total"` // matches before truncation
	Results        []ScoredEntry `json:"results"`
	Suggestions    []string      `json:"suggestions,omitempty"`
}
