package domain

import "time"

// Searchable field names reported in ScoredEntry.MatchedField
const (
	FieldName        = "name"
	FieldBrand       = "brand"
	FieldCategory    = "category"
	FieldDescription = "description"
)

// CatalogEntry is a product as seen by search. Entries are owned by the
// catalog loader and are never mutated by the search engine.
type CatalogEntry struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Brand       string  `json:"brand,omitempty" yaml:"brand,omitempty"`
	Category    string  `json:"category,omitempty" yaml:"category,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Price       float64 `json:"price" yaml:"price"`
	InStock     bool    `json:"inStock" yaml:"in_stock"`
	Gender      string  `json:"gender,omitempty" yaml:"gender,omitempty"`
	Type        string  `json:"type,omitempty" yaml:"type,omitempty"`
}

// ScoredEntry pairs a catalog entry with its relevance score for one query
type ScoredEntry struct {
	Entry        CatalogEntry `json:"entry"`
	Score        float64      `json:"score"`
	MatchedField string       `json:"matchedField,omitempty"`
}

// CatalogInfo describes the catalog snapshot currently served
type CatalogInfo struct {
	Version  uint64    `json:"version"`
	Size     int       `json:"size"`
	LoadedAt time.Time `json:"loadedAt,omitempty"`
}
