package usecase

import (
	"slices"
	"strings"

	"github.com/storefront/backend/internal/domain"
)

// genderAliases maps the Georgian labels shown in the storefront's filter
// bar to the gender values stored on products
var genderAliases = map[string][]string{
	"მამრობითი":  {"male", "men"},
	"მდედრობითი": {"female", "women"},
	"უნისექს":    {"unisex"},
}

// typeAliases maps Georgian product type labels to stored type values
var typeAliases = map[string][]string{
	"სავარჯიშო":   {"running"},
	"ფეხბურთი":    {"football"},
	"ყოველდღიური": {"everyday"},
}

// IsValidSort reports whether sortBy names a supported result order. The
// empty string means relevance.
func IsValidSort(sortBy string) bool {
	switch sortBy {
	case "", domain.SortRelevance, domain.SortPriceLow, domain.SortPriceHigh, domain.SortName, domain.SortBrand:
		return true
	}
	return false
}

// ApplyFilters returns the ranked results that pass every filter in the
// request, preserving rank order. The input slice is not modified.
func ApplyFilters(results []domain.ScoredEntry, request *domain.SearchRequest) []domain.ScoredEntry {
	filtered := make([]domain.ScoredEntry, 0, len(results))
	for _, r := range results {
		if matchesFilters(&r.Entry, request) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func matchesFilters(e *domain.CatalogEntry, request *domain.SearchRequest) bool {
	if len(request.Brands) > 0 && !slices.Contains(request.Brands, e.Brand) {
		return false
	}
	if len(request.Genders) > 0 && !matchesAny(e.Gender, request.Genders, genderAliases) {
		return false
	}
	if len(request.Types) > 0 && !matchesAny(e.Type, request.Types, typeAliases) {
		return false
	}
	if request.MinPrice != nil && e.Price < *request.MinPrice {
		return false
	}
	if request.MaxPrice != nil && e.Price > *request.MaxPrice {
		return false
	}
	return true
}

// matchesAny compares value case-insensitively against each wanted label,
// expanding Georgian labels through aliases
func matchesAny(value string, wanted []string, aliases map[string][]string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return false
	}
	for _, w := range wanted {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == value || slices.Contains(aliases[w], value) {
			return true
		}
	}
	return false
}

// SortResults reorders results in place. Relevance keeps the ranked order;
// every other order is stable, so equal keys stay in rank order.
func SortResults(results []domain.ScoredEntry, sortBy string) {
	var cmp func(a, b domain.ScoredEntry) int

	switch sortBy {
	case domain.SortPriceLow:
		cmp = func(a, b domain.ScoredEntry) int { return compareFloat(a.Entry.Price, b.Entry.Price) }
	case domain.SortPriceHigh:
		cmp = func(a, b domain.ScoredEntry) int { return compareFloat(b.Entry.Price, a.Entry.Price) }
	case domain.SortName:
		cmp = func(a, b domain.ScoredEntry) int {
			return strings.Compare(strings.ToLower(a.Entry.Name), strings.ToLower(b.Entry.Name))
		}
	case domain.SortBrand:
		cmp = func(a, b domain.ScoredEntry) int {
			return strings.Compare(strings.ToLower(a.Entry.Brand), strings.ToLower(b.Entry.Brand))
		}
	default:
		return
	}

	slices.SortStableFunc(results, cmp)
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
