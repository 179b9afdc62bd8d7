package search

import (
	"slices"
	"strings"

	"github.com/storefront/backend/internal/domain"
)

// Rank scores every catalog entry against the query and returns those with
// a positive score, best first. Entries with equal scores keep their
// catalog order. An empty query or catalog yields an empty slice.
//
// Rank never modifies catalog and is safe for concurrent use.
func Rank(query string, catalog []domain.CatalogEntry) []domain.ScoredEntry {
	if strings.TrimSpace(query) == "" || len(catalog) == 0 {
		return []domain.ScoredEntry{}
	}
	return RankSnapshot(query, NewSnapshot(0, catalog))
}

// RankSnapshot is Rank over a pre-normalized catalog snapshot
func RankSnapshot(query string, snapshot *Snapshot) []domain.ScoredEntry {
	results := []domain.ScoredEntry{}
	if snapshot == nil || len(snapshot.entries) == 0 {
		return results
	}

	q := NewQuery(query)
	if q.IsEmpty() {
		return results
	}

	for i := range snapshot.entries {
		e := &snapshot.entries[i]
		score, field := scoreEntry(&q, e)
		if score <= 0 {
			continue
		}
		results = append(results, domain.ScoredEntry{
			Entry:        e.entry,
			Score:        score,
			MatchedField: field,
		})
	}

	slices.SortStableFunc(results, func(a, b domain.ScoredEntry) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	return results
}
