package search

import (
	"fmt"
	"testing"
	"time"

	"github.com/storefront/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func largeCatalog(n int) []domain.CatalogEntry {
	brands := []string{"Nike", "Adidas", "Puma", "Asics", "ნაიკი"}
	kinds := []string{"Runner", "Trainer", "Boot", "სავარჯიშო"}
	out := make([]domain.CatalogEntry, n)
	for i := range out {
		out[i] = domain.CatalogEntry{
			ID:       fmt.Sprintf("%d", i),
			Name:     fmt.Sprintf("%s %d", kinds[i%len(kinds)], i),
			Brand:    brands[i%len(brands)],
			Category: "Shoes",
		}
	}
	return out
}

func TestNewSnapshot(t *testing.T) {
	loadedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	catalog := sampleCatalog()

	snapshot := NewSnapshot(7, catalog, WithLoadedAt(loadedAt))

	assert.Equal(t, uint64(7), snapshot.Version())
	assert.Equal(t, len(catalog), snapshot.Size())
	assert.Equal(t, loadedAt, snapshot.Info().LoadedAt)
	assert.Equal(t, domain.CatalogInfo{Version: 7, Size: len(catalog), LoadedAt: loadedAt}, snapshot.Info())
	assert.Equal(t, catalog, snapshot.Entries())
}

func TestNewSnapshot_CopiesEntries(t *testing.T) {
	catalog := sampleCatalog()
	snapshot := NewSnapshot(1, catalog)

	catalog[0].Name = "changed after load"

	assert.Equal(t, "Nike Air Max 90", snapshot.Entries()[0].Name)
}

func TestNewSnapshot_ParallelMatchesSequential(t *testing.T) {
	catalog := largeCatalog(3000)

	sequential := NewSnapshot(1, catalog, WithWorkers(1))
	parallel := NewSnapshot(1, catalog, WithWorkers(4), WithParallelThreshold(10))

	require.Equal(t, sequential.Size(), parallel.Size())
	for _, q := range []string{"runner", "naiki", "სავარჯიშო 12", "boot 2999"} {
		assert.Equal(t, RankSnapshot(q, sequential), RankSnapshot(q, parallel), "query %q", q)
	}
}

func TestSnapshot_Suggest(t *testing.T) {
	snapshot := NewSnapshot(1, sampleCatalog())

	t.Run("suggests close vocabulary", func(t *testing.T) {
		got := snapshot.Suggest("pegasos", 2, 5)
		assert.Contains(t, got, "pegasus")
	})

	t.Run("orders by distance", func(t *testing.T) {
		got := snapshot.Suggest("nikee", 2, 5)
		require.NotEmpty(t, got)
		assert.Equal(t, "nike", got[0])
	})

	t.Run("known words need no suggestion", func(t *testing.T) {
		assert.Empty(t, snapshot.Suggest("nike", 2, 5))
	})

	t.Run("short words are ignored", func(t *testing.T) {
		assert.Empty(t, snapshot.Suggest("ni", 2, 5))
	})

	t.Run("respects limit", func(t *testing.T) {
		assert.LessOrEqual(t, len(snapshot.Suggest("runing shoe", 2, 1)), 1)
	})

	t.Run("disabled by zero distance", func(t *testing.T) {
		assert.Nil(t, snapshot.Suggest("pegasos", 0, 5))
	})
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		s1, s2 string
		want   int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"nike", "nike", 0},
		{"nkie", "nike", 2},
		{"pegasos", "pegasus", 1},
		{"kitten", "sitting", 3},
		{"სავარჯიშო", "სავარჯისო", 1},
	}

	for _, tt := range tests {
		t.Run(tt.s1+"/"+tt.s2, func(t *testing.T) {
			assert.Equal(t, tt.want, levenshteinDistance(tt.s1, tt.s2))
		})
	}
}
