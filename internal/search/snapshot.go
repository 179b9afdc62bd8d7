package search

import (
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/storefront/backend/internal/domain"
)

// parallelPrepareThreshold is the catalog size from which field variants
// are computed on a worker pool
const parallelPrepareThreshold = 2000

// prepareChunkSize is the number of entries handed to one pool task
const prepareChunkSize = 256

type preparedEntry struct {
	entry  domain.CatalogEntry
	fields [len(searchableFields)]TextVariants
}

func prepareEntry(e domain.CatalogEntry) preparedEntry {
	return preparedEntry{
		entry: e,
		fields: [len(searchableFields)]TextVariants{
			Variants(e.Name),
			Variants(e.Brand),
			Variants(e.Category),
			Variants(e.Description),
		},
	}
}

// Snapshot is an immutable, pre-normalized copy of the catalog. A snapshot
// is never modified after NewSnapshot returns, so any number of goroutines
// may rank against it; refreshing the catalog means building a new one.
type Snapshot struct {
	version  uint64
	loadedAt time.Time
	entries  []preparedEntry

	vocabOnce sync.Once
	vocab     []string
	vocabSet  map[string]struct{}
}

// SnapshotOption configures snapshot preparation
type SnapshotOption func(*snapshotOptions)

type snapshotOptions struct {
	workers   int
	threshold int
	loadedAt  time.Time
}

// WithWorkers sets the pool size used for large catalogs
func WithWorkers(n int) SnapshotOption {
	return func(o *snapshotOptions) {
		o.workers = n
	}
}

// WithParallelThreshold overrides the catalog size from which preparation
// runs on the pool
func WithParallelThreshold(n int) SnapshotOption {
	return func(o *snapshotOptions) {
		o.threshold = n
	}
}

// WithLoadedAt records when the catalog was fetched
func WithLoadedAt(t time.Time) SnapshotOption {
	return func(o *snapshotOptions) {
		o.loadedAt = t
	}
}

// NewSnapshot copies entries and precomputes the normalized variants of
// every searchable field
func NewSnapshot(version uint64, entries []domain.CatalogEntry, opts ...SnapshotOption) *Snapshot {
	o := snapshotOptions{
		workers:   runtime.NumCPU(),
		threshold: parallelPrepareThreshold,
	}
	for _, opt := range opts {
		opt(&o)
	}

	prepared := make([]preparedEntry, len(entries))
	if len(entries) >= o.threshold && o.workers > 1 {
		prepareParallel(entries, prepared, o.workers)
	} else {
		prepareRange(entries, prepared, 0, len(entries))
	}

	return &Snapshot{
		version:  version,
		loadedAt: o.loadedAt,
		entries:  prepared,
	}
}

func prepareRange(src []domain.CatalogEntry, dst []preparedEntry, from, to int) {
	for i := from; i < to; i++ {
		dst[i] = prepareEntry(src[i])
	}
}

// prepareParallel fills dst in chunks on an ants pool. Chunks that cannot
// be submitted are prepared on the calling goroutine, so the result is
// always complete and identical to sequential preparation.
func prepareParallel(src []domain.CatalogEntry, dst []preparedEntry, workers int) {
	pool, err := ants.NewPool(workers)
	if err != nil {
		prepareRange(src, dst, 0, len(src))
		return
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for from := 0; from < len(src); from += prepareChunkSize {
		to := min(from+prepareChunkSize, len(src))
		wg.Add(1)
		task := func() {
			defer wg.Done()
			prepareRange(src, dst, from, to)
		}
		if err := pool.Submit(task); err != nil {
			task()
		}
	}
	wg.Wait()
}

// Version returns the snapshot's monotonically increasing version
func (s *Snapshot) Version() uint64 {
	return s.version
}

// Size returns the number of catalog entries
func (s *Snapshot) Size() int {
	return len(s.entries)
}

// Info summarizes the snapshot for health and refresh responses
func (s *Snapshot) Info() domain.CatalogInfo {
	return domain.CatalogInfo{
		Version:  s.version,
		Size:     len(s.entries),
		LoadedAt: s.loadedAt,
	}
}

// Entries returns a copy of the catalog entries in catalog order
func (s *Snapshot) Entries() []domain.CatalogEntry {
	out := make([]domain.CatalogEntry, len(s.entries))
	for i := range s.entries {
		out[i] = s.entries[i].entry
	}
	return out
}
