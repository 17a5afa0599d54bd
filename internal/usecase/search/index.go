package search

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/rentdex/internal/domain"
	"github.com/kailas-cloud/rentdex/internal/metrics"
)

const rebuildKey = "catalog"

type builtIndex struct {
	index      FuzzyIndex
	builtAt    time.Time
	generation uint64
}

// indexHolder owns the shared fuzzy index. Concurrent callers that find it stale
// share one rebuild; invalidation bumps the generation so an index built from
// a pre-invalidation snapshot is never treated as fresh.
type indexHolder struct {
	source    SnapshotSource
	builder   IndexBuilder
	staleness time.Duration
	now       func() time.Time
	metrics   *metrics.Search

	current    atomic.Pointer[builtIndex]
	generation atomic.Uint64
	group      singleflight.Group
}

func newIndexHolder(
	src SnapshotSource, b IndexBuilder, staleness time.Duration, now func() time.Time, m *metrics.Search,
) *indexHolder {
	return &indexHolder{source: src, builder: b, staleness: staleness, now: now, metrics: m}
}

// get returns a fresh index, rebuilding it if absent, stale, or invalidated.
func (h *indexHolder) get(ctx context.Context) (FuzzyIndex, error) {
	if b := h.current.Load(); h.fresh(b) {
		return b.index, nil
	}

	// Rebuild ignores caller cancellation; each waiter still honors its own ctx.
	ch := h.group.DoChan(rebuildKey, func() (any, error) {
		if b := h.current.Load(); h.fresh(b) {
			return b.index, nil
		}
		return h.rebuild(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexBuild, ctx.Err())
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(FuzzyIndex), nil
	}
}

func (h *indexHolder) fresh(b *builtIndex) bool {
	return b != nil &&
		b.generation == h.generation.Load() &&
		h.now().Sub(b.builtAt) < h.staleness
}

func (h *indexHolder) rebuild(ctx context.Context) (FuzzyIndex, error) {
	gen := h.generation.Load()
	start := time.Now()

	items, err := h.source.Snapshot(ctx)
	if err != nil {
		h.recordRebuild("error", start, -1)
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexBuild, err)
	}

	idx := h.builder.Build(items)
	if h.generation.Load() == gen {
		h.current.Store(&builtIndex{index: idx, builtAt: h.now(), generation: gen})
	}
	h.recordRebuild("ok", start, idx.Len())
	return idx, nil
}

// invalidate forces the next get to rebuild.
func (h *indexHolder) invalidate() {
	h.generation.Add(1)
	h.current.Store(nil)
}

func (h *indexHolder) recordRebuild(result string, start time.Time, items int) {
	if h.metrics == nil {
		return
	}
	h.metrics.Rebuilds.WithLabelValues(result).Inc()
	h.metrics.BuildDuration.Observe(time.Since(start).Seconds())
	if items >= 0 {
		h.metrics.IndexItems.Set(float64(items))
	}
}
