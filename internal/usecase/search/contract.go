package search

import (
	"context"

	"github.com/kailas-cloud/rentdex/internal/domain/catalog"
	"github.com/kailas-cloud/rentdex/internal/domain/search/filter"
	"github.com/kailas-cloud/rentdex/internal/domain/search/result"
)

// CatalogQuerier runs structured predicates against the persistent store.
// Results come back in store order.
type CatalogQuerier interface {
	Query(ctx context.Context, spec filter.Spec) ([]catalog.Item, error)
}

// SnapshotSource supplies full catalog snapshots for index builds.
type SnapshotSource interface {
	Snapshot(ctx context.Context) ([]catalog.Item, error)
	Invalidate(ctx context.Context) error
}

// FuzzyIndex answers approximate text queries over one snapshot.
type FuzzyIndex interface {
	Search(text string) []result.Hit
	Len() int
}

// IndexBuilder turns a snapshot into a FuzzyIndex.
type IndexBuilder interface {
	Build(items []catalog.Item) FuzzyIndex
}

// IndexBuilderFunc adapts a function to IndexBuilder.
type IndexBuilderFunc func(items []catalog.Item) FuzzyIndex

// Build calls f(items).
func (f IndexBuilderFunc) Build(items []catalog.Item) FuzzyIndex { return f(items) }
