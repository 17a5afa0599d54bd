package search

import (
	"sort"

	"github.com/kailas-cloud/rentdex/internal/domain/catalog"
	"github.com/kailas-cloud/rentdex/internal/domain/search/filter"
	"github.com/kailas-cloud/rentdex/internal/domain/search/result"
	"github.com/kailas-cloud/rentdex/internal/domain/search/sortby"
)

// merge appends fuzzy hits that pass the structured predicates and were not
// already matched exactly. Exact items keep store order, fuzzy items keep
// relevance order. The text predicate is not re-applied to fuzzy hits.
func merge(exact []catalog.Item, hits []result.Hit, spec filter.Spec) []catalog.Item {
	seen := make(map[string]struct{}, len(exact))
	for i := range exact {
		seen[exact[i].ID] = struct{}{}
	}

	merged := make([]catalog.Item, 0, len(exact)+len(hits))
	merged = append(merged, exact...)
	for i := range hits {
		it := &hits[i].Item
		if _, dup := seen[it.ID]; dup {
			continue
		}
		if !spec.Matches(it) {
			continue
		}
		seen[it.ID] = struct{}{}
		merged = append(merged, *it)
	}
	return merged
}

// sortItems orders items in place. Relevance and distance keep the incoming order.
func sortItems(items []catalog.Item, key sortby.Key) {
	if key.PreservesOrder() {
		return
	}
	var less func(a, b *catalog.Item) bool
	switch key {
	case sortby.PriceLow:
		less = func(a, b *catalog.Item) bool { return a.DailyPrice < b.DailyPrice }
	case sortby.PriceHigh:
		less = func(a, b *catalog.Item) bool { return a.DailyPrice > b.DailyPrice }
	case sortby.Newest:
		less = func(a, b *catalog.Item) bool { return a.CreatedAt.After(b.CreatedAt) }
	case sortby.Rating:
		less = func(a, b *catalog.Item) bool { return a.RatingOrZero() > b.RatingOrZero() }
	default:
		return
	}
	sort.SliceStable(items, func(i, j int) bool { return less(&items[i], &items[j]) })
}
