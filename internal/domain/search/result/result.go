package result

import (
	"time"

	"github.com/kailas-cloud/rentdex/internal/domain/catalog"
)

// Hit is a single fuzzy-index candidate. Lower scores are better matches.
type Hit struct {
	Item  catalog.Item
	Score float64
}

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	Page    int
	Limit   int
	Total   int
	Pages   int
	HasNext bool
	HasPrev bool
}

// NewPagination computes the pagination block for total items split into pages of limit.
// pages = ceil(total/limit), hasNext = page < pages, hasPrev = page > 1.
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{
		Page:    page,
		Limit:   limit,
		Total:   total,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1,
	}
}

// Metadata reports match provenance and timing for one search call.
type Metadata struct {
	// ExactMatches is the number of items returned by the structured query.
	ExactMatches int
	// FuzzyMatches is the number of fuzzy candidates before post-filtering and dedup.
	FuzzyMatches int
	// TotalProcessed is the merged result length.
	TotalProcessed int
	Elapsed        time.Duration
}

// Page is one page of search results.
type Page struct {
	Items      []catalog.Item
	Pagination Pagination
	Metadata   Metadata
}

// Paginate slices items to the requested 1-based page. The returned slice is
// never nil so an empty page encodes as an empty list.
func Paginate(items []catalog.Item, page, limit int) ([]catalog.Item, Pagination) {
	p := NewPagination(page, limit, len(items))

	// Bound page before multiplying so huge page numbers cannot wrap around.
	if page < 1 || limit < 1 || page-1 >= p.Pages {
		return []catalog.Item{}, p
	}
	start := (page - 1) * limit
	end := min(start+limit, len(items))
	return items[start:end], p
}
