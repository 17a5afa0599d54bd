package query

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kailas-cloud/rentdex/internal/domain/catalog"
	"github.com/kailas-cloud/rentdex/internal/domain/search/filter"
	"github.com/kailas-cloud/rentdex/internal/domain/search/sortby"
)

// Search parameter limits.
const (
	// MaxTextLength is the maximum free-text query length in runes.
	MaxTextLength = 256
	DefaultPage   = 1
	DefaultLimit  = 20
	MaxLimit      = 50
)

// Params is the raw caller request before validation.
type Params struct {
	Text          string
	Category      string
	Condition     string
	City          string
	State         string
	MinPrice      *float64
	MaxPrice      *float64
	AvailableFrom *time.Time
	AvailableTo   *time.Time
	SortBy        string
	Page          int
	Limit         int
}

// Query is a validated catalog search request.
type Query struct {
	spec   filter.Spec
	sortBy sortby.Key
	page   int
	limit  int
}

// New validates and normalizes search parameters.
// Defaults: page=1, limit=20, sort=relevance with text and newest without.
func New(p Params) (Query, error) {
	text := strings.TrimSpace(p.Text)
	if utf8.RuneCountInString(text) > MaxTextLength {
		return Query{}, fmt.Errorf("query too long (max %d chars)", MaxTextLength)
	}

	page := p.Page
	if page == 0 {
		page = DefaultPage
	}
	if page < 1 {
		return Query{}, fmt.Errorf("page must be at least 1, got %d", p.Page)
	}

	limit := p.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 1 || limit > MaxLimit {
		return Query{}, fmt.Errorf("limit must be between 1 and %d, got %d", MaxLimit, p.Limit)
	}

	key := sortby.Key(strings.TrimSpace(p.SortBy))
	if key == "" {
		key = sortby.Default(text != "")
	}
	if !key.IsValid() {
		return Query{}, fmt.Errorf("invalid sortBy: %q", p.SortBy)
	}

	cond := catalog.Condition(strings.TrimSpace(p.Condition))
	if cond != "" && !cond.IsValid() {
		return Query{}, fmt.Errorf("invalid condition: %q", p.Condition)
	}

	price, err := filter.NewPriceRange(p.MinPrice, p.MaxPrice)
	if err != nil {
		return Query{}, err
	}

	var window *filter.Window
	if p.AvailableFrom != nil || p.AvailableTo != nil {
		if p.AvailableFrom == nil || p.AvailableTo == nil {
			return Query{}, fmt.Errorf("availability window requires both startDate and endDate")
		}
		w, err := filter.NewWindow(*p.AvailableFrom, *p.AvailableTo)
		if err != nil {
			return Query{}, err
		}
		window = &w
	}

	spec := filter.New(
		text,
		strings.TrimSpace(p.Category),
		cond,
		strings.TrimSpace(p.City),
		strings.TrimSpace(p.State),
		price,
		window,
	)

	return Query{spec: spec, sortBy: key, page: page, limit: limit}, nil
}

// Text returns the trimmed free-text query.
func (q *Query) Text() string { return q.spec.Text() }

// HasText reports whether the fuzzy path applies.
func (q *Query) HasText() bool { return q.spec.HasText() }

// Filter returns the full filter spec, text included.
func (q *Query) Filter() filter.Spec { return q.spec }

// SortBy returns the ordering key.
func (q *Query) SortBy() sortby.Key { return q.sortBy }

// Page returns the 1-based page number.
func (q *Query) Page() int { return q.page }

// Limit returns the page size.
func (q *Query) Limit() int { return q.limit }
