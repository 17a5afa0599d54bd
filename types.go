package rentdex

import (
	"github.com/kailas-cloud/rentdex/internal/domain/catalog"
	"github.com/kailas-cloud/rentdex/internal/domain/search/query"
	"github.com/kailas-cloud/rentdex/internal/domain/search/result"
	"github.com/kailas-cloud/rentdex/internal/domain/search/sortby"
)

// Query is a search request. Zero values mean "no constraint"; Page and
// Limit default to 1 and 20.
type Query = query.Params

// Result is one page of search results with pagination and match metadata.
type Result = result.Page

// Pagination describes where a page sits in the full result set.
type Pagination = result.Pagination

// Metadata reports match provenance and timing.
type Metadata = result.Metadata

// Item is one rentable catalog listing.
type Item = catalog.Item

// Owner is the listing owner summary.
type Owner = catalog.Owner

// Booking is a rental window on an item.
type Booking = catalog.Booking

// Condition is the physical state of a listed item.
type Condition = catalog.Condition

// Condition values.
const (
	ConditionNew     = catalog.ConditionNew
	ConditionLikeNew = catalog.ConditionLikeNew
	ConditionGood    = catalog.ConditionGood
	ConditionFair    = catalog.ConditionFair
	ConditionPoor    = catalog.ConditionPoor
)

// SortBy values accepted in Query.SortBy.
const (
	SortNewest    = string(sortby.Newest)
	SortPriceLow  = string(sortby.PriceLow)
	SortPriceHigh = string(sortby.PriceHigh)
	SortRating    = string(sortby.Rating)
	SortDistance  = string(sortby.Distance)
	SortRelevance = string(sortby.Relevance)
)

// Query limits.
const (
	MaxLimit      = query.MaxLimit
	MaxTextLength = query.MaxTextLength
)
