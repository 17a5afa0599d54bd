// Package api defines the HTTP contract of the search service: wire models,
// the server interface, and the chi route binding.
package api

import "time"

// ErrorResponseCode is a stable machine-readable error code.
type ErrorResponseCode string

// ErrorResponseCode values.
const (
	ErrorResponseCodeBadRequest       ErrorResponseCode = "bad_request"
	ErrorResponseCodeUnauthorized     ErrorResponseCode = "unauthorized"
	ErrorResponseCodeRateLimited      ErrorResponseCode = "rate_limited"
	ErrorResponseCodeInvalidQuery     ErrorResponseCode = "invalid_query"
	ErrorResponseCodeIndexUnavailable ErrorResponseCode = "index_unavailable"
	ErrorResponseCodeDataAccessError  ErrorResponseCode = "data_access_error"
	ErrorResponseCodeInternalError    ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// SearchItemsParams are the query parameters of GET /items/search.
type SearchItemsParams struct {
	Q         *string  `form:"q,omitempty" json:"q,omitempty"`
	Category  *string  `form:"category,omitempty" json:"category,omitempty"`
	Condition *string  `form:"condition,omitempty" json:"condition,omitempty"`
	City      *string  `form:"city,omitempty" json:"city,omitempty"`
	State     *string  `form:"state,omitempty" json:"state,omitempty"`
	MinPrice  *float64 `form:"minPrice,omitempty" json:"minPrice,omitempty"`
	MaxPrice  *float64 `form:"maxPrice,omitempty" json:"maxPrice,omitempty"`
	// StartDate and EndDate accept RFC 3339 timestamps or YYYY-MM-DD dates.
	StartDate *string `form:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate   *string `form:"endDate,omitempty" json:"endDate,omitempty"`
	SortBy    *string `form:"sortBy,omitempty" json:"sortBy,omitempty"`
	Page      *int    `form:"page,omitempty" json:"page,omitempty"`
	Limit     *int    `form:"limit,omitempty" json:"limit,omitempty"`
}

// Owner is the listing owner summary.
type Owner struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Item is one catalog listing in a search response.
type Item struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	DailyPrice    float64   `json:"dailyPrice"`
	WeeklyPrice   *float64  `json:"weeklyPrice,omitempty"`
	MonthlyPrice  *float64  `json:"monthlyPrice,omitempty"`
	Category      string    `json:"category"`
	Brand         string    `json:"brand,omitempty"`
	Model         string    `json:"model,omitempty"`
	Condition     string    `json:"condition"`
	City          string    `json:"city"`
	State         string    `json:"state"`
	AverageRating *float64  `json:"averageRating"`
	ReviewCount   int       `json:"reviewCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	Owner         Owner     `json:"owner"`
}

// Pagination describes where the page sits in the full result set.
type Pagination struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	Pages   int  `json:"pages"`
	HasNext bool `json:"hasNext"`
	HasPrev bool `json:"hasPrev"`
}

// SearchMetadata reports match provenance and timing.
type SearchMetadata struct {
	ExactMatches   int   `json:"exactMatches"`
	FuzzyMatches   int   `json:"fuzzyMatches"`
	TotalProcessed int   `json:"totalProcessed"`
	SearchTimeMs   int64 `json:"searchTimeMs"`
}

// SearchResponse is the body of a successful GET /items/search.
type SearchResponse struct {
	Data           []Item         `json:"data"`
	Pagination     Pagination     `json:"pagination"`
	SearchMetadata SearchMetadata `json:"searchMetadata"`
}

// HealthResponseStatus is the aggregated health state.
type HealthResponseStatus string

// HealthResponseChecks is a single component's health state.
type HealthResponseChecks string

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  HealthResponseStatus            `json:"status"`
	Checks  map[string]HealthResponseChecks `json:"checks"`
	Version string                          `json:"version,omitempty"`
}
