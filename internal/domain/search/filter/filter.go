package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/rentdex/internal/domain/catalog"
)

// Spec is the structured filter of a catalog search. Every field is optional;
// a zero Spec matches every item.
type Spec struct {
	text      string
	category  string
	condition catalog.Condition
	city      string
	state     string
	price     PriceRange
	window    *Window
}

// New creates a filter Spec. Empty strings disable the corresponding predicate.
func New(
	text, category string,
	condition catalog.Condition,
	city, state string,
	price PriceRange,
	window *Window,
) Spec {
	return Spec{
		text:      text,
		category:  category,
		condition: condition,
		city:      city,
		state:     state,
		price:     price,
		window:    window,
	}
}

// Text returns the free-text needle.
func (s Spec) Text() string { return s.text }

// Category returns the exact category filter.
func (s Spec) Category() string { return s.category }

// Condition returns the exact condition filter.
func (s Spec) Condition() catalog.Condition { return s.condition }

// City returns the case-insensitive city substring.
func (s Spec) City() string { return s.city }

// State returns the case-insensitive state substring.
func (s Spec) State() string { return s.state }

// Price returns the inclusive daily price bounds.
func (s Spec) Price() PriceRange { return s.price }

// Window returns the requested availability window (nil if none).
func (s Spec) Window() *Window { return s.window }

// HasText reports whether a free-text predicate is present.
func (s Spec) HasText() bool { return s.text != "" }

// WithoutText returns a copy with the free-text predicate removed.
func (s Spec) WithoutText() Spec {
	s.text = ""
	return s
}

// Matches evaluates every structured predicate against it. The free-text
// predicate is not evaluated: fuzzy candidates already answered the text question.
func (s Spec) Matches(it *catalog.Item) bool {
	if !s.price.Contains(it.DailyPrice) {
		return false
	}
	if s.category != "" && it.Category != s.category {
		return false
	}
	if s.condition != "" && it.Condition != s.condition {
		return false
	}
	if s.city != "" && !containsFold(it.City, s.city) {
		return false
	}
	if s.state != "" && !containsFold(it.State, s.state) {
		return false
	}
	if s.window != nil && s.window.Blocked(it.Bookings) {
		return false
	}
	return true
}

// MatchesText reports whether the text needle is a case-insensitive substring
// of the title, description, brand or model. An empty needle matches everything.
func (s Spec) MatchesText(it *catalog.Item) bool {
	if s.text == "" {
		return true
	}
	return containsFold(it.Title, s.text) ||
		containsFold(it.Description, s.text) ||
		containsFold(it.Brand, s.text) ||
		containsFold(it.Model, s.text)
}

// PriceRange holds inclusive lower/upper bounds on the daily price.
type PriceRange struct {
	min *float64
	max *float64
}

// NewPriceRange validates and creates a PriceRange. Either bound may be nil.
func NewPriceRange(minPrice, maxPrice *float64) (PriceRange, error) {
	if minPrice != nil && *minPrice < 0 {
		return PriceRange{}, fmt.Errorf("minPrice must be non-negative")
	}
	if maxPrice != nil && *maxPrice < 0 {
		return PriceRange{}, fmt.Errorf("maxPrice must be non-negative")
	}
	if minPrice != nil && maxPrice != nil && *minPrice > *maxPrice {
		return PriceRange{}, fmt.Errorf("minPrice must not exceed maxPrice")
	}
	return PriceRange{min: minPrice, max: maxPrice}, nil
}

// Min returns the inclusive lower bound.
func (r PriceRange) Min() *float64 { return r.min }

// Max returns the inclusive upper bound.
func (r PriceRange) Max() *float64 { return r.max }

// Contains reports whether price lies within the bounds.
func (r PriceRange) Contains(price float64) bool {
	if r.min != nil && price < *r.min {
		return false
	}
	if r.max != nil && price > *r.max {
		return false
	}
	return true
}

// Window is a requested rental period.
type Window struct {
	from time.Time
	to   time.Time
}

// NewWindow validates and creates a Window. from must be strictly before to.
func NewWindow(from, to time.Time) (Window, error) {
	if from.IsZero() || to.IsZero() {
		return Window{}, fmt.Errorf("availability window requires both start and end")
	}
	if !from.Before(to) {
		return Window{}, fmt.Errorf("availability start must be before end")
	}
	return Window{from: from, to: to}, nil
}

// From returns the window start.
func (w Window) From() time.Time { return w.from }

// To returns the window end.
func (w Window) To() time.Time { return w.to }

// Blocked reports whether any pending or approved booking overlaps the window.
func (w Window) Blocked(bookings []catalog.Booking) bool {
	for _, b := range bookings {
		if b.Status.BlocksAvailability() && Overlaps(w.from, w.to, b) {
			return true
		}
	}
	return false
}

// Overlaps is the interval test shared with the SQL executor:
// not (to < start or from > end). Touching endpoints overlap.
func Overlaps(from, to time.Time, b catalog.Booking) bool {
	return !(to.Before(b.Start) || from.After(b.End))
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
