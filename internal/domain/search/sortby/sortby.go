package sortby

// Key is the ordering applied to merged search results.
type Key string

// Sort key constants.
const (
	Newest    Key = "newest"
	PriceLow  Key = "price-low"
	PriceHigh Key = "price-high"
	Rating    Key = "rating"
	// Distance is accepted for API compatibility but leaves the order unchanged.
	Distance Key = "distance"
	// Relevance keeps the merge order: exact matches first, then fuzzy matches by score.
	Relevance Key = "relevance"
)

// IsValid checks if the key is one of the supported values.
func (k Key) IsValid() bool {
	switch k {
	case Newest, PriceLow, PriceHigh, Rating, Distance, Relevance:
		return true
	}
	return false
}

// PreservesOrder reports whether sorting by k is a pass-through.
func (k Key) PreservesOrder() bool {
	return k == Relevance || k == Distance
}

// Default returns the key used when the caller does not pick one.
func Default(hasText bool) Key {
	if hasText {
		return Relevance
	}
	return Newest
}
