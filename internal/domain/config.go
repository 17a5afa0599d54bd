package domain

import "time"

// KeyPrefix namespaces every cache key written by rentdex.
const KeyPrefix = "rentdex:"

// SearchConfig holds engine tuning that is not exposed to API clients.
type SearchConfig struct {
	// Staleness is the age after which the fuzzy index is rebuilt on the next search.
	Staleness time.Duration
	// SnapshotTTL is how long a full-catalog snapshot lives in the cache.
	SnapshotTTL time.Duration
}

// DefaultSearchConfig returns the defaults used when nothing is configured.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		Staleness:   5 * time.Minute,
		SnapshotTTL: 30 * time.Minute,
	}
}
