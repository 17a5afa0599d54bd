package domain

import "errors"

var (
	// ErrInvalidQuery signals a search query that violates its shape invariants.
	// Raised before any I/O.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrDataAccess signals a failed read from the catalog store or the cache backing it.
	ErrDataAccess = errors.New("data access error")
	// ErrIndexBuild signals that refreshing the fuzzy index failed.
	// The underlying ErrDataAccess stays reachable through errors.Is.
	ErrIndexBuild = errors.New("index build failed")
)
