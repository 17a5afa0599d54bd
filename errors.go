package rentdex

import "github.com/kailas-cloud/rentdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidQuery = domain.ErrInvalidQuery
	ErrDataAccess   = domain.ErrDataAccess
	ErrIndexBuild   = domain.ErrIndexBuild
)
