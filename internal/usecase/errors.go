package usecase

import "github.com/draftedge/draftedge/internal/apperr"

// Sentinel errors shared across usecases, re-exported from apperr so
// infrastructure packages can wrap the same values without importing this
// package. errors.Is works across both names.
var (
	ErrInvalidInput          = apperr.ErrInvalidInput
	ErrNotFound              = apperr.ErrNotFound
	ErrUnauthorized          = apperr.ErrUnauthorized
	ErrDataNotReady          = apperr.ErrDataNotReady
	ErrDependencyUnavailable = apperr.ErrDependencyUnavailable
)
