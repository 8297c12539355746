// Package apperr holds the sentinel errors shared across layers. It sits
// below both the usecases and the infrastructure clients so either side can
// wrap a sentinel without importing the other.
package apperr

import "errors"

// Wrap with fmt.Errorf("%w: ...") to add detail; handlers map these onto
// HTTP statuses.
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDataNotReady          = errors.New("data not ready")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
