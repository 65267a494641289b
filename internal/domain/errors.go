package domain

import "errors"

// Domain errors
var (
	// ErrPlayerNotFound is internal to row lookups; the public GetPlayer
	// operation materializes a default row instead of surfacing it.
	ErrPlayerNotFound = errors.New("player not found")

	// ErrInvalidUpdate rejects a submission whose numeric fields cannot be
	// coerced. The triggering call writes nothing.
	ErrInvalidUpdate = errors.New("invalid player update")

	ErrInvalidRequest = errors.New("invalid request")
	ErrInternalError  = errors.New("internal server error")
)
