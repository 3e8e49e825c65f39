package usecase

import "errors"

var (
	// ErrInvalidInput marks caller mistakes: unknown parameter values,
	// malformed dates, out-of-range pagination.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks lookups whose target does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized marks requests without a valid credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrDependencyUnavailable marks failures of downstream systems the
	// service depends on (database, upstream football API).
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
