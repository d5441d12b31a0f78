package domain

import "errors"

var (
	// ErrCatalogUnavailable signals that the school catalog source could not
	// be reached or returned an unusable payload. Fatal for a search run.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrScoringUnavailable signals a scorer transport failure or timeout.
	// Per-record, non-fatal: the affected school stays unscored.
	ErrScoringUnavailable = errors.New("scoring unavailable")
	// ErrScoringMalformed signals that the scorer reply could not be parsed
	// into the expected shape. Per-record, non-fatal.
	ErrScoringMalformed = errors.New("scoring response malformed")
	// ErrScorerNotConfigured signals that no scorer credential is configured.
	// Surfaced distinctly so operators can tell missing setup from outages.
	ErrScorerNotConfigured = errors.New("scorer not configured")
	// ErrInvalidInput signals a request that fails validation.
	ErrInvalidInput = errors.New("invalid input")
)
