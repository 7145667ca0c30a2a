package domain

import "errors"

// Error kinds surfaced across component boundaries. Callers match with
// errors.Is; components wrap these with call detail via fmt.Errorf and %w.
var (
	// ErrInvalidDimension reports a vector whose dimension does not match
	// the index. This is a configuration mismatch, not a runtime condition.
	ErrInvalidDimension = errors.New("vector dimension mismatch")

	// ErrEmbeddingUnavailable reports that the embedding service failed or
	// timed out. Retrieval fails closed rather than returning stale results.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGenerationFailed reports that the generation service failed or
	// timed out. The user's turn is persisted before this is surfaced.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrContextOverflow reports that the query alone exceeds the context
	// budget; user-facing as "query too long".
	ErrContextOverflow = errors.New("query exceeds context budget")

	// ErrEmptyPreferences reports a recommendation request for a session
	// with no stored preferences to rank against.
	ErrEmptyPreferences = errors.New("no preferences set for session")
)
