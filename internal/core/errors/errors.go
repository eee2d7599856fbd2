// Package errors provides centralized error definitions for the application.
// Errors are organized by failure class so the lifecycle can classify them
// with errors.Is at the article boundary.
//
// Naming conventions:
//   - Exported errors (Err*): checked by callers with errors.Is
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Ingestion and validation errors.
var (
	// ErrValidation indicates malformed or insufficient input; rejected
	// before insert with no status churn.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateURL indicates an article with the same URL already
	// exists; ingestion treats it as a silent no-op.
	ErrDuplicateURL = errors.New("duplicate article url")
)

// External service errors (retryable at the article level).
var (
	// ErrExternalService indicates a search/crawl/LLM connectivity or
	// HTTP failure.
	ErrExternalService = errors.New("external service failure")

	// ErrMalformedResponse indicates unparseable or non-conformant LLM
	// output.
	ErrMalformedResponse = errors.New("malformed llm response")
)

// Enrichment errors.
var (
	// ErrNoValidSentences indicates the article body yielded no
	// sentences long enough to embed.
	ErrNoValidSentences = errors.New("no valid sentences in article body")

	// ErrNoTermMatches indicates the vector store returned no domain
	// terms for the article centroid.
	ErrNoTermMatches = errors.New("no matching domain terms")

	// ErrNoIndicators indicates no usable indicators exist to offer
	// the language model.
	ErrNoIndicators = errors.New("no indicators available for analysis")
)

// Persistence errors (integrity-critical, never downgraded).
var (
	// ErrPersistence indicates a storage transaction failure.
	ErrPersistence = errors.New("persistence failure")

	// ErrNotFound is a generic not found error.
	ErrNotFound = errors.New("not found")
)

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
