package models

import "errors"

// Sentinel errors distinguish user-visible outcomes from infrastructure
// failures so that callers can branch with errors.Is instead of parsing
// failure text.
var (
	// ErrValidation indicates missing or malformed input. No state was mutated.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound indicates a referenced document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrOrgNotFound indicates a referenced organization does not exist.
	ErrOrgNotFound = errors.New("organization not found")

	// ErrAlreadyExists indicates a uniqueness conflict (organization name, or
	// duplicate document content within one organization).
	ErrAlreadyExists = errors.New("already exists")

	// ErrProviderFailure indicates the embedding or answer provider was
	// unreachable, errored, or timed out.
	ErrProviderFailure = errors.New("provider failure")

	// ErrNoRelevantDocuments indicates a query matched nothing above the
	// similarity threshold. This is a normal outcome, not a system fault.
	ErrNoRelevantDocuments = errors.New("no relevant documents")
)
