package domain

import "errors"

var (
	// ErrItemNotFound signals a missing extracted sentence.
	ErrItemNotFound = errors.New("item not found")
	// ErrEmptySentence signals a blank or whitespace-only sentence.
	ErrEmptySentence = errors.New("sentence must not be empty")
	// ErrInvalidFilter signals a malformed filter clause.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrInvalidOperator signals operator keys that match no predicate signature.
	ErrInvalidOperator = errors.New("invalid keys for operator")
	// ErrInvalidQuery signals a malformed list query (projection, paging or sort).
	ErrInvalidQuery = errors.New("invalid query")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)
