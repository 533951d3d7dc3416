package extractor

import "github.com/suthipongg/service-sentence-extractor/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrItemNotFound           = domain.ErrItemNotFound
	ErrEmptySentence          = domain.ErrEmptySentence
	ErrInvalidFilter          = domain.ErrInvalidFilter
	ErrInvalidOperator        = domain.ErrInvalidOperator
	ErrInvalidQuery           = domain.ErrInvalidQuery
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
)
