package extractor

import (
	"context"

	"github.com/suthipongg/service-sentence-extractor/internal/domain"
	"github.com/suthipongg/service-sentence-extractor/internal/domain/filter"
)

// DocumentStore is the record storage contract.
type DocumentStore interface {
	Insert(ctx context.Context, rec *domain.ExtractedSentence) error
	FindByID(ctx context.Context, id string) (domain.ExtractedSentence, error)
	Delete(ctx context.Context, id string) error
	IncrementCounter(ctx context.Context, id string, by int64) error
	Count(ctx context.Context, fq filter.Query) (int, error)
	Find(ctx context.Context, fq filter.Query) ([]domain.ExtractedSentence, error)
}

// SearchIndex mirrors records for exact-match lookup and reporting.
type SearchIndex interface {
	Index(ctx context.Context, rec *domain.ExtractedSentence) error
	Delete(ctx context.Context, id string) error
	BySentence(ctx context.Context, sentence string) (domain.ExtractedSentence, bool, error)
	IncrementCounter(ctx context.Context, id string, by int64) error
}

// Encoder vectorizes text.
type Encoder interface {
	Encode(ctx context.Context, texts []string) (domain.EncodeResult, error)
}

// CounterSink accepts deferred counter increments.
type CounterSink interface {
	Enqueue(id string, by int64) bool
}
