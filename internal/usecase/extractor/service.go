// Package extractor orchestrates sentence submission: existence-checked
// deduplication, embedding, persistence in both stores, and deferred
// counter increments.
package extractor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/suthipongg/service-sentence-extractor/internal/domain"
	"github.com/suthipongg/service-sentence-extractor/internal/domain/filter"
	"github.com/suthipongg/service-sentence-extractor/internal/domain/pagination"
	"github.com/suthipongg/service-sentence-extractor/internal/metrics"
)

// existsCheckConcurrency bounds parallel search-index lookups in the batch path.
const existsCheckConcurrency = 8

// Service handles sentence extraction with dedup against the search index.
type Service struct {
	docs     DocumentStore
	index    SearchIndex
	encoder  Encoder
	counters CounterSink
	logger   *zap.Logger
}

// New creates an extractor service. counters may be nil; increments are
// then dropped silently.
func New(docs DocumentStore, index SearchIndex, encoder Encoder, counters CounterSink, logger *zap.Logger) *Service {
	return &Service{
		docs:     docs,
		index:    index,
		encoder:  encoder,
		counters: counters,
		logger:   logger,
	}
}

// Submit stores a sentence unless an identical one already exists.
// A known sentence is returned with its counter optimistically bumped while
// the real increments run in the background. Returns true when a new record
// was created. A zero createdAt defaults to now.
func (s *Service) Submit(ctx context.Context, sentence string, createdAt time.Time) (domain.ExtractedSentence, bool, error) {
	rec, err := domain.NewExtractedSentence(sentence, createdAt)
	if err != nil {
		return domain.ExtractedSentence{}, false, err
	}

	found, ok, err := s.index.BySentence(ctx, rec.Sentence)
	if err != nil {
		return domain.ExtractedSentence{}, false, fmt.Errorf("existence check: %w", err)
	}
	if ok {
		metrics.SentencesSubmittedTotal.WithLabelValues("seen").Inc()
		s.enqueueIncrement(found.ID)
		found.Counter++
		return found, false, nil
	}

	result, err := s.encoder.Encode(ctx, []string{rec.Sentence})
	if err != nil {
		return domain.ExtractedSentence{}, false, fmt.Errorf("embed sentence: %w", err)
	}
	if len(result.Vectors) != 1 {
		return domain.ExtractedSentence{}, false, fmt.Errorf("expected 1 vector, got %d: %w",
			len(result.Vectors), domain.ErrEmbeddingProviderError)
	}
	rec.SentenceVector = result.Vectors[0]

	if err := s.docs.Insert(ctx, &rec); err != nil {
		return domain.ExtractedSentence{}, false, fmt.Errorf("insert record: %w", err)
	}
	// Mirror into the search index; the document store already holds the
	// record, so an index failure is logged instead of failing the request.
	if err := s.index.Index(ctx, &rec); err != nil {
		s.logger.Error("Failed to index sentence",
			zap.String("id", rec.ID),
			zap.Error(err),
		)
	}

	metrics.SentencesSubmittedTotal.WithLabelValues("new").Inc()
	return rec, true, nil
}

// Get returns a record by identity.
func (s *Service) Get(ctx context.Context, id string) (domain.ExtractedSentence, error) {
	rec, err := s.docs.FindByID(ctx, id)
	if err != nil {
		return domain.ExtractedSentence{}, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// Delete removes a record from both stores and returns it. The document
// store is authoritative for the not-found result.
func (s *Service) Delete(ctx context.Context, id string) (domain.ExtractedSentence, error) {
	rec, err := s.docs.FindByID(ctx, id)
	if err != nil {
		return domain.ExtractedSentence{}, fmt.Errorf("get record: %w", err)
	}
	if err := s.docs.Delete(ctx, id); err != nil {
		return domain.ExtractedSentence{}, fmt.Errorf("delete record: %w", err)
	}
	if err := s.index.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete from search index",
			zap.String("id", id),
			zap.Error(err),
		)
	}
	return rec, nil
}

// List returns projected records matching the filter plus page metadata.
// Count and page fetch are separate reads, not a snapshot.
func (s *Service) List(ctx context.Context, fq filter.Query) ([]map[string]any, pagination.Page, error) {
	total, err := s.docs.Count(ctx, fq)
	if err != nil {
		return nil, pagination.Page{}, fmt.Errorf("count records: %w", err)
	}

	recs, err := s.docs.Find(ctx, fq)
	if err != nil {
		return nil, pagination.Page{}, fmt.Errorf("list records: %w", err)
	}

	proj := fq.Projection()
	items := make([]map[string]any, 0, len(recs))
	for _, rec := range recs {
		items = append(items, proj.Apply(rec.Document()))
	}

	return items, pagination.New(fq.Page(), fq.PageSize(), total), nil
}

// Vectors returns one vector per text, reusing stored vectors for known
// sentences and embedding all misses in a single call. Nothing is persisted.
func (s *Service) Vectors(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(existsCheckConcurrency)
	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			rec, ok, err := s.index.BySentence(gctx, text)
			if err != nil {
				return fmt.Errorf("existence check %q: %w", text, err)
			}
			if ok && len(rec.SentenceVector) > 0 {
				vectors[i] = rec.SentenceVector
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var missTexts []string
	var missIdx []int
	for i, vec := range vectors {
		if vec == nil {
			missTexts = append(missTexts, texts[i])
			missIdx = append(missIdx, i)
		}
	}
	if len(missTexts) == 0 {
		return vectors, nil
	}

	result, err := s.encoder.Encode(ctx, missTexts)
	if err != nil {
		return nil, fmt.Errorf("embed texts: %w", err)
	}
	if len(result.Vectors) != len(missTexts) {
		return nil, fmt.Errorf("expected %d vectors, got %d: %w",
			len(missTexts), len(result.Vectors), domain.ErrEmbeddingProviderError)
	}
	for j, i := range missIdx {
		vectors[i] = result.Vectors[j]
	}

	return vectors, nil
}

// Encode vectorizes texts without touching either store.
func (s *Service) Encode(ctx context.Context, texts []string) (domain.EncodeResult, error) {
	return s.encoder.Encode(ctx, texts)
}

// Warmup issues one throwaway embedding call so the provider connection and
// model are hot before real traffic arrives.
func (s *Service) Warmup(ctx context.Context) error {
	if _, err := s.encoder.Encode(ctx, []string{"warmup"}); err != nil {
		return fmt.Errorf("warmup embed: %w", err)
	}
	return nil
}

func (s *Service) enqueueIncrement(id string) {
	if s.counters == nil {
		return
	}
	if !s.counters.Enqueue(id, 1) {
		s.logger.Warn("Counter queue full, increment dropped", zap.String("id", id))
	}
}
