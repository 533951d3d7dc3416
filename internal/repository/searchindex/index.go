// Package searchindex maintains the bleve index of extracted sentences:
// exact-match existence checks, list queries and time-bucketed aggregation.
// The full record, vector included, travels in a stored-only _source field
// next to the indexed fields.
package searchindex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
	"go.uber.org/zap"

	"github.com/suthipongg/service-sentence-extractor/internal/domain"
	"github.com/suthipongg/service-sentence-extractor/internal/domain/filter"
)

const (
	fieldSentence = "sentence"
	fieldKeyword  = "sentence.keyword"
	fieldCreated  = "created_at"
	fieldCounter  = "counter"
	fieldSource   = "_source"
)

// Store is a bleve-backed search index over extracted sentences.
type Store struct {
	mu     sync.RWMutex
	idx    bleve.Index
	logger *zap.Logger
}

// Open opens (or creates) the search index at path.
func Open(path string, logger *zap.Logger) (*Store, error) {
	idx, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		idx, err = bleve.New(path, buildMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("open search index at %s: %w", path, err)
	}
	return &Store{idx: idx, logger: logger}, nil
}

// OpenMemory creates an in-memory index, used by tests.
func OpenMemory(logger *zap.Logger) (*Store, error) {
	idx, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("open in-memory search index: %w", err)
	}
	return &Store{idx: idx, logger: logger}, nil
}

// Close releases the underlying index.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.idx.Close(); err != nil {
		return fmt.Errorf("close search index: %w", err)
	}
	return nil
}

// Ping checks that the index answers queries.
func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.idx.DocCount(); err != nil {
		return fmt.Errorf("ping search index: %w", err)
	}
	return nil
}

// buildMapping declares the index schema. The sentence text is indexed twice:
// analyzed for full-text search and untouched under sentence.keyword for
// exact matching. The serialized record is stored unindexed under _source.
func buildMapping() mapping.IndexMapping {
	doc := bleve.NewDocumentMapping()

	text := bleve.NewTextFieldMapping()
	kw := bleve.NewTextFieldMapping()
	kw.Name = fieldKeyword
	kw.Analyzer = keyword.Name
	kw.IncludeInAll = false
	doc.AddFieldMappingsAt(fieldSentence, text, kw)

	created := bleve.NewDateTimeFieldMapping()
	doc.AddFieldMappingsAt(fieldCreated, created)

	counter := bleve.NewNumericFieldMapping()
	doc.AddFieldMappingsAt(fieldCounter, counter)

	source := bleve.NewTextFieldMapping()
	source.Index = false
	source.Store = true
	source.IncludeInAll = false
	doc.AddFieldMappingsAt(fieldSource, source)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	return m
}

// Index writes a record into the index, replacing any previous version.
func (s *Store) Index(ctx context.Context, rec *domain.ExtractedSentence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(rec)
}

func (s *Store) indexLocked(rec *domain.ExtractedSentence) error {
	source, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", rec.ID, err)
	}
	doc := map[string]any{
		fieldSentence: rec.Sentence,
		fieldCreated:  rec.CreatedAt,
		fieldCounter:  rec.Counter,
		fieldSource:   string(source),
	}
	if err := s.idx.Index(rec.ID, doc); err != nil {
		return fmt.Errorf("index record %s: %w", rec.ID, err)
	}
	return nil
}

// Bulk indexes several records in one batch.
func (s *Store) Bulk(ctx context.Context, recs []domain.ExtractedSentence) error {
	if len(recs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := s.idx.NewBatch()
	for i := range recs {
		source, err := json.Marshal(&recs[i])
		if err != nil {
			return fmt.Errorf("marshal record %s: %w", recs[i].ID, err)
		}
		doc := map[string]any{
			fieldSentence: recs[i].Sentence,
			fieldCreated:  recs[i].CreatedAt,
			fieldCounter:  recs[i].Counter,
			fieldSource:   string(source),
		}
		if err := batch.Index(recs[i].ID, doc); err != nil {
			return fmt.Errorf("batch record %s: %w", recs[i].ID, err)
		}
	}
	if err := s.idx.Batch(batch); err != nil {
		return fmt.Errorf("execute batch: %w", err)
	}
	return nil
}

// Delete removes a record from the index. Unknown ids are a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.idx.Delete(id); err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	return nil
}

// BySentence looks up a record by exact sentence text.
func (s *Store) BySentence(ctx context.Context, sentence string) (domain.ExtractedSentence, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tq := bleve.NewTermQuery(sentence)
	tq.SetField(fieldKeyword)

	req := bleve.NewSearchRequestOptions(tq, 1, 0, false)
	req.Fields = []string{fieldSource}

	res, err := s.idx.SearchInContext(ctx, req)
	if err != nil {
		return domain.ExtractedSentence{}, false, fmt.Errorf("existence check: %w", err)
	}
	if len(res.Hits) == 0 {
		return domain.ExtractedSentence{}, false, nil
	}

	rec, err := recordFromHit(res.Hits[0].Fields)
	if err != nil {
		return domain.ExtractedSentence{}, false, err
	}
	return rec, true, nil
}

// ByID fetches a record by identity.
func (s *Store) ByID(ctx context.Context, id string) (domain.ExtractedSentence, error) {
	s.mu.RLock()
	rec, err := s.byIDLocked(ctx, id)
	s.mu.RUnlock()
	return rec, err
}

func (s *Store) byIDLocked(ctx context.Context, id string) (domain.ExtractedSentence, error) {
	req := bleve.NewSearchRequestOptions(bleve.NewDocIDQuery([]string{id}), 1, 0, false)
	req.Fields = []string{fieldSource}

	res, err := s.idx.SearchInContext(ctx, req)
	if err != nil {
		return domain.ExtractedSentence{}, fmt.Errorf("get record %s: %w", id, err)
	}
	if len(res.Hits) == 0 {
		return domain.ExtractedSentence{}, domain.ErrItemNotFound
	}
	return recordFromHit(res.Hits[0].Fields)
}

// IncrementCounter bumps the submission counter of an indexed record.
// The read-modify-write runs under the index write lock.
func (s *Store) IncrementCounter(ctx context.Context, id string, by int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.byIDLocked(ctx, id)
	if err != nil {
		return err
	}
	rec.Counter += by
	return s.indexLocked(&rec)
}

// Count returns the number of records matching the query predicates.
func (s *Store) Count(ctx context.Context, fq filter.Query) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, err := Translate(fq)
	if err != nil {
		return 0, err
	}
	req := bleve.NewSearchRequestOptions(q, 0, 0, false)
	res, err := s.idx.SearchInContext(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return int(res.Total), nil
}

// Find returns the page of records selected by the query, in sort order.
func (s *Store) Find(ctx context.Context, fq filter.Query) ([]domain.ExtractedSentence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, err := Translate(fq)
	if err != nil {
		return nil, err
	}
	req := bleve.NewSearchRequestOptions(q, fq.PageSize(), fq.Skip(), false)
	req.Fields = []string{fieldSource}
	req.SortBy(sortOrder(fq.Sort()))

	res, err := s.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("find records: %w", err)
	}

	recs := make([]domain.ExtractedSentence, 0, len(res.Hits))
	for _, hit := range res.Hits {
		rec, err := recordFromHit(hit.Fields)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func recordFromHit(fields map[string]any) (domain.ExtractedSentence, error) {
	raw, ok := fields[fieldSource].(string)
	if !ok {
		return domain.ExtractedSentence{}, fmt.Errorf("hit without %s field", fieldSource)
	}
	var rec domain.ExtractedSentence
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return domain.ExtractedSentence{}, fmt.Errorf("unmarshal %s: %w", fieldSource, err)
	}
	return rec, nil
}
