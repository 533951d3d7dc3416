package extractor

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/suthipongg/service-sentence-extractor/internal/domain"
	"github.com/suthipongg/service-sentence-extractor/internal/domain/filter"
)

type fakeDocs struct {
	mu         sync.Mutex
	recs       map[string]domain.ExtractedSentence
	increments map[string]int64
	insertErr  error
	findErr    error
}

func newFakeDocs() *fakeDocs {
	return &fakeDocs{
		recs:       make(map[string]domain.ExtractedSentence),
		increments: make(map[string]int64),
	}
}

func (f *fakeDocs) Insert(_ context.Context, rec *domain.ExtractedSentence) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec.ID == "" {
		rec.ID = "generated-id"
	}
	f.recs[rec.ID] = *rec
	return nil
}

func (f *fakeDocs) FindByID(_ context.Context, id string) (domain.ExtractedSentence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.recs[id]
	if !ok {
		return domain.ExtractedSentence{}, domain.ErrItemNotFound
	}
	return rec, nil
}

func (f *fakeDocs) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.recs[id]; !ok {
		return domain.ErrItemNotFound
	}
	delete(f.recs, id)
	return nil
}

func (f *fakeDocs) IncrementCounter(_ context.Context, id string, by int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.increments[id] += by
	return nil
}

func (f *fakeDocs) Count(_ context.Context, _ filter.Query) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.recs), nil
}

func (f *fakeDocs) Find(_ context.Context, _ filter.Query) ([]domain.ExtractedSentence, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.ExtractedSentence, 0, len(f.recs))
	for _, rec := range f.recs {
		out = append(out, rec)
	}
	return out, nil
}

type fakeIndex struct {
	mu         sync.Mutex
	bySentence map[string]domain.ExtractedSentence
	indexed    []domain.ExtractedSentence
	deleted    []string
	increments map[string]int64
	indexErr   error
	lookupErr  error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{
		bySentence: make(map[string]domain.ExtractedSentence),
		increments: make(map[string]int64),
	}
}

func (f *fakeIndex) Index(_ context.Context, rec *domain.ExtractedSentence) error {
	if f.indexErr != nil {
		return f.indexErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed = append(f.indexed, *rec)
	f.bySentence[rec.Sentence] = *rec
	return nil
}

func (f *fakeIndex) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndex) BySentence(_ context.Context, sentence string) (domain.ExtractedSentence, bool, error) {
	if f.lookupErr != nil {
		return domain.ExtractedSentence{}, false, f.lookupErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.bySentence[sentence]
	return rec, ok, nil
}

func (f *fakeIndex) IncrementCounter(_ context.Context, id string, by int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.increments[id] += by
	return nil
}

type fakeEncoder struct {
	vector    []float32
	err       error
	calls     int
	lastTexts []string
}

func (f *fakeEncoder) Encode(_ context.Context, texts []string) (domain.EncodeResult, error) {
	f.calls++
	f.lastTexts = texts
	if f.err != nil {
		return domain.EncodeResult{}, f.err
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = f.vector
	}
	return domain.EncodeResult{Vectors: vectors, PromptTokens: len(texts), TotalTokens: len(texts)}, nil
}

type fakeSink struct {
	mu    sync.Mutex
	tasks map[string]int64
	full  bool
}

func newFakeSink() *fakeSink {
	return &fakeSink{tasks: make(map[string]int64)}
}

func (f *fakeSink) Enqueue(id string, by int64) bool {
	if f.full {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[id] += by
	return true
}

func newTestService(t *testing.T) (*Service, *fakeDocs, *fakeIndex, *fakeEncoder, *fakeSink) {
	t.Helper()
	docs := newFakeDocs()
	index := newFakeIndex()
	enc := &fakeEncoder{vector: []float32{0.1, 0.2}}
	sink := newFakeSink()
	svc := New(docs, index, enc, sink, zap.NewNop())
	return svc, docs, index, enc, sink
}
