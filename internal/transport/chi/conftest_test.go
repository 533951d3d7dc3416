package chi

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/suthipongg/service-sentence-extractor/internal/domain"
	"github.com/suthipongg/service-sentence-extractor/internal/domain/filter"
	domrep "github.com/suthipongg/service-sentence-extractor/internal/domain/report"
	extractoruc "github.com/suthipongg/service-sentence-extractor/internal/usecase/extractor"
	healthuc "github.com/suthipongg/service-sentence-extractor/internal/usecase/health"
	reportuc "github.com/suthipongg/service-sentence-extractor/internal/usecase/report"
	tokenizeruc "github.com/suthipongg/service-sentence-extractor/internal/usecase/tokenizer"
)

type stubDocs struct {
	mu   sync.Mutex
	recs map[string]domain.ExtractedSentence
}

func newStubDocs() *stubDocs {
	return &stubDocs{recs: make(map[string]domain.ExtractedSentence)}
}

func (f *stubDocs) Insert(_ context.Context, rec *domain.ExtractedSentence) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec.ID == "" {
		rec.ID = "generated-id"
	}
	f.recs[rec.ID] = *rec
	return nil
}

func (f *stubDocs) FindByID(_ context.Context, id string) (domain.ExtractedSentence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.recs[id]
	if !ok {
		return domain.ExtractedSentence{}, domain.ErrItemNotFound
	}
	return rec, nil
}

func (f *stubDocs) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.recs[id]; !ok {
		return domain.ErrItemNotFound
	}
	delete(f.recs, id)
	return nil
}

func (f *stubDocs) IncrementCounter(_ context.Context, _ string, _ int64) error { return nil }

func (f *stubDocs) Count(_ context.Context, _ filter.Query) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.recs), nil
}

func (f *stubDocs) Find(_ context.Context, _ filter.Query) ([]domain.ExtractedSentence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.ExtractedSentence, 0, len(f.recs))
	for _, rec := range f.recs {
		out = append(out, rec)
	}
	return out, nil
}

func (f *stubDocs) Ping(_ context.Context) error { return nil }

type stubIndex struct {
	mu         sync.Mutex
	bySentence map[string]domain.ExtractedSentence
	hist       domrep.Histogram
}

func newStubIndex() *stubIndex {
	return &stubIndex{bySentence: make(map[string]domain.ExtractedSentence)}
}

func (f *stubIndex) Index(_ context.Context, rec *domain.ExtractedSentence) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bySentence[rec.Sentence] = *rec
	return nil
}

func (f *stubIndex) Delete(_ context.Context, _ string) error { return nil }

func (f *stubIndex) BySentence(_ context.Context, sentence string) (domain.ExtractedSentence, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.bySentence[sentence]
	return rec, ok, nil
}

func (f *stubIndex) IncrementCounter(_ context.Context, _ string, _ int64) error { return nil }

func (f *stubIndex) DateHistogram(_ context.Context, rq domrep.Query) (domrep.Histogram, error) {
	if f.hist.Buckets == nil {
		buckets := make([]domrep.BucketCount, 0, len(rq.Buckets))
		for _, b := range rq.Buckets {
			buckets = append(buckets, domrep.BucketCount{Key: b.Key})
		}
		return domrep.Histogram{Buckets: buckets}, nil
	}
	return f.hist, nil
}

func (f *stubIndex) Ping(_ context.Context) error { return nil }

type stubEncoder struct {
	vector []float32
	err    error
}

func (f *stubEncoder) Encode(_ context.Context, texts []string) (domain.EncodeResult, error) {
	if f.err != nil {
		return domain.EncodeResult{}, f.err
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = f.vector
	}
	return domain.EncodeResult{Vectors: vectors}, nil
}

func (f *stubEncoder) TokenCount(_ context.Context, texts []string) ([]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	counts := make([]int, len(texts))
	for i, text := range texts {
		counts[i] = len(text)
	}
	return counts, nil
}

func (f *stubEncoder) HealthCheck(_ context.Context) error { return f.err }

type testEnv struct {
	docs    *stubDocs
	index   *stubIndex
	encoder *stubEncoder
	server  *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	docs := newStubDocs()
	index := newStubIndex()
	enc := &stubEncoder{vector: []float32{0.1, 0.2}}
	logger := zap.NewNop()

	srv := NewServer(
		extractoruc.New(docs, index, enc, nil, logger),
		reportuc.New(index),
		tokenizeruc.New(enc),
		healthuc.New(docs, index, enc),
		logger,
	)

	r := chirouter.NewRouter()
	srv.Mount(r)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)

	return &testEnv{docs: docs, index: index, encoder: enc, server: ts}
}
