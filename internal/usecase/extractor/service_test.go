package extractor

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/suthipongg/service-sentence-extractor/internal/domain"
	"github.com/suthipongg/service-sentence-extractor/internal/domain/filter"
)

func TestSubmit_NewSentence(t *testing.T) {
	svc, docs, index, enc, sink := newTestService(t)

	rec, created, err := svc.Submit(context.Background(), "  the quick brown fox  ", time.Time{})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !created {
		t.Fatal("expected created=true for a new sentence")
	}
	if rec.Sentence != "the quick brown fox" {
		t.Errorf("sentence not trimmed: %q", rec.Sentence)
	}
	if rec.ID == "" {
		t.Error("expected identity to be minted on insert")
	}
	if rec.Counter != 1 {
		t.Errorf("counter = %d, want 1", rec.Counter)
	}
	if len(rec.SentenceVector) != 2 {
		t.Errorf("vector = %v, want the encoded one", rec.SentenceVector)
	}
	if enc.calls != 1 {
		t.Errorf("encoder calls = %d, want 1", enc.calls)
	}
	if _, ok := docs.recs[rec.ID]; !ok {
		t.Error("record not persisted in document store")
	}
	if len(index.indexed) != 1 {
		t.Errorf("indexed %d records, want 1", len(index.indexed))
	}
	if len(sink.tasks) != 0 {
		t.Errorf("unexpected counter increments: %v", sink.tasks)
	}
}

func TestSubmit_SeenSentence(t *testing.T) {
	svc, _, index, enc, sink := newTestService(t)
	index.bySentence["known"] = domain.ExtractedSentence{ID: "id-1", Sentence: "known", Counter: 4}

	rec, created, err := svc.Submit(context.Background(), "known", time.Time{})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if created {
		t.Fatal("expected created=false for a known sentence")
	}
	if rec.Counter != 5 {
		t.Errorf("counter = %d, want optimistic 5", rec.Counter)
	}
	if enc.calls != 0 {
		t.Errorf("encoder calls = %d, want 0 on dedup hit", enc.calls)
	}
	if sink.tasks["id-1"] != 1 {
		t.Errorf("enqueued increment = %d, want 1", sink.tasks["id-1"])
	}
}

func TestSubmit_EmptySentence(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	_, _, err := svc.Submit(context.Background(), "   ", time.Time{})
	if !errors.Is(err, domain.ErrEmptySentence) {
		t.Fatalf("err = %v, want ErrEmptySentence", err)
	}
}

func TestSubmit_EncoderFailureAborts(t *testing.T) {
	svc, docs, _, enc, _ := newTestService(t)
	enc.err = errors.New("provider down")

	_, _, err := svc.Submit(context.Background(), "fresh", time.Time{})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(docs.recs) != 0 {
		t.Error("record persisted despite embedding failure")
	}
}

func TestSubmit_IndexFailureDoesNotFail(t *testing.T) {
	svc, docs, index, _, _ := newTestService(t)
	index.indexErr = errors.New("index down")

	rec, created, err := svc.Submit(context.Background(), "fresh", time.Time{})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !created {
		t.Fatal("expected created=true")
	}
	if _, ok := docs.recs[rec.ID]; !ok {
		t.Error("record missing from document store")
	}
}

func TestDelete_RemovesFromBothStores(t *testing.T) {
	svc, docs, index, _, _ := newTestService(t)
	docs.recs["id-1"] = domain.ExtractedSentence{ID: "id-1", Sentence: "x"}

	rec, err := svc.Delete(context.Background(), "id-1")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if rec.Sentence != "x" {
		t.Errorf("deleted record not returned: %+v", rec)
	}
	if len(docs.recs) != 0 {
		t.Error("record still in document store")
	}
	if len(index.deleted) != 1 || index.deleted[0] != "id-1" {
		t.Errorf("index deletions = %v, want [id-1]", index.deleted)
	}
}

func TestDelete_NotFound(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	_, err := svc.Delete(context.Background(), "missing")
	if !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("err = %v, want ErrItemNotFound", err)
	}
}

func TestList_ProjectionAndPagination(t *testing.T) {
	svc, docs, _, _, _ := newTestService(t)
	docs.recs["id-1"] = domain.ExtractedSentence{
		ID: "id-1", Sentence: "alpha", CreatedAt: time.Now().UTC(), Counter: 2,
	}

	fq, err := filter.NewQuery([]string{"sentence"}, nil, 1, 10, nil, nil)
	if err != nil {
		t.Fatalf("NewQuery: %v", err)
	}

	items, page, err := svc.List(context.Background(), fq)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if _, ok := items[0]["sentence"]; !ok {
		t.Error("included field missing from projection")
	}
	if _, ok := items[0]["counter"]; ok {
		t.Error("excluded field leaked through projection")
	}
	if page.Total != 1 || page.PageCount != 1 || page.PageSize != 10 {
		t.Errorf("unexpected page meta: %+v", page)
	}
}

func TestVectors_ReusesStoredAndEmbedsMisses(t *testing.T) {
	svc, _, index, enc, _ := newTestService(t)
	index.bySentence["known"] = domain.ExtractedSentence{
		ID: "id-1", Sentence: "known", SentenceVector: []float32{0.5},
	}

	vectors, err := svc.Vectors(context.Background(), []string{"fresh1", "known", "fresh2"})
	if err != nil {
		t.Fatalf("Vectors: %v", err)
	}
	if len(vectors) != 3 {
		t.Fatalf("vectors = %d, want 3", len(vectors))
	}
	if vectors[1][0] != 0.5 {
		t.Errorf("stored vector not reused: %v", vectors[1])
	}
	if enc.calls != 1 {
		t.Fatalf("encoder calls = %d, want 1 batch", enc.calls)
	}
	if len(enc.lastTexts) != 2 {
		t.Errorf("inner batch = %v, want only misses", enc.lastTexts)
	}
}

func TestVectors_LookupError(t *testing.T) {
	svc, _, index, _, _ := newTestService(t)
	index.lookupErr = errors.New("index down")

	if _, err := svc.Vectors(context.Background(), []string{"a"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestWarmup(t *testing.T) {
	svc, _, _, enc, _ := newTestService(t)

	if err := svc.Warmup(context.Background()); err != nil {
		t.Fatalf("Warmup: %v", err)
	}
	if enc.calls != 1 {
		t.Errorf("encoder calls = %d, want 1", enc.calls)
	}
}

func TestSubmit_SinkFullIsNotAnError(t *testing.T) {
	docs := newFakeDocs()
	index := newFakeIndex()
	index.bySentence["known"] = domain.ExtractedSentence{ID: "id-1", Sentence: "known", Counter: 1}
	sink := newFakeSink()
	sink.full = true
	svc := New(docs, index, &fakeEncoder{vector: []float32{0.1}}, sink, zap.NewNop())

	if _, _, err := svc.Submit(context.Background(), "known", time.Time{}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
}
