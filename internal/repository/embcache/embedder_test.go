package embcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/suthipongg/service-sentence-extractor/internal/db"
)

func TestEncode_AllMisses(t *testing.T) {
	inner := &mockEncoder{vector: []float32{0.1, 0.2}, promptTokens: 5}
	ce, ms := newTestCachedEncoder(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, db.ErrKeyNotFound
	}
	var setCount int
	ms.setFn = func(_ context.Context, _ string, _ []byte) error {
		setCount++
		return nil
	}

	res, err := ce.Encode(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(res.Vectors))
	}
	if res.PromptTokens != 10 {
		t.Fatalf("expected PromptTokens=10, got %d", res.PromptTokens)
	}
	if setCount != 2 {
		t.Errorf("expected 2 cache puts, got %d", setCount)
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 call to inner encoder, got %d", inner.calls)
	}
}

func TestEncode_AllHits(t *testing.T) {
	inner := &mockEncoder{vector: []float32{0.1, 0.2}}
	ce, ms := newTestCachedEncoder(t, inner)

	cached := vectorToCacheBytes([]float32{0.4, 0.5, 0.6})
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return cached, nil
	}

	res, err := ce.Encode(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 0 {
		t.Fatalf("expected no inner calls on full hit, got %d", inner.calls)
	}
	if len(res.Vectors) != 2 || res.Vectors[0][0] != 0.4 {
		t.Fatalf("expected cached vectors, got %v", res.Vectors)
	}
	if res.TotalTokens != 0 {
		t.Fatalf("expected TotalTokens=0 on full hit, got %d", res.TotalTokens)
	}
}

func TestEncode_PartialHit(t *testing.T) {
	inner := &mockEncoder{vector: []float32{0.9}, promptTokens: 3}
	ce, ms := newTestCachedEncoder(t, inner)

	hitKey := ce.cacheKey("cached")
	cached := vectorToCacheBytes([]float32{0.5})
	ms.getFn = func(_ context.Context, key string) ([]byte, error) {
		if key == hitKey {
			return cached, nil
		}
		return nil, db.ErrKeyNotFound
	}

	res, err := ce.Encode(context.Background(), []string{"fresh1", "cached", "fresh2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected 1 inner call, got %d", inner.calls)
	}
	if len(inner.lastTexts) != 2 || inner.lastTexts[0] != "fresh1" || inner.lastTexts[1] != "fresh2" {
		t.Fatalf("expected only misses in inner batch, got %v", inner.lastTexts)
	}
	if res.Vectors[0][0] != 0.9 || res.Vectors[1][0] != 0.5 || res.Vectors[2][0] != 0.9 {
		t.Fatalf("vectors scattered to wrong positions: %v", res.Vectors)
	}
	if res.PromptTokens != 6 {
		t.Fatalf("expected PromptTokens=6 for two misses, got %d", res.PromptTokens)
	}
}

func TestEncode_InnerError(t *testing.T) {
	inner := &mockEncoder{err: errors.New("provider down")}
	ce, ms := newTestCachedEncoder(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, db.ErrKeyNotFound
	}

	_, err := ce.Encode(context.Background(), []string{"a"})
	if err == nil {
		t.Fatal("expected error from inner encoder")
	}
}

func TestEncode_CorruptedCacheFallsThrough(t *testing.T) {
	inner := &mockEncoder{vector: []float32{0.7}}
	ce, ms := newTestCachedEncoder(t, inner)

	// Not a multiple of 4 bytes, cannot be a float32 vector.
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte{1, 2, 3}, nil
	}

	res, err := ce.Encode(context.Background(), []string{"a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected fallthrough to inner encoder, got %d calls", inner.calls)
	}
	if res.Vectors[0][0] != 0.7 {
		t.Fatalf("unexpected vector: %v", res.Vectors)
	}
}

func TestEncode_TTLUsesSetWithTTL(t *testing.T) {
	inner := &mockEncoder{vector: []float32{0.1}}
	ms := &mockKVStore{}
	ce := New(inner, ms, time.Minute, nil, zap.NewNop())

	var gotTTL time.Duration
	ms.ttlFn = func(_ context.Context, _ string, _ []byte, ttl time.Duration) error {
		gotTTL = ttl
		return nil
	}
	var setCalled bool
	ms.setFn = func(_ context.Context, _ string, _ []byte) error {
		setCalled = true
		return nil
	}

	if _, err := ce.Encode(context.Background(), []string{"a"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotTTL != time.Minute {
		t.Fatalf("expected TTL of 1m, got %v", gotTTL)
	}
	if setCalled {
		t.Fatal("expected SetWithTTL instead of Set when TTL is configured")
	}
}

func TestVectorCacheRoundTrip(t *testing.T) {
	in := []float32{0.25, -1.5, 3.75}
	out, err := bytesToVector(vectorToCacheBytes(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("length mismatch: %d vs %d", len(out), len(in))
	}
	for i := range in {
		if in[i] != out[i] {
			t.Fatalf("value mismatch at %d: %v vs %v", i, in[i], out[i])
		}
	}
}
