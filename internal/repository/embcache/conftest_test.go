package embcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/suthipongg/service-sentence-extractor/internal/db"
	"github.com/suthipongg/service-sentence-extractor/internal/domain"
)

type mockEncoder struct {
	vector       []float32
	promptTokens int
	err          error
	calls        int
	lastTexts    []string
}

func (m *mockEncoder) Encode(_ context.Context, texts []string) (domain.EncodeResult, error) {
	m.calls++
	m.lastTexts = texts
	if m.err != nil {
		return domain.EncodeResult{}, m.err
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = m.vector
	}
	return domain.EncodeResult{
		Vectors:      vectors,
		PromptTokens: m.promptTokens * len(texts),
		TotalTokens:  m.promptTokens * len(texts),
	}, nil
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte) error
	ttlFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) Set(ctx context.Context, key string, value []byte) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	return nil
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.ttlFn != nil {
		return m.ttlFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestCachedEncoder(t *testing.T, inner *mockEncoder) (*CachedEncoder, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	ce := New(inner, ms, 0, nil, zap.NewNop())
	return ce, ms
}
