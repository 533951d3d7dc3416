package extractor

import (
	"context"
	"fmt"

	"github.com/suthipongg/service-sentence-extractor/internal/domain"
)

// Encoder converts texts to vector embeddings.
// Encode vectorizes all texts in order: Vectors[i] belongs to texts[i].
type Encoder interface {
	Encode(ctx context.Context, texts []string) (EncodeResult, error)
}

// TokenCounter reports the provider tokenization cost of each text.
// Optional: if the configured Encoder also implements TokenCounter,
// Client.TokenCount delegates to it.
type TokenCounter interface {
	TokenCount(ctx context.Context, texts []string) ([]int, error)
}

// EncodeResult carries embedding vectors and token usage.
type EncodeResult struct {
	Vectors      [][]float32
	PromptTokens int
	TotalTokens  int
}

// encoderAdapter wraps a public Encoder to satisfy internal domain.Encoder.
type encoderAdapter struct {
	inner Encoder
}

func (a *encoderAdapter) Encode(ctx context.Context, texts []string) (domain.EncodeResult, error) {
	r, err := a.inner.Encode(ctx, texts)
	if err != nil {
		return domain.EncodeResult{}, fmt.Errorf("encode: %w", err)
	}
	return domain.EncodeResult{
		Vectors:      r.Vectors,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}
