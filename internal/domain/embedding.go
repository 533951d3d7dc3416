package domain

import "context"

// Encoder is the shared text vectorization contract between layers.
// Encode vectorizes all texts in order: Vectors[i] belongs to texts[i].
type Encoder interface {
	Encode(ctx context.Context, texts []string) (EncodeResult, error)
}

// TokenCounter reports the provider tokenization cost of each text.
type TokenCounter interface {
	TokenCount(ctx context.Context, texts []string) ([]int, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EncodeResult carries embedding vectors and token usage through the decorator chain.
type EncodeResult struct {
	Vectors      [][]float32
	PromptTokens int
	TotalTokens  int
}
