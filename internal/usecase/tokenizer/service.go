// Package tokenizer exposes provider token counts for raw texts.
package tokenizer

import (
	"context"
	"fmt"

	"github.com/suthipongg/service-sentence-extractor/internal/domain"
)

// Service counts provider tokens per text.
type Service struct {
	counter domain.TokenCounter
}

// New creates a tokenizer service.
func New(counter domain.TokenCounter) *Service {
	return &Service{counter: counter}
}

// Count returns the token count of each text, in input order.
func (s *Service) Count(ctx context.Context, texts []string) ([]int, error) {
	counts, err := s.counter.TokenCount(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("count tokens: %w", err)
	}
	return counts, nil
}
