package domain

import (
	"strings"
	"time"
)

// ExtractedSentence is a deduplicated sentence with its embedding vector.
// ID is assigned by the document store on first insert. Counter tracks how
// many times the same sentence has been submitted.
type ExtractedSentence struct {
	ID             string    `json:"id"`
	Sentence       string    `json:"sentence"`
	SentenceVector []float32 `json:"sentence_vector,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	Counter        int64     `json:"counter"`
}

// NewExtractedSentence validates and creates a sentence record.
// A zero createdAt defaults to the current UTC time.
func NewExtractedSentence(sentence string, createdAt time.Time) (ExtractedSentence, error) {
	sentence = strings.TrimSpace(sentence)
	if sentence == "" {
		return ExtractedSentence{}, ErrEmptySentence
	}
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return ExtractedSentence{
		Sentence:  sentence,
		CreatedAt: createdAt,
		Counter:   1,
	}, nil
}

// Document returns the serializable view of the record: identity and payload
// fields without the embedding vector.
func (s ExtractedSentence) Document() map[string]any {
	return map[string]any{
		"id":         s.ID,
		"sentence":   s.Sentence,
		"created_at": s.CreatedAt.UTC().Format(time.RFC3339),
		"counter":    s.Counter,
	}
}
