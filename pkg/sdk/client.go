package extractor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/suthipongg/service-sentence-extractor/internal/domain"
	"github.com/suthipongg/service-sentence-extractor/internal/domain/filter"
	"github.com/suthipongg/service-sentence-extractor/internal/repository/docstore"
	"github.com/suthipongg/service-sentence-extractor/internal/repository/searchindex"
	openaiEmb "github.com/suthipongg/service-sentence-extractor/internal/transport/openai"
	extractoruc "github.com/suthipongg/service-sentence-extractor/internal/usecase/extractor"
	reportuc "github.com/suthipongg/service-sentence-extractor/internal/usecase/report"
)

const defaultCounterQueueSize = 1024

// Client is the embedded sentence extractor entry point.
// It owns the underlying stores; call Close when done.
type Client struct {
	docs     *docstore.Store
	index    *searchindex.Store
	encoder  domain.Encoder
	counters *extractoruc.CounterQueue

	extractor *extractoruc.Service
	reports   *reportuc.Service
}

// New opens the stores and wires the extractor services.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		dataDir:          "data",
		counterQueueSize: defaultCounterQueueSize,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	docs, err := docstore.Open(filepath.Join(cfg.dataDir, "docstore"), logger)
	if err != nil {
		return nil, fmt.Errorf("extractor: open document store: %w", err)
	}

	var index *searchindex.Store
	if cfg.inMemoryIndex {
		index, err = searchindex.OpenMemory(logger)
	} else {
		index, err = searchindex.Open(filepath.Join(cfg.dataDir, "searchindex"), logger)
	}
	if err != nil {
		_ = docs.Close()
		return nil, fmt.Errorf("extractor: open search index: %w", err)
	}

	encoder := buildEncoder(cfg, logger)

	counters := extractoruc.NewCounterQueue(docs, index, cfg.counterQueueSize, logger)
	counters.Start()

	return &Client{
		docs:      docs,
		index:     index,
		encoder:   encoder,
		counters:  counters,
		extractor: extractoruc.New(docs, index, encoder, counters, logger),
		reports:   reportuc.New(index),
	}, nil
}

func buildEncoder(cfg *clientConfig, logger *zap.Logger) domain.Encoder {
	if cfg.encoder != nil {
		return &encoderAdapter{inner: cfg.encoder}
	}
	if cfg.openAIKey != "" {
		return openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.openAIKey,
			BaseURL:    cfg.openAIBaseURL,
			Model:      cfg.openAIModel,
			Dimensions: cfg.openAIDimensions,
			Provider:   "openai",
			Logger:     logger,
		})
	}
	return noopEncoder{}
}

// Close drains pending counter increments and closes the stores.
func (c *Client) Close() error {
	c.counters.Stop()
	docErr := c.docs.Close()
	idxErr := c.index.Close()
	if docErr != nil {
		return fmt.Errorf("extractor: close document store: %w", docErr)
	}
	if idxErr != nil {
		return fmt.Errorf("extractor: close search index: %w", idxErr)
	}
	return nil
}

// Ping checks that both stores respond.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.docs.Ping(ctx); err != nil {
		return fmt.Errorf("ping document store: %w", err)
	}
	if err := c.index.Ping(ctx); err != nil {
		return fmt.Errorf("ping search index: %w", err)
	}
	return nil
}

// Submit stores the sentence with its embedding vector, or bumps the
// submission counter when the exact sentence is already known.
// created reports whether a new record was stored.
func (c *Client) Submit(ctx context.Context, sentence string) (rec Sentence, created bool, err error) {
	s, created, err := c.extractor.Submit(ctx, sentence, time.Time{})
	if err != nil {
		return Sentence{}, false, err
	}
	return sentenceFromDomain(s), created, nil
}

// SubmitAt is Submit with an explicit creation timestamp for new records.
func (c *Client) SubmitAt(ctx context.Context, sentence string, createdAt time.Time) (rec Sentence, created bool, err error) {
	s, created, err := c.extractor.Submit(ctx, sentence, createdAt)
	if err != nil {
		return Sentence{}, false, err
	}
	return sentenceFromDomain(s), created, nil
}

// Get returns a stored record by ID.
func (c *Client) Get(ctx context.Context, id string) (Sentence, error) {
	s, err := c.extractor.Get(ctx, id)
	if err != nil {
		return Sentence{}, err
	}
	return sentenceFromDomain(s), nil
}

// Delete removes a record from both stores and returns it.
func (c *Client) Delete(ctx context.Context, id string) (Sentence, error) {
	s, err := c.extractor.Delete(ctx, id)
	if err != nil {
		return Sentence{}, err
	}
	return sentenceFromDomain(s), nil
}

// List pages stored records, projected per the request.
func (c *Client) List(ctx context.Context, req ListRequest) ([]map[string]any, Page, error) {
	fq, err := filter.NewQuery(req.Include, req.Exclude, req.Page, req.PageSize, nil, nil)
	if err != nil {
		return nil, Page{}, err
	}
	recs, page, err := c.extractor.List(ctx, fq)
	if err != nil {
		return nil, Page{}, err
	}
	return recs, pageFromDomain(page), nil
}

// Vectors returns one embedding per text, reusing stored vectors for
// already-known sentences. Nothing is persisted.
func (c *Client) Vectors(ctx context.Context, texts []string) ([][]float32, error) {
	return c.extractor.Vectors(ctx, texts)
}

// Encode vectorizes texts through the provider without touching the stores.
func (c *Client) Encode(ctx context.Context, texts []string) (EncodeResult, error) {
	r, err := c.extractor.Encode(ctx, texts)
	if err != nil {
		return EncodeResult{}, err
	}
	return EncodeResult{
		Vectors:      r.Vectors,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// TokenCount reports the tokenization cost of each text.
// Requires an encoder that implements TokenCounter.
func (c *Client) TokenCount(ctx context.Context, texts []string) ([]int, error) {
	tc, ok := c.encoder.(domain.TokenCounter)
	if !ok {
		return nil, errors.New("extractor: encoder does not support token counting")
	}
	counts, err := tc.TokenCount(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("count tokens: %w", err)
	}
	return counts, nil
}

// Report aggregates stored sentences into calendar buckets over
// [startDate, endDate]. Dates are "2006-01-02" or RFC 3339 strings;
// empty strings default to the current month. interval is one of
// hour, day, week, month, quarter, year (default day).
func (c *Client) Report(ctx context.Context, startDate, endDate, interval string) (Report, error) {
	h, err := c.reports.Histogram(ctx, startDate, endDate, interval)
	if err != nil {
		return Report{}, err
	}
	return reportFromDomain(h), nil
}

// noopEncoder returns an error on Encode (used when no provider is configured).
type noopEncoder struct{}

func (noopEncoder) Encode(_ context.Context, _ []string) (domain.EncodeResult, error) {
	return domain.EncodeResult{}, errors.New(
		"extractor: encoder not configured (use WithOpenAI or WithEncoder)",
	)
}
