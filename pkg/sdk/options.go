package extractor

import (
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	dataDir       string
	inMemoryIndex bool

	encoder Encoder

	openAIKey        string
	openAIBaseURL    string
	openAIModel      string
	openAIDimensions int

	counterQueueSize int

	logger *zap.Logger
}

// WithDataDir sets the directory holding the document store and the
// search index. Default: "data".
func WithDataDir(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.dataDir = dir
	})
}

// WithInMemoryIndex keeps the search index in memory instead of on disk.
// Deduplication and reports work but do not survive a restart.
func WithInMemoryIndex() Option {
	return optionFunc(func(c *clientConfig) {
		c.inMemoryIndex = true
	})
}

// WithEncoder sets a custom embedding provider.
// Takes precedence over WithOpenAI.
func WithEncoder(e Encoder) Option {
	return optionFunc(func(c *clientConfig) {
		c.encoder = e
	})
}

// WithOpenAI configures an OpenAI-compatible embedding provider.
// dimensions of zero uses the model default.
func WithOpenAI(apiKey, model string, dimensions int) Option {
	return optionFunc(func(c *clientConfig) {
		c.openAIKey = apiKey
		c.openAIModel = model
		c.openAIDimensions = dimensions
	})
}

// WithOpenAIBaseURL points the provider at a compatible endpoint
// (Azure OpenAI, local inference servers).
func WithOpenAIBaseURL(baseURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.openAIBaseURL = baseURL
	})
}

// WithCounterQueueSize sets the capacity of the background counter
// increment queue. Default: 1024.
func WithCounterQueueSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.counterQueueSize = size
	})
}

// WithLogger enables structured logging for client operations.
// Default: no logging.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}
