package paperdex

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	password string

	grobidURL     string
	grobidTimeout time.Duration

	embedAPIKey      string
	embedBaseURL     string
	embedModel       string
	embedDimensions  int
	queryInstruction string
	cacheTTL         time.Duration

	embedder Embedder

	llmAPIKey   string
	llmBaseURL  string
	llmModel    string
	temperature float32
	maxTokens   int

	keyPrefix    string
	chunkSize    int
	chunkOverlap int
	topK         int
	maxTopK      int

	hnswM           int
	hnswEFConstruct int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithGrobid sets the GROBID extraction service URL.
// Required for PDF uploads.
func WithGrobid(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.grobidURL = url
	})
}

// WithGrobidTimeout overrides the extraction request timeout.
// Default: 2 minutes.
func WithGrobidTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.grobidTimeout = d
	})
}

// WithEmbedding configures the OpenAI-compatible embedding provider.
// Defaults: BAAI/bge-small-en-v1.5 with 384 dimensions.
func WithEmbedding(apiKey, baseURL, model string, dimensions int) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedAPIKey = apiKey
		c.embedBaseURL = baseURL
		c.embedModel = model
		c.embedDimensions = dimensions
	})
}

// WithEmbedder sets a custom text embedding provider, bypassing the
// built-in OpenAI-compatible transport. Dimensions still come from
// WithEmbedding or the default.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithQueryInstruction sets the instruction prefix prepended to query
// texts before embedding. When empty, BGE-family models get their
// standard retrieval instruction automatically.
func WithQueryInstruction(instruction string) Option {
	return optionFunc(func(c *clientConfig) {
		c.queryInstruction = instruction
	})
}

// WithEmbeddingCache caches embeddings in Redis with the given TTL.
// Zero disables caching (default).
func WithEmbeddingCache(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = ttl
	})
}

// WithLLM configures the OpenAI-compatible chat completion provider
// used for answer synthesis. Default model: gpt-4o-mini.
func WithLLM(apiKey, baseURL, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.llmAPIKey = apiKey
		c.llmBaseURL = baseURL
		c.llmModel = model
	})
}

// WithGeneration sets generation parameters for answer synthesis.
// Defaults: temperature 0.3, 1024 max tokens.
func WithGeneration(temperature float32, maxTokens int) Option {
	return optionFunc(func(c *clientConfig) {
		c.temperature = temperature
		c.maxTokens = maxTokens
	})
}

// WithKeyPrefix namespaces all Redis keys. Default: "paperdex:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithChunking sets the chunk size and overlap in characters.
// Defaults: 500 and 50.
func WithChunking(size, overlap int) Option {
	return optionFunc(func(c *clientConfig) {
		c.chunkSize = size
		c.chunkOverlap = overlap
	})
}

// WithRetrieval sets the default and maximum number of contexts
// retrieved per query. Defaults: 5 and 50.
func WithRetrieval(topK, maxTopK int) Option {
	return optionFunc(func(c *clientConfig) {
		c.topK = topK
		c.maxTopK = maxTopK
	})
}

// WithHNSW configures HNSW index parameters (M and EF construction).
// Defaults: M=16, EFConstruct=200.
func WithHNSW(m, efConstruct int) Option {
	return optionFunc(func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
