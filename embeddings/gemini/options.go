package gemini

import "log/slog"

// DefaultEmbeddingModel is a sensible default for session-context vectors.
const DefaultEmbeddingModel = "text-embedding-004"

type options struct {
	apiKey string
	model  string
	logger *slog.Logger
}

// Option configures the Gemini embedder.
type Option func(*options)

// WithAPIKey sets the API key explicitly instead of GEMINI_API_KEY.
func WithAPIKey(key string) Option {
	return func(o *options) {
		o.apiKey = key
	}
}

// WithModel sets the embedding model.
func WithModel(model string) Option {
	return func(o *options) {
		o.model = model
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func applyOptions(opts ...Option) options {
	o := options{
		model: DefaultEmbeddingModel,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}
