package retrievers

import (
	"log/slog"
	"time"

	"github.com/promptctx/promptctx/cache"
	"github.com/promptctx/promptctx/tags"
)

// DefaultEmbedTimeout bounds each encode call made on behalf of retrieval.
const DefaultEmbedTimeout = 10 * time.Second

type options struct {
	logger       *slog.Logger
	vocabulary   *tags.Vocabulary
	cacheOptions []cache.Option
	embedTimeout time.Duration
}

// Option configures engine construction.
type Option func(*options)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithVocabulary overrides the tag vocabulary. Defaults to
// tags.DefaultVocabulary().
func WithVocabulary(v *tags.Vocabulary) Option {
	return func(o *options) {
		o.vocabulary = v
	}
}

// WithEmbedTimeout overrides the per-call deadline the factory puts on the
// embedding backend. Defaults to DefaultEmbedTimeout.
func WithEmbedTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.embedTimeout = d
		}
	}
}

// WithCacheOptions passes options through to the engine's result cache,
// e.g. cache.WithClock in tests.
func WithCacheOptions(opts ...cache.Option) Option {
	return func(o *options) {
		o.cacheOptions = append(o.cacheOptions, opts...)
	}
}

func applyOptions(opts ...Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.vocabulary == nil {
		o.vocabulary = tags.DefaultVocabulary()
	}
	if o.embedTimeout <= 0 {
		o.embedTimeout = DefaultEmbedTimeout
	}
	return o
}
