package retrievers

import (
	"fmt"

	"github.com/promptctx/promptctx/cache"
	"github.com/promptctx/promptctx/config"
	"github.com/promptctx/promptctx/embeddings"
	"github.com/promptctx/promptctx/schema"
	"github.com/promptctx/promptctx/store"
	"github.com/promptctx/promptctx/tags"
)

// New validates the configuration and constructs an Engine around the
// requested strategy. Construction is strict where retrieval is lenient:
// an unknown strategy name, an out-of-range value, or a missing embedding
// backend fails here, immediately, and never silently substitutes a
// different strategy than the one asked for.
func New(cfg config.Config, st *store.Store, embedder embeddings.Embedder, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	strategy, err := ParseStrategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, ErrMissingStore
	}

	o := applyOptions(opts...)

	// Raw providers get the validating wrapper so every encode call carries
	// a deadline; a hung backend degrades retrieval instead of stalling it.
	if embedder != nil {
		if _, alreadyWrapped := embedder.(*embeddings.EmbedderImpl); !alreadyWrapped {
			wrapped, err := embeddings.NewEmbedder(embedder,
				embeddings.WithTimeout(o.embedTimeout))
			if err != nil {
				return nil, err
			}
			embedder = wrapped
		}
	}

	normalizer := tags.NewNormalizer(o.vocabulary,
		tags.WithRelatedTags(cfg.TagNormalization.IncludeRelatedTags))

	tagBased, err := NewTagBased(st, normalizer, o.logger)
	if err != nil {
		return nil, err
	}

	var retriever schema.Retriever
	switch strategy {
	case StrategyTagsOnly:
		retriever = tagBased

	case StrategyEmbeddingsOnly:
		retriever, err = NewEmbeddingBased(st, embedder, cfg.Semantic.MinScore, o.logger)

	case StrategyHybrid:
		retriever, err = NewHybrid(tagBased, embedder,
			cfg.Semantic.ScoreWeight, cfg.TagNormalization.MaxCandidates, o.logger)

	case StrategyAuto:
		var hybrid *Hybrid
		if cfg.Auto.UseSemanticForComplex {
			hybrid, err = NewHybrid(tagBased, embedder,
				cfg.Semantic.ScoreWeight, cfg.TagNormalization.MaxCandidates, o.logger)
			if err != nil {
				return nil, fmt.Errorf("failed to construct hybrid path for auto strategy: %w", err)
			}
		}
		retriever, err = NewAuto(tagBased, hybrid, cfg.Auto, o.logger)
	}
	if err != nil {
		return nil, err
	}

	// Each engine owns its own cache; switching strategy means a fresh
	// engine and therefore a fresh cache.
	var resultCache *cache.Cache
	if cfg.CacheEnabled {
		resultCache = cache.New(cfg.CacheTTL(), o.cacheOptions...)
	}

	engine := &Engine{
		strategy:   strategy,
		retriever:  retriever,
		cache:      resultCache,
		maxResults: cfg.MaxResults,
		minScore:   cfg.MinScore,
		logger:     o.logger.With("component", "retrieval_engine", "strategy", string(strategy)),
	}

	engine.logger.Info("Retrieval engine constructed",
		"cache_enabled", cfg.CacheEnabled, "max_results", cfg.MaxResults)
	return engine, nil
}
