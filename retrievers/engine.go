package retrievers

import (
	"context"
	"log/slog"

	"github.com/promptctx/promptctx/cache"
	"github.com/promptctx/promptctx/schema"
)

// Engine is the retrieval boundary handed to the prompt builder. It wraps
// one concrete strategy with the optional result cache and the best-effort
// policy: retrieval is advisory, so any internal failure is logged here and
// surfaced as an empty result list, never as an error that could abort
// prompt building. Construction, by contrast, fails fast; see New.
type Engine struct {
	strategy   Strategy
	retriever  schema.Retriever
	cache      *cache.Cache // nil when caching is disabled
	maxResults int
	minScore   float64 // shared floor applied to every strategy's results
	logger     *slog.Logger
}

// Strategy reports which strategy this engine was built with.
func (e *Engine) Strategy() Strategy {
	return e.strategy
}

// Retrieve returns ranked context for the query. Query.MaxResults of zero
// falls back to the configured default. The returned slice is never nil.
func (e *Engine) Retrieve(ctx context.Context, query schema.Query) []schema.ScoredItem {
	if query.MaxResults <= 0 {
		query.MaxResults = e.maxResults
	}

	var key uint64
	if e.cache != nil {
		key = cache.Key(string(e.strategy), query.Tags, query.Description, query.MaxResults)
		if results, ok := e.cache.Get(key); ok {
			e.logger.DebugContext(ctx, "Cache hit", "results", len(results))
			return results
		}
	}

	results, err := e.retriever.Retrieve(ctx, query)
	if err != nil {
		e.logger.ErrorContext(ctx, "Retrieval failed, returning empty context",
			"strategy", e.strategy, "error", err,
			"tags", len(query.Tags), "description_len", len(query.Description))
		return []schema.ScoredItem{}
	}
	if results == nil {
		results = []schema.ScoredItem{}
	}
	if e.minScore > 0 {
		kept := results[:0]
		for _, res := range results {
			if res.Score >= e.minScore {
				kept = append(kept, res)
			}
		}
		results = kept
	}

	if e.cache != nil {
		e.cache.Put(key, results)
	}
	return results
}

// InvalidateCache drops all cached results, e.g. after the caller clears
// the store.
func (e *Engine) InvalidateCache() {
	if e.cache != nil {
		e.cache.Purge()
	}
}
