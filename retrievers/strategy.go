// Package retrievers implements the retrieval strategies that rank stored
// context items against a query: tag overlap, embedding similarity, a
// two-stage hybrid of both, and adaptive selection between them. The
// Engine type wraps any strategy with result caching and the best-effort
// boundary that keeps retrieval failures away from prompt building.
package retrievers

import (
	"errors"
	"fmt"
	"sort"

	"github.com/promptctx/promptctx/config"
	"github.com/promptctx/promptctx/schema"
)

// Strategy identifies one of the four retrieval strategies.
type Strategy string

const (
	StrategyTagsOnly       Strategy = config.StrategyTagsOnly
	StrategyEmbeddingsOnly Strategy = config.StrategyEmbeddingsOnly
	StrategyHybrid         Strategy = config.StrategyHybrid
	StrategyAuto           Strategy = config.StrategyAuto
)

var (
	ErrUnknownStrategy = errors.New("retrievers: unknown strategy")
	ErrMissingEmbedder = errors.New("retrievers: strategy requires an embedder but none was provided")
	ErrMissingStore    = errors.New("retrievers: context store is required")
)

// ParseStrategy validates a strategy name. Unknown names fail with the
// full list of valid options.
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(name) {
	case StrategyTagsOnly, StrategyEmbeddingsOnly, StrategyHybrid, StrategyAuto:
		return Strategy(name), nil
	}
	return "", fmt.Errorf("%w: %q, valid options: %v",
		ErrUnknownStrategy, name, config.ValidStrategies())
}

// sortAndTruncate orders results by descending score, breaking ties by
// store insertion sequence, and truncates to max. Every strategy funnels
// its results through here so orderings are comparable across strategies.
func sortAndTruncate(results []schema.ScoredItem, max int) []schema.ScoredItem {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Item.Seq < results[j].Item.Seq
	})
	if max > 0 && len(results) > max {
		results = results[:max]
	}
	return results
}
