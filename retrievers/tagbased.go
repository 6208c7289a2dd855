package retrievers

import (
	"context"
	"log/slog"

	"github.com/promptctx/promptctx/schema"
	"github.com/promptctx/promptctx/store"
	"github.com/promptctx/promptctx/tags"
)

// TagBased ranks items by how well their expanded tags cover the expanded
// query tags. It scans the full store snapshot on every call: item sets are
// session-scoped and small, so an index would cost more than it saves.
type TagBased struct {
	store      *store.Store
	normalizer *tags.Normalizer
	logger     *slog.Logger
}

var _ schema.Retriever = (*TagBased)(nil)

// NewTagBased creates a tag-overlap retriever.
func NewTagBased(st *store.Store, normalizer *tags.Normalizer, logger *slog.Logger) (*TagBased, error) {
	if st == nil {
		return nil, ErrMissingStore
	}
	if normalizer == nil {
		normalizer = tags.NewNormalizer(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TagBased{
		store:      st,
		normalizer: normalizer,
		logger:     logger.With("component", "tag_retriever"),
	}, nil
}

// Retrieve returns items with a positive overlap score, best first.
func (r *TagBased) Retrieve(ctx context.Context, query schema.Query) ([]schema.ScoredItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(query.Tags) == 0 {
		return nil, nil
	}

	items := r.store.Items()
	results := make([]schema.ScoredItem, 0, len(items))
	for _, item := range items {
		overlap := r.normalizer.Overlap(query.Tags, item.Tags)
		if overlap.OverlapScore <= 0 {
			continue
		}
		results = append(results, schema.ScoredItem{
			Item:        item,
			Score:       overlap.OverlapScore,
			MatchedTags: overlap.MatchedTags,
			Category:    item.Category,
		})
	}

	results = sortAndTruncate(results, query.MaxResults)
	r.logger.DebugContext(ctx, "Tag retrieval completed",
		"scanned", len(items), "matched", len(results))
	return results, nil
}
