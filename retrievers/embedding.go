package retrievers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/promptctx/promptctx/embeddings"
	"github.com/promptctx/promptctx/schema"
	"github.com/promptctx/promptctx/similarity"
	"github.com/promptctx/promptctx/store"
)

// EmbeddingBased ranks items by cosine similarity between the query text
// and each item's content vector. Items with a precomputed embedding skip
// the encode call; the rest are encoded in one batch per retrieval.
type EmbeddingBased struct {
	store    *store.Store
	embedder embeddings.Embedder
	minScore float64
	logger   *slog.Logger
}

var _ schema.Retriever = (*EmbeddingBased)(nil)

// NewEmbeddingBased creates a semantic retriever. The embedder is a hard
// construction-time dependency; there is no lazy fallback.
func NewEmbeddingBased(st *store.Store, embedder embeddings.Embedder, minScore float64, logger *slog.Logger) (*EmbeddingBased, error) {
	if st == nil {
		return nil, ErrMissingStore
	}
	if embedder == nil {
		return nil, ErrMissingEmbedder
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EmbeddingBased{
		store:    st,
		embedder: embedder,
		minScore: minScore,
		logger:   logger.With("component", "embedding_retriever"),
	}, nil
}

// Retrieve ranks the full store snapshot by semantic similarity, drops
// items below the minimum score, and truncates.
func (r *EmbeddingBased) Retrieve(ctx context.Context, query schema.Query) ([]schema.ScoredItem, error) {
	queryText := queryText(query)
	if queryText == "" {
		return nil, nil
	}

	queryVec, err := r.embedder.EmbedQuery(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	items := r.store.Items()
	vectors, err := r.itemVectors(ctx, items)
	if err != nil {
		return nil, err
	}

	scores := similarity.BatchCosine(queryVec, vectors)

	results := make([]schema.ScoredItem, 0, len(items))
	for i, item := range items {
		if scores[i] < r.minScore {
			continue
		}
		results = append(results, schema.ScoredItem{
			Item:     item,
			Score:    scores[i],
			Category: item.Category,
		})
	}

	results = sortAndTruncate(results, query.MaxResults)
	r.logger.DebugContext(ctx, "Embedding retrieval completed",
		"scanned", len(items), "kept", len(results))
	return results, nil
}

// itemVectors returns one vector per item, using the precomputed embedding
// where present and encoding the rest in a single batch.
func (r *EmbeddingBased) itemVectors(ctx context.Context, items []schema.ContextItem) ([][]float32, error) {
	vectors := make([][]float32, len(items))

	var missingTexts []string
	var missingIdx []int
	for i, item := range items {
		if len(item.Embedding) > 0 {
			vectors[i] = item.Embedding
			continue
		}
		missingTexts = append(missingTexts, itemText(item))
		missingIdx = append(missingIdx, i)
	}

	if len(missingTexts) > 0 {
		encoded, err := r.embedder.EmbedDocuments(ctx, missingTexts)
		if err != nil {
			return nil, fmt.Errorf("failed to embed %d items: %w", len(missingTexts), err)
		}
		if len(encoded) != len(missingTexts) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d items",
				len(encoded), len(missingTexts))
		}
		for j, i := range missingIdx {
			vectors[i] = encoded[j]
		}
	}
	return vectors, nil
}

// queryText is the text ranked against item content: the description when
// present, the space-joined tags otherwise.
func queryText(query schema.Query) string {
	if strings.TrimSpace(query.Description) != "" {
		return query.Description
	}
	return strings.TrimSpace(strings.Join(query.Tags, " "))
}

// itemText is the text encoded for items without a precomputed embedding.
func itemText(item schema.ContextItem) string {
	if len(item.Tags) == 0 {
		return item.Content
	}
	return item.Content + " " + strings.Join(item.Tags, " ")
}
