package retrievers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/promptctx/promptctx/embeddings"
	"github.com/promptctx/promptctx/schema"
	"github.com/promptctx/promptctx/similarity"
)

// DefaultMaxCandidates is the stage-1 candidate budget when the
// configuration does not set one.
const DefaultMaxCandidates = 20

// Hybrid is a two-stage retriever: tag overlap generates a high-recall
// candidate set on the cheap, then embedding similarity re-ranks it. The
// blend is final = (1-w)*tag + w*semantic.
type Hybrid struct {
	tagBased      *TagBased
	embedder      embeddings.Embedder
	weight        float64
	maxCandidates int
	logger        *slog.Logger
}

var _ schema.Retriever = (*Hybrid)(nil)

// NewHybrid creates a hybrid retriever. Like the pure-semantic strategy it
// requires its embedder at construction time.
func NewHybrid(tagBased *TagBased, embedder embeddings.Embedder, weight float64, maxCandidates int, logger *slog.Logger) (*Hybrid, error) {
	if tagBased == nil {
		return nil, ErrMissingStore
	}
	if embedder == nil {
		return nil, ErrMissingEmbedder
	}
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxCandidates
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hybrid{
		tagBased:      tagBased,
		embedder:      embedder,
		weight:        weight,
		maxCandidates: maxCandidates,
		logger:        logger.With("component", "hybrid_retriever"),
	}, nil
}

// Retrieve runs tag-based candidate generation with the enlarged candidate
// budget, then re-ranks with blended scores. When stage 1 already fits in
// MaxResults the re-rank is skipped entirely, saving the embedding calls.
// When the embedding call fails or times out, the stage-1 tag scores stand.
func (r *Hybrid) Retrieve(ctx context.Context, query schema.Query) ([]schema.ScoredItem, error) {
	candidateQuery := query
	candidateQuery.MaxResults = r.maxCandidates

	candidates, err := r.tagBased.Retrieve(ctx, candidateQuery)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	if len(candidates) <= query.MaxResults {
		r.logger.DebugContext(ctx, "Skipping semantic re-rank",
			"candidates", len(candidates), "max_results", query.MaxResults)
		return candidates, nil
	}

	reranked, err := r.rerank(ctx, query, candidates)
	if err != nil {
		r.logger.WarnContext(ctx, "Semantic re-rank failed, keeping tag scores", "error", err)
		return sortAndTruncate(candidates, query.MaxResults), nil
	}
	return sortAndTruncate(reranked, query.MaxResults), nil
}

// rerank blends each candidate's tag score with its semantic similarity.
func (r *Hybrid) rerank(ctx context.Context, query schema.Query, candidates []schema.ScoredItem) ([]schema.ScoredItem, error) {
	queryVec, err := r.embedder.EmbedQuery(ctx, queryText(query))
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(candidates))
	var missingTexts []string
	var missingIdx []int
	for i, c := range candidates {
		if len(c.Item.Embedding) > 0 {
			vectors[i] = c.Item.Embedding
			continue
		}
		missingTexts = append(missingTexts, itemText(c.Item))
		missingIdx = append(missingIdx, i)
	}
	if len(missingTexts) > 0 {
		encoded, err := r.embedder.EmbedDocuments(ctx, missingTexts)
		if err != nil {
			return nil, err
		}
		if len(encoded) != len(missingTexts) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d candidates",
				len(encoded), len(missingTexts))
		}
		for j, i := range missingIdx {
			vectors[i] = encoded[j]
		}
	}

	semantic := similarity.BatchCosine(queryVec, vectors)

	reranked := make([]schema.ScoredItem, len(candidates))
	for i, c := range candidates {
		c.Score = (1-r.weight)*c.Score + r.weight*semantic[i]
		reranked[i] = c
	}
	return reranked, nil
}
