package retrievers_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptctx/promptctx/embeddings/fake"
	"github.com/promptctx/promptctx/retrievers"
	"github.com/promptctx/promptctx/schema"
	"github.com/promptctx/promptctx/similarity"
	"github.com/promptctx/promptctx/store"
)

func TestEmbeddingBasedRetrieve(t *testing.T) {
	ctx := context.Background()

	t.Run("requires an embedder at construction", func(t *testing.T) {
		_, err := retrievers.NewEmbeddingBased(store.New(), nil, 0, nil)
		assert.ErrorIs(t, err, retrievers.ErrMissingEmbedder)
	})

	t.Run("ranks by cosine similarity", func(t *testing.T) {
		s := store.New()
		// The fake embedder hashes tokens, so token overlap drives the
		// scores: the first item shares both query words.
		_, err := s.AddItem(schema.CategoryLearning, "token refresh logic", []string{"auth"})
		require.NoError(t, err)
		_, err = s.AddItem(schema.CategoryLearning, "database vacuum schedule", []string{"database"})
		require.NoError(t, err)

		r, err := retrievers.NewEmbeddingBased(s, fake.New(), 0, nil)
		require.NoError(t, err)

		results, err := r.Retrieve(ctx, schema.Query{
			Description: "token refresh",
			MaxResults:  10,
		})
		require.NoError(t, err)

		require.NotEmpty(t, results)
		assert.Equal(t, "token refresh logic", results[0].Item.Content)
		for i := 1; i < len(results); i++ {
			assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
		}
	})

	t.Run("uses precomputed embeddings without encoding", func(t *testing.T) {
		emb := fake.New()
		s := store.New()

		vecA, err := emb.EmbedQuery(ctx, "alpha topic")
		require.NoError(t, err)
		vecB, err := emb.EmbedQuery(ctx, "beta topic")
		require.NoError(t, err)
		_, err = s.AddItem(schema.CategoryAction, "a", nil, store.WithEmbedding(vecA))
		require.NoError(t, err)
		_, err = s.AddItem(schema.CategoryAction, "b", nil, store.WithEmbedding(vecB))
		require.NoError(t, err)

		emb.Reset()
		r, err := retrievers.NewEmbeddingBased(s, emb, 0, nil)
		require.NoError(t, err)

		_, err = r.Retrieve(ctx, schema.Query{Description: "alpha topic", MaxResults: 5})
		require.NoError(t, err)

		assert.Equal(t, 1, emb.CallCount(), "only the query should be encoded")
	})

	t.Run("minScore filters weak matches", func(t *testing.T) {
		s := store.New()
		_, err := s.AddItem(schema.CategoryAction, "completely unrelated words here", nil)
		require.NoError(t, err)
		_, err = s.AddItem(schema.CategoryAction, "exact match text", nil)
		require.NoError(t, err)

		r, err := retrievers.NewEmbeddingBased(s, fake.New(), 0.9, nil)
		require.NoError(t, err)

		results, err := r.Retrieve(ctx, schema.Query{
			Description: "exact match text",
			MaxResults:  10,
		})
		require.NoError(t, err)

		require.Len(t, results, 1)
		assert.Equal(t, "exact match text", results[0].Item.Content)
	})

	t.Run("zero scores are not below a zero floor", func(t *testing.T) {
		emb := fake.New()
		s := store.New()

		queryVec, err := emb.EmbedQuery(ctx, "alpha")
		require.NoError(t, err)
		_, err = s.AddItem(schema.CategoryAction, "aligned", nil,
			store.WithEmbedding(queryVec))
		require.NoError(t, err)
		// Zero norm scores exactly 0 against any query.
		_, err = s.AddItem(schema.CategoryAction, "unrelated", nil,
			store.WithEmbedding(make([]float32, len(queryVec))))
		require.NoError(t, err)

		r, err := retrievers.NewEmbeddingBased(s, emb, 0, nil)
		require.NoError(t, err)

		results, err := r.Retrieve(ctx, schema.Query{Description: "alpha", MaxResults: 10})
		require.NoError(t, err)

		require.Len(t, results, 2)
		assert.Equal(t, "aligned", results[0].Item.Content)
		assert.Zero(t, results[1].Score)
	})

	t.Run("falls back to joined tags as query text", func(t *testing.T) {
		s := store.New()
		_, err := s.AddItem(schema.CategoryAction, "auth middleware", []string{"auth"}) // shares the tag token
		require.NoError(t, err)

		r, err := retrievers.NewEmbeddingBased(s, fake.New(), 0, nil)
		require.NoError(t, err)

		results, err := r.Retrieve(ctx, schema.Query{Tags: []string{"auth"}, MaxResults: 5})
		require.NoError(t, err)
		assert.NotEmpty(t, results)
	})

	t.Run("empty query yields nothing", func(t *testing.T) {
		s := store.New()
		_, err := s.AddItem(schema.CategoryAction, "x", nil)
		require.NoError(t, err)

		r, err := retrievers.NewEmbeddingBased(s, fake.New(), 0, nil)
		require.NoError(t, err)

		results, err := r.Retrieve(ctx, schema.Query{MaxResults: 5})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("embedder failure surfaces as an error", func(t *testing.T) {
		s := store.New()
		_, err := s.AddItem(schema.CategoryAction, "x", nil)
		require.NoError(t, err)

		failing := fake.New()
		failing.ErrToReturn = errors.New("model offline")

		r, err := retrievers.NewEmbeddingBased(s, failing, 0, nil)
		require.NoError(t, err)

		_, err = r.Retrieve(ctx, schema.Query{Description: "q", MaxResults: 5})
		assert.ErrorContains(t, err, "model offline")
	})
}

// TestEmbeddingScoresMatchSimilarityPackage pins the strategy's scores to
// the similarity primitive so the two never drift apart.
func TestEmbeddingScoresMatchSimilarityPackage(t *testing.T) {
	ctx := context.Background()
	emb := fake.New()
	s := store.New()

	contents := []string{"api gateway rollout", "database schema change", "api auth token"}
	for _, c := range contents {
		_, err := s.AddItem(schema.CategoryAction, c, nil)
		require.NoError(t, err)
	}

	r, err := retrievers.NewEmbeddingBased(s, emb, 0, nil)
	require.NoError(t, err)

	results, err := r.Retrieve(ctx, schema.Query{Description: "api rollout", MaxResults: 10})
	require.NoError(t, err)

	queryVec, err := emb.EmbedQuery(ctx, "api rollout")
	require.NoError(t, err)

	for _, res := range results {
		itemVec, embErr := emb.EmbedQuery(ctx, res.Item.Content)
		require.NoError(t, embErr)
		assert.InDelta(t, similarity.Cosine(queryVec, itemVec), res.Score, 1e-9)
	}
}
