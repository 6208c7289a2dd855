package schema_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptctx/promptctx/schema"
	"github.com/promptctx/promptctx/schema/fake"
)

func TestCategoryValid(t *testing.T) {
	for _, c := range schema.Categories() {
		assert.True(t, c.Valid(), "category %q must be valid", c)
	}

	assert.False(t, schema.Category("").Valid())
	assert.False(t, schema.Category("note").Valid())
	assert.False(t, schema.Category("Action").Valid(), "categories are case-sensitive")
}

func TestContextItemString(t *testing.T) {
	item := schema.ContextItem{
		Category: schema.CategoryDecision,
		Content:  "use ULIDs",
		Tags:     []string{"database"},
	}
	assert.Equal(t, "[decision] use ULIDs (tags: [database])", item.String())
}

func TestFakeRetriever(t *testing.T) {
	ctx := context.Background()

	t.Run("returns canned results and records the query", func(t *testing.T) {
		r := fake.NewRetriever()
		r.ResultsToReturn = []schema.ScoredItem{
			{Item: schema.ContextItem{Content: "x"}, Score: 0.9},
		}

		query := schema.Query{Tags: []string{"api"}, MaxResults: 3}
		results, err := r.Retrieve(ctx, query)
		require.NoError(t, err)

		assert.Equal(t, r.ResultsToReturn, results)
		assert.Equal(t, query, r.LastQuery)
		assert.Equal(t, 1, r.CallCount)
	})

	t.Run("returns the canned error", func(t *testing.T) {
		r := fake.NewRetriever()
		r.ErrToReturn = errors.New("unavailable")

		_, err := r.Retrieve(ctx, schema.Query{})
		assert.ErrorContains(t, err, "unavailable")
	})
}
