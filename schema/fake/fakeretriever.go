package fake

import (
	"context"

	"github.com/promptctx/promptctx/schema"
)

// Retriever is a canned retriever for testing collaborators.
type Retriever struct {
	ResultsToReturn []schema.ScoredItem
	ErrToReturn     error
	LastQuery       schema.Query
	CallCount       int
}

var _ schema.Retriever = (*Retriever)(nil)

// NewRetriever creates a new fake retriever.
func NewRetriever() *Retriever {
	return &Retriever{}
}

// Retrieve returns the pre-configured results and error.
func (r *Retriever) Retrieve(_ context.Context, query schema.Query) ([]schema.ScoredItem, error) {
	r.LastQuery = query
	r.CallCount++
	return r.ResultsToReturn, r.ErrToReturn
}
