package schema

import (
	"context"
	"fmt"
	"time"
)

// Category classifies a context item by what kind of fact it records.
type Category string

const (
	CategorySession  Category = "session"
	CategoryActivity Category = "activity"
	CategoryTask     Category = "task"
	CategoryAction   Category = "action"
	CategoryDecision Category = "decision"
	CategoryLearning Category = "learning"
	CategoryResult   Category = "result"
)

// Categories lists every valid category, in declaration order.
func Categories() []Category {
	return []Category{
		CategorySession,
		CategoryActivity,
		CategoryTask,
		CategoryAction,
		CategoryDecision,
		CategoryLearning,
		CategoryResult,
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategorySession, CategoryActivity, CategoryTask,
		CategoryAction, CategoryDecision, CategoryLearning, CategoryResult:
		return true
	}
	return false
}

// ContextItem is a single recorded fact from a coding session. Items are
// immutable once created; the store hands out value copies, never shared
// pointers.
type ContextItem struct {
	ID        string
	Category  Category
	Content   string
	Tags      []string
	Timestamp time.Time

	// ActivityID and TaskID are back-references to the hierarchy node that
	// was current when the item was recorded. Relation only, not ownership.
	ActivityID string
	TaskID     string

	Metadata map[string]any

	// Embedding is an optional precomputed vector for the item's content.
	// When absent, embedding-based retrievers encode on demand.
	Embedding []float32

	// Seq is the store-assigned insertion sequence. Retrievers use it as the
	// deterministic tie-break for equal scores.
	Seq uint64
}

func (it ContextItem) String() string {
	return fmt.Sprintf("[%s] %s (tags: %v)", it.Category, it.Content, it.Tags)
}

// Query describes one retrieval request.
type Query struct {
	Tags        []string
	Description string
	MaxResults  int
}

// ScoredItem is one ranked retrieval result.
type ScoredItem struct {
	Item        ContextItem
	Score       float64
	MatchedTags []string
	Category    Category
}

// Retriever fetches context items relevant to a query. Implementations rank
// results by descending score, break ties by store insertion order, and
// return at most Query.MaxResults items.
type Retriever interface {
	Retrieve(ctx context.Context, query Query) ([]ScoredItem, error)
}
