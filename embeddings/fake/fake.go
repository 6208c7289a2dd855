// Package fake provides a deterministic in-process embedder for tests and
// offline examples. Vectors come from hashing tokens into a fixed number of
// buckets, so identical text always produces the identical vector and
// texts sharing words land near each other.
package fake

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/promptctx/promptctx/embeddings"
)

const DefaultDimension = 64

// Embedder is a hash-projection embedder with a fixed dimension.
type Embedder struct {
	mu        sync.Mutex
	dimension int
	callCount int

	// ErrToReturn, when set, is returned by every embed call. Used to test
	// degradation paths.
	ErrToReturn error
	// Delay is applied before each embed call, honoring ctx cancellation.
	// Used to test timeout bounds.
	Delay time.Duration
}

var _ embeddings.Embedder = (*Embedder)(nil)

// New creates a fake embedder with the default dimension.
func New() *Embedder {
	return NewWithDimension(DefaultDimension)
}

// NewWithDimension creates a fake embedder producing vectors of dim floats.
func NewWithDimension(dim int) *Embedder {
	if dim <= 0 {
		dim = DefaultDimension
	}
	return &Embedder{dimension: dim}
}

// EmbedQuery encodes a single text. Empty or whitespace-only input encodes
// to the zero vector of the fixed dimension.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.callCount++
	errToReturn := e.ErrToReturn
	delay := e.Delay
	e.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	if errToReturn != nil {
		return nil, errToReturn
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	return e.encode(text), nil
}

// EmbedDocuments encodes a batch of texts.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.EmbedQuery(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// GetDimension returns the fixed vector dimension.
func (e *Embedder) GetDimension(_ context.Context) (int, error) {
	return e.dimension, nil
}

// CallCount returns how many embed calls have been made.
func (e *Embedder) CallCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.callCount
}

// Reset clears the call counter and injected failure state.
func (e *Embedder) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.callCount = 0
	e.ErrToReturn = nil
	e.Delay = 0
}

func (e *Embedder) encode(text string) []float32 {
	vec := make([]float32, e.dimension)
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return vec
	}
	for _, token := range fields {
		h := fnv.New64a()
		h.Write([]byte(token))
		sum := h.Sum64()
		bucket := int(sum % uint64(e.dimension))
		// Alternate sign from a second hash bit so unrelated tokens cancel
		// instead of piling up positive mass.
		if (sum>>63)&1 == 1 {
			vec[bucket] -= 1
		} else {
			vec[bucket] += 1
		}
	}
	return vec
}
