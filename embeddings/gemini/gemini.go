// Package gemini implements the embeddings.Embedder contract on top of the
// Gemini API via google.golang.org/genai.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"google.golang.org/genai"

	"github.com/promptctx/promptctx/embeddings"
)

var (
	ErrNoAPIKey     = errors.New("gemini: API key is required")
	ErrInvalidModel = errors.New("gemini: embedding model is required")
	ErrEmbeddings   = errors.New("gemini: failed to generate embeddings")
)

// Embedder calls the Gemini embedding models.
type Embedder struct {
	client  *genai.Client
	options options
	logger  *slog.Logger

	// dimension is cached after the first successful GetDimension call
	dimMu     sync.Mutex
	dimension int
}

var _ embeddings.Embedder = (*Embedder)(nil)

// New creates a new Gemini embedder.
func New(ctx context.Context, opts ...Option) (*Embedder, error) {
	o := applyOptions(opts...)

	if o.apiKey == "" {
		o.apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if o.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	if o.model == "" {
		return nil, ErrInvalidModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: o.apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	e := &Embedder{
		client:  client,
		options: o,
		logger:  o.logger.With("component", "gemini_embedder", "model", o.model),
	}

	e.logger.Info("Gemini embedder initialized successfully")
	return e, nil
}

// EmbedDocuments generates embeddings for a slice of texts.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	res, err := e.client.Models.EmbedContent(ctx, e.options.model, contents, nil)
	if err != nil {
		e.logger.ErrorContext(ctx, "Embedding call failed", "error", err, "inputs", len(texts))
		return nil, fmt.Errorf("%s: %w", ErrEmbeddings.Error(), err)
	}

	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, but got %d",
			ErrEmbeddings, len(texts), len(res.Embeddings))
	}

	vectors := make([][]float32, len(res.Embeddings))
	for i, emb := range res.Embeddings {
		vectors[i] = emb.Values
	}
	return vectors, nil
}

// EmbedQuery generates an embedding for a single text query.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	content := genai.NewContentFromText(text, genai.RoleUser)
	res, err := e.client.Models.EmbedContent(ctx, e.options.model, []*genai.Content{content}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s for query: %w", ErrEmbeddings.Error(), err)
	}

	if len(res.Embeddings) == 0 || res.Embeddings[0] == nil {
		return nil, fmt.Errorf("%w: embedding is nil or empty", ErrEmbeddings)
	}
	return res.Embeddings[0].Values, nil
}

// GetDimension returns the embedding dimension of the model, discovered by
// embedding a sample text. Failed discovery is retried on the next call.
func (e *Embedder) GetDimension(ctx context.Context) (int, error) {
	e.dimMu.Lock()
	defer e.dimMu.Unlock()

	if e.dimension > 0 {
		return e.dimension, nil
	}
	sampleEmbedding, err := e.EmbedQuery(ctx, "dimension")
	if err != nil {
		return 0, fmt.Errorf("failed to get dimension by embedding sample text: %w", err)
	}
	e.dimension = len(sampleEmbedding)
	return e.dimension, nil
}
