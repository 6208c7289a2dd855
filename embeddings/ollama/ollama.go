// Package ollama implements the embeddings.Embedder contract against a
// local or remote Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/ollama/ollama/api"

	"github.com/promptctx/promptctx/embeddings"
)

var (
	ErrMissingModel  = errors.New("ollama: embedding model is required")
	ErrEmptyResponse = errors.New("ollama: server returned no embeddings")
)

// Embedder calls the Ollama /api/embed endpoint.
type Embedder struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *slog.Logger

	dimMu     sync.Mutex
	dimension int
}

var _ embeddings.Embedder = (*Embedder)(nil)

// New creates an Ollama embedder for the given model.
func New(opts ...Option) (*Embedder, error) {
	o := applyOptions(opts...)

	if o.model == "" {
		return nil, ErrMissingModel
	}

	return &Embedder{
		baseURL:    o.baseURL,
		model:      o.model,
		httpClient: o.httpClient,
		logger:     o.logger.With("component", "ollama_embedder", "model", o.model),
	}, nil
}

// EmbedDocuments embeds a batch of texts in one server round trip.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	resp, err := e.embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d",
			ErrEmptyResponse, len(texts), len(resp.Embeddings))
	}
	return resp.Embeddings, nil
}

// EmbedQuery embeds a single text.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0]) == 0 {
		return nil, ErrEmptyResponse
	}
	return resp.Embeddings[0], nil
}

// GetDimension returns the model's vector dimension, discovered by embedding
// a sample text. The result is cached; failed discovery is retried on the
// next call.
func (e *Embedder) GetDimension(ctx context.Context) (int, error) {
	e.dimMu.Lock()
	defer e.dimMu.Unlock()

	if e.dimension > 0 {
		return e.dimension, nil
	}
	sample, err := e.EmbedQuery(ctx, "dimension")
	if err != nil {
		return 0, fmt.Errorf("failed to discover embedding dimension: %w", err)
	}
	e.dimension = len(sample)
	return e.dimension, nil
}

func (e *Embedder) embed(ctx context.Context, input []string) (*api.EmbedResponse, error) {
	reqBody := api.EmbedRequest{
		Model: e.model,
		Input: input,
	}
	payload, err := json.Marshal(&reqBody)
	if err != nil {
		return nil, fmt.Errorf("ollama: failed to marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		e.baseURL+"/api/embed", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("ollama: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := e.httpClient.Do(req)
	if err != nil {
		e.logger.ErrorContext(ctx, "Embed request failed", "error", err, "inputs", len(input))
		return nil, fmt.Errorf("ollama: embed request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(httpResp.Body)
		return nil, fmt.Errorf("ollama: embed request returned %d: %s",
			httpResp.StatusCode, string(body))
	}

	var resp api.EmbedResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("ollama: failed to decode embed response: %w", err)
	}
	return &resp, nil
}
