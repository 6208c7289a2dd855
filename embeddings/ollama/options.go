package ollama

import (
	"log/slog"
	"net/http"
	"os"
	"time"
)

const (
	DefaultOllamaURL = "http://127.0.0.1:11434"
	DefaultTimeout   = 30 * time.Second
)

type options struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures the Ollama embedder.
type Option func(*options)

// WithModel sets the embedding model, e.g. "nomic-embed-text".
func WithModel(model string) Option {
	return func(o *options) {
		o.model = model
	}
}

// WithBaseURL overrides the server URL. Defaults to OLLAMA_URL or the local
// daemon address.
func WithBaseURL(url string) Option {
	return func(o *options) {
		o.baseURL = url
	}
}

// WithHTTPClient overrides the HTTP client, e.g. to tighten timeouts.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func applyOptions(opts ...Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.baseURL == "" {
		o.baseURL = os.Getenv("OLLAMA_URL")
	}
	if o.baseURL == "" {
		o.baseURL = DefaultOllamaURL
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}
