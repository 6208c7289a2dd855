package store

import "log/slog"

type options struct {
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*options)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func applyOptions(opts ...Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

type itemOptions struct {
	activityID string
	taskID     string
	metadata   map[string]any
	embedding  []float32
}

// ItemOption attaches optional fields to a new context item.
type ItemOption func(*itemOptions)

// WithActivityID records which activity the item belongs to.
func WithActivityID(id string) ItemOption {
	return func(o *itemOptions) {
		o.activityID = id
	}
}

// WithTaskID records which task the item belongs to.
func WithTaskID(id string) ItemOption {
	return func(o *itemOptions) {
		o.taskID = id
	}
}

// WithMetadata attaches free-form metadata.
func WithMetadata(meta map[string]any) ItemOption {
	return func(o *itemOptions) {
		o.metadata = meta
	}
}

// WithEmbedding attaches a precomputed content vector so embedding-based
// retrieval can skip the encode call for this item.
func WithEmbedding(vec []float32) ItemOption {
	return func(o *itemOptions) {
		o.embedding = vec
	}
}

func applyItemOptions(opts ...ItemOption) itemOptions {
	var o itemOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
