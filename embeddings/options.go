package embeddings

import "time"

type options struct {
	StripNewLines bool
	BatchSize     int
	Timeout       time.Duration
}

type Option func(*options)

func WithBatchSize(size int) Option {
	return func(opts *options) {
		opts.BatchSize = size
	}
}

func WithStripNewLines(strip bool) Option {
	return func(opts *options) {
		opts.StripNewLines = strip
	}
}

// WithTimeout bounds every underlying provider call. A retrieval scan must
// degrade rather than stall when the embedding backend hangs; zero means no
// bound beyond the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(opts *options) {
		opts.Timeout = d
	}
}
