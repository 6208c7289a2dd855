package tags

type options struct {
	includeRelated bool
}

// Option configures a Normalizer.
type Option func(*options)

// WithRelatedTags controls whether ExpandTags also unions in related tags.
// Disabled by default: related tags widen recall at the cost of precision.
func WithRelatedTags(include bool) Option {
	return func(o *options) {
		o.includeRelated = include
	}
}

func applyOptions(opts ...Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
