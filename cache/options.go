package cache

import "time"

type options struct {
	capacity int
	now      func() time.Time
}

// Option configures a Cache.
type Option func(*options)

// WithCapacity bounds the number of entries. Defaults to DefaultCapacity.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithClock injects the time source used for TTL checks. Tests use it to
// advance time without sleeping.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func applyOptions(opts ...Option) options {
	o := options{
		capacity: DefaultCapacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
