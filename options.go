package rcslice

type options struct {
	onRelease func()
	logger    *Logger
	metrics   MetricsCollector
}

// Option configures a backing allocation at construction.
type Option func(*options)

// WithOnRelease registers f to run once, when the last view of the backing
// allocation is released. It is typically used to unmap a file or to
// return memory to a budget.
//
// With ArcSlice, f runs on whichever goroutine drops the last reference.
//
// If f frees the backing memory, slices previously returned by Slice,
// Advance or Retract must not be read after the last view is released.
func WithOnRelease(f func()) Option {
	return func(o *options) {
		o.onRelease = f
	}
}

// WithLogger logs allocation and reclamation of the backing allocation at
// debug level.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics reports allocation and reclamation to m.
//
// If nil is passed, metrics are disabled.
func WithMetrics(m MetricsCollector) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
