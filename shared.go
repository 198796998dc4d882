package rcslice

import "time"

// shared is a backing allocation: an immutable slice owned jointly by every
// view that references it.
type shared[T any, R any, PR refs[R]] struct {
	data      []T
	refs      R
	created   time.Time
	onRelease func()
	logger    *Logger
	metrics   MetricsCollector
}

func newShared[T any, R any, PR refs[R]](data []T, o options) *shared[T, R, PR] {
	s := &shared[T, R, PR]{
		data:      data,
		onRelease: o.onRelease,
		logger:    o.logger,
		metrics:   o.metrics,
	}
	PR(&s.refs).add(1)

	if s.metrics != nil {
		s.created = time.Now()
		s.metrics.RecordAlloc(len(data))
	}
	if s.logger != nil {
		s.logger.LogAlloc(len(data))
	}
	return s
}

func (s *shared[T, R, PR]) retain() {
	PR(&s.refs).add(1)
}

// release drops one reference and reclaims the allocation when it was the
// last one. It reports whether the allocation was reclaimed.
func (s *shared[T, R, PR]) release() bool {
	n := PR(&s.refs).add(-1)
	if n > 0 {
		return false
	}
	if n < 0 {
		panic("rcslice: reference count underflow")
	}

	size := len(s.data)
	s.data = nil

	if s.metrics != nil {
		s.metrics.RecordRelease(size, time.Since(s.created))
	}
	if s.logger != nil {
		s.logger.LogRelease(size)
	}
	if s.onRelease != nil {
		s.onRelease()
	}
	return true
}

func (s *shared[T, R, PR]) count() int64 {
	return PR(&s.refs).load()
}
