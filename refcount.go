package rcslice

import "sync/atomic"

// refCounter is the counting discipline of a backing allocation.
type refCounter interface {
	add(delta int64) int64
	load() int64
}

// refs binds a counter value type R to its pointer method set so that the
// counter can be embedded by value in the backing allocation.
type refs[R any] interface {
	*R
	refCounter
}

// localRefs is a plain counter. Updates must be sequenced by the caller.
type localRefs struct {
	n int64
}

func (r *localRefs) add(delta int64) int64 {
	r.n += delta
	return r.n
}

func (r *localRefs) load() int64 { return r.n }

// atomicRefs is safe for concurrent clone and release.
type atomicRefs struct {
	n atomic.Int64
}

func (r *atomicRefs) add(delta int64) int64 { return r.n.Add(delta) }

func (r *atomicRefs) load() int64 { return r.n.Load() }
