package rcslice

import (
	"fmt"
	"iter"
	"slices"
)

// ArcSlice is a read-only view into part of an atomically reference-counted
// slice.
//
// Clone and Release may be called concurrently from many goroutines, even
// on views sharing one backing allocation. The bounds of a single ArcSlice
// are not synchronized: concurrent Advance, Retract or Split calls on the
// same instance need external locking. Distinct instances need none.
//
// An ArcSlice must not be copied by value; use Clone.
type ArcSlice[T any] struct {
	w window[T, atomicRefs, *atomicRefs]
}

// NewArc returns a view spanning all of data. The view takes ownership of
// data; the caller must not modify it afterwards.
func NewArc[T any](data []T, opts ...Option) *ArcSlice[T] {
	return &ArcSlice[T]{w: wholeWindow[T, atomicRefs, *atomicRefs](data, applyOptions(opts))}
}

// Clone returns an independent view with the same bounds that shares the
// backing allocation. The clone of a nil view is nil.
func (s *ArcSlice[T]) Clone() *ArcSlice[T] {
	if s == nil {
		return nil
	}
	return &ArcSlice[T]{w: s.w.clone()}
}

// Release drops the view's reference. The backing allocation is reclaimed
// when its last view is released. Release is idempotent; a released view
// is empty and rejects bounds changes with ErrReleased.
func (s *ArcSlice[T]) Release() {
	if s == nil {
		return
	}
	s.w.release()
}

// Bounds returns the start and end of the view within the backing slice.
func (s *ArcSlice[T]) Bounds() (start, end int) {
	if s == nil {
		return 0, 0
	}
	return s.w.bounds()
}

// Slice returns the visible elements. The result shares memory with the
// backing allocation and must not be modified. Its capacity is capped at
// its length.
//
// The result stays readable after the view is released as long as the
// backing memory is owned by the Go heap. If the backing was registered
// with an OnRelease hook that frees it (an unmapped file, for example),
// the result is valid only until the last view is released.
func (s *ArcSlice[T]) Slice() []T {
	if s == nil {
		return nil
	}
	return s.w.slice()
}

// Len returns the number of visible elements.
func (s *ArcSlice[T]) Len() int {
	start, end := s.Bounds()
	return end - start
}

// At returns the i-th visible element. It panics if i is out of range.
func (s *ArcSlice[T]) At(i int) T {
	return s.Slice()[i]
}

// All iterates over the visible elements with their indices.
func (s *ArcSlice[T]) All() iter.Seq2[int, T] {
	return slices.All(s.Slice())
}

// Values iterates over the visible elements.
func (s *ArcSlice[T]) Values() iter.Seq[T] {
	return slices.Values(s.Slice())
}

// RefCount reports how many views currently share the backing allocation.
func (s *ArcSlice[T]) RefCount() int64 {
	if s == nil {
		return 0
	}
	return s.w.refCount()
}

// Advance moves the start of the view forward by incr elements and returns
// the elements cut off. On error the view is unchanged. The returned
// elements share the lifetime rules of Slice.
func (s *ArcSlice[T]) Advance(incr int) ([]T, error) {
	if s == nil {
		return nil, ErrReleased
	}
	return s.w.advance(incr)
}

// Retract moves the end of the view back by decr elements and returns the
// elements cut off. On error the view is unchanged. The returned elements
// share the lifetime rules of Slice.
func (s *ArcSlice[T]) Retract(decr int) ([]T, error) {
	if s == nil {
		return nil, ErrReleased
	}
	return s.w.retract(decr)
}

// SplitOffBefore returns a new view of the first index elements and moves
// the receiver to the remaining elements. On error the view is unchanged.
func (s *ArcSlice[T]) SplitOffBefore(index int) (*ArcSlice[T], error) {
	if s == nil {
		return nil, ErrReleased
	}
	front, err := s.w.splitOffBefore(index)
	if err != nil {
		return nil, err
	}
	return &ArcSlice[T]{w: front}, nil
}

// SplitOffAfter returns a new view of the elements after the first index
// and shrinks the receiver to the first index elements. On error the view
// is unchanged.
func (s *ArcSlice[T]) SplitOffAfter(index int) (*ArcSlice[T], error) {
	if s == nil {
		return nil, ErrReleased
	}
	back, err := s.w.splitOffAfter(index)
	if err != nil {
		return nil, err
	}
	return &ArcSlice[T]{w: back}, nil
}

// String renders the visible elements.
func (s *ArcSlice[T]) String() string {
	return fmt.Sprint(s.Slice())
}

// Format renders the visible elements with the given verb and flags.
func (s *ArcSlice[T]) Format(f fmt.State, verb rune) {
	fmt.Fprintf(f, fmt.FormatString(f, verb), s.Slice())
}
