package rcslice

import (
	"cmp"
	"hash/maphash"
	"slices"
)

// Viewer is the read-only sequence capability shared by RcSlice and
// ArcSlice. Anything that can expose its visible elements as a slice
// satisfies it.
type Viewer[T any] interface {
	Slice() []T
}

// Equal reports whether a and b show the same elements. Backing
// allocations and bounds are irrelevant.
func Equal[T comparable](a, b Viewer[T]) bool {
	return slices.Equal(a.Slice(), b.Slice())
}

// EqualFunc is like Equal but compares elements with eq.
func EqualFunc[T any](a, b Viewer[T], eq func(T, T) bool) bool {
	return slices.EqualFunc(a.Slice(), b.Slice(), eq)
}

// Compare compares the visible elements of a and b lexicographically.
func Compare[T cmp.Ordered](a, b Viewer[T]) int {
	return slices.Compare(a.Slice(), b.Slice())
}

// CompareFunc is like Compare but orders elements with compare.
func CompareFunc[T any](a, b Viewer[T], compare func(T, T) int) int {
	return slices.CompareFunc(a.Slice(), b.Slice(), compare)
}

// Hash hashes the visible elements of v. Views for which Equal reports
// true hash identically under the same seed.
func Hash[T comparable](seed maphash.Seed, v Viewer[T]) uint64 {
	var h maphash.Hash
	h.SetSeed(seed)
	for _, e := range v.Slice() {
		maphash.WriteComparable(&h, e)
	}
	return h.Sum64()
}

// HashBytes hashes the visible bytes of v in one call. Its results are not
// interchangeable with Hash.
func HashBytes(seed maphash.Seed, v Viewer[byte]) uint64 {
	return maphash.Bytes(seed, v.Slice())
}
