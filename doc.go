// Package rcslice provides reference-counted slices that support easy
// subdivision.
//
// A view is a window [start, end) into a backing slice that is shared by
// every view derived from it. Views can shrink from either end or split
// into two disjoint views without copying, and the backing allocation is
// reclaimed when the last view is released.
//
// # Variants
//
// Two view types share one implementation and differ only in how the
// reference count is maintained:
//
//   - RcSlice: plain counter, for views confined to one goroutine
//   - ArcSlice: atomic counter, for views handed across goroutines
//
// RcBytes and ArcBytes are the byte instantiations.
//
// # Quick Start
//
//	v := rcslice.NewArc([]int{10, 20, 30, 40, 50})
//	defer v.Release()
//
//	front, _ := v.SplitOffBefore(2) // front = [10 20], v = [30 40 50]
//	defer front.Release()
//
//	cut, _ := v.Advance(1)  // cut = [30], v = [40 50]
//	cut, _ = v.Retract(1)   // cut = [50], v = [40]
//	_, err := v.Advance(5)  // errors.Is(err, rcslice.ErrOutOfBounds), v = [40]
//
// # Bounds Transitions
//
// Advance, Retract, SplitOffBefore and SplitOffAfter compute the new bound,
// validate it and only then commit. A failed call returns a *BoundsError
// wrapping ErrOverflow or ErrOutOfBounds and leaves the view unchanged.
//
// # Reading
//
// Slice returns the visible elements as an ordinary Go slice that must be
// treated as read-only. Equal, Compare and Hash operate on visible content,
// so two views over different allocations with the same elements are
// equal and hash alike.
//
// # Reclamation
//
// Release drops a view's reference. WithOnRelease attaches a hook that runs
// exactly once when the count reaches zero, which is how the blobstore
// package unmaps files and returns memory to a resource budget.
package rcslice
