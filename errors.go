package rcslice

import (
	"errors"
	"fmt"
)

var (
	// ErrOverflow is returned when an offset added to (or subtracted from)
	// the current index leaves the representable index range.
	ErrOverflow = errors.New("rcslice: index arithmetic overflow")

	// ErrOutOfBounds is returned when a requested cut point lies outside
	// the current window.
	ErrOutOfBounds = errors.New("rcslice: out of bounds")

	// ErrReleased is returned when a mutating operation is invoked on a
	// view that has already been released.
	ErrReleased = errors.New("rcslice: view released")
)

// BoundsError describes a rejected bounds transition. The view it was
// raised for is left unchanged.
//
// Err is ErrOverflow or ErrOutOfBounds and can be matched with errors.Is.
type BoundsError struct {
	Op    string
	Start int
	End   int
	N     int
	Err   error
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("%s %d on [%d, %d): %v", e.Op, e.N, e.Start, e.End, e.Err)
}

func (e *BoundsError) Unwrap() error { return e.Err }
