package rcslice

import "math"

// window is the bounds arithmetic shared by RcSlice and ArcSlice.
//
// Invariant: buf == nil && start == end == 0, or
// 0 <= start <= end <= len(buf.data).
type window[T any, R any, PR refs[R]] struct {
	buf   *shared[T, R, PR]
	start int
	end   int
}

func wholeWindow[T any, R any, PR refs[R]](data []T, o options) window[T, R, PR] {
	return window[T, R, PR]{
		buf: newShared[T, R, PR](data, o),
		end: len(data),
	}
}

func (w *window[T, R, PR]) bounds() (int, int) {
	return w.start, w.end
}

func (w *window[T, R, PR]) slice() []T {
	if w.buf == nil {
		return nil
	}
	return w.buf.data[w.start:w.end:w.end]
}

func (w *window[T, R, PR]) clone() window[T, R, PR] {
	if w.buf != nil {
		w.buf.retain()
	}
	return *w
}

func (w *window[T, R, PR]) release() {
	if w.buf == nil {
		return
	}
	buf := w.buf
	*w = window[T, R, PR]{}
	buf.release()
}

func (w *window[T, R, PR]) refCount() int64 {
	if w.buf == nil {
		return 0
	}
	return w.buf.count()
}

// frontCut computes start+n for the operations that move the front edge.
func (w *window[T, R, PR]) frontCut(op string, n int) (int, error) {
	if w.buf == nil {
		return 0, ErrReleased
	}
	if n < 0 {
		return 0, w.boundsError(op, n, ErrOutOfBounds)
	}
	if n > math.MaxInt-w.start {
		return 0, w.boundsError(op, n, ErrOverflow)
	}
	cut := w.start + n
	if cut > w.end {
		return 0, w.boundsError(op, n, ErrOutOfBounds)
	}
	return cut, nil
}

func (w *window[T, R, PR]) advance(incr int) ([]T, error) {
	cut, err := w.frontCut("advance", incr)
	if err != nil {
		return nil, err
	}
	shed := w.buf.data[w.start:cut:cut]
	w.start = cut
	return shed, nil
}

func (w *window[T, R, PR]) retract(decr int) ([]T, error) {
	if w.buf == nil {
		return nil, ErrReleased
	}
	if decr < 0 {
		return nil, w.boundsError("retract", decr, ErrOutOfBounds)
	}
	if decr > w.end {
		return nil, w.boundsError("retract", decr, ErrOverflow)
	}
	cut := w.end - decr
	if cut < w.start {
		return nil, w.boundsError("retract", decr, ErrOutOfBounds)
	}
	shed := w.buf.data[cut:w.end:w.end]
	w.end = cut
	return shed, nil
}

// splitOffBefore returns [start, cut) and keeps [cut, end).
func (w *window[T, R, PR]) splitOffBefore(index int) (window[T, R, PR], error) {
	cut, err := w.frontCut("split off before", index)
	if err != nil {
		return window[T, R, PR]{}, err
	}
	front := w.clone()
	front.end = cut
	w.start = cut
	return front, nil
}

// splitOffAfter returns [cut, end) and keeps [start, cut).
func (w *window[T, R, PR]) splitOffAfter(index int) (window[T, R, PR], error) {
	cut, err := w.frontCut("split off after", index)
	if err != nil {
		return window[T, R, PR]{}, err
	}
	back := w.clone()
	back.start = cut
	w.end = cut
	return back, nil
}

func (w *window[T, R, PR]) boundsError(op string, n int, kind error) error {
	return &BoundsError{
		Op:    op,
		Start: w.start,
		End:   w.end,
		N:     n,
		Err:   kind,
	}
}
