package rcslice

import (
	"bytes"
	"io"
)

// RcBytes is a single-goroutine shared byte buffer.
type RcBytes = RcSlice[byte]

// ArcBytes is a shared byte buffer that may be handed across goroutines,
// typically a file or network payload passed between components without
// copying.
type ArcBytes = ArcSlice[byte]

// NewRcBytes returns an RcBytes spanning b. It takes ownership of b.
func NewRcBytes(b []byte, opts ...Option) *RcBytes {
	return NewRc(b, opts...)
}

// NewArcBytes returns an ArcBytes spanning b. It takes ownership of b.
func NewArcBytes(b []byte, opts ...Option) *ArcBytes {
	return NewArc(b, opts...)
}

// CopyArcBytes returns an ArcBytes over a private copy of b, leaving the
// caller free to reuse b.
func CopyArcBytes(b []byte, opts ...Option) *ArcBytes {
	return NewArc(bytes.Clone(b), opts...)
}

// NewReader returns a reader over the visible bytes of v. The reader does
// not hold a reference; v must outlive it.
func NewReader(v Viewer[byte]) *bytes.Reader {
	return bytes.NewReader(v.Slice())
}

// WriteTo writes the visible bytes of v to w.
func WriteTo(w io.Writer, v Viewer[byte]) (int64, error) {
	n, err := w.Write(v.Slice())
	return int64(n), err
}
