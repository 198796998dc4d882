package block

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/hupe1980/rcslice"
	"github.com/hupe1980/rcslice/internal/hash"
)

// Kind identifies how a block's payload is stored.
type Kind uint8

const (
	// KindRaw stores the payload as is.
	KindRaw Kind = 0
	// KindLZ4 stores the payload LZ4 block-compressed (fast, good for hot data).
	KindLZ4 Kind = 1
	// KindZSTD stores the payload ZSTD-compressed (better ratio, good for cold data).
	KindZSTD Kind = 2
)

func (k Kind) String() string {
	switch k {
	case KindRaw:
		return "raw"
	case KindLZ4:
		return "lz4"
	case KindZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

const (
	// HeaderSize is the encoded size of a block header.
	HeaderSize = 13

	// MaxBlockSize is the largest payload a block may hold.
	MaxBlockSize = 1 << 30

	// minCompressionRatio is the stored/raw ratio above which a payload is
	// stored raw instead.
	minCompressionRatio = 0.9
)

var (
	// ErrCorrupt is returned when a block is truncated or malformed.
	ErrCorrupt = errors.New("block: corrupt block")
	// ErrChecksum is returned when the stored bytes do not match the header checksum.
	ErrChecksum = errors.New("block: checksum mismatch")
	// ErrUnknownCompression is returned for an unknown block kind.
	ErrUnknownCompression = errors.New("block: unknown compression")
	// ErrTooLarge is returned when a payload exceeds MaxBlockSize.
	ErrTooLarge = errors.New("block: payload too large")
)

func corruptf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorrupt, fmt.Sprintf(format, args...))
}

// Header describes an encoded block.
type Header struct {
	Kind      Kind
	RawLen    uint32
	StoredLen uint32
	Checksum  uint32
}

func (h Header) put(b []byte) {
	b[0] = byte(h.Kind)
	binary.LittleEndian.PutUint32(b[1:], h.RawLen)
	binary.LittleEndian.PutUint32(b[5:], h.StoredLen)
	binary.LittleEndian.PutUint32(b[9:], h.Checksum)
}

// ParseHeader decodes the header at the start of b.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, corruptf("short header: %d bytes", len(b))
	}
	return Header{
		Kind:      Kind(b[0]),
		RawLen:    binary.LittleEndian.Uint32(b[1:]),
		StoredLen: binary.LittleEndian.Uint32(b[5:]),
		Checksum:  binary.LittleEndian.Uint32(b[9:]),
	}, nil
}

// Append encodes data as a block of the given kind and appends it to dst.
// If compression does not shrink the payload enough, the block is stored raw.
func Append(dst, data []byte, kind Kind) ([]byte, error) {
	if len(data) > MaxBlockSize {
		return dst, ErrTooLarge
	}
	if kind > KindZSTD {
		return dst, ErrUnknownCompression
	}

	stored := data
	actual := KindRaw
	if kind != KindRaw && len(data) > 0 {
		compressed, err := compress(data, kind)
		if err != nil {
			return dst, err
		}
		if compressed != nil && float64(len(compressed)) <= float64(len(data))*minCompressionRatio {
			stored = compressed
			actual = kind
		}
	}

	h := Header{
		Kind:      actual,
		RawLen:    uint32(len(data)),
		StoredLen: uint32(len(stored)),
		Checksum:  hash.CRC32C(stored),
	}

	var hdr [HeaderSize]byte
	h.put(hdr[:])
	dst = append(dst, hdr[:]...)
	return append(dst, stored...), nil
}

// Next removes the first block from src and returns its payload.
//
// Raw payloads are views sharing src's backing buffer. Compressed payloads
// are decoded into a new buffer created with opts. It returns io.EOF when
// src is empty. On any other error src is left unchanged.
func Next(src *rcslice.ArcBytes, opts ...rcslice.Option) (*rcslice.ArcBytes, error) {
	data := src.Slice()
	if len(data) == 0 {
		if src.RefCount() == 0 {
			return nil, rcslice.ErrReleased
		}
		return nil, io.EOF
	}

	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	total := int64(HeaderSize) + int64(h.StoredLen)
	if total > int64(len(data)) {
		return nil, corruptf("block of %d bytes exceeds remaining %d", total, len(data))
	}

	stored := data[HeaderSize:total]
	if hash.CRC32C(stored) != h.Checksum {
		return nil, ErrChecksum
	}

	var decoded []byte
	switch h.Kind {
	case KindRaw:
		if h.RawLen != h.StoredLen {
			return nil, corruptf("raw block lengths differ: %d != %d", h.RawLen, h.StoredLen)
		}
	case KindLZ4, KindZSTD:
		if h.RawLen > MaxBlockSize {
			return nil, ErrTooLarge
		}
		decoded, err = decompress(stored, h.Kind, int(h.RawLen))
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCompression, h.Kind)
	}

	blk, err := src.SplitOffBefore(int(total))
	if err != nil {
		return nil, err
	}

	if h.Kind == KindRaw {
		if _, err := blk.Advance(HeaderSize); err != nil {
			blk.Release()
			return nil, err
		}
		return blk, nil
	}

	blk.Release()
	return rcslice.NewArcBytes(decoded, opts...), nil
}

// All iterates over the blocks of src, removing each from src as it goes.
// Iteration stops after the first error, which is yielded with a nil block.
// The caller owns every yielded block.
func All(src *rcslice.ArcBytes, opts ...rcslice.Option) iter.Seq2[*rcslice.ArcBytes, error] {
	return func(yield func(*rcslice.ArcBytes, error) bool) {
		for {
			blk, err := Next(src, opts...)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(blk, nil) {
				return
			}
		}
	}
}
