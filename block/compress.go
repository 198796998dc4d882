package block

import (
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// ZSTD encoder/decoder pools
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	return dec
}

// compress returns the compressed form of data, or nil if kind does not
// compress or the data is incompressible.
func compress(data []byte, kind Kind) ([]byte, error) {
	switch kind {
	case KindLZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, dst, nil)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, nil // Incompressible
		}
		return dst[:n], nil
	case KindZSTD:
		enc := getZstdEncoder()
		defer zstdEncoderPool.Put(enc)
		return enc.EncodeAll(data, nil), nil
	default:
		return nil, nil
	}
}

// decompress decodes stored into a new slice of exactly rawLen bytes.
func decompress(stored []byte, kind Kind, rawLen int) ([]byte, error) {
	dst := make([]byte, rawLen)

	switch kind {
	case KindLZ4:
		n, err := lz4.UncompressBlock(stored, dst)
		if err != nil {
			return nil, corruptf("lz4: %v", err)
		}
		if n != rawLen {
			return nil, corruptf("lz4: decoded %d bytes, want %d", n, rawLen)
		}
		return dst, nil
	case KindZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)

		out, err := dec.DecodeAll(stored, dst[:0])
		if err != nil {
			return nil, corruptf("zstd: %v", err)
		}
		if len(out) != rawLen {
			return nil, corruptf("zstd: decoded %d bytes, want %d", len(out), rawLen)
		}
		return out, nil
	default:
		return nil, ErrUnknownCompression
	}
}
