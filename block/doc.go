// Package block frames payloads as self-describing, optionally compressed
// blocks and reads them back out of a shared rcslice.ArcBytes.
//
// # Format
//
// Each block is a 13-byte little-endian header followed by the stored bytes:
//
//	[kind u8][rawLen u32][storedLen u32][crc32c u32][stored...]
//
// The checksum covers the stored bytes. Raw blocks are returned as views of
// the source buffer without copying; compressed blocks are decoded into a
// new buffer.
//
// # Usage
//
//	var out []byte
//	out, _ = block.Append(out, payload, block.KindZSTD)
//
//	src := rcslice.NewArcBytes(out)
//	defer src.Release()
//	for blk, err := range block.All(src) {
//	    if err != nil {
//	        return err
//	    }
//	    use(blk.Slice())
//	    blk.Release()
//	}
package block
