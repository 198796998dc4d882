package hash

import "hash/crc32"

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// CRC32C computes the CRC32-Castagnoli checksum of data.
// Go's crc32 package uses SSE4.2 or the ARM CRC extension when present.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, crc32cTable)
}
