// Package hash provides the CRC32-Castagnoli (CRC32C) checksum shared by
// block framing and S3 uploads.
//
// CRC32C is hardware accelerated on x86 (SSE4.2) and ARM (CRC extension),
// and it is the checksum S3 accepts in the x-amz-checksum-crc32c header.
//
//	checksum := hash.CRC32C(data)
package hash
