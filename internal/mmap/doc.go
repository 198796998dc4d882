// Package mmap provides read-only memory-mapped file access for zero-copy
// payload buffers.
//
// # Usage
//
//	m, err := mmap.Open("payload.bin")
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()           // zero-copy file contents
//	m.Advise(mmap.AccessSequential)
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with madvise(2) for access hints
//   - Windows: CreateFileMapping/MapViewOfFile (Advise is a no-op)
//
// # Thread Safety
//
// A Mapping is safe for concurrent reads. Close is idempotent and guarded
// by an atomic flag, but callers must ensure nothing reads the slice
// returned by Bytes after Close. The blobstore package ties Close to the
// last release of the rcslice view that wraps the mapping.
package mmap
