// Package blobstore loads immutable blobs into reference-counted byte buffers.
//
// BlobStore is the interface for reading and writing blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-memory, for tests
//   - LocalStore: local filesystem with mmap support
//   - s3.Store: Amazon S3 with range reads and parallel uploads
//   - minio.Store: MinIO or any S3-compatible server
//
// # Loading
//
// A Loader turns a blob into an rcslice.ArcBytes. Mappable blobs are wrapped
// without copying and unmapped when the last view is released. Other blobs
// are read with parallel range requests into a heap buffer whose size is
// charged to a resource.Controller until the last view is released.
//
//	loader := blobstore.NewLoader(blobstore.WithController(rc))
//	buf, err := loader.Load(ctx, store, "segments/0001")
//	if err != nil {
//	    return err
//	}
//	defer buf.Release()
//
// A Cache keeps recently loaded buffers and hands out clones, so eviction
// never invalidates a view a caller still holds.
package blobstore
