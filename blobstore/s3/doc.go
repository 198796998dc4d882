// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("buffers/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	buf, err := blobstore.NewLoader().Load(ctx, store, "segments/0001")
//
// # Features
//
//   - Range reads, so a Loader can fetch a blob in parallel chunks
//   - Multipart uploads with CRC32C checksums for large blobs
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
