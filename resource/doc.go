// Package resource governs the memory, concurrency and IO spent on loading
// shared buffers.
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:   1 << 30, // 1GB of heap-backed buffers
//	    MaxFetchWorkers:    8,
//	    IOLimitBytesPerSec: 64 << 20,
//	})
//
// Memory reserved for a buffer is returned by the buffer's release hook, so
// usage tracks the buffers that are still referenced by at least one view.
package resource
