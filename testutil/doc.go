// Package testutil provides testing utilities for rcslice.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, thread-safe RNG for generating random operations
// and payloads.
//
//	rng := testutil.NewRNG(seed)
//	payload := rng.TextBytes(4096) // compressible
//	noise := rng.Bytes(4096)       // incompressible
package testutil
