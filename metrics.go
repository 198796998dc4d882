package rcslice

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting allocation metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Implementations must be safe for concurrent use when attached to
// ArcSlice allocations, since the last release may happen on any goroutine.
type MetricsCollector interface {
	// RecordAlloc is called when a backing allocation of the given number
	// of elements is created.
	RecordAlloc(elements int)

	// RecordRelease is called when a backing allocation is reclaimed.
	// lifetime is the time since RecordAlloc.
	RecordRelease(elements int, lifetime time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAlloc(int)                  {}
func (NoopMetricsCollector) RecordRelease(int, time.Duration) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for leak checks in tests and basic monitoring without external
// dependencies.
type BasicMetricsCollector struct {
	AllocCount         atomic.Int64
	AllocElements      atomic.Int64
	ReleaseCount       atomic.Int64
	ReleaseElements    atomic.Int64
	LifetimeTotalNanos atomic.Int64
}

// RecordAlloc implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAlloc(elements int) {
	b.AllocCount.Add(1)
	b.AllocElements.Add(int64(elements))
}

// RecordRelease implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRelease(elements int, lifetime time.Duration) {
	b.ReleaseCount.Add(1)
	b.ReleaseElements.Add(int64(elements))
	b.LifetimeTotalNanos.Add(lifetime.Nanoseconds())
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	allocs := b.AllocCount.Load()
	releases := b.ReleaseCount.Load()
	return BasicMetricsStats{
		AllocCount:       allocs,
		ReleaseCount:     releases,
		LiveAllocations:  allocs - releases,
		LiveElements:     b.AllocElements.Load() - b.ReleaseElements.Load(),
		LifetimeAvgNanos: b.getAvgLifetimeNanos(),
	}
}

func (b *BasicMetricsCollector) getAvgLifetimeNanos() int64 {
	count := b.ReleaseCount.Load()
	if count == 0 {
		return 0
	}
	return b.LifetimeTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AllocCount       int64
	ReleaseCount     int64
	LiveAllocations  int64
	LiveElements     int64
	LifetimeAvgNanos int64
}
