package blobstore

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/hupe1980/rcslice/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, capacity int64) (*Cache, *MemoryStore, *resource.Controller) {
	t.Helper()
	store := NewMemoryStore()
	rc := resource.NewController(resource.Config{})
	return NewCache(store, NewLoader(WithController(rc)), capacity), store, rc
}

func TestCache_HitAndMiss(t *testing.T) {
	ctx := context.Background()
	cache, store, _ := newTestCache(t, 1024)
	require.NoError(t, store.Put(ctx, "a", []byte("alpha")))

	first, err := cache.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(first.Slice()))
	assert.Equal(t, int64(2), first.RefCount(), "caller and cache")

	second, err := cache.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(second.Slice()))
	assert.Equal(t, int64(3), second.RefCount())

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(5), stats.Bytes)

	first.Release()
	second.Release()
}

func TestCache_EvictionKeepsViewsValid(t *testing.T) {
	ctx := context.Background()
	cache, store, rc := newTestCache(t, 10)
	require.NoError(t, store.Put(ctx, "a", []byte("aaaaaa")))
	require.NoError(t, store.Put(ctx, "b", []byte("bbbbbb")))

	a, err := cache.Get(ctx, "a")
	require.NoError(t, err)

	b, err := cache.Get(ctx, "b")
	require.NoError(t, err)
	defer b.Release()

	stats := cache.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(6), stats.Bytes)

	// a was evicted but the caller's view still owns the buffer.
	assert.Equal(t, "aaaaaa", string(a.Slice()))
	assert.Equal(t, int64(1), a.RefCount())
	assert.Equal(t, int64(12), rc.MemoryUsage())

	a.Release()
	assert.Equal(t, int64(6), rc.MemoryUsage())
}

func TestCache_LRUOrder(t *testing.T) {
	ctx := context.Background()
	cache, store, _ := newTestCache(t, 3)
	for _, name := range []string{"a", "b", "c", "d"} {
		require.NoError(t, store.Put(ctx, name, []byte(name)))
	}

	get := func(name string) {
		buf, err := cache.Get(ctx, name)
		require.NoError(t, err)
		buf.Release()
	}

	get("a")
	get("b")
	get("c")
	get("a") // a is now most recent
	get("d") // evicts b

	assert.Equal(t, int64(1), cache.Stats().Hits)

	get("a")
	get("c")
	assert.Equal(t, int64(3), cache.Stats().Hits)

	get("b")
	assert.Equal(t, int64(5), cache.Stats().Misses)
}

func TestCache_OversizedNotCached(t *testing.T) {
	ctx := context.Background()
	cache, store, rc := newTestCache(t, 4)
	require.NoError(t, store.Put(ctx, "big", []byte("too large")))

	buf, err := cache.Get(ctx, "big")
	require.NoError(t, err)
	assert.Equal(t, int64(1), buf.RefCount())
	assert.Equal(t, 0, cache.Stats().Entries)

	buf.Release()
	assert.Equal(t, int64(0), rc.MemoryUsage())
}

func TestCache_PutAndDeleteInvalidate(t *testing.T) {
	ctx := context.Background()
	cache, _, _ := newTestCache(t, 1024)

	require.NoError(t, cache.Put(ctx, "k", []byte("v1")))
	buf, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(buf.Slice()))

	require.NoError(t, cache.Put(ctx, "k", []byte("v2")))
	assert.Equal(t, "v1", string(buf.Slice()), "held views are unaffected")
	buf.Release()

	buf, err = cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(buf.Slice()))
	buf.Release()

	require.NoError(t, cache.Delete(ctx, "k"))
	_, err = cache.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCache_Purge(t *testing.T) {
	ctx := context.Background()
	cache, store, rc := newTestCache(t, 1024)
	for i := range 5 {
		name := fmt.Sprintf("blob-%d", i)
		require.NoError(t, store.Put(ctx, name, []byte(name)))
		buf, err := cache.Get(ctx, name)
		require.NoError(t, err)
		buf.Release()
	}
	assert.Equal(t, 5, cache.Stats().Entries)
	assert.Positive(t, rc.MemoryUsage())

	cache.Purge()
	assert.Equal(t, 0, cache.Stats().Entries)
	assert.Equal(t, int64(0), cache.Stats().Bytes)
	assert.Equal(t, int64(0), rc.MemoryUsage())

	assert.False(t, cache.Invalidate("blob-0"))
}

func TestCache_Concurrent(t *testing.T) {
	ctx := context.Background()
	cache, store, rc := newTestCache(t, 64)
	for i := range 8 {
		require.NoError(t, store.Put(ctx, fmt.Sprintf("k%d", i), []byte(fmt.Sprintf("value-%02d", i))))
	}

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				name := fmt.Sprintf("k%d", (g+i)%8)
				buf, err := cache.Get(ctx, name)
				if !assert.NoError(t, err) {
					return
				}
				assert.Equal(t, fmt.Sprintf("value-%02d", (g+i)%8), string(buf.Slice()))
				buf.Release()
			}
		}()
	}
	wg.Wait()

	cache.Purge()
	assert.Equal(t, int64(0), rc.MemoryUsage())
}

// gatedStore holds every Open until gate is closed, after the blob has been
// opened, so a load can be caught between reading and storing.
type gatedStore struct {
	BlobStore

	opened chan struct{}
	gate   chan struct{}
}

func (s *gatedStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.BlobStore.Open(ctx, name)
	select {
	case s.opened <- struct{}{}:
	default:
	}
	<-s.gate
	return b, err
}

func TestCache_InvalidationDuringLoad(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		name       string
		invalidate func(c *Cache) error
		want       string
	}{
		{"Put", func(c *Cache) error { return c.Put(ctx, "k", []byte("new")) }, "new"},
		{"Invalidate", func(c *Cache) error { c.Invalidate("k"); return nil }, "old"},
		{"Purge", func(c *Cache) error { c.Purge(); return nil }, "old"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			mem := NewMemoryStore()
			require.NoError(t, mem.Put(ctx, "k", []byte("old")))

			store := &gatedStore{BlobStore: mem, opened: make(chan struct{}, 1), gate: make(chan struct{})}
			cache := NewCache(store, nil, 1024)

			type result struct {
				data string
				err  error
			}
			done := make(chan result, 1)
			go func() {
				buf, err := cache.Get(ctx, "k")
				if err != nil {
					done <- result{err: err}
					return
				}
				defer buf.Release()
				done <- result{data: string(buf.Slice())}
			}()

			<-store.opened
			require.NoError(t, tc.invalidate(cache))
			close(store.gate)

			racing := <-done
			require.NoError(t, racing.err)
			assert.Equal(t, "old", racing.data)
			assert.Equal(t, 0, cache.Stats().Entries, "overlapping load must not be stored")

			buf, err := cache.Get(ctx, "k")
			require.NoError(t, err)
			defer buf.Release()
			assert.Equal(t, tc.want, string(buf.Slice()))
			assert.Equal(t, 1, cache.Stats().Entries)
		})
	}
}

func TestCache_LoadAfterInvalidationIsStored(t *testing.T) {
	ctx := context.Background()
	cache, store, _ := newTestCache(t, 1024)
	require.NoError(t, store.Put(ctx, "k", []byte("v1")))

	assert.False(t, cache.Invalidate("k"))

	buf, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	buf.Release()
	assert.Equal(t, 1, cache.Stats().Entries)
}
