package blobstore

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/rcslice"
)

// Cache keeps recently loaded blobs as ArcBytes, bounded by total bytes.
//
// The cache owns one reference per entry and hands out clones, so evicting
// an entry only drops the cache's reference: the backing buffer is reclaimed
// once every caller has released its clone.
//
// Concurrent misses for the same name may each load the blob; the first one
// stored wins and the others are released after being handed to their callers.
// A load that overlaps an invalidation of its name (Put, Delete, Invalidate
// or Purge) is returned to its caller but never stored.
type Cache struct {
	store  BlobStore
	loader *Loader
	logger *rcslice.Logger

	mu        sync.Mutex
	capacity  int64
	size      int64
	items     map[string]*list.Element
	evictList *list.List
	loading   map[string]*pendingLoad

	hits   atomic.Int64
	misses atomic.Int64
}

// pendingLoad tracks the misses loading one name. It is detached from
// Cache.loading and marked stale when the name is invalidated.
type pendingLoad struct {
	waiters int
	stale   bool
}

type cacheEntry struct {
	name string
	buf  *rcslice.ArcBytes
}

// CacheStats contains cache counters.
type CacheStats struct {
	Hits    int64
	Misses  int64
	Entries int
	Bytes   int64
}

// NewCache creates a cache of at most capacity bytes in front of store.
// If loader is nil, a Loader with default options is used.
func NewCache(store BlobStore, loader *Loader, capacity int64) *Cache {
	if loader == nil {
		loader = NewLoader()
	}
	return &Cache{
		store:     store,
		loader:    loader,
		logger:    loader.opts.Logger,
		capacity:  capacity,
		items:     make(map[string]*list.Element),
		evictList: list.New(),
		loading:   make(map[string]*pendingLoad),
	}
}

// Get returns a view of the named blob, loading it on a miss.
// The caller owns the returned view and must release it.
func (c *Cache) Get(ctx context.Context, name string) (*rcslice.ArcBytes, error) {
	c.mu.Lock()
	if el, ok := c.items[name]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(el)
		buf := el.Value.(*cacheEntry).buf.Clone()
		c.mu.Unlock()
		return buf, nil
	}
	c.misses.Add(1)
	pl := c.loading[name]
	if pl == nil {
		pl = &pendingLoad{}
		c.loading[name] = pl
	}
	pl.waiters++
	c.mu.Unlock()

	buf, err := c.loader.Load(ctx, c.store, name)

	c.mu.Lock()
	defer c.mu.Unlock()

	pl.waiters--
	if pl.waiters == 0 && c.loading[name] == pl {
		delete(c.loading, name)
	}
	if err != nil {
		return nil, err
	}
	if !pl.stale {
		c.add(name, buf.Clone())
	}
	return buf, nil
}

// Put writes the blob to the store and drops any cached copy.
func (c *Cache) Put(ctx context.Context, name string, data []byte) error {
	if err := c.store.Put(ctx, name, data); err != nil {
		return err
	}
	c.Invalidate(name)
	return nil
}

// Delete removes the blob from the store and drops any cached copy.
func (c *Cache) Delete(ctx context.Context, name string) error {
	if err := c.store.Delete(ctx, name); err != nil {
		return err
	}
	c.Invalidate(name)
	return nil
}

// Invalidate drops the cached copy of name, if any. It reports whether an
// entry was removed.
func (c *Cache) Invalidate(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if pl, ok := c.loading[name]; ok {
		pl.stale = true
		delete(c.loading, name)
	}

	el, ok := c.items[name]
	if !ok {
		return false
	}
	c.removeElement(el)
	return true
}

// Purge drops every cached entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for name, pl := range c.loading {
		pl.stale = true
		delete(c.loading, name)
	}
	for el := c.evictList.Back(); el != nil; el = c.evictList.Back() {
		c.removeElement(el)
	}
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CacheStats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: len(c.items),
		Bytes:   c.size,
	}
}

// add stores buf, taking ownership of the reference. c.mu must be held.
func (c *Cache) add(name string, buf *rcslice.ArcBytes) {
	if el, ok := c.items[name]; ok {
		c.evictList.MoveToFront(el)
		buf.Release()
		return
	}

	size := int64(buf.Len())
	if size > c.capacity {
		buf.Release()
		return
	}

	for c.size+size > c.capacity {
		el := c.evictList.Back()
		if el == nil {
			break
		}
		c.removeElement(el)
	}

	c.items[name] = c.evictList.PushFront(&cacheEntry{name: name, buf: buf})
	c.size += size
}

func (c *Cache) removeElement(el *list.Element) {
	c.evictList.Remove(el)
	ent := el.Value.(*cacheEntry)
	delete(c.items, ent.name)

	size := ent.buf.Len()
	c.size -= int64(size)
	if c.logger != nil {
		c.logger.LogEvict(ent.name, size, ent.buf.RefCount()-1)
	}
	ent.buf.Release()
}
