// Package cache implements the two in-process caches storageapi reads sit
// in front of: a size-bounded block cache and an unbounded block-list
// cache.
package cache

import (
	"fmt"
	"sync"

	"github.com/flashts-io/flashts/dataframe"
	"github.com/flashts-io/flashts/schema"
	"github.com/flashts-io/flashts/tstime"
)

// BlockCacheKey identifies one decoded block.
type BlockCacheKey struct {
	Metric schema.Metric
	Since  tstime.Sec
	Until  tstime.Sec
}

func (k BlockCacheKey) string() string {
	return fmt.Sprintf("%s|%d|%d", k.Metric, k.Since, k.Until)
}

type blockCacheEntry struct {
	key   BlockCacheKey
	value *dataframe.DataFrame
}

// BlockCache bounds how many decoded blocks are held in memory, evicting
// the least-recently-accessed one once capacity is exceeded. Access order
// is tracked by a monotonic clock indexed through a clockIndex skip list,
// giving O(log n) eviction instead of an O(n) scan for the oldest entry.
type BlockCache struct {
	mu       sync.Mutex
	capacity int
	clock    uint64
	entries  map[string]*blockCacheEntry
	byAccess *clockIndex
	access   map[string]uint64
}

// NewBlockCache creates a block cache holding at most capacity blocks.
func NewBlockCache(capacity int) *BlockCache {
	return &BlockCache{
		capacity: capacity,
		entries:  make(map[string]*blockCacheEntry),
		byAccess: newClockIndex(),
		access:   make(map[string]uint64),
	}
}

// Get returns the cached block for key, touching its access order.
func (c *BlockCache) Get(key BlockCacheKey) (*dataframe.DataFrame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key.string()
	entry, ok := c.entries[k]
	if !ok {
		return nil, false
	}
	c.touch(k)
	return entry.value, true
}

// Put inserts or replaces the cached block for key, evicting the
// least-recently-accessed entry first if the cache is at capacity.
func (c *BlockCache) Put(key BlockCacheKey, value *dataframe.DataFrame) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capacity <= 0 {
		return
	}
	k := key.string()
	if _, exists := c.entries[k]; !exists && len(c.entries) >= c.capacity {
		c.evictOldest()
	}
	c.entries[k] = &blockCacheEntry{key: key, value: value}
	c.touch(k)
}

// touch assigns k a fresh clock tick, removing any stale tick it held.
func (c *BlockCache) touch(k string) {
	if old, ok := c.access[k]; ok {
		c.byAccess.delete(old)
	}
	c.clock++
	c.access[k] = c.clock
	c.byAccess.put(c.clock, k)
}

func (c *BlockCache) evictOldest() {
	tick, k, ok := c.byAccess.oldest()
	if !ok {
		return
	}
	c.byAccess.delete(tick)
	delete(c.access, k)
	delete(c.entries, k)
}

// Len reports how many blocks are currently cached.
func (c *BlockCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
