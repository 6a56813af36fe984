package cache

import (
	"sync"

	"github.com/flashts-io/flashts/blocklist"
	"github.com/flashts-io/flashts/schema"
)

// BlockListCache holds one block list per metric, unbounded: a metric's
// block list is small and replaced on every write, so there is no
// eviction pressure worth the bookkeeping BlockCache pays for.
type BlockListCache struct {
	mu    sync.RWMutex
	lists map[schema.Metric]*blocklist.BlockList
}

// NewBlockListCache creates an empty block-list cache.
func NewBlockListCache() *BlockListCache {
	return &BlockListCache{lists: make(map[schema.Metric]*blocklist.BlockList)}
}

// Get returns the cached block list for metric, if any.
func (c *BlockListCache) Get(metric schema.Metric) (*blocklist.BlockList, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	bl, ok := c.lists[metric]
	return bl, ok
}

// Put stores or replaces the cached block list for metric.
func (c *BlockListCache) Put(metric schema.Metric, bl *blocklist.BlockList) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists[metric] = bl
}

// Invalidate drops metric's cached block list, forcing the next Get to
// miss. storageapi calls it when a repair removes the block list file.
func (c *BlockListCache) Invalidate(metric schema.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.lists, metric)
}
