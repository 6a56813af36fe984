package storageapi

import (
	"github.com/flashts-io/flashts/cache"
	"github.com/flashts-io/flashts/cloud"
	"github.com/flashts-io/flashts/config"
)

// API orchestrates block/block-list reads and writes under a single root
// directory, serializing concurrent access to the same metric both within
// this process (mutexStripe) and across processes (the metric's advisory
// lock file).
type API struct {
	rootDir string
	stripe  mutexStripe

	blockLists *cache.BlockListCache
	blocks     *cache.BlockCache

	cloud *cloudMirror
}

// Option configures an API at construction.
type Option func(*API)

// WithBlockListCache has reads and writes consult a shared block-list
// cache instead of hitting disk for the list on every call, replacing the
// cached list whenever a write changes it.
func WithBlockListCache(c *cache.BlockListCache) Option {
	return func(a *API) { a.blockLists = c }
}

// WithBlockCache has reads consult a shared, size-bounded block cache
// before decoding a block file from disk.
func WithBlockCache(c *cache.BlockCache) Option {
	return func(a *API) { a.blocks = c }
}

// WithCloud mirrors every metric's storage tree to storage under
// cfg.Prefix: Write acquires a cloud lock ahead of the local one and
// optionally uploads the new block and block list afterward, Read falls
// back to a cloud download when a block or block list is absent locally,
// and ScavengeCloudLock removes a stale cloud lock left behind by a crash.
func WithCloud(storage cloud.Storage, cfg config.CloudConfig) Option {
	return func(a *API) { a.cloud = &cloudMirror{storage: storage, cfg: cfg} }
}

// New returns an API rooted at dir. dir is created lazily on first write.
func New(dir string, opts ...Option) *API {
	a := &API{rootDir: dir}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RootDir returns the storage root this API operates under.
func (a *API) RootDir() string { return a.rootDir }
