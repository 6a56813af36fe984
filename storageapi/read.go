package storageapi

import (
	"context"
	"fmt"
	"os"

	"github.com/flashts-io/flashts/block"
	"github.com/flashts-io/flashts/blocklist"
	"github.com/flashts-io/flashts/cache"
	"github.com/flashts-io/flashts/schema"
	"github.com/flashts-io/flashts/tstime"
)

// Read returns every datapoint indexed for metric that falls within r,
// flattened across however many blocks that spans. An unwritten metric
// returns ErrNoBlockListFile.
func (a *API) Read(metric schema.Metric, r schema.DatapointsRange) ([]schema.DataPoint, error) {
	unlockStripe := a.stripe.Lock(metric)
	defer unlockStripe()

	unlockFile, err := acquireFileLock(a.rootDir, metric)
	if err != nil {
		return nil, err
	}
	defer unlockFile()

	bl, err := a.readBlockList(metric)
	if err != nil {
		return nil, err
	}

	var sinceSec, untilSec *tstime.Sec
	if r.Since != nil {
		s := r.Since.AsSec()
		sinceSec = &s
	}
	if r.Until != nil {
		u := r.Until.AsSec()
		untilSec = &u
	}

	metas, ok := bl.Search(sinceSec, untilSec)
	if !ok {
		return nil, nil
	}
	if !metasNonOverlappingAndSorted(metas) {
		return nil, ErrOverlappingBlocks
	}

	var out []schema.DataPoint
	for _, meta := range metas {
		points, err := a.readBlock(metric, meta)
		if err != nil {
			return nil, err
		}
		out = append(out, points...)
	}

	filtered, _, _, ok := schema.SearchWithIndices(out, r)
	if !ok {
		return nil, nil
	}
	return filtered, nil
}

func (a *API) readBlock(metric schema.Metric, meta blocklist.BlockMetaInfo) ([]schema.DataPoint, error) {
	cacheKey := cache.BlockCacheKey{Metric: metric, Since: meta.Since, Until: meta.Until}
	if a.blocks != nil {
		if df, ok := a.blocks.Get(cacheKey); ok {
			return df.ToDataPoints()
		}
	}

	path := blockFilePathForMeta(a.rootDir, metric, meta)
	data, err := os.ReadFile(path)
	if err != nil {
		cloudData, ok, cloudErr := a.downloadBlockIfAbsent(context.Background(), metric, meta.Since, meta.Until)
		if cloudErr != nil {
			return nil, cloudErr
		}
		if !ok {
			return nil, fmt.Errorf("storageapi: %s: %w", path, ErrNoBlockFile)
		}
		data = cloudData
	}
	df, err := block.Read(data, nil)
	if err != nil {
		return nil, fmt.Errorf("storageapi: %s: %w", path, err)
	}
	if a.blocks != nil {
		a.blocks.Put(cacheKey, df)
	}
	return df.ToDataPoints()
}

func metasNonOverlappingAndSorted(metas []blocklist.BlockMetaInfo) bool {
	for i := 1; i < len(metas); i++ {
		if metas[i].Since < metas[i-1].Until {
			return false
		}
	}
	return true
}
