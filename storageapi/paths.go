// Package storageapi orchestrates durable reads and writes of a metric's
// block and block-list files under a root directory: path layout, local
// advisory locking, and the repair pass that drops unreadable blocks from
// a block list.
package storageapi

import (
	"fmt"
	"path/filepath"

	"github.com/flashts-io/flashts/blocklist"
	"github.com/flashts-io/flashts/schema"
	"github.com/flashts-io/flashts/tstime"
)

// lockFilePath returns the advisory-lock path for a metric.
func lockFilePath(rootDir string, metric schema.Metric) string {
	return filepath.Join(rootDir, fmt.Sprintf("%s.lock", metric))
}

// blockListFilePath returns the block-list file path for a metric.
func blockListFilePath(rootDir string, metric schema.Metric) string {
	return filepath.Join(rootDir, "block_list", fmt.Sprintf("%s.list", metric))
}

// blockTimestampHeadWidth groups blocks into directories of 100,000
// seconds each, so no directory holds an unbounded number of blocks.
const blockTimestampHeadWidth = 100_000

// blockFileDir returns the directory a block covering [since, until)
// lives in; blockFilePath is the block file itself inside it.
func blockFileDir(rootDir string, metric schema.Metric, since, until tstime.Sec) string {
	head := uint64(since) / blockTimestampHeadWidth
	return filepath.Join(rootDir, "block", string(metric),
		fmt.Sprintf("%d", head),
		fmt.Sprintf("%d_%d", uint64(since), uint64(until)))
}

func blockFilePath(rootDir string, metric schema.Metric, since, until tstime.Sec) string {
	return filepath.Join(blockFileDir(rootDir, metric, since, until), "block")
}

// blockFilePathForMeta is a convenience wrapper over blockFilePath taking
// a blocklist.BlockMetaInfo directly.
func blockFilePathForMeta(rootDir string, metric schema.Metric, meta blocklist.BlockMetaInfo) string {
	return blockFilePath(rootDir, metric, meta.Since, meta.Until)
}

// persistedErrorFilePath returns the path a persisted-error record for an
// event at ts is written to.
func persistedErrorFilePath(rootDir string, ts tstime.Nano) string {
	return filepath.Join(rootDir, "error", fmt.Sprintf("%d.list", uint64(ts)))
}
