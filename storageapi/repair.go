package storageapi

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/flashts-io/flashts/block"
	"github.com/flashts-io/flashts/blocklist"
	"github.com/flashts-io/flashts/schema"
	"github.com/flashts-io/flashts/tstime"
)

// blockDirNamePattern matches the "{since}_{until}" leaf directory name
// blockFileDir produces, letting a directory scan recover a block's time
// range without decoding its body.
var blockDirNamePattern = regexp.MustCompile(`^(\d+)_(\d+)$`)

// Repair validates every block a metric's block list indexes and drops
// entries whose backing block file is missing or fails its CRC, rewriting
// the block list file if anything was dropped (or removing it if no entry
// survives). If the block list itself
// is missing or unreadable, Repair instead rebuilds it from scratch by
// walking the metric's block directory tree and re-indexing every block
// file that still decodes cleanly. It reports whether a repair was made.
func (a *API) Repair(metric schema.Metric) (bool, error) {
	unlockStripe := a.stripe.Lock(metric)
	defer unlockStripe()

	unlockFile, err := acquireFileLock(a.rootDir, metric)
	if err != nil {
		return false, err
	}
	defer unlockFile()

	bl, err := a.readBlockList(metric)
	if err != nil {
		return a.rebuildBlockListFromDisk(metric)
	}

	healthy := make([]blocklist.BlockMetaInfo, 0, len(bl.Metas))
	for _, meta := range bl.Metas {
		if a.blockIsReadable(metric, meta) {
			healthy = append(healthy, meta)
		}
	}

	if len(healthy) == len(bl.Metas) {
		return false, nil
	}

	if len(healthy) == 0 {
		path := blockListFilePath(a.rootDir, metric)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return false, err
		}
		if a.blockLists != nil {
			a.blockLists.Invalidate(metric)
		}
		return true, nil
	}

	repaired := blocklist.New(metric, bl.UpdatedAt, healthy)
	if err := a.writeBlockList(metric, repaired); err != nil {
		return false, err
	}
	if a.blockLists != nil {
		a.blockLists.Put(metric, repaired)
	}
	return true, nil
}

func (a *API) blockIsReadable(metric schema.Metric, meta blocklist.BlockMetaInfo) bool {
	path := blockFilePathForMeta(a.rootDir, metric, meta)
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	_, err = block.Read(data, nil)
	return err == nil
}

// rebuildBlockListFromDisk reconstructs a block list by walking
// block/{metric}/**/{since}_{until}/block, re-indexing every block file
// that still decodes, and writing the result as the metric's new block
// list. It reports false without error if no readable block is found —
// there is nothing to rebuild.
func (a *API) rebuildBlockListFromDisk(metric schema.Metric) (bool, error) {
	root := filepath.Join(a.rootDir, "block", string(metric))
	var metas []blocklist.BlockMetaInfo

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		matches := blockDirNamePattern.FindStringSubmatch(d.Name())
		if len(matches) != 3 {
			return nil
		}
		since, err := strconv.ParseUint(matches[1], 10, 64)
		if err != nil {
			return nil
		}
		until, err := strconv.ParseUint(matches[2], 10, 64)
		if err != nil {
			return nil
		}

		data, err := os.ReadFile(filepath.Join(path, "block"))
		if err != nil {
			return nil
		}
		df, err := block.Read(data, nil)
		if err != nil {
			return nil
		}
		metas = append(metas, blocklist.BlockMetaInfo{
			Since:         tstime.Sec(since),
			Until:         tstime.Sec(until),
			TimestampNums: uint64(len(df.Timestamps)),
		})
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("storageapi: scanning block directory for %s: %w", metric, err)
	}

	if len(metas) == 0 {
		return false, nil
	}

	sort.Slice(metas, func(i, j int) bool { return metas[i].Until < metas[j].Until })

	rebuilt := blocklist.New(metric, tstime.Now(), metas)
	if err := a.writeBlockList(metric, rebuilt); err != nil {
		return false, err
	}
	if a.blockLists != nil {
		a.blockLists.Put(metric, rebuilt)
	}
	return true, nil
}
