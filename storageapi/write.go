package storageapi

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/flashts-io/flashts/block"
	"github.com/flashts-io/flashts/blocklist"
	"github.com/flashts-io/flashts/schema"
	"github.com/flashts-io/flashts/tstime"
)

// Write is WriteAs with an anonymous owner, for callers that don't track
// a writer identity of their own (most of this package's tests included).
func (a *API) Write(metric schema.Metric, datapoints []schema.DataPoint) error {
	return a.WriteAs(metric, datapoints, uuid.Nil)
}

// WriteAs durably appends one new block covering datapoints (which must
// be non-empty and sorted ascending by timestamp) to metric's storage
// tree, updating its block list to index it. Writing a block whose block
// file (same since and until) already exists locally is refused: merging
// block files is not supported. A block that only partly overlaps an
// indexed one is not refused. ownerID tags the cloud lock (when mirroring is configured)
// so a later ScavengeCloudLock call from the same owner can recognize
// and remove it if a crash leaves it behind.
func (a *API) WriteAs(metric schema.Metric, datapoints []schema.DataPoint, ownerID uuid.UUID) error {
	if len(datapoints) == 0 {
		return ErrEmptyDatapoints
	}
	if err := schema.CheckSorted(datapoints); err != nil {
		return fmt.Errorf("storageapi: %w: %v", ErrNotSorted, err)
	}

	unlockStripe := a.stripe.Lock(metric)
	defer unlockStripe()

	ctx := context.Background()
	if a.cloud != nil {
		unlockCloud, err := a.acquireCloudLock(ctx, metric, ownerID)
		if err != nil {
			return err
		}
		defer unlockCloud()
	}

	if err := os.MkdirAll(a.rootDir, 0o755); err != nil {
		return fmt.Errorf("storageapi: creating root dir: %w", err)
	}
	unlockFile, err := acquireFileLock(a.rootDir, metric)
	if err != nil {
		return err
	}
	defer unlockFile()

	since := datapoints[0].Timestamp.AsSec()
	until := datapoints[len(datapoints)-1].Timestamp.AsSec().Add(1)

	blockPath := blockFilePath(a.rootDir, metric, since, until)
	if _, err := os.Stat(blockPath); err == nil {
		return fmt.Errorf("storageapi: %s: %w", blockPath, ErrBlockFileExists)
	}

	bl, err := a.readBlockList(metric)
	if err != nil {
		if err != ErrNoBlockListFile {
			return err
		}
		bl = blocklist.New(metric, tstime.Now(), nil)
	}

	if err := os.MkdirAll(filepath.Dir(blockPath), 0o755); err != nil {
		return fmt.Errorf("storageapi: creating block dir: %w", err)
	}
	blockData, err := block.Write(datapoints)
	if err != nil {
		return fmt.Errorf("storageapi: encoding block file: %w", err)
	}
	if err := os.WriteFile(blockPath, blockData, 0o644); err != nil {
		return fmt.Errorf("storageapi: writing block file: %w", err)
	}

	if err := bl.AddBlock(blocklist.BlockMetaInfo{
		Since:         since,
		Until:         until,
		TimestampNums: uint64(len(datapoints)),
	}); err != nil {
		return fmt.Errorf("storageapi: indexing block: %w", err)
	}
	bl.UpdatedAt = tstime.Now()

	blockListData, err := bl.Write()
	if err != nil {
		return fmt.Errorf("storageapi: serializing block list: %w", err)
	}
	if err := a.writeBlockListFile(metric, blockListData); err != nil {
		return err
	}
	if a.blockLists != nil {
		a.blockLists.Put(metric, bl)
	}

	if a.cloud != nil && a.cloud.cfg.UploadAfterWrite {
		if err := a.mirrorBlock(ctx, metric, since, until, blockData, blockListData); err != nil {
			a.recordUploadFailure(metric, since, until, err)
		} else if a.cloud.cfg.RemoveLocalAfterUpload {
			if err := os.RemoveAll(blockFileDir(a.rootDir, metric, since, until)); err != nil {
				return fmt.Errorf("storageapi: removing local block after upload: %w", err)
			}
		}
	}
	return nil
}

// writeBlockList serializes and writes bl to its local file.
func (a *API) writeBlockList(metric schema.Metric, bl *blocklist.BlockList) error {
	data, err := bl.Write()
	if err != nil {
		return fmt.Errorf("storageapi: serializing block list: %w", err)
	}
	return a.writeBlockListFile(metric, data)
}

// writeBlockListFile writes an already-serialized block list to disk.
func (a *API) writeBlockListFile(metric schema.Metric, data []byte) error {
	path := blockListFilePath(a.rootDir, metric)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("storageapi: creating block list dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("storageapi: writing block list file: %w", err)
	}
	return nil
}

// readBlockList loads a metric's block list file, falling back to a
// cloud download when mirroring is configured and the file is absent
// locally, and returning ErrNoBlockListFile if it has never been written
// anywhere this API can reach.
func (a *API) readBlockList(metric schema.Metric) (*blocklist.BlockList, error) {
	if a.blockLists != nil {
		if bl, ok := a.blockLists.Get(metric); ok {
			return bl, nil
		}
	}

	path := blockListFilePath(a.rootDir, metric)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("storageapi: reading block list file: %w", err)
		}
		cloudData, ok, cloudErr := a.downloadBlockListIfAbsent(context.Background(), metric)
		if cloudErr != nil {
			return nil, cloudErr
		}
		if !ok {
			return nil, ErrNoBlockListFile
		}
		data = cloudData
	}
	bl, err := blocklist.Read(metric, data)
	if err != nil {
		return nil, fmt.Errorf("storageapi: %s: %w", path, err)
	}
	if a.blockLists != nil {
		a.blockLists.Put(metric, bl)
	}
	return bl, nil
}
