package storageapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"

	"github.com/google/uuid"

	"github.com/flashts-io/flashts/cloud"
	"github.com/flashts-io/flashts/config"
	"github.com/flashts-io/flashts/persistederror"
	"github.com/flashts-io/flashts/schema"
	"github.com/flashts-io/flashts/tstime"
)

// cloudMirror holds the remote Storage a write/read path mirrors through
// and the settings controlling when it's consulted.
type cloudMirror struct {
	storage cloud.Storage
	cfg     config.CloudConfig
}

// errCloudLockHeld is returned when another writer's cloud lock is present.
var errCloudLockHeld = errors.New("storageapi: cloud lock held by another writer")

func cloudKey(prefix string, elem ...string) string {
	parts := append([]string{prefix}, elem...)
	return path.Join(parts...)
}

func (m *cloudMirror) lockKey(metric schema.Metric) string {
	return cloudKey(m.cfg.Prefix, fmt.Sprintf("%s.lock", metric))
}

func (m *cloudMirror) blockListKey(metric schema.Metric) string {
	return cloudKey(m.cfg.Prefix, "blocklist", fmt.Sprintf("%s.list", metric))
}

func (m *cloudMirror) blockKey(metric schema.Metric, since, until tstime.Sec) string {
	head := uint64(since) / blockTimestampHeadWidth
	return cloudKey(m.cfg.Prefix, "block", string(metric),
		fmt.Sprintf("%d", head), fmt.Sprintf("%d_%d", uint64(since), uint64(until)), "block")
}

// acquireCloudLock claims metric's remote lock on behalf of ownerID,
// failing with errCloudLockHeld if another writer already holds it. The
// check-then-write has a race window a real object store's conditional
// put would close; the local file lock acquired right after this is what
// actually serializes writers within reach of one storage root, so the
// cloud lock only needs to catch contention from other processes/buckets.
func (a *API) acquireCloudLock(ctx context.Context, metric schema.Metric, ownerID uuid.UUID) (func() error, error) {
	key := a.cloud.lockKey(metric)
	held, err := a.cloud.storage.Exists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("storageapi: checking cloud lock %s: %w", key, err)
	}
	if held {
		return nil, fmt.Errorf("%s: %w", key, errCloudLockHeld)
	}
	if err := a.cloud.storage.WriteSmallFile(ctx, key, []byte(ownerID.String())); err != nil {
		return nil, fmt.Errorf("storageapi: acquiring cloud lock %s: %w", key, err)
	}
	return func() error { return a.cloud.storage.Delete(ctx, key) }, nil
}

// mirrorBlock uploads a just-written block and its updated block list, in
// that order, so the cloud block list never indexes a block that is not
// there. A failure between the two uploads leaves a cloud block that no
// cloud block list entry points to yet.
func (a *API) mirrorBlock(ctx context.Context, metric schema.Metric, since, until tstime.Sec, blockData, blockListData []byte) error {
	if err := a.cloud.storage.Upload(ctx, a.cloud.blockKey(metric, since, until), bytes.NewReader(blockData)); err != nil {
		return fmt.Errorf("uploading block: %w", err)
	}
	if err := a.cloud.storage.Upload(ctx, a.cloud.blockListKey(metric), bytes.NewReader(blockListData)); err != nil {
		return fmt.Errorf("uploading block list: %w", err)
	}
	return nil
}

// recordUploadFailure writes a persisted-error record alongside the rest
// of metric's storage tree, per spec.md's "partial persistence failure"
// handling: local state stays consistent, the mismatch is captured for a
// later reconciliation pass instead of failing the write outright.
func (a *API) recordUploadFailure(metric schema.Metric, since, until tstime.Sec, cause error) {
	now := tstime.Now()
	e := persistederror.New(now, metric, persistederror.TypeFailedToUploadBlockOrBlockList, &since, &until, cause.Error())
	path := persistedErrorFilePath(a.rootDir, now)
	if err := persistederror.Write(path, e); err != nil {
		slog.Error("storageapi: recording persisted error", "metric", metric, "error", err)
	}
}

// downloadBlockListIfAbsent fetches a metric's block list from the cloud
// mirror, for readBlockList to fall back to after a local miss. ok is
// false (with no error) if mirroring is off or the object doesn't exist.
func (a *API) downloadBlockListIfAbsent(ctx context.Context, metric schema.Metric) (data []byte, ok bool, err error) {
	if a.cloud == nil {
		return nil, false, nil
	}
	data, ok, err = a.cloud.storage.DownloadIfExists(ctx, a.cloud.blockListKey(metric))
	if err != nil {
		return nil, false, fmt.Errorf("storageapi: downloading block list from cloud: %w", err)
	}
	return data, ok, nil
}

// downloadBlockIfAbsent fetches one block from the cloud mirror, for
// readBlock to fall back to after a local miss.
func (a *API) downloadBlockIfAbsent(ctx context.Context, metric schema.Metric, since, until tstime.Sec) (data []byte, ok bool, err error) {
	if a.cloud == nil {
		return nil, false, nil
	}
	data, ok, err = a.cloud.storage.DownloadIfExists(ctx, a.cloud.blockKey(metric, since, until))
	if err != nil {
		return nil, false, fmt.Errorf("storageapi: downloading block from cloud: %w", err)
	}
	return data, ok, nil
}

// ScavengeCloudLock removes metric's cloud lock if mirroring is enabled
// and the lock still carries ownerID: the only way that can happen is a
// crash mid-Write, since Write releases the lock itself on every normal
// return. It is a no-op if mirroring is off or the lock is absent or
// owned by someone else.
func (a *API) ScavengeCloudLock(metric schema.Metric, ownerID uuid.UUID) error {
	if a.cloud == nil {
		return nil
	}
	ctx := context.Background()
	key := a.cloud.lockKey(metric)
	data, ok, err := a.cloud.storage.DownloadIfExists(ctx, key)
	if err != nil {
		return fmt.Errorf("storageapi: reading cloud lock %s: %w", key, err)
	}
	if !ok || string(data) != ownerID.String() {
		return nil
	}
	return a.cloud.storage.Delete(ctx, key)
}
