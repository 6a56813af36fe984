// Package blocklist implements the per-metric index of block time ranges
// and point counts: the on-disk file format, insertion that keeps the
// list sorted by until_sec, and range search.
package blocklist

import (
	"errors"
	"fmt"

	"github.com/flashts-io/flashts/schema"
	"github.com/flashts-io/flashts/search"
	"github.com/flashts-io/flashts/tstime"
)

var (
	ErrEmptyBlockMetaInfos  = errors.New("blocklist: empty block meta infos")
	ErrNotSorted            = errors.New("blocklist: block meta infos not sorted by until_sec")
	ErrInvalidBlockListFile = errors.New("blocklist: invalid block list file")
)

// BlockMetaInfo is one block's time range and point count.
type BlockMetaInfo struct {
	Since         tstime.Sec
	Until         tstime.Sec
	TimestampNums uint64
}

// BlockList is the in-memory, always-sorted-by-Until index for one metric.
type BlockList struct {
	Metric    schema.Metric
	UpdatedAt tstime.Nano
	Metas     []BlockMetaInfo

	presence *presenceFilter
}

// New constructs a BlockList, rebuilding the presence filter from metas.
func New(metric schema.Metric, updatedAt tstime.Nano, metas []BlockMetaInfo) *BlockList {
	bl := &BlockList{Metric: metric, UpdatedAt: updatedAt, Metas: metas}
	bl.rebuildPresence()
	return bl
}

// Len returns the number of blocks indexed.
func (bl *BlockList) Len() int { return len(bl.Metas) }

// Range reports the overall [min(since), max(until)] span, ok=false if empty.
func (bl *BlockList) Range() (since, until tstime.Sec, ok bool) {
	if len(bl.Metas) == 0 {
		return 0, 0, false
	}
	since, until = bl.Metas[0].Since, bl.Metas[0].Until
	for _, m := range bl.Metas[1:] {
		if m.Since < since {
			since = m.Since
		}
		if m.Until > until {
			until = m.Until
		}
	}
	return since, until, true
}

func (bl *BlockList) rebuildPresence() {
	bl.presence = newPresenceFilter(len(bl.Metas))
	for _, m := range bl.Metas {
		bl.presence.add(m.Since)
	}
}

// MightContain reports whether a block starting in sinceSec's 100000-second
// bucket could exist in the list. False negatives never happen; false
// positives are possible (standard bloom filter semantics) and callers
// must still search before trusting an absence.
func (bl *BlockList) MightContain(sinceSec tstime.Sec) bool {
	if bl.presence == nil {
		return true
	}
	return bl.presence.mightContain(sinceSec)
}

// checkSorted mirrors the teacher's sortedness assertion: Until must be
// non-decreasing across the list.
func (bl *BlockList) checkSorted() error {
	for i := 1; i < len(bl.Metas); i++ {
		if bl.Metas[i].Until < bl.Metas[i-1].Until {
			return fmt.Errorf("blocklist: %s: %w", bl.Metric, ErrNotSorted)
		}
	}
	return nil
}

// AddBlock inserts meta preserving the Until-non-decreasing invariant. In
// the common case of strictly-advancing writes this finds the tail in O(1);
// out-of-order inserts (backfills, repair) fall back to a reverse scan to
// find the first existing entry whose Until is <= the new one.
func (bl *BlockList) AddBlock(meta BlockMetaInfo) error {
	insertAt := 0
	for idx := len(bl.Metas) - 1; idx >= 0; idx-- {
		if bl.Metas[idx].Until <= meta.Until {
			insertAt = idx + 1
			break
		}
	}

	if insertAt == len(bl.Metas) {
		bl.Metas = append(bl.Metas, meta)
	} else {
		bl.Metas = append(bl.Metas, BlockMetaInfo{})
		copy(bl.Metas[insertAt+1:], bl.Metas[insertAt:])
		bl.Metas[insertAt] = meta
	}

	bl.presence.add(meta.Since)
	return nil
}

// Search returns the contiguous sub-slice of Metas overlapping
// [sinceInclusive, untilInclusive], either bound optional. Both bounds are
// inclusive at this layer (see SPEC_FULL.md §9 open question decision).
// ok is false if no block matches, or if the list is empty and both
// bounds are nil.
func (bl *BlockList) Search(sinceInclusive, untilInclusive *tstime.Sec) ([]BlockMetaInfo, bool) {
	metas := bl.Metas

	switch {
	case sinceInclusive != nil && untilInclusive != nil:
		lower, ok := search.BinarySearchBy(metas, func(m BlockMetaInfo) int {
			return cmpSec(m.Until, *sinceInclusive)
		}, search.AtLeastInclusive)
		if !ok {
			return nil, false
		}
		upper, ok := search.BinarySearchBy(metas, func(m BlockMetaInfo) int {
			return cmpSec(m.Since, *untilInclusive)
		}, search.AtMostInclusive)
		if !ok {
			return nil, false
		}
		if lower > upper {
			return nil, false
		}
		return metas[lower : upper+1], true

	case sinceInclusive != nil:
		lower, ok := search.BinarySearchBy(metas, func(m BlockMetaInfo) int {
			return cmpSec(m.Until, *sinceInclusive)
		}, search.AtLeastInclusive)
		if !ok {
			return nil, false
		}
		return metas[lower:], true

	case untilInclusive != nil:
		upper, ok := search.BinarySearchBy(metas, func(m BlockMetaInfo) int {
			return cmpSec(m.Since, *untilInclusive)
		}, search.AtMostInclusive)
		if !ok {
			return nil, false
		}
		return metas[:upper+1], true

	default:
		if len(metas) == 0 {
			return nil, false
		}
		return metas, true
	}
}

func cmpSec(a, b tstime.Sec) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
