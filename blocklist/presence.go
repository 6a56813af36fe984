package blocklist

import (
	"encoding/binary"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/flashts-io/flashts/tstime"
)

// sinceBucketWidth groups since_sec values into coarse buckets (matching
// the directory sharding storageapi uses for block paths) so the presence
// filter stays small even for metrics with millions of blocks.
const sinceBucketWidth = 100_000

// presenceFilter is a bloom filter over since_sec buckets: a negative
// answer means no block starts in the bucket. It is exposed through
// BlockList.MightContain; Search and storageapi do not consult it.
type presenceFilter struct {
	filter *bloom.BloomFilter
}

func newPresenceFilter(blockCountHint int) *presenceFilter {
	n := uint(blockCountHint)
	if n < 16 {
		n = 16
	}
	return &presenceFilter{filter: bloom.NewWithEstimates(n, 0.01)}
}

func (p *presenceFilter) add(sinceSec tstime.Sec) {
	p.filter.Add(bucketKey(sinceSec))
}

func (p *presenceFilter) mightContain(sinceSec tstime.Sec) bool {
	return p.filter.Test(bucketKey(sinceSec))
}

func bucketKey(sinceSec tstime.Sec) []byte {
	bucket := uint64(sinceSec) / sinceBucketWidth
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], bucket)
	return b[:]
}
