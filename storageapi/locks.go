package storageapi

import (
	"fmt"
	"sync"

	"github.com/gofrs/flock"
	"github.com/spaolacci/murmur3"

	"github.com/flashts-io/flashts/schema"
)

// mutexStripeSize is the number of in-process mutexes metrics are sharded
// over. Two different metrics hashing to the same bucket merely serialize
// unnecessarily; this never causes incorrect results, only contention.
const mutexStripeSize = 64

// mutexStripe serializes access per metric within this process without a
// single global lock or an unbounded per-metric map: murmur3 (the same
// fast non-cryptographic hash gholt's valuestore uses for checksumming,
// repurposed here for bucket selection) picks one of a fixed set of
// mutexes for a metric name.
type mutexStripe struct {
	mus [mutexStripeSize]sync.Mutex
}

func (s *mutexStripe) Lock(metric schema.Metric) func() {
	m := &s.mus[murmur3.Sum32([]byte(metric))%mutexStripeSize]
	m.Lock()
	return m.Unlock
}

// acquireFileLock takes the cross-process advisory lock on a metric's
// lock file, creating the file if needed. The returned func releases it.
func acquireFileLock(rootDir string, metric schema.Metric) (func() error, error) {
	path := lockFilePath(rootDir, metric)
	fl := flock.New(path)
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("storageapi: acquiring lock %s: %w", path, err)
	}
	return fl.Unlock, nil
}
