package store

import (
	"log/slog"
	"time"

	"github.com/flashts-io/flashts/schema"
	"github.com/flashts-io/flashts/storageapi"
	"github.com/flashts-io/flashts/tstime"
)

// PeriodicPersistShutdown stops a background persistence loop started by
// StartPeriodicPersist and waits for its current cycle to finish.
type PeriodicPersistShutdown struct {
	stop chan struct{}
	done chan struct{}
}

// Shutdown signals the loop to stop and blocks until it has exited.
func (p *PeriodicPersistShutdown) Shutdown() {
	close(p.stop)
	<-p.done
}

// StartPeriodicPersist runs Persist against api every interval, covering
// everything buffered up to the moment each cycle fires, clearing matched
// datapoints from the buffer afterward.
func (s *Store) StartPeriodicPersist(api *storageapi.API, interval time.Duration) *PeriodicPersistShutdown {
	p := &PeriodicPersistShutdown{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	go func() {
		defer close(p.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-p.stop:
				return
			case <-ticker.C:
				condition := PersistCondition{
					Range:               schema.UntilDatapoints(tstime.Now()),
					ClearAfterPersisted: true,
				}
				if _, err := s.Persist(api, condition); err != nil {
					slog.Error("periodic persist failed", "metric", s.metric, "error", err)
				}
			}
		}
	}()

	return p
}

// ScavengeOnShutdown releases any resources this store instance's writes
// have left behind in api. The local advisory lock is scoped to a single
// Write/Read/Repair call rather than held for a store's lifetime, so
// there is never a lingering local lock to clean up; when cloud mirroring
// is configured, this removes the metric's cloud lock if it still
// carries this store's id, which only a crash mid-Write could leave
// behind (a normal Write releases its own cloud lock on every return).
func (s *Store) ScavengeOnShutdown(api *storageapi.API) error {
	return api.ScavengeCloudLock(s.metric, s.id)
}
