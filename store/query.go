package store

import (
	"github.com/flashts-io/flashts/schema"
	"github.com/flashts-io/flashts/search"
)

// Datapoints returns every buffered datapoint in timestamp order,
// reconciling any pending dirty writes first.
func (s *Store) Datapoints() []schema.DataPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconcile()

	out := make([]schema.DataPoint, len(s.sorted))
	copy(out, s.sorted)
	return out
}

// DatapointsTailLimit returns the last limit distinct-timestamp runs of
// buffered datapoints, in timestamp order.
func (s *Store) DatapointsTailLimit(limit int) []schema.DataPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconcile()

	idx := search.LinearSearchGroupedNLimit(s.sorted, limit, search.Desc, func(a, b schema.DataPoint) bool {
		return a.Timestamp == b.Timestamp
	})

	out := make([]schema.DataPoint, len(s.sorted)-idx)
	copy(out, s.sorted[idx:])
	return out
}

// Len reports the number of datapoints currently buffered (dirty and
// sorted combined).
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.dirty) + len(s.sorted)
}
