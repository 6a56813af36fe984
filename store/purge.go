package store

import "github.com/flashts-io/flashts/schema"

// Purge drops every buffered datapoint whose timestamp falls within r.
func (s *Store) Purge(r schema.DatapointsRange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconcile()

	_, lo, hi, ok := schema.SearchWithIndices(s.sorted, r)
	if !ok {
		return
	}
	s.sorted = removeRange(s.sorted, lo, hi)
}

// removeRange deletes sorted[lo:hi] in place, preserving order.
func removeRange(datapoints []schema.DataPoint, lo, hi int) []schema.DataPoint {
	n := copy(datapoints[lo:], datapoints[hi:])
	return datapoints[:lo+n]
}
