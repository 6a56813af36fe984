package store

import (
	"fmt"

	"github.com/flashts-io/flashts/schema"
	"github.com/flashts-io/flashts/storageapi"
)

// PersistCondition selects which buffered datapoints Persist writes
// through to storage, and whether they are dropped from the buffer
// afterward.
type PersistCondition struct {
	Range               schema.DatapointsRange
	ClearAfterPersisted bool
}

// Persist writes every buffered datapoint matching condition.Range to
// api as one new block, reporting false if nothing matched. Matched
// datapoints are removed from the buffer when ClearAfterPersisted is set.
func (s *Store) Persist(api *storageapi.API, condition PersistCondition) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconcile()

	matched, lo, hi, ok := schema.SearchWithIndices(s.sorted, condition.Range)
	if !ok {
		return false, nil
	}

	if err := api.WriteAs(s.metric, matched, s.id); err != nil {
		return false, fmt.Errorf("store: persisting %s: %w", s.metric, err)
	}

	if condition.ClearAfterPersisted {
		s.sorted = removeRange(s.sorted, lo, hi)
		// Only safe to drop WAL segments when the persisted range covers
		// everything from the start: a bounded Since could leave older,
		// still-unpersisted datapoints sharing a segment with ones this
		// pass just cleared.
		if s.wal != nil && condition.Range.Since == nil && condition.Range.Until != nil {
			if err := s.wal.TruncateBefore(*condition.Range.Until); err != nil {
				return true, fmt.Errorf("store: truncating wal for %s: %w", s.metric, err)
			}
		}
	}
	return true, nil
}
