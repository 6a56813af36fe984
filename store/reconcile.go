package store

import (
	"sort"

	"github.com/flashts-io/flashts/schema"
	"github.com/flashts-io/flashts/search"
	"github.com/flashts-io/flashts/tstime"
)

// reconcile sorts the dirty buffer and merges it into sorted, then clears
// dirty. Called with mu held.
func (s *Store) reconcile() {
	if len(s.dirty) == 0 {
		return
	}

	sort.SliceStable(s.dirty, func(i, j int) bool {
		return s.sorter.Compare(s.dirty[i], s.dirty[j]) < 0
	})

	if len(s.sorted) == 0 {
		s.sorted, s.dirty = s.dirty, s.sorted[:0]
		return
	}

	for len(s.dirty) > 0 {
		head := s.dirty[0]
		last := s.sorted[len(s.sorted)-1]

		if last.Timestamp <= head.Timestamp {
			s.sorted = append(s.sorted, s.dirty...)
			break
		}

		s.dirty = s.dirty[1:]
		idx, ok := search.BinarySearchBy(s.sorted, func(d schema.DataPoint) int {
			return cmpTimestamp(d.Timestamp, head.Timestamp)
		}, search.AtMostInclusive)
		if !ok {
			s.sorted = append([]schema.DataPoint{head}, s.sorted...)
			continue
		}
		s.sorted = insertAt(s.sorted, idx+1, head)
	}

	s.dirty = s.dirty[:0]
}

func insertAt(datapoints []schema.DataPoint, idx int, dp schema.DataPoint) []schema.DataPoint {
	datapoints = append(datapoints, schema.DataPoint{})
	copy(datapoints[idx+1:], datapoints[idx:])
	datapoints[idx] = dp
	return datapoints
}

func cmpTimestamp(a, b tstime.Nano) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
