package schema

import (
	"fmt"

	"github.com/flashts-io/flashts/search"
	"github.com/flashts-io/flashts/tstime"
)

// DatapointsRange bounds a datapoint query by timestamp: Since is
// inclusive, Until is exclusive. A nil bound is unbounded on that side.
type DatapointsRange struct {
	Since *tstime.Nano
	Until *tstime.Nano
}

// AllDatapoints returns an unbounded range.
func AllDatapoints() DatapointsRange {
	return DatapointsRange{}
}

// SinceDatapoints bounds the range to timestamps >= since.
func SinceDatapoints(since tstime.Nano) DatapointsRange {
	return DatapointsRange{Since: &since}
}

// UntilDatapoints bounds the range to timestamps < until.
func UntilDatapoints(until tstime.Nano) DatapointsRange {
	return DatapointsRange{Until: &until}
}

// WithSince returns a copy of r with Since set.
func (r DatapointsRange) WithSince(since tstime.Nano) DatapointsRange {
	r.Since = &since
	return r
}

// WithUntil returns a copy of r with Until set.
func (r DatapointsRange) WithUntil(until tstime.Nano) DatapointsRange {
	r.Until = &until
	return r
}

// ContainsWhole reports whether the block range [blockSince, blockUntil],
// with both ends inclusive, is entirely contained in r, so a block-list
// entry satisfying it can be read without projection to r.
func (r DatapointsRange) ContainsWhole(blockSince, blockUntil tstime.Nano) bool {
	if r.Since != nil && blockSince < *r.Since {
		return false
	}
	if r.Until != nil && blockUntil >= *r.Until {
		return false
	}
	return true
}

func (r DatapointsRange) String() string {
	since, until := "<nil>", "<nil>"
	if r.Since != nil {
		since = fmt.Sprintf("%d", uint64(*r.Since))
	}
	if r.Until != nil {
		until = fmt.Sprintf("%d", uint64(*r.Until))
	}
	return fmt.Sprintf("(%s, %s)", since, until)
}

// SearchWithIndices returns the contiguous sub-slice of datapoints (assumed
// sorted ascending by timestamp) satisfying r, along with its [lo, hi)
// index bounds in datapoints. ok is false if nothing matches.
func SearchWithIndices(datapoints []DataPoint, r DatapointsRange) ([]DataPoint, int, int, bool) {
	var lowerCmp, upperCmp func(DataPoint) int
	if r.Since != nil {
		since := *r.Since
		lowerCmp = func(d DataPoint) int { return cmpNano(d.Timestamp, since) }
	}
	if r.Until != nil {
		until := *r.Until
		upperCmp = func(d DataPoint) int { return cmpNano(d.Timestamp, until) }
	}

	lo := 0
	if lowerCmp != nil {
		i, ok := search.BinarySearchBy(datapoints, lowerCmp, search.AtLeastInclusive)
		if !ok {
			return nil, 0, 0, false
		}
		lo = i
	}
	hi := len(datapoints)
	if upperCmp != nil {
		j, ok := search.BinarySearchBy(datapoints, upperCmp, search.AtMostExclusive)
		if !ok {
			return nil, 0, 0, false
		}
		hi = j + 1
	}
	if lo >= hi {
		return nil, 0, 0, false
	}
	return datapoints[lo:hi], lo, hi, true
}

func cmpNano(a, b tstime.Nano) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
