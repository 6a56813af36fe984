package block

import (
	"math/bits"

	"github.com/flashts-io/flashts/schema"
	"github.com/flashts-io/flashts/tstime"
)

// TimestampDeltas is the intermediate form the block writer/reader use for
// the timestamp column: a head value plus per-step second deltas and
// sub-second remainders shifted by their common trailing-zero-bit count.
type TimestampDeltas struct {
	HeadTimestamp          tstime.Nano
	DeltasSecond           []uint64
	CommonTrailingZeroBits uint8
	SubNanoseconds         []uint64 // already shifted right by CommonTrailingZeroBits
}

// TimestampDeltasFromDataPoints computes the deltas form for a time-sorted
// run of datapoints.
func TimestampDeltasFromDataPoints(datapoints []schema.DataPoint) TimestampDeltas {
	head := datapoints[0].Timestamp
	if len(datapoints) == 1 {
		return TimestampDeltas{HeadTimestamp: head}
	}

	n := len(datapoints) - 1
	deltasSecond := make([]uint64, n)
	rawSubnano := make([]uint64, n)

	for i := 1; i < len(datapoints); i++ {
		prevSec := datapoints[i-1].Timestamp.AsSec()
		curSec := datapoints[i].Timestamp.AsSec()
		deltasSecond[i-1] = uint64(curSec.Sub(prevSec))
		rawSubnano[i-1] = datapoints[i].Timestamp.SubNano()
	}

	z := uint8(64)
	for _, v := range rawSubnano {
		tz := uint8(bits.TrailingZeros64(v))
		if tz < z {
			z = tz
		}
	}

	shifted := make([]uint64, n)
	for i, v := range rawSubnano {
		shifted[i] = v >> z
	}

	return TimestampDeltas{
		HeadTimestamp:          head,
		DeltasSecond:           deltasSecond,
		CommonTrailingZeroBits: z,
		SubNanoseconds:         shifted,
	}
}

// AsTimestamps reconstructs the full timestamp vector.
func (d TimestampDeltas) AsTimestamps() []tstime.Nano {
	out := make([]tstime.Nano, len(d.DeltasSecond)+1)
	out[0] = d.HeadTimestamp

	prevSecFloorNano := uint64(d.HeadTimestamp.AsSec()) * tstime.SecInNano
	for i := range d.DeltasSecond {
		secNano := prevSecFloorNano + d.DeltasSecond[i]*tstime.SecInNano
		subnano := d.SubNanoseconds[i] << d.CommonTrailingZeroBits
		out[i+1] = tstime.Nano(secNano + subnano)
		prevSecFloorNano = secNano
	}
	return out
}
