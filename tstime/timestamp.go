// Package tstime implements the two timestamp types the storage engine
// operates on: Nano, a nanosecond-resolution instant, and Sec, its
// seconds truncation.
package tstime

import "time"

// SecInNano is the number of nanoseconds in one second.
const SecInNano uint64 = 1_000_000_000

// Nano is an unsigned count of nanoseconds since the Unix epoch.
type Nano uint64

// NewNano wraps a raw nanosecond count.
func NewNano(v uint64) Nano { return Nano(v) }

// Now returns the current wall-clock time as a Nano.
func Now() Nano {
	return Nano(uint64(time.Now().UnixNano()))
}

// AsSec truncates to whole seconds.
func (n Nano) AsSec() Sec {
	return Sec(uint64(n) / SecInNano)
}

// SubNano returns the sub-second remainder in nanoseconds.
func (n Nano) SubNano() uint64 {
	return uint64(n) % SecInNano
}

// SecFloor returns the largest Nano value that is an exact multiple of one
// second and does not exceed n.
func (n Nano) SecFloor() Nano {
	return Nano(uint64(n.AsSec()) * SecInNano)
}

// Sub returns n-other as a signed nanosecond duration.
func (n Nano) Sub(other Nano) int64 {
	return int64(n) - int64(other)
}

// Sec is an unsigned count of seconds since the Unix epoch.
type Sec uint64

// NewSec wraps a raw second count.
func NewSec(v uint64) Sec { return Sec(v) }

// NowSec returns the current wall-clock time truncated to seconds.
func NowSec() Sec {
	return Sec(uint64(time.Now().Unix()))
}

// Add returns s+delta seconds.
func (s Sec) Add(delta uint64) Sec {
	return Sec(uint64(s) + delta)
}

// Sub returns s-other as a signed second duration.
func (s Sec) Sub(other Sec) int64 {
	return int64(s) - int64(other)
}

// AsNano converts back to a Nano at the start of this second.
func (s Sec) AsNano() Nano {
	return Nano(uint64(s) * SecInNano)
}
