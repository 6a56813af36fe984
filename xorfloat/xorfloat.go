// Package xorfloat implements Gorilla-style XOR compression of float64
// streams: the head value is stored raw, and each subsequent value is
// encoded as the XOR against the previous value, reusing the previous
// nonzero XOR's leading/trailing-zero window when it still fits.
package xorfloat

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/flashts-io/flashts/bitio"
)

const (
	leadingZeroBitsSize = 6
	widthBitsSize       = 6
)

// ErrInvalidEncoding is returned when the head value is truncated, or when
// a value reuses the previous XOR window before any window has been set.
// A stream that ends later than the head is not an error: Decompress
// returns the values decoded so far.
var ErrInvalidEncoding = errors.New("xorfloat: invalid encoding")

// Compress encodes src as a Gorilla XOR byte stream.
func Compress(src []float64) []byte {
	if len(src) == 0 {
		return nil
	}
	w := bitio.NewWriter()
	prev := math.Float64bits(src[0])
	_ = w.WriteBits(prev, 64)

	// No previous window yet; any leading/trailing zero count is smaller
	// than these sentinels, which forces the first nonzero XOR to take the
	// "new window" branch rather than spuriously reuse an empty one.
	prevLeading, prevTrailing := 65, 65

	for _, f := range src[1:] {
		cur := math.Float64bits(f)
		xor := prev ^ cur
		if xor == 0 {
			w.WriteBit(bitio.Zero)
			prev = cur
			continue
		}
		w.WriteBit(bitio.One)

		leading := bits.LeadingZeros64(xor)
		trailing := bits.TrailingZeros64(xor)

		if leading >= prevLeading && trailing >= prevTrailing {
			w.WriteBit(bitio.Zero)
			width := 64 - prevLeading - prevTrailing
			middle := (xor >> uint(prevTrailing)) & (1<<uint(width) - 1)
			_ = w.WriteBits(middle, width)
		} else {
			w.WriteBit(bitio.One)
			width := 64 - leading - trailing
			_ = w.WriteBits(uint64(leading), leadingZeroBitsSize)
			_ = w.WriteBits(uint64(width-1), widthBitsSize)
			middle := (xor >> uint(trailing)) & (1<<uint(width) - 1)
			_ = w.WriteBits(middle, width)
			prevLeading, prevTrailing = leading, trailing
		}
		prev = cur
	}
	return w.Bytes()
}

// Decompress reads numOfValues float64s from src, returning the decoded
// values and the number of bytes consumed. Decoding stops early if the
// bit stream is exhausted before numOfValues is reached.
func Decompress(src []byte, numOfValues int) ([]float64, int, error) {
	if numOfValues == 0 {
		return nil, 0, nil
	}
	r := bitio.NewReader(src)
	head, ok, err := r.ChompU64(64)
	if err != nil {
		return nil, 0, fmt.Errorf("xorfloat: head value: %w", err)
	}
	if !ok {
		return nil, 0, fmt.Errorf("xorfloat: truncated head value: %w", ErrInvalidEncoding)
	}

	values := make([]float64, 0, numOfValues)
	values = append(values, math.Float64frombits(head))
	prev := head
	prevLeading, prevTrailing := 65, 65

	for len(values) < numOfValues {
		ctrl, ok := r.ChompBit()
		if !ok {
			break
		}
		if ctrl == bitio.Zero {
			values = append(values, math.Float64frombits(prev))
			continue
		}

		sub, ok := r.ChompBit()
		if !ok {
			break
		}

		var leading, width int
		if sub == bitio.Zero {
			if prevLeading > 64 || prevTrailing > 64 {
				return nil, 0, fmt.Errorf("xorfloat: window reuse before any window set: %w", ErrInvalidEncoding)
			}
			leading = prevLeading
			width = 64 - prevLeading - prevTrailing
		} else {
			leadingV, ok, err := r.ChompUint(leadingZeroBitsSize)
			if err != nil {
				return nil, 0, err
			}
			if !ok {
				break
			}
			widthMinus1, ok, err := r.ChompUint(widthBitsSize)
			if err != nil {
				return nil, 0, err
			}
			if !ok {
				break
			}
			leading = int(leadingV)
			width = int(widthMinus1) + 1
			prevLeading = leading
			prevTrailing = 64 - leading - width
		}

		trailing := 64 - leading - width
		middle, ok, err := r.ChompUint(width)
		if err != nil {
			return nil, 0, err
		}
		if !ok {
			break
		}
		xor := middle << uint(trailing)
		cur := prev ^ xor
		values = append(values, math.Float64frombits(cur))
		prev = cur
	}
	return values, r.BytesConsumed(), nil
}
