// Package varint implements a LEB128-style variable-length encoding for
// unsigned 64-bit integers: 7-bit groups, little-endian, with the high bit
// of every non-final byte set as a continuation flag.
package varint

import (
	"errors"
	"fmt"
	"io"
)

const (
	continueBit = 1 << 7
	valueMask   = continueBit - 1

	// MaxBytes is the longest a compressed u64 can legally be.
	MaxBytes = 10
)

// ErrValueOutOfBound is returned by Decode when the input cannot represent
// a valid u64 (too many continuation bytes, or a final byte that would
// overflow 64 bits).
var ErrValueOutOfBound = errors.New("varint: value out of bound")

// Encode appends the 7-bit-group encoding of v to w.
func Encode(v uint64, w io.ByteWriter) error {
	for {
		b := byte(v & valueMask)
		v >>= 7
		if v != 0 {
			if err := w.WriteByte(b | continueBit); err != nil {
				return fmt.Errorf("varint: write byte: %w", err)
			}
			continue
		}
		if err := w.WriteByte(b); err != nil {
			return fmt.Errorf("varint: write byte: %w", err)
		}
		return nil
	}
}

// AppendTo encodes v and appends it to dst, returning the grown slice.
func AppendTo(dst []byte, v uint64) []byte {
	for {
		b := byte(v & valueMask)
		v >>= 7
		if v != 0 {
			dst = append(dst, b|continueBit)
			continue
		}
		return append(dst, b)
	}
}

// Decode reads a single varint from src, returning the value and the
// number of bytes consumed. It fails with ErrValueOutOfBound if more than
// MaxBytes continuation-flagged bytes are seen, or if the 10th byte would
// overflow the 64 meaningful bits (its top 6 bits must be zero).
func Decode(src []byte) (uint64, int, error) {
	var result uint64
	var shift uint
	for i := 0; i < len(src); i++ {
		b := src[i]

		if i == MaxBytes-1 {
			// The 10th byte only has 64-63 = 1 bit of room in a strict
			// 7-bits-per-byte scheme after 9*7=63 bits; anything using
			// more than the low bit here overflows u64.
			if b&0xFE != 0 {
				return 0, 0, ErrValueOutOfBound
			}
		}
		if i >= MaxBytes {
			return 0, 0, ErrValueOutOfBound
		}

		result |= uint64(b&valueMask) << shift
		if b&continueBit == 0 {
			return result, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, io.ErrUnexpectedEOF
}
