// Package boolpack packs booleans one bit each, MSB-first, byte-padded.
// The value count is carried externally by the caller (the block format
// already knows N from the datapoint count), matching spec.md's codecs.
package boolpack

import "github.com/flashts-io/flashts/bitio"

// Compress packs src into ceil(len(src)/8) bytes.
func Compress(src []bool) []byte {
	w := bitio.NewWriter()
	for _, b := range src {
		if b {
			w.WriteBit(bitio.One)
		} else {
			w.WriteBit(bitio.Zero)
		}
	}
	return w.Bytes()
}

// Decompress reads numOfValues booleans from src, returning the decoded
// values and the number of bytes consumed (ceil(numOfValues/8)).
func Decompress(src []byte, numOfValues int) ([]bool, int, error) {
	r := bitio.NewReader(src)
	values := make([]bool, 0, numOfValues)
	for i := 0; i < numOfValues; i++ {
		bit, ok := r.ChompBit()
		if !ok {
			break
		}
		values = append(values, bit == bitio.One)
	}
	return values, (numOfValues + 7) / 8, nil
}
