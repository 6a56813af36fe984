// Package simple8b implements Simple8b packing of u64 streams into 8-byte
// big-endian words, with a 15th selector reserved for run-length encoding
// of long constant runs.
package simple8b

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	dataAreaBits        = 60
	selectorForRLE       = 15
	rleValueBits         = 32
	maxRLERepeatable     = 1<<28 - 1
)

var (
	// ErrValueOutOfBound is returned when a value needs more than 60 bits.
	ErrValueOutOfBound = errors.New("simple8b: value out of bound")
	// ErrInvalidSelector is returned on an out-of-range selector nibble.
	ErrInvalidSelector = errors.New("simple8b: invalid selector")
	// ErrBrokenData is returned when fewer than 8 bytes remain for a word.
	ErrBrokenData = errors.New("simple8b: broken data")
	// ErrNoFittingSelector is returned if no selector's width can hold a value.
	ErrNoFittingSelector = errors.New("simple8b: no fitting selector")
)

type selectorSpec struct {
	selector int
	width    int
	count    int
}

var selectors = [14]selectorSpec{
	{1, 1, 60},
	{2, 2, 30},
	{3, 3, 20},
	{4, 4, 15},
	{5, 5, 12},
	{6, 6, 10},
	{7, 7, 8},
	{8, 8, 7},
	{9, 10, 6},
	{10, 12, 5},
	{11, 15, 4},
	{12, 20, 3},
	{13, 30, 2},
	{14, 60, 1},
}

func meaningfulBitsize(v uint64) int {
	if v == 0 {
		return 1
	}
	n := 0
	for v != 0 {
		n++
		v >>= 1
	}
	return n
}

// narrowestSelector returns the selector spec whose width is the smallest
// one able to hold a value of the given bit size, using plain (non-RLE)
// Simple8b packing.
func narrowestSelector(bitsize int) (selectorSpec, error) {
	for _, s := range selectors {
		if s.width >= bitsize {
			return s, nil
		}
	}
	return selectorSpec{}, ErrNoFittingSelector
}

// pickSelector scans selectors ascending by width and returns the first
// one whose nominal value count, clipped to the remaining input, can hold
// every value in that window.
func pickSelector(src []uint64, i int) (selectorSpec, int, error) {
	remaining := len(src) - i
	for _, s := range selectors {
		window := s.count
		if window > remaining {
			window = remaining
		}
		fits := true
		for k := 0; k < window; k++ {
			if meaningfulBitsize(src[i+k]) > s.width {
				fits = false
				break
			}
		}
		if fits {
			return s, window, nil
		}
	}
	return selectorSpec{}, 0, ErrNoFittingSelector
}

// Compress packs src (every value must fit in 60 bits) into a stream of
// 8-byte big-endian Simple8b/RLE words.
func Compress(src []uint64) ([]byte, error) {
	out := make([]byte, 0, len(src))
	i := 0
	for i < len(src) {
		bitsize := meaningfulBitsize(src[i])
		if bitsize > dataAreaBits {
			return nil, fmt.Errorf("simple8b: value %d needs %d bits: %w", src[i], bitsize, ErrValueOutOfBound)
		}

		runLen := 1
		for i+runLen < len(src) && src[i+runLen] == src[i] {
			runLen++
		}

		plain, err := narrowestSelector(bitsize)
		if err != nil {
			return nil, err
		}

		if src[i] <= (1<<rleValueBits)-1 && runLen <= maxRLERepeatable && runLen > plain.count {
			word := uint64(selectorForRLE)<<60 | uint64(runLen)<<rleValueBits | src[i]
			out = appendWordBE(out, word)
			i += runLen
			continue
		}

		sel, window, err := pickSelector(src, i)
		if err != nil {
			return nil, err
		}
		word := packWord(sel, src[i:i+window])
		out = appendWordBE(out, word)
		i += window
	}
	return out, nil
}

func packWord(sel selectorSpec, values []uint64) uint64 {
	word := uint64(sel.selector) << 60
	for k := 0; k < sel.count; k++ {
		var v uint64
		if k < len(values) {
			v = values[k]
		}
		shift := dataAreaBits - (k+1)*sel.width
		word |= (v & ((1 << uint(sel.width)) - 1)) << uint(shift)
	}
	return word
}

func appendWordBE(dst []byte, word uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], word)
	return append(dst, b[:]...)
}

// Decompress reads Simple8b/RLE words from src until numOfValues values
// have been produced (or, if numOfValues < 0, until src is exhausted),
// returning the decoded values and the number of bytes consumed.
func Decompress(src []byte, numOfValues int) ([]uint64, int, error) {
	values := make([]uint64, 0, max(numOfValues, 0))
	consumed := 0
	for (numOfValues < 0 || len(values) < numOfValues) && consumed < len(src) {
		if len(src)-consumed < 8 {
			return nil, 0, ErrBrokenData
		}
		word := binary.BigEndian.Uint64(src[consumed : consumed+8])
		consumed += 8

		selector := int(word >> 60)
		if selector == selectorForRLE {
			repeat := (word >> rleValueBits) & maxRLERepeatable
			value := word & (1<<rleValueBits - 1)
			for k := uint64(0); k < repeat; k++ {
				if numOfValues >= 0 && len(values) >= numOfValues {
					break
				}
				values = append(values, value)
			}
			continue
		}

		idx := selector - 1
		if idx < 0 || idx >= len(selectors) {
			return nil, 0, fmt.Errorf("simple8b: selector %d: %w", selector, ErrInvalidSelector)
		}
		s := selectors[idx]
		data := word & (1<<dataAreaBits - 1)
		for k := 0; k < s.count; k++ {
			if numOfValues >= 0 && len(values) >= numOfValues {
				break
			}
			shift := dataAreaBits - (k+1)*s.width
			v := (data >> uint(shift)) & (1<<uint(s.width) - 1)
			values = append(values, v)
		}
	}
	return values, consumed, nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
