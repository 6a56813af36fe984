package block

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/bits-and-blooms/bitset"

	"github.com/flashts-io/flashts/boolpack"
	"github.com/flashts-io/flashts/dataframe"
	"github.com/flashts-io/flashts/schema"
	"github.com/flashts-io/flashts/simple8b"
	"github.com/flashts-io/flashts/tstime"
	"github.com/flashts-io/flashts/varint"
	"github.com/flashts-io/flashts/xorfloat"
)

const crcTrailerSize = 4

// Read deserializes a block file previously produced by Write. fieldSelectors
// names the original field indices to materialize, in the order they should
// appear in the returned DataFrame; a nil or empty slice selects every
// field, preserving on-disk order. Fields not selected are still decoded
// (the codecs are position-dependent and cannot be skipped) but are left
// out of the returned DataFrame, which holds only the selected columns.
func Read(data []byte, fieldSelectors []int) (*dataframe.DataFrame, error) {
	if len(data) < crcTrailerSize {
		return nil, fmt.Errorf("block: %d bytes too short: %w", len(data), ErrInvalidBlockFile)
	}
	body := data[:len(data)-crcTrailerSize]
	trailer := data[len(data)-crcTrailerSize:]
	want := binary.BigEndian.Uint32(trailer)
	if got := crc32.ChecksumIEEE(body); got != want {
		return nil, fmt.Errorf("block: crc32 mismatch (want %08x, got %08x): %w", want, got, ErrInvalidBlockFile)
	}

	count, n, err := varint.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("block: datapoint count: %w", err)
	}
	pos := n

	if pos >= len(body) {
		return nil, fmt.Errorf("block: truncated before field count: %w", ErrInvalidBlockFile)
	}
	fieldCount := int(body[pos])
	pos++

	if pos+fieldCount > len(body) {
		return nil, fmt.Errorf("block: truncated field type tags: %w", ErrInvalidBlockFile)
	}
	fieldTypes := make([]schema.FieldType, fieldCount)
	for i := 0; i < fieldCount; i++ {
		ft, err := schema.TypeTagToFieldType(body[pos])
		if err != nil {
			return nil, fmt.Errorf("block: field %d: %w", i, err)
		}
		fieldTypes[i] = ft
		pos++
	}

	outputPos, outCount, err := resolveFieldSelectors(fieldSelectors, fieldCount)
	if err != nil {
		return nil, err
	}

	if pos+8 > len(body) {
		return nil, fmt.Errorf("block: truncated head timestamp: %w", ErrInvalidBlockFile)
	}
	headTimestamp := tstime.Nano(binary.BigEndian.Uint64(body[pos : pos+8]))
	pos += 8

	var timestamps []tstime.Nano
	if count == 0 {
		return nil, fmt.Errorf("block: zero datapoint count: %w", ErrInvalidBlockFile)
	} else if count == 1 {
		timestamps = []tstime.Nano{headTimestamp}
	} else {
		secDeltas, consumed, err := simple8b.Decompress(body[pos:], int(count)-1)
		if err != nil {
			return nil, fmt.Errorf("block: second deltas: %w", err)
		}
		pos += consumed

		if pos >= len(body) {
			return nil, fmt.Errorf("block: truncated common trailing-zero byte: %w", ErrInvalidBlockFile)
		}
		commonTrailingZero := body[pos]
		pos++

		subNano, consumed, err := simple8b.Decompress(body[pos:], int(count)-1)
		if err != nil {
			return nil, fmt.Errorf("block: sub-nanoseconds: %w", err)
		}
		pos += consumed

		deltas := TimestampDeltas{
			HeadTimestamp:          headTimestamp,
			DeltasSecond:           secDeltas,
			CommonTrailingZeroBits: commonTrailingZero,
			SubNanoseconds:         subNano,
		}
		timestamps = deltas.AsTimestamps()
	}

	// Every original field must be decoded in order regardless of
	// selection: the codecs are position-dependent byte streams. Fields
	// that weren't selected are decoded only to advance pos and then
	// discarded rather than materialized.
	outFields := make([]dataframe.DataSeries, outCount)
	for origIdx, ft := range fieldTypes {
		switch ft {
		case schema.FieldTypeFloat64:
			values, consumed, err := xorfloat.Decompress(body[pos:], int(count))
			if err != nil {
				return nil, fmt.Errorf("block: field %d: %w", origIdx, err)
			}
			pos += consumed
			if out := outputPos[origIdx]; out >= 0 {
				outFields[out] = dataframe.NewDataSeries(dataframe.Float64SeriesValues(values))
			}
		case schema.FieldTypeBool:
			values, consumed, err := boolpack.Decompress(body[pos:], int(count))
			if err != nil {
				return nil, fmt.Errorf("block: field %d: %w", origIdx, err)
			}
			pos += consumed
			if out := outputPos[origIdx]; out >= 0 {
				outFields[out] = dataframe.NewDataSeries(dataframe.BoolSeriesValues(values))
			}
		default:
			return nil, fmt.Errorf("block: field %d type %s: %w", origIdx, ft, ErrUnsupportedField)
		}
	}

	return dataframe.New(timestamps, outFields)
}

// resolveFieldSelectors validates selectors against fieldCount and returns
// outputPos (original index -> output column index, -1 if not selected)
// plus the resulting output column count. A nil/empty selectors selects
// every field in on-disk order.
func resolveFieldSelectors(selectors []int, fieldCount int) ([]int, int, error) {
	outputPos := make([]int, fieldCount)
	for i := range outputPos {
		outputPos[i] = -1
	}

	if len(selectors) == 0 {
		for i := range outputPos {
			outputPos[i] = i
		}
		return outputPos, fieldCount, nil
	}

	seen := bitset.New(uint(fieldCount))
	for outIdx, origIdx := range selectors {
		if origIdx < 0 || origIdx >= fieldCount {
			return nil, 0, fmt.Errorf("block: selector %d out of range [0,%d): %w", origIdx, fieldCount, ErrInvalidFieldSelector)
		}
		if seen.Test(uint(origIdx)) {
			return nil, 0, fmt.Errorf("block: duplicate selector %d: %w", origIdx, ErrInvalidFieldSelector)
		}
		seen.Set(uint(origIdx))
		outputPos[origIdx] = outIdx
	}
	return outputPos, len(selectors), nil
}
