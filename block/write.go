package block

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"os"

	"github.com/flashts-io/flashts/bitio"
	"github.com/flashts-io/flashts/boolpack"
	"github.com/flashts-io/flashts/schema"
	"github.com/flashts-io/flashts/simple8b"
	"github.com/flashts-io/flashts/varint"
	"github.com/flashts-io/flashts/xorfloat"
)

// Write serializes one time-sorted batch of multi-field datapoints into
// the block file byte layout described in SPEC_FULL.md §4.6, trailed by a
// 4-byte big-endian CRC32 (IEEE) of everything preceding it.
func Write(datapoints []schema.DataPoint) ([]byte, error) {
	if len(datapoints) == 0 {
		return nil, ErrEmptyDatapoints
	}

	fieldTypes := datapoints[0].FieldTypes()
	if len(fieldTypes) > 255 {
		return nil, fmt.Errorf("block: %d fields exceeds 255: %w", len(fieldTypes), ErrFieldTypeMismatched)
	}
	for i, dp := range datapoints {
		if !schema.SameFieldTypes(fieldTypes, dp.Fields) {
			return nil, fmt.Errorf("block: datapoint %d: %w", i, ErrFieldTypeMismatched)
		}
	}

	buf := make([]byte, 0, 64)
	buf = varint.AppendTo(buf, uint64(len(datapoints)))
	buf = append(buf, byte(len(fieldTypes)))
	for _, ft := range fieldTypes {
		buf = append(buf, schema.FieldTypeToTag(ft))
	}

	headW := bitio.NewWriter()
	_ = headW.WriteBits(uint64(datapoints[0].Timestamp), 64)
	buf = append(buf, headW.Bytes()...)

	if len(datapoints) > 1 {
		deltas := TimestampDeltasFromDataPoints(datapoints)

		encodedSec, err := simple8b.Compress(deltas.DeltasSecond)
		if err != nil {
			return nil, fmt.Errorf("block: encoding second deltas: %w", err)
		}
		buf = append(buf, encodedSec...)

		buf = append(buf, deltas.CommonTrailingZeroBits)

		encodedSubnano, err := simple8b.Compress(deltas.SubNanoseconds)
		if err != nil {
			return nil, fmt.Errorf("block: encoding sub-nanoseconds: %w", err)
		}
		buf = append(buf, encodedSubnano...)
	}

	for fieldIdx, ft := range fieldTypes {
		switch ft {
		case schema.FieldTypeFloat64:
			values := make([]float64, len(datapoints))
			for i, dp := range datapoints {
				v, _ := dp.Fields[fieldIdx].Float64()
				values[i] = v
			}
			buf = append(buf, xorfloat.Compress(values)...)
		case schema.FieldTypeBool:
			values := make([]bool, len(datapoints))
			for i, dp := range datapoints {
				v, _ := dp.Fields[fieldIdx].Bool()
				values[i] = v
			}
			buf = append(buf, boolpack.Compress(values)...)
		default:
			return nil, fmt.Errorf("block: field %d type %s: %w", fieldIdx, ft, ErrUnsupportedField)
		}
	}

	crc := crc32.ChecksumIEEE(buf)
	var crcBytes [4]byte
	binary.BigEndian.PutUint32(crcBytes[:], crc)
	buf = append(buf, crcBytes[:]...)

	return buf, nil
}

// WriteFile writes the block to path, creating or truncating it.
func WriteFile(path string, datapoints []schema.DataPoint) error {
	data, err := Write(datapoints)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("block: writing %s: %w", path, err)
	}
	return nil
}
