package blocklist

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/flashts-io/flashts/bitio"
	"github.com/flashts-io/flashts/simple8b"
	"github.com/flashts-io/flashts/varint"
)

const crcTrailerSize = 4

// Write serializes the block list per the layout: updated-at (8 raw
// bytes) + varint block count + (since head varint, since deltas
// Simple8b/RLE) + (until head varint, until deltas Simple8b/RLE) +
// counts Simple8b/RLE, trailed by a 4-byte big-endian CRC32 (IEEE).
func (bl *BlockList) Write() ([]byte, error) {
	if len(bl.Metas) == 0 {
		return nil, ErrEmptyBlockMetaInfos
	}
	if err := bl.checkSorted(); err != nil {
		return nil, err
	}

	buf := make([]byte, 0, 64)

	headW := bitio.NewWriter()
	_ = headW.WriteBits(uint64(bl.UpdatedAt), 64)
	buf = append(buf, headW.Bytes()...)

	buf = varint.AppendTo(buf, uint64(len(bl.Metas)))

	sinces := make([]uint64, len(bl.Metas))
	untils := make([]uint64, len(bl.Metas))
	counts := make([]uint64, len(bl.Metas))
	for i, m := range bl.Metas {
		sinces[i] = uint64(m.Since)
		untils[i] = uint64(m.Until)
		counts[i] = m.TimestampNums
	}

	var err error
	buf, err = appendHeadAndDeltas(buf, sinces)
	if err != nil {
		return nil, fmt.Errorf("blocklist: since column: %w", err)
	}
	buf, err = appendHeadAndDeltas(buf, untils)
	if err != nil {
		return nil, fmt.Errorf("blocklist: until column: %w", err)
	}

	encodedCounts, err := simple8b.Compress(counts)
	if err != nil {
		return nil, fmt.Errorf("blocklist: counts column: %w", err)
	}
	buf = append(buf, encodedCounts...)

	crc := crc32.ChecksumIEEE(buf)
	var crcBytes [4]byte
	binary.BigEndian.PutUint32(crcBytes[:], crc)
	buf = append(buf, crcBytes[:]...)

	return buf, nil
}

// appendHeadAndDeltas writes values[0] as a varint head followed by its
// successive deltas as a Simple8b/RLE stream.
func appendHeadAndDeltas(dst []byte, values []uint64) ([]byte, error) {
	dst = varint.AppendTo(dst, values[0])
	if len(values) == 1 {
		return dst, nil
	}
	deltas := make([]uint64, len(values)-1)
	for i := 1; i < len(values); i++ {
		deltas[i-1] = values[i] - values[i-1]
	}
	encoded, err := simple8b.Compress(deltas)
	if err != nil {
		return nil, err
	}
	return append(dst, encoded...), nil
}
