package blocklist

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/flashts-io/flashts/schema"
	"github.com/flashts-io/flashts/simple8b"
	"github.com/flashts-io/flashts/tstime"
	"github.com/flashts-io/flashts/varint"
)

// Read deserializes a block list file written by BlockList.Write.
func Read(metric schema.Metric, data []byte) (*BlockList, error) {
	if len(data) < crcTrailerSize+8 {
		return nil, fmt.Errorf("blocklist: %d bytes too short: %w", len(data), ErrInvalidBlockListFile)
	}
	body := data[:len(data)-crcTrailerSize]
	trailer := data[len(data)-crcTrailerSize:]
	want := binary.BigEndian.Uint32(trailer)
	if got := crc32.ChecksumIEEE(body); got != want {
		return nil, fmt.Errorf("blocklist: crc32 mismatch (want %08x, got %08x): %w", want, got, ErrInvalidBlockListFile)
	}

	updatedAt := tstime.Nano(binary.BigEndian.Uint64(body[:8]))
	pos := 8

	count, n, err := varint.Decode(body[pos:])
	if err != nil {
		return nil, fmt.Errorf("blocklist: block count: %w", err)
	}
	pos += n

	sinces, pos, err := readHeadAndDeltas(body, pos, int(count))
	if err != nil {
		return nil, fmt.Errorf("blocklist: since column: %w", err)
	}
	untils, pos, err := readHeadAndDeltas(body, pos, int(count))
	if err != nil {
		return nil, fmt.Errorf("blocklist: until column: %w", err)
	}

	counts, consumed, err := simple8b.Decompress(body[pos:], int(count))
	if err != nil {
		return nil, fmt.Errorf("blocklist: counts column: %w", err)
	}
	pos += consumed
	_ = pos

	metas := make([]BlockMetaInfo, count)
	for i := range metas {
		metas[i] = BlockMetaInfo{
			Since:         tstime.Sec(sinces[i]),
			Until:         tstime.Sec(untils[i]),
			TimestampNums: counts[i],
		}
	}

	return New(metric, updatedAt, metas), nil
}

func readHeadAndDeltas(body []byte, pos, count int) ([]uint64, int, error) {
	if count == 0 {
		return nil, pos, fmt.Errorf("blocklist: zero block count: %w", ErrEmptyBlockMetaInfos)
	}
	head, n, err := varint.Decode(body[pos:])
	if err != nil {
		return nil, pos, err
	}
	pos += n

	values := make([]uint64, count)
	values[0] = head
	if count == 1 {
		return values, pos, nil
	}

	deltas, consumed, err := simple8b.Decompress(body[pos:], count-1)
	if err != nil {
		return nil, pos, err
	}
	pos += consumed

	prev := head
	for i, d := range deltas {
		prev += d
		values[i+1] = prev
	}
	return values, pos, nil
}
