// Package wal implements a per-metric, segment-backed write-ahead log of
// pushed datapoints: every Store.Push/PushMulti is durable here before it
// lands in the in-memory dirty buffer, and on startup cmd/flashtsd's
// registry replays it back into the store through Store.PushReplayed.
package wal

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"math"

	"github.com/flashts-io/flashts/schema"
	"github.com/flashts-io/flashts/tstime"
	"github.com/flashts-io/flashts/varint"
)

// maxEntrySize bounds a single encoded entry, mirroring the teacher's WAL
// sanity check against corrupt length fields.
const maxEntrySize = 16 << 20 // 16MB

// ErrCorruptWAL is returned by Decode when a length or checksum fails to
// validate.
var ErrCorruptWAL = fmt.Errorf("wal: corrupt entry")

// Operation is the kind of mutation an Entry records. Push is the only
// kind spec.md's store exposes (no deletes), but the type is kept so the
// wire format has room to grow.
type Operation uint8

const OperationPush Operation = 0

// Entry is one durable WAL record: a single push to one metric.
type Entry struct {
	Op        Operation
	Metric    schema.Metric
	DataPoint schema.DataPoint
}

// Size returns the exact number of bytes Encode will write, so callers can
// size a segment write ahead of actually encoding it.
func (e *Entry) Size() int {
	n := 8 // crc + total len header
	n += 1 // op
	n += varintSize(uint64(len(e.Metric)))
	n += len(e.Metric)
	n += 8 // timestamp
	n += 1 // field count
	for _, f := range e.DataPoint.Fields {
		n += fieldSize(f)
	}
	return n
}

func varintSize(v uint64) int {
	n := 1
	for v >>= 7; v != 0; v >>= 7 {
		n++
	}
	return n
}

func fieldSize(f schema.FieldValue) int {
	switch f.Type() {
	case schema.FieldTypeFloat64, schema.FieldTypeUInt64, schema.FieldTypeTimestampNano:
		return 1 + 8
	case schema.FieldTypeBool:
		return 1 + 1
	case schema.FieldTypeString:
		s := f.String()
		return 1 + varintSize(uint64(len(s))) + len(s)
	default:
		return 1
	}
}

// Encode writes the entry to w as:
// | CRC32 (4 BE) | TOTAL_LEN (4 BE) | OP (1) | METRIC_LEN (varint) | METRIC
// | TIMESTAMP (8 BE) | FIELD_COUNT (1) | (FIELD_TAG (1) | FIELD_VALUE)... |
// CRC32 is computed over everything from OP onward.
func (e *Entry) Encode(w io.Writer) error {
	var payload bytes.Buffer
	payload.WriteByte(byte(e.Op))

	metricBytes := []byte(e.Metric)
	payload.Write(varint.AppendTo(nil, uint64(len(metricBytes))))
	payload.Write(metricBytes)

	var tsBuf [8]byte
	binary.BigEndian.PutUint64(tsBuf[:], uint64(e.DataPoint.Timestamp))
	payload.Write(tsBuf[:])

	if len(e.DataPoint.Fields) > 255 {
		return fmt.Errorf("wal: %d fields exceeds 255", len(e.DataPoint.Fields))
	}
	payload.WriteByte(byte(len(e.DataPoint.Fields)))
	for _, f := range e.DataPoint.Fields {
		if err := encodeField(&payload, f); err != nil {
			return err
		}
	}

	if payload.Len() > maxEntrySize {
		return fmt.Errorf("wal: entry of %d bytes exceeds max size %d", payload.Len(), maxEntrySize)
	}

	crc := crc32.ChecksumIEEE(payload.Bytes())
	var header [8]byte
	binary.BigEndian.PutUint32(header[0:4], crc)
	binary.BigEndian.PutUint32(header[4:8], uint32(payload.Len()))

	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err := w.Write(payload.Bytes())
	return err
}

func encodeField(buf *bytes.Buffer, f schema.FieldValue) error {
	buf.WriteByte(schema.FieldTypeToTag(f.Type()))
	switch f.Type() {
	case schema.FieldTypeFloat64:
		v, _ := f.Float64()
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], math.Float64bits(v))
		buf.Write(b[:])
	case schema.FieldTypeBool:
		v, _ := f.Bool()
		if v {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case schema.FieldTypeUInt64:
		v, _ := f.UInt64()
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], v)
		buf.Write(b[:])
	case schema.FieldTypeTimestampNano:
		v, _ := f.TimestampNano()
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], uint64(v))
		buf.Write(b[:])
	case schema.FieldTypeString:
		s := f.String()
		buf.Write(varint.AppendTo(nil, uint64(len(s))))
		buf.WriteString(s)
	default:
		return fmt.Errorf("wal: unsupported field type %s", f.Type())
	}
	return nil
}

// Decode reads one entry from r. It returns io.EOF (not wrapped) once the
// stream is exhausted cleanly, so callers can range over a WAL file until
// EOF without treating end-of-file as a failure.
func Decode(r io.Reader) (*Entry, error) {
	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, cleanEOF(err)
	}
	storedCRC := binary.BigEndian.Uint32(header[0:4])
	totalLen := binary.BigEndian.Uint32(header[4:8])
	if totalLen == 0 || totalLen > maxEntrySize {
		return nil, fmt.Errorf("wal: length %d: %w", totalLen, ErrCorruptWAL)
	}

	payload := make([]byte, totalLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, cleanEOF(err)
	}
	if crc32.ChecksumIEEE(payload) != storedCRC {
		return nil, fmt.Errorf("wal: checksum mismatch: %w", ErrCorruptWAL)
	}

	pos := 0
	op := Operation(payload[pos])
	pos++

	metricLen, n, err := varint.Decode(payload[pos:])
	if err != nil {
		return nil, fmt.Errorf("wal: metric length: %w", err)
	}
	pos += n
	if pos+int(metricLen) > len(payload) {
		return nil, fmt.Errorf("wal: truncated metric name: %w", ErrCorruptWAL)
	}
	metric := schema.Metric(payload[pos : pos+int(metricLen)])
	pos += int(metricLen)

	if pos+8 > len(payload) {
		return nil, fmt.Errorf("wal: truncated timestamp: %w", ErrCorruptWAL)
	}
	ts := tstime.Nano(binary.BigEndian.Uint64(payload[pos : pos+8]))
	pos += 8

	if pos >= len(payload) {
		return nil, fmt.Errorf("wal: truncated field count: %w", ErrCorruptWAL)
	}
	fieldCount := int(payload[pos])
	pos++

	fields := make([]schema.FieldValue, fieldCount)
	for i := 0; i < fieldCount; i++ {
		f, consumed, err := decodeField(payload[pos:])
		if err != nil {
			return nil, fmt.Errorf("wal: field %d: %w", i, err)
		}
		fields[i] = f
		pos += consumed
	}

	return &Entry{
		Op:        op,
		Metric:    metric,
		DataPoint: schema.NewDataPoint(ts, fields),
	}, nil
}

func decodeField(data []byte) (schema.FieldValue, int, error) {
	if len(data) < 1 {
		return schema.FieldValue{}, 0, ErrCorruptWAL
	}
	ft, err := schema.TypeTagToFieldType(data[0])
	if err != nil {
		return schema.FieldValue{}, 0, err
	}
	pos := 1
	switch ft {
	case schema.FieldTypeFloat64:
		if len(data) < pos+8 {
			return schema.FieldValue{}, 0, ErrCorruptWAL
		}
		v := math.Float64frombits(binary.BigEndian.Uint64(data[pos : pos+8]))
		return schema.Float64Value(v), pos + 8, nil
	case schema.FieldTypeBool:
		if len(data) < pos+1 {
			return schema.FieldValue{}, 0, ErrCorruptWAL
		}
		return schema.BoolValue(data[pos] != 0), pos + 1, nil
	case schema.FieldTypeUInt64:
		if len(data) < pos+8 {
			return schema.FieldValue{}, 0, ErrCorruptWAL
		}
		return schema.UInt64Value(binary.BigEndian.Uint64(data[pos : pos+8])), pos + 8, nil
	case schema.FieldTypeTimestampNano:
		if len(data) < pos+8 {
			return schema.FieldValue{}, 0, ErrCorruptWAL
		}
		return schema.TimestampNanoValue(tstime.Nano(binary.BigEndian.Uint64(data[pos : pos+8]))), pos + 8, nil
	case schema.FieldTypeString:
		strLen, n, err := varint.Decode(data[pos:])
		if err != nil {
			return schema.FieldValue{}, 0, err
		}
		pos += n
		if len(data) < pos+int(strLen) {
			return schema.FieldValue{}, 0, ErrCorruptWAL
		}
		return schema.StringValue(string(data[pos : pos+int(strLen)])), pos + int(strLen), nil
	default:
		return schema.FieldValue{}, 0, fmt.Errorf("wal: unsupported field type %s", ft)
	}
}

func cleanEOF(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return io.EOF
	}
	return err
}
