package wal

import (
	"bytes"
	"io"
	"testing"

	"github.com/flashts-io/flashts/schema"
	"github.com/flashts-io/flashts/tstime"
)

func sampleEntry() *Entry {
	return &Entry{
		Op:     OperationPush,
		Metric: schema.Metric("cpu.load"),
		DataPoint: schema.NewDataPoint(tstime.Nano(1629745451_715062000), []schema.FieldValue{
			schema.Float64Value(0.42),
			schema.BoolValue(true),
		}),
	}
}

func TestEntryEncodeDecodeRoundTrip(t *testing.T) {
	want := sampleEntry()

	var buf bytes.Buffer
	if err := want.Encode(&buf); err != nil {
		t.Fatal(err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}

	if got.Op != want.Op || got.Metric != want.Metric || got.DataPoint.Timestamp != want.DataPoint.Timestamp {
		t.Fatalf("entry mismatch: got %+v want %+v", got, want)
	}
	if len(got.DataPoint.Fields) != len(want.DataPoint.Fields) {
		t.Fatalf("field count mismatch: got %d want %d", len(got.DataPoint.Fields), len(want.DataPoint.Fields))
	}
	for i := range want.DataPoint.Fields {
		if got.DataPoint.Fields[i].Type() != want.DataPoint.Fields[i].Type() {
			t.Fatalf("field %d type mismatch", i)
		}
	}
	gotF, _ := got.DataPoint.Fields[0].Float64()
	if gotF != 0.42 {
		t.Fatalf("float field mismatch: got %v", gotF)
	}
	gotB, _ := got.DataPoint.Fields[1].Bool()
	if !gotB {
		t.Fatal("bool field mismatch")
	}
}

func TestEntrySizeMatchesEncodedLength(t *testing.T) {
	e := sampleEntry()
	var buf bytes.Buffer
	if err := e.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != e.Size() {
		t.Fatalf("Size() = %d, encoded length = %d", e.Size(), buf.Len())
	}
}

func TestDecodeDetectsCorruption(t *testing.T) {
	e := sampleEntry()
	var buf bytes.Buffer
	if err := e.Encode(&buf); err != nil {
		t.Fatal(err)
	}

	corrupted := buf.Bytes()
	corrupted[len(corrupted)-1] ^= 0xFF

	if _, err := Decode(bytes.NewReader(corrupted)); err == nil {
		t.Fatal("expected corruption to be detected")
	}
}

func TestDecodeReturnsEOFOnEmptyStream(t *testing.T) {
	_, err := Decode(bytes.NewReader(nil))
	if err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}
