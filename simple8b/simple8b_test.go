package simple8b

import (
	"encoding/binary"
	"reflect"
	"testing"
)

func TestRoundTripSmallValues(t *testing.T) {
	src := []uint64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	encoded, err := Compress(src)
	if err != nil {
		t.Fatal(err)
	}
	got, consumed, err := Decompress(encoded, len(src))
	if err != nil {
		t.Fatal(err)
	}
	if consumed != len(encoded) {
		t.Fatalf("consumed = %d, want %d", consumed, len(encoded))
	}
	if !reflect.DeepEqual(got, src) {
		t.Fatalf("got %v, want %v", got, src)
	}
}

func TestRLESelection(t *testing.T) {
	src := make([]uint64, 61)
	for i := range src {
		src[i] = 1
	}
	src = append(src, 2)

	encoded, err := Compress(src)
	if err != nil {
		t.Fatal(err)
	}

	firstWord := binary.BigEndian.Uint64(encoded[0:8])
	if selector := firstWord >> 60; selector != selectorForRLE {
		t.Fatalf("first word selector = %d, want RLE(15)", selector)
	}
	repeat := (firstWord >> rleValueBits) & maxRLERepeatable
	value := firstWord & (1<<rleValueBits - 1)
	if repeat != 61 || value != 1 {
		t.Fatalf("RLE word = (repeat=%d, value=%d), want (61, 1)", repeat, value)
	}

	got, consumed, err := Decompress(encoded, len(src))
	if err != nil {
		t.Fatal(err)
	}
	if consumed != len(encoded) {
		t.Fatalf("consumed = %d, want %d", consumed, len(encoded))
	}
	if !reflect.DeepEqual(got, src) {
		t.Fatalf("got %v, want %v", got, src)
	}
}

func TestValueTooLarge(t *testing.T) {
	if _, err := Compress([]uint64{1 << 60}); err == nil {
		t.Fatal("expected ErrValueOutOfBound")
	}
}

func TestRoundTripMixedWidths(t *testing.T) {
	src := []uint64{0, 1000, 2000, 3, 7, 1 << 29, 1 << 14, 0, 0, 0, 5}
	encoded, err := Compress(src)
	if err != nil {
		t.Fatal(err)
	}
	got, _, err := Decompress(encoded, len(src))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, src) {
		t.Fatalf("got %v, want %v", got, src)
	}
}
