package boolpack

import (
	"reflect"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	src := []bool{true, false, true, true, false, false, false, true, true}
	encoded := Compress(src)
	if want := (len(src) + 7) / 8; len(encoded) != want {
		t.Fatalf("len(encoded) = %d, want %d", len(encoded), want)
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

func TestEmpty(t *testing.T) {
	encoded := Compress(nil)
	if len(encoded) != 0 {
		t.Fatalf("len(encoded) = %d, want 0", len(encoded))
	}
}
