package schema

import (
	"testing"

	"github.com/flashts-io/flashts/tstime"
)

func TestSameFieldTypes(t *testing.T) {
	want := []FieldType{FieldTypeFloat64, FieldTypeBool}
	dp := NewDataPoint(tstime.NewNano(1), []FieldValue{Float64Value(1), BoolValue(true)})
	if !SameFieldTypes(want, dp.Fields) {
		t.Fatal("expected matching field types")
	}
	if SameFieldTypes(want, []FieldValue{Float64Value(1)}) {
		t.Fatal("expected mismatch on arity")
	}
	if SameFieldTypes(want, []FieldValue{BoolValue(true), Float64Value(1)}) {
		t.Fatal("expected mismatch on order")
	}
}

func TestTypeTagRoundTrip(t *testing.T) {
	for _, ft := range []FieldType{FieldTypeFloat64, FieldTypeBool, FieldTypeUInt64, FieldTypeTimestampNano, FieldTypeString} {
		tag := FieldTypeToTag(ft)
		got, err := TypeTagToFieldType(tag)
		if err != nil {
			t.Fatal(err)
		}
		if got != ft {
			t.Fatalf("got %v, want %v", got, ft)
		}
	}
	if _, err := TypeTagToFieldType(255); err == nil {
		t.Fatal("expected ErrUnsupportedFieldType")
	}
}

func TestCheckSorted(t *testing.T) {
	ok := []DataPoint{
		NewDataPoint(tstime.NewNano(1), nil),
		NewDataPoint(tstime.NewNano(2), nil),
	}
	if err := CheckSorted(ok); err != nil {
		t.Fatal(err)
	}
	bad := []DataPoint{
		NewDataPoint(tstime.NewNano(2), nil),
		NewDataPoint(tstime.NewNano(1), nil),
	}
	if err := CheckSorted(bad); err == nil {
		t.Fatal("expected unsorted error")
	}
}

func TestDefaultSorter(t *testing.T) {
	var s DefaultSorter
	a := NewDataPoint(tstime.NewNano(1), nil)
	b := NewDataPoint(tstime.NewNano(2), nil)
	if s.Compare(a, b) >= 0 {
		t.Fatal("expected a<b")
	}
	if s.Compare(a, a) != 0 {
		t.Fatal("expected equal")
	}
}
