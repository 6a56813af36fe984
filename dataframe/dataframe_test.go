package dataframe

import (
	"testing"

	"github.com/flashts-io/flashts/tstime"
)

func TestNewValidatesLength(t *testing.T) {
	ts := []tstime.Nano{tstime.NewNano(1), tstime.NewNano(2)}
	ok := []DataSeries{NewDataSeries(Float64SeriesValues([]float64{1, 2}))}
	if _, err := New(ts, ok); err != nil {
		t.Fatal(err)
	}

	bad := []DataSeries{NewDataSeries(Float64SeriesValues([]float64{1}))}
	if _, err := New(ts, bad); err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestVacantSeriesValuesLen(t *testing.T) {
	v := VacantSeriesValues(3)
	if !v.IsVacant() || v.Len() != 3 {
		t.Fatalf("vacant series: IsVacant=%v Len=%d", v.IsVacant(), v.Len())
	}
}

func TestToDataPointsRoundTrip(t *testing.T) {
	ts := []tstime.Nano{tstime.NewNano(1), tstime.NewNano(2)}
	fields := []DataSeries{
		NewDataSeries(Float64SeriesValues([]float64{1.5, 2.5})),
		NewDataSeries(BoolSeriesValues([]bool{true, false})),
	}
	df, err := New(ts, fields)
	if err != nil {
		t.Fatal(err)
	}

	points, err := df.ToDataPoints()
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d points", len(points))
	}
	f0, _ := points[0].Fields[0].Float64()
	if f0 != 1.5 {
		t.Fatalf("got %v", f0)
	}
	b1, _ := points[1].Fields[1].Bool()
	if b1 != false {
		t.Fatalf("got %v", b1)
	}
}

func TestToDataPointsRejectsVacantColumn(t *testing.T) {
	ts := []tstime.Nano{tstime.NewNano(1)}
	fields := []DataSeries{NewDataSeries(VacantSeriesValues(1))}
	df, err := New(ts, fields)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := df.ToDataPoints(); err == nil {
		t.Fatal("expected vacant column error")
	}
}
