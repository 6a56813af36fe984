// Package dataframe implements the columnar container returned by block
// reads: a timestamp vector plus parallel typed field columns.
package dataframe

import (
	"fmt"

	"github.com/flashts-io/flashts/schema"
	"github.com/flashts-io/flashts/tstime"
)

// SeriesValues is one decoded (or not-yet-decoded) column. A Vacant
// column is a placeholder that carries only a length, so the dataframe's
// invariant ("all columns have the same length as the timestamp vector")
// still holds. Projected block reads do not produce Vacant columns: they
// leave unselected fields out of the frame.
type SeriesValues struct {
	typ       schema.FieldType
	float64s  []float64
	bools     []bool
	vacant    bool
	vacantLen int
}

// VacantSeriesValues returns a placeholder column of length n.
func VacantSeriesValues(n int) SeriesValues {
	return SeriesValues{vacant: true, vacantLen: n}
}

// Float64SeriesValues wraps a decoded Float64 column.
func Float64SeriesValues(v []float64) SeriesValues {
	return SeriesValues{typ: schema.FieldTypeFloat64, float64s: v}
}

// BoolSeriesValues wraps a decoded Bool column.
func BoolSeriesValues(v []bool) SeriesValues {
	return SeriesValues{typ: schema.FieldTypeBool, bools: v}
}

// IsVacant reports whether the column is a Vacant placeholder.
func (s SeriesValues) IsVacant() bool { return s.vacant }

// Type returns the column's field type; meaningless if IsVacant.
func (s SeriesValues) Type() schema.FieldType { return s.typ }

// Float64 returns the decoded column and true if this is a Float64 series.
func (s SeriesValues) Float64() ([]float64, bool) {
	return s.float64s, !s.vacant && s.typ == schema.FieldTypeFloat64
}

// Bool returns the decoded column and true if this is a Bool series.
func (s SeriesValues) Bool() ([]bool, bool) {
	return s.bools, !s.vacant && s.typ == schema.FieldTypeBool
}

// Len returns the column's length, including vacant placeholders.
func (s SeriesValues) Len() int {
	if s.vacant {
		return s.vacantLen
	}
	switch s.typ {
	case schema.FieldTypeFloat64:
		return len(s.float64s)
	case schema.FieldTypeBool:
		return len(s.bools)
	default:
		return 0
	}
}

// DataSeries is one named/positioned column of a DataFrame.
type DataSeries struct {
	Values SeriesValues
}

// NewDataSeries wraps a column's values.
func NewDataSeries(v SeriesValues) DataSeries {
	return DataSeries{Values: v}
}

// DataFrame is a columnar mirror of a contiguous, time-sorted run of
// datapoints: a timestamp vector plus F parallel typed columns of equal
// length.
type DataFrame struct {
	Timestamps []tstime.Nano
	Fields     []DataSeries
}

// New constructs a DataFrame, validating the length invariant.
func New(timestamps []tstime.Nano, fields []DataSeries) (*DataFrame, error) {
	for i, f := range fields {
		if f.Values.Len() != len(timestamps) {
			return nil, fmt.Errorf("dataframe: field %d has length %d, want %d", i, f.Values.Len(), len(timestamps))
		}
	}
	return &DataFrame{Timestamps: timestamps, Fields: fields}, nil
}

// Len returns the number of rows.
func (df *DataFrame) Len() int {
	if df == nil {
		return 0
	}
	return len(df.Timestamps)
}

// ToDataPoints converts the columnar frame back into row-wise datapoints.
// It fails if any field column is Vacant: a placeholder holds no values
// to rebuild the rows from.
func (df *DataFrame) ToDataPoints() ([]schema.DataPoint, error) {
	points := make([]schema.DataPoint, df.Len())
	for row := range points {
		fields := make([]schema.FieldValue, len(df.Fields))
		for col, series := range df.Fields {
			if series.Values.IsVacant() {
				return nil, fmt.Errorf("dataframe: field %d is vacant, cannot reconstruct datapoints", col)
			}
			switch series.Values.Type() {
			case schema.FieldTypeFloat64:
				v, _ := series.Values.Float64()
				fields[col] = schema.Float64Value(v[row])
			case schema.FieldTypeBool:
				v, _ := series.Values.Bool()
				fields[col] = schema.BoolValue(v[row])
			default:
				return nil, fmt.Errorf("dataframe: field %d: unsupported type %s", col, series.Values.Type())
			}
		}
		points[row] = schema.NewDataPoint(df.Timestamps[row], fields)
	}
	return points, nil
}
