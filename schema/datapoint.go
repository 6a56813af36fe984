package schema

import (
	"fmt"

	"github.com/flashts-io/flashts/tstime"
)

// Metric is a named, type-stable datapoint stream.
type Metric string

// DataPoint is one timestamp plus its field tuple. Within a metric, every
// datapoint has the same field arity and per-position type.
type DataPoint struct {
	Timestamp tstime.Nano
	Fields    []FieldValue
}

// NewDataPoint constructs a DataPoint.
func NewDataPoint(ts tstime.Nano, fields []FieldValue) DataPoint {
	return DataPoint{Timestamp: ts, Fields: fields}
}

// FieldTypes returns the per-position type tuple of the datapoint.
func (d DataPoint) FieldTypes() []FieldType {
	types := make([]FieldType, len(d.Fields))
	for i, f := range d.Fields {
		types[i] = f.Type()
	}
	return types
}

// SameFieldTypes reports whether fields' dynamic types equal want,
// position for position.
func SameFieldTypes(want []FieldType, fields []FieldValue) bool {
	if len(want) != len(fields) {
		return false
	}
	for i, t := range want {
		if fields[i].Type() != t {
			return false
		}
	}
	return true
}

// DataFieldTypesMismatchedError is returned by store push operations when
// a datapoint's field types don't match the metric's declared schema.
type DataFieldTypesMismatchedError struct {
	Expected []FieldType
	Got      []FieldType
}

func (e *DataFieldTypesMismatchedError) Error() string {
	return fmt.Sprintf("schema: field types mismatched: expected %v, got %v", e.Expected, e.Got)
}

// CheckSorted reports an error if datapoints are not non-decreasing by
// timestamp.
func CheckSorted(datapoints []DataPoint) error {
	for i := 1; i < len(datapoints); i++ {
		if datapoints[i].Timestamp < datapoints[i-1].Timestamp {
			return fmt.Errorf("schema: datapoints not sorted at index %d", i)
		}
	}
	return nil
}
