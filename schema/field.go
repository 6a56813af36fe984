// Package schema defines the typed data model shared by every layer of the
// storage engine: field types and values, datapoints, and metric names.
package schema

import (
	"fmt"

	"github.com/flashts-io/flashts/tstime"
)

// FieldType is the closed set of value kinds a datapoint field may hold.
// The numeric values match the on-disk tag registry used by the block
// file format.
type FieldType uint8

const (
	FieldTypeFloat64       FieldType = 2
	FieldTypeBool          FieldType = 3
	FieldTypeUInt64        FieldType = 4
	FieldTypeTimestampNano FieldType = 5
	FieldTypeString        FieldType = 6
)

func (t FieldType) String() string {
	switch t {
	case FieldTypeFloat64:
		return "Float64"
	case FieldTypeBool:
		return "Bool"
	case FieldTypeUInt64:
		return "UInt64"
	case FieldTypeTimestampNano:
		return "TimestampNano"
	case FieldTypeString:
		return "String"
	default:
		return fmt.Sprintf("FieldType(%d)", uint8(t))
	}
}

// ErrUnsupportedFieldType is returned when a tag byte doesn't match the
// registry, or when a type is encountered where the block codecs don't
// support it (only Float64 and Bool are written to block files).
var ErrUnsupportedFieldType = fmt.Errorf("schema: unsupported field type")

// FieldValue is a tagged union matching FieldType. The zero value is not
// meaningful; use one of the constructor functions.
type FieldValue struct {
	typ  FieldType
	f64  float64
	b    bool
	u64  uint64
	nano tstime.Nano
	str  string
}

func Float64Value(v float64) FieldValue       { return FieldValue{typ: FieldTypeFloat64, f64: v} }
func BoolValue(v bool) FieldValue             { return FieldValue{typ: FieldTypeBool, b: v} }
func UInt64Value(v uint64) FieldValue         { return FieldValue{typ: FieldTypeUInt64, u64: v} }
func TimestampNanoValue(v tstime.Nano) FieldValue {
	return FieldValue{typ: FieldTypeTimestampNano, nano: v}
}
func StringValue(v string) FieldValue { return FieldValue{typ: FieldTypeString, str: v} }

// Type reports the dynamic type of the value.
func (v FieldValue) Type() FieldType { return v.typ }

func (v FieldValue) Float64() (float64, bool) {
	return v.f64, v.typ == FieldTypeFloat64
}

func (v FieldValue) Bool() (bool, bool) {
	return v.b, v.typ == FieldTypeBool
}

func (v FieldValue) UInt64() (uint64, bool) {
	return v.u64, v.typ == FieldTypeUInt64
}

func (v FieldValue) TimestampNano() (tstime.Nano, bool) {
	return v.nano, v.typ == FieldTypeTimestampNano
}

func (v FieldValue) String() string {
	switch v.typ {
	case FieldTypeFloat64:
		return fmt.Sprintf("%v", v.f64)
	case FieldTypeBool:
		return fmt.Sprintf("%v", v.b)
	case FieldTypeUInt64:
		return fmt.Sprintf("%v", v.u64)
	case FieldTypeTimestampNano:
		return fmt.Sprintf("%v", uint64(v.nano))
	case FieldTypeString:
		return v.str
	default:
		return ""
	}
}

// TypeTagToFieldType maps an on-disk tag byte to a FieldType, per the
// registry in spec.md §6.
func TypeTagToFieldType(tag uint8) (FieldType, error) {
	switch FieldType(tag) {
	case FieldTypeFloat64, FieldTypeBool, FieldTypeUInt64, FieldTypeTimestampNano, FieldTypeString:
		return FieldType(tag), nil
	default:
		return 0, fmt.Errorf("schema: tag %d: %w", tag, ErrUnsupportedFieldType)
	}
}

// FieldTypeToTag is the inverse of TypeTagToFieldType.
func FieldTypeToTag(t FieldType) uint8 {
	return uint8(t)
}
