package types

import (
	"fmt"
	"time"
)

// Value is a typed cell value in an information schema row. The zero value
// is an untyped NULL; use the constructors to build typed values.
type Value struct {
	Kind TypeCode
	Null bool

	Str  string
	Int  int64
	B    bool
	Time time.Time
}

// Row is an ordered sequence of values matching a catalog table's columns.
type Row []Value

// StringValue returns a non-null STRING value.
func StringValue(s string) Value {
	return Value{Kind: String, Str: s}
}

// Int64Value returns a non-null INT64 value.
func Int64Value(i int64) Value {
	return Value{Kind: Int64, Int: i}
}

// BoolValue returns a non-null BOOL value.
func BoolValue(b bool) Value {
	return Value{Kind: Bool, B: b}
}

// TimestampValue returns a non-null TIMESTAMP value.
func TimestampValue(t time.Time) Value {
	return Value{Kind: Timestamp, Time: t.UTC()}
}

// NullValue returns a NULL of the given kind.
func NullValue(kind TypeCode) Value {
	return Value{Kind: kind, Null: true}
}

// DefaultValue returns the zero value for a type kind: empty string, 0,
// false, or the Unix epoch. Panics on kinds with no registered default;
// catalog columns are restricted to these four kinds.
func DefaultValue(kind TypeCode) Value {
	switch kind {
	case String:
		return StringValue("")
	case Int64:
		return Int64Value(0)
	case Bool:
		return BoolValue(false)
	case Timestamp:
		return TimestampValue(time.Unix(0, 0))
	default:
		panic(fmt.Sprintf("types: no default value registered for kind %s", kind))
	}
}

// String renders the value for display and test comparison. NULLs render as
// "NULL" regardless of kind.
func (v Value) String() string {
	if v.Null {
		return "NULL"
	}
	switch v.Kind {
	case String:
		return v.Str
	case Int64:
		return fmt.Sprintf("%d", v.Int)
	case Bool:
		if v.B {
			return "true"
		}
		return "false"
	case Timestamp:
		return v.Time.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("value(kind=%s)", v.Kind)
	}
}

// Equal reports deep equality of two values.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind || v.Null != o.Null {
		return false
	}
	if v.Null {
		return true
	}
	switch v.Kind {
	case String:
		return v.Str == o.Str
	case Int64:
		return v.Int == o.Int
	case Bool:
		return v.B == o.B
	case Timestamp:
		return v.Time.Equal(o.Time)
	default:
		return false
	}
}
