// Package types defines the logical type and value model shared by the
// schema engine and the information schema catalog.
package types

import "fmt"

// TypeCode identifies a scalar logical type.
type TypeCode int

const (
	Int64 TypeCode = iota
	Float64
	Bool
	String
	Bytes
	Timestamp
	Date
	Array
)

// String returns the canonical (GoogleSQL) name of the type code.
func (c TypeCode) String() string {
	switch c {
	case Int64:
		return "INT64"
	case Float64:
		return "FLOAT64"
	case Bool:
		return "BOOL"
	case String:
		return "STRING"
	case Bytes:
		return "BYTES"
	case Timestamp:
		return "TIMESTAMP"
	case Date:
		return "DATE"
	case Array:
		return "ARRAY"
	default:
		return fmt.Sprintf("TYPE(%d)", int(c))
	}
}

// Type is a logical column type: a scalar, or an array of a scalar.
type Type struct {
	// Code is the scalar type, or Array
	Code TypeCode `json:"code"`

	// Elem is the element type when Code is Array
	Elem *Type `json:"elem,omitempty"`
}

// Scalar returns a non-array type for the given code.
func Scalar(code TypeCode) Type {
	return Type{Code: code}
}

// ArrayOf returns an array type over the given element type.
func ArrayOf(elem Type) Type {
	e := elem
	return Type{Code: Array, Elem: &e}
}

// IsArray reports whether the type is an array type.
func (t Type) IsArray() bool {
	return t.Code == Array
}

// IsLengthed reports whether the type carries a declared maximum length
// (STRING and BYTES scalars, or arrays of them).
func (t Type) IsLengthed() bool {
	if t.IsArray() && t.Elem != nil {
		return t.Elem.IsLengthed()
	}
	return t.Code == String || t.Code == Bytes
}

// Equal reports whether two types are structurally identical.
func (t Type) Equal(o Type) bool {
	if t.Code != o.Code {
		return false
	}
	if t.Code != Array {
		return true
	}
	if t.Elem == nil || o.Elem == nil {
		return t.Elem == o.Elem
	}
	return t.Elem.Equal(*o.Elem)
}
