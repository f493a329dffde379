// Package dialect maps canonical schema names and types to their
// dialect-specific presentation. All functions are pure; unknown inputs
// pass through unchanged.
package dialect

import (
	"fmt"
	"strings"

	"github.com/vellumdb/vellum/pkg/types"
)

// Dialect selects one of the two supported SQL surfaces.
type Dialect int

const (
	// GoogleSQL is the default dialect: identifiers as authored, upper-case
	// type names, unnamed default schema.
	GoogleSQL Dialect = iota

	// PostgreSQL folds identifiers to lower case and uses the "public"
	// default schema with PostgreSQL type names.
	PostgreSQL
)

// String returns the dialect's option-value name.
func (d Dialect) String() string {
	if d == PostgreSQL {
		return "POSTGRESQL"
	}
	return "GOOGLE_STANDARD_SQL"
}

// Parse converts a dialect name to a Dialect. Accepts the option-value
// names and a few common aliases, case-insensitively.
func Parse(name string) (Dialect, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "GOOGLE_STANDARD_SQL", "GOOGLESQL", "GSQL":
		return GoogleSQL, nil
	case "POSTGRESQL", "POSTGRES", "PG":
		return PostgreSQL, nil
	default:
		return GoogleSQL, fmt.Errorf("dialect: unknown dialect %q", name)
	}
}

// FoldName returns the dialect-specific casing of an identifier. The system
// catalogs are defined in upper case for GoogleSQL and lower case for
// PostgreSQL; user identifiers are folded the same way.
func (d Dialect) FoldName(name string) string {
	if d == PostgreSQL {
		return strings.ToLower(name)
	}
	return name
}

// NamesEqual reports whether two identifiers refer to the same object under
// the dialect's folding rules. Both dialects compare case-insensitively.
func (d Dialect) NamesEqual(a, b string) bool {
	return strings.EqualFold(a, b)
}

// DefaultSchemaName is the name of the unnamed default schema: empty for
// GoogleSQL, "public" for PostgreSQL.
func (d Dialect) DefaultSchemaName() string {
	if d == PostgreSQL {
		return "public"
	}
	return ""
}

// InformationSchemaName is the dialect-folded name of the metadata schema.
func (d Dialect) InformationSchemaName() string {
	return d.FoldName("INFORMATION_SCHEMA")
}

// OptionTypeString is the type label used for string-typed options in the
// DATABASE_OPTIONS and COLUMN_OPTIONS catalogs.
func (d Dialect) OptionTypeString() string {
	if d == PostgreSQL {
		return "character varying"
	}
	return "STRING"
}

// TypeString renders a column type the way the dialect displays it in the
// information schema. maxLength is the declared length for STRING/BYTES
// columns; nil means MAX.
func (d Dialect) TypeString(t types.Type, maxLength *int64) string {
	if d == PostgreSQL {
		return pgTypeString(t)
	}
	return gsqlTypeString(t, maxLength)
}

func gsqlTypeString(t types.Type, maxLength *int64) string {
	if t.IsArray() && t.Elem != nil {
		return "ARRAY<" + gsqlTypeString(*t.Elem, maxLength) + ">"
	}
	switch t.Code {
	case types.String, types.Bytes:
		if maxLength != nil {
			return fmt.Sprintf("%s(%d)", t.Code, *maxLength)
		}
		return t.Code.String() + "(MAX)"
	default:
		return t.Code.String()
	}
}

func pgTypeString(t types.Type) string {
	if t.IsArray() && t.Elem != nil {
		return pgTypeString(*t.Elem) + "[]"
	}
	switch t.Code {
	case types.Int64:
		return "bigint"
	case types.Float64:
		return "double precision"
	case types.Bool:
		return "boolean"
	case types.String:
		return "character varying"
	case types.Bytes:
		return "bytea"
	case types.Timestamp:
		return "timestamp with time zone"
	case types.Date:
		return "date"
	default:
		return strings.ToLower(t.Code.String())
	}
}

// Numeric precision constants for the PostgreSQL information schema.
const (
	BigintNumericPrecision = 64
	DoubleNumericPrecision = 53
	NumericPrecisionRadix  = 2
)

// NumericPrecision returns the PostgreSQL NUMERIC_PRECISION value for a
// column type, or NULL for non-numeric types. The precision is computed
// purely from the scalar type; this dialect mapping has no user-declared
// numeric precision.
func NumericPrecision(t types.Type) types.Value {
	switch t.Code {
	case types.Int64:
		return types.Int64Value(BigintNumericPrecision)
	case types.Float64:
		return types.Int64Value(DoubleNumericPrecision)
	default:
		return types.NullValue(types.Int64)
	}
}

// NumericPrecisionRadixValue returns the NUMERIC_PRECISION_RADIX value for
// a column type, or NULL for non-numeric types.
func NumericPrecisionRadixValue(t types.Type) types.Value {
	switch t.Code {
	case types.Int64, types.Float64:
		return types.Int64Value(NumericPrecisionRadix)
	default:
		return types.NullValue(types.Int64)
	}
}

// NumericScale returns the NUMERIC_SCALE value for a column type: 0 for
// integers, NULL otherwise.
func NumericScale(t types.Type) types.Value {
	if t.Code == types.Int64 {
		return types.Int64Value(0)
	}
	return types.NullValue(types.Int64)
}
