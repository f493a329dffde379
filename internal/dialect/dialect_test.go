package dialect

import (
	"testing"

	"github.com/vellumdb/vellum/pkg/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Dialect
		wantErr bool
	}{
		{"GOOGLE_STANDARD_SQL", GoogleSQL, false},
		{"googlesql", GoogleSQL, false},
		{"", GoogleSQL, false},
		{"POSTGRESQL", PostgreSQL, false},
		{"postgres", PostgreSQL, false},
		{"mysql", GoogleSQL, true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFoldName(t *testing.T) {
	if got := GoogleSQL.FoldName("Users"); got != "Users" {
		t.Errorf("GoogleSQL should leave identifiers as authored, got %q", got)
	}
	if got := PostgreSQL.FoldName("Users"); got != "users" {
		t.Errorf("PostgreSQL should lower-case identifiers, got %q", got)
	}
	if got := PostgreSQL.FoldName("INFORMATION_SCHEMA"); got != "information_schema" {
		t.Errorf("got %q", got)
	}
}

func TestNamesEqual(t *testing.T) {
	for _, d := range []Dialect{GoogleSQL, PostgreSQL} {
		if !d.NamesEqual("Users", "users") {
			t.Errorf("%v: identifier comparison should be case-insensitive", d)
		}
		if d.NamesEqual("Users", "Accounts") {
			t.Errorf("%v: distinct identifiers should not match", d)
		}
	}
}

func TestDefaultSchemaName(t *testing.T) {
	if GoogleSQL.DefaultSchemaName() != "" {
		t.Error("GoogleSQL default schema should be the empty string")
	}
	if PostgreSQL.DefaultSchemaName() != "public" {
		t.Error("PostgreSQL default schema should be public")
	}
}

func TestTypeString_GoogleSQL(t *testing.T) {
	n := int64(20)
	tests := []struct {
		typ  types.Type
		max  *int64
		want string
	}{
		{types.Scalar(types.Int64), nil, "INT64"},
		{types.Scalar(types.Float64), nil, "FLOAT64"},
		{types.Scalar(types.Bool), nil, "BOOL"},
		{types.Scalar(types.String), &n, "STRING(20)"},
		{types.Scalar(types.String), nil, "STRING(MAX)"},
		{types.Scalar(types.Bytes), nil, "BYTES(MAX)"},
		{types.Scalar(types.Timestamp), nil, "TIMESTAMP"},
		{types.ArrayOf(types.Scalar(types.Int64)), nil, "ARRAY<INT64>"},
		{types.ArrayOf(types.Scalar(types.String)), &n, "ARRAY<STRING(20)>"},
	}
	for _, tt := range tests {
		if got := GoogleSQL.TypeString(tt.typ, tt.max); got != tt.want {
			t.Errorf("TypeString(%v) = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestTypeString_PostgreSQL(t *testing.T) {
	tests := []struct {
		typ  types.Type
		want string
	}{
		{types.Scalar(types.Int64), "bigint"},
		{types.Scalar(types.Float64), "double precision"},
		{types.Scalar(types.Bool), "boolean"},
		{types.Scalar(types.String), "character varying"},
		{types.Scalar(types.Bytes), "bytea"},
		{types.Scalar(types.Timestamp), "timestamp with time zone"},
		{types.ArrayOf(types.Scalar(types.Int64)), "bigint[]"},
	}
	for _, tt := range tests {
		if got := PostgreSQL.TypeString(tt.typ, nil); got != tt.want {
			t.Errorf("TypeString(%v) = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestNumericPrecision(t *testing.T) {
	if v := NumericPrecision(types.Scalar(types.Int64)); v.Null || v.Int != 64 {
		t.Errorf("INT64 precision = %v, want 64", v)
	}
	if v := NumericPrecision(types.Scalar(types.Float64)); v.Null || v.Int != 53 {
		t.Errorf("FLOAT64 precision = %v, want 53", v)
	}
	if v := NumericPrecision(types.Scalar(types.String)); !v.Null {
		t.Errorf("STRING precision should be NULL, got %v", v)
	}
	if v := NumericPrecisionRadixValue(types.Scalar(types.Int64)); v.Null || v.Int != 2 {
		t.Errorf("INT64 radix = %v, want 2", v)
	}
	if v := NumericScale(types.Scalar(types.Int64)); v.Null || v.Int != 0 {
		t.Errorf("INT64 scale = %v, want 0", v)
	}
	if v := NumericScale(types.Scalar(types.Float64)); !v.Null {
		t.Errorf("FLOAT64 scale should be NULL, got %v", v)
	}
}
