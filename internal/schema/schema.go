// Package schema defines the immutable schema model: the authoritative,
// versioned definition of a database's tables, indexes, constraints, views,
// and change streams. A committed Schema is never mutated; every DDL batch
// produces a new Schema via Clone and the prior version stays valid for any
// in-flight reads that still hold a reference to it.
package schema

import (
	"github.com/vellumdb/vellum/internal/dialect"
	"github.com/vellumdb/vellum/pkg/types"
)

// OnDeleteAction is the action taken on child rows when an interleaved
// parent row is deleted.
type OnDeleteAction int

const (
	OnDeleteNoAction OnDeleteAction = iota
	OnDeleteCascade
)

// String returns the information-schema wording for the action.
func (a OnDeleteAction) String() string {
	if a == OnDeleteCascade {
		return "CASCADE"
	}
	return "NO ACTION"
}

// ExpressionKind distinguishes the two column expression attributes. A
// column carries at most one of them.
type ExpressionKind int

const (
	ExpressionDefault ExpressionKind = iota
	ExpressionGenerated
)

// ColumnExpression is a DEFAULT or GENERATED attribute on a column.
//
// For generated columns SourceText retains the surrounding parentheses as
// written in the DDL ("(expr)"); the catalog strips one layer when
// surfacing GENERATION_EXPRESSION. Default expressions store the inner
// text, surfaced verbatim as COLUMN_DEFAULT.
type ColumnExpression struct {
	Kind       ExpressionKind `json:"kind"`
	SourceText string         `json:"source_text"`

	// Stored is true for GENERATED ... STORED columns. Non-stored generated
	// expressions are rejected at validation time and never reach the model.
	Stored bool `json:"stored,omitempty"`

	// Dependencies lists the other columns of the same table the expression
	// references, in first-reference order (generated columns only).
	Dependencies []string `json:"dependencies,omitempty"`
}

// Column is a single column of a table.
type Column struct {
	Name    string     `json:"name"`
	Type    types.Type `json:"type"`
	NotNull bool       `json:"not_null,omitempty"`

	// MaxLength is the declared maximum length for STRING/BYTES columns;
	// nil means MAX.
	MaxLength *int64 `json:"max_length,omitempty"`

	// AllowsCommitTimestamp marks TIMESTAMP columns with the
	// allow_commit_timestamp option set.
	AllowsCommitTimestamp bool `json:"allows_commit_timestamp,omitempty"`

	Expression *ColumnExpression `json:"expression,omitempty"`
}

// IsGenerated reports whether the column carries a GENERATED expression.
func (c *Column) IsGenerated() bool {
	return c.Expression != nil && c.Expression.Kind == ExpressionGenerated
}

// HasDefault reports whether the column carries a DEFAULT expression.
func (c *Column) HasDefault() bool {
	return c.Expression != nil && c.Expression.Kind == ExpressionDefault
}

// KeyColumn is a reference to a column plus an ordering direction.
type KeyColumn struct {
	Column string `json:"column"`
	Desc   bool   `json:"desc,omitempty"`
}

// Ordering returns "ASC" or "DESC" for catalog rows.
func (k KeyColumn) Ordering() string {
	if k.Desc {
		return "DESC"
	}
	return "ASC"
}

// Index is a secondary index on a table. Managed indexes exist only to back
// a foreign key and were not user-declared.
type Index struct {
	Name         string      `json:"name"`
	Table        string      `json:"table"`
	Keys         []KeyColumn `json:"keys"`
	Storing      []string    `json:"storing,omitempty"`
	Unique       bool        `json:"unique,omitempty"`
	NullFiltered bool        `json:"null_filtered,omitempty"`
	Managed      bool        `json:"managed,omitempty"`
}

// ForeignKey relates ordered referencing columns to ordered referenced
// columns of another table. ReferencedIndex names the unique index backing
// the referenced side; empty means the referenced table's primary key.
type ForeignKey struct {
	Name               string   `json:"name"`
	ReferencingColumns []string `json:"referencing_columns"`
	ReferencedTable    string   `json:"referenced_table"`
	ReferencedColumns  []string `json:"referenced_columns"`
	ReferencedIndex    string   `json:"referenced_index,omitempty"`
}

// CheckConstraint records a CHECK expression. Only the source text and the
// referenced columns are kept; the semantics are not enforced.
type CheckConstraint struct {
	Name         string   `json:"name"`
	Expression   string   `json:"expression"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// Table is one table of the schema.
type Table struct {
	Name       string      `json:"name"`
	Columns    []*Column   `json:"columns"`
	PrimaryKey []KeyColumn `json:"primary_key"`

	// Parent is the interleaving parent table name; empty for root tables.
	// An interleaved table's primary key begins with the parent's full
	// primary key, in the same column order and types.
	Parent   string         `json:"parent,omitempty"`
	OnDelete OnDeleteAction `json:"on_delete,omitempty"`

	Indexes          []*Index           `json:"indexes,omitempty"`
	ForeignKeys      []*ForeignKey      `json:"foreign_keys,omitempty"`
	CheckConstraints []*CheckConstraint `json:"check_constraints,omitempty"`

	// RowDeletionPolicy is the policy expression source text; empty if none.
	RowDeletionPolicy string `json:"row_deletion_policy,omitempty"`
}

// ViewColumn is one result column of a view.
type ViewColumn struct {
	Name string     `json:"name"`
	Type types.Type `json:"type"`
}

// View is a named query with a resolved result column list.
type View struct {
	Name    string       `json:"name"`
	Columns []ViewColumn `json:"columns"`
	Body    string       `json:"body"`
}

// StreamTarget is one tracked table of a change stream: either all of its
// non-key columns or an explicit non-empty subset. Primary key columns are
// always implicitly tracked and never listed.
type StreamTarget struct {
	Table      string   `json:"table"`
	AllColumns bool     `json:"all_columns,omitempty"`
	Columns    []string `json:"columns,omitempty"`
}

// ChangeStream declares which tables and columns have their mutations
// captured. All means FOR ALL: every current and future table is tracked.
type ChangeStream struct {
	Name    string         `json:"name"`
	All     bool           `json:"all,omitempty"`
	Targets []StreamTarget `json:"targets,omitempty"`
}

// Schema is the model root: one point-in-time schema version.
type Schema struct {
	CatalogName   string          `json:"catalog_name"`
	Dialect       dialect.Dialect `json:"dialect"`
	Version       int             `json:"version"`
	Tables        []*Table        `json:"tables,omitempty"`
	Views         []*View         `json:"views,omitempty"`
	ChangeStreams []*ChangeStream `json:"change_streams,omitempty"`
}

// New returns an empty schema for a freshly created database.
func New(catalogName string, d dialect.Dialect) *Schema {
	return &Schema{CatalogName: catalogName, Dialect: d}
}
