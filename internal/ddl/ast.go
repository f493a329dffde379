package ddl

import (
	"github.com/vellumdb/vellum/pkg/types"
)

// Statement is a parsed DDL statement. The concrete types form a closed
// sum; the updater dispatches over them with a type switch, one validator
// per variant.
type Statement interface {
	stmtNode()
}

// OnDelete is the requested action for interleaved child rows.
type OnDelete int

const (
	OnDeleteNoAction OnDelete = iota
	OnDeleteCascade
)

// TypeSpec is a declared column type plus its optional length.
type TypeSpec struct {
	Type types.Type

	// MaxLength is the declared length for STRING/BYTES; nil means MAX.
	MaxLength *int64
}

// ColumnDef is one column declaration of a CREATE TABLE or ADD COLUMN.
type ColumnDef struct {
	Name    string
	Type    TypeSpec
	NotNull bool

	// GeneratedExpr is the AS expression with its surrounding parentheses
	// retained, empty if the column is not generated.
	GeneratedExpr string

	// GeneratedStored is true when STORED followed the AS clause. A
	// generated column without STORED parses but fails validation.
	GeneratedStored bool

	// DefaultExpr is the DEFAULT expression's inner text, empty if none.
	DefaultExpr string
	HasDefault  bool

	AllowCommitTimestamp bool
}

// KeyPart is one column of a primary key or index key.
type KeyPart struct {
	Column string
	Desc   bool
}

// ForeignKeyDef is a FOREIGN KEY ... REFERENCES clause.
type ForeignKeyDef struct {
	Columns           []string
	ReferencedTable   string
	ReferencedColumns []string
}

// CheckDef is a CHECK(expr) clause; Expr is the inner source text.
type CheckDef struct {
	Expr string
}

// TableConstraint is a named or anonymous table-level constraint; exactly
// one of ForeignKey and Check is set.
type TableConstraint struct {
	Name       string
	ForeignKey *ForeignKeyDef
	Check      *CheckDef
}

// Interleave is an INTERLEAVE IN PARENT clause.
type Interleave struct {
	Parent   string
	OnDelete OnDelete
}

// CreateTable is a CREATE TABLE statement.
type CreateTable struct {
	Name              string
	Columns           []ColumnDef
	Constraints       []TableConstraint
	PrimaryKey        []KeyPart
	Interleave        *Interleave
	RowDeletionPolicy string
}

func (*CreateTable) stmtNode() {}

// AlterTableAddColumn is ALTER TABLE ... ADD COLUMN.
type AlterTableAddColumn struct {
	Table  string
	Column ColumnDef
}

func (*AlterTableAddColumn) stmtNode() {}

// AlterTableDropColumn is ALTER TABLE ... DROP COLUMN.
type AlterTableDropColumn struct {
	Table  string
	Column string
}

func (*AlterTableDropColumn) stmtNode() {}

// AlterTableAddConstraint is ALTER TABLE ... ADD [CONSTRAINT name] ...
type AlterTableAddConstraint struct {
	Table      string
	Constraint TableConstraint
}

func (*AlterTableAddConstraint) stmtNode() {}

// DropTable is a DROP TABLE statement.
type DropTable struct {
	Name string
}

func (*DropTable) stmtNode() {}

// CreateIndex is a CREATE [UNIQUE] [NULL_FILTERED] INDEX statement.
type CreateIndex struct {
	Name         string
	Table        string
	Keys         []KeyPart
	Storing      []string
	Unique       bool
	NullFiltered bool
}

func (*CreateIndex) stmtNode() {}

// DropIndex is a DROP INDEX statement.
type DropIndex struct {
	Name string
}

func (*DropIndex) stmtNode() {}

// CreateView is a CREATE [OR REPLACE] VIEW ... SQL SECURITY INVOKER AS
// statement; Body is the raw query text after AS.
type CreateView struct {
	Name      string
	OrReplace bool
	Body      string
}

func (*CreateView) stmtNode() {}

// DropView is a DROP VIEW statement.
type DropView struct {
	Name string
}

func (*DropView) stmtNode() {}

// StreamTarget is one entry of a change stream FOR clause. HasColumns
// distinguishes "table(col,...)" from a bare "table".
type StreamTarget struct {
	Table      string
	Columns    []string
	HasColumns bool
}

// ForClause is the FOR clause of a change stream statement.
type ForClause struct {
	All     bool
	Targets []StreamTarget
}

// CreateChangeStream is a CREATE CHANGE STREAM ... FOR ... statement.
type CreateChangeStream struct {
	Name string
	For  ForClause
}

func (*CreateChangeStream) stmtNode() {}

// AlterChangeStream is an ALTER CHANGE STREAM ... SET FOR ... statement.
type AlterChangeStream struct {
	Name string
	For  ForClause
}

func (*AlterChangeStream) stmtNode() {}

// DropChangeStream is a DROP CHANGE STREAM statement.
type DropChangeStream struct {
	Name string
}

func (*DropChangeStream) stmtNode() {}
