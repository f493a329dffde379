package infoschema

import (
	"github.com/vellumdb/vellum/internal/dialect"
	"github.com/vellumdb/vellum/pkg/types"
)

// Catalog table names, in canonical (upper-case) form. Lookups through
// Catalog.Table fold the name per dialect.
const (
	TablesTable                 = "TABLES"
	ColumnsTable                = "COLUMNS"
	ColumnColumnUsageTable      = "COLUMN_COLUMN_USAGE"
	SchemataTable               = "SCHEMATA"
	SpannerStatisticsTable      = "SPANNER_STATISTICS"
	DatabaseOptionsTable        = "DATABASE_OPTIONS"
	ViewsTable                  = "VIEWS"
	IndexesTable                = "INDEXES"
	IndexColumnsTable           = "INDEX_COLUMNS"
	ColumnOptionsTable          = "COLUMN_OPTIONS"
	TableConstraintsTable       = "TABLE_CONSTRAINTS"
	CheckConstraintsTable       = "CHECK_CONSTRAINTS"
	ConstraintTableUsageTable   = "CONSTRAINT_TABLE_USAGE"
	ReferentialConstraintsTable = "REFERENTIAL_CONSTRAINTS"
	KeyColumnUsageTable         = "KEY_COLUMN_USAGE"
	ConstraintColumnUsageTable  = "CONSTRAINT_COLUMN_USAGE"
)

// columnMeta describes one column of a catalog table, fixed at build time.
// This bootstrap layer cannot be derived from the catalog itself: the rows
// describing the catalog's own tables are generated from it.
type columnMeta struct {
	name     string // canonical upper-case
	kind     types.TypeCode
	nullable bool

	// pkOrdinal is the 1-based position in the table's primary key, 0 if
	// the column is not part of it.
	pkOrdinal int

	// pgOnly columns exist only in the PostgreSQL rendering of the table.
	pgOnly bool
}

// tableMeta is the build-time shape of one catalog table.
type tableMeta struct {
	name    string
	columns []columnMeta
}

// effectiveColumns returns the table's columns under the given dialect.
func (m *tableMeta) effectiveColumns(d dialect.Dialect) []columnMeta {
	if d == dialect.PostgreSQL {
		return m.columns
	}
	cols := make([]columnMeta, 0, len(m.columns))
	for _, c := range m.columns {
		if !c.pgOnly {
			cols = append(cols, c)
		}
	}
	return cols
}

func (m *tableMeta) findColumn(name string) *columnMeta {
	for i := range m.columns {
		if m.columns[i].name == name {
			return &m.columns[i]
		}
	}
	return nil
}

// catalogTables lists every catalog table in emission order. The order is
// fixed so resynthesizing from the same schema is byte-identical.
var catalogTables = []*tableMeta{
	{
		name: SchemataTable,
		columns: []columnMeta{
			{name: "CATALOG_NAME", kind: types.String, pkOrdinal: 1},
			{name: "SCHEMA_NAME", kind: types.String, pkOrdinal: 2},
		},
	},
	{
		name: DatabaseOptionsTable,
		columns: []columnMeta{
			{name: "CATALOG_NAME", kind: types.String, pkOrdinal: 1},
			{name: "SCHEMA_NAME", kind: types.String, pkOrdinal: 2},
			{name: "OPTION_NAME", kind: types.String, pkOrdinal: 3},
			{name: "OPTION_TYPE", kind: types.String},
			{name: "OPTION_VALUE", kind: types.String},
		},
	},
	{
		name: SpannerStatisticsTable,
		columns: []columnMeta{
			{name: "CATALOG_NAME", kind: types.String, pkOrdinal: 1},
			{name: "SCHEMA_NAME", kind: types.String, pkOrdinal: 2},
			{name: "PACKAGE_NAME", kind: types.String, pkOrdinal: 3},
			{name: "ALLOW_GC", kind: types.Bool},
		},
	},
	{
		name: TablesTable,
		columns: []columnMeta{
			{name: "TABLE_CATALOG", kind: types.String, pkOrdinal: 1},
			{name: "TABLE_SCHEMA", kind: types.String, pkOrdinal: 2},
			{name: "TABLE_NAME", kind: types.String, pkOrdinal: 3},
			{name: "TABLE_TYPE", kind: types.String},
			{name: "PARENT_TABLE_NAME", kind: types.String, nullable: true},
			{name: "ON_DELETE_ACTION", kind: types.String, nullable: true},
			{name: "SPANNER_STATE", kind: types.String, nullable: true},
			{name: "INTERLEAVE_TYPE", kind: types.String, nullable: true},
			{name: "ROW_DELETION_POLICY_EXPRESSION", kind: types.String, nullable: true},
		},
	},
	{
		name: ColumnsTable,
		columns: []columnMeta{
			{name: "TABLE_CATALOG", kind: types.String, pkOrdinal: 1},
			{name: "TABLE_SCHEMA", kind: types.String, pkOrdinal: 2},
			{name: "TABLE_NAME", kind: types.String, pkOrdinal: 3},
			{name: "COLUMN_NAME", kind: types.String, pkOrdinal: 4},
			{name: "ORDINAL_POSITION", kind: types.Int64},
			{name: "COLUMN_DEFAULT", kind: types.String, nullable: true},
			{name: "DATA_TYPE", kind: types.String, nullable: true},
			{name: "IS_NULLABLE", kind: types.String},
			{name: "SPANNER_TYPE", kind: types.String, nullable: true},
			{name: "IS_GENERATED", kind: types.String},
			{name: "GENERATION_EXPRESSION", kind: types.String, nullable: true},
			{name: "IS_STORED", kind: types.String, nullable: true},
			{name: "SPANNER_STATE", kind: types.String, nullable: true},
			{name: "CHARACTER_MAXIMUM_LENGTH", kind: types.Int64, nullable: true, pgOnly: true},
			{name: "NUMERIC_PRECISION", kind: types.Int64, nullable: true, pgOnly: true},
			{name: "NUMERIC_PRECISION_RADIX", kind: types.Int64, nullable: true, pgOnly: true},
			{name: "NUMERIC_SCALE", kind: types.Int64, nullable: true, pgOnly: true},
		},
	},
	{
		name: ColumnColumnUsageTable,
		columns: []columnMeta{
			{name: "TABLE_CATALOG", kind: types.String, pkOrdinal: 1},
			{name: "TABLE_SCHEMA", kind: types.String, pkOrdinal: 2},
			{name: "TABLE_NAME", kind: types.String, pkOrdinal: 3},
			{name: "COLUMN_NAME", kind: types.String, pkOrdinal: 4},
			{name: "DEPENDENT_COLUMN", kind: types.String, pkOrdinal: 5},
		},
	},
	{
		name: IndexesTable,
		columns: []columnMeta{
			{name: "TABLE_CATALOG", kind: types.String, pkOrdinal: 1},
			{name: "TABLE_SCHEMA", kind: types.String, pkOrdinal: 2},
			{name: "TABLE_NAME", kind: types.String, pkOrdinal: 3},
			{name: "INDEX_NAME", kind: types.String, pkOrdinal: 4},
			{name: "INDEX_TYPE", kind: types.String},
			{name: "PARENT_TABLE_NAME", kind: types.String},
			{name: "IS_UNIQUE", kind: types.Bool},
			{name: "IS_NULL_FILTERED", kind: types.Bool},
			{name: "INDEX_STATE", kind: types.String, nullable: true},
			{name: "SPANNER_IS_MANAGED", kind: types.Bool},
		},
	},
	{
		name: IndexColumnsTable,
		columns: []columnMeta{
			{name: "TABLE_CATALOG", kind: types.String, pkOrdinal: 1},
			{name: "TABLE_SCHEMA", kind: types.String, pkOrdinal: 2},
			{name: "TABLE_NAME", kind: types.String, pkOrdinal: 3},
			{name: "INDEX_NAME", kind: types.String, pkOrdinal: 4},
			{name: "INDEX_TYPE", kind: types.String},
			{name: "COLUMN_NAME", kind: types.String, pkOrdinal: 5},
			{name: "ORDINAL_POSITION", kind: types.Int64, nullable: true},
			{name: "COLUMN_ORDERING", kind: types.String, nullable: true},
			{name: "IS_NULLABLE", kind: types.String, nullable: true},
			{name: "SPANNER_TYPE", kind: types.String, nullable: true},
		},
	},
	{
		name: ColumnOptionsTable,
		columns: []columnMeta{
			{name: "TABLE_CATALOG", kind: types.String, pkOrdinal: 1},
			{name: "TABLE_SCHEMA", kind: types.String, pkOrdinal: 2},
			{name: "TABLE_NAME", kind: types.String, pkOrdinal: 3},
			{name: "COLUMN_NAME", kind: types.String, pkOrdinal: 4},
			{name: "OPTION_NAME", kind: types.String, pkOrdinal: 5},
			{name: "OPTION_TYPE", kind: types.String},
			{name: "OPTION_VALUE", kind: types.String},
		},
	},
	{
		name: TableConstraintsTable,
		columns: []columnMeta{
			{name: "CONSTRAINT_CATALOG", kind: types.String, pkOrdinal: 1},
			{name: "CONSTRAINT_SCHEMA", kind: types.String, pkOrdinal: 2},
			{name: "CONSTRAINT_NAME", kind: types.String, pkOrdinal: 3},
			{name: "TABLE_CATALOG", kind: types.String},
			{name: "TABLE_SCHEMA", kind: types.String},
			{name: "TABLE_NAME", kind: types.String},
			{name: "CONSTRAINT_TYPE", kind: types.String},
			{name: "IS_DEFERRABLE", kind: types.String},
			{name: "INITIALLY_DEFERRED", kind: types.String},
			{name: "ENFORCED", kind: types.String},
		},
	},
	{
		name: CheckConstraintsTable,
		columns: []columnMeta{
			{name: "CONSTRAINT_CATALOG", kind: types.String, pkOrdinal: 1},
			{name: "CONSTRAINT_SCHEMA", kind: types.String, pkOrdinal: 2},
			{name: "CONSTRAINT_NAME", kind: types.String, pkOrdinal: 3},
			{name: "CHECK_CLAUSE", kind: types.String},
			{name: "SPANNER_STATE", kind: types.String},
		},
	},
	{
		name: ConstraintTableUsageTable,
		columns: []columnMeta{
			{name: "TABLE_CATALOG", kind: types.String, pkOrdinal: 1},
			{name: "TABLE_SCHEMA", kind: types.String, pkOrdinal: 2},
			{name: "TABLE_NAME", kind: types.String, pkOrdinal: 3},
			{name: "CONSTRAINT_CATALOG", kind: types.String, pkOrdinal: 4},
			{name: "CONSTRAINT_SCHEMA", kind: types.String, pkOrdinal: 5},
			{name: "CONSTRAINT_NAME", kind: types.String, pkOrdinal: 6},
		},
	},
	{
		name: ReferentialConstraintsTable,
		columns: []columnMeta{
			{name: "CONSTRAINT_CATALOG", kind: types.String, pkOrdinal: 1},
			{name: "CONSTRAINT_SCHEMA", kind: types.String, pkOrdinal: 2},
			{name: "CONSTRAINT_NAME", kind: types.String, pkOrdinal: 3},
			{name: "UNIQUE_CONSTRAINT_CATALOG", kind: types.String},
			{name: "UNIQUE_CONSTRAINT_SCHEMA", kind: types.String},
			{name: "UNIQUE_CONSTRAINT_NAME", kind: types.String},
			{name: "MATCH_OPTION", kind: types.String},
			{name: "UPDATE_RULE", kind: types.String},
			{name: "DELETE_RULE", kind: types.String},
			{name: "SPANNER_STATE", kind: types.String},
		},
	},
	{
		name: KeyColumnUsageTable,
		columns: []columnMeta{
			{name: "CONSTRAINT_CATALOG", kind: types.String, pkOrdinal: 1},
			{name: "CONSTRAINT_SCHEMA", kind: types.String, pkOrdinal: 2},
			{name: "CONSTRAINT_NAME", kind: types.String, pkOrdinal: 3},
			{name: "TABLE_CATALOG", kind: types.String},
			{name: "TABLE_SCHEMA", kind: types.String},
			{name: "TABLE_NAME", kind: types.String},
			{name: "COLUMN_NAME", kind: types.String, pkOrdinal: 4},
			{name: "ORDINAL_POSITION", kind: types.Int64},
			{name: "POSITION_IN_UNIQUE_CONSTRAINT", kind: types.Int64, nullable: true},
		},
	},
	{
		name: ConstraintColumnUsageTable,
		columns: []columnMeta{
			{name: "TABLE_CATALOG", kind: types.String, pkOrdinal: 1},
			{name: "TABLE_SCHEMA", kind: types.String, pkOrdinal: 2},
			{name: "TABLE_NAME", kind: types.String, pkOrdinal: 3},
			{name: "COLUMN_NAME", kind: types.String, pkOrdinal: 4},
			{name: "CONSTRAINT_CATALOG", kind: types.String, pkOrdinal: 5},
			{name: "CONSTRAINT_SCHEMA", kind: types.String, pkOrdinal: 6},
			{name: "CONSTRAINT_NAME", kind: types.String, pkOrdinal: 7},
		},
	},
	{
		name: ViewsTable,
		columns: []columnMeta{
			{name: "TABLE_CATALOG", kind: types.String, pkOrdinal: 1},
			{name: "TABLE_SCHEMA", kind: types.String, pkOrdinal: 2},
			{name: "TABLE_NAME", kind: types.String, pkOrdinal: 3},
			{name: "VIEW_DEFINITION", kind: types.String},
		},
	},
}
