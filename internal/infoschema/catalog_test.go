package infoschema

import (
	"testing"

	"github.com/vellumdb/vellum/internal/dialect"
	"github.com/vellumdb/vellum/internal/schema"
	"github.com/vellumdb/vellum/pkg/types"
)

// storeSchema builds a fixed two-table schema exercising every feature the
// catalog surfaces: interleaving, a generated column, a column default, a
// commit timestamp column, a unique index with storing, a check constraint,
// a foreign key with a backing index, and a view.
func storeSchema(d dialect.Dialect) *schema.Schema {
	n := int64(64)
	return &schema.Schema{
		CatalogName: "orders-db",
		Dialect:     d,
		Version:     1,
		Tables: []*schema.Table{
			{
				Name: "Users",
				Columns: []*schema.Column{
					{Name: "UserId", Type: types.Scalar(types.Int64), NotNull: true},
					{Name: "Name", Type: types.Scalar(types.String), NotNull: true, MaxLength: &n},
					{Name: "Tag", Type: types.Scalar(types.String)},
					{Name: "NameLen", Type: types.Scalar(types.Int64), Expression: &schema.ColumnExpression{
						Kind:         schema.ExpressionGenerated,
						SourceText:   "(LENGTH(Name))",
						Stored:       true,
						Dependencies: []string{"Name"},
					}},
					{Name: "Score", Type: types.Scalar(types.Float64), Expression: &schema.ColumnExpression{
						Kind:       schema.ExpressionDefault,
						SourceText: "0.5",
					}},
					{Name: "UpdatedAt", Type: types.Scalar(types.Timestamp), AllowsCommitTimestamp: true},
				},
				PrimaryKey: []schema.KeyColumn{{Column: "UserId"}},
				Indexes: []*schema.Index{
					{
						Name:    "UsersByName",
						Table:   "Users",
						Keys:    []schema.KeyColumn{{Column: "Name", Desc: true}},
						Storing: []string{"Tag"},
						Unique:  true,
					},
				},
				CheckConstraints: []*schema.CheckConstraint{
					{Name: "CK_Positive", Expression: "UserId > 0", Dependencies: []string{"UserId"}},
				},
			},
			{
				Name: "Orders",
				Columns: []*schema.Column{
					{Name: "UserId", Type: types.Scalar(types.Int64), NotNull: true},
					{Name: "OrderId", Type: types.Scalar(types.Int64), NotNull: true},
				},
				PrimaryKey: []schema.KeyColumn{{Column: "UserId"}, {Column: "OrderId"}},
				Parent:     "Users",
				OnDelete:   schema.OnDeleteCascade,
				ForeignKeys: []*schema.ForeignKey{
					{
						Name:               "FK_OrderUser",
						ReferencingColumns: []string{"UserId"},
						ReferencedTable:    "Users",
						ReferencedColumns:  []string{"UserId"},
					},
				},
			},
		},
		Views: []*schema.View{
			{
				Name:    "UserNames",
				Columns: []schema.ViewColumn{{Name: "Name", Type: types.Scalar(types.String)}},
				Body:    "SELECT Name FROM Users",
			},
		},
	}
}

// findRows returns every row of the table whose named cells render to the
// given strings. Values are compared via Value.String, so NULL matches the
// literal "NULL".
func findRows(t *Table, want map[string]string) []types.Row {
	var out []types.Row
	for _, row := range t.Rows {
		ok := true
		for col, v := range want {
			if t.Value(row, col).String() != v {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, row)
		}
	}
	return out
}

func requireOneRow(t *testing.T, table *Table, want map[string]string) types.Row {
	t.Helper()
	rows := findRows(table, want)
	if len(rows) != 1 {
		t.Fatalf("%s: want exactly one row matching %v, got %d", table.Name, want, len(rows))
	}
	return rows[0]
}

func cell(t *testing.T, table *Table, row types.Row, col string) string {
	t.Helper()
	return table.Value(row, col).String()
}

func TestSynthesizeTables(t *testing.T) {
	c := Synthesize(storeSchema(dialect.GoogleSQL), Options{})

	tab := c.Table(TablesTable)
	if tab == nil {
		t.Fatal("no TABLES table")
	}

	// Two user tables, one view, and every catalog table described as a view.
	want := 2 + 1 + len(catalogTables)
	if len(tab.Rows) != want {
		t.Fatalf("TABLES has %d rows, want %d", len(tab.Rows), want)
	}

	users := requireOneRow(t, tab, map[string]string{"TABLE_NAME": "Users"})
	if got := cell(t, tab, users, "TABLE_TYPE"); got != "BASE TABLE" {
		t.Errorf("Users TABLE_TYPE = %q", got)
	}
	if got := cell(t, tab, users, "PARENT_TABLE_NAME"); got != "NULL" {
		t.Errorf("Users PARENT_TABLE_NAME = %q, want NULL", got)
	}

	orders := requireOneRow(t, tab, map[string]string{"TABLE_NAME": "Orders"})
	if got := cell(t, tab, orders, "PARENT_TABLE_NAME"); got != "Users" {
		t.Errorf("Orders PARENT_TABLE_NAME = %q", got)
	}
	if got := cell(t, tab, orders, "ON_DELETE_ACTION"); got != "CASCADE" {
		t.Errorf("Orders ON_DELETE_ACTION = %q", got)
	}
	if got := cell(t, tab, orders, "INTERLEAVE_TYPE"); got != "IN PARENT" {
		t.Errorf("Orders INTERLEAVE_TYPE = %q", got)
	}

	view := requireOneRow(t, tab, map[string]string{"TABLE_NAME": "UserNames"})
	if got := cell(t, tab, view, "TABLE_TYPE"); got != "VIEW" {
		t.Errorf("UserNames TABLE_TYPE = %q", got)
	}

	meta := requireOneRow(t, tab, map[string]string{"TABLE_NAME": "COLUMNS"})
	if got := cell(t, tab, meta, "TABLE_SCHEMA"); got != "INFORMATION_SCHEMA" {
		t.Errorf("COLUMNS TABLE_SCHEMA = %q", got)
	}
	if got := cell(t, tab, meta, "SPANNER_STATE"); got != "NULL" {
		t.Errorf("COLUMNS SPANNER_STATE = %q, want NULL", got)
	}
}

func TestSynthesizeColumnsGoogleSQL(t *testing.T) {
	c := Synthesize(storeSchema(dialect.GoogleSQL), Options{})
	cols := c.Table(ColumnsTable)

	name := requireOneRow(t, cols, map[string]string{"TABLE_NAME": "Users", "COLUMN_NAME": "Name"})
	if got := cell(t, cols, name, "SPANNER_TYPE"); got != "STRING(64)" {
		t.Errorf("Name SPANNER_TYPE = %q", got)
	}
	if got := cell(t, cols, name, "IS_NULLABLE"); got != "NO" {
		t.Errorf("Name IS_NULLABLE = %q", got)
	}
	if got := cell(t, cols, name, "ORDINAL_POSITION"); got != "2" {
		t.Errorf("Name ORDINAL_POSITION = %q", got)
	}

	tag := requireOneRow(t, cols, map[string]string{"TABLE_NAME": "Users", "COLUMN_NAME": "Tag"})
	if got := cell(t, cols, tag, "SPANNER_TYPE"); got != "STRING(MAX)" {
		t.Errorf("Tag SPANNER_TYPE = %q", got)
	}

	gen := requireOneRow(t, cols, map[string]string{"TABLE_NAME": "Users", "COLUMN_NAME": "NameLen"})
	if got := cell(t, cols, gen, "IS_GENERATED"); got != "ALWAYS" {
		t.Errorf("NameLen IS_GENERATED = %q", got)
	}
	if got := cell(t, cols, gen, "IS_STORED"); got != "YES" {
		t.Errorf("NameLen IS_STORED = %q", got)
	}
	// One layer of parentheses is stripped from the stored source text.
	if got := cell(t, cols, gen, "GENERATION_EXPRESSION"); got != "LENGTH(Name)" {
		t.Errorf("NameLen GENERATION_EXPRESSION = %q", got)
	}

	def := requireOneRow(t, cols, map[string]string{"TABLE_NAME": "Users", "COLUMN_NAME": "Score"})
	if got := cell(t, cols, def, "COLUMN_DEFAULT"); got != "0.5" {
		t.Errorf("Score COLUMN_DEFAULT = %q", got)
	}
	if got := cell(t, cols, def, "IS_GENERATED"); got != "NEVER" {
		t.Errorf("Score IS_GENERATED = %q", got)
	}

	viewCol := requireOneRow(t, cols, map[string]string{"TABLE_NAME": "UserNames", "COLUMN_NAME": "Name"})
	if got := cell(t, cols, viewCol, "IS_NULLABLE"); got != "YES" {
		t.Errorf("view column IS_NULLABLE = %q", got)
	}
}

func TestSynthesizeColumnsPostgreSQL(t *testing.T) {
	c := Synthesize(storeSchema(dialect.PostgreSQL), Options{})
	cols := c.Table(ColumnsTable)

	// User object names are stored pre-folded by DDL processing; the
	// synthesizer carries them verbatim. User objects live in "public".
	name := requireOneRow(t, cols, map[string]string{"TABLE_NAME": "Users", "COLUMN_NAME": "Name"})
	if got := cell(t, cols, name, "TABLE_SCHEMA"); got != "public" {
		t.Errorf("TABLE_SCHEMA = %q", got)
	}
	if got := cell(t, cols, name, "CHARACTER_MAXIMUM_LENGTH"); got != "64" {
		t.Errorf("Name CHARACTER_MAXIMUM_LENGTH = %q", got)
	}
	if got := cell(t, cols, name, "SPANNER_TYPE"); got != "NULL" {
		t.Errorf("Name SPANNER_TYPE = %q, want NULL", got)
	}

	id := requireOneRow(t, cols, map[string]string{"TABLE_NAME": "Users", "COLUMN_NAME": "UserId"})
	if got := cell(t, cols, id, "NUMERIC_PRECISION"); got != "64" {
		t.Errorf("UserId NUMERIC_PRECISION = %q", got)
	}
	if got := cell(t, cols, id, "NUMERIC_PRECISION_RADIX"); got != "2" {
		t.Errorf("UserId NUMERIC_PRECISION_RADIX = %q", got)
	}
	if got := cell(t, cols, id, "NUMERIC_SCALE"); got != "0" {
		t.Errorf("UserId NUMERIC_SCALE = %q", got)
	}

	score := requireOneRow(t, cols, map[string]string{"TABLE_NAME": "Users", "COLUMN_NAME": "Score"})
	if got := cell(t, cols, score, "NUMERIC_PRECISION"); got != "53" {
		t.Errorf("Score NUMERIC_PRECISION = %q", got)
	}
	if got := cell(t, cols, score, "NUMERIC_SCALE"); got != "NULL" {
		t.Errorf("Score NUMERIC_SCALE = %q, want NULL", got)
	}

	ts := requireOneRow(t, cols, map[string]string{"TABLE_NAME": "Users", "COLUMN_NAME": "UpdatedAt"})
	if got := cell(t, cols, ts, "SPANNER_TYPE"); got != "spanner.commit_timestamp" {
		t.Errorf("UpdatedAt SPANNER_TYPE = %q", got)
	}
	if got := cell(t, cols, ts, "DATA_TYPE"); got != "spanner.commit_timestamp" {
		t.Errorf("UpdatedAt DATA_TYPE = %q", got)
	}

	// Catalog object names fold to lower case.
	tab := c.Table(TablesTable)
	if tab.Name != "tables" {
		t.Errorf("TABLES table name folds to %q", tab.Name)
	}
	if rows := findRows(tab, map[string]string{"TABLE_SCHEMA": "information_schema", "TABLE_NAME": "columns"}); len(rows) != 1 {
		t.Errorf("want one folded information_schema.columns row, got %d", len(rows))
	}
}

func TestSynthesizeIndexes(t *testing.T) {
	c := Synthesize(storeSchema(dialect.GoogleSQL), Options{})

	idx := c.Table(IndexesTable)
	byName := requireOneRow(t, idx, map[string]string{"INDEX_NAME": "UsersByName"})
	if got := cell(t, idx, byName, "IS_UNIQUE"); got != "true" {
		t.Errorf("UsersByName IS_UNIQUE = %q", got)
	}
	if got := cell(t, idx, byName, "INDEX_STATE"); got != "READ_WRITE" {
		t.Errorf("UsersByName INDEX_STATE = %q", got)
	}
	pk := requireOneRow(t, idx, map[string]string{"TABLE_NAME": "Users", "INDEX_NAME": "PRIMARY_KEY"})
	if got := cell(t, idx, pk, "INDEX_TYPE"); got != "PRIMARY_KEY" {
		t.Errorf("pseudo index INDEX_TYPE = %q", got)
	}
	if got := cell(t, idx, pk, "INDEX_STATE"); got != "NULL" {
		t.Errorf("pseudo index INDEX_STATE = %q, want NULL", got)
	}

	ic := c.Table(IndexColumnsTable)
	key := requireOneRow(t, ic, map[string]string{"INDEX_NAME": "UsersByName", "COLUMN_NAME": "Name"})
	if got := cell(t, ic, key, "COLUMN_ORDERING"); got != "DESC" {
		t.Errorf("key COLUMN_ORDERING = %q", got)
	}
	if got := cell(t, ic, key, "ORDINAL_POSITION"); got != "1" {
		t.Errorf("key ORDINAL_POSITION = %q", got)
	}
	stored := requireOneRow(t, ic, map[string]string{"INDEX_NAME": "UsersByName", "COLUMN_NAME": "Tag"})
	if got := cell(t, ic, stored, "ORDINAL_POSITION"); got != "NULL" {
		t.Errorf("storing ORDINAL_POSITION = %q, want NULL", got)
	}
	if got := cell(t, ic, stored, "COLUMN_ORDERING"); got != "NULL" {
		t.Errorf("storing COLUMN_ORDERING = %q, want NULL", got)
	}
}

func TestSynthesizeConstraints(t *testing.T) {
	c := Synthesize(storeSchema(dialect.GoogleSQL), Options{})

	tc := c.Table(TableConstraintsTable)
	pk := requireOneRow(t, tc, map[string]string{"CONSTRAINT_NAME": "PK_Users"})
	if got := cell(t, tc, pk, "CONSTRAINT_TYPE"); got != "PRIMARY KEY" {
		t.Errorf("PK_Users CONSTRAINT_TYPE = %q", got)
	}
	if got := cell(t, tc, pk, "ENFORCED"); got != "YES" {
		t.Errorf("PK_Users ENFORCED = %q", got)
	}
	nn := requireOneRow(t, tc, map[string]string{"CONSTRAINT_NAME": "CK_IS_NOT_NULL_Users_UserId"})
	if got := cell(t, tc, nn, "CONSTRAINT_TYPE"); got != "CHECK" {
		t.Errorf("not-null CONSTRAINT_TYPE = %q", got)
	}
	fk := requireOneRow(t, tc, map[string]string{"CONSTRAINT_NAME": "FK_OrderUser"})
	if got := cell(t, tc, fk, "CONSTRAINT_TYPE"); got != "FOREIGN KEY" {
		t.Errorf("FK_OrderUser CONSTRAINT_TYPE = %q", got)
	}

	cc := c.Table(CheckConstraintsTable)
	clause := requireOneRow(t, cc, map[string]string{"CONSTRAINT_NAME": "CK_IS_NOT_NULL_Users_UserId"})
	if got := cell(t, cc, clause, "CHECK_CLAUSE"); got != "UserId IS NOT NULL" {
		t.Errorf("not-null CHECK_CLAUSE = %q", got)
	}
	user := requireOneRow(t, cc, map[string]string{"CONSTRAINT_NAME": "CK_Positive"})
	if got := cell(t, cc, user, "CHECK_CLAUSE"); got != "UserId > 0" {
		t.Errorf("CK_Positive CHECK_CLAUSE = %q", got)
	}

	// The foreign key targets the referenced table's primary key.
	rc := c.Table(ReferentialConstraintsTable)
	ref := requireOneRow(t, rc, map[string]string{"CONSTRAINT_NAME": "FK_OrderUser"})
	if got := cell(t, rc, ref, "UNIQUE_CONSTRAINT_NAME"); got != "PK_Users" {
		t.Errorf("FK_OrderUser UNIQUE_CONSTRAINT_NAME = %q", got)
	}
	if got := cell(t, rc, ref, "DELETE_RULE"); got != "NO ACTION" {
		t.Errorf("FK_OrderUser DELETE_RULE = %q", got)
	}

	kcu := c.Table(KeyColumnUsageTable)
	pkCol := requireOneRow(t, kcu, map[string]string{"CONSTRAINT_NAME": "PK_Users", "COLUMN_NAME": "UserId"})
	if got := cell(t, kcu, pkCol, "POSITION_IN_UNIQUE_CONSTRAINT"); got != "NULL" {
		t.Errorf("PK POSITION_IN_UNIQUE_CONSTRAINT = %q, want NULL", got)
	}
	fkCol := requireOneRow(t, kcu, map[string]string{"CONSTRAINT_NAME": "FK_OrderUser", "COLUMN_NAME": "UserId"})
	if got := cell(t, kcu, fkCol, "POSITION_IN_UNIQUE_CONSTRAINT"); got != "1" {
		t.Errorf("FK POSITION_IN_UNIQUE_CONSTRAINT = %q", got)
	}

	ccu := c.Table(ConstraintColumnUsageTable)
	if rows := findRows(ccu, map[string]string{"CONSTRAINT_NAME": "FK_OrderUser"}); len(rows) != 1 {
		t.Errorf("want one FK_OrderUser usage row, got %d", len(rows))
	} else if got := cell(t, ccu, rows[0], "TABLE_NAME"); got != "Users" {
		t.Errorf("FK_OrderUser usage TABLE_NAME = %q", got)
	}
}

func TestSynthesizeDatabaseOptions(t *testing.T) {
	c := Synthesize(storeSchema(dialect.GoogleSQL), Options{DatabaseID: "e0d12697"})
	opts := c.Table(DatabaseOptionsTable)

	d := requireOneRow(t, opts, map[string]string{"OPTION_NAME": "database_dialect"})
	if got := cell(t, opts, d, "OPTION_VALUE"); got != "GOOGLE_STANDARD_SQL" {
		t.Errorf("database_dialect = %q", got)
	}
	id := requireOneRow(t, opts, map[string]string{"OPTION_NAME": "database_id"})
	if got := cell(t, opts, id, "OPTION_VALUE"); got != "e0d12697" {
		t.Errorf("database_id = %q", got)
	}

	// Without a database id, only the dialect row appears.
	c = Synthesize(storeSchema(dialect.GoogleSQL), Options{})
	if n := len(c.Table(DatabaseOptionsTable).Rows); n != 1 {
		t.Errorf("DATABASE_OPTIONS has %d rows, want 1", n)
	}
}

func TestSynthesizeColumnOptions(t *testing.T) {
	c := Synthesize(storeSchema(dialect.GoogleSQL), Options{})
	co := c.Table(ColumnOptionsTable)
	row := requireOneRow(t, co, map[string]string{"COLUMN_NAME": "UpdatedAt"})
	if got := cell(t, co, row, "OPTION_NAME"); got != "allow_commit_timestamp" {
		t.Errorf("OPTION_NAME = %q", got)
	}
	if got := cell(t, co, row, "OPTION_VALUE"); got != "TRUE" {
		t.Errorf("OPTION_VALUE = %q", got)
	}
}

func TestSynthesizeViews(t *testing.T) {
	c := Synthesize(storeSchema(dialect.GoogleSQL), Options{})
	v := c.Table(ViewsTable)
	row := requireOneRow(t, v, map[string]string{"TABLE_NAME": "UserNames"})
	if got := cell(t, v, row, "VIEW_DEFINITION"); got != "SELECT Name FROM Users" {
		t.Errorf("VIEW_DEFINITION = %q", got)
	}
}

// Synthesizing the same snapshot twice yields identical catalogs; the
// updater relies on this to republish deterministically.
func TestSynthesizeDeterministic(t *testing.T) {
	s := storeSchema(dialect.GoogleSQL)
	a := Synthesize(s, Options{DatabaseID: "db"})
	b := Synthesize(s, Options{DatabaseID: "db"})

	at, bt := a.Tables(), b.Tables()
	if len(at) != len(bt) {
		t.Fatalf("table counts differ: %d vs %d", len(at), len(bt))
	}
	for i := range at {
		if at[i].Name != bt[i].Name {
			t.Fatalf("table order differs at %d: %s vs %s", i, at[i].Name, bt[i].Name)
		}
		if len(at[i].Rows) != len(bt[i].Rows) {
			t.Fatalf("%s: row counts differ", at[i].Name)
		}
		for r := range at[i].Rows {
			for c := range at[i].Rows[r] {
				if !at[i].Rows[r][c].Equal(bt[i].Rows[r][c]) {
					t.Fatalf("%s row %d col %d differs", at[i].Name, r, c)
				}
			}
		}
	}
}

func TestRowBuilderRejectsBadKeys(t *testing.T) {
	c := Synthesize(schema.New("db", dialect.GoogleSQL), Options{})
	tab := c.Table(TablesTable)

	mustPanic := func(name string, fn func()) {
		t.Helper()
		defer func() {
			if recover() == nil {
				t.Errorf("%s: expected panic", name)
			}
		}()
		fn()
	}

	mustPanic("unknown column", func() {
		tab.row(kv{"NO_SUCH_COLUMN": types.StringValue("x")})
	})
	// A key that matches a column only case-insensitively is a generator bug.
	mustPanic("non-canonical key", func() {
		tab.row(kv{"table_name": types.StringValue("x")})
	})
}

func TestCatalogTableLookup(t *testing.T) {
	c := Synthesize(schema.New("db", dialect.PostgreSQL), Options{})
	if c.Table("tables") == nil {
		t.Error("lower-case lookup failed")
	}
	if c.Table("TABLES") == nil {
		t.Error("upper-case lookup failed")
	}
	if c.Table("nope") != nil {
		t.Error("unknown table should be nil")
	}
}

func TestEmptySchemaCatalog(t *testing.T) {
	c := Synthesize(schema.New("db", dialect.GoogleSQL), Options{})

	// Even an empty database describes itself.
	if n := len(c.Table(TablesTable).Rows); n != len(catalogTables) {
		t.Errorf("TABLES has %d rows, want %d", n, len(catalogTables))
	}
	if n := len(c.Table(SchemataTable).Rows); n != 2 {
		t.Errorf("SCHEMATA has %d rows, want 2", n)
	}
	if n := len(c.Table(ViewsTable).Rows); n != 0 {
		t.Errorf("VIEWS has %d rows, want 0", n)
	}
	// Every meta table's primary key appears in KEY_COLUMN_USAGE.
	kcu := c.Table(KeyColumnUsageTable)
	for _, meta := range catalogTables {
		if rows := findRows(kcu, map[string]string{"TABLE_NAME": meta.name}); len(rows) == 0 {
			t.Errorf("no KEY_COLUMN_USAGE rows for %s", meta.name)
		}
	}
}
