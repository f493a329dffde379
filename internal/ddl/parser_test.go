package ddl

import (
	"reflect"
	"testing"

	"github.com/vellumdb/vellum/pkg/types"
)

func mustParse(t *testing.T, input string) Statement {
	t.Helper()
	stmt, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse(%q): %v", input, err)
	}
	return stmt
}

func TestParseCreateTable_Basic(t *testing.T) {
	stmt := mustParse(t, `CREATE TABLE Users(
		UserId STRING(20) NOT NULL,
		Name STRING(20),
		Age INT64
	) PRIMARY KEY(UserId)`)

	ct, ok := stmt.(*CreateTable)
	if !ok {
		t.Fatalf("got %T, want *CreateTable", stmt)
	}
	if ct.Name != "Users" {
		t.Errorf("name = %q", ct.Name)
	}
	if len(ct.Columns) != 3 {
		t.Fatalf("columns = %d, want 3", len(ct.Columns))
	}
	c := ct.Columns[0]
	if c.Name != "UserId" || !c.NotNull || c.Type.Type.Code != types.String {
		t.Errorf("UserId column parsed wrong: %+v", c)
	}
	if c.Type.MaxLength == nil || *c.Type.MaxLength != 20 {
		t.Errorf("UserId length = %v, want 20", c.Type.MaxLength)
	}
	if ct.Columns[1].NotNull {
		t.Error("Name should be nullable")
	}
	if len(ct.PrimaryKey) != 1 || ct.PrimaryKey[0].Column != "UserId" || ct.PrimaryKey[0].Desc {
		t.Errorf("primary key = %+v", ct.PrimaryKey)
	}
}

func TestParseCreateTable_GeneratedAndDefault(t *testing.T) {
	stmt := mustParse(t, `CREATE TABLE tablegen(
		k INT64,
		v1 INT64,
		v2 INT64,
		g1 INT64 AS (g2+1) STORED,
		g2 INT64 NOT NULL AS (v1+v2) STORED,
		g3 INT64 AS (g1) STORED,
		v3 INT64 NOT NULL DEFAULT (2)
	) PRIMARY KEY(k)`)

	ct := stmt.(*CreateTable)
	g1 := ct.Columns[3]
	if g1.GeneratedExpr != "(g2+1)" || !g1.GeneratedStored {
		t.Errorf("g1 = %+v", g1)
	}
	g2 := ct.Columns[4]
	if g2.GeneratedExpr != "(v1+v2)" || !g2.NotNull {
		t.Errorf("g2 = %+v", g2)
	}
	v3 := ct.Columns[6]
	if !v3.HasDefault || v3.DefaultExpr != "2" {
		t.Errorf("v3 = %+v", v3)
	}
}

func TestParseCreateTable_InterleaveAndPolicy(t *testing.T) {
	stmt := mustParse(t, `CREATE TABLE Orders(
		UserId STRING(20) NOT NULL,
		OrderId INT64 NOT NULL,
		CreatedAt TIMESTAMP OPTIONS (allow_commit_timestamp = true)
	) PRIMARY KEY(UserId, OrderId DESC),
	  INTERLEAVE IN PARENT Users ON DELETE CASCADE,
	  ROW DELETION POLICY (OLDER_THAN(CreatedAt, INTERVAL 30 DAY))`)

	ct := stmt.(*CreateTable)
	if ct.Interleave == nil || ct.Interleave.Parent != "Users" || ct.Interleave.OnDelete != OnDeleteCascade {
		t.Errorf("interleave = %+v", ct.Interleave)
	}
	if !ct.PrimaryKey[1].Desc {
		t.Error("OrderId should be DESC")
	}
	if !ct.Columns[2].AllowCommitTimestamp {
		t.Error("allow_commit_timestamp option not parsed")
	}
	if ct.RowDeletionPolicy != "OLDER_THAN(CreatedAt, INTERVAL 30 DAY)" {
		t.Errorf("row deletion policy = %q", ct.RowDeletionPolicy)
	}
}

func TestParseCreateTable_Constraints(t *testing.T) {
	stmt := mustParse(t, `CREATE TABLE Orders(
		OrderId INT64 NOT NULL,
		UserId STRING(20),
		Total INT64,
		CONSTRAINT FK_OrdersUsers FOREIGN KEY (UserId) REFERENCES Users (UserId),
		CONSTRAINT CK_Positive CHECK (Total > 0)
	) PRIMARY KEY(OrderId)`)

	ct := stmt.(*CreateTable)
	if len(ct.Constraints) != 2 {
		t.Fatalf("constraints = %d, want 2", len(ct.Constraints))
	}
	fk := ct.Constraints[0]
	if fk.Name != "FK_OrdersUsers" || fk.ForeignKey == nil {
		t.Fatalf("fk = %+v", fk)
	}
	if !reflect.DeepEqual(fk.ForeignKey.Columns, []string{"UserId"}) ||
		fk.ForeignKey.ReferencedTable != "Users" ||
		!reflect.DeepEqual(fk.ForeignKey.ReferencedColumns, []string{"UserId"}) {
		t.Errorf("fk def = %+v", fk.ForeignKey)
	}
	ck := ct.Constraints[1]
	if ck.Name != "CK_Positive" || ck.Check == nil || ck.Check.Expr != "Total > 0" {
		t.Errorf("check = %+v", ck)
	}
}

func TestParseTypes(t *testing.T) {
	stmt := mustParse(t, `CREATE TABLE T(
		a INT64,
		b FLOAT64,
		c BOOL,
		d STRING(MAX),
		e BYTES(10),
		f TIMESTAMP,
		g DATE,
		h ARRAY<INT64>,
		i ARRAY<STRING(5)>
	) PRIMARY KEY(a)`)

	ct := stmt.(*CreateTable)
	wantCodes := []types.TypeCode{
		types.Int64, types.Float64, types.Bool, types.String,
		types.Bytes, types.Timestamp, types.Date, types.Array, types.Array,
	}
	for i, want := range wantCodes {
		if ct.Columns[i].Type.Type.Code != want {
			t.Errorf("column %d code = %v, want %v", i, ct.Columns[i].Type.Type.Code, want)
		}
	}
	if ct.Columns[3].Type.MaxLength != nil {
		t.Error("STRING(MAX) should have nil length")
	}
	if ct.Columns[7].Type.Type.Elem.Code != types.Int64 {
		t.Error("ARRAY<INT64> element type wrong")
	}
	if l := ct.Columns[8].Type.MaxLength; l == nil || *l != 5 {
		t.Errorf("ARRAY<STRING(5)> length = %v", l)
	}
}

func TestParseAlterTable(t *testing.T) {
	stmt := mustParse(t, `ALTER TABLE Users ADD COLUMN Email STRING(MAX)`)
	add, ok := stmt.(*AlterTableAddColumn)
	if !ok || add.Table != "Users" || add.Column.Name != "Email" {
		t.Errorf("add column parsed wrong: %+v", stmt)
	}

	stmt = mustParse(t, `ALTER TABLE Users DROP COLUMN Email`)
	drop, ok := stmt.(*AlterTableDropColumn)
	if !ok || drop.Table != "Users" || drop.Column != "Email" {
		t.Errorf("drop column parsed wrong: %+v", stmt)
	}

	stmt = mustParse(t, `ALTER TABLE Orders ADD CONSTRAINT FK_O FOREIGN KEY (UserId) REFERENCES Users (UserId)`)
	addCon, ok := stmt.(*AlterTableAddConstraint)
	if !ok || addCon.Constraint.Name != "FK_O" || addCon.Constraint.ForeignKey == nil {
		t.Errorf("add constraint parsed wrong: %+v", stmt)
	}
}

func TestParseCreateIndex(t *testing.T) {
	stmt := mustParse(t, `CREATE UNIQUE NULL_FILTERED INDEX UsersByName ON Users(Name DESC) STORING (Age)`)
	idx := stmt.(*CreateIndex)
	if idx.Name != "UsersByName" || idx.Table != "Users" {
		t.Errorf("index = %+v", idx)
	}
	if !idx.Unique || !idx.NullFiltered {
		t.Error("flags not parsed")
	}
	if len(idx.Keys) != 1 || !idx.Keys[0].Desc {
		t.Errorf("keys = %+v", idx.Keys)
	}
	if !reflect.DeepEqual(idx.Storing, []string{"Age"}) {
		t.Errorf("storing = %v", idx.Storing)
	}
}

func TestParseCreateView(t *testing.T) {
	stmt := mustParse(t, `CREATE VIEW UserNames SQL SECURITY INVOKER AS SELECT UserId, Name FROM Users`)
	v := stmt.(*CreateView)
	if v.Name != "UserNames" || v.OrReplace {
		t.Errorf("view = %+v", v)
	}
	if v.Body != "SELECT UserId, Name FROM Users" {
		t.Errorf("body = %q", v.Body)
	}

	stmt = mustParse(t, `CREATE OR REPLACE VIEW V SQL SECURITY INVOKER AS SELECT a FROM t`)
	if !stmt.(*CreateView).OrReplace {
		t.Error("OR REPLACE not parsed")
	}
}

func TestParseChangeStream(t *testing.T) {
	stmt := mustParse(t, `CREATE CHANGE STREAM foo FOR Users(Name), Orders`)
	cs := stmt.(*CreateChangeStream)
	if cs.Name != "foo" || cs.For.All {
		t.Errorf("stream = %+v", cs)
	}
	if len(cs.For.Targets) != 2 {
		t.Fatalf("targets = %d, want 2", len(cs.For.Targets))
	}
	if !cs.For.Targets[0].HasColumns || !reflect.DeepEqual(cs.For.Targets[0].Columns, []string{"Name"}) {
		t.Errorf("target 0 = %+v", cs.For.Targets[0])
	}
	if cs.For.Targets[1].HasColumns {
		t.Error("bare table target should not report columns")
	}

	stmt = mustParse(t, `CREATE CHANGE STREAM everything FOR ALL`)
	if !stmt.(*CreateChangeStream).For.All {
		t.Error("FOR ALL not parsed")
	}

	stmt = mustParse(t, `ALTER CHANGE STREAM foo SET FOR Orders`)
	alter := stmt.(*AlterChangeStream)
	if alter.Name != "foo" || len(alter.For.Targets) != 1 || alter.For.Targets[0].Table != "Orders" {
		t.Errorf("alter = %+v", alter)
	}

	if _, err := Parse(`CREATE CHANGE STREAM foo FOR Users()`); err == nil {
		t.Error("empty column list should be a parse error")
	}
}

func TestParseDrops(t *testing.T) {
	tests := []struct {
		input string
		check func(Statement) bool
	}{
		{`DROP TABLE Users`, func(s Statement) bool { d, ok := s.(*DropTable); return ok && d.Name == "Users" }},
		{`DROP INDEX UsersByName`, func(s Statement) bool { d, ok := s.(*DropIndex); return ok && d.Name == "UsersByName" }},
		{`DROP VIEW V`, func(s Statement) bool { d, ok := s.(*DropView); return ok && d.Name == "V" }},
		{`DROP CHANGE STREAM foo`, func(s Statement) bool { d, ok := s.(*DropChangeStream); return ok && d.Name == "foo" }},
	}
	for _, tt := range tests {
		if !tt.check(mustParse(t, tt.input)) {
			t.Errorf("%q parsed wrong", tt.input)
		}
	}
}

func TestParseScript(t *testing.T) {
	stmts, err := ParseScript(`
		CREATE TABLE Users(UserId STRING(20) NOT NULL) PRIMARY KEY(UserId);
		-- a comment between statements
		CREATE CHANGE STREAM foo FOR Users;
	`)
	if err != nil {
		t.Fatalf("ParseScript: %v", err)
	}
	if len(stmts) != 2 {
		t.Fatalf("statements = %d, want 2", len(stmts))
	}
	if _, ok := stmts[0].(*CreateTable); !ok {
		t.Errorf("stmt 0 = %T", stmts[0])
	}
	if _, ok := stmts[1].(*CreateChangeStream); !ok {
		t.Errorf("stmt 1 = %T", stmts[1])
	}
}

func TestParseErrors(t *testing.T) {
	inputs := []string{
		``,
		`SELECT 1`,
		`CREATE TABLE`,
		`CREATE TABLE T(a INT64) PRIMARY`,
		`CREATE TABLE T(a STRING) PRIMARY KEY(a)`, // STRING needs a length
		`CREATE TABLE T(a WIDGET) PRIMARY KEY(a)`,
		`CREATE INDEX I ON`,
		`ALTER CHANGE STREAM foo FOR Users`, // missing SET
	}
	for _, input := range inputs {
		if _, err := Parse(input); err == nil {
			t.Errorf("Parse(%q) should fail", input)
		}
	}
}

func TestExtractColumnRefs(t *testing.T) {
	tests := []struct {
		expr string
		want []string
	}{
		{"g2+1", []string{"g2"}},
		{"v1+v2", []string{"v1", "v2"}},
		{"(a + b) * a", []string{"a", "b"}},
		{"Total > 0 AND Status IS NOT NULL", []string{"Total", "Status"}},
		{"OLDER_THAN(CreatedAt, INTERVAL 30 DAY)", []string{"CreatedAt"}},
		{"LOWER(Name) LIKE 'a%'", []string{"Name"}},
		{"2", nil},
	}
	for _, tt := range tests {
		got := ExtractColumnRefs(tt.expr)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ExtractColumnRefs(%q) = %v, want %v", tt.expr, got, tt.want)
		}
	}
}

func TestParseSimpleSelect(t *testing.T) {
	items, table, err := ParseSimpleSelect("SELECT UserId, Name AS FullName FROM Users")
	if err != nil {
		t.Fatalf("ParseSimpleSelect: %v", err)
	}
	if table != "Users" {
		t.Errorf("table = %q", table)
	}
	if len(items) != 2 || items[0].Name() != "UserId" || items[1].Name() != "FullName" || items[1].Column != "Name" {
		t.Errorf("items = %+v", items)
	}

	for _, bad := range []string{
		"SELECT * FROM Users",
		"SELECT a FROM t JOIN u",
		"DELETE FROM Users",
	} {
		if _, _, err := ParseSimpleSelect(bad); err == nil {
			t.Errorf("ParseSimpleSelect(%q) should fail", bad)
		}
	}
}
