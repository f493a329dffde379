package storage

import (
	"os"
	"testing"

	"github.com/vellumdb/vellum/internal/schema"
	"github.com/vellumdb/vellum/pkg/types"
)

func newLayout(t *testing.T) *Layout {
	t.Helper()
	l, err := NewLayout(t.TempDir())
	if err != nil {
		t.Fatalf("NewLayout: %v", err)
	}
	return l
}

func sampleTable() *schema.Table {
	return &schema.Table{
		Name: "Users",
		Columns: []*schema.Column{
			{Name: "UserId", Type: types.Scalar(types.Int64), NotNull: true},
			{Name: "Name", Type: types.Scalar(types.String)},
		},
		PrimaryKey: []schema.KeyColumn{{Column: "UserId"}},
	}
}

func TestTableLifecycle(t *testing.T) {
	l := newLayout(t)
	tab := sampleTable()

	if err := l.CreateTable(tab); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	if _, err := os.Stat(l.TableDir("Users")); err != nil {
		t.Fatalf("table dir missing: %v", err)
	}

	got, err := l.ReadTableDefinition("Users")
	if err != nil {
		t.Fatalf("ReadTableDefinition: %v", err)
	}
	if got.Name != "Users" || len(got.Columns) != 2 {
		t.Errorf("round-tripped definition = %+v", got)
	}

	names, err := l.Tables()
	if err != nil {
		t.Fatalf("Tables: %v", err)
	}
	if len(names) != 1 || names[0] != "Users" {
		t.Errorf("Tables() = %v", names)
	}

	if err := l.DropTable("Users"); err != nil {
		t.Fatalf("DropTable: %v", err)
	}
	if _, err := os.Stat(l.TableDir("Users")); !os.IsNotExist(err) {
		t.Error("table dir still present after drop")
	}
}

func TestUpdateTableRewritesDefinition(t *testing.T) {
	l := newLayout(t)
	tab := sampleTable()
	if err := l.CreateTable(tab); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}

	tab.Columns = append(tab.Columns, &schema.Column{Name: "Age", Type: types.Scalar(types.Int64)})
	if err := l.UpdateTable(tab); err != nil {
		t.Fatalf("UpdateTable: %v", err)
	}

	got, err := l.ReadTableDefinition("Users")
	if err != nil {
		t.Fatalf("ReadTableDefinition: %v", err)
	}
	if len(got.Columns) != 3 {
		t.Errorf("definition has %d columns, want 3", len(got.Columns))
	}
}

func TestIndexLifecycle(t *testing.T) {
	l := newLayout(t)
	idx := &schema.Index{
		Name:  "UsersByName",
		Table: "Users",
		Keys:  []schema.KeyColumn{{Column: "Name"}},
	}
	if err := l.CreateIndex(idx); err != nil {
		t.Fatalf("CreateIndex: %v", err)
	}
	names, err := l.Indexes()
	if err != nil {
		t.Fatalf("Indexes: %v", err)
	}
	if len(names) != 1 || names[0] != "UsersByName" {
		t.Errorf("Indexes() = %v", names)
	}
	if err := l.DropIndex("UsersByName"); err != nil {
		t.Fatalf("DropIndex: %v", err)
	}
	if _, err := os.Stat(l.IndexDir("UsersByName")); !os.IsNotExist(err) {
		t.Error("index dir still present after drop")
	}
}

func TestDropMissingIsIdempotent(t *testing.T) {
	l := newLayout(t)
	if err := l.DropTable("Nope"); err != nil {
		t.Errorf("DropTable on missing: %v", err)
	}
	if err := l.DropIndex("Nope"); err != nil {
		t.Errorf("DropIndex on missing: %v", err)
	}
}
