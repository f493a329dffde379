// Package infoschema synthesizes the INFORMATION_SCHEMA catalog: the full
// read-only metadata table contents for one committed schema version. The
// synthesizer is a pure function of the schema and is re-run in full on
// every commit; correctness over throughput, since schema changes are rare
// relative to reads.
package infoschema

import (
	"fmt"
	"strings"

	"github.com/vellumdb/vellum/internal/dialect"
	"github.com/vellumdb/vellum/internal/schema"
	"github.com/vellumdb/vellum/pkg/types"
)

// Fixed catalog vocabulary.
const (
	informationSchema = "INFORMATION_SCHEMA"
	publicSchema      = "public"

	yes       = "YES"
	no        = "NO"
	always    = "ALWAYS"
	never     = "NEVER"
	committed = "COMMITTED"

	baseTableType = "BASE TABLE"
	viewTableType = "VIEW"
	inParent      = "IN PARENT"

	primaryKeyIndex = "PRIMARY_KEY"
	secondaryIndex  = "INDEX"
	readWrite       = "READ_WRITE"

	primaryKeyConstraint = "PRIMARY KEY"
	checkConstraint      = "CHECK"
	uniqueConstraint     = "UNIQUE"
	foreignKeyConstraint = "FOREIGN KEY"

	matchSimple  = "SIMPLE"
	noActionRule = "NO ACTION"

	allowCommitTimestamp   = "allow_commit_timestamp"
	spannerCommitTimestamp = "spanner.commit_timestamp"
	databaseDialectOption  = "database_dialect"
	databaseIDOption       = "database_id"
)

// Options configures catalog synthesis.
type Options struct {
	// DatabaseID is surfaced as the database_id row of DATABASE_OPTIONS;
	// omitted when empty.
	DatabaseID string
}

// Table is one synthesized catalog table: its dialect-folded name, column
// names, and full row contents.
type Table struct {
	Name string
	Rows []types.Row

	meta    *tableMeta
	columns []columnMeta
}

// ColumnNames returns the table's dialect-folded column names in order.
func (t *Table) ColumnNames(d dialect.Dialect) []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = d.FoldName(c.name)
	}
	return names
}

// ColumnIndex returns the position of the named column, case-insensitively,
// or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.columns {
		if strings.EqualFold(c.name, name) {
			return i
		}
	}
	return -1
}

// Value returns the named cell of a row. Panics on an unknown column; the
// catalog's shape is fixed, so an unknown name is a programming error.
func (t *Table) Value(row types.Row, column string) types.Value {
	i := t.ColumnIndex(column)
	if i < 0 {
		panic(fmt.Sprintf("infoschema: table %s has no column %s", t.Name, column))
	}
	return row[i]
}

// Catalog is the complete synthesized information schema for one schema
// version.
type Catalog struct {
	Dialect dialect.Dialect

	tables map[string]*Table
	order  []string
}

// Table returns the catalog table with the given name, folding the name per
// dialect. Returns nil for unknown names.
func (c *Catalog) Table(name string) *Table {
	return c.tables[strings.ToUpper(name)]
}

// Tables returns every catalog table in emission order.
func (c *Catalog) Tables() []*Table {
	out := make([]*Table, len(c.order))
	for i, name := range c.order {
		out[i] = c.tables[name]
	}
	return out
}

// synthesizer carries the state of one synthesis run.
type synthesizer struct {
	s    *schema.Schema
	d    dialect.Dialect
	opts Options
	c    *Catalog
}

// Synthesize builds the full catalog for a schema snapshot. It is
// deterministic: synthesizing twice from the same snapshot produces
// identical row sets.
func Synthesize(s *schema.Schema, opts Options) *Catalog {
	d := s.Dialect
	c := &Catalog{Dialect: d, tables: make(map[string]*Table)}
	for _, meta := range catalogTables {
		t := &Table{
			Name:    d.FoldName(meta.name),
			meta:    meta,
			columns: meta.effectiveColumns(d),
		}
		c.tables[meta.name] = t
		c.order = append(c.order, meta.name)
	}

	b := &synthesizer{s: s, d: d, opts: opts, c: c}
	b.fillSchemata()
	b.fillDatabaseOptions()
	b.fillTables()
	b.fillColumns()
	b.fillColumnColumnUsage()
	b.fillColumnOptions()
	b.fillIndexes()
	b.fillIndexColumns()
	b.fillTableConstraints()
	b.fillCheckConstraints()
	b.fillConstraintTableUsage()
	b.fillReferentialConstraints()
	b.fillKeyColumnUsage()
	b.fillConstraintColumnUsage()
	b.fillViews()
	return c
}

func (b *synthesizer) table(name string) *Table {
	return b.c.tables[name]
}

// fold is shorthand for the dialect's identifier folding.
func (b *synthesizer) fold(name string) string {
	return b.d.FoldName(name)
}

// row builds one catalog row: overridden values keyed by canonical
// upper-case column name, every other column defaulted per type. The
// default-fill crashes loudly on override keys that collide with a column
// name other than by exact canonical match, so a typo in a generator can
// never silently produce a wrong row.
func (t *Table) row(overrides map[string]types.Value) types.Row {
	for key := range overrides {
		col := t.meta.findColumn(key)
		if col == nil {
			for _, c := range t.columns {
				if strings.EqualFold(c.name, key) {
					panic(fmt.Sprintf(
						"infoschema: override key %q collides with column %q of table %s", key, c.name, t.meta.name))
				}
			}
			panic(fmt.Sprintf("infoschema: table %s has no column %q", t.meta.name, key))
		}
	}
	row := make(types.Row, len(t.columns))
	for i, c := range t.columns {
		if v, ok := overrides[c.name]; ok {
			row[i] = v
		} else {
			row[i] = types.DefaultValue(c.kind)
		}
	}
	return row
}

func (t *Table) addRow(overrides map[string]types.Value) {
	t.Rows = append(t.Rows, t.row(overrides))
}

// kv is a shorthand constructor for override maps.
type kv = map[string]types.Value
