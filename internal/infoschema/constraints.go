package infoschema

import (
	"fmt"

	"github.com/vellumdb/vellum/internal/schema"
	"github.com/vellumdb/vellum/pkg/types"
)

// Synthesized constraint names. The information schema surfaces constraints
// the schema model does not store as named objects: every table's primary
// key and every NOT NULL column get a synthetic constraint row.
func primaryKeyName(table string) string {
	return "PK_" + table
}

func notNullCheckName(table, column string) string {
	return fmt.Sprintf("CK_IS_NOT_NULL_%s_%s", table, column)
}

func notNullCheckClause(column string) string {
	return column + " IS NOT NULL"
}

// referencedIndexName is the unique-constraint name backing a foreign
// key's referenced side: the backing index, or the referenced table's
// primary key when the key targets it directly.
func referencedIndexName(fk *schema.ForeignKey) string {
	if fk.ReferencedIndex != "" {
		return fk.ReferencedIndex
	}
	return primaryKeyName(fk.ReferencedTable)
}

// backingIndexes returns, in schema order, the indexes backing at least one
// foreign key's referenced side. Foreign keys over the same columns share
// one backing index; constraint rows are emitted per index, never per
// foreign key.
func (b *synthesizer) backingIndexes() []*schema.Index {
	named := make(map[string]bool)
	for _, table := range b.s.Tables {
		for _, fk := range table.ForeignKeys {
			if fk.ReferencedIndex != "" {
				named[fk.ReferencedIndex] = true
			}
		}
	}
	var out []*schema.Index
	for _, table := range b.s.Tables {
		for _, idx := range table.Indexes {
			if named[idx.Name] {
				out = append(out, idx)
			}
		}
	}
	return out
}

func (b *synthesizer) fillTableConstraints() {
	t := b.table(TableConstraintsTable)

	add := func(schemaName, constraint, table, kind string) {
		t.addRow(kv{
			"CONSTRAINT_SCHEMA":  types.StringValue(schemaName),
			"CONSTRAINT_NAME":    types.StringValue(constraint),
			"TABLE_SCHEMA":       types.StringValue(schemaName),
			"TABLE_NAME":         types.StringValue(table),
			"CONSTRAINT_TYPE":    types.StringValue(kind),
			"IS_DEFERRABLE":      types.StringValue(no),
			"INITIALLY_DEFERRED": types.StringValue(no),
			"ENFORCED":           types.StringValue(yes),
		})
	}

	us := b.userSchema()
	for _, table := range b.s.Tables {
		add(us, primaryKeyName(table.Name), table.Name, primaryKeyConstraint)
		for _, col := range table.Columns {
			if col.NotNull {
				add(us, notNullCheckName(table.Name, col.Name), table.Name, checkConstraint)
			}
		}
		for _, ck := range table.CheckConstraints {
			add(us, ck.Name, table.Name, checkConstraint)
		}
		for _, fk := range table.ForeignKeys {
			add(us, fk.Name, table.Name, foreignKeyConstraint)
		}
	}
	for _, idx := range b.backingIndexes() {
		add(us, idx.Name, idx.Table, uniqueConstraint)
	}

	is := b.fold(informationSchema)
	for _, meta := range catalogTables {
		name := b.fold(meta.name)
		add(is, primaryKeyName(name), name, primaryKeyConstraint)
		for _, col := range meta.effectiveColumns(b.d) {
			if !col.nullable {
				add(is, notNullCheckName(name, b.fold(col.name)), name, checkConstraint)
			}
		}
	}
}

func (b *synthesizer) fillCheckConstraints() {
	t := b.table(CheckConstraintsTable)

	add := func(schemaName, constraint, clause, state string) {
		t.addRow(kv{
			"CONSTRAINT_SCHEMA": types.StringValue(schemaName),
			"CONSTRAINT_NAME":   types.StringValue(constraint),
			"CHECK_CLAUSE":      types.StringValue(clause),
			"SPANNER_STATE":     types.StringValue(state),
		})
	}

	us := b.userSchema()
	for _, table := range b.s.Tables {
		for _, col := range table.Columns {
			if col.NotNull {
				add(us, notNullCheckName(table.Name, col.Name), notNullCheckClause(col.Name), committed)
			}
		}
		for _, ck := range table.CheckConstraints {
			add(us, ck.Name, ck.Expression, committed)
		}
	}

	is := b.fold(informationSchema)
	for _, meta := range catalogTables {
		name := b.fold(meta.name)
		for _, col := range meta.effectiveColumns(b.d) {
			if !col.nullable {
				colName := b.fold(col.name)
				add(is, notNullCheckName(name, colName), notNullCheckClause(colName), committed)
			}
		}
	}
}

func (b *synthesizer) fillConstraintTableUsage() {
	t := b.table(ConstraintTableUsageTable)

	add := func(schemaName, table, constraint string) {
		t.addRow(kv{
			"TABLE_SCHEMA":      types.StringValue(schemaName),
			"TABLE_NAME":        types.StringValue(table),
			"CONSTRAINT_SCHEMA": types.StringValue(schemaName),
			"CONSTRAINT_NAME":   types.StringValue(constraint),
		})
	}

	us := b.userSchema()
	for _, table := range b.s.Tables {
		add(us, table.Name, primaryKeyName(table.Name))
		for _, col := range table.Columns {
			if col.NotNull {
				add(us, table.Name, notNullCheckName(table.Name, col.Name))
			}
		}
		for _, ck := range table.CheckConstraints {
			add(us, table.Name, ck.Name)
		}
		for _, fk := range table.ForeignKeys {
			add(us, fk.ReferencedTable, fk.Name)
		}
	}
	for _, idx := range b.backingIndexes() {
		add(us, idx.Table, idx.Name)
	}

	is := b.fold(informationSchema)
	for _, meta := range catalogTables {
		name := b.fold(meta.name)
		add(is, name, primaryKeyName(name))
		for _, col := range meta.effectiveColumns(b.d) {
			if !col.nullable {
				add(is, name, notNullCheckName(name, b.fold(col.name)))
			}
		}
	}
}

func (b *synthesizer) fillReferentialConstraints() {
	t := b.table(ReferentialConstraintsTable)
	us := b.userSchema()

	for _, table := range b.s.Tables {
		for _, fk := range table.ForeignKeys {
			t.addRow(kv{
				"CONSTRAINT_SCHEMA":        types.StringValue(us),
				"CONSTRAINT_NAME":          types.StringValue(fk.Name),
				"UNIQUE_CONSTRAINT_SCHEMA": types.StringValue(us),
				"UNIQUE_CONSTRAINT_NAME":   types.StringValue(referencedIndexName(fk)),
				"MATCH_OPTION":             types.StringValue(matchSimple),
				"UPDATE_RULE":              types.StringValue(noActionRule),
				"DELETE_RULE":              types.StringValue(noActionRule),
				"SPANNER_STATE":            types.StringValue(committed),
			})
		}
	}
}

func (b *synthesizer) fillKeyColumnUsage() {
	t := b.table(KeyColumnUsageTable)
	nullInt := types.NullValue(types.Int64)
	us := b.userSchema()

	for _, table := range b.s.Tables {
		for i, key := range table.PrimaryKey {
			t.addRow(kv{
				"CONSTRAINT_SCHEMA":             types.StringValue(us),
				"CONSTRAINT_NAME":               types.StringValue(primaryKeyName(table.Name)),
				"TABLE_SCHEMA":                  types.StringValue(us),
				"TABLE_NAME":                    types.StringValue(table.Name),
				"COLUMN_NAME":                   types.StringValue(key.Column),
				"ORDINAL_POSITION":              types.Int64Value(int64(i + 1)),
				"POSITION_IN_UNIQUE_CONSTRAINT": nullInt,
			})
		}
		for _, fk := range table.ForeignKeys {
			for i, col := range fk.ReferencingColumns {
				t.addRow(kv{
					"CONSTRAINT_SCHEMA":             types.StringValue(us),
					"CONSTRAINT_NAME":               types.StringValue(fk.Name),
					"TABLE_SCHEMA":                  types.StringValue(us),
					"TABLE_NAME":                    types.StringValue(table.Name),
					"COLUMN_NAME":                   types.StringValue(col),
					"ORDINAL_POSITION":              types.Int64Value(int64(i + 1)),
					"POSITION_IN_UNIQUE_CONSTRAINT": types.Int64Value(int64(i + 1)),
				})
			}
		}
	}
	for _, idx := range b.backingIndexes() {
		for i, key := range idx.Keys {
			t.addRow(kv{
				"CONSTRAINT_SCHEMA":             types.StringValue(us),
				"CONSTRAINT_NAME":               types.StringValue(idx.Name),
				"TABLE_SCHEMA":                  types.StringValue(us),
				"TABLE_NAME":                    types.StringValue(idx.Table),
				"COLUMN_NAME":                   types.StringValue(key.Column),
				"ORDINAL_POSITION":              types.Int64Value(int64(i + 1)),
				"POSITION_IN_UNIQUE_CONSTRAINT": nullInt,
			})
		}
	}

	is := b.fold(informationSchema)
	for _, meta := range catalogTables {
		name := b.fold(meta.name)
		for _, col := range meta.effectiveColumns(b.d) {
			if col.pkOrdinal == 0 {
				continue
			}
			t.addRow(kv{
				"CONSTRAINT_SCHEMA":             types.StringValue(is),
				"CONSTRAINT_NAME":               types.StringValue(primaryKeyName(name)),
				"TABLE_SCHEMA":                  types.StringValue(is),
				"TABLE_NAME":                    types.StringValue(name),
				"COLUMN_NAME":                   types.StringValue(b.fold(col.name)),
				"ORDINAL_POSITION":              types.Int64Value(int64(col.pkOrdinal)),
				"POSITION_IN_UNIQUE_CONSTRAINT": nullInt,
			})
		}
	}
}

func (b *synthesizer) fillConstraintColumnUsage() {
	t := b.table(ConstraintColumnUsageTable)

	add := func(schemaName, table, column, constraint string) {
		t.addRow(kv{
			"TABLE_SCHEMA":      types.StringValue(schemaName),
			"TABLE_NAME":        types.StringValue(table),
			"COLUMN_NAME":       types.StringValue(column),
			"CONSTRAINT_SCHEMA": types.StringValue(schemaName),
			"CONSTRAINT_NAME":   types.StringValue(constraint),
		})
	}

	us := b.userSchema()
	for _, table := range b.s.Tables {
		for _, key := range table.PrimaryKey {
			add(us, table.Name, key.Column, primaryKeyName(table.Name))
		}
		for _, col := range table.Columns {
			if col.NotNull {
				add(us, table.Name, col.Name, notNullCheckName(table.Name, col.Name))
			}
		}
		for _, ck := range table.CheckConstraints {
			for _, dep := range ck.Dependencies {
				add(us, table.Name, dep, ck.Name)
			}
		}
		for _, fk := range table.ForeignKeys {
			for _, col := range fk.ReferencedColumns {
				add(us, fk.ReferencedTable, col, fk.Name)
			}
		}
	}
	for _, idx := range b.backingIndexes() {
		for _, key := range idx.Keys {
			add(us, idx.Table, key.Column, idx.Name)
		}
	}

	is := b.fold(informationSchema)
	for _, meta := range catalogTables {
		name := b.fold(meta.name)
		for _, col := range meta.effectiveColumns(b.d) {
			if col.pkOrdinal > 0 {
				add(is, name, b.fold(col.name), primaryKeyName(name))
			}
		}
	}
	for _, meta := range catalogTables {
		name := b.fold(meta.name)
		for _, col := range meta.effectiveColumns(b.d) {
			if !col.nullable {
				add(is, name, b.fold(col.name), notNullCheckName(name, b.fold(col.name)))
			}
		}
	}
}
