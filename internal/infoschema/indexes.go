package infoschema

import (
	"github.com/vellumdb/vellum/internal/schema"
	"github.com/vellumdb/vellum/pkg/types"
)

func (b *synthesizer) fillIndexes() {
	t := b.table(IndexesTable)
	nullStr := types.NullValue(types.String)

	for _, table := range b.s.Tables {
		for _, idx := range table.Indexes {
			t.addRow(kv{
				"TABLE_SCHEMA":       types.StringValue(b.userSchema()),
				"TABLE_NAME":         types.StringValue(table.Name),
				"INDEX_NAME":         types.StringValue(idx.Name),
				"INDEX_TYPE":         types.StringValue(secondaryIndex),
				"IS_UNIQUE":          types.BoolValue(idx.Unique),
				"IS_NULL_FILTERED":   types.BoolValue(idx.NullFiltered),
				"INDEX_STATE":        types.StringValue(readWrite),
				"SPANNER_IS_MANAGED": types.BoolValue(idx.Managed),
			})
		}
		// The primary key pseudo-index.
		t.addRow(kv{
			"TABLE_SCHEMA":     types.StringValue(b.userSchema()),
			"TABLE_NAME":       types.StringValue(table.Name),
			"INDEX_NAME":       types.StringValue(primaryKeyIndex),
			"INDEX_TYPE":       types.StringValue(primaryKeyIndex),
			"IS_UNIQUE":        types.BoolValue(true),
			"IS_NULL_FILTERED": types.BoolValue(false),
			"INDEX_STATE":      nullStr,
		})
	}

	for _, meta := range catalogTables {
		t.addRow(kv{
			"TABLE_SCHEMA":     types.StringValue(b.fold(informationSchema)),
			"TABLE_NAME":       types.StringValue(b.fold(meta.name)),
			"INDEX_NAME":       types.StringValue(primaryKeyIndex),
			"INDEX_TYPE":       types.StringValue(primaryKeyIndex),
			"IS_UNIQUE":        types.BoolValue(true),
			"IS_NULL_FILTERED": types.BoolValue(false),
			"INDEX_STATE":      nullStr,
		})
	}
}

func (b *synthesizer) fillIndexColumns() {
	t := b.table(IndexColumnsTable)
	nullStr := types.NullValue(types.String)
	nullInt := types.NullValue(types.Int64)

	columnType := func(table *schema.Table, name string) types.Value {
		col := table.FindColumn(name)
		if col == nil {
			return nullStr
		}
		return types.StringValue(b.d.TypeString(col.Type, col.MaxLength))
	}

	for _, table := range b.s.Tables {
		for _, idx := range table.Indexes {
			for i, key := range idx.Keys {
				col := table.FindColumn(key.Column)
				nullable := col != nil && !col.NotNull && !idx.NullFiltered
				t.addRow(kv{
					"TABLE_SCHEMA":     types.StringValue(b.userSchema()),
					"TABLE_NAME":       types.StringValue(table.Name),
					"INDEX_NAME":       types.StringValue(idx.Name),
					"INDEX_TYPE":       types.StringValue(secondaryIndex),
					"COLUMN_NAME":      types.StringValue(key.Column),
					"ORDINAL_POSITION": types.Int64Value(int64(i + 1)),
					"COLUMN_ORDERING":  types.StringValue(key.Ordering()),
					"IS_NULLABLE":      yesNo(nullable),
					"SPANNER_TYPE":     columnType(table, key.Column),
				})
			}
			// Storing columns carry no ordinal or ordering.
			for _, stored := range idx.Storing {
				col := table.FindColumn(stored)
				t.addRow(kv{
					"TABLE_SCHEMA":     types.StringValue(b.userSchema()),
					"TABLE_NAME":       types.StringValue(table.Name),
					"INDEX_NAME":       types.StringValue(idx.Name),
					"INDEX_TYPE":       types.StringValue(secondaryIndex),
					"COLUMN_NAME":      types.StringValue(stored),
					"ORDINAL_POSITION": nullInt,
					"COLUMN_ORDERING":  nullStr,
					"IS_NULLABLE":      yesNo(col != nil && !col.NotNull),
					"SPANNER_TYPE":     columnType(table, stored),
				})
			}
		}

		for i, key := range table.PrimaryKey {
			col := table.FindColumn(key.Column)
			t.addRow(kv{
				"TABLE_SCHEMA":     types.StringValue(b.userSchema()),
				"TABLE_NAME":       types.StringValue(table.Name),
				"INDEX_NAME":       types.StringValue(primaryKeyIndex),
				"INDEX_TYPE":       types.StringValue(primaryKeyIndex),
				"COLUMN_NAME":      types.StringValue(key.Column),
				"ORDINAL_POSITION": types.Int64Value(int64(i + 1)),
				"COLUMN_ORDERING":  types.StringValue(key.Ordering()),
				"IS_NULLABLE":      yesNo(col != nil && !col.NotNull),
				"SPANNER_TYPE":     columnType(table, key.Column),
			})
		}
	}

	for _, meta := range catalogTables {
		for _, col := range meta.effectiveColumns(b.d) {
			if col.pkOrdinal == 0 {
				continue
			}
			t.addRow(kv{
				"TABLE_SCHEMA":     types.StringValue(b.fold(informationSchema)),
				"TABLE_NAME":       types.StringValue(b.fold(meta.name)),
				"INDEX_NAME":       types.StringValue(primaryKeyIndex),
				"INDEX_TYPE":       types.StringValue(primaryKeyIndex),
				"COLUMN_NAME":      types.StringValue(b.fold(col.name)),
				"ORDINAL_POSITION": types.Int64Value(int64(col.pkOrdinal)),
				"COLUMN_ORDERING":  types.StringValue("ASC"),
				"IS_NULLABLE":      yesNo(col.nullable),
				"SPANNER_TYPE":     types.StringValue(b.d.TypeString(types.Scalar(col.kind), nil)),
			})
		}
	}
}
