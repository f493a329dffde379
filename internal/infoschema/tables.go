package infoschema

import (
	"strings"

	"github.com/vellumdb/vellum/internal/dialect"
	"github.com/vellumdb/vellum/internal/schema"
	"github.com/vellumdb/vellum/pkg/types"
)

// userSchema is the schema label for user objects: empty for GoogleSQL,
// "public" for PostgreSQL.
func (b *synthesizer) userSchema() string {
	return b.d.DefaultSchemaName()
}

func (b *synthesizer) fillSchemata() {
	t := b.table(SchemataTable)

	// The unnamed default schema.
	t.addRow(kv{"SCHEMA_NAME": types.StringValue(b.userSchema())})
	// The information schema itself.
	t.addRow(kv{"SCHEMA_NAME": types.StringValue(b.fold(informationSchema))})
}

func (b *synthesizer) fillDatabaseOptions() {
	t := b.table(DatabaseOptionsTable)
	optionType := b.d.OptionTypeString()

	row := kv{
		"SCHEMA_NAME":  types.StringValue(b.userSchema()),
		"OPTION_NAME":  types.StringValue(databaseDialectOption),
		"OPTION_TYPE":  types.StringValue(optionType),
		"OPTION_VALUE": types.StringValue(b.s.Dialect.String()),
	}
	t.addRow(row)

	if b.opts.DatabaseID != "" {
		t.addRow(kv{
			"SCHEMA_NAME":  types.StringValue(b.userSchema()),
			"OPTION_NAME":  types.StringValue(databaseIDOption),
			"OPTION_TYPE":  types.StringValue(optionType),
			"OPTION_VALUE": types.StringValue(b.opts.DatabaseID),
		})
	}
}

func (b *synthesizer) fillTables() {
	t := b.table(TablesTable)
	nullStr := types.NullValue(types.String)

	for _, table := range b.s.Tables {
		row := kv{
			"TABLE_SCHEMA":    types.StringValue(b.userSchema()),
			"TABLE_NAME":      types.StringValue(table.Name),
			"TABLE_TYPE":      types.StringValue(baseTableType),
			"SPANNER_STATE":   types.StringValue(committed),
			"INTERLEAVE_TYPE": types.StringValue(inParent),
		}
		if table.Parent != "" {
			row["PARENT_TABLE_NAME"] = types.StringValue(table.Parent)
			row["ON_DELETE_ACTION"] = types.StringValue(table.OnDelete.String())
		} else {
			row["PARENT_TABLE_NAME"] = nullStr
			row["ON_DELETE_ACTION"] = nullStr
		}
		if b.d == dialect.GoogleSQL && table.RowDeletionPolicy != "" {
			row["ROW_DELETION_POLICY_EXPRESSION"] = types.StringValue(table.RowDeletionPolicy)
		} else {
			row["ROW_DELETION_POLICY_EXPRESSION"] = nullStr
		}
		t.addRow(row)
	}

	for _, view := range b.s.Views {
		row := kv{
			"TABLE_SCHEMA":                   types.StringValue(b.userSchema()),
			"TABLE_NAME":                     types.StringValue(view.Name),
			"TABLE_TYPE":                     types.StringValue(viewTableType),
			"PARENT_TABLE_NAME":              nullStr,
			"ON_DELETE_ACTION":               nullStr,
			"ROW_DELETION_POLICY_EXPRESSION": nullStr,
		}
		if b.d == dialect.PostgreSQL {
			row["SPANNER_STATE"] = nullStr
		} else {
			row["SPANNER_STATE"] = types.StringValue(committed)
		}
		t.addRow(row)
	}

	for _, meta := range catalogTables {
		t.addRow(kv{
			"TABLE_SCHEMA":                   types.StringValue(b.fold(informationSchema)),
			"TABLE_NAME":                     types.StringValue(b.fold(meta.name)),
			"TABLE_TYPE":                     types.StringValue(viewTableType),
			"PARENT_TABLE_NAME":              nullStr,
			"ON_DELETE_ACTION":               nullStr,
			"SPANNER_STATE":                  nullStr,
			"ROW_DELETION_POLICY_EXPRESSION": nullStr,
		})
	}
}

// generationExpression returns the surfaced GENERATION_EXPRESSION for a
// generated column: the stored source text with one layer of surrounding
// parentheses stripped.
func generationExpression(c *schema.Column) string {
	expr := c.Expression.SourceText
	expr = strings.TrimPrefix(expr, "(")
	expr = strings.TrimSuffix(expr, ")")
	return expr
}

func yesNo(v bool) types.Value {
	if v {
		return types.StringValue(yes)
	}
	return types.StringValue(no)
}

func (b *synthesizer) fillColumns() {
	t := b.table(ColumnsTable)
	nullStr := types.NullValue(types.String)
	nullInt := types.NullValue(types.Int64)

	for _, table := range b.s.Tables {
		for i, col := range table.Columns {
			row := kv{
				"TABLE_SCHEMA":     types.StringValue(b.userSchema()),
				"TABLE_NAME":       types.StringValue(table.Name),
				"COLUMN_NAME":      types.StringValue(col.Name),
				"ORDINAL_POSITION": types.Int64Value(int64(i + 1)),
				"DATA_TYPE":        nullStr,
				"IS_NULLABLE":      yesNo(!col.NotNull),
				"SPANNER_STATE":    types.StringValue(committed),
			}
			if col.IsGenerated() {
				row["IS_GENERATED"] = types.StringValue(always)
				row["IS_STORED"] = types.StringValue(yes)
			} else {
				row["IS_GENERATED"] = types.StringValue(never)
				row["IS_STORED"] = nullStr
			}

			if b.d == dialect.PostgreSQL {
				row["COLUMN_DEFAULT"] = nullStr
				row["GENERATION_EXPRESSION"] = nullStr
				if col.AllowsCommitTimestamp {
					row["SPANNER_TYPE"] = types.StringValue(spannerCommitTimestamp)
					row["DATA_TYPE"] = types.StringValue(spannerCommitTimestamp)
				} else {
					row["SPANNER_TYPE"] = nullStr
				}
				if !col.Type.IsArray() && col.MaxLength != nil {
					row["CHARACTER_MAXIMUM_LENGTH"] = types.Int64Value(*col.MaxLength)
				} else {
					row["CHARACTER_MAXIMUM_LENGTH"] = nullInt
				}
				row["NUMERIC_PRECISION"] = dialect.NumericPrecision(col.Type)
				row["NUMERIC_PRECISION_RADIX"] = dialect.NumericPrecisionRadixValue(col.Type)
				row["NUMERIC_SCALE"] = dialect.NumericScale(col.Type)
			} else {
				row["SPANNER_TYPE"] = types.StringValue(b.d.TypeString(col.Type, col.MaxLength))
				if col.IsGenerated() {
					row["GENERATION_EXPRESSION"] = types.StringValue(generationExpression(col))
				} else {
					row["GENERATION_EXPRESSION"] = nullStr
				}
				if col.HasDefault() {
					row["COLUMN_DEFAULT"] = types.StringValue(col.Expression.SourceText)
				} else {
					row["COLUMN_DEFAULT"] = nullStr
				}
			}
			t.addRow(row)
		}
	}

	for _, view := range b.s.Views {
		for i, col := range view.Columns {
			row := kv{
				"TABLE_SCHEMA":          types.StringValue(b.userSchema()),
				"TABLE_NAME":            types.StringValue(view.Name),
				"COLUMN_NAME":           types.StringValue(col.Name),
				"ORDINAL_POSITION":      types.Int64Value(int64(i + 1)),
				"COLUMN_DEFAULT":        nullStr,
				"DATA_TYPE":             nullStr,
				"IS_NULLABLE":           types.StringValue(yes),
				"IS_GENERATED":          types.StringValue(never),
				"GENERATION_EXPRESSION": nullStr,
				"IS_STORED":             nullStr,
				"SPANNER_STATE":         types.StringValue(committed),
			}
			if b.d == dialect.PostgreSQL {
				row["SPANNER_TYPE"] = nullStr
				row["CHARACTER_MAXIMUM_LENGTH"] = nullInt
				row["NUMERIC_PRECISION"] = dialect.NumericPrecision(col.Type)
				row["NUMERIC_PRECISION_RADIX"] = dialect.NumericPrecisionRadixValue(col.Type)
				row["NUMERIC_SCALE"] = dialect.NumericScale(col.Type)
			} else {
				row["SPANNER_TYPE"] = types.StringValue(b.d.TypeString(col.Type, nil))
			}
			t.addRow(row)
		}
	}

	for _, meta := range catalogTables {
		for i, col := range meta.effectiveColumns(b.d) {
			colType := types.Scalar(col.kind)
			row := kv{
				"TABLE_SCHEMA":          types.StringValue(b.fold(informationSchema)),
				"TABLE_NAME":            types.StringValue(b.fold(meta.name)),
				"COLUMN_NAME":           types.StringValue(b.fold(col.name)),
				"ORDINAL_POSITION":      types.Int64Value(int64(i + 1)),
				"COLUMN_DEFAULT":        nullStr,
				"DATA_TYPE":             nullStr,
				"IS_NULLABLE":           yesNo(col.nullable),
				"IS_GENERATED":          types.StringValue(never),
				"GENERATION_EXPRESSION": nullStr,
				"IS_STORED":             nullStr,
				"SPANNER_STATE":         nullStr,
			}
			if b.d == dialect.PostgreSQL {
				row["SPANNER_TYPE"] = nullStr
				row["CHARACTER_MAXIMUM_LENGTH"] = nullInt
				row["NUMERIC_PRECISION"] = dialect.NumericPrecision(colType)
				row["NUMERIC_PRECISION_RADIX"] = dialect.NumericPrecisionRadixValue(colType)
				row["NUMERIC_SCALE"] = dialect.NumericScale(colType)
			} else {
				row["SPANNER_TYPE"] = types.StringValue(b.d.TypeString(colType, nil))
			}
			t.addRow(row)
		}
	}
}

func (b *synthesizer) fillColumnColumnUsage() {
	t := b.table(ColumnColumnUsageTable)
	for _, table := range b.s.Tables {
		for _, col := range table.Columns {
			if !col.IsGenerated() {
				continue
			}
			for _, dep := range col.Expression.Dependencies {
				t.addRow(kv{
					"TABLE_SCHEMA":     types.StringValue(b.userSchema()),
					"TABLE_NAME":       types.StringValue(table.Name),
					"COLUMN_NAME":      types.StringValue(dep),
					"DEPENDENT_COLUMN": types.StringValue(col.Name),
				})
			}
		}
	}
}

func (b *synthesizer) fillColumnOptions() {
	t := b.table(ColumnOptionsTable)
	for _, table := range b.s.Tables {
		for _, col := range table.Columns {
			if !col.AllowsCommitTimestamp {
				continue
			}
			t.addRow(kv{
				"TABLE_SCHEMA": types.StringValue(b.userSchema()),
				"TABLE_NAME":   types.StringValue(table.Name),
				"COLUMN_NAME":  types.StringValue(col.Name),
				"OPTION_NAME":  types.StringValue(allowCommitTimestamp),
				"OPTION_TYPE":  types.StringValue("BOOL"),
				"OPTION_VALUE": types.StringValue("TRUE"),
			})
		}
	}
}

func (b *synthesizer) fillViews() {
	t := b.table(ViewsTable)
	for _, view := range b.s.Views {
		t.addRow(kv{
			"TABLE_SCHEMA":    types.StringValue(b.userSchema()),
			"TABLE_NAME":      types.StringValue(view.Name),
			"VIEW_DEFINITION": types.StringValue(view.Body),
		})
	}
}
