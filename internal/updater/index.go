package updater

import (
	"fmt"
	"strings"

	"github.com/vellumdb/vellum/internal/ddl"
	"github.com/vellumdb/vellum/internal/errors"
	"github.com/vellumdb/vellum/internal/schema"
)

func (a *applier) createIndex(st *ddl.CreateIndex) error {
	t, err := a.findTable(st.Table)
	if err != nil {
		return err
	}
	name := a.fold(st.Name)
	// Index names share one namespace with tables and views.
	if a.s.NameInUse(name) {
		return errors.NewValidationError(errors.CodeDuplicateName,
			"an object named %s already exists", name)
	}

	idx := &schema.Index{
		Name:         name,
		Table:        t.Name,
		Unique:       st.Unique,
		NullFiltered: st.NullFiltered,
	}
	keys, err := a.resolveKeyColumns(t, st.Keys)
	if err != nil {
		return err
	}
	idx.Keys = keys
	for _, s := range st.Storing {
		folded := a.fold(s)
		if t.FindColumn(folded) == nil {
			return errors.NewValidationError(errors.CodeUnknownColumn,
				"stored column %s does not exist in table %s", folded, t.Name)
		}
		for _, k := range idx.Keys {
			if strings.EqualFold(k.Column, folded) {
				return errors.NewValidationError(errors.CodeDuplicateName,
					"column %s of index %s cannot be both a key and a stored column", folded, name)
			}
		}
		idx.Storing = append(idx.Storing, folded)
	}

	t.Indexes = append(t.Indexes, idx)
	a.events = append(a.events, hookEvent{kind: eventIndexCreated, index: idx})
	return nil
}

func (a *applier) dropIndex(st *ddl.DropIndex) error {
	name := a.fold(st.Name)
	t, idx := a.s.FindIndex(name)
	if idx == nil {
		return errors.NewValidationError(errors.CodeDanglingReference,
			"index %s does not exist", name)
	}
	if idx.Managed {
		return errors.NewValidationError(errors.CodeDanglingReference,
			"cannot drop index %s: it backs a foreign key", name)
	}
	for _, other := range a.s.Tables {
		for _, fk := range other.ForeignKeys {
			if strings.EqualFold(fk.ReferencedIndex, name) {
				return errors.NewValidationError(errors.CodeDanglingReference,
					"cannot drop index %s: foreign key %s depends on it", name, fk.Name)
			}
		}
	}
	t.RemoveIndex(name)
	a.events = append(a.events, hookEvent{kind: eventIndexDropped, index: idx})
	return nil
}

// addForeignKey resolves a FOREIGN KEY clause on t. When the referenced
// columns are not the referenced table's primary key and no existing unique
// index covers them, a managed unique index is synthesized to back the
// constraint.
func (a *applier) addForeignKey(t *schema.Table, name string, def *ddl.ForeignKeyDef) error {
	refTable := a.s.FindTable(a.fold(def.ReferencedTable))
	if refTable == nil {
		return errors.NewValidationError(errors.CodeDanglingReference,
			"foreign key on table %s references unknown table %s", t.Name, a.fold(def.ReferencedTable))
	}
	if name == "" {
		name = fmt.Sprintf("FK_%s_%s_%d", t.Name, refTable.Name, len(t.ForeignKeys)+1)
	}
	if a.constraintNameInUse(name) {
		return errors.NewValidationError(errors.CodeDuplicateName,
			"a constraint named %s already exists", name)
	}
	if len(def.Columns) != len(def.ReferencedColumns) {
		return errors.NewValidationError(errors.CodeDanglingReference,
			"foreign key %s: referencing and referenced column counts differ", name)
	}

	referencing := a.foldAll(def.Columns)
	for _, c := range referencing {
		if t.FindColumn(c) == nil {
			return errors.NewValidationError(errors.CodeUnknownColumn,
				"foreign key %s references unknown column %s in table %s", name, c, t.Name)
		}
	}
	referenced := a.foldAll(def.ReferencedColumns)
	for _, c := range referenced {
		if refTable.FindColumn(c) == nil {
			return errors.NewValidationError(errors.CodeUnknownColumn,
				"foreign key %s references unknown column %s in table %s", name, c, refTable.Name)
		}
	}

	fk := &schema.ForeignKey{
		Name:               name,
		ReferencingColumns: referencing,
		ReferencedTable:    refTable.Name,
		ReferencedColumns:  referenced,
	}
	if !columnsMatchPrimaryKey(refTable, referenced) {
		if idx := findUniqueIndexOn(refTable, referenced); idx != nil {
			fk.ReferencedIndex = idx.Name
		} else {
			backing := a.synthesizeBackingIndex(refTable, referenced)
			fk.ReferencedIndex = backing.Name
		}
	}
	t.ForeignKeys = append(t.ForeignKeys, fk)
	return nil
}

// columnsMatchPrimaryKey reports whether cols are exactly the table's
// primary key columns, in order.
func columnsMatchPrimaryKey(t *schema.Table, cols []string) bool {
	if len(cols) != len(t.PrimaryKey) {
		return false
	}
	for i, k := range t.PrimaryKey {
		if !strings.EqualFold(k.Column, cols[i]) {
			return false
		}
	}
	return true
}

// findUniqueIndexOn returns a unique index whose key columns are exactly
// cols, in order, or nil.
func findUniqueIndexOn(t *schema.Table, cols []string) *schema.Index {
	for _, idx := range t.Indexes {
		if !idx.Unique || len(idx.Keys) != len(cols) {
			continue
		}
		match := true
		for i, k := range idx.Keys {
			if !strings.EqualFold(k.Column, cols[i]) {
				match = false
				break
			}
		}
		if match {
			return idx
		}
	}
	return nil
}

// synthesizeBackingIndex creates a managed unique index on the referenced
// columns and installs it on the referenced table.
func (a *applier) synthesizeBackingIndex(t *schema.Table, cols []string) *schema.Index {
	base := fmt.Sprintf("IDX_%s_%s_U", t.Name, strings.Join(cols, "_"))
	name := base
	for i := 2; a.s.NameInUse(name); i++ {
		name = fmt.Sprintf("%s_%d", base, i)
	}
	keys := make([]schema.KeyColumn, len(cols))
	for i, c := range cols {
		keys[i] = schema.KeyColumn{Column: c}
	}
	idx := &schema.Index{
		Name:         name,
		Table:        t.Name,
		Keys:         keys,
		Unique:       true,
		NullFiltered: true,
		Managed:      true,
	}
	t.Indexes = append(t.Indexes, idx)
	a.events = append(a.events, hookEvent{kind: eventIndexCreated, index: idx})
	return idx
}
