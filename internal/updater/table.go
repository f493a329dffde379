package updater

import (
	"fmt"
	"strings"

	"github.com/vellumdb/vellum/internal/ddl"
	"github.com/vellumdb/vellum/internal/errors"
	"github.com/vellumdb/vellum/internal/schema"
)

func (a *applier) createTable(st *ddl.CreateTable) error {
	name := a.fold(st.Name)
	if a.s.NameInUse(name) {
		return errors.NewValidationError(errors.CodeDuplicateName,
			"an object named %s already exists", name)
	}

	t := &schema.Table{Name: name}
	for _, def := range st.Columns {
		col, err := a.newColumn(t, def)
		if err != nil {
			return err
		}
		if t.FindColumn(col.Name) != nil {
			return errors.NewValidationError(errors.CodeDuplicateName,
				"duplicate column %s in table %s", col.Name, name)
		}
		t.Columns = append(t.Columns, col)
	}

	pk, err := a.resolveKeyColumns(t, st.PrimaryKey)
	if err != nil {
		return err
	}
	t.PrimaryKey = pk

	// Expression dependencies are checked after all columns exist so a
	// generated column may reference columns declared later in the same
	// statement.
	if err := a.checkColumnExpressions(t); err != nil {
		return err
	}
	if err := checkGeneratedAcyclic(t); err != nil {
		return err
	}

	if st.Interleave != nil {
		parent := a.s.FindTable(a.fold(st.Interleave.Parent))
		if parent == nil {
			return errors.NewValidationError(errors.CodeDanglingReference,
				"table %s references unknown parent table %s", name, a.fold(st.Interleave.Parent))
		}
		t.Parent = parent.Name
		if st.Interleave.OnDelete == ddl.OnDeleteCascade {
			t.OnDelete = schema.OnDeleteCascade
		}
		if err := checkInterleavePrefix(t, parent); err != nil {
			return err
		}
	}

	if st.RowDeletionPolicy != "" {
		for _, ref := range ddl.ExtractColumnRefs(st.RowDeletionPolicy) {
			if t.FindColumn(a.fold(ref)) == nil {
				return errors.NewValidationError(errors.CodeUnknownColumn,
					"row deletion policy of table %s references unknown column %s", name, a.fold(ref))
			}
		}
		t.RowDeletionPolicy = st.RowDeletionPolicy
	}

	// The table joins the working schema before its constraints resolve so
	// self-referencing foreign keys see it.
	a.s.Tables = append(a.s.Tables, t)
	for _, con := range st.Constraints {
		if err := a.addConstraint(t, con); err != nil {
			return err
		}
	}

	a.events = append(a.events, hookEvent{kind: eventTableCreated, table: t})
	return nil
}

func (a *applier) alterTableAddColumn(st *ddl.AlterTableAddColumn) error {
	t, err := a.findTable(st.Table)
	if err != nil {
		return err
	}
	col, err := a.newColumn(t, st.Column)
	if err != nil {
		return err
	}
	if t.FindColumn(col.Name) != nil {
		return errors.NewValidationError(errors.CodeDuplicateName,
			"duplicate column %s in table %s", col.Name, t.Name)
	}
	t.Columns = append(t.Columns, col)
	if err := a.checkColumnExpressions(t); err != nil {
		return err
	}
	if err := checkGeneratedAcyclic(t); err != nil {
		return err
	}
	a.events = append(a.events, hookEvent{kind: eventTableAltered, table: t})
	return nil
}

func (a *applier) alterTableDropColumn(st *ddl.AlterTableDropColumn) error {
	t, err := a.findTable(st.Table)
	if err != nil {
		return err
	}
	name := a.fold(st.Column)
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return errors.NewValidationError(errors.CodeUnknownColumn,
			"column %s does not exist in table %s", name, t.Name)
	}
	if err := a.checkColumnDroppable(t, name); err != nil {
		return err
	}
	t.Columns = append(t.Columns[:idx], t.Columns[idx+1:]...)
	a.events = append(a.events, hookEvent{kind: eventTableAltered, table: t})
	return nil
}

// checkColumnDroppable rejects dropping a column something else depends
// on: the primary key, an index, a generated or default column expression,
// a check constraint, a foreign key, the table's row deletion policy, or
// an explicit change stream column list.
func (a *applier) checkColumnDroppable(t *schema.Table, name string) error {
	if t.IsKeyColumn(name) {
		return errors.NewValidationError(errors.CodeDanglingReference,
			"cannot drop key column %s of table %s", name, t.Name)
	}
	for _, idx := range t.Indexes {
		for _, k := range idx.Keys {
			if strings.EqualFold(k.Column, name) {
				return errors.NewValidationError(errors.CodeDanglingReference,
					"cannot drop column %s of table %s: index %s depends on it", name, t.Name, idx.Name)
			}
		}
		for _, s := range idx.Storing {
			if strings.EqualFold(s, name) {
				return errors.NewValidationError(errors.CodeDanglingReference,
					"cannot drop column %s of table %s: index %s stores it", name, t.Name, idx.Name)
			}
		}
	}
	for _, c := range t.Columns {
		if !c.IsGenerated() {
			continue
		}
		for _, dep := range c.Expression.Dependencies {
			if strings.EqualFold(dep, name) {
				return errors.NewValidationError(errors.CodeDanglingReference,
					"cannot drop column %s of table %s: generated column %s depends on it", name, t.Name, c.Name)
			}
		}
	}
	for _, c := range t.Columns {
		if !c.HasDefault() {
			continue
		}
		for _, ref := range a.foldAll(ddl.ExtractColumnRefs(c.Expression.SourceText)) {
			if strings.EqualFold(ref, name) {
				return errors.NewValidationError(errors.CodeDanglingReference,
					"cannot drop column %s of table %s: default of column %s depends on it", name, t.Name, c.Name)
			}
		}
	}
	if t.RowDeletionPolicy != "" {
		for _, ref := range a.foldAll(ddl.ExtractColumnRefs(t.RowDeletionPolicy)) {
			if strings.EqualFold(ref, name) {
				return errors.NewValidationError(errors.CodeDanglingReference,
					"cannot drop column %s of table %s: the row deletion policy references it", name, t.Name)
			}
		}
	}
	for _, ck := range t.CheckConstraints {
		for _, dep := range ck.Dependencies {
			if strings.EqualFold(dep, name) {
				return errors.NewValidationError(errors.CodeDanglingReference,
					"cannot drop column %s of table %s: check constraint %s depends on it", name, t.Name, ck.Name)
			}
		}
	}
	for _, fk := range t.ForeignKeys {
		for _, c := range fk.ReferencingColumns {
			if strings.EqualFold(c, name) {
				return errors.NewValidationError(errors.CodeDanglingReference,
					"cannot drop column %s of table %s: foreign key %s depends on it", name, t.Name, fk.Name)
			}
		}
	}
	for _, other := range a.s.Tables {
		for _, fk := range other.ForeignKeys {
			if !strings.EqualFold(fk.ReferencedTable, t.Name) {
				continue
			}
			for _, c := range fk.ReferencedColumns {
				if strings.EqualFold(c, name) {
					return errors.NewValidationError(errors.CodeDanglingReference,
						"cannot drop column %s of table %s: foreign key %s references it", name, t.Name, fk.Name)
				}
			}
		}
	}
	for _, cs := range a.s.ChangeStreams {
		for _, tgt := range cs.Targets {
			if !strings.EqualFold(tgt.Table, t.Name) {
				continue
			}
			for _, c := range tgt.Columns {
				if strings.EqualFold(c, name) {
					return errors.NewValidationError(errors.CodeDanglingReference,
						"cannot drop column %s of table %s: change stream %s tracks it", name, t.Name, cs.Name)
				}
			}
		}
	}
	return nil
}

func (a *applier) alterTableAddConstraint(st *ddl.AlterTableAddConstraint) error {
	t, err := a.findTable(st.Table)
	if err != nil {
		return err
	}
	if err := a.addConstraint(t, st.Constraint); err != nil {
		return err
	}
	a.events = append(a.events, hookEvent{kind: eventTableAltered, table: t})
	return nil
}

func (a *applier) dropTable(st *ddl.DropTable) error {
	t, err := a.findTable(st.Name)
	if err != nil {
		return err
	}
	if children := a.s.Children(t.Name); len(children) > 0 {
		return errors.NewValidationError(errors.CodeDanglingReference,
			"cannot drop table %s: table %s is interleaved in it", t.Name, children[0].Name)
	}
	if refs := a.s.ReferencingForeignKeys(t.Name); len(refs) > 0 {
		return errors.NewValidationError(errors.CodeDanglingReference,
			"cannot drop table %s: foreign key %s references it", t.Name, refs[0].Name)
	}
	// FOR ALL streams track every table implicitly and do not block a
	// drop; an explicit target does.
	for _, cs := range a.s.ChangeStreams {
		if cs.All {
			continue
		}
		for _, tgt := range cs.Targets {
			if strings.EqualFold(tgt.Table, t.Name) {
				return errors.NewValidationError(errors.CodeDanglingReference,
					"cannot drop table %s: change stream %s tracks it", t.Name, cs.Name)
			}
		}
	}
	a.s.RemoveTable(t.Name)
	// The table's indexes die with it.
	for _, idx := range t.Indexes {
		a.events = append(a.events, hookEvent{kind: eventIndexDropped, index: idx})
	}
	a.events = append(a.events, hookEvent{kind: eventTableDropped, table: t})
	a.dropOrphanedBackingIndexes()
	return nil
}

// dropOrphanedBackingIndexes removes managed indexes whose last foreign key
// went away with the table that declared it. A backing index may serve
// several foreign keys; it survives until none remain.
func (a *applier) dropOrphanedBackingIndexes() {
	referenced := make(map[string]bool)
	for _, t := range a.s.Tables {
		for _, fk := range t.ForeignKeys {
			if fk.ReferencedIndex != "" {
				referenced[fk.ReferencedIndex] = true
			}
		}
	}
	for _, t := range a.s.Tables {
		var orphans []*schema.Index
		for _, idx := range t.Indexes {
			if idx.Managed && !referenced[idx.Name] {
				orphans = append(orphans, idx)
			}
		}
		for _, idx := range orphans {
			t.RemoveIndex(idx.Name)
			a.events = append(a.events, hookEvent{kind: eventIndexDropped, index: idx})
		}
	}
}

// findTable resolves an ALTER/DROP target table.
func (a *applier) findTable(name string) (*schema.Table, error) {
	folded := a.fold(name)
	t := a.s.FindTable(folded)
	if t == nil {
		return nil, errors.NewValidationError(errors.CodeDanglingReference,
			"table %s does not exist", folded)
	}
	return t, nil
}

// newColumn converts a column declaration into the model, folding names and
// attaching the expression attribute. Dependency existence is checked
// separately once the full column set is known.
func (a *applier) newColumn(t *schema.Table, def ddl.ColumnDef) (*schema.Column, error) {
	col := &schema.Column{
		Name:                  a.fold(def.Name),
		Type:                  def.Type.Type,
		NotNull:               def.NotNull,
		MaxLength:             def.Type.MaxLength,
		AllowsCommitTimestamp: def.AllowCommitTimestamp,
	}
	if def.GeneratedExpr != "" && def.HasDefault {
		return nil, errors.NewValidationError(errors.CodeDuplicateName,
			"column %s of table %s cannot be both generated and defaulted", col.Name, t.Name)
	}
	if def.GeneratedExpr != "" {
		if !def.GeneratedStored {
			return nil, errors.NewAnalysisError(fmt.Errorf(
				"non-stored generated columns are not supported (column %s of table %s)", col.Name, t.Name))
		}
		col.Expression = &schema.ColumnExpression{
			Kind:         schema.ExpressionGenerated,
			SourceText:   def.GeneratedExpr,
			Stored:       true,
			Dependencies: a.foldAll(ddl.ExtractColumnRefs(def.GeneratedExpr)),
		}
	}
	if def.HasDefault {
		col.Expression = &schema.ColumnExpression{
			Kind:       schema.ExpressionDefault,
			SourceText: def.DefaultExpr,
		}
	}
	return col, nil
}

// checkColumnExpressions verifies that every generated or default
// expression references only columns of the owning table.
func (a *applier) checkColumnExpressions(t *schema.Table) error {
	for _, c := range t.Columns {
		if c.Expression == nil {
			continue
		}
		refs := c.Expression.Dependencies
		if c.Expression.Kind == schema.ExpressionDefault {
			refs = a.foldAll(ddl.ExtractColumnRefs(c.Expression.SourceText))
		}
		for _, dep := range refs {
			if t.FindColumn(dep) == nil {
				return errors.NewValidationError(errors.CodeUnknownColumn,
					"expression of column %s references unknown column %s in table %s", c.Name, dep, t.Name)
			}
		}
	}
	return nil
}

// checkGeneratedAcyclic rejects cycles among generated column
// dependencies, traversing index references into the column array.
func checkGeneratedAcyclic(t *schema.Table) error {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make([]int, len(t.Columns))

	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case inStack:
			return errors.NewValidationError(errors.CodeCyclicGeneratedColumn,
				"generated column %s of table %s is part of a dependency cycle", t.Columns[i].Name, t.Name)
		case done:
			return nil
		}
		state[i] = inStack
		c := t.Columns[i]
		if c.IsGenerated() {
			for _, dep := range c.Expression.Dependencies {
				j := t.ColumnIndex(dep)
				if j < 0 {
					continue // existence already validated
				}
				if err := visit(j); err != nil {
					return err
				}
			}
		}
		state[i] = done
		return nil
	}

	for i := range t.Columns {
		if err := visit(i); err != nil {
			return err
		}
	}
	return nil
}

// resolveKeyColumns validates a key column list against the table.
func (a *applier) resolveKeyColumns(t *schema.Table, parts []ddl.KeyPart) ([]schema.KeyColumn, error) {
	var keys []schema.KeyColumn
	for _, p := range parts {
		name := a.fold(p.Column)
		if t.FindColumn(name) == nil {
			return nil, errors.NewValidationError(errors.CodeUnknownColumn,
				"key column %s does not exist in table %s", name, t.Name)
		}
		for _, k := range keys {
			if strings.EqualFold(k.Column, name) {
				return nil, errors.NewValidationError(errors.CodeDuplicateName,
					"duplicate key column %s in table %s", name, t.Name)
			}
		}
		keys = append(keys, schema.KeyColumn{Column: name, Desc: p.Desc})
	}
	return keys, nil
}

// checkInterleavePrefix enforces that an interleaved child's primary key
// begins with the parent's full primary key: same columns, order,
// directions, and types.
func checkInterleavePrefix(child, parent *schema.Table) error {
	if len(child.PrimaryKey) < len(parent.PrimaryKey) {
		return errors.NewValidationError(errors.CodeInterleavingKeyMismatch,
			"primary key of table %s must begin with the full primary key of parent %s", child.Name, parent.Name)
	}
	for i, pk := range parent.PrimaryKey {
		ck := child.PrimaryKey[i]
		if !strings.EqualFold(ck.Column, pk.Column) || ck.Desc != pk.Desc {
			return errors.NewValidationError(errors.CodeInterleavingKeyMismatch,
				"key column %d of table %s must match parent %s key column %s", i+1, child.Name, parent.Name, pk.Column)
		}
		cc, pc := child.FindColumn(ck.Column), parent.FindColumn(pk.Column)
		if cc == nil || pc == nil || !cc.Type.Equal(pc.Type) {
			return errors.NewValidationError(errors.CodeInterleavingKeyMismatch,
				"key column %s of table %s must have the same type as in parent %s", ck.Column, child.Name, parent.Name)
		}
	}
	return nil
}

// addConstraint resolves a table-level FOREIGN KEY or CHECK clause.
func (a *applier) addConstraint(t *schema.Table, con ddl.TableConstraint) error {
	switch {
	case con.ForeignKey != nil:
		return a.addForeignKey(t, a.fold(con.Name), con.ForeignKey)
	case con.Check != nil:
		return a.addCheckConstraint(t, a.fold(con.Name), con.Check.Expr)
	default:
		return errors.NewInternalError("constraint with no body", nil)
	}
}

func (a *applier) constraintNameInUse(name string) bool {
	for _, t := range a.s.Tables {
		for _, fk := range t.ForeignKeys {
			if strings.EqualFold(fk.Name, name) {
				return true
			}
		}
		for _, ck := range t.CheckConstraints {
			if strings.EqualFold(ck.Name, name) {
				return true
			}
		}
	}
	return false
}

func (a *applier) addCheckConstraint(t *schema.Table, name, expr string) error {
	if name == "" {
		name = fmt.Sprintf("CK_%s_%d", t.Name, len(t.CheckConstraints)+1)
	}
	if a.constraintNameInUse(name) {
		return errors.NewValidationError(errors.CodeDuplicateName,
			"a constraint named %s already exists", name)
	}
	deps := a.foldAll(ddl.ExtractColumnRefs(expr))
	for _, dep := range deps {
		if t.FindColumn(dep) == nil {
			return errors.NewValidationError(errors.CodeUnknownColumn,
				"check constraint %s references unknown column %s in table %s", name, dep, t.Name)
		}
	}
	t.CheckConstraints = append(t.CheckConstraints, &schema.CheckConstraint{
		Name:         name,
		Expression:   expr,
		Dependencies: deps,
	})
	return nil
}
