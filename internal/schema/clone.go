package schema

// Clone returns a deep copy of the schema. The updater clones the committed
// schema into a working copy, folds validated deltas into it, and publishes
// it in one atomic swap; schemas are small and commits rare, so full copy
// beats structural sharing in complexity.
func (s *Schema) Clone() *Schema {
	cp := &Schema{
		CatalogName: s.CatalogName,
		Dialect:     s.Dialect,
		Version:     s.Version,
	}
	if s.Tables != nil {
		cp.Tables = make([]*Table, len(s.Tables))
		for i, t := range s.Tables {
			cp.Tables[i] = t.clone()
		}
	}
	if s.Views != nil {
		cp.Views = make([]*View, len(s.Views))
		for i, v := range s.Views {
			cp.Views[i] = v.clone()
		}
	}
	if s.ChangeStreams != nil {
		cp.ChangeStreams = make([]*ChangeStream, len(s.ChangeStreams))
		for i, cs := range s.ChangeStreams {
			cp.ChangeStreams[i] = cs.clone()
		}
	}
	return cp
}

func (t *Table) clone() *Table {
	cp := &Table{
		Name:              t.Name,
		Parent:            t.Parent,
		OnDelete:          t.OnDelete,
		RowDeletionPolicy: t.RowDeletionPolicy,
		PrimaryKey:        append([]KeyColumn(nil), t.PrimaryKey...),
	}
	cp.Columns = make([]*Column, len(t.Columns))
	for i, c := range t.Columns {
		cp.Columns[i] = c.clone()
	}
	if t.Indexes != nil {
		cp.Indexes = make([]*Index, len(t.Indexes))
		for i, idx := range t.Indexes {
			cp.Indexes[i] = idx.clone()
		}
	}
	if t.ForeignKeys != nil {
		cp.ForeignKeys = make([]*ForeignKey, len(t.ForeignKeys))
		for i, fk := range t.ForeignKeys {
			cp.ForeignKeys[i] = fk.clone()
		}
	}
	if t.CheckConstraints != nil {
		cp.CheckConstraints = make([]*CheckConstraint, len(t.CheckConstraints))
		for i, cc := range t.CheckConstraints {
			cp.CheckConstraints[i] = cc.clone()
		}
	}
	return cp
}

func (c *Column) clone() *Column {
	cp := *c
	if c.MaxLength != nil {
		n := *c.MaxLength
		cp.MaxLength = &n
	}
	if c.Expression != nil {
		expr := *c.Expression
		expr.Dependencies = append([]string(nil), c.Expression.Dependencies...)
		cp.Expression = &expr
	}
	return &cp
}

func (idx *Index) clone() *Index {
	cp := *idx
	cp.Keys = append([]KeyColumn(nil), idx.Keys...)
	cp.Storing = append([]string(nil), idx.Storing...)
	return &cp
}

func (fk *ForeignKey) clone() *ForeignKey {
	cp := *fk
	cp.ReferencingColumns = append([]string(nil), fk.ReferencingColumns...)
	cp.ReferencedColumns = append([]string(nil), fk.ReferencedColumns...)
	return &cp
}

func (cc *CheckConstraint) clone() *CheckConstraint {
	cp := *cc
	cp.Dependencies = append([]string(nil), cc.Dependencies...)
	return &cp
}

func (v *View) clone() *View {
	cp := *v
	cp.Columns = append([]ViewColumn(nil), v.Columns...)
	return &cp
}

func (cs *ChangeStream) clone() *ChangeStream {
	cp := *cs
	if cs.Targets != nil {
		cp.Targets = make([]StreamTarget, len(cs.Targets))
		for i, tgt := range cs.Targets {
			cp.Targets[i] = tgt
			cp.Targets[i].Columns = append([]string(nil), tgt.Columns...)
		}
	}
	return &cp
}
