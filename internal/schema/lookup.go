package schema

import "strings"

// Name lookups compare case-insensitively; identifiers are stored
// dialect-folded by the resolver, and both dialects treat names that differ
// only in case as the same object.

// FindTable returns the table with the given name, or nil.
func (s *Schema) FindTable(name string) *Table {
	for _, t := range s.Tables {
		if strings.EqualFold(t.Name, name) {
			return t
		}
	}
	return nil
}

// FindView returns the view with the given name, or nil.
func (s *Schema) FindView(name string) *View {
	for _, v := range s.Views {
		if strings.EqualFold(v.Name, name) {
			return v
		}
	}
	return nil
}

// FindChangeStream returns the change stream with the given name, or nil.
func (s *Schema) FindChangeStream(name string) *ChangeStream {
	for _, cs := range s.ChangeStreams {
		if strings.EqualFold(cs.Name, name) {
			return cs
		}
	}
	return nil
}

// FindIndex searches every table for an index with the given name. Index
// names share one catalog-wide namespace.
func (s *Schema) FindIndex(name string) (*Table, *Index) {
	for _, t := range s.Tables {
		for _, idx := range t.Indexes {
			if strings.EqualFold(idx.Name, name) {
				return t, idx
			}
		}
	}
	return nil, nil
}

// NameInUse reports whether any table, view, or index already uses the
// given name.
func (s *Schema) NameInUse(name string) bool {
	if s.FindTable(name) != nil || s.FindView(name) != nil {
		return true
	}
	_, idx := s.FindIndex(name)
	return idx != nil
}

// RemoveTable deletes the named table from the schema. Call only on a
// working copy.
func (s *Schema) RemoveTable(name string) {
	for i, t := range s.Tables {
		if strings.EqualFold(t.Name, name) {
			s.Tables = append(s.Tables[:i], s.Tables[i+1:]...)
			return
		}
	}
}

// RemoveView deletes the named view from the schema. Call only on a
// working copy.
func (s *Schema) RemoveView(name string) {
	for i, v := range s.Views {
		if strings.EqualFold(v.Name, name) {
			s.Views = append(s.Views[:i], s.Views[i+1:]...)
			return
		}
	}
}

// RemoveChangeStream deletes the named change stream. Call only on a
// working copy.
func (s *Schema) RemoveChangeStream(name string) {
	for i, cs := range s.ChangeStreams {
		if strings.EqualFold(cs.Name, name) {
			s.ChangeStreams = append(s.ChangeStreams[:i], s.ChangeStreams[i+1:]...)
			return
		}
	}
}

// FindColumn returns the column with the given name, or nil.
func (t *Table) FindColumn(name string) *Column {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return i
		}
	}
	return -1
}

// IsKeyColumn reports whether the named column is part of the primary key.
func (t *Table) IsKeyColumn(name string) bool {
	for _, k := range t.PrimaryKey {
		if strings.EqualFold(k.Column, name) {
			return true
		}
	}
	return false
}

// FindIndex returns the table-local index with the given name, or nil.
func (t *Table) FindIndex(name string) *Index {
	for _, idx := range t.Indexes {
		if strings.EqualFold(idx.Name, name) {
			return idx
		}
	}
	return nil
}

// RemoveIndex deletes the named index from the table. Call only on a
// working copy.
func (t *Table) RemoveIndex(name string) {
	for i, idx := range t.Indexes {
		if strings.EqualFold(idx.Name, name) {
			t.Indexes = append(t.Indexes[:i], t.Indexes[i+1:]...)
			return
		}
	}
}

// Children returns the tables interleaved directly in the given parent.
func (s *Schema) Children(parent string) []*Table {
	var children []*Table
	for _, t := range s.Tables {
		if t.Parent != "" && strings.EqualFold(t.Parent, parent) {
			children = append(children, t)
		}
	}
	return children
}

// ReferencingForeignKeys returns foreign keys on other tables that
// reference the given table.
func (s *Schema) ReferencingForeignKeys(table string) []*ForeignKey {
	var refs []*ForeignKey
	for _, t := range s.Tables {
		if strings.EqualFold(t.Name, table) {
			continue
		}
		for _, fk := range t.ForeignKeys {
			if strings.EqualFold(fk.ReferencedTable, table) {
				refs = append(refs, fk)
			}
		}
	}
	return refs
}

// StreamsTracking returns the change streams that track the given table,
// counting FOR ALL streams as tracking every table.
func (s *Schema) StreamsTracking(table string) []*ChangeStream {
	var streams []*ChangeStream
	for _, cs := range s.ChangeStreams {
		if cs.Tracks(table) {
			streams = append(streams, cs)
		}
	}
	return streams
}

// Tracks reports whether the stream tracks the given table.
func (cs *ChangeStream) Tracks(table string) bool {
	if cs.All {
		return true
	}
	for _, tgt := range cs.Targets {
		if strings.EqualFold(tgt.Table, table) {
			return true
		}
	}
	return false
}

// TracksColumn reports whether the stream tracks the given non-key column.
// FOR ALL streams and whole-table targets track every non-key column of the
// tables they cover.
func (cs *ChangeStream) TracksColumn(table, column string) bool {
	if cs.All {
		return true
	}
	for _, tgt := range cs.Targets {
		if !strings.EqualFold(tgt.Table, table) {
			continue
		}
		if tgt.AllColumns {
			return true
		}
		for _, c := range tgt.Columns {
			if strings.EqualFold(c, column) {
				return true
			}
		}
	}
	return false
}
