package updater

import (
	"strings"

	"github.com/vellumdb/vellum/internal/ddl"
	"github.com/vellumdb/vellum/internal/errors"
	"github.com/vellumdb/vellum/internal/schema"
)

func (a *applier) createChangeStream(st *ddl.CreateChangeStream) error {
	name := a.fold(st.Name)
	if a.s.FindChangeStream(name) != nil {
		return errors.NewValidationError(errors.CodeDuplicateName,
			"a change stream named %s already exists", name)
	}
	cs := &schema.ChangeStream{Name: name}
	if err := a.resolveForClause(cs, st.For); err != nil {
		return err
	}
	if err := a.checkStreamQuota(cs, ""); err != nil {
		return err
	}
	a.s.ChangeStreams = append(a.s.ChangeStreams, cs)
	return nil
}

// alterChangeStream replaces the stream's tracking set. Quota counting
// excludes the stream's own prior tracking.
func (a *applier) alterChangeStream(st *ddl.AlterChangeStream) error {
	name := a.fold(st.Name)
	cs := a.s.FindChangeStream(name)
	if cs == nil {
		return errors.NewValidationError(errors.CodeDanglingReference,
			"change stream %s does not exist", name)
	}
	replacement := &schema.ChangeStream{Name: name}
	if err := a.resolveForClause(replacement, st.For); err != nil {
		return err
	}
	if err := a.checkStreamQuota(replacement, name); err != nil {
		return err
	}
	cs.All = replacement.All
	cs.Targets = replacement.Targets
	return nil
}

func (a *applier) dropChangeStream(st *ddl.DropChangeStream) error {
	name := a.fold(st.Name)
	if a.s.FindChangeStream(name) == nil {
		return errors.NewValidationError(errors.CodeDanglingReference,
			"change stream %s does not exist", name)
	}
	a.s.RemoveChangeStream(name)
	return nil
}

// resolveForClause validates a FOR clause and fills in the stream's
// tracking set. Primary key columns are implicitly tracked and must never
// be listed explicitly.
func (a *applier) resolveForClause(cs *schema.ChangeStream, fc ddl.ForClause) error {
	if fc.All {
		cs.All = true
		return nil
	}
	for _, tgt := range fc.Targets {
		tableName := a.fold(tgt.Table)
		for _, seen := range cs.Targets {
			if strings.EqualFold(seen.Table, tableName) {
				return errors.NewValidationError(errors.CodeDuplicateTrackedObject,
					"change stream %s lists table %s more than once", cs.Name, tableName)
			}
		}
		t := a.s.FindTable(tableName)
		if t == nil {
			if a.s.FindView(tableName) != nil {
				return errors.NewValidationError(errors.CodeUnknownTrackedObject,
					"change stream %s cannot track %s: views are not trackable", cs.Name, tableName)
			}
			return errors.NewValidationError(errors.CodeUnknownTrackedObject,
				"change stream %s tracks unknown table %s", cs.Name, tableName)
		}

		target := schema.StreamTarget{Table: t.Name}
		if !tgt.HasColumns {
			target.AllColumns = true
		} else {
			for _, c := range tgt.Columns {
				col := a.fold(c)
				for _, seen := range target.Columns {
					if strings.EqualFold(seen, col) {
						return errors.NewValidationError(errors.CodeDuplicateTrackedObject,
							"change stream %s lists column %s of table %s more than once", cs.Name, col, t.Name)
					}
				}
				if t.FindColumn(col) == nil {
					return errors.NewValidationError(errors.CodeUnknownColumn,
						"change stream %s tracks unknown column %s of table %s", cs.Name, col, t.Name)
				}
				if t.IsKeyColumn(col) {
					return errors.NewValidationError(errors.CodePrimaryKeyColumnNotAllowed,
						"change stream %s cannot list column %s: it is part of the primary key of table %s", cs.Name, col, t.Name)
				}
				target.Columns = append(target.Columns, col)
			}
		}
		cs.Targets = append(cs.Targets, target)
	}
	return nil
}

// checkStreamQuota rejects the candidate stream if installing it would
// push any table, or any (table, column) pair, past the tracking quota.
// FOR ALL counts as tracking every current table and column. exclude names
// a stream whose existing tracking is ignored, for ALTER.
func (a *applier) checkStreamQuota(candidate *schema.ChangeStream, exclude string) error {
	others := make([]*schema.ChangeStream, 0, len(a.s.ChangeStreams))
	for _, cs := range a.s.ChangeStreams {
		if exclude != "" && strings.EqualFold(cs.Name, exclude) {
			continue
		}
		others = append(others, cs)
	}

	var tables []*schema.Table
	if candidate.All {
		tables = a.s.Tables
	} else {
		for _, tgt := range candidate.Targets {
			if t := a.s.FindTable(tgt.Table); t != nil {
				tables = append(tables, t)
			}
		}
	}

	for _, t := range tables {
		count := 1
		for _, cs := range others {
			if cs.Tracks(t.Name) {
				count++
			}
		}
		if count > a.quota {
			return errors.NewValidationError(errors.CodeChangeStreamQuotaExceeded,
				"table %s would be tracked by %d change streams; the limit is %d", t.Name, count, a.quota)
		}
		for _, col := range a.candidateColumns(candidate, t) {
			count := 1
			for _, cs := range others {
				if cs.TracksColumn(t.Name, col) {
					count++
				}
			}
			if count > a.quota {
				return errors.NewValidationError(errors.CodeChangeStreamQuotaExceeded,
					"column %s of table %s would be tracked by %d change streams; the limit is %d", col, t.Name, count, a.quota)
			}
		}
	}
	return nil
}

// candidateColumns returns the non-key columns of t the candidate stream
// would track.
func (a *applier) candidateColumns(cs *schema.ChangeStream, t *schema.Table) []string {
	allNonKey := func() []string {
		var cols []string
		for _, c := range t.Columns {
			if !t.IsKeyColumn(c.Name) {
				cols = append(cols, c.Name)
			}
		}
		return cols
	}
	if cs.All {
		return allNonKey()
	}
	for _, tgt := range cs.Targets {
		if !strings.EqualFold(tgt.Table, t.Name) {
			continue
		}
		if tgt.AllColumns {
			return allNonKey()
		}
		return tgt.Columns
	}
	return nil
}
