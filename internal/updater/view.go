package updater

import (
	"fmt"

	"github.com/vellumdb/vellum/internal/ddl"
	"github.com/vellumdb/vellum/internal/errors"
	"github.com/vellumdb/vellum/internal/schema"
)

// createView resolves the view body against the working schema. The body is
// analyzed only far enough to type the result columns; anything beyond a
// simple single-table projection surfaces as an analysis error.
func (a *applier) createView(st *ddl.CreateView) error {
	name := a.fold(st.Name)
	existing := a.s.FindView(name)
	if a.s.NameInUse(name) && (existing == nil || !st.OrReplace) {
		return errors.NewValidationError(errors.CodeDuplicateName,
			"an object named %s already exists", name)
	}

	items, tableName, err := ddl.ParseSimpleSelect(st.Body)
	if err != nil {
		return errors.NewAnalysisError(err)
	}
	t := a.s.FindTable(a.fold(tableName))
	if t == nil {
		return errors.NewAnalysisError(fmt.Errorf("table %s not found", a.fold(tableName)))
	}
	var cols []schema.ViewColumn
	for _, item := range items {
		src := t.FindColumn(a.fold(item.Column))
		if src == nil {
			return errors.NewAnalysisError(fmt.Errorf(
				"column %s not found in table %s", a.fold(item.Column), t.Name))
		}
		cols = append(cols, schema.ViewColumn{Name: a.fold(item.Name()), Type: src.Type})
	}

	v := &schema.View{Name: name, Columns: cols, Body: st.Body}
	if existing != nil {
		a.s.RemoveView(name)
	}
	a.s.Views = append(a.s.Views, v)
	return nil
}

func (a *applier) dropView(st *ddl.DropView) error {
	name := a.fold(st.Name)
	if a.s.FindView(name) == nil {
		return errors.NewValidationError(errors.CodeDanglingReference,
			"view %s does not exist", name)
	}
	a.s.RemoveView(name)
	return nil
}
