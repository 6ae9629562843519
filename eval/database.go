package eval

import (
	"strings"

	"github.com/calcmesh/calcmesh/ast"
	"github.com/calcmesh/calcmesh/model"
)

// resolveFieldColumn resolves a DSUM/DGET field argument to a 0-based
// column index within table, either a 1-based numeric index or a
// case-insensitive header match against table.rows[0] (spec §4.6
// Database archetype).
func resolveFieldColumn(table lookupTable, field model.Value) (int, bool) {
	if len(table.rows) == 0 {
		return 0, false
	}
	header := table.rows[0]
	if field.Kind == model.KindNumber {
		col := int(field.Number) - 1
		if col < 0 || col >= len(header) {
			return 0, false
		}
		return col, true
	}
	if field.Kind != model.KindString {
		return 0, false
	}
	for i, h := range header {
		if h.Kind == model.KindString && strings.EqualFold(h.Text, field.Text) {
			return i, true
		}
	}
	return 0, false
}

// matchesCriteria implements spec §4.6's "row-major OR across rows, AND
// across columns": a data row matches if any criteria row's every
// populated cell matches the data row's same-header column.
func matchesCriteria(data, criteria lookupTable) []int {
	if len(data.rows) == 0 || len(criteria.rows) < 2 {
		return nil
	}
	header := data.rows[0]
	critHeader := criteria.rows[0]

	var matched []int
	for rowIdx, row := range data.rows[1:] {
		ok := false
		for _, critRow := range criteria.rows[1:] {
			rowMatches := true
			for ci, critCell := range critRow {
				if critCell.IsEmpty() {
					continue
				}
				colName := ""
				if ci < len(critHeader) && critHeader[ci].Kind == model.KindString {
					colName = critHeader[ci].Text
				}
				col := -1
				for hi, h := range header {
					if h.Kind == model.KindString && strings.EqualFold(h.Text, colName) {
						col = hi
						break
					}
				}
				if col < 0 || col >= len(row) {
					rowMatches = false
					break
				}
				if !parseCriterion(critCell).matches(row[col]) {
					rowMatches = false
					break
				}
			}
			if rowMatches {
				ok = true
				break
			}
		}
		if ok {
			matched = append(matched, rowIdx+1) // +1 to skip header in data.rows
		}
	}
	return matched
}

func fnDsum(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) != 3 {
		return model.ErrorValue(model.ErrValue)
	}
	data, ok := e.resolveTable(args[0], owner)
	if !ok {
		return model.ErrorValue(model.ErrValue)
	}
	field := e.evalNode(args[1], owner)
	if field.IsError() {
		return field
	}
	criteria, ok := e.resolveTable(args[2], owner)
	if !ok {
		return model.ErrorValue(model.ErrValue)
	}
	col, ok := resolveFieldColumn(data, field)
	if !ok {
		return model.ErrorValue(model.ErrValue)
	}
	total := 0.0
	for _, rowIdx := range matchesCriteria(data, criteria) {
		row := data.rows[rowIdx]
		if col < len(row) && row[col].Kind == model.KindNumber {
			total += row[col].Number
		}
	}
	return model.NumberValue(total)
}

func fnDget(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) != 3 {
		return model.ErrorValue(model.ErrValue)
	}
	data, ok := e.resolveTable(args[0], owner)
	if !ok {
		return model.ErrorValue(model.ErrValue)
	}
	field := e.evalNode(args[1], owner)
	if field.IsError() {
		return field
	}
	criteria, ok := e.resolveTable(args[2], owner)
	if !ok {
		return model.ErrorValue(model.ErrValue)
	}
	col, ok := resolveFieldColumn(data, field)
	if !ok {
		return model.ErrorValue(model.ErrValue)
	}
	matches := matchesCriteria(data, criteria)
	switch len(matches) {
	case 0:
		return model.ErrorValue(model.ErrValue)
	case 1:
		row := data.rows[matches[0]]
		if col >= len(row) {
			return model.ErrorValue(model.ErrValue)
		}
		return row[col]
	default:
		return model.ErrorValue(model.ErrNum)
	}
}
