package eval

import (
	"github.com/calcmesh/calcmesh/ast"
	"github.com/calcmesh/calcmesh/model"
)

// lookupTable is a resolved rectangular range used by VLOOKUP/INDEX,
// row-major so column 0 is the lookup column.
type lookupTable struct {
	rows [][]model.Value
}

func (e *Evaluator) resolveTable(n ast.Node, owner model.CellAddress) (lookupTable, bool) {
	r, ok := n.(*ast.Range)
	if !ok {
		return lookupTable{}, false
	}
	cr, ok := e.resolveRange(*r, owner)
	if !ok {
		return lookupTable{}, false
	}
	rows := make([][]model.Value, 0, cr.RowCount())
	for row := cr.StartRow; row <= cr.EndRow; row++ {
		rowVals := make([]model.Value, 0, cr.ColCount())
		for col := cr.StartCol; col <= cr.EndCol; col++ {
			cell := cr.Sheet.Cell(row, col)
			if cell == nil {
				rowVals = append(rowVals, model.Empty())
			} else if cell.IsFormula() {
				rowVals = append(rowVals, e.EvaluateCell(model.CellAddress{SheetID: cr.Sheet.ID, Row: row, Column: col}))
			} else {
				rowVals = append(rowVals, cell.Literal)
			}
		}
		rows = append(rows, rowVals)
	}
	return lookupTable{rows: rows}, true
}

// fnVlookup implements the exact-match and exact-or-smaller (approximate,
// sorted-ascending) match modes of spec §4.6's Lookups archetype; binary
// search modes and wildcard matching are not implemented here or in
// MATCH.
func fnVlookup(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) < 3 {
		return model.ErrorValue(model.ErrValue)
	}
	key := e.evalNode(args[0], owner)
	if key.IsError() {
		return key
	}
	table, ok := e.resolveTable(args[1], owner)
	if !ok {
		return model.ErrorValue(model.ErrValue)
	}
	colIdx, errv := numArg(e, args[2], owner)
	if errv != nil {
		return *errv
	}
	col := int(colIdx) - 1
	if col < 0 {
		return model.ErrorValue(model.ErrValue)
	}
	exact := true
	if len(args) >= 4 {
		b, errv := toBool(e.evalNode(args[3], owner))
		if errv != nil {
			return *errv
		}
		exact = b
	}

	if exact {
		for _, row := range table.rows {
			if len(row) == 0 {
				continue
			}
			if compareValues(row[0], key) == 0 {
				if col >= len(row) {
					return model.ErrorValue(model.ErrRef)
				}
				return row[col]
			}
		}
		return model.ErrorValue(model.ErrNA)
	}

	// approximate: last row whose key <= lookup value, table assumed
	// sorted ascending on column 0.
	var best []model.Value
	for _, row := range table.rows {
		if len(row) == 0 {
			continue
		}
		if compareValues(row[0], key) <= 0 {
			best = row
		} else {
			break
		}
	}
	if best == nil {
		return model.ErrorValue(model.ErrNA)
	}
	if col >= len(best) {
		return model.ErrorValue(model.ErrRef)
	}
	return best[col]
}

// fnIndex implements INDEX(range, row, [col]) — 1-based, 0 meaning
// "entire row/column" is not supported (returns #REF!), matching the
// scope of the representative subset this package implements.
func fnIndex(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) < 2 {
		return model.ErrorValue(model.ErrValue)
	}
	table, ok := e.resolveTable(args[0], owner)
	if !ok {
		return model.ErrorValue(model.ErrValue)
	}
	rowIdx, errv := numArg(e, args[1], owner)
	if errv != nil {
		return *errv
	}
	row := int(rowIdx) - 1
	if row < 0 || row >= len(table.rows) {
		return model.ErrorValue(model.ErrRef)
	}
	if len(args) < 3 {
		if len(table.rows[row]) == 0 {
			return model.ErrorValue(model.ErrRef)
		}
		return table.rows[row][0]
	}
	colIdx, errv := numArg(e, args[2], owner)
	if errv != nil {
		return *errv
	}
	col := int(colIdx) - 1
	if col < 0 || col >= len(table.rows[row]) {
		return model.ErrorValue(model.ErrRef)
	}
	return table.rows[row][col]
}

// fnMatch implements MATCH(value, range, [match_type]) with match_type
// 0 (exact), 1 (largest value <= lookup, ascending), -1 (smallest value
// >= lookup, descending) — the non-binary-search match modes of spec
// §4.6's Lookups archetype.
func fnMatch(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) < 2 {
		return model.ErrorValue(model.ErrValue)
	}
	key := e.evalNode(args[0], owner)
	if key.IsError() {
		return key
	}
	table, ok := e.resolveTable(args[1], owner)
	if !ok {
		return model.ErrorValue(model.ErrValue)
	}
	matchType := 1.0
	if len(args) >= 3 {
		mt, errv := numArg(e, args[2], owner)
		if errv != nil {
			return *errv
		}
		matchType = mt
	}

	// flatten table to a single column/row sequence (lookups pass a
	// single-row or single-column range into MATCH).
	var seq []model.Value
	for _, row := range table.rows {
		seq = append(seq, row...)
	}

	switch {
	case matchType == 0:
		for i, v := range seq {
			if compareValues(v, key) == 0 {
				return model.NumberValue(float64(i + 1))
			}
		}
		return model.ErrorValue(model.ErrNA)
	case matchType > 0:
		best := -1
		for i, v := range seq {
			if compareValues(v, key) <= 0 {
				best = i
			} else {
				break
			}
		}
		if best < 0 {
			return model.ErrorValue(model.ErrNA)
		}
		return model.NumberValue(float64(best + 1))
	default:
		best := -1
		for i, v := range seq {
			if compareValues(v, key) >= 0 {
				best = i
			} else {
				break
			}
		}
		if best < 0 {
			return model.ErrorValue(model.ErrNA)
		}
		return model.NumberValue(float64(best + 1))
	}
}
