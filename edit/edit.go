// Package edit implements the structural edit engine (spec §4.7):
// insert/delete/move rows and columns, plus thin wrappers around the
// sheet-level operations model.Workbook already exposes (new/rename/
// delete sheet, set sheet color) so callers get the whole edit-operation
// surface from one package. The teacher has no structural-edit support
// at all — insert/delete/move are grounded directly on spec §4.7's
// algorithm description and on original_source/base/src/worksheet.rs's
// column-range-list splitting for the six overlap cases SetColumnWidth's
// applyColumnRange already handles.
package edit

import (
	"fmt"
	"sort"

	"github.com/calcmesh/calcmesh/ast"
	"github.com/calcmesh/calcmesh/model"
)

func notFound(format string, args ...any) *model.Error {
	return &model.Error{Code: model.NotFound, Message: fmt.Sprintf(format, args...)}
}

func invalidArgument(format string, args ...any) *model.Error {
	return &model.Error{Code: model.InvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func structuralError(format string, args ...any) *model.Error {
	return &model.Error{Code: model.FailedPrecondition, Message: fmt.Sprintf(format, args...)}
}

// formulaSnapshot is one formula cell's state captured before a
// structural edit mutates either the cell grid or the formula text.
type formulaSnapshot struct {
	addr model.CellAddress
	id   uint32
	node ast.Node
}

// snapshotFormulas collects every formula cell in the workbook, across
// every sheet — a displacement on one sheet can still invalidate or
// shift references living in formulas on any other sheet.
func snapshotFormulas(wb *model.Workbook) []formulaSnapshot {
	var out []formulaSnapshot
	for _, s := range wb.Sheets() {
		for c := range s.Cells() {
			if !c.IsFormula() {
				continue
			}
			node, ok := wb.Formulas.Get(c.FormulaID)
			if !ok {
				continue
			}
			out = append(out, formulaSnapshot{
				addr: model.CellAddress{SheetID: s.ID, Row: c.Row, Column: c.Column},
				id:   c.FormulaID,
				node: node,
			})
		}
	}
	return out
}

// rewriteFormulas re-stringifies every snapshotted formula under d,
// re-parses the result at its (possibly displaced) new address, and
// re-interns it — releasing the old FormulaTable entry first so the
// table's cell bookkeeping never points at a stale address. It writes
// the new formula id and Dirty=true directly onto each snapshot's Cell
// here, at the cell's *old* grid position: every formula in the
// workbook gets a fresh FormulaTable id whether its text changed or
// not (Release/Intern doesn't guarantee id stability even for
// unaffected formulas once a refcount drops to zero), and only the
// cells a move helper physically relocates afterward would otherwise
// get a correct Cell.FormulaID. Grid relocation happens on the same
// *Cell pointer later, so setting the fields now is equivalent to
// setting them post-move.
func rewriteFormulas(wb *model.Workbook, d ast.Displacement, newAddr func(model.CellAddress) model.CellAddress) {
	snaps := snapshotFormulas(wb)
	for _, snap := range snaps {
		owner := ast.Context{
			SheetIndex: wb.SheetIndex(snap.addr.SheetID),
			Row:        int(snap.addr.Row),
			Column:     int(snap.addr.Column),
		}
		text := ast.ToA1Displaced(snap.node, owner, d)
		to := newAddr(snap.addr)
		node := wb.ParseFormula(text, to)
		wb.Formulas.Release(snap.id, snap.addr)
		id := wb.Formulas.Intern(node, to)

		sheet := wb.Sheet(snap.addr.SheetID)
		cell := sheet.Cell(snap.addr.Row, snap.addr.Column)
		cell.FormulaID = id
		cell.Dirty = true
	}
}

func sortDescending(addrs []model.CellAddress, by func(model.CellAddress) uint32) {
	sort.Slice(addrs, func(i, j int) bool { return by(addrs[i]) > by(addrs[j]) })
}

func sortAscending(addrs []model.CellAddress, by func(model.CellAddress) uint32) {
	sort.Slice(addrs, func(i, j int) bool { return by(addrs[i]) < by(addrs[j]) })
}
