package usermodel

import "github.com/calcmesh/calcmesh/model"

// cellSnapshot is one cell's exact content and style, captured so a
// structural edit's undo can restore it byte-for-byte regardless of
// what the edit's render-then-reparse rewrite produced in between.
type cellSnapshot struct {
	addr    model.CellAddress
	content string
	style   model.Style
}

// rangeSnapshot captures every cell in [firstRow,lastRow]x[firstCol,lastCol]
// on sheetID, row outer column inner order (insignificant for restore,
// matching Cells' own iteration order).
func rangeSnapshot(wb *model.Workbook, sheetID, firstRow, firstCol, lastRow, lastCol uint32) []cellSnapshot {
	sheet := wb.Sheet(sheetID)
	if sheet == nil {
		return nil
	}
	addr := model.RangeAddress{SheetID: sheetID, StartRow: firstRow, StartColumn: firstCol, EndRow: lastRow, EndColumn: lastCol}
	var out []cellSnapshot
	for a := range model.NewCellRange(sheet, addr).Cells() {
		content, _ := wb.GetCellContent(a)
		style, _ := wb.GetStyleForCell(a)
		out = append(out, cellSnapshot{addr: a, content: content, style: style})
	}
	return out
}

func restoreRange(wb *model.Workbook, snap []cellSnapshot) {
	for _, cs := range snap {
		wb.SetUserInput(cs.addr, cs.content)
		wb.SetCellStyle(cs.addr, cs.style)
	}
}

// formulaTextSnapshot captures the exact input text of every formula
// cell in the workbook, keyed by address, so a structural edit's undo
// can restore references a displacement turned into #REF! even when
// they live on a sheet the edit didn't directly touch.
func formulaTextSnapshot(wb *model.Workbook) map[model.CellAddress]string {
	out := make(map[model.CellAddress]string)
	for _, s := range wb.Sheets() {
		for c := range s.Cells() {
			if c == nil || !c.IsFormula() {
				continue
			}
			addr := model.CellAddress{SheetID: s.ID, Row: c.Row, Column: c.Column}
			content, _ := wb.GetCellContent(addr)
			out[addr] = content
		}
	}
	return out
}

func restoreFormulaText(wb *model.Workbook, snap map[model.CellAddress]string) {
	for addr, content := range snap {
		wb.SetUserInput(addr, content)
	}
}

// sheetFormatSnapshot is one sheet's column-range and row-format lists,
// captured so an insert/delete's width/height bookkeeping restores
// exactly rather than relying on the inverse structural op alone to
// re-derive it.
type sheetFormatSnapshot struct {
	sheetID      uint32
	columnRanges []model.ColumnRange
	rowFormats   map[uint32]model.RowFormat
}

func captureSheetFormat(wb *model.Workbook, sheetID uint32) sheetFormatSnapshot {
	sheet := wb.Sheet(sheetID)
	if sheet == nil {
		return sheetFormatSnapshot{sheetID: sheetID}
	}
	ranges := append([]model.ColumnRange(nil), sheet.ColumnRanges()...)
	formats := make(map[uint32]model.RowFormat, len(sheet.RowFormats()))
	for r, f := range sheet.RowFormats() {
		formats[r] = f
	}
	return sheetFormatSnapshot{sheetID: sheetID, columnRanges: ranges, rowFormats: formats}
}

func restoreSheetFormat(wb *model.Workbook, snap sheetFormatSnapshot) {
	sheet := wb.Sheet(snap.sheetID)
	if sheet == nil {
		return
	}
	sheet.SetColumnRanges(append([]model.ColumnRange(nil), snap.columnRanges...))
	formats := make(map[uint32]model.RowFormat, len(snap.rowFormats))
	for r, f := range snap.rowFormats {
		formats[r] = f
	}
	sheet.SetRowFormats(formats)
}

// structuralSnapshot is everything a structural edit's undo needs to
// restore exactly: the touched sheet's affected range, its column/row
// formatting, and every formula's text workbook-wide (spec §4.7 "the
// next evaluate re-computes them" implies nothing but Dirty survives an
// edit uninspected, so undo restores from a full pre-edit capture
// rather than hand-inverting the rewrite).
type structuralSnapshot struct {
	affected rangeSnapshotRegion
	format   sheetFormatSnapshot
	formulas map[model.CellAddress]string
}

type rangeSnapshotRegion struct {
	sheetID                        uint32
	firstRow, firstCol             uint32
	lastRow, lastCol               uint32
	cells                          []cellSnapshot
}

func captureStructural(wb *model.Workbook, sheetID, firstRow, firstCol, lastRow, lastCol uint32) structuralSnapshot {
	return structuralSnapshot{
		affected: rangeSnapshotRegion{
			sheetID: sheetID, firstRow: firstRow, firstCol: firstCol, lastRow: lastRow, lastCol: lastCol,
			cells: rangeSnapshot(wb, sheetID, firstRow, firstCol, lastRow, lastCol),
		},
		format:   captureSheetFormat(wb, sheetID),
		formulas: formulaTextSnapshot(wb),
	}
}

func restoreStructural(wb *model.Workbook, snap structuralSnapshot) {
	restoreSheetFormat(wb, snap.format)
	restoreRange(wb, snap.affected.cells)
	restoreFormulaText(wb, snap.formulas)
}
