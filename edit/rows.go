package edit

import (
	"github.com/calcmesh/calcmesh/ast"
	"github.com/calcmesh/calcmesh/model"
)

// InsertRows mirrors InsertColumns on the orthogonal axis (spec §4.7
// "Insert/delete rows mirror the column logic").
func InsertRows(wb *model.Workbook, sheetID uint32, row, n uint32) *model.Error {
	sheet := wb.Sheet(sheetID)
	if sheet == nil {
		return notFound("no sheet with id %d", sheetID)
	}
	if n == 0 {
		return invalidArgument("insert count must be positive")
	}
	if row == 0 || row > model.LastRow {
		return invalidArgument("row %d out of range", row)
	}
	if sheet.MaxRow()+n > model.LastRow {
		return structuralError("insert would delete cells at the end of a column")
	}

	sheetIdx := wb.SheetIndex(sheetID)
	d := ast.Displacement{Kind: ast.DisplaceRow, Sheet: sheetIdx, Row: int(row), Delta: int(n)}
	rewriteFormulas(wb, d, func(addr model.CellAddress) model.CellAddress {
		if addr.SheetID == sheetID && addr.Row >= row {
			addr.Row += n
		}
		return addr
	})

	moveRowsDown(sheet, row, n)
	shiftRowFormats(sheet, row, n)
	return nil
}

// DeleteRows mirrors DeleteColumns.
func DeleteRows(wb *model.Workbook, sheetID uint32, row, n uint32) *model.Error {
	sheet := wb.Sheet(sheetID)
	if sheet == nil {
		return notFound("no sheet with id %d", sheetID)
	}
	if n == 0 {
		return invalidArgument("delete count must be positive")
	}
	if row == 0 || row+n-1 > model.LastRow {
		return invalidArgument("row range [%d,%d] out of bounds", row, row+n-1)
	}

	sheetIdx := wb.SheetIndex(sheetID)
	d := ast.Displacement{Kind: ast.DisplaceRow, Sheet: sheetIdx, Row: int(row), Delta: -int(n)}
	rewriteFormulas(wb, d, func(addr model.CellAddress) model.CellAddress {
		if addr.SheetID == sheetID && addr.Row >= row+n {
			addr.Row -= n
		}
		return addr
	})

	clearRows(sheet, row, n)
	moveRowsUp(sheet, row, n)
	shrinkRowFormats(sheet, row, n)
	return nil
}

// MoveRow mirrors MoveColumn.
func MoveRow(wb *model.Workbook, sheetID uint32, from, to uint32) *model.Error {
	if wb.Sheet(sheetID) == nil {
		return notFound("no sheet with id %d", sheetID)
	}
	if from == 0 || from > model.LastRow || to == 0 || to > model.LastRow {
		return invalidArgument("row out of range")
	}
	sheetIdx := wb.SheetIndex(sheetID)
	delta := int(to) - int(from)
	d := ast.Displacement{Kind: ast.DisplaceRowMove, Sheet: sheetIdx, Row: int(from), Delta: delta}
	rewriteFormulas(wb, d, func(addr model.CellAddress) model.CellAddress { return addr })
	return nil
}

func moveRowsDown(sheet *model.Sheet, row, n uint32) {
	var addrs []model.CellAddress
	for c := range sheet.Cells() {
		if c.Row >= row {
			addrs = append(addrs, model.CellAddress{SheetID: sheet.ID, Row: c.Row, Column: c.Column})
		}
	}
	sortDescending(addrs, func(a model.CellAddress) uint32 { return a.Row })
	for _, addr := range addrs {
		cell := sheet.Cell(addr.Row, addr.Column)
		if cell == nil {
			continue
		}
		sheet.SetCell(addr.Row, addr.Column, nil)
		sheet.SetCell(addr.Row+n, addr.Column, cell)
	}
}

func moveRowsUp(sheet *model.Sheet, row, n uint32) {
	var addrs []model.CellAddress
	for c := range sheet.Cells() {
		if c.Row >= row+n {
			addrs = append(addrs, model.CellAddress{SheetID: sheet.ID, Row: c.Row, Column: c.Column})
		}
	}
	sortAscending(addrs, func(a model.CellAddress) uint32 { return a.Row })
	for _, addr := range addrs {
		cell := sheet.Cell(addr.Row, addr.Column)
		if cell == nil {
			continue
		}
		sheet.SetCell(addr.Row, addr.Column, nil)
		sheet.SetCell(addr.Row-n, addr.Column, cell)
	}
}

func clearRows(sheet *model.Sheet, row, n uint32) {
	var addrs []model.CellAddress
	for c := range sheet.Cells() {
		if c.Row >= row && c.Row < row+n {
			addrs = append(addrs, model.CellAddress{SheetID: sheet.ID, Row: c.Row, Column: c.Column})
		}
	}
	for _, addr := range addrs {
		sheet.SetCell(addr.Row, addr.Column, nil)
	}
}

// shiftRowFormats and shrinkRowFormats are the row-height/style
// counterpart of shiftColumnRanges/shrinkColumnRanges. Rows are keyed by
// a sparse map rather than a sorted range list (model.Sheet.rows), so
// re-indexing means rebuilding the map under the same row arithmetic
// rather than splitting ranges.
func shiftRowFormats(sheet *model.Sheet, row, n uint32) {
	formats := sheet.RowFormats()
	out := make(map[uint32]model.RowFormat, len(formats))
	for r, f := range formats {
		if r >= row {
			out[r+n] = f
		} else {
			out[r] = f
		}
	}
	sheet.SetRowFormats(out)
}

func shrinkRowFormats(sheet *model.Sheet, row, n uint32) {
	formats := sheet.RowFormats()
	out := make(map[uint32]model.RowFormat, len(formats))
	for r, f := range formats {
		switch {
		case r >= row && r < row+n:
			// dropped: inside the deleted span
		case r >= row+n:
			out[r-n] = f
		default:
			out[r] = f
		}
	}
	sheet.SetRowFormats(out)
}
