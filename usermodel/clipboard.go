package usermodel

import (
	"strings"

	"github.com/mohae/deepcopy"

	"github.com/calcmesh/calcmesh/model"
)

// clipboardContent is the copied or cut rectangle, captured as a
// content+style snapshot (not a live range) so later edits to the
// source cells don't retroactively change what a subsequent paste
// produces.
type clipboardContent struct {
	sheetID                        uint32
	firstRow, firstCol             uint32
	lastRow, lastCol               uint32
	cells                          []cellSnapshot
	isCut                          bool
}

// Copy captures the rectangle for a later Paste, leaving the source
// untouched.
func (m *Model) Copy(sheetID, firstRow, firstCol, lastRow, lastCol uint32) *model.Error {
	return m.copyOrCut(sheetID, firstRow, firstCol, lastRow, lastCol, false)
}

// Cut captures the rectangle and clears it once a matching Paste lands
// (spec §4.8 "is_cut flag clears the source after paste").
func (m *Model) Cut(sheetID, firstRow, firstCol, lastRow, lastCol uint32) *model.Error {
	return m.copyOrCut(sheetID, firstRow, firstCol, lastRow, lastCol, true)
}

func (m *Model) copyOrCut(sheetID, firstRow, firstCol, lastRow, lastCol uint32, isCut bool) *model.Error {
	if m.wb.Sheet(sheetID) == nil {
		return notFound("no sheet with id %d", sheetID)
	}
	cells := rangeSnapshot(m.wb, sheetID, firstRow, firstCol, lastRow, lastCol)
	copied, _ := deepcopy.Copy(cells).([]cellSnapshot)
	m.clipboard = &clipboardContent{
		sheetID: sheetID, firstRow: firstRow, firstCol: firstCol, lastRow: lastRow, lastCol: lastCol,
		cells: copied, isCut: isCut,
	}
	return nil
}

// Paste writes the clipboard's captured cells at destRow/destCol on
// destSheetID, offset from the copied rectangle's top-left corner, and
// clears the source if the clipboard holds a Cut (spec §4.8 clipboard).
// The write and, for a cut, the source clear are recorded as one undo
// batch.
func (m *Model) Paste(destSheetID, destRow, destCol uint32) *model.Error {
	if m.clipboard == nil {
		return invalidArgument("clipboard is empty")
	}
	if m.wb.Sheet(destSheetID) == nil {
		return notFound("no sheet with id %d", destSheetID)
	}
	cb := m.clipboard
	rowOffset := int64(destRow) - int64(cb.firstRow)
	colOffset := int64(destCol) - int64(cb.firstCol)

	var children []Diff
	for _, cs := range cb.cells {
		row := int64(cs.addr.Row) + rowOffset
		col := int64(cs.addr.Column) + colOffset
		if row < 1 || row > model.LastRow || col < 1 || col > model.LastColumn {
			continue
		}
		target := model.CellAddress{SheetID: destSheetID, Row: uint32(row), Column: uint32(col)}
		beforeContent, _ := m.wb.GetCellContent(target)
		beforeStyle, _ := m.wb.GetStyleForCell(target)
		m.wb.SetUserInput(target, cs.content)
		m.wb.SetCellStyle(target, cs.style)
		m.eval.MarkDirty(target)
		children = append(children,
			Diff{Kind: DiffSetCellValue, Addr: target, BeforeContent: beforeContent, AfterContent: cs.content},
			Diff{Kind: DiffSetCellStyle, Addr: target, BeforeStyle: beforeStyle, AfterStyle: cs.style},
		)
	}

	if cb.isCut {
		for _, cs := range cb.cells {
			beforeContent, _ := m.wb.GetCellContent(cs.addr)
			m.wb.SetUserInput(cs.addr, "")
			m.eval.MarkDirty(cs.addr)
			children = append(children, Diff{Kind: DiffSetCellValue, Addr: cs.addr, BeforeContent: beforeContent, AfterContent: ""})
		}
		m.clipboard = nil
	}

	if len(children) > 0 {
		m.record(Diff{Kind: DiffBatch, Children: children})
		m.recalculate()
	}
	return nil
}

// PasteCSV bulk-parses a rectangular block of CSV text using the
// workbook's locale list separator as the field delimiter and writes it
// starting at destRow/destCol, one SetCellValue per field, recorded as
// a single undo batch (spec §4.8 "CSV paste bulk-parsing a rectangular
// block via current locale").
func (m *Model) PasteCSV(destSheetID, destRow, destCol uint32, csv string) *model.Error {
	if m.wb.Sheet(destSheetID) == nil {
		return notFound("no sheet with id %d", destSheetID)
	}
	sep := string(m.wb.Locale.ListSeparator)
	lines := strings.Split(strings.TrimRight(csv, "\n"), "\n")

	var children []Diff
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		fields := strings.Split(line, sep)
		row := destRow + uint32(i)
		if row > model.LastRow {
			break
		}
		for j, field := range fields {
			col := destCol + uint32(j)
			if col > model.LastColumn {
				break
			}
			addr := model.CellAddress{SheetID: destSheetID, Row: row, Column: col}
			before, _ := m.wb.GetCellContent(addr)
			m.wb.SetUserInput(addr, field)
			m.eval.MarkDirty(addr)
			children = append(children, Diff{Kind: DiffSetCellValue, Addr: addr, BeforeContent: before, AfterContent: field})
		}
	}

	if len(children) > 0 {
		m.record(Diff{Kind: DiffBatch, Children: children})
		m.recalculate()
	}
	return nil
}
