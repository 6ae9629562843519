package usermodel

import "github.com/calcmesh/calcmesh/model"

// View returns the current selection/scroll state. Reads go straight to
// the workbook's own View field since spec §4.8 describes one local
// user model per process rather than the original's per-client view
// table (original_source/base/src/user_model/ui.rs keys views by a
// view_id into a map; there is exactly one here).
func (m *Model) View() model.View { return m.wb.View }

// SetActiveSheet switches the selected sheet, resetting the selection
// to A1 the way opening a sheet does.
func (m *Model) SetActiveSheet(sheetID uint32) *model.Error {
	if m.wb.Sheet(sheetID) == nil {
		return notFound("no sheet with id %d", sheetID)
	}
	m.wb.View = model.View{ActiveSheet: sheetID, SelectedRow: 1, SelectedCol: 1, RangeAnchorR: 1, RangeAnchorC: 1}
	return nil
}

// SetSelectedCell moves the selection to a single cell, collapsing any
// multi-cell range.
func (m *Model) SetSelectedCell(row, col uint32) *model.Error {
	if row == 0 || row > model.LastRow || col == 0 || col > model.LastColumn {
		return invalidArgument("cell (%d,%d) out of range", row, col)
	}
	v := &m.wb.View
	v.SelectedRow, v.SelectedCol = row, col
	v.RangeAnchorR, v.RangeAnchorC = row, col
	return nil
}

// SetSelectedRange anchors the selection at (anchorRow,anchorCol) and
// extends it to (row,col), spec §4.8's range selection.
func (m *Model) SetSelectedRange(anchorRow, anchorCol, row, col uint32) *model.Error {
	if row == 0 || row > model.LastRow || col == 0 || col > model.LastColumn {
		return invalidArgument("cell (%d,%d) out of range", row, col)
	}
	v := &m.wb.View
	v.RangeAnchorR, v.RangeAnchorC = anchorRow, anchorCol
	v.SelectedRow, v.SelectedCol = row, col
	return nil
}

// SetTopLeftVisibleCell scrolls the view so (row,col) is the first
// visible cell (ui.rs's set_top_left_visible_cell).
func (m *Model) SetTopLeftVisibleCell(row, col uint32) *model.Error {
	if row == 0 || row > model.LastRow || col == 0 || col > model.LastColumn {
		return invalidArgument("cell (%d,%d) out of range", row, col)
	}
	m.wb.View.ScrollRow, m.wb.View.ScrollCol = row, col
	return nil
}

// SetWindowSize records the viewport's pixel dimensions, which the
// arrow-key/page handlers below use to decide when the selection has
// scrolled out of view.
func (m *Model) SetWindowSize(widthPx, heightPx float64) {
	m.wb.View.WindowWidthPx = widthPx
	m.wb.View.WindowHeightPx = heightPx
}

func (m *Model) activeSheet() *model.Sheet {
	return m.wb.Sheet(m.wb.View.ActiveSheet)
}

func (m *Model) columnWidth(col uint32) float64 {
	sheet := m.activeSheet()
	if sheet == nil {
		return 0
	}
	w := sheet.ColumnWidth(col)
	if w == 0 {
		return sheet.DefaultColWidth
	}
	return w
}

func (m *Model) rowHeight(row uint32) float64 {
	sheet := m.activeSheet()
	if sheet == nil {
		return 0
	}
	h := sheet.RowHeight(row)
	if h == 0 {
		return sheet.DefaultRowHeight
	}
	return h
}

// OnArrowRight moves the selection one column right, scrolling the
// view if the new column isn't fully within window_width (ui.rs
// on_arrow_right).
func (m *Model) OnArrowRight() {
	v := &m.wb.View
	newCol := v.SelectedCol + 1
	if newCol == 0 || newCol > model.LastColumn {
		return
	}
	width := 0.0
	for col := v.ScrollCol; col <= newCol; col++ {
		width += m.columnWidth(col)
	}
	v.SelectedCol = newCol
	v.RangeAnchorR, v.RangeAnchorC = v.SelectedRow, newCol
	if width > v.WindowWidthPx {
		v.ScrollCol++
	}
}

// OnArrowLeft moves the selection one column left (ui.rs on_arrow_left).
func (m *Model) OnArrowLeft() {
	v := &m.wb.View
	if v.SelectedCol <= 1 {
		return
	}
	newCol := v.SelectedCol - 1
	v.SelectedCol = newCol
	v.RangeAnchorR, v.RangeAnchorC = v.SelectedRow, newCol
	if newCol < v.ScrollCol {
		v.ScrollCol = newCol
	}
}

// OnArrowUp moves the selection one row up (ui.rs on_arrow_up).
func (m *Model) OnArrowUp() {
	v := &m.wb.View
	if v.SelectedRow <= 1 {
		return
	}
	newRow := v.SelectedRow - 1
	v.SelectedRow = newRow
	v.RangeAnchorR, v.RangeAnchorC = newRow, v.SelectedCol
	if newRow < v.ScrollRow {
		v.ScrollRow = newRow
	}
}

// OnArrowDown moves the selection one row down, scrolling if the rows
// from the top visible row through the row after the new one don't fit
// within window_height (ui.rs on_arrow_down).
func (m *Model) OnArrowDown() {
	v := &m.wb.View
	newRow := v.SelectedRow + 1
	if newRow == 0 || newRow > model.LastRow {
		return
	}
	height := 0.0
	for row := v.ScrollRow; row <= newRow+1; row++ {
		height += m.rowHeight(row)
	}
	v.SelectedRow = newRow
	v.RangeAnchorR, v.RangeAnchorC = newRow, v.SelectedCol
	if height > v.WindowHeightPx {
		v.ScrollRow++
	}
}

// OnPageDown advances the top visible row until the row after it no
// longer fits within window_height, then selects that row (ui.rs
// on_page_down: "top_row is now the first row that is not fully
// visible").
func (m *Model) OnPageDown() {
	v := &m.wb.View
	lastRow := v.ScrollRow
	height := m.rowHeight(lastRow)
	for height <= v.WindowHeightPx && lastRow < model.LastRow {
		lastRow++
		height += m.rowHeight(lastRow)
	}
	v.ScrollRow = lastRow
	v.SelectedRow = lastRow
	v.RangeAnchorR, v.RangeAnchorC = lastRow, v.SelectedCol
}

// OnPageUp is on_page_down's inverse: it walks the top row back until
// window_height worth of rows again separates it from the current
// selection.
func (m *Model) OnPageUp() {
	v := &m.wb.View
	firstRow := v.ScrollRow
	height := m.rowHeight(firstRow)
	for height <= v.WindowHeightPx && firstRow > 1 {
		firstRow--
		height += m.rowHeight(firstRow)
	}
	v.ScrollRow = firstRow
	v.SelectedRow = firstRow
	v.RangeAnchorR, v.RangeAnchorC = firstRow, v.SelectedCol
}

// ExpandSelectionRight/Down/Left/Up grow the selected range by one
// column/row from its anchor without moving the anchor, spec §4.8's
// shift-arrow extend-selection gesture.
func (m *Model) ExpandSelectionRight() {
	v := &m.wb.View
	if v.SelectedCol < model.LastColumn {
		v.SelectedCol++
	}
}

func (m *Model) ExpandSelectionLeft() {
	v := &m.wb.View
	if v.SelectedCol > 1 {
		v.SelectedCol--
	}
}

func (m *Model) ExpandSelectionDown() {
	v := &m.wb.View
	if v.SelectedRow < model.LastRow {
		v.SelectedRow++
	}
}

func (m *Model) ExpandSelectionUp() {
	v := &m.wb.View
	if v.SelectedRow > 1 {
		v.SelectedRow--
	}
}

// GetScrollX/GetScrollY sum the widths/heights of every column/row
// scrolled past, the pixel offset a client renders the grid at (ui.rs
// get_scroll_x/get_scroll_y).
func (m *Model) GetScrollX() float64 {
	v := m.wb.View
	x := 0.0
	for col := uint32(1); col < v.ScrollCol; col++ {
		x += m.columnWidth(col)
	}
	return x
}

func (m *Model) GetScrollY() float64 {
	v := m.wb.View
	y := 0.0
	for row := uint32(1); row < v.ScrollRow; row++ {
		y += m.rowHeight(row)
	}
	return y
}
