package model

import "iter"

// RangeAddress is the resolved (sheet, corner-to-corner) extent of a
// Range node once SheetIndex has been turned into a concrete SheetID
// (spec §4.2 "result is a rectangular Range with left = (min row, min
// col), right = (max row, max col)"). Grounded on the teacher's
// RangeAddress (range.go), renamed WorksheetID -> SheetID to match.
type RangeAddress struct {
	SheetID                uint32
	StartRow, StartColumn  uint32
	EndRow, EndColumn      uint32
}

// Bound clamps a full-row/full-column RangeAddress to the sheet's
// tracked dimension (spec §4.6 "for full-column or full-row ranges,
// clamp to the sheet's tracked dimension"). isFullRow/isFullColumn come
// from the ast.Reference endpoints that produced this range.
func (s *Sheet) Bound(addr RangeAddress, isFullRow, isFullColumn bool) RangeAddress {
	if isFullColumn {
		addr.StartRow, addr.EndRow = 1, s.maxRow()
	}
	if isFullRow {
		addr.StartColumn, addr.EndColumn = 1, s.maxColumn()
	}
	return addr
}

// MaxRow returns the highest row number holding a non-empty cell (1 if
// the sheet is empty), the bound the structural edit engine validates
// insert/delete operations against (spec §4.7).
func (s *Sheet) MaxRow() uint32 { return s.maxRow() }

// MaxColumn is MaxRow's column counterpart.
func (s *Sheet) MaxColumn() uint32 { return s.maxColumn() }

func (s *Sheet) maxRow() uint32 {
	max := uint32(0)
	for key, c := range s.chunks {
		if c.nonNil == 0 {
			continue
		}
		for i, cell := range c.cells {
			if cell == nil {
				continue
			}
			row := key.row*chunkRows + uint32(i)%chunkRows
			if row > max {
				max = row
			}
		}
	}
	if max == 0 {
		return 1
	}
	return max
}

func (s *Sheet) maxColumn() uint32 {
	max := uint32(0)
	for key, c := range s.chunks {
		if c.nonNil == 0 {
			continue
		}
		for i, cell := range c.cells {
			if cell == nil {
				continue
			}
			col := key.col*chunkCols + uint32(i)/chunkRows
			if col > max {
				max = col
			}
		}
	}
	if max == 0 {
		return 1
	}
	return max
}

// CellRange is a rectangular, inclusive view over one sheet's cells,
// used by the evaluator's range iteration (spec §4.6 "iterate row outer,
// column inner"). Grounded on the teacher's CellRange (range.go),
// adapted to this package's iter.Seq-returning Cells instead of a
// custom Range interface, since Sheet already exposes that shape.
type CellRange struct {
	Sheet      *Sheet
	StartRow   uint32
	StartCol   uint32
	EndRow     uint32
	EndCol     uint32
}

// NewCellRange normalizes addr's corners (left = min, right = max) the
// way spec §4.6's range-operator rule requires.
func NewCellRange(s *Sheet, addr RangeAddress) CellRange {
	return CellRange{
		Sheet:    s,
		StartRow: min32(addr.StartRow, addr.EndRow),
		StartCol: min32(addr.StartColumn, addr.EndColumn),
		EndRow:   max32(addr.StartRow, addr.EndRow),
		EndCol:   max32(addr.StartColumn, addr.EndColumn),
	}
}

// Cells iterates every cell in the rectangle row outer, column inner,
// yielding nil for unoccupied positions so callers see the full shape
// (needed for COUNTBLANK-style archetypes).
func (r CellRange) Cells() iter.Seq2[CellAddress, *Cell] {
	return func(yield func(CellAddress, *Cell) bool) {
		for row := r.StartRow; row <= r.EndRow; row++ {
			for col := r.StartCol; col <= r.EndCol; col++ {
				addr := CellAddress{SheetID: r.Sheet.ID, Row: row, Column: col}
				if !yield(addr, r.Sheet.Cell(row, col)) {
					return
				}
			}
		}
	}
}

func (r CellRange) RowCount() uint32 { return r.EndRow - r.StartRow + 1 }
func (r CellRange) ColCount() uint32 { return r.EndCol - r.StartCol + 1 }
