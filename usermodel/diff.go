package usermodel

import (
	"github.com/google/uuid"

	"github.com/calcmesh/calcmesh/model"
)

// DiffKind tags which mutation a Diff reverses, mirroring the set of
// reversible operations spec §4.8 lists for the undo/redo journal.
type DiffKind int

const (
	DiffSetCellValue DiffKind = iota
	DiffSetCellStyle
	DiffSetColumnWidth
	DiffSetRowHeight
	DiffSetColumnStyle
	DiffSetRowStyle
	DiffInsertRows
	DiffDeleteRows
	DiffInsertColumns
	DiffDeleteColumns
	DiffRenameSheet
	DiffNewSheet
	DiffDeleteSheet
	DiffMoveColumn
	DiffMoveRow
	DiffBatch
)

// Diff is one undoable step. Atomic kinds (SetCellValue..SetRowStyle)
// carry just enough before/after state to invert directly; structural
// kinds (InsertRows..DeleteColumns) carry a full structuralSnapshot
// since their rewrite can touch formulas anywhere in the workbook.
// Batch groups several Diffs so a single user gesture (e.g. paste over
// a range) undoes as one step.
type Diff struct {
	Kind DiffKind
	// ID is a per-operation identifier so a late-joining collaborator
	// replaying ApplyExternalDiffs can deduplicate diffs it has already
	// seen (spec §6.2).
	ID uuid.UUID

	Addr          model.CellAddress
	BeforeContent string
	AfterContent  string
	BeforeStyle   model.Style
	AfterStyle    model.Style

	SheetID           uint32
	First, Last       uint32
	BeforeWidth       float64
	AfterWidth        float64
	BeforeHeight      float64
	AfterHeight       float64

	Row, Column, Count uint32
	Before             structuralSnapshot

	MoveFrom, MoveTo uint32

	OldName, NewName string
	SheetName        string

	// RemovedSheet/SheetOrderIndex/SheetFormulas are the DeleteSheet/
	// NewSheet toggle state: whichever of invert/apply most recently ran
	// for this Diff captured the removed *Sheet (same id, same cells) and
	// its display-order position here so the other direction can put it
	// back with RestoreSheet rather than rebuilding it from a content
	// snapshot.
	RemovedSheet    *model.Sheet
	SheetOrderIndex int
	SheetFormulas   map[model.CellAddress]string

	Children []Diff
}

// journal is a bounded undo/redo stack. Pushing a new Diff always clears
// the redo stack, matching the standard editor discipline spec §4.8
// assumes (redo is only valid immediately after an undo with no
// intervening edit).
type journal struct {
	undo  []Diff
	redo  []Diff
	limit int
}

const defaultJournalLimit = 200

func newJournal() journal {
	return journal{limit: defaultJournalLimit}
}

func (j *journal) push(d Diff) {
	j.undo = append(j.undo, d)
	if j.limit > 0 && len(j.undo) > j.limit {
		j.undo = j.undo[len(j.undo)-j.limit:]
	}
	j.redo = nil
}

func (j *journal) popUndo() (Diff, bool) {
	if len(j.undo) == 0 {
		return Diff{}, false
	}
	d := j.undo[len(j.undo)-1]
	j.undo = j.undo[:len(j.undo)-1]
	return d, true
}

func (j *journal) popRedo() (Diff, bool) {
	if len(j.redo) == 0 {
		return Diff{}, false
	}
	d := j.redo[len(j.redo)-1]
	j.redo = j.redo[:len(j.redo)-1]
	return d, true
}

func (j *journal) CanUndo() bool { return len(j.undo) > 0 }
func (j *journal) CanRedo() bool { return len(j.redo) > 0 }

// record appends d to the undo journal (which clears the redo stack) and
// the outbound diff queue (spec §6.2 flush_send_queue) and marks its ID
// as seen — used by every mutation. Undo/Redo do not call it: they move
// the Diff between the two stacks explicitly and only enqueue it.
func (m *Model) record(d Diff) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	m.journal.push(d)
	m.enqueue(d)
	m.seen[d.ID] = true
}

// CanUndo reports whether Undo has a step to revert.
func (m *Model) CanUndo() bool { return m.journal.CanUndo() }

// CanRedo reports whether Redo has a step to replay.
func (m *Model) CanRedo() bool { return m.journal.CanRedo() }

// Undo reverts the most recent Diff and moves it to the redo stack
// (spec §4.8 "undo/redo journal of reversible diffs").
func (m *Model) Undo() bool {
	d, ok := m.journal.popUndo()
	if !ok {
		return false
	}
	m.invert(&d)
	m.journal.redo = append(m.journal.redo, d)
	m.recalculate()
	m.enqueue(d)
	return true
}

// Redo replays the most recently undone Diff.
func (m *Model) Redo() bool {
	d, ok := m.journal.popRedo()
	if !ok {
		return false
	}
	m.apply(&d)
	m.journal.undo = append(m.journal.undo, d)
	m.recalculate()
	m.enqueue(d)
	return true
}

// apply re-runs d's forward direction, used by Redo. Structural kinds
// simply replay the original operation: correct because redo is only
// ever invoked immediately after the matching undo, with no
// intervening edits, so the workbook is in exactly the pre-op state
// the original operation was issued against.
func (m *Model) apply(d *Diff) {
	switch d.Kind {
	case DiffSetCellValue:
		m.wb.SetUserInput(d.Addr, d.AfterContent)
		m.eval.MarkDirty(d.Addr)
	case DiffSetCellStyle:
		m.wb.SetCellStyle(d.Addr, d.AfterStyle)
	case DiffSetColumnWidth:
		m.wb.SetColumnWidth(d.SheetID, d.First, d.Last, d.AfterWidth)
	case DiffSetRowHeight:
		m.wb.SetRowHeight(d.SheetID, d.Row, d.AfterHeight)
	case DiffSetColumnStyle:
		m.wb.SetColumnStyle(d.SheetID, d.First, d.Last, d.AfterStyle)
	case DiffSetRowStyle:
		m.wb.SetRowStyle(d.SheetID, d.Row, d.AfterStyle)
	case DiffInsertRows:
		insertRows(m, d.SheetID, d.Row, d.Count)
	case DiffDeleteRows:
		deleteRows(m, d.SheetID, d.Row, d.Count)
	case DiffInsertColumns:
		insertColumns(m, d.SheetID, d.Column, d.Count)
	case DiffDeleteColumns:
		deleteColumns(m, d.SheetID, d.Column, d.Count)
	case DiffRenameSheet:
		m.wb.RenameSheet(d.SheetID, d.NewName)
	case DiffNewSheet:
		// Redo after the matching undo: the undo captured the removed
		// sheet below, so replay by putting the same object back rather
		// than calling AddSheet (which would mint a fresh id).
		restoreSheetAt(m, d.RemovedSheet, d.SheetOrderIndex, d.SheetFormulas)
	case DiffDeleteSheet:
		sheet, index, formulas := captureAndRemoveSheet(m, d.SheetID)
		d.RemovedSheet, d.SheetOrderIndex, d.SheetFormulas = sheet, index, formulas
	case DiffMoveColumn:
		moveColumnWithData(m, d.SheetID, d.MoveFrom, d.MoveTo)
	case DiffMoveRow:
		moveRowWithData(m, d.SheetID, d.MoveFrom, d.MoveTo)
	case DiffBatch:
		for i := range d.Children {
			m.apply(&d.Children[i])
		}
	}
}

// invert reverses d, used by Undo.
func (m *Model) invert(d *Diff) {
	switch d.Kind {
	case DiffSetCellValue:
		m.wb.SetUserInput(d.Addr, d.BeforeContent)
		m.eval.MarkDirty(d.Addr)
	case DiffSetCellStyle:
		m.wb.SetCellStyle(d.Addr, d.BeforeStyle)
	case DiffSetColumnWidth:
		m.wb.SetColumnWidth(d.SheetID, d.First, d.Last, d.BeforeWidth)
	case DiffSetRowHeight:
		m.wb.SetRowHeight(d.SheetID, d.Row, d.BeforeHeight)
	case DiffSetColumnStyle:
		m.wb.SetColumnStyle(d.SheetID, d.First, d.Last, d.BeforeStyle)
	case DiffSetRowStyle:
		m.wb.SetRowStyle(d.SheetID, d.Row, d.BeforeStyle)
	case DiffInsertRows:
		deleteRows(m, d.SheetID, d.Row, d.Count)
		restoreStructural(m.wb, d.Before)
	case DiffDeleteRows:
		insertRows(m, d.SheetID, d.Row, d.Count)
		restoreStructural(m.wb, d.Before)
	case DiffInsertColumns:
		deleteColumns(m, d.SheetID, d.Column, d.Count)
		restoreStructural(m.wb, d.Before)
	case DiffDeleteColumns:
		insertColumns(m, d.SheetID, d.Column, d.Count)
		restoreStructural(m.wb, d.Before)
	case DiffRenameSheet:
		m.wb.RenameSheet(d.SheetID, d.OldName)
	case DiffNewSheet:
		sheet, index, formulas := captureAndRemoveSheet(m, d.SheetID)
		d.RemovedSheet, d.SheetOrderIndex, d.SheetFormulas = sheet, index, formulas
	case DiffDeleteSheet:
		// d.RemovedSheet/SheetOrderIndex/SheetFormulas were captured by
		// the original DeleteSheet mutation before it removed the sheet.
		restoreSheetAt(m, d.RemovedSheet, d.SheetOrderIndex, d.SheetFormulas)
	case DiffMoveColumn, DiffMoveRow:
		// Before was captured over the sheet's whole used range prior to
		// the move, so restoring it reconstructs the pre-move state
		// exactly (content, formatting, and every formula's text) rather
		// than trying to arithmetically invert the reference rewrite.
		restoreStructural(m.wb, d.Before)
	case DiffBatch:
		for i := len(d.Children) - 1; i >= 0; i-- {
			m.invert(&d.Children[i])
		}
	}
}

// captureAndRemoveSheet snapshots sheet id's position and a workbook-wide
// formula-text capture, then deletes it — the shared body of DeleteSheet's
// original mutation and NewSheet's undo (both remove a sheet and need to
// be able to put it back exactly).
func captureAndRemoveSheet(m *Model, id uint32) (*model.Sheet, int, map[model.CellAddress]string) {
	index := m.wb.SheetIndex(id)
	sheet := m.wb.Sheet(id)
	formulas := formulaTextSnapshot(m.wb)
	m.wb.DeleteSheet(id)
	return sheet, index, formulas
}

// restoreSheetAt is captureAndRemoveSheet's inverse.
func restoreSheetAt(m *Model, sheet *model.Sheet, index int, formulas map[model.CellAddress]string) {
	m.wb.RestoreSheet(sheet, index)
	restoreFormulaText(m.wb, formulas)
}
