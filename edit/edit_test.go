package edit_test

import (
	"testing"

	"github.com/calcmesh/calcmesh/edit"
	"github.com/calcmesh/calcmesh/eval"
	"github.com/calcmesh/calcmesh/locale"
	"github.com/calcmesh/calcmesh/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorkbookWithSheet(t *testing.T) (*model.Workbook, *model.Sheet) {
	t.Helper()
	wb := model.NewWorkbook(locale.EnUS)
	s, err := wb.AddSheet("Sheet1")
	require.Nil(t, err)
	return wb, s
}

func content(t *testing.T, wb *model.Workbook, addr model.CellAddress) string {
	t.Helper()
	text, err := wb.GetCellContent(addr)
	require.Nil(t, err)
	return text
}

func TestInsertColumnsShiftsCellData(t *testing.T) {
	wb, s := newWorkbookWithSheet(t)
	require.Nil(t, wb.SetUserInput(model.CellAddress{SheetID: s.ID, Row: 1, Column: 2}, "hello"))

	require.Nil(t, edit.InsertColumns(wb, s.ID, 2, 1))

	assert.Nil(t, s.Cell(1, 2))
	moved := s.Cell(1, 3)
	require.NotNil(t, moved)
	assert.Equal(t, "hello", moved.Literal.Text)
}

func TestInsertColumnsRewritesReferences(t *testing.T) {
	wb, s := newWorkbookWithSheet(t)
	require.Nil(t, wb.SetUserInput(model.CellAddress{SheetID: s.ID, Row: 1, Column: 1}, "10"))
	formulaAddr := model.CellAddress{SheetID: s.ID, Row: 1, Column: 3}
	require.Nil(t, wb.SetUserInput(formulaAddr, "=A1*2"))

	require.Nil(t, edit.InsertColumns(wb, s.ID, 2, 1))

	// the formula cell itself moved from C1 to D1, and its reference to
	// A1 (column 1, left of the insertion point) is untouched.
	moved := s.Cell(1, 4)
	require.NotNil(t, moved)
	assert.Equal(t, "=A1*2", content(t, wb, model.CellAddress{SheetID: s.ID, Row: 1, Column: 4}))

	ev := eval.New(wb)
	result := ev.EvaluateCell(model.CellAddress{SheetID: s.ID, Row: 1, Column: 4})
	assert.Equal(t, 20.0, result.Number)
}

func TestInsertColumnsShiftsReferenceTarget(t *testing.T) {
	wb, s := newWorkbookWithSheet(t)
	require.Nil(t, wb.SetUserInput(model.CellAddress{SheetID: s.ID, Row: 1, Column: 2}, "99"))
	formulaAddr := model.CellAddress{SheetID: s.ID, Row: 1, Column: 1}
	require.Nil(t, wb.SetUserInput(formulaAddr, "=B1"))

	require.Nil(t, edit.InsertColumns(wb, s.ID, 2, 1))

	// B1's data moved to C1; the formula at A1 (unmoved, left of the
	// insertion point) must now point at C1.
	assert.Equal(t, "=C1", content(t, wb, model.CellAddress{SheetID: s.ID, Row: 1, Column: 1}))
	ev := eval.New(wb)
	result := ev.EvaluateCell(model.CellAddress{SheetID: s.ID, Row: 1, Column: 1})
	assert.Equal(t, 99.0, result.Number)
}

func TestInsertColumnsRejectsOverflow(t *testing.T) {
	wb, s := newWorkbookWithSheet(t)
	require.Nil(t, wb.SetUserInput(model.CellAddress{SheetID: s.ID, Row: 1, Column: model.LastColumn}, "x"))

	err := edit.InsertColumns(wb, s.ID, 1, 1)
	require.NotNil(t, err)
	assert.Equal(t, model.FailedPrecondition, err.Code)
}

func TestDeleteColumnsClearsAndInvalidatesReferences(t *testing.T) {
	wb, s := newWorkbookWithSheet(t)
	require.Nil(t, wb.SetUserInput(model.CellAddress{SheetID: s.ID, Row: 1, Column: 2}, "42"))
	require.Nil(t, wb.SetUserInput(model.CellAddress{SheetID: s.ID, Row: 1, Column: 1}, "=B1"))

	require.Nil(t, edit.DeleteColumns(wb, s.ID, 2, 1))

	assert.Equal(t, "=#REF!", content(t, wb, model.CellAddress{SheetID: s.ID, Row: 1, Column: 1}))
	ev := eval.New(wb)
	result := ev.EvaluateCell(model.CellAddress{SheetID: s.ID, Row: 1, Column: 1})
	require.True(t, result.IsError())
	assert.Equal(t, model.ErrRef, result.Err.Kind)
}

func TestDeleteColumnsShiftsSurvivingReferencesLeft(t *testing.T) {
	wb, s := newWorkbookWithSheet(t)
	require.Nil(t, wb.SetUserInput(model.CellAddress{SheetID: s.ID, Row: 1, Column: 3}, "7"))
	require.Nil(t, wb.SetUserInput(model.CellAddress{SheetID: s.ID, Row: 1, Column: 1}, "=C1"))

	require.Nil(t, edit.DeleteColumns(wb, s.ID, 2, 1))

	// C1's data moved to B1; A1's reference must track it.
	assert.Equal(t, "=B1", content(t, wb, model.CellAddress{SheetID: s.ID, Row: 1, Column: 1}))
	ev := eval.New(wb)
	result := ev.EvaluateCell(model.CellAddress{SheetID: s.ID, Row: 1, Column: 1})
	assert.Equal(t, 7.0, result.Number)
}

func TestInsertRowsShiftsCellData(t *testing.T) {
	wb, s := newWorkbookWithSheet(t)
	require.Nil(t, wb.SetUserInput(model.CellAddress{SheetID: s.ID, Row: 2, Column: 1}, "hi"))

	require.Nil(t, edit.InsertRows(wb, s.ID, 2, 1))

	assert.Nil(t, s.Cell(2, 1))
	moved := s.Cell(3, 1)
	require.NotNil(t, moved)
	assert.Equal(t, "hi", moved.Literal.Text)
}

func TestMoveColumnRewritesReferencesOnly(t *testing.T) {
	wb, s := newWorkbookWithSheet(t)
	require.Nil(t, wb.SetUserInput(model.CellAddress{SheetID: s.ID, Row: 1, Column: 1}, "5"))
	require.Nil(t, wb.SetUserInput(model.CellAddress{SheetID: s.ID, Row: 2, Column: 1}, "=A1"))

	require.Nil(t, edit.MoveColumn(wb, s.ID, 1, 3))

	// data itself never moved (spec's Open Question decision); only the
	// reference text is rewritten to track column A's new position.
	assert.NotNil(t, s.Cell(1, 1))
	assert.Equal(t, "=C1", content(t, wb, model.CellAddress{SheetID: s.ID, Row: 2, Column: 1}))
}

func TestRenameSheetUpdatesCrossSheetReference(t *testing.T) {
	wb := model.NewWorkbook(locale.EnUS)
	s1, err := wb.AddSheet("Data")
	require.Nil(t, err)
	s2, err := wb.AddSheet("Summary")
	require.Nil(t, err)
	require.Nil(t, wb.SetUserInput(model.CellAddress{SheetID: s1.ID, Row: 1, Column: 1}, "3"))
	require.Nil(t, wb.SetUserInput(model.CellAddress{SheetID: s2.ID, Row: 1, Column: 1}, "=Data!A1"))

	require.Nil(t, edit.RenameSheet(wb, s1.ID, "Renamed"))

	assert.Equal(t, "=Renamed!A1", content(t, wb, model.CellAddress{SheetID: s2.ID, Row: 1, Column: 1}))
}

func TestDeleteSheetInvalidatesReferences(t *testing.T) {
	wb := model.NewWorkbook(locale.EnUS)
	s1, err := wb.AddSheet("Data")
	require.Nil(t, err)
	s2, err := wb.AddSheet("Summary")
	require.Nil(t, err)
	require.Nil(t, wb.SetUserInput(model.CellAddress{SheetID: s2.ID, Row: 1, Column: 1}, "=Data!A1"))

	require.Nil(t, edit.DeleteSheet(wb, s1.ID))

	assert.Equal(t, "=#REF!", content(t, wb, model.CellAddress{SheetID: s2.ID, Row: 1, Column: 1}))
}
