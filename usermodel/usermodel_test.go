package usermodel_test

import (
	"testing"

	"github.com/calcmesh/calcmesh/locale"
	"github.com/calcmesh/calcmesh/model"
	"github.com/calcmesh/calcmesh/usermodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newModel(t *testing.T) (*usermodel.Model, *model.Sheet) {
	t.Helper()
	wb := model.NewWorkbook(locale.EnUS)
	s, err := wb.AddSheet("Sheet1")
	require.Nil(t, err)
	m := usermodel.New(wb)
	require.Nil(t, m.SetActiveSheet(s.ID))
	return m, s
}

func content(t *testing.T, m *usermodel.Model, addr model.CellAddress) string {
	t.Helper()
	text, err := m.Workbook().GetCellContent(addr)
	require.Nil(t, err)
	return text
}

func TestSetCellValueUndoRedo(t *testing.T) {
	m, s := newModel(t)
	addr := model.CellAddress{SheetID: s.ID, Row: 1, Column: 1}

	require.Nil(t, m.SetCellValue(addr, "10"))
	assert.Equal(t, "10", content(t, m, addr))

	require.Nil(t, m.SetCellValue(addr, "20"))
	assert.Equal(t, "20", content(t, m, addr))

	assert.True(t, m.Undo())
	assert.Equal(t, "10", content(t, m, addr))

	assert.True(t, m.Undo())
	assert.Equal(t, "", content(t, m, addr))
	assert.False(t, m.Undo())

	assert.True(t, m.Redo())
	assert.Equal(t, "10", content(t, m, addr))
	assert.True(t, m.Redo())
	assert.Equal(t, "20", content(t, m, addr))
	assert.False(t, m.Redo())
}

func TestUndoRecomputesDependents(t *testing.T) {
	m, s := newModel(t)
	a1 := model.CellAddress{SheetID: s.ID, Row: 1, Column: 1}
	b1 := model.CellAddress{SheetID: s.ID, Row: 1, Column: 2}

	require.Nil(t, m.SetCellValue(a1, "1"))
	require.Nil(t, m.SetCellValue(b1, "=A1*10"))
	assert.Equal(t, float64(10), m.Evaluator().EvaluateCell(b1).Number)

	require.Nil(t, m.SetCellValue(a1, "2"))
	assert.Equal(t, float64(20), m.Evaluator().EvaluateCell(b1).Number)

	require.True(t, m.Undo())
	assert.Equal(t, float64(10), m.Evaluator().EvaluateCell(b1).Number)
}

func TestInsertDeleteRowsUndo(t *testing.T) {
	m, s := newModel(t)
	a1 := model.CellAddress{SheetID: s.ID, Row: 1, Column: 1}
	a2 := model.CellAddress{SheetID: s.ID, Row: 2, Column: 1}
	require.Nil(t, m.SetCellValue(a1, "top"))
	require.Nil(t, m.SetCellValue(a2, "=A1"))

	require.Nil(t, m.InsertRows(s.ID, 2, 3))
	assert.Equal(t, "top", content(t, m, a1))
	moved := model.CellAddress{SheetID: s.ID, Row: 5, Column: 1}
	assert.Equal(t, "=A1", content(t, m, moved))

	require.True(t, m.Undo())
	assert.Equal(t, "top", content(t, m, a1))
	assert.Equal(t, "=A1", content(t, m, a2))
	assert.Nil(t, s.Cell(5, 1))
}

func TestDeleteSheetUndoRestoresContent(t *testing.T) {
	m, s := newModel(t)
	addr := model.CellAddress{SheetID: s.ID, Row: 1, Column: 1}
	require.Nil(t, m.SetCellValue(addr, "persisted"))

	other, err := m.NewSheet("Other")
	require.Nil(t, err)
	require.Nil(t, m.DeleteSheet(other.ID))
	assert.Nil(t, m.Workbook().Sheet(other.ID))

	require.True(t, m.Undo())
	restored := m.Workbook().Sheet(other.ID)
	require.NotNil(t, restored)
	assert.Equal(t, "Other", restored.Name)
}

func TestClipboardCutPasteClearsSource(t *testing.T) {
	m, s := newModel(t)
	src := model.CellAddress{SheetID: s.ID, Row: 1, Column: 1}
	dst := model.CellAddress{SheetID: s.ID, Row: 5, Column: 5}
	require.Nil(t, m.SetCellValue(src, "42"))

	require.Nil(t, m.Cut(s.ID, 1, 1, 1, 1))
	require.Nil(t, m.Paste(s.ID, 5, 5))

	assert.Equal(t, "", content(t, m, src))
	assert.Equal(t, "42", content(t, m, dst))

	require.True(t, m.Undo())
	assert.Equal(t, "42", content(t, m, src))
	assert.Equal(t, "", content(t, m, dst))
}

func TestClipboardCopyPasteKeepsSource(t *testing.T) {
	m, s := newModel(t)
	src := model.CellAddress{SheetID: s.ID, Row: 1, Column: 1}
	dst := model.CellAddress{SheetID: s.ID, Row: 2, Column: 2}
	require.Nil(t, m.SetCellValue(src, "hi"))

	require.Nil(t, m.Copy(s.ID, 1, 1, 1, 1))
	require.Nil(t, m.Paste(s.ID, 2, 2))

	assert.Equal(t, "hi", content(t, m, src))
	assert.Equal(t, "hi", content(t, m, dst))
}

func TestPasteCSVSplitsOnLocaleSeparator(t *testing.T) {
	m, s := newModel(t)
	require.Nil(t, m.PasteCSV(s.ID, 1, 1, "a,b,c\n1,2,3"))

	assert.Equal(t, "a", content(t, m, model.CellAddress{SheetID: s.ID, Row: 1, Column: 1}))
	assert.Equal(t, "c", content(t, m, model.CellAddress{SheetID: s.ID, Row: 1, Column: 3}))
	assert.Equal(t, "2", content(t, m, model.CellAddress{SheetID: s.ID, Row: 2, Column: 2}))

	require.True(t, m.Undo())
	assert.Equal(t, "", content(t, m, model.CellAddress{SheetID: s.ID, Row: 1, Column: 1}))
}

func TestArrowNavigationScrolls(t *testing.T) {
	m, s := newModel(t)
	s.SetColumnWidth(1, 100, 50)
	m.SetWindowSize(120, 500)
	require.Nil(t, m.SetSelectedCell(1, 1))

	m.OnArrowRight()
	m.OnArrowRight()
	m.OnArrowRight()
	v := m.View()
	assert.Equal(t, uint32(4), v.SelectedCol)
	assert.True(t, v.ScrollCol > 1)
}

func TestMoveColumnWithDataPreservesReferences(t *testing.T) {
	m, s := newModel(t)
	a1 := model.CellAddress{SheetID: s.ID, Row: 1, Column: 1}
	c1 := model.CellAddress{SheetID: s.ID, Row: 1, Column: 3}
	require.Nil(t, m.SetCellValue(a1, "5"))
	require.Nil(t, m.SetCellValue(c1, "=A1"))

	require.Nil(t, m.MoveColumnWithData(s.ID, 1, 2))

	moved := model.CellAddress{SheetID: s.ID, Row: 1, Column: 2}
	assert.Equal(t, "5", content(t, m, moved))
	assert.Equal(t, "=B1", content(t, m, c1))

	require.True(t, m.Undo())
	assert.Equal(t, "5", content(t, m, a1))
	assert.Equal(t, "=A1", content(t, m, c1))
}
