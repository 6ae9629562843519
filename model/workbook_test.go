package model_test

import (
	"testing"

	"github.com/calcmesh/calcmesh/locale"
	"github.com/calcmesh/calcmesh/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddSheetRejectsDuplicateNames(t *testing.T) {
	wb := model.NewWorkbook(locale.EnUS)
	_, err := wb.AddSheet("Sheet1")
	require.Nil(t, err)
	_, err = wb.AddSheet("sheet1")
	require.NotNil(t, err)
	assert.Equal(t, model.AlreadyExists, err.Code)
}

func TestAddSheetRejectsOverlongName(t *testing.T) {
	wb := model.NewWorkbook(locale.EnUS)
	_, err := wb.AddSheet("ThisSheetNameIsDefinitelyTooLongToBeValid")
	require.NotNil(t, err)
	assert.Equal(t, model.InvalidArgument, err.Code)
}

func TestAddSheetRejectsForbiddenCharacter(t *testing.T) {
	wb := model.NewWorkbook(locale.EnUS)
	_, err := wb.AddSheet("Q1/Q2")
	require.NotNil(t, err)
	assert.Equal(t, model.InvalidArgument, err.Code)
}

func TestRenameSheetRejectsInvalidName(t *testing.T) {
	wb := model.NewWorkbook(locale.EnUS)
	s, _ := wb.AddSheet("Sheet1")
	err := wb.RenameSheet(s.ID, "a/b")
	require.NotNil(t, err)
	assert.Equal(t, model.InvalidArgument, err.Code)
}

func TestSetUserInputClassifiesNumber(t *testing.T) {
	wb := model.NewWorkbook(locale.EnUS)
	s, _ := wb.AddSheet("Sheet1")
	addr := model.CellAddress{SheetID: s.ID, Row: 1, Column: 1}

	require.Nil(t, wb.SetUserInput(addr, "42"))
	cell := s.Cell(1, 1)
	require.NotNil(t, cell)
	assert.False(t, cell.IsFormula())
	assert.Equal(t, model.KindNumber, cell.Literal.Kind)
	assert.Equal(t, 42.0, cell.Literal.Number)
}

func TestSetUserInputClassifiesBoolean(t *testing.T) {
	wb := model.NewWorkbook(locale.EnUS)
	s, _ := wb.AddSheet("Sheet1")
	addr := model.CellAddress{SheetID: s.ID, Row: 1, Column: 1}

	require.Nil(t, wb.SetUserInput(addr, "TRUE"))
	cell := s.Cell(1, 1)
	require.NotNil(t, cell)
	assert.Equal(t, model.KindBoolean, cell.Literal.Kind)
	assert.True(t, cell.Literal.Bool)
}

func TestSetUserInputClassifiesPlainText(t *testing.T) {
	wb := model.NewWorkbook(locale.EnUS)
	s, _ := wb.AddSheet("Sheet1")
	addr := model.CellAddress{SheetID: s.ID, Row: 1, Column: 1}

	require.Nil(t, wb.SetUserInput(addr, "hello world"))
	cell := s.Cell(1, 1)
	require.NotNil(t, cell)
	assert.Equal(t, model.KindString, cell.Literal.Kind)
	assert.Equal(t, "hello world", cell.Literal.Text)
}

func TestSetUserInputStoresFormula(t *testing.T) {
	wb := model.NewWorkbook(locale.EnUS)
	s, _ := wb.AddSheet("Sheet1")
	addr := model.CellAddress{SheetID: s.ID, Row: 1, Column: 1}

	require.Nil(t, wb.SetUserInput(addr, "=1+2"))
	cell := s.Cell(1, 1)
	require.NotNil(t, cell)
	assert.True(t, cell.IsFormula())

	content, err := wb.GetCellContent(addr)
	require.Nil(t, err)
	assert.Equal(t, "=1+2", content)
}

func TestSetUserInputEmptyClearsCell(t *testing.T) {
	wb := model.NewWorkbook(locale.EnUS)
	s, _ := wb.AddSheet("Sheet1")
	addr := model.CellAddress{SheetID: s.ID, Row: 1, Column: 1}

	require.Nil(t, wb.SetUserInput(addr, "1"))
	require.Nil(t, wb.SetUserInput(addr, ""))
	assert.Nil(t, s.Cell(1, 1))
}

func TestRenameSheetUpdatesFormulaReferences(t *testing.T) {
	wb := model.NewWorkbook(locale.EnUS)
	s1, _ := wb.AddSheet("Sheet1")
	_, _ = wb.AddSheet("Sheet2")

	addr := model.CellAddress{SheetID: s1.ID, Row: 1, Column: 1}
	require.Nil(t, wb.SetUserInput(addr, "=Sheet2!A1"))

	s2, ok := wb.SheetByName("Sheet2")
	require.True(t, ok)
	require.Nil(t, wb.RenameSheet(s2.ID, "Renamed"))

	content, err := wb.GetCellContent(addr)
	require.Nil(t, err)
	assert.Equal(t, "=Renamed!A1", content)
}

func TestDeleteSheetInvalidatesReferences(t *testing.T) {
	wb := model.NewWorkbook(locale.EnUS)
	s1, _ := wb.AddSheet("Sheet1")
	s2, _ := wb.AddSheet("Sheet2")

	addr := model.CellAddress{SheetID: s1.ID, Row: 1, Column: 1}
	require.Nil(t, wb.SetUserInput(addr, "=Sheet2!A1"))
	require.Nil(t, wb.DeleteSheet(s2.ID))

	content, err := wb.GetCellContent(addr)
	require.Nil(t, err)
	assert.Contains(t, content, "#REF!")
}

func TestDeleteSheetRejectsLastSheet(t *testing.T) {
	wb := model.NewWorkbook(locale.EnUS)
	s1, _ := wb.AddSheet("Sheet1")
	err := wb.DeleteSheet(s1.ID)
	require.NotNil(t, err)
	assert.Equal(t, model.FailedPrecondition, err.Code)
}

func TestSetCellStyleIsPerCell(t *testing.T) {
	wb := model.NewWorkbook(locale.EnUS)
	s, _ := wb.AddSheet("Sheet1")
	addr1 := model.CellAddress{SheetID: s.ID, Row: 1, Column: 1}
	addr2 := model.CellAddress{SheetID: s.ID, Row: 2, Column: 1}

	require.Nil(t, wb.SetUserInput(addr1, "1"))
	require.Nil(t, wb.SetUserInput(addr2, "2"))

	bold := model.DefaultStyle()
	bold.Font.Bold = true
	require.Nil(t, wb.SetCellStyle(addr1, bold))

	style1, _ := wb.GetStyleForCell(addr1)
	style2, _ := wb.GetStyleForCell(addr2)
	assert.True(t, style1.Font.Bold)
	assert.False(t, style2.Font.Bold)
}
