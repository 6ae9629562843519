package model_test

import (
	"testing"

	"github.com/calcmesh/calcmesh/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSheetSetAndGetCell(t *testing.T) {
	s := model.NewSheet(1, "Sheet1")
	assert.Nil(t, s.Cell(5, 5))

	s.SetCell(5, 5, &model.Cell{Literal: model.NumberValue(42)})
	got := s.Cell(5, 5)
	require.NotNil(t, got)
	assert.Equal(t, 42.0, got.Literal.Number)
	assert.Equal(t, 1, s.TotalCells())
}

func TestSheetSetCellNilClears(t *testing.T) {
	s := model.NewSheet(1, "Sheet1")
	s.SetCell(1, 1, &model.Cell{Literal: model.NumberValue(1)})
	assert.Equal(t, 1, s.TotalCells())
	s.SetCell(1, 1, nil)
	assert.Nil(t, s.Cell(1, 1))
	assert.Equal(t, 0, s.TotalCells())
}

func TestSheetCellsAcrossChunkBoundary(t *testing.T) {
	s := model.NewSheet(1, "Sheet1")
	// 256x256 chunking: place cells in two distinct chunks.
	s.SetCell(1, 1, &model.Cell{Literal: model.NumberValue(1)})
	s.SetCell(300, 300, &model.Cell{Literal: model.NumberValue(2)})
	assert.Equal(t, 2, s.TotalCells())

	seen := map[float64]bool{}
	for cell := range s.Cells() {
		seen[cell.Literal.Number] = true
	}
	assert.True(t, seen[1])
	assert.True(t, seen[2])
}

func TestSheetRowHeightDefaultsAndOverrides(t *testing.T) {
	s := model.NewSheet(1, "Sheet1")
	assert.Equal(t, s.DefaultRowHeight, s.RowHeight(3))
	s.SetRowHeight(3, 30)
	assert.Equal(t, 30.0, s.RowHeight(3))
	assert.Equal(t, s.DefaultRowHeight, s.RowHeight(4))
}

func TestSheetColumnWidthSplitsRanges(t *testing.T) {
	s := model.NewSheet(1, "Sheet1")
	s.SetColumnWidth(1, 10, 50)
	assert.Equal(t, 50.0, s.ColumnWidth(5))

	// narrower overwrite in the middle splits the original range into
	// left/right remainders plus the new middle segment.
	s.SetColumnWidth(4, 6, 80)
	assert.Equal(t, 50.0, s.ColumnWidth(2))
	assert.Equal(t, 80.0, s.ColumnWidth(5))
	assert.Equal(t, 50.0, s.ColumnWidth(8))
}

func TestSheetColumnStyleIndependentOfWidth(t *testing.T) {
	s := model.NewSheet(1, "Sheet1")
	s.SetColumnWidth(1, 5, 60)
	s.SetColumnStyle(2, 3, 7)
	assert.Equal(t, uint32(7), s.ColumnStyle(2))
	assert.Equal(t, uint32(0), s.ColumnStyle(1))
	assert.Equal(t, 60.0, s.ColumnWidth(2))
}
