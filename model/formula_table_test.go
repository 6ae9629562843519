package model_test

import (
	"testing"

	"github.com/calcmesh/calcmesh/ast"
	"github.com/calcmesh/calcmesh/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func num(v float64) ast.Node { return &ast.Number{Value: v} }

func TestFormulaTableDedupsByCanonicalText(t *testing.T) {
	ft := model.NewFormulaTable()
	a1 := model.CellAddress{SheetID: 1, Row: 1, Column: 1}
	a2 := model.CellAddress{SheetID: 1, Row: 2, Column: 1}

	id1 := ft.Intern(num(5), a1)
	id2 := ft.Intern(num(5), a2)
	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, ft.Count())

	cells := ft.CellsUsing(id1)
	assert.Len(t, cells, 2)
}

func TestFormulaTableReleaseRemovesWhenUnreferenced(t *testing.T) {
	ft := model.NewFormulaTable()
	a1 := model.CellAddress{SheetID: 1, Row: 1, Column: 1}
	id := ft.Intern(num(1), a1)
	ft.Release(id, a1)
	_, ok := ft.Get(id)
	assert.False(t, ok)
	assert.Equal(t, 0, ft.Count())
}

func TestFormulaTableInternReplacesCellsPriorFormula(t *testing.T) {
	ft := model.NewFormulaTable()
	a1 := model.CellAddress{SheetID: 1, Row: 1, Column: 1}
	first := ft.Intern(num(1), a1)
	second := ft.Intern(num(2), a1)
	assert.NotEqual(t, first, second)

	_, ok := ft.Get(first)
	assert.False(t, ok, "re-pointing a cell must release its old formula")

	node, ok := ft.Get(second)
	require.True(t, ok)
	assert.Equal(t, ast.ToR1C1(node), ast.ToR1C1(num(2)))
}

func TestFormulaTableReplaceRebuildsIndex(t *testing.T) {
	ft := model.NewFormulaTable()
	a1 := model.CellAddress{SheetID: 1, Row: 1, Column: 1}
	id := ft.Intern(num(1), a1)
	ft.Replace(id, num(99))

	node, ok := ft.Get(id)
	require.True(t, ok)
	assert.Equal(t, ast.ToR1C1(num(99)), ast.ToR1C1(node))

	// interning the new canonical text again should now dedup against id.
	id2 := ft.Intern(num(99), model.CellAddress{SheetID: 1, Row: 2, Column: 1})
	assert.Equal(t, id, id2)
}
