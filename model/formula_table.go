package model

import "github.com/calcmesh/calcmesh/ast"

// FormulaTable stores every distinct formula once, keyed by its
// canonical R1C1 text (spec §4.2 "stores each formula canonically in
// R1C1 form"), and tracks which cells reference it. Grounded on the
// teacher's formula.go (ASTKey dedup, cellsUsingFormula/formulaAtCell
// reverse index), adapted to key on ast.ToR1C1 output directly instead
// of a teacher-specific ASTNode.ToString.
type FormulaTable struct {
	index     map[string]uint32
	nodes     map[uint32]ast.Node
	refCounts map[uint32]int

	cellsUsing map[uint32]map[CellAddress]struct{}
	cellOf     map[CellAddress]uint32

	nextID uint32
}

func NewFormulaTable() *FormulaTable {
	return &FormulaTable{
		index:      make(map[string]uint32),
		nodes:      make(map[uint32]ast.Node),
		refCounts:  make(map[uint32]int),
		cellsUsing: make(map[uint32]map[CellAddress]struct{}),
		cellOf:     make(map[CellAddress]uint32),
		nextID:     1,
	}
}

// Intern stores (or dedups) n and records that cell now uses it,
// releasing whatever formula that cell previously held.
func (ft *FormulaTable) Intern(n ast.Node, cell CellAddress) uint32 {
	key := ast.ToR1C1(n)
	if old, ok := ft.cellOf[cell]; ok {
		ft.Release(old, cell)
	}

	var id uint32
	if existing, ok := ft.index[key]; ok {
		id = existing
		ft.refCounts[id]++
	} else {
		id = ft.nextID
		ft.nextID++
		ft.index[key] = id
		ft.nodes[id] = n
		ft.refCounts[id] = 1
	}

	if ft.cellsUsing[id] == nil {
		ft.cellsUsing[id] = make(map[CellAddress]struct{})
	}
	ft.cellsUsing[id][cell] = struct{}{}
	ft.cellOf[cell] = id
	return id
}

func (ft *FormulaTable) Get(id uint32) (ast.Node, bool) {
	n, ok := ft.nodes[id]
	return n, ok
}

func (ft *FormulaTable) CellFormula(cell CellAddress) (uint32, bool) {
	id, ok := ft.cellOf[cell]
	return id, ok
}

// Release drops cell's reference to id, removing the formula entirely
// once its reference count reaches zero.
func (ft *FormulaTable) Release(id uint32, cell CellAddress) {
	if cells, ok := ft.cellsUsing[id]; ok {
		delete(cells, cell)
		if len(cells) == 0 {
			delete(ft.cellsUsing, id)
		}
	}
	delete(ft.cellOf, cell)
	ft.refCounts[id]--
	if ft.refCounts[id] <= 0 {
		if n, ok := ft.nodes[id]; ok {
			delete(ft.index, ast.ToR1C1(n))
		}
		delete(ft.nodes, id)
		delete(ft.refCounts, id)
		delete(ft.cellsUsing, id)
	}
}

// CellsUsing returns every cell whose formula is id — the dependents the
// evaluator must re-mark dirty after id's node changes (spec §4.6).
func (ft *FormulaTable) CellsUsing(id uint32) []CellAddress {
	cells := ft.cellsUsing[id]
	out := make([]CellAddress, 0, len(cells))
	for c := range cells {
		out = append(out, c)
	}
	return out
}

// Replace swaps the node stored at id in place, used by the structural
// edit engine after displacing every reference inside a formula. The
// canonical-text index is rebuilt since the key changed.
func (ft *FormulaTable) Replace(id uint32, n ast.Node) {
	if old, ok := ft.nodes[id]; ok {
		delete(ft.index, ast.ToR1C1(old))
	}
	ft.nodes[id] = n
	ft.index[ast.ToR1C1(n)] = id
}

func (ft *FormulaTable) Count() int { return len(ft.index) }
