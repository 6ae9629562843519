package eval

import "github.com/calcmesh/calcmesh/model"

// dependencyGraph tracks, for each dependent cell, the precedent cells
// and ranges its last evaluation read. Grounded on the teacher's
// graph.go DependencyGraph/DependencyNode, generalized from the
// teacher's single-sheet CellAddress/RangeAddress keys to this package's
// (already sheet-qualified) model.CellAddress/model.RangeAddress, and
// simplified to the subset eval actually needs: recording precedents so
// a later mutation can mark the right cells dirty. The graph is private
// to eval: MarkDirty walks it (allDependents) to flag every transitive
// dependent of a changed cell; the edit package never reads it.
type dependencyGraph struct {
	cellPrecedents  map[model.CellAddress]map[model.CellAddress]struct{}
	cellDependents  map[model.CellAddress]map[model.CellAddress]struct{}
	rangePrecedents map[model.CellAddress]map[model.RangeAddress]struct{}
	rangeObservers  map[model.RangeAddress]map[model.CellAddress]struct{}
}

func newDependencyGraph() *dependencyGraph {
	return &dependencyGraph{
		cellPrecedents:  make(map[model.CellAddress]map[model.CellAddress]struct{}),
		cellDependents:  make(map[model.CellAddress]map[model.CellAddress]struct{}),
		rangePrecedents: make(map[model.CellAddress]map[model.RangeAddress]struct{}),
		rangeObservers:  make(map[model.RangeAddress]map[model.CellAddress]struct{}),
	}
}

// addCellDependency records that dependent reads precedent, in both
// directions, the way the teacher's AddCellDependency does.
func (g *dependencyGraph) addCellDependency(dependent, precedent model.CellAddress) {
	if g.cellPrecedents[dependent] == nil {
		g.cellPrecedents[dependent] = make(map[model.CellAddress]struct{})
	}
	g.cellPrecedents[dependent][precedent] = struct{}{}

	if g.cellDependents[precedent] == nil {
		g.cellDependents[precedent] = make(map[model.CellAddress]struct{})
	}
	g.cellDependents[precedent][dependent] = struct{}{}
}

// addRangeDependency records that dependent reads every cell in rng,
// mirroring the teacher's AddRangeDependency/rangeObservers split.
func (g *dependencyGraph) addRangeDependency(dependent model.CellAddress, rng model.RangeAddress) {
	if g.rangePrecedents[dependent] == nil {
		g.rangePrecedents[dependent] = make(map[model.RangeAddress]struct{})
	}
	g.rangePrecedents[dependent][rng] = struct{}{}

	if g.rangeObservers[rng] == nil {
		g.rangeObservers[rng] = make(map[model.CellAddress]struct{})
	}
	g.rangeObservers[rng][dependent] = struct{}{}
}

// clearDependencies drops every precedent edge recorded for dependent,
// the step a re-evaluation takes before re-adding fresh edges (grounded
// on the teacher's ClearDependencies, called before each Call of a
// formula cell so stale precedents don't linger after the formula text
// changes and drops a reference).
func (g *dependencyGraph) clearDependencies(dependent model.CellAddress) {
	for precedent := range g.cellPrecedents[dependent] {
		delete(g.cellDependents[precedent], dependent)
		if len(g.cellDependents[precedent]) == 0 {
			delete(g.cellDependents, precedent)
		}
	}
	delete(g.cellPrecedents, dependent)

	for rng := range g.rangePrecedents[dependent] {
		delete(g.rangeObservers[rng], dependent)
		if len(g.rangeObservers[rng]) == 0 {
			delete(g.rangeObservers, rng)
		}
	}
	delete(g.rangePrecedents, dependent)
}

// dependentsOf returns every cell directly depending on precedent,
// either through a cell reference or through a range that covers it
// (grounded on the teacher's GetDirectDependents + MarkCellIfInRangeDirty).
func (g *dependencyGraph) dependentsOf(precedent model.CellAddress) []model.CellAddress {
	seen := make(map[model.CellAddress]struct{})
	for dependent := range g.cellDependents[precedent] {
		seen[dependent] = struct{}{}
	}
	for rng, observers := range g.rangeObservers {
		if rng.SheetID != precedent.SheetID {
			continue
		}
		if precedent.Row < rng.StartRow || precedent.Row > rng.EndRow {
			continue
		}
		if precedent.Column < rng.StartColumn || precedent.Column > rng.EndColumn {
			continue
		}
		for dependent := range observers {
			seen[dependent] = struct{}{}
		}
	}
	out := make([]model.CellAddress, 0, len(seen))
	for addr := range seen {
		out = append(out, addr)
	}
	return out
}

// allDependents returns the transitive closure of dependentsOf, grounded
// on the teacher's GetAllDependents/collectDependents recursion.
func (g *dependencyGraph) allDependents(root model.CellAddress) []model.CellAddress {
	visited := make(map[model.CellAddress]struct{})
	var walk func(model.CellAddress)
	walk = func(addr model.CellAddress) {
		for _, dep := range g.dependentsOf(addr) {
			if _, ok := visited[dep]; ok {
				continue
			}
			visited[dep] = struct{}{}
			walk(dep)
		}
	}
	walk(root)
	out := make([]model.CellAddress, 0, len(visited))
	for addr := range visited {
		out = append(out, addr)
	}
	return out
}
