package eval

import (
	"strconv"
	"strings"

	"github.com/calcmesh/calcmesh/ast"
	"github.com/calcmesh/calcmesh/model"
)

// criterion is a parsed SUMIF/COUNTIF-style match predicate (spec §4.6
// "criteria strings parse an optional comparator prefix").
type criterion struct {
	comparator string // "", ">=", "<=", "<>", ">", "<", "="
	operand    model.Value
	isWildcard bool
	pattern    string // lowercased, with * -> .*-equivalent handled by matchWildcard
}

var comparatorPrefixes = []string{">=", "<=", "<>", ">", "<", "="}

// parseCriterion builds a criterion from a SUMIF-style argument value.
// Non-string criteria (a bare number or boolean) mean plain equality.
func parseCriterion(v model.Value) criterion {
	if v.Kind != model.KindString {
		return criterion{comparator: "=", operand: v}
	}
	text := v.Text
	for _, prefix := range comparatorPrefixes {
		if strings.HasPrefix(text, prefix) {
			rest := text[len(prefix):]
			return criterionFromOperand(prefix, rest)
		}
	}
	return criterionFromOperand("=", text)
}

func criterionFromOperand(comparator, rest string) criterion {
	if comparator == "=" && strings.ContainsAny(rest, "*?") {
		return criterion{comparator: comparator, isWildcard: true, pattern: strings.ToLower(rest)}
	}
	if f, err := strconv.ParseFloat(rest, 64); err == nil {
		return criterion{comparator: comparator, operand: model.NumberValue(f)}
	}
	return criterion{comparator: comparator, operand: model.StringValue(rest)}
}

// matches reports whether v satisfies c, dispatching by comparator kind.
func (c criterion) matches(v model.Value) bool {
	if c.isWildcard {
		if v.Kind != model.KindString {
			return false
		}
		return matchWildcard(strings.ToLower(v.Text), c.pattern)
	}
	cmp := compareValues(v, c.operand)
	switch c.comparator {
	case ">=":
		return cmp >= 0
	case "<=":
		return cmp <= 0
	case "<>":
		return cmp != 0
	case ">":
		return cmp > 0
	case "<":
		return cmp < 0
	default: // "="
		return cmp == 0
	}
}

// matchWildcard implements the SUMIF wildcard grammar: '*' matches any
// run of characters, '?' matches exactly one, '~' escapes either.
func matchWildcard(text, pattern string) bool {
	return wildcardMatch([]rune(text), []rune(pattern))
}

func wildcardMatch(text, pattern []rune) bool {
	if len(pattern) == 0 {
		return len(text) == 0
	}
	switch pattern[0] {
	case '~':
		if len(pattern) < 2 || len(text) == 0 || text[0] != pattern[1] {
			return false
		}
		return wildcardMatch(text[1:], pattern[2:])
	case '*':
		for i := 0; i <= len(text); i++ {
			if wildcardMatch(text[i:], pattern[1:]) {
				return true
			}
		}
		return false
	case '?':
		if len(text) == 0 {
			return false
		}
		return wildcardMatch(text[1:], pattern[1:])
	default:
		if len(text) == 0 || text[0] != pattern[0] {
			return false
		}
		return wildcardMatch(text[1:], pattern[1:])
	}
}

// rangeCells resolves a Range argument node to its flattened cell values
// in row-major order, so a criteria range and a sum range of the same
// shape pair up by index; any other node kind reports false.
func (e *Evaluator) rangeCells(n ast.Node, owner model.CellAddress) ([]model.Value, bool) {
	r, ok := n.(*ast.Range)
	if !ok {
		return nil, false
	}
	cr, ok := e.resolveRange(*r, owner)
	if !ok {
		return nil, false
	}
	var out []model.Value
	for _, cell := range cr.Cells() {
		if cell == nil {
			out = append(out, model.Empty())
			continue
		}
		if cell.IsFormula() {
			out = append(out, e.EvaluateCell(model.CellAddress{SheetID: cr.Sheet.ID, Row: cell.Row, Column: cell.Column}))
		} else {
			out = append(out, cell.Literal)
		}
	}
	return out, true
}

func fnSumif(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) < 2 {
		return model.ErrorValue(model.ErrValue)
	}
	criteriaCells, ok := e.rangeCells(args[0], owner)
	if !ok {
		return model.ErrorValue(model.ErrValue)
	}
	critValue := e.evalNode(args[1], owner)
	if critValue.IsError() {
		return critValue
	}
	crit := parseCriterion(critValue)

	sumCells := criteriaCells
	if len(args) >= 3 {
		cells, ok := e.rangeCells(args[2], owner)
		if !ok {
			return model.ErrorValue(model.ErrValue)
		}
		sumCells = cells
	}
	if len(sumCells) != len(criteriaCells) {
		return model.ErrorValue(model.ErrValue)
	}

	total := 0.0
	for i, cv := range criteriaCells {
		if !crit.matches(cv) {
			continue
		}
		if sumCells[i].Kind == model.KindNumber {
			total += sumCells[i].Number
		}
	}
	return model.NumberValue(total)
}

func fnCountif(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) != 2 {
		return model.ErrorValue(model.ErrValue)
	}
	criteriaCells, ok := e.rangeCells(args[0], owner)
	if !ok {
		return model.ErrorValue(model.ErrValue)
	}
	critValue := e.evalNode(args[1], owner)
	if critValue.IsError() {
		return critValue
	}
	crit := parseCriterion(critValue)

	count := 0
	for _, cv := range criteriaCells {
		if crit.matches(cv) {
			count++
		}
	}
	return model.NumberValue(float64(count))
}
