package eval

import (
	"strings"

	"github.com/calcmesh/calcmesh/ast"
	"github.com/calcmesh/calcmesh/model"
)

// builtinFunc is the shape of every dispatch-table entry: it receives
// the unevaluated argument nodes (not pre-evaluated values) because some
// archetypes need to tell a range argument from a scalar one (SUM vs.
// IF's lazy branches, lookups' range-as-table argument) before deciding
// how to walk it — the same reason the teacher's Call takes `args ...any`
// rather than forcing every caller through one evaluation shape first.
type builtinFunc func(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value

var dispatch = buildDispatch()

func buildDispatch() map[string]builtinFunc {
	m := map[string]builtinFunc{
		// logical / error-handling
		"IF":      fnIf,
		"IFS":     fnIfs,
		"IFERROR": fnIfError,
		"IFNA":    fnIfNA,
		"ISERROR": fnIsError,
		"ISNA":    fnIsNA,
		"ISERR":   fnIsErr,
		"ISBLANK": fnIsBlank,
		"ISNUMBER": fnIsNumber,
		"ISTEXT":  fnIsText,
		"ISLOGICAL": fnIsLogical,
		"AND":     fnAnd,
		"OR":      fnOr,
		"NOT":     fnNot,
		"TRUE":    fnTrue,
		"FALSE":   fnFalse,

		// text
		"CONCATENATE": fnConcatenate,
		"CONCAT":      fnConcatenate,
		"LEN":         fnLen,
		"UPPER":       fnUpper,
		"LOWER":       fnLower,
		"TRIM":        fnTrim,
		"LEFT":        fnLeft,
		"RIGHT":       fnRight,
		"MID":         fnMid,

		// math
		"ABS":   fnAbs,
		"ROUND": fnRound,
		"SQRT":  fnSqrt,
		"POWER": fnPower,
		"MOD":   fnMod,
		"PI":    fnPi,
		"INT":   fnInt,
		"SIGN":  fnSign,

		// date/time
		"NOW":         fnNow,
		"TODAY":       fnToday,
		"RAND":        fnRand,
		"RANDBETWEEN": fnRandbetween,
		"DATE":        fnDate,
		"TIMEVALUE":   fnTimevalue,

		// aggregators
		"SUM":     fnSum,
		"AVERAGE": fnAverage,
		"COUNT":   fnCount,
		"COUNTA":  fnCounta,
		"MAX":     fnMax,
		"MIN":     fnMin,
		"PRODUCT": fnProduct,
		"STDEV":   fnStdev,

		// conditional aggregators
		"SUMIF":   fnSumif,
		"COUNTIF": fnCountif,

		// lookups
		"VLOOKUP": fnVlookup,
		"INDEX":   fnIndex,
		"MATCH":   fnMatch,

		// database
		"DSUM": fnDsum,
		"DGET": fnDget,

		// complex numbers
		"IMSUM": fnImsum,
		"IMABS": fnImabs,

		// engineering base conversion
		"BIN2DEC": fnBin2Dec,
		"DEC2BIN": fnDec2Bin,

		// financial
		"PV":       fnPV,
		"FV":       fnFV,
		"NPV":      fnNPV,
		"PRICEMAT": fnPricemat,
		"YIELDMAT": fnYieldmat,
	}
	return m
}

func (e *Evaluator) evalFunction(f *ast.Function, owner model.CellAddress) model.Value {
	name := strings.ToUpper(f.Name)
	if fn, ok := dispatch[name]; ok {
		return fn(e, f.Args, owner)
	}
	if model.IsKnownFunction(name) {
		return model.Value{Kind: model.KindError, Err: &model.FormulaError{Kind: model.ErrNImpl, Message: name + " is recognized but not implemented"}}
	}
	return model.ErrorValue(model.ErrName)
}

// flattenArg expands one argument node into its constituent scalar
// values: a Range yields every cell in row-outer, column-inner order
// (spec §4.6 range iteration), an Array yields every element, anything
// else yields itself. Used by aggregators and conditional aggregators.
func (e *Evaluator) flattenArg(n ast.Node, owner model.CellAddress) []model.Value {
	switch v := n.(type) {
	case *ast.Range:
		cr, ok := e.resolveRange(*v, owner)
		if !ok {
			return []model.Value{model.ErrorValue(model.ErrRef)}
		}
		e.graph.addRangeDependency(owner, model.RangeAddress{SheetID: cr.Sheet.ID, StartRow: cr.StartRow, StartColumn: cr.StartCol, EndRow: cr.EndRow, EndColumn: cr.EndCol})
		var out []model.Value
		for _, cell := range cr.Cells() {
			if cell == nil {
				out = append(out, model.Empty())
				continue
			}
			if cell.IsFormula() {
				addr := model.CellAddress{SheetID: cr.Sheet.ID, Row: cell.Row, Column: cell.Column}
				out = append(out, e.EvaluateCell(addr))
			} else {
				out = append(out, cell.Literal)
			}
		}
		return out
	case *ast.Array:
		var out []model.Value
		for _, row := range v.Rows {
			for _, cell := range row {
				out = append(out, e.evalNode(cell, owner))
			}
		}
		return out
	default:
		return []model.Value{e.evalNode(n, owner)}
	}
}
