package eval

import (
	"math"

	"github.com/calcmesh/calcmesh/ast"
	"github.com/calcmesh/calcmesh/model"
)

func numArg(e *Evaluator, n ast.Node, owner model.CellAddress) (float64, *model.Value) {
	return toArithmetic(e.evalNode(n, owner))
}

func fnAbs(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) != 1 {
		return model.ErrorValue(model.ErrValue)
	}
	n, errv := numArg(e, args[0], owner)
	if errv != nil {
		return *errv
	}
	return model.NumberValue(math.Abs(n))
}

func fnRound(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) < 1 || len(args) > 2 {
		return model.ErrorValue(model.ErrValue)
	}
	n, errv := numArg(e, args[0], owner)
	if errv != nil {
		return *errv
	}
	digits := 0.0
	if len(args) == 2 {
		digits, errv = numArg(e, args[1], owner)
		if errv != nil {
			return *errv
		}
	}
	scale := math.Pow(10, digits)
	return model.NumberValue(math.Round(n*scale) / scale)
}

func fnSqrt(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) != 1 {
		return model.ErrorValue(model.ErrValue)
	}
	n, errv := numArg(e, args[0], owner)
	if errv != nil {
		return *errv
	}
	if n < 0 {
		return model.ErrorValue(model.ErrNum)
	}
	return model.NumberValue(math.Sqrt(n))
}

func fnPower(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) != 2 {
		return model.ErrorValue(model.ErrValue)
	}
	base, errv := numArg(e, args[0], owner)
	if errv != nil {
		return *errv
	}
	exp, errv := numArg(e, args[1], owner)
	if errv != nil {
		return *errv
	}
	result := math.Pow(base, exp)
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return model.ErrorValue(model.ErrNum)
	}
	return model.NumberValue(result)
}

func fnMod(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) != 2 {
		return model.ErrorValue(model.ErrValue)
	}
	n, errv := numArg(e, args[0], owner)
	if errv != nil {
		return *errv
	}
	d, errv := numArg(e, args[1], owner)
	if errv != nil {
		return *errv
	}
	if d == 0 {
		return model.ErrorValue(model.ErrDiv0)
	}
	m := math.Mod(n, d)
	if m != 0 && (m < 0) != (d < 0) {
		m += d
	}
	return model.NumberValue(m)
}

func fnPi(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	return model.NumberValue(math.Pi)
}

func fnInt(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) != 1 {
		return model.ErrorValue(model.ErrValue)
	}
	n, errv := numArg(e, args[0], owner)
	if errv != nil {
		return *errv
	}
	return model.NumberValue(math.Floor(n))
}

func fnSign(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) != 1 {
		return model.ErrorValue(model.ErrValue)
	}
	n, errv := numArg(e, args[0], owner)
	if errv != nil {
		return *errv
	}
	switch {
	case n > 0:
		return model.NumberValue(1)
	case n < 0:
		return model.NumberValue(-1)
	default:
		return model.NumberValue(0)
	}
}
