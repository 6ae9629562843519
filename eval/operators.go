package eval

import (
	"math"

	"github.com/calcmesh/calcmesh/ast"
	"github.com/calcmesh/calcmesh/model"
)

func (e *Evaluator) evalUnary(u *ast.Unary, owner model.CellAddress) model.Value {
	operand := e.evalNode(u.Operand, owner)
	if operand.IsError() {
		return operand
	}
	n, errv := toArithmetic(operand)
	if errv != nil {
		return *errv
	}
	switch u.Op {
	case ast.Neg:
		return model.NumberValue(-n)
	case ast.Pct:
		return model.NumberValue(n / 100)
	default:
		return model.ErrorValue(model.ErrError)
	}
}

func (e *Evaluator) evalBinary(b *ast.BinaryExpr, owner model.CellAddress) model.Value {
	if b.Op == ast.RangeOp {
		return e.evalRangeOperator(b, owner)
	}

	left := e.evalNode(b.Left, owner)
	if left.IsError() {
		return left
	}
	right := e.evalNode(b.Right, owner)
	if right.IsError() {
		return right
	}

	switch b.Op {
	case ast.Concat:
		return model.StringValue(toDisplayString(left) + toDisplayString(right))
	case ast.Eq, ast.Ne, ast.Lt, ast.Le, ast.Gt, ast.Ge:
		return compareResult(b.Op, compareValues(left, right))
	default:
		return e.evalArithmetic(b.Op, left, right)
	}
}

func (e *Evaluator) evalArithmetic(op ast.BinOp, left, right model.Value) model.Value {
	ln, errv := toArithmetic(left)
	if errv != nil {
		return *errv
	}
	rn, errv := toArithmetic(right)
	if errv != nil {
		return *errv
	}
	switch op {
	case ast.Add:
		return model.NumberValue(ln + rn)
	case ast.Sub:
		return model.NumberValue(ln - rn)
	case ast.Mul:
		return model.NumberValue(ln * rn)
	case ast.Div:
		if rn == 0 {
			return model.ErrorValue(model.ErrDiv0)
		}
		return model.NumberValue(ln / rn)
	case ast.Pow:
		result := math.Pow(ln, rn)
		if math.IsNaN(result) || math.IsInf(result, 0) {
			return model.ErrorValue(model.ErrNum)
		}
		return model.NumberValue(result)
	default:
		return model.ErrorValue(model.ErrError)
	}
}

func compareResult(op ast.BinOp, cmp int) model.Value {
	switch op {
	case ast.Eq:
		return model.BoolValue(cmp == 0)
	case ast.Ne:
		return model.BoolValue(cmp != 0)
	case ast.Lt:
		return model.BoolValue(cmp < 0)
	case ast.Le:
		return model.BoolValue(cmp <= 0)
	case ast.Gt:
		return model.BoolValue(cmp > 0)
	case ast.Ge:
		return model.BoolValue(cmp >= 0)
	default:
		return model.ErrorValue(model.ErrError)
	}
}

// evalRangeOperator handles a BinaryExpr tagged RangeOp that the parser
// produced from two Reference operands joined by ':' but did not fold
// into an ast.Range node (e.g. a range expression nested inside a larger
// expression rather than a bare function argument). Both operands must
// be references on the same sheet (spec §4.6).
func (e *Evaluator) evalRangeOperator(b *ast.BinaryExpr, owner model.CellAddress) model.Value {
	leftRef, ok := b.Left.(*ast.Reference)
	if !ok {
		return model.ErrorValue(model.ErrValue)
	}
	rightRef, ok := b.Right.(*ast.Reference)
	if !ok {
		return model.ErrorValue(model.ErrValue)
	}
	return e.evalRangeAggregate(ast.Range{Left: *leftRef, Right: *rightRef}, owner)
}
