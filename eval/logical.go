package eval

import (
	"strings"

	"github.com/calcmesh/calcmesh/ast"
	"github.com/calcmesh/calcmesh/model"
)

// toBool coerces v for logical functions: booleans pass through, numbers
// are nonzero-truthy, strings are locale-independent "TRUE"/"FALSE"
// (case-insensitive), anything else is #VALUE!.
func toBool(v model.Value) (bool, *model.Value) {
	switch v.Kind {
	case model.KindBoolean:
		return v.Bool, nil
	case model.KindNumber:
		return v.Number != 0, nil
	case model.KindString:
		switch {
		case strings.EqualFold(v.Text, "TRUE"):
			return true, nil
		case strings.EqualFold(v.Text, "FALSE"):
			return false, nil
		}
		bad := model.ErrorValue(model.ErrValue)
		return false, &bad
	case model.KindError:
		return false, &v
	default:
		bad := model.ErrorValue(model.ErrValue)
		return false, &bad
	}
}

// fnIf implements IF(cond, then, [else]); the unevaluated branch is
// never evaluated, matching spreadsheets' short-circuit behavior and
// letting IF guard a branch that would otherwise error.
func fnIf(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) < 2 {
		return model.ErrorValue(model.ErrValue)
	}
	cond := e.evalNode(args[0], owner)
	if cond.IsError() {
		return cond
	}
	b, errv := toBool(cond)
	if errv != nil {
		return *errv
	}
	if b {
		return e.evalNode(args[1], owner)
	}
	if len(args) >= 3 {
		return e.evalNode(args[2], owner)
	}
	return model.BoolValue(false)
}

// fnIfs implements IFS(cond1, val1, [cond2, val2, ...]): the first true
// condition's paired value is returned; no match is #N/A.
func fnIfs(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	for i := 0; i+1 < len(args); i += 2 {
		cond := e.evalNode(args[i], owner)
		if cond.IsError() {
			return cond
		}
		b, errv := toBool(cond)
		if errv != nil {
			return *errv
		}
		if b {
			return e.evalNode(args[i+1], owner)
		}
	}
	return model.ErrorValue(model.ErrNA)
}

// fnIfError absorbs any error from the first argument, returning the
// second instead (spec §4.6 "specific functions may absorb errors").
func fnIfError(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) < 2 {
		return model.ErrorValue(model.ErrValue)
	}
	v := e.evalNode(args[0], owner)
	if v.IsError() {
		return e.evalNode(args[1], owner)
	}
	return v
}

// fnIfNA absorbs only #N/A, letting other errors propagate.
func fnIfNA(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) < 2 {
		return model.ErrorValue(model.ErrValue)
	}
	v := e.evalNode(args[0], owner)
	if v.IsError() && v.Err.Kind == model.ErrNA {
		return e.evalNode(args[1], owner)
	}
	return v
}

func fnIsError(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) != 1 {
		return model.ErrorValue(model.ErrValue)
	}
	return model.BoolValue(e.evalNode(args[0], owner).IsError())
}

func fnIsErr(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) != 1 {
		return model.ErrorValue(model.ErrValue)
	}
	v := e.evalNode(args[0], owner)
	return model.BoolValue(v.IsError() && v.Err.Kind != model.ErrNA)
}

func fnIsNA(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) != 1 {
		return model.ErrorValue(model.ErrValue)
	}
	v := e.evalNode(args[0], owner)
	return model.BoolValue(v.IsError() && v.Err.Kind == model.ErrNA)
}

func fnIsBlank(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) != 1 {
		return model.ErrorValue(model.ErrValue)
	}
	return model.BoolValue(e.evalNode(args[0], owner).IsEmpty())
}

func fnIsNumber(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) != 1 {
		return model.ErrorValue(model.ErrValue)
	}
	return model.BoolValue(e.evalNode(args[0], owner).Kind == model.KindNumber)
}

func fnIsText(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) != 1 {
		return model.ErrorValue(model.ErrValue)
	}
	return model.BoolValue(e.evalNode(args[0], owner).Kind == model.KindString)
}

func fnIsLogical(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) != 1 {
		return model.ErrorValue(model.ErrValue)
	}
	return model.BoolValue(e.evalNode(args[0], owner).Kind == model.KindBoolean)
}

func fnAnd(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	result := true
	for _, n := range args {
		for _, v := range e.flattenArg(n, owner) {
			if v.IsError() {
				return v
			}
			if v.Kind != model.KindBoolean && v.Kind != model.KindNumber {
				continue
			}
			b, errv := toBool(v)
			if errv != nil {
				return *errv
			}
			result = result && b
		}
	}
	return model.BoolValue(result)
}

func fnOr(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	result := false
	for _, n := range args {
		for _, v := range e.flattenArg(n, owner) {
			if v.IsError() {
				return v
			}
			if v.Kind != model.KindBoolean && v.Kind != model.KindNumber {
				continue
			}
			b, errv := toBool(v)
			if errv != nil {
				return *errv
			}
			result = result || b
		}
	}
	return model.BoolValue(result)
}

func fnNot(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) != 1 {
		return model.ErrorValue(model.ErrValue)
	}
	v := e.evalNode(args[0], owner)
	if v.IsError() {
		return v
	}
	b, errv := toBool(v)
	if errv != nil {
		return *errv
	}
	return model.BoolValue(!b)
}

func fnTrue(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	return model.BoolValue(true)
}

func fnFalse(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	return model.BoolValue(false)
}
