package eval

import (
	"strings"

	"github.com/calcmesh/calcmesh/ast"
	"github.com/calcmesh/calcmesh/model"
)

func fnConcatenate(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	var b strings.Builder
	for _, n := range args {
		for _, v := range e.flattenArg(n, owner) {
			if v.IsError() {
				return v
			}
			b.WriteString(toDisplayString(v))
		}
	}
	return model.StringValue(b.String())
}

// textArg evaluates a single-argument text function's operand, coercing
// non-string scalars via toDisplayString and propagating errors.
func textArg(e *Evaluator, n ast.Node, owner model.CellAddress) (string, *model.Value) {
	v := e.evalNode(n, owner)
	if v.IsError() {
		return "", &v
	}
	return toDisplayString(v), nil
}

func fnLen(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) != 1 {
		return model.ErrorValue(model.ErrValue)
	}
	s, errv := textArg(e, args[0], owner)
	if errv != nil {
		return *errv
	}
	return model.NumberValue(float64(len([]rune(s))))
}

func fnUpper(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) != 1 {
		return model.ErrorValue(model.ErrValue)
	}
	s, errv := textArg(e, args[0], owner)
	if errv != nil {
		return *errv
	}
	return model.StringValue(strings.ToUpper(s))
}

func fnLower(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) != 1 {
		return model.ErrorValue(model.ErrValue)
	}
	s, errv := textArg(e, args[0], owner)
	if errv != nil {
		return *errv
	}
	return model.StringValue(strings.ToLower(s))
}

func fnTrim(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) != 1 {
		return model.ErrorValue(model.ErrValue)
	}
	s, errv := textArg(e, args[0], owner)
	if errv != nil {
		return *errv
	}
	fields := strings.Fields(s)
	return model.StringValue(strings.Join(fields, " "))
}

func fnLeft(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) < 1 || len(args) > 2 {
		return model.ErrorValue(model.ErrValue)
	}
	s, errv := textArg(e, args[0], owner)
	if errv != nil {
		return *errv
	}
	n := 1
	if len(args) == 2 {
		count, errv := toArithmetic(e.evalNode(args[1], owner))
		if errv != nil {
			return *errv
		}
		n = int(count)
	}
	runes := []rune(s)
	if n < 0 {
		return model.ErrorValue(model.ErrValue)
	}
	if n > len(runes) {
		n = len(runes)
	}
	return model.StringValue(string(runes[:n]))
}

func fnRight(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) < 1 || len(args) > 2 {
		return model.ErrorValue(model.ErrValue)
	}
	s, errv := textArg(e, args[0], owner)
	if errv != nil {
		return *errv
	}
	n := 1
	if len(args) == 2 {
		count, errv := toArithmetic(e.evalNode(args[1], owner))
		if errv != nil {
			return *errv
		}
		n = int(count)
	}
	runes := []rune(s)
	if n < 0 {
		return model.ErrorValue(model.ErrValue)
	}
	if n > len(runes) {
		n = len(runes)
	}
	return model.StringValue(string(runes[len(runes)-n:]))
}

func fnMid(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) != 3 {
		return model.ErrorValue(model.ErrValue)
	}
	s, errv := textArg(e, args[0], owner)
	if errv != nil {
		return *errv
	}
	start, errv := toArithmetic(e.evalNode(args[1], owner))
	if errv != nil {
		return *errv
	}
	length, errv := toArithmetic(e.evalNode(args[2], owner))
	if errv != nil {
		return *errv
	}
	if start < 1 || length < 0 {
		return model.ErrorValue(model.ErrValue)
	}
	runes := []rune(s)
	from := int(start) - 1
	if from > len(runes) {
		return model.StringValue("")
	}
	to := from + int(length)
	if to > len(runes) {
		to = len(runes)
	}
	return model.StringValue(string(runes[from:to]))
}
