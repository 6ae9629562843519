package eval

import (
	"math"

	"github.com/calcmesh/calcmesh/ast"
	"github.com/calcmesh/calcmesh/model"
)

// numericOperands flattens every argument and keeps only values that
// count toward a non-"A"-suffixed aggregator: numbers, and Empty (which
// contributes nothing); strings and booleans inside ranges are ignored
// per spec §4.6, but a scalar string/boolean argument typed directly
// (not through a range) still coerces, matching how spreadsheets treat
// "=SUM(TRUE,1)" (counts) vs "=SUM(A1:A2)" with a TRUE in the range
// (ignored) — flattenArg already erases that distinction for ranges by
// returning raw cell values, so the ignore rule is applied here instead
// of inside flattenArg, keeping flattenArg a dumb expansion.
func numericOperands(e *Evaluator, args []ast.Node, owner model.CellAddress, includeAll bool) ([]float64, *model.Value) {
	var out []float64
	for _, n := range args {
		_, isRange := n.(*ast.Range)
		vs := e.flattenArg(n, owner)
		for _, v := range vs {
			if v.IsError() {
				return nil, &v
			}
			switch v.Kind {
			case model.KindNumber:
				out = append(out, v.Number)
			case model.KindBoolean:
				if includeAll || !isRange {
					if v.Bool {
						out = append(out, 1)
					} else {
						out = append(out, 0)
					}
				}
			case model.KindString:
				if includeAll {
					out = append(out, 0)
				} else if !isRange {
					if f, ok := parseNumericString(v.Text); ok {
						out = append(out, f)
					} else {
						bad := model.ErrorValue(model.ErrValue)
						return nil, &bad
					}
				}
			case model.KindEmpty:
				// contributes nothing
			}
		}
	}
	return out, nil
}

func fnSum(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	nums, errv := numericOperands(e, args, owner, false)
	if errv != nil {
		return *errv
	}
	total := 0.0
	for _, n := range nums {
		total += n
	}
	return model.NumberValue(total)
}

func fnAverage(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	nums, errv := numericOperands(e, args, owner, false)
	if errv != nil {
		return *errv
	}
	if len(nums) == 0 {
		return model.ErrorValue(model.ErrDiv0)
	}
	total := 0.0
	for _, n := range nums {
		total += n
	}
	return model.NumberValue(total / float64(len(nums)))
}

func fnProduct(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	nums, errv := numericOperands(e, args, owner, false)
	if errv != nil {
		return *errv
	}
	if len(nums) == 0 {
		return model.NumberValue(0)
	}
	total := 1.0
	for _, n := range nums {
		total *= n
	}
	return model.NumberValue(total)
}

func fnMax(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	nums, errv := numericOperands(e, args, owner, false)
	if errv != nil {
		return *errv
	}
	if len(nums) == 0 {
		return model.NumberValue(0)
	}
	max := nums[0]
	for _, n := range nums[1:] {
		if n > max {
			max = n
		}
	}
	return model.NumberValue(max)
}

func fnMin(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	nums, errv := numericOperands(e, args, owner, false)
	if errv != nil {
		return *errv
	}
	if len(nums) == 0 {
		return model.NumberValue(0)
	}
	min := nums[0]
	for _, n := range nums[1:] {
		if n < min {
			min = n
		}
	}
	return model.NumberValue(min)
}

func fnCount(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	count := 0
	for _, n := range args {
		for _, v := range e.flattenArg(n, owner) {
			if v.IsError() {
				return v
			}
			if v.Kind == model.KindNumber {
				count++
			}
		}
	}
	return model.NumberValue(float64(count))
}

func fnCounta(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	count := 0
	for _, n := range args {
		for _, v := range e.flattenArg(n, owner) {
			if v.IsError() {
				count++
				continue
			}
			if !v.IsEmpty() {
				count++
			}
		}
	}
	return model.NumberValue(float64(count))
}

func meanOf(nums []float64) float64 {
	if len(nums) == 0 {
		return math.NaN()
	}
	total := 0.0
	for _, n := range nums {
		total += n
	}
	return total / float64(len(nums))
}

// fnStdev implements STDEV (sample standard deviation): empty or
// single-value input is #DIV/0! per spec §4.6's "empty input returns
// ... #DIV/0! for means/stdevs" rule generalized to n<2 (a sample stdev
// needs at least 2 points for an unbiased estimator).
func fnStdev(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	nums, errv := numericOperands(e, args, owner, false)
	if errv != nil {
		return *errv
	}
	if len(nums) < 2 {
		return model.ErrorValue(model.ErrDiv0)
	}
	mean := meanOf(nums)
	sumSq := 0.0
	for _, n := range nums {
		d := n - mean
		sumSq += d * d
	}
	return model.NumberValue(math.Sqrt(sumSq / float64(len(nums)-1)))
}
