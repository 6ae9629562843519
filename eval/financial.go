package eval

import (
	"math"

	"github.com/calcmesh/calcmesh/ast"
	"github.com/calcmesh/calcmesh/model"
	"github.com/shopspring/decimal"
)

// fnPV implements PV(rate, nper, pmt, [fv], [type]) using the standard
// annuity present-value formula.
func fnPV(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) < 3 || len(args) > 5 {
		return model.ErrorValue(model.ErrValue)
	}
	rate, errv := numArg(e, args[0], owner)
	if errv != nil {
		return *errv
	}
	nper, errv := numArg(e, args[1], owner)
	if errv != nil {
		return *errv
	}
	pmt, errv := numArg(e, args[2], owner)
	if errv != nil {
		return *errv
	}
	fv := 0.0
	if len(args) >= 4 {
		fv, errv = numArg(e, args[3], owner)
		if errv != nil {
			return *errv
		}
	}
	due, ok := dueFactor(e, args, 4, rate, owner)
	if !ok {
		return model.ErrorValue(model.ErrValue)
	}
	if rate == 0 {
		return model.NumberValue(-(fv + pmt*nper))
	}
	annuityFactor := (1 - math.Pow(1+rate, -nper)) / rate
	pv := -(pmt*annuityFactor*due + fv*math.Pow(1+rate, -nper))
	return model.NumberValue(pv)
}

// fnFV implements FV(rate, nper, pmt, [pv], [type]) — the mathematical
// inverse of fnPV for the same annuity shape.
func fnFV(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) < 3 || len(args) > 5 {
		return model.ErrorValue(model.ErrValue)
	}
	rate, errv := numArg(e, args[0], owner)
	if errv != nil {
		return *errv
	}
	nper, errv := numArg(e, args[1], owner)
	if errv != nil {
		return *errv
	}
	pmt, errv := numArg(e, args[2], owner)
	if errv != nil {
		return *errv
	}
	pv := 0.0
	if len(args) >= 4 {
		pv, errv = numArg(e, args[3], owner)
		if errv != nil {
			return *errv
		}
	}
	due, ok := dueFactor(e, args, 4, rate, owner)
	if !ok {
		return model.ErrorValue(model.ErrValue)
	}
	if rate == 0 {
		return model.NumberValue(-(pv + pmt*nper))
	}
	growth := math.Pow(1+rate, nper)
	result := -(pv*growth + pmt*due*(growth-1)/rate)
	return model.NumberValue(result)
}

// dueFactor reads PV/FV's optional 5th "type" argument (0 = ordinary
// annuity, nonzero = due) and returns the (1+rate) multiplier it implies.
func dueFactor(e *Evaluator, args []ast.Node, idx int, rate float64, owner model.CellAddress) (float64, bool) {
	if len(args) <= idx {
		return 1, true
	}
	typ, errv := numArg(e, args[idx], owner)
	if errv != nil {
		return 0, false
	}
	if typ != 0 {
		return 1 + rate, true
	}
	return 1, true
}

func fnNPV(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) < 2 {
		return model.ErrorValue(model.ErrValue)
	}
	rate, errv := numArg(e, args[0], owner)
	if errv != nil {
		return *errv
	}
	nums, errv := numericOperands(e, args[1:], owner, false)
	if errv != nil {
		return *errv
	}
	total := decimal.Zero
	factor := decimal.NewFromFloat(1 + rate)
	for i, n := range nums {
		denom := decimalPow(factor, i+1)
		total = total.Add(decimal.NewFromFloat(n).Div(denom))
	}
	f, _ := total.Float64()
	return model.NumberValue(f)
}

// decimalPow computes base^n for a non-negative integer n exactly,
// avoiding the float rounding decimal.Decimal's own arithmetic is meant
// to sidestep (decimal has no built-in Pow for non-integer decimal exponents).
func decimalPow(base decimal.Decimal, n int) decimal.Decimal {
	result := decimal.NewFromInt(1)
	for i := 0; i < n; i++ {
		result = result.Mul(base)
	}
	return result
}

// fnPricemat and fnYieldmat are the single-period (no intervening
// coupons) bond price/yield pair spec §4.6 calls out as a testable
// mathematical inverse: PRICEMAT(settlement, maturity, issue, rate,
// yield, [basis]) and YIELDMAT with price instead of yield as the last
// argument. Settlement/maturity/issue are spreadsheet date serials;
// accrual is straight-line over the settlement-to-maturity term in
// years (actual/365), the basis argument is accepted but not used to
// vary day-count convention in this representative subset — the full
// PRICE/YIELD coupon-schedule archetype (basis-aware day counts,
// multi-period amortization) is registered in model.KnownFunctions but
// falls through to #N/IMPL!.
func fnPricemat(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) < 5 {
		return model.ErrorValue(model.ErrValue)
	}
	settlement, errv := numArg(e, args[0], owner)
	if errv != nil {
		return *errv
	}
	maturity, errv := numArg(e, args[1], owner)
	if errv != nil {
		return *errv
	}
	issue, errv := numArg(e, args[2], owner)
	if errv != nil {
		return *errv
	}
	rate, errv := numArg(e, args[3], owner)
	if errv != nil {
		return *errv
	}
	yield, errv := numArg(e, args[4], owner)
	if errv != nil {
		return *errv
	}
	if settlement >= maturity || rate < 0 || yield < 0 {
		return model.ErrorValue(model.ErrNum)
	}
	issueToSettlement := (settlement - issue) / 365
	issueToMaturity := (maturity - issue) / 365
	settlementToMaturity := issueToMaturity - issueToSettlement
	accruedInterest := issueToSettlement * rate * 100
	price := (100+issueToMaturity*rate*100)/(1+settlementToMaturity*yield) - accruedInterest
	return model.NumberValue(price)
}

func fnYieldmat(e *Evaluator, args []ast.Node, owner model.CellAddress) model.Value {
	if len(args) < 5 {
		return model.ErrorValue(model.ErrValue)
	}
	settlement, errv := numArg(e, args[0], owner)
	if errv != nil {
		return *errv
	}
	maturity, errv := numArg(e, args[1], owner)
	if errv != nil {
		return *errv
	}
	issue, errv := numArg(e, args[2], owner)
	if errv != nil {
		return *errv
	}
	rate, errv := numArg(e, args[3], owner)
	if errv != nil {
		return *errv
	}
	price, errv := numArg(e, args[4], owner)
	if errv != nil {
		return *errv
	}
	if settlement >= maturity || rate < 0 || price <= 0 {
		return model.ErrorValue(model.ErrNum)
	}
	issueToSettlement := (settlement - issue) / 365
	issueToMaturity := (maturity - issue) / 365
	settlementToMaturity := issueToMaturity - issueToSettlement
	accruedInterest := issueToSettlement * rate * 100
	numerator := (100+issueToMaturity*rate*100)/(price+accruedInterest) - 1
	yield := numerator / settlementToMaturity
	return model.NumberValue(yield)
}
