package eval_test

import (
	"testing"

	"github.com/calcmesh/calcmesh/eval"
	"github.com/calcmesh/calcmesh/locale"
	"github.com/calcmesh/calcmesh/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ serial float64 }

func (c fixedClock) NowSerial() float64 { return c.serial }

type fixedRandom struct{ value float64 }

func (r fixedRandom) Float64() float64 { return r.value }

func newTestWorkbook(t *testing.T) (*model.Workbook, *model.Sheet) {
	t.Helper()
	wb := model.NewWorkbook(locale.EnUS)
	s, err := wb.AddSheet("Sheet1")
	require.Nil(t, err)
	return wb, s
}

func setFormula(t *testing.T, wb *model.Workbook, s *model.Sheet, row, col uint32, text string) model.CellAddress {
	t.Helper()
	addr := model.CellAddress{SheetID: s.ID, Row: row, Column: col}
	require.Nil(t, wb.SetUserInput(addr, text))
	return addr
}

func TestEvaluateArithmetic(t *testing.T) {
	wb, s := newTestWorkbook(t)
	addr := setFormula(t, wb, s, 1, 1, "=1+2*3")
	ev := eval.New(wb)
	result := ev.EvaluateCell(addr)
	assert.Equal(t, model.KindNumber, result.Kind)
	assert.Equal(t, 7.0, result.Number)
}

func TestEvaluateDivisionByZero(t *testing.T) {
	wb, s := newTestWorkbook(t)
	addr := setFormula(t, wb, s, 1, 1, "=1/0")
	ev := eval.New(wb)
	result := ev.EvaluateCell(addr)
	require.True(t, result.IsError())
	assert.Equal(t, model.ErrDiv0, result.Err.Kind)
}

func TestEvaluateCellReference(t *testing.T) {
	wb, s := newTestWorkbook(t)
	setFormula(t, wb, s, 1, 1, "10")
	addr := setFormula(t, wb, s, 2, 1, "=A1*2")
	ev := eval.New(wb)
	result := ev.EvaluateCell(addr)
	assert.Equal(t, 20.0, result.Number)
}

func TestEvaluateSumOverRange(t *testing.T) {
	wb, s := newTestWorkbook(t)
	setFormula(t, wb, s, 1, 1, "1")
	setFormula(t, wb, s, 2, 1, "2")
	setFormula(t, wb, s, 3, 1, "3")
	addr := setFormula(t, wb, s, 4, 1, "=SUM(A1:A3)")
	ev := eval.New(wb)
	result := ev.EvaluateCell(addr)
	assert.Equal(t, 6.0, result.Number)
}

func TestEvaluateSumIgnoresStringsAndBooleansInRange(t *testing.T) {
	wb, s := newTestWorkbook(t)
	setFormula(t, wb, s, 1, 1, "1")
	setFormula(t, wb, s, 2, 1, "hello")
	setFormula(t, wb, s, 3, 1, "TRUE")
	addr := setFormula(t, wb, s, 4, 1, "=SUM(A1:A3)")
	ev := eval.New(wb)
	result := ev.EvaluateCell(addr)
	assert.Equal(t, 1.0, result.Number)
}

func TestEvaluateAverageEmptyRangeIsDiv0(t *testing.T) {
	wb, s := newTestWorkbook(t)
	addr := setFormula(t, wb, s, 4, 1, "=AVERAGE(A1:A3)")
	ev := eval.New(wb)
	result := ev.EvaluateCell(addr)
	require.True(t, result.IsError())
	assert.Equal(t, model.ErrDiv0, result.Err.Kind)
}

func TestEvaluateCircularReference(t *testing.T) {
	wb, s := newTestWorkbook(t)
	a1 := model.CellAddress{SheetID: s.ID, Row: 1, Column: 1}
	require.Nil(t, wb.SetUserInput(a1, "=B1"))
	b1 := setFormula(t, wb, s, 1, 2, "=A1")
	ev := eval.New(wb)
	result := ev.EvaluateCell(b1)
	require.True(t, result.IsError())
	assert.Equal(t, model.ErrCirc, result.Err.Kind)
}

func TestEvaluateIfBranchesLazily(t *testing.T) {
	wb, s := newTestWorkbook(t)
	addr := setFormula(t, wb, s, 1, 1, "=IF(TRUE,1,1/0)")
	ev := eval.New(wb)
	result := ev.EvaluateCell(addr)
	assert.Equal(t, 1.0, result.Number)
}

func TestEvaluateIferrorAbsorbsError(t *testing.T) {
	wb, s := newTestWorkbook(t)
	addr := setFormula(t, wb, s, 1, 1, "=IFERROR(1/0,99)")
	ev := eval.New(wb)
	result := ev.EvaluateCell(addr)
	assert.Equal(t, 99.0, result.Number)
}

func TestEvaluateConcatenation(t *testing.T) {
	wb, s := newTestWorkbook(t)
	addr := setFormula(t, wb, s, 1, 1, `="foo"&"bar"`)
	ev := eval.New(wb)
	result := ev.EvaluateCell(addr)
	assert.Equal(t, "foobar", result.Text)
}

func TestEvaluateCompareCrossTypeTotalOrder(t *testing.T) {
	wb, s := newTestWorkbook(t)
	addr := setFormula(t, wb, s, 1, 1, `=1<"a"`)
	ev := eval.New(wb)
	result := ev.EvaluateCell(addr)
	assert.True(t, result.Bool)
}

func TestEvaluateStringCompareCaseInsensitive(t *testing.T) {
	wb, s := newTestWorkbook(t)
	addr := setFormula(t, wb, s, 1, 1, `="ABC"="abc"`)
	ev := eval.New(wb)
	result := ev.EvaluateCell(addr)
	assert.True(t, result.Bool)
}

func TestEvaluateVlookupExactMatch(t *testing.T) {
	wb, s := newTestWorkbook(t)
	setFormula(t, wb, s, 1, 1, "1")
	setFormula(t, wb, s, 1, 2, "one")
	setFormula(t, wb, s, 2, 1, "2")
	setFormula(t, wb, s, 2, 2, "two")
	addr := setFormula(t, wb, s, 3, 1, "=VLOOKUP(2,A1:B2,2,FALSE)")
	ev := eval.New(wb)
	result := ev.EvaluateCell(addr)
	assert.Equal(t, "two", result.Text)
}

func TestEvaluateVlookupNotFoundIsNA(t *testing.T) {
	wb, s := newTestWorkbook(t)
	setFormula(t, wb, s, 1, 1, "1")
	setFormula(t, wb, s, 1, 2, "one")
	addr := setFormula(t, wb, s, 3, 1, "=VLOOKUP(99,A1:B1,2,FALSE)")
	ev := eval.New(wb)
	result := ev.EvaluateCell(addr)
	require.True(t, result.IsError())
	assert.Equal(t, model.ErrNA, result.Err.Kind)
}

func TestEvaluateSumifMatchesComparatorPrefix(t *testing.T) {
	wb, s := newTestWorkbook(t)
	setFormula(t, wb, s, 1, 1, "5")
	setFormula(t, wb, s, 2, 1, "15")
	setFormula(t, wb, s, 3, 1, "25")
	addr := setFormula(t, wb, s, 4, 1, `=SUMIF(A1:A3,">10")`)
	ev := eval.New(wb)
	result := ev.EvaluateCell(addr)
	assert.Equal(t, 40.0, result.Number)
}

func TestEvaluateCountifWildcard(t *testing.T) {
	wb, s := newTestWorkbook(t)
	setFormula(t, wb, s, 1, 1, "apple")
	setFormula(t, wb, s, 2, 1, "apricot")
	setFormula(t, wb, s, 3, 1, "banana")
	addr := setFormula(t, wb, s, 4, 1, `=COUNTIF(A1:A3,"ap*")`)
	ev := eval.New(wb)
	result := ev.EvaluateCell(addr)
	assert.Equal(t, 2.0, result.Number)
}

func TestEvaluateNowUsesInjectedClock(t *testing.T) {
	wb, s := newTestWorkbook(t)
	addr := setFormula(t, wb, s, 1, 1, "=NOW()")
	ev := eval.New(wb).WithClock(fixedClock{serial: 45000.5})
	result := ev.EvaluateCell(addr)
	assert.Equal(t, 45000.5, result.Number)
}

func TestEvaluateRandUsesInjectedSource(t *testing.T) {
	wb, s := newTestWorkbook(t)
	addr := setFormula(t, wb, s, 1, 1, "=RAND()")
	ev := eval.New(wb).WithRandomSource(fixedRandom{value: 0.42})
	result := ev.EvaluateCell(addr)
	assert.Equal(t, 0.42, result.Number)
}

func TestEvaluateUnknownFunctionIsNameError(t *testing.T) {
	wb, s := newTestWorkbook(t)
	addr := setFormula(t, wb, s, 1, 1, "=NOTAREALFUNCTION(1)")
	ev := eval.New(wb)
	result := ev.EvaluateCell(addr)
	require.True(t, result.IsError())
	assert.Equal(t, model.ErrName, result.Err.Kind)
}

func TestEvaluateKnownButUnimplementedFunctionIsNImpl(t *testing.T) {
	wb, s := newTestWorkbook(t)
	addr := setFormula(t, wb, s, 1, 1, "=IRR(A1:A2)")
	ev := eval.New(wb)
	result := ev.EvaluateCell(addr)
	require.True(t, result.IsError())
	assert.Equal(t, model.ErrNImpl, result.Err.Kind)
}

// TestEvaluateDateBuildsLeapDaySerial is spec §8 scenario 5: DATE must
// land on serial 27819 for 29-Feb-1976 and render through a date format
// as "29/02/1976".
func TestEvaluateDateBuildsLeapDaySerial(t *testing.T) {
	wb, s := newTestWorkbook(t)
	addr := setFormula(t, wb, s, 1, 1, "=DATE(1976,2,29)")
	ev := eval.New(wb)
	result := ev.EvaluateCell(addr)
	require.Equal(t, model.KindNumber, result.Kind)
	assert.Equal(t, 27819.0, result.Number)

	require.Nil(t, wb.SetCellStyle(addr, model.Style{NumberFormat: "dd/mm/yyyy"}))
	formatted, err := wb.GetFormattedCellValue(addr)
	require.Nil(t, err)
	assert.Equal(t, "29/02/1976", formatted)
}

// TestEvaluateTimevalueMatchesFractionalDay is spec §8 scenario 6:
// TIMEVALUE("2:24 AM") must equal the literal 0.1.
func TestEvaluateTimevalueMatchesFractionalDay(t *testing.T) {
	wb, s := newTestWorkbook(t)
	setFormula(t, wb, s, 1, 1, "0.1")
	b1 := setFormula(t, wb, s, 1, 2, `=TIMEVALUE("2:24 AM")`)
	c1 := setFormula(t, wb, s, 1, 3, "=A1=B1")
	ev := eval.New(wb)

	bResult := ev.EvaluateCell(b1)
	require.Equal(t, model.KindNumber, bResult.Kind)
	assert.InDelta(t, 0.1, bResult.Number, 1e-9)

	cResult := ev.EvaluateCell(c1)
	require.Equal(t, model.KindBoolean, cResult.Kind)
	assert.True(t, cResult.Bool)
}

// TestEvaluatePricematYieldmatInverse exercises PRICEMAT and feeds its
// result straight back into YIELDMAT, checking the round trip spec §4.6
// calls for: YIELDMAT(settlement, maturity, issue, rate, PRICEMAT(...))
// should recover the original yield.
func TestEvaluatePricematYieldmatInverse(t *testing.T) {
	wb, s := newTestWorkbook(t)
	setFormula(t, wb, s, 1, 1, "45000") // settlement serial
	setFormula(t, wb, s, 1, 2, "45365") // maturity serial
	setFormula(t, wb, s, 1, 3, "44635") // issue serial

	price := setFormula(t, wb, s, 2, 1, "=PRICEMAT(A1,B1,C1,0.05,0.06)")
	ev := eval.New(wb)
	priceResult := ev.EvaluateCell(price)
	require.Equal(t, model.KindNumber, priceResult.Kind)

	yieldAddr := setFormula(t, wb, s, 2, 2, "=YIELDMAT(A1,B1,C1,0.05,A2)")
	yieldResult := ev.EvaluateCell(yieldAddr)
	require.Equal(t, model.KindNumber, yieldResult.Kind)
	assert.InDelta(t, 0.06, yieldResult.Number, 1e-9)
}
