package eval_test

import (
	"fmt"
	"testing"

	"github.com/calcmesh/calcmesh/eval"
	"github.com/calcmesh/calcmesh/locale"
	"github.com/calcmesh/calcmesh/model"
)

func benchWorkbook(b *testing.B, sheetNames ...string) (*model.Workbook, []*model.Sheet) {
	b.Helper()
	wb := model.NewWorkbook(locale.EnUS)
	sheets := make([]*model.Sheet, len(sheetNames))
	for i, name := range sheetNames {
		s, err := wb.AddSheet(name)
		if err != nil {
			b.Fatal(err.Message)
		}
		sheets[i] = s
	}
	return wb, sheets
}

func set(b *testing.B, wb *model.Workbook, s *model.Sheet, row, col uint32, input string) {
	b.Helper()
	if err := wb.SetUserInput(model.CellAddress{SheetID: s.ID, Row: row, Column: col}, input); err != nil {
		b.Fatal(err.Message)
	}
}

// BenchmarkLargeCellPopulation populates a 100x26 grid of literal numbers.
func BenchmarkLargeCellPopulation(b *testing.B) {
	for i := 0; i < b.N; i++ {
		wb, sheets := benchWorkbook(b, "Sheet1")
		s := sheets[0]
		for row := uint32(1); row <= 100; row++ {
			for col := uint32(1); col <= 26; col++ {
				set(b, wb, s, row, col, fmt.Sprintf("%d", row*col))
			}
		}
	}
}

// BenchmarkFormulaDependencyChain evaluates a 100-long linear chain.
func BenchmarkFormulaDependencyChain(b *testing.B) {
	wb, sheets := benchWorkbook(b, "Sheet1")
	s := sheets[0]
	set(b, wb, s, 1, 1, "1")
	for row := uint32(2); row <= 100; row++ {
		set(b, wb, s, row, 1, fmt.Sprintf("=A%d+1", row-1))
	}
	ev := eval.New(wb)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ev.EvaluateAll()
	}
}

// BenchmarkWideDependencyFanOut re-evaluates 499 cells that all reference
// one upstream cell after it changes.
func BenchmarkWideDependencyFanOut(b *testing.B) {
	wb, sheets := benchWorkbook(b, "Sheet1")
	s := sheets[0]
	set(b, wb, s, 1, 1, "100")
	for row := uint32(2); row <= 500; row++ {
		set(b, wb, s, row, 2, "=A1*2")
	}
	ev := eval.New(wb)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		set(b, wb, s, 1, 1, fmt.Sprintf("%d", i))
		ev.EvaluateAll()
	}
}

// BenchmarkLargeRangeSUM sums a 1000-cell column.
func BenchmarkLargeRangeSUM(b *testing.B) {
	wb, sheets := benchWorkbook(b, "Sheet1")
	s := sheets[0]
	for row := uint32(1); row <= 1000; row++ {
		set(b, wb, s, row, 1, fmt.Sprintf("%d", row))
	}
	set(b, wb, s, 1, 2, "=SUM(A1:A1000)")
	ev := eval.New(wb)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ev.EvaluateAll()
	}
}

// BenchmarkMultiSheetReferences cross-sheet aggregates over 100 rows.
func BenchmarkMultiSheetReferences(b *testing.B) {
	wb, sheets := benchWorkbook(b, "Data", "Summary")
	data, summary := sheets[0], sheets[1]
	for row := uint32(1); row <= 100; row++ {
		set(b, wb, data, row, 1, fmt.Sprintf("%d", row))
	}
	set(b, wb, summary, 1, 1, "=SUM(Data!A1:A100)")
	set(b, wb, summary, 1, 2, "=AVERAGE(Data!A1:A100)")
	set(b, wb, summary, 1, 3, "=MAX(Data!A1:A100)")
	ev := eval.New(wb)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ev.EvaluateAll()
	}
}

// BenchmarkCascadingUpdates chains ten columns across fifty rows, each
// doubling its left neighbor, then re-evaluates on every A-column edit.
func BenchmarkCascadingUpdates(b *testing.B) {
	wb, sheets := benchWorkbook(b, "Sheet1")
	s := sheets[0]
	for row := uint32(1); row <= 50; row++ {
		for col := uint32(1); col <= 10; col++ {
			if col == 1 {
				set(b, wb, s, row, col, fmt.Sprintf("%d", row))
				continue
			}
			prevCol := colLetters(col - 1)
			set(b, wb, s, row, col, fmt.Sprintf("=%s%d*2", prevCol, row))
		}
	}
	ev := eval.New(wb)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		set(b, wb, s, 1, 1, fmt.Sprintf("%d", i%100))
		ev.EvaluateAll()
	}
}

// BenchmarkCircularReferenceDetection measures the cost of walking an
// eight-cell cycle to #CIRC! on every evaluation.
func BenchmarkCircularReferenceDetection(b *testing.B) {
	for i := 0; i < b.N; i++ {
		wb, sheets := benchWorkbook(b, "Sheet1")
		s := sheets[0]
		set(b, wb, s, 1, 1, "=B1+C1")
		set(b, wb, s, 1, 2, "=C1+D1")
		set(b, wb, s, 1, 3, "=D1+E1")
		set(b, wb, s, 1, 4, "=E1+F1")
		set(b, wb, s, 1, 5, "=F1+G1")
		set(b, wb, s, 1, 6, "=G1+H1")
		set(b, wb, s, 1, 7, "=H1+A1")
		set(b, wb, s, 1, 8, "=A1")
		eval.New(wb).EvaluateAll()
	}
}

// BenchmarkSparseMatrix exercises a sparsely populated 1000x1000 range
// summed by one formula.
func BenchmarkSparseMatrix(b *testing.B) {
	wb, sheets := benchWorkbook(b, "Sheet1")
	s := sheets[0]
	for row := uint32(1); row <= 1000; row += 10 {
		for col := uint32(1); col <= 1000; col += 10 {
			set(b, wb, s, row, col, fmt.Sprintf("%d", row+col))
		}
	}
	set(b, wb, s, 1, 1001, fmt.Sprintf("=SUM(A1:%s1000)", colLetters(1000)))
	ev := eval.New(wb)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ev.EvaluateAll()
	}
}

func colLetters(col uint32) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
