package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calcmesh/calcmesh/ast"
	"github.com/calcmesh/calcmesh/locale"
	"github.com/calcmesh/calcmesh/parser"
	"github.com/calcmesh/calcmesh/token"
)

type fakeContext struct {
	sheets map[string]int
	sheet  int
	row    int
	col    int
	funcs  map[string]bool
	names  map[string]bool
}

func newFakeContext() *fakeContext {
	return &fakeContext{
		sheets: map[string]int{"sheet1": 0, "sheet2": 1, "sheet3": 2},
		funcs:  map[string]bool{"SUM": true, "CONCATENATE": true, "IF": true},
		names:  map[string]bool{},
	}
}

func (c *fakeContext) ResolveSheet(name string) (int, bool) {
	for k, v := range c.sheets {
		if equalFold(k, name) {
			return v, true
		}
	}
	return 0, false
}
func (c *fakeContext) CurrentSheet() int   { return c.sheet }
func (c *fakeContext) CurrentRow() int     { return c.row }
func (c *fakeContext) CurrentColumn() int  { return c.col }
func (c *fakeContext) IsKnownFunction(name string) bool {
	return c.funcs[name]
}
func (c *fakeContext) IsDefinedName(name string) bool { return c.names[name] }

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 32
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 32
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func parseA1(t *testing.T, src string) ast.Node {
	t.Helper()
	return parser.Parse(src, token.A1, locale.EnUS, newFakeContext())
}

func TestParserValidFormulas(t *testing.T) {
	valid := []string{
		"1+2",
		"A1",
		"SUM(A1:A10)",
		"Sheet2!A1",
		"Sheet2!A1:B2",
		"SUM(Sheet2!A1:A10)",
		"Sheet2!A1+Sheet3!B1",
		"SUM(B2:A1)",
		"SUM(A1:A1)",
		"SUM(A1:Z1000)",
		`"Hello"`,
		`CONCATENATE("Hello ", "World")`,
		"-2^2",
		"1=1",
		"A1:A10",
		"10%",
		"E:G",
		"3:5",
	}
	for _, src := range valid {
		t.Run(src, func(t *testing.T) {
			n := parseA1(t, src)
			_, isErr := n.(*ast.ParseError)
			require.False(t, isErr, "expected %q to parse cleanly, got %#v", src, n)
		})
	}
}

func TestParserInvalidFormulasBecomeParseError(t *testing.T) {
	invalid := []string{
		"",
		"SUM(",
		"A1:",
		`"hello`,
	}
	for _, src := range invalid {
		t.Run(src, func(t *testing.T) {
			n := parseA1(t, src)
			_, isErr := n.(*ast.ParseError)
			require.True(t, isErr, "expected %q to fail parsing", src)
		})
	}
}

func TestUnaryMinusBindsTighterThanPower(t *testing.T) {
	n := parseA1(t, "-2^2")
	bin, ok := n.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, ast.Pow, bin.Op)
	_, leftIsUnary := bin.Left.(*ast.Unary)
	require.True(t, leftIsUnary, "unary minus should bind to the base, not the whole power expression")
}

func TestReferenceStoresRelativeOffsetFromOwningCell(t *testing.T) {
	ctx := newFakeContext()
	ctx.row, ctx.col = 4, 2 // owning cell B4
	n := parser.Parse("A1", token.A1, locale.EnUS, ctx)
	ref, ok := n.(*ast.Reference)
	require.True(t, ok)
	require.False(t, ref.AbsoluteRow)
	require.False(t, ref.AbsoluteColumn)
	require.Equal(t, 1-4, ref.Row)
	require.Equal(t, 1-2, ref.Column)
}

func TestAbsoluteReferenceStoresAbsoluteCoordinates(t *testing.T) {
	ctx := newFakeContext()
	ctx.row, ctx.col = 4, 2
	n := parser.Parse("$A$1", token.A1, locale.EnUS, ctx)
	ref, ok := n.(*ast.Reference)
	require.True(t, ok)
	require.True(t, ref.AbsoluteRow)
	require.True(t, ref.AbsoluteColumn)
	require.Equal(t, 1, ref.Row)
	require.Equal(t, 1, ref.Column)
}

func TestUnknownFunctionBecomesInvalidFunction(t *testing.T) {
	n := parseA1(t, "NOTAREALFUNC(1,2)")
	_, ok := n.(*ast.InvalidFunction)
	require.True(t, ok)
}

func TestRoundTripToR1C1(t *testing.T) {
	n := parseA1(t, "SUM(A1:B2)")
	r1c1 := ast.ToR1C1(n)
	require.Contains(t, r1c1, "R[")
}
