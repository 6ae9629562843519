package ast

import (
	"strconv"
	"strings"
)

// Context is the absolute position of the formula's owning cell, used to
// resolve relative R1C1 offsets into absolute coordinates and to decide
// whether a reference needs an explicit sheet prefix. A nil Context means
// "render R1C1 canonical form" (spec §4.3).
type Context struct {
	SheetIndex int
	Row        int
	Column     int
}

// DisplaceKind tags the pending structural edit being applied while
// stringifying (spec §4.3).
type DisplaceKind uint8

const (
	DisplaceNone DisplaceKind = iota
	DisplaceRow
	DisplaceColumn
	DisplaceCellHorizontal
	DisplaceCellVertical
	DisplaceColumnMove
	DisplaceRowMove
)

// Displacement describes one pending row/column insert, delete, or move,
// grounded on original_source's DisplaceData enum (stringify.rs).
type Displacement struct {
	Kind   DisplaceKind
	Sheet  int
	Row    int // for Row/CellHorizontal/CellVertical/RowMove
	Column int // for Column/CellHorizontal/CellVertical/ColumnMove
	Delta  int
}

const (
	LastColumn = 16384
	LastRow    = 1048576
)

// SheetNamer resolves a sheet index to its current display name, used
// only when a reference's stored display hint needs refreshing (the
// rename walk calls this; plain stringification uses the hint already
// stored on the node, per spec §4.3's "display-only hint").
type SheetNamer func(sheetIndex int) (name string, ok bool)

// ToR1C1 renders the canonical, context-free R1C1 form used for storage
// and deduplication (spec §4.2 "stores each formula canonically in R1C1
// form").
func ToR1C1(n Node) string {
	return stringify(n, nil, Displacement{})
}

// ToA1 renders the A1 display form relative to owner, with no displacement.
func ToA1(n Node, owner Context) string {
	return stringify(n, &owner, Displacement{})
}

// ToA1Displaced renders the A1 form reflecting a pending structural edit —
// used while the edit engine rewrites every formula in the workbook
// (spec §4.3, §4.7).
func ToA1Displaced(n Node, owner Context, d Displacement) string {
	return stringify(n, &owner, d)
}

func stringify(n Node, ctx *Context, d Displacement) string {
	switch v := n.(type) {
	case *Boolean:
		if v.Value {
			return "TRUE"
		}
		return "FALSE"
	case *Number:
		return formatNumberLiteral(v.Value)
	case *String:
		return "\"" + strings.ReplaceAll(v.Value, "\"", "\"\"") + "\""
	case *Reference:
		return stringifyReference(ctx, d, *v)
	case *Range:
		return stringifyRange(ctx, d, *v)
	case *WrongReference:
		return "#REF!"
	case *WrongRange:
		return "#REF!"
	case *BinaryExpr:
		left := stringify(v.Left, ctx, d)
		right := stringify(v.Right, ctx, d)
		return left + v.Op.String() + right
	case *Unary:
		operand := stringify(v.Operand, ctx, d)
		if v.Op == Pct {
			return operand + "%"
		}
		return "-" + operand
	case *Function:
		return v.Name + "(" + stringifyArgs(v.Args, ctx, d) + ")"
	case *InvalidFunction:
		return v.Name + "(" + stringifyArgs(v.Args, ctx, d) + ")"
	case *Array:
		rows := make([]string, len(v.Rows))
		for i, row := range v.Rows {
			cells := make([]string, len(row))
			for j, cell := range row {
				cells[j] = stringify(cell, ctx, d)
			}
			rows[i] = strings.Join(cells, ",")
		}
		return "{" + strings.Join(rows, ";") + "}"
	case *Variable:
		return v.Name
	case *Empty:
		return ""
	case *ParseError:
		return v.Original
	default:
		return ""
	}
}

func stringifyArgs(args []Node, ctx *Context, d Displacement) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = stringify(a, ctx, d)
	}
	return strings.Join(parts, ",")
}

func formatNumberLiteral(v float64) string {
	if v == float64(int64(v)) && v < 1e15 && v > -1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// resolveAbsolute computes the reference's absolute (row, column),
// applying context for relative components (spec §4.3: "Let (r, c) be
// the absolute reference resolved in context").
func resolveAbsolute(ctx *Context, ref Reference) (row, col int) {
	row = ref.Row
	col = ref.Column
	if ctx != nil {
		if !ref.AbsoluteRow {
			row += ctx.Row
		}
		if !ref.AbsoluteColumn {
			col += ctx.Column
		}
	}
	return
}

// stringifyReference implements the single displacement recursion from
// spec §4.3 / original_source stringify.rs's stringify_reference.
func stringifyReference(ctx *Context, d Displacement, ref Reference) string {
	if ctx == nil {
		return r1c1Ref(ref)
	}
	row, col := resolveAbsolute(ctx, ref)

	switch d.Kind {
	case DisplaceRow:
		if ref.SheetIndex == d.Sheet && !ref.IsFullRow {
			if r, ok := displaceLinear(row, d.Row, d.Delta); ok {
				row = r
			} else {
				return "#REF!"
			}
		}
	case DisplaceColumn:
		if ref.SheetIndex == d.Sheet && !ref.IsFullColumn {
			if c, ok := displaceLinear(col, d.Column, d.Delta); ok {
				col = c
			} else {
				return "#REF!"
			}
		}
	case DisplaceCellHorizontal:
		if ref.SheetIndex == d.Sheet && row == d.Row {
			if c, ok := displaceLinear(col, d.Column, d.Delta); ok {
				col = c
			} else {
				return "#REF!"
			}
		}
	case DisplaceCellVertical:
		if ref.SheetIndex == d.Sheet && col == d.Column {
			if r, ok := displaceLinear(row, d.Row, d.Delta); ok {
				row = r
			} else {
				return "#REF!"
			}
		}
	case DisplaceColumnMove:
		if ref.SheetIndex == d.Sheet {
			col = displaceMove(col, d.Column, d.Delta)
		}
	case DisplaceRowMove:
		if ref.SheetIndex == d.Sheet {
			row = displaceMove(row, d.Row, d.Delta)
		}
	}

	if !ref.IsFullRow && (row < 1 || row > LastRow) {
		return "#REF!"
	}
	if !ref.IsFullColumn && (col < 1 || col > LastColumn) {
		return "#REF!"
	}

	return a1Ref(ctx, ref, row, col)
}

// displaceLinear implements the Row{delta}/Column{delta} arithmetic of
// spec §4.3: a positive delta (insert) shifts everything at-or-after the
// edit point; a negative delta (delete) destroys references strictly
// inside the deleted span and shifts everything after it.
func displaceLinear(value, editPoint, delta int) (int, bool) {
	if delta < 0 {
		if value >= editPoint {
			if value < editPoint-delta {
				return 0, false
			}
			return value + delta, true
		}
		return value, true
	}
	if value >= editPoint {
		return value + delta, true
	}
	return value, true
}

// displaceMove implements spec §4.3's ColumnMove (and, symmetrically, RowMove):
//   - the moved line itself shifts by delta;
//   - lines between the source and destination shift the opposite way to
//     close the gap the move left behind: back by delta for a forward
//     move (delta > 0), forward by one for a backward move (delta < 0).
func displaceMove(value, moved, delta int) int {
	switch {
	case value == moved:
		return value + delta
	case delta > 0 && moved < value && value <= moved+delta:
		return value - delta
	case delta < 0 && moved+delta <= value && value < moved:
		return value + 1
	default:
		return value
	}
}

func r1c1Ref(ref Reference) string {
	var b strings.Builder
	writeSheetPrefixR1C1(&b, ref)
	if ref.IsFullColumn {
		b.WriteString(r1c1Component("C", ref.Column, ref.AbsoluteColumn))
		return b.String()
	}
	if ref.IsFullRow {
		b.WriteString(r1c1Component("R", ref.Row, ref.AbsoluteRow))
		return b.String()
	}
	b.WriteString(r1c1Component("R", ref.Row, ref.AbsoluteRow))
	b.WriteString(r1c1Component("C", ref.Column, ref.AbsoluteColumn))
	return b.String()
}

func writeSheetPrefixR1C1(b *strings.Builder, ref Reference) {
	if ref.SheetName == "" {
		return
	}
	b.WriteString(quoteSheetName(ref.SheetName))
	b.WriteString("!")
}

func r1c1Component(letter string, value int, absolute bool) string {
	if absolute {
		return letter + strconv.Itoa(value)
	}
	return letter + "[" + strconv.Itoa(value) + "]"
}

func a1Ref(ctx *Context, ref Reference, row, col int) string {
	var b strings.Builder
	if ref.SheetIndex != ctx.SheetIndex {
		b.WriteString(quoteSheetName(ref.SheetName))
		b.WriteString("!")
	}
	if ref.IsFullColumn {
		if ref.AbsoluteColumn {
			b.WriteString("$")
		}
		b.WriteString(colToLetters(col))
		return b.String()
	}
	if ref.IsFullRow {
		if ref.AbsoluteRow {
			b.WriteString("$")
		}
		b.WriteString(strconv.Itoa(row))
		return b.String()
	}
	if ref.AbsoluteColumn {
		b.WriteString("$")
	}
	b.WriteString(colToLetters(col))
	if ref.AbsoluteRow {
		b.WriteString("$")
	}
	b.WriteString(strconv.Itoa(row))
	return b.String()
}

func quoteSheetName(name string) string {
	needsQuote := false
	for _, c := range name {
		if !(c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')) {
			needsQuote = true
			break
		}
	}
	if !needsQuote {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func colToLetters(col int) string {
	var b []byte
	for col > 0 {
		col--
		b = append([]byte{byte('A' + col%26)}, b...)
		col /= 26
	}
	return string(b)
}

func stringifyRange(ctx *Context, d Displacement, r Range) string {
	left := stringifyReference(ctx, d, r.Left)
	if left == "#REF!" {
		return "#REF!"
	}
	right := stringifyReference(ctx, d, r.Right)
	if right == "#REF!" {
		return "#REF!"
	}
	return left + ":" + right
}

// RenameSheet walks n, rewriting the display-only SheetName hint of every
// Reference/Range endpoint whose SheetIndex equals renamed — the index
// itself never changes (spec §4.3, §4.7). It returns a new tree (Node
// values are treated as immutable once parsed).
func RenameSheet(n Node, renamed int, newName string) Node {
	switch v := n.(type) {
	case *Reference:
		c := *v
		if c.SheetIndex == renamed {
			c.SheetName = newName
		}
		return &c
	case *Range:
		c := *v
		if c.Left.SheetIndex == renamed {
			c.Left.SheetName = newName
		}
		if c.Right.SheetIndex == renamed {
			c.Right.SheetName = newName
		}
		return &c
	case *BinaryExpr:
		c := *v
		c.Left = RenameSheet(v.Left, renamed, newName)
		c.Right = RenameSheet(v.Right, renamed, newName)
		return &c
	case *Unary:
		c := *v
		c.Operand = RenameSheet(v.Operand, renamed, newName)
		return &c
	case *Function:
		c := *v
		c.Args = renameArgs(v.Args, renamed, newName)
		return &c
	case *InvalidFunction:
		c := *v
		c.Args = renameArgs(v.Args, renamed, newName)
		return &c
	case *Array:
		c := *v
		rows := make([][]Node, len(v.Rows))
		for i, row := range v.Rows {
			rows[i] = renameArgs(row, renamed, newName)
		}
		c.Rows = rows
		return &c
	default:
		return n
	}
}

func renameArgs(args []Node, renamed int, newName string) []Node {
	out := make([]Node, len(args))
	for i, a := range args {
		out[i] = RenameSheet(a, renamed, newName)
	}
	return out
}

// InvalidateSheet turns every reference/range endpoint targeting the
// deleted sheet into WrongReference/WrongRange (spec §4.7 "Sheet
// deletion updates every reference whose target is that sheet to #REF!").
func InvalidateSheet(n Node, deleted int) Node {
	switch v := n.(type) {
	case *Reference:
		if v.SheetIndex == deleted {
			return &WrongReference{base{v.P}, r1c1Ref(*v)}
		}
		return v
	case *Range:
		if v.Left.SheetIndex == deleted || v.Right.SheetIndex == deleted {
			return &WrongRange{base{v.P}, stringifyRange(nil, Displacement{}, *v)}
		}
		return v
	case *BinaryExpr:
		c := *v
		c.Left = InvalidateSheet(v.Left, deleted)
		c.Right = InvalidateSheet(v.Right, deleted)
		return &c
	case *Unary:
		c := *v
		c.Operand = InvalidateSheet(v.Operand, deleted)
		return &c
	case *Function:
		c := *v
		c.Args = invalidateArgs(v.Args, deleted)
		return &c
	case *InvalidFunction:
		c := *v
		c.Args = invalidateArgs(v.Args, deleted)
		return &c
	default:
		return n
	}
}

func invalidateArgs(args []Node, deleted int) []Node {
	out := make([]Node, len(args))
	for i, a := range args {
		out[i] = InvalidateSheet(a, deleted)
	}
	return out
}
