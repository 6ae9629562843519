package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/calcmesh/calcmesh/ast"
	"github.com/calcmesh/calcmesh/token"
)

// parseReferenceText turns one lexer.token.Reference's raw text (e.g.
// "$A$1", "Sheet1!A1", "'My Sheet'!R[-1]C[2]") into an *ast.Reference,
// converting absolute A1 coordinates into the relative R[-1]C[2] offsets
// the node stores internally (spec §4.1 "canonical, internal storage
// form is always R1C1").
func (p *Parser) parseReferenceText(text string) (*ast.Reference, error) {
	sheetDisplay, body, hasPrefix := splitSheetPrefix(text)
	sheetIndex, sheetName, err := p.resolveSheetPrefix(sheetDisplay, hasPrefix)
	if err != nil {
		return nil, err
	}
	ref, err := p.parseCellComponent(body)
	if err != nil {
		return nil, err
	}
	ref.SheetIndex = sheetIndex
	ref.SheetName = sheetName
	return ref, nil
}

// parseRangeText turns one lexer.token.Range's raw text into an *ast.Range.
func (p *Parser) parseRangeText(text string) (*ast.Range, error) {
	sheetDisplay, body, hasPrefix := splitSheetPrefix(text)
	sheetIndex, sheetName, err := p.resolveSheetPrefix(sheetDisplay, hasPrefix)
	if err != nil {
		return nil, err
	}
	idx := topLevelColon(body)
	if idx < 0 {
		return nil, fmt.Errorf("malformed range %q", text)
	}
	leftText, rightText := body[:idx], body[idx+1:]

	left, err := p.parseRangeEndpoint(leftText)
	if err != nil {
		return nil, err
	}
	right, err := p.parseRangeEndpoint(rightText)
	if err != nil {
		return nil, err
	}
	left.SheetIndex, left.SheetName = sheetIndex, sheetName
	right.SheetIndex, right.SheetName = sheetIndex, sheetName
	return &ast.Range{Left: *left, Right: *right}, nil
}

// parseRangeEndpoint parses one side of a ':' range. A row-range endpoint
// ("3", "$5") or column-range endpoint ("E", "$G") carries no cell
// component on the other axis; anything else is a normal single-cell
// reference.
func (p *Parser) parseRangeEndpoint(s string) (*ast.Reference, error) {
	if isAllDigitsOrDollarDigits(s) {
		row, abs := parseDollarInt(s)
		if p.mode == token.R1C1 {
			return &ast.Reference{Row: row, AbsoluteRow: true, IsFullRow: true}, nil
		}
		if !abs {
			row -= p.currentRow()
		}
		return &ast.Reference{Row: row, AbsoluteRow: abs, IsFullRow: true}, nil
	}
	if isAllLettersOrDollarLetters(s) {
		col, abs := parseDollarCol(s)
		if p.mode == token.R1C1 {
			return &ast.Reference{Column: col, AbsoluteColumn: true, IsFullColumn: true}, nil
		}
		if !abs {
			col -= p.currentColumn()
		}
		return &ast.Reference{Column: col, AbsoluteColumn: abs, IsFullColumn: true}, nil
	}
	return p.parseCellComponent(s)
}

func (p *Parser) resolveSheetPrefix(display string, hasPrefix bool) (int, string, error) {
	if !hasPrefix {
		return -1, "", nil
	}
	if p.ctx == nil {
		return -1, display, nil
	}
	idx, ok := p.ctx.ResolveSheet(display)
	if !ok {
		return 0, "", fmt.Errorf("unknown sheet %q", display)
	}
	return idx, display, nil
}

// parseCellComponent parses a single-cell reference body (no sheet
// prefix) in either A1 or R1C1 mode, converting an absolute A1 position
// into an offset relative to the formula's owning cell.
func (p *Parser) parseCellComponent(s string) (*ast.Reference, error) {
	if p.mode == token.R1C1 {
		return p.parseR1C1Component(s)
	}
	return p.parseA1Component(s)
}

func (p *Parser) parseA1Component(s string) (*ast.Reference, error) {
	i := 0
	absCol := false
	if i < len(s) && s[i] == '$' {
		absCol = true
		i++
	}
	letterStart := i
	for i < len(s) && isAsciiLetter(s[i]) {
		i++
	}
	if i == letterStart {
		return nil, fmt.Errorf("malformed reference %q", s)
	}
	col := colFromLetters(s[letterStart:i])
	absRow := false
	if i < len(s) && s[i] == '$' {
		absRow = true
		i++
	}
	digitStart := i
	for i < len(s) && isAsciiDigit(s[i]) {
		i++
	}
	if i == digitStart || i != len(s) {
		return nil, fmt.Errorf("malformed reference %q", s)
	}
	row, err := strconv.Atoi(s[digitStart:i])
	if err != nil {
		return nil, err
	}

	ref := &ast.Reference{AbsoluteRow: absRow, AbsoluteColumn: absCol}
	if absRow {
		ref.Row = row
	} else {
		ref.Row = row - p.currentRow()
	}
	if absCol {
		ref.Column = col
	} else {
		ref.Column = col - p.currentColumn()
	}
	return ref, nil
}

// parseR1C1Component parses R3C4 / R[-1]C[2] / mixed forms directly into
// storage form: bracketed components are already relative offsets,
// unbracketed components are absolute.
func (p *Parser) parseR1C1Component(s string) (*ast.Reference, error) {
	if len(s) == 0 || (s[0] != 'R' && s[0] != 'r') {
		return nil, fmt.Errorf("malformed R1C1 reference %q", s)
	}
	i := 1
	rowVal, rowAbs, n, err := parseR1C1Part(s, i)
	if err != nil {
		return nil, err
	}
	i = n
	if i >= len(s) || (s[i] != 'C' && s[i] != 'c') {
		return nil, fmt.Errorf("malformed R1C1 reference %q", s)
	}
	i++
	colVal, colAbs, n2, err := parseR1C1Part(s, i)
	if err != nil {
		return nil, err
	}
	if n2 != len(s) {
		return nil, fmt.Errorf("trailing characters in R1C1 reference %q", s)
	}
	return &ast.Reference{Row: rowVal, Column: colVal, AbsoluteRow: rowAbs, AbsoluteColumn: colAbs}, nil
}

// parseR1C1Part parses one "R"/"C" component starting at i (just past the
// letter): "3" (absolute) or "[-1]"/"[2]" (relative offset, already in
// storage form). Returns the parsed value, whether it's absolute, and the
// index just past the component.
func parseR1C1Part(s string, i int) (value int, absolute bool, next int, err error) {
	if i < len(s) && s[i] == '[' {
		i++
		start := i
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		for i < len(s) && isAsciiDigit(s[i]) {
			i++
		}
		if i >= len(s) || s[i] != ']' {
			return 0, false, 0, fmt.Errorf("malformed R1C1 component %q", s)
		}
		v, convErr := strconv.Atoi(s[start:i])
		if convErr != nil {
			return 0, false, 0, convErr
		}
		return v, false, i + 1, nil
	}
	start := i
	for i < len(s) && isAsciiDigit(s[i]) {
		i++
	}
	if i == start {
		return 0, false, 0, fmt.Errorf("malformed R1C1 component %q", s)
	}
	v, convErr := strconv.Atoi(s[start:i])
	if convErr != nil {
		return 0, false, 0, convErr
	}
	return v, true, i, nil
}

// splitSheetPrefix splits "Sheet1!A1" / "'My Sheet'!A1:B2" into the
// display-form sheet name and the body after '!'. Quoted names have their
// doubled '' escapes collapsed.
func splitSheetPrefix(text string) (sheet, body string, hasPrefix bool) {
	if len(text) == 0 {
		return "", text, false
	}
	if text[0] == '\'' {
		var b strings.Builder
		i := 1
		for i < len(text) {
			if text[i] == '\'' {
				if i+1 < len(text) && text[i+1] == '\'' {
					b.WriteByte('\'')
					i += 2
					continue
				}
				i++
				break
			}
			b.WriteByte(text[i])
			i++
		}
		if i < len(text) && text[i] == '!' {
			return b.String(), text[i+1:], true
		}
		return "", text, false
	}
	idx := strings.IndexByte(text, '!')
	if idx < 0 {
		return "", text, false
	}
	return text[:idx], text[idx+1:], true
}

// topLevelColon finds the ':' separating a range's two endpoints. Cell
// component grammars never contain ':', so the first occurrence is
// always the separator.
func topLevelColon(body string) int {
	return strings.IndexByte(body, ':')
}

func isAsciiLetter(c byte) bool { return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') }
func isAsciiDigit(c byte) bool  { return c >= '0' && c <= '9' }

func isAllDigitsOrDollarDigits(s string) bool {
	i := 0
	if i < len(s) && s[i] == '$' {
		i++
	}
	if i == len(s) {
		return false
	}
	for ; i < len(s); i++ {
		if !isAsciiDigit(s[i]) {
			return false
		}
	}
	return true
}

func isAllLettersOrDollarLetters(s string) bool {
	i := 0
	if i < len(s) && s[i] == '$' {
		i++
	}
	if i == len(s) {
		return false
	}
	for ; i < len(s); i++ {
		if !isAsciiLetter(s[i]) {
			return false
		}
	}
	return true
}

func parseDollarInt(s string) (value int, absolute bool) {
	if len(s) > 0 && s[0] == '$' {
		v, _ := strconv.Atoi(s[1:])
		return v, true
	}
	v, _ := strconv.Atoi(s)
	return v, false
}

func parseDollarCol(s string) (value int, absolute bool) {
	if len(s) > 0 && s[0] == '$' {
		return colFromLetters(s[1:]), true
	}
	return colFromLetters(s), false
}

func colFromLetters(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			c -= 32
		}
		n = n*26 + int(c-'A'+1)
	}
	return n
}
