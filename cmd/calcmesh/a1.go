package main

import (
	"fmt"

	"github.com/calcmesh/calcmesh/model"
)

// parseA1 parses a bare A1-style address ("B2", "aa10") into a
// CellAddress on sheetID. It's a standalone miniature of the column-
// letter decoding parser/reference.go does internally for formula text
// (colFromLetters) — that logic is unexported and tied to formula
// parsing context, so the REPL gets its own copy for parsing a lone
// address typed at the prompt.
func parseA1(sheetID uint32, s string) (model.CellAddress, error) {
	i := 0
	for i < len(s) && isLetter(s[i]) {
		i++
	}
	if i == 0 || i == len(s) {
		return model.CellAddress{}, fmt.Errorf("%q is not a valid cell address (want e.g. A1)", s)
	}
	letters, digits := s[:i], s[i:]
	for _, c := range digits {
		if c < '0' || c > '9' {
			return model.CellAddress{}, fmt.Errorf("%q is not a valid cell address (want e.g. A1)", s)
		}
	}

	col := 0
	for j := 0; j < len(letters); j++ {
		c := letters[j]
		if c >= 'a' && c <= 'z' {
			c -= 32
		}
		col = col*26 + int(c-'A'+1)
	}
	row := 0
	for _, c := range digits {
		row = row*10 + int(c-'0')
	}
	if row == 0 || uint32(row) > model.LastRow || uint32(col) > model.LastColumn {
		return model.CellAddress{}, fmt.Errorf("%q is out of range", s)
	}
	return model.CellAddress{SheetID: sheetID, Row: uint32(row), Column: uint32(col)}, nil
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
