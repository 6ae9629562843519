// Package lexer turns formula source text into a token stream, in either
// A1 or R1C1 mode (spec §4.1). It exposes the peek/advance contract the
// parser is built on: NextToken advances and consumes, PeekToken looks
// ahead without consuming, Expect advances and fails on a kind mismatch.
//
// The scanning style (character classification constants, a hand-rolled
// rune scanner with no regexp) is grounded on the teacher's lexer.go.
package lexer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/calcmesh/calcmesh/locale"
	"github.com/calcmesh/calcmesh/token"
)

const (
	// LastColumn/LastRow mirror the workbook bounds (spec §3 invariant 1);
	// the lexer needs them to reject out-of-range reference literals at
	// the earliest possible point.
	LastColumn = 16384
	LastRow    = 1048576
)

// Lexer is a single-pass, backtracking-free scanner over one formula's
// source runes.
type Lexer struct {
	src     []rune
	pos     int
	mode    token.Mode
	loc     *locale.Locale
	lookahd *token.Token
	illegal bool // true once an Illegal token has been produced; all further tokens are EOF
}

// New creates a Lexer for src in the given mode. Formulas are lexed with
// their leading '=' already stripped by the caller (spec §4.1).
func New(src string, mode token.Mode, loc *locale.Locale) *Lexer {
	if loc == nil {
		loc = locale.EnUS
	}
	return &Lexer{src: []rune(src), mode: mode, loc: loc}
}

// NextToken advances the lexer and returns the next token. Once the input
// is exhausted it returns EOF forever; once an Illegal token has been
// produced, all subsequent calls also return EOF (spec §4.1 contract).
func (l *Lexer) NextToken() token.Token {
	if l.lookahd != nil {
		t := *l.lookahd
		l.lookahd = nil
		return t
	}
	return l.scan()
}

// PeekToken returns the next token without consuming it.
func (l *Lexer) PeekToken() token.Token {
	if l.lookahd == nil {
		t := l.scan()
		l.lookahd = &t
	}
	return *l.lookahd
}

// Expect advances and returns an error if the discriminant doesn't match.
func (l *Lexer) Expect(kind token.Kind) (token.Token, error) {
	t := l.NextToken()
	if t.Kind != kind {
		return t, fmt.Errorf("expected token kind %d, got %d (%q) at %d", kind, t.Kind, t.Text, t.Pos)
	}
	return t, nil
}

func (l *Lexer) scan() token.Token {
	if l.illegal || l.pos >= len(l.src) {
		return token.Token{Kind: token.EOF, Pos: l.pos}
	}
	l.skipSpace()
	if l.pos >= len(l.src) {
		return token.Token{Kind: token.EOF, Pos: l.pos}
	}

	start := l.pos
	c := l.src[l.pos]

	switch {
	case c == '"':
		return l.scanString()
	case c == '\'':
		return l.scanQuotedSheetPrefixedRef()
	case c == '#':
		return l.scanError()
	case unicode.IsDigit(c):
		if t, ok := l.tryBareRowRange(); ok {
			return t
		}
		return l.scanNumber()
	case c == l.loc.DecimalPoint && l.peekDigit(1):
		return l.scanNumber()
	}

	switch c {
	case '+':
		l.pos++
		return token.Token{Kind: token.Plus, Text: "+", Pos: start}
	case '-':
		l.pos++
		return token.Token{Kind: token.Minus, Text: "-", Pos: start}
	case '*':
		l.pos++
		return token.Token{Kind: token.Star, Text: "*", Pos: start}
	case '/':
		l.pos++
		return token.Token{Kind: token.Slash, Text: "/", Pos: start}
	case '^':
		l.pos++
		return token.Token{Kind: token.Caret, Text: "^", Pos: start}
	case '&':
		l.pos++
		return token.Token{Kind: token.Ampersand, Text: "&", Pos: start}
	case '%':
		l.pos++
		return token.Token{Kind: token.Percent, Text: "%", Pos: start}
	case '(':
		l.pos++
		return token.Token{Kind: token.LParen, Text: "(", Pos: start}
	case ')':
		l.pos++
		return token.Token{Kind: token.RParen, Text: ")", Pos: start}
	case '[':
		l.pos++
		return token.Token{Kind: token.LBracket, Text: "[", Pos: start}
	case ']':
		l.pos++
		return token.Token{Kind: token.RBracket, Text: "]", Pos: start}
	case '{':
		l.pos++
		return token.Token{Kind: token.LBrace, Text: "{", Pos: start}
	case '}':
		l.pos++
		return token.Token{Kind: token.RBrace, Text: "}", Pos: start}
	case '@':
		l.pos++
		return token.Token{Kind: token.At, Pos: start, Text: "@"}
	case ':':
		l.pos++
		return token.Token{Kind: token.Colon, Text: ":", Pos: start}
	case '!':
		l.pos++
		return token.Token{Kind: token.Bang, Text: "!", Pos: start}
	case '=':
		l.pos++
		return token.Token{Kind: token.Eq, Text: "=", Pos: start}
	case '<':
		l.pos++
		if l.cur() == '=' {
			l.pos++
			return token.Token{Kind: token.Le, Text: "<=", Pos: start}
		}
		if l.cur() == '>' {
			l.pos++
			return token.Token{Kind: token.Ne, Text: "<>", Pos: start}
		}
		return token.Token{Kind: token.Lt, Text: "<", Pos: start}
	case '>':
		l.pos++
		if l.cur() == '=' {
			l.pos++
			return token.Token{Kind: token.Ge, Text: ">=", Pos: start}
		}
		return token.Token{Kind: token.Gt, Text: ">", Pos: start}
	}

	if c == l.loc.ListSeparator {
		l.pos++
		return token.Token{Kind: token.Comma, Text: ",", Pos: start}
	}
	if c == ';' && l.loc.ListSeparator != ';' {
		l.pos++
		return token.Token{Kind: token.Semicolon, Text: ";", Pos: start}
	}

	if isIdentStart(c) {
		return l.scanIdentOrReference()
	}

	l.illegal = true
	return l.illegalTok(start, fmt.Sprintf("unexpected character %q", c))
}

// tryBareRowRange detects a sheet-prefix-less full-row range, e.g. "3:5",
// which would otherwise be lexed as a bare Number followed by ':' and a
// second Number: digits alone never need exponent/decimal lookahead here
// because a genuine number can't contain ':'.
func (l *Lexer) tryBareRowRange() (token.Token, bool) {
	start := l.pos
	i := l.pos
	for i < len(l.src) && unicode.IsDigit(l.src[i]) {
		i++
	}
	if i == start || i >= len(l.src) || l.src[i] != ':' {
		return token.Token{}, false
	}
	i++
	secondStart := i
	for i < len(l.src) && unicode.IsDigit(l.src[i]) {
		i++
	}
	if i == secondStart || (i < len(l.src) && isIdentCont(l.src[i])) {
		return token.Token{}, false
	}
	l.pos = i
	return token.Token{Kind: token.Range, Text: string(l.src[start:i]), Pos: start}, true
}

func (l *Lexer) illegalTok(pos int, msg string) token.Token {
	return token.NewIllegal(pos, msg)
}

func (l *Lexer) cur() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(off int) rune {
	p := l.pos + off
	if p >= len(l.src) || p < 0 {
		return 0
	}
	return l.src[p]
}

func (l *Lexer) peekDigit(off int) bool {
	return unicode.IsDigit(l.peekAt(off))
}

func (l *Lexer) skipSpace() {
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case ' ', '\t', '\n', '\r':
			l.pos++
		default:
			return
		}
	}
}

func isIdentStart(c rune) bool {
	return unicode.IsLetter(c) || c == '_' || c == '$'
}

func isIdentCont(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' || c == '.'
}

// scanNumber implements the grammar of spec §4.1: optional leading
// digits, optional decimal point + fractional digits, optional
// scientific suffix. A bare decimal point with no digits on either side
// is illegal.
func (l *Lexer) scanNumber() token.Token {
	start := l.pos
	sawDigit := false
	for l.pos < len(l.src) && unicode.IsDigit(l.src[l.pos]) {
		l.pos++
		sawDigit = true
	}
	if l.cur() == l.loc.DecimalPoint {
		l.pos++
		for l.pos < len(l.src) && unicode.IsDigit(l.src[l.pos]) {
			l.pos++
			sawDigit = true
		}
	}
	if !sawDigit {
		l.illegal = true
		return l.illegalTok(start, "malformed number literal")
	}
	if l.cur() == 'e' || l.cur() == 'E' {
		save := l.pos
		l.pos++
		if l.cur() == '+' || l.cur() == '-' {
			l.pos++
		}
		if unicode.IsDigit(l.cur()) {
			for l.pos < len(l.src) && unicode.IsDigit(l.src[l.pos]) {
				l.pos++
			}
		} else {
			l.pos = save
		}
	}
	text := string(l.src[start:l.pos])
	// canonicalize locale decimal to '.' for downstream strconv.ParseFloat
	if l.loc.DecimalPoint != '.' {
		text = strings.ReplaceAll(text, string(l.loc.DecimalPoint), ".")
	}
	return token.Token{Kind: token.Number, Text: text, Pos: start}
}

func (l *Lexer) scanString() token.Token {
	start := l.pos
	l.pos++ // opening quote
	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '"' {
			if l.peekAt(1) == '"' {
				b.WriteRune('"')
				l.pos += 2
				continue
			}
			l.pos++
			return token.Token{Kind: token.String, Text: b.String(), Pos: start}
		}
		b.WriteRune(c)
		l.pos++
	}
	l.illegal = true
	return l.illegalTok(start, "unterminated string literal")
}

// scanError scans a localized formula error literal, e.g. #DIV/0! or #N/A.
func (l *Lexer) scanError() token.Token {
	start := l.pos
	l.pos++ // '#'
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		l.pos++
		if c == '!' || c == '?' {
			break
		}
		// #N/A has no trailing punctuation
		if c == 'A' && string(l.src[start:l.pos]) == "#N/A" {
			break
		}
	}
	text := string(l.src[start:l.pos])
	if _, ok := l.loc.ErrorsReverse[strings.ToUpper(text)]; ok || text == "#N/A" {
		return token.Token{Kind: token.ErrorLiteral, Text: strings.ToUpper(text), Pos: start}
	}
	l.illegal = true
	return l.illegalTok(start, fmt.Sprintf("unrecognized error literal %q", text))
}

// scanQuotedSheetPrefixedRef handles 'Sheet name'!A1 / 'Sheet name'!A1:B2.
func (l *Lexer) scanQuotedSheetPrefixedRef() token.Token {
	start := l.pos
	l.pos++ // opening '
	var name strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\'' {
			if l.peekAt(1) == '\'' {
				name.WriteRune('\'')
				l.pos += 2
				continue
			}
			l.pos++
			break
		}
		name.WriteRune(c)
		l.pos++
	}
	if l.cur() != '!' {
		l.illegal = true
		return l.illegalTok(start, "expected '!' after quoted sheet name")
	}
	l.pos++ // '!'
	return l.scanReferenceBody(start, name.String())
}

// scanIdentOrReference scans identifiers, A1/R1C1 references, ranges,
// booleans, structured references, and Sheet! prefixes.
func (l *Lexer) scanIdentOrReference() token.Token {
	start := l.pos
	for l.pos < len(l.src) && isIdentCont(l.src[l.pos]) {
		l.pos++
	}
	word := string(l.src[start:l.pos])

	if l.cur() == '!' {
		l.pos++
		return l.scanReferenceBody(start, word)
	}
	if l.loc.IsTrue(word) || l.loc.IsFalse(word) {
		return token.Token{Kind: token.Boolean, Text: word, Pos: start}
	}
	if l.cur() == '[' {
		// structured reference Name[...]
		depth := 0
		for l.pos < len(l.src) {
			c := l.src[l.pos]
			l.pos++
			if c == '[' {
				depth++
			} else if c == ']' {
				depth--
				if depth == 0 {
					break
				}
			}
		}
		return token.Token{Kind: token.StructuredReference, Text: string(l.src[start:l.pos]), Pos: start}
	}
	if ref, ok := l.tryReference(word); ok {
		return l.maybeRange(start, "", ref)
	}
	// bare column-range endpoint, e.g. "E:G" with no sheet prefix
	if isAllLetters(word) && l.cur() == ':' {
		return l.maybeRange(start, "", word)
	}
	return token.Token{Kind: token.Ident, Text: word, Pos: start}
}

// scanReferenceBody scans the portion after "Sheet!" (or the unquoted
// identifier form) looking for a cell/range/row-range/column-range.
func (l *Lexer) scanReferenceBody(start int, sheet string) token.Token {
	bodyStart := l.pos
	for l.pos < len(l.src) && isIdentCont(l.src[l.pos]) {
		l.pos++
	}
	word := string(l.src[bodyStart:l.pos])
	if ref, ok := l.tryReference(word); ok {
		return l.maybeRange(start, sheet, ref)
	}
	// row range Sheet!3:5 or column range Sheet!E:G
	if isAllDigits(word) || isAllLetters(word) {
		return l.maybeRange(start, sheet, word)
	}
	l.illegal = true
	return l.illegalTok(start, fmt.Sprintf("invalid reference %q!%s", sheet, word))
}

func (l *Lexer) maybeRange(start int, sheet, firstWord string) token.Token {
	if l.cur() == ':' {
		save := l.pos
		l.pos++
		secondStart := l.pos
		for l.pos < len(l.src) && isIdentCont(l.src[l.pos]) {
			l.pos++
		}
		second := string(l.src[secondStart:l.pos])
		if l.isValidRangeEndpoint(second) {
			full := string(l.src[start:l.pos])
			return token.Token{Kind: token.Range, Text: full, Pos: start}
		}
		l.pos = save
	}
	full := string(l.src[start:l.pos])
	return token.Token{Kind: token.Reference, Text: full, Pos: start}
}

func (l *Lexer) isValidRangeEndpoint(s string) bool {
	if _, ok := l.tryReference(s); ok {
		return true
	}
	return isAllDigits(s) || isAllLetters(s)
}

// tryReference reports whether s is a syntactically valid A1 ("$D$4") or
// R1C1 ("R3C4", "R[-1]C[2]") single-cell reference, per spec §4.1's
// grammar: column within 1..=LastColumn after base-26 decode, row within
// 1..=LastRow.
func (l *Lexer) tryReference(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	if l.mode == token.R1C1 {
		return s, isR1C1(s)
	}
	return s, isA1Cell(s)
}

func isA1Cell(s string) bool {
	i := 0
	if i < len(s) && s[i] == '$' {
		i++
	}
	letterStart := i
	for i < len(s) && ((s[i] >= 'A' && s[i] <= 'Z') || (s[i] >= 'a' && s[i] <= 'z')) {
		i++
	}
	if i == letterStart {
		return false
	}
	col := colFromLetters(s[letterStart:i])
	if col < 1 || col > LastColumn {
		return false
	}
	if i < len(s) && s[i] == '$' {
		i++
	}
	digitStart := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == digitStart || i != len(s) {
		return false
	}
	row := atoiSafe(s[digitStart:i])
	return row >= 1 && row <= LastRow
}

func colFromLetters(s string) int {
	n := 0
	for _, c := range s {
		up := c
		if up >= 'a' && up <= 'z' {
			up -= 32
		}
		if up < 'A' || up > 'Z' {
			return -1
		}
		n = n*26 + int(up-'A'+1)
	}
	return n
}

func atoiSafe(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func isAllLetters(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if !((c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')) {
			return false
		}
	}
	return true
}

// isR1C1 matches R3C4 (absolute) and R[-1]C[2] / R[2]C[5] (relative, or
// mixed) forms; row and column parts may independently be absolute or
// bracketed-relative.
func isR1C1(s string) bool {
	i := 0
	if i >= len(s) || (s[i] != 'R' && s[i] != 'r') {
		return false
	}
	i++
	i = skipR1C1Component(s, i)
	if i < 0 || i >= len(s) || (s[i] != 'C' && s[i] != 'c') {
		return false
	}
	i++
	i = skipR1C1Component(s, i)
	return i == len(s)
}

// skipR1C1Component consumes an optional bracketed signed integer or a
// bare integer, returning -1 on malformed input.
func skipR1C1Component(s string, i int) int {
	if i < len(s) && s[i] == '[' {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		start := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == start {
			return -1
		}
		if i >= len(s) || s[i] != ']' {
			return -1
		}
		return i + 1
	}
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == start {
		return -1
	}
	return i
}
