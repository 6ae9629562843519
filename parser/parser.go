// Package parser turns a token stream into an ast.Node tree (spec §4.2).
// Sheet-name and defined-name/table resolution against the active
// workbook is done through the Context interface below rather than by
// importing model directly, so model (which needs to parse formulas) can
// depend on parser without creating an import cycle.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/calcmesh/calcmesh/ast"
	"github.com/calcmesh/calcmesh/lexer"
	"github.com/calcmesh/calcmesh/locale"
	"github.com/calcmesh/calcmesh/token"
)

// Context supplies the workbook state the parser needs: sheet-name
// resolution, the owning cell (for relative-reference math), and
// defined-name/table lookup, grounded on spec §4.2's "Sheet-name
// resolution" and "Defined names and table names are resolved against
// the active workbook context at parse time" paragraphs.
type Context interface {
	// ResolveSheet returns the numeric index of a sheet by
	// case-insensitive name.
	ResolveSheet(name string) (index int, ok bool)
	// CurrentSheet/Row/Column identify the formula's owning cell, used
	// to convert absolute A1 input into relative R1C1 storage.
	CurrentSheet() int
	CurrentRow() int
	CurrentColumn() int
	// IsKnownFunction reports whether name is a recognized function kind.
	IsKnownFunction(name string) bool
	// IsDefinedName reports whether name is a registered defined name or
	// table, visible from the current sheet.
	IsDefinedName(name string) bool
}

// Parser is a recursive-descent parser with the precedence climb from
// spec §4.2 (lowest to highest): compare, &, +/-, */, ^, unary -, %,
// range :, function-call/parens. Grounded on the teacher's parser.go
// structure, generalized for dual A1/R1C1 reference parsing and
// canonical R1C1 re-stringification on success.
type Parser struct {
	lx   *lexer.Lexer
	mode token.Mode
	loc  *locale.Locale
	ctx  Context
	cur  token.Token
	err  error
}

func New(lx *lexer.Lexer, mode token.Mode, loc *locale.Locale, ctx Context) *Parser {
	p := &Parser{lx: lx, mode: mode, loc: loc, ctx: ctx}
	p.advance()
	return p
}

func (p *Parser) advance() { p.cur = p.lx.NextToken() }

// currentRow/currentColumn default to 0 when no Context was supplied
// (e.g. parsing a standalone expression for testing).
func (p *Parser) currentRow() int {
	if p.ctx == nil {
		return 0
	}
	return p.ctx.CurrentRow()
}

func (p *Parser) currentColumn() int {
	if p.ctx == nil {
		return 0
	}
	return p.ctx.CurrentColumn()
}

// Parse parses one full formula (source already stripped of its leading
// '='). On success it returns the AST; on lexical/syntactic failure it
// returns a *ast.ParseError node wrapping the original text instead of an
// error, per spec §4.2 "the cell still holds that AST and evaluation
// yields #ERROR!".
func Parse(src string, mode token.Mode, loc *locale.Locale, ctx Context) ast.Node {
	lx := lexer.New(src, mode, loc)
	p := New(lx, mode, loc, ctx)
	if p.cur.Kind == token.Illegal {
		return &ast.ParseError{Original: src, Message: p.cur.Text}
	}
	n := p.parseCompare()
	if p.err != nil {
		return &ast.ParseError{Original: src, Message: p.err.Error()}
	}
	if p.cur.Kind != token.EOF {
		return &ast.ParseError{Original: src, Message: fmt.Sprintf("unexpected trailing token %q", p.cur.Text)}
	}
	return n
}

func (p *Parser) fail(msg string) ast.Node {
	if p.err == nil {
		p.err = fmt.Errorf("%s", msg)
	}
	return &ast.Empty{}
}

func (p *Parser) parseCompare() ast.Node {
	left := p.parseConcat()
	for p.err == nil {
		var op ast.BinOp
		switch p.cur.Kind {
		case token.Eq:
			op = ast.Eq
		case token.Ne:
			op = ast.Ne
		case token.Lt:
			op = ast.Lt
		case token.Le:
			op = ast.Le
		case token.Gt:
			op = ast.Gt
		case token.Ge:
			op = ast.Ge
		default:
			return left
		}
		p.advance()
		right := p.parseConcat()
		left = ast.NewBinary(op, left, right, ast.Position{})
	}
	return left
}

func (p *Parser) parseConcat() ast.Node {
	left := p.parseAddSub()
	for p.err == nil && p.cur.Kind == token.Ampersand {
		p.advance()
		right := p.parseAddSub()
		left = ast.NewBinary(ast.Concat, left, right, ast.Position{})
	}
	return left
}

func (p *Parser) parseAddSub() ast.Node {
	left := p.parseMulDiv()
	for p.err == nil {
		var op ast.BinOp
		switch p.cur.Kind {
		case token.Plus:
			op = ast.Add
		case token.Minus:
			op = ast.Sub
		default:
			return left
		}
		p.advance()
		right := p.parseMulDiv()
		left = ast.NewBinary(op, left, right, ast.Position{})
	}
	return left
}

func (p *Parser) parseMulDiv() ast.Node {
	left := p.parsePow()
	for p.err == nil {
		var op ast.BinOp
		switch p.cur.Kind {
		case token.Star:
			op = ast.Mul
		case token.Slash:
			op = ast.Div
		default:
			return left
		}
		p.advance()
		right := p.parsePow()
		left = ast.NewBinary(op, left, right, ast.Position{})
	}
	return left
}

// parsePow is right-associative; its operand is parseUnary so that unary
// minus binds tighter than '^' (spec §4.2: unary - outranks ^).
func (p *Parser) parsePow() ast.Node {
	left := p.parseUnary()
	if p.err == nil && p.cur.Kind == token.Caret {
		p.advance()
		right := p.parsePow()
		return ast.NewBinary(ast.Pow, left, right, ast.Position{})
	}
	return left
}

func (p *Parser) parseUnary() ast.Node {
	if p.cur.Kind == token.Minus {
		p.advance()
		operand := p.parseUnary()
		return ast.NewUnary(ast.Neg, operand, ast.Position{})
	}
	if p.cur.Kind == token.Plus {
		p.advance()
		return p.parseUnary()
	}
	return p.parsePercent()
}

func (p *Parser) parsePercent() ast.Node {
	node := p.parseRange()
	for p.err == nil && p.cur.Kind == token.Percent {
		p.advance()
		node = ast.NewUnary(ast.Pct, node, ast.Position{})
	}
	return node
}

// parseRange handles the ':' operator joining two already-parsed
// reference primaries (the common "A1:B2" case is usually lexed as a
// single token.Range and handled in parsePrimary; this path covers the
// operator form, e.g. after a parenthesized reference).
func (p *Parser) parseRange() ast.Node {
	left := p.parsePrimary()
	if p.err == nil && p.cur.Kind == token.Colon {
		p.advance()
		right := p.parsePrimary()
		lref, lok := left.(*ast.Reference)
		rref, rok := right.(*ast.Reference)
		if lok && rok {
			return &ast.Range{Left: *lref, Right: *rref}
		}
		return p.fail("range operator requires two cell references")
	}
	return left
}

func (p *Parser) parsePrimary() ast.Node {
	t := p.cur
	switch t.Kind {
	case token.Number:
		p.advance()
		v, _ := strconv.ParseFloat(t.Text, 64)
		return &ast.Number{Value: v}
	case token.String:
		p.advance()
		return &ast.String{Value: t.Text}
	case token.Boolean:
		p.advance()
		return &ast.Boolean{Value: p.loc.IsTrue(t.Text)}
	case token.ErrorLiteral:
		p.advance()
		return &ast.WrongReference{Original: t.Text}
	case token.LParen:
		p.advance()
		inner := p.parseCompare()
		if p.cur.Kind != token.RParen {
			return p.fail("expected closing parenthesis")
		}
		p.advance()
		return inner
	case token.LBrace:
		return p.parseArray()
	case token.Reference:
		p.advance()
		ref, err := p.parseReferenceText(t.Text)
		if err != nil {
			return &ast.WrongReference{Original: t.Text}
		}
		return ref
	case token.Range:
		p.advance()
		rng, err := p.parseRangeText(t.Text)
		if err != nil {
			return &ast.WrongRange{Original: t.Text}
		}
		return rng
	case token.Ident:
		return p.parseIdentOrCall(t)
	case token.StructuredReference:
		p.advance()
		return p.parseStructuredReference(t.Text)
	default:
		return p.fail(fmt.Sprintf("unexpected token %q", t.Text))
	}
}

func (p *Parser) parseIdentOrCall(t token.Token) ast.Node {
	p.advance()
	if p.cur.Kind == token.LParen {
		return p.parseCall(t.Text)
	}
	return &ast.Variable{Name: t.Text}
}

func (p *Parser) parseCall(name string) ast.Node {
	p.advance() // '('
	var args []ast.Node
	if p.cur.Kind != token.RParen {
		args = append(args, p.parseCompare())
		for p.cur.Kind == token.Comma || p.cur.Kind == token.Semicolon {
			p.advance()
			args = append(args, p.parseCompare())
		}
	}
	if p.cur.Kind != token.RParen {
		return p.fail("expected closing parenthesis in function call")
	}
	p.advance()
	if p.ctx != nil && !p.ctx.IsKnownFunction(name) {
		return &ast.InvalidFunction{Name: strings.ToUpper(name), Args: args}
	}
	return ast.NewFunction(strings.ToUpper(name), args, ast.Position{})
}

func (p *Parser) parseArray() ast.Node {
	p.advance() // '{'
	var rows [][]ast.Node
	row := []ast.Node{p.parseCompare()}
	for {
		switch p.cur.Kind {
		case token.Comma:
			p.advance()
			row = append(row, p.parseCompare())
		case token.Semicolon:
			p.advance()
			rows = append(rows, row)
			row = []ast.Node{p.parseCompare()}
		case token.RBrace:
			p.advance()
			rows = append(rows, row)
			return &ast.Array{Rows: rows}
		default:
			return p.fail("malformed array literal")
		}
	}
}

func (p *Parser) parseStructuredReference(text string) ast.Node {
	// Name[#All]/Name[Column] table syntax (spec §4.1); kept as a
	// Variable so the evaluator can special-case table resolution
	// without the parser needing model's Table registry.
	return &ast.Variable{Name: text}
}
