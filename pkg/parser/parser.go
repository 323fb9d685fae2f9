// Package parser implements the Dirac notation parser.
//
// The grammar, lowest precedence first:
//
//	expr     := additive
//	additive := juxt (('+' | '-') juxt)*
//	juxt     := kron (['*' | '.'] kron)*
//	kron     := quotient ('x' quotient)*
//	quotient := unary ('/' unary)*
//	unary    := '-' unary | postfix
//	postfix  := primary ("'")*
//	primary  := '|' BITS '>' | '<' BITS '|' | '|' expr '|' | '(' expr ')' | NUMBER
//
// In <0|1> the bar closing the bra also opens the ket. A digit run after a
// bar that opens no ket is a number, so <0|1 is the bra scaled by 1.
package parser

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/thomasrohde/dirac/pkg/ast"
	"github.com/thomasrohde/dirac/pkg/diagnostics"
	"github.com/thomasrohde/dirac/pkg/lexer"
)

// ParseError reports a syntax error at a token.
type ParseError struct {
	Offset   int
	Expected string
	Found    string
	Message  string
	Span     ast.Span
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Message)
}

// Diagnostic converts the error to an E_PARSE diagnostic.
func (e *ParseError) Diagnostic() diagnostics.Diagnostic {
	span := e.Span
	hint := ""
	if e.Expected != "" {
		hint = "expected " + e.Expected
	}
	return diagnostics.MakeDiag(diagnostics.EParse, e.Message, &span, hint)
}

type parser struct {
	tokens []lexer.Token
	pos    int
	// number of norm bars currently open inside the innermost parentheses
	normDepth int
	err       *ParseError
}

// Parse tokenizes source and parses it into an expression tree. Lex errors
// are returned unchanged as *lexer.LexError.
func Parse(source, filename string) (ast.Expr, error) {
	tokens, err := lexer.Tokenize(source, filename)
	if err != nil {
		return nil, err
	}
	return ParseTokens(tokens)
}

// ParseTokens parses an already tokenized expression. A missing trailing
// EOF token is supplied.
func ParseTokens(tokens []lexer.Token) (ast.Expr, error) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != lexer.TokEOF {
		eof := lexer.Token{Type: lexer.TokEOF}
		if len(tokens) > 0 {
			last := tokens[len(tokens)-1].Span
			eof.Span = ast.Span{
				File:      last.File,
				Offset:    last.EndOffset,
				EndOffset: last.EndOffset,
				StartLine: last.EndLine,
				StartCol:  last.EndCol,
				EndLine:   last.EndLine,
				EndCol:    last.EndCol,
			}
		} else {
			eof.Span = ast.Span{StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 1}
		}
		tokens = append(append([]lexer.Token(nil), tokens...), eof)
	}

	p := &parser{tokens: tokens}
	expr := p.parseTop()
	if p.err != nil {
		return nil, p.err
	}
	return expr, nil
}

// IsSyntaxError reports whether err came from the lexer or the parser.
func IsSyntaxError(err error) bool {
	var le *lexer.LexError
	var pe *ParseError
	return errors.As(err, &le) || errors.As(err, &pe)
}

func (p *parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *parser) peek() lexer.TokenType {
	return p.current().Type
}

func (p *parser) peekAt(offset int) lexer.TokenType {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return lexer.TokEOF
	}
	return p.tokens[idx].Type
}

func (p *parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

// fail records the first error only; later ones are consequences of it.
func (p *parser) fail(tok lexer.Token, expected, msg string) {
	if p.err != nil {
		return
	}
	p.err = &ParseError{
		Offset:   tok.Span.Offset,
		Expected: expected,
		Found:    describe(tok),
		Message:  msg,
		Span:     tok.Span,
	}
}

func describe(tok lexer.Token) string {
	if tok.Type == lexer.TokEOF {
		return "end of input"
	}
	return fmt.Sprintf("'%s'", tok.Value)
}

func (p *parser) parseTop() ast.Expr {
	if p.peek() == lexer.TokEOF {
		p.fail(p.current(), "expression", "empty expression")
		return nil
	}
	expr := p.parseExpr()
	if expr == nil {
		return nil
	}
	if tok := p.current(); tok.Type != lexer.TokEOF {
		switch tok.Type {
		case lexer.TokRParen:
			p.fail(tok, "end of input", "unmatched ')'")
		case lexer.TokPipe:
			p.fail(tok, "end of input", "unmatched '|'")
		default:
			p.fail(tok, "end of input", fmt.Sprintf("unexpected %s after expression", describe(tok)))
		}
		return nil
	}
	return expr
}

func (p *parser) parseExpr() ast.Expr {
	return p.parseAdditive()
}

func (p *parser) parseAdditive() ast.Expr {
	left := p.parseJuxtaposition()
	if left == nil {
		return nil
	}

	for {
		var op ast.BinaryOp
		switch p.peek() {
		case lexer.TokPlus:
			op = ast.OpAdd
		case lexer.TokMinus:
			op = ast.OpSub
		default:
			return left
		}
		p.advance()
		right := p.parseJuxtaposition()
		if right == nil {
			return nil
		}
		left = binary(op, left, right)
	}
}

func (p *parser) parseJuxtaposition() ast.Expr {
	left := p.parseKron()
	if left == nil {
		return nil
	}

	for {
		if p.peek() == lexer.TokStar || p.peek() == lexer.TokDot {
			p.advance()
		} else if !p.startsOperand() {
			return left
		}
		right := p.parseKron()
		if right == nil {
			return nil
		}
		left = binary(ast.OpJuxtapose, left, right)
	}
}

// startsOperand reports whether the current token begins an implicitly
// juxtaposed operand. Inside an open norm a '|' that does not open a ket is
// the closing bar.
func (p *parser) startsOperand() bool {
	switch p.peek() {
	case lexer.TokLAngle, lexer.TokLParen, lexer.TokNumber, lexer.TokBitString:
		return true
	case lexer.TokPipe:
		return p.opensKet() || p.normDepth == 0
	}
	return false
}

func (p *parser) opensKet() bool {
	return p.peek() == lexer.TokPipe &&
		p.peekAt(1) == lexer.TokBitString &&
		p.peekAt(2) == lexer.TokRAngle
}

func (p *parser) parseKron() ast.Expr {
	left := p.parseQuotient()
	if left == nil {
		return nil
	}
	for p.peek() == lexer.TokKron {
		p.advance()
		right := p.parseQuotient()
		if right == nil {
			return nil
		}
		left = binary(ast.OpKron, left, right)
	}
	return left
}

func (p *parser) parseQuotient() ast.Expr {
	left := p.parseUnary()
	if left == nil {
		return nil
	}
	for p.peek() == lexer.TokSlash {
		p.advance()
		right := p.parseUnary()
		if right == nil {
			return nil
		}
		left = binary(ast.OpDiv, left, right)
	}
	return left
}

func (p *parser) parseUnary() ast.Expr {
	if p.peek() == lexer.TokMinus {
		start := p.advance()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return &ast.NegExpr{
			Span:    ast.Join(start.Span, operand.NodeSpan()),
			Operand: operand,
		}
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	if expr == nil {
		return nil
	}
	for p.peek() == lexer.TokQuote {
		quote := p.advance()
		expr = &ast.ConjTransposeExpr{
			Span:    ast.Join(expr.NodeSpan(), quote.Span),
			Operand: expr,
		}
	}
	return expr
}

func (p *parser) parsePrimary() ast.Expr {
	switch p.peek() {
	case lexer.TokPipe:
		if p.opensKet() {
			return p.parseKet()
		}
		return p.parseNorm()

	case lexer.TokLAngle:
		return p.parseBra()

	case lexer.TokLParen:
		open := p.advance()
		saved := p.normDepth
		p.normDepth = 0
		inner := p.parseExpr()
		p.normDepth = saved
		if inner == nil {
			return nil
		}
		if tok := p.current(); tok.Type != lexer.TokRParen {
			p.fail(tok, lexer.TokRParen.String(),
				fmt.Sprintf("expected ')' to close '(' at offset %d, got %s", open.Span.Offset, describe(tok)))
			return nil
		}
		closing := p.advance()
		return &ast.GroupExpr{Span: ast.Join(open.Span, closing.Span), Inner: inner}

	case lexer.TokNumber:
		return p.parseNumber()

	case lexer.TokBitString:
		// A bit run after a bar that opens no ket is a number, as in |1| or
		// <0| 10.
		return p.parseNumber()

	default:
		tok := p.current()
		switch tok.Type {
		case lexer.TokEOF:
			p.fail(tok, "operand", "unexpected end of input")
		case lexer.TokRParen:
			p.fail(tok, "operand", "unmatched ')'")
		default:
			p.fail(tok, "operand", fmt.Sprintf("unexpected %s", describe(tok)))
		}
		return nil
	}
}

func (p *parser) parseNumber() ast.Expr {
	tok := p.advance()
	val, err := strconv.ParseFloat(tok.Value, 64)
	if err != nil {
		p.fail(tok, "", fmt.Sprintf("number %s out of range", tok.Value))
		return nil
	}
	return &ast.ScalarLiteral{Span: tok.Span, Value: complex(val, 0), Text: tok.Value}
}

func (p *parser) parseKet() ast.Expr {
	open := p.advance()
	bits := p.advance()
	closing := p.advance()
	return &ast.KetLiteral{Span: ast.Join(open.Span, closing.Span), Bits: bits.Value}
}

func (p *parser) parseBra() ast.Expr {
	open := p.advance()
	if p.peek() != lexer.TokBitString || p.peekAt(1) != lexer.TokPipe {
		p.fail(p.current(), lexer.TokBitString.String(), "malformed bit-string in bra")
		return nil
	}
	bits := p.advance()
	closing := p.current()
	// In <0|1> the bar also opens the ket, so it is left for the next operand.
	if !p.opensKet() {
		p.advance()
	}
	return &ast.ConjTransposeExpr{
		Span:    ast.Join(open.Span, closing.Span),
		Operand: &ast.KetLiteral{Span: bits.Span, Bits: bits.Value},
	}
}

func (p *parser) parseNorm() ast.Expr {
	// |> and |2> are kets with a bad bit-string, not norms.
	if p.peekAt(1) == lexer.TokRAngle || p.peekAt(2) == lexer.TokRAngle && p.peekAt(1) != lexer.TokPipe {
		p.advance()
		p.fail(p.current(), lexer.TokBitString.String(), "malformed bit-string in ket")
		return nil
	}

	open := p.advance()
	p.normDepth++
	inner := p.parseExpr()
	p.normDepth--
	if inner == nil {
		return nil
	}
	tok := p.current()
	switch tok.Type {
	case lexer.TokPipe:
	case lexer.TokRAngle:
		p.fail(tok, lexer.TokBitString.String(), "malformed bit-string in ket")
		return nil
	default:
		p.fail(tok, lexer.TokPipe.String(),
			fmt.Sprintf("expected '|' to close norm at offset %d, got %s", open.Span.Offset, describe(tok)))
		return nil
	}
	closing := p.advance()
	return &ast.NormExpr{Span: ast.Join(open.Span, closing.Span), Inner: inner}
}

func binary(op ast.BinaryOp, left, right ast.Expr) *ast.BinaryExpr {
	return &ast.BinaryExpr{
		Span:  ast.Join(left.NodeSpan(), right.NodeSpan()),
		Op:    op,
		Left:  left,
		Right: right,
	}
}
