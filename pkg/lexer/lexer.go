// Package lexer implements the Dirac notation tokenizer.
//
// The lexer does not decide what a '|' means. Every '|' becomes TokPipe and
// the parser resolves ket, bra, and norm roles with bounded lookahead.
package lexer

import (
	"fmt"

	"github.com/thomasrohde/dirac/pkg/ast"
	"github.com/thomasrohde/dirac/pkg/diagnostics"
)

// TokenType identifies the type of a lexer token.
type TokenType int

const (
	// Brackets
	TokPipe   TokenType = iota // |
	TokLAngle                  // <
	TokRAngle                  // >
	TokLParen                  // (
	TokRParen                  // )

	// Literals
	TokBitString
	TokNumber

	// Operators
	TokPlus  // +
	TokMinus // -
	TokStar  // *
	TokDot   // .
	TokSlash // /
	TokKron  // x
	TokQuote // '

	// Special
	TokEOF
)

var tokenNames = map[TokenType]string{
	TokPipe:      "'|'",
	TokLAngle:    "'<'",
	TokRAngle:    "'>'",
	TokLParen:    "'('",
	TokRParen:    "')'",
	TokBitString: "bit-string",
	TokNumber:    "number",
	TokPlus:      "'+'",
	TokMinus:     "'-'",
	TokStar:      "'*'",
	TokDot:       "'.'",
	TokSlash:     "'/'",
	TokKron:      "'x'",
	TokQuote:     "'''",
	TokEOF:       "end of input",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Token represents a single lexer token.
type Token struct {
	Type  TokenType
	Value string
	Span  ast.Span
}

// Offset returns the byte offset of the token in the source.
func (t Token) Offset() int { return t.Span.Offset }

type scanner struct {
	source   string
	filename string
	pos      int
	line     int
	col      int
	prev     TokenType
}

func newScanner(source, filename string) *scanner {
	return &scanner{
		source:   source,
		filename: filename,
		pos:      0,
		line:     1,
		col:      1,
		prev:     TokEOF,
	}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source)
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *scanner) peekAt(offset int) byte {
	p := s.pos + offset
	if p >= len(s.source) {
		return 0
	}
	return s.source[p]
}

func (s *scanner) advance() byte {
	ch := s.source[s.pos]
	s.pos++
	if ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return ch
}

type mark struct {
	pos, line, col int
}

func (s *scanner) mark() mark {
	return mark{pos: s.pos, line: s.line, col: s.col}
}

func (s *scanner) span(start mark) ast.Span {
	return ast.Span{
		File:      s.filename,
		Offset:    start.pos,
		EndOffset: s.pos,
		StartLine: start.line,
		StartCol:  start.col,
		EndLine:   s.line,
		EndCol:    s.col,
	}
}

func (s *scanner) skipWhitespace() {
	for !s.atEnd() {
		switch s.peek() {
		case ' ', '\t', '\r', '\n':
			s.advance()
		default:
			return
		}
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isBit(ch byte) bool {
	return ch == '0' || ch == '1'
}

// LexError reports an unrecognized or malformed character sequence.
type LexError struct {
	Offset  int
	Message string
	Span    ast.Span
}

func (e *LexError) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Message)
}

// Diagnostic converts the error to an E_LEX diagnostic.
func (e *LexError) Diagnostic() diagnostics.Diagnostic {
	span := e.Span
	return diagnostics.MakeDiag(diagnostics.ELex, e.Message, &span, "")
}

func (s *scanner) lexError(start mark, msg string) error {
	sp := ast.Span{
		File:      s.filename,
		Offset:    start.pos,
		EndOffset: start.pos + 1,
		StartLine: start.line,
		StartCol:  start.col,
		EndLine:   start.line,
		EndCol:    start.col + 1,
	}
	return &LexError{Offset: start.pos, Message: msg, Span: sp}
}

// continuesNumber reports whether the byte at offset starts something that
// makes a preceding digit run part of a decimal literal.
func (s *scanner) continuesNumber(offset int) bool {
	ch := s.peekAt(offset)
	switch {
	case isDigit(ch):
		return true
	case ch == '.':
		return isDigit(s.peekAt(offset + 1))
	case ch == 'e' || ch == 'E':
		next := s.peekAt(offset + 1)
		if next == '+' || next == '-' {
			next = s.peekAt(offset + 2)
		}
		return isDigit(next)
	}
	return false
}

// scanBitsOrNumber is used right after '|' or '<'. A maximal run of 0/1 is a
// bit-string unless it continues into a decimal literal.
func (s *scanner) scanBitsOrNumber() (Token, error) {
	n := 0
	for isBit(s.peekAt(n)) {
		n++
	}
	if n == 0 || s.continuesNumber(n) {
		return s.scanNumber()
	}
	start := s.mark()
	for i := 0; i < n; i++ {
		s.advance()
	}
	return Token{Type: TokBitString, Value: s.source[start.pos:s.pos], Span: s.span(start)}, nil
}

func (s *scanner) scanNumber() (Token, error) {
	start := s.mark()

	for !s.atEnd() && isDigit(s.peek()) {
		s.advance()
	}

	if s.peek() == '.' && isDigit(s.peekAt(1)) {
		s.advance() // consume '.'
		for !s.atEnd() && isDigit(s.peek()) {
			s.advance()
		}
	}

	if s.peek() == 'e' || s.peek() == 'E' {
		expStart := s.mark()
		s.advance() // consume e/E
		if s.peek() == '+' || s.peek() == '-' {
			s.advance()
		}
		if !isDigit(s.peek()) {
			return Token{}, s.lexError(expStart, "malformed exponent in number literal")
		}
		for !s.atEnd() && isDigit(s.peek()) {
			s.advance()
		}
	}

	return Token{Type: TokNumber, Value: s.source[start.pos:s.pos], Span: s.span(start)}, nil
}

func (s *scanner) single(typ TokenType) Token {
	start := s.mark()
	s.advance()
	return Token{Type: typ, Value: s.source[start.pos:s.pos], Span: s.span(start)}
}

func (s *scanner) nextToken() (Token, error) {
	s.skipWhitespace()

	if s.atEnd() {
		start := s.mark()
		return Token{Type: TokEOF, Value: "", Span: s.span(start)}, nil
	}

	ch := s.peek()

	switch ch {
	case '|':
		return s.single(TokPipe), nil
	case '<':
		return s.single(TokLAngle), nil
	case '>':
		return s.single(TokRAngle), nil
	case '(':
		return s.single(TokLParen), nil
	case ')':
		return s.single(TokRParen), nil
	case '+':
		return s.single(TokPlus), nil
	case '-':
		return s.single(TokMinus), nil
	case '*':
		return s.single(TokStar), nil
	case '/':
		return s.single(TokSlash), nil
	case 'x':
		return s.single(TokKron), nil
	case '\'':
		return s.single(TokQuote), nil
	}

	if isDigit(ch) {
		if s.prev == TokPipe || s.prev == TokLAngle {
			return s.scanBitsOrNumber()
		}
		return s.scanNumber()
	}
	if ch == '.' {
		if isDigit(s.peekAt(1)) {
			return s.scanNumber()
		}
		return s.single(TokDot), nil
	}

	start := s.mark()
	if ch >= 0x80 {
		return Token{}, s.lexError(start, "unexpected non-ASCII character")
	}
	return Token{}, s.lexError(start, fmt.Sprintf("unexpected character '%c'", ch))
}

// Tokenize breaks an expression into a slice of tokens terminated by TokEOF.
func Tokenize(source, filename string) ([]Token, error) {
	s := newScanner(source, filename)
	var tokens []Token

	for {
		tok, err := s.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		s.prev = tok.Type
		if tok.Type == TokEOF {
			break
		}
	}

	return tokens, nil
}
