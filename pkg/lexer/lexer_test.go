package lexer

import (
	"errors"
	"strings"
	"testing"
)

// helper to tokenize and fail on error
func mustTokenize(t *testing.T, source string) []Token {
	t.Helper()
	tokens, err := Tokenize(source, "test.dirac")
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	return tokens
}

// helper that strips the trailing EOF for easier assertions
func mustTokenizeNoEOF(t *testing.T, source string) []Token {
	t.Helper()
	tokens := mustTokenize(t, source)
	if len(tokens) == 0 {
		t.Fatal("expected at least one token (EOF)")
	}
	if tokens[len(tokens)-1].Type != TokEOF {
		t.Fatal("last token is not EOF")
	}
	return tokens[:len(tokens)-1]
}

func types(tokens []Token) []TokenType {
	out := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Type
	}
	return out
}

func assertTypes(t *testing.T, source string, want ...TokenType) []Token {
	t.Helper()
	tokens := mustTokenizeNoEOF(t, source)
	got := types(tokens)
	if len(got) != len(want) {
		t.Fatalf("%q: expected %d tokens %v, got %d %v", source, len(want), want, len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%q: token %d: expected %v, got %v", source, i, want[i], got[i])
		}
	}
	return tokens
}

func TestEmptyInput(t *testing.T) {
	tokens := mustTokenize(t, "")
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token (EOF), got %d", len(tokens))
	}
	if tokens[0].Type != TokEOF {
		t.Errorf("expected TokEOF, got %v", tokens[0].Type)
	}
}

func TestWhitespaceOnly(t *testing.T) {
	tokens := mustTokenize(t, " \t\r\n ")
	if len(tokens) != 1 || tokens[0].Type != TokEOF {
		t.Fatalf("expected only EOF, got %v", types(tokens))
	}
}

func TestSingleCharTokens(t *testing.T) {
	tests := []struct {
		src  string
		want TokenType
	}{
		{"|", TokPipe},
		{"<", TokLAngle},
		{">", TokRAngle},
		{"(", TokLParen},
		{")", TokRParen},
		{"+", TokPlus},
		{"-", TokMinus},
		{"*", TokStar},
		{".", TokDot},
		{"/", TokSlash},
		{"x", TokKron},
		{"'", TokQuote},
	}
	for _, tt := range tests {
		tokens := assertTypes(t, tt.src, tt.want)
		if tokens[0].Value != tt.src {
			t.Errorf("%q: expected value %q, got %q", tt.src, tt.src, tokens[0].Value)
		}
	}
}

func TestKet(t *testing.T) {
	tokens := assertTypes(t, "|0101>", TokPipe, TokBitString, TokRAngle)
	if tokens[1].Value != "0101" {
		t.Errorf("expected bits 0101, got %q", tokens[1].Value)
	}
}

func TestBra(t *testing.T) {
	tokens := assertTypes(t, "<10|", TokLAngle, TokBitString, TokPipe)
	if tokens[1].Value != "10" {
		t.Errorf("expected bits 10, got %q", tokens[1].Value)
	}
}

func TestBraKet(t *testing.T) {
	assertTypes(t, "<0|1>", TokLAngle, TokBitString, TokPipe, TokBitString, TokRAngle)
}

func TestBitsOnlyAfterOpeningBracket(t *testing.T) {
	// Outside a ket or bra a 0/1 run is an ordinary number.
	tokens := assertTypes(t, "10 |10>", TokNumber, TokPipe, TokBitString, TokRAngle)
	if tokens[0].Value != "10" {
		t.Errorf("expected number 10, got %q", tokens[0].Value)
	}
}

func TestNumberInsideNorm(t *testing.T) {
	tests := []struct {
		src   string
		value string
	}{
		{"|10.5|", "10.5"},
		{"|2|", "2"},
		{"|12|", "12"},
		{"|1e3|", "1e3"},
		{"|.5|", ".5"},
	}
	for _, tt := range tests {
		tokens := assertTypes(t, tt.src, TokPipe, TokNumber, TokPipe)
		if tokens[1].Value != tt.value {
			t.Errorf("%q: expected number %q, got %q", tt.src, tt.value, tokens[1].Value)
		}
	}
}

func TestBitsThenDigit(t *testing.T) {
	// A bit run followed by another digit is read as one number; the
	// parser reports the malformed ket.
	tokens := assertTypes(t, "|012>", TokPipe, TokNumber, TokRAngle)
	if tokens[1].Value != "012" {
		t.Errorf("expected number 012, got %q", tokens[1].Value)
	}
}

func TestKetWithKron(t *testing.T) {
	assertTypes(t, "|0>x|1>",
		TokPipe, TokBitString, TokRAngle, TokKron, TokPipe, TokBitString, TokRAngle)
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		src   string
		value string
	}{
		{"0", "0"},
		{"42", "42"},
		{"3.25", "3.25"},
		{".5", ".5"},
		{"1e10", "1e10"},
		{"2.5E-3", "2.5E-3"},
		{"7e+2", "7e+2"},
	}
	for _, tt := range tests {
		tokens := assertTypes(t, tt.src, TokNumber)
		if tokens[0].Value != tt.value {
			t.Errorf("%q: expected %q, got %q", tt.src, tt.value, tokens[0].Value)
		}
	}
}

func TestTrailingDotNotPartOfNumber(t *testing.T) {
	tokens := assertTypes(t, "1.", TokNumber, TokDot)
	if tokens[0].Value != "1" {
		t.Errorf("expected number 1, got %q", tokens[0].Value)
	}
	assertTypes(t, "<1| . |0>", TokLAngle, TokBitString, TokPipe, TokDot, TokPipe, TokBitString, TokRAngle)
	assertTypes(t, "<1|.5", TokLAngle, TokBitString, TokPipe, TokNumber)
}

func TestScalarExpression(t *testing.T) {
	assertTypes(t, "-2*(|0> - |1>)/3",
		TokMinus, TokNumber, TokStar, TokLParen,
		TokPipe, TokBitString, TokRAngle, TokMinus,
		TokPipe, TokBitString, TokRAngle,
		TokRParen, TokSlash, TokNumber)
}

func TestPostfixQuote(t *testing.T) {
	assertTypes(t, "|0>'", TokPipe, TokBitString, TokRAngle, TokQuote)
}

func TestSpans(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "|0>\n + <1|")
	// '+' on line 2, col 2
	plus := tokens[3]
	if plus.Type != TokPlus {
		t.Fatalf("expected '+', got %v", plus.Type)
	}
	if plus.Span.StartLine != 2 || plus.Span.StartCol != 2 {
		t.Errorf("expected '+' at 2:2, got %d:%d", plus.Span.StartLine, plus.Span.StartCol)
	}
	if plus.Offset() != 5 {
		t.Errorf("expected offset 5, got %d", plus.Offset())
	}
	bits := tokens[5]
	if bits.Span.Offset != 8 || bits.Span.EndOffset != 9 {
		t.Errorf("expected bits span [8,9), got [%d,%d)", bits.Span.Offset, bits.Span.EndOffset)
	}
	if bits.Span.File != "test.dirac" {
		t.Errorf("expected file test.dirac, got %q", bits.Span.File)
	}
}

func TestEOFSpan(t *testing.T) {
	tokens := mustTokenize(t, "|0>")
	eof := tokens[len(tokens)-1]
	if eof.Span.Offset != 3 {
		t.Errorf("expected EOF at offset 3, got %d", eof.Span.Offset)
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		src    string
		offset int
		msg    string
	}{
		{"|0> & |1>", 4, "unexpected character '&'"},
		{"|a>", 1, "unexpected character 'a'"},
		{"|+>", -1, ""},
		{"2i", 1, "unexpected character 'i'"},
		{"1e", 1, "malformed exponent"},
		{"|1e+>", 2, "unexpected character 'e'"},
		{"|0> ⊗ |1>", 4, "non-ASCII"},
	}
	for _, tt := range tests {
		_, err := Tokenize(tt.src, "test.dirac")
		if tt.offset < 0 {
			// '+' is an operator, so |+> lexes; the parser rejects it.
			if err != nil {
				t.Errorf("%q: unexpected lex error: %v", tt.src, err)
			}
			continue
		}
		if err == nil {
			t.Errorf("%q: expected lex error", tt.src)
			continue
		}
		var le *LexError
		if !errors.As(err, &le) {
			t.Errorf("%q: expected *LexError, got %T", tt.src, err)
			continue
		}
		if le.Offset != tt.offset {
			t.Errorf("%q: expected offset %d, got %d", tt.src, tt.offset, le.Offset)
		}
		if !strings.Contains(le.Message, tt.msg) {
			t.Errorf("%q: expected message containing %q, got %q", tt.src, tt.msg, le.Message)
		}
	}
}

func TestLexErrorDiagnostic(t *testing.T) {
	_, err := Tokenize("|0> ?", "test.dirac")
	var le *LexError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LexError, got %v", err)
	}
	d := le.Diagnostic()
	if d.Code != "E_LEX" {
		t.Errorf("expected E_LEX, got %q", d.Code)
	}
	if d.Span == nil || d.Span.StartCol != 5 {
		t.Errorf("expected span at column 5, got %+v", d.Span)
	}
	if le.Error() != "offset 4: unexpected character '?'" {
		t.Errorf("unexpected error text %q", le.Error())
	}
}

func TestTokenTypeString(t *testing.T) {
	if TokBitString.String() != "bit-string" {
		t.Errorf("got %q", TokBitString.String())
	}
	if TokEOF.String() != "end of input" {
		t.Errorf("got %q", TokEOF.String())
	}
	if TokenType(99).String() != "token(99)" {
		t.Errorf("got %q", TokenType(99).String())
	}
}
