// Package diagnostics defines diagnostic types for lex, parse, check and
// evaluation errors.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/thomasrohde/dirac/pkg/ast"
)

// Diagnostic code constants.
const (
	ELex       = "E_LEX"
	EParse     = "E_PARSE"
	EShape     = "E_SHAPE"
	EDimension = "E_DIMENSION"
	EOperand   = "E_OPERAND"
	EDivZero   = "E_DIV_ZERO"
	EBudget    = "E_BUDGET"
)

// Diagnostic represents a lex, parse, check, or evaluation diagnostic.
type Diagnostic struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Span    *ast.Span `json:"span,omitempty"`
	Hint    string    `json:"hint,omitempty"`
}

// MakeDiag creates a new Diagnostic.
func MakeDiag(code, message string, span *ast.Span, hint string) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: message,
		Span:    span,
		Hint:    hint,
	}
}

// Exit codes shared by the CLI and the conformance tests.
const (
	ExitOK     = 0
	ExitUsage  = 1
	ExitSyntax = 2
	ExitEval   = 3
	ExitOther  = 4
)

// ExitCode maps a diagnostic code to the process exit code.
func ExitCode(code string) int {
	switch code {
	case ELex, EParse:
		return ExitSyntax
	case EShape, EDimension, EOperand, EDivZero, EBudget:
		return ExitEval
	default:
		return ExitOther
	}
}

// Diagnoser is implemented by errors that carry a diagnostic.
type Diagnoser interface {
	error
	Diagnostic() Diagnostic
}

// FromError converts err to a diagnostic. Errors that do not carry one
// become a diagnostic with an empty code.
func FromError(err error) Diagnostic {
	if d, ok := err.(Diagnoser); ok {
		return d.Diagnostic()
	}
	return Diagnostic{Message: err.Error()}
}

// FormatDiagnostic formats a single diagnostic for display.
func FormatDiagnostic(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	loc := "<unknown>"
	if d.Span != nil {
		file := d.Span.File
		if file == "" {
			file = "<input>"
		}
		loc = fmt.Sprintf("%s:%d:%d", file, d.Span.StartLine, d.Span.StartCol)
	}
	code := d.Code
	if code == "" {
		code = "E"
	}
	out := fmt.Sprintf("error[%s]: %s\n  --> %s", code, d.Message, loc)
	if d.Hint != "" {
		out += fmt.Sprintf("\n  hint: %s", d.Hint)
	}
	return out
}

// FormatWithSource formats d like FormatDiagnostic in pretty mode and adds
// the offending source line with a caret under the span.
func FormatWithSource(d Diagnostic, source string) string {
	out := FormatDiagnostic(d, true)
	if d.Span == nil || d.Span.StartLine < 1 {
		return out
	}
	lines := strings.Split(source, "\n")
	if d.Span.StartLine > len(lines) {
		return out
	}
	line := lines[d.Span.StartLine-1]
	col := d.Span.StartCol
	if col < 1 {
		col = 1
	}
	width := 1
	if d.Span.EndLine == d.Span.StartLine && d.Span.EndCol > col {
		width = d.Span.EndCol - col
	}
	if col-1+width > len(line)+1 {
		width = len(line) + 2 - col
		if width < 1 {
			width = 1
		}
	}
	return out + "\n   | " + line + "\n   | " + strings.Repeat(" ", col-1) + strings.Repeat("^", width)
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, true)
	}
	return strings.Join(parts, "\n\n")
}
