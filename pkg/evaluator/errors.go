package evaluator

import (
	"errors"
	"fmt"

	"github.com/thomasrohde/dirac/pkg/ast"
	"github.com/thomasrohde/dirac/pkg/diagnostics"
	"github.com/thomasrohde/dirac/pkg/tensor"
)

// ErrorKind classifies evaluation failures.
type ErrorKind string

const (
	ShapeMismatch     ErrorKind = "ShapeMismatch"
	DimensionMismatch ErrorKind = "DimensionMismatch"
	InvalidOperand    ErrorKind = "InvalidOperand"
	DivisionByZero    ErrorKind = "DivisionByZero"
	BudgetExceeded    ErrorKind = "BudgetExceeded"
)

// Sentinels matched by errors.Is against an *EvalError of the same kind.
var (
	ErrShapeMismatch     = errors.New("shape mismatch")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrInvalidOperand    = errors.New("invalid operand")
	ErrDivisionByZero    = errors.New("division by zero")
	ErrBudgetExceeded    = errors.New("budget exceeded")
)

var kindInfo = map[ErrorKind]struct {
	sentinel error
	code     string
}{
	ShapeMismatch:     {ErrShapeMismatch, diagnostics.EShape},
	DimensionMismatch: {ErrDimensionMismatch, diagnostics.EDimension},
	InvalidOperand:    {ErrInvalidOperand, diagnostics.EOperand},
	DivisionByZero:    {ErrDivisionByZero, diagnostics.EDivZero},
	BudgetExceeded:    {ErrBudgetExceeded, diagnostics.EBudget},
}

// Sentinel returns the sentinel error for k.
func (k ErrorKind) Sentinel() error { return kindInfo[k].sentinel }

// Code returns the diagnostic code for k.
func (k ErrorKind) Code() string { return kindInfo[k].code }

// EvalError is an evaluation failure at a node. Left and Right hold the
// operand shapes when the failure involves them.
type EvalError struct {
	Kind    ErrorKind
	Message string
	Span    ast.Span
	Left    *tensor.Shape
	Right   *tensor.Shape
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind.Sentinel(), e.Message)
}

// Is matches the sentinel of the error's kind.
func (e *EvalError) Is(target error) bool {
	return target != nil && target == e.Kind.Sentinel()
}

// Diagnostic converts the error to a diagnostic carrying its code.
func (e *EvalError) Diagnostic() diagnostics.Diagnostic {
	span := e.Span
	return diagnostics.MakeDiag(e.Kind.Code(), e.Message, &span, hints[e.Kind])
}

var hints = map[ErrorKind]string{
	ShapeMismatch:     "operands must have matching dimensions",
	DimensionMismatch: "norms apply to kets, bras and scalars",
	InvalidOperand:    "the operand kinds do not support this operation",
	DivisionByZero:    "the divisor evaluated to zero",
	BudgetExceeded:    "raise max_qubits or max_elements to allow larger registers",
}

func newError(kind ErrorKind, span ast.Span, format string, args ...any) *EvalError {
	return &EvalError{Kind: kind, Message: fmt.Sprintf(format, args...), Span: span}
}

func shapeError(kind ErrorKind, span ast.Span, left, right tensor.Shape, format string, args ...any) *EvalError {
	e := newError(kind, span, format, args...)
	e.Left, e.Right = &left, &right
	return e
}
