// Package dirac parses and evaluates Dirac (bra-ket) notation.
//
// Text such as (|0> + |1>) / | |0> + |1> | becomes a dense complex tensor:
//
//	t, err := dirac.Interpret("<0|1>")
//
// The functions here use evaluator.DefaultBudget. Use pkg/runtime for
// budgets, caching, tracing and static checks.
package dirac

import (
	"github.com/thomasrohde/dirac/pkg/ast"
	"github.com/thomasrohde/dirac/pkg/evaluator"
	"github.com/thomasrohde/dirac/pkg/parser"
	"github.com/thomasrohde/dirac/pkg/tensor"
)

// Parse converts text into an expression tree. It fails with
// *lexer.LexError or *parser.ParseError.
func Parse(text string) (ast.Expr, error) {
	return parser.Parse(text, "")
}

// Evaluate computes the tensor for expr. It fails with *evaluator.EvalError.
func Evaluate(expr ast.Expr) (tensor.Tensor, tensor.Shape, error) {
	v, err := EvaluateValue(expr)
	if err != nil {
		return tensor.Tensor{}, tensor.Shape{}, err
	}
	return v.Tensor, v.Shape(), nil
}

// EvaluateValue is like Evaluate but also reports the value's kind.
func EvaluateValue(expr ast.Expr) (*evaluator.Value, error) {
	return evaluator.Evaluate(expr, evaluator.Options{Budget: evaluator.DefaultBudget()})
}

// Interpret parses and evaluates text.
func Interpret(text string) (tensor.Tensor, error) {
	expr, err := Parse(text)
	if err != nil {
		return tensor.Tensor{}, err
	}
	t, _, err := Evaluate(expr)
	return t, err
}
