// Package validator implements static kind and shape checking of Dirac
// expression trees.
//
// The checker infers the kind and shape of every node with the evaluator's
// dispatch tables without allocating any tensors, so it can reject
// expressions such as |0> + |01> before evaluation.
package validator

import (
	"errors"
	"fmt"

	"github.com/thomasrohde/dirac/pkg/ast"
	"github.com/thomasrohde/dirac/pkg/diagnostics"
	"github.com/thomasrohde/dirac/pkg/evaluator"
	"github.com/thomasrohde/dirac/pkg/tensor"
)

// NodeInfo is the inferred type of one node.
type NodeInfo struct {
	Kind  evaluator.Kind
	Shape tensor.Shape
}

// Info is the result of a check. Kind and Shape describe the root and are
// only meaningful when no diagnostics were reported.
type Info struct {
	Kind  evaluator.Kind
	Shape tensor.Shape
	Nodes map[ast.Expr]NodeInfo
}

type validator struct {
	budget evaluator.Budget
	nodes  map[ast.Expr]NodeInfo
	diags  []diagnostics.Diagnostic
}

// Check infers kinds and shapes for expr with no resource limits.
func Check(expr ast.Expr) (Info, []diagnostics.Diagnostic) {
	return CheckWithBudget(expr, evaluator.Budget{})
}

// CheckWithBudget is like Check but also reports tensors that would exceed b.
func CheckWithBudget(expr ast.Expr, b evaluator.Budget) (Info, []diagnostics.Diagnostic) {
	v := &validator{budget: b, nodes: make(map[ast.Expr]NodeInfo)}
	info := Info{Nodes: v.nodes}
	if expr == nil {
		v.diags = append(v.diags, diagnostics.MakeDiag(diagnostics.EParse, "empty expression", nil, ""))
		return info, v.diags
	}
	if root, ok := v.check(expr); ok {
		info.Kind, info.Shape = root.Kind, root.Shape
	}
	return info, v.diags
}

func (v *validator) report(kind evaluator.ErrorKind, span ast.Span, left, right *tensor.Shape, format string, args ...any) {
	e := &evaluator.EvalError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Span:    span,
		Left:    left,
		Right:   right,
	}
	v.diags = append(v.diags, e.Diagnostic())
}

func (v *validator) reportBudget(span ast.Span, err error) {
	v.report(evaluator.BudgetExceeded, span, nil, nil, "%v", err)
}

// check returns false when the node or one of its children is ill-typed.
// Only the innermost failure is reported.
func (v *validator) check(expr ast.Expr) (NodeInfo, bool) {
	info, ok := v.infer(expr)
	if ok {
		v.nodes[expr] = info
	}
	return info, ok
}

func (v *validator) infer(expr ast.Expr) (NodeInfo, bool) {
	switch n := expr.(type) {
	case *ast.KetLiteral:
		if err := v.budget.CheckQubits(len(n.Bits)); err != nil {
			v.reportBudget(n.Span, err)
			return NodeInfo{}, false
		}
		return NodeInfo{Kind: evaluator.KindKet, Shape: tensor.Shape{Rows: 1 << len(n.Bits), Cols: 1}}, true

	case *ast.ScalarLiteral:
		return NodeInfo{Kind: evaluator.KindScalar, Shape: tensor.Shape{Rows: 1, Cols: 1}}, true

	case *ast.GroupExpr:
		return v.check(n.Inner)

	case *ast.NegExpr:
		return v.check(n.Operand)

	case *ast.ConjTransposeExpr:
		inner, ok := v.check(n.Operand)
		if !ok {
			return NodeInfo{}, false
		}
		return NodeInfo{Kind: evaluator.DaggerKind(inner.Kind), Shape: inner.Shape.T()}, true

	case *ast.NormExpr:
		inner, ok := v.check(n.Inner)
		if !ok {
			return NodeInfo{}, false
		}
		if !evaluator.HasNorm(inner.Kind) {
			s := inner.Shape
			v.report(evaluator.DimensionMismatch, n.Span, &s, nil, "norm of a %s %s is not defined", inner.Kind, s)
			return NodeInfo{}, false
		}
		return NodeInfo{Kind: evaluator.KindScalar, Shape: tensor.Shape{Rows: 1, Cols: 1}}, true

	case *ast.BinaryExpr:
		return v.inferBinary(n)
	}
	v.diags = append(v.diags, diagnostics.MakeDiag(diagnostics.EOperand, fmt.Sprintf("unknown node %s", expr.Kind()), nil, ""))
	return NodeInfo{}, false
}

func (v *validator) inferBinary(n *ast.BinaryExpr) (NodeInfo, bool) {
	// Both sides are checked so that independent errors are all reported.
	l, lok := v.check(n.Left)
	r, rok := v.check(n.Right)
	if !lok || !rok {
		return NodeInfo{}, false
	}

	switch n.Op {
	case ast.OpAdd, ast.OpSub:
		if l.Shape != r.Shape {
			verb := "add"
			if n.Op == ast.OpSub {
				verb = "subtract"
			}
			v.report(evaluator.ShapeMismatch, n.Span, &l.Shape, &r.Shape,
				"cannot %s %s %s and %s %s", verb, l.Kind, l.Shape, r.Kind, r.Shape)
			return NodeInfo{}, false
		}
		return NodeInfo{Kind: evaluator.SumKind(l.Kind, r.Kind), Shape: l.Shape}, true

	case ast.OpKron:
		shape, err := tensor.KronShape(l.Shape, r.Shape)
		if err == nil {
			err = v.budget.CheckShape(shape)
		}
		if err != nil {
			v.reportBudget(n.Span, err)
			return NodeInfo{}, false
		}
		return NodeInfo{Kind: evaluator.KronKind(l.Kind, r.Kind), Shape: shape}, true

	case ast.OpDiv:
		if r.Kind != evaluator.KindScalar {
			v.report(evaluator.InvalidOperand, n.Span, &l.Shape, &r.Shape, "cannot divide by a %s %s", r.Kind, r.Shape)
			return NodeInfo{}, false
		}
		if isLiteralZero(n.Right) {
			v.report(evaluator.DivisionByZero, n.Span, nil, nil, "divisor evaluates to zero")
			return NodeInfo{}, false
		}
		return l, true

	case ast.OpJuxtapose:
		return v.inferJuxtaposition(n, l, r)
	}
	v.diags = append(v.diags, diagnostics.MakeDiag(diagnostics.EOperand, fmt.Sprintf("unknown operator %q", n.Op), &n.Span, ""))
	return NodeInfo{}, false
}

func (v *validator) inferJuxtaposition(n *ast.BinaryExpr, l, r NodeInfo) (NodeInfo, bool) {
	op, kind := evaluator.ResolveJuxtaposition(l.Kind, r.Kind)
	switch op {
	case evaluator.JuxtScaleLeft:
		return NodeInfo{Kind: kind, Shape: r.Shape}, true
	case evaluator.JuxtScaleRight:
		return NodeInfo{Kind: kind, Shape: l.Shape}, true
	case evaluator.JuxtInner:
		if l.Shape.Len() != r.Shape.Len() {
			v.report(evaluator.ShapeMismatch, n.Span, &l.Shape, &r.Shape,
				"inner product of bra %s and ket %s", l.Shape, r.Shape)
			return NodeInfo{}, false
		}
		return NodeInfo{Kind: kind, Shape: tensor.Shape{Rows: 1, Cols: 1}}, true
	case evaluator.JuxtOuter:
		shape := tensor.Shape{Rows: l.Shape.Rows, Cols: r.Shape.Cols}
		if err := v.budget.CheckShape(shape); err != nil {
			v.reportBudget(n.Span, err)
			return NodeInfo{}, false
		}
		return NodeInfo{Kind: kind, Shape: shape}, true
	}
	msg := fmt.Sprintf("cannot juxtapose %s %s with %s %s", l.Kind, l.Shape, r.Kind, r.Shape)
	if l.Kind == evaluator.KindKet && r.Kind == evaluator.KindKet {
		msg += "; use 'x' for the tensor product"
	}
	v.report(evaluator.InvalidOperand, n.Span, &l.Shape, &r.Shape, "%s", msg)
	return NodeInfo{}, false
}

// isLiteralZero reports whether e is a zero written directly in the source,
// possibly parenthesized or negated.
func isLiteralZero(e ast.Expr) bool {
	for {
		switch n := e.(type) {
		case *ast.ScalarLiteral:
			return n.Value == 0
		case *ast.GroupExpr:
			e = n.Inner
		case *ast.NegExpr:
			e = n.Operand
		default:
			return false
		}
	}
}

// Err converts diagnostics from Check to an error, or nil when there are
// none. The first diagnostic's message leads.
func Err(diags []diagnostics.Diagnostic) error {
	if len(diags) == 0 {
		return nil
	}
	return &CheckError{Diagnostics: diags}
}

// CheckError carries the diagnostics of a failed static check.
type CheckError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *CheckError) Error() string {
	d := e.Diagnostics[0]
	if len(e.Diagnostics) == 1 {
		return fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return fmt.Sprintf("%s: %s (and %d more)", d.Code, d.Message, len(e.Diagnostics)-1)
}

// Diagnostic returns the first diagnostic.
func (e *CheckError) Diagnostic() diagnostics.Diagnostic { return e.Diagnostics[0] }

// Is matches the evaluator sentinel for the first diagnostic's code, so a
// static rejection and a runtime failure can be tested the same way.
func (e *CheckError) Is(target error) bool {
	for _, k := range []evaluator.ErrorKind{
		evaluator.ShapeMismatch, evaluator.DimensionMismatch, evaluator.InvalidOperand,
		evaluator.DivisionByZero, evaluator.BudgetExceeded,
	} {
		if k.Code() == e.Diagnostics[0].Code {
			return errors.Is(k.Sentinel(), target)
		}
	}
	return false
}
