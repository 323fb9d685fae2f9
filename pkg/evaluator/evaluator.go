package evaluator

import (
	"errors"
	"fmt"

	"github.com/thomasrohde/dirac/pkg/ast"
	"github.com/thomasrohde/dirac/pkg/tensor"
)

// Options configures an evaluation.
type Options struct {
	Budget Budget
	// Observe, when set, is called after each node is evaluated.
	Observe func(node ast.Expr, v *Value)
}

var (
	basis0 = tensor.Basis(2, 0)
	basis1 = tensor.Basis(2, 1)
)

type evaluator struct {
	opts Options
}

// Evaluate computes the value of expr. Evaluation failures are returned as
// *EvalError.
func Evaluate(expr ast.Expr, opts Options) (*Value, error) {
	if expr == nil {
		return nil, errors.New("evaluator: nil expression")
	}
	ev := &evaluator{opts: opts}
	return ev.eval(expr)
}

func (ev *evaluator) eval(expr ast.Expr) (*Value, error) {
	v, err := ev.evalNode(expr)
	if err != nil {
		return nil, err
	}
	if ev.opts.Observe != nil {
		ev.opts.Observe(expr, v)
	}
	return v, nil
}

func (ev *evaluator) evalNode(expr ast.Expr) (*Value, error) {
	switch n := expr.(type) {
	case *ast.KetLiteral:
		return ev.evalKet(n)

	case *ast.ScalarLiteral:
		return &Value{Tensor: tensor.Scalar(n.Value), Kind: KindScalar}, nil

	case *ast.GroupExpr:
		return ev.eval(n.Inner)

	case *ast.NegExpr:
		v, err := ev.eval(n.Operand)
		if err != nil {
			return nil, err
		}
		return &Value{Tensor: v.Tensor.Neg(), Kind: v.Kind}, nil

	case *ast.ConjTransposeExpr:
		v, err := ev.eval(n.Operand)
		if err != nil {
			return nil, err
		}
		return &Value{Tensor: v.Tensor.Dagger(), Kind: DaggerKind(v.Kind)}, nil

	case *ast.NormExpr:
		v, err := ev.eval(n.Inner)
		if err != nil {
			return nil, err
		}
		if !HasNorm(v.Kind) {
			s := v.Shape()
			return nil, &EvalError{
				Kind:    DimensionMismatch,
				Message: fmt.Sprintf("norm of a %s %s is not defined", v.Kind, s),
				Span:    n.Span,
				Left:    &s,
			}
		}
		return &Value{Tensor: tensor.Scalar(complex(v.Tensor.Norm(), 0)), Kind: KindScalar}, nil

	case *ast.BinaryExpr:
		return ev.evalBinary(n)

	default:
		return nil, fmt.Errorf("evaluator: unknown node %T", expr)
	}
}

func (ev *evaluator) evalKet(n *ast.KetLiteral) (*Value, error) {
	width := len(n.Bits)
	if err := ev.opts.Budget.CheckQubits(width); err != nil {
		return nil, newError(BudgetExceeded, n.Span, "%v", err)
	}
	// |b1...bn> is |b1> x ... x |bn>.
	qubits := make([]tensor.Tensor, width)
	for i := 0; i < width; i++ {
		switch n.Bits[i] {
		case '0':
			qubits[i] = basis0
		case '1':
			qubits[i] = basis1
		default:
			return nil, newError(InvalidOperand, n.Span, "bad bit-string %q", n.Bits)
		}
	}
	t, err := tensor.Prod(qubits)
	if err != nil {
		return nil, newError(InvalidOperand, n.Span, "empty bit-string")
	}
	return &Value{Tensor: t, Kind: KindKet}, nil
}

func (ev *evaluator) evalBinary(n *ast.BinaryExpr) (*Value, error) {
	l, err := ev.eval(n.Left)
	if err != nil {
		return nil, err
	}
	r, err := ev.eval(n.Right)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case ast.OpAdd, ast.OpSub:
		return sum(n, l, r)
	case ast.OpKron:
		shape, err := tensor.KronShape(l.Shape(), r.Shape())
		if err == nil {
			err = ev.opts.Budget.CheckShape(shape)
		}
		if err != nil {
			return nil, newError(BudgetExceeded, n.Span, "%v", err)
		}
		return &Value{Tensor: l.Tensor.Kron(r.Tensor), Kind: KronKind(l.Kind, r.Kind)}, nil
	case ast.OpDiv:
		return divide(n, l, r)
	case ast.OpJuxtapose:
		return ev.juxtapose(n, l, r)
	default:
		return nil, fmt.Errorf("evaluator: unknown operator %q", n.Op)
	}
}

func sum(n *ast.BinaryExpr, l, r *Value) (*Value, error) {
	verb, apply := "add", l.Tensor.Add
	if n.Op == ast.OpSub {
		verb, apply = "subtract", l.Tensor.Sub
	}
	if l.Shape() != r.Shape() {
		return nil, shapeError(ShapeMismatch, n.Span, l.Shape(), r.Shape(),
			"cannot %s %s %s and %s %s", verb, l.Kind, l.Shape(), r.Kind, r.Shape())
	}
	t, err := apply(r.Tensor)
	if err != nil {
		return nil, shapeError(ShapeMismatch, n.Span, l.Shape(), r.Shape(), "%v", err)
	}
	return &Value{Tensor: t, Kind: SumKind(l.Kind, r.Kind)}, nil
}

func divide(n *ast.BinaryExpr, l, r *Value) (*Value, error) {
	c, ok := r.Tensor.Item()
	if r.Kind != KindScalar || !ok {
		return nil, shapeError(InvalidOperand, n.Span, l.Shape(), r.Shape(),
			"cannot divide by a %s %s", r.Kind, r.Shape())
	}
	t, err := l.Tensor.DivScalar(c)
	if errors.Is(err, tensor.ErrDivisionByZero) {
		return nil, newError(DivisionByZero, n.Span, "divisor evaluates to zero")
	}
	if err != nil {
		return nil, err
	}
	return &Value{Tensor: t, Kind: l.Kind}, nil
}

func (ev *evaluator) juxtapose(n *ast.BinaryExpr, l, r *Value) (*Value, error) {
	op, kind := ResolveJuxtaposition(l.Kind, r.Kind)
	switch op {
	case JuxtScaleLeft:
		c, _ := l.Tensor.Item()
		return &Value{Tensor: r.Tensor.Scale(c), Kind: kind}, nil

	case JuxtScaleRight:
		c, _ := r.Tensor.Item()
		return &Value{Tensor: l.Tensor.Scale(c), Kind: kind}, nil

	case JuxtInner:
		d, err := l.Tensor.Dot(r.Tensor)
		if err != nil {
			return nil, shapeError(ShapeMismatch, n.Span, l.Shape(), r.Shape(),
				"inner product of bra %s and ket %s", l.Shape(), r.Shape())
		}
		return &Value{Tensor: tensor.Scalar(d), Kind: kind}, nil

	case JuxtOuter:
		shape := tensor.Shape{Rows: l.Shape().Rows, Cols: r.Shape().Cols}
		if err := ev.opts.Budget.CheckShape(shape); err != nil {
			return nil, newError(BudgetExceeded, n.Span, "%v", err)
		}
		t, err := l.Tensor.MatMul(r.Tensor)
		if err != nil {
			return nil, shapeError(ShapeMismatch, n.Span, l.Shape(), r.Shape(), "%v", err)
		}
		return &Value{Tensor: t, Kind: kind}, nil
	}

	msg := fmt.Sprintf("cannot juxtapose %s %s with %s %s", l.Kind, l.Shape(), r.Kind, r.Shape())
	if l.Kind == KindKet && r.Kind == KindKet {
		msg += "; use 'x' for the tensor product"
	}
	return nil, shapeError(InvalidOperand, n.Span, l.Shape(), r.Shape(), "%s", msg)
}
