// Package formatter renders Dirac expression trees back to source text and
// to an S-expression dump.
package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/thomasrohde/dirac/pkg/ast"
)

// Precedence table for binary operators (higher = tighter binding)
var precedence = map[ast.BinaryOp]int{
	ast.OpAdd: 1, ast.OpSub: 1,
	ast.OpJuxtapose: 2,
	ast.OpKron:      3,
	ast.OpDiv:       4,
}

const (
	precUnary   = 5
	precPostfix = 6
)

func prec(e ast.Expr) int {
	switch n := e.(type) {
	case *ast.BinaryExpr:
		return precedence[n.Op]
	case *ast.NegExpr:
		return precUnary
	case *ast.ConjTransposeExpr:
		if _, ok := ast.IsBraLiteral(n); ok {
			return precPostfix + 1
		}
		return precPostfix
	}
	return precPostfix + 1
}

type printer struct {
	// norm bars open inside the innermost parentheses
	normDepth int
}

// Format renders expr in canonical form. For a tree produced by the parser
// the output parses back to the same tree; synthesized trees may gain
// groups where operator precedence requires them.
func Format(expr ast.Expr) string {
	p := &printer{}
	return p.format(expr)
}

func (p *printer) format(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.KetLiteral:
		return "|" + n.Bits + ">"

	case *ast.ScalarLiteral:
		return formatScalar(n)

	case *ast.GroupExpr:
		return p.paren(n.Inner)

	case *ast.NormExpr:
		p.normDepth++
		inner := p.format(n.Inner)
		p.normDepth--
		return "|" + inner + "|"

	case *ast.NegExpr:
		return "-" + p.operand(n.Operand, precUnary)

	case *ast.ConjTransposeExpr:
		if k, ok := ast.IsBraLiteral(n); ok {
			return "<" + k.Bits + "|"
		}
		return p.operand(n.Operand, precPostfix) + "'"

	case *ast.BinaryExpr:
		return p.formatBinary(n)
	}
	return fmt.Sprintf("<%T>", e)
}

func (p *printer) formatBinary(n *ast.BinaryExpr) string {
	level := precedence[n.Op]
	left := p.operand(n.Left, level)
	// Operators are left associative, so an equal-precedence right child
	// needs parentheses.
	right := p.operand(n.Right, level+1)

	switch n.Op {
	case ast.OpAdd, ast.OpSub, ast.OpDiv:
		return left + " " + string(n.Op) + " " + right
	case ast.OpKron:
		return left + " x " + right
	}

	// Juxtaposition.
	if strings.HasSuffix(left, "|") && endsWithBra(n.Left) {
		if k, ok := n.Right.(*ast.KetLiteral); ok {
			return left + k.Bits + ">"
		}
	}
	// Written implicitly, a leading '-' would read as subtraction and a bar
	// inside a norm would close it.
	if strings.HasPrefix(right, "-") || p.normDepth > 0 && startsWithBar(n.Right) {
		return left + " * " + right
	}
	return joinAdjacent(left, right)
}

// operand renders child, wrapping it in parentheses when it binds looser
// than min.
func (p *printer) operand(child ast.Expr, min int) string {
	if prec(child) < min {
		return p.paren(child)
	}
	return p.format(child)
}

func (p *printer) paren(e ast.Expr) string {
	saved := p.normDepth
	p.normDepth = 0
	s := p.format(e)
	p.normDepth = saved
	return "(" + s + ")"
}

// startsWithBar reports whether e renders with a leading '|' that is not
// the opening of a ket.
func startsWithBar(e ast.Expr) bool {
	for {
		switch n := e.(type) {
		case *ast.NormExpr:
			return true
		case *ast.BinaryExpr:
			e = n.Left
		case *ast.ConjTransposeExpr:
			if _, ok := ast.IsBraLiteral(n); ok {
				return false
			}
			e = n.Operand
		default:
			return false
		}
	}
}

// endsWithBra reports whether e renders with a trailing bra literal.
func endsWithBra(e ast.Expr) bool {
	for {
		switch n := e.(type) {
		case *ast.ConjTransposeExpr:
			_, ok := ast.IsBraLiteral(n)
			return ok
		case *ast.BinaryExpr:
			e = n.Right
		default:
			return false
		}
	}
}

// joinAdjacent writes coefficients and ket-bra pairs tight, as in 2|0> and
// |0><1|, and separates everything else with a space.
func joinAdjacent(left, right string) string {
	l, r := left[len(left)-1], right[0]
	if isNumberByte(l) && (r == '|' || r == '<' || r == '(') {
		return left + right
	}
	if l == '>' && r == '<' {
		return left + right
	}
	return left + " " + right
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isNumberByte(b byte) bool {
	return isDigit(b) || b == '.'
}

func formatScalar(n *ast.ScalarLiteral) string {
	if n.Text != "" {
		return n.Text
	}
	return strconv.FormatFloat(real(n.Value), 'g', -1, 64)
}

// SExpr renders expr as an S-expression, one node per list.
func SExpr(expr ast.Expr) string {
	var b strings.Builder
	writeSExpr(&b, expr)
	return b.String()
}

func writeSExpr(b *strings.Builder, e ast.Expr) {
	switch n := e.(type) {
	case *ast.KetLiteral:
		fmt.Fprintf(b, "(ket %q)", n.Bits)
	case *ast.ScalarLiteral:
		fmt.Fprintf(b, "(num %s)", formatScalar(n))
	case *ast.GroupExpr:
		b.WriteString("(group ")
		writeSExpr(b, n.Inner)
		b.WriteByte(')')
	case *ast.NormExpr:
		b.WriteString("(norm ")
		writeSExpr(b, n.Inner)
		b.WriteByte(')')
	case *ast.NegExpr:
		b.WriteString("(neg ")
		writeSExpr(b, n.Operand)
		b.WriteByte(')')
	case *ast.ConjTransposeExpr:
		if k, ok := ast.IsBraLiteral(n); ok {
			fmt.Fprintf(b, "(bra %q)", k.Bits)
			return
		}
		b.WriteString("(dagger ")
		writeSExpr(b, n.Operand)
		b.WriteByte(')')
	case *ast.BinaryExpr:
		fmt.Fprintf(b, "(%s ", opNames[n.Op])
		writeSExpr(b, n.Left)
		b.WriteByte(' ')
		writeSExpr(b, n.Right)
		b.WriteByte(')')
	default:
		fmt.Fprintf(b, "(unknown %T)", e)
	}
}

var opNames = map[ast.BinaryOp]string{
	ast.OpAdd:       "add",
	ast.OpSub:       "sub",
	ast.OpKron:      "kron",
	ast.OpDiv:       "div",
	ast.OpJuxtapose: "juxt",
}

// Tree converts expr to nested maps suitable for JSON encoding. Each node
// has a "type" and a "span" of [offset, endOffset].
func Tree(expr ast.Expr) map[string]any {
	sp := expr.NodeSpan()
	m := map[string]any{"span": []int{sp.Offset, sp.EndOffset}}
	switch n := expr.(type) {
	case *ast.KetLiteral:
		m["type"], m["bits"] = "ket", n.Bits
	case *ast.ScalarLiteral:
		m["type"], m["value"] = "number", real(n.Value)
	case *ast.GroupExpr:
		m["type"], m["inner"] = "group", Tree(n.Inner)
	case *ast.NormExpr:
		m["type"], m["inner"] = "norm", Tree(n.Inner)
	case *ast.NegExpr:
		m["type"], m["operand"] = "neg", Tree(n.Operand)
	case *ast.ConjTransposeExpr:
		if k, ok := ast.IsBraLiteral(n); ok {
			m["type"], m["bits"] = "bra", k.Bits
			break
		}
		m["type"], m["operand"] = "dagger", Tree(n.Operand)
	case *ast.BinaryExpr:
		m["type"] = opNames[n.Op]
		m["left"], m["right"] = Tree(n.Left), Tree(n.Right)
	default:
		m["type"] = expr.Kind()
	}
	return m
}
