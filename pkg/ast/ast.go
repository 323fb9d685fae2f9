// Package ast defines the node types of a parsed Dirac notation expression.
package ast

// Span represents a source location range. Offsets are byte offsets into
// the source; lines and columns are 1-based.
type Span struct {
	File      string `json:"file,omitempty"`
	Offset    int    `json:"offset"`
	EndOffset int    `json:"endOffset"`
	StartLine int    `json:"startLine"`
	StartCol  int    `json:"startCol"`
	EndLine   int    `json:"endLine"`
	EndCol    int    `json:"endCol"`
}

// Join returns the span covering both a and b, which must be in source order.
func Join(a, b Span) Span {
	return Span{
		File:      a.File,
		Offset:    a.Offset,
		EndOffset: b.EndOffset,
		StartLine: a.StartLine,
		StartCol:  a.StartCol,
		EndLine:   b.EndLine,
		EndCol:    b.EndCol,
	}
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() string
	NodeSpan() Span
}

// BinaryOp represents a binary operator.
type BinaryOp string

const (
	OpAdd       BinaryOp = "+"
	OpSub       BinaryOp = "-"
	OpKron      BinaryOp = "x"
	OpDiv       BinaryOp = "/"
	OpJuxtapose BinaryOp = "juxtapose"
)

// --- Expr is the interface for all expression nodes ---

type Expr interface {
	Node
	exprNode() // sealed marker
}

// --- Literals ---

// KetLiteral is a computational basis ket |bits>.
type KetLiteral struct {
	Span Span
	Bits string
}

func (n *KetLiteral) Kind() string   { return "KetLiteral" }
func (n *KetLiteral) NodeSpan() Span { return n.Span }
func (n *KetLiteral) exprNode()      {}

// ScalarLiteral is a real numeric coefficient. Text keeps the source
// spelling for the formatter.
type ScalarLiteral struct {
	Span  Span
	Value complex128
	Text  string
}

func (n *ScalarLiteral) Kind() string   { return "ScalarLiteral" }
func (n *ScalarLiteral) NodeSpan() Span { return n.Span }
func (n *ScalarLiteral) exprNode()      {}

// --- Unary forms ---

// GroupExpr is a parenthesized sub-expression. It evaluates to its inner
// expression and only exists to keep source locations.
type GroupExpr struct {
	Span  Span
	Inner Expr
}

func (n *GroupExpr) Kind() string   { return "GroupExpr" }
func (n *GroupExpr) NodeSpan() Span { return n.Span }
func (n *GroupExpr) exprNode()      {}

// NormExpr is | expr |.
type NormExpr struct {
	Span  Span
	Inner Expr
}

func (n *NormExpr) Kind() string   { return "NormExpr" }
func (n *NormExpr) NodeSpan() Span { return n.Span }
func (n *NormExpr) exprNode()      {}

// ConjTransposeExpr is postfix ' and also the representation of a bra
// literal <bits|, which is the conjugate transpose of |bits>.
type ConjTransposeExpr struct {
	Span    Span
	Operand Expr
}

func (n *ConjTransposeExpr) Kind() string   { return "ConjTransposeExpr" }
func (n *ConjTransposeExpr) NodeSpan() Span { return n.Span }
func (n *ConjTransposeExpr) exprNode()      {}

// NegExpr is unary minus.
type NegExpr struct {
	Span    Span
	Operand Expr
}

func (n *NegExpr) Kind() string   { return "NegExpr" }
func (n *NegExpr) NodeSpan() Span { return n.Span }
func (n *NegExpr) exprNode()      {}

// --- Binary ---

// BinaryExpr combines two operands. OpJuxtapose covers every adjacency
// (scalar·ket, bra·ket, ket·bra); its algebraic meaning is chosen at
// evaluation time from the operand kinds.
type BinaryExpr struct {
	Span  Span
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (n *BinaryExpr) Kind() string   { return "BinaryExpr" }
func (n *BinaryExpr) NodeSpan() Span { return n.Span }
func (n *BinaryExpr) exprNode()      {}

// IsBraLiteral reports whether e is the parser's encoding of a literal
// bra <bits|, as opposed to a postfix conjugate transpose of a ket.
func IsBraLiteral(e Expr) (*KetLiteral, bool) {
	ct, ok := e.(*ConjTransposeExpr)
	if !ok {
		return nil, false
	}
	ket, ok := ct.Operand.(*KetLiteral)
	if !ok {
		return nil, false
	}
	// A postfix ' starts at the ket; a literal bra starts one byte before
	// the bits at its '<'.
	if ct.Span.Offset < ket.Span.Offset {
		return ket, true
	}
	return nil, false
}
