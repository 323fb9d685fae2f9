// Package evaluator walks a Dirac expression tree bottom-up and computes
// its tensor value.
package evaluator

import (
	"fmt"

	"github.com/thomasrohde/dirac/pkg/tensor"
)

// Kind tags the algebraic role of a tensor. Every kind shares the same
// dense storage; the tag selects the operation juxtaposition performs.
type Kind int

const (
	KindKet Kind = iota
	KindBra
	KindScalar
	KindMatrix
)

var kindNames = [...]string{
	KindKet:    "ket",
	KindBra:    "bra",
	KindScalar: "scalar",
	KindMatrix: "matrix",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown kind %q", s)
}

// Value is an evaluated expression: a tensor and its kind.
type Value struct {
	Tensor tensor.Tensor
	Kind   Kind
}

// Shape returns the shape of the underlying tensor.
func (v *Value) Shape() tensor.Shape { return v.Tensor.Shape() }

func (v *Value) String() string {
	return fmt.Sprintf("%s %s\n%s", v.Kind, v.Shape(), v.Tensor)
}
