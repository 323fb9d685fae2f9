package evaluator

import (
	"fmt"
	"math"

	"github.com/thomasrohde/dirac/pkg/tensor"
)

// maxIndexableQubits is the widest register whose basis index fits an int.
const maxIndexableQubits = 62

// Budget holds the resource limits for an evaluation. Zero fields mean
// unlimited.
type Budget struct {
	MaxQubits   int `toml:"max_qubits"`
	MaxElements int `toml:"max_elements"`
}

// DefaultBudget allows 20-qubit registers and tensors of up to 2^22
// elements.
func DefaultBudget() Budget {
	return Budget{MaxQubits: 20, MaxElements: 1 << 22}
}

// Unlimited reports whether b sets no limit at all.
func (b Budget) Unlimited() bool {
	return b.MaxQubits <= 0 && b.MaxElements <= 0
}

// CheckQubits fails when a register of n qubits is not allowed.
func (b Budget) CheckQubits(n int) error {
	if n > maxIndexableQubits {
		return fmt.Errorf("register of %d qubits exceeds the hard limit of %d", n, maxIndexableQubits)
	}
	if b.MaxQubits > 0 && n > b.MaxQubits {
		return fmt.Errorf("register of %d qubits exceeds budget of %d", n, b.MaxQubits)
	}
	return b.CheckShape(tensor.Shape{Rows: 1 << n, Cols: 1})
}

// CheckShape fails when a tensor of the given shape is not allowed.
func (b Budget) CheckShape(s tensor.Shape) error {
	if s.Rows > 0 && s.Cols > math.MaxInt/s.Rows {
		return fmt.Errorf("tensor of shape %s is too large", s)
	}
	if b.MaxElements > 0 && s.Len() > b.MaxElements {
		return fmt.Errorf("tensor of shape %s has %d elements, budget is %d", s, s.Len(), b.MaxElements)
	}
	return nil
}
