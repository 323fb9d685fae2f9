// Package tensor implements the small dense complex tensor kernel used by
// the evaluator: column vectors (kets), row vectors (bras) and matrices.
//
// A Tensor is a value. Every operation returns a new Tensor and never
// mutates its receiver or arguments.
package tensor

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/cmplxs"
)

// ErrDivisionByZero is returned when dividing by an exactly zero scalar.
var ErrDivisionByZero = errors.New("division by zero")

// ErrTooLarge is returned when a shape's dimensions or element count do not
// fit an int.
var ErrTooLarge = errors.New("tensor too large")

// Shape is the (rows, cols) extent of a tensor.
type Shape struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// Len returns the number of elements a tensor of this shape holds.
func (s Shape) Len() int { return s.Rows * s.Cols }

// IsScalar reports whether s is 1x1.
func (s Shape) IsScalar() bool { return s.Rows == 1 && s.Cols == 1 }

// T returns the transposed shape.
func (s Shape) T() Shape { return Shape{Rows: s.Cols, Cols: s.Rows} }

func (s Shape) String() string { return fmt.Sprintf("(%d,%d)", s.Rows, s.Cols) }

// ShapeError reports operands whose shapes are incompatible for Op.
type ShapeError struct {
	Op    string
	Left  Shape
	Right Shape
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: incompatible shapes %s and %s", e.Op, e.Left, e.Right)
}

// Tensor is a dense row-major complex matrix.
type Tensor struct {
	data  []complex128
	shape Shape
}

// New builds a tensor from row-major data. The data is copied.
func New(data []complex128, shape Shape) (Tensor, error) {
	if shape.Rows < 1 || shape.Cols < 1 {
		return Tensor{}, fmt.Errorf("tensor: invalid shape %s", shape)
	}
	if len(data) != shape.Len() {
		return Tensor{}, fmt.Errorf("tensor: %d elements do not fill shape %s", len(data), shape)
	}
	cp := make([]complex128, len(data))
	copy(cp, data)
	return Tensor{data: cp, shape: shape}, nil
}

// MustNew is like New but panics on an invalid shape.
func MustNew(data []complex128, shape Shape) Tensor {
	t, err := New(data, shape)
	if err != nil {
		panic(err)
	}
	return t
}

// Zeros returns a zero tensor of the given shape.
func Zeros(shape Shape) Tensor {
	return Tensor{data: make([]complex128, shape.Len()), shape: shape}
}

// Scalar returns the 1x1 tensor holding c.
func Scalar(c complex128) Tensor {
	return Tensor{data: []complex128{c}, shape: Shape{Rows: 1, Cols: 1}}
}

// Basis returns the dim x 1 column vector with a single 1 at index.
func Basis(dim, index int) Tensor {
	t := Zeros(Shape{Rows: dim, Cols: 1})
	t.data[index] = 1
	return t
}

// Shape returns the tensor's shape.
func (t Tensor) Shape() Shape { return t.shape }

// Len returns the number of elements.
func (t Tensor) Len() int { return len(t.data) }

// Data returns a row-major copy of the elements.
func (t Tensor) Data() []complex128 {
	cp := make([]complex128, len(t.data))
	copy(cp, t.data)
	return cp
}

// At returns the element at row i, column j.
func (t Tensor) At(i, j int) complex128 {
	if i < 0 || i >= t.shape.Rows || j < 0 || j >= t.shape.Cols {
		panic(fmt.Sprintf("tensor: index (%d,%d) out of range for shape %s", i, j, t.shape))
	}
	return t.data[i*t.shape.Cols+j]
}

// Item returns the single element of a 1x1 tensor.
func (t Tensor) Item() (complex128, bool) {
	if !t.shape.IsScalar() {
		return 0, false
	}
	return t.data[0], true
}

// Add returns the elementwise sum t + u.
func (t Tensor) Add(u Tensor) (Tensor, error) {
	if t.shape != u.shape {
		return Tensor{}, &ShapeError{Op: "add", Left: t.shape, Right: u.shape}
	}
	return Tensor{data: cmplxs.AddTo(make([]complex128, len(t.data)), t.data, u.data), shape: t.shape}, nil
}

// Sub returns the elementwise difference t - u.
func (t Tensor) Sub(u Tensor) (Tensor, error) {
	if t.shape != u.shape {
		return Tensor{}, &ShapeError{Op: "sub", Left: t.shape, Right: u.shape}
	}
	return Tensor{data: cmplxs.SubTo(make([]complex128, len(t.data)), t.data, u.data), shape: t.shape}, nil
}

// Scale multiplies every element by c.
func (t Tensor) Scale(c complex128) Tensor {
	return Tensor{data: cmplxs.ScaleTo(make([]complex128, len(t.data)), c, t.data), shape: t.shape}
}

// Neg negates every element.
func (t Tensor) Neg() Tensor {
	out := make([]complex128, len(t.data))
	for i, v := range t.data {
		out[i] = -v
	}
	return Tensor{data: out, shape: t.shape}
}

// DivScalar divides every element by c. It fails with ErrDivisionByZero
// when c is exactly zero.
func (t Tensor) DivScalar(c complex128) (Tensor, error) {
	if c == 0 {
		return Tensor{}, ErrDivisionByZero
	}
	out := make([]complex128, len(t.data))
	for i, v := range t.data {
		out[i] = v / c
	}
	return Tensor{data: out, shape: t.shape}, nil
}

// Conj conjugates every element without transposing.
func (t Tensor) Conj() Tensor {
	out := make([]complex128, len(t.data))
	for i, v := range t.data {
		out[i] = cmplx.Conj(v)
	}
	return Tensor{data: out, shape: t.shape}
}

// Dagger returns the conjugate transpose.
func (t Tensor) Dagger() Tensor {
	m, n := t.shape.Rows, t.shape.Cols
	out := make([]complex128, len(t.data))
	if m == 1 || n == 1 {
		// Vectors keep their element order.
		for i, v := range t.data {
			out[i] = cmplx.Conj(v)
		}
		return Tensor{data: out, shape: t.shape.T()}
	}
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			out[j*m+i] = cmplx.Conj(t.data[i*n+j])
		}
	}
	return Tensor{data: out, shape: t.shape.T()}
}

// KronShape returns the shape of the Kronecker product of a and b, or
// ErrTooLarge when it would overflow.
func KronShape(a, b Shape) (Shape, error) {
	rows, rok := mulInt(a.Rows, b.Rows)
	cols, cok := mulInt(a.Cols, b.Cols)
	if rok && cok {
		if _, ok := mulInt(rows, cols); ok {
			return Shape{Rows: rows, Cols: cols}, nil
		}
	}
	return Shape{}, fmt.Errorf("%w: kronecker product of %s and %s", ErrTooLarge, a, b)
}

func mulInt(a, b int) (int, bool) {
	if a != 0 && b > math.MaxInt/a {
		return 0, false
	}
	return a * b, true
}

// Kron returns the Kronecker product t ⊗ u. Entry (i1*ru+i2, j1*cu+j2) of the
// result is t[i1,j1]*u[i2,j2].
func (t Tensor) Kron(u Tensor) Tensor {
	shape, err := KronShape(t.shape, u.shape)
	if err != nil {
		// Both operands are in memory, so this needs more elements than fit an int.
		panic(err)
	}
	out := make([]complex128, shape.Len())
	ru, cu := u.shape.Rows, u.shape.Cols
	for i1 := 0; i1 < t.shape.Rows; i1++ {
		for j1 := 0; j1 < t.shape.Cols; j1++ {
			a := t.data[i1*t.shape.Cols+j1]
			if a == 0 {
				continue
			}
			for i2 := 0; i2 < ru; i2++ {
				row := (i1*ru + i2) * shape.Cols
				for j2 := 0; j2 < cu; j2++ {
					out[row+j1*cu+j2] = a * u.data[i2*cu+j2]
				}
			}
		}
	}
	return Tensor{data: out, shape: shape}
}

// Prod folds a non-empty slice of tensors with the Kronecker product.
func Prod(ts []Tensor) (Tensor, error) {
	if len(ts) == 0 {
		return Tensor{}, errors.New("tensor: kronecker product of no tensors")
	}
	acc := ts[0]
	for _, t := range ts[1:] {
		acc = acc.Kron(t)
	}
	return acc, nil
}

// MatMul returns the matrix product t · u.
func (t Tensor) MatMul(u Tensor) (Tensor, error) {
	if t.shape.Cols != u.shape.Rows {
		return Tensor{}, &ShapeError{Op: "matmul", Left: t.shape, Right: u.shape}
	}
	shape := Shape{Rows: t.shape.Rows, Cols: u.shape.Cols}
	out := make([]complex128, shape.Len())
	n := t.shape.Cols
	for i := 0; i < shape.Rows; i++ {
		for j := 0; j < shape.Cols; j++ {
			var sum complex128
			for k := 0; k < n; k++ {
				sum += t.data[i*n+k] * u.data[k*shape.Cols+j]
			}
			out[i*shape.Cols+j] = sum
		}
	}
	return Tensor{data: out, shape: shape}, nil
}

// Dot returns Σ t[i]*u[i] over the flattened elements without conjugating
// either side. For a bra t and a ket u this is the inner product <t|u>.
func (t Tensor) Dot(u Tensor) (complex128, error) {
	if len(t.data) != len(u.data) {
		return 0, &ShapeError{Op: "dot", Left: t.shape, Right: u.shape}
	}
	var sum complex128
	for i, v := range t.data {
		sum += v * u.data[i]
	}
	return sum, nil
}

// NormSqr returns Σ|t[i]|².
func (t Tensor) NormSqr() float64 {
	var sum float64
	for _, v := range t.data {
		sum += real(v)*real(v) + imag(v)*imag(v)
	}
	return sum
}

// Norm returns the Frobenius norm sqrt(Σ|t[i]|²).
func (t Tensor) Norm() float64 {
	return cmplxs.Norm(t.data, 2)
}

// Unit returns t scaled to unit norm.
func (t Tensor) Unit() (Tensor, error) {
	return t.DivScalar(complex(t.Norm(), 0))
}

// Equal reports exact element and shape equality.
func (t Tensor) Equal(u Tensor) bool {
	if t.shape != u.shape {
		return false
	}
	for i, v := range t.data {
		if v != u.data[i] {
			return false
		}
	}
	return true
}

// EqualApprox reports shape equality and elementwise equality within tol.
func (t Tensor) EqualApprox(u Tensor, tol float64) bool {
	return t.shape == u.shape && cmplxs.EqualApprox(t.data, u.data, tol)
}

// String renders one row per line with comma separated elements.
func (t Tensor) String() string {
	var b strings.Builder
	for i := 0; i < t.shape.Rows; i++ {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j := 0; j < t.shape.Cols; j++ {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(FormatComplex(t.data[i*t.shape.Cols+j]))
		}
	}
	return b.String()
}

// FormatComplex renders c as re±|im|i using the shortest float formatting,
// e.g. 0.7071067811865475+0i. Negative zero prints as zero.
func FormatComplex(c complex128) string {
	re, im := real(c), imag(c)
	if re == 0 {
		re = 0
	}
	sign := "+"
	if im < 0 {
		sign = "-"
	}
	return formatFloat(re) + sign + formatFloat(math.Abs(im)) + "i"
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
