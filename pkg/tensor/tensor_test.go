package tensor_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomasrohde/dirac/pkg/tensor"
)

func col(vals ...complex128) tensor.Tensor {
	return tensor.MustNew(vals, tensor.Shape{Rows: len(vals), Cols: 1})
}

func TestNewValidatesShape(t *testing.T) {
	_, err := tensor.New([]complex128{1, 2, 3}, tensor.Shape{Rows: 2, Cols: 1})
	assert.Error(t, err)

	_, err = tensor.New(nil, tensor.Shape{})
	assert.Error(t, err)

	tt, err := tensor.New([]complex128{1, 2}, tensor.Shape{Rows: 1, Cols: 2})
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{Rows: 1, Cols: 2}, tt.Shape())
}

func TestNewCopiesData(t *testing.T) {
	data := []complex128{1, 2}
	tt := tensor.MustNew(data, tensor.Shape{Rows: 2, Cols: 1})
	data[0] = 99
	assert.Equal(t, complex128(1), tt.At(0, 0))

	out := tt.Data()
	out[1] = 42
	assert.Equal(t, complex128(2), tt.At(1, 0))
}

func TestBasis(t *testing.T) {
	b := tensor.Basis(4, 2)
	assert.Equal(t, []complex128{0, 0, 1, 0}, b.Data())
	assert.Equal(t, tensor.Shape{Rows: 4, Cols: 1}, b.Shape())
}

func TestAddSub(t *testing.T) {
	a := col(1, 2i)
	b := col(3, 1)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, []complex128{4, 1 + 2i}, sum.Data())

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, []complex128{-2, -1 + 2i}, diff.Data())

	_, err = a.Add(col(1, 2, 3, 4))
	var se *tensor.ShapeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, tensor.Shape{Rows: 2, Cols: 1}, se.Left)
	assert.Equal(t, tensor.Shape{Rows: 4, Cols: 1}, se.Right)
}

func TestScaleAndDiv(t *testing.T) {
	a := col(1, 1i)
	assert.Equal(t, []complex128{3, 3i}, a.Scale(3).Data())

	d, err := a.DivScalar(2)
	require.NoError(t, err)
	assert.Equal(t, []complex128{0.5, 0.5i}, d.Data())

	_, err = a.DivScalar(0)
	assert.ErrorIs(t, err, tensor.ErrDivisionByZero)
}

func TestDaggerVector(t *testing.T) {
	k := col(1+1i, 2)
	d := k.Dagger()
	assert.Equal(t, tensor.Shape{Rows: 1, Cols: 2}, d.Shape())
	assert.Equal(t, []complex128{1 - 1i, 2}, d.Data())
}

func TestDaggerMatrix(t *testing.T) {
	m := tensor.MustNew([]complex128{1, 2i, 3, 4, 5, 6}, tensor.Shape{Rows: 2, Cols: 3})
	d := m.Dagger()
	assert.Equal(t, tensor.Shape{Rows: 3, Cols: 2}, d.Shape())
	assert.Equal(t, []complex128{1, 4, -2i, 5, 3, 6}, d.Data())
}

func TestDaggerInvolutive(t *testing.T) {
	inputs := []tensor.Tensor{
		col(1, 2i, -3),
		tensor.Scalar(2 - 1i),
		tensor.MustNew([]complex128{1, 2i, 3, 4 - 1i, 5, 6}, tensor.Shape{Rows: 3, Cols: 2}),
	}
	for _, in := range inputs {
		assert.True(t, in.Dagger().Dagger().Equal(in), "dagger twice should restore %v", in)
	}
}

func TestKron(t *testing.T) {
	k0 := tensor.Basis(2, 0)
	k1 := tensor.Basis(2, 1)

	assert.True(t, k0.Kron(k1).Equal(tensor.Basis(4, 1)))
	assert.True(t, k1.Kron(k0).Equal(tensor.Basis(4, 2)))

	a := tensor.MustNew([]complex128{1, 2, 3, 4}, tensor.Shape{Rows: 2, Cols: 2})
	b := tensor.MustNew([]complex128{0, 5, 6, 7}, tensor.Shape{Rows: 2, Cols: 2})
	want := []complex128{
		0, 5, 0, 10,
		6, 7, 12, 14,
		0, 15, 0, 20,
		18, 21, 24, 28,
	}
	assert.Equal(t, want, a.Kron(b).Data())
}

func TestKronShape(t *testing.T) {
	s, err := tensor.KronShape(tensor.Shape{Rows: 4, Cols: 1}, tensor.Shape{Rows: 2, Cols: 2})
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{Rows: 8, Cols: 2}, s)

	wide := tensor.Shape{Rows: 1 << 40, Cols: 1}
	_, err = tensor.KronShape(wide, wide)
	assert.ErrorIs(t, err, tensor.ErrTooLarge)

	_, err = tensor.KronShape(tensor.Shape{Rows: 1 << 32, Cols: 1}, tensor.Shape{Rows: 1, Cols: 1 << 32})
	assert.ErrorIs(t, err, tensor.ErrTooLarge, "element count overflows")
}

func TestKronAssociative(t *testing.T) {
	a, b, c := tensor.Basis(2, 1), tensor.Basis(2, 0), tensor.Basis(4, 3)
	left := a.Kron(b).Kron(c)
	right := a.Kron(b.Kron(c))
	assert.True(t, left.Equal(right))
}

func TestProd(t *testing.T) {
	p, err := tensor.Prod([]tensor.Tensor{tensor.Basis(2, 1), tensor.Basis(2, 0), tensor.Basis(2, 1)})
	require.NoError(t, err)
	assert.True(t, p.Equal(tensor.Basis(8, 5)))

	_, err = tensor.Prod(nil)
	assert.Error(t, err)
}

func TestMatMul(t *testing.T) {
	k1 := tensor.Basis(2, 1)
	outer, err := k1.MatMul(tensor.Basis(2, 0).Dagger())
	require.NoError(t, err)
	assert.Equal(t, []complex128{0, 0, 1, 0}, outer.Data())

	_, err = k1.MatMul(k1)
	assert.Error(t, err)
}

func TestDotAndNorm(t *testing.T) {
	v := col(3, 4i)
	d, err := v.Dagger().Dot(v)
	require.NoError(t, err)
	assert.Equal(t, complex128(25), d)
	assert.Equal(t, 25.0, v.NormSqr())
	assert.InDelta(t, 5.0, v.Norm(), 1e-12)

	_, err = v.Dot(col(1))
	assert.Error(t, err)
}

func TestUnit(t *testing.T) {
	u, err := col(1, 1).Unit()
	require.NoError(t, err)
	h := complex(1/math.Sqrt(2), 0)
	assert.Equal(t, []complex128{h, h}, u.Data())

	_, err = col(0, 0).Unit()
	assert.ErrorIs(t, err, tensor.ErrDivisionByZero)
}

func TestItem(t *testing.T) {
	c, ok := tensor.Scalar(2 + 3i).Item()
	assert.True(t, ok)
	assert.Equal(t, 2+3i, c)

	_, ok = tensor.Basis(2, 0).Item()
	assert.False(t, ok)
}

func TestFormatComplex(t *testing.T) {
	h := 1 / math.Sqrt(2)
	tests := []struct {
		in   complex128
		want string
	}{
		{complex(h, 0), "0.7071067811865475+0i"},
		{complex(-h, 0), "-0.7071067811865475+0i"},
		{0, "0+0i"},
		{complex(math.Copysign(0, -1), math.Copysign(0, -1)), "0+0i"},
		{3 - 2i, "3-2i"},
		{-1.5 + 0.25i, "-1.5+0.25i"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tensor.FormatComplex(tt.in))
	}
}

func TestString(t *testing.T) {
	m := tensor.MustNew([]complex128{0, 0, 1, 0}, tensor.Shape{Rows: 2, Cols: 2})
	assert.Equal(t, "0+0i, 0+0i\n1+0i, 0+0i", m.String())
}

func TestEqualApprox(t *testing.T) {
	a := col(1, 2)
	b := col(1+1e-12, 2)
	assert.True(t, a.EqualApprox(b, 1e-9))
	assert.False(t, a.Equal(b))
	assert.False(t, a.EqualApprox(col(1, 2, 3), 1e-9))
}
