package algebra

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Dense is a full operator coupling the modes of a [Vector] unknown. It
// only ever appears on the coefficient side of an equation; unknowns and
// kernel values keep their own shapes. Applying it costs O(n²), which is
// why [Normalize] never produces one from a scalar or diagonal input.
type Dense struct {
	M *mat.Dense
}

// NewDense returns a zero n×n operator.
func NewDense(n int) *Dense { return &Dense{M: mat.NewDense(n, n, nil)} }

// DenseOf wraps a square matrix without copying.
func DenseOf(m *mat.Dense) (*Dense, error) {
	r, c := m.Dims()
	if r != c {
		return nil, &ShapeError{Want: "square operator", Got: fmt.Sprintf("%dx%d", r, c)}
	}
	return &Dense{M: m}, nil
}

func (d *Dense) size() int {
	n, _ := d.M.Dims()
	return n
}

func (d *Dense) Clone() Value {
	c := NewDense(d.size())
	c.M.Copy(d.M)
	return c
}

func (d *Dense) ZeroLike() Value { return NewDense(d.size()) }

func (d *Dense) CopyFrom(src Value) { d.M.Copy(src.(*Dense).M) }

func (d *Dense) Scale(s float64) {
	raw := d.M.RawMatrix().Data
	for i := range raw {
		raw[i] *= s
	}
}

// Axpy folds another operator into d: a full matrix adds elementwise, a
// vector adds to the diagonal, a scalar adds to the diagonal uniformly.
func (d *Dense) Axpy(s float64, x Value) {
	switch xv := x.(type) {
	case *Dense:
		dst := d.M.RawMatrix().Data
		src := xv.M.RawMatrix().Data
		for i := range dst {
			dst[i] += s * src[i]
		}
	case Vector:
		for i := range xv {
			d.M.Set(i, i, d.M.At(i, i)+s*xv[i])
		}
	case *Scalar:
		n := d.size()
		for i := 0; i < n; i++ {
			d.M.Set(i, i, d.M.At(i, i)+s*xv.V)
		}
	default:
		panic(fmt.Sprintf("algebra: cannot add %s to dense operator", x.ShapeString()))
	}
}

func (d *Dense) MulAdd(a, b Value, s float64) {
	ad, aok := a.(*Dense)
	bd, bok := b.(*Dense)
	if !aok || !bok {
		panic(fmt.Sprintf("algebra: cannot multiply %s by %s into dense operator",
			a.ShapeString(), b.ShapeString()))
	}
	var tmp mat.Dense
	tmp.Mul(ad.M, bd.M)
	dst := d.M.RawMatrix().Data
	src := tmp.RawMatrix().Data
	for i := range dst {
		dst[i] += s * src[i]
	}
}

func (d *Dense) SolveInto(dst, rhs Value) error {
	dv, rv := dst.(Vector), rhs.(Vector)
	var x mat.VecDense
	if err := x.SolveVec(d.M, mat.NewVecDense(len(rv), []float64(rv))); err != nil {
		return ErrSingular
	}
	for i := range dv {
		dv[i] = x.AtVec(i)
	}
	return nil
}

func (d *Dense) SupDiff(other Value) float64 {
	od := other.(*Dense)
	x := d.M.RawMatrix().Data
	y := od.M.RawMatrix().Data
	max := 0.0
	for i := range x {
		if diff := math.Abs(x[i] - y[i]); diff > max {
			max = diff
		}
	}
	return max
}

func (d *Dense) SameShape(other Value) bool {
	od, ok := other.(*Dense)
	return ok && od.size() == d.size()
}

func (d *Dense) Flatten() []float64 {
	raw := d.M.RawMatrix().Data
	c := make([]float64, len(raw))
	copy(c, raw)
	return c
}

func (d *Dense) IsValid() bool {
	for _, x := range d.M.RawMatrix().Data {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func (d *Dense) ShapeString() string { return fmt.Sprintf("dense[%dx%d]", d.size(), d.size()) }
