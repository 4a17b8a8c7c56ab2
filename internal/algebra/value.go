package algebra

import (
	"fmt"
	"math"
)

// Value is one algebraic unknown: the correlator F, the kernel K, or a
// coefficient acting on either. The shape of a value is fixed when it is
// created and never changes.
//
// Shape compatibility is checked once, when an equation is built or a kernel
// first evaluates (see [Normalize]). The arithmetic methods assume validated
// operands and panic on mismatched shapes, following the gonum convention
// for dimension errors.
type Value interface {
	// Clone returns an independent copy.
	Clone() Value

	// ZeroLike returns a zero value of the same shape.
	ZeroLike() Value

	// CopyFrom overwrites the value with src.
	CopyFrom(src Value)

	// Scale multiplies the value by s in place.
	Scale(s float64)

	// Axpy adds s*x in place.
	Axpy(s float64, x Value)

	// MulAdd adds s*(a∘b) in place, where ∘ is the shape product:
	// plain multiplication for scalars, elementwise for vectors,
	// per-block matrix product for block vectors.
	MulAdd(a, b Value, s float64)

	// SolveInto computes dst = v⁻¹∘rhs, treating the value as an
	// operator. dst and rhs must not alias.
	SolveInto(dst, rhs Value) error

	// SupDiff returns the sup-norm of the elementwise difference.
	SupDiff(other Value) float64

	// SameShape reports whether other has the same shape.
	SameShape(other Value) bool

	// Flatten returns the elements as a fresh flat slice.
	Flatten() []float64

	// IsValid reports whether all elements are finite.
	IsValid() bool

	// ShapeString describes the shape for error messages.
	ShapeString() string
}

// AffineMultiply computes c = beta*c + alpha*(a∘b) in place. It is linear
// in the number of modes whenever a is a scalar or diagonal operand.
func AffineMultiply(c, a, b Value, alpha, beta float64) {
	c.Scale(beta)
	c.MulAdd(a, b, alpha)
}

// SupDiff is the convergence metric of the solvers: the maximum absolute
// elementwise difference between two values of the same shape.
func SupDiff(a, b Value) float64 {
	return a.SupDiff(b)
}

// Scalar is the single-correlator shape.
type Scalar struct {
	V float64
}

// NewScalar returns a scalar value.
func NewScalar(v float64) *Scalar { return &Scalar{V: v} }

func (s *Scalar) Clone() Value    { return &Scalar{V: s.V} }
func (s *Scalar) ZeroLike() Value { return &Scalar{} }

func (s *Scalar) CopyFrom(src Value) { s.V = src.(*Scalar).V }

func (s *Scalar) Scale(f float64) { s.V *= f }

func (s *Scalar) Axpy(f float64, x Value) { s.V += f * x.(*Scalar).V }

func (s *Scalar) MulAdd(a, b Value, f float64) {
	s.V += f * a.(*Scalar).V * b.(*Scalar).V
}

func (s *Scalar) SolveInto(dst, rhs Value) error {
	if s.V == 0 {
		return ErrSingular
	}
	dst.(*Scalar).V = rhs.(*Scalar).V / s.V
	return nil
}

func (s *Scalar) SupDiff(other Value) float64 {
	return math.Abs(s.V - other.(*Scalar).V)
}

func (s *Scalar) SameShape(other Value) bool {
	_, ok := other.(*Scalar)
	return ok
}

func (s *Scalar) Flatten() []float64 { return []float64{s.V} }

func (s *Scalar) IsValid() bool {
	return !math.IsNaN(s.V) && !math.IsInf(s.V, 0)
}

func (s *Scalar) ShapeString() string { return "scalar" }

// Vector holds one value per mode and acts diagonally as an operator.
type Vector []float64

// NewVector returns a zero vector of n modes.
func NewVector(n int) Vector { return make(Vector, n) }

// VectorOf copies vs into a new vector.
func VectorOf(vs []float64) Vector {
	v := make(Vector, len(vs))
	copy(v, vs)
	return v
}

func (v Vector) Clone() Value {
	c := make(Vector, len(v))
	copy(c, v)
	return c
}

func (v Vector) ZeroLike() Value { return make(Vector, len(v)) }

func (v Vector) CopyFrom(src Value) { copy(v, src.(Vector)) }

func (v Vector) Scale(s float64) {
	for i := range v {
		v[i] *= s
	}
}

func (v Vector) Axpy(s float64, x Value) {
	xv := x.(Vector)
	for i := range v {
		v[i] += s * xv[i]
	}
}

func (v Vector) MulAdd(a, b Value, s float64) {
	bv := b.(Vector)
	switch av := a.(type) {
	case Vector:
		for i := range v {
			v[i] += s * av[i] * bv[i]
		}
	case *Scalar:
		for i := range v {
			v[i] += s * av.V * bv[i]
		}
	case *Dense:
		n := len(v)
		for i := 0; i < n; i++ {
			row := av.M.RawRowView(i)
			sum := 0.0
			for j := 0; j < n; j++ {
				sum += row[j] * bv[j]
			}
			v[i] += s * sum
		}
	default:
		panic(fmt.Sprintf("algebra: cannot multiply %s into vector", a.ShapeString()))
	}
}

func (v Vector) SolveInto(dst, rhs Value) error {
	dv, rv := dst.(Vector), rhs.(Vector)
	for i := range v {
		if v[i] == 0 {
			return ErrSingular
		}
		dv[i] = rv[i] / v[i]
	}
	return nil
}

func (v Vector) SupDiff(other Value) float64 {
	ov := other.(Vector)
	max := 0.0
	for i := range v {
		if d := math.Abs(v[i] - ov[i]); d > max {
			max = d
		}
	}
	return max
}

func (v Vector) SameShape(other Value) bool {
	ov, ok := other.(Vector)
	return ok && len(ov) == len(v)
}

func (v Vector) Flatten() []float64 {
	c := make([]float64, len(v))
	copy(c, v)
	return c
}

func (v Vector) IsValid() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func (v Vector) ShapeString() string { return fmt.Sprintf("vector[%d]", len(v)) }
