package algebra

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Normalize reconciles a raw coefficient with the shape of the unknown and
// returns its canonical representation. proto is the unknown (typically F0).
//
// Broadcasts: a plain number becomes the identity-like operator of proto's
// shape (a uniform vector, or s·I per block); a []float64 with one entry
// per mode becomes the diagonal operator. A square *mat.Dense against a
// vector unknown becomes a full [Dense] operator. Values already matching
// proto's shape are copied. Anything else fails with a *ShapeError.
func Normalize(raw any, proto Value) (Value, error) {
	switch p := proto.(type) {
	case *Scalar:
		return normalizeScalar(raw)
	case Vector:
		return normalizeVector(raw, len(p))
	case *BlockVector:
		return normalizeBlock(raw, p.n, p.d)
	default:
		return nil, &ShapeError{Want: "scalar, vector or block vector unknown", Got: proto.ShapeString()}
	}
}

func normalizeScalar(raw any) (Value, error) {
	switch r := raw.(type) {
	case nil:
		return &Scalar{}, nil
	case float64:
		return &Scalar{V: r}, nil
	case int:
		return &Scalar{V: float64(r)}, nil
	case *Scalar:
		return r.Clone(), nil
	default:
		return nil, &ShapeError{Want: "scalar", Got: describeRaw(raw)}
	}
}

func normalizeVector(raw any, n int) (Value, error) {
	switch r := raw.(type) {
	case nil:
		return NewVector(n), nil
	case float64:
		v := NewVector(n)
		for i := range v {
			v[i] = r
		}
		return v, nil
	case int:
		return normalizeVector(float64(r), n)
	case *Scalar:
		return normalizeVector(r.V, n)
	case []float64:
		if len(r) != n {
			return nil, &ShapeError{Want: fmt.Sprintf("vector[%d]", n), Got: describeRaw(raw)}
		}
		return VectorOf(r), nil
	case Vector:
		if len(r) != n {
			return nil, &ShapeError{Want: fmt.Sprintf("vector[%d]", n), Got: r.ShapeString()}
		}
		return r.Clone(), nil
	case *mat.Dense:
		rows, cols := r.Dims()
		if rows != n || cols != n {
			return nil, &ShapeError{Want: fmt.Sprintf("dense[%dx%d]", n, n), Got: describeRaw(raw)}
		}
		d := NewDense(n)
		d.M.Copy(r)
		return d, nil
	case *Dense:
		if r.size() != n {
			return nil, &ShapeError{Want: fmt.Sprintf("dense[%dx%d]", n, n), Got: r.ShapeString()}
		}
		return r.Clone(), nil
	default:
		return nil, &ShapeError{Want: fmt.Sprintf("vector[%d]", n), Got: describeRaw(raw)}
	}
}

func normalizeBlock(raw any, n, d int) (Value, error) {
	switch r := raw.(type) {
	case nil:
		return NewBlockVector(n, d), nil
	case float64:
		b := NewBlockVector(n, d)
		for i := 0; i < n; i++ {
			for j := 0; j < d; j++ {
				b.blocks[i].Set(j, j, r)
			}
		}
		return b, nil
	case int:
		return normalizeBlock(float64(r), n, d)
	case *Scalar:
		return normalizeBlock(r.V, n, d)
	case []float64:
		if len(r) != n {
			return nil, &ShapeError{Want: fmt.Sprintf("blockvector[%d]", n), Got: describeRaw(raw)}
		}
		b := NewBlockVector(n, d)
		for i := 0; i < n; i++ {
			for j := 0; j < d; j++ {
				b.blocks[i].Set(j, j, r[i])
			}
		}
		return b, nil
	case Vector:
		return normalizeBlock([]float64(r), n, d)
	case *BlockVector:
		if r.n != n || r.d != d {
			return nil, &ShapeError{Want: fmt.Sprintf("blockvector[%d]x(%dx%d)", n, d, d), Got: r.ShapeString()}
		}
		return r.Clone(), nil
	default:
		return nil, &ShapeError{Want: fmt.Sprintf("blockvector[%d]x(%dx%d)", n, d, d), Got: describeRaw(raw)}
	}
}

func describeRaw(raw any) string {
	if v, ok := raw.(Value); ok {
		return v.ShapeString()
	}
	if s, ok := raw.([]float64); ok {
		return fmt.Sprintf("[]float64 of length %d", len(s))
	}
	if m, ok := raw.(*mat.Dense); ok {
		r, c := m.Dims()
		return fmt.Sprintf("%dx%d matrix", r, c)
	}
	return fmt.Sprintf("%T", raw)
}
