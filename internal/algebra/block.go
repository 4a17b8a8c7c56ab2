package algebra

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// BlockVector holds one small dense square matrix per mode. It is the shape
// of multi-component correlators: element (a,b) of block m is the
// correlation between species a and b at mode m. As an operator it acts by
// per-block matrix multiplication.
type BlockVector struct {
	n, d   int
	blocks []*mat.Dense
}

// NewBlockVector returns a zero block vector of n modes with d×d blocks.
func NewBlockVector(n, d int) *BlockVector {
	b := &BlockVector{n: n, d: d, blocks: make([]*mat.Dense, n)}
	for i := range b.blocks {
		b.blocks[i] = mat.NewDense(d, d, nil)
	}
	return b
}

// BlockVectorOf copies the given square blocks, which must all share one
// dimension.
func BlockVectorOf(blocks []*mat.Dense) (*BlockVector, error) {
	if len(blocks) == 0 {
		return nil, &ShapeError{Want: "at least one block", Got: "empty slice"}
	}
	d, c := blocks[0].Dims()
	if d != c {
		return nil, &ShapeError{Want: "square blocks", Got: fmt.Sprintf("%dx%d", d, c)}
	}
	b := NewBlockVector(len(blocks), d)
	for i, blk := range blocks {
		r, c := blk.Dims()
		if r != d || c != d {
			return nil, &ShapeError{Want: fmt.Sprintf("%dx%d block", d, d), Got: fmt.Sprintf("%dx%d", r, c)}
		}
		b.blocks[i].Copy(blk)
	}
	return b, nil
}

// Modes returns the number of modes.
func (b *BlockVector) Modes() int { return b.n }

// BlockDim returns the dimension of each block.
func (b *BlockVector) BlockDim() int { return b.d }

// Block returns the matrix at mode i. The caller may mutate it.
func (b *BlockVector) Block(i int) *mat.Dense { return b.blocks[i] }

func (b *BlockVector) Clone() Value {
	c := NewBlockVector(b.n, b.d)
	for i := range b.blocks {
		c.blocks[i].Copy(b.blocks[i])
	}
	return c
}

func (b *BlockVector) ZeroLike() Value { return NewBlockVector(b.n, b.d) }

func (b *BlockVector) CopyFrom(src Value) {
	sb := src.(*BlockVector)
	for i := range b.blocks {
		b.blocks[i].Copy(sb.blocks[i])
	}
}

func (b *BlockVector) Scale(s float64) {
	for i := range b.blocks {
		raw := b.blocks[i].RawMatrix().Data
		for j := range raw {
			raw[j] *= s
		}
	}
}

func (b *BlockVector) Axpy(s float64, x Value) {
	xb := x.(*BlockVector)
	for i := range b.blocks {
		dst := b.blocks[i].RawMatrix().Data
		src := xb.blocks[i].RawMatrix().Data
		for j := range dst {
			dst[j] += s * src[j]
		}
	}
}

func (b *BlockVector) MulAdd(a, x Value, s float64) {
	xb := x.(*BlockVector)
	switch ab := a.(type) {
	case *BlockVector:
		var tmp mat.Dense
		for i := range b.blocks {
			tmp.Mul(ab.blocks[i], xb.blocks[i])
			dst := b.blocks[i].RawMatrix().Data
			src := tmp.RawMatrix().Data
			for j := range dst {
				dst[j] += s * src[j]
			}
		}
	case *Scalar:
		b.Axpy(s*ab.V, x)
	case Vector:
		// per-mode uniform scaling
		for i := range b.blocks {
			dst := b.blocks[i].RawMatrix().Data
			src := xb.blocks[i].RawMatrix().Data
			for j := range dst {
				dst[j] += s * ab[i] * src[j]
			}
		}
	default:
		panic(fmt.Sprintf("algebra: cannot multiply %s into block vector", a.ShapeString()))
	}
}

func (b *BlockVector) SolveInto(dst, rhs Value) error {
	db, rb := dst.(*BlockVector), rhs.(*BlockVector)
	for i := range b.blocks {
		if err := db.blocks[i].Solve(b.blocks[i], rb.blocks[i]); err != nil {
			return fmt.Errorf("%w: block %d", ErrSingular, i)
		}
	}
	return nil
}

func (b *BlockVector) SupDiff(other Value) float64 {
	ob := other.(*BlockVector)
	max := 0.0
	for i := range b.blocks {
		x := b.blocks[i].RawMatrix().Data
		y := ob.blocks[i].RawMatrix().Data
		for j := range x {
			if d := math.Abs(x[j] - y[j]); d > max {
				max = d
			}
		}
	}
	return max
}

func (b *BlockVector) SameShape(other Value) bool {
	ob, ok := other.(*BlockVector)
	return ok && ob.n == b.n && ob.d == b.d
}

func (b *BlockVector) Flatten() []float64 {
	out := make([]float64, 0, b.n*b.d*b.d)
	for i := range b.blocks {
		out = append(out, b.blocks[i].RawMatrix().Data...)
	}
	return out
}

func (b *BlockVector) IsValid() bool {
	for i := range b.blocks {
		for _, x := range b.blocks[i].RawMatrix().Data {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return false
			}
		}
	}
	return true
}

func (b *BlockVector) ShapeString() string {
	return fmt.Sprintf("blockvector[%d]x(%dx%d)", b.n, b.d, b.d)
}
