package kernels

import (
	"github.com/glasskit/mctsim/internal/algebra"
)

// Schematic is the F12 model of mode-coupling theory on a scalar
// correlator: K = v1·F + v2·F². At v1=0 it reduces to the F2 model, whose
// glass transition sits at v2=4; the F1 line (v2=0) has its continuous
// transition at v1=1.
type Schematic struct {
	v1, v2 float64
	out    *algebra.Scalar
}

// NewSchematic returns an F12 kernel with the given couplings.
func NewSchematic(v1, v2 float64) *Schematic {
	return &Schematic{v1: v1, v2: v2, out: &algebra.Scalar{}}
}

// NewSchematicF2 returns the quadratic F2 model, K = v·F².
func NewSchematicF2(v float64) *Schematic {
	return NewSchematic(0, v)
}

// Couplings returns (v1, v2).
func (k *Schematic) Couplings() (float64, float64) { return k.v1, k.v2 }

func (k *Schematic) Evaluate(f algebra.Value, t float64) algebra.Value {
	s, ok := f.(*algebra.Scalar)
	if !ok {
		return nil
	}
	k.out.V = k.v1*s.V + k.v2*s.V*s.V
	return k.out
}
