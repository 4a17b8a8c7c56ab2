package kernels

import (
	"github.com/glasskit/mctsim/internal/algebra"
)

// ModeVector is the per-mode schematic model on a vector unknown:
// K_q = v1_q·F_q + v2_q·F_q². Couplings are fixed per mode; there is no
// cross-mode coupling, so evaluation is linear in the number of modes.
type ModeVector struct {
	v1, v2 []float64
	out    algebra.Vector
}

// NewModeVector returns the kernel for len(v1) modes. v1 and v2 must have
// equal length.
func NewModeVector(v1, v2 []float64) *ModeVector {
	if len(v1) != len(v2) {
		panic("kernels: coupling vectors must have equal length")
	}
	return &ModeVector{
		v1:  append([]float64(nil), v1...),
		v2:  append([]float64(nil), v2...),
		out: algebra.NewVector(len(v1)),
	}
}

func (k *ModeVector) Evaluate(f algebra.Value, t float64) algebra.Value {
	v, ok := f.(algebra.Vector)
	if !ok || len(v) != len(k.out) {
		return nil
	}
	for i := range v {
		k.out[i] = k.v1[i]*v[i] + k.v2[i]*v[i]*v[i]
	}
	return k.out
}
