package kernels

import (
	"math"
	"sort"

	"github.com/glasskit/mctsim/internal/algebra"
	"github.com/glasskit/mctsim/internal/solver"
)

// Sjogren couples a tagged-particle correlator to an already-solved base
// correlator: K(t; F) = vs·Φ(t)·F, with Φ read off the base series by
// linear interpolation in time. Past the last base sample — and at t=∞ —
// the base correlator is held at its final value.
type Sjogren struct {
	vs    float64
	times []float64
	phi   []float64
	out   *algebra.Scalar
}

// NewSjogren builds the kernel from the coupling vs and the base solve.
func NewSjogren(vs float64, base *solver.Series) *Sjogren {
	return &Sjogren{
		vs:    vs,
		times: base.Times(),
		phi:   base.Component(0),
		out:   &algebra.Scalar{},
	}
}

func (k *Sjogren) Evaluate(f algebra.Value, t float64) algebra.Value {
	s, ok := f.(*algebra.Scalar)
	if !ok {
		return nil
	}
	k.out.V = k.vs * k.base(t) * s.V
	return k.out
}

func (k *Sjogren) base(t float64) float64 {
	n := len(k.times)
	switch {
	case n == 0:
		return 0
	case math.IsInf(t, 1) || t >= k.times[n-1]:
		return k.phi[n-1]
	case t <= k.times[0]:
		return k.phi[0]
	}
	i := sort.SearchFloat64s(k.times, t)
	t0, t1 := k.times[i-1], k.times[i]
	w := (t - t0) / (t1 - t0)
	return k.phi[i-1] + w*(k.phi[i]-k.phi[i-1])
}
