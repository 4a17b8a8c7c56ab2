package kernels

import (
	"math"

	"github.com/glasskit/mctsim/internal/algebra"
)

// Exponential is an F-independent kernel K(t) = Λ·exp(−t/τ). Λ broadcasts
// against the correlator's shape on first evaluation, so the same kernel
// serves scalar, vector and block unknowns. It vanishes at t=∞.
type Exponential struct {
	lambda any
	tau    float64

	amp algebra.Value
	out algebra.Value
}

// NewExponential returns an exponential kernel with amplitude lambda
// (anything [algebra.Normalize] accepts) and decay time tau.
func NewExponential(lambda any, tau float64) *Exponential {
	return &Exponential{lambda: lambda, tau: tau}
}

func (k *Exponential) Evaluate(f algebra.Value, t float64) algebra.Value {
	if k.amp == nil || !k.amp.SameShape(f) {
		amp, err := algebra.Normalize(k.lambda, f)
		if err != nil {
			return nil
		}
		k.amp = amp
		k.out = f.ZeroLike()
	}
	k.out.CopyFrom(k.amp)
	k.out.Scale(math.Exp(-t / k.tau))
	return k.out
}
