package solver

import (
	"fmt"
	"math"

	"github.com/glasskit/mctsim/internal/algebra"
)

// SteadyState is the t=∞ fixed point of a memory equation: the
// non-ergodicity parameter F∞ and the kernel evaluated there.
type SteadyState struct {
	F algebra.Value
	K algebra.Value

	Iterations int
	Residual   float64
}

type steadyConfig struct {
	tolerance     float64
	maxIterations int
	verbose       bool
	guess         algebra.Value
}

// SteadyStateOption configures SolveSteadyState.
type SteadyStateOption func(*steadyConfig)

// WithTolerance sets the sup-norm convergence tolerance.
func WithTolerance(tol float64) SteadyStateOption {
	return func(c *steadyConfig) { c.tolerance = tol }
}

// WithMaxIterations bounds the fixed-point iteration count.
func WithMaxIterations(n int) SteadyStateOption {
	return func(c *steadyConfig) { c.maxIterations = n }
}

// WithVerbose prints per-iteration residuals. No semantic effect.
func WithVerbose(v bool) SteadyStateOption {
	return func(c *steadyConfig) { c.verbose = v }
}

// WithInitialGuess starts the iteration from a value other than f0.
func WithInitialGuess(g algebra.Value) SteadyStateOption {
	return func(c *steadyConfig) { c.guess = g }
}

// SolveSteadyState iterates
//
//	F ← (γ + K(F))⁻¹ ∘ K(F) ∘ F0
//
// from f0 (or the configured guess) until the sup-norm update drops below
// the tolerance. gamma follows the [algebra.Normalize] broadcast rules.
// Exhausting the budget fails with a *ConvergenceError at t=∞.
func SolveSteadyState(gamma any, f0 algebra.Value, k Kernel, opts ...SteadyStateOption) (*SteadyState, error) {
	if f0 == nil {
		return nil, &ConfigurationError{Field: "F0", Reason: "must not be nil"}
	}
	if k == nil {
		return nil, &ConfigurationError{Field: "Kernel", Reason: "must not be nil"}
	}

	cfg := steadyConfig{tolerance: 1e-10, maxIterations: 10000}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.tolerance <= 0 {
		return nil, &ConfigurationError{Field: "Tolerance", Reason: "must be positive"}
	}
	if cfg.maxIterations < 1 {
		return nil, &ConfigurationError{Field: "MaxIterations", Reason: "must be at least 1"}
	}

	gam, err := algebra.Normalize(gamma, f0)
	if err != nil {
		return nil, fmt.Errorf("coefficient gamma: %w", err)
	}

	opProto := gam.ZeroLike()
	inf := math.Inf(1)

	fCur := f0.Clone()
	if cfg.guess != nil {
		if !cfg.guess.SameShape(f0) {
			return nil, &algebra.ShapeError{Want: f0.ShapeString(), Got: cfg.guess.ShapeString()}
		}
		fCur.CopyFrom(cfg.guess)
	}

	fNew := f0.ZeroLike()
	rhs := f0.ZeroLike()
	op := opProto.ZeroLike()

	var kv algebra.Value
	res := math.Inf(1)
	for iter := 1; iter <= cfg.maxIterations; iter++ {
		kv = k.Evaluate(fCur, inf)
		if iter == 1 {
			if kv == nil || !kv.SameShape(f0) {
				return nil, &algebra.ShapeError{Want: f0.ShapeString(), Got: shapeOf(kv)}
			}
		}

		op.Scale(0)
		op.Axpy(1, gam)
		op.Axpy(1, kv)

		rhs.Scale(0)
		rhs.MulAdd(kv, f0, 1)

		if err := op.SolveInto(fNew, rhs); err != nil {
			return nil, fmt.Errorf("steady state iteration %d: %w", iter, err)
		}

		res = algebra.SupDiff(fNew, fCur)
		fCur.CopyFrom(fNew)
		if cfg.verbose {
			fmt.Printf("steady state iteration %d: residual %.3e\n", iter, res)
		}
		if res < cfg.tolerance {
			return &SteadyState{F: fCur, K: kv.Clone(), Iterations: iter, Residual: res}, nil
		}
	}
	return nil, &ConvergenceError{Time: inf, Residual: res, Iterations: cfg.maxIterations}
}
