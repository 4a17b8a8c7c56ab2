package solver

import (
	"fmt"

	"github.com/glasskit/mctsim/internal/algebra"
)

// Kernel evaluates the memory kernel K(t; F) for the current correlator
// guess. Implementations see only the correlator and the time; the solver
// never inspects kernel internals and calls Evaluate at most once per
// fixed-point iteration per time step. The returned value must have the
// shape of F.
type Kernel interface {
	Evaluate(f algebra.Value, t float64) algebra.Value
}

// KernelFunc adapts a plain function to the Kernel interface.
type KernelFunc func(f algebra.Value, t float64) algebra.Value

func (fn KernelFunc) Evaluate(f algebra.Value, t float64) algebra.Value {
	return fn(f, t)
}

// Equation is one memory equation
//
//	α·F″(t) + β·F′(t) + γ·F(t) + δ + ∫₀ᵗ K(t−τ; F)·F′(τ) dτ = 0
//
// with F(0)=F0 and F′(0)=DF0. Coefficients are held in their normalized
// representations: Alpha, Beta and Gamma as operators matching F0's shape,
// Delta as an additive value. The representation of every coefficient is
// fixed at construction; an update hook may change numeric entries only.
type Equation struct {
	Alpha algebra.Value
	Beta  algebra.Value
	Gamma algebra.Value
	Delta algebra.Value

	F0  algebra.Value
	DF0 algebra.Value

	Kernel Kernel

	// UpdateCoefficients, when set, is invoked with the upcoming sample
	// time before each step so time-dependent coefficients can refresh
	// their numeric values in place.
	UpdateCoefficients func(eq *Equation, t float64)

	// opProto fixes the shape of operator accumulators: a dense operator
	// when any coefficient is dense, the unknown's shape otherwise.
	opProto algebra.Value
}

// EquationOption configures optional equation behavior.
type EquationOption func(*Equation)

// WithUpdateHook installs a coefficient update hook.
func WithUpdateHook(fn func(eq *Equation, t float64)) EquationOption {
	return func(eq *Equation) { eq.UpdateCoefficients = fn }
}

// NewEquation normalizes the raw coefficients against f0's shape and
// assembles the equation. df0 may be nil for a zero initial derivative.
// Raw coefficients follow the [algebra.Normalize] broadcast rules; any
// shape that cannot be reconciled fails here with a shape error.
func NewEquation(alpha, beta, gamma, delta any, f0, df0 algebra.Value, k Kernel, opts ...EquationOption) (*Equation, error) {
	if f0 == nil {
		return nil, &ConfigurationError{Field: "F0", Reason: "must not be nil"}
	}
	if k == nil {
		return nil, &ConfigurationError{Field: "Kernel", Reason: "must not be nil"}
	}

	eq := &Equation{F0: f0.Clone(), Kernel: k}

	var err error
	if eq.Alpha, err = algebra.Normalize(alpha, f0); err != nil {
		return nil, fmt.Errorf("coefficient alpha: %w", err)
	}
	if eq.Beta, err = algebra.Normalize(beta, f0); err != nil {
		return nil, fmt.Errorf("coefficient beta: %w", err)
	}
	if eq.Gamma, err = algebra.Normalize(gamma, f0); err != nil {
		return nil, fmt.Errorf("coefficient gamma: %w", err)
	}
	if eq.Delta, err = algebra.Normalize(delta, f0); err != nil {
		return nil, fmt.Errorf("coefficient delta: %w", err)
	}

	if df0 == nil {
		eq.DF0 = f0.ZeroLike()
	} else {
		if !df0.SameShape(f0) {
			return nil, &algebra.ShapeError{Want: f0.ShapeString(), Got: df0.ShapeString()}
		}
		eq.DF0 = df0.Clone()
	}

	eq.opProto = f0.ZeroLike()
	for _, c := range []algebra.Value{eq.Alpha, eq.Beta, eq.Gamma} {
		if d, ok := c.(*algebra.Dense); ok {
			eq.opProto = d.ZeroLike()
			break
		}
	}

	for _, o := range opts {
		o(eq)
	}
	return eq, nil
}

// refresh applies the update hook for time t and verifies the hook kept
// every coefficient's representation.
func (eq *Equation) refresh(t float64) error {
	if eq.UpdateCoefficients == nil {
		return nil
	}
	alpha, beta, gamma, delta := eq.Alpha, eq.Beta, eq.Gamma, eq.Delta
	eq.UpdateCoefficients(eq, t)
	for _, pair := range [][2]algebra.Value{
		{alpha, eq.Alpha}, {beta, eq.Beta}, {gamma, eq.Gamma}, {delta, eq.Delta},
	} {
		if pair[1] == nil || !pair[0].SameShape(pair[1]) {
			return &algebra.ShapeError{Want: pair[0].ShapeString(), Got: shapeOf(pair[1])}
		}
	}
	return nil
}

func shapeOf(v algebra.Value) string {
	if v == nil {
		return "nil"
	}
	return v.ShapeString()
}

// Config holds the time-doubling solver parameters.
type Config struct {
	// Dt is the initial step size of the finest block.
	Dt float64

	// TMax is the simulated time to reach.
	TMax float64

	// BlockSize is the number of samples per block before decimation.
	// Must be even and at least 8.
	BlockSize int

	// Tolerance bounds the sup-norm residual of the per-step fixed point.
	Tolerance float64

	// MaxIterations bounds the fixed-point iterations per step.
	MaxIterations int

	// Verbose prints per-block diagnostics. No semantic effect.
	Verbose bool

	// OnBlock, when set, receives a progress snapshot after every
	// decimation. It is called from the solving goroutine.
	OnBlock func(BlockEvent)
}

// BlockEvent is the progress snapshot delivered to Config.OnBlock. The
// slices are copies and safe to hand to another goroutine.
type BlockEvent struct {
	Block    int
	Time     float64
	StepSize float64
	Stats    Stats

	Times     []float64
	Component []float64
}

// DefaultConfig covers roughly twenty decades of time, the usual regime
// for glassy dynamics.
func DefaultConfig() Config {
	return Config{
		Dt:            1e-10,
		TMax:          1e10,
		BlockSize:     32,
		Tolerance:     1e-8,
		MaxIterations: 100,
	}
}

func (c Config) validate() error {
	if c.Dt <= 0 {
		return &ConfigurationError{Field: "Dt", Reason: "must be positive"}
	}
	if c.TMax <= 0 {
		return &ConfigurationError{Field: "TMax", Reason: "must be positive"}
	}
	if c.BlockSize < 8 || c.BlockSize%2 != 0 {
		return &ConfigurationError{Field: "BlockSize", Reason: "must be even and at least 8"}
	}
	if c.Tolerance <= 0 {
		return &ConfigurationError{Field: "Tolerance", Reason: "must be positive"}
	}
	if c.MaxIterations < 1 {
		return &ConfigurationError{Field: "MaxIterations", Reason: "must be at least 1"}
	}
	return nil
}

// Stats summarizes the work done by the last Solve call.
type Stats struct {
	Steps           int
	Blocks          int
	KernelCalls     int
	TotalIterations int
	LastResidual    float64
}
