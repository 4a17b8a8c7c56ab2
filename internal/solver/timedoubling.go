package solver

import (
	"fmt"
	"math"

	"github.com/glasskit/mctsim/internal/algebra"
)

// phase is the state of one running solve.
type phase int

const (
	phaseSeeding phase = iota
	phaseStepping
	phaseDecimating
	phaseDone
	phaseFailed
)

// Solver advances a memory equation over a time-doubling grid: blocks of
// BlockSize samples at a fixed step, decimated and step-doubled once full,
// so the grid reaches TMax ≈ Dt·BlockSize·2^B while memory and per-step
// cost stay bounded by the block size.
//
// A Solver runs one solve at a time; concurrent solves need independent
// Solver instances.
type Solver struct {
	cfg   Config
	stats Stats
}

// New validates the configuration and returns a solver.
func New(cfg Config) (*Solver, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Solver{cfg: cfg}, nil
}

// Stats reports the work done by the most recent Solve call.
func (s *Solver) Stats() Stats { return s.stats }

// Solve produces the full time series for eq. On a fixed-point failure the
// series accumulated so far is returned together with a *ConvergenceError;
// the run is not silently continued past an unconverged step.
func (s *Solver) Solve(eq *Equation) (*Series, error) {
	if err := s.cfg.validate(); err != nil {
		return nil, err
	}
	if eq == nil {
		return nil, &ConfigurationError{Field: "equation", Reason: "must not be nil"}
	}
	if isZero(eq.Alpha) && isZero(eq.Beta) {
		return nil, &ConfigurationError{Field: "alpha/beta", Reason: "cannot both vanish"}
	}
	s.stats = Stats{}

	n := s.cfg.BlockSize
	hb := newHistory(n, s.cfg.Dt, eq.F0)
	series := newSeries(4 * n)

	r := &run{
		eq:      eq,
		hb:      hb,
		series:  series,
		cfg:     s.cfg,
		stats:   &s.stats,
		c1:      eq.opProto.ZeroLike(),
		rhs:     eq.F0.ZeroLike(),
		rhsIter: eq.F0.ZeroLike(),
		mix:     eq.F0.ZeroLike(),
		diff:    eq.F0.ZeroLike(),
		fCur:    eq.F0.ZeroLike(),
		fNew:    eq.F0.ZeroLike(),
	}

	var (
		state  = phaseSeeding
		i      int
		runErr error
	)
	for state != phaseDone && state != phaseFailed {
		switch state {
		case phaseSeeding:
			if runErr = s.seed(eq, hb, series); runErr != nil {
				state = phaseFailed
				break
			}
			i = n/2 + 1
			if hb.t[n/2] >= s.cfg.TMax {
				state = phaseDone
			} else {
				state = phaseStepping
			}
		case phaseStepping:
			if runErr = r.step(i); runErr != nil {
				state = phaseFailed
				break
			}
			switch {
			case hb.t[i] >= s.cfg.TMax:
				state = phaseDone
			case i == n:
				state = phaseDecimating
			default:
				i++
			}
		case phaseDecimating:
			hb.decimate()
			s.stats.Blocks++
			if s.cfg.Verbose {
				fmt.Printf("block %d: t=%.3e dt=%.3e iterations=%d kernel calls=%d\n",
					s.stats.Blocks, hb.t[n/2], hb.h, s.stats.TotalIterations, s.stats.KernelCalls)
			}
			if s.cfg.OnBlock != nil {
				s.cfg.OnBlock(BlockEvent{
					Block:     s.stats.Blocks,
					Time:      hb.t[n/2],
					StepSize:  hb.h,
					Stats:     s.stats,
					Times:     series.Times(),
					Component: series.Component(0),
				})
			}
			i = n/2 + 1
			state = phaseStepping
		}
	}
	if state == phaseFailed {
		return series, runErr
	}
	return series, nil
}

// seed fills the first half block from the short-time expansion
// F(t) ≈ F0 + a·t + b·t²/2, with a and b fixed by the initial data and the
// governing equation; the memory integral is O(t²) and does not enter at
// this order.
func (s *Solver) seed(eq *Equation, hb *history, series *Series) error {
	if err := eq.refresh(0); err != nil {
		return err
	}

	k0 := eq.Kernel.Evaluate(eq.F0, 0)
	s.stats.KernelCalls++
	if k0 == nil || !k0.SameShape(eq.F0) {
		return &algebra.ShapeError{Want: eq.F0.ShapeString(), Got: shapeOf(k0)}
	}

	a := eq.F0.ZeroLike()
	b := eq.F0.ZeroLike()
	rhs := eq.F0.ZeroLike()

	if isZero(eq.Alpha) {
		// overdamped: β fixes F′(0) from the equation itself
		rhs.MulAdd(eq.Gamma, eq.F0, -1)
		rhs.Axpy(-1, eq.Delta)
		if err := eq.Beta.SolveInto(a, rhs); err != nil {
			return fmt.Errorf("seeding: %w", err)
		}
		rhs.Scale(0)
		rhs.MulAdd(eq.Gamma, a, -1)
		rhs.MulAdd(k0, a, -1)
		if err := eq.Beta.SolveInto(b, rhs); err != nil {
			return fmt.Errorf("seeding: %w", err)
		}
	} else {
		a.CopyFrom(eq.DF0)
		rhs.MulAdd(eq.Beta, a, -1)
		rhs.MulAdd(eq.Gamma, eq.F0, -1)
		rhs.Axpy(-1, eq.Delta)
		if err := eq.Alpha.SolveInto(b, rhs); err != nil {
			return fmt.Errorf("seeding: %w", err)
		}
	}

	fi := eq.F0.ZeroLike()
	for i := 0; i <= hb.n/2; i++ {
		t := float64(i) * hb.h
		fi.CopyFrom(eq.F0)
		fi.Axpy(t, a)
		fi.Axpy(t*t/2, b)

		ki := k0
		if i > 0 {
			ki = eq.Kernel.Evaluate(fi, t)
			s.stats.KernelCalls++
		}
		hb.set(i, t, fi, ki)
		series.append(t, fi, ki)
	}
	return nil
}

// run bundles one solve's scratch space so stepping allocates nothing.
type run struct {
	eq     *Equation
	hb     *history
	series *Series
	cfg    Config
	stats  *Stats

	c1      algebra.Value // operator shape
	rhs     algebra.Value
	rhsIter algebra.Value
	mix     algebra.Value
	diff    algebra.Value
	fCur    algebra.Value
	fNew    algebra.Value
}

// step advances to sample i at the buffer's current step size.
//
// Discretization: second-order backward differences for F″ and F′, and the
// convolution split at ī=i/2, with kernel moments against F increments on
// the near side and F moments against kernel increments on the far side.
// Collecting the terms that contain the unknowns F_i and K_i gives a linear
// equation
//
//	[2α/h² + 3β/(2h) + γ + K̄₁]·F_i = K_i·(F0 − F̄₁) + knowns
//
// which is solved in closed form inside the fixed-point loop over K_i.
func (r *run) step(i int) error {
	hb := r.hb
	h := hb.h
	t := hb.t[i-1] + h
	ibar := i / 2

	if err := r.eq.refresh(t); err != nil {
		return err
	}

	c1 := r.c1
	c1.Scale(0)
	c1.Axpy(2/(h*h), r.eq.Alpha)
	c1.Axpy(3/(2*h), r.eq.Beta)
	c1.Axpy(1, r.eq.Gamma)
	c1.Axpy(1, hb.kbar[1])

	rhs := r.rhs
	rhs.Scale(0)
	rhs.Axpy(-1, r.eq.Delta)
	rhs.MulAdd(r.eq.Alpha, hb.f[i-1], 5/(h*h))
	rhs.MulAdd(r.eq.Alpha, hb.f[i-2], -4/(h*h))
	rhs.MulAdd(r.eq.Alpha, hb.f[i-3], 1/(h*h))
	rhs.MulAdd(r.eq.Beta, hb.f[i-1], 2/h)
	rhs.MulAdd(r.eq.Beta, hb.f[i-2], -1/(2*h))

	// near side of the convolution: kernel moments against F increments
	for l := 2; l <= ibar; l++ {
		r.diff.CopyFrom(hb.f[i-l+1])
		r.diff.Axpy(-1, hb.f[i-l])
		rhs.MulAdd(hb.kbar[l], r.diff, -1)
	}
	rhs.MulAdd(hb.kbar[1], hb.f[i-1], 1)

	// far side: boundary term plus kernel increments against F moments
	rhs.MulAdd(hb.k[ibar], hb.f[i-ibar], -1)
	for l := ibar + 1; l <= i-1; l++ {
		r.diff.CopyFrom(hb.k[l])
		r.diff.Axpy(-1, hb.k[l-1])
		rhs.MulAdd(r.diff, hb.fbar[i-l+1], -1)
	}
	rhs.MulAdd(hb.k[i-1], hb.fbar[1], 1)

	// the unknown kernel value multiplies F0 − F̄₁
	r.mix.CopyFrom(r.eq.F0)
	r.mix.Axpy(-1, hb.fbar[1])

	r.fCur.CopyFrom(hb.f[i-1])
	var kv algebra.Value
	res := math.Inf(1)
	for iter := 0; iter < r.cfg.MaxIterations; iter++ {
		kv = r.eq.Kernel.Evaluate(r.fCur, t)
		r.stats.KernelCalls++

		r.rhsIter.CopyFrom(rhs)
		r.rhsIter.MulAdd(kv, r.mix, 1)
		if err := c1.SolveInto(r.fNew, r.rhsIter); err != nil {
			return fmt.Errorf("step at t=%.6e: %w", t, err)
		}

		res = algebra.SupDiff(r.fNew, r.fCur)
		r.fCur.CopyFrom(r.fNew)
		r.stats.TotalIterations++
		if res < r.cfg.Tolerance {
			break
		}
	}
	r.stats.LastResidual = res
	if res >= r.cfg.Tolerance {
		return &ConvergenceError{Time: t, Residual: res, Iterations: r.cfg.MaxIterations}
	}

	hb.set(i, t, r.fCur, kv)
	r.series.append(t, r.fCur, kv)
	r.stats.Steps++
	return nil
}

func isZero(v algebra.Value) bool {
	return v.SupDiff(v.ZeroLike()) == 0
}
