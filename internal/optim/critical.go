package optim

import (
	"sync"

	"github.com/glasskit/mctsim/internal/algebra"
	"github.com/glasskit/mctsim/internal/solver"
)

// Plateau maps a coupling strength to the steady-state plateau height
// (typically the sup norm of the non-ergodicity parameter). Callers
// build it on SolveSteadyState; see PlateauFunc.
type Plateau func(v float64) (float64, error)

// PlateauFunc builds a Plateau from a kernel factory: for each coupling
// it constructs the kernel, solves the steady state and reports the sup
// norm of F∞. A solve that fails to converge reports a zero plateau,
// since below the transition the ergodic fixed point is reached exactly
// there and slow crawl toward zero is the common failure.
func PlateauFunc(gamma any, f0 algebra.Value, build func(v float64) solver.Kernel, opts ...solver.SteadyStateOption) Plateau {
	return func(v float64) (float64, error) {
		ss, err := solver.SolveSteadyState(gamma, f0, build(v), opts...)
		if err != nil {
			if _, ok := err.(*solver.ConvergenceError); ok {
				return 0, nil
			}
			return 0, err
		}
		return algebra.SupDiff(ss.F, ss.F.ZeroLike()), nil
	}
}

// CriticalCoupling brackets the coupling at which the plateau crosses
// the threshold and refines it with regula falsi. The plateau jumps
// discontinuously at a fold transition, so the returned coupling is
// accurate to the bracket accuracy rather than the objective's
// smoothness. The first error seen during objective evaluation is
// returned alongside the best guess so far.
func CriticalCoupling(lo, hi float64, p Plateau, threshold float64, cfg RootConfig) (float64, error) {
	var solveErr error
	obj := func(v float64) float64 {
		h, err := p(v)
		if err != nil && solveErr == nil {
			solveErr = err
		}
		return h - threshold
	}
	vc := RegulaFalsi(lo, hi, obj, cfg)
	return vc, solveErr
}

// Sweep evaluates the plateau at every coupling concurrently, one
// goroutine per point. The first evaluation error aborts the result.
func Sweep(couplings []float64, p Plateau) ([]float64, error) {
	heights := make([]float64, len(couplings))
	errs := make([]error, len(couplings))

	var wg sync.WaitGroup
	for i := range couplings {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			heights[idx], errs[idx] = p(couplings[idx])
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return heights, nil
}
