// Package optim provides scalar root finding and critical-point search
// over steady-state solutions.
//
//   - RegulaFalsi: bracketed secant iteration with a midpoint fallback
//     when the secant guess escapes the bracket.
//   - CriticalCoupling: locates the coupling strength where a scalar
//     objective built on the steady-state solver changes sign.
//   - Sweep: evaluates an objective over many couplings concurrently,
//     one goroutine per point.
package optim
