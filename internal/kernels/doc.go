// Package kernels provides memory-kernel models for the solver.
//
// Each kernel implements [solver.Kernel]:
//
//   - [Schematic]: the F12 model, K = v1·F + v2·F²
//   - [Exponential]: F-independent decay, K(t) = Λ·exp(−t/τ)
//   - [Sjogren]: tagged-particle coupling to a solved base correlator
//   - [ModeVector]: per-mode quadratic couplings on vector unknowns
//
// Kernels reconcile themselves against the shape they are driven with on
// first evaluation and return nil for a shape they cannot serve, which the
// solver reports as a shape mismatch.
package kernels
