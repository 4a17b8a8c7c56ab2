// Package algebra provides the shape-generic arithmetic the memory-equation
// solver is written against.
//
// The unknown of a memory equation can be a scalar, a vector with one entry
// per mode, or a vector of small square matrices (multi-component per mode).
// All three are [Value] implementations:
//
//   - [Scalar]: single correlator
//   - [Vector]: one value per wavevector mode
//   - [BlockVector]: one dense matrix per mode, backed by gonum
//   - [Dense]: a full operator coupling modes, usable as a coefficient
//
// The solver only touches the [Value] interface, so a caller-supplied
// implementation with a different element type (dual numbers, numbers with
// propagated uncertainty) passes through the engine unchanged.
//
// Coefficients are reconciled against the unknown's shape with [Normalize]:
// a plain number broadcasts to the identity-like operator, a []float64 to a
// diagonal one. [AffineMultiply] folds products into an accumulator without
// ever materializing a dense operator for scalar or diagonal operands.
package algebra
