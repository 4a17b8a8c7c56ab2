package solver

import (
	"errors"
	"fmt"
	"math"
)

// Domain errors for the memory-equation solvers.
var (
	// ErrBadConfig indicates an invalid solver or equation configuration.
	ErrBadConfig = errors.New("solver: invalid configuration")

	// ErrNoConvergence indicates a fixed-point iteration that exhausted its
	// budget without meeting the tolerance.
	ErrNoConvergence = errors.New("solver: fixed-point iteration did not converge")
)

// ConfigurationError reports an invalid parameter, detected before any
// stepping happens.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%v: %s %s", ErrBadConfig, e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrBadConfig }

// ConvergenceError reports where a fixed-point iteration gave up: the time
// reached, the last sup-norm residual, and the iterations spent. Time is
// +Inf for the steady-state solver.
type ConvergenceError struct {
	Time       float64
	Residual   float64
	Iterations int
	Wrapped    error
}

func (e *ConvergenceError) Error() string {
	if math.IsInf(e.Time, 1) {
		return fmt.Sprintf("%v: residual %.3e after %d iterations at t=inf",
			ErrNoConvergence, e.Residual, e.Iterations)
	}
	return fmt.Sprintf("%v: residual %.3e after %d iterations at t=%.6e",
		ErrNoConvergence, e.Residual, e.Iterations, e.Time)
}

func (e *ConvergenceError) Unwrap() error {
	if e.Wrapped != nil {
		return e.Wrapped
	}
	return ErrNoConvergence
}
