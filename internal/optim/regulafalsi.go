package optim

import "math"

// RootConfig controls the regula falsi iteration.
type RootConfig struct {
	Accuracy      float64
	MaxIterations int
}

// DefaultRootConfig returns the standard root-finding settings.
func DefaultRootConfig() RootConfig {
	return RootConfig{Accuracy: 1e-10, MaxIterations: 200}
}

// RegulaFalsi finds a root of f inside [x0, x1] by the false-position
// method. Each iteration proposes the secant intersection of the two
// bracket endpoints; if that point falls outside the bracket (flat
// objective, equal signs after noise) the bracket midpoint is used
// instead. The endpoint whose sign matches the new evaluation is
// replaced, so the bracket never grows. The last guess is returned once
// the bracket width drops to Accuracy or the iteration budget runs out;
// the function never fails.
func RegulaFalsi(x0, x1 float64, f func(float64) float64, cfg RootConfig) float64 {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	f0, f1 := f(x0), f(x1)
	if f0 == 0 {
		return x0
	}
	if f1 == 0 {
		return x1
	}

	guess := 0.5 * (x0 + x1)
	for i := 0; i < cfg.MaxIterations && x1-x0 > cfg.Accuracy; i++ {
		guess = x0 - f0*(x1-x0)/(f1-f0)
		if math.IsNaN(guess) || guess <= x0 || guess >= x1 {
			guess = 0.5 * (x0 + x1)
		}

		fg := f(guess)
		switch {
		case fg == 0:
			return guess
		case math.Signbit(fg) == math.Signbit(f0):
			x0, f0 = guess, fg
		default:
			x1, f1 = guess, fg
		}
	}
	return guess
}
