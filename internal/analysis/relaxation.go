package analysis

import (
	"errors"
	"fmt"
	"math"
)

// ErrBadInterp indicates an unrecognized interpolation mode.
var ErrBadInterp = errors.New("analysis: unknown interpolation mode")

// Interp selects how the threshold crossing is interpolated between the
// two samples that straddle it.
type Interp int

const (
	// InterpLinear interpolates linearly in t.
	InterpLinear Interp = iota
	// InterpLog interpolates linearly in log t, the natural choice on a
	// time-doubling grid.
	InterpLog
)

// DefaultThreshold is 1/e, the conventional relaxation criterion.
var DefaultThreshold = math.Exp(-1)

// RelaxationTime scans the samples in time order for the first index where
// F[i]/F[0] drops to the threshold or below, and interpolates the crossing
// time. It returns +Inf when the correlator never crosses and 0 when the
// first sample is already at or below the threshold. Non-monotone input is
// fine; only the first crossing counts.
func RelaxationTime(t, f []float64, threshold float64, mode Interp) (float64, error) {
	if mode != InterpLinear && mode != InterpLog {
		return 0, fmt.Errorf("%w: %d", ErrBadInterp, mode)
	}
	if len(t) != len(f) {
		return 0, fmt.Errorf("analysis: %d times for %d samples", len(t), len(f))
	}
	if len(f) == 0 {
		return math.Inf(1), nil
	}

	norm := f[0]
	cross := -1
	for i := range f {
		if f[i]/norm <= threshold {
			cross = i
			break
		}
	}
	switch cross {
	case -1:
		return math.Inf(1), nil
	case 0:
		return 0, nil
	}

	y0, y1 := f[cross-1]/norm, f[cross]/norm
	w := (threshold - y0) / (y1 - y0)

	if mode == InterpLog && t[cross-1] > 0 {
		lt := math.Log(t[cross-1]) + w*(math.Log(t[cross])-math.Log(t[cross-1]))
		return math.Exp(lt), nil
	}
	return t[cross-1] + w*(t[cross]-t[cross-1]), nil
}
