package solver

import "github.com/glasskit/mctsim/internal/algebra"

// Series is the full (t, F, K) record of one solve. Samples are appended
// in time order while the solver runs; the series is never mutated after
// Solve returns it.
type Series struct {
	t []float64
	f []algebra.Value
	k []algebra.Value
}

// NewSeriesFromSamples rebuilds a scalar series from stored samples, e.g.
// a run loaded back from disk. ks may be nil, leaving the kernel channel
// zero. Times must be strictly increasing.
func NewSeriesFromSamples(ts, fs, ks []float64) (*Series, error) {
	if len(fs) != len(ts) || (ks != nil && len(ks) != len(ts)) {
		return nil, &ConfigurationError{Field: "samples", Reason: "channel lengths differ"}
	}
	s := newSeries(len(ts))
	for i := range ts {
		if i > 0 && ts[i] <= ts[i-1] {
			return nil, &ConfigurationError{Field: "samples", Reason: "times must be strictly increasing"}
		}
		kv := 0.0
		if ks != nil {
			kv = ks[i]
		}
		s.append(ts[i], &algebra.Scalar{V: fs[i]}, &algebra.Scalar{V: kv})
	}
	return s, nil
}

func newSeries(capacity int) *Series {
	return &Series{
		t: make([]float64, 0, capacity),
		f: make([]algebra.Value, 0, capacity),
		k: make([]algebra.Value, 0, capacity),
	}
}

func (s *Series) append(t float64, f, k algebra.Value) {
	s.t = append(s.t, t)
	s.f = append(s.f, f.Clone())
	s.k = append(s.k, k.Clone())
}

// Len returns the number of samples.
func (s *Series) Len() int { return len(s.t) }

// Time returns the i-th sample time.
func (s *Series) Time(i int) float64 { return s.t[i] }

// F returns the i-th correlator sample. The caller must not mutate it.
func (s *Series) F(i int) algebra.Value { return s.f[i] }

// K returns the i-th kernel sample. The caller must not mutate it.
func (s *Series) K(i int) algebra.Value { return s.k[i] }

// Times returns a copy of every sample time, strictly increasing.
func (s *Series) Times() []float64 {
	out := make([]float64, len(s.t))
	copy(out, s.t)
	return out
}

// Component projects element idx of the flattened correlator across all
// samples, e.g. one wavevector mode of a vector-shaped unknown.
func (s *Series) Component(idx int) []float64 {
	out := make([]float64, len(s.f))
	for i, f := range s.f {
		out[i] = f.Flatten()[idx]
	}
	return out
}

// KernelComponent is Component for the kernel channel.
func (s *Series) KernelComponent(idx int) []float64 {
	out := make([]float64, len(s.k))
	for i, k := range s.k {
		out[i] = k.Flatten()[idx]
	}
	return out
}
