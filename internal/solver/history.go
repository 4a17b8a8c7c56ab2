package solver

import "github.com/glasskit/mctsim/internal/algebra"

// history is the bounded rolling store behind one running solve. It keeps
// N+1 point samples of (t, F, K) at the current step size, plus the moment
// arrays F̄ and K̄ — the per-interval averages the convolution quadrature
// integrates against (F̄[l] covers (t[l-1], t[l]]; index 0 is unused).
// All slots are allocated once and reused for the lifetime of the solve.
type history struct {
	n int     // block size N; slots 0..N hold valid samples
	h float64 // current step size

	t    []float64
	f    []algebra.Value
	k    []algebra.Value
	fbar []algebra.Value
	kbar []algebra.Value

	scratch algebra.Value
}

func newHistory(n int, h float64, proto algebra.Value) *history {
	hb := &history{
		n:       n,
		h:       h,
		t:       make([]float64, n+1),
		f:       make([]algebra.Value, n+1),
		k:       make([]algebra.Value, n+1),
		fbar:    make([]algebra.Value, n+1),
		kbar:    make([]algebra.Value, n+1),
		scratch: proto.ZeroLike(),
	}
	for i := 0; i <= n; i++ {
		hb.f[i] = proto.ZeroLike()
		hb.k[i] = proto.ZeroLike()
		hb.fbar[i] = proto.ZeroLike()
		hb.kbar[i] = proto.ZeroLike()
	}
	return hb
}

// set stores sample i and refreshes the trailing moments.
func (hb *history) set(i int, t float64, f, k algebra.Value) {
	hb.t[i] = t
	hb.f[i].CopyFrom(f)
	hb.k[i].CopyFrom(k)
	if i > 0 {
		average(hb.fbar[i], hb.f[i-1], hb.f[i])
		average(hb.kbar[i], hb.k[i-1], hb.k[i])
	}
}

// decimate merges the grid down to N/2 intervals and doubles the step.
// Point samples are exact on the coarse grid, so they take every second
// entry; the moments merge by pairwise averaging, which preserves the
// integral each one represents.
func (hb *history) decimate() {
	half := hb.n / 2
	for j := 1; j <= half; j++ {
		average(hb.scratch, hb.fbar[2*j-1], hb.fbar[2*j])
		hb.fbar[j].CopyFrom(hb.scratch)
		average(hb.scratch, hb.kbar[2*j-1], hb.kbar[2*j])
		hb.kbar[j].CopyFrom(hb.scratch)

		hb.t[j] = hb.t[2*j]
		hb.f[j].CopyFrom(hb.f[2*j])
		hb.k[j].CopyFrom(hb.k[2*j])
	}
	hb.h *= 2
}

// average sets dst = (a+b)/2.
func average(dst, a, b algebra.Value) {
	dst.CopyFrom(a)
	dst.Axpy(1, b)
	dst.Scale(0.5)
}
