package solver

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/glasskit/mctsim/internal/algebra"
)

var _ = Describe("history", func() {
	const n = 8

	fill := func(hb *history) {
		for i := 0; i <= n; i++ {
			t := float64(i) * hb.h
			hb.set(i, t, &algebra.Scalar{V: float64(10 + i)}, &algebra.Scalar{V: float64(100 + i)})
		}
	}

	It("computes trailing moments as interval averages", func() {
		hb := newHistory(n, 0.5, &algebra.Scalar{})
		fill(hb)

		for i := 1; i <= n; i++ {
			want := (float64(10+i-1) + float64(10+i)) / 2
			Expect(hb.fbar[i].(*algebra.Scalar).V).To(Equal(want))
		}
	})

	Describe("decimate", func() {
		It("keeps every second point sample exactly", func() {
			hb := newHistory(n, 0.5, &algebra.Scalar{})
			fill(hb)
			hb.decimate()

			for j := 1; j <= n/2; j++ {
				Expect(hb.t[j]).To(Equal(float64(2*j) * 0.5))
				Expect(hb.f[j].(*algebra.Scalar).V).To(Equal(float64(10 + 2*j)))
				Expect(hb.k[j].(*algebra.Scalar).V).To(Equal(float64(100 + 2*j)))
			}
		})

		It("merges moments pairwise, preserving their integral", func() {
			hb := newHistory(n, 0.5, &algebra.Scalar{})
			fill(hb)

			// integral over (0, t[n]] represented by the fine moments
			fine := 0.0
			for i := 1; i <= n; i++ {
				fine += hb.fbar[i].(*algebra.Scalar).V * hb.h
			}

			hb.decimate()

			coarse := 0.0
			for j := 1; j <= n/2; j++ {
				coarse += hb.fbar[j].(*algebra.Scalar).V * hb.h
			}
			Expect(coarse).To(BeNumerically("~", fine, 1e-12))
		})

		It("doubles the step size", func() {
			hb := newHistory(n, 0.25, &algebra.Scalar{})
			fill(hb)
			hb.decimate()
			Expect(hb.h).To(Equal(0.5))
		})
	})
})

var _ = Describe("Series", func() {
	It("rebuilds a scalar series from stored samples", func() {
		s, err := NewSeriesFromSamples([]float64{0, 1, 2}, []float64{1, 0.5, 0.25}, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(s.Len()).To(Equal(3))
		Expect(s.Component(0)).To(Equal([]float64{1, 0.5, 0.25}))
		Expect(s.KernelComponent(0)).To(Equal([]float64{0, 0, 0}))
	})

	It("rejects non-increasing times", func() {
		_, err := NewSeriesFromSamples([]float64{0, 1, 1}, []float64{1, 2, 3}, nil)
		Expect(err).To(HaveOccurred())
	})

	It("rejects mismatched channel lengths", func() {
		_, err := NewSeriesFromSamples([]float64{0, 1}, []float64{1}, nil)
		Expect(err).To(HaveOccurred())
	})
})
