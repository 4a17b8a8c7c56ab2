package solver

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/glasskit/mctsim/internal/algebra"
)

var _ = Describe("SolveSteadyState", func() {
	It("finds the non-ergodic plateau of the quadratic model", func() {
		// f = v f²/(1+v f²) has the upper root (v+√(v²−4v))/(2v); for
		// v=5 that is (5+√5)/10.
		ss, err := SolveSteadyState(1.0, &algebra.Scalar{V: 1}, quadraticKernel(5),
			WithTolerance(1e-12))
		Expect(err).ToNot(HaveOccurred())

		Expect(ss.F.(*algebra.Scalar).V).To(BeNumerically("~", (5+math.Sqrt(5))/10, 1e-6))
		Expect(ss.Residual).To(BeNumerically("<", 1e-12))
		Expect(ss.Iterations).To(BeNumerically(">", 0))
		Expect(ss.K.(*algebra.Scalar).V).To(BeNumerically("~", 5*math.Pow((5+math.Sqrt(5))/10, 2), 1e-5))
	})

	It("collapses to zero in the liquid", func() {
		ss, err := SolveSteadyState(1.0, &algebra.Scalar{V: 1}, quadraticKernel(2))
		Expect(err).ToNot(HaveOccurred())
		Expect(math.Abs(ss.F.(*algebra.Scalar).V)).To(BeNumerically("<", 1e-6))
	})

	It("honors the initial guess option", func() {
		ss, err := SolveSteadyState(1.0, &algebra.Scalar{V: 1}, quadraticKernel(5),
			WithInitialGuess(&algebra.Scalar{V: 0.9}))
		Expect(err).ToNot(HaveOccurred())
		Expect(ss.F.(*algebra.Scalar).V).To(BeNumerically("~", (5+math.Sqrt(5))/10, 1e-6))
	})

	It("solves per-mode fixed points on a vector", func() {
		perMode := KernelFunc(func(f algebra.Value, t float64) algebra.Value {
			v := f.(algebra.Vector)
			out := make(algebra.Vector, len(v))
			for i := range v {
				out[i] = 5 * v[i] * v[i]
			}
			return out
		})
		ss, err := SolveSteadyState(1.0, algebra.Vector{1, 1}, perMode)
		Expect(err).ToNot(HaveOccurred())

		f := ss.F.(algebra.Vector)
		for i := range f {
			Expect(f[i]).To(BeNumerically("~", (5+math.Sqrt(5))/10, 1e-6))
		}
	})

	It("fails with a convergence error at t=∞ when the budget runs out", func() {
		_, err := SolveSteadyState(1.0, &algebra.Scalar{V: 1}, quadraticKernel(5),
			WithMaxIterations(1), WithTolerance(1e-14))

		var convErr *ConvergenceError
		Expect(errors.As(err, &convErr)).To(BeTrue())
		Expect(math.IsInf(convErr.Time, 1)).To(BeTrue())
	})

	It("rejects a nil kernel", func() {
		_, err := SolveSteadyState(1.0, &algebra.Scalar{V: 1}, nil)
		var cfgErr *ConfigurationError
		Expect(errors.As(err, &cfgErr)).To(BeTrue())
	})

	It("rejects a guess of the wrong shape", func() {
		_, err := SolveSteadyState(1.0, &algebra.Scalar{V: 1}, quadraticKernel(5),
			WithInitialGuess(algebra.Vector{1, 2}))
		Expect(errors.Is(err, algebra.ErrShapeMismatch)).To(BeTrue())
	})
})
