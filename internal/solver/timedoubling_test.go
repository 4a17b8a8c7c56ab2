package solver

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/glasskit/mctsim/internal/algebra"
)

// zeroKernel removes the memory term, reducing the equation to a plain
// linear ODE with a known solution.
var zeroKernel = KernelFunc(func(f algebra.Value, t float64) algebra.Value {
	return f.ZeroLike()
})

// quadraticKernel is the schematic glass former K = v·F² on a scalar.
func quadraticKernel(v float64) Kernel {
	return KernelFunc(func(f algebra.Value, t float64) algebra.Value {
		s := f.(*algebra.Scalar)
		return &algebra.Scalar{V: v * s.V * s.V}
	})
}

func scalarEquation(alpha, beta, gamma, delta float64, f0, df0 float64, k Kernel, opts ...EquationOption) *Equation {
	eq, err := NewEquation(alpha, beta, gamma, delta,
		&algebra.Scalar{V: f0}, &algebra.Scalar{V: df0}, k, opts...)
	Expect(err).ToNot(HaveOccurred())
	return eq
}

var _ = Describe("Solver", func() {
	Describe("analytic limits", func() {
		It("reproduces exponential decay without memory", func() {
			cfg := Config{Dt: 1e-4, TMax: 10, BlockSize: 32, Tolerance: 1e-10, MaxIterations: 50}
			sol, err := New(cfg)
			Expect(err).ToNot(HaveOccurred())

			eq := scalarEquation(0, 1, 1, 0, 1, 0, zeroKernel)
			series, err := sol.Solve(eq)
			Expect(err).ToNot(HaveOccurred())

			worst := 0.0
			for i := 0; i < series.Len(); i++ {
				diff := math.Abs(series.F(i).(*algebra.Scalar).V - math.Exp(-series.Time(i)))
				if diff > worst {
					worst = diff
				}
			}
			Expect(worst).To(BeNumerically("<", 1e-2))
		})

		It("reproduces undamped oscillation without memory", func() {
			cfg := Config{Dt: 1e-3, TMax: 5, BlockSize: 128, Tolerance: 1e-10, MaxIterations: 50}
			sol, err := New(cfg)
			Expect(err).ToNot(HaveOccurred())

			eq := scalarEquation(1, 0, 1, 0, 1, 0, zeroKernel)
			series, err := sol.Solve(eq)
			Expect(err).ToNot(HaveOccurred())

			worst := 0.0
			for i := 0; i < series.Len(); i++ {
				diff := math.Abs(series.F(i).(*algebra.Scalar).V - math.Cos(series.Time(i)))
				if diff > worst {
					worst = diff
				}
			}
			Expect(worst).To(BeNumerically("<", 5e-2))
		})

		It("tracks a time-dependent forcing through the update hook", func() {
			// F″ + F = t has the solution t + cos t − sin t for F(0)=1, F′(0)=0.
			cfg := Config{Dt: 1e-3, TMax: 5, BlockSize: 128, Tolerance: 1e-10, MaxIterations: 50}
			sol, err := New(cfg)
			Expect(err).ToNot(HaveOccurred())

			eq := scalarEquation(1, 0, 1, 0, 1, 0, zeroKernel,
				WithUpdateHook(func(eq *Equation, t float64) {
					eq.Delta.(*algebra.Scalar).V = -t
				}))
			series, err := sol.Solve(eq)
			Expect(err).ToNot(HaveOccurred())

			worst := 0.0
			for i := 0; i < series.Len(); i++ {
				t := series.Time(i)
				want := t + math.Cos(t) - math.Sin(t)
				diff := math.Abs(series.F(i).(*algebra.Scalar).V - want)
				if diff > worst {
					worst = diff
				}
			}
			Expect(worst).To(BeNumerically("<", 5e-2))
		})

		It("relaxes onto the steady-state plateau in the glass", func() {
			cfg := Config{Dt: 1e-6, TMax: 1e8, BlockSize: 64, Tolerance: 1e-10, MaxIterations: 200}
			sol, err := New(cfg)
			Expect(err).ToNot(HaveOccurred())

			eq := scalarEquation(0, 1, 1, 0, 1, 0, quadraticKernel(5))
			series, err := sol.Solve(eq)
			Expect(err).ToNot(HaveOccurred())

			ss, err := SolveSteadyState(1.0, &algebra.Scalar{V: 1}, quadraticKernel(5))
			Expect(err).ToNot(HaveOccurred())

			last := series.F(series.Len() - 1).(*algebra.Scalar).V
			Expect(last).To(BeNumerically("~", ss.F.(*algebra.Scalar).V, 1e-3))
			Expect(last).To(BeNumerically("~", (5+math.Sqrt(5))/10, 1e-3))
		})
	})

	Describe("grid properties", func() {
		var series *Series
		var sol *Solver

		BeforeEach(func() {
			cfg := Config{Dt: 1e-6, TMax: 1e2, BlockSize: 32, Tolerance: 1e-9, MaxIterations: 100}
			var err error
			sol, err = New(cfg)
			Expect(err).ToNot(HaveOccurred())

			eq := scalarEquation(0, 1, 1, 0, 1, 0, quadraticKernel(2))
			series, err = sol.Solve(eq)
			Expect(err).ToNot(HaveOccurred())
		})

		It("produces strictly increasing times", func() {
			for i := 1; i < series.Len(); i++ {
				Expect(series.Time(i)).To(BeNumerically(">", series.Time(i-1)))
			}
		})

		It("reaches the requested horizon by doubling", func() {
			Expect(series.Time(series.Len() - 1)).To(BeNumerically(">=", 1e2))
			Expect(sol.Stats().Blocks).To(BeNumerically(">", 0))
			Expect(sol.Stats().KernelCalls).To(BeNumerically(">", series.Len()))
		})

		It("leaves earlier samples untouched when solving further", func() {
			cfg := Config{Dt: 1e-6, TMax: 1e4, BlockSize: 32, Tolerance: 1e-9, MaxIterations: 100}
			longSol, err := New(cfg)
			Expect(err).ToNot(HaveOccurred())

			longer, err := longSol.Solve(scalarEquation(0, 1, 1, 0, 1, 0, quadraticKernel(2)))
			Expect(err).ToNot(HaveOccurred())
			Expect(longer.Len()).To(BeNumerically(">", series.Len()))

			for i := 0; i < series.Len(); i++ {
				Expect(longer.Time(i)).To(Equal(series.Time(i)))
				Expect(longer.F(i).(*algebra.Scalar).V).To(Equal(series.F(i).(*algebra.Scalar).V))
			}
		})
	})

	Describe("multi-mode unknowns", func() {
		It("solves a vector of coupled modes", func() {
			perMode := KernelFunc(func(f algebra.Value, t float64) algebra.Value {
				v := f.(algebra.Vector)
				out := make(algebra.Vector, len(v))
				for i := range v {
					out[i] = 0.5*v[i] + 1.5*v[i]*v[i]
				}
				return out
			})

			f0 := algebra.Vector{1, 1}
			df0 := algebra.Vector{0, 0}
			eq, err := NewEquation(0, 1.0, 1.0, 0, f0, df0, perMode)
			Expect(err).ToNot(HaveOccurred())

			cfg := Config{Dt: 1e-5, TMax: 1e3, BlockSize: 32, Tolerance: 1e-9, MaxIterations: 100}
			sol, err := New(cfg)
			Expect(err).ToNot(HaveOccurred())

			series, err := sol.Solve(eq)
			Expect(err).ToNot(HaveOccurred())

			last := series.F(series.Len() - 1).(algebra.Vector)
			for i := range last {
				Expect(last[i]).To(BeNumerically("<", 1e-3))
				Expect(last[i]).To(BeNumerically(">=", -1e-6))
			}
		})
	})

	Describe("failure reporting", func() {
		It("rejects an equation with no time derivative at all", func() {
			eq := scalarEquation(0, 0, 1, 0, 1, 0, zeroKernel)
			sol, err := New(DefaultConfig())
			Expect(err).ToNot(HaveOccurred())

			_, err = sol.Solve(eq)
			var cfgErr *ConfigurationError
			Expect(errors.As(err, &cfgErr)).To(BeTrue())
		})

		It("rejects invalid solver settings", func() {
			_, err := New(Config{Dt: 1e-10, TMax: 1, BlockSize: 7, Tolerance: 1e-8, MaxIterations: 10})
			var cfgErr *ConfigurationError
			Expect(errors.As(err, &cfgErr)).To(BeTrue())
			Expect(cfgErr.Field).To(Equal("BlockSize"))
		})

		It("rejects a kernel of the wrong shape", func() {
			badKernel := KernelFunc(func(f algebra.Value, t float64) algebra.Value {
				return algebra.Vector{1, 2}
			})
			eq := scalarEquation(0, 1, 1, 0, 1, 0, badKernel)

			sol, err := New(DefaultConfig())
			Expect(err).ToNot(HaveOccurred())

			_, err = sol.Solve(eq)
			Expect(errors.Is(err, algebra.ErrShapeMismatch)).To(BeTrue())
		})

		It("reports the failing time and returns the partial series", func() {
			cfg := Config{Dt: 1e-6, TMax: 1, BlockSize: 32, Tolerance: 1e-12, MaxIterations: 1}
			sol, err := New(cfg)
			Expect(err).ToNot(HaveOccurred())

			eq := scalarEquation(0, 1, 1, 0, 1, 0, quadraticKernel(5))
			series, err := sol.Solve(eq)

			var convErr *ConvergenceError
			Expect(errors.As(err, &convErr)).To(BeTrue())
			Expect(convErr.Time).To(BeNumerically(">", 0))
			Expect(convErr.Iterations).To(Equal(1))
			Expect(errors.Is(err, ErrNoConvergence)).To(BeTrue())

			Expect(series).ToNot(BeNil())
			Expect(series.Len()).To(Equal(17))
		})

		It("calls the block hook with consistent snapshots", func() {
			var events []BlockEvent
			cfg := Config{Dt: 1e-6, TMax: 1e-3, BlockSize: 32, Tolerance: 1e-9, MaxIterations: 100,
				OnBlock: func(ev BlockEvent) { events = append(events, ev) }}
			sol, err := New(cfg)
			Expect(err).ToNot(HaveOccurred())

			_, err = sol.Solve(scalarEquation(0, 1, 1, 0, 1, 0, quadraticKernel(2)))
			Expect(err).ToNot(HaveOccurred())

			Expect(events).ToNot(BeEmpty())
			for i, ev := range events {
				Expect(ev.Block).To(Equal(i + 1))
				Expect(ev.Times).To(HaveLen(len(ev.Component)))
			}
			Expect(events[len(events)-1].StepSize).To(BeNumerically(">", 1e-6))
		})
	})
})
