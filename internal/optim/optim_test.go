package optim

import (
	"math"
	"testing"

	"github.com/glasskit/mctsim/internal/algebra"
	"github.com/glasskit/mctsim/internal/kernels"
	"github.com/glasskit/mctsim/internal/solver"
)

func TestRegulaFalsiLinear(t *testing.T) {
	root := RegulaFalsi(0, 2, func(x float64) float64 { return x - 1 }, DefaultRootConfig())
	if math.Abs(root-1) > 1e-10 {
		t.Errorf("root = %v, want 1", root)
	}
}

func TestRegulaFalsiNonlinear(t *testing.T) {
	root := RegulaFalsi(0, 2, func(x float64) float64 { return x*x - 2 }, DefaultRootConfig())
	if math.Abs(root-math.Sqrt2) > 1e-8 {
		t.Errorf("root = %v, want sqrt(2)", root)
	}
}

func TestRegulaFalsiReversedBracket(t *testing.T) {
	root := RegulaFalsi(2, 0, func(x float64) float64 { return x - 0.5 }, DefaultRootConfig())
	if math.Abs(root-0.5) > 1e-10 {
		t.Errorf("root = %v, want 0.5", root)
	}
}

func TestRegulaFalsiStepObjective(t *testing.T) {
	// A discontinuous sign change, the shape CriticalCoupling produces
	// at a fold transition. The secant guess stays interior, so the
	// bracket still collapses onto the jump.
	jump := 0.7
	cfg := RootConfig{Accuracy: 1e-6, MaxIterations: 200}
	root := RegulaFalsi(0, 1, func(x float64) float64 {
		if x < jump {
			return -0.25
		}
		return 0.33
	}, cfg)
	if math.Abs(root-jump) > 1e-4 {
		t.Errorf("root = %v, want near %v", root, jump)
	}
}

func schematicPlateau(t *testing.T) Plateau {
	t.Helper()
	f0 := &algebra.Scalar{V: 1}
	return PlateauFunc(1.0, f0, func(v float64) solver.Kernel {
		return kernels.NewSchematicF2(v)
	}, solver.WithTolerance(1e-12))
}

func TestCriticalCouplingSchematic(t *testing.T) {
	// The quadratic schematic model loses ergodicity at coupling 4,
	// where the plateau jumps from 0 to 1/2.
	p := schematicPlateau(t)
	cfg := RootConfig{Accuracy: 1e-4, MaxIterations: 100}
	vc, err := CriticalCoupling(3, 5, p, 0.25, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(vc-4) > 0.05 {
		t.Errorf("critical coupling = %v, want near 4", vc)
	}
}

func TestSweepSchematic(t *testing.T) {
	p := schematicPlateau(t)
	couplings := []float64{2, 3, 4.5, 6}
	heights, err := Sweep(couplings, p)
	if err != nil {
		t.Fatal(err)
	}
	if heights[0] > 1e-6 || heights[1] > 1e-6 {
		t.Errorf("plateau below the transition = %v, want ~0", heights[:2])
	}
	if heights[2] < 0.5 || heights[3] < heights[2] {
		t.Errorf("plateau above the transition = %v, want at least 0.5 and increasing", heights[2:])
	}
}
