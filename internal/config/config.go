package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/glasskit/mctsim/internal/algebra"
	"github.com/glasskit/mctsim/internal/kernels"
	"github.com/glasskit/mctsim/internal/solver"
)

const (
	DefaultDt        = 1e-10
	DefaultTMax      = 1e10
	DefaultBlockSize = 32
	DefaultTolerance = 1e-8
	DefaultMaxIter   = 100
	DefaultV2        = 2.0
	DefaultTau       = 1.0
)

type Config struct {
	Model        string       `yaml:"model"`
	Kernel       KernelConfig `yaml:"kernel"`
	Coefficients CoeffConfig  `yaml:"coefficients"`
	F0           float64      `yaml:"f0"`
	DF0          float64      `yaml:"df0"`
	Solver       SolverConfig `yaml:"solver"`
}

type KernelConfig struct {
	V1     float64   `yaml:"v1"`
	V2     float64   `yaml:"v2"`
	Lambda float64   `yaml:"lambda"`
	Tau    float64   `yaml:"tau"`
	V1s    []float64 `yaml:"v1s"`
	V2s    []float64 `yaml:"v2s"`
}

type CoeffConfig struct {
	Alpha float64 `yaml:"alpha"`
	Beta  float64 `yaml:"beta"`
	Gamma float64 `yaml:"gamma"`
	Delta float64 `yaml:"delta"`
}

type SolverConfig struct {
	Dt            float64 `yaml:"dt"`
	TMax          float64 `yaml:"t_max"`
	BlockSize     int     `yaml:"block_size"`
	Tolerance     float64 `yaml:"tolerance"`
	MaxIterations int     `yaml:"max_iterations"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:        "f12",
		Kernel:       KernelConfig{V2: DefaultV2, Tau: DefaultTau},
		Coefficients: CoeffConfig{Beta: 1.0, Gamma: 1.0},
		F0:           1.0,
		Solver: SolverConfig{
			Dt:            DefaultDt,
			TMax:          DefaultTMax,
			BlockSize:     DefaultBlockSize,
			Tolerance:     DefaultTolerance,
			MaxIterations: DefaultMaxIter,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// BuildKernel constructs the memory kernel the model names. The sjogren
// model is excluded here because it needs an already-solved base
// correlator; the CLI wires that one directly.
func (c *Config) BuildKernel() (solver.Kernel, error) {
	switch c.Model {
	case "f12", "schematic":
		return kernels.NewSchematic(c.Kernel.V1, c.Kernel.V2), nil
	case "f2":
		return kernels.NewSchematicF2(c.Kernel.V2), nil
	case "exponential":
		if c.Kernel.Tau <= 0 {
			return nil, fmt.Errorf("model exponential: tau must be positive, got %g", c.Kernel.Tau)
		}
		return kernels.NewExponential(c.Kernel.Lambda, c.Kernel.Tau), nil
	case "modevector":
		if len(c.Kernel.V1s) == 0 || len(c.Kernel.V1s) != len(c.Kernel.V2s) {
			return nil, fmt.Errorf("model modevector: v1s and v2s must be non-empty and equal length, got %d and %d",
				len(c.Kernel.V1s), len(c.Kernel.V2s))
		}
		return kernels.NewModeVector(c.Kernel.V1s, c.Kernel.V2s), nil
	default:
		return nil, fmt.Errorf("unknown model %q", c.Model)
	}
}

// InitialValue returns F0 in the shape the model works in: a scalar for
// the schematic models, a uniform vector for the mode-resolved one.
func (c *Config) InitialValue() algebra.Value {
	if c.Model == "modevector" {
		v := make(algebra.Vector, len(c.Kernel.V1s))
		for i := range v {
			v[i] = c.F0
		}
		return v
	}
	return &algebra.Scalar{V: c.F0}
}

// InitialDerivative returns ∂F0 in the same shape as InitialValue.
func (c *Config) InitialDerivative() algebra.Value {
	if c.Model == "modevector" {
		v := make(algebra.Vector, len(c.Kernel.V1s))
		for i := range v {
			v[i] = c.DF0
		}
		return v
	}
	return &algebra.Scalar{V: c.DF0}
}

// BuildEquation assembles the full memory equation from the config.
func (c *Config) BuildEquation() (*solver.Equation, error) {
	k, err := c.BuildKernel()
	if err != nil {
		return nil, err
	}
	return solver.NewEquation(
		c.Coefficients.Alpha, c.Coefficients.Beta, c.Coefficients.Gamma, c.Coefficients.Delta,
		c.InitialValue(), c.InitialDerivative(), k)
}

// SolverConfig translates the YAML block into solver settings.
func (c *Config) SolverConfig() solver.Config {
	out := solver.DefaultConfig()
	if c.Solver.Dt > 0 {
		out.Dt = c.Solver.Dt
	}
	if c.Solver.TMax > 0 {
		out.TMax = c.Solver.TMax
	}
	if c.Solver.BlockSize > 0 {
		out.BlockSize = c.Solver.BlockSize
	}
	if c.Solver.Tolerance > 0 {
		out.Tolerance = c.Solver.Tolerance
	}
	if c.Solver.MaxIterations > 0 {
		out.MaxIterations = c.Solver.MaxIterations
	}
	return out
}
