package config

var Presets = map[string]map[string]*Config{
	"f12": {
		"liquid": {
			Model:        "f12",
			Kernel:       KernelConfig{V1: 0.5, V2: 2.0},
			Coefficients: CoeffConfig{Beta: 1.0, Gamma: 1.0},
			F0:           1.0,
		},
		"glass": {
			Model:        "f12",
			Kernel:       KernelConfig{V1: 1.0, V2: 5.0},
			Coefficients: CoeffConfig{Beta: 1.0, Gamma: 1.0},
			F0:           1.0,
		},
		"underdamped": {
			Model:        "f12",
			Kernel:       KernelConfig{V1: 0.5, V2: 2.0},
			Coefficients: CoeffConfig{Alpha: 1.0, Beta: 1.0, Gamma: 1.0},
			F0:           1.0,
		},
	},
	"f2": {
		"critical": {
			Model:        "f2",
			Kernel:       KernelConfig{V2: 4.0},
			Coefficients: CoeffConfig{Beta: 1.0, Gamma: 1.0},
			F0:           1.0,
		},
		"glass": {
			Model:        "f2",
			Kernel:       KernelConfig{V2: 5.0},
			Coefficients: CoeffConfig{Beta: 1.0, Gamma: 1.0},
			F0:           1.0,
		},
	},
	"f1": {
		"critical": {
			Model:        "f12",
			Kernel:       KernelConfig{V1: 1.0},
			Coefficients: CoeffConfig{Beta: 1.0, Gamma: 1.0},
			F0:           1.0,
		},
	},
	"exponential": {
		"debye": {
			Model:        "exponential",
			Kernel:       KernelConfig{Lambda: 1.0, Tau: 1.0},
			Coefficients: CoeffConfig{Beta: 1.0, Gamma: 1.0},
			F0:           1.0,
		},
	},
	"modevector": {
		"two-mode": {
			Model:        "modevector",
			Kernel:       KernelConfig{V1s: []float64{0.5, 0.3}, V2s: []float64{2.0, 1.5}},
			Coefficients: CoeffConfig{Beta: 1.0, Gamma: 1.0},
			F0:           1.0,
		},
	},
}

// GetPreset returns a copy of the named preset with solver defaults
// filled in, or nil when it does not exist.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	src, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	cfg := *src
	if cfg.Solver == (SolverConfig{}) {
		cfg.Solver = DefaultConfig().Solver
	}
	return &cfg
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	return names
}
