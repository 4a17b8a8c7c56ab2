package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/glasskit/mctsim/internal/analysis"
	"github.com/glasskit/mctsim/internal/config"
	"github.com/glasskit/mctsim/internal/kernels"
	"github.com/glasskit/mctsim/internal/optim"
	"github.com/glasskit/mctsim/internal/solver"
	"github.com/glasskit/mctsim/internal/storage"
	"github.com/glasskit/mctsim/internal/tui"
	"github.com/glasskit/mctsim/internal/viz"
)

var (
	dataDir string
	// kernel couplings
	v1     float64
	v2     float64
	lambda float64
	tau    float64
	vs     float64
	// equation coefficients
	alpha float64
	beta  float64
	gamma float64
	delta float64
	f0    float64
	df0   float64
	// grid and fixed point
	dt      float64
	tMax    float64
	block   int
	tol     float64
	maxIter int
	verbose bool
	noSave  bool
	// config file and preset
	configFile string
	preset     string
	// relaxation time
	threshold float64
	logInterp bool
	component int
	// critical search
	lo, hi        float64
	plateauHeight float64
	accuracy      float64
	// sweep
	from, to float64
	points   int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mctsim",
		Short: "mode-coupling theory correlator lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mctsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "solve the memory equation over the full time grid",
		Args:  cobra.ExactArgs(1),
		RunE:  runSolve,
	}
	addModelFlags(runCmd)
	addSolverFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	steadyCmd := &cobra.Command{
		Use:   "steady [model]",
		Short: "solve the t=∞ fixed point",
		Args:  cobra.ExactArgs(1),
		RunE:  runSteady,
	}
	addModelFlags(steadyCmd)
	steadyCmd.Flags().Float64Var(&tol, "tol", 1e-10, "fixed point tolerance")
	steadyCmd.Flags().IntVar(&maxIter, "max-iter", 10000, "fixed point iteration budget")
	steadyCmd.Flags().BoolVar(&verbose, "verbose", false, "print per-iteration residuals")

	relaxCmd := &cobra.Command{
		Use:   "relax [run_id]",
		Short: "extract the relaxation time of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  runRelax,
	}
	relaxCmd.Flags().Float64Var(&threshold, "threshold", analysis.DefaultThreshold, "decay threshold")
	relaxCmd.Flags().BoolVar(&logInterp, "log", true, "interpolate the crossing in log time")
	relaxCmd.Flags().IntVar(&component, "component", 0, "correlator component")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlot,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSONStdout(args[0])
		},
	}

	criticalCmd := &cobra.Command{
		Use:   "critical [model]",
		Short: "locate the glass transition coupling",
		Args:  cobra.ExactArgs(1),
		RunE:  runCritical,
	}
	addModelFlags(criticalCmd)
	criticalCmd.Flags().Float64Var(&lo, "lo", 1.0, "lower bracket of the coupling")
	criticalCmd.Flags().Float64Var(&hi, "hi", 8.0, "upper bracket of the coupling")
	criticalCmd.Flags().Float64Var(&plateauHeight, "plateau", 0.1, "plateau height marking the glass")
	criticalCmd.Flags().Float64Var(&accuracy, "accuracy", 1e-4, "bracket accuracy")

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "steady-state plateau over a range of couplings",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	addModelFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&from, "from", 1.0, "first coupling")
	sweepCmd.Flags().Float64Var(&to, "to", 8.0, "last coupling")
	sweepCmd.Flags().IntVar(&points, "points", 15, "number of couplings")

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "solve with a live terminal view",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addModelFlags(liveCmd)
	addSolverFlags(liveCmd)
	liveCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	coupledCmd := &cobra.Command{
		Use:   "coupled [run_id]",
		Short: "solve a tagged correlator driven by a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  runCoupled,
	}
	coupledCmd.Flags().Float64Var(&vs, "vs", 15.0, "coupling to the base correlator")
	addSolverFlags(coupledCmd)
	coupledCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, steadyCmd, relaxCmd, plotCmd, listCmd, exportCmd,
		criticalCmd, sweepCmd, liveCmd, coupledCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&v1, "v1", 0.0, "linear coupling")
	cmd.Flags().Float64Var(&v2, "v2", config.DefaultV2, "quadratic coupling")
	cmd.Flags().Float64Var(&lambda, "lambda", 1.0, "kernel amplitude (exponential)")
	cmd.Flags().Float64Var(&tau, "tau", config.DefaultTau, "kernel decay time (exponential)")
	cmd.Flags().Float64Var(&alpha, "alpha", 0.0, "inertial coefficient")
	cmd.Flags().Float64Var(&beta, "beta", 1.0, "damping coefficient")
	cmd.Flags().Float64Var(&gamma, "gamma", 1.0, "restoring coefficient")
	cmd.Flags().Float64Var(&delta, "delta", 0.0, "constant forcing")
	cmd.Flags().Float64Var(&f0, "f0", 1.0, "initial value")
	cmd.Flags().Float64Var(&df0, "df0", 0.0, "initial derivative")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

func addSolverFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "initial step size")
	cmd.Flags().Float64Var(&tMax, "tmax", config.DefaultTMax, "simulated time to reach")
	cmd.Flags().IntVar(&block, "block", config.DefaultBlockSize, "samples per block")
	cmd.Flags().Float64Var(&tol, "tol", config.DefaultTolerance, "fixed point tolerance")
	cmd.Flags().IntVar(&maxIter, "max-iter", config.DefaultMaxIter, "fixed point iteration budget")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "print per-block diagnostics")
}

// buildConfig layers preset, config file and flags, flags winning.
func buildConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	cfg.Model = model

	f := cmd.Flags()
	if f.Changed("v1") {
		cfg.Kernel.V1 = v1
	}
	if f.Changed("v2") {
		cfg.Kernel.V2 = v2
	}
	if f.Changed("lambda") {
		cfg.Kernel.Lambda = lambda
	}
	if f.Changed("tau") {
		cfg.Kernel.Tau = tau
	}
	if f.Changed("alpha") {
		cfg.Coefficients.Alpha = alpha
	}
	if f.Changed("beta") {
		cfg.Coefficients.Beta = beta
	}
	if f.Changed("gamma") {
		cfg.Coefficients.Gamma = gamma
	}
	if f.Changed("delta") {
		cfg.Coefficients.Delta = delta
	}
	if f.Changed("f0") {
		cfg.F0 = f0
	}
	if f.Changed("df0") {
		cfg.DF0 = df0
	}
	if f.Changed("dt") {
		cfg.Solver.Dt = dt
	}
	if f.Changed("tmax") {
		cfg.Solver.TMax = tMax
	}
	if f.Changed("block") {
		cfg.Solver.BlockSize = block
	}
	if f.Changed("tol") {
		cfg.Solver.Tolerance = tol
	}
	if f.Changed("max-iter") {
		cfg.Solver.MaxIterations = maxIter
	}
	return cfg, nil
}

func couplingsOf(cfg *config.Config) map[string]float64 {
	switch cfg.Model {
	case "exponential":
		return map[string]float64{"lambda": cfg.Kernel.Lambda, "tau": cfg.Kernel.Tau}
	case "modevector":
		return nil
	default:
		return map[string]float64{"v1": cfg.Kernel.V1, "v2": cfg.Kernel.V2}
	}
}

func coefficientsOf(cfg *config.Config) map[string]float64 {
	return map[string]float64{
		"alpha": cfg.Coefficients.Alpha,
		"beta":  cfg.Coefficients.Beta,
		"gamma": cfg.Coefficients.Gamma,
		"delta": cfg.Coefficients.Delta,
	}
}

func saveRun(cfg *config.Config, series *solver.Series, stats solver.Stats) (string, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return "", err
	}
	meta := storage.RunMetadata{
		Model:          cfg.Model,
		Dt:             cfg.Solver.Dt,
		TMax:           cfg.Solver.TMax,
		BlockSize:      cfg.Solver.BlockSize,
		Couplings:      couplingsOf(cfg),
		Coefficients:   coefficientsOf(cfg),
		RelaxationTime: relaxationTimeOf(series),
	}
	return st.Save(meta, series, stats)
}

// relaxationTimeOf returns the 1/e decay time of the first component, or
// zero when the correlator never decays within the grid.
func relaxationTimeOf(series *solver.Series) float64 {
	tauR, err := analysis.RelaxationTime(series.Times(), series.Component(0),
		analysis.DefaultThreshold, analysis.InterpLog)
	if err != nil || math.IsInf(tauR, 1) {
		return 0
	}
	return tauR
}

func printSolveSummary(series *solver.Series, stats solver.Stats, elapsed time.Duration) {
	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("samples: %d\n", series.Len())
	fmt.Printf("final time: %.3e\n", series.Time(series.Len()-1))
	fmt.Printf("blocks: %d\n", stats.Blocks)
	fmt.Printf("kernel calls: %d\n", stats.KernelCalls)
	fmt.Printf("fixed point iterations: %d\n", stats.TotalIterations)

	tauR, err := analysis.RelaxationTime(series.Times(), series.Component(0),
		analysis.DefaultThreshold, analysis.InterpLog)
	if err == nil {
		if math.IsInf(tauR, 1) {
			fmt.Println("relaxation time: none (non-ergodic within the grid)")
		} else {
			fmt.Printf("relaxation time: %.3e\n", tauR)
		}
	}
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	eq, err := cfg.BuildEquation()
	if err != nil {
		return err
	}
	scfg := cfg.SolverConfig()
	scfg.Verbose = verbose

	sol, err := solver.New(scfg)
	if err != nil {
		return err
	}

	fmt.Printf("solving %s...\n", cfg.Model)
	start := time.Now()
	series, err := sol.Solve(eq)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if !noSave {
		runID, err := saveRun(cfg, series, sol.Stats())
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	printSolveSummary(series, sol.Stats(), elapsed)
	return nil
}

func runSteady(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	k, err := cfg.BuildKernel()
	if err != nil {
		return err
	}

	ss, err := solver.SolveSteadyState(cfg.Coefficients.Gamma, cfg.InitialValue(), k,
		solver.WithTolerance(tol),
		solver.WithMaxIterations(maxIter),
		solver.WithVerbose(verbose),
	)
	if err != nil {
		return err
	}

	fmt.Printf("model: %s\n", cfg.Model)
	fmt.Printf("iterations: %d\n", ss.Iterations)
	fmt.Printf("residual: %.3e\n", ss.Residual)
	for i, v := range ss.F.Flatten() {
		fmt.Printf("f[%d] = %.8f\n", i, v)
	}
	return nil
}

func runRelax(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	times, f, _, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if component < 0 || component >= len(f) {
		return fmt.Errorf("component %d out of range (run has %d)", component, len(f))
	}

	mode := analysis.InterpLinear
	if logInterp {
		mode = analysis.InterpLog
	}
	tauR, err := analysis.RelaxationTime(times, f[component], threshold, mode)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("threshold: %.4f\n", threshold)
	if math.IsInf(tauR, 1) {
		fmt.Println("relaxation time: none (correlator never decays below threshold)")
	} else {
		fmt.Printf("relaxation time: %.6e\n", tauR)
	}
	return nil
}

func runPlot(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	times, f, _, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d\n\n", len(times))
	fmt.Println(viz.PlotColumns(times, f, viz.DefaultPlotOptions()))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tSAMPLES\tFINAL_T\tBLOCKS\tDT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2e\t%d\t%.2e\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Samples,
			run.FinalTime,
			run.Blocks,
			run.Dt,
		)
	}
	return w.Flush()
}

func runCritical(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	if _, err := cfg.BuildKernel(); err != nil {
		return err
	}

	p := optim.PlateauFunc(cfg.Coefficients.Gamma, cfg.InitialValue(), func(v float64) solver.Kernel {
		c := *cfg
		c.Kernel.V2 = v
		k, _ := c.BuildKernel()
		return k
	})

	rcfg := optim.DefaultRootConfig()
	rcfg.Accuracy = accuracy

	fmt.Printf("searching for the transition of %s in v2 ∈ [%g, %g]...\n", cfg.Model, lo, hi)
	start := time.Now()
	vc, err := optim.CriticalCoupling(lo, hi, p, plateauHeight, rcfg)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n", time.Since(start))
	fmt.Printf("critical coupling: v2 = %.6f\n", vc)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	if _, err := cfg.BuildKernel(); err != nil {
		return err
	}
	if points < 2 {
		return fmt.Errorf("need at least 2 points, got %d", points)
	}

	couplings := make([]float64, points)
	for i := range couplings {
		couplings[i] = from + float64(i)*(to-from)/float64(points-1)
	}

	p := optim.PlateauFunc(cfg.Coefficients.Gamma, cfg.InitialValue(), func(v float64) solver.Kernel {
		c := *cfg
		c.Kernel.V2 = v
		k, _ := c.BuildKernel()
		return k
	})

	heights, err := optim.Sweep(couplings, p)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "V2\tPLATEAU\tPHASE")
	for i, v := range couplings {
		phase := "liquid"
		if heights[i] > 1e-6 {
			phase = "glass"
		}
		fmt.Fprintf(w, "%.4f\t%.6f\t%s\n", v, heights[i], phase)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	eq, err := cfg.BuildEquation()
	if err != nil {
		return err
	}

	series, err := tui.Run(cfg.Model, eq, cfg.SolverConfig())
	if err != nil {
		return err
	}
	if series != nil && !noSave {
		runID, err := saveRun(cfg, series, solver.Stats{})
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	return nil
}

// runCoupled solves a second correlator whose memory kernel is driven by
// the correlator of a stored run, the tagged-particle construction.
func runCoupled(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	base, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	cfg.Model = "coupled"
	k := kernels.NewSjogren(vs, base)

	eq, err := solver.NewEquation(0, 1.0, 1.0, 0,
		cfg.InitialValue(), cfg.InitialDerivative(), k)
	if err != nil {
		return err
	}

	scfg := cfg.SolverConfig()
	f := cmd.Flags()
	if f.Changed("dt") {
		scfg.Dt = dt
	}
	if f.Changed("tmax") {
		scfg.TMax = tMax
	}
	if f.Changed("block") {
		scfg.BlockSize = block
	}
	if f.Changed("tol") {
		scfg.Tolerance = tol
	}
	if f.Changed("max-iter") {
		scfg.MaxIterations = maxIter
	}
	scfg.Verbose = verbose

	sol, err := solver.New(scfg)
	if err != nil {
		return err
	}

	fmt.Printf("solving tagged correlator against %s (vs=%g)...\n", args[0], vs)
	start := time.Now()
	series, err := sol.Solve(eq)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if !noSave {
		meta := storage.RunMetadata{
			Model:          cfg.Model,
			Dt:             scfg.Dt,
			TMax:           scfg.TMax,
			BlockSize:      scfg.BlockSize,
			Couplings:      map[string]float64{"vs": vs},
			Coefficients:   map[string]float64{"beta": 1, "gamma": 1},
			RelaxationTime: relaxationTimeOf(series),
		}
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(meta, series, sol.Stats())
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	printSolveSummary(series, sol.Stats(), elapsed)
	return nil
}
