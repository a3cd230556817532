package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/montanaflynn/stats"
	"github.com/spf13/cobra"

	"github.com/aruna-lab/redoxsim/internal/analysis"
	"github.com/aruna-lab/redoxsim/internal/config"
	"github.com/aruna-lab/redoxsim/internal/metrics"
	"github.com/aruna-lab/redoxsim/internal/operator"
	"github.com/aruna-lab/redoxsim/internal/proteo"
	"github.com/aruna-lab/redoxsim/internal/sim"
	"github.com/aruna-lab/redoxsim/internal/store"
	"github.com/aruna-lab/redoxsim/internal/topology"
	"github.com/aruna-lab/redoxsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string

	sites          int
	initial        string
	steps          int
	population     float64
	ensembleSize   int
	resamplePeriod int
	selfLoops      bool
	oxBias         float64
	selfWeight     float64
	seed           int64

	perturbation float64
	renormEvery  int
	perturbTo    string

	poincareLag int

	sweepParam   string
	sweepMin     float64
	sweepMax     float64
	sweepPoints  int
	sweepTail    int
	sweepWorkers int

	outPath   string
	xlsxPath  string
	frameRate int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "redoxsim",
		Short: "proteoform oxidation chaos lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".redoxsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a population evolution",
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)

	transCmd := &cobra.Command{
		Use:   "transitions",
		Short: "export the transition topology table",
		RunE:  exportTransitions,
	}
	transCmd.Flags().IntVar(&sites, "sites", config.DefaultSites, "number of cysteine sites")
	transCmd.Flags().BoolVar(&selfLoops, "self-loops", false, "include identity transitions in the allowed set")
	transCmd.Flags().StringVar(&outPath, "out", "", "CSV output path (stdout when empty)")
	transCmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write an xlsx workbook to this path")

	lyapunovCmd := &cobra.Command{
		Use:   "lyapunov",
		Short: "estimate the largest Lyapunov exponent",
		RunE:  runLyapunov,
	}
	addSimFlags(lyapunovCmd)
	addLyapunovFlags(lyapunovCmd)

	poincareCmd := &cobra.Command{
		Use:   "poincare",
		Short: "plot a Poincaré return map of the mean oxidation level",
		RunE:  runPoincare,
	}
	addSimFlags(poincareCmd)
	addPoincareFlags(poincareCmd)

	bifCmd := &cobra.Command{
		Use:   "bifurcation",
		Short: "sweep a control parameter and plot the attractor",
		RunE:  runBifurcation,
	}
	addSimFlags(bifCmd)
	addBifurcationFlags(bifCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with live terminal visualization",
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run's metric series",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRunJSON,
	}
	exportJSONCmd.Flags().StringVar(&outPath, "out", "", "output path (stdout when empty)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, transCmd, lyapunovCmd, poincareCmd, bifCmd, liveCmd, listCmd, plotCmd, exportJSONCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&sites, "sites", config.DefaultSites, "number of cysteine sites")
	cmd.Flags().StringVar(&initial, "init", "000", "initial proteoform bit-string")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of evolution steps")
	cmd.Flags().Float64Var(&population, "pop", config.DefaultPopulation, "initial population mass")
	cmd.Flags().IntVar(&ensembleSize, "ensemble", config.DefaultEnsemble, "operator ensemble size")
	cmd.Flags().IntVar(&resamplePeriod, "resample", config.DefaultResamplePeriod, "operator resampling period in steps")
	cmd.Flags().BoolVar(&selfLoops, "self-loops", false, "include identity transitions in the allowed set")
	cmd.Flags().Float64Var(&oxBias, "oxbias", config.DefaultOxBias, "bias toward oxidizing transitions [0,1]")
	cmd.Flags().Float64Var(&selfWeight, "selfweight", config.DefaultSelfWeight, "self-loop weight scale")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

func addLyapunovFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&perturbation, "eps", config.DefaultPerturbation, "twin-trajectory perturbation mass")
	cmd.Flags().IntVar(&renormEvery, "renorm", config.DefaultRenormEvery, "perturbed-twin renormalization period (0 disables)")
	cmd.Flags().StringVar(&perturbTo, "perturb-to", "", "proteoform receiving the perturbation (default: first allowed neighbor)")
}

func addPoincareFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&poincareLag, "lag", config.DefaultPoincareLag, "return-map lag in steps")
}

func addBifurcationFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sweepParam, "param", "oxbias", "operator parameter to sweep")
	cmd.Flags().Float64Var(&sweepMin, "min", 0.05, "sweep lower bound")
	cmd.Flags().Float64Var(&sweepMax, "max", 0.95, "sweep upper bound")
	cmd.Flags().IntVar(&sweepPoints, "points", 25, "grid resolution")
	cmd.Flags().IntVar(&sweepTail, "tail", 50, "attractor samples per grid point")
	cmd.Flags().IntVar(&sweepWorkers, "workers", 1, "parallel grid workers")
}

// buildConfig resolves preset, config file and flags in that order, the
// same precedence the flags themselves document: explicit flags win.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		clone := *p
		cfg = &clone
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("sites") {
		cfg.Sites = sites
	}
	if flags.Changed("init") {
		cfg.Initial = initial
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("pop") {
		cfg.Population = population
	}
	if flags.Changed("ensemble") {
		cfg.Ensemble = ensembleSize
	}
	if flags.Changed("resample") {
		cfg.ResamplePeriod = resamplePeriod
	}
	if flags.Changed("self-loops") {
		cfg.SelfLoops = selfLoops
	}
	if flags.Changed("oxbias") {
		cfg.OxBias = oxBias
	}
	if flags.Changed("selfweight") {
		cfg.SelfWeight = selfWeight
	}
	if cfg.Seed == 0 || flags.Changed("seed") {
		cfg.Seed = seed
	}

	// Diagnostic flags only exist on the commands that register them;
	// Changed reports false for the rest, leaving the preset or config
	// file value in place.
	if flags.Changed("eps") {
		cfg.Lyapunov.Perturbation = perturbation
	}
	if flags.Changed("renorm") {
		cfg.Lyapunov.RenormEvery = renormEvery
	}
	if flags.Changed("lag") {
		cfg.Poincare.Lag = poincareLag
	}
	if flags.Changed("param") {
		cfg.Bifurcation.Param = sweepParam
	}
	if flags.Changed("min") {
		cfg.Bifurcation.Min = sweepMin
	}
	if flags.Changed("max") {
		cfg.Bifurcation.Max = sweepMax
	}
	if flags.Changed("points") {
		cfg.Bifurcation.Points = sweepPoints
	}
	if flags.Changed("tail") {
		cfg.Bifurcation.Tail = sweepTail
	}
	if flags.Changed("workers") {
		cfg.Bifurcation.Workers = sweepWorkers
	}

	// The default "000" only fits the default site count.
	if !flags.Changed("init") && len(cfg.Initial) != cfg.Sites {
		cfg.Initial = fmt.Sprintf("%0*b", cfg.Sites, 0)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type scenario struct {
	cfg     *config.Config
	space   *proteo.Space
	topo    *topology.Topology
	factory *operator.Factory
	initial int
}

func buildScenario(cmd *cobra.Command) (*scenario, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, err
	}

	space, err := proteo.NewSpace(cfg.Sites)
	if err != nil {
		return nil, err
	}
	topo := topology.New(space, cfg.SelfLoops)

	factory := operator.NewFactory(topo, rand.New(rand.NewSource(cfg.Seed)))
	if err := factory.SetParam("oxbias", cfg.OxBias); err != nil {
		return nil, err
	}
	if err := factory.SetParam("selfweight", cfg.SelfWeight); err != nil {
		return nil, err
	}

	initialID, err := space.ParseLabel(cfg.Initial)
	if err != nil {
		return nil, err
	}

	return &scenario{
		cfg:     cfg,
		space:   space,
		topo:    topo,
		factory: factory,
		initial: initialID,
	}, nil
}

func (s *scenario) simConfig() sim.Config {
	return sim.Config{
		Steps:          s.cfg.Steps,
		Ensemble:       s.cfg.Ensemble,
		ResamplePeriod: s.cfg.ResamplePeriod,
		Initial:        s.initial,
		Mass:           s.cfg.Population,
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	sc, err := buildScenario(cmd)
	if err != nil {
		return err
	}

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	entropy := metrics.NewEntropy()
	meanox := metrics.NewMeanOxidation(sc.space)
	engine := sim.New(sc.topo, sc.factory)
	engine.AddMetric(entropy)
	engine.AddMetric(meanox)

	fmt.Printf("evolving %d states over %d steps...\n", sc.space.Size(), sc.cfg.Steps)
	start := time.Now()

	result, err := engine.Run(context.Background(), sc.simConfig())
	if err != nil {
		return err
	}

	runID, err := st.Save(sc.cfg, sc.space, result, entropy.Series(), meanox.Series())
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", time.Since(start))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}

	return nil
}

func exportTransitions(cmd *cobra.Command, args []string) error {
	space, err := proteo.NewSpace(sites)
	if err != nil {
		return err
	}
	records := topology.New(space, selfLoops).Records()

	if outPath == "" {
		if err := store.WriteTransitionsCSV(os.Stdout, records); err != nil {
			return err
		}
	} else if err := store.WriteTransitionsCSVFile(outPath, records); err != nil {
		return err
	}

	if xlsxPath != "" {
		if err := store.WriteTransitionsXLSX(xlsxPath, records); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", xlsxPath)
	}

	return nil
}

func runLyapunov(cmd *cobra.Command, args []string) error {
	sc, err := buildScenario(cmd)
	if err != nil {
		return err
	}

	target := sc.topo.Allowed(sc.initial)[0]
	if perturbTo != "" {
		target, err = sc.space.ParseLabel(perturbTo)
		if err != nil {
			return err
		}
	}

	lambda, err := analysis.Lyapunov(sc.topo, sc.factory, analysis.LyapunovConfig{
		Steps:          sc.cfg.Steps,
		Ensemble:       sc.cfg.Ensemble,
		ResamplePeriod: sc.cfg.ResamplePeriod,
		Initial:        sc.initial,
		Mass:           sc.cfg.Population,
		Perturbation:   sc.cfg.Lyapunov.Perturbation,
		PerturbFrom:    sc.initial,
		PerturbTo:      target,
		RenormEvery:    sc.cfg.Lyapunov.RenormEvery,
	})
	if err != nil {
		return err
	}

	fmt.Printf("lyapunov exponent: %.6f\n", lambda)
	if lambda > 0 {
		fmt.Println("positive estimate: sensitive dependence on initial conditions")
	}
	return nil
}

func runPoincare(cmd *cobra.Command, args []string) error {
	sc, err := buildScenario(cmd)
	if err != nil {
		return err
	}

	meanox := metrics.NewMeanOxidation(sc.space)
	engine := sim.New(sc.topo, sc.factory)
	engine.AddMetric(meanox)

	if _, err := engine.Run(context.Background(), sc.simConfig()); err != nil {
		return err
	}

	points, err := analysis.ReturnMap(meanox.Series(), sc.cfg.Poincare.Lag)
	if err != nil {
		return err
	}

	fmt.Printf("return map: %d pairs at lag %d\n\n", len(points), sc.cfg.Poincare.Lag)
	fmt.Println(viz.ScatterToASCII(points, 70, 20))
	return nil
}

func runBifurcation(cmd *cobra.Command, args []string) error {
	sc, err := buildScenario(cmd)
	if err != nil {
		return err
	}

	bif := sc.cfg.Bifurcation
	points, err := analysis.Sweep(context.Background(), sc.topo, analysis.SweepConfig{
		Run:     sc.simConfig(),
		Param:   bif.Param,
		Min:     bif.Min,
		Max:     bif.Max,
		Points:  bif.Points,
		Tail:    bif.Tail,
		Seed:    sc.cfg.Seed,
		Workers: bif.Workers,
	})
	if err != nil {
		return err
	}

	fmt.Printf("bifurcation sweep: %s in [%.3f, %.3f], %d points\n\n", bif.Param, bif.Min, bif.Max, bif.Points)
	fmt.Println(viz.BifurcationToASCII(points, 70, 20))

	samples := make([]float64, 0, len(points)*bif.Tail)
	for _, p := range points {
		samples = append(samples, p.Tail...)
	}
	mean, _ := stats.Mean(samples)
	sd, _ := stats.StandardDeviation(samples)
	lo, _ := stats.Min(samples)
	hi, _ := stats.Max(samples)
	fmt.Printf("attractor samples: mean %.4f · stddev %.4f · range [%.4f, %.4f]\n", mean, sd, lo, hi)

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	sc, err := buildScenario(cmd)
	if err != nil {
		return err
	}
	return viz.RunLive(sc.cfg, sc.topo, frameRate)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSITES\tINIT\tSTEPS\tENSEMBLE\tRESAMPLE\tSEED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\t%d\t%d\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Sites,
			run.Initial,
			run.Steps,
			run.Ensemble,
			run.ResamplePeriod,
			run.Seed,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	entropy, meanox, err := st.LoadMetrics(args[0])
	if err != nil {
		return err
	}
	if len(entropy) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("sites: %d · steps: %d\n\n", meta.Sites, meta.Steps)

	fmt.Println(asciigraph.Plot(entropy,
		asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("entropy")))
	fmt.Println()
	fmt.Println(asciigraph.Plot(meanox,
		asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("mean oxidation level")))

	return nil
}

func exportRunJSON(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	entropy, meanox, err := st.LoadMetrics(args[0])
	if err != nil {
		return err
	}
	history, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	result := &sim.Result{
		History:    make([]sim.Population, len(history)),
		StepsTaken: meta.Steps,
		Metrics:    meta.Metrics,
	}
	for i, pop := range history {
		result.History[i] = pop
	}

	if outPath == "" {
		return store.ExportJSON(os.Stdout, meta, result, entropy, meanox)
	}
	return store.ExportJSONFile(outPath, meta, result, entropy, meanox)
}
