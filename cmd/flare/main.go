package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/stevetorr/flare-pp/internal/analysis"
	"github.com/stevetorr/flare-pp/internal/atoms"
	"github.com/stevetorr/flare-pp/internal/basis"
	"github.com/stevetorr/flare-pp/internal/comm"
	"github.com/stevetorr/flare-pp/internal/config"
	"github.com/stevetorr/flare-pp/internal/descriptor"
	"github.com/stevetorr/flare-pp/internal/evaluate"
	"github.com/stevetorr/flare-pp/internal/md"
	"github.com/stevetorr/flare-pp/internal/metrics"
	"github.com/stevetorr/flare-pp/internal/potential"
	"github.com/stevetorr/flare-pp/internal/storage"
	"github.com/stevetorr/flare-pp/internal/tui"
)

var (
	dataDir string
	verbose bool

	configFile  string
	preset      string
	potPath     string
	covPath     string
	uncertainty string
	blockLayout string
	structPath  string
	latticeType string
	element     string
	latticeA    float64
	cells       int
	dt          float64
	steps       int
	temperature float64
	seed        int64
	skin        float64
	workers     int
	ranks       int
	virial      bool
	sampleEvery int
	rattle      float64
	uqThreshold float64

	// plot
	series string
	// live
	stepsPerTick int
	// info
	modelKind string
	// rdf
	rdfMax  float64
	rdfBins int
	// bench
	benchSteps int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "flare",
		Short: "machine-learned interatomic potential engine",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".flare", "data directory")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "debug logging")

	evalCmd := &cobra.Command{
		Use:   "eval",
		Short: "evaluate energy, forces and uncertainty for one configuration",
		RunE:  runEval,
	}
	addRunFlags(evalCmd)

	mdCmd := &cobra.Command{
		Use:   "md",
		Short: "run molecular dynamics",
		RunE:  runMD,
	}
	addRunFlags(mdCmd)
	mdCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	mdCmd.Flags().Float64Var(&temperature, "temp", config.DefaultTemperature, "initial temperature (K)")
	mdCmd.Flags().IntVar(&ranks, "ranks", 1, "simulated communicator ranks")
	mdCmd.Flags().IntVar(&sampleEvery, "sample-every", config.DefaultSampleEvery, "thermo sampling stride")
	mdCmd.Flags().Float64Var(&uqThreshold, "uq-threshold", 0.1, "uncertainty stability threshold")

	infoCmd := &cobra.Command{
		Use:   "info [model-file]",
		Short: "print model hyperparameters",
		Args:  cobra.ExactArgs(1),
		RunE:  runInfo,
	}
	infoCmd.Flags().StringVar(&modelKind, "kind", "auto", "model kind: auto, energy, variance")
	infoCmd.Flags().StringVar(&blockLayout, "layout", "species", "variance block layout: species, pair")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved thermo series",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&series, "series", "etot", "series column: temp, pe, ke, etot, max_std")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run md with a live terminal view",
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().Float64Var(&temperature, "temp", config.DefaultTemperature, "initial temperature (K)")
	liveCmd.Flags().IntVar(&stepsPerTick, "steps-per-frame", 2, "md steps per rendered frame")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark evaluation throughput",
		RunE:  runBench,
	}
	benchCmd.Flags().IntVar(&benchSteps, "steps", 20, "md steps per measurement")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in run presets",
		RunE:  listPresetRows,
	}

	rdfCmd := &cobra.Command{
		Use:   "rdf [xyz-file or run_id]",
		Short: "radial distribution function of a structure",
		Args:  cobra.ExactArgs(1),
		RunE:  runRDF,
	}
	rdfCmd.Flags().Float64Var(&rdfMax, "rmax", 6.0, "distance range (A)")
	rdfCmd.Flags().IntVar(&rdfBins, "bins", 60, "histogram bins")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a saved run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	rootCmd.AddCommand(evalCmd, mdCmd, infoCmd, listCmd, plotCmd, liveCmd, benchCmd, presetsCmd, rdfCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addRunFlags registers the flags shared by every command that builds a
// structure and an evaluator.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "start from a named preset")
	cmd.Flags().StringVar(&potPath, "potential", "", "energy model file")
	cmd.Flags().StringVar(&covPath, "covariance", "", "covariance model file")
	cmd.Flags().StringVar(&uncertainty, "uncertainty", "off", "uncertainty mode: off, isotropic, directional")
	cmd.Flags().StringVar(&blockLayout, "layout", "species", "covariance block layout: species, pair")
	cmd.Flags().StringVar(&structPath, "structure", "", "xyz structure file")
	cmd.Flags().StringVar(&latticeType, "lattice", "fcc", "generated lattice type")
	cmd.Flags().StringVar(&element, "element", "Al", "lattice element")
	cmd.Flags().Float64Var(&latticeA, "a", config.DefaultLatticeA, "lattice constant (A)")
	cmd.Flags().IntVar(&cells, "cells", 3, "lattice repetitions per axis")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep (ps)")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().Float64Var(&skin, "skin", config.DefaultSkin, "neighbor list skin (A)")
	cmd.Flags().IntVar(&workers, "workers", 0, "evaluation workers (0 = all cpus)")
	cmd.Flags().BoolVar(&virial, "virial", false, "accumulate the virial")
	cmd.Flags().Float64Var(&rattle, "rattle", 0, "random displacement of generated lattices (A)")
}

// mergedConfig layers preset, config file and changed flags, in that
// order of increasing precedence.
func mergedConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("potential") {
		cfg.Potential = potPath
	}
	if flags.Changed("covariance") {
		cfg.Covariance = covPath
	}
	if flags.Changed("uncertainty") {
		cfg.Uncertainty = uncertainty
	}
	if flags.Changed("layout") {
		cfg.BlockLayout = blockLayout
	}
	if flags.Changed("structure") {
		cfg.Structure = structPath
	}
	if flags.Changed("lattice") {
		cfg.Lattice.Type = latticeType
	}
	if flags.Changed("element") {
		cfg.Lattice.Element = element
	}
	if flags.Changed("a") {
		cfg.Lattice.A = latticeA
	}
	if flags.Changed("cells") {
		cfg.Lattice.Nx, cfg.Lattice.Ny, cfg.Lattice.Nz = cells, cells, cells
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("temp") {
		cfg.Temperature = temperature
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("skin") {
		cfg.Skin = skin
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("ranks") {
		cfg.Ranks = ranks
	}
	if flags.Changed("virial") {
		cfg.Virial = virial
	}
	if flags.Changed("sample-every") {
		cfg.SampleEvery = sampleEvery
	}
	if flags.Changed("rattle") {
		cfg.Rattle = rattle
	}

	if cfg.Potential == "" {
		return nil, fmt.Errorf("no potential given (use --potential or a config file)")
	}
	// A covariance model without an explicit mode means the caller wants
	// uncertainty; default to the cheap scalar form.
	if cfg.Covariance != "" && cfg.Uncertainty == "off" && !flags.Changed("uncertainty") {
		cfg.Uncertainty = "isotropic"
	}
	return cfg, nil
}

// buildEvaluator loads the configured models over c and assembles the
// evaluator. Every rank of a group must call it collectively.
func buildEvaluator(cfg *config.Config, c comm.Comm) (*evaluate.Evaluator, error) {
	layout, err := cfg.Layout()
	if err != nil {
		return nil, err
	}
	mode, err := cfg.Mode()
	if err != nil {
		return nil, err
	}

	pot, err := potential.Load(cfg.Potential, potential.KindEnergy, layout, c)
	if err != nil {
		return nil, err
	}
	var cov *potential.Model
	if cfg.Covariance != "" {
		if cov, err = potential.Load(cfg.Covariance, potential.KindVariance, layout, c); err != nil {
			return nil, err
		}
	}

	return evaluate.New(pot, cov, c, evaluate.Options{
		Mode:    mode,
		Virial:  cfg.Virial,
		Workers: cfg.Workers,
	})
}

func buildRunner(cfg *config.Config, c comm.Comm) (*md.Runner, error) {
	st, err := cfg.BuildStructure()
	if err != nil {
		return nil, err
	}
	md.InitVelocities(st, cfg.Temperature, cfg.Seed)

	ev, err := buildEvaluator(cfg, c)
	if err != nil {
		return nil, err
	}
	return md.NewRunner(st, ev, cfg.Dt, cfg.Skin)
}

func attachMetrics(r *md.Runner, cfg *config.Config) {
	r.AddMetric(metrics.NewEnergyDrift())
	r.AddMetric(metrics.NewNetMomentum())
	r.AddMetric(metrics.NewMeanTemperature())
	if mode, err := cfg.Mode(); err == nil && mode != evaluate.UncertaintyOff {
		r.AddMetric(metrics.NewMaxUncertainty())
		r.AddMetric(metrics.NewUncertaintyStability(uqThreshold))
	}
}

func runEval(cmd *cobra.Command, args []string) error {
	cfg, err := mergedConfig(cmd)
	if err != nil {
		return err
	}

	st, err := cfg.BuildStructure()
	if err != nil {
		return err
	}
	ev, err := buildEvaluator(cfg, comm.Single{})
	if err != nil {
		return err
	}

	st.Wrap()
	if err := st.BuildGhosts(ev.Cutoff()); err != nil {
		return err
	}
	nl := atoms.BuildNeighbors(st, ev.Cutoff())

	var ar evaluate.Arena
	start := time.Now()
	sum, err := ev.Step(st, nl, &ar)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("structure: %d atoms, %d ghosts\n", st.NLocal, st.NGhost())
	fmt.Printf("potential: %s (cutoff %g A)\n", cfg.Potential, ev.Cutoff())
	fmt.Printf("energy: %.8f eV\n", sum.Energy)
	if cfg.Virial {
		fmt.Printf("virial: % .6f % .6f % .6f % .6f % .6f % .6f\n",
			sum.Virial[0], sum.Virial[1], sum.Virial[2], sum.Virial[3], sum.Virial[4], sum.Virial[5])
	}
	if ev.Mode() != evaluate.UncertaintyOff {
		fmt.Printf("max std: %.6g\n", sum.MaxStd)
	}
	fmt.Printf("evaluated in %v\n\n", elapsed)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := "ID\tSYMBOL\tENERGY\tFX\tFY\tFZ"
	stdWidth := ev.StdWidth()
	switch stdWidth {
	case 1:
		header += "\tSTD"
	case 3:
		header += "\tSTD_X\tSTD_Y\tSTD_Z"
	}
	fmt.Fprintln(w, header)

	shown := st.NLocal
	const maxRows = 16
	if shown > maxRows {
		shown = maxRows
	}
	for i := 0; i < shown; i++ {
		fmt.Fprintf(w, "%d\t%s\t%.6f\t% .6f\t% .6f\t% .6f",
			st.Tags[i], st.Symbols[st.Species[i]],
			ar.Energies[i], ar.Forces[3*i], ar.Forces[3*i+1], ar.Forces[3*i+2])
		for c := 0; c < stdWidth; c++ {
			fmt.Fprintf(w, "\t%.6g", ar.Stds[stdWidth*i+c])
		}
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if st.NLocal > shown {
		fmt.Printf("... %d more atoms\n", st.NLocal-shown)
	}
	return nil
}

func runMD(cmd *cobra.Command, args []string) error {
	cfg, err := mergedConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Ranks < 1 {
		cfg.Ranks = 1
	}

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}

	fmt.Printf("running md: %d steps, dt %g ps, %d rank(s)\n", cfg.Steps, cfg.Dt, cfg.Ranks)
	start := time.Now()

	var res *md.Result
	var st *atoms.Structure

	if cfg.Ranks == 1 {
		r, err := buildRunner(cfg, comm.Single{})
		if err != nil {
			return err
		}
		attachMetrics(r, cfg)
		if res, err = r.Run(context.Background(), cfg.Steps, cfg.SampleEvery, nil); err != nil {
			return err
		}
		st = r.Structure()
	} else {
		// Every rank advances an identical replica; the evaluator merges
		// per-rank stripes each step, so the trajectories stay in lockstep.
		group := comm.NewGroup(cfg.Ranks)
		results := make([]*md.Result, cfg.Ranks)
		states := make([]*atoms.Structure, cfg.Ranks)

		g, ctx := errgroup.WithContext(context.Background())
		for rank := 0; rank < cfg.Ranks; rank++ {
			rank := rank
			g.Go(func() error {
				r, err := buildRunner(cfg, group[rank])
				if err != nil {
					return err
				}
				if rank == 0 {
					attachMetrics(r, cfg)
				}
				out, err := r.Run(ctx, cfg.Steps, cfg.SampleEvery, nil)
				if err != nil {
					return err
				}
				results[rank] = out
				states[rank] = r.Structure()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		res, st = results[0], states[0]
	}

	elapsed := time.Since(start)

	runID, err := store.Save(storage.RunMetadata{
		Potential:   cfg.Potential,
		Covariance:  cfg.Covariance,
		Uncertainty: cfg.Uncertainty,
		Dt:          cfg.Dt,
		Steps:       res.StepsRun,
		Temperature: cfg.Temperature,
		Seed:        cfg.Seed,
	}, st, res)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v (%.0f steps/sec)\n", elapsed, float64(res.StepsRun)/elapsed.Seconds())
	fmt.Printf("run id: %s\n", runID)
	if n := len(res.Thermo); n > 0 {
		last := res.Thermo[n-1]
		fmt.Printf("final: T=%.1f K  E=%.6f eV\n", last.Temp, last.Total)
	}
	fmt.Println("\nmetrics:")
	for name, val := range res.Metrics {
		fmt.Printf("  %s: %.6g\n", name, val)
	}
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	layout, err := potential.ParseLayout(blockLayout)
	if err != nil {
		return err
	}

	var m *potential.Model
	switch modelKind {
	case "energy":
		m, err = potential.Load(args[0], potential.KindEnergy, layout, comm.Single{})
	case "variance":
		m, err = potential.Load(args[0], potential.KindVariance, layout, comm.Single{})
	case "auto":
		m, err = potential.Load(args[0], potential.KindEnergy, layout, comm.Single{})
		if errors.Is(err, potential.ErrDimension) {
			m, err = potential.Load(args[0], potential.KindVariance, layout, comm.Single{})
		}
	default:
		return fmt.Errorf("unknown kind: %s", modelKind)
	}
	if err != nil {
		return err
	}

	fmt.Printf("file: %s\n", args[0])
	fmt.Printf("kind: %s\n", m.Kind)
	if m.Kind == potential.KindVariance {
		fmt.Printf("layout: %s\n", m.Layout)
	}
	fmt.Printf("radial basis: %s\n", m.Basis)
	fmt.Printf("cutoff: %s, %g A\n", m.Cutoff, m.CutoffRadius)
	fmt.Printf("species: %d  n_max: %d  l_max: %d\n", m.NSpecies, m.NMax, m.LMax)
	fmt.Printf("descriptors: %d\n", m.NumDescriptors())
	fmt.Printf("coefficients: %d blocks x %d\n", m.NumBlocks(), m.BetaSize())
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	runs, err := store.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tATOMS\tSTEPS\tDT\tUNCERTAINTY\tPOTENTIAL")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%g\t%s\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Atoms,
			run.Steps,
			run.Dt,
			run.Uncertainty,
			run.Potential,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	meta, err := store.Load(args[0])
	if err != nil {
		return err
	}
	header, rows, err := store.LoadSeries(args[0])
	if err != nil {
		return err
	}
	if len(rows) < 2 {
		return fmt.Errorf("not enough samples to plot")
	}

	col := -1
	for i, name := range header {
		if name == series {
			col = i
		}
	}
	if col < 0 {
		return fmt.Errorf("unknown series %q (have %v)", series, header)
	}

	data := make([]float64, len(rows))
	for i, row := range rows {
		data[i] = row[col]
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("atoms: %d  steps: %d  dt: %g ps\n\n", meta.Atoms, meta.Steps, meta.Dt)

	graph := asciigraph.Plot(data,
		asciigraph.Height(12),
		asciigraph.Width(72),
		asciigraph.Caption(fmt.Sprintf("%s over %d samples", series, len(data))),
	)
	fmt.Println(graph)

	min, max := data[0], data[0]
	mean := 0.0
	for _, v := range data {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		mean += v
	}
	mean /= float64(len(data))
	fmt.Printf("\nmin %.6g  max %.6g  mean %.6g\n", min, max, mean)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := mergedConfig(cmd)
	if err != nil {
		return err
	}

	r, err := buildRunner(cfg, comm.Single{})
	if err != nil {
		return err
	}

	m := tui.NewModel(r, fmt.Sprintf("%s %s", cfg.Lattice.Element, cfg.Lattice.Type), stepsPerTick)
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func runBench(cmd *cobra.Command, args []string) error {
	const (
		nSpecies = 1
		nMax     = 4
		lMax     = 3
		cutoff   = 3.5
	)
	nDesc := descriptor.NumDescriptors(nSpecies, nMax, lMax)
	coeffs := make([]float64, potential.BetaSize(potential.KindEnergy, nDesc))
	for i := range coeffs {
		coeffs[i] = 0.02 * float64(i%7-3)
	}
	pot, err := potential.New(potential.KindEnergy, potential.BlocksPerSpecies,
		basis.RadialChebyshev, basis.CutoffQuadratic, cutoff, nSpecies, nMax, lMax, coeffs)
	if err != nil {
		return err
	}

	sizes := []int{2, 3, 4}
	workerCounts := []int{1, 2, 4, 8}

	fmt.Printf("synthetic chebyshev model: n_max %d, l_max %d, %d descriptors\n\n", nMax, lMax, nDesc)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ATOMS\tWORKERS\tSTEPS\tTIME\tSTEPS/SEC")

	for _, size := range sizes {
		for _, workers := range workerCounts {
			st := atoms.FCC("Al", 4.05, size, size, size)
			md.InitVelocities(st, 300, 1)

			ev, err := evaluate.New(pot, nil, comm.Single{}, evaluate.Options{Workers: workers})
			if err != nil {
				return err
			}
			r, err := md.NewRunner(st, ev, 0.001, 0.5)
			if err != nil {
				return err
			}

			start := time.Now()
			for i := 0; i < benchSteps; i++ {
				if err := r.Step(); err != nil {
					return err
				}
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%d\t%d\t%d\t%v\t%.1f\n",
				st.NLocal, workers, benchSteps, elapsed.Round(time.Millisecond),
				float64(benchSteps)/elapsed.Seconds())
		}
	}
	return w.Flush()
}

func listPresetRows(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tLATTICE\tSTEPS\tTEMP\tUNCERTAINTY")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s %s %dx%dx%d\t%d\t%.0fK\t%s\n",
			name,
			cfg.Lattice.Type, cfg.Lattice.Element, cfg.Lattice.Nx, cfg.Lattice.Ny, cfg.Lattice.Nz,
			cfg.Steps, cfg.Temperature, cfg.Uncertainty)
	}
	return w.Flush()
}

func runRDF(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err != nil {
		// Not a file; resolve as a saved run id.
		path = storage.New(dataDir).FinalStructurePath(args[0])
	}

	st, err := atoms.ReadXYZFile(path)
	if err != nil {
		return err
	}

	rdf, err := analysis.ComputeRDF(st, rdfMax, rdfBins)
	if err != nil {
		return err
	}

	fmt.Printf("structure: %s (%d atoms)\n", path, st.NLocal)
	fmt.Printf("range: %.2f A, %d bins\n\n", rdf.RMax, len(rdf.G))

	graph := asciigraph.Plot(rdf.G,
		asciigraph.Height(12),
		asciigraph.Width(72),
		asciigraph.Caption("g(r)"),
	)
	fmt.Println(graph)

	peak := 0
	for k := range rdf.G {
		if rdf.G[k] > rdf.G[peak] {
			peak = k
		}
	}
	fmt.Printf("\nfirst peak: r = %.3f A, g = %.3f, coordination %.2f\n",
		rdf.R[peak], rdf.G[peak], rdf.Coordination[peak])
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
}
