package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/presssim/internal/automation"
	"github.com/san-kum/presssim/internal/config"
	"github.com/san-kum/presssim/internal/export"
	"github.com/san-kum/presssim/internal/logging"
	"github.com/san-kum/presssim/internal/material"
	"github.com/san-kum/presssim/internal/sim"
	"github.com/san-kum/presssim/internal/storage"
	"github.com/san-kum/presssim/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dataDir    string
	configFile string
	logLevel   string
	kind       string
	cadence    time.Duration
	maxSteps   int
	preset     string
	noSave     bool
	outFile    string
	plotY      string
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
)

// main registers the commands and flags and executes the root command.
// Without a subcommand it opens the live press.
func main() {
	rootCmd := &cobra.Command{
		Use:           "presssim",
		Short:         "compression and tensile testing press simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runLive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [material]",
		Short: "run a test to completion and store it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTest,
	}
	runCmd.Flags().StringVar(&kind, "kind", config.DefaultKind, "test kind (compression, tensile)")
	runCmd.Flags().DurationVar(&cadence, "cadence", config.DefaultCadence, "time between steps, 0 for as fast as possible")
	runCmd.Flags().IntVar(&maxSteps, "max-steps", config.DefaultMaxSteps, "step ceiling")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live [material]",
		Short: "interactive press in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&kind, "kind", config.DefaultKind, "test kind (compression, tensile)")
	liveCmd.Flags().DurationVar(&cadence, "cadence", config.DefaultCadence, "time between steps")

	materialsCmd := &cobra.Command{
		Use:   "materials",
		Short: "list the material catalog",
		RunE:  listMaterials,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [material]",
		Short: "list available presets for a material",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(strings.ToLower(args[0]))
			if len(presets) == 0 {
				fmt.Printf("no presets for material: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				cfg := config.GetPreset(strings.ToLower(args[0]), p)
				fmt.Printf("  %-8s %s, cadence %v\n", p, cfg.Kind, cfg.Cadence)
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot force, stress and height of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a run curve as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default <run_id>.svg)")
	exportSVGCmd.Flags().StringVar(&plotY, "y", "force", "curve to draw: force (vs deformation) or stress (vs strain)")

	compareCmd := &cobra.Command{
		Use:   "compare [material] [material] ...",
		Short: "run the same test on several materials side by side",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareMaterials,
	}
	compareCmd.Flags().StringVar(&kind, "kind", config.DefaultKind, "test kind (compression, tensile)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of tests from a yaml file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [material]",
		Short: "repeat a test while varying one material property",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&kind, "kind", config.DefaultKind, "test kind (compression, tensile)")
	sweepCmd.Flags().StringVar(&sweepParam, "param", "yield_stress", fmt.Sprintf("property to vary %v", automation.SweepParams()))
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 1, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 10, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 10, "number of values")

	rootCmd.AddCommand(runCmd, liveCmd, materialsCmd, presetsCmd, listCmd, plotCmd, exportJSONCmd, exportCSVCmd, exportSVGCmd, compareCmd, scenarioCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig reads --config over the defaults. Flags set on the command
// line win over file values.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("data") || configFile == "" {
		cfg.DataDir = dataDir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Lookup("kind") != nil && flags.Changed("kind") {
		cfg.Kind = kind
	}
	if flags.Lookup("cadence") != nil && flags.Changed("cadence") {
		cfg.Cadence = cadence
	}
	if flags.Lookup("max-steps") != nil && flags.Changed("max-steps") {
		cfg.MaxSteps = maxSteps
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyPreset overlays the named preset for cfg.Material. Flags given on the
// command line keep their values.
func applyPreset(cmd *cobra.Command, cfg *config.Config, name string) error {
	mat := strings.ToLower(cfg.Material)
	p := config.GetPreset(mat, name)
	if p == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets(mat))
	}
	flags := cmd.Flags()
	if !flags.Changed("kind") {
		cfg.Kind = p.Kind
	}
	if !flags.Changed("cadence") {
		cfg.Cadence = p.Cadence
	}
	return nil
}

func loadCatalog(cfg *config.Config) (*material.Catalog, error) {
	catalog := material.DefaultCatalog()
	if cfg.Catalog == "" {
		return catalog, nil
	}
	extra, err := material.LoadCatalog(cfg.Catalog)
	if err != nil {
		return nil, err
	}
	return catalog.Merge(extra), nil
}

func newLogger(cfg *config.Config) *zap.Logger {
	logger, _ := logging.New(cfg.LogLevel, os.Stderr)
	return logger
}

func runTest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if len(args) > 0 {
		cfg.Material = args[0]
	}

	if preset != "" {
		if err := applyPreset(cmd, cfg, preset); err != nil {
			return err
		}
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	mat, err := catalog.Get(cfg.Material)
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	defer logger.Sync()

	s := sim.New(cfg.PressMachine(), logger)
	s.AddObserver(logging.NewObserver(logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s test on %s...\n", cfg.TestKind(), mat.Name())

	result, runErr := s.Run(ctx, mat, cfg.TestKind(), cfg.RunConfig())
	if result == nil {
		return runErr
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, sim.ErrStepLimit) {
		return runErr
	}

	if result.Completed {
		fmt.Println(result.Completion.Message)
	} else {
		fmt.Printf("test stopped early: %v\n", runErr)
	}
	fmt.Printf("completed in %v\n", result.Elapsed.Round(time.Millisecond))
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("peak force: %.2f N\n", result.Last().PeakForce)
	fmt.Printf("peak stress: %.2f MPa\n", result.Last().PeakStress)

	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	if noSave {
		return nil
	}

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(result)
	if err != nil {
		return err
	}
	fmt.Printf("\nrun id: %s\n", runID)

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	opts := []viz.Option{
		viz.WithKind(cfg.TestKind()),
		viz.WithCadence(cfg.Cadence),
	}
	if len(args) > 0 {
		if _, err := catalog.Get(args[0]); err != nil {
			return err
		}
		opts = append(opts, viz.WithMaterial(args[0]))
	}

	p := tea.NewProgram(viz.NewModel(cfg.PressMachine(), catalog, opts...), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func listMaterials(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tE (GPa)\tYIELD (MPa)\tW x H x D (mm)")

	for _, name := range catalog.Names() {
		m, _ := catalog.Get(name)
		fmt.Fprintf(w, "%s\t%g\t%g\t%g x %g x %g\n",
			m.Name(),
			m.ElasticModulus(),
			m.YieldStress(),
			m.Width(), m.Height(), m.Depth(),
		)
	}

	return w.Flush()
}

func storeFor(cmd *cobra.Command) (*storage.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return storage.New(cfg.DataDir), nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := storeFor(cmd)
	if err != nil {
		return err
	}
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMATERIAL\tKIND\tTIME\tSTEPS\tPEAK FORCE\tDONE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.2f N\t%v\n",
			run.ID,
			run.Material,
			run.Kind,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.PeakForce,
			run.Completed,
		)
	}

	return w.Flush()
}

func loadRun(cmd *cobra.Command, runID string) (*storage.RunMetadata, []*storage.Sample, error) {
	st, err := storeFor(cmd)
	if err != nil {
		return nil, nil, err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, samples, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}

	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("material: %s (%s)\n", meta.Material, meta.Kind)
	fmt.Printf("samples: %d\n\n", len(samples))

	series := []struct {
		caption string
		value   func(*storage.Sample) float64
	}{
		{"force (N) vs step", func(s *storage.Sample) float64 { return s.Force }},
		{"stress (MPa) vs step", func(s *storage.Sample) float64 { return s.Stress }},
		{"height (mm) vs step", func(s *storage.Sample) float64 { return s.Height }},
	}

	for _, sr := range series {
		data := make([]float64, len(samples))
		for i, s := range samples {
			data[i] = sr.value(s)
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(sr.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

// output opens --out, or stdout when it is empty.
func output() (*os.File, func() error, error) {
	if outFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}

	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(w, meta, samples); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, samples, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}

	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := storage.ExportCSV(w, samples); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}

	xs := make([]float64, len(samples))
	ys := make([]float64, len(samples))
	curve := export.Curve{Title: fmt.Sprintf("%s %s", meta.Material, meta.Kind)}

	switch plotY {
	case "force":
		curve.XLabel, curve.YLabel = "deformation (mm)", "force (N)"
		for i, s := range samples {
			xs[i], ys[i] = s.Deformation, s.Force
		}
	case "stress":
		curve.XLabel, curve.YLabel = "strain", "stress (MPa)"
		for i, s := range samples {
			xs[i], ys[i] = s.Strain, s.Stress
		}
	default:
		return fmt.Errorf("unknown curve %q (force, stress)", plotY)
	}
	curve.Points = export.XY(xs, ys)

	if outFile == "" {
		outFile = meta.ID + ".svg"
	}
	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	if err := curve.WriteSVG(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Printf("wrote %s\n", outFile)
	return nil
}

func compareMaterials(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	k := cfg.TestKind()
	jobs := make([]sim.Job, 0, len(args))
	for _, name := range args {
		mat, err := catalog.Get(name)
		if err != nil {
			return err
		}
		jobs = append(jobs, sim.Job{Material: mat, Kind: k})
	}

	logger := newLogger(cfg)
	defer logger.Sync()

	runCfg := cfg.RunConfig()
	runCfg.Cadence = 0

	fmt.Printf("comparing %d materials in %s...\n\n", len(jobs), k)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := sim.NewEnsemble(sim.New(cfg.PressMachine(), logger), jobs...).Run(ctx, runCfg)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MATERIAL\tSTEPS\tDEFORMATION\tPEAK FORCE\tPEAK STRESS\tENERGY\tYIELD AT")

	for _, r := range results {
		last := r.Last()
		fmt.Fprintf(w, "%s\t%d\t%.1f mm\t%.2f N\t%.2f MPa\t%.1f N·mm\t%s\n",
			r.Material.Name(),
			r.StepsTaken,
			last.Deformation,
			last.PeakForce,
			last.PeakStress,
			r.Metrics["absorbed_energy"],
			yieldAt(r.Metrics["yield_onset"]),
		)
	}

	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	logger := newLogger(cfg)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runCfg := cfg.RunConfig()
	runCfg.Cadence = 0

	fmt.Printf("scenario %s: %d steps\n", scenario.Name, len(scenario.Steps))
	results, err := automation.RunScenario(ctx, scenario, sim.New(cfg.PressMachine(), logger), catalog, runCfg, st)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tMATERIAL\tKIND\tSTEPS\tPEAK FORCE\tRUN ID")
	for i, r := range results {
		runID := r.RunID
		if runID == "" {
			runID = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%.2f N\t%s\n",
			i+1,
			r.Result.Material.Name(),
			r.Result.Kind,
			r.Result.StepsTaken,
			r.Result.Completion.PeakForce,
			runID,
		)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	mat, err := catalog.Get(args[0])
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	defer logger.Sync()

	runCfg := cfg.RunConfig()
	runCfg.Cadence = 0

	sweep := &automation.ParameterSweep{
		Material:  mat,
		Kind:      cfg.TestKind(),
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepSteps,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunSweep(ctx, sweep, sim.New(cfg.PressMachine(), logger), runCfg)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tSTEPS\tPEAK FORCE\tPEAK STRESS\tENERGY\n", strings.ToUpper(sweepParam))
	peaks := make([]float64, len(results))
	for i, r := range results {
		peaks[i] = r.PeakForce
		fmt.Fprintf(w, "%g\t%d\t%.2f N\t%.2f MPa\t%.1f N·mm\n",
			r.ParamValue,
			r.Steps,
			r.PeakForce,
			r.PeakStress,
			r.Metrics["absorbed_energy"],
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(peaks) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(peaks,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption(fmt.Sprintf("peak force (N) vs %s", sweepParam)),
		))
	}
	return nil
}

func yieldAt(d float64) string {
	if d == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f mm", d)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
