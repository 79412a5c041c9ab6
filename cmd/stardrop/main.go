package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/stardrop/internal/analysis"
	"github.com/san-kum/stardrop/internal/automation"
	"github.com/san-kum/stardrop/internal/config"
	"github.com/san-kum/stardrop/internal/dynamo"
	"github.com/san-kum/stardrop/internal/export"
	"github.com/san-kum/stardrop/internal/metrics"
	"github.com/san-kum/stardrop/internal/optim"
	"github.com/san-kum/stardrop/internal/physics"
	"github.com/san-kum/stardrop/internal/sim"
	"github.com/san-kum/stardrop/internal/storage"
	"github.com/san-kum/stardrop/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	verbose    bool
	logJSON    bool
	configFile string
	preset     string
	seed       int64
	capacity   int
	frames     int
	drops      int
	// restore
	earned int
	// bench
	runs int
	// sweep
	sweepParam string
	sweepLo    float64
	sweepHi    float64
	sweepSteps int
	// tune
	tuneParams    []string
	tuneObjective string
	// export-svg
	outFile   string
	svgWidth  int
	svgHeight int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "stardrop",
		Short: "star jar settling simulator",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".stardrop", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and save it",
		RunE:  runSimulation,
	}
	addSceneFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live [run_id]",
		Short: "watch stars fall in the terminal, optionally starting from a saved jar",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSceneFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "plot a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	restoreCmd := &cobra.Command{
		Use:   "restore [run_id]",
		Short: "restore a saved jar, drop newly earned stars and save the result",
		Args:  cobra.ExactArgs(1),
		RunE:  restoreRun,
	}
	restoreCmd.Flags().IntVar(&earned, "earned", 0, "total stars earned; the difference to the saved count is dropped")
	restoreCmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames to simulate after syncing")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw a saved jar as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 400, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 600, "image height")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available jar presets",
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "run independently seeded jars in parallel",
		RunE:  benchJars,
	}
	addSceneFlags(benchCmd)
	benchCmd.Flags().IntVar(&runs, "runs", 8, "number of seeds")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "compare settle times across a parameter range",
		RunE:  sweepParams,
	}
	addSceneFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "restitution", "tunable physics parameter")
	sweepCmd.Flags().Float64Var(&sweepLo, "from", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepHi, "to", 0.8, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search physics parameters",
		Long:  "Runs the scene for every combination of --param name=lo:hi:n and reports the best one.",
		RunE:  tuneParamsCmd,
	}
	addSceneFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&tuneParams, "param", nil, "parameter range as name=lo:hi:n (repeatable)")
	tuneCmd.Flags().StringVar(&tuneObjective, "objective", "settle", "settle or a metric name")

	scriptCmd := &cobra.Command{
		Use:   "script [file]",
		Short: "run a scripted sequence of jar sessions",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, showCmd, restoreCmd, exportJSONCmd, exportSVGCmd, presetsCmd, benchCmd, sweepCmd, tuneCmd, scriptCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSceneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().IntVar(&capacity, "capacity", config.DefaultCapacity, "maximum number of stars")
	cmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames to simulate")
	cmd.Flags().IntVar(&drops, "drops", config.DefaultDrops, "stars to drop")
}

func setupLogger() {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if logJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// loadConfig applies, in order: preset, config file, explicit flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
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
	if flags.Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if flags.Changed("capacity") {
		cfg.Capacity = capacity
	}
	if flags.Changed("frames") {
		cfg.Scene.Frames = frames
	}
	if flags.Changed("drops") {
		cfg.Scene.Drops = drops
	}
	return cfg, cfg.Validate()
}

func newRunner(cfg *config.Config, seed int64) (*sim.Runner, error) {
	rng := rand.New(rand.NewSource(seed))
	s, err := physics.New(cfg.Capacity, cfg.Container, cfg.Physics, rng)
	if err != nil {
		return nil, err
	}
	return sim.NewRunner(s, rng, slog.Default().With("jar", cfg.Name, "seed", seed)), nil
}

func addMetrics(r *sim.Runner, cfg *config.Config) {
	r.AddMetric(metrics.NewPeakEnergy())
	r.AddMetric(metrics.NewContainment(cfg.Container))
	r.AddMetric(metrics.NewSettledFraction())
	r.AddMetric(metrics.NewMinGap(cfg.Physics.EffectiveRadius, 10))
}

func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	runner, err := newRunner(cfg, cfg.Seed)
	if err != nil {
		return err
	}
	addMetrics(runner, cfg)

	ctx, cancel := interruptible()
	defer cancel()

	fmt.Printf("dropping %d stars into %s...\n", cfg.Scene.Drops, cfg.Name)
	start := time.Now()

	result, err := runner.Run(ctx, cfg.Scene)
	if errors.Is(err, dynamo.ErrCanceled) {
		slog.Warn("interrupted, saving partial run", "frames", result.Frames)
	} else if err != nil {
		return err
	}
	elapsed := time.Since(start)

	jar := runner.Simulator()
	runID, err := st.Save(cfg, jar, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("stars: %d (%d settled)\n", jar.Count(), jar.Count()-jar.Active())
	fmt.Printf("fill level: %.3f\n", analysis.FillLevel(jar, cfg.Container))
	printSettle(analysis.SummarizeSettle(result.SettleFrames))

	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}
	return nil
}

func printSettle(s analysis.SettleSummary) {
	if s.N == 0 {
		fmt.Println("settle: no star settled")
		return
	}
	fmt.Printf("settle frames: mean %.1f  sd %.1f  p50 %.0f  p90 %.0f  max %.0f  (n=%d)\n",
		s.Mean, s.StdDev, s.P50, s.P90, s.Max, s.N)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var stars storage.Stars
	if len(args) == 1 {
		st := storage.New(dataDir)
		if cfg, err = st.LoadConfig(args[0]); err != nil {
			return err
		}
		if stars, err = st.LoadStars(args[0]); err != nil {
			return err
		}
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	s, err := physics.New(cfg.Capacity, cfg.Container, cfg.Physics, rng)
	if err != nil {
		return err
	}
	if n, err := storage.Restore(s, stars); err != nil {
		return err
	} else if n < len(stars) {
		slog.Warn("jar full, restore truncated", "restored", n, "saved", len(stars))
	}

	spawn := spawner(rng, cfg.Scene)
	model := viz.NewModel(cfg.Name, s, cfg.Container, viz.Spawner(spawn), cfg.Scene.FrameDt, cfg.Scene.MaxFrameDt)
	return viz.Run(model)
}

// spawner picks a uniform point on the spawn disc.
func spawner(rng *rand.Rand, scene config.SceneConfig) storage.SpawnFunc {
	return func() (float64, float64, float64) {
		angle := rng.Float64() * 2 * math.Pi
		rad := scene.SpawnSpread * math.Sqrt(rng.Float64())
		return rad * math.Cos(angle), scene.SpawnHeight, rad * math.Sin(angle)
	}
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
	fmt.Fprintln(w, "ID\tJAR\tTIME\tFRAMES\tSTARS\tSETTLED\tSEED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d/%d\t%d\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			run.Stars,
			run.Capacity,
			run.Settled,
			run.Seed,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	cfg, err := st.LoadConfig(runID)
	if err != nil {
		return err
	}
	stars, err := st.LoadStars(runID)
	if err != nil {
		return err
	}
	records, err := st.LoadTimeline(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("jar: %s\n", meta.Name)
	fmt.Printf("stars: %d (%d settled)\n\n", meta.Stars, meta.Settled)

	if len(records) > 1 {
		result := storage.Result(meta, records)
		active := make([]float64, len(result.Active))
		for i, a := range result.Active {
			active[i] = float64(a)
		}
		fmt.Println(asciigraph.Plot(active, asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("falling stars")))
		fmt.Println()
		fmt.Println(asciigraph.Plot(result.Energy, asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("kinetic energy")))
		fmt.Println()
	}

	fmt.Println("height profile:")
	fmt.Print(analysis.ProfileToASCII(analysis.HeightProfile(stars, cfg.Container, 12), 40))

	canvas := viz.NewCanvas(40, 20)
	viz.DrawJar(canvas, cfg.Container, stars)
	fmt.Println()
	fmt.Print(canvas.String())
	return nil
}

func restoreRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	cfg, err := st.LoadConfig(runID)
	if err != nil {
		return err
	}
	stars, err := st.LoadStars(runID)
	if err != nil {
		return err
	}

	runner, err := newRunner(cfg, cfg.Seed+1)
	if err != nil {
		return err
	}
	addMetrics(runner, cfg)
	jar := runner.Simulator()

	restored, err := storage.Restore(jar, stars)
	if err != nil {
		return err
	}
	rng := rand.New(rand.NewSource(cfg.Seed + 1))
	recorded, err := storage.Sync(jar, restored, earned, spawner(rng, cfg.Scene))
	if err != nil {
		return err
	}
	slog.Info("restored", "run", runID, "restored", restored, "dropped", recorded-restored)

	scene := cfg.Scene
	scene.Drops = 0
	scene.Frames = frames

	ctx, cancel := interruptible()
	defer cancel()
	result, err := runner.Run(ctx, scene)
	if err != nil && !errors.Is(err, dynamo.ErrCanceled) {
		return err
	}

	newID, err := st.Save(cfg, jar, result)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", newID)
	fmt.Printf("stars: %d (%d restored, %d new)\n", jar.Count(), restored, recorded-restored)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	cfg, err := st.LoadConfig(runID)
	if err != nil {
		return err
	}
	stars, err := st.LoadStars(runID)
	if err != nil {
		return err
	}
	records, err := st.LoadTimeline(runID)
	if err != nil {
		return err
	}

	return storage.ExportJSON(os.Stdout, cfg, stars, storage.Result(meta, records))
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	cfg, err := st.LoadConfig(runID)
	if err != nil {
		return err
	}
	stars, err := st.LoadStars(runID)
	if err != nil {
		return err
	}

	svg := export.JarToSVG(cfg.Container, stars, cfg.Physics.EffectiveRadius, svgWidth, svgHeight)
	if outFile == "" {
		fmt.Println(svg)
		return nil
	}
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tBODY\tNECK\tHEIGHT\tCAPACITY\tRESTITUTION")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%d\t%.2f\n",
			name,
			cfg.Container.BodyRadius,
			cfg.Container.NeckRadius,
			cfg.Container.ShoulderTop()-cfg.Container.FloorHeight,
			cfg.Capacity,
			cfg.Physics.Restitution,
		)
	}
	return w.Flush()
}

func benchJars(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	build := func(seed int64) (*sim.Runner, error) {
		r, err := newRunner(cfg, seed)
		if err != nil {
			return nil, err
		}
		r.AddMetric(metrics.NewContainment(cfg.Container))
		return r, nil
	}

	ctx, cancel := interruptible()
	defer cancel()

	fmt.Printf("benchmarking %s with %d seeds\n\n", cfg.Name, runs)
	start := time.Now()
	results, err := sim.NewEnsemble(build, runs, cfg.Seed).Run(ctx, cfg.Scene)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tSTARS\tSETTLED\tMEAN SETTLE\tP90\tSKIPPED\tEXCURSION")
	all := make([]float64, 0)
	for i, res := range results {
		s := analysis.SummarizeSettle(res.SettleFrames)
		all = append(all, res.SettleFrames...)
		fmt.Fprintf(w, "%d\t%d\t%d\t%.1f\t%.0f\t%d\t%.2e\n",
			cfg.Seed+int64(i), res.Dropped, s.N, s.Mean, s.P90, res.Skipped, res.Metrics["containment"])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	totalFrames := len(results) * cfg.Scene.Frames
	fmt.Printf("\n%d frames in %v (%.0f frames/sec)\n", totalFrames, elapsed, float64(totalFrames)/elapsed.Seconds())
	printSettle(analysis.SummarizeSettle(all))

	fmt.Println()
	for _, bin := range analysis.Histogram(all, 8) {
		fmt.Printf("%6.0f-%-6.0f %s\n", bin.Lo, bin.Hi, strings.Repeat("█", bin.Count*40/max(len(all), 1)))
	}
	return nil
}

func sweepParams(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if _, ok := cfg.Physics.Get(sweepParam); !ok {
		return fmt.Errorf("unknown sweep parameter: %s (tunable: %v)", sweepParam, physics.Tunable())
	}

	build := func(v float64) (*sim.Runner, error) {
		c := *cfg
		if err := c.Physics.Set(sweepParam, v); err != nil {
			return nil, err
		}
		return newRunner(&c, cfg.Seed)
	}

	ctx, cancel := interruptible()
	defer cancel()

	points, err := analysis.Sweep(ctx, build, cfg.Scene, sweepLo, sweepHi, sweepSteps)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tSETTLED\tMEAN\tP90\tMAX\n", strings.ToUpper(sweepParam))
	for _, p := range points {
		fmt.Fprintf(w, "%.3f\t%d\t%.1f\t%.0f\t%.0f\n", p.Param, p.Settled, p.Settle.Mean, p.Settle.P90, p.Settle.Max)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Print(analysis.SweepToASCII(points, 60, 12))
	return nil
}

// parseRange reads name=lo:hi:n.
func parseRange(spec string) (string, []float64, error) {
	name, bounds, ok := strings.Cut(spec, "=")
	if !ok {
		return "", nil, fmt.Errorf("bad range %q, want name=lo:hi:n", spec)
	}
	parts := strings.Split(bounds, ":")
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("bad range %q, want name=lo:hi:n", spec)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, err
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, err
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", nil, err
	}
	return name, optim.Linspace(lo, hi, n), nil
}

func tuneParamsCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(tuneParams) == 0 {
		return fmt.Errorf("at least one --param is required (tunable: %v)", physics.Tunable())
	}

	names := make([]string, 0, len(tuneParams))
	ranges := make([][]float64, 0, len(tuneParams))
	for _, spec := range tuneParams {
		name, values, err := parseRange(spec)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	var objective optim.Objective = optim.MeanSettle
	if tuneObjective != "settle" {
		objective = optim.Metric(tuneObjective)
	}

	build := func(params map[string]float64) (*sim.Runner, error) {
		c := *cfg
		for name, v := range params {
			if err := c.Physics.Set(name, v); err != nil {
				return nil, err
			}
		}
		r, err := newRunner(&c, cfg.Seed)
		if err != nil {
			return nil, err
		}
		addMetrics(r, &c)
		return r, nil
	}

	ctx, cancel := interruptible()
	defer cancel()

	best, score, err := optim.NewGridSearch(names, ranges).Search(ctx, build, cfg.Scene, objective)
	if err != nil {
		return err
	}

	fmt.Printf("best %s: %.4f\n", tuneObjective, score)
	for _, name := range names {
		fmt.Printf("  %s = %.4f\n", name, best[name])
	}
	return nil
}

func runScript(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := interruptible()
	defer cancel()

	fmt.Printf("scenario: %s\n", scenario.Name)
	if scenario.Description != "" {
		fmt.Printf("%s\n", scenario.Description)
	}
	results, err := automation.RunScenario(ctx, scenario, st, slog.Default())
	if err != nil {
		return err
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tRUN ID\tSTARS\tSETTLED\tRESTORED\tSYNCED")
	for i, res := range results {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%d\n", i+1, res.RunID, res.Stars, res.Settled, res.Restored, res.Synced)
	}
	return w.Flush()
}
