package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/piddle/internal/analysis"
	"github.com/san-kum/piddle/internal/config"
	"github.com/san-kum/piddle/internal/experiment"
	"github.com/san-kum/piddle/internal/export"
	"github.com/san-kum/piddle/internal/logging"
	"github.com/san-kum/piddle/internal/physics"
	"github.com/san-kum/piddle/internal/piddle"
	"github.com/san-kum/piddle/internal/sim"
	"github.com/san-kum/piddle/internal/storage"
	"github.com/san-kum/piddle/internal/viz"
)

var (
	dataDir string
	verbose bool
	log     *zap.Logger

	configFile string
	preset     string
	integrator string
	dt         float64
	duration   float64
	target     float64
	kp         float64
	ki         float64
	kd         float64
	cutoff     float64
	upper      float64
	lower      float64
	strict     bool
	outFile    string
	band       float64
	savePath   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "piddle",
		Short:        "discrete PID controller and closed-loop lab",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			log, err = logging.New(verbose)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = log.Sync()
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".piddle", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [plant]",
		Short: "run a closed-loop simulation and store it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	loopFlags(runCmd)
	runCmd.Flags().StringVarP(&outFile, "out", "o", "", "also write the full trajectory as JSON")

	stepCmd := &cobra.Command{
		Use:   "step [errors...]",
		Short: "feed an error sequence through a fresh PID and print each output",
		Args:  cobra.MinimumNArgs(1),
		RunE:  stepSequence,
	}
	// step keeps its own flag values: the shared loop variables carry
	// simulation defaults
	stepCmd.Flags().Float64("dt", 1.0, "time step between samples")
	stepCmd.Flags().Float64("kp", 1.0, "proportional gain")
	stepCmd.Flags().Float64("ki", 0.0, "integral gain")
	stepCmd.Flags().Float64("kd", 0.0, "derivative gain")
	stepCmd.Flags().Float64("cutoff", 0, "derivative filter cutoff in Hz (0 disables)")
	stepCmd.Flags().Float64("upper", math.Inf(1), "upper output bound")
	stepCmd.Flags().Float64("lower", math.Inf(-1), "lower output bound")

	compareCmd := &cobra.Command{
		Use:   "compare [plant]",
		Short: "run the loop with each block switched off in turn",
		Args:  cobra.MaximumNArgs(1),
		RunE:  compareAblations,
	}
	loopFlags(compareCmd)

	liveCmd := &cobra.Command{
		Use:   "live [plant]",
		Short: "run the loop live in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	loopFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot measured output and control of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&savePath, "save", "", "also save figures to this path (png, svg, pdf)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "step response and oscillation analysis of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().Float64Var(&band, "band", 0.02, "settling band as a fraction of the step")

	presetsCmd := &cobra.Command{
		Use:   "presets [plant]",
		Short: "list presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, stepCmd, compareCmd, liveCmd, listCmd, plotCmd, exportCmd, analyzeCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loopFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "start from a named preset")
	f.StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator (euler, rk4, rk45)")
	f.Float64Var(&dt, "dt", config.DefaultDt, "time step")
	f.Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds")
	f.Float64Var(&target, "target", config.DefaultTarget, "setpoint for x[0]")
	f.Float64Var(&kp, "kp", config.DefaultKp, "proportional gain")
	f.Float64Var(&ki, "ki", config.DefaultKi, "integral gain")
	f.Float64Var(&kd, "kd", config.DefaultKd, "derivative gain")
	f.Float64Var(&cutoff, "cutoff", config.DefaultCutoffHz, "derivative filter cutoff in Hz (0 disables)")
	f.Float64Var(&upper, "upper", config.DefaultUpper, "upper output bound")
	f.Float64Var(&lower, "lower", config.DefaultLower, "lower output bound")
	f.BoolVar(&strict, "strict", false, "validate every tick and stop on the first rejected sample")
}

// resolveConfig layers, lowest first: plant defaults, preset, config file,
// explicitly set flags.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	plant := config.DefaultPlant
	switch {
	case len(args) > 0:
		plant = args[0]
	case configFile != "":
		// no plant argument: the file picks the plant whose defaults it layers over
		peek, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		plant = peek.Plant
	}
	cfg := config.ForPlant(plant)

	if preset != "" {
		p := config.GetPreset(plant, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(plant))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.LoadInto(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		cfg.Plant = plant
	}

	f := cmd.Flags()
	overrides := []struct {
		flag string
		dst  *float64
		src  float64
	}{
		{"dt", &cfg.Dt, dt},
		{"time", &cfg.Duration, duration},
		{"target", &cfg.Target, target},
		{"kp", &cfg.PID.Kp, kp},
		{"ki", &cfg.PID.Ki, ki},
		{"kd", &cfg.PID.Kd, kd},
		{"cutoff", &cfg.PID.CutoffHz, cutoff},
		{"upper", &cfg.PID.Upper, upper},
		{"lower", &cfg.PID.Lower, lower},
	}
	for _, o := range overrides {
		if f.Changed(o.flag) {
			*o.dst = o.src
		}
	}
	if f.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if f.Changed("strict") {
		cfg.Strict = strict
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, log)
	if err != nil {
		return err
	}

	st := storage.New(dataDir, log)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s (%s, dt=%g, %gs)...\n", cfg.Plant, cfg.Integrator, cfg.Dt, cfg.Duration)
	start := time.Now()
	result, err := exp.Run(ctx)
	if err != nil {
		if result != nil && result.StepsTaken > 0 {
			fmt.Printf("stopped after %d steps\n", result.StepsTaken)
		}
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(exp.Info(), result)
	if err != nil {
		return err
	}

	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := storage.ExportJSON(f, exp.Info(), result); err != nil {
			return err
		}
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("final x0: %.6f\n", result.States[len(result.States)-1][0])
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func stepSequence(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	get := func(name string) float64 {
		v, _ := f.GetFloat64(name)
		return v
	}
	step := get("dt")
	pid, err := piddle.NewPID(piddle.Gains{P: get("kp"), I: get("ki"), D: get("kd")}, get("cutoff"), get("upper"), get("lower"))
	if err != nil {
		return err
	}
	for _, arg := range args {
		e, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return fmt.Errorf("invalid error sample %q: %w", arg, err)
		}
		out, err := pid.Step(e, step)
		if err != nil {
			return err
		}
		fmt.Println(strconv.FormatFloat(out, 'g', -1, 64))
	}
	return nil
}

func compareAblations(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	variants := experiment.Ablations(cfg)
	jobs := make([]sim.Job, 0, len(variants))
	for _, v := range variants {
		exp, err := experiment.New(v.Cfg, log.With(zap.String("variant", v.Name)))
		if err != nil {
			return fmt.Errorf("%s: %w", v.Name, err)
		}
		job, err := exp.Job(v.Name)
		if err != nil {
			return err
		}
		jobs = append(jobs, job)
	}

	fmt.Printf("comparing blocks on %s (dt=%g, %gs, target=%g)\n\n", cfg.Plant, cfg.Dt, cfg.Duration, cfg.Target)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VARIANT\tIAE\tOVERSHOOT\tEFFORT\tSATURATION\tCHATTER\tFINAL")
	for _, o := range sim.RunAll(cmd.Context(), jobs) {
		if o.Err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", o.Name, o.Err)
			continue
		}
		m := o.Result.Metrics
		final := o.Result.States[len(o.Result.States)-1][0]
		fmt.Fprintf(w, "%s\t%.4f\t%.2f%%\t%.4f\t%.1f%%\t%.4f\t%.4f\n",
			o.Name, m["iae"], 100*m["overshoot"], m["control_effort"], 100*m["saturation"], m["chatter"], final)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, nil)
	if err != nil {
		return err
	}
	x0, err := exp.X0()
	if err != nil {
		return err
	}

	return viz.Run(viz.NewModel(viz.Options{
		Plant:      cfg.Plant,
		System:     exp.System,
		Integrator: exp.Integrator,
		Loop:       exp.Loop,
		X0:         x0,
		Dt:         cfg.Dt,
	}))
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir, log)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPLANT\tTIME\tDURATION\tDT\tGAINS\tIAE")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1fs\t%.4fs\t%g/%g/%g\t%.4f\n",
			run.ID,
			run.Plant,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Kp, run.Ki, run.Kd,
			run.Metrics["iae"],
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir, log)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	if len(series.Measured) == 0 {
		return fmt.Errorf("run %s has no samples", args[0])
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("plant: %s  target: %g  gains: %g/%g/%g\n", meta.Plant, meta.Target, meta.Kp, meta.Ki, meta.Kd)
	fmt.Printf("samples: %d\n\n", len(series.Measured))

	setpoint := make([]float64, len(series.Measured))
	for i := range setpoint {
		setpoint[i] = meta.Target
	}
	fmt.Println(asciigraph.PlotMany([][]float64{series.Measured, setpoint},
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Red),
		asciigraph.Caption("measured x0 vs target"),
	))
	fmt.Println()

	if len(series.Control) > 0 {
		fmt.Println(asciigraph.Plot(series.Control,
			asciigraph.Height(6),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("control u in [%g, %g]", meta.Lower, meta.Upper)),
		))
	}

	if savePath != "" {
		files, err := export.SaveRun(savePath, meta, series)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Printf("saved %s\n", f)
		}
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir, log)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	if len(series.Measured) < 2 {
		return fmt.Errorf("run %s has too few samples", args[0])
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("plant: %s  target: %g\n\n", meta.Plant, meta.Target)

	fmtTime := func(v float64) string {
		if math.IsNaN(v) {
			return "not reached"
		}
		return fmt.Sprintf("%.3f s", v)
	}
	fmt.Printf("rise time (10-90%%): %s\n", fmtTime(analysis.RiseTime(series.Times, series.Measured, meta.Target)))
	fmt.Printf("settling time (%.0f%%): %s\n", 100*band, fmtTime(analysis.SettlingTime(series.Times, series.Measured, meta.Target, band)))

	errs := make([]float64, len(series.Measured))
	for i, y := range series.Measured {
		errs[i] = meta.Target - y
	}
	tail := analysis.Tail(errs, 0.5)
	freq, amp := analysis.Dominant(tail, meta.Dt)
	fmt.Printf("residual oscillation (second half): %.4g at %.3f Hz", amp, freq)
	if freq > 0 {
		fmt.Printf(" (period %.3f s)", 1/freq)
	}
	fmt.Println()

	if _, amps := analysis.Spectrum(tail, meta.Dt); len(amps) > 2 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(amps[:max(2, len(amps)/4)],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("error amplitude spectrum (low quarter)"),
		))
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir, log)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func listPresets(cmd *cobra.Command, args []string) error {
	plants := physics.Names()
	if len(args) > 0 {
		plants = args[:1]
	}
	for _, plant := range plants {
		names := config.ListPresets(plant)
		if len(names) == 0 {
			fmt.Printf("no presets for plant: %s\n", plant)
			continue
		}
		fmt.Printf("%s:\n", plant)
		for _, name := range names {
			p := config.GetPreset(plant, name)
			fmt.Printf("  %-18s kp=%g ki=%g kd=%g cutoff=%gHz bounds=[%g, %g]\n",
				name, p.PID.Kp, p.PID.Ki, p.PID.Kd, p.PID.CutoffHz, p.PID.Lower, p.PID.Upper)
		}
	}
	return nil
}
