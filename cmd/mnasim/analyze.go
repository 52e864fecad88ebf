package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/mnasim/internal/analysis"
	"github.com/san-kum/mnasim/internal/automation"
	"github.com/san-kum/mnasim/internal/optim"
	"github.com/san-kum/mnasim/internal/solve"
	"github.com/san-kum/mnasim/internal/storage"
)

var (
	varName string
	tol     float64
	xVar    string
	yVar    string

	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	workers    int

	grid       map[string]string
	metricName string
)

func addAnalysisCommands(rootCmd *cobra.Command) {
	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "step-response figures of a stored run (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&varName, "var", "", "unknown to analyze, by name or index (recorded unknown if empty)")
	analyzeCmd.Flags().Float64Var(&tol, "tol", 0.02, "settling band as a fraction of the step")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "plot one unknown against another (latest run by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPhase,
	}
	phaseCmd.Flags().StringVar(&xVar, "x", "wr", "x axis unknown, by name or index")
	phaseCmd.Flags().StringVar(&yVar, "y", "ia", "y axis unknown, by name or index")
	addStoreFlags(analyzeCmd, phaseCmd)

	compareCmd := &cobra.Command{
		Use:   "compare [solver...]",
		Short: "run the same system with several solvers",
		RunE:  compareSolvers,
	}
	addSimFlags(compareCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run the system over a range of one motor parameter",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "sweep", "va", "motor parameter to vary")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 5, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 20, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 4, "number of values")
	sweepCmd.Flags().IntVar(&workers, "workers", 1, "points evaluated concurrently")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search motor parameters minimizing a metric",
		Args:  cobra.NoArgs,
		RunE:  runTune,
	}
	addSimFlags(tuneCmd)
	tuneCmd.Flags().StringToStringVar(&grid, "grid", nil, "parameter range as min:max:n, e.g. --grid va=5:20:4")
	tuneCmd.Flags().StringVar(&metricName, "metric", "copper_loss", "metric to minimize")

	batchCmd := &cobra.Command{
		Use:   "batch <scenario.yaml>",
		Short: "run every step of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	addSimFlags(batchCmd)

	rootCmd.AddCommand(analyzeCmd, phaseCmd, compareCmd, sweepCmd, tuneCmd, batchCmd)
}

// unknownIndex resolves name against the stored unknown labels, falling
// back to a plain index.
func unknownIndex(meta *storage.RunMetadata, name string) (int, error) {
	for i, u := range meta.Unknowns {
		if u == name {
			return i, nil
		}
	}
	i, err := strconv.Atoi(name)
	if err != nil || i < 0 || i >= len(meta.Unknowns) {
		return 0, fmt.Errorf("unknown %q not in %v", name, meta.Unknowns)
	}
	return i, nil
}

func column(states [][]float64, idx int) []float64 {
	out := make([]float64, len(states))
	for i, s := range states {
		if idx < len(s) {
			out[i] = s[idx]
		}
	}
	return out
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	runID, err := resolveRunID(st, args)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	states, times, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	name := varName
	if name == "" {
		name = meta.Record
	}
	idx, err := unknownIndex(meta, name)
	if err != nil {
		return err
	}

	values := column(states, idx)
	resp, err := analysis.Analyze(times, values, tol)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "step response: %s (%s)\n\n", meta.ID, meta.Unknowns[idx])
	fmt.Fprintln(out, asciigraph.Plot(values,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(meta.Unknowns[idx]+" vs time"),
	))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "initial\t%.6g\n", resp.Initial)
	fmt.Fprintf(w, "final\t%.6g\n", resp.Final)
	fmt.Fprintf(w, "peak\t%.6g at %.4gs\n", resp.Peak, resp.PeakTime)
	fmt.Fprintf(w, "overshoot\t%.2f%%\n", resp.Overshoot)
	fmt.Fprintf(w, "rise time\t%s\n", seconds(resp.RiseTime))
	fmt.Fprintf(w, "time constant\t%s\n", seconds(resp.TimeConstant))
	fmt.Fprintf(w, "settling time\t%s\n", seconds(resp.SettlingTime))
	return w.Flush()
}

func seconds(v float64) string {
	if v < 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.4gs", v)
}

func showPhase(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	runID, err := resolveRunID(st, args)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	states, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	xi, err := unknownIndex(meta, xVar)
	if err != nil {
		return err
	}
	yi, err := unknownIndex(meta, yVar)
	if err != nil {
		return err
	}

	tr, err := analysis.NewTrajectory(states, xi, yi)
	if err != nil {
		return err
	}
	lo, hi := tr.Bounds()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "phase portrait: %s\n", meta.ID)
	fmt.Fprintf(out, "x: %s  y: %s\n\n", meta.Unknowns[xi], meta.Unknowns[yi])
	fmt.Fprint(out, tr.Render(60, 20))
	fmt.Fprintf(out, "%s in [%.4g, %.4g], %s in [%.4g, %.4g]\n", meta.Unknowns[xi], lo.X, hi.X, meta.Unknowns[yi], lo.Y, hi.Y)
	return nil
}

func compareSolvers(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	kinds := args
	if len(kinds) == 0 {
		kinds = solve.Kinds()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "comparing solvers (h=%g, tmax=%g)\n\n", cfg.H, cfg.TMax)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOLVER\tFINAL\tSTEPS\tTIME")

	for _, kind := range kinds {
		run := *cfg
		run.Solver = kind

		start := time.Now()
		result, err := automation.Simulate(commandContext(cmd), &run)
		elapsed := time.Since(start)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\t\t\n", kind, err)
			continue
		}
		fmt.Fprintf(w, "%s\t%.6g\t%d\t%v\n", kind, result.Metrics["final"], result.StepsTaken, elapsed.Round(time.Microsecond))
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	sweep := &automation.ParameterSweep{
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepSteps,
	}
	var results []automation.SweepResult
	if workers > 1 {
		results, err = automation.RunSweepParallel(ctx, sweep, cfg, workers)
	} else {
		results, err = automation.RunSweep(ctx, out, sweep, cfg)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tFINAL\tPEAK\tSETTLING\n", strings.ToUpper(sweepParam))
	finals := make([]float64, len(results))
	for i, r := range results {
		finals[i] = r.Final
		fmt.Fprintf(w, "%.4g\t%.6g\t%.6g\t%s\n", r.ParamValue, r.Final, r.Metrics["peak"], seconds(r.Metrics["settling_time"]))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(finals) > 1 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, asciigraph.Plot(finals,
			asciigraph.Height(8),
			asciigraph.Caption("final vs "+sweepParam),
		))
	}
	return nil
}

// parseGrid turns name=min:max:n flags into sorted names and value ranges.
func parseGrid(g map[string]string) ([]string, [][]float64, error) {
	if len(g) == 0 {
		return nil, nil, fmt.Errorf("at least one --grid is required")
	}
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)

	ranges := make([][]float64, len(names))
	for i, name := range names {
		parts := strings.Split(g[name], ":")
		if len(parts) != 3 {
			return nil, nil, fmt.Errorf("grid %s: want min:max:n, got %q", name, g[name])
		}
		lo, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("grid %s: %w", name, err)
		}
		hi, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("grid %s: %w", name, err)
		}
		n, err := strconv.Atoi(parts[2])
		if err != nil || n < 1 {
			return nil, nil, fmt.Errorf("grid %s: bad count %q", name, parts[2])
		}
		ranges[i] = optim.Linspace(lo, hi, n)
	}
	return names, ranges, nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	names, ranges, err := parseGrid(grid)
	if err != nil {
		return err
	}
	gs, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	best, val, err := gs.Search(ctx, automation.Objective(cfg, metricName))
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "evaluated %d points\n", len(gs.Trials()))
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "best %s: %.6g\n", metricName, val)
	for _, name := range names {
		fmt.Fprintf(out, "  %s = %.6g\n", name, best[name])
	}
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	if sc.Name != "" {
		fmt.Fprintf(out, "scenario: %s\n", sc.Name)
	}
	if sc.Description != "" {
		fmt.Fprintf(out, "%s\n", sc.Description)
	}

	outcomes, err := automation.RunScenario(ctx, out, sc, cfg)

	st := storage.New(cfg.Output.DataDir)
	if initErr := st.Init(); initErr != nil {
		return initErr
	}
	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tRUN ID\tFINAL\tSTEPS")
	for _, o := range outcomes {
		c, cerr := o.Config.ToCircuit()
		if cerr != nil {
			return cerr
		}
		runID, serr := st.Save(c, o.Config.ToSim(), o.Config.Params(), o.Result)
		if serr != nil {
			return serr
		}
		fmt.Fprintf(w, "%s\t%s\t%.6g\t%d\n", o.Name, runID, o.Result.Metrics["final"], o.Result.StepsTaken)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	return err
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
