package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/mnasim/internal/circuit"
	"github.com/san-kum/mnasim/internal/config"
	"github.com/san-kum/mnasim/internal/metrics"
	"github.com/san-kum/mnasim/internal/sim"
	"github.com/san-kum/mnasim/internal/solve"
	"github.com/san-kum/mnasim/internal/storage"
	"github.com/san-kum/mnasim/internal/trace"
	"github.com/san-kum/mnasim/internal/tui"
	"github.com/san-kum/mnasim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string

	h          float64
	tmax       float64
	solverKind string
	lenient    bool
	params     map[string]string

	recordPath string
	header     string
	imagePath  string
	noPlot     bool
	noTrace    bool
	traceEvery int
	theme      string

	outPath string
	force   bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mnasim",
		Short: "transient MNA simulation of a DC motor",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "run store directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the transient simulation",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringVar(&recordPath, "record", storage.DefaultRecordPath, "record file (empty disables)")
	runCmd.Flags().StringVar(&header, "header", storage.DefaultRecordHeader, "record header line")
	runCmd.Flags().StringVar(&imagePath, "image", "", "write a plot image (.png, .svg or .pdf)")
	runCmd.Flags().BoolVar(&noPlot, "no-plot", false, "skip the terminal plot")
	runCmd.Flags().BoolVar(&noTrace, "no-trace", false, "skip the console trace")
	runCmd.Flags().IntVar(&traceEvery, "trace-every", 1, "echo every n-th sample")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&imagePath, "image", "", "write a plot image instead of the terminal charts")
	addStoreFlags(listCmd, plotCmd)

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored run to JSON (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (stdout if empty)")
	addStoreFlags(exportJSONCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "print the assembled system and its inverse",
		Args:  cobra.NoArgs,
		RunE:  inspectSystem,
	}
	addSimFlags(inspectCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "step the simulation in an interactive viewer",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage config files",
	}
	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the default config as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	configInitCmd.Flags().StringVar(&preset, "preset", "", "start from a preset")
	configInitCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportJSONCmd, presetsCmd, inspectCmd, liveCmd, configCmd)
	addAnalysisCommands(rootCmd)
	return rootCmd
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&h, "h", config.DefaultH, "time step")
	cmd.Flags().Float64Var(&tmax, "tmax", config.DefaultTMax, "simulated time")
	cmd.Flags().StringVar(&solverKind, "solver", config.DefaultSolver, fmt.Sprintf("solver %v", solve.Kinds()))
	cmd.Flags().BoolVar(&lenient, "lenient", false, "skip pivotless columns instead of failing")
	cmd.Flags().StringToStringVar(&params, "param", nil, "motor parameter override, e.g. --param ra=0.6")
	cmd.Flags().StringVar(&theme, "theme", config.DefaultTheme, fmt.Sprintf("color theme %v", viz.ThemeNames()))
}

// addStoreFlags lets the read-only run commands find the store named by a
// config file's output.data_dir.
func addStoreFlags(cmds ...*cobra.Command) {
	for _, cmd := range cmds {
		cmd.Flags().StringVar(&configFile, "config", "", "config file whose data_dir holds the runs")
	}
}

// openStore resolves the run store: --data, then the config file's
// data_dir, then the default.
func openStore(cmd *cobra.Command) (*storage.Store, error) {
	dir := dataDir
	if configFile != "" && !cmd.Flags().Changed("data") {
		cfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.Output.DataDir != "" {
			dir = cfg.Output.DataDir
		}
	}
	return storage.New(dir), nil
}

// loadConfig layers defaults, preset, config file and changed flags, in
// that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.LoadWith(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("h") {
		cfg.H = h
	}
	if flags.Changed("tmax") {
		cfg.TMax = tmax
	}
	if flags.Changed("solver") {
		cfg.Solver = solverKind
	}
	if flags.Changed("lenient") {
		cfg.LenientSingular = lenient
	}
	if flags.Changed("theme") {
		cfg.Output.Theme = theme
	}
	if flags.Changed("data") {
		cfg.Output.DataDir = dataDir
	}
	if flags.Lookup("record") != nil {
		if flags.Changed("record") {
			cfg.Output.Record = recordPath
		}
		if flags.Changed("header") {
			cfg.Output.Header = header
		}
		if flags.Changed("image") {
			cfg.Output.Image = imagePath
		}
		if flags.Changed("no-plot") {
			cfg.Output.Terminal = !noPlot
		}
		if flags.Changed("no-trace") {
			cfg.Output.Trace = !noTrace
		}
		if flags.Changed("trace-every") {
			cfg.Output.TraceEvery = traceEvery
		}
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v, err := strconv.ParseFloat(params[name], 64)
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", name, err)
		}
		if err := cfg.Motor.SetParam(name, v); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func plotNames(c *circuit.Circuit) []string {
	names := make([]string, len(c.Plot))
	for i, p := range c.Plot {
		names[i] = p.Label
		if names[i] == "" {
			names[i] = c.Label(p.Index)
		}
	}
	return names
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	c, err := cfg.ToCircuit()
	if err != nil {
		return err
	}

	s := sim.New(c)

	ms := metrics.Default()
	if cfg.Circuit == nil {
		ms = metrics.ForMotor(cfg.Motor)
	}
	for _, m := range ms {
		s.AddMetric(m)
	}

	if cfg.Output.Record != "" {
		rec, err := storage.CreateRecorder(cfg.Output.Record, cfg.Output.Header)
		if err != nil {
			return err
		}
		defer rec.Close()
		s.AddObserver(rec)
	}

	out := cmd.OutOrStdout()
	if cfg.Output.Trace {
		s.AddObserver(trace.New(out, c.Label(c.Record.Index),
			trace.WithEvery(cfg.Output.TraceEvery),
			trace.WithTheme(cfg.Output.Theme),
		))
	}

	var plots viz.Multi
	if cfg.Output.Terminal {
		plots = append(plots, viz.NewTerminal(out, plotNames(c)))
	}
	if cfg.Output.Image != "" {
		im, err := viz.NewImage(cfg.Output.Image, c.Name, plotNames(c))
		if err != nil {
			return err
		}
		plots = append(plots, im)
	}
	if len(plots) > 0 {
		s.AddPlotter(plots)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	styles := viz.NewStyles(out, viz.GetTheme(cfg.Output.Theme))
	fmt.Fprintln(out, styles.Title.Render(fmt.Sprintf("running %s", c)))
	start := time.Now()

	simCfg := cfg.ToSim()
	result, err := s.Run(ctx, simCfg)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	st := storage.New(cfg.Output.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(c, simCfg, cfg.Params(), result)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "completed in %v\n", elapsed)
	fmt.Fprintf(out, "run id: %s\n", runID)
	fmt.Fprintf(out, "steps: %d (%s)\n", result.StepsTaken, result.Solver)
	if cfg.Output.Record != "" {
		fmt.Fprintf(out, "record: %s\n", cfg.Output.Record)
	}
	if cfg.Output.Image != "" {
		fmt.Fprintf(out, "image: %s\n", cfg.Output.Image)
	}

	fmt.Fprintln(out, "\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %s: %.6g\n", name, result.Metrics[name])
	}

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	runs, err := st.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCIRCUIT\tTIME\tTMAX\tH\tSOLVER\tSTEPS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%gs\t%gs\t%s\t%d\n",
			run.ID,
			run.Circuit,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.TMax,
			run.H,
			run.Solver,
			run.Steps,
		)
	}

	return w.Flush()
}

func resolveRunID(st *storage.Store, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return st.Latest()
}

func plotRun(cmd *cobra.Command, args []string) error {
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
	if len(states) == 0 {
		return errors.New("no data to plot")
	}

	out := cmd.OutOrStdout()

	if imagePath != "" {
		im, err := viz.NewImage(imagePath, meta.ID, meta.Unknowns)
		if err != nil {
			return err
		}
		im.SetLabels("t (s)", "")
		for i, state := range states {
			for j, v := range state {
				im.AddRow(times[i], j, v)
			}
		}
		if err := im.Plot(); err != nil {
			return err
		}
		fmt.Fprintf(out, "image: %s\n", imagePath)
		return nil
	}

	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "circuit: %s\n", meta.Circuit)
	fmt.Fprintf(out, "samples: %d\n\n", len(states))

	for varIdx := 0; varIdx < len(states[0]); varIdx++ {
		data := make([]float64, len(states))
		for i := range states {
			if varIdx < len(states[i]) {
				data[i] = states[i][varIdx]
			}
		}

		caption := fmt.Sprintf("x%d vs time", varIdx)
		if varIdx < len(meta.Unknowns) {
			caption = meta.Unknowns[varIdx] + " vs time"
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(caption),
		)
		fmt.Fprintln(out, graph)
		fmt.Fprintln(out)
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	runID, err := resolveRunID(st, args)
	if err != nil {
		return err
	}

	if outPath == "" {
		return st.ExportJSON(cmd.OutOrStdout(), runID)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := st.ExportJSON(f, runID); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %s to %s\n", runID, outPath)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		fmt.Fprintf(w, "%s\t%s\n", name, config.DescribePreset(name))
	}
	return w.Flush()
}

func inspectSystem(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	c, err := cfg.ToCircuit()
	if err != nil {
		return err
	}
	g, err := c.Assemble()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	styles := viz.NewStyles(out, viz.GetTheme(cfg.Output.Theme))

	fmt.Fprintln(out, styles.Title.Render(c.String()))
	for i := 0; i < c.Dim; i++ {
		fmt.Fprintf(out, "%s%d\n", styles.Label.Render(c.Label(i)), i)
	}

	fmt.Fprintln(out, styles.Title.Render("G"))
	fmt.Fprint(out, g.String())

	det, err := g.Determinant()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%s%g\n", styles.Label.Render("det"), det)

	lu, err := solve.NewLU(g)
	if err != nil {
		fmt.Fprintf(out, "%s%s\n", styles.Label.Render("cond"), styles.Error.Render(err.Error()))
	} else {
		fmt.Fprintf(out, "%s%g\n", styles.Label.Render("cond"), lu.Cond())
	}

	cached, err := solve.NewCached(g, solve.Options{LenientSingular: cfg.LenientSingular})
	if err != nil {
		return err
	}
	inv := cached.InverseMatrix()
	fmt.Fprintln(out, styles.Title.Render("G⁻¹"))
	fmt.Fprint(out, inv.String())
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	c, err := cfg.ToCircuit()
	if err != nil {
		return err
	}
	return tui.Run(sim.New(c), cfg.ToSim(), cfg.Output.Theme)
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "mnasim.yaml"
	if len(args) > 0 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s exists (use --force to overwrite)", path)
	}

	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}
