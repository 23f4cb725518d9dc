package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/walksim/internal/config"
	"github.com/san-kum/walksim/internal/experiment"
	"github.com/san-kum/walksim/internal/export"
	"github.com/san-kum/walksim/internal/logging"
	"github.com/san-kum/walksim/internal/report"
	"github.com/san-kum/walksim/internal/sim"
	"github.com/san-kum/walksim/internal/storage"
)

var (
	dataDir string
	verbose bool

	configFile string
	preset     string
	dt         float64
	maxT       float64
	downsample int
	stopAfter  int
	integrator string
	policy     string
	torque     float64
	x0         []float64
	// physical parameters
	alpha  float64
	mHip   float64
	mSwing float64
	length float64
	// event detection
	minStance float64
	strikeGap float64

	noSave    bool
	chartPath string

	// phase plot axes
	xAxis     int
	yAxis     int
	returnMap bool
)

var log = zap.NewNop()

// main is the entry point for the walksim CLI.
func main() {
	rootCmd := &cobra.Command{
		Use:           "walksim",
		Short:         "passive dynamic walker simulation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(verbose)
			if err != nil {
				return err
			}
			log = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = log.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".walksim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging, one line per foot strike")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().StringVar(&chartPath, "chart", "", "also write a chart (png, svg, pdf)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase space plot",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	phaseCmd.Flags().IntVar(&yAxis, "y-axis", 1, "state index for y-axis")
	phaseCmd.Flags().BoolVar(&returnMap, "return-map", false, "plot the strike-to-strike return map of the x-axis component")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "gait frequency and periodicity",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	chartCmd := &cobra.Command{
		Use:   "chart [run_id] [file]",
		Short: "render angles and foot position to an image",
		Args:  cobra.ExactArgs(2),
		RunE:  chartRun,
	}

	rootCmd.AddCommand(runCmd, listCmd, showCmd, presetsCmd, plotCmd, phaseCmd, analyzeCmd,
		exportCSVCmd, exportJSONCmd, chartCmd)
	rootCmd.AddCommand(batchCommands()...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration ("+strings.Join(config.ListPresets(), ", ")+")")
	f.Float64Var(&dt, "dt", def.Dt, "timestep")
	f.Float64Var(&maxT, "time", def.MaxT, "maximum simulated time")
	f.IntVar(&downsample, "downsample", def.Downsample, "record every n-th step")
	f.IntVar(&stopAfter, "stop-after", 0, "stop after n foot strikes (0 = never)")
	f.StringVar(&integrator, "integrator", def.Integrator, "integrator")
	f.StringVar(&policy, "policy", def.Policy, "control policy")
	f.Float64Var(&torque, "torque", 0, "hip torque for the constant policy")
	f.Float64SliceVar(&x0, "x0", def.X0, "initial post-strike state: theta_st,dtheta_st,theta_sw,dtheta_sw")
	f.Float64Var(&alpha, "alpha", def.Params.Alpha, "slope angle (rad)")
	f.Float64Var(&mHip, "m-hip", def.Params.MHip, "hip mass")
	f.Float64Var(&mSwing, "m-sw", def.Params.MSwing, "swing foot mass")
	f.Float64Var(&length, "length", def.Params.Length, "leg length")
	f.Float64Var(&minStance, "min-stance", def.Event.MinStance, "stance angle a strike requires")
	f.Float64Var(&strikeGap, "strike-gap", def.Event.Gap, "strike detection window")
}

// resolveConfig layers preset, config file and explicitly set flags, in
// that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
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
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.MaxT = maxT
	}
	if flags.Changed("downsample") {
		cfg.Downsample = downsample
	}
	if flags.Changed("stop-after") {
		cfg.StopAfter = stopAfter
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("policy") {
		cfg.Policy = policy
	}
	if flags.Changed("torque") {
		cfg.Torque = torque
	}
	if flags.Changed("x0") {
		cfg.X0 = append([]float64(nil), x0...)
	}
	if flags.Changed("alpha") {
		cfg.Params.Alpha = alpha
	}
	if flags.Changed("m-hip") {
		cfg.Params.MHip = mHip
	}
	if flags.Changed("m-sw") {
		cfg.Params.MSwing = mSwing
	}
	if flags.Changed("length") {
		cfg.Params.Length = length
	}
	if flags.Changed("min-stance") {
		cfg.Event.MinStance = minStance
	}
	if flags.Changed("strike-gap") {
		cfg.Event.Gap = strikeGap
	}

	return cfg, cfg.Validate()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	exp, err := experiment.Build(cfg)
	if err != nil {
		return err
	}
	exp.Driver().AddObserver(logging.NewStrikeLogger(log))

	log.Info("running walker", zap.String("integrator", cfg.Integrator),
		zap.Float64("dt", cfg.Dt), zap.Float64("max_t", cfg.MaxT), zap.Float64("alpha", cfg.Params.Alpha))
	start := time.Now()
	result, runErr := exp.Run(cmd.Context())
	elapsed := time.Since(start)
	if result == nil {
		return runErr
	}
	log.Info("run finished", logging.RunFields(result)...)

	runID := ""
	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err = st.Save(cfg, result)
		if err != nil {
			return err
		}
	}

	fmt.Println(report.Summary(runID, result, elapsed))

	if chartPath != "" && result.Len() > 0 {
		traj := &storage.Trajectory{Times: result.Times, States: result.States, Feet: result.Feet}
		if err := export.Chart(chartPath, "walker "+runID, traj); err != nil {
			return err
		}
		fmt.Printf("chart: %s\n", chartPath)
	}

	return runErr
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
	fmt.Fprintln(w, "ID\tTIME\tOUTCOME\tSTRIKES\tMAX_T\tDT\tINTEG\tALPHA")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2fs\t%.0es\t%s\t%.5f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Outcome,
			run.Strikes,
			run.MaxT,
			run.Dt,
			run.Integrator,
			run.Params["alpha"],
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tALPHA\tDT\tMAX_T\tDOWNSAMPLE\tINTEG")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%.5f\t%g\t%g\t%d\t%s\n", name, p.Params.Alpha, p.Dt, p.MaxT, p.Downsample, p.Integrator)
	}
	return w.Flush()
}

// outcomeOf reads a stored outcome name, tolerating runs written by other
// versions.
func outcomeOf(meta *storage.RunMetadata) sim.Outcome {
	o, err := sim.ParseOutcome(meta.Outcome)
	if err != nil {
		return sim.Incomplete
	}
	return o
}
