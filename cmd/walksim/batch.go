package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/walksim/internal/analysis"
	"github.com/san-kum/walksim/internal/automation"
	"github.com/san-kum/walksim/internal/config"
	"github.com/san-kum/walksim/internal/dynamo"
	"github.com/san-kum/walksim/internal/experiment"
	"github.com/san-kum/walksim/internal/logging"
	"github.com/san-kum/walksim/internal/optim"
	"github.com/san-kum/walksim/internal/report"
	"github.com/san-kum/walksim/internal/storage"
	"github.com/san-kum/walksim/internal/stream"
	"github.com/san-kum/walksim/internal/walker"
)

var (
	workers int

	sweepParam     string
	sweepMin       float64
	sweepMax       float64
	sweepPoints    int
	sweepTransient int

	trials       int
	perturbation float64
	seed         int64
	minStrikes   int

	cycleTol    float64
	cycleIter   int
	cycleOutput string

	natsURL string
	subject string

	gridParams []string
	gridPoints int
	gridMin    []float64
	gridMax    []float64
	objective  string
	maximize   bool
)

func batchCommands() []*cobra.Command {
	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "vary one parameter and report steady-state step periods",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "alpha", "parameter to vary (alpha, m_hip, m_sw, l, g)")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", walker.DefaultParams().Alpha, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", -0.019, "last value")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 16, "number of values")
	sweepCmd.Flags().IntVar(&sweepTransient, "transient", 20, "strikes dropped before collecting periods")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 = one per cpu)")

	mcCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "estimate the basin of attraction by perturbing x0",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addConfigFlags(mcCmd)
	mcCmd.Flags().IntVar(&trials, "trials", 100, "number of trials")
	mcCmd.Flags().Float64Var(&perturbation, "perturbation", 0.02, "half-width of the uniform perturbation")
	mcCmd.Flags().Int64Var(&seed, "seed", 1, "random seed (0 = clock)")
	mcCmd.Flags().IntVar(&minStrikes, "min-strikes", 5, "strikes a trial needs to count as walking")
	mcCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 = one per cpu)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of simulations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	cycleCmd := &cobra.Command{
		Use:   "cycle",
		Short: "find the periodic gait and its stability",
		Args:  cobra.NoArgs,
		RunE:  findCycle,
	}
	addConfigFlags(cycleCmd)
	cycleCmd.Flags().Float64Var(&cycleTol, "tol", analysis.DefaultLimitCycleOptions().Tol, "stride map residual tolerance")
	cycleCmd.Flags().IntVar(&cycleIter, "iterations", analysis.DefaultLimitCycleOptions().MaxIter, "maximum Newton iterations")
	cycleCmd.Flags().StringVar(&cycleOutput, "output", "", "write the config with the found x0 to this file")

	streamCmd := &cobra.Command{
		Use:   "stream",
		Short: "publish samples to NATS while simulating",
		Args:  cobra.NoArgs,
		RunE:  streamRun,
	}
	addConfigFlags(streamCmd)
	streamCmd.Flags().StringVar(&natsURL, "nats", "nats://127.0.0.1:4222", "NATS server url")
	streamCmd.Flags().StringVar(&subject, "subject", stream.DefaultSubject, "sample subject")

	optimizeCmd := &cobra.Command{
		Use:   "optimize",
		Short: "grid search physical parameters for the best walking gait",
		Args:  cobra.NoArgs,
		RunE:  runOptimize,
	}
	addConfigFlags(optimizeCmd)
	optimizeCmd.Flags().StringSliceVar(&gridParams, "params", []string{"m_sw"}, "parameters to search")
	optimizeCmd.Flags().Float64SliceVar(&gridMin, "min", []float64{0.01}, "lower bound per parameter")
	optimizeCmd.Flags().Float64SliceVar(&gridMax, "max", []float64{0.2}, "upper bound per parameter")
	optimizeCmd.Flags().IntVar(&gridPoints, "points", 5, "values per parameter")
	optimizeCmd.Flags().StringVar(&objective, "metric", "speed", "metric to optimize")
	optimizeCmd.Flags().BoolVar(&maximize, "maximize", true, "maximize the metric instead of minimizing it")

	return []*cobra.Command{sweepCmd, mcCmd, scenarioCmd, cycleCmd, streamCmd, optimizeCmd}
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	sweep := &automation.Sweep{
		Base:      cfg,
		Param:     sweepParam,
		Min:       sweepMin,
		Max:       sweepMax,
		Points:    sweepPoints,
		Workers:   workers,
		Transient: sweepTransient,
	}
	points, err := automation.RunSweep(cmd.Context(), sweep, log)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tOUTCOME\tSTRIKES\tSTEP_LEN\tPERIODS\n", sweepParam)
	bif := make([]analysis.BifurcationPoint, 0, len(points))
	lengths := make([]float64, 0, len(points))
	for _, p := range points {
		periods := fmt.Sprintf("%.4f", p.Periods)
		if p.Err != "" {
			periods = "error: " + p.Err
		}
		fmt.Fprintf(w, "%.5f\t%s\t%d\t%.4f\t%s\n", p.Value, p.Outcome, p.Strikes, p.StepLength, periods)
		bif = append(bif, analysis.BifurcationPoint{Param: p.Value, Values: p.Periods})
		lengths = append(lengths, p.StepLength)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nmost period branches: %d\n\n", automation.MaxBranches(points))
	if plot := analysis.BifurcationToASCII(bif, 64, 16); plot != "" {
		fmt.Println("step period vs " + sweepParam)
		fmt.Print(plot)
		fmt.Println()
	}
	if len(lengths) > 1 {
		fmt.Println(asciigraph.Plot(lengths,
			asciigraph.Height(8),
			asciigraph.Width(64),
			asciigraph.Caption("step length vs "+sweepParam),
		))
	}
	return nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	mc := &automation.MonteCarlo{
		Base:         cfg,
		Perturbation: perturbation,
		Trials:       trials,
		Workers:      workers,
		Seed:         seed,
		MinStrikes:   minStrikes,
	}
	summary, err := automation.RunMonteCarlo(cmd.Context(), mc, log)
	if err != nil {
		return err
	}

	fmt.Println(report.MonteCarlo(summary))
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	results, err := automation.RunScenario(cmd.Context(), sc, log)

	st := storage.New(dataDir)
	for _, r := range results {
		id := ""
		if r.Step.Save {
			if initErr := st.Init(); initErr != nil {
				return initErr
			}
			var saveErr error
			id, saveErr = st.Save(r.Config, r.Result)
			if saveErr != nil {
				return saveErr
			}
		}
		if r.Step.Name != "" {
			fmt.Println(r.Step.Name)
		}
		fmt.Println(report.Summary(id, r.Result, 0))
	}
	return err
}

func findCycle(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	reg := experiment.NewRegistry()
	if _, err := reg.GetIntegrator(cfg.Integrator); err != nil {
		return err
	}

	opts := analysis.DefaultLimitCycleOptions()
	opts.Dt = cfg.Dt
	opts.Tol = cycleTol
	opts.MaxIter = cycleIter
	opts.Guard = cfg.Guard()
	opts.Integrator = func() dynamo.Integrator {
		integ, _ := reg.GetIntegrator(cfg.Integrator)
		return integ
	}

	log.Info("searching for limit cycle", zap.Float64s("guess", cfg.X0), zap.Float64("alpha", cfg.Params.Alpha))
	lc, err := analysis.FindLimitCycle(cmd.Context(), cfg.WalkerParams(), cfg.InitState(), opts)
	if err != nil {
		return err
	}
	fmt.Println(report.Cycle(lc))

	if cycleOutput != "" {
		out := cfg.Clone()
		out.X0 = lc.X0
		if err := config.Save(cycleOutput, out); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", cycleOutput)
	}
	return nil
}

func streamRun(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	exp, err := experiment.Build(cfg)
	if err != nil {
		return err
	}
	exp.Driver().AddObserver(logging.NewStrikeLogger(log))

	nc, err := stream.Connect(natsURL)
	if err != nil {
		return fmt.Errorf("connect %s: %w", natsURL, err)
	}
	defer nc.Close()

	s, err := exp.Stream(cmd.Context())
	if err != nil {
		return err
	}

	runID := storage.NewRunID()
	log.Info("streaming", zap.String("run", runID), zap.String("subject", subject), zap.String("url", natsURL))
	pub := stream.NewPublisher(nc, subject, runID)
	summary, err := pub.Publish(cmd.Context(), s)
	if flushErr := nc.Flush(); err == nil {
		err = flushErr
	}
	if summary != nil {
		log.Info("stream finished", zap.String("outcome", summary.Outcome),
			zap.Int("samples", summary.Samples), zap.Int("strikes", summary.Strikes))
	}
	if err != nil {
		return err
	}
	return s.Err()
}

func runOptimize(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if len(gridMin) != len(gridParams) || len(gridMax) != len(gridParams) {
		return fmt.Errorf("need one --min and --max per parameter")
	}
	if gridPoints < 1 {
		return fmt.Errorf("need at least one point per parameter")
	}

	ranges := make([][]float64, len(gridParams))
	for i := range gridParams {
		ranges[i] = (&automation.Sweep{Min: gridMin[i], Max: gridMax[i], Points: gridPoints}).Values()
	}
	grid := optim.NewGridSearch(gridParams, ranges)
	grid.Maximize = maximize

	best, all, err := grid.Search(cmd.Context(), cfg, objective)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARAMS\tWALKING\t"+objective)
	for _, c := range all {
		fmt.Fprintf(w, "%v\t%v\t%.6g\n", c.Params, c.Walking, c.Value)
	}
	if flushErr := w.Flush(); flushErr != nil {
		return flushErr
	}
	if err != nil {
		return err
	}

	fmt.Printf("\nbest %s: %.6g at %v\n", objective, best.Value, best.Params)
	return nil
}
