package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/walksim/internal/analysis"
	"github.com/san-kum/walksim/internal/export"
	"github.com/san-kum/walksim/internal/storage"
	"github.com/san-kum/walksim/internal/walker"
)

var stateCaptions = [walker.StateDim]string{
	"theta_st (stance angle)",
	"dtheta_st (stance rate)",
	"theta_sw (swing angle)",
	"dtheta_sw (swing rate)",
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	traj, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	if len(traj.States) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("outcome: %s\n", meta.Outcome)
	fmt.Printf("samples: %d\n\n", len(traj.States))

	for idx, caption := range stateCaptions {
		data := make([]float64, len(traj.States))
		for i, x := range traj.States {
			data[i] = x[idx]
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(caption),
		))
		fmt.Println()
	}

	foot := make([]float64, len(traj.Feet))
	for i, p := range traj.Feet {
		foot[i] = p.X
	}
	fmt.Println(asciigraph.Plot(foot,
		asciigraph.Height(6),
		asciigraph.Width(80),
		asciigraph.Caption("foot x"),
	))

	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	var portrait *analysis.PhasePortrait2D
	if returnMap {
		strikes, err := st.LoadStrikes(runID)
		if err != nil {
			return err
		}
		if len(strikes) < 2 {
			return fmt.Errorf("return map needs at least two strikes, run has %d", len(strikes))
		}
		portrait = analysis.ReturnMap(strikes, xAxis)
	} else {
		traj, err := st.LoadStates(runID)
		if err != nil {
			return err
		}
		if len(traj.States) == 0 {
			return fmt.Errorf("no data to plot")
		}
		portrait = analysis.NewPhasePortrait(traj.States, xAxis, yAxis)
	}
	if portrait == nil {
		return fmt.Errorf("state dimension too small for selected axes")
	}

	fmt.Printf("phase space plot: %s\n", meta.ID)
	if returnMap {
		fmt.Printf("return map of x%d at strikes (%d points)\n\n", xAxis, len(portrait.Points))
	} else {
		fmt.Printf("x-axis: x%d, y-axis: x%d\n\n", xAxis, yAxis)
	}
	fmt.Print(analysis.PhasePortraitToASCII(portrait, 70, 20))

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	traj, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	strikes, err := st.LoadStrikes(runID)
	if err != nil {
		return err
	}

	if len(traj.Times) < 2 {
		return fmt.Errorf("no data")
	}

	fmt.Printf("gait analysis: %s\n", meta.ID)
	fmt.Printf("outcome: %s (walking: %v)\n\n", meta.Outcome, outcomeOf(meta).Walking())

	data := make([]float64, len(traj.States))
	for i, x := range traj.States {
		data[i] = x[walker.StanceAngle]
	}
	sampleDt := traj.Times[1] - traj.Times[0]

	freq, err := analysis.DominantFrequency(data, sampleDt)
	switch {
	case errors.Is(err, analysis.ErrShortSeries):
		fmt.Println("series too short for a spectrum")
	case err != nil:
		return err
	default:
		ps := analysis.PowerSpectrum(data)
		fmt.Println(asciigraph.Plot(ps[:len(ps)/4],
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum (theta_st)"),
		))
		fmt.Println()
		fmt.Printf("dominant frequency: %.3f hz\n", freq)
		if freq > 0 {
			// one stride is two steps
			fmt.Printf("stride period: %.3f s\n", 1.0/freq)
		}
	}

	if len(strikes) == 0 {
		fmt.Println("no foot strikes")
		return nil
	}

	mean := 0.0
	for _, ev := range strikes {
		mean += ev.Duration
	}
	mean /= float64(len(strikes))
	fmt.Printf("strikes: %d, mean step period: %.4f s\n", len(strikes), mean)

	transient := len(strikes) / 2
	if residual, ok := analysis.PeriodicityResidual(strikes, transient); ok {
		fmt.Printf("periodicity residual (after %d strikes): %.3e\n", transient, residual)
	}

	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	traj, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	if len(traj.States) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := []string{"time", "theta_st", "dtheta_st", "theta_sw", "dtheta_sw", "foot_x", "foot_y"}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, x := range traj.States {
		row := []string{strconv.FormatFloat(traj.Times[i], 'f', 6, 64)}
		for _, val := range x {
			row = append(row, strconv.FormatFloat(val, 'f', 8, 64))
		}
		row = append(row,
			strconv.FormatFloat(traj.Feet[i].X, 'f', 8, 64),
			strconv.FormatFloat(traj.Feet[i].Y, 'f', 8, 64))
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	data, err := st.Export(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, data)
}

func chartRun(cmd *cobra.Command, args []string) error {
	runID, path := args[0], args[1]

	st := storage.New(dataDir)
	traj, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if err := export.Chart(path, "walker "+runID, traj); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
