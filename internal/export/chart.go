// Package export renders stored walker trajectories as image files.
package export

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/san-kum/walksim/internal/storage"
	"github.com/san-kum/walksim/internal/walker"
)

var ErrEmptyTrajectory = errors.New("export: trajectory has no samples")

// Size of a chart page.
var (
	ChartWidth  = 8 * vg.Inch
	ChartHeight = 6 * vg.Inch
)

func limitedTicker(maxLabels int, labelFmt string) plot.Ticker {
	if maxLabels < 2 {
		maxLabels = 2
	}
	return plot.TickerFunc(func(min, max float64) []plot.Tick {
		if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
			return nil
		}
		if min == max {
			return []plot.Tick{{Value: min, Label: fmt.Sprintf(labelFmt, min)}}
		}
		step := (max - min) / float64(maxLabels-1)
		ticks := make([]plot.Tick, 0, maxLabels)
		for i := 0; i < maxLabels; i++ {
			v := min + float64(i)*step
			ticks = append(ticks, plot.Tick{Value: v, Label: fmt.Sprintf(labelFmt, v)})
		}
		return ticks
	})
}

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.TextStyle.Font.Size = vg.Points(11)
	p.Y.Label.TextStyle.Font.Size = vg.Points(11)
	p.X.Padding = vg.Points(8)
	p.Y.Padding = vg.Points(8)
	p.X.Tick.Marker = limitedTicker(8, "%.1f")
	p.Y.Tick.Marker = limitedTicker(6, "%.2f")
	p.Add(plotter.NewGrid())
}

func series(times []float64, value func(i int) float64) plotter.XYs {
	pts := make(plotter.XYs, len(times))
	for i, t := range times {
		pts[i].X = t
		pts[i].Y = value(i)
	}
	return pts
}

// anglePlot shows both leg angles against time.
func anglePlot(title string, traj *storage.Trajectory) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "angle (rad)"
	stylePlot(p)

	stance := series(traj.Times, func(i int) float64 { return traj.States[i][walker.StanceAngle] })
	swing := series(traj.Times, func(i int) float64 { return traj.States[i][walker.SwingAngle] })
	if err := plotutil.AddLines(p, "theta_st", stance, "theta_sw", swing); err != nil {
		return nil, err
	}
	p.Legend.Top = true
	return p, nil
}

// footPlot shows the stance foot advancing down the slope.
func footPlot(traj *storage.Trajectory) (*plot.Plot, error) {
	p := plot.New()
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "foot x (m)"
	stylePlot(p)

	foot := series(traj.Times, func(i int) float64 { return traj.Feet[i].X })
	line, err := plotter.NewLine(foot)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = plotutil.Color(2)
	p.Add(line)
	return p, nil
}

// Chart writes leg angles and foot position against time to path. The
// image format follows the file extension (png, svg, pdf, ...).
func Chart(path, title string, traj *storage.Trajectory) error {
	if traj == nil || len(traj.Times) == 0 {
		return ErrEmptyTrajectory
	}
	if len(traj.States) != len(traj.Times) || len(traj.Feet) != len(traj.Times) {
		return fmt.Errorf("export: %d times, %d states, %d feet", len(traj.Times), len(traj.States), len(traj.Feet))
	}

	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	c, err := draw.NewFormattedCanvas(ChartWidth, ChartHeight, format)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	angles, err := anglePlot(title, traj)
	if err != nil {
		return err
	}
	foot, err := footPlot(traj)
	if err != nil {
		return err
	}

	plots := [][]*plot.Plot{{angles}, {foot}}
	tiles := draw.Tiles{
		Rows: 2,
		Cols: 1,
		PadX: vg.Millimeter,
		PadY: vg.Millimeter * 4,
	}
	canvases := plot.Align(plots, tiles, draw.New(c))
	for j := range plots {
		plots[j][0].Draw(canvases[j][0])
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("cannot write %s: %w", format, err)
	}
	return f.Close()
}
