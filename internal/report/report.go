// Package report formats run results for the terminal.
package report

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/walksim/internal/analysis"
	"github.com/san-kum/walksim/internal/automation"
	"github.com/san-kum/walksim/internal/sim"
	"github.com/san-kum/walksim/internal/walker"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))

	title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	box   = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("238")).
		Padding(0, 1)
)

var stateLabels = [walker.StateDim]string{"θst", "θ̇st", "θsw", "θ̇sw"}

func outcomeStyle(o sim.Outcome) lipgloss.Style {
	switch {
	case o.Walking():
		return green
	case o == sim.Fell:
		return yellow
	case o == sim.Incomplete:
		return dim
	default:
		return red
	}
}

func row(label, value string) string {
	return dim.Render(fmt.Sprintf("%-12s", label)) + white.Render(value)
}

// Metrics lists metric values sorted by name.
func Metrics(m map[string]float64) string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, "  "+cyan.Render(fmt.Sprintf("%-14s", name))+white.Render(fmt.Sprintf("%.6g", m[name])))
	}
	return strings.Join(lines, "\n")
}

// Summary renders the outcome of a finished run.
func Summary(id string, res *sim.Result, elapsed time.Duration) string {
	lines := []string{title.Render("walker run")}
	if id != "" {
		lines = append(lines, row("run id", id))
	}
	lines = append(lines,
		row("outcome", outcomeStyle(res.Outcome).Render(res.Outcome.String())),
		row("steps", fmt.Sprintf("%d", res.StepsTaken)),
		row("samples", fmt.Sprintf("%d", res.Len())),
		row("strikes", fmt.Sprintf("%d", len(res.Strikes))),
	)
	if elapsed > 0 {
		lines = append(lines, row("elapsed", elapsed.Round(time.Microsecond).String()))
	}
	if n := res.Len(); n > 0 {
		lines = append(lines, row("final t", fmt.Sprintf("%.4f s", res.Times[n-1])))
		lines = append(lines, row("foot x", fmt.Sprintf("%.4f m", res.Feet[n-1].X)))
	}
	if len(res.Metrics) > 0 {
		lines = append(lines, "", magenta.Render("metrics"), Metrics(res.Metrics))
	}
	return box.Render(strings.Join(lines, "\n"))
}

// Cycle renders a limit cycle and its stability.
func Cycle(lc *analysis.LimitCycle) string {
	lines := []string{title.Render("limit cycle")}
	for i, v := range lc.X0 {
		lines = append(lines, row(stateLabels[i], fmt.Sprintf("%+.8f", v)))
	}
	lines = append(lines,
		row("period", fmt.Sprintf("%.4f s", lc.Period)),
		row("residual", fmt.Sprintf("%.2e", lc.Residual)),
		row("iterations", fmt.Sprintf("%d", lc.Iterations)),
	)

	mults := make([]string, len(lc.Multipliers))
	for i, m := range lc.Multipliers {
		mults[i] = fmt.Sprintf("%.4f%+.4fi", real(m), imag(m))
	}
	lines = append(lines, row("multipliers", strings.Join(mults, "  ")))
	if lc.Stable() {
		lines = append(lines, row("stability", green.Render("stable")))
	} else {
		lines = append(lines, row("stability", red.Render("unstable")))
	}
	return box.Render(strings.Join(lines, "\n"))
}

// MonteCarlo renders a basin estimate.
func MonteCarlo(s *automation.MonteCarloSummary) string {
	lines := []string{
		title.Render("monte carlo"),
		row("trials", fmt.Sprintf("%d", len(s.Trials))),
		row("walking", green.Render(fmt.Sprintf("%d", s.Walking))),
		row("fell", yellow.Render(fmt.Sprintf("%d", s.Fell))),
		row("failed", red.Render(fmt.Sprintf("%d", s.Failed))),
		row("basin", fmt.Sprintf("%.1f%%", 100*s.WalkingFraction())),
	}
	return box.Render(strings.Join(lines, "\n"))
}
