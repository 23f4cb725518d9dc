// Package logging builds the CLI's zap logger and the strike observer that
// reports gait events through it.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/walksim/internal/sim"
)

// New returns a console logger at info level, or debug when verbose.
func New(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// StrikeLogger writes one debug line per foot strike.
type StrikeLogger struct {
	log *zap.Logger
}

func NewStrikeLogger(log *zap.Logger) *StrikeLogger {
	if log == nil {
		log = zap.NewNop()
	}
	return &StrikeLogger{log: log.Named("strike")}
}

func (s *StrikeLogger) OnStrike(ev sim.StrikeEvent) {
	s.log.Debug("foot strike",
		zap.Int("index", ev.Index),
		zap.Float64("t", ev.Time),
		zap.Float64("elapsed", ev.Duration),
		zap.Float64s("state", []float64(ev.PostImpact)),
		zap.Float64("foot_x", ev.Foot.X),
		zap.Float64("foot_y", ev.Foot.Y),
	)
}

// RunFields are the fields logged with a finished run.
func RunFields(res *sim.Result) []zap.Field {
	return []zap.Field{
		zap.Stringer("outcome", res.Outcome),
		zap.Int("strikes", len(res.Strikes)),
		zap.Int("steps", res.StepsTaken),
		zap.Int("samples", res.Len()),
	}
}
