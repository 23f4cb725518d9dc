package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/san-kum/walksim/internal/dynamo"
	"github.com/san-kum/walksim/internal/sim"
	"github.com/san-kum/walksim/internal/walker"
)

func TestStrikeLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sl := NewStrikeLogger(zap.New(core))

	sl.OnStrike(sim.StrikeEvent{
		Index:      3,
		Time:       2.25,
		Duration:   0.75,
		PostImpact: dynamo.State{-0.1, 0.5, -0.2, 0.01},
		Foot:       walker.Point{X: 0.3, Y: -0.001},
	})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "foot strike", entry.Message)
	assert.Equal(t, "strike", entry.LoggerName)
	assert.Equal(t, zapcore.DebugLevel, entry.Level)

	fields := entry.ContextMap()
	assert.Equal(t, int64(3), fields["index"])
	assert.Equal(t, 2.25, fields["t"])
	assert.Equal(t, 0.75, fields["elapsed"])
	assert.Equal(t, 0.3, fields["foot_x"])
	assert.Equal(t, []interface{}{-0.1, 0.5, -0.2, 0.01}, fields["state"])
}

func TestStrikeLoggerSilentAtInfo(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	NewStrikeLogger(zap.New(core)).OnStrike(sim.StrikeEvent{Index: 1})
	assert.Zero(t, logs.Len())
}

func TestStrikeLoggerNil(t *testing.T) {
	assert.NotPanics(t, func() {
		NewStrikeLogger(nil).OnStrike(sim.StrikeEvent{Index: 1})
	})
}

func TestRunFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	res := &sim.Result{
		Times:      []float64{0, 0.1},
		States:     []dynamo.State{{0, 0, 0, 0}, {0, 0, 0, 0}},
		Feet:       []walker.Point{{}, {}},
		Strikes:    []sim.StrikeEvent{{Index: 1}},
		Outcome:    sim.Fell,
		StepsTaken: 10,
	}
	zap.New(core).Info("run finished", RunFields(res)...)

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "fell", fields["outcome"])
	assert.Equal(t, int64(1), fields["strikes"])
	assert.Equal(t, int64(10), fields["steps"])
	assert.Equal(t, int64(2), fields["samples"])
}

func TestNew(t *testing.T) {
	log, err := New(true)
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	log, err = New(false)
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}
