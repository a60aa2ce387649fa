package main

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/linebot/pkg/config"
	"github.com/gwillem/linebot/pkg/linefollow"
	"github.com/gwillem/linebot/pkg/pilot"
	"github.com/gwillem/linebot/pkg/robot"
)

func simObservation(t *testing.T, sim *robot.SimHardware, n int) linefollow.Observation {
	t.Helper()
	l, err := sim.LeftColor.Script(n)
	require.NoError(t, err)
	r, err := sim.RightColor.Script(n)
	require.NoError(t, err)
	d, err := sim.Distance.Script(n)
	require.NoError(t, err)
	return linefollow.Observation{Left: l, Right: r, Distance: d}
}

func TestSimCourse_Features(t *testing.T) {
	sim := newSimCourse(robot.RealClock{})
	c := linefollow.NewClassifier(linefollow.DefaultParams())
	armed := linefollow.NewDebounce(-1)

	tests := []struct {
		tick int
		want linefollow.Feature
	}{
		{0, linefollow.Line},
		{simMarkerTick - 1, linefollow.Line},
		{simMarkerTick, linefollow.TurnLeft},
		{simObstacleTick, linefollow.Obstacle},
		{simObstacleTick + 1, linefollow.Line},
		{simSpillTick, linefollow.SpillZone},
		{simSpillTick + 1, linefollow.Line},
	}
	for _, tt := range tests {
		obs := simObservation(t, sim, tt.tick)
		assert.Equal(t, tt.want, c.Classify(obs, armed), "tick %d", tt.tick)
	}
}

func TestSimCourse_RunsPastSpillZone(t *testing.T) {
	sim := newSimCourse(robot.NewSimClock(time.Unix(0, 0)))
	ticks := simSpillTick + 20
	ctrl := newController(sim.Hardware, config.Default(), slog.New(slog.DiscardHandler), ticks)

	require.NoError(t, ctrl.Run(context.Background(), simProfile()))

	assert.Equal(t, ticks, sim.LeftColor.Reads())
	assert.Len(t, sim.ClawHorizontal.Runs(), 1, "one grasp")

	last := <-ctrl.States()
	assert.Equal(t, ticks, last.Tick)
	assert.Equal(t, linefollow.Line, last.Feature)
}

func TestSimCourse_LineStaysInRange(t *testing.T) {
	sim := newSimCourse(robot.RealClock{})
	p := linefollow.DefaultParams()
	profile := simProfile()

	for n := 0; n < simMarkerTick; n++ {
		obs := simObservation(t, sim, n)
		l, r := profile.Correct(obs.Left, obs.Right)
		cmd := linefollow.Steer(l, r, p)
		assert.LessOrEqual(t, max(cmd.Left, cmd.Right), p.MaxSpeed)
		assert.GreaterOrEqual(t, min(cmd.Left, cmd.Right), -p.MaxSpeed)
	}
}

func TestRunModel_Update(t *testing.T) {
	sim := newSimCourse(robot.RealClock{})
	ctrl := pilot.New(pilot.Config{Hardware: sim.Hardware, Line: linefollow.DefaultParams()})
	m := initialRunModel(ctrl, pilot.NewLogSink(1, nil), 800, true)

	next, _ := m.Update(stateMsg{Tick: 3, Feature: linefollow.Obstacle, Distance: 22})
	m = next.(runModel)
	assert.Contains(t, m.View(), "obstacle")
	assert.Contains(t, m.View(), "simulated course")

	for i := 0; i < maxLogs+2; i++ {
		next, _ = m.Update(logMsg("line"))
		m = next.(runModel)
	}
	assert.Len(t, m.logs, maxLogs)

	next, _ = m.Update(doneMsg{err: robot.ErrNotCalibrated})
	m = next.(runModel)
	assert.True(t, m.done)
	assert.ErrorIs(t, m.runErr, robot.ErrNotCalibrated)
	assert.Contains(t, m.View(), "no baseline")
}
