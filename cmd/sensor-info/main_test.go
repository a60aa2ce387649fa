package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/linebot/pkg/robot"
)

func TestMonitorModel_Tick(t *testing.T) {
	m := monitorModel{
		left:       robot.NewSimColorSensor(robot.ColorReading{R: 40, G: 140, B: 50}),
		right:      robot.NewSimColorSensor(robot.ColorReading{R: 200, G: 210, B: 190}),
		distance:   robot.NewSimDistanceSensor(42.5),
		greenRatio: 1.65,
	}

	next, cmd := m.Update(tickMsg(time.Now()))
	m = next.(monitorModel)
	assert.NotNil(t, cmd, "keeps ticking")
	assert.Equal(t, 140, m.readings[0].G)
	assert.Equal(t, 42.5, m.cm)
	assert.NoError(t, m.err)

	view := m.View()
	assert.Contains(t, view, "true")
	assert.Contains(t, view, "false")
	assert.Contains(t, view, "42.5 cm")
}

func TestMonitorModel_ReadError(t *testing.T) {
	m := monitorModel{
		left: robot.NewSimColorSensor(),
		right: &robot.SimColorSensor{Script: func(int) (robot.ColorReading, error) {
			return robot.ColorReading{}, errors.New("no ack")
		}},
		distance: robot.NewSimDistanceSensor(),
	}

	next, _ := m.Update(tickMsg(time.Now()))
	m = next.(monitorModel)
	require.Error(t, m.err)
	assert.Contains(t, m.View(), "no ack")
	assert.Equal(t, 255.0, m.cm)
}

func TestWiggleMotor(t *testing.T) {
	motor := robot.NewSimMotor("claw_vertical", 1000)

	require.NoError(t, wiggleMotor(context.Background(), motor, time.Second))

	assert.Equal(t, []robot.MotorCommand{
		{Op: robot.OpRunToRelPos, Speed: 200, Counts: 60},
		{Op: robot.OpRunToRelPos, Speed: -200, Counts: -120},
		{Op: robot.OpRunToRelPos, Speed: 200, Counts: 60},
	}, motor.Runs())
}

func TestWiggleAll(t *testing.T) {
	sim := robot.NewSimHardware(robot.NewSimClock(time.Unix(0, 0)), robot.NewSimColorSensor(), robot.NewSimColorSensor(), robot.NewSimDistanceSensor())
	cfg := robot.DefaultHardwareConfig()

	results, err := wiggleAll(context.Background(), sim.Hardware, cfg, func(name robot.MotorName) (bool, error) {
		return name != robot.ClawHorizontal, nil
	})
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, wiringResult{motor: robot.ClawHorizontal, id: 4, moved: false}, results[3])
	assert.Len(t, sim.ClawHorizontal.Runs(), 3)

	out := wiringTable(results)
	assert.Contains(t, out, "check id")
	assert.Contains(t, out, "left_wheel")
}

func TestWiggleAll_AbortReturnsError(t *testing.T) {
	sim := robot.NewSimHardware(robot.NewSimClock(time.Unix(0, 0)), robot.NewSimColorSensor(), robot.NewSimColorSensor(), robot.NewSimDistanceSensor())

	asked := 0
	_, err := wiggleAll(context.Background(), sim.Hardware, robot.DefaultHardwareConfig(), func(robot.MotorName) (bool, error) {
		asked++
		if asked == 2 {
			return false, errAborted
		}
		return true, nil
	})
	assert.ErrorIs(t, err, errAborted)
	assert.Equal(t, 2, asked)
	assert.Len(t, sim.RightWheel.Runs(), 3)
	assert.Empty(t, sim.ClawVertical.Runs(), "check stops at the cancelled prompt")
}
