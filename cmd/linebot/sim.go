package main

import (
	"math"

	"github.com/gwillem/linebot/pkg/robot"
)

// Simulated course, indexed by sensor read: a wavy line, a left marker, an
// obstacle, the spill zone with an object a few scan steps in, then more line.
const (
	simMarkerTick   = 150
	simObstacleTick = 250
	simSpillTick    = 400
)

var (
	simNeutral = robot.Color{R: 60, G: 70, B: 55}
	simGreen   = robot.ColorReading{R: 40, G: 140, B: 50}
)

// simProfile is the calibration matching the simulated floor.
func simProfile() *robot.CalibrationProfile {
	return &robot.CalibrationProfile{Left: simNeutral, Right: simNeutral}
}

// simLine returns the reading of one sensor drifting across the line edge.
func simLine(n int, phase float64) robot.ColorReading {
	d := 25 * math.Sin(float64(n)/15+phase)
	return robot.ColorReading{
		R: int(simNeutral.R + d),
		G: int(simNeutral.G + d),
		B: int(simNeutral.B + d),
	}
}

func newSimCourse(clock robot.Clock) *robot.SimHardware {
	left := &robot.SimColorSensor{Script: func(n int) (robot.ColorReading, error) {
		switch {
		case n == simSpillTick:
			return simGreen, nil
		case n >= simMarkerTick && n < simMarkerTick+3:
			return simGreen, nil
		}
		return simLine(n, 0), nil
	}}
	right := &robot.SimColorSensor{Script: func(n int) (robot.ColorReading, error) {
		if n == simSpillTick {
			return simGreen, nil
		}
		return simLine(n, math.Pi), nil
	}}

	// The spill scan and chase read the sonar too: four empty scan steps,
	// the object at step five, one chase burst, then within reach. Once the
	// object is carried off the line continues.
	distance := &robot.SimDistanceSensor{Script: func(n int) (float64, error) {
		switch {
		case n == simObstacleTick:
			return 22, nil
		case n < simSpillTick:
			return 120, nil
		case n < simSpillTick+5:
			return 100, nil
		case n == simSpillTick+5:
			return 15, nil
		case n == simSpillTick+6:
			return 12, nil
		case n == simSpillTick+7:
			return 8, nil
		}
		return 120, nil
	}}

	return robot.NewSimHardware(clock, left, right, distance)
}
