package spill

import (
	"fmt"
	"time"
)

// Params configures the spill responder. Rotations are fractions of the
// moving motor's own revolution.
type Params struct {
	ClawSpeed  int     `yaml:"claw_speed"`
	ClawTravel float64 `yaml:"claw_travel"`
	GripSpeed  int     `yaml:"grip_speed"`
	GripTravel float64 `yaml:"grip_travel"`

	AdvanceSpeed    int           `yaml:"advance_speed"`
	AdvanceDuration time.Duration `yaml:"advance_duration"`

	ScanSpeed       int           `yaml:"scan_speed"`
	ScanStep        time.Duration `yaml:"scan_step"`
	SpottedDistance float64       `yaml:"spotted_distance"`
	MaxScanSteps    int           `yaml:"max_scan_steps"`

	// ChaseFraction scales the cruise speed while closing in.
	ChaseFraction  float64       `yaml:"chase_fraction"`
	ChaseBurst     time.Duration `yaml:"chase_burst"`
	CloseDistance  float64       `yaml:"close_distance"`
	MaxChaseBursts int           `yaml:"max_chase_bursts"`

	RetreatDuration time.Duration `yaml:"retreat_duration"`

	FindSteps         int     `yaml:"find_steps"`
	FindStepRotations float64 `yaml:"find_step_rotations"`
	FindDistance      float64 `yaml:"find_distance"`
}

// DefaultParams returns the reference responder settings.
func DefaultParams() Params {
	return Params{
		ClawSpeed:  200,
		ClawTravel: 0.25,
		GripSpeed:  200,
		GripTravel: 0.5,

		AdvanceSpeed:    400,
		AdvanceDuration: 2 * time.Second,

		ScanSpeed:       30,
		ScanStep:        100 * time.Millisecond,
		SpottedDistance: 20,
		MaxScanSteps:    400,

		ChaseFraction:  0.5,
		ChaseBurst:     100 * time.Millisecond,
		CloseDistance:  10,
		MaxChaseBursts: 200,

		RetreatDuration: time.Second,

		FindSteps:         36,
		FindStepRotations: 0.07,
		FindDistance:      30,
	}
}

// Validate checks the parameters for values the responder cannot use.
func (p Params) Validate() error {
	switch {
	case p.ClawSpeed <= 0 || p.GripSpeed <= 0:
		return fmt.Errorf("claw_speed and grip_speed must be positive")
	case p.MaxScanSteps <= 0:
		return fmt.Errorf("max_scan_steps must be positive")
	case p.MaxChaseBursts <= 0:
		return fmt.Errorf("max_chase_bursts must be positive")
	case p.FindSteps <= 0:
		return fmt.Errorf("find_steps must be positive")
	case p.ChaseFraction <= 0 || p.ChaseFraction > 1:
		return fmt.Errorf("chase_fraction must be in (0, 1]")
	case p.CloseDistance >= p.SpottedDistance:
		return fmt.Errorf("close_distance must be below spotted_distance")
	}
	return nil
}

// Degrees converts a find-cans increment into a heading from the start of
// the sweep.
func (p Params) Degrees(step int) float64 {
	return float64(step) * 360 / float64(p.FindSteps)
}
