// Package linefollow implements the steering law and the per-tick feature
// classifier of the line follower.
package linefollow

import (
	"fmt"
	"time"
)

// Params holds the line-following tuning. Immutable once the run starts.
type Params struct {
	// Gain is the proportional gain applied to the heading.
	Gain float64 `yaml:"gain"`

	// Tick is the duration of one control tick (one timed drive command).
	Tick time.Duration `yaml:"tick"`

	// CruiseSpeed is the nominal forward speed in counts/s.
	CruiseSpeed int `yaml:"cruise_speed"`

	// MaxSpeed is the ceiling on any wheel speed magnitude.
	MaxSpeed int `yaml:"max_speed"`

	// GreenRatio: a sensor sees green when G > GreenRatio * mean(R, B).
	GreenRatio float64 `yaml:"green_ratio"`

	// ObstacleDistance triggers the detour when the sonar reads below it (cm).
	ObstacleDistance float64 `yaml:"obstacle_distance"`

	// DebounceTicks is how many line ticks must pass after a turn before
	// another marker is honoured.
	DebounceTicks int `yaml:"debounce_ticks"`
}

// DefaultParams returns the reference tuning.
func DefaultParams() Params {
	return Params{
		Gain:             1.0,
		Tick:             20 * time.Millisecond,
		CruiseSpeed:      100,
		MaxSpeed:         800,
		GreenRatio:       1.65,
		ObstacleDistance: 25,
		DebounceTicks:    100,
	}
}

// Validate checks the parameters for values the control loop cannot use.
func (p Params) Validate() error {
	switch {
	case p.Tick <= 0:
		return fmt.Errorf("tick must be positive")
	case p.MaxSpeed <= 0:
		return fmt.Errorf("max_speed must be positive")
	case p.CruiseSpeed <= 0 || p.CruiseSpeed > p.MaxSpeed:
		return fmt.Errorf("cruise_speed must be in (0, max_speed], got %d", p.CruiseSpeed)
	case p.GreenRatio <= 1:
		return fmt.Errorf("green_ratio must be greater than 1")
	case p.ObstacleDistance <= 0:
		return fmt.Errorf("obstacle_distance must be positive")
	case p.DebounceTicks < 0:
		return fmt.Errorf("debounce_ticks must not be negative")
	}
	return nil
}
