package linefollow

import (
	"github.com/gwillem/linebot/pkg/drive"
	"github.com/gwillem/linebot/pkg/robot"
)

// Correction divisors. The right wheel is corrected three times more gently
// than the left to compensate for drivetrain asymmetry.
const (
	leftDivisor  = 100
	rightDivisor = 300
)

// Command is the output of one steering step.
type Command struct {
	Heading     float64
	Left, Right int
}

// Heading is positive when the left sensor sees more light than the right.
func Heading(left, right robot.Color) float64 {
	return left.Reflectivity() - right.Reflectivity()
}

// Steer converts baseline-corrected readings into clamped wheel speeds.
func Steer(left, right robot.Color, p Params) Command {
	heading := Heading(left, right)
	v := float64(p.CruiseSpeed)
	ceiling := float64(p.MaxSpeed)

	l := v + p.Gain*heading/leftDivisor*v
	r := v - p.Gain*heading/rightDivisor*v

	return Command{
		Heading: heading,
		Left:    int(drive.Clamp(l, ceiling)),
		Right:   int(drive.Clamp(r, ceiling)),
	}
}
