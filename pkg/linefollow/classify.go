package linefollow

import "github.com/gwillem/linebot/pkg/robot"

// Feature is what the robot sees on a control tick.
type Feature int

const (
	Line Feature = iota
	TurnLeft
	TurnRight
	Obstacle
	SpillZone
)

func (f Feature) String() string {
	switch f {
	case TurnLeft:
		return "turn-left"
	case TurnRight:
		return "turn-right"
	case Obstacle:
		return "obstacle"
	case SpillZone:
		return "spill"
	default:
		return "line"
	}
}

// Observation is one tick's worth of raw sensor data.
type Observation struct {
	Left, Right robot.ColorReading
	Distance    float64 // cm
}

// Debounce counts line-following ticks since the last scripted turn. The
// controller ticks it only on ticks that steer; obstacle and spill ticks
// leave it unchanged, so the detour and the spill response never arm a
// marker on their own.
type Debounce struct {
	count     int
	threshold int
}

// NewDebounce creates a counter that arms once more than threshold ticks
// have been counted.
func NewDebounce(threshold int) *Debounce {
	return &Debounce{threshold: threshold}
}

func (d *Debounce) Tick()       { d.count++ }
func (d *Debounce) Reset()      { d.count = 0 }
func (d *Debounce) Count() int  { return d.count }
func (d *Debounce) Armed() bool { return d.count > d.threshold }

// Classifier decides which feature an observation shows.
type Classifier struct {
	GreenRatio       float64
	ObstacleDistance float64
}

// NewClassifier creates a classifier from the line-following parameters.
func NewClassifier(p Params) Classifier {
	return Classifier{GreenRatio: p.GreenRatio, ObstacleDistance: p.ObstacleDistance}
}

// Classify applies, in order: obstacle, spill zone (green on both sides,
// always armed), turn marker (green on one side once debounce is armed),
// otherwise line.
func (c Classifier) Classify(obs Observation, debounce *Debounce) Feature {
	if obs.Distance < c.ObstacleDistance {
		return Obstacle
	}

	greenLeft := obs.Left.IsGreen(c.GreenRatio)
	greenRight := obs.Right.IsGreen(c.GreenRatio)
	switch {
	case greenLeft && greenRight:
		return SpillZone
	case greenLeft && debounce.Armed():
		return TurnLeft
	case greenRight && debounce.Armed():
		return TurnRight
	}
	return Line
}
