// Package drive issues blocking two-wheel movements through robot.Motor.
package drive

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gwillem/linebot/pkg/robot"
)

// DefaultMaxSpeed is the speed ceiling applied to every wheel command.
const DefaultMaxSpeed = 800

// Segment is one position-controlled move of both wheels. Left and Right are
// signed fractions of a wheel revolution; Speed is the speed magnitude.
type Segment struct {
	Name  string
	Left  float64
	Right float64
	Speed int
}

// Drive moves the two wheels together.
type Drive struct {
	Left, Right robot.Motor
	Clock       robot.Clock
	MaxSpeed    int
	WaitTimeout time.Duration
}

// New creates a Drive for the wheels of hw.
func New(hw *robot.Hardware, maxSpeed int) *Drive {
	if maxSpeed <= 0 {
		maxSpeed = DefaultMaxSpeed
	}
	return &Drive{
		Left:        hw.LeftWheel,
		Right:       hw.RightWheel,
		Clock:       hw.Clock,
		MaxSpeed:    maxSpeed,
		WaitTimeout: hw.WaitTimeout,
	}
}

// Clamp limits the magnitude of speed to ceiling, keeping its sign.
func Clamp(speed, ceiling float64) float64 {
	if math.Abs(speed) >= ceiling {
		return math.Copysign(ceiling, speed)
	}
	return speed
}

func (d *Drive) clamp(speed int) int {
	return int(Clamp(float64(speed), float64(d.MaxSpeed)))
}

// Timed runs both wheels at the given speeds for dur and blocks until dur has
// elapsed.
func (d *Drive) Timed(ctx context.Context, left, right int, dur time.Duration) error {
	left, right = d.clamp(left), d.clamp(right)
	for _, w := range []struct {
		m     robot.Motor
		speed int
	}{{d.Left, left}, {d.Right, right}} {
		if err := w.m.SetSpeed(ctx, w.speed); err != nil {
			return fmt.Errorf("set speed: %w", err)
		}
		if err := w.m.SetTimeLimit(ctx, dur); err != nil {
			return fmt.Errorf("set time limit: %w", err)
		}
	}
	if err := d.Left.RunTimed(ctx); err != nil {
		return fmt.Errorf("run left timed: %w", err)
	}
	if err := d.Right.RunTimed(ctx); err != nil {
		return fmt.Errorf("run right timed: %w", err)
	}
	return robot.Sleep(ctx, d.Clock, dur)
}

// Counts converts a fraction of a revolution into encoder counts for m.
func Counts(ctx context.Context, m robot.Motor, rotations float64) (int, error) {
	cpr, err := m.CountsPerRevolution(ctx)
	if err != nil {
		return 0, fmt.Errorf("counts per revolution: %w", err)
	}
	return int(math.Round(rotations * float64(cpr))), nil
}

// Move runs seg on both wheels and blocks until both have stopped.
func (d *Drive) Move(ctx context.Context, seg Segment) error {
	speed := d.clamp(abs(seg.Speed))
	for _, w := range []struct {
		name string
		m    robot.Motor
		rot  float64
	}{{"left", d.Left, seg.Left}, {"right", d.Right, seg.Right}} {
		counts, err := Counts(ctx, w.m, w.rot)
		if err != nil {
			return err
		}
		if err := w.m.SetSpeed(ctx, sign(w.rot)*speed); err != nil {
			return fmt.Errorf("set %s speed: %w", w.name, err)
		}
		if err := w.m.RunToRelativePosition(ctx, counts); err != nil {
			return fmt.Errorf("run %s to position: %w", w.name, err)
		}
	}
	if err := d.Right.WaitUntilStopped(ctx, d.WaitTimeout); err != nil {
		return fmt.Errorf("wait right: %w", err)
	}
	if err := d.Left.WaitUntilStopped(ctx, d.WaitTimeout); err != nil {
		return fmt.Errorf("wait left: %w", err)
	}
	return nil
}

// Run executes segments in order. The first failure stops the sequence.
func (d *Drive) Run(ctx context.Context, segments ...Segment) error {
	for _, seg := range segments {
		if err := d.Move(ctx, seg); err != nil {
			return fmt.Errorf("segment %s: %w", seg.Name, err)
		}
	}
	return nil
}

// Stop stops both wheels.
func (d *Drive) Stop(ctx context.Context) error {
	if err := d.Left.Stop(ctx); err != nil {
		return fmt.Errorf("stop left: %w", err)
	}
	if err := d.Right.Stop(ctx); err != nil {
		return fmt.Errorf("stop right: %w", err)
	}
	return nil
}

func sign(v float64) int {
	if v < 0 {
		return -1
	}
	return 1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
