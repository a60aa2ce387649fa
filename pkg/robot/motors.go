// Package robot provides abstractions for the line-following robot's motors and sensors.
package robot

import (
	"context"
	"time"
)

// MotorName identifies a motor on the robot.
type MotorName string

// Motor names for the two-wheel chassis and its claw.
const (
	LeftWheel      MotorName = "left_wheel"
	RightWheel     MotorName = "right_wheel"
	ClawVertical   MotorName = "claw_vertical"
	ClawHorizontal MotorName = "claw_horizontal"
)

// AllMotors returns all motor names in order (matching default servo IDs 1-4).
func AllMotors() []MotorName {
	return []MotorName{
		LeftWheel,
		RightWheel,
		ClawVertical,
		ClawHorizontal,
	}
}

// Motor is a position and speed controlled motor.
//
// Speeds are signed, in encoder counts per second. Position moves are relative
// to the current position; the sign of counts gives the direction.
type Motor interface {
	SetSpeed(ctx context.Context, speed int) error
	SetTimeLimit(ctx context.Context, d time.Duration) error
	// RunTimed runs at the set speed for the set time limit and returns
	// without waiting for the motor to finish.
	RunTimed(ctx context.Context) error
	// RunToRelativePosition moves counts away from the current position at
	// the magnitude of the set speed and returns without waiting.
	RunToRelativePosition(ctx context.Context, counts int) error
	Stop(ctx context.Context) error
	// WaitUntilStopped blocks until the motor reports not moving. It returns
	// ErrMotionTimeout if that takes longer than timeout.
	WaitUntilStopped(ctx context.Context, timeout time.Duration) error
	Position(ctx context.Context) (int, error)
	CountsPerRevolution(ctx context.Context) (int, error)
}

// Side is one side of the sensor bar / chassis.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}
