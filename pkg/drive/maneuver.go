package drive

import (
	"context"
	"fmt"

	"github.com/gwillem/linebot/pkg/robot"
)

// TurnParams configures the scripted turn taken at a green marker.
type TurnParams struct {
	// Bump carries the marker past the sensor bar (rotations, both wheels).
	Bump float64 `yaml:"bump"`

	// Pivot turns toward the marked side (rotations, wheels opposed).
	Pivot float64 `yaml:"pivot"`
}

// DefaultTurnParams returns the reference turn.
func DefaultTurnParams() TurnParams {
	return TurnParams{Bump: 0.3, Pivot: 0.5}
}

// DetourParams configures the obstacle detour.
type DetourParams struct {
	// Pivot is used for all three turns.
	Pivot float64 `yaml:"pivot"`

	// Out is the leg driven away from the line.
	Out float64 `yaml:"out"`

	// Across is the leg driven parallel to the line, past the obstacle.
	Across float64 `yaml:"across"`
}

// DefaultDetourParams returns the reference detour.
func DefaultDetourParams() DetourParams {
	return DetourParams{Pivot: 0.3, Out: 1.8, Across: 1.8}
}

// TurnSegments returns the bump and pivot toward side.
func TurnSegments(side robot.Side, p TurnParams, speed int) []Segment {
	left, right := -p.Pivot, p.Pivot
	if side == robot.Right {
		left, right = p.Pivot, -p.Pivot
	}
	return []Segment{
		{Name: "bump", Left: p.Bump, Right: p.Bump, Speed: speed},
		{Name: "pivot-" + side.String(), Left: left, Right: right, Speed: speed},
	}
}

// DetourSegments returns the five-segment detour around an obstacle ahead.
// The detour leaves to the left and is dead-reckoned.
func DetourSegments(p DetourParams, speed int) []Segment {
	return []Segment{
		{Name: "pivot-away", Left: -p.Pivot, Right: p.Pivot, Speed: speed},
		{Name: "out", Left: p.Out, Right: p.Out, Speed: speed},
		{Name: "pivot-back", Left: p.Pivot, Right: -p.Pivot, Speed: speed},
		{Name: "across", Left: p.Across, Right: p.Across, Speed: speed},
		{Name: "realign", Left: p.Pivot, Right: -p.Pivot, Speed: speed},
	}
}

// Turn stops the wheels and runs the scripted turn toward side.
func (d *Drive) Turn(ctx context.Context, side robot.Side, p TurnParams, speed int) error {
	if err := d.Stop(ctx); err != nil {
		return err
	}
	if err := d.Run(ctx, TurnSegments(side, p, speed)...); err != nil {
		return fmt.Errorf("turn %s: %w", side, err)
	}
	return nil
}

// Detour runs the obstacle detour.
func (d *Drive) Detour(ctx context.Context, p DetourParams, speed int) error {
	if err := d.Run(ctx, DetourSegments(p, speed)...); err != nil {
		return fmt.Errorf("detour: %w", err)
	}
	return nil
}
