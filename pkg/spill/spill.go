// Package spill implements the spill-zone responder: scan for the object,
// approach it, grasp it with the claw and back away.
package spill

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gwillem/linebot/pkg/drive"
	"github.com/gwillem/linebot/pkg/robot"
)

// Outcome is how a retrieval attempt ended.
type Outcome int

const (
	Retrieved Outcome = iota
	// NotFound means the scan used all its steps without spotting anything.
	NotFound
	// Lost means the object was spotted but never came within reach.
	Lost
)

func (o Outcome) String() string {
	switch o {
	case Retrieved:
		return "retrieved"
	case NotFound:
		return "not-found"
	default:
		return "lost"
	}
}

// ScanResult is the result of the bounded spill scan.
type ScanResult struct {
	Found    bool
	Step     int
	Distance float64
}

// Responder runs the spill-zone state machine. Every step blocks until the
// previous one has finished.
type Responder struct {
	Drive          *drive.Drive
	ClawVertical   robot.Motor
	ClawHorizontal robot.Motor
	Distance       robot.DistanceSensor
	Logger         *slog.Logger
	Params         Params

	// Cruise is the line-following cruise speed, used for chase and retreat.
	Cruise int
}

// New creates a responder for hw.
func New(hw *robot.Hardware, d *drive.Drive, p Params, cruise int, logger *slog.Logger) *Responder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Responder{
		Drive:          d,
		ClawVertical:   hw.ClawVertical,
		ClawHorizontal: hw.ClawHorizontal,
		Distance:       hw.Distance,
		Logger:         logger,
		Params:         p,
		Cruise:         cruise,
	}
}

// Respond raises the claw, advances into the zone, scans, and if something
// is spotted picks it up.
func (r *Responder) Respond(ctx context.Context) (Outcome, error) {
	r.Logger.Info("entering spill zone")

	if err := r.RaiseClaw(ctx); err != nil {
		return 0, err
	}

	p := r.Params
	if err := r.Drive.Timed(ctx, p.AdvanceSpeed, p.AdvanceSpeed, p.AdvanceDuration); err != nil {
		return 0, fmt.Errorf("advance: %w", err)
	}

	res, err := r.Scan(ctx)
	if err != nil {
		return 0, err
	}
	if !res.Found {
		r.Logger.Warn("nothing spotted in spill zone", "steps", p.MaxScanSteps)
		if err := r.LowerClaw(ctx); err != nil {
			return 0, err
		}
		return NotFound, nil
	}
	r.Logger.Info("object spotted", "step", res.Step, "distance", res.Distance)

	return r.Pickup(ctx)
}

// Scan pivots in small timed steps until the sonar reads below the spotted
// distance, at most MaxScanSteps samples.
func (r *Responder) Scan(ctx context.Context) (ScanResult, error) {
	p := r.Params
	if err := r.Distance.SetDistanceMode(ctx); err != nil {
		return ScanResult{}, fmt.Errorf("scan: %w", err)
	}
	for step := 0; step < p.MaxScanSteps; step++ {
		d, err := r.Distance.ReadDistance(ctx)
		if err != nil {
			return ScanResult{}, fmt.Errorf("scan: %w", err)
		}
		r.Logger.Debug("scan", "step", step, "distance", d)
		if d < p.SpottedDistance {
			return ScanResult{Found: true, Step: step, Distance: d}, nil
		}
		if err := r.Drive.Timed(ctx, p.ScanSpeed, -p.ScanSpeed, p.ScanStep); err != nil {
			return ScanResult{}, fmt.Errorf("scan pivot: %w", err)
		}
	}
	return ScanResult{}, nil
}

// Chase drives forward in short bursts until the object is within
// CloseDistance. It reports false if MaxChaseBursts pass first.
func (r *Responder) Chase(ctx context.Context) (bool, error) {
	p := r.Params
	speed := int(float64(r.Cruise) * p.ChaseFraction)
	for burst := 0; ; burst++ {
		d, err := r.Distance.ReadDistance(ctx)
		if err != nil {
			return false, fmt.Errorf("chase: %w", err)
		}
		if d <= p.CloseDistance {
			return true, nil
		}
		if burst >= p.MaxChaseBursts {
			return false, nil
		}
		r.Logger.Debug("chase", "burst", burst, "distance", d)
		if err := r.Drive.Timed(ctx, speed, speed, p.ChaseBurst); err != nil {
			return false, fmt.Errorf("chase: %w", err)
		}
	}
}

// Pickup chases, grasps and retreats. The claw must already be raised.
func (r *Responder) Pickup(ctx context.Context) (Outcome, error) {
	reached, err := r.Chase(ctx)
	if err != nil {
		return 0, err
	}
	if !reached {
		r.Logger.Warn("lost object during chase", "bursts", r.Params.MaxChaseBursts)
		if err := r.LowerClaw(ctx); err != nil {
			return 0, err
		}
		return Lost, nil
	}
	if err := r.Grasp(ctx); err != nil {
		return 0, err
	}
	if err := r.Drive.Timed(ctx, -r.Cruise, -r.Cruise, r.Params.RetreatDuration); err != nil {
		return 0, fmt.Errorf("retreat: %w", err)
	}
	r.Logger.Info("object retrieved")
	return Retrieved, nil
}

// Grasp lowers the claw, closes the gripper and raises the claw again.
func (r *Responder) Grasp(ctx context.Context) error {
	p := r.Params
	if err := r.LowerClaw(ctx); err != nil {
		return err
	}
	if err := r.moveClaw(ctx, r.ClawHorizontal, p.GripTravel, p.GripSpeed); err != nil {
		return fmt.Errorf("close gripper: %w", err)
	}
	return r.RaiseClaw(ctx)
}

// RaiseClaw lifts the claw by ClawTravel.
func (r *Responder) RaiseClaw(ctx context.Context) error {
	if err := r.moveClaw(ctx, r.ClawVertical, r.Params.ClawTravel, r.Params.ClawSpeed); err != nil {
		return fmt.Errorf("raise claw: %w", err)
	}
	return nil
}

// LowerClaw lowers the claw by ClawTravel.
func (r *Responder) LowerClaw(ctx context.Context) error {
	if err := r.moveClaw(ctx, r.ClawVertical, -r.Params.ClawTravel, r.Params.ClawSpeed); err != nil {
		return fmt.Errorf("lower claw: %w", err)
	}
	return nil
}

func (r *Responder) moveClaw(ctx context.Context, m robot.Motor, rotations float64, speed int) error {
	counts, err := drive.Counts(ctx, m, rotations)
	if err != nil {
		return err
	}
	if counts < 0 {
		speed = -speed
	}
	if err := m.SetSpeed(ctx, speed); err != nil {
		return err
	}
	if err := m.RunToRelativePosition(ctx, counts); err != nil {
		return err
	}
	return m.WaitUntilStopped(ctx, r.Drive.WaitTimeout)
}

// FindCans sweeps a full turn in FindSteps pivots, sampling the sonar after
// each, and returns the increments that saw an object within FindDistance.
// It does not grasp.
func (r *Responder) FindCans(ctx context.Context) ([]int, error) {
	p := r.Params
	if err := r.Distance.SetDistanceMode(ctx); err != nil {
		return nil, fmt.Errorf("find cans: %w", err)
	}
	step := drive.Segment{
		Name:  "find-step",
		Left:  p.FindStepRotations,
		Right: -p.FindStepRotations,
		Speed: r.Cruise,
	}

	var found []int
	for i := 0; i < p.FindSteps; i++ {
		if err := r.Drive.Move(ctx, step); err != nil {
			return nil, fmt.Errorf("find cans step %d: %w", i, err)
		}
		d, err := r.Distance.ReadDistance(ctx)
		if err != nil {
			return nil, fmt.Errorf("find cans step %d: %w", i, err)
		}
		if d < p.FindDistance {
			found = append(found, i)
		}
	}
	return found, nil
}
