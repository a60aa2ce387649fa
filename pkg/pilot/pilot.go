// Package pilot runs the line-following control loop and streams its
// telemetry.
package pilot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gwillem/linebot/pkg/drive"
	"github.com/gwillem/linebot/pkg/linefollow"
	"github.com/gwillem/linebot/pkg/robot"
	"github.com/gwillem/linebot/pkg/spill"
)

// State is the telemetry of one control tick.
type State struct {
	Tick        int
	Feature     linefollow.Feature
	Heading     float64
	Left, Right int
	Distance    float64
	Debounce    int
	Outcome     string // spill outcome, set on spill ticks
	Timestamp   time.Time
	Error       error
}

// Config holds everything the controller needs.
type Config struct {
	Hardware *robot.Hardware
	Line     linefollow.Params
	Turn     drive.TurnParams
	Detour   drive.DetourParams
	Spill    spill.Params
	Logger   *slog.Logger

	// MaxTicks ends the run after that many ticks. Zero runs until cancelled.
	MaxTicks int
}

// Controller manages the line-following control loop.
type Controller struct {
	hw         *robot.Hardware
	drive      *drive.Drive
	responder  *spill.Responder
	classifier linefollow.Classifier
	debounce   *linefollow.Debounce
	line       linefollow.Params
	turn       drive.TurnParams
	detour     drive.DetourParams
	logger     *slog.Logger
	maxTicks   int

	mu      sync.Mutex
	running bool
	tick    int
	profile *robot.CalibrationProfile
	stateCh chan State
}

// New creates a controller for cfg.Hardware.
func New(cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	d := drive.New(cfg.Hardware, cfg.Line.MaxSpeed)
	return &Controller{
		hw:         cfg.Hardware,
		drive:      d,
		responder:  spill.New(cfg.Hardware, d, cfg.Spill, cfg.Line.CruiseSpeed, logger),
		classifier: linefollow.NewClassifier(cfg.Line),
		debounce:   linefollow.NewDebounce(cfg.Line.DebounceTicks),
		line:       cfg.Line,
		turn:       cfg.Turn,
		detour:     cfg.Detour,
		logger:     logger,
		maxTicks:   cfg.MaxTicks,
		stateCh:    make(chan State, 1),
	}
}

// States returns a channel that receives state updates. Only the latest
// state is kept.
func (c *Controller) States() <-chan State {
	return c.stateCh
}

// Drive returns the wheel driver used by the controller.
func (c *Controller) Drive() *drive.Drive {
	return c.drive
}

// Run follows the line until ctx is cancelled, MaxTicks is reached or a
// hardware error occurs. After a spill response the loop carries on with the
// next tick. Cancellation is not an error.
func (c *Controller) Run(ctx context.Context, profile *robot.CalibrationProfile) error {
	if profile == nil {
		c.logger.Warn("calibration is required before line following")
		return robot.ErrNotCalibrated
	}

	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("already running")
	}
	c.running = true
	c.profile = profile
	c.tick = 0
	c.mu.Unlock()
	defer c.shutdown()

	if err := c.hw.Distance.SetDistanceMode(ctx); err != nil {
		return fmt.Errorf("set distance mode: %w", err)
	}
	for _, s := range []robot.ColorSensor{c.hw.LeftColor, c.hw.RightColor} {
		if err := s.SetColorMode(ctx); err != nil {
			return fmt.Errorf("set colour mode: %w", err)
		}
	}

	c.logger.Info("line following started",
		"cruise", c.line.CruiseSpeed, "tick", c.line.Tick, "max_ticks", c.maxTicks)

	for c.maxTicks == 0 || c.tick < c.maxTicks {
		if ctx.Err() != nil {
			return nil
		}
		if _, err := c.Step(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
	return nil
}

// Step senses, classifies and performs one action. Obstacle and spill
// actions block until the maneuver has finished.
func (c *Controller) Step(ctx context.Context) (linefollow.Feature, error) {
	c.tick++
	st := State{Tick: c.tick}

	obs, err := c.sense(ctx)
	if err != nil {
		st.Error = err
		st.Timestamp = c.hw.Clock.Now()
		c.sendState(st)
		return linefollow.Line, err
	}
	st.Distance = obs.Distance

	feature := c.classifier.Classify(obs, c.debounce)
	st.Feature = feature

	switch feature {
	case linefollow.Obstacle:
		c.logger.Info("obstacle ahead, detouring", "distance", obs.Distance)
		err = c.drive.Detour(ctx, c.detour, c.line.CruiseSpeed)

	case linefollow.SpillZone:
		var out spill.Outcome
		out, err = c.responder.Respond(ctx)
		if err == nil {
			st.Outcome = out.String()
			c.logger.Info("spill response finished", "outcome", out)
		}

	case linefollow.TurnLeft, linefollow.TurnRight:
		side := robot.Left
		if feature == linefollow.TurnRight {
			side = robot.Right
		}
		c.logger.Info("green marker, turning", "side", side, "debounce", c.debounce.Count())
		err = c.drive.Turn(ctx, side, c.turn, c.line.CruiseSpeed)
		c.debounce.Reset()

	default:
		left, right := c.profile.Correct(obs.Left, obs.Right)
		cmd := linefollow.Steer(left, right, c.line)
		st.Heading, st.Left, st.Right = cmd.Heading, cmd.Left, cmd.Right
		err = c.drive.Timed(ctx, cmd.Left, cmd.Right, c.line.Tick)
		// only steering ticks count toward re-arming turn markers
		c.debounce.Tick()
	}

	st.Debounce = c.debounce.Count()
	st.Timestamp = c.hw.Clock.Now()
	st.Error = err
	c.sendState(st)
	if err != nil {
		return feature, fmt.Errorf("tick %d %s: %w", c.tick, feature, err)
	}
	return feature, nil
}

// sense reads the sonar first, then both colour sensors.
func (c *Controller) sense(ctx context.Context) (linefollow.Observation, error) {
	var obs linefollow.Observation
	var err error
	if obs.Distance, err = c.hw.Distance.ReadDistance(ctx); err != nil {
		return obs, fmt.Errorf("read distance: %w", err)
	}
	if obs.Left, err = c.hw.LeftColor.ReadColor(ctx); err != nil {
		return obs, fmt.Errorf("read left colour: %w", err)
	}
	if obs.Right, err = c.hw.RightColor.ReadColor(ctx); err != nil {
		return obs, fmt.Errorf("read right colour: %w", err)
	}
	return obs, nil
}

func (c *Controller) sendState(s State) {
	select {
	case c.stateCh <- s:
	default:
		// Drop old state if channel full, replace with new
		select {
		case <-c.stateCh:
		default:
		}
		c.stateCh <- s
	}
}

func (c *Controller) shutdown() {
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()

	if err := c.drive.Stop(context.Background()); err != nil {
		c.logger.Warn("failed to stop wheels", "err", err)
	}
	c.logger.Info("line following stopped", "ticks", c.tick)
}
