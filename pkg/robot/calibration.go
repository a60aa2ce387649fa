package robot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Calibration defaults.
const (
	DefaultSettle         = 3 * time.Second
	DefaultSamples        = 100
	DefaultSampleInterval = 10 * time.Millisecond
)

// CalibrationProfile holds the neutral-ground baseline of each colour sensor.
type CalibrationProfile struct {
	Left  Color
	Right Color
}

// Correct subtracts each side's own baseline from the raw readings.
func (p *CalibrationProfile) Correct(left, right ColorReading) (Color, Color) {
	return left.Float().Sub(p.Left), right.Float().Sub(p.Right)
}

// Calibrator samples both colour sensors on neutral ground.
type Calibrator struct {
	Left, Right ColorSensor
	Clock       Clock
	Logger      *slog.Logger

	Settle   time.Duration // wait before sampling, for the operator to step away
	Samples  int
	Interval time.Duration // delay before each sample pair
}

// NewCalibrator creates a calibrator with the default timing.
func NewCalibrator(left, right ColorSensor, clock Clock, logger *slog.Logger) *Calibrator {
	return &Calibrator{
		Left:     left,
		Right:    right,
		Clock:    clock,
		Logger:   logger,
		Settle:   DefaultSettle,
		Samples:  DefaultSamples,
		Interval: DefaultSampleInterval,
	}
}

// Calibrate switches both sensors to raw colour mode, waits for the settle
// period and averages Samples readings per sensor. Any read failure aborts
// calibration.
func (c *Calibrator) Calibrate(ctx context.Context) (*CalibrationProfile, error) {
	if c.Samples <= 0 {
		return nil, fmt.Errorf("calibrate: samples must be positive, got %d", c.Samples)
	}
	logger := c.logger()

	logger.Info("calibrating", "settle", c.Settle, "samples", c.Samples)
	if err := c.Left.SetColorMode(ctx); err != nil {
		return nil, fmt.Errorf("set left colour mode: %w", err)
	}
	if err := c.Right.SetColorMode(ctx); err != nil {
		return nil, fmt.Errorf("set right colour mode: %w", err)
	}

	if err := Sleep(ctx, c.Clock, c.Settle); err != nil {
		return nil, err
	}

	left := newChannelSamples(c.Samples)
	right := newChannelSamples(c.Samples)
	for i := 0; i < c.Samples; i++ {
		if err := Sleep(ctx, c.Clock, c.Interval); err != nil {
			return nil, err
		}
		l, err := c.Left.ReadColor(ctx)
		if err != nil {
			return nil, fmt.Errorf("read left sample %d: %w", i, err)
		}
		r, err := c.Right.ReadColor(ctx)
		if err != nil {
			return nil, fmt.Errorf("read right sample %d: %w", i, err)
		}
		left.add(l)
		right.add(r)
	}

	profile := &CalibrationProfile{Left: left.mean(), Right: right.mean()}
	logger.Info("calibration completed", "left", profile.Left.String(), "right", profile.Right.String())
	return profile, nil
}

func (c *Calibrator) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

type channelSamples struct {
	r, g, b []float64
}

func newChannelSamples(n int) *channelSamples {
	return &channelSamples{
		r: make([]float64, 0, n),
		g: make([]float64, 0, n),
		b: make([]float64, 0, n),
	}
}

func (s *channelSamples) add(c ColorReading) {
	s.r = append(s.r, float64(c.R))
	s.g = append(s.g, float64(c.G))
	s.b = append(s.b, float64(c.B))
}

func (s *channelSamples) mean() Color {
	return Color{
		R: stat.Mean(s.r, nil),
		G: stat.Mean(s.g, nil),
		B: stat.Mean(s.b, nil),
	}
}
