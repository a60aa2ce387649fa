package robot

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Hardware bundles every device the control logic talks to.
type Hardware struct {
	LeftWheel, RightWheel        Motor
	ClawVertical, ClawHorizontal Motor
	LeftColor, RightColor        ColorSensor
	Distance                     DistanceSensor

	Clock       Clock
	WaitTimeout time.Duration

	closers []func() error
}

// Open connects to the servo bus and sensor board described by cfg.
func Open(ctx context.Context, cfg HardwareConfig) (*Hardware, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("hardware config: %w", err)
	}
	clock := RealClock{}

	bus, err := OpenServoBus(cfg.ServoPort, clock)
	if err != nil {
		return nil, err
	}

	motors := make(map[MotorName]Motor, len(cfg.Motors))
	for _, name := range AllMotors() {
		m, err := bus.Motor(ctx, name, cfg.Motors[name])
		if err != nil {
			bus.Close()
			return nil, fmt.Errorf("attach %s: %w", name, err)
		}
		motors[name] = m
	}

	board, err := OpenSensorBoard(cfg.SensorPort)
	if err != nil {
		bus.Close()
		return nil, err
	}

	return &Hardware{
		LeftWheel:      motors[LeftWheel],
		RightWheel:     motors[RightWheel],
		ClawVertical:   motors[ClawVertical],
		ClawHorizontal: motors[ClawHorizontal],
		LeftColor:      board.Color(cfg.Sensors.LeftColor),
		RightColor:     board.Color(cfg.Sensors.RightColor),
		Distance:       board.Distance(cfg.Sensors.Distance),
		Clock:          clock,
		WaitTimeout:    cfg.WaitTimeout,
		closers:        []func() error{board.Close, bus.Close},
	}, nil
}

// Motor returns the motor with the given name, or nil.
func (h *Hardware) Motor(name MotorName) Motor {
	switch name {
	case LeftWheel:
		return h.LeftWheel
	case RightWheel:
		return h.RightWheel
	case ClawVertical:
		return h.ClawVertical
	case ClawHorizontal:
		return h.ClawHorizontal
	}
	return nil
}

// Close stops all motors and releases the serial ports.
func (h *Hardware) Close() error {
	ctx := context.Background()
	var errs []error
	for _, m := range []Motor{h.LeftWheel, h.RightWheel, h.ClawVertical, h.ClawHorizontal} {
		if m == nil {
			continue
		}
		if err := m.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	for _, c := range h.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close hardware: %w", errors.Join(errs...))
	}
	return nil
}
