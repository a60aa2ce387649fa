package robot

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/hipsterbrown/feetech-servo/feetech"
)

const (
	// STS servos report 4096 steps per revolution.
	stsCountsPerRev = 4096

	// Step mode goals are sign-magnitude words with the sign in bit 15.
	goalSignBit      = 15
	maxRelativeSteps = 1<<goalSignBit - 1

	stopPollInterval = 20 * time.Millisecond
)

var errNoSpeed = errors.New("speed not set")

// ServoBus is a Feetech serial bus shared by the robot's motors.
type ServoBus struct {
	bus   *feetech.Bus
	clock Clock
}

// OpenServoBus opens the servo bus on port.
func OpenServoBus(port string, clock Clock) (*ServoBus, error) {
	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     port,
		BaudRate: 1_000_000,
		Protocol: feetech.ProtocolSTS,
		Timeout:  100 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("open servo bus: %w", err)
	}
	return &ServoBus{bus: bus, clock: clock}, nil
}

// Close closes the bus connection.
func (b *ServoBus) Close() error {
	return b.bus.Close()
}

// Motor attaches to the servo configured for name, sets its operating mode
// and enables its torque. Wheels run in velocity (wheel) mode, the claw axes
// in step mode.
func (b *ServoBus) Motor(ctx context.Context, name MotorName, cfg ServoConfig) (*ServoMotor, error) {
	found, err := b.bus.Scan(ctx, cfg.ID, cfg.ID)
	if err != nil {
		return nil, ioErr(string(name), "scan", err)
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("servo %d not found on bus", cfg.ID)
	}

	servo := feetech.NewServo(b.bus, found[0].ID, found[0].Model)
	wheel := name == LeftWheel || name == RightWheel
	mode := feetech.ModeStep
	if wheel {
		mode = feetech.ModeVelocity
	}
	if err := servo.SetOperatingMode(ctx, mode); err != nil {
		return nil, ioErr(string(name), "set operating mode", err)
	}
	if err := servo.Enable(ctx); err != nil {
		return nil, ioErr(string(name), "enable", err)
	}

	return newServoMotor(string(name), servo, b.clock, cfg, wheel), nil
}

// servoDriver is the part of feetech.Servo used by ServoMotor.
type servoDriver interface {
	Position(ctx context.Context) (int, error)
	SetPosition(ctx context.Context, position int) error
	SetPositionWithSpeed(ctx context.Context, position, speed int) error
	SetVelocity(ctx context.Context, velocity int) error
	Moving(ctx context.Context) (bool, error)
}

// ServoMotor drives a Feetech servo as a Motor. Counts are logical and
// scaled to raw servo steps.
//
// A wheel servo runs in velocity mode: timed and relative moves set a
// velocity and a background stop fires once the move's duration has passed.
// Any other servo runs in step mode, where every move is a relative goal.
type ServoMotor struct {
	name   string
	servo  servoDriver
	clock  Clock
	invert bool
	wheel  bool
	cpr    int
	scale  float64 // raw steps per logical count

	speed     int
	timeLimit time.Duration

	mu      sync.Mutex
	cancel  chan struct{} // closed to abandon the pending stop
	done    chan struct{} // closed once the pending stop has finished
	stopErr error
}

func newServoMotor(name string, servo servoDriver, clock Clock, cfg ServoConfig, wheel bool) *ServoMotor {
	cpr := cfg.CountsPerRev
	if cpr <= 0 {
		cpr = DefaultCountsPerRev
	}
	return &ServoMotor{
		name:   name,
		servo:  servo,
		clock:  clock,
		invert: cfg.Invert,
		wheel:  wheel,
		cpr:    cpr,
		scale:  float64(stsCountsPerRev) / float64(cpr),
	}
}

func (m *ServoMotor) dir() int {
	if m.invert {
		return -1
	}
	return 1
}

// steps converts logical counts into signed raw steps.
func (m *ServoMotor) steps(counts float64) int {
	return m.dir() * int(math.Round(counts*m.scale))
}

// encodeSteps packs a signed relative move into a goal position word.
func encodeSteps(steps int) int {
	if steps < 0 {
		return -steps | 1<<goalSignBit
	}
	return steps
}

func (m *ServoMotor) SetSpeed(ctx context.Context, speed int) error {
	m.speed = speed
	return nil
}

func (m *ServoMotor) SetTimeLimit(ctx context.Context, d time.Duration) error {
	m.timeLimit = d
	return nil
}

func (m *ServoMotor) RunTimed(ctx context.Context) error {
	if m.wheel {
		return m.runFor(ctx, m.steps(float64(m.speed)), m.timeLimit, "run timed")
	}
	return m.moveSteps(ctx, m.steps(float64(m.speed)*m.timeLimit.Seconds()), "run timed")
}

func (m *ServoMotor) RunToRelativePosition(ctx context.Context, counts int) error {
	if m.speed == 0 {
		return ioErr(m.name, "run to position", errNoSpeed)
	}
	if !m.wheel {
		return m.moveSteps(ctx, m.steps(float64(counts)), "run to position")
	}
	velocity := abs(m.speed)
	if counts < 0 {
		velocity = -velocity
	}
	d := time.Duration(float64(abs(counts)) / float64(abs(m.speed)) * float64(time.Second))
	return m.runFor(ctx, m.steps(float64(velocity)), d, "run to position")
}

// moveSteps issues a relative step-mode move at the set speed.
func (m *ServoMotor) moveSteps(ctx context.Context, steps int, op string) error {
	if abs(steps) > maxRelativeSteps {
		return ioErr(m.name, op, fmt.Errorf("move of %d steps exceeds %d", steps, maxRelativeSteps))
	}
	speed := abs(m.steps(float64(m.speed)))
	if err := m.servo.SetPositionWithSpeed(ctx, encodeSteps(steps), speed); err != nil {
		return ioErr(m.name, op, err)
	}
	return nil
}

// runFor sets velocity (raw steps/s) and schedules a stop after d. A new
// command replaces the pending stop.
func (m *ServoMotor) runFor(ctx context.Context, velocity int, d time.Duration, op string) error {
	m.abandonStop()
	if err := m.servo.SetVelocity(ctx, velocity); err != nil {
		return ioErr(m.name, op, err)
	}

	cancel, done := make(chan struct{}), make(chan struct{})
	m.mu.Lock()
	m.cancel, m.done, m.stopErr = cancel, done, nil
	m.mu.Unlock()

	go func() {
		defer close(done)
		select {
		case <-m.clock.After(d):
			if err := m.servo.SetVelocity(context.Background(), 0); err != nil {
				m.mu.Lock()
				m.stopErr = ioErr(m.name, "stop", err)
				m.mu.Unlock()
			}
		case <-cancel:
		}
	}()
	return nil
}

// abandonStop cancels the pending stop and waits for its goroutine.
func (m *ServoMotor) abandonStop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()
	if cancel == nil {
		return
	}
	close(cancel)
	<-done
}

func (m *ServoMotor) Stop(ctx context.Context) error {
	m.abandonStop()
	var err error
	if m.wheel {
		err = m.servo.SetVelocity(ctx, 0)
	} else {
		// a zero-step move holds the current position
		err = m.servo.SetPosition(ctx, 0)
	}
	if err != nil {
		return ioErr(m.name, "stop", err)
	}
	return nil
}

// WaitUntilStopped waits for a pending wheel stop, then polls the servo's
// moving flag.
func (m *ServoMotor) WaitUntilStopped(ctx context.Context, timeout time.Duration) error {
	deadline := m.clock.Now().Add(timeout)

	m.mu.Lock()
	done := m.done
	m.mu.Unlock()
	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
		m.mu.Lock()
		err := m.stopErr
		m.stopErr = nil
		m.mu.Unlock()
		if err != nil {
			return err
		}
	}

	for {
		moving, err := m.servo.Moving(ctx)
		if err != nil {
			return ioErr(m.name, "read moving", err)
		}
		if !moving {
			return nil
		}
		if m.clock.Now().After(deadline) {
			return fmt.Errorf("%s: %w", m.name, ErrMotionTimeout)
		}
		if err := Sleep(ctx, m.clock, stopPollInterval); err != nil {
			return err
		}
	}
}

// Position returns the present position within the current revolution.
func (m *ServoMotor) Position(ctx context.Context) (int, error) {
	pos, err := m.servo.Position(ctx)
	if err != nil {
		return 0, ioErr(m.name, "read position", err)
	}
	return m.dir() * int(math.Round(float64(pos)/m.scale)), nil
}

func (m *ServoMotor) CountsPerRevolution(ctx context.Context) (int, error) {
	return m.cpr, nil
}

// FoundServo is a servo discovered on a bus.
type FoundServo struct {
	ID       int
	Position int
}

// ProbeServoBus scans port for servos with IDs in [first, last] and reads
// their positions.
func ProbeServoBus(ctx context.Context, port string, first, last int) ([]FoundServo, error) {
	bus, err := OpenServoBus(port, RealClock{})
	if err != nil {
		return nil, err
	}
	defer bus.Close()

	found, err := bus.bus.Scan(ctx, first, last)
	if err != nil {
		return nil, fmt.Errorf("scan servos: %w", err)
	}

	servos := make([]FoundServo, 0, len(found))
	for _, f := range found {
		pos, err := feetech.NewServo(bus.bus, f.ID, f.Model).Position(ctx)
		if err != nil {
			pos = -1
		}
		servos = append(servos, FoundServo{ID: f.ID, Position: pos})
	}
	return servos, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
