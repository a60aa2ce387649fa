package robot

import (
	"context"
	"sync"
	"time"
)

// Motor operations recorded by SimMotor.
const (
	OpSetSpeed     = "set_speed"
	OpSetTimeLimit = "set_time_limit"
	OpRunTimed     = "run_timed"
	OpRunToRelPos  = "run_to_rel_pos"
	OpStop         = "stop"
	OpWait         = "wait"
	OpPosition     = "position"
	OpCountsPerRot = "counts_per_rot"
)

// MotorCommand is one command received by a SimMotor.
type MotorCommand struct {
	Op       string
	Speed    int
	Counts   int
	Duration time.Duration
}

// SimMotor is an in-memory Motor that records every command. Moves complete
// instantly.
type SimMotor struct {
	Name string
	CPR  int

	// FailOn makes the given operation return the error.
	FailOn map[string]error

	mu        sync.Mutex
	speed     int
	timeLimit time.Duration
	position  int
	commands  []MotorCommand
}

// NewSimMotor creates a simulated motor with the given encoder resolution.
func NewSimMotor(name string, cpr int) *SimMotor {
	return &SimMotor{Name: name, CPR: cpr}
}

func (m *SimMotor) record(cmd MotorCommand) error {
	m.commands = append(m.commands, cmd)
	if err, ok := m.FailOn[cmd.Op]; ok {
		return ioErr(m.Name, cmd.Op, err)
	}
	return nil
}

func (m *SimMotor) SetSpeed(ctx context.Context, speed int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.speed = speed
	return m.record(MotorCommand{Op: OpSetSpeed, Speed: speed})
}

func (m *SimMotor) SetTimeLimit(ctx context.Context, d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeLimit = d
	return m.record(MotorCommand{Op: OpSetTimeLimit, Duration: d})
}

func (m *SimMotor) RunTimed(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(MotorCommand{Op: OpRunTimed, Speed: m.speed, Duration: m.timeLimit}); err != nil {
		return err
	}
	m.position += int(float64(m.speed) * m.timeLimit.Seconds())
	return nil
}

func (m *SimMotor) RunToRelativePosition(ctx context.Context, counts int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(MotorCommand{Op: OpRunToRelPos, Speed: m.speed, Counts: counts}); err != nil {
		return err
	}
	m.position += counts
	return nil
}

func (m *SimMotor) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.record(MotorCommand{Op: OpStop})
}

func (m *SimMotor) WaitUntilStopped(ctx context.Context, timeout time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.record(MotorCommand{Op: OpWait, Duration: timeout})
}

func (m *SimMotor) Position(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(MotorCommand{Op: OpPosition}); err != nil {
		return 0, err
	}
	return m.position, nil
}

func (m *SimMotor) CountsPerRevolution(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.FailOn[OpCountsPerRot]; ok {
		return 0, ioErr(m.Name, OpCountsPerRot, err)
	}
	return m.CPR, nil
}

// Commands returns every recorded command.
func (m *SimMotor) Commands() []MotorCommand {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]MotorCommand, len(m.commands))
	copy(result, m.commands)
	return result
}

// Runs returns only the commands that started a movement.
func (m *SimMotor) Runs() []MotorCommand {
	var runs []MotorCommand
	for _, c := range m.Commands() {
		if c.Op == OpRunTimed || c.Op == OpRunToRelPos {
			runs = append(runs, c)
		}
	}
	return runs
}

// Reset clears the recorded commands.
func (m *SimMotor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands = nil
}

// SimColorSensor replays colour readings. Script receives the zero-based read
// count.
type SimColorSensor struct {
	Script func(n int) (ColorReading, error)

	mu      sync.Mutex
	reads   int
	rgbMode bool
}

// NewSimColorSensor replays readings in order, repeating the last one.
func NewSimColorSensor(readings ...ColorReading) *SimColorSensor {
	return &SimColorSensor{Script: func(n int) (ColorReading, error) {
		if len(readings) == 0 {
			return ColorReading{}, nil
		}
		return readings[min(n, len(readings)-1)], nil
	}}
}

func (s *SimColorSensor) SetColorMode(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rgbMode = true
	return nil
}

func (s *SimColorSensor) ReadColor(ctx context.Context) (ColorReading, error) {
	s.mu.Lock()
	n := s.reads
	s.reads++
	s.mu.Unlock()

	c, err := s.Script(n)
	if err != nil {
		return ColorReading{}, ioErr("color", "read", err)
	}
	return c, nil
}

// Reads returns how many readings were taken.
func (s *SimColorSensor) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

// InColorMode reports whether SetColorMode was called.
func (s *SimColorSensor) InColorMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rgbMode
}

// SimDistanceSensor replays distance readings in centimetres.
type SimDistanceSensor struct {
	Script func(n int) (float64, error)

	mu     sync.Mutex
	reads  int
	cmMode bool
}

// NewSimDistanceSensor replays distances in order, repeating the last one.
func NewSimDistanceSensor(distances ...float64) *SimDistanceSensor {
	return &SimDistanceSensor{Script: func(n int) (float64, error) {
		if len(distances) == 0 {
			return 255, nil
		}
		return distances[min(n, len(distances)-1)], nil
	}}
}

func (s *SimDistanceSensor) SetDistanceMode(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cmMode = true
	return nil
}

func (s *SimDistanceSensor) ReadDistance(ctx context.Context) (float64, error) {
	s.mu.Lock()
	n := s.reads
	s.reads++
	s.mu.Unlock()

	d, err := s.Script(n)
	if err != nil {
		return 0, ioErr("distance", "read", err)
	}
	return d, nil
}

// Reads returns how many readings were taken.
func (s *SimDistanceSensor) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

// InDistanceMode reports whether SetDistanceMode was called.
func (s *SimDistanceSensor) InDistanceMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cmMode
}

// SimHardware bundles simulated devices with typed access for tests.
type SimHardware struct {
	*Hardware
	LeftWheel, RightWheel        *SimMotor
	ClawVertical, ClawHorizontal *SimMotor
	LeftColor, RightColor        *SimColorSensor
	Distance                     *SimDistanceSensor
}

// NewSimHardware creates simulated hardware. Wheels use 360 counts per
// revolution and claw motors 1000, so per-motor resolution is exercised.
func NewSimHardware(clock Clock, left, right *SimColorSensor, distance *SimDistanceSensor) *SimHardware {
	sim := &SimHardware{
		LeftWheel:      NewSimMotor(string(LeftWheel), 360),
		RightWheel:     NewSimMotor(string(RightWheel), 360),
		ClawVertical:   NewSimMotor(string(ClawVertical), 1000),
		ClawHorizontal: NewSimMotor(string(ClawHorizontal), 1000),
		LeftColor:      left,
		RightColor:     right,
		Distance:       distance,
	}
	sim.Hardware = &Hardware{
		LeftWheel:      sim.LeftWheel,
		RightWheel:     sim.RightWheel,
		ClawVertical:   sim.ClawVertical,
		ClawHorizontal: sim.ClawHorizontal,
		LeftColor:      left,
		RightColor:     right,
		Distance:       distance,
		Clock:          clock,
		WaitTimeout:    DefaultWaitTimeout,
	}
	return sim
}
