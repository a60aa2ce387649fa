package robot

import (
	"fmt"
	"time"
)

// DefaultWaitTimeout bounds how long a move may take before the motor is
// considered stuck. The longest default move, a 1.8 revolution detour leg
// at cruise speed, takes about 6.5s.
const DefaultWaitTimeout = 15 * time.Second

// DefaultCountsPerRev is the logical encoder resolution exposed by each
// motor. Speeds in the configuration are in these counts per second.
const DefaultCountsPerRev = 360

// HardwareConfig describes how the robot's devices are wired.
type HardwareConfig struct {
	// ServoPort is the serial port of the Feetech servo bus.
	ServoPort string `yaml:"servo_port"`

	// SensorPort is the serial port of the sensor board.
	SensorPort string `yaml:"sensor_port"`

	Motors  map[MotorName]ServoConfig `yaml:"motors"`
	Sensors SensorConfig              `yaml:"sensors"`

	// WaitTimeout bounds every wait-until-stopped.
	WaitTimeout time.Duration `yaml:"wait_timeout"`
}

// ServoConfig holds the bus settings for a single motor.
type ServoConfig struct {
	ID int `yaml:"id"`

	// Invert flips direction for mirrored mounting.
	Invert bool `yaml:"invert"`

	// CountsPerRev is the logical resolution the motor reports. Positions
	// and speeds are scaled to raw servo steps.
	CountsPerRev int `yaml:"counts_per_rev"`
}

// SensorConfig names the sensors on the sensor board.
type SensorConfig struct {
	LeftColor  string `yaml:"left_color"`
	RightColor string `yaml:"right_color"`
	Distance   string `yaml:"distance"`
}

// DefaultHardwareConfig returns the wiring of the reference build: four STS
// servos with IDs 1-4 and a sensor board exposing left, right and sonar.
func DefaultHardwareConfig() HardwareConfig {
	motors := make(map[MotorName]ServoConfig, 4)
	for i, name := range AllMotors() {
		motors[name] = ServoConfig{ID: i + 1, CountsPerRev: DefaultCountsPerRev}
	}
	motors[RightWheel] = ServoConfig{ID: 2, Invert: true, CountsPerRev: DefaultCountsPerRev}

	return HardwareConfig{
		Motors: motors,
		Sensors: SensorConfig{
			LeftColor:  "left",
			RightColor: "right",
			Distance:   "sonar",
		},
		WaitTimeout: DefaultWaitTimeout,
	}
}

// Validate checks that every motor and sensor is configured.
func (c HardwareConfig) Validate() error {
	seen := make(map[int]MotorName)
	for _, name := range AllMotors() {
		mc, ok := c.Motors[name]
		if !ok {
			return fmt.Errorf("motors.%s is required", name)
		}
		if mc.ID <= 0 {
			return fmt.Errorf("motors.%s: id must be positive", name)
		}
		if other, dup := seen[mc.ID]; dup {
			return fmt.Errorf("motors.%s: id %d already used by %s", name, mc.ID, other)
		}
		seen[mc.ID] = name
		if mc.CountsPerRev <= 0 {
			return fmt.Errorf("motors.%s: counts_per_rev must be positive", name)
		}
	}
	if c.Sensors.LeftColor == "" || c.Sensors.RightColor == "" || c.Sensors.Distance == "" {
		return fmt.Errorf("sensors: left_color, right_color and distance are required")
	}
	if c.WaitTimeout <= 0 {
		return fmt.Errorf("wait_timeout must be positive")
	}
	return nil
}
