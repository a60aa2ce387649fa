// Package config loads the linebot YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gwillem/linebot/pkg/drive"
	"github.com/gwillem/linebot/pkg/linefollow"
	"github.com/gwillem/linebot/pkg/robot"
	"github.com/gwillem/linebot/pkg/spill"
)

// DefaultFile is the config path used when none is given.
const DefaultFile = "linebot.yaml"

// Config is the complete robot configuration. It is read once at start and
// not changed afterwards.
type Config struct {
	Hardware robot.HardwareConfig `yaml:"hardware"`
	Line     linefollow.Params    `yaml:"line"`
	Turn     drive.TurnParams     `yaml:"turn"`
	Detour   drive.DetourParams   `yaml:"detour"`
	Spill    spill.Params         `yaml:"spill"`
}

// Default returns the reference configuration.
func Default() *Config {
	return &Config{
		Hardware: robot.DefaultHardwareConfig(),
		Line:     linefollow.DefaultParams(),
		Turn:     drive.DefaultTurnParams(),
		Detour:   drive.DefaultDetourParams(),
		Spill:    spill.DefaultParams(),
	}
}

// Load reads and parses the config file at path. Missing fields keep their
// defaults. A missing file at the default path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && path == DefaultFile {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Hardware.Validate(); err != nil {
		return fmt.Errorf("hardware: %w", err)
	}
	if err := c.Line.Validate(); err != nil {
		return fmt.Errorf("line: %w", err)
	}
	if c.Turn.Bump < 0 || c.Turn.Pivot <= 0 {
		return fmt.Errorf("turn: bump must not be negative and pivot must be positive")
	}
	if c.Detour.Pivot <= 0 || c.Detour.Out <= 0 || c.Detour.Across <= 0 {
		return fmt.Errorf("detour: pivot, out and across must be positive")
	}
	if err := c.Spill.Validate(); err != nil {
		return fmt.Errorf("spill: %w", err)
	}
	return nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
