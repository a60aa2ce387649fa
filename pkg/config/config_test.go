package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/linebot/pkg/robot"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "linebot.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	p := writeConfig(t, "hardware:\n  servo_port: /dev/ttyACM0\n")

	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyACM0", cfg.Hardware.ServoPort)
	assert.Equal(t, Default().Line, cfg.Line)
	assert.Equal(t, Default().Spill, cfg.Spill)
	assert.Equal(t, robot.DefaultWaitTimeout, cfg.Hardware.WaitTimeout)
	assert.Len(t, cfg.Hardware.Motors, 4)
}

func TestLoad_Overrides(t *testing.T) {
	p := writeConfig(t, `
hardware:
  sensor_port: /dev/ttyUSB1
  wait_timeout: 8s
  motors:
    claw_vertical: {id: 7, counts_per_rev: 1000}
line:
  gain: 1.5
  tick: 30ms
  cruise_speed: 250
  debounce_ticks: 60
detour:
  out: 2.2
spill:
  max_scan_steps: 50
  advance_duration: 1500ms
`)

	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB1", cfg.Hardware.SensorPort)
	assert.Equal(t, 8*time.Second, cfg.Hardware.WaitTimeout)
	assert.Equal(t, robot.ServoConfig{ID: 7, CountsPerRev: 1000}, cfg.Hardware.Motors[robot.ClawVertical])
	assert.Equal(t, 1, cfg.Hardware.Motors[robot.LeftWheel].ID, "other motors keep defaults")

	assert.Equal(t, 1.5, cfg.Line.Gain)
	assert.Equal(t, 30*time.Millisecond, cfg.Line.Tick)
	assert.Equal(t, 250, cfg.Line.CruiseSpeed)
	assert.Equal(t, 60, cfg.Line.DebounceTicks)
	assert.Equal(t, 1.65, cfg.Line.GreenRatio)

	assert.Equal(t, 2.2, cfg.Detour.Out)
	assert.Equal(t, 0.3, cfg.Detour.Pivot)

	assert.Equal(t, 50, cfg.Spill.MaxScanSteps)
	assert.Equal(t, 1500*time.Millisecond, cfg.Spill.AdvanceDuration)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad yaml", "line: [", "parse yaml"},
		{"cruise above max", "line:\n  cruise_speed: 900\n", "line: cruise_speed"},
		{"duplicate ids", "hardware:\n  motors:\n    right_wheel: {id: 1, counts_per_rev: 360}\n", "already used"},
		{"zero pivot", "turn:\n  pivot: 0\n", "turn:"},
		{"negative detour", "detour:\n  across: -1\n", "detour:"},
		{"spill bound", "spill:\n  max_chase_bursts: 0\n", "spill: max_chase_bursts"},
		{"bad duration", "line:\n  tick: soon\n", "parse yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Contains(t, err.Error(), "config:")
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_MissingDefaultFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(DefaultFile)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestMarshal_LoadsBack(t *testing.T) {
	want := Default()
	want.Hardware.ServoPort = "/dev/ttyACM0"
	want.Line.Tick = 25 * time.Millisecond

	data, err := want.Marshal()
	require.NoError(t, err)

	got, err := Load(writeConfig(t, string(data)))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
