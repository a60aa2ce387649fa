package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/gwillem/linebot/pkg/config"
	"github.com/gwillem/linebot/pkg/robot"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// openHardware connects to the configured robot, or builds the simulated
// course when sim is set.
func openHardware(ctx context.Context, cfg *config.Config, sim bool) (*robot.Hardware, error) {
	if sim {
		return newSimCourse(robot.RealClock{}).Hardware, nil
	}
	if cfg.Hardware.ServoPort == "" || cfg.Hardware.SensorPort == "" {
		return nil, fmt.Errorf("servo_port and sensor_port must be set in %s (see 'linebot ports')", opts.Config)
	}
	hw, err := robot.Open(ctx, cfg.Hardware)
	if err != nil {
		return nil, fmt.Errorf("open hardware: %w", err)
	}
	return hw, nil
}

// newLogger creates a logger tagged with a fresh run id. JSON goes to w when
// handler is nil.
func newLogger(w io.Writer, handler slog.Handler) *slog.Logger {
	if handler == nil {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return slog.New(handler).With("run", uuid.NewString())
}

func closeHardware(hw *robot.Hardware) {
	if err := hw.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing hardware: %v\n", err)
	}
}
