package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gwillem/linebot/pkg/robot"
)

type CalibrateCommand struct {
	Yes bool `short:"y" long:"yes" description:"Do not wait for confirmation"`
}

func (c *CalibrateCommand) Execute(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Println(headerStyle.Render("linebot calibrate"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━"))
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	hw, err := openHardware(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer closeHardware(hw)

	profile, err := calibrate(ctx, hw, c.Yes, newLogger(os.Stderr, nil))
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(profileTable(profile))
	fmt.Println(successStyle.Render("Calibration complete."))
	fmt.Println()
	fmt.Println("The baseline is not stored, " + headerStyle.Render("linebot run") + " calibrates again before it starts.")
	return nil
}

// calibrate measures the neutral-ground baseline of both colour sensors.
func calibrate(ctx context.Context, hw *robot.Hardware, yes bool, logger *slog.Logger) (*robot.CalibrationProfile, error) {
	if !yes {
		waitForUser("Place both colour sensors over plain floor, away from the line.")
	}

	cal := robot.NewCalibrator(hw.LeftColor, hw.RightColor, hw.Clock, logger.With("component", "calibrate"))
	fmt.Printf("Step away. Sampling starts in %s...\n", cal.Settle)

	profile, err := cal.Calibrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("calibrate: %w", err)
	}
	return profile, nil
}

func profileTable(p *robot.CalibrationProfile) string {
	rows := [][]string{}
	for _, side := range []struct {
		name string
		c    robot.Color
	}{{"left", p.Left}, {"right", p.Right}} {
		rows = append(rows, []string{
			side.name,
			fmt.Sprintf("%.1f", side.c.R),
			fmt.Sprintf("%.1f", side.c.G),
			fmt.Sprintf("%.1f", side.c.B),
			fmt.Sprintf("%.1f", side.c.Reflectivity()),
		})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Sensor", "R", "G", "B", "Reflectivity").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Render()
}

func waitForUser(prompt string) {
	fmt.Println(prompt)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("").
				Affirmative("Continue").
				Negative("").
				Value(new(bool)),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}
}
