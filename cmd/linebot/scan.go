package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gwillem/linebot/pkg/drive"
	"github.com/gwillem/linebot/pkg/spill"
)

type ScanCommand struct {
	Sim bool `long:"sim" description:"Scan the simulated course instead of the robot"`
}

func (c *ScanCommand) Execute(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	hw, err := openHardware(ctx, cfg, c.Sim)
	if err != nil {
		return err
	}
	defer closeHardware(hw)

	fmt.Println(headerStyle.Render("linebot scan"))
	fmt.Printf("Turning through %d steps, looking for cans within %.0f cm...\n\n",
		cfg.Spill.FindSteps, cfg.Spill.FindDistance)

	logger := newLogger(os.Stderr, nil)
	r := spill.New(hw, drive.New(hw, cfg.Line.MaxSpeed), cfg.Spill, cfg.Line.CruiseSpeed, logger)
	found, err := r.FindCans(ctx)
	if err != nil {
		return err
	}

	if len(found) == 0 {
		fmt.Println(warnStyle.Render("No cans found."))
		return nil
	}

	rows := make([][]string, 0, len(found))
	for _, step := range found {
		rows = append(rows, []string{
			fmt.Sprintf("%d", step),
			fmt.Sprintf("%.0f°", cfg.Spill.Degrees(step)),
		})
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Step", "Heading").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	fmt.Println(t.Render())
	fmt.Println(successStyle.Render(fmt.Sprintf("Found %d direction(s) with a can.", len(found))))
	return nil
}
