package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/gwillem/linebot/pkg/drive"
	"github.com/gwillem/linebot/pkg/spill"
)

type PickupCommand struct {
	Yes bool `short:"y" long:"yes" description:"Do not wait for confirmation"`
}

func (c *PickupCommand) Execute(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	hw, err := openHardware(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer closeHardware(hw)

	fmt.Println(headerStyle.Render("linebot pickup"))
	if !c.Yes {
		waitForUser("Point the robot at the object, within a metre.")
	}

	logger := newLogger(os.Stderr, nil)
	r := spill.New(hw, drive.New(hw, cfg.Line.MaxSpeed), cfg.Spill, cfg.Line.CruiseSpeed, logger)

	if err := hw.Distance.SetDistanceMode(ctx); err != nil {
		return fmt.Errorf("set distance mode: %w", err)
	}
	if err := r.RaiseClaw(ctx); err != nil {
		return err
	}
	out, err := r.Pickup(ctx)
	if err != nil {
		return err
	}

	switch out {
	case spill.Retrieved:
		fmt.Println(successStyle.Render("Object retrieved."))
	default:
		fmt.Println(warnStyle.Render(fmt.Sprintf("Pickup failed: %s.", out)))
	}
	return nil
}
