package main

import (
	"os"

	"github.com/jessevdk/go-flags"
)

type Options struct {
	Config string `short:"c" long:"config" default:"linebot.yaml" description:"Configuration file"`

	Calibrate CalibrateCommand `command:"calibrate" alias:"cal" description:"Sample both colour sensors on neutral ground and print the baseline"`
	Run       RunCommand       `command:"run" description:"Follow the line"`
	Scan      ScanCommand      `command:"scan" description:"Turn in place and list the directions where cans are close"`
	Pickup    PickupCommand    `command:"pickup" description:"Approach the object ahead, grasp it and back away"`
	Ports     PortsCommand     `command:"ports" description:"List serial ports and probe them for servos and the sensor board"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "linebot - line-following rescue robot"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}
