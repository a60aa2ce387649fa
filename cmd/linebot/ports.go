package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gwillem/linebot/pkg/robot"
)

type PortsCommand struct {
	MaxID int `long:"max-id" default:"10" description:"Highest servo ID to probe"`
}

type portInfo struct {
	port   string
	servos []robot.FoundServo
	board  bool
}

func (c *PortsCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("linebot ports"))
	fmt.Println("Scanning serial ports...")
	fmt.Println()

	ports, err := robot.ListPorts()
	if err != nil {
		return err
	}

	var infos []portInfo
	for _, port := range ports {
		// Skip Bluetooth ports on macOS
		if strings.Contains(port, "Bluetooth") {
			continue
		}
		infos = append(infos, probePort(port, c.MaxID))
	}

	if len(infos) == 0 {
		fmt.Println(warnStyle.Render("No serial ports found."))
		return nil
	}

	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		servos := dimStyle.Render("-")
		if len(info.servos) > 0 {
			ids := make([]string, 0, len(info.servos))
			for _, s := range info.servos {
				ids = append(ids, fmt.Sprintf("%d@%d", s.ID, s.Position))
			}
			servos = strings.Join(ids, " ")
		}
		board := dimStyle.Render("-")
		if info.board {
			board = successStyle.Render("yes")
		}
		rows = append(rows, []string{info.port, servos, board})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Port", "Servos (id@position)", "Sensor board").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	fmt.Println(t.Render())
	fmt.Println()
	fmt.Println("Set " + headerStyle.Render("hardware.servo_port") + " and " +
		headerStyle.Render("hardware.sensor_port") + " in " + opts.Config + ".")
	return nil
}

// probePort checks a port for Feetech servos first, then for the sensor
// board. A port is expected to carry one or the other.
func probePort(port string, maxID int) portInfo {
	info := portInfo{port: port}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	servos, err := robot.ProbeServoBus(ctx, port, 1, maxID)
	if err == nil && len(servos) > 0 {
		info.servos = servos
		return info
	}

	board, err := robot.OpenSensorBoard(port)
	if err != nil {
		return info
	}
	defer board.Close()
	info.board = board.Ping(ctx) == nil
	return info
}
