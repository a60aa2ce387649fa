package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gwillem/linebot/pkg/config"
	"github.com/gwillem/linebot/pkg/robot"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func main() {
	configPath := flag.String("config", config.DefaultFile, "Configuration file")
	port := flag.String("port", "", "Sensor board port (overrides the config)")
	wiggle := flag.Bool("wiggle", false, "Wiggle each motor to check the wiring")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Hardware.SensorPort = *port
	}

	fmt.Println(headerStyle.Render("linebot sensor info"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━━━"))
	fmt.Println()

	if *wiggle {
		err = checkWiring(cfg)
	} else {
		err = monitor(cfg)
	}
	if errors.Is(err, errAborted) {
		fmt.Println()
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func monitor(cfg *config.Config) error {
	if cfg.Hardware.SensorPort == "" {
		return fmt.Errorf("no sensor port, set hardware.sensor_port or pass -port")
	}
	board, err := robot.OpenSensorBoard(cfg.Hardware.SensorPort)
	if err != nil {
		return err
	}
	defer board.Close()

	ctx := context.Background()
	if err := board.Ping(ctx); err != nil {
		return err
	}

	m := monitorModel{
		left:       board.Color(cfg.Hardware.Sensors.LeftColor),
		right:      board.Color(cfg.Hardware.Sensors.RightColor),
		distance:   board.Distance(cfg.Hardware.Sensors.Distance),
		greenRatio: cfg.Line.GreenRatio,
	}
	for _, s := range []robot.ColorSensor{m.left, m.right} {
		if err := s.SetColorMode(ctx); err != nil {
			return err
		}
	}
	if err := m.distance.SetDistanceMode(ctx); err != nil {
		return err
	}

	_, err = tea.NewProgram(m).Run()
	return err
}

type monitorModel struct {
	left, right robot.ColorSensor
	distance    robot.DistanceSensor
	greenRatio  float64

	readings [2]robot.ColorReading
	cm       float64
	err      error
	quitting bool
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m monitorModel) Init() tea.Cmd {
	return tick()
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		ctx := context.Background()
		m.err = nil
		for i, s := range []robot.ColorSensor{m.left, m.right} {
			c, err := s.ReadColor(ctx)
			if err != nil {
				m.err = err
				continue
			}
			m.readings[i] = c
		}
		if d, err := m.distance.ReadDistance(ctx); err != nil {
			m.err = err
		} else {
			m.cm = d
		}
		return m, tick()
	}

	return m, nil
}

func (m monitorModel) View() string {
	if m.quitting {
		return ""
	}

	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	tableSensorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)
	tableCellStyle := lipgloss.NewStyle().Padding(0, 1)
	tableGreenStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Padding(0, 1)

	green := make([]bool, 2)
	rows := make([][]string, 0, 3)
	for i, name := range []string{"left", "right"} {
		c := m.readings[i]
		green[i] = c.IsGreen(m.greenRatio)
		rows = append(rows, []string{
			name,
			fmt.Sprintf("%d", c.R),
			fmt.Sprintf("%d", c.G),
			fmt.Sprintf("%d", c.B),
			fmt.Sprintf("%.1f", c.Float().Reflectivity()),
			fmt.Sprintf("%t", green[i]),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Sensor", "R", "G", "B", "Reflectivity", "Green").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			switch {
			case col == 0:
				return tableSensorStyle
			case col == 5 && row >= 0 && row < len(green) && green[row]:
				return tableGreenStyle
			default:
				return tableCellStyle
			}
		})

	var sb strings.Builder
	sb.WriteString(t.Render())
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Distance: %.1f cm\n", m.cm))
	if m.err != nil {
		sb.WriteString(failStyle.Render(m.err.Error()))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("Press Enter to quit"))
	return sb.String()
}

// errAborted is returned when the operator cancels a prompt.
var errAborted = errors.New("aborted")

// wiringResult is the operator's verdict for one motor.
type wiringResult struct {
	motor robot.MotorName
	id    int
	moved bool
}

// checkWiring moves each motor a little and asks whether the expected one
// moved.
func checkWiring(cfg *config.Config) error {
	ctx := context.Background()
	hw, err := robot.Open(ctx, cfg.Hardware)
	if err != nil {
		return err
	}
	defer hw.Close()

	results, err := wiggleAll(ctx, hw, cfg.Hardware, confirmMoved)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(wiringTable(results))
	return nil
}

// wiggleAll wiggles every motor in turn and records whether confirm says
// it moved. A confirm error stops the check.
func wiggleAll(ctx context.Context, hw *robot.Hardware, cfg robot.HardwareConfig, confirm func(robot.MotorName) (bool, error)) ([]wiringResult, error) {
	var results []wiringResult
	for _, name := range robot.AllMotors() {
		id := cfg.Motors[name].ID
		fmt.Printf("\n  Wiggling %s (servo %d)...\n", name, id)
		if err := wiggleMotor(ctx, hw.Motor(name), hw.WaitTimeout); err != nil {
			return nil, fmt.Errorf("wiggle %s: %w", name, err)
		}

		moved, err := confirm(name)
		if err != nil {
			return nil, err
		}
		results = append(results, wiringResult{motor: name, id: id, moved: moved})
	}
	return results, nil
}

func confirmMoved(name robot.MotorName) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Did the %s move?", strings.ReplaceAll(string(name), "_", " "))).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	)
	if err := form.Run(); err != nil {
		return false, errAborted
	}
	return ok, nil
}

func wiringTable(results []wiringResult) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		verdict := "ok"
		if !r.moved {
			verdict = "check id"
		}
		rows = append(rows, []string{string(r.motor), fmt.Sprintf("%d", r.id), verdict})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Motor", "Servo", "Wiring").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			if col == 2 && row >= 0 && row < len(results) {
				if !results[row].moved {
					return failStyle.Padding(0, 1)
				}
				return successStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	return t.Render()
}

func wiggleMotor(ctx context.Context, m robot.Motor, timeout time.Duration) error {
	const counts = 60
	for _, step := range []int{counts, -2 * counts, counts} {
		speed := 200
		if step < 0 {
			speed = -speed
		}
		if err := m.SetSpeed(ctx, speed); err != nil {
			return err
		}
		if err := m.RunToRelativePosition(ctx, step); err != nil {
			return err
		}
		if err := m.WaitUntilStopped(ctx, timeout); err != nil {
			return err
		}
	}
	return nil
}
