package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/gwillem/linebot/pkg/config"
	"github.com/gwillem/linebot/pkg/pilot"
	"github.com/gwillem/linebot/pkg/robot"
)

type RunCommand struct {
	Yes      bool `short:"y" long:"yes" description:"Calibrate without waiting for confirmation"`
	Sim      bool `long:"sim" description:"Drive the simulated course instead of the robot"`
	Headless bool `long:"headless" description:"No dashboard, log JSON to stdout"`
	Ticks    int  `long:"ticks" description:"Stop after this many control ticks (0 runs until stopped)"`
}

const (
	headerHeight = 2 // title + blank line
	legendHeight = 2 // legend row + status row
	footerHeight = 7 // log box height
	maxLogs      = 5 // number of log messages to show
	borderSize   = 2 // chart border
)

const (
	leftSeries  = "left"
	rightSeries = "right"
)

var wheelColors = map[string]string{
	leftSeries:  "46", // green
	rightSeries: "51", // cyan
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func (c *RunCommand) Execute(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hw, err := openHardware(ctx, cfg, c.Sim)
	if err != nil {
		return err
	}
	defer closeHardware(hw)

	sink := pilot.NewLogSink(64, slog.LevelInfo)
	var handler slog.Handler
	if !c.Headless {
		handler = sink
	}
	logger := newLogger(os.Stdout, handler)

	profile, err := c.baseline(ctx, hw, logger)
	if err != nil {
		return err
	}
	ctrl := newController(hw, cfg, logger, c.Ticks)

	if c.Headless {
		return runResult(ctrl.Run(ctx, profile))
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(initialRunModel(ctrl, sink, cfg.Line.MaxSpeed, c.Sim), tea.WithAltScreen())
	errCh := make(chan error, 1)
	go func() {
		err := ctrl.Run(runCtx, profile)
		errCh <- err
		p.Send(doneMsg{err: err})
	}()

	_, uiErr := p.Run()
	cancel()
	err = runResult(<-errCh)
	if uiErr != nil {
		return fmt.Errorf("dashboard: %w", uiErr)
	}
	return err
}

func (c *RunCommand) baseline(ctx context.Context, hw *robot.Hardware, logger *slog.Logger) (*robot.CalibrationProfile, error) {
	if c.Sim {
		return simProfile(), nil
	}
	return calibrate(ctx, hw, c.Yes, logger)
}

func newController(hw *robot.Hardware, cfg *config.Config, logger *slog.Logger, ticks int) *pilot.Controller {
	return pilot.New(pilot.Config{
		Hardware: hw,
		Line:     cfg.Line,
		Turn:     cfg.Turn,
		Detour:   cfg.Detour,
		Spill:    cfg.Spill,
		Logger:   logger,
		MaxTicks: ticks,
	})
}

func runResult(err error) error {
	if errors.Is(err, robot.ErrNotCalibrated) {
		return fmt.Errorf("%w: no baseline for the colour sensors", err)
	}
	return err
}

type runModel struct {
	ctrl     *pilot.Controller
	sink     *pilot.LogSink
	chart    *streamlinechart.Model
	sim      bool
	width    int      // terminal width
	height   int      // terminal height
	logs     []string // last N log messages
	state    pilot.State
	done     bool
	runErr   error
	quitting bool
}

// Messages from the controller
type stateMsg pilot.State
type logMsg string
type doneMsg struct{ err error }

func waitForState(ctrl *pilot.Controller) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-ctrl.States())
	}
}

func waitForLog(sink *pilot.LogSink) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-sink.Lines())
	}
}

func initialRunModel(ctrl *pilot.Controller, sink *pilot.LogSink, maxSpeed int, sim bool) runModel {
	chart := streamlinechart.New(80, 20,
		streamlinechart.WithYRange(float64(-maxSpeed), float64(maxSpeed)),
	)
	for _, name := range []string{leftSeries, rightSeries} {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(wheelColors[name]))
		chart.SetDataSetStyles(name, runes.ThinLineStyle, style)
	}

	return runModel{
		ctrl:  ctrl,
		sink:  sink,
		chart: &chart,
		sim:   sim,
	}
}

func (m *runModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// chartSize calculates the size of the chart based on terminal dimensions
func (m *runModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 20
	}
	width = max(m.width-borderSize-2, 40)
	height = max(m.height-headerHeight-legendHeight-footerHeight-borderSize, 10)
	return width, height
}

func (m runModel) Init() tea.Cmd {
	return tea.Batch(
		waitForState(m.ctrl),
		waitForLog(m.sink),
	)
}

func (m runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.chart.Resize(m.chartSize())
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case stateMsg:
		m.state = pilot.State(msg)
		m.chart.PushDataSet(leftSeries, float64(m.state.Left))
		m.chart.PushDataSet(rightSeries, float64(m.state.Right))
		m.chart.DrawAll()
		return m, waitForState(m.ctrl)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.sink)

	case doneMsg:
		m.done = true
		m.runErr = runResult(msg.err)
		return m, nil
	}

	return m, nil
}

func (m runModel) View() string {
	if m.quitting {
		return "Line following stopped.\n"
	}

	var sb strings.Builder

	// Header
	sb.WriteString(titleStyle.Render("linebot run"))
	if m.sim {
		sb.WriteString(" - simulated course")
	}
	if m.width > 0 {
		sb.WriteString(statusStyle.Render(fmt.Sprintf("  [%dx%d]", m.width, m.height)))
	}
	sb.WriteString("\n\n")

	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	sb.WriteString(renderLegend())
	sb.WriteString("  ")
	sb.WriteString(m.renderStatus())
	sb.WriteString("\n")

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(max(m.width-4, 20))

	var logLines string
	if len(m.logs) == 0 {
		logLines = statusStyle.Render("Press 'q' to quit")
	} else {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func (m runModel) renderStatus() string {
	if m.done {
		if m.runErr != nil {
			return errorStyle.Render("stopped: " + m.runErr.Error())
		}
		return successStyle.Render("run complete, press 'q' to quit")
	}
	s := m.state
	if s.Tick == 0 {
		return statusStyle.Render("waiting for first tick")
	}
	status := fmt.Sprintf("tick %d  %-10s heading %+7.1f  distance %5.1f cm  debounce %d",
		s.Tick, s.Feature, s.Heading, s.Distance, s.Debounce)
	if s.Outcome != "" {
		status += "  spill " + s.Outcome
	}
	return statusStyle.Render(status)
}

func renderLegend() string {
	var items []string
	for _, name := range []string{leftSeries, rightSeries} {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(wheelColors[name])).Bold(true)
		items = append(items, colorStyle.Render("━━")+" "+name+" wheel")
	}
	return strings.Join(items, "  ")
}
