package robot

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
)

// Sensor modes understood by the sensor board firmware.
const (
	ModeRGBRaw   = "RGB-RAW"
	ModeDistance = "US-DIST-CM"
)

// SerialPorter is the minimal interface needed for the sensor board link.
// It lets tests run without serial hardware.
type SerialPorter interface {
	io.ReadWriter
	io.Closer
}

// SensorBoard talks to the microcontroller that hosts the colour and
// ultrasonic sensors. Each request is one line and gets one reply line:
//
//	MODE <sensor> <mode>  ->  OK
//	READ <sensor>         ->  VAL <v1> [<v2> <v3>]
//	PING                  ->  PONG
//
// Failures are answered with "ERR <message>".
type SensorBoard struct {
	mu   sync.Mutex
	port SerialPorter
	r    *bufio.Reader
}

// OpenSensorBoard opens the sensor board on the named serial port.
func OpenSensorBoard(portName string) (*SensorBoard, error) {
	mode := &serial.Mode{
		BaudRate: 115200,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("open sensor board: %w", err)
	}
	if err := port.SetReadTimeout(500 * time.Millisecond); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}
	return NewSensorBoard(port), nil
}

// NewSensorBoard wraps an already open port.
func NewSensorBoard(port SerialPorter) *SensorBoard {
	return &SensorBoard{port: port, r: bufio.NewReader(port)}
}

// Close closes the serial port.
func (b *SensorBoard) Close() error {
	return b.port.Close()
}

// Ping checks that the board is responding.
func (b *SensorBoard) Ping(ctx context.Context) error {
	reply, err := b.request(ctx, "PING")
	if err != nil {
		return ioErr("sensor board", "ping", err)
	}
	if reply != "PONG" {
		return ioErr("sensor board", "ping", fmt.Errorf("unexpected reply %q", reply))
	}
	return nil
}

func (b *SensorBoard) request(ctx context.Context, line string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := io.WriteString(b.port, line+"\n"); err != nil {
		return "", fmt.Errorf("write: %w", err)
	}
	reply, err := b.r.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read reply: %w", err)
	}
	reply = strings.TrimSpace(reply)
	if msg, ok := strings.CutPrefix(reply, "ERR"); ok {
		return "", fmt.Errorf("board error: %s", strings.TrimSpace(msg))
	}
	return reply, nil
}

func (b *SensorBoard) setMode(ctx context.Context, sensor, mode string) error {
	reply, err := b.request(ctx, "MODE "+sensor+" "+mode)
	if err != nil {
		return ioErr(sensor, "set mode", err)
	}
	if reply != "OK" {
		return ioErr(sensor, "set mode", fmt.Errorf("unexpected reply %q", reply))
	}
	return nil
}

func (b *SensorBoard) read(ctx context.Context, sensor string, n int) ([]string, error) {
	reply, err := b.request(ctx, "READ "+sensor)
	if err != nil {
		return nil, ioErr(sensor, "read", err)
	}
	fields := strings.Fields(reply)
	if len(fields) != n+1 || fields[0] != "VAL" {
		return nil, ioErr(sensor, "read", fmt.Errorf("malformed reply %q", reply))
	}
	return fields[1:], nil
}

// Color returns the colour sensor with the given board name.
func (b *SensorBoard) Color(name string) *BoardColorSensor {
	return &BoardColorSensor{board: b, name: name}
}

// Distance returns the ultrasonic sensor with the given board name.
func (b *SensorBoard) Distance(name string) *BoardDistanceSensor {
	return &BoardDistanceSensor{board: b, name: name}
}

// BoardColorSensor is a colour sensor attached to a SensorBoard.
type BoardColorSensor struct {
	board *SensorBoard
	name  string
}

func (s *BoardColorSensor) SetColorMode(ctx context.Context) error {
	return s.board.setMode(ctx, s.name, ModeRGBRaw)
}

func (s *BoardColorSensor) ReadColor(ctx context.Context) (ColorReading, error) {
	vals, err := s.board.read(ctx, s.name, 3)
	if err != nil {
		return ColorReading{}, err
	}
	var rgb [3]int
	for i, v := range vals {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return ColorReading{}, ioErr(s.name, "read", fmt.Errorf("bad channel value %q", v))
		}
		rgb[i] = n
	}
	return ColorReading{R: rgb[0], G: rgb[1], B: rgb[2]}, nil
}

// BoardDistanceSensor is an ultrasonic sensor attached to a SensorBoard.
type BoardDistanceSensor struct {
	board *SensorBoard
	name  string
}

func (s *BoardDistanceSensor) SetDistanceMode(ctx context.Context) error {
	return s.board.setMode(ctx, s.name, ModeDistance)
}

func (s *BoardDistanceSensor) ReadDistance(ctx context.Context) (float64, error) {
	vals, err := s.board.read(ctx, s.name, 1)
	if err != nil {
		return 0, err
	}
	d, err := strconv.ParseFloat(vals[0], 64)
	if err != nil {
		return 0, ioErr(s.name, "read", fmt.Errorf("bad distance %q", vals[0]))
	}
	return d, nil
}

// ListPorts returns the serial ports present on the system.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	return ports, nil
}
