package robot

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBoard answers each written line from a reply table.
type fakeBoard struct {
	mu      sync.Mutex
	replies map[string]string
	written []string
	out     bytes.Buffer
	closed  bool
}

func newFakeBoard(replies map[string]string) *fakeBoard {
	return &fakeBoard{replies: replies}
}

func (f *fakeBoard) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		f.written = append(f.written, line)
		reply, ok := f.replies[line]
		if !ok {
			reply = "ERR unknown command"
		}
		f.out.WriteString(reply + "\n")
	}
	return len(p), nil
}

func (f *fakeBoard) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.out.Read(p)
}

func (f *fakeBoard) Close() error {
	f.closed = true
	return nil
}

func TestSensorBoard_Color(t *testing.T) {
	port := newFakeBoard(map[string]string{
		"MODE left RGB-RAW": "OK",
		"READ left":         "VAL 100 200 90",
	})
	board := NewSensorBoard(port)
	ctx := context.Background()
	left := board.Color("left")

	require.NoError(t, left.SetColorMode(ctx))
	c, err := left.ReadColor(ctx)
	require.NoError(t, err)

	assert.Equal(t, ColorReading{R: 100, G: 200, B: 90}, c)
	assert.Equal(t, []string{"MODE left RGB-RAW", "READ left"}, port.written)
}

func TestSensorBoard_Distance(t *testing.T) {
	port := newFakeBoard(map[string]string{
		"MODE sonar US-DIST-CM": "OK",
		"READ sonar":            "VAL 24.9",
	})
	board := NewSensorBoard(port)
	ctx := context.Background()
	sonar := board.Distance("sonar")

	require.NoError(t, sonar.SetDistanceMode(ctx))
	d, err := sonar.ReadDistance(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 24.9, d, 1e-9)
}

func TestSensorBoard_Errors(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"board error", "ERR sensor unplugged"},
		{"too few values", "VAL 1 2"},
		{"wrong prefix", "RGB 1 2 3"},
		{"not a number", "VAL 1 x 3"},
		{"negative", "VAL 1 -2 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := NewSensorBoard(newFakeBoard(map[string]string{"READ right": tt.reply}))

			_, err := board.Color("right").ReadColor(context.Background())
			require.Error(t, err)

			var ioe *IOError
			require.ErrorAs(t, err, &ioe)
			assert.Equal(t, "right", ioe.Device)
		})
	}
}

func TestSensorBoard_Ping(t *testing.T) {
	board := NewSensorBoard(newFakeBoard(map[string]string{"PING": "PONG"}))
	assert.NoError(t, board.Ping(context.Background()))

	board = NewSensorBoard(newFakeBoard(map[string]string{"PING": "HELLO"}))
	assert.Error(t, board.Ping(context.Background()))
}

func TestSensorBoard_Close(t *testing.T) {
	port := newFakeBoard(nil)
	require.NoError(t, NewSensorBoard(port).Close())
	assert.True(t, port.closed)
}
