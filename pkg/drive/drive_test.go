package drive

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/linebot/pkg/robot"
)

type testRig struct {
	left, right *robot.SimMotor
	clock       *robot.SimClock
	drive       *Drive
}

// newTestRig uses different encoder resolutions per wheel.
func newTestRig() *testRig {
	r := &testRig{
		left:  robot.NewSimMotor("left", 360),
		right: robot.NewSimMotor("right", 500),
		clock: robot.NewSimClock(time.Unix(0, 0)),
	}
	r.drive = &Drive{
		Left:        r.left,
		Right:       r.right,
		Clock:       r.clock,
		MaxSpeed:    DefaultMaxSpeed,
		WaitTimeout: 2 * time.Second,
	}
	return r
}

func TestClamp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{799.9, 799.9},
		{800, 800},
		{-800, -800},
		{1200, 800},
		{-5000, -800},
		{-12.5, -12.5},
	}
	for _, tt := range tests {
		if got := Clamp(tt.in, 800); got != tt.want {
			t.Errorf("Clamp(%v, 800) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDrive_Timed(t *testing.T) {
	rig := newTestRig()

	require.NoError(t, rig.drive.Timed(context.Background(), 1000, -900, 20*time.Millisecond))

	want := []robot.MotorCommand{{Op: robot.OpRunTimed, Speed: 800, Duration: 20 * time.Millisecond}}
	if diff := cmp.Diff(want, rig.left.Runs()); diff != "" {
		t.Errorf("left runs mismatch (-want +got):\n%s", diff)
	}
	want[0].Speed = -800
	if diff := cmp.Diff(want, rig.right.Runs()); diff != "" {
		t.Errorf("right runs mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []time.Duration{20 * time.Millisecond}, rig.clock.Sleeps())
}

func TestDrive_MoveUsesPerMotorResolution(t *testing.T) {
	rig := newTestRig()

	err := rig.drive.Move(context.Background(), Segment{Name: "pivot", Left: 0.3, Right: -0.5, Speed: 200})
	require.NoError(t, err)

	assert.Equal(t, []robot.MotorCommand{{Op: robot.OpRunToRelPos, Speed: 200, Counts: 108}}, rig.left.Runs())
	assert.Equal(t, []robot.MotorCommand{{Op: robot.OpRunToRelPos, Speed: -200, Counts: -250}}, rig.right.Runs())

	for _, m := range []*robot.SimMotor{rig.left, rig.right} {
		cmds := m.Commands()
		last := cmds[len(cmds)-1]
		assert.Equal(t, robot.OpWait, last.Op, "%s must wait after moving", m.Name)
		assert.Equal(t, 2*time.Second, last.Duration)
	}
}

func TestDrive_RunStopsOnTimeout(t *testing.T) {
	rig := newTestRig()
	rig.right.FailOn = map[string]error{}

	ctx := context.Background()
	segs := DetourSegments(DefaultDetourParams(), 100)

	// only waits after the first segment fail
	require.NoError(t, rig.drive.Move(ctx, segs[0]))
	calls := len(rig.right.Runs())
	rig.right.FailOn[robot.OpWait] = robot.ErrMotionTimeout

	err := rig.drive.Run(ctx, segs[1:]...)
	require.Error(t, err)
	assert.ErrorIs(t, err, robot.ErrMotionTimeout)
	assert.Contains(t, err.Error(), "segment out")
	assert.Len(t, rig.right.Runs(), calls+1, "no segment may start after a failed wait")
}

func TestDrive_Stop(t *testing.T) {
	rig := newTestRig()
	require.NoError(t, rig.drive.Stop(context.Background()))
	assert.Equal(t, robot.OpStop, rig.left.Commands()[0].Op)
	assert.Equal(t, robot.OpStop, rig.right.Commands()[0].Op)

	boom := errors.New("bus timeout")
	rig.left.FailOn = map[string]error{robot.OpStop: boom}
	err := rig.drive.Stop(context.Background())
	assert.ErrorIs(t, err, boom)

	var ioe *robot.IOError
	assert.ErrorAs(t, err, &ioe)
}
