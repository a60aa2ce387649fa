package drive

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/linebot/pkg/robot"
)

func TestDetourSegments(t *testing.T) {
	want := []Segment{
		{Name: "pivot-away", Left: -0.3, Right: 0.3, Speed: 150},
		{Name: "out", Left: 1.8, Right: 1.8, Speed: 150},
		{Name: "pivot-back", Left: 0.3, Right: -0.3, Speed: 150},
		{Name: "across", Left: 1.8, Right: 1.8, Speed: 150},
		{Name: "realign", Left: 0.3, Right: -0.3, Speed: 150},
	}
	if diff := cmp.Diff(want, DetourSegments(DefaultDetourParams(), 150)); diff != "" {
		t.Errorf("DetourSegments mismatch (-want +got):\n%s", diff)
	}
}

func TestTurnSegments_Mirrored(t *testing.T) {
	p := DefaultTurnParams()

	left := TurnSegments(robot.Left, p, 100)
	right := TurnSegments(robot.Right, p, 100)

	require.Len(t, left, 2)
	require.Len(t, right, 2)
	assert.Equal(t, left[0], right[0], "bump is the same for both sides")
	assert.Equal(t, Segment{Name: "pivot-left", Left: -0.5, Right: 0.5, Speed: 100}, left[1])
	assert.Equal(t, Segment{Name: "pivot-right", Left: 0.5, Right: -0.5, Speed: 100}, right[1])
}

func TestDrive_TurnStopsFirst(t *testing.T) {
	rig := newTestRig()

	require.NoError(t, rig.drive.Turn(context.Background(), robot.Right, DefaultTurnParams(), 100))

	assert.Equal(t, robot.OpStop, rig.left.Commands()[0].Op)
	want := []robot.MotorCommand{
		{Op: robot.OpRunToRelPos, Speed: 100, Counts: 108},
		{Op: robot.OpRunToRelPos, Speed: 100, Counts: 180},
	}
	if diff := cmp.Diff(want, rig.left.Runs()); diff != "" {
		t.Errorf("left runs mismatch (-want +got):\n%s", diff)
	}
	want = []robot.MotorCommand{
		{Op: robot.OpRunToRelPos, Speed: 100, Counts: 150},
		{Op: robot.OpRunToRelPos, Speed: -100, Counts: -250},
	}
	if diff := cmp.Diff(want, rig.right.Runs()); diff != "" {
		t.Errorf("right runs mismatch (-want +got):\n%s", diff)
	}
}

func TestDrive_DetourOrderAndSigns(t *testing.T) {
	rig := newTestRig()

	require.NoError(t, rig.drive.Detour(context.Background(), DefaultDetourParams(), 100))

	var gotLeft, gotRight []int
	for _, c := range rig.left.Runs() {
		gotLeft = append(gotLeft, c.Counts)
	}
	for _, c := range rig.right.Runs() {
		gotRight = append(gotRight, c.Counts)
	}
	assert.Equal(t, []int{-108, 648, 108, 648, 108}, gotLeft)
	assert.Equal(t, []int{150, 900, -150, 900, -150}, gotRight)
}
