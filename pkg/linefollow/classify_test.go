package linefollow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gwillem/linebot/pkg/robot"
)

var (
	white = robot.ColorReading{R: 200, G: 210, B: 190}
	green = robot.ColorReading{R: 40, G: 140, B: 50}
)

func armed() *Debounce {
	d := NewDebounce(100)
	for i := 0; i < 101; i++ {
		d.Tick()
	}
	return d
}

func TestDebounce(t *testing.T) {
	d := NewDebounce(100)
	for i := 0; i < 100; i++ {
		d.Tick()
	}
	assert.Equal(t, 100, d.Count())
	assert.False(t, d.Armed(), "count == threshold is not armed")

	d.Tick()
	assert.True(t, d.Armed())

	d.Reset()
	assert.Zero(t, d.Count())
	assert.False(t, d.Armed())
}

func TestClassify(t *testing.T) {
	c := NewClassifier(DefaultParams())

	tests := []struct {
		name     string
		obs      Observation
		debounce *Debounce
		want     Feature
	}{
		{"line", Observation{white, white, 100}, armed(), Line},
		{"obstacle at threshold", Observation{white, white, 25}, armed(), Line},
		{"obstacle below threshold", Observation{white, white, 24.99}, armed(), Obstacle},
		{"obstacle beats spill", Observation{green, green, 10}, armed(), Obstacle},
		{"spill always armed", Observation{green, green, 100}, NewDebounce(100), SpillZone},
		{"left marker armed", Observation{green, white, 100}, armed(), TurnLeft},
		{"right marker armed", Observation{white, green, 100}, armed(), TurnRight},
		{"left marker debounced", Observation{green, white, 100}, NewDebounce(100), Line},
		{"right marker debounced", Observation{white, green, 100}, NewDebounce(100), Line},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.obs, tt.debounce))
		})
	}
}

func TestFeature_String(t *testing.T) {
	assert.Equal(t, "line", Line.String())
	assert.Equal(t, "turn-left", TurnLeft.String())
	assert.Equal(t, "turn-right", TurnRight.String())
	assert.Equal(t, "obstacle", Obstacle.String())
	assert.Equal(t, "spill", SpillZone.String())
}

func TestParams_Validate(t *testing.T) {
	assert.NoError(t, DefaultParams().Validate())

	p := DefaultParams()
	p.CruiseSpeed = 900
	assert.Error(t, p.Validate())

	p = DefaultParams()
	p.GreenRatio = 1
	assert.Error(t, p.Validate())

	p = DefaultParams()
	p.Tick = 0
	assert.Error(t, p.Validate())
}
