package robot

import (
	"math"
	"testing"
)

func TestColorReading_Metrics(t *testing.T) {
	tests := []struct {
		c       ColorReading
		average float64
		rbAve   float64
		refl    float64
	}{
		{ColorReading{0, 0, 0}, 0, 0, 0},
		{ColorReading{100, 100, 100}, 100, 100, 100},
		{ColorReading{10, 20, 30}, 20, 20, 2.125 + 14.308 + 2.163},
		{ColorReading{0, 80, 0}, 80.0 / 3, 0, 57.232},
	}

	for _, tt := range tests {
		if got := tt.c.Average(); math.Abs(got-tt.average) > 1e-9 {
			t.Errorf("%v Average() = %f, want %f", tt.c, got, tt.average)
		}
		if got := tt.c.RedBlueAverage(); math.Abs(got-tt.rbAve) > 1e-9 {
			t.Errorf("%v RedBlueAverage() = %f, want %f", tt.c, got, tt.rbAve)
		}
		if got := tt.c.Reflectivity(); math.Abs(got-tt.refl) > 1e-9 {
			t.Errorf("%v Reflectivity() = %f, want %f", tt.c, got, tt.refl)
		}
	}
}

func TestColorReading_IsGreen(t *testing.T) {
	tests := []struct {
		c    ColorReading
		want bool
	}{
		{ColorReading{40, 120, 40}, true},
		{ColorReading{100, 160, 100}, false},
		{ColorReading{100, 170, 100}, true},
		{ColorReading{200, 200, 200}, false}, // white
		{ColorReading{10, 10, 10}, false},    // black
	}

	for _, tt := range tests {
		if got := tt.c.IsGreen(1.65); got != tt.want {
			t.Errorf("%v IsGreen(1.65) = %v, want %v", tt.c, got, tt.want)
		}
	}
}

func TestColor_SubAllowsNegative(t *testing.T) {
	got := Color{R: 10, G: 20, B: 30}.Sub(Color{R: 20, G: 20, B: 20})
	want := Color{R: -10, G: 0, B: 10}
	if got != want {
		t.Errorf("Sub() = %v, want %v", got, want)
	}
}
