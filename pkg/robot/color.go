package robot

import "fmt"

// Luminance weights used for reflectivity.
const (
	redWeight   = 0.2125
	greenWeight = 0.7154
	blueWeight  = 0.0721
)

// ColorReading is a raw RGB sample from a colour sensor.
type ColorReading struct {
	R, G, B int
}

// Float converts the reading for arithmetic against a baseline.
func (c ColorReading) Float() Color {
	return Color{R: float64(c.R), G: float64(c.G), B: float64(c.B)}
}

// Average returns the mean of the three channels.
func (c ColorReading) Average() float64 { return c.Float().Average() }

// RedBlueAverage returns the mean of the red and blue channels.
func (c ColorReading) RedBlueAverage() float64 { return c.Float().RedBlueAverage() }

// Reflectivity returns the luminance-weighted brightness of the reading.
func (c ColorReading) Reflectivity() float64 { return c.Float().Reflectivity() }

// IsGreen reports whether the green channel exceeds ratio times the mean of
// red and blue.
func (c ColorReading) IsGreen(ratio float64) bool {
	return float64(c.G) > ratio*c.RedBlueAverage()
}

func (c ColorReading) String() string {
	return fmt.Sprintf("R: %d, G: %d, B: %d", c.R, c.G, c.B)
}

// Color is a baseline or baseline-corrected colour. Channels may be negative
// after correction.
type Color struct {
	R, G, B float64
}

func (c Color) Average() float64 {
	return (c.R + c.G + c.B) / 3
}

func (c Color) RedBlueAverage() float64 {
	return (c.R + c.B) / 2
}

func (c Color) Reflectivity() float64 {
	return redWeight*c.R + greenWeight*c.G + blueWeight*c.B
}

// Sub subtracts o channel-wise.
func (c Color) Sub(o Color) Color {
	return Color{R: c.R - o.R, G: c.G - o.G, B: c.B - o.B}
}

func (c Color) String() string {
	return fmt.Sprintf("R: %.1f, G: %.1f, B: %.1f", c.R, c.G, c.B)
}
