package robot

import "context"

// ColorSensor samples raw RGB values.
type ColorSensor interface {
	// SetColorMode switches the sensor into raw RGB mode.
	SetColorMode(ctx context.Context) error
	ReadColor(ctx context.Context) (ColorReading, error)
}

// DistanceSensor is an ultrasonic range finder.
type DistanceSensor interface {
	// SetDistanceMode switches the sensor into continuous centimetre mode.
	SetDistanceMode(ctx context.Context) error
	// ReadDistance returns the current distance in centimetres.
	ReadDistance(ctx context.Context) (float64, error)
}
