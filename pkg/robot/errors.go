package robot

import (
	"errors"
	"fmt"
)

var (
	// ErrNotCalibrated is returned when line following is requested without a
	// calibration profile.
	ErrNotCalibrated = errors.New("calibration is required before line following")

	// ErrMotionTimeout is returned when a motor does not stop within the
	// allowed time.
	ErrMotionTimeout = errors.New("motor did not stop in time")
)

// IOError reports a failed motor or sensor command.
type IOError struct {
	Device string
	Op     string
	Err    error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Device, e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func ioErr(device, op string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Device: device, Op: op, Err: err}
}
