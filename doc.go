// Package linebot is the control software of a two-wheeled line-following
// rescue robot driven by Feetech STS servos and a serial sensor board.
//
// The robot follows a dark line with a proportional steering law, takes
// scripted turns at green markers, drives around obstacles and, in the green
// spill zone, finds an object and carries it out with its claw.
//
// # Installation
//
//	go install github.com/gwillem/linebot/cmd/linebot@latest
//
// # Usage
//
// Find the servo bus and sensor board and put them in linebot.yaml:
//
//	linebot ports
//
// Check the colour sensor baseline on plain floor:
//
//	linebot calibrate
//
// Then follow the line. The run calibrates again before the first tick:
//
//	linebot run
//
// Use `linebot run --sim` to drive a simulated course without hardware.
//
// # Packages
//
//   - cmd/linebot: CLI with calibrate, run, scan, pickup and ports commands
//   - cmd/sensor-info: live sensor readout and motor wiring check
//   - pkg/robot: motors, sensors, calibration and hardware configuration
//   - pkg/drive: timed and position-controlled wheel moves, turns and the detour
//   - pkg/linefollow: steering law and feature classifier
//   - pkg/spill: spill-zone responder
//   - pkg/pilot: control loop and telemetry
//   - pkg/config: YAML configuration
package linebot
