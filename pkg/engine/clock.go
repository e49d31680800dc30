// pkg/engine/clock.go
package engine

import "math"

// MaxStep caps a single frame's wall-clock delta so a stalled frame cannot
// teleport vessels.
const MaxStep = 0.1

// Clock accumulates simulation seconds. TimeScale multiplies every frame
// delta; Paused freezes the clock entirely.
type Clock struct {
	Now       float64
	TimeScale float64
	Paused    bool
}

// Advance moves the clock by a frame of dt wall seconds and returns the
// simulation seconds that elapsed. It returns 0 when the frame must be
// skipped: paused, a zero time scale, or a dt that is not a positive finite
// number.
func (c *Clock) Advance(dt float64) float64 {
	if c.Paused || !(dt > 0) || math.IsInf(dt, 0) {
		return 0
	}
	if dt > MaxStep {
		dt = MaxStep
	}
	scaled := dt * c.TimeScale
	if !(scaled > 0) || math.IsInf(scaled, 0) {
		return 0
	}
	c.Now += scaled
	return scaled
}
