// Package combat estimates firing-solution quality from a ship's sensors.
// Nothing in the simulation resolves combat; the numbers feed the target
// readout only.
package combat

import (
	"math"

	"github.com/opd-ai/go-spacerpg/pkg/entity"
)

// Sensor names as they appear in a ship's sensors block, suffixed with
// "_sensor".
const (
	SensorIR    = "ir"
	SensorLidar = "lidar"
	SensorRadar = "radar"
)

// Sensors lists every sensor used for a multi-mode solution.
var Sensors = []string{SensorIR, SensorLidar, SensorRadar}

// SensorPerfectRange returns the range, in Mm, at which one sensor gives a
// perfect firing solution on a target targetRange Mm away:
// (sensor range / target range) ^ accuracy. Missing sensor data or a
// non-positive target range yields 0.
func SensorPerfectRange(sensors entity.Attributes, name string, targetRange float64) float64 {
	if !(targetRange > 0) {
		return 0
	}
	rangeMm, ok := sensors.Float(name+"_sensor", "range_Mm")
	if !ok {
		return 0
	}
	accuracy, ok := sensors.Float(name+"_sensor", "accuracy")
	if !ok {
		return 0
	}
	v := math.Pow(rangeMm/targetRange, accuracy)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// PerfectSolutionRange multiplies the per-sensor perfect ranges.
func PerfectSolutionRange(sensors entity.Attributes, targetRange float64) float64 {
	product := 1.0
	for _, name := range Sensors {
		product *= SensorPerfectRange(sensors, name, targetRange)
	}
	return product
}

// SingleModeSolution is the solution strength using one sensor.
func SingleModeSolution(sensors entity.Attributes, name string, targetRange float64) float64 {
	if !(targetRange > 0) {
		return 0
	}
	return SensorPerfectRange(sensors, name, targetRange) / targetRange
}

// MultiModeSolution is the solution strength using every sensor.
func MultiModeSolution(sensors entity.Attributes, targetRange float64) float64 {
	if !(targetRange > 0) {
		return 0
	}
	return PerfectSolutionRange(sensors, targetRange) / targetRange
}

// Readout summarises the firing solution of a ship on its locked target.
type Readout struct {
	TargetTag   string
	DistanceKm  float64
	RangeMm     float64
	SingleMode  map[string]float64
	MultiMode   float64
	HasSolution bool
}

// Assess builds the readout for ship's current target. It reports false
// when the vessel is not a ship or holds no target.
func Assess(ship *entity.Vessel) (Readout, bool) {
	if ship == nil || ship.Combat == nil || !ship.Combat.HasTarget() {
		return Readout{}, false
	}
	c := ship.Combat
	c.UpdateTargetDistance(ship.Position())

	r := Readout{
		TargetTag:  c.Target.GetTag(),
		DistanceKm: c.TargetDistance,
		RangeMm:    c.TargetRange,
		SingleMode: make(map[string]float64, len(Sensors)),
		MultiMode:  MultiModeSolution(c.Sensors, c.TargetRange),
	}
	for _, name := range Sensors {
		r.SingleMode[name] = SingleModeSolution(c.Sensors, name, c.TargetRange)
	}
	r.HasSolution = r.MultiMode > 0
	return r, true
}
