// pkg/entity/vessel.go
package entity

import (
	"math"

	"github.com/opd-ai/go-spacerpg/pkg/physics"
)

// Vessel is any moving craft: NPC traffic, combat ships and the player.
// Specialisations are attached as capabilities rather than subtypes.
type Vessel struct {
	BaseEntity
	VesselType   string
	Motion       physics.MovementState
	Destination  Waypoint
	Trail        physics.Trail
	Destroyed    bool
	RadarVisible bool

	// Combat is non-nil for ships that can hold a target.
	Combat *CombatCapability
}

// Advance moves the vessel by deltaTime seconds toward its destination and
// records its trail at simulation time now. Reaching the destination clears
// it. A destination pointing at a location the arena does not know is
// dropped and the vessel coasts to rest.
func (v *Vessel) Advance(arena *Arena, deltaTime, now float64) physics.StepResult {
	if v.Destroyed || !(deltaTime > 0) || math.IsInf(deltaTime, 0) {
		return physics.StepResult{}
	}

	var target *physics.Vector2D
	if p, ok := v.Destination.Resolve(arena); ok {
		target = &p
	} else if v.Destination.IsSet() {
		v.Destination = Waypoint{}
	}

	result := physics.Steer(&v.Motion, target, deltaTime)
	if result.Arrived {
		v.Destination = Waypoint{}
	}

	v.Trail.Record(v.Motion.Position, v.Motion.Speed, now)
	return result
}

// SetDestination replaces the vessel's destination
func (v *Vessel) SetDestination(w Waypoint) {
	v.Destination = w
}

// ClearDestination drops the destination; the vessel decelerates to rest.
func (v *Vessel) ClearDestination() {
	v.Destination = Waypoint{}
}

// HasDestination reports whether a destination is set
func (v *Vessel) HasDestination() bool {
	return v.Destination.IsSet()
}

// DistanceToDestination returns the straight-line distance to the
// destination, or 0 when there is none.
func (v *Vessel) DistanceToDestination(arena *Arena) float64 {
	p, ok := v.Destination.Resolve(arena)
	if !ok {
		return 0
	}
	return v.Motion.Position.Distance(p)
}

// Stop zeroes speed and velocity in place
func (v *Vessel) Stop() {
	v.Motion.Stop()
}

// Position returns the vessel's coordinates
func (v *Vessel) Position() physics.Vector2D {
	return v.Motion.Position
}

// Speed returns the scalar speed
func (v *Vessel) Speed() float64 {
	return v.Motion.Speed
}

// Heading returns the orientation in radians
func (v *Vessel) Heading() float64 {
	return v.Motion.Heading
}

// TrailSamples returns a copy of the recorded trail, oldest first
func (v *Vessel) TrailSamples() []physics.TrailSample {
	return v.Trail.Samples()
}

// OnRadar reports whether the vessel should be drawn on radar
func (v *Vessel) OnRadar() bool {
	return v.RadarVisible && !v.Destroyed
}

// Hide hides the vessel from radar, e.g. while docked.
func (v *Vessel) Hide() {
	v.RadarVisible = false
}

// Reveal restores radar visibility
func (v *Vessel) Reveal() {
	v.RadarVisible = true
}

// IsPlayer reports whether this vessel is the player's ship
func (v *Vessel) IsPlayer() bool {
	return v.Combat != nil && v.Combat.IsPlayer
}

// DistanceKm returns the distance to another entity in world units, which
// are kilometres.
func (v *Vessel) DistanceKm(other Entity) float64 {
	if other == nil {
		return 0
	}
	return v.Motion.Position.Distance(other.Position())
}

// DistanceMm returns the distance to another entity in megametres.
func (v *Vessel) DistanceMm(other Entity) float64 {
	return v.DistanceKm(other) / 1000
}
