// Package radar maps world coordinates onto a player-centred radar display.
//
// The display uses a fixed axis remap: world +X points up the screen and
// world +Y points right, so a world delta (dx, dy) becomes the screen
// offset (dy*scale, -dx*scale). Screen Y grows downward.
package radar

import (
	"math"

	"github.com/opd-ai/go-spacerpg/pkg/physics"
)

const (
	// MinScale is the smallest usable scale; it also floors zooming out.
	MinScale = 0.001

	// ZoomStep is the additive scale change of one zoom key press.
	ZoomStep = 0.005

	// DefaultScale maps world units to pixels.
	DefaultScale = 0.1

	// DefaultRadius is the visible radar radius in pixels.
	DefaultRadius = 450.0

	// DefaultHitRadius is the click tolerance around a blip in pixels.
	DefaultHitRadius = 6.0
)

// Projector converts between world space and radar space.
type Projector struct {
	Scale  float64 // pixels per world unit
	Radius float64 // pixels
}

// NewProjector creates a projector; a degenerate scale is floored to
// MinScale.
func NewProjector(scale, radius float64) Projector {
	p := Projector{Scale: scale, Radius: radius}
	p.Scale = p.scale()
	return p
}

// DefaultProjector returns the projector used when none is configured.
func DefaultProjector() Projector {
	return NewProjector(DefaultScale, DefaultRadius)
}

// Project returns the radar offset of point as seen from origin.
func (p Projector) Project(origin, point physics.Vector2D) physics.Vector2D {
	s := p.scale()
	d := point.Sub(origin)
	return physics.Vector2D{X: d.Y * s, Y: -d.X * s}
}

// Unproject is the exact inverse of Project: it returns the world point
// whose radar offset from origin is offset.
func (p Projector) Unproject(origin, offset physics.Vector2D) physics.Vector2D {
	s := p.scale()
	return physics.Vector2D{
		X: origin.X - offset.Y/s,
		Y: origin.Y + offset.X/s,
	}
}

// InRange reports whether a radar offset lies inside the display radius.
func (p Projector) InRange(offset physics.Vector2D) bool {
	return offset.Length() <= p.Radius
}

// WorldRange returns the world distance covered by the display radius.
func (p Projector) WorldRange() float64 {
	return p.Radius / p.scale()
}

// ZoomIn increases the scale by one step.
func (p *Projector) ZoomIn() {
	p.Zoom(ZoomStep)
}

// ZoomOut decreases the scale by one step, never below MinScale.
func (p *Projector) ZoomOut() {
	p.Zoom(-ZoomStep)
}

// Zoom adds delta to the scale, flooring at MinScale.
func (p *Projector) Zoom(delta float64) {
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return
	}
	p.Scale = math.Max(p.scale()+delta, MinScale)
}

func (p Projector) scale() float64 {
	if !(p.Scale >= MinScale) || math.IsInf(p.Scale, 0) {
		return MinScale
	}
	return p.Scale
}

// ScreenToRadar converts a screen pixel position into a radar offset
// relative to the radar centre.
func ScreenToRadar(center, screen physics.Vector2D) physics.Vector2D {
	return screen.Sub(center)
}

// RadarToScreen converts a radar offset into a screen pixel position.
func RadarToScreen(center, offset physics.Vector2D) physics.Vector2D {
	return center.Add(offset)
}
