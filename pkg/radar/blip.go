package radar

import (
	"github.com/opd-ai/go-spacerpg/pkg/entity"
	"github.com/opd-ai/go-spacerpg/pkg/physics"
)

// Blip pairs an entity with its radar offset for one sweep.
type Blip struct {
	Target   entity.Entity
	Offset   physics.Vector2D
	Distance float64 // pixels from the radar centre
	Visible  bool
}

// Blips projects every candidate relative to origin and returns those within
// the radar radius, in candidate order. Hidden entities are returned too,
// with Visible=false, so callers decide how to present them.
func (p Projector) Blips(origin physics.Vector2D, candidates []entity.Entity) []Blip {
	blips := make([]Blip, 0, len(candidates))
	for _, c := range candidates {
		if b, ok := p.blip(origin, c); ok {
			blips = append(blips, b)
		}
	}
	return blips
}

func (p Projector) blip(origin physics.Vector2D, c entity.Entity) (Blip, bool) {
	if c == nil {
		return Blip{}, false
	}
	offset := p.Project(origin, c.Position())
	dist := offset.Length()
	if dist > p.Radius {
		return Blip{}, false
	}
	return Blip{Target: c, Offset: offset, Distance: dist, Visible: c.OnRadar()}, true
}

// HitTest returns the first visible blip within radius pixels of the radar
// offset. A non-positive radius uses DefaultHitRadius.
func HitTest(blips []Blip, offset physics.Vector2D, radius float64) (Blip, bool) {
	if !(radius > 0) {
		radius = DefaultHitRadius
	}
	r2 := radius * radius
	for _, b := range blips {
		if !b.Visible {
			continue
		}
		if b.Offset.Sub(offset).LengthSquared() <= r2 {
			return b, true
		}
	}
	return Blip{}, false
}

// VisibleOnly filters blips down to those flagged visible.
func VisibleOnly(blips []Blip) []Blip {
	out := make([]Blip, 0, len(blips))
	for _, b := range blips {
		if b.Visible {
			out = append(out, b)
		}
	}
	return out
}
