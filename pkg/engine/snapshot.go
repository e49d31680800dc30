// pkg/engine/snapshot.go
package engine

import (
	"github.com/opd-ai/go-spacerpg/pkg/physics"
)

// Snapshot is a read-only copy of the simulation taken between frames.
type Snapshot struct {
	Tick      uint64
	Time      float64
	Vessels   []VesselSnapshot
	Locations []LocationSnapshot
	Blips     int
}

// VesselSnapshot represents the state of a vessel in a snapshot
type VesselSnapshot struct {
	Tag         string
	Name        string
	Position    physics.Vector2D
	Speed       float64
	Heading     float64
	Destination string
	Trail       []physics.TrailSample
	OnRadar     bool
	IsPlayer    bool
	AIState     string // empty for vessels without AI
	DockedAt    string
}

// LocationSnapshot represents the state of a location in a snapshot
type LocationSnapshot struct {
	Tag      string
	Name     string
	Type     string
	Position physics.Vector2D
	Hidden   bool
	Parent   string
	Docked   []string
}

// Snapshot returns the current state of the simulation
func (s *Sim) Snapshot() Snapshot {
	s.EntityLock.RLock()
	defer s.EntityLock.RUnlock()

	snap := Snapshot{
		Tick:      s.tick,
		Time:      s.Clock.Now,
		Vessels:   make([]VesselSnapshot, 0, len(s.vessels)),
		Locations: make([]LocationSnapshot, 0, s.Arena.Len()),
		Blips:     len(s.blips),
	}

	for _, v := range s.vessels {
		vs := VesselSnapshot{
			Tag:         v.Tag,
			Name:        v.Name,
			Position:    v.Position(),
			Speed:       v.Speed(),
			Heading:     v.Heading(),
			Destination: v.Destination.String(),
			Trail:       v.TrailSamples(),
			OnRadar:     v.OnRadar(),
			IsPlayer:    v.IsPlayer(),
		}
		if c, ok := s.controllers[v]; ok {
			vs.AIState = c.State().String()
		}
		if idx, ok := s.Arena.DockedAt(v); ok {
			if loc := s.Arena.Get(idx); loc != nil {
				vs.DockedAt = loc.Tag
			}
		}
		snap.Vessels = append(snap.Vessels, vs)
	}

	for _, idx := range s.Arena.Indices() {
		loc := s.Arena.Get(idx)
		ls := LocationSnapshot{
			Tag:      loc.Tag,
			Name:     loc.Name,
			Type:     string(loc.Type),
			Position: loc.Coordinates,
			Hidden:   loc.Hidden,
			Parent:   loc.ParentTag,
		}
		for _, v := range s.Arena.Docked(idx) {
			ls.Docked = append(ls.Docked, v.Tag)
		}
		snap.Locations = append(snap.Locations, ls)
	}

	return snap
}
