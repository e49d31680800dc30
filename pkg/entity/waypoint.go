// pkg/entity/waypoint.go
package entity

import (
	"fmt"

	"github.com/opd-ai/go-spacerpg/pkg/physics"
)

// WaypointKind discriminates the Waypoint variants
type WaypointKind int

const (
	WaypointNone WaypointKind = iota
	WaypointCoord
	WaypointLocation
)

// String returns the kind's name
func (k WaypointKind) String() string {
	switch k {
	case WaypointNone:
		return "None"
	case WaypointCoord:
		return "Coord"
	case WaypointLocation:
		return "Location"
	default:
		return fmt.Sprintf("WaypointKind(%d)", int(k))
	}
}

// Waypoint is a vessel destination: nothing, a free coordinate, or a
// location in an Arena. The zero value is "no destination".
type Waypoint struct {
	kind     WaypointKind
	coords   physics.Vector2D
	location LocationIndex
}

// Coord returns a waypoint at a fixed coordinate
func Coord(p physics.Vector2D) Waypoint {
	return Waypoint{kind: WaypointCoord, coords: p, location: NoLocation}
}

// AtLocation returns a waypoint that follows a location, so relocating the
// location moves the destination with it.
func AtLocation(idx LocationIndex) Waypoint {
	return Waypoint{kind: WaypointLocation, location: idx}
}

// Kind returns the variant
func (w Waypoint) Kind() WaypointKind {
	return w.kind
}

// IsSet reports whether the waypoint names a destination
func (w Waypoint) IsSet() bool {
	return w.kind != WaypointNone
}

// Location returns the location index for location waypoints.
func (w Waypoint) Location() (LocationIndex, bool) {
	if w.kind != WaypointLocation {
		return NoLocation, false
	}
	return w.location, true
}

// Resolve returns the concrete coordinate of the waypoint. It reports false
// for no destination or an index the arena does not know.
func (w Waypoint) Resolve(arena *Arena) (physics.Vector2D, bool) {
	switch w.kind {
	case WaypointCoord:
		return w.coords, true
	case WaypointLocation:
		if arena == nil {
			return physics.Vector2D{}, false
		}
		loc := arena.Get(w.location)
		if loc == nil {
			return physics.Vector2D{}, false
		}
		return loc.Coordinates, true
	default:
		return physics.Vector2D{}, false
	}
}

func (w Waypoint) String() string {
	switch w.kind {
	case WaypointCoord:
		return fmt.Sprintf("coord(%.1f, %.1f)", w.coords.X, w.coords.Y)
	case WaypointLocation:
		return fmt.Sprintf("location(%d)", w.location)
	default:
		return "none"
	}
}
