// pkg/entity/location.go
package entity

import (
	"sort"

	"github.com/opd-ai/go-spacerpg/pkg/physics"
)

// LocationType is the free-form kind of a location ("station", "asteroid", ...)
type LocationType string

// Known location types
const (
	LocationStation  LocationType = "station"
	LocationAsteroid LocationType = "asteroid"
	LocationPlanet   LocationType = "planet"
	LocationBeacon   LocationType = "beacon"
)

// LocationIndex addresses a location inside an Arena.
type LocationIndex int

// NoLocation is the zero-value sentinel for "no location".
const NoLocation LocationIndex = -1

// Location is a fixed point of interest. Coordinates are always defined;
// Hidden only affects presentation and selection.
type Location struct {
	BaseEntity
	Coordinates physics.Vector2D
	Type        LocationType
	ParentTag   string
	Children    []LocationIndex
	Hidden      bool

	// Station is non-nil for locations offering station services.
	Station *StationCapability
}

// StationCapability holds the station-specific data of a Location.
type StationCapability struct {
	StationType string
	Services    map[string]struct{}
	Faction     string
	MinLevel    int
}

// NewStationCapability creates a station capability offering services
func NewStationCapability(stationType string, services ...string) *StationCapability {
	sc := &StationCapability{
		StationType: stationType,
		Services:    make(map[string]struct{}, len(services)),
	}
	for _, s := range services {
		sc.Services[s] = struct{}{}
	}
	return sc
}

// Offers reports whether the station provides service
func (sc *StationCapability) Offers(service string) bool {
	_, ok := sc.Services[service]
	return ok
}

// ServiceList returns the services in sorted order
func (sc *StationCapability) ServiceList() []string {
	out := make([]string, 0, len(sc.Services))
	for s := range sc.Services {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Position returns the location's coordinates
func (l *Location) Position() physics.Vector2D {
	return l.Coordinates
}

// OnRadar reports whether the location is shown to the player
func (l *Location) OnRadar() bool {
	return !l.Hidden
}

// IsStation reports whether the location carries station data
func (l *Location) IsStation() bool {
	return l.Station != nil
}

// Relocate moves the location
func (l *Location) Relocate(coords physics.Vector2D) {
	l.Coordinates = coords
}

// Hide hides the location from the player
func (l *Location) Hide() {
	l.Hidden = true
}

// Unhide shows the location to the player
func (l *Location) Unhide() {
	l.Hidden = false
}

func (l *Location) addChild(idx LocationIndex) {
	for _, c := range l.Children {
		if c == idx {
			return
		}
	}
	l.Children = append(l.Children, idx)
}
