// pkg/entity/definition.go
package entity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/opd-ai/go-spacerpg/pkg/physics"
	"github.com/opd-ai/go-spacerpg/pkg/validation"
)

// ErrInvalidDefinition is wrapped by every construction failure.
var ErrInvalidDefinition = errors.New("invalid definition")

// DefinitionError names the record and field that failed validation.
type DefinitionError struct {
	Kind   string // "location", "vessel", ...
	Tag    string
	Field  string
	Reason string
}

func (e *DefinitionError) Error() string {
	tag := e.Tag
	if tag == "" {
		tag = "<untagged>"
	}
	return fmt.Sprintf("invalid %s definition %s: %s: %s", e.Kind, tag, e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidDefinition.
func (e *DefinitionError) Unwrap() error {
	return ErrInvalidDefinition
}

// InfoDef is the descriptive block of a definition record.
type InfoDef struct {
	Tag          string `json:"tag" mapstructure:"tag"`
	Name         string `json:"name" mapstructure:"name"`
	LocationType string `json:"location_type" mapstructure:"location_type"`
	ShipType     string `json:"ship_type,omitempty" mapstructure:"ship_type"`
	StationType  string `json:"station_type,omitempty" mapstructure:"station_type"`
	Description  string `json:"description" mapstructure:"description"`
}

// PlacementDef positions a record in the world.
type PlacementDef struct {
	Coordinates []float64 `json:"coordinates" mapstructure:"coordinates"`
	ParentTag   string    `json:"location_parent_tag,omitempty" mapstructure:"location_parent_tag"`
}

// FlagsDef holds boolean switches.
type FlagsDef struct {
	Hidden bool `json:"is_hidden" mapstructure:"is_hidden"`
}

// FunctionsDef describes what a station offers.
type FunctionsDef struct {
	Services []string `json:"services" mapstructure:"services"`
	Faction  string   `json:"faction,omitempty" mapstructure:"faction"`
	MinLevel int      `json:"min_level,omitempty" mapstructure:"min_level"`
}

// MotionDef holds kinematic limits and the initial motion state.
type MotionDef struct {
	MaxSpeed     float64 `json:"max_speed" mapstructure:"max_speed"`
	Acceleration float64 `json:"acceleration" mapstructure:"acceleration"`
	Deceleration float64 `json:"deceleration" mapstructure:"deceleration"`
	Speed        float64 `json:"speed,omitempty" mapstructure:"speed"`
	Heading      float64 `json:"heading,omitempty" mapstructure:"heading"`
}

// LocationDef is the record a Location is built from.
type LocationDef struct {
	Info      InfoDef      `json:"info" mapstructure:"info"`
	Location  PlacementDef `json:"location" mapstructure:"location"`
	Flags     FlagsDef     `json:"flags" mapstructure:"flags"`
	Functions FunctionsDef `json:"functions" mapstructure:"functions"`
}

// VesselDef is the record a Vessel or ship is built from.
type VesselDef struct {
	Info      InfoDef      `json:"info" mapstructure:"info"`
	Location  PlacementDef `json:"location" mapstructure:"location"`
	Flags     FlagsDef     `json:"flags" mapstructure:"flags"`
	Motion    MotionDef    `json:"motion" mapstructure:"motion"`
	Engine    Attributes   `json:"engine,omitempty" mapstructure:"engine"`
	Fuel      Attributes   `json:"fuel,omitempty" mapstructure:"fuel"`
	Hull      Attributes   `json:"hull,omitempty" mapstructure:"hull"`
	Weapons   Attributes   `json:"weapons,omitempty" mapstructure:"weapons"`
	Sensors   Attributes   `json:"sensors,omitempty" mapstructure:"sensors"`
	Signature Attributes   `json:"signature,omitempty" mapstructure:"signature"`
}

// NewLocation validates def and builds a Location. Records typed "station"
// get a StationCapability.
func NewLocation(def LocationDef) (*Location, error) {
	tag, name, coords, err := validateCommon("location", def.Info, def.Location)
	if err != nil {
		return nil, err
	}

	loc := &Location{
		BaseEntity:  newBaseEntity(tag, name, def.Info.Description),
		Coordinates: coords,
		Type:        LocationType(strings.ToLower(def.Info.LocationType)),
		ParentTag:   def.Location.ParentTag,
		Hidden:      def.Flags.Hidden,
	}
	if loc.Type == LocationStation {
		st := NewStationCapability(def.Info.StationType, def.Functions.Services...)
		st.Faction = def.Functions.Faction
		st.MinLevel = def.Functions.MinLevel
		loc.Station = st
	}
	return loc, nil
}

// VesselOption customises vessel construction
type VesselOption func(*Vessel)

// WithTrailPolicy sets the trail policy used by the vessel
func WithTrailPolicy(p physics.TrailPolicy) VesselOption {
	return func(v *Vessel) {
		v.Trail = physics.NewTrail(p)
	}
}

// NewVessel validates def and builds a plain vessel.
func NewVessel(def VesselDef, opts ...VesselOption) (*Vessel, error) {
	tag, name, coords, err := validateCommon("vessel", def.Info, def.Location)
	if err != nil {
		return nil, err
	}

	limits := []struct {
		field string
		value float64
	}{
		{"motion.max_speed", def.Motion.MaxSpeed},
		{"motion.acceleration", def.Motion.Acceleration},
		{"motion.deceleration", def.Motion.Deceleration},
	}
	for _, l := range limits {
		if err := validation.ValidatePositive(l.field, l.value); err != nil {
			return nil, &DefinitionError{Kind: "vessel", Tag: tag, Field: l.field, Reason: err.Error()}
		}
	}
	if err := validation.ValidateNonNegative("motion.speed", def.Motion.Speed); err != nil {
		return nil, &DefinitionError{Kind: "vessel", Tag: tag, Field: "motion.speed", Reason: err.Error()}
	}

	v := &Vessel{
		BaseEntity: newBaseEntity(tag, name, def.Info.Description),
		VesselType: def.Info.LocationType,
		Motion: physics.MovementState{
			Position:     coords,
			Heading:      def.Motion.Heading,
			Speed:        min(def.Motion.Speed, def.Motion.MaxSpeed),
			MaxSpeed:     def.Motion.MaxSpeed,
			Acceleration: def.Motion.Acceleration,
			Deceleration: def.Motion.Deceleration,
		},
		Trail:        physics.NewTrail(physics.DefaultTrailPolicy()),
		RadarVisible: !def.Flags.Hidden,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// NewShip builds a vessel with a CombatCapability.
func NewShip(def VesselDef, opts ...VesselOption) (*Vessel, error) {
	v, err := NewVessel(def, opts...)
	if err != nil {
		return nil, err
	}
	v.Combat = &CombatCapability{
		ShipType:  def.Info.ShipType,
		Engine:    def.Engine.Clone(),
		FuelCell:  def.Fuel.Clone(),
		Hull:      def.Hull.Clone(),
		Weapons:   def.Weapons.Clone(),
		Sensors:   def.Sensors.Clone(),
		Signature: def.Signature.Clone(),
	}
	return v, nil
}

// NewPlayer builds the player's ship.
func NewPlayer(def VesselDef, opts ...VesselOption) (*Vessel, error) {
	v, err := NewShip(def, opts...)
	if err != nil {
		return nil, err
	}
	v.Combat.IsPlayer = true
	return v, nil
}

func validateCommon(kind string, info InfoDef, place PlacementDef) (string, string, physics.Vector2D, error) {
	if err := validation.ValidateTag(info.Tag); err != nil {
		return "", "", physics.Vector2D{}, &DefinitionError{Kind: kind, Tag: info.Tag, Field: "info.tag", Reason: err.Error()}
	}
	name, err := validation.ValidateName(info.Name)
	if err != nil {
		return "", "", physics.Vector2D{}, &DefinitionError{Kind: kind, Tag: info.Tag, Field: "info.name", Reason: err.Error()}
	}
	if err := validation.ValidateCoordinates(place.Coordinates); err != nil {
		return "", "", physics.Vector2D{}, &DefinitionError{Kind: kind, Tag: info.Tag, Field: "location.coordinates", Reason: err.Error()}
	}
	coords := physics.Vector2D{X: place.Coordinates[0], Y: place.Coordinates[1]}
	return info.Tag, name, coords, nil
}
