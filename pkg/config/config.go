// pkg/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/opd-ai/go-spacerpg/pkg/ai"
	"github.com/opd-ai/go-spacerpg/pkg/entity"
	"github.com/opd-ai/go-spacerpg/pkg/physics"
	"github.com/opd-ai/go-spacerpg/pkg/radar"
)

// EnvPrefix prefixes environment overrides, e.g. SPACERPG_RADAR_SCALE.
const EnvPrefix = "SPACERPG"

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// SimConfig contains configuration for a simulation run
type SimConfig struct {
	Seed        uint64  `json:"seed" mapstructure:"seed"`
	TickRate    int     `json:"tick_rate" mapstructure:"tick_rate"`
	TimeScale   float64 `json:"time_scale" mapstructure:"time_scale"`
	Workers     int     `json:"workers" mapstructure:"workers"`
	LogLevel    string  `json:"log_level" mapstructure:"log_level"`
	SeedSamples bool    `json:"seed_samples" mapstructure:"seed_samples"`

	Radar RadarConfig         `json:"radar" mapstructure:"radar"`
	AI    ai.Timing           `json:"ai" mapstructure:"ai"`
	Trail physics.TrailPolicy `json:"trail" mapstructure:"trail"`

	Locations []entity.LocationDef `json:"locations" mapstructure:"locations"`
	Vessels   []entity.VesselDef   `json:"vessels" mapstructure:"vessels"`
	AIVessels []entity.VesselDef   `json:"ai_vessels" mapstructure:"ai_vessels"`
	Player    entity.VesselDef     `json:"player" mapstructure:"player"`
}

// RadarConfig contains radar display configuration
type RadarConfig struct {
	Scale     float64 `json:"scale" mapstructure:"scale"`
	Radius    float64 `json:"radius" mapstructure:"radius"`
	HitRadius float64 `json:"hit_radius" mapstructure:"hit_radius"`
}

// Projector builds the radar projector described by the config
func (r RadarConfig) Projector() radar.Projector {
	return radar.NewProjector(r.Scale, r.Radius)
}

// LoadConfig loads a configuration from a JSON file. Values missing from the
// file come from DefaultConfig, and SPACERPG_* environment variables
// override scalar settings. An empty path loads defaults plus environment.
func LoadConfig(path string) (*SimConfig, error) {
	defaults := DefaultConfig()

	v := viper.New()
	setDefaults(v, defaults)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg SimConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// List sections have no viper defaults; an absent section keeps the
	// sample world, an explicitly empty one stays empty.
	if !v.IsSet("locations") {
		cfg.Locations = defaults.Locations
	}
	if !v.IsSet("vessels") {
		cfg.Vessels = defaults.Vessels
	}
	if !v.IsSet("ai_vessels") {
		cfg.AIVessels = defaults.AIVessels
	}
	if !v.IsSet("player") {
		cfg.Player = defaults.Player
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *SimConfig) {
	v.SetDefault("seed", d.Seed)
	v.SetDefault("tick_rate", d.TickRate)
	v.SetDefault("time_scale", d.TimeScale)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("seed_samples", d.SeedSamples)

	v.SetDefault("radar.scale", d.Radar.Scale)
	v.SetDefault("radar.radius", d.Radar.Radius)
	v.SetDefault("radar.hit_radius", d.Radar.HitRadius)

	v.SetDefault("ai.idle_time", d.AI.Idle)
	v.SetDefault("ai.min_dwell_time", d.AI.MinDwell)
	v.SetDefault("ai.max_dwell_time", d.AI.MaxDwell)
	v.SetDefault("ai.dock_radius", d.AI.DockRadius)

	v.SetDefault("trail.spacing", d.Trail.Spacing)
	v.SetDefault("trail.lifetime", d.Trail.Lifetime)
	v.SetDefault("trail.speed_threshold", d.Trail.SpeedThreshold)
	v.SetDefault("trail.max_length", d.Trail.MaxLength)
}

// SaveConfig saves a configuration to a file
func SaveConfig(config *SimConfig, path string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the scalar settings. Definition records are checked
// individually when the world is built.
func (c *SimConfig) Validate() error {
	var problems []string
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Sprintf(format, args...))
		}
	}
	finite := func(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

	check(c.TickRate > 0, "tick_rate must be positive, got %d", c.TickRate)
	check(finite(c.TimeScale) && c.TimeScale >= 0, "time_scale must be a non-negative number, got %v", c.TimeScale)
	check(c.Workers >= 0, "workers must not be negative, got %d", c.Workers)
	check(finite(c.Radar.Scale) && c.Radar.Scale >= radar.MinScale, "radar.scale must be at least %v, got %v", radar.MinScale, c.Radar.Scale)
	check(finite(c.Radar.Radius) && c.Radar.Radius > 0, "radar.radius must be positive, got %v", c.Radar.Radius)
	check(finite(c.Radar.HitRadius) && c.Radar.HitRadius > 0, "radar.hit_radius must be positive, got %v", c.Radar.HitRadius)
	check(finite(c.Trail.Spacing) && c.Trail.Spacing >= 0, "trail.spacing must not be negative, got %v", c.Trail.Spacing)
	check(finite(c.Trail.Lifetime) && c.Trail.Lifetime > 0, "trail.lifetime must be positive, got %v", c.Trail.Lifetime)
	check(c.Trail.MaxLength >= 0, "trail.max_length must not be negative, got %d", c.Trail.MaxLength)
	if err := c.AI.Validate(); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// DefaultConfig returns a default configuration with a small sample world
func DefaultConfig() *SimConfig {
	return &SimConfig{
		Seed:        1,
		TickRate:    60,
		TimeScale:   1,
		Workers:     4,
		LogLevel:    "info",
		SeedSamples: true,
		Radar: RadarConfig{
			Scale:     radar.DefaultScale,
			Radius:    radar.DefaultRadius,
			HitRadius: radar.DefaultHitRadius,
		},
		AI:    ai.DefaultTiming(),
		Trail: physics.DefaultTrailPolicy(),
		Locations: []entity.LocationDef{
			station("kepler_station", "Kepler Station", "trade", 800, 300, "refuel", "repair", "market"),
			station("haven_outpost", "Haven Outpost", "military", -1500, 900, "refuel", "armory"),
			station("vega_yard", "Vega Yard", "shipyard", 2200, 2600, "repair", "shipyard"),
			{
				Info:     entity.InfoDef{Tag: "ceres_belt", Name: "Ceres Belt", LocationType: "asteroid", Description: "Dense asteroid field"},
				Location: entity.PlacementDef{Coordinates: []float64{2500, -1200}},
			},
			{
				Info:     entity.InfoDef{Tag: "ceres_rock_01", Name: "Ceres Rock 01", LocationType: "asteroid", Description: "Mineable rock"},
				Location: entity.PlacementDef{Coordinates: []float64{2560, -1150}, ParentTag: "ceres_belt"},
			},
			{
				Info:     entity.InfoDef{Tag: "relay_beacon", Name: "Relay Beacon", LocationType: "beacon", Description: "Derelict navigation relay"},
				Location: entity.PlacementDef{Coordinates: []float64{-600, -2200}},
				Flags:    entity.FlagsDef{Hidden: true},
			},
		},
		AIVessels: []entity.VesselDef{
			npc("hauler_01", "Hauler 01", "cargo", -200, 400),
			npc("hauler_02", "Hauler 02", "cargo", 1500, -300),
			npc("courier_01", "Courier 01", "courier", 300, -900),
		},
		Player: PlayerTemplate(),
	}
}

// PlayerTemplate returns the debug ship used for the player and for sample
// ships.
func PlayerTemplate() entity.VesselDef {
	return entity.VesselDef{
		Info: entity.InfoDef{
			Tag:          "player_ship",
			Name:         "Player Ship",
			LocationType: "ship",
			ShipType:     "frigate",
			Description:  "Player controlled frigate",
		},
		Location: entity.PlacementDef{Coordinates: []float64{0, 0}},
		Motion:   entity.MotionDef{MaxSpeed: 120, Acceleration: 40, Deceleration: 40},
		Engine:   entity.Attributes{"thrust": 40.0},
		Fuel:     entity.Attributes{"capacity": 1000.0},
		Hull:     entity.Attributes{"integrity": 100.0},
		Weapons:  entity.Attributes{"railgun": map[string]any{"range_Mm": 3.0}},
		Sensors: entity.Attributes{
			"ir_sensor":    map[string]any{"range_Mm": 4.0, "accuracy": 0.8},
			"lidar_sensor": map[string]any{"range_Mm": 2.0, "accuracy": 0.9},
			"radar_sensor": map[string]any{"range_Mm": 8.0, "accuracy": 0.6},
		},
		Signature: entity.Attributes{"ir": 1.0, "radar": 1.0},
	}
}

// SamplePositions are where sample ships are placed.
var SamplePositions = [][2]float64{{1200.0, 450.5}, {3400.0, 1700.5}, {500.5, 1200.2}}

// SampleShips clones template into one ship per sample position, tagged
// sample_ship_N. Equipment blocks are deep-copied per clone.
func SampleShips(template entity.VesselDef) []entity.VesselDef {
	out := make([]entity.VesselDef, 0, len(SamplePositions))
	for i, pos := range SamplePositions {
		clone := template
		clone.Engine = template.Engine.Clone()
		clone.Fuel = template.Fuel.Clone()
		clone.Hull = template.Hull.Clone()
		clone.Weapons = template.Weapons.Clone()
		clone.Sensors = template.Sensors.Clone()
		clone.Signature = template.Signature.Clone()
		clone.Info.Tag = fmt.Sprintf("sample_ship_%d", i)
		clone.Info.Name = fmt.Sprintf("Sample Ship %d", i)
		clone.Location = entity.PlacementDef{Coordinates: []float64{pos[0], pos[1]}}
		out = append(out, clone)
	}
	return out
}

func station(tag, name, kind string, x, y float64, services ...string) entity.LocationDef {
	return entity.LocationDef{
		Info:      entity.InfoDef{Tag: tag, Name: name, LocationType: "station", StationType: kind},
		Location:  entity.PlacementDef{Coordinates: []float64{x, y}},
		Functions: entity.FunctionsDef{Services: services},
	}
}

func npc(tag, name, kind string, x, y float64) entity.VesselDef {
	return entity.VesselDef{
		Info:     entity.InfoDef{Tag: tag, Name: name, LocationType: kind, ShipType: kind},
		Location: entity.PlacementDef{Coordinates: []float64{x, y}},
		Motion:   entity.MotionDef{MaxSpeed: 80, Acceleration: 20, Deceleration: 20},
	}
}
