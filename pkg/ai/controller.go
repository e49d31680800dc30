// Package ai drives NPC vessels with a small state machine: wait, fly to a
// random location, dock there for a while, leave, repeat.
package ai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/opd-ai/go-spacerpg/pkg/entity"
	"github.com/opd-ai/go-spacerpg/pkg/event"
	"github.com/opd-ai/go-spacerpg/pkg/logging"
)

// State is the controller's behavioural state
type State int

const (
	Idle State = iota
	Traveling
	Docked
)

// String returns the state name
func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Traveling:
		return "Traveling"
	case Docked:
		return "Docked"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrInvalidTiming is returned for unusable timing knobs.
var ErrInvalidTiming = errors.New("invalid ai timing")

// Timing holds the controller's tunable knobs, in simulation seconds and
// world units.
type Timing struct {
	Idle       float64 `json:"idle_time" mapstructure:"idle_time"`
	MinDwell   float64 `json:"min_dwell_time" mapstructure:"min_dwell_time"`
	MaxDwell   float64 `json:"max_dwell_time" mapstructure:"max_dwell_time"`
	DockRadius float64 `json:"dock_radius" mapstructure:"dock_radius"`
}

// DefaultTiming returns the stock knobs: 2 s idle, 5-15 s dwell, dock
// within 25 units.
func DefaultTiming() Timing {
	return Timing{
		Idle:       2,
		MinDwell:   5,
		MaxDwell:   15,
		DockRadius: 25,
	}
}

// Validate rejects negative or non-finite values and MinDwell > MaxDwell.
func (t Timing) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"idle_time", t.Idle},
		{"min_dwell_time", t.MinDwell},
		{"max_dwell_time", t.MaxDwell},
		{"dock_radius", t.DockRadius},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number, got %v", ErrInvalidTiming, f.name, f.value)
		}
	}
	if t.MinDwell > t.MaxDwell {
		return fmt.Errorf("%w: min_dwell_time %v exceeds max_dwell_time %v", ErrInvalidTiming, t.MinDwell, t.MaxDwell)
	}
	return nil
}

// Option configures a Controller
type Option func(*Controller)

// WithEventBus publishes transitions on bus
func WithEventBus(bus *event.Bus) Option {
	return func(c *Controller) {
		c.bus = bus
	}
}

// WithLogger sets the controller's logger
func WithLogger(logger *logging.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithStartTime sets the simulation time the initial Idle state began.
func WithStartTime(now float64) Option {
	return func(c *Controller) {
		c.lastChange = now
	}
}

// Controller is the AI capability attached to one vessel.
type Controller struct {
	vessel     *entity.Vessel
	arena      *entity.Arena
	candidates []entity.LocationIndex
	timing     Timing
	rng        *rand.Rand
	bus        *event.Bus
	logger     *logging.Logger

	state      State
	dockUntil  float64
	lastChange float64
	site       entity.LocationIndex
}

// NewController attaches an AI to vessel. candidates is the shared,
// read-only list of locations the AI may visit; it may be empty, in which
// case the AI idles forever.
func NewController(vessel *entity.Vessel, arena *entity.Arena, candidates []entity.LocationIndex, timing Timing, rng *rand.Rand, opts ...Option) (*Controller, error) {
	if vessel == nil {
		return nil, fmt.Errorf("ai controller: nil vessel")
	}
	if arena == nil {
		return nil, fmt.Errorf("ai controller %s: nil arena", vessel.Tag)
	}
	if rng == nil {
		return nil, fmt.Errorf("ai controller %s: nil random source", vessel.Tag)
	}
	if err := timing.Validate(); err != nil {
		return nil, logging.WrapError(err, "ai controller %s", vessel.Tag)
	}

	c := &Controller{
		vessel:     vessel,
		arena:      arena,
		candidates: candidates,
		timing:     timing,
		rng:        rng,
		logger:     logging.Discard(),
		state:      Idle,
		site:       entity.NoLocation,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("vessel", vessel.Tag)
	return c, nil
}

// Tick evaluates the state machine at simulation time now and reports
// whether a transition happened.
func (c *Controller) Tick(now float64) bool {
	switch c.state {
	case Idle:
		if now-c.lastChange > c.timing.Idle {
			return c.chooseDestination(now)
		}
	case Traveling:
		return c.travel(now)
	case Docked:
		if now > c.dockUntil {
			return c.leaveLocation(now)
		}
	}
	return false
}

func (c *Controller) chooseDestination(now float64) bool {
	// A destination set by someone else keeps the AI waiting.
	if c.vessel.HasDestination() || len(c.candidates) == 0 {
		return false
	}

	c.site = c.candidates[c.rng.IntN(len(c.candidates))]
	c.vessel.SetDestination(entity.AtLocation(c.site))

	if loc := c.arena.Get(c.site); loc != nil {
		c.bus.Publish(event.NewVesselEvent(event.DestinationSet, c, c.vessel.Tag, loc.Tag, loc.Coordinates))
	}
	c.transition(Traveling, now)
	return true
}

// travel docks once the vessel is within reach of its site. The trip is
// abandoned when someone else points the vessel at open space, or clears
// its destination and it comes to rest short of the site.
func (c *Controller) travel(now float64) bool {
	if c.vessel.HasDestination() {
		idx, ok := c.vessel.Destination.Location()
		if !ok {
			c.logger.Debug(context.Background(), "destination overridden, abandoning trip",
				"destination", c.vessel.Destination.String(),
			)
			c.transition(Idle, now)
			return true
		}
		c.site = idx
	}

	if c.distanceToSite() < c.timing.DockRadius {
		return c.enterLocation(now)
	}
	if !c.vessel.HasDestination() && c.vessel.Speed() == 0 {
		c.logger.Debug(context.Background(), "stopped short of site, abandoning trip", "site", int(c.site))
		c.transition(Idle, now)
		return true
	}
	return false
}

func (c *Controller) distanceToSite() float64 {
	loc := c.arena.Get(c.site)
	if loc == nil {
		return math.Inf(1)
	}
	return c.vessel.Position().Distance(loc.Coordinates)
}

func (c *Controller) enterLocation(now float64) bool {
	loc := c.arena.Get(c.site)
	if loc == nil {
		c.logger.Warn(context.Background(), "docking site vanished, returning to idle", "site", int(c.site))
		c.vessel.ClearDestination()
		c.transition(Idle, now)
		return true
	}

	if !c.arena.Dock(c.site, c.vessel) {
		c.arena.Undock(c.vessel)
		c.arena.Dock(c.site, c.vessel)
	}
	c.vessel.Hide()
	c.dockUntil = now + c.dwell()

	c.bus.Publish(event.NewVesselEvent(event.VesselDocked, c, c.vessel.Tag, loc.Tag, loc.Coordinates))
	c.transition(Docked, now)
	return true
}

func (c *Controller) leaveLocation(now float64) bool {
	idx, wasDocked := c.arena.Undock(c.vessel)
	c.vessel.Reveal()
	c.vessel.ClearDestination()

	if wasDocked {
		if loc := c.arena.Get(idx); loc != nil {
			c.bus.Publish(event.NewVesselEvent(event.VesselUndocked, c, c.vessel.Tag, loc.Tag, loc.Coordinates))
		}
	}
	c.transition(Idle, now)
	return true
}

func (c *Controller) dwell() float64 {
	span := c.timing.MaxDwell - c.timing.MinDwell
	if span <= 0 {
		return c.timing.MinDwell
	}
	return c.timing.MinDwell + c.rng.Float64()*span
}

func (c *Controller) transition(to State, now float64) {
	from := c.state
	c.state = to
	c.lastChange = now

	c.logger.Debug(context.Background(), "ai state changed",
		"from", from.String(),
		"to", to.String(),
		"sim_time", now,
	)
	c.bus.Publish(event.NewStateEvent(c, c.vessel.Tag, from.String(), to.String(), now))
}

// State returns the current state
func (c *Controller) State() State {
	return c.state
}

// Vessel returns the controlled vessel
func (c *Controller) Vessel() *entity.Vessel {
	return c.vessel
}

// DockUntil returns the simulation time the current dwell ends
func (c *Controller) DockUntil() float64 {
	return c.dockUntil
}

// LastStateChange returns the simulation time of the latest transition
func (c *Controller) LastStateChange() float64 {
	return c.lastChange
}

// Site returns the location chosen on the latest trip.
func (c *Controller) Site() (entity.LocationIndex, bool) {
	return c.site, c.site != entity.NoLocation
}

// DebugInfo returns a loggable summary of the controller.
func (c *Controller) DebugInfo() map[string]any {
	var target any
	if loc := c.arena.Get(c.site); loc != nil {
		target = loc.Name
	}
	pos := c.vessel.Position()
	return map[string]any{
		"state":       c.state.String(),
		"target":      target,
		"coords":      [2]float64{math.Round(pos.X*10) / 10, math.Round(pos.Y*10) / 10},
		"destination": c.vessel.Destination.String(),
	}
}
