// Package selection turns radar clicks and key presses into selections,
// target locks and confirmed autopilot destinations.
//
// A destination is never applied directly: it is staged as pending first
// and only handed to the player's autopilot on Confirm.
package selection

import (
	"github.com/opd-ai/go-spacerpg/pkg/entity"
	"github.com/opd-ai/go-spacerpg/pkg/event"
	"github.com/opd-ai/go-spacerpg/pkg/physics"
	"github.com/opd-ai/go-spacerpg/pkg/radar"
)

// Pending is a staged destination awaiting confirmation. ScreenPos is the
// radar-space offset the user clicked, when the stage came from a click.
type Pending struct {
	Active    bool
	Coords    *physics.Vector2D
	ScreenPos *physics.Vector2D
}

// Option configures a Protocol
type Option func(*Protocol)

// WithEventBus publishes lock and destination events on bus
func WithEventBus(bus *event.Bus) Option {
	return func(p *Protocol) {
		p.bus = bus
	}
}

// WithHitRadius sets the click tolerance in pixels
func WithHitRadius(px float64) Option {
	return func(p *Protocol) {
		if px > 0 {
			p.hitRadius = px
		}
	}
}

// Protocol holds the user's selection state for one player vessel. It is
// not safe for concurrent use; drive it from the simulation goroutine.
type Protocol struct {
	player    *entity.Vessel
	projector *radar.Projector
	bus       *event.Bus
	hitRadius float64

	selected entity.Entity
	locked   *entity.Vessel
	pending  Pending
}

// NewProtocol binds a protocol to the player and the projector used for
// radar clicks. The projector is shared so zooming is picked up.
func NewProtocol(player *entity.Vessel, projector *radar.Projector, opts ...Option) *Protocol {
	p := &Protocol{
		player:    player,
		projector: projector,
		hitRadius: radar.DefaultHitRadius,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Stage records coords as the pending destination, replacing any earlier
// one.
func (p *Protocol) Stage(coords physics.Vector2D) bool {
	p.stage(coords, nil)
	return true
}

// StageEntity selects target and stages its current coordinates.
func (p *Protocol) StageEntity(target entity.Entity) bool {
	if target == nil {
		return false
	}
	p.selected = target
	p.stage(target.Position(), nil)
	return true
}

// StageScreen stages the world point under a radar-space offset.
func (p *Protocol) StageScreen(offset physics.Vector2D) bool {
	p.stage(p.unproject(offset), &offset)
	return true
}

// Click handles a primary click at a radar-space offset. A visible blip
// within the hit radius is selected and its coordinates staged; otherwise
// the clicked point itself is staged and no entity is returned.
func (p *Protocol) Click(offset physics.Vector2D, blips []radar.Blip) (entity.Entity, bool) {
	if b, ok := radar.HitTest(blips, offset, p.hitRadius); ok {
		p.selected = b.Target
		anchor := b.Offset
		p.stage(b.Target.Position(), &anchor)
		return b.Target, true
	}
	p.StageScreen(offset)
	return nil, false
}

// Confirm hands the pending destination to the player's autopilot. It
// reports false when nothing is staged.
func (p *Protocol) Confirm() bool {
	if !p.pending.Active || p.pending.Coords == nil || p.player == nil {
		return false
	}
	coords := *p.pending.Coords
	p.player.SetDestination(entity.Coord(coords))
	p.pending.Active = false

	p.bus.Publish(event.NewVesselEvent(event.DestinationSet, p, p.player.Tag, "", coords))
	return true
}

// Cancel clears the pending record. It is idempotent.
func (p *Protocol) Cancel() bool {
	p.pending = Pending{}
	return true
}

// SecondaryClick is the right-click action: cancel the pending destination.
func (p *Protocol) SecondaryClick() bool {
	return p.Cancel()
}

// ToggleLock locks the current selection when nothing is locked and the
// selection is a vessel; with a lock in place it releases it. Staging is
// left untouched.
func (p *Protocol) ToggleLock() bool {
	if p.locked != nil {
		p.release()
		return true
	}

	v, ok := p.selected.(*entity.Vessel)
	if !ok || v == nil {
		return false
	}
	p.locked = v
	if p.player != nil && p.player.Combat != nil {
		p.player.Combat.SetTarget(v, p.player.Position())
	}
	p.bus.Publish(event.NewTargetEvent(event.TargetLocked, p, p.playerTag(), v.Tag))
	return true
}

// TravelToSelected stages the selected entity's current coordinates.
func (p *Protocol) TravelToSelected() bool {
	if p.selected == nil {
		return false
	}
	p.stage(p.selected.Position(), nil)
	return true
}

// Select sets the selection without staging
func (p *Protocol) Select(e entity.Entity) {
	p.selected = e
}

// ClearSelection drops the selection; an existing lock is kept.
func (p *Protocol) ClearSelection() {
	p.selected = nil
}

// Selected returns the selected entity, or nil
func (p *Protocol) Selected() entity.Entity {
	return p.selected
}

// Locked returns the locked vessel, or nil
func (p *Protocol) Locked() *entity.Vessel {
	return p.locked
}

// Pending returns a copy of the pending record.
func (p *Protocol) Pending() Pending {
	out := Pending{Active: p.pending.Active}
	if p.pending.Coords != nil {
		c := *p.pending.Coords
		out.Coords = &c
	}
	if p.pending.ScreenPos != nil {
		s := *p.pending.ScreenPos
		out.ScreenPos = &s
	}
	return out
}

// Refresh updates the player's cached target distance and drops a lock on
// a destroyed vessel.
func (p *Protocol) Refresh() {
	if p.locked == nil {
		return
	}
	if p.locked.Destroyed {
		p.release()
		return
	}
	if p.player != nil && p.player.Combat != nil {
		p.player.Combat.UpdateTargetDistance(p.player.Position())
	}
}

func (p *Protocol) release() {
	tag := p.locked.Tag
	p.locked = nil
	if p.player != nil && p.player.Combat != nil {
		p.player.Combat.ReleaseTarget()
	}
	p.bus.Publish(event.NewTargetEvent(event.TargetReleased, p, p.playerTag(), tag))
}

func (p *Protocol) stage(coords physics.Vector2D, screen *physics.Vector2D) {
	p.pending = Pending{Active: true, Coords: &coords, ScreenPos: screen}
}

func (p *Protocol) unproject(offset physics.Vector2D) physics.Vector2D {
	var origin physics.Vector2D
	if p.player != nil {
		origin = p.player.Position()
	}
	proj := radar.DefaultProjector()
	if p.projector != nil {
		proj = *p.projector
	}
	return proj.Unproject(origin, offset)
}

func (p *Protocol) playerTag() string {
	if p.player == nil {
		return ""
	}
	return p.player.Tag
}
