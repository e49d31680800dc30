// pkg/engine/systems.go
package engine

import (
	"context"

	"github.com/EngoEngine/ecs"
	"golang.org/x/sync/errgroup"

	"github.com/opd-ai/go-spacerpg/pkg/ai"
	"github.com/opd-ai/go-spacerpg/pkg/entity"
	"github.com/opd-ai/go-spacerpg/pkg/event"
	"github.com/opd-ai/go-spacerpg/pkg/physics"
	"github.com/opd-ai/go-spacerpg/pkg/radar"
)

// System priorities; the world runs higher priorities first so AI decisions
// are made before vessels move and the radar sees the moved positions.
const (
	PriorityAI         = 30
	PriorityKinematics = 20
	PriorityRadar      = 10
)

// AISystem ticks every AI controller once per frame, in the order they were
// added.
type AISystem struct {
	sim         *Sim
	controllers []*ai.Controller
}

// Add registers a controller with the system
func (s *AISystem) Add(c *ai.Controller) {
	s.controllers = append(s.controllers, c)
}

// Remove satisfies the ecs.System interface
func (s *AISystem) Remove(basic ecs.BasicEntity) {
	for i, c := range s.controllers {
		if c.Vessel().ID() == basic.ID() {
			s.controllers = append(s.controllers[:i], s.controllers[i+1:]...)
			return
		}
	}
}

// Priority satisfies the ecs.Prioritizer interface
func (s *AISystem) Priority() int { return PriorityAI }

// Update satisfies the ecs.System interface. The frame delta is ignored;
// controllers work on absolute simulation time.
func (s *AISystem) Update(float32) {
	now := s.sim.Clock.Now
	for _, c := range s.controllers {
		c.Tick(now)
	}
}

// KinematicsSystem advances every vessel toward its destination.
type KinematicsSystem struct {
	sim     *Sim
	vessels []*entity.Vessel
}

// Add registers a vessel with the system
func (s *KinematicsSystem) Add(v *entity.Vessel) {
	s.vessels = append(s.vessels, v)
}

// Remove satisfies the ecs.System interface
func (s *KinematicsSystem) Remove(basic ecs.BasicEntity) {
	for i, v := range s.vessels {
		if v.ID() == basic.ID() {
			s.vessels = append(s.vessels[:i], s.vessels[i+1:]...)
			return
		}
	}
}

// Priority satisfies the ecs.Prioritizer interface
func (s *KinematicsSystem) Priority() int { return PriorityKinematics }

// Update satisfies the ecs.System interface. The float32 delta from the
// world is only used to decide whether to run; the sim's float64 step is
// what vessels integrate with.
func (s *KinematicsSystem) Update(float32) {
	dt, now := s.sim.stepDelta, s.sim.Clock.Now
	arena := s.sim.Arena

	if s.sim.stepParallel != nil {
		s.sim.stepErr = s.updateParallel(s.sim.stepParallel, arena, dt, now)
		return
	}

	for _, v := range s.vessels {
		dest := v.Destination
		if v.Advance(arena, dt, now).Arrived {
			s.sim.publishArrival(v, dest)
		}
	}
}

// updateParallel steps vessels concurrently. Each vessel only mutates its
// own state and reads the arena under its lock; arrivals are published in
// vessel order once every worker is done.
func (s *KinematicsSystem) updateParallel(ctx context.Context, arena *entity.Arena, dt, now float64) error {
	results := make([]physics.StepResult, len(s.vessels))
	dests := make([]entity.Waypoint, len(s.vessels))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.sim.workers())
	for i, v := range s.vessels {
		dests[i] = v.Destination
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = v.Advance(arena, dt, now)
			return nil
		})
	}
	err := g.Wait()

	for i, r := range results {
		if r.Arrived {
			s.sim.publishArrival(s.vessels[i], dests[i])
		}
	}
	return err
}

// RadarSystem sweeps the player's radar and keeps the selection in sync.
type RadarSystem struct {
	sim     *Sim
	sweep   *radar.Sweep
	targets []entity.Entity
}

// Add registers an entity as a radar candidate
func (s *RadarSystem) Add(e entity.Entity) {
	s.targets = append(s.targets, e)
}

// Remove satisfies the ecs.System interface
func (s *RadarSystem) Remove(basic ecs.BasicEntity) {
	for i, e := range s.targets {
		if e.ID() == basic.ID() {
			s.targets = append(s.targets[:i], s.targets[i+1:]...)
			return
		}
	}
}

// Priority satisfies the ecs.Prioritizer interface
func (s *RadarSystem) Priority() int { return PriorityRadar }

// Update satisfies the ecs.System interface
func (s *RadarSystem) Update(float32) {
	player := s.sim.Player
	if player == nil {
		s.sim.blips = nil
		return
	}

	s.sweep.SetProjector(*s.sim.Projector)
	s.sim.blips = s.sweep.Blips(player.Position(), s.targets)
	if s.sim.Selection != nil {
		s.sim.Selection.Refresh()
	}
	s.sim.metrics.recordBlips(context.Background(), len(s.sim.blips))
}

// publishArrival announces that v reached dest.
func (s *Sim) publishArrival(v *entity.Vessel, dest entity.Waypoint) {
	var tag string
	if idx, ok := dest.Location(); ok {
		if loc := s.Arena.Get(idx); loc != nil {
			tag = loc.Tag
		}
	}
	s.EventBus.Publish(event.NewVesselEvent(event.DestinationReached, s, v.Tag, tag, v.Position()))
}
