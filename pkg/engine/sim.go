// pkg/engine/sim.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/EngoEngine/ecs"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	"github.com/opd-ai/go-spacerpg/pkg/ai"
	"github.com/opd-ai/go-spacerpg/pkg/config"
	"github.com/opd-ai/go-spacerpg/pkg/entity"
	"github.com/opd-ai/go-spacerpg/pkg/event"
	"github.com/opd-ai/go-spacerpg/pkg/logging"
	"github.com/opd-ai/go-spacerpg/pkg/radar"
	"github.com/opd-ai/go-spacerpg/pkg/selection"
)

// sweepCapacity is the quadtree node capacity used by the radar sweep.
const sweepCapacity = 8

// minSampleVessels is the vessel count below which sample ships are added.
const minSampleVessels = 3

// ErrUnknownVessel is returned for operations on a tag the sim does not hold.
var ErrUnknownVessel = errors.New("unknown vessel")

// Sim represents the simulation state
type Sim struct {
	Config     *config.SimConfig
	EntityLock sync.RWMutex
	Clock      Clock
	Arena      *entity.Arena
	Player     *entity.Vessel
	Projector  *radar.Projector
	Selection  *selection.Protocol
	EventBus   *event.Bus
	Logger     *logging.Logger

	rng         *rand.Rand
	vessels     []*entity.Vessel
	byTag       map[string]*entity.Vessel
	controllers map[*entity.Vessel]*ai.Controller
	candidates  []entity.LocationIndex

	world      ecs.World
	aiSys      *AISystem
	kinematics *KinematicsSystem
	radarSys   *RadarSystem

	tick         uint64
	blips        []radar.Blip
	stepDelta    float64
	stepParallel context.Context
	stepErr      error
	parallel     bool

	meter   metric.Meter
	metrics *simMetrics
}

// Option configures a Sim
type Option func(*Sim)

// WithLogger sets the logger; the default discards everything.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Sim) {
		s.Logger = logger
	}
}

// WithEventBus shares an existing bus instead of creating one.
func WithEventBus(bus *event.Bus) Option {
	return func(s *Sim) {
		s.EventBus = bus
	}
}

// WithMeter records metrics on m instead of the global meter.
func WithMeter(m metric.Meter) Option {
	return func(s *Sim) {
		s.meter = m
	}
}

// WithParallel makes Run step vessel kinematics concurrently.
func WithParallel(enabled bool) Option {
	return func(s *Sim) {
		s.parallel = enabled
	}
}

// NewSim builds a simulation from cfg. Malformed location or vessel records
// are logged and skipped; only an invalid configuration as a whole is an
// error.
func NewSim(cfg *config.SimConfig, opts ...Option) (*Sim, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	proj := cfg.Radar.Projector()
	s := &Sim{
		Config:      cfg,
		Clock:       Clock{TimeScale: cfg.TimeScale},
		Arena:       entity.NewArena(),
		Projector:   &proj,
		rng:         rand.New(rand.NewPCG(cfg.Seed, cfg.Seed)),
		byTag:       make(map[string]*entity.Vessel),
		controllers: make(map[*entity.Vessel]*ai.Controller),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Logger == nil {
		s.Logger = logging.Discard()
	}
	if s.EventBus == nil {
		s.EventBus = event.NewEventBus()
	}
	if s.meter == nil {
		s.meter = meter()
	}

	metrics, err := newSimMetrics(s.meter)
	if err != nil {
		return nil, err
	}
	s.metrics = metrics
	s.EventBus.Subscribe(event.AIStateChanged, s.metrics.handleStateChange)

	s.initSystems()
	s.initLocations()
	s.initPlayer()
	s.initVessels()

	s.Logger.Info(context.Background(), "simulation built",
		"locations", s.Arena.Len(),
		"vessels", len(s.vessels),
		"ai_controllers", len(s.controllers),
		"seed", cfg.Seed,
	)
	return s, nil
}

func (s *Sim) initSystems() {
	s.aiSys = &AISystem{sim: s}
	s.kinematics = &KinematicsSystem{sim: s}
	s.radarSys = &RadarSystem{sim: s, sweep: radar.NewSweep(*s.Projector, sweepCapacity)}

	s.world.AddSystem(s.aiSys)
	s.world.AddSystem(s.kinematics)
	s.world.AddSystem(s.radarSys)
}

func (s *Sim) initLocations() {
	ctx := context.Background()
	for _, def := range s.Config.Locations {
		loc, err := entity.NewLocation(def)
		if err != nil {
			s.Logger.Error(ctx, "skipping location", err, "tag", def.Info.Tag)
			continue
		}
		if _, err := s.Arena.Add(loc); err != nil {
			s.Logger.Error(ctx, "skipping location", err, "tag", def.Info.Tag)
			continue
		}
		s.radarSys.Add(loc)
	}

	for _, tag := range s.Arena.LinkHierarchy() {
		s.Logger.Warn(ctx, "location parent not found", "tag", tag)
	}
	s.candidates = s.Arena.Indices()
}

func (s *Sim) initPlayer() {
	ctx := context.Background()
	player, err := entity.NewPlayer(s.Config.Player, entity.WithTrailPolicy(s.Config.Trail))
	if err != nil {
		s.Logger.Error(ctx, "no player vessel", err)
		return
	}
	if err := s.addVessel(player, false); err != nil {
		s.Logger.Error(ctx, "no player vessel", err)
		return
	}
	s.Player = player
	s.Selection = selection.NewProtocol(player, s.Projector,
		selection.WithEventBus(s.EventBus),
		selection.WithHitRadius(s.Config.Radar.HitRadius),
	)
}

func (s *Sim) initVessels() {
	ctx := context.Background()
	for _, def := range s.Config.Vessels {
		if _, err := s.addShip(def); err != nil {
			s.Logger.Error(ctx, "skipping vessel", err, "tag", def.Info.Tag)
		}
	}
	for _, def := range s.Config.AIVessels {
		if _, err := s.spawnAI(def); err != nil {
			s.Logger.Error(ctx, "skipping ai vessel", err, "tag", def.Info.Tag)
		}
	}

	if !s.Config.SeedSamples || s.npcCount() >= minSampleVessels {
		return
	}
	for _, def := range config.SampleShips(config.PlayerTemplate()) {
		if _, taken := s.byTag[def.Info.Tag]; taken {
			continue
		}
		if _, err := s.addShip(def); err != nil {
			s.Logger.Error(ctx, "skipping sample ship", err, "tag", def.Info.Tag)
			continue
		}
		s.Logger.Debug(ctx, "sample ship added", "tag", def.Info.Tag)
	}
}

func (s *Sim) npcCount() int {
	n := len(s.vessels)
	if s.Player != nil {
		n--
	}
	return n
}

func (s *Sim) addShip(def entity.VesselDef) (*entity.Vessel, error) {
	ship, err := entity.NewShip(def, entity.WithTrailPolicy(s.Config.Trail))
	if err != nil {
		return nil, err
	}
	if err := s.addVessel(ship, true); err != nil {
		return nil, err
	}
	return ship, nil
}

func (s *Sim) spawnAI(def entity.VesselDef) (*entity.Vessel, error) {
	if def.Info.Tag == "" {
		def.Info.Tag = "ai_" + uuid.NewString()
	}
	if def.Info.Name == "" {
		def.Info.Name = def.Info.Tag
	}

	v, err := entity.NewVessel(def, entity.WithTrailPolicy(s.Config.Trail))
	if err != nil {
		return nil, err
	}
	if _, taken := s.byTag[v.Tag]; taken {
		return nil, fmt.Errorf("vessel %s: %w", v.Tag, entity.ErrDuplicateTag)
	}

	c, err := ai.NewController(v, s.Arena, s.candidates, s.Config.AI, s.rng,
		ai.WithEventBus(s.EventBus),
		ai.WithLogger(s.Logger),
		ai.WithStartTime(s.Clock.Now),
	)
	if err != nil {
		return nil, err
	}
	if err := s.addVessel(v, true); err != nil {
		return nil, err
	}
	s.controllers[v] = c
	s.aiSys.Add(c)
	return v, nil
}

func (s *Sim) addVessel(v *entity.Vessel, onRadar bool) error {
	if _, taken := s.byTag[v.Tag]; taken {
		return fmt.Errorf("vessel %s: %w", v.Tag, entity.ErrDuplicateTag)
	}
	s.vessels = append(s.vessels, v)
	s.byTag[v.Tag] = v
	s.kinematics.Add(v)
	if onRadar {
		s.radarSys.Add(v)
	}
	return nil
}

// Step advances the simulation by one frame of dt wall seconds.
func (s *Sim) Step(dt float64) {
	_ = s.step(context.Background(), dt, false)
}

// StepParallel is Step with vessel kinematics spread over Config.Workers
// goroutines. AI ticks stay sequential. A cancelled ctx stops the frame
// early and is returned.
func (s *Sim) StepParallel(ctx context.Context, dt float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.step(ctx, dt, true)
}

func (s *Sim) step(ctx context.Context, dt float64, parallel bool) error {
	s.EntityLock.Lock()
	defer s.EntityLock.Unlock()

	scaled := s.Clock.Advance(dt)
	if scaled == 0 {
		return nil
	}

	start := time.Now()
	s.stepDelta = scaled
	s.stepErr = nil
	if parallel {
		s.stepParallel = ctx
	}
	s.world.Update(float32(scaled))
	s.stepParallel = nil

	s.tick++
	s.metrics.recordTick(ctx, time.Since(start))
	return s.stepErr
}

func (s *Sim) workers() int {
	if s.Config.Workers > 0 {
		return s.Config.Workers
	}
	return 1
}

// Run steps the simulation at rate frames per second until ctx is done,
// feeding each frame the measured wall time since the previous one. A
// non-positive rate uses Config.TickRate.
func (s *Sim) Run(ctx context.Context, rate int) error {
	if rate <= 0 {
		rate = s.Config.TickRate
	}

	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	s.EventBus.Publish(event.NewSimEvent(event.SimStarted, s, s.Tick(), s.Now()))
	s.Logger.Info(ctx, "simulation started", "rate", rate, "parallel", s.parallel)

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			s.stopped(ctx)
			return nil
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if !s.parallel {
				s.Step(dt)
				continue
			}
			if err := s.StepParallel(ctx, dt); err != nil {
				// A frame cut short by the loop's own context ends the run
				// normally, whether it was cancelled or timed out.
				if ctx.Err() != nil {
					s.stopped(ctx)
					return nil
				}
				return err
			}
		}
	}
}

func (s *Sim) stopped(ctx context.Context) {
	s.EventBus.Publish(event.NewSimEvent(event.SimStopped, s, s.Tick(), s.Now()))
	s.Logger.Info(ctx, "simulation stopped", "ticks", s.Tick(), "sim_time", s.Now())
}

// Pause freezes the simulation clock
func (s *Sim) Pause() {
	s.EntityLock.Lock()
	defer s.EntityLock.Unlock()
	s.Clock.Paused = true
}

// Resume unfreezes the simulation clock
func (s *Sim) Resume() {
	s.EntityLock.Lock()
	defer s.EntityLock.Unlock()
	s.Clock.Paused = false
}

// Paused reports whether the clock is frozen
func (s *Sim) Paused() bool {
	s.EntityLock.RLock()
	defer s.EntityLock.RUnlock()
	return s.Clock.Paused
}

// Now returns the simulation time in seconds
func (s *Sim) Now() float64 {
	s.EntityLock.RLock()
	defer s.EntityLock.RUnlock()
	return s.Clock.Now
}

// Tick returns the number of frames stepped
func (s *Sim) Tick() uint64 {
	s.EntityLock.RLock()
	defer s.EntityLock.RUnlock()
	return s.tick
}

// Blips returns a copy of the latest radar sweep.
func (s *Sim) Blips() []radar.Blip {
	s.EntityLock.RLock()
	defer s.EntityLock.RUnlock()
	return append([]radar.Blip(nil), s.blips...)
}

// Vessel looks up a vessel by tag
func (s *Sim) Vessel(tag string) (*entity.Vessel, bool) {
	s.EntityLock.RLock()
	defer s.EntityLock.RUnlock()
	v, ok := s.byTag[tag]
	return v, ok
}

// Vessels returns every vessel in insertion order
func (s *Sim) Vessels() []*entity.Vessel {
	s.EntityLock.RLock()
	defer s.EntityLock.RUnlock()
	return append([]*entity.Vessel(nil), s.vessels...)
}

// Controller returns the AI driving the vessel tagged tag.
func (s *Sim) Controller(tag string) (*ai.Controller, bool) {
	s.EntityLock.RLock()
	defer s.EntityLock.RUnlock()
	v, ok := s.byTag[tag]
	if !ok {
		return nil, false
	}
	c, ok := s.controllers[v]
	return c, ok
}

// Command runs fn against the selection protocol with the entity lock held,
// so user actions interleave safely with Run.
func (s *Sim) Command(fn func(p *selection.Protocol)) bool {
	s.EntityLock.Lock()
	defer s.EntityLock.Unlock()
	if s.Selection == nil {
		return false
	}
	fn(s.Selection)
	return true
}

// SpawnAI adds an AI-driven vessel at runtime. An empty tag is replaced by a
// generated one.
func (s *Sim) SpawnAI(def entity.VesselDef) (*entity.Vessel, error) {
	s.EntityLock.Lock()
	defer s.EntityLock.Unlock()

	v, err := s.spawnAI(def)
	if err != nil {
		return nil, logging.WrapError(err, "spawn ai vessel")
	}
	s.Logger.Info(context.Background(), "ai vessel spawned", "tag", v.Tag)
	return v, nil
}

// RemoveVessel takes a vessel out of the simulation: it is undocked, its AI
// is dropped and every system forgets it. The player cannot be removed.
func (s *Sim) RemoveVessel(tag string) error {
	s.EntityLock.Lock()
	defer s.EntityLock.Unlock()

	v, ok := s.byTag[tag]
	if !ok || v == s.Player {
		return fmt.Errorf("remove %q: %w", tag, ErrUnknownVessel)
	}

	s.Arena.Undock(v)
	v.Destroyed = true
	s.world.RemoveEntity(v.BasicEntity)

	delete(s.controllers, v)
	delete(s.byTag, tag)
	for i, other := range s.vessels {
		if other == v {
			s.vessels = append(s.vessels[:i], s.vessels[i+1:]...)
			break
		}
	}

	if s.Selection != nil {
		if s.Selection.Selected() == entity.Entity(v) {
			s.Selection.ClearSelection()
		}
		s.Selection.Refresh()
	}

	s.Logger.Info(context.Background(), "vessel removed", "tag", tag)
	return nil
}
