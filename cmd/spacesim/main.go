// cmd/spacesim/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/opd-ai/go-spacerpg/pkg/combat"
	"github.com/opd-ai/go-spacerpg/pkg/config"
	"github.com/opd-ai/go-spacerpg/pkg/engine"
	"github.com/opd-ai/go-spacerpg/pkg/entity"
	"github.com/opd-ai/go-spacerpg/pkg/health"
	"github.com/opd-ai/go-spacerpg/pkg/logging"
	"github.com/opd-ai/go-spacerpg/pkg/radar"
	"github.com/opd-ai/go-spacerpg/pkg/render"
	"github.com/opd-ai/go-spacerpg/pkg/selection"
)

func main() {
	logger := logging.NewLogger()
	ctx := context.Background()

	configPath := flag.String("config", "", "Path to configuration file (defaults and environment only when empty)")
	createDefault := flag.Bool("default", false, "Write the default configuration to -config and exit")
	duration := flag.Duration("duration", 0, "Stop after this long (0 runs until interrupted)")
	renderScope := flag.Bool("render", false, "Draw the player's radar in the terminal")
	seed := flag.Uint64("seed", 0, "Override the configured random seed")
	parallel := flag.Bool("parallel", false, "Step vessel kinematics on a worker pool")
	autopilot := flag.Bool("autopilot", false, "Fly the player between visible locations")
	healthEvery := flag.Duration("health", 10*time.Second, "Interval between health checks (0 disables)")
	flag.Parse()

	if *createDefault {
		if *configPath == "" {
			logger.Error(ctx, "No configuration path given", nil)
			os.Exit(1)
		}
		if err := config.SaveConfig(config.DefaultConfig(), *configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file",
			"config_path", *configPath,
		)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Error(ctx, "Failed to load configuration", err,
			"config_path", *configPath,
		)
		os.Exit(1)
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	// The radar owns stdout while rendering.
	logOut := os.Stdout
	if *renderScope {
		logOut = os.Stderr
	}
	logger = logging.NewLoggerWithWriter(logOut, logging.ParseLevel(cfg.LogLevel))
	ctx = logging.WithCorrelationID(ctx, logging.GenerateCorrelationID())

	sim, err := engine.NewSim(cfg,
		engine.WithLogger(logger),
		engine.WithParallel(*parallel),
	)
	if err != nil {
		logger.Error(ctx, "Failed to build simulation", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	if *healthEvery > 0 {
		go monitorHealth(ctx, sim, logger, *healthEvery)
	}
	if *autopilot {
		go fly(ctx, sim, logger)
	}
	if *renderScope {
		scope := render.NewTerminalScope(os.Stdout, 61, 31, cfg.Radar.Radius, true)
		go draw(ctx, sim, scope, logger)
	}

	if err := sim.Run(ctx, cfg.TickRate); err != nil {
		logger.Error(ctx, "Simulation failed", err)
		os.Exit(1)
	}
}

func monitorHealth(ctx context.Context, sim *engine.Sim, logger *logging.Logger, every time.Duration) {
	hc := health.NewHealthChecker()
	hc.AddCheck(health.NewProgressHealthCheck(sim.Tick, func() bool { return !sim.Paused() }))
	hc.AddCheck(health.NewDockingHealthCheck(sim.Snapshot))
	hc.AddCheck(health.NewFiniteStateHealthCheck(sim.Snapshot))
	hc.AddCheck(health.NewMemoryHealthCheck(500, func() int64 {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		return int64(m.Alloc / 1024 / 1024)
	}))

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			status := hc.CheckHealth(ctx)
			if status.Healthy() {
				logger.Debug(ctx, "Health check passed", "tick", sim.Tick())
				continue
			}
			logger.Warn(ctx, "Health check failed", "failures", status.Failures())
		}
	}
}

// fly keeps the player busy: whenever it is idle, travel to the next
// visible location on radar and lock the closest visible vessel.
func fly(ctx context.Context, sim *engine.Sim, logger *logging.Logger) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	next := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		blips := radar.VisibleOnly(sim.Blips())
		var places []entity.Entity
		var closest radar.Blip
		for _, b := range blips {
			switch b.Target.(type) {
			case *entity.Location:
				places = append(places, b.Target)
			case *entity.Vessel:
				if closest.Target == nil || b.Distance < closest.Distance {
					closest = b
				}
			}
		}

		sim.Command(func(p *selection.Protocol) {
			if p.Locked() == nil && closest.Target != nil {
				p.Select(closest.Target)
				p.ToggleLock()
			}
			if sim.Player.HasDestination() || len(places) == 0 {
				return
			}
			target := places[next%len(places)]
			next++
			p.Select(target)
			if p.TravelToSelected() && p.Confirm() {
				logger.Info(ctx, "Autopilot engaged", "destination", target.GetTag())
			}
		})
	}
}

func draw(ctx context.Context, sim *engine.Sim, scope *render.TerminalScope, logger *logging.Logger) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		blips, tick := sim.Blips(), sim.Tick()
		var overlays []render.Overlay
		var status []string
		sim.Command(func(p *selection.Protocol) {
			origin := sim.Player.Position()
			if pending := p.Pending(); pending.Active && pending.Coords != nil {
				overlays = append(overlays, render.Overlay{Kind: render.MarkerPending, Offset: sim.Projector.Project(origin, *pending.Coords)})
			}
			if sel := p.Selected(); sel != nil {
				overlays = append(overlays, render.Overlay{Kind: render.MarkerSelected, Offset: sim.Projector.Project(origin, sel.Position())})
			}
			if locked := p.Locked(); locked != nil {
				overlays = append(overlays, render.Overlay{Kind: render.MarkerLocked, Offset: sim.Projector.Project(origin, locked.Position())})
			}

			status = append(status,
				fmt.Sprintf("t=%.1fs tick=%d  pos=(%.0f, %.0f) speed=%.1f dest=%s",
					sim.Clock.Now, tick, origin.X, origin.Y, sim.Player.Speed(), sim.Player.Destination),
			)
			if r, ok := combat.Assess(sim.Player); ok {
				status = append(status, fmt.Sprintf("target %s  %.2f Mm  solution %.3f", r.TargetTag, r.RangeMm, r.MultiMode))
			} else {
				status = append(status, "target none")
			}
		})

		scope.SetStatus(status...)
		if err := render.DrawFrame(scope, blips, overlays...); err != nil {
			logger.Error(ctx, "Failed to draw radar", err)
			return
		}
	}
}
