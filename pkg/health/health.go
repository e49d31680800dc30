// Package health runs periodic self-checks against a running simulation:
// the loop is making progress, docking bookkeeping agrees with AI state and
// every vessel has a finite position.
package health

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/opd-ai/go-spacerpg/pkg/engine"
)

// HealthCheck defines the interface for individual health checks.
type HealthCheck interface {
	// Name returns the unique name of this health check
	Name() string
	// Check performs the health check and returns an error if unhealthy
	Check(ctx context.Context) error
}

// HealthStatus represents the overall health status of the simulation.
type HealthStatus struct {
	Status string                     `json:"status"`
	Checks map[string]ComponentHealth `json:"checks"`
}

// Healthy reports whether every check passed
func (s HealthStatus) Healthy() bool {
	return s.Status == StatusHealthy
}

// Failures returns "name: message" for every failing check, sorted by name.
func (s HealthStatus) Failures() []string {
	var out []string
	for name, c := range s.Checks {
		if c.Status != StatusHealthy {
			out = append(out, name+": "+c.Message)
		}
	}
	sort.Strings(out)
	return out
}

// ComponentHealth represents the health status of an individual check.
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// HealthChecker manages and executes health checks.
type HealthChecker struct {
	checks map[string]HealthCheck
	mu     sync.RWMutex
}

// NewHealthChecker creates a new health checker instance.
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		checks: make(map[string]HealthCheck),
	}
}

// AddCheck registers a new health check with the health checker.
// If a check with the same name already exists, it will be replaced.
func (hc *HealthChecker) AddCheck(check HealthCheck) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[check.Name()] = check
}

// RemoveCheck removes a health check by name.
func (hc *HealthChecker) RemoveCheck(name string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	delete(hc.checks, name)
}

// CheckHealth executes all registered health checks and returns the aggregated status.
// The overall status is "healthy" only if all individual checks pass.
func (hc *HealthChecker) CheckHealth(ctx context.Context) HealthStatus {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	status := HealthStatus{
		Status: StatusHealthy,
		Checks: make(map[string]ComponentHealth, len(hc.checks)),
	}

	for name, check := range hc.checks {
		if err := check.Check(ctx); err != nil {
			status.Status = StatusUnhealthy
			status.Checks[name] = ComponentHealth{
				Status:  StatusUnhealthy,
				Message: err.Error(),
			}
			continue
		}
		status.Checks[name] = ComponentHealth{Status: StatusHealthy}
	}

	return status
}

// ProgressHealthCheck fails when the tick counter has not moved since the
// previous check while the simulation is supposed to be running.
type ProgressHealthCheck struct {
	tick    func() uint64
	running func() bool

	mu   sync.Mutex
	last uint64
	seen bool
}

// NewProgressHealthCheck creates a progress check. running may be nil, in
// which case the loop is always expected to advance.
func NewProgressHealthCheck(tick func() uint64, running func() bool) *ProgressHealthCheck {
	return &ProgressHealthCheck{tick: tick, running: running}
}

// Name returns the name of this health check.
func (p *ProgressHealthCheck) Name() string {
	return "progress"
}

// Check compares the current tick with the one seen last time.
func (p *ProgressHealthCheck) Check(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.tick()
	first := !p.seen
	stalled := p.seen && now == p.last
	p.last, p.seen = now, true

	if first || (p.running != nil && !p.running()) {
		return nil
	}
	if stalled {
		return fmt.Errorf("simulation stalled at tick %d", now)
	}
	return nil
}

// DockingHealthCheck verifies that each AI vessel sits in at most one
// docked set, and in one exactly when its AI reports Docked.
type DockingHealthCheck struct {
	snapshot func() engine.Snapshot
}

// NewDockingHealthCheck creates a docking consistency check.
func NewDockingHealthCheck(snapshot func() engine.Snapshot) *DockingHealthCheck {
	return &DockingHealthCheck{snapshot: snapshot}
}

// Name returns the name of this health check.
func (d *DockingHealthCheck) Name() string {
	return "docking"
}

// Check walks one snapshot.
func (d *DockingHealthCheck) Check(ctx context.Context) error {
	snap := d.snapshot()

	docked := make(map[string]int)
	for _, loc := range snap.Locations {
		for _, tag := range loc.Docked {
			docked[tag]++
		}
	}

	var problems []string
	for _, v := range snap.Vessels {
		n := docked[v.Tag]
		switch {
		case n > 1:
			problems = append(problems, fmt.Sprintf("%s docked at %d locations", v.Tag, n))
		case v.AIState == "":
		case (v.AIState == "Docked") != (n == 1):
			problems = append(problems, fmt.Sprintf("%s is %s with %d docked entries", v.Tag, v.AIState, n))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("docking inconsistent: %s", strings.Join(problems, "; "))
	}
	return nil
}

// FiniteStateHealthCheck fails when any vessel's position or speed is NaN
// or infinite.
type FiniteStateHealthCheck struct {
	snapshot func() engine.Snapshot
}

// NewFiniteStateHealthCheck creates a numeric sanity check.
func NewFiniteStateHealthCheck(snapshot func() engine.Snapshot) *FiniteStateHealthCheck {
	return &FiniteStateHealthCheck{snapshot: snapshot}
}

// Name returns the name of this health check.
func (f *FiniteStateHealthCheck) Name() string {
	return "finite_state"
}

// Check scans one snapshot.
func (f *FiniteStateHealthCheck) Check(ctx context.Context) error {
	for _, v := range f.snapshot().Vessels {
		if !v.Position.IsFinite() || math.IsNaN(v.Speed) || math.IsInf(v.Speed, 0) {
			return fmt.Errorf("vessel %s has non-finite state (pos %v, speed %v)", v.Tag, v.Position, v.Speed)
		}
	}
	return nil
}

// MemoryHealthCheck implements HealthCheck for memory usage monitoring.
type MemoryHealthCheck struct {
	maxMemoryMB    int64
	getMemoryUsage func() int64
}

// NewMemoryHealthCheck creates a health check for memory usage.
func NewMemoryHealthCheck(maxMemoryMB int64, getMemoryUsage func() int64) *MemoryHealthCheck {
	return &MemoryHealthCheck{
		maxMemoryMB:    maxMemoryMB,
		getMemoryUsage: getMemoryUsage,
	}
}

// Name returns the name of this health check.
func (m *MemoryHealthCheck) Name() string {
	return "memory"
}

// Check verifies that memory usage is within acceptable limits.
func (m *MemoryHealthCheck) Check(ctx context.Context) error {
	currentMB := m.getMemoryUsage()
	if currentMB > m.maxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", currentMB, m.maxMemoryMB)
	}
	return nil
}
