package engine

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/opd-ai/go-spacerpg/pkg/event"
)

const instrumentationName = "github.com/opd-ai/go-spacerpg/pkg/engine"

// meter returns the global meter, a no-op until a provider is installed.
func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type simMetrics struct {
	ticks        metric.Int64Counter
	tickDuration metric.Float64Histogram
	transitions  metric.Int64Counter
	blips        metric.Int64Histogram
}

func newSimMetrics(m metric.Meter) (*simMetrics, error) {
	sm := &simMetrics{}

	var err error
	sm.ticks, err = m.Int64Counter(
		"spacerpg.sim.ticks",
		metric.WithDescription("Simulation frames stepped"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tick counter: %w", err)
	}

	sm.tickDuration, err = m.Float64Histogram(
		"spacerpg.sim.tick_duration",
		metric.WithDescription("Wall time spent stepping one frame"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tick duration histogram: %w", err)
	}

	sm.transitions, err = m.Int64Counter(
		"spacerpg.ai.transitions",
		metric.WithDescription("AI state machine transitions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transition counter: %w", err)
	}

	sm.blips, err = m.Int64Histogram(
		"spacerpg.radar.blips",
		metric.WithDescription("Blips on the player's radar per sweep"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating blip histogram: %w", err)
	}

	return sm, nil
}

func (m *simMetrics) recordTick(ctx context.Context, elapsed time.Duration) {
	m.ticks.Add(ctx, 1)
	m.tickDuration.Record(ctx, elapsed.Seconds())
}

func (m *simMetrics) recordBlips(ctx context.Context, n int) {
	m.blips.Record(ctx, int64(n))
}

// handleStateChange counts AI transitions published on the bus.
func (m *simMetrics) handleStateChange(e event.Event) {
	se, ok := e.(*event.StateEvent)
	if !ok {
		return
	}
	m.transitions.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String("from", se.From),
			attribute.String("to", se.To),
		))
}
