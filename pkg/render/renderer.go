// pkg/render/renderer.go
package render

import (
	"context"

	"github.com/opd-ai/go-spacerpg/pkg/logging"
	"github.com/opd-ai/go-spacerpg/pkg/physics"
	"github.com/opd-ai/go-spacerpg/pkg/radar"
)

// MarkerKind identifies an overlay drawn on top of the radar blips.
type MarkerKind int

const (
	MarkerPending MarkerKind = iota
	MarkerSelected
	MarkerLocked
)

// Scope draws one radar frame. Offsets are radar pixels relative to the
// radar centre, as produced by radar.Projector.
type Scope interface {
	Clear()
	DrawBlip(b radar.Blip)
	DrawMarker(kind MarkerKind, offset physics.Vector2D)
	Present() error
}

// Overlay is a marker to draw over a frame.
type Overlay struct {
	Kind   MarkerKind
	Offset physics.Vector2D
}

// DrawFrame clears the scope, draws every visible blip then the overlays,
// and presents the result.
func DrawFrame(s Scope, blips []radar.Blip, overlays ...Overlay) error {
	s.Clear()
	for _, b := range blips {
		if b.Visible {
			s.DrawBlip(b)
		}
	}
	for _, o := range overlays {
		s.DrawMarker(o.Kind, o.Offset)
	}
	return s.Present()
}

// NullScope discards every frame, logging calls at debug level.
type NullScope struct {
	logger *logging.Logger
}

// NewNullScope creates a new NullScope with structured logging.
func NewNullScope(logger *logging.Logger) *NullScope {
	if logger == nil {
		logger = logging.Discard()
	}
	return &NullScope{logger: logger}
}

// Clear implements Scope.
func (d *NullScope) Clear() {
	d.logger.Debug(context.Background(), "Clear called")
}

// DrawBlip implements Scope.
func (d *NullScope) DrawBlip(b radar.Blip) {
	ctx := context.Background()
	if b.Target == nil {
		d.logger.Debug(ctx, "DrawBlip called with empty blip")
		return
	}
	d.logger.Debug(ctx, "DrawBlip called",
		"tag", b.Target.GetTag(),
		"offset_x", b.Offset.X,
		"offset_y", b.Offset.Y,
	)
}

// DrawMarker implements Scope.
func (d *NullScope) DrawMarker(kind MarkerKind, offset physics.Vector2D) {
	d.logger.Debug(context.Background(), "DrawMarker called",
		"kind", int(kind),
		"offset_x", offset.X,
		"offset_y", offset.Y,
	)
}

// Present implements Scope.
func (d *NullScope) Present() error {
	d.logger.Debug(context.Background(), "Present called")
	return nil
}
