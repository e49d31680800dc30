package render

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/opd-ai/go-spacerpg/pkg/entity"
	"github.com/opd-ai/go-spacerpg/pkg/logging"
	"github.com/opd-ai/go-spacerpg/pkg/physics"
	"github.com/opd-ai/go-spacerpg/pkg/radar"
)

func newStation(t *testing.T) *entity.Location {
	t.Helper()
	loc, err := entity.NewLocation(entity.LocationDef{
		Info:     entity.InfoDef{Tag: "kepler", Name: "Kepler", LocationType: "station"},
		Location: entity.PlacementDef{Coordinates: []float64{100, 0}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return loc
}

func newHauler(t *testing.T) *entity.Vessel {
	t.Helper()
	v, err := entity.NewVessel(entity.VesselDef{
		Info:     entity.InfoDef{Tag: "hauler", Name: "Hauler"},
		Location: entity.PlacementDef{Coordinates: []float64{0, 0}},
		Motion:   entity.MotionDef{MaxSpeed: 1, Acceleration: 1, Deceleration: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	return v
}

// grid returns the rows inside the border of a presented frame.
func grid(t *testing.T, out string, height int) []string {
	t.Helper()
	lines := strings.Split(out, "\n")
	if len(lines) < height+2 {
		t.Fatalf("frame has %d lines, want at least %d", len(lines), height+2)
	}
	rows := make([]string, height)
	for i := range rows {
		row := lines[i+1]
		rows[i] = row[1 : len(row)-1]
	}
	return rows
}

func TestTerminalScope_PlotsBlipsAndMarkers(t *testing.T) {
	var buf bytes.Buffer
	scope := NewTerminalScope(&buf, 21, 11, 100, false)
	scope.SetStatus("target: none")

	blips := []radar.Blip{
		{Target: newStation(t), Offset: physics.Vector2D{X: 100, Y: -100}, Visible: true},
		{Target: newHauler(t), Offset: physics.Vector2D{X: -100, Y: 100}, Visible: true},
		{Target: newHauler(t), Offset: physics.Vector2D{X: 50, Y: 50}, Visible: false},
	}
	err := DrawFrame(scope, blips, Overlay{Kind: MarkerPending, Offset: physics.Vector2D{X: 0, Y: -100}})
	if err != nil {
		t.Fatal(err)
	}

	rows := grid(t, buf.String(), 11)
	tests := []struct {
		name string
		x, y int
		want byte
	}{
		{"centre", 10, 5, '+'},
		{"station top right", 20, 0, 'S'},
		{"vessel bottom left", 0, 10, 'v'},
		{"hidden blip skipped", 15, 8, ' '},
		{"pending marker", 10, 0, 'X'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rows[tt.y][tt.x]; got != tt.want {
				t.Errorf("cell (%d,%d) = %q, want %q", tt.x, tt.y, got, tt.want)
			}
		})
	}

	if !strings.Contains(buf.String(), "target: none") {
		t.Error("status line missing")
	}
	if strings.Contains(buf.String(), clearScreen) {
		t.Error("ansi disabled but clear sequence written")
	}
}

func TestTerminalScope_IgnoresOffsetsOutsideGrid(t *testing.T) {
	var buf bytes.Buffer
	scope := NewTerminalScope(&buf, 5, 5, 10, true)
	scope.Clear()
	scope.DrawMarker(MarkerLocked, physics.Vector2D{X: 11, Y: 0})
	scope.DrawBlip(radar.Blip{})
	if err := scope.Present(); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, clearScreen) {
		t.Error("ansi frame should start with the clear sequence")
	}
	if strings.ContainsRune(out, '#') {
		t.Error("out-of-range marker drawn")
	}
}

func TestSymbol(t *testing.T) {
	ship := newHauler(t)
	ship.Combat = &entity.CombatCapability{}

	tests := []struct {
		name string
		e    entity.Entity
		want rune
	}{
		{"station", newStation(t), 'S'},
		{"vessel", newHauler(t), 'v'},
		{"ship", ship, 'A'},
		{"unknown", nil, '?'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Symbol(tt.e); got != tt.want {
				t.Errorf("Symbol = %q, want %q", got, tt.want)
			}
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestTerminalScope_PresentReportsWriteErrors(t *testing.T) {
	scope := NewTerminalScope(failingWriter{}, 10, 5, 50, false)
	scope.Clear()
	if err := scope.Present(); err == nil {
		t.Error("expected write error")
	}
}

func TestNullScope_LogsCalls(t *testing.T) {
	var buf bytes.Buffer
	scope := NewNullScope(logging.NewLoggerWithWriter(&buf, slog.LevelDebug))

	blips := []radar.Blip{{Target: newStation(t), Visible: true}, {}}
	if err := DrawFrame(scope, blips, Overlay{Kind: MarkerSelected}); err != nil {
		t.Fatal(err)
	}
	scope.DrawBlip(radar.Blip{})

	out := buf.String()
	for _, want := range []string{"Clear called", "DrawBlip called", `"tag":"kepler"`, "DrawMarker called", "Present called", "DrawBlip called with empty blip"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q", want)
		}
	}

	if err := NewNullScope(nil).Present(); err != nil {
		t.Errorf("discarding scope returned %v", err)
	}
}
