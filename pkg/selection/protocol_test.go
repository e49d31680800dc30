package selection

import (
	"testing"

	"github.com/opd-ai/go-spacerpg/pkg/entity"
	"github.com/opd-ai/go-spacerpg/pkg/event"
	"github.com/opd-ai/go-spacerpg/pkg/physics"
	"github.com/opd-ai/go-spacerpg/pkg/radar"
)

func newPlayer(t *testing.T) *entity.Vessel {
	t.Helper()
	p, err := entity.NewPlayer(entity.VesselDef{
		Info:     entity.InfoDef{Tag: "player", Name: "Player"},
		Location: entity.PlacementDef{Coordinates: []float64{0, 0}},
		Motion:   entity.MotionDef{MaxSpeed: 100, Acceleration: 100, Deceleration: 100},
	})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func newNPC(t *testing.T, tag string, x, y float64) *entity.Vessel {
	t.Helper()
	v, err := entity.NewVessel(entity.VesselDef{
		Info:     entity.InfoDef{Tag: tag, Name: tag, LocationType: "cargo"},
		Location: entity.PlacementDef{Coordinates: []float64{x, y}},
		Motion:   entity.MotionDef{MaxSpeed: 50, Acceleration: 10, Deceleration: 10},
	})
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func newStation(t *testing.T, x, y float64) *entity.Location {
	t.Helper()
	loc, err := entity.NewLocation(entity.LocationDef{
		Info:     entity.InfoDef{Tag: "st", Name: "Station", LocationType: "station"},
		Location: entity.PlacementDef{Coordinates: []float64{x, y}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return loc
}

func TestConfirm_RequiresActiveStage(t *testing.T) {
	player := newPlayer(t)
	proj := radar.DefaultProjector()
	p := NewProtocol(player, &proj)

	if p.Confirm() {
		t.Fatal("Confirm with nothing staged should fail")
	}

	if !p.Stage(physics.Vector2D{X: 500, Y: 20}) {
		t.Fatal("Stage returned false")
	}
	if !p.Confirm() {
		t.Fatal("Confirm after Stage failed")
	}
	if dest, ok := player.Destination.Resolve(nil); !ok || dest != (physics.Vector2D{X: 500, Y: 20}) {
		t.Errorf("player destination = %v", player.Destination)
	}
	if pend := p.Pending(); pend.Active || pend.Coords == nil {
		t.Errorf("after confirm pending should be inactive but keep coords: %+v", pend)
	}
	if p.Confirm() {
		t.Error("second Confirm should fail")
	}
}

func TestStage_LastWriteWins(t *testing.T) {
	player := newPlayer(t)
	p := NewProtocol(player, nil)

	p.Stage(physics.Vector2D{X: 1})
	p.Stage(physics.Vector2D{X: 2})
	p.Confirm()

	if dest, _ := player.Destination.Resolve(nil); dest.X != 2 {
		t.Errorf("expected last staged destination, got %v", dest)
	}
}

func TestCancel_Idempotent(t *testing.T) {
	player := newPlayer(t)
	p := NewProtocol(player, nil)

	p.Stage(physics.Vector2D{X: 10})
	for i := 0; i < 3; i++ {
		if !p.Cancel() {
			t.Fatal("Cancel returned false")
		}
		if pend := p.Pending(); pend.Active || pend.Coords != nil || pend.ScreenPos != nil {
			t.Fatalf("pending not cleared: %+v", pend)
		}
	}
	if p.Confirm() {
		t.Error("Confirm after Cancel should fail")
	}
	if player.HasDestination() {
		t.Error("cancel must not touch the autopilot")
	}

	p.StageScreen(physics.Vector2D{X: 5})
	if !p.SecondaryClick() || p.Pending().Active {
		t.Error("secondary click should cancel")
	}
}

func TestStageScreen_Unprojects(t *testing.T) {
	player := newPlayer(t)
	player.Motion.Position = physics.Vector2D{X: 100, Y: 100}
	proj := radar.NewProjector(0.1, 450)
	p := NewProtocol(player, &proj)

	p.StageScreen(physics.Vector2D{X: 0, Y: -10})
	pend := p.Pending()
	if !pend.Coords.ApproxEqual(physics.Vector2D{X: 200, Y: 100}, 1e-9) {
		t.Errorf("unprojected coords = %v, want (200,100)", *pend.Coords)
	}
	if pend.ScreenPos == nil || *pend.ScreenPos != (physics.Vector2D{X: 0, Y: -10}) {
		t.Errorf("screen anchor = %v", pend.ScreenPos)
	}

	// Zooming the shared projector changes the mapping.
	proj.Scale = 0.2
	p.StageScreen(physics.Vector2D{X: 0, Y: -10})
	if got := *p.Pending().Coords; !got.ApproxEqual(physics.Vector2D{X: 150, Y: 100}, 1e-9) {
		t.Errorf("after zoom coords = %v, want (150,100)", got)
	}
}

func TestClick_SelectsBlipOrStagesPoint(t *testing.T) {
	player := newPlayer(t)
	proj := radar.NewProjector(0.1, 450)
	npc := newNPC(t, "hauler", 100, 0) // offset (0,-10)
	blips := proj.Blips(player.Position(), []entity.Entity{npc})
	p := NewProtocol(player, &proj)

	hit, ok := p.Click(physics.Vector2D{X: 2, Y: -12}, blips)
	if !ok || hit != npc || p.Selected() != npc {
		t.Fatalf("expected hauler selected, got %v %v", hit, ok)
	}
	pend := p.Pending()
	if *pend.Coords != npc.Position() || *pend.ScreenPos != (physics.Vector2D{X: 0, Y: -10}) {
		t.Errorf("unexpected pending after blip click %+v", pend)
	}

	hit, ok = p.Click(physics.Vector2D{X: 100, Y: 0}, blips)
	if ok || hit != nil {
		t.Error("miss should not return an entity")
	}
	if got := *p.Pending().Coords; !got.ApproxEqual(physics.Vector2D{X: 0, Y: 1000}, 1e-9) {
		t.Errorf("miss staged %v, want (0,1000)", got)
	}
	if p.Selected() != npc {
		t.Error("a miss keeps the previous selection")
	}
}

func TestToggleLock(t *testing.T) {
	player := newPlayer(t)
	bus := event.NewEventBus()
	var locked, released int
	bus.Subscribe(event.TargetLocked, func(event.Event) { locked++ })
	bus.Subscribe(event.TargetReleased, func(event.Event) { released++ })

	p := NewProtocol(player, nil, WithEventBus(bus))
	npc := newNPC(t, "raider", 300, 400)

	if p.ToggleLock() {
		t.Fatal("lock without selection should fail")
	}

	p.Select(newStation(t, 10, 10))
	if p.ToggleLock() || p.Locked() != nil {
		t.Fatal("locations cannot be locked")
	}

	p.StageEntity(npc)
	if !p.ToggleLock() || p.Locked() != npc {
		t.Fatal("expected lock on vessel")
	}
	if !player.Combat.HasTarget() || player.Combat.TargetDistance != 500 {
		t.Errorf("player target not set: %+v", player.Combat)
	}
	if !p.Pending().Active {
		t.Error("locking must not touch staging")
	}

	if !p.ToggleLock() || p.Locked() != nil || player.Combat.HasTarget() {
		t.Fatal("second toggle should release")
	}
	if locked != 1 || released != 1 {
		t.Errorf("events locked=%d released=%d", locked, released)
	}
}

func TestRefresh_TracksAndDropsDestroyedTarget(t *testing.T) {
	player := newPlayer(t)
	p := NewProtocol(player, nil)
	npc := newNPC(t, "raider", 300, 400)

	p.Select(npc)
	p.ToggleLock()

	player.Motion.Position = physics.Vector2D{X: 300, Y: 0}
	p.Refresh()
	if player.Combat.TargetDistance != 400 {
		t.Errorf("TargetDistance = %f, want 400", player.Combat.TargetDistance)
	}

	npc.Destroyed = true
	p.Refresh()
	if p.Locked() != nil || player.Combat.HasTarget() {
		t.Error("destroyed target should be released")
	}
}

func TestTravelToSelected(t *testing.T) {
	player := newPlayer(t)
	p := NewProtocol(player, nil)

	if p.TravelToSelected() {
		t.Fatal("travel without selection should fail")
	}

	st := newStation(t, -50, 75)
	p.Select(st)
	if !p.TravelToSelected() {
		t.Fatal("travel with selection failed")
	}
	p.Confirm()
	if dest, _ := player.Destination.Resolve(nil); dest != st.Position() {
		t.Errorf("destination = %v, want %v", dest, st.Position())
	}

	if p.StageEntity(nil) {
		t.Error("staging a nil entity should fail")
	}
}

func TestPending_ReturnsCopy(t *testing.T) {
	p := NewProtocol(newPlayer(t), nil)
	p.Stage(physics.Vector2D{X: 1, Y: 1})

	pend := p.Pending()
	pend.Coords.X = 99
	if p.Pending().Coords.X != 1 {
		t.Error("mutating Pending() result changed protocol state")
	}
}
