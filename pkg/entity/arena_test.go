package entity

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestArena_AddAndLookup(t *testing.T) {
	arena := NewArena()
	a, err := arena.Add(mustLocation(t, stationDef("alpha", 0, 0)))
	if err != nil {
		t.Fatal(err)
	}
	b, _ := arena.Add(mustLocation(t, stationDef("beta", 10, 0)))

	if a != 0 || b != 1 || arena.Len() != 2 {
		t.Fatalf("unexpected indices %d %d len %d", a, b, arena.Len())
	}
	if idx, ok := arena.Lookup("beta"); !ok || idx != b {
		t.Errorf("Lookup(beta) = %d, %v", idx, ok)
	}
	if _, err := arena.Add(mustLocation(t, stationDef("alpha", 5, 5))); !errors.Is(err, ErrDuplicateTag) {
		t.Errorf("expected ErrDuplicateTag, got %v", err)
	}
	if arena.Get(LocationIndex(9)) != nil || arena.Get(NoLocation) != nil {
		t.Error("out of range Get should return nil")
	}
	if got := arena.Indices(); len(got) != 2 || got[1] != b {
		t.Errorf("Indices() = %v", got)
	}
}

func TestArena_LinkHierarchy(t *testing.T) {
	arena := NewArena()
	parent, _ := arena.Add(mustLocation(t, stationDef("hub", 0, 0)))

	moon := stationDef("moon", 1, 1)
	moon.Location.ParentTag = "hub"
	child, _ := arena.Add(mustLocation(t, moon))

	lost := stationDef("lost", 2, 2)
	lost.Location.ParentTag = "nowhere"
	arena.Add(mustLocation(t, lost))

	orphans := arena.LinkHierarchy()
	if len(orphans) != 1 || orphans[0] != "lost" {
		t.Errorf("orphans = %v", orphans)
	}
	// Linking twice must not duplicate children.
	arena.LinkHierarchy()
	if kids := arena.Get(parent).Children; len(kids) != 1 || kids[0] != child {
		t.Errorf("hub children = %v", kids)
	}
	if arena.AddChild(parent, parent) {
		t.Error("self link should be rejected")
	}
}

func TestArena_DockUndock(t *testing.T) {
	arena := NewArena()
	a, _ := arena.Add(mustLocation(t, stationDef("a", 0, 0)))
	b, _ := arena.Add(mustLocation(t, stationDef("b", 100, 0)))
	v1 := mustVessel(t, vesselDef("v1", 0, 0))
	v2 := mustVessel(t, vesselDef("v2", 0, 0))

	if !arena.Dock(a, v2) || !arena.Dock(a, v1) {
		t.Fatal("dock failed")
	}
	if !arena.Dock(a, v1) {
		t.Error("re-docking at the same location should be a no-op success")
	}
	if arena.Dock(b, v1) {
		t.Error("docking while docked elsewhere must fail")
	}
	if arena.Dock(LocationIndex(7), mustVessel(t, vesselDef("v3", 0, 0))) {
		t.Error("docking at unknown location must fail")
	}

	docked := arena.Docked(a)
	if len(docked) != 2 || docked[0] != v1 || docked[1] != v2 {
		t.Errorf("Docked(a) not sorted by tag: %v", docked)
	}
	if arena.DockedCount(b) != 0 {
		t.Error("b should be empty")
	}

	idx, ok := arena.Undock(v1)
	if !ok || idx != a {
		t.Errorf("Undock = %d, %v", idx, ok)
	}
	if _, ok := arena.Undock(v1); ok {
		t.Error("second Undock should report false")
	}
	if _, ok := arena.DockedAt(v1); ok {
		t.Error("v1 still reported docked")
	}
	if !arena.Dock(b, v1) {
		t.Error("undocked vessel should dock elsewhere")
	}
}

func TestArena_ConcurrentDocking(t *testing.T) {
	arena := NewArena()
	var indices []LocationIndex
	for _, tag := range []string{"s1", "s2", "s3"} {
		idx, _ := arena.Add(mustLocation(t, stationDef(tag, 0, 0)))
		indices = append(indices, idx)
	}

	vessels := make([]*Vessel, 32)
	for i := range vessels {
		vessels[i] = mustVessel(t, vesselDef(fmt.Sprintf("v%02d", i), 0, 0))
	}

	var wg sync.WaitGroup
	for i, v := range vessels {
		wg.Add(1)
		go func(i int, v *Vessel) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				arena.Dock(indices[(i+j)%len(indices)], v)
				arena.Undock(v)
			}
			arena.Dock(indices[i%len(indices)], v)
		}(i, v)
	}
	wg.Wait()

	total := 0
	for _, idx := range indices {
		total += arena.DockedCount(idx)
	}
	if total != len(vessels) {
		t.Errorf("each vessel should be docked exactly once, total %d", total)
	}
}
