// pkg/entity/arena.go
package entity

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrDuplicateTag is returned when a location tag is already registered.
var ErrDuplicateTag = errors.New("duplicate tag")

// Arena owns every Location in a world and the docked-vessel sets attached
// to them. Locations are addressed by LocationIndex and never removed.
//
// A vessel is a member of at most one docked set at a time; Dock and Undock
// are the only ways to change membership and both hold the arena lock.
type Arena struct {
	mu        sync.RWMutex
	locations []*Location
	byTag     map[string]LocationIndex
	docked    []map[*Vessel]struct{}
	dockedAt  map[*Vessel]LocationIndex
}

// NewArena creates an empty arena
func NewArena() *Arena {
	return &Arena{
		byTag:    make(map[string]LocationIndex),
		dockedAt: make(map[*Vessel]LocationIndex),
	}
}

// Add registers a location and returns its index.
func (a *Arena) Add(loc *Location) (LocationIndex, error) {
	if loc == nil {
		return NoLocation, fmt.Errorf("nil location")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.byTag[loc.Tag]; exists {
		return NoLocation, fmt.Errorf("location %q: %w", loc.Tag, ErrDuplicateTag)
	}
	idx := LocationIndex(len(a.locations))
	a.locations = append(a.locations, loc)
	a.docked = append(a.docked, make(map[*Vessel]struct{}))
	a.byTag[loc.Tag] = idx
	return idx, nil
}

// Get returns the location at idx, or nil when idx is out of range.
func (a *Arena) Get(idx LocationIndex) *Location {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.valid(idx) {
		return nil
	}
	return a.locations[idx]
}

// Lookup finds a location index by tag
func (a *Arena) Lookup(tag string) (LocationIndex, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	idx, ok := a.byTag[tag]
	return idx, ok
}

// Len returns the number of locations
func (a *Arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.locations)
}

// Indices returns every location index in insertion order.
func (a *Arena) Indices() []LocationIndex {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]LocationIndex, len(a.locations))
	for i := range out {
		out[i] = LocationIndex(i)
	}
	return out
}

// Locations returns the registered locations in index order.
func (a *Arena) Locations() []*Location {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]*Location, len(a.locations))
	copy(out, a.locations)
	return out
}

// AddChild makes child a child of parent. It reports false for unknown
// indices or a self link.
func (a *Arena) AddChild(parent, child LocationIndex) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.valid(parent) || !a.valid(child) || parent == child {
		return false
	}
	a.locations[parent].addChild(child)
	return true
}

// LinkHierarchy resolves every location's ParentTag into the parent's
// Children list. It returns the tags of locations whose parent is unknown.
func (a *Arena) LinkHierarchy() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	var orphans []string
	for i, loc := range a.locations {
		if loc.ParentTag == "" {
			continue
		}
		parent, ok := a.byTag[loc.ParentTag]
		if !ok || parent == LocationIndex(i) {
			orphans = append(orphans, loc.Tag)
			continue
		}
		a.locations[parent].addChild(LocationIndex(i))
	}
	return orphans
}

// Dock adds v to the docked set of idx. Docking where the vessel already is
// docked is a no-op that reports true; docking while docked elsewhere
// reports false.
func (a *Arena) Dock(idx LocationIndex, v *Vessel) bool {
	if v == nil {
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.valid(idx) {
		return false
	}
	if current, ok := a.dockedAt[v]; ok {
		return current == idx
	}
	a.docked[idx][v] = struct{}{}
	a.dockedAt[v] = idx
	return true
}

// Undock removes v from whichever docked set holds it and returns that
// location. It reports false when the vessel was not docked.
func (a *Arena) Undock(v *Vessel) (LocationIndex, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx, ok := a.dockedAt[v]
	if !ok {
		return NoLocation, false
	}
	delete(a.docked[idx], v)
	delete(a.dockedAt, v)
	return idx, true
}

// DockedAt returns the location v is docked at.
func (a *Arena) DockedAt(v *Vessel) (LocationIndex, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	idx, ok := a.dockedAt[v]
	return idx, ok
}

// Docked returns the vessels docked at idx ordered by tag.
func (a *Arena) Docked(idx LocationIndex) []*Vessel {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.valid(idx) {
		return nil
	}
	out := make([]*Vessel, 0, len(a.docked[idx]))
	for v := range a.docked[idx] {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

// DockedCount returns the size of the docked set at idx.
func (a *Arena) DockedCount(idx LocationIndex) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.valid(idx) {
		return 0
	}
	return len(a.docked[idx])
}

func (a *Arena) valid(idx LocationIndex) bool {
	return idx >= 0 && int(idx) < len(a.locations)
}
