// pkg/entity/combat.go
package entity

import (
	"strings"

	"github.com/opd-ai/go-spacerpg/pkg/physics"
)

// Attributes is an opaque equipment block read from a definition record,
// e.g. {"ir_sensor": {"range_Mm": 4, "accuracy": 0.8}}.
type Attributes map[string]any

// Float walks nested maps along path and returns the numeric leaf.
func (a Attributes) Float(path ...string) (float64, bool) {
	if len(path) == 0 {
		return 0, false
	}
	var cur any = map[string]any(a)
	for _, key := range path {
		var m map[string]any
		switch node := cur.(type) {
		case map[string]any:
			m = node
		case Attributes:
			m = node
		default:
			return 0, false
		}
		next, ok := lookupKey(m, key)
		if !ok {
			return 0, false
		}
		cur = next
	}
	return toFloat(cur)
}

// Clone returns a deep copy; nested maps and slices are copied too.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch node := v.(type) {
	case Attributes:
		return node.Clone()
	case map[string]any:
		return map[string]any(Attributes(node).Clone())
	case []any:
		out := make([]any, len(node))
		for i, e := range node {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// lookupKey falls back to a case-insensitive match; config loaders may
// lowercase nested keys.
func lookupKey(m map[string]any, key string) (any, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// CombatCapability turns a vessel into a ship: equipment blocks plus a
// target lock with a cached distance.
type CombatCapability struct {
	ShipType  string
	Engine    Attributes
	FuelCell  Attributes
	Hull      Attributes
	Weapons   Attributes
	Sensors   Attributes
	Signature Attributes

	Target         Entity
	TargetDistance float64 // km
	TargetRange    float64 // Mm
	IsPlayer       bool
}

// SetTarget locks onto target and refreshes the cached distance from pos.
func (c *CombatCapability) SetTarget(target Entity, pos physics.Vector2D) {
	c.Target = target
	c.UpdateTargetDistance(pos)
}

// ReleaseTarget drops the lock
func (c *CombatCapability) ReleaseTarget() {
	c.Target = nil
	c.TargetDistance = 0
	c.TargetRange = 0
}

// HasTarget reports whether a target is locked
func (c *CombatCapability) HasTarget() bool {
	return c.Target != nil
}

// UpdateTargetDistance recomputes the distance to the target from pos and
// returns it. Without a target the distance is 0.
func (c *CombatCapability) UpdateTargetDistance(pos physics.Vector2D) float64 {
	if c.Target == nil {
		c.TargetDistance = 0
		c.TargetRange = 0
		return 0
	}
	c.TargetDistance = pos.Distance(c.Target.Position())
	c.TargetRange = c.TargetDistance / 1000
	return c.TargetDistance
}
