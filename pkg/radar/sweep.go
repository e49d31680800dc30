package radar

import (
	"sort"

	"github.com/opd-ai/go-spacerpg/pkg/entity"
	"github.com/opd-ai/go-spacerpg/pkg/physics"
)

// linearCutoff is the candidate count below which a plain scan beats
// building a quadtree.
const linearCutoff = 64

// Sweep computes blips for large candidate sets using a quadtree prefilter.
// Its result is identical to Projector.Blips.
type Sweep struct {
	proj     Projector
	capacity int
}

// NewSweep creates a sweep for projector p. capacity is the quadtree node
// capacity.
func NewSweep(p Projector, capacity int) *Sweep {
	if capacity < 1 {
		capacity = 8
	}
	return &Sweep{proj: p, capacity: capacity}
}

// SetProjector replaces the projector, e.g. after zooming.
func (s *Sweep) SetProjector(p Projector) {
	s.proj = p
}

// Blips returns the in-range blips for candidates around origin, in
// candidate order.
func (s *Sweep) Blips(origin physics.Vector2D, candidates []entity.Entity) []Blip {
	if len(candidates) < linearCutoff {
		return s.proj.Blips(origin, candidates)
	}

	points := make([]physics.Vector2D, 0, len(candidates)+1)
	for _, c := range candidates {
		if c != nil {
			points = append(points, c.Position())
		}
	}
	points = append(points, origin)

	tree := physics.NewQuadTree[int](physics.BoundsOf(points), s.capacity)
	for i, c := range candidates {
		if c != nil {
			tree.Insert(c.Position(), i)
		}
	}

	// Pad the world radius so float rounding in the projection cannot drop
	// a blip sitting on the rim; the exact pixel test below decides.
	hits := tree.QueryRadius(origin, s.proj.WorldRange()*1.0001+1)
	sort.Ints(hits)

	blips := make([]Blip, 0, len(hits))
	for _, i := range hits {
		if b, ok := s.proj.blip(origin, candidates[i]); ok {
			blips = append(blips, b)
		}
	}
	return blips
}
