// pkg/physics/spatial.go
package physics

import "math"

// maxQuadDepth bounds subdivision so stacks of coincident points cannot
// recurse forever.
const maxQuadDepth = 12

// Rect represents an axis-aligned rectangular area
type Rect struct {
	Center Vector2D
	Width  float64
	Height float64
}

// Contains reports whether point lies inside the rect (half-open on the
// max edges).
func (r Rect) Contains(point Vector2D) bool {
	return point.X >= r.Center.X-r.Width/2 &&
		point.X < r.Center.X+r.Width/2 &&
		point.Y >= r.Center.Y-r.Height/2 &&
		point.Y < r.Center.Y+r.Height/2
}

// Intersects reports whether two rects overlap.
func (r Rect) Intersects(other Rect) bool {
	return !(other.Center.X-other.Width/2 > r.Center.X+r.Width/2 ||
		other.Center.X+other.Width/2 < r.Center.X-r.Width/2 ||
		other.Center.Y-other.Height/2 > r.Center.Y+r.Height/2 ||
		other.Center.Y+other.Height/2 < r.Center.Y-r.Height/2)
}

// BoundsOf returns a square rect that contains every point, padded so that
// points on the max edges are still inside.
func BoundsOf(points []Vector2D) Rect {
	if len(points) == 0 {
		return Rect{Width: 2, Height: 2}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	side := math.Max(maxX-minX, maxY-minY)*1.01 + 2
	return Rect{
		Center: Vector2D{X: (minX + maxX) / 2, Y: (minY + maxY) / 2},
		Width:  side,
		Height: side,
	}
}

// QuadTree for spatial partitioning
type QuadTree[T any] struct {
	Boundary Rect
	Capacity int

	depth    int
	points   []Vector2D
	items    []T
	children [4]*QuadTree[T]
	divided  bool
}

// NewQuadTree creates a new quad tree with the given boundary and capacity
func NewQuadTree[T any](boundary Rect, capacity int) *QuadTree[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &QuadTree[T]{
		Boundary: boundary,
		Capacity: capacity,
		points:   make([]Vector2D, 0, capacity),
		items:    make([]T, 0, capacity),
	}
}

// Insert stores item at point. It returns false when the point lies outside
// the tree's boundary.
func (qt *QuadTree[T]) Insert(point Vector2D, item T) bool {
	if !qt.Boundary.Contains(point) {
		return false
	}

	if !qt.divided && (len(qt.points) < qt.Capacity || qt.depth >= maxQuadDepth) {
		qt.points = append(qt.points, point)
		qt.items = append(qt.items, item)
		return true
	}

	if !qt.divided {
		qt.subdivide()
	}

	for _, child := range qt.children {
		if child.Insert(point, item) {
			return true
		}
	}
	// Rounding on the quadrant seams can leave a contained point with no
	// child; keep it here.
	qt.points = append(qt.points, point)
	qt.items = append(qt.items, item)
	return true
}

// subdivide splits the quadtree into four quadrants and pushes the current
// points down.
func (qt *QuadTree[T]) subdivide() {
	x := qt.Boundary.Center.X
	y := qt.Boundary.Center.Y
	w := qt.Boundary.Width / 2
	h := qt.Boundary.Height / 2

	quads := [4]Rect{
		{Center: Vector2D{X: x - w/2, Y: y + h/2}, Width: w, Height: h},
		{Center: Vector2D{X: x + w/2, Y: y + h/2}, Width: w, Height: h},
		{Center: Vector2D{X: x - w/2, Y: y - h/2}, Width: w, Height: h},
		{Center: Vector2D{X: x + w/2, Y: y - h/2}, Width: w, Height: h},
	}
	for i, r := range quads {
		qt.children[i] = NewQuadTree[T](r, qt.Capacity)
		qt.children[i].depth = qt.depth + 1
	}
	qt.divided = true

	points, items := qt.points, qt.items
	qt.points, qt.items = nil, nil
	for i, p := range points {
		qt.Insert(p, items[i])
	}
}

// Query returns all items whose point lies inside area
func (qt *QuadTree[T]) Query(area Rect) []T {
	var found []T
	qt.query(area, &found)
	return found
}

func (qt *QuadTree[T]) query(area Rect, found *[]T) {
	if !qt.Boundary.Intersects(area) {
		return
	}
	for i, point := range qt.points {
		if area.Contains(point) {
			*found = append(*found, qt.items[i])
		}
	}
	if !qt.divided {
		return
	}
	for _, child := range qt.children {
		child.query(area, found)
	}
}

// QueryRadius returns all items within radius of center (inclusive).
func (qt *QuadTree[T]) QueryRadius(center Vector2D, radius float64) []T {
	var found []T
	qt.queryRadius(center, radius, &found)
	return found
}

func (qt *QuadTree[T]) queryRadius(center Vector2D, radius float64, found *[]T) {
	// Pad the box so points sitting exactly on the circle are not lost to
	// the half-open Contains test.
	area := Rect{Center: center, Width: 2*radius + 2, Height: 2*radius + 2}
	if !qt.Boundary.Intersects(area) {
		return
	}
	for i, point := range qt.points {
		if point.Distance(center) <= radius {
			*found = append(*found, qt.items[i])
		}
	}
	if !qt.divided {
		return
	}
	for _, child := range qt.children {
		child.queryRadius(center, radius, found)
	}
}

// Len returns the number of stored items.
func (qt *QuadTree[T]) Len() int {
	n := len(qt.points)
	if qt.divided {
		for _, child := range qt.children {
			n += child.Len()
		}
	}
	return n
}
