package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MinExtent is the smallest half extent or radius a shape is allowed to have.
// Degenerate sizes are clamped to it instead of producing zero volume or a singular inertia.
const MinExtent = 1e-4

// ShapeType represents the type of collision shape
type ShapeType int

const (
	ShapeTypeSphere ShapeType = iota
	ShapeTypeBox
	ShapeTypeEllipsoid
	ShapeTypeConvexMesh
)

func (t ShapeType) String() string {
	switch t {
	case ShapeTypeSphere:
		return "sphere"
	case ShapeTypeBox:
		return "box"
	case ShapeTypeEllipsoid:
		return "ellipsoid"
	case ShapeTypeConvexMesh:
		return "convex_mesh"
	}
	return "unknown"
}

// Shape is the interface that all collision shapes must implement.
// Every method works in the shape's local space.
type Shape interface {
	Type() ShapeType
	// ComputeAABB calculates the axis-aligned bounding box for the shape
	// at the given transform
	ComputeAABB(transform Transform) AABB
	// Support returns the furthest local point along a local direction
	Support(direction mgl64.Vec3) mgl64.Vec3
	Volume() float64
	ComputeInertia(mass float64) mgl64.Mat3
}

func clampExtent(v float64) float64 {
	if math.IsNaN(v) || math.Abs(v) < MinExtent {
		return MinExtent
	}
	return math.Abs(v)
}

func clampExtents(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{clampExtent(v.X()), clampExtent(v.Y()), clampExtent(v.Z())}
}

// aabbFromSupport evaluates the support function along the six world axes
func aabbFromSupport(shape Shape, transform Transform) AABB {
	var box AABB
	for i := 0; i < 3; i++ {
		var axis mgl64.Vec3
		axis[i] = 1

		hi := transform.ToWorld(shape.Support(transform.InverseRotation.Rotate(axis)))
		lo := transform.ToWorld(shape.Support(transform.InverseRotation.Rotate(axis.Mul(-1))))
		box.Max[i] = hi[i]
		box.Min[i] = lo[i]
	}
	return box
}

// Box represents an oriented box collision shape
// The box is defined by its half-extents (half-width, half-height, half-depth)
type Box struct {
	HalfExtents mgl64.Vec3
}

func (b *Box) Type() ShapeType { return ShapeTypeBox }

// Extents returns the half extents, clamped to MinExtent
func (b *Box) Extents() mgl64.Vec3 {
	return clampExtents(b.HalfExtents)
}

// Vertices returns the 8 corners in local space
func (b *Box) Vertices() [8]mgl64.Vec3 {
	h := b.Extents()
	return [8]mgl64.Vec3{
		{-h.X(), -h.Y(), -h.Z()},
		{+h.X(), -h.Y(), -h.Z()},
		{-h.X(), +h.Y(), -h.Z()},
		{+h.X(), +h.Y(), -h.Z()},
		{-h.X(), -h.Y(), +h.Z()},
		{+h.X(), -h.Y(), +h.Z()},
		{-h.X(), +h.Y(), +h.Z()},
		{+h.X(), +h.Y(), +h.Z()},
	}
}

func (b *Box) ComputeAABB(transform Transform) AABB {
	corners := b.Vertices()

	// Transform the first corner to seed min/max
	worldCorner := transform.Rotation.Rotate(corners[0]).Add(transform.Position)
	min := worldCorner
	max := worldCorner

	for i := 1; i < 8; i++ {
		worldCorner = transform.Rotation.Rotate(corners[i]).Add(transform.Position)

		min[0] = math.Min(min[0], worldCorner[0])
		min[1] = math.Min(min[1], worldCorner[1])
		min[2] = math.Min(min[2], worldCorner[2])

		max[0] = math.Max(max[0], worldCorner[0])
		max[1] = math.Max(max[1], worldCorner[1])
		max[2] = math.Max(max[2], worldCorner[2])
	}

	return AABB{Min: min, Max: max}
}

// Volume = 8 * hx * hy * hz (full dimensions are 2*halfExtents)
func (b *Box) Volume() float64 {
	h := b.Extents()
	return 8.0 * h.X() * h.Y() * h.Z()
}

func (b *Box) ComputeInertia(mass float64) mgl64.Mat3 {
	h := b.Extents()
	x := h.X() * 2
	y := h.Y() * 2
	z := h.Z() * 2

	// I = (m/12) * (dimension1² + dimension2²)
	factor := mass / 12.0
	return mgl64.Diag3(mgl64.Vec3{
		factor * (y*y + z*z),
		factor * (x*x + z*z),
		factor * (x*x + y*y),
	})
}

func (b *Box) Support(direction mgl64.Vec3) mgl64.Vec3 {
	h := b.Extents()
	hx, hy, hz := h.X(), h.Y(), h.Z()

	if direction.X() < 0 {
		hx = -hx
	}
	if direction.Y() < 0 {
		hy = -hy
	}
	if direction.Z() < 0 {
		hz = -hz
	}

	return mgl64.Vec3{hx, hy, hz}
}

// Sphere represents a spherical collision shape
type Sphere struct {
	Radius float64
}

func (s *Sphere) Type() ShapeType { return ShapeTypeSphere }

func (s *Sphere) radius() float64 {
	return clampExtent(s.Radius)
}

// ComputeAABB is not affected by rotation, only by position
func (s *Sphere) ComputeAABB(transform Transform) AABB {
	r := s.radius()
	radiusVec := mgl64.Vec3{r, r, r}

	return AABB{
		Min: transform.Position.Sub(radiusVec),
		Max: transform.Position.Add(radiusVec),
	}
}

// Volume of sphere = (4/3) * π * r³
func (s *Sphere) Volume() float64 {
	return (4.0 / 3.0) * math.Pi * math.Pow(s.radius(), 3)
}

func (s *Sphere) ComputeInertia(mass float64) mgl64.Mat3 {
	// I = (2/5) * m * r², identical on all axes
	r := s.radius()
	i := (2.0 / 5.0) * mass * r * r
	return mgl64.Diag3(mgl64.Vec3{i, i, i})
}

func (s *Sphere) Support(direction mgl64.Vec3) mgl64.Vec3 {
	if direction.LenSqr() < 1e-24 {
		return mgl64.Vec3{s.radius(), 0, 0}
	}
	return direction.Normalize().Mul(s.radius())
}

// Ellipsoid is an axis-aligned (in local space) ellipsoid with the given radii
type Ellipsoid struct {
	Radii mgl64.Vec3
}

func (e *Ellipsoid) Type() ShapeType { return ShapeTypeEllipsoid }

func (e *Ellipsoid) radii() mgl64.Vec3 {
	return clampExtents(e.Radii)
}

func (e *Ellipsoid) ComputeAABB(transform Transform) AABB {
	return aabbFromSupport(e, transform)
}

func (e *Ellipsoid) Volume() float64 {
	r := e.radii()
	return (4.0 / 3.0) * math.Pi * r.X() * r.Y() * r.Z()
}

func (e *Ellipsoid) ComputeInertia(mass float64) mgl64.Mat3 {
	r := e.radii()
	a2, b2, c2 := r.X()*r.X(), r.Y()*r.Y(), r.Z()*r.Z()
	factor := mass / 5.0
	return mgl64.Diag3(mgl64.Vec3{
		factor * (b2 + c2),
		factor * (a2 + c2),
		factor * (a2 + b2),
	})
}

// Support of an ellipsoid is R² d / |R d| with R the radii matrix
func (e *Ellipsoid) Support(direction mgl64.Vec3) mgl64.Vec3 {
	r := e.radii()
	scaled := mgl64.Vec3{direction.X() * r.X(), direction.Y() * r.Y(), direction.Z() * r.Z()}
	l := scaled.Len()
	if l < 1e-12 {
		return mgl64.Vec3{r.X(), 0, 0}
	}
	return mgl64.Vec3{scaled.X() * r.X() / l, scaled.Y() * r.Y() / l, scaled.Z() * r.Z() / l}
}

// ConvexMesh is the convex hull of a point cloud given in local space.
// The points are assumed to be centered on the center of mass.
type ConvexMesh struct {
	Points []mgl64.Vec3
}

func (m *ConvexMesh) Type() ShapeType { return ShapeTypeConvexMesh }

func (m *ConvexMesh) ComputeAABB(transform Transform) AABB {
	if len(m.Points) == 0 {
		return NewAABBFromCenter(transform.Position, mgl64.Vec3{MinExtent, MinExtent, MinExtent})
	}

	first := transform.ToWorld(m.Points[0])
	box := AABB{Min: first, Max: first}
	for _, p := range m.Points[1:] {
		w := transform.ToWorld(p)
		box = box.Merge(AABB{Min: w, Max: w})
	}

	// Flat or point hulls still get a minimal thickness
	for i := 0; i < 3; i++ {
		if box.Max[i]-box.Min[i] < 2*MinExtent {
			c := (box.Max[i] + box.Min[i]) / 2
			box.Min[i] = c - MinExtent
			box.Max[i] = c + MinExtent
		}
	}
	return box
}

func (m *ConvexMesh) Support(direction mgl64.Vec3) mgl64.Vec3 {
	if len(m.Points) == 0 {
		return mgl64.Vec3{}
	}

	best := m.Points[0]
	bestDot := best.Dot(direction)
	for _, p := range m.Points[1:] {
		if d := p.Dot(direction); d > bestDot {
			best = p
			bestDot = d
		}
	}
	return best
}

// localBounds is the hull's box in its own frame, clamped to the minimal size
func (m *ConvexMesh) localBounds() mgl64.Vec3 {
	box := m.ComputeAABB(NewTransform())
	return clampExtents(box.HalfExtents())
}

// Volume approximates the hull by its local bounding box
func (m *ConvexMesh) Volume() float64 {
	h := m.localBounds()
	return 8.0 * h.X() * h.Y() * h.Z()
}

// ComputeInertia approximates the hull by its local bounding box
func (m *ConvexMesh) ComputeInertia(mass float64) mgl64.Mat3 {
	box := Box{HalfExtents: m.localBounds()}
	return box.ComputeInertia(mass)
}
