package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// NewAABBFromCenter builds a box from its center and half extents
func NewAABBFromCenter(center, halfExtents mgl64.Vec3) AABB {
	return AABB{Min: center.Sub(halfExtents), Max: center.Add(halfExtents)}
}

// ContainsPoint checks if a point is inside the AABB
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y() &&
		point.Z() >= a.Min.Z() && point.Z() <= a.Max.Z()
}

// Overlaps checks if two AABBs overlap
func (a AABB) Overlaps(other AABB) bool {
	// AABBs overlap if they overlap on all three axes
	return a.Max.X() >= other.Min.X() && a.Min.X() <= other.Max.X() &&
		a.Max.Y() >= other.Min.Y() && a.Min.Y() <= other.Max.Y() &&
		a.Max.Z() >= other.Min.Z() && a.Min.Z() <= other.Max.Z()
}

// Contains reports whether other lies entirely inside a
func (a AABB) Contains(other AABB) bool {
	return a.ContainsPoint(other.Min) && a.ContainsPoint(other.Max)
}

// IsValid reports whether Min <= Max on every axis and no component is NaN
func (a AABB) IsValid() bool {
	for i := 0; i < 3; i++ {
		if math.IsNaN(a.Min[i]) || math.IsNaN(a.Max[i]) || a.Min[i] > a.Max[i] {
			return false
		}
	}
	return true
}

func (a AABB) Center() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

func (a AABB) HalfExtents() mgl64.Vec3 {
	return a.Max.Sub(a.Min).Mul(0.5)
}

// SurfaceArea is used by the tree builders as a split cost
func (a AABB) SurfaceArea() float64 {
	d := a.Max.Sub(a.Min)
	return 2 * (d.X()*d.Y() + d.Y()*d.Z() + d.Z()*d.X())
}

// Merge returns the smallest box enclosing both boxes
func (a AABB) Merge(other AABB) AABB {
	return AABB{
		Min: mgl64.Vec3{math.Min(a.Min[0], other.Min[0]), math.Min(a.Min[1], other.Min[1]), math.Min(a.Min[2], other.Min[2])},
		Max: mgl64.Vec3{math.Max(a.Max[0], other.Max[0]), math.Max(a.Max[1], other.Max[1]), math.Max(a.Max[2], other.Max[2])},
	}
}

// ClosestPoint clamps a point onto the box
func (a AABB) ClosestPoint(point mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		math.Max(a.Min[0], math.Min(point[0], a.Max[0])),
		math.Max(a.Min[1], math.Min(point[1], a.Max[1])),
		math.Max(a.Min[2], math.Min(point[2], a.Max[2])),
	}
}

// BoundingSphere encloses the box
func (a AABB) BoundingSphere() BoundingSphere {
	return BoundingSphere{Center: a.Center(), Radius: a.HalfExtents().Len()}
}

// CastRay intersects a ray (origin + t*direction) with the box using the slab method.
// It returns the entry parameter in [0, maxT], 0 when the origin is inside.
func (a AABB) CastRay(origin, direction mgl64.Vec3, maxT float64) (bool, float64) {
	tMin := 0.0
	tMax := maxT

	for i := 0; i < 3; i++ {
		if math.Abs(direction[i]) < 1e-12 {
			// Parallel to the slab: the origin must already be within it
			if origin[i] < a.Min[i] || origin[i] > a.Max[i] {
				return false, 0
			}
			continue
		}

		invD := 1.0 / direction[i]
		t1 := (a.Min[i] - origin[i]) * invD
		t2 := (a.Max[i] - origin[i]) * invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return false, 0
		}
	}

	return true, tMin
}

// BoundingSphere represents a sphere enclosing a shape
type BoundingSphere struct {
	Center mgl64.Vec3
	Radius float64
}

// Overlaps checks if two spheres intersect (touching counts)
func (s BoundingSphere) Overlaps(other BoundingSphere) bool {
	r := s.Radius + other.Radius
	return s.Center.Sub(other.Center).LenSqr() <= r*r
}

// OverlapsAABB checks the sphere against a box
func (s BoundingSphere) OverlapsAABB(box AABB) bool {
	return box.ClosestPoint(s.Center).Sub(s.Center).LenSqr() <= s.Radius*s.Radius
}

// AABB returns the box enclosing the sphere
func (s BoundingSphere) AABB() AABB {
	r := mgl64.Vec3{s.Radius, s.Radius, s.Radius}
	return AABB{Min: s.Center.Sub(r), Max: s.Center.Add(r)}
}

// CastRay intersects a ray with the sphere, returning the smallest non-negative t
func (s BoundingSphere) CastRay(origin, direction mgl64.Vec3, maxT float64) (bool, float64) {
	m := origin.Sub(s.Center)
	a := direction.Dot(direction)
	if a < 1e-24 {
		return false, 0
	}
	b := m.Dot(direction)
	c := m.Dot(m) - s.Radius*s.Radius

	// Origin outside and pointing away
	if c > 0 && b > 0 {
		return false, 0
	}

	disc := b*b - a*c
	if disc < 0 {
		return false, 0
	}

	t := (-b - math.Sqrt(disc)) / a
	if t < 0 {
		t = 0
	}
	if t > maxT {
		return false, 0
	}
	return true, t
}
