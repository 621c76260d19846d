package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Ray is a half-line starting at Origin. Direction does not need to be normalized,
// the hit parameter t is expressed in units of Direction.
type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
}

// PointAt returns Origin + t*Direction
func (r Ray) PointAt(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// IsDegenerate reports a ray with no usable direction
func (r Ray) IsDegenerate() bool {
	return r.Direction.LenSqr() < 1e-24
}

// Segment is the finite line from Start to End, parametrized on [0, 1]
type Segment struct {
	Start mgl64.Vec3
	End   mgl64.Vec3
}

func (s Segment) Direction() mgl64.Vec3 {
	return s.End.Sub(s.Start)
}

func (s Segment) PointAt(t float64) mgl64.Vec3 {
	return s.Start.Add(s.Direction().Mul(t))
}

// Plane is defined by Normal · p = Distance, Normal pointing outward
type Plane struct {
	Normal   mgl64.Vec3
	Distance float64
}

// NewPlane creates a plane through point with the given normal
func NewPlane(normal, point mgl64.Vec3) Plane {
	n := normal.Normalize()
	return Plane{Normal: n, Distance: n.Dot(point)}
}

// SignedDistance is positive on the side the normal points to
func (p Plane) SignedDistance(point mgl64.Vec3) float64 {
	return p.Normal.Dot(point) - p.Distance
}

// Frustum is a convex volume bounded by planes whose normals point outward
type Frustum struct {
	Planes [6]Plane
}

// NewFrustum builds a perspective frustum from an eye position and orthonormal basis.
// fovY is the full vertical field of view in radians.
func NewFrustum(eye, forward, up mgl64.Vec3, fovY, aspect, near, far float64) Frustum {
	forward = forward.Normalize()
	right := forward.Cross(up).Normalize()
	up = right.Cross(forward)

	halfV := math.Tan(fovY / 2)
	halfH := halfV * aspect

	nearCenter := eye.Add(forward.Mul(near))
	farCenter := eye.Add(forward.Mul(far))

	// Side planes go through the eye; their normals are built from the edge directions
	leftDir := forward.Sub(right.Mul(halfH))
	rightDir := forward.Add(right.Mul(halfH))
	topDir := forward.Add(up.Mul(halfV))
	bottomDir := forward.Sub(up.Mul(halfV))

	return Frustum{Planes: [6]Plane{
		NewPlane(forward.Mul(-1), nearCenter),
		NewPlane(forward, farCenter),
		NewPlane(up.Cross(leftDir), eye),
		NewPlane(rightDir.Cross(up), eye),
		NewPlane(right.Cross(topDir), eye),
		NewPlane(bottomDir.Cross(right), eye),
	}}
}

// OverlapsAABB is conservative: a box is rejected only if it is fully outside one plane
func (f Frustum) OverlapsAABB(box AABB) bool {
	center := box.Center()
	half := box.HalfExtents()

	for _, p := range f.Planes {
		r := half.X()*math.Abs(p.Normal.X()) + half.Y()*math.Abs(p.Normal.Y()) + half.Z()*math.Abs(p.Normal.Z())
		if p.SignedDistance(center) > r {
			return false
		}
	}
	return true
}

// OverlapsSphere rejects spheres fully outside any plane
func (f Frustum) OverlapsSphere(s BoundingSphere) bool {
	for _, p := range f.Planes {
		if p.SignedDistance(s.Center) > s.Radius {
			return false
		}
	}
	return true
}
