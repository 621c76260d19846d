package gjk

import (
	"github.com/akmonengine/fulcrum/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Box wraps an axis-aligned query box
type Box actor.AABB

func (b Box) Support(direction mgl64.Vec3) mgl64.Vec3 {
	var p mgl64.Vec3
	for i := 0; i < 3; i++ {
		if direction[i] < 0 {
			p[i] = b.Min[i]
		} else {
			p[i] = b.Max[i]
		}
	}
	return p
}

func (b Box) Center() mgl64.Vec3 {
	return actor.AABB(b).Center()
}

// Sphere wraps a query sphere
type Sphere struct {
	Origin mgl64.Vec3
	Radius float64
}

func NewSphere(s actor.BoundingSphere) Sphere {
	return Sphere{Origin: s.Center, Radius: s.Radius}
}

func (s Sphere) Support(direction mgl64.Vec3) mgl64.Vec3 {
	if direction.LenSqr() < 1e-24 {
		return s.Origin
	}
	return s.Origin.Add(direction.Normalize().Mul(s.Radius))
}

func (s Sphere) Center() mgl64.Vec3 {
	return s.Origin
}

// Point is a degenerate volume, used for containment queries
type Point mgl64.Vec3

func (p Point) Support(mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3(p)
}

func (p Point) Center() mgl64.Vec3 {
	return mgl64.Vec3(p)
}
