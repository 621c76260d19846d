package fulcrum

import (
	"math"

	"github.com/akmonengine/fulcrum/actor"
	"github.com/akmonengine/fulcrum/constraint"
	"github.com/akmonengine/fulcrum/epa"
	"github.com/akmonengine/fulcrum/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

// Manifold is what the narrow phase found between two colliders.
// Normal points from A to B.
type Manifold struct {
	Normal mgl64.Vec3
	Points []constraint.ContactPoint
}

// NarrowPhaseFunc computes the manifold of a broadphase pair.
// margin is the gap under which separated shapes still produce speculative points.
type NarrowPhaseFunc func(a, b *actor.Collider, margin float64) (Manifold, bool)

// Collide is the default narrow phase: analytic sphere and box pairs,
// GJK then EPA for every other convex pair.
func Collide(a, b *actor.Collider, margin float64) (Manifold, bool) {
	if a.Body() == nil || b.Body() == nil {
		return Manifold{}, false
	}

	switch shapeA := a.Shape.(type) {
	case *actor.Sphere:
		switch b.Shape.(type) {
		case *actor.Sphere:
			return collideSpheres(a, b, margin)
		case *actor.Box:
			return flip(collideSphereBox(b, a, margin))
		}
	case *actor.Box:
		switch shapeB := b.Shape.(type) {
		case *actor.Sphere:
			return collideSphereBox(a, b, margin)
		case *actor.Box:
			return collideBoxes(a, b, shapeA, shapeB, margin)
		}
	}
	return collideConvex(a, b, margin)
}

// flip swaps the roles of a manifold computed with B as the first collider
func flip(m Manifold, ok bool) (Manifold, bool) {
	if !ok {
		return m, false
	}
	m.Normal = m.Normal.Mul(-1)
	for i := range m.Points {
		p := &m.Points[i]
		p.LocalA, p.LocalB = p.LocalB, p.LocalA
	}
	return m, true
}

func collideSpheres(a, b *actor.Collider, margin float64) (Manifold, bool) {
	sphereA, sphereB := a.GetWorldBoundingSphere(), b.GetWorldBoundingSphere()

	delta := sphereB.Center.Sub(sphereA.Center)
	distance := delta.Len()
	if distance > sphereA.Radius+sphereB.Radius+margin {
		return Manifold{}, false
	}

	normal := mgl64.Vec3{0, 1, 0}
	if distance > 1e-9 {
		normal = delta.Mul(1 / distance)
	}

	pointA := sphereA.Center.Add(normal.Mul(sphereA.Radius))
	pointB := sphereB.Center.Sub(normal.Mul(sphereB.Radius))
	return Manifold{
		Normal: normal,
		Points: []constraint.ContactPoint{constraint.NewContactPoint(a.Body(), b.Body(), pointA, pointB, 1)},
	}, true
}

// collideSphereBox finds the point of the box closest to the sphere center.
// The normal points from the box to the sphere.
func collideSphereBox(box, sphere *actor.Collider, margin float64) (Manifold, bool) {
	transform := box.Transform()
	h := box.Shape.(*actor.Box).Extents()
	bounds := sphere.GetWorldBoundingSphere()

	local := transform.ToLocal(bounds.Center)
	closest := mgl64.Vec3{
		mgl64.Clamp(local.X(), -h.X(), h.X()),
		mgl64.Clamp(local.Y(), -h.Y(), h.Y()),
		mgl64.Clamp(local.Z(), -h.Z(), h.Z()),
	}

	var localNormal mgl64.Vec3
	if delta := local.Sub(closest); delta.LenSqr() > 1e-18 {
		distance := delta.Len()
		if distance > bounds.Radius+margin {
			return Manifold{}, false
		}
		localNormal = delta.Mul(1 / distance)
	} else {
		// center inside: push out through the nearest face
		axis, best := 0, math.Inf(1)
		for i := 0; i < 3; i++ {
			if depth := h[i] - math.Abs(local[i]); depth < best {
				axis, best = i, depth
			}
		}
		sign := 1.0
		if local[axis] < 0 {
			sign = -1
		}
		localNormal[axis] = sign
		closest[axis] = sign * h[axis]
	}

	normal := transform.Rotation.Rotate(localNormal)
	pointBox := transform.ToWorld(closest)
	pointSphere := bounds.Center.Sub(normal.Mul(bounds.Radius))
	return Manifold{
		Normal: normal,
		Points: []constraint.ContactPoint{constraint.NewContactPoint(box.Body(), sphere.Body(), pointBox, pointSphere, 1)},
	}, true
}

// inflated grows a volume by a fixed distance in every direction
type inflated struct {
	gjk.Convex
	margin float64
}

func (v inflated) Support(direction mgl64.Vec3) mgl64.Vec3 {
	point := v.Convex.Support(direction)
	length := direction.Len()
	if length < 1e-12 {
		return point
	}
	return point.Add(direction.Mul(v.margin / length))
}

// collideConvex runs GJK, then EPA on the final simplex, and keeps a single point.
// A is inflated by margin so shapes closer than margin get a speculative point.
func collideConvex(a, b *actor.Collider, margin float64) (Manifold, bool) {
	simplex := gjk.SimplexPool.Get().(*gjk.Simplex)
	defer gjk.SimplexPool.Put(simplex)
	simplex.Reset()

	var convexA gjk.Convex = a
	if margin > 0 {
		convexA = inflated{Convex: a, margin: margin}
	}
	if !gjk.GJK(convexA, b, simplex) {
		return Manifold{}, false
	}
	penetration, err := epa.EPA(convexA, b, simplex)
	if err != nil {
		return Manifold{}, false
	}

	// witness points come from the real shapes, the gap shows as negative penetration
	pointA, pointB := penetration.WitnessPoints(a, b)
	return Manifold{
		Normal: penetration.Normal,
		Points: []constraint.ContactPoint{constraint.NewContactPoint(a.Body(), b.Body(), pointA, pointB, 0)},
	}, true
}
