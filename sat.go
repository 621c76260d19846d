package fulcrum

import (
	"math"

	"github.com/akmonengine/fulcrum/actor"
	"github.com/akmonengine/fulcrum/constraint"
	"github.com/akmonengine/fulcrum/epa"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// edgeTolerance is how much an edge axis must beat the best face axis to be
	// chosen, face contacts give steadier manifolds
	edgeTolerance = 0.005
	faceTolerance = 1e-5
)

type satKind uint8

const (
	satFaceA satKind = iota + 1
	satFaceB
	satEdge
)

type satAxis struct {
	kind       satKind
	i, j       int
	normal     mgl64.Vec3
	separation float64
}

// orientedBox is a box collider in world space
type orientedBox struct {
	center mgl64.Vec3
	axes   [3]mgl64.Vec3
	half   mgl64.Vec3
}

func newOrientedBox(c *actor.Collider, shape *actor.Box) orientedBox {
	t := c.Transform()
	return orientedBox{
		center: t.Position,
		axes: [3]mgl64.Vec3{
			t.Rotation.Rotate(mgl64.Vec3{1, 0, 0}),
			t.Rotation.Rotate(mgl64.Vec3{0, 1, 0}),
			t.Rotation.Rotate(mgl64.Vec3{0, 0, 1}),
		},
		half: shape.Extents(),
	}
}

// radius is the half length of the box projected on axis
func (o orientedBox) radius(axis mgl64.Vec3) float64 {
	return o.half[0]*math.Abs(o.axes[0].Dot(axis)) +
		o.half[1]*math.Abs(o.axes[1].Dot(axis)) +
		o.half[2]*math.Abs(o.axes[2].Dot(axis))
}

func (o orientedBox) support(direction mgl64.Vec3) mgl64.Vec3 {
	p := o.center
	for i := range o.axes {
		p = p.Add(o.axes[i].Mul(sign(o.axes[i].Dot(direction)) * o.half[i]))
	}
	return p
}

// face returns the corners of the face with outward normal side*axes[i], as a loop
func (o orientedBox) face(i int, side float64) []mgl64.Vec3 {
	j, k := (i+1)%3, (i+2)%3
	c := o.center.Add(o.axes[i].Mul(side * o.half[i]))
	u := o.axes[j].Mul(o.half[j])
	v := o.axes[k].Mul(o.half[k])
	return []mgl64.Vec3{c.Add(u).Add(v), c.Sub(u).Add(v), c.Sub(u).Sub(v), c.Add(u).Sub(v)}
}

// facing returns the face whose outward normal is closest to direction
func (o orientedBox) facing(direction mgl64.Vec3) (int, float64) {
	best, bestDot := 0, 0.0
	for i := range o.axes {
		if d := o.axes[i].Dot(direction); math.Abs(d) > math.Abs(bestDot) {
			best, bestDot = i, d
		}
	}
	return best, sign(bestDot)
}

// edge returns the midpoint of the edge parallel to axes[i] furthest along direction
func (o orientedBox) edge(i int, direction mgl64.Vec3) mgl64.Vec3 {
	p := o.center
	for k := range o.axes {
		if k != i {
			p = p.Add(o.axes[k].Mul(sign(o.axes[k].Dot(direction)) * o.half[k]))
		}
	}
	return p
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// collideBoxes is a separating axis test over the 15 axes of two oriented boxes.
// A face axis clips the incident face against the reference face, an edge axis
// yields the closest points of both edges.
func collideBoxes(a, b *actor.Collider, shapeA, shapeB *actor.Box, margin float64) (Manifold, bool) {
	boxA := newOrientedBox(a, shapeA)
	boxB := newOrientedBox(b, shapeB)
	delta := boxB.center.Sub(boxA.center)

	best := satAxis{separation: math.Inf(-1)}
	test := func(axis mgl64.Vec3, kind satKind, i, j int) bool {
		length := axis.Len()
		if length < 1e-6 {
			// parallel edges, the face axes cover it
			return true
		}
		axis = axis.Mul(1 / length)
		distance := delta.Dot(axis)
		if distance < 0 {
			axis = axis.Mul(-1)
			distance = -distance
		}

		separation := distance - boxA.radius(axis) - boxB.radius(axis)
		if separation > margin {
			return false
		}

		tolerance := faceTolerance
		if kind == satEdge {
			tolerance = edgeTolerance
		}
		if best.kind == 0 || separation > best.separation+tolerance {
			best = satAxis{kind: kind, i: i, j: j, normal: axis, separation: separation}
		}
		return true
	}

	for i := 0; i < 3; i++ {
		if !test(boxA.axes[i], satFaceA, i, 0) {
			return Manifold{}, false
		}
	}
	for i := 0; i < 3; i++ {
		if !test(boxB.axes[i], satFaceB, i, 0) {
			return Manifold{}, false
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if !test(boxA.axes[i].Cross(boxB.axes[j]), satEdge, i, j) {
				return Manifold{}, false
			}
		}
	}

	bodyA, bodyB := a.Body(), b.Body()
	normal := best.normal

	switch best.kind {
	case satFaceA:
		reference := boxA.face(best.i, sign(boxA.axes[best.i].Dot(normal)))
		k, side := boxB.facing(normal.Mul(-1))
		incident := boxB.face(k, side)

		points := clipFaces(incident, reference, normal, margin)
		if len(points) == 0 {
			break
		}
		manifold := Manifold{Normal: normal}
		for _, index := range epa.Reduce(points, normal) {
			p := points[index]
			onA := p.Sub(normal.Mul(p.Sub(reference[0]).Dot(normal)))
			id := featureID(best, k, side, index)
			manifold.Points = append(manifold.Points, constraint.NewContactPoint(bodyA, bodyB, onA, p, id))
		}
		return manifold, true

	case satFaceB:
		outward := normal.Mul(-1)
		reference := boxB.face(best.i, sign(boxB.axes[best.i].Dot(outward)))
		k, side := boxA.facing(normal)
		incident := boxA.face(k, side)

		points := clipFaces(incident, reference, outward, margin)
		if len(points) == 0 {
			break
		}
		manifold := Manifold{Normal: normal}
		for _, index := range epa.Reduce(points, normal) {
			p := points[index]
			onB := p.Sub(outward.Mul(p.Sub(reference[0]).Dot(outward)))
			id := featureID(best, k, side, index)
			manifold.Points = append(manifold.Points, constraint.NewContactPoint(bodyA, bodyB, p, onB, id))
		}
		return manifold, true

	case satEdge:
		pointA, pointB := closestEdgePoints(
			boxA.edge(best.i, normal), boxA.axes[best.i], boxA.half[best.i],
			boxB.edge(best.j, normal.Mul(-1)), boxB.axes[best.j], boxB.half[best.j],
		)
		return Manifold{
			Normal: normal,
			Points: []constraint.ContactPoint{constraint.NewContactPoint(bodyA, bodyB, pointA, pointB, featureID(best, 0, 1, 0))},
		}, true
	}

	// clipping lost every point to rounding, keep the deepest pair
	return Manifold{
		Normal: normal,
		Points: []constraint.ContactPoint{constraint.NewContactPoint(bodyA, bodyB, boxA.support(normal), boxB.support(normal.Mul(-1)), 0)},
	}, true
}

// clipFaces clips incident against the reference face pushed out by margin,
// so faces closer than margin already produce points
func clipFaces(incident, reference []mgl64.Vec3, normal mgl64.Vec3, margin float64) []mgl64.Vec3 {
	shifted := make([]mgl64.Vec3, len(reference))
	for i, v := range reference {
		shifted[i] = v.Add(normal.Mul(margin))
	}
	return epa.Clip(incident, shifted, normal)
}

// featureID identifies a point by the axis, the incident face and the clip order
func featureID(axis satAxis, face int, side float64, index int) uint32 {
	id := uint32(axis.kind)<<16 | uint32(axis.i)<<12 | uint32(axis.j)<<10 | uint32(face)<<6 | uint32(index)
	if side < 0 {
		id |= 1 << 8
	}
	return id
}

// closestEdgePoints returns the closest points of two segments given by
// midpoint, unit direction and half length
func closestEdgePoints(pA, uA mgl64.Vec3, halfA float64, pB, uB mgl64.Vec3, halfB float64) (mgl64.Vec3, mgl64.Vec3) {
	r := pA.Sub(pB)
	b := uA.Dot(uB)
	c := uA.Dot(r)
	f := uB.Dot(r)

	var s, t float64
	if denom := 1 - b*b; denom > 1e-9 {
		s = mgl64.Clamp((b*f-c)/denom, -halfA, halfA)
	}
	t = mgl64.Clamp(f+b*s, -halfB, halfB)
	s = mgl64.Clamp(b*t-c, -halfA, halfA)

	return pA.Add(uA.Mul(s)), pB.Add(uB.Mul(t))
}
