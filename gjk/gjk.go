// Package gjk implements the Gilbert-Johnson-Keerthi overlap test between convex volumes.
//
// Two convex sets overlap when their Minkowski difference contains the origin.
// The test only needs a support mapping for each volume, so colliders, query boxes,
// query spheres and points can all be tested against each other.
//
// References:
//   - Gilbert, Johnson, Keerthi: "A Fast Procedure for Computing the Distance Between
//     Complex Objects in Three-Dimensional Space" (1988)
//   - Van den Bergen: "Collision Detection in Interactive 3D Environments" (2003)
package gjk

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

const maxIterations = 32

// Convex is anything exposing a world-space support mapping
type Convex interface {
	// Support returns the furthest world point along a world direction
	Support(direction mgl64.Vec3) mgl64.Vec3
	// Center is any interior point, used to seed the search direction
	Center() mgl64.Vec3
}

// Simplex holds the 1 to 4 Minkowski points of the current search.
// Points[Count-1] is always the most recent one.
type Simplex struct {
	Points [4]mgl64.Vec3
	Count  int
}

func (s *Simplex) Reset() {
	s.Count = 0
}

func (s *Simplex) set(points ...mgl64.Vec3) {
	s.Count = copy(s.Points[:], points)
}

var SimplexPool = sync.Pool{
	New: func() interface{} {
		return &Simplex{}
	},
}

// MinkowskiSupport is support(A, d) - support(B, -d)
func MinkowskiSupport(a, b Convex, direction mgl64.Vec3) mgl64.Vec3 {
	return a.Support(direction).Sub(b.Support(direction.Mul(-1)))
}

// Intersect reports whether a and b overlap, using a pooled simplex
func Intersect(a, b Convex) bool {
	simplex := SimplexPool.Get().(*Simplex)
	defer SimplexPool.Put(simplex)
	simplex.Reset()

	return GJK(a, b, simplex)
}

// GJK runs the overlap test, leaving the final simplex in place.
// Touching volumes count as overlapping.
func GJK(a, b Convex, simplex *Simplex) bool {
	direction := b.Center().Sub(a.Center())
	if direction.LenSqr() < 1e-8 {
		direction = mgl64.Vec3{1, 0, 0}
	}

	simplex.set(MinkowskiSupport(a, b, direction))
	direction = simplex.Points[0].Mul(-1)
	if direction.LenSqr() < 1e-16 {
		return true
	}

	for i := 0; i < maxIterations; i++ {
		p := MinkowskiSupport(a, b, direction)

		// the new point did not pass the origin: a separating axis exists
		if p.Dot(direction) <= 0 {
			return false
		}

		simplex.Points[simplex.Count] = p
		simplex.Count++

		if evolve(simplex, &direction) {
			return true
		}
	}

	return false
}

// evolve reduces the simplex to the feature closest to the origin and picks the next direction
func evolve(simplex *Simplex, direction *mgl64.Vec3) bool {
	switch simplex.Count {
	case 2:
		return line(simplex, direction)
	case 3:
		return triangle(simplex, direction)
	case 4:
		return tetrahedron(simplex, direction)
	}
	return false
}

func line(simplex *Simplex, direction *mgl64.Vec3) bool {
	a := simplex.Points[1]
	b := simplex.Points[0]
	ab := b.Sub(a)
	ao := a.Mul(-1)

	if ab.LenSqr() < 1e-8 {
		if ao.LenSqr() < 1e-8 {
			return true
		}
		simplex.set(a)
		*direction = ao
		return false
	}

	if ab.Dot(ao) <= 0 {
		simplex.set(a)
		*direction = ao
		return false
	}

	perp := ab.Cross(ao).Cross(ab)
	if perp.LenSqr() < 1e-8 {
		// origin on the segment
		return true
	}

	*direction = perp
	return false
}

func triangle(simplex *Simplex, direction *mgl64.Vec3) bool {
	a := simplex.Points[2]
	b := simplex.Points[1]
	c := simplex.Points[0]

	ab := b.Sub(a)
	ac := c.Sub(a)
	ao := a.Mul(-1)
	normal := ab.Cross(ac)

	// collinear points: fall back to the newest edge
	if normal.LenSqr() < 1e-10 {
		simplex.set(b, a)
		return line(simplex, direction)
	}

	if ab.Cross(normal).Dot(ao) > 0 {
		simplex.set(b, a)
		*direction = ab.Cross(ao).Cross(ab)
		return false
	}

	if normal.Cross(ac).Dot(ao) > 0 {
		simplex.set(c, a)
		*direction = ac.Cross(ao).Cross(ac)
		return false
	}

	if normal.Dot(ao) > 0 {
		*direction = normal
	} else {
		// keep the winding so the next normal faces the origin
		simplex.set(a, c, b)
		*direction = normal.Mul(-1)
	}
	return false
}

// outward flips n so it points away from the opposite vertex
func outward(n, toOpposite mgl64.Vec3) mgl64.Vec3 {
	if n.Dot(toOpposite) > 0 {
		return n.Mul(-1)
	}
	return n
}

func tetrahedron(simplex *Simplex, direction *mgl64.Vec3) bool {
	a := simplex.Points[3]
	b := simplex.Points[2]
	c := simplex.Points[1]
	d := simplex.Points[0]

	ab := b.Sub(a)
	ac := c.Sub(a)
	ad := d.Sub(a)
	ao := a.Mul(-1)

	abc := outward(ab.Cross(ac), ad)
	acd := outward(ac.Cross(ad), ab)
	adb := outward(ad.Cross(ab), ac)

	if abc.LenSqr() < 1e-10 || acd.LenSqr() < 1e-10 || adb.LenSqr() < 1e-10 {
		simplex.set(c, b, a)
		return triangle(simplex, direction)
	}

	switch {
	case abc.Dot(ao) > 0:
		simplex.set(c, b, a)
	case acd.Dot(ao) > 0:
		simplex.set(d, c, a)
	case adb.Dot(ao) > 0:
		simplex.set(b, d, a)
	default:
		return true
	}
	return triangle(simplex, direction)
}
