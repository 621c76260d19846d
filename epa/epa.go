// Package epa implements the Expanding Polytope Algorithm for computing penetration depth.
//
// EPA runs after GJK reports an overlap. It grows a polytope inside the Minkowski
// difference, starting from GJK's final simplex, until the face closest to the
// origin stops moving. That face gives the contact normal and the depth.
//
// References:
//   - Van den Bergen: "Proximity Queries and Penetration Depth Computation on 3D Game Objects" (2001)
package epa

import (
	"errors"
	"fmt"
	"math"

	"github.com/akmonengine/fulcrum/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// MaxIterations limits polytope expansion.
	// Typical convergence: 5-15 iterations for simple shapes.
	MaxIterations = 32

	// ConvergenceTolerance stops the expansion once a new support point
	// improves the closest distance by less than this
	ConvergenceTolerance = 0.001

	// MinFaceDistance is the smallest distance a face may report
	MinFaceDistance = 0.0001

	// NormalSnapThreshold clamps nearly-zero normal components to zero
	NormalSnapThreshold = 1e-8

	// DegeneratePenetrationEstimate is the depth reported when the simplex is too small to measure
	DegeneratePenetrationEstimate = 0.01

	polytopeInitialCapacity = 16
)

var ErrNotConverged = errors.New("epa: polytope did not converge")

// Penetration is the minimum translation separating two overlapping volumes.
// Normal points from A toward B, Depth is positive.
type Penetration struct {
	Normal mgl64.Vec3
	Depth  float64
}

// WitnessPoints returns the deepest point of each volume along the normal
func (p Penetration) WitnessPoints(a, b gjk.Convex) (pointA, pointB mgl64.Vec3) {
	return a.Support(p.Normal), b.Support(p.Normal.Mul(-1))
}

// EPA computes the penetration of two volumes GJK found overlapping.
// simplex is GJK's final simplex, it is left untouched.
func EPA(a, b gjk.Convex, simplex *gjk.Simplex) (Penetration, error) {
	if simplex.Count < 4 {
		return degenerate(a, b, simplex), nil
	}

	builder := polytopeBuilderPool.Get().(*PolytopeBuilder)
	defer polytopeBuilderPool.Put(builder)
	builder.Reset()

	if err := builder.BuildInitialFaces(simplex); err != nil {
		return Penetration{}, err
	}

	for i := 0; i < MaxIterations; i++ {
		closestIndex := builder.FindClosestFaceIndex()
		if closestIndex < 0 {
			break
		}
		closest := builder.faces[closestIndex]

		support := gjk.MinkowskiSupport(a, b, closest.Normal)
		distance := support.Dot(closest.Normal)

		if distance-closest.Distance < ConvergenceTolerance {
			return Penetration{Normal: closest.Normal, Depth: closest.Distance}, nil
		}

		builder.AddPointAndRebuildFaces(support, closestIndex)
	}

	return Penetration{}, fmt.Errorf("%w after %d iterations", ErrNotConverged, MaxIterations)
}

// degenerate estimates a penetration when GJK stopped before building a tetrahedron,
// which happens for touching or barely overlapping volumes
func degenerate(a, b gjk.Convex, simplex *gjk.Simplex) Penetration {
	if simplex.Count >= 2 {
		p0, p1 := simplex.Points[0], simplex.Points[1]
		closest := p0
		if p1.LenSqr() < p0.LenSqr() {
			closest = p1
		}
		if depth := closest.Len(); depth > NormalSnapThreshold {
			return Penetration{Normal: snapNormalToAxis(closest.Mul(1 / depth)), Depth: depth}
		}
	}

	normal := b.Center().Sub(a.Center())
	if length := normal.Len(); length < NormalSnapThreshold {
		normal = mgl64.Vec3{0, 1, 0}
	} else {
		normal = normal.Mul(1.0 / length)
	}
	return Penetration{Normal: normal, Depth: DegeneratePenetrationEstimate}
}

// snapNormalToAxis clamps nearly-zero components of a normal to exactly zero and renormalizes.
// Axis aligned contacts (box on ground) then get exact tangent directions.
func snapNormalToAxis(normal mgl64.Vec3) mgl64.Vec3 {
	clamped := normal
	for i := range clamped {
		if math.Abs(clamped[i]) < NormalSnapThreshold {
			clamped[i] = 0
		}
	}

	length := clamped.Len()
	if length < 1e-8 {
		return mgl64.Vec3{0, 1, 0}
	}
	return clamped.Mul(1.0 / length)
}
