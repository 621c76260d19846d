package epa

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MaxManifoldPoints is the most points Reduce keeps
const MaxManifoldPoints = 4

// Clip performs Sutherland-Hodgman clipping of the incident polygon against
// the side planes of the reference polygon, then keeps the points lying on or
// behind the reference face. normal points from the reference face toward the
// incident one.
func Clip(incident, reference []mgl64.Vec3, normal mgl64.Vec3) []mgl64.Vec3 {
	clipped := clipIncidentAgainstReference(incident, reference, normal)
	if len(clipped) == 0 || len(reference) < 3 {
		return clipped
	}

	refNormal := reference[1].Sub(reference[0]).Cross(reference[2].Sub(reference[0])).Normalize()
	if refNormal.Dot(normal) < 0 {
		refNormal = refNormal.Mul(-1)
	}
	offset := reference[0].Dot(refNormal)

	kept := clipped[:0]
	for _, point := range clipped {
		if point.Dot(refNormal)-offset <= 0 {
			kept = append(kept, point)
		}
	}
	return kept
}

func clipIncidentAgainstReference(incident, reference []mgl64.Vec3, normal mgl64.Vec3) []mgl64.Vec3 {
	if len(reference) < 2 {
		return incident
	}

	center := computeCenter(reference)
	output := incident
	for i := 0; i < len(reference) && len(output) > 0; i++ {
		v1 := reference[i]
		v2 := reference[(i+1)%len(reference)]

		// side plane through the edge, pointing inward
		clipNormal := v2.Sub(v1).Cross(normal).Normalize()
		if center.Sub(v1).Dot(clipNormal) < 0 {
			clipNormal = clipNormal.Mul(-1)
		}
		output = clipPolygonAgainstPlane(output, v1, clipNormal)
	}
	return output
}

// clipPolygonAgainstPlane keeps the part of polygon on the side planeNormal points to
func clipPolygonAgainstPlane(polygon []mgl64.Vec3, planePoint, planeNormal mgl64.Vec3) []mgl64.Vec3 {
	const tolerance = 1e-6
	if len(polygon) == 0 {
		return polygon
	}

	output := make([]mgl64.Vec3, 0, len(polygon)+1)
	for i := range polygon {
		current := polygon[i]
		next := polygon[(i+1)%len(polygon)]

		currentDist := current.Sub(planePoint).Dot(planeNormal)
		nextDist := next.Sub(planePoint).Dot(planeNormal)

		if currentDist >= -tolerance {
			output = append(output, current)
			if nextDist < -tolerance {
				output = append(output, lineIntersectPlane(current, next, planePoint, planeNormal))
			}
		} else if nextDist >= -tolerance {
			output = append(output, lineIntersectPlane(current, next, planePoint, planeNormal))
		}
	}
	return output
}

func lineIntersectPlane(p1, p2, planePoint, planeNormal mgl64.Vec3) mgl64.Vec3 {
	dir := p2.Sub(p1)
	denom := dir.Dot(planeNormal)
	if math.Abs(denom) < 1e-10 {
		return p1
	}

	t := -p1.Sub(planePoint).Dot(planeNormal) / denom
	t = math.Max(0, math.Min(1, t))
	return p1.Add(dir.Mul(t))
}

func computeCenter(points []mgl64.Vec3) mgl64.Vec3 {
	if len(points) == 0 {
		return mgl64.Vec3{}
	}
	var sum mgl64.Vec3
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Mul(1.0 / float64(len(points)))
}

// Reduce picks at most MaxManifoldPoints points spanning the contact area:
// the extremes along two tangent directions. It returns indices into points,
// ascending.
func Reduce(points []mgl64.Vec3, normal mgl64.Vec3) []int {
	if len(points) <= MaxManifoldPoints {
		indices := make([]int, len(points))
		for i := range indices {
			indices[i] = i
		}
		return indices
	}

	tangent1, tangent2 := tangentBasis(normal)
	var extremes [4]int
	best := [4]float64{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	for i, p := range points {
		x, y := p.Dot(tangent1), p.Dot(tangent2)
		if x < best[0] {
			best[0], extremes[0] = x, i
		}
		if x > best[1] {
			best[1], extremes[1] = x, i
		}
		if y < best[2] {
			best[2], extremes[2] = y, i
		}
		if y > best[3] {
			best[3], extremes[3] = y, i
		}
	}

	indices := make([]int, 0, MaxManifoldPoints)
	for i := range points {
		for _, e := range extremes {
			if e == i {
				indices = append(indices, i)
				break
			}
		}
	}
	return indices
}

func tangentBasis(normal mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	tangent1 := mgl64.Vec3{1, 0, 0}
	if math.Abs(normal.X()) > 0.9 {
		tangent1 = mgl64.Vec3{0, 1, 0}
	}
	tangent1 = tangent1.Sub(normal.Mul(tangent1.Dot(normal))).Normalize()
	tangent2 := normal.Cross(tangent1).Normalize()
	return tangent1, tangent2
}
