package broadphase

import (
	"math"

	"github.com/akmonengine/fulcrum/actor"
)

// CastKind tells which field of a CastData is set
type CastKind int

const (
	CastKindRay CastKind = iota
	CastKindSegment
	CastKindAabb
	CastKindSphere
	CastKindFrustum
)

func (k CastKind) String() string {
	switch k {
	case CastKindRay:
		return "ray"
	case CastKindSegment:
		return "segment"
	case CastKindAabb:
		return "aabb"
	case CastKindSphere:
		return "sphere"
	case CastKindFrustum:
		return "frustum"
	}
	return "unknown"
}

// CastData is a typed cast descriptor, build it with one of the *Cast constructors
type CastData struct {
	Kind CastKind

	Ray actor.Ray
	// MaxT bounds the ray, +Inf for an infinite ray
	MaxT    float64
	Segment actor.Segment
	Aabb    actor.AABB
	Sphere  actor.BoundingSphere
	Frustum actor.Frustum
}

func RayCast(ray actor.Ray, maxT float64) CastData {
	return CastData{Kind: CastKindRay, Ray: ray, MaxT: maxT}
}

func SegmentCast(segment actor.Segment) CastData {
	return CastData{Kind: CastKindSegment, Segment: segment}
}

func AabbCast(box actor.AABB) CastData {
	return CastData{Kind: CastKindAabb, Aabb: box}
}

func SphereCast(sphere actor.BoundingSphere) CastData {
	return CastData{Kind: CastKindSphere, Sphere: sphere}
}

func FrustumCast(frustum actor.Frustum) CastData {
	return CastData{Kind: CastKindFrustum, Frustum: frustum}
}

// Degenerate casts never hit anything
func (c CastData) Degenerate() bool {
	switch c.Kind {
	case CastKindRay:
		return c.Ray.IsDegenerate() || c.MaxT < 0 || math.IsNaN(c.MaxT)
	case CastKindSegment:
		return c.Segment.Direction().LenSqr() < 1e-24
	case CastKindAabb:
		return !c.Aabb.IsValid()
	case CastKindSphere:
		return c.Sphere.Radius < 0 || math.IsNaN(c.Sphere.Radius)
	case CastKindFrustum:
		return false
	}
	return true
}

// Bounds is a box enclosing everything the cast can reach, false when unbounded
func (c CastData) Bounds() (actor.AABB, bool) {
	switch c.Kind {
	case CastKindRay:
		if math.IsInf(c.MaxT, 1) {
			return actor.AABB{}, false
		}
		end := c.Ray.PointAt(c.MaxT)
		return actor.AABB{Min: c.Ray.Origin, Max: c.Ray.Origin}.Merge(actor.AABB{Min: end, Max: end}), true
	case CastKindSegment:
		start, end := c.Segment.Start, c.Segment.End
		return actor.AABB{Min: start, Max: start}.Merge(actor.AABB{Min: end, Max: end}), true
	case CastKindAabb:
		return c.Aabb, true
	case CastKindSphere:
		return c.Sphere.AABB(), true
	}
	return actor.AABB{}, false
}

// Test is the broad test of the cast against a proxy's bounds. t is the ray or segment
// parameter of the entry point, or the distance from the cast's center for volumes.
func (c CastData) Test(box actor.AABB) (bool, float64) {
	switch c.Kind {
	case CastKindRay:
		return box.CastRay(c.Ray.Origin, c.Ray.Direction, c.MaxT)
	case CastKindSegment:
		return box.CastRay(c.Segment.Start, c.Segment.Direction(), 1)
	case CastKindAabb:
		if !c.Aabb.Overlaps(box) {
			return false, 0
		}
		return true, box.Center().Sub(c.Aabb.Center()).Len()
	case CastKindSphere:
		if !c.Sphere.OverlapsAABB(box) {
			return false, 0
		}
		return true, box.ClosestPoint(c.Sphere.Center).Sub(c.Sphere.Center).Len()
	case CastKindFrustum:
		return c.Frustum.OverlapsAABB(box), 0
	}
	return false, 0
}

// Candidate is a broad hit: the collider and the t of its bounds
type Candidate struct {
	Collider *actor.Collider
	T        float64
}

// Sink receives the broad hits of a cast.
// RangeSorter, FullRangeSorter and ResultList of Candidate are sinks.
type Sink interface {
	Add(candidate Candidate)
}

// SinkFunc adapts a function to a Sink
type SinkFunc func(candidate Candidate)

func (f SinkFunc) Add(candidate Candidate) {
	f(candidate)
}

// RefineFunc accepts or rejects a broad hit and returns its narrow t
type RefineFunc func(candidate Candidate) (accepted bool, t float64)

// AcceptAll keeps the broad t of every candidate
func AcceptAll(candidate Candidate) (bool, float64) {
	return true, candidate.T
}
