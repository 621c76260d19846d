package fulcrum

import (
	"github.com/akmonengine/fulcrum/actor"
	"github.com/akmonengine/fulcrum/broadphase"
	"github.com/akmonengine/fulcrum/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

// RayHit is a collider hit by a ray at Origin + T*Direction
type RayHit = broadphase.Result[broadphase.Candidate]

// CastRay returns every collider hit by the ray within maxT, closest first
func (s *Space) CastRay(ray actor.Ray, maxT float64) []RayHit {
	sorter := broadphase.NewFullRangeSorter[broadphase.Candidate](rayRefine(ray, maxT))
	s.Dynamic.CastRay(ray, maxT, sorter)
	s.Static.CastRay(ray, maxT, sorter)
	return sorter.Results()
}

// CastRayClosest returns the first collider hit by the ray
func (s *Space) CastRayClosest(ray actor.Ray, maxT float64) (RayHit, bool) {
	sorter := broadphase.NewRangeSorter[broadphase.Candidate](1, rayRefine(ray, maxT))
	s.Dynamic.CastRay(ray, maxT, sorter)
	s.Static.CastRay(ray, maxT, sorter)
	if sorter.Len() == 0 {
		return RayHit{}, false
	}
	return sorter.Results()[0], true
}

// rayRefine intersects the ray with the collider's shape. Spheres and boxes are
// exact, other shapes keep the t of their bounds.
func rayRefine(ray actor.Ray, maxT float64) broadphase.RefineFunc {
	return func(candidate broadphase.Candidate) (bool, float64) {
		collider := candidate.Collider
		switch shape := collider.Shape.(type) {
		case *actor.Sphere:
			return collider.GetWorldBoundingSphere().CastRay(ray.Origin, ray.Direction, maxT)
		case *actor.Box:
			t := collider.Transform()
			h := shape.Extents()
			local := actor.AABB{Min: h.Mul(-1), Max: h}
			return local.CastRay(t.ToLocal(ray.Origin), t.InverseRotation.Rotate(ray.Direction), maxT)
		}
		return true, candidate.T
	}
}

// QueryCollider returns the colliders overlapping collider, itself excluded
func (s *Space) QueryCollider(collider *actor.Collider) []*actor.Collider {
	return s.query(collider, collider.GetWorldAabb(), collider)
}

// QuerySphere returns the colliders overlapping a sphere
func (s *Space) QuerySphere(sphere actor.BoundingSphere) []*actor.Collider {
	return s.query(gjk.NewSphere(sphere), sphere.AABB(), nil)
}

// QueryAabb returns the colliders overlapping a box
func (s *Space) QueryAabb(box actor.AABB) []*actor.Collider {
	return s.query(gjk.Box(box), box, nil)
}

// QueryPoint returns the colliders containing point
func (s *Space) QueryPoint(point mgl64.Vec3) []*actor.Collider {
	return s.query(gjk.Point(point), actor.AABB{Min: point, Max: point}, nil)
}

// query gathers both broadphases' candidates for bounds and keeps the ones
// GJK finds overlapping volume
func (s *Space) query(volume gjk.Convex, bounds actor.AABB, exclude *actor.Collider) []*actor.Collider {
	list := broadphase.NewResultList[*actor.Collider](func(other *actor.Collider) (bool, float64) {
		if other == exclude || other.Body() == nil {
			return false, 0
		}
		return gjk.Intersect(volume, other), 0
	})

	s.candidates = s.Dynamic.Query(bounds, s.candidates[:0])
	s.candidates = s.Static.Query(bounds, s.candidates)
	for _, candidate := range s.candidates {
		list.Add(candidate)
	}

	results := make([]*actor.Collider, 0, list.Len())
	for _, result := range list.Results() {
		results = append(results, result.Value)
	}
	return results
}
