package broadphase

import (
	"github.com/akmonengine/fulcrum/actor"
)

type packedSpheres struct {
	x, y, z, radius []float64
	owner           []int
}

func (p *packedSpheres) len() int {
	return len(p.owner)
}

func (p *packedSpheres) push(s actor.BoundingSphere, owner int) int {
	p.x = append(p.x, s.Center.X())
	p.y = append(p.y, s.Center.Y())
	p.z = append(p.z, s.Center.Z())
	p.radius = append(p.radius, s.Radius)
	p.owner = append(p.owner, owner)
	return len(p.owner) - 1
}

func (p *packedSpheres) set(i int, s actor.BoundingSphere) {
	p.x[i], p.y[i], p.z[i] = s.Center.X(), s.Center.Y(), s.Center.Z()
	p.radius[i] = s.Radius
}

func (p *packedSpheres) swapRemove(i int) int {
	last := len(p.owner) - 1
	moved := -1
	if i != last {
		p.x[i], p.y[i], p.z[i], p.radius[i] = p.x[last], p.y[last], p.z[last], p.radius[last]
		p.owner[i] = p.owner[last]
		moved = p.owner[i]
	}
	p.x, p.y, p.z, p.radius = p.x[:last], p.y[:last], p.z[:last], p.radius[:last]
	p.owner = p.owner[:last]
	return moved
}

func (p *packedSpheres) overlaps(i, j int) bool {
	dx, dy, dz := p.x[i]-p.x[j], p.y[i]-p.y[j], p.z[i]-p.z[j]
	r := p.radius[i] + p.radius[j]
	return dx*dx+dy*dy+dz*dz <= r*r
}

func (p *packedSpheres) overlapsSphere(i int, s actor.BoundingSphere) bool {
	dx, dy, dz := p.x[i]-s.Center.X(), p.y[i]-s.Center.Y(), p.z[i]-s.Center.Z()
	r := p.radius[i] + s.Radius
	return dx*dx+dy*dy+dz*dz <= r*r
}

// BoundingSphere rejects with the sphere enclosing each proxy's AABB, then confirms
// on the AABB itself. The spheres are derived from the stored AABB rather than the
// collider's own sphere, so a confirmed pair is exactly an AABB overlap.
type BoundingSphere struct {
	casts
	batch
	arena   arena
	spheres packedSpheres
}

func NewBoundingSphere() *BoundingSphere {
	bp := &BoundingSphere{}
	bp.casts = casts{cast: bp.Cast}
	bp.batch = batch{create: bp.CreateProxy, remove: bp.RemoveProxy, update: bp.UpdateProxy, query: bp.Query}
	return bp
}

func (bp *BoundingSphere) Name() string { return NameBoundingSphere }

func (bp *BoundingSphere) Len() int { return bp.arena.count }

func (bp *BoundingSphere) CreateProxy(collider *actor.Collider) actor.Proxy {
	box := collider.GetWorldAabb()
	proxy, index := bp.arena.insert(collider, box)
	bp.arena.slots[index].packed = bp.spheres.push(box.BoundingSphere(), index)
	collider.Attach(bp, proxy)
	return proxy
}

func (bp *BoundingSphere) RemoveProxy(proxy actor.Proxy) {
	index, ok := bp.arena.lookup(proxy)
	if !ok {
		return
	}
	if moved := bp.spheres.swapRemove(bp.arena.slots[index].packed); moved >= 0 {
		bp.arena.slots[moved].packed = bp.arena.slots[index].packed
	}
	bp.arena.remove(proxy)
}

func (bp *BoundingSphere) UpdateProxy(proxy actor.Proxy) {
	if index, ok := bp.arena.lookup(proxy); ok {
		box := bp.arena.refresh(index)
		bp.spheres.set(bp.arena.slots[index].packed, box.BoundingSphere())
	}
}

func (bp *BoundingSphere) SelfQuery(pairs []Pair) []Pair {
	n := bp.spheres.len()
	for i := 0; i < n; i++ {
		a := &bp.arena.slots[bp.spheres.owner[i]]
		for j := i + 1; j < n; j++ {
			if !bp.spheres.overlaps(i, j) {
				continue
			}
			b := &bp.arena.slots[bp.spheres.owner[j]]
			if a.box.Overlaps(b.box) {
				pairs = append(pairs, Pair{A: a.collider, B: b.collider})
			}
		}
	}
	return pairs
}

func (bp *BoundingSphere) Query(box actor.AABB, out []*actor.Collider) []*actor.Collider {
	if !box.IsValid() {
		return out
	}
	sphere := box.BoundingSphere()
	for i := 0; i < bp.spheres.len(); i++ {
		if !bp.spheres.overlapsSphere(i, sphere) {
			continue
		}
		if s := &bp.arena.slots[bp.spheres.owner[i]]; s.box.Overlaps(box) {
			out = append(out, s.collider)
		}
	}
	return out
}

func (bp *BoundingSphere) Cast(cast CastData, sink Sink) {
	if cast.Degenerate() {
		return
	}
	bounds, bounded := cast.Bounds()
	reject := bounds.BoundingSphere()
	for i := 0; i < bp.spheres.len(); i++ {
		if bounded && !bp.spheres.overlapsSphere(i, reject) {
			continue
		}
		s := &bp.arena.slots[bp.spheres.owner[i]]
		if hit, t := cast.Test(s.box); hit {
			sink.Add(Candidate{Collider: s.collider, T: t})
		}
	}
}
